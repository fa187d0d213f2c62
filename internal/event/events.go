package event

const (
	EventStakePlaced     = "session.staked"
	EventSessionResolved = "session.resolved"
	EventRestaked        = "session.restaked"
	EventRewardClaimed   = "session.claimed"
	EventWithdraw        = "bankroll.withdraw"
)
