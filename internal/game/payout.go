package game

import "math"

// grossReturn is the post-win escrow target for a balance at the given
// rtp percent: balance * 2 * rtp / 100. With rtp below 100 the house
// keeps the difference as its edge.
func grossReturn(balance, rtp int64) (int64, error) {
	product, err := checkedMul(balance, 2*rtp)
	if err != nil {
		return 0, err
	}
	return product / 100, nil
}

// winAmount is the net winnings the bankroll pays on a winning resolve.
func winAmount(balance, rtp int64) (int64, error) {
	gross, err := grossReturn(balance, rtp)
	if err != nil {
		return 0, err
	}
	return gross - balance, nil
}

func checkedMul(a, b int64) (int64, error) {
	if a == 0 || b == 0 {
		return 0, nil
	}
	if a > math.MaxInt64/b {
		return 0, ErrArithmeticOverflow
	}
	return a * b, nil
}

func checkedDouble(a int64) (int64, error) {
	return checkedMul(a, 2)
}
