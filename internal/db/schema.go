package db

import "database/sql"

func Migrate(db *sql.DB) {
	db.Exec(`
	CREATE TABLE IF NOT EXISTS registry (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		super_admin TEXT,
		operation_admin TEXT,
		financial_admin TEXT,
		update_admin TEXT,
		rtp INTEGER,
		max_win_amount INTEGER,
		min_bet_amount INTEGER
	);`)

	db.Exec(`
	CREATE TABLE IF NOT EXISTS sessions (
		key TEXT PRIMARY KEY,
		player TEXT,
		operator TEXT,
		session_id INTEGER,
		side INTEGER,
		round INTEGER,
		stake_amount INTEGER,
		initial_stake INTEGER,
		status INTEGER
	);`)

	db.Exec(`
	CREATE TABLE IF NOT EXISTS escrow (
		key TEXT PRIMARY KEY,
		balance INTEGER DEFAULT 0
	);`)

	db.Exec(`
	CREATE TABLE IF NOT EXISTS bankroll (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		balance INTEGER DEFAULT 0
	);`)
	db.Exec(`INSERT OR IGNORE INTO bankroll(id, balance) VALUES (1, 0);`)

	db.Exec(`
	CREATE TABLE IF NOT EXISTS wallets (
		player TEXT PRIMARY KEY,
		balance INTEGER DEFAULT 0
	);`)

	db.Exec(`
	CREATE TABLE IF NOT EXISTS ledger (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		ref TEXT,
		debit_account TEXT,
		credit_account TEXT,
		amount INTEGER,
		ts INTEGER
	);`)

	db.Exec(`
	CREATE TABLE IF NOT EXISTS audit_logs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		actor TEXT,
		action TEXT,
		metadata TEXT,
		created_at INTEGER
	);`)
}
