package db

// Schema is the DDL for the engine's two tables. Applied by the integration
// tests; deployments run the same statements through their migration tooling.
const Schema = `
CREATE TABLE IF NOT EXISTS accounts (
	id UUID PRIMARY KEY,
	number VARCHAR(34) NOT NULL UNIQUE,
	name VARCHAR(255) NOT NULL,
	kind VARCHAR(64) NOT NULL,
	currency VARCHAR(3) NOT NULL,
	balance NUMERIC(19, 4) NOT NULL DEFAULT 0,
	daily_transfer_limit NUMERIC(19, 4) NOT NULL,
	single_transfer_limit NUMERIC(19, 4) NOT NULL,
	daily_withdrawal_limit NUMERIC(19, 4) NOT NULL,
	single_withdrawal_limit NUMERIC(19, 4) NOT NULL,
	transfer_used_today NUMERIC(19, 4) NOT NULL DEFAULT 0,
	withdrawal_used_today NUMERIC(19, 4) NOT NULL DEFAULT 0,
	last_limit_reset_at TIMESTAMPTZ NOT NULL,
	owner_id UUID NOT NULL,
	disabled BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_accounts_owner ON accounts(owner_id);

CREATE TABLE IF NOT EXISTS transactions (
	id UUID PRIMARY KEY,
	reference VARCHAR(64) NOT NULL UNIQUE,
	source_account_id UUID NOT NULL REFERENCES accounts(id),
	destination_account_id UUID NOT NULL REFERENCES accounts(id),
	amount NUMERIC(19, 4) NOT NULL,
	currency VARCHAR(3) NOT NULL,
	description VARCHAR(500) NOT NULL DEFAULT '',
	status VARCHAR(20) NOT NULL,
	kind VARCHAR(20) NOT NULL,
	message TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	completed_at TIMESTAMPTZ
);
CREATE INDEX IF NOT EXISTS idx_transactions_source ON transactions(source_account_id, created_at);
CREATE INDEX IF NOT EXISTS idx_transactions_destination ON transactions(destination_account_id, created_at);
`
