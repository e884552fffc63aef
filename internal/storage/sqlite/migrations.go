package sqlite

import "database/sql"

// schema is the full table and index set, built once at startup and treated as
// read-only configuration thereafter. Tables are created parents-first so
// every foreign key references a table defined above it.
//
// Deletion policy is encoded here, not in application code: ownership edges
// are ON DELETE CASCADE, categorization links are ON DELETE SET NULL. Money
// columns are TEXT holding fixed two-digit decimal strings so values like
// 1234567890123456.78 round-trip exactly. Timestamps are UTC TEXT with
// fixed-width nanoseconds, so lexicographic order is chronological order.
// Required text columns carry CHECK(col <> '')
// so an empty required field fails the write inside the engine.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id                              TEXT PRIMARY KEY,
    email                           TEXT NOT NULL CHECK (email <> ''),
    name                            TEXT NOT NULL CHECK (name <> ''),
    time_zone                       TEXT NOT NULL CHECK (time_zone <> ''),
    default_forecast_horizon_days   INTEGER NOT NULL,
    created_at                      TEXT NOT NULL,
    updated_at                      TEXT NOT NULL
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email ON users(email);

CREATE TABLE IF NOT EXISTS accounts (
    id                     TEXT PRIMARY KEY,
    user_id                TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    name                   TEXT NOT NULL CHECK (name <> ''),
    institution            TEXT NOT NULL DEFAULT '',
    account_type           TEXT NOT NULL CHECK (account_type <> ''),
    domain                 INTEGER NOT NULL,
    current_balance        TEXT NOT NULL,
    safe_minimum_balance   TEXT NOT NULL,
    include_in_forecast    INTEGER NOT NULL,
    is_active              INTEGER NOT NULL,
    external_account_id    TEXT NOT NULL DEFAULT '',
    last_synced_at         TEXT,
    created_at             TEXT NOT NULL,
    updated_at             TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_accounts_user_id ON accounts(user_id);
CREATE INDEX IF NOT EXISTS idx_accounts_domain ON accounts(domain);
CREATE INDEX IF NOT EXISTS idx_accounts_is_active ON accounts(is_active);

CREATE TABLE IF NOT EXISTS bills (
    id                  TEXT PRIMARY KEY,
    user_id             TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    name                TEXT NOT NULL CHECK (name <> ''),
    amount              TEXT NOT NULL,
    frequency           INTEGER NOT NULL,
    day_of_month        INTEGER,
    day_of_week         INTEGER,
    next_due_date       TEXT NOT NULL,
    domain              INTEGER NOT NULL,
    default_account_id  TEXT REFERENCES accounts(id) ON DELETE SET NULL,
    priority            INTEGER NOT NULL,
    is_auto_pay         INTEGER NOT NULL,
    is_active           INTEGER NOT NULL,
    notes               TEXT NOT NULL DEFAULT '',
    created_at          TEXT NOT NULL,
    updated_at          TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_bills_user_id ON bills(user_id);
CREATE INDEX IF NOT EXISTS idx_bills_domain ON bills(domain);
CREATE INDEX IF NOT EXISTS idx_bills_next_due_date ON bills(next_due_date);
CREATE INDEX IF NOT EXISTS idx_bills_is_active ON bills(is_active);
CREATE INDEX IF NOT EXISTS idx_bills_default_account_id ON bills(default_account_id);

CREATE TABLE IF NOT EXISTS income_streams (
    id                          TEXT PRIMARY KEY,
    user_id                     TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    name                        TEXT NOT NULL CHECK (name <> ''),
    typical_amount              TEXT NOT NULL,
    frequency                   INTEGER NOT NULL,
    domain                      INTEGER NOT NULL,
    account_id                  TEXT NOT NULL REFERENCES accounts(id) ON DELETE CASCADE,
    last_received_date          TEXT,
    last_received_amount        TEXT,
    next_expected_date          TEXT,
    next_expected_window_start  TEXT,
    next_expected_window_end    TEXT,
    is_active                   INTEGER NOT NULL,
    notes                       TEXT NOT NULL DEFAULT '',
    created_at                  TEXT NOT NULL,
    updated_at                  TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_income_streams_user_id ON income_streams(user_id);
CREATE INDEX IF NOT EXISTS idx_income_streams_account_id ON income_streams(account_id);
CREATE INDEX IF NOT EXISTS idx_income_streams_domain ON income_streams(domain);
CREATE INDEX IF NOT EXISTS idx_income_streams_next_expected_date ON income_streams(next_expected_date);
CREATE INDEX IF NOT EXISTS idx_income_streams_is_active ON income_streams(is_active);

CREATE TABLE IF NOT EXISTS goals (
    id                          TEXT PRIMARY KEY,
    user_id                     TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    name                        TEXT NOT NULL CHECK (name <> ''),
    target_amount               TEXT NOT NULL,
    current_amount              TEXT NOT NULL,
    target_date                 TEXT NOT NULL,
    domain                      INTEGER NOT NULL,
    funding_strategy            INTEGER NOT NULL,
    fixed_contribution_amount   TEXT,
    percent_of_income           TEXT,
    priority                    INTEGER NOT NULL,
    is_active                   INTEGER NOT NULL,
    notes                       TEXT NOT NULL DEFAULT '',
    created_at                  TEXT NOT NULL,
    updated_at                  TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_goals_user_id ON goals(user_id);
CREATE INDEX IF NOT EXISTS idx_goals_domain ON goals(domain);
CREATE INDEX IF NOT EXISTS idx_goals_target_date ON goals(target_date);
CREATE INDEX IF NOT EXISTS idx_goals_is_active ON goals(is_active);

CREATE TABLE IF NOT EXISTS goal_accounts (
    id          TEXT PRIMARY KEY,
    goal_id     TEXT NOT NULL REFERENCES goals(id) ON DELETE CASCADE,
    account_id  TEXT NOT NULL REFERENCES accounts(id) ON DELETE CASCADE,
    created_at  TEXT NOT NULL,
    updated_at  TEXT NOT NULL
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_goal_accounts_goal_account ON goal_accounts(goal_id, account_id);
CREATE INDEX IF NOT EXISTS idx_goal_accounts_account_id ON goal_accounts(account_id);

CREATE TABLE IF NOT EXISTS transactions (
    id                        TEXT PRIMARY KEY,
    account_id                TEXT NOT NULL REFERENCES accounts(id) ON DELETE CASCADE,
    amount                    TEXT NOT NULL,
    date                      TEXT NOT NULL,
    description               TEXT NOT NULL CHECK (description <> ''),
    normalized_merchant       TEXT NOT NULL DEFAULT '',
    category                  TEXT NOT NULL DEFAULT '',
    is_reconciled             INTEGER NOT NULL,
    bill_id                   TEXT REFERENCES bills(id) ON DELETE SET NULL,
    income_stream_id          TEXT REFERENCES income_streams(id) ON DELETE SET NULL,
    goal_id                   TEXT REFERENCES goals(id) ON DELETE SET NULL,
    transfer_account_id       TEXT REFERENCES accounts(id) ON DELETE SET NULL,
    notes                     TEXT NOT NULL DEFAULT '',
    external_transaction_id   TEXT NOT NULL DEFAULT '',
    created_at                TEXT NOT NULL,
    updated_at                TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_transactions_account_date ON transactions(account_id, date DESC);
CREATE INDEX IF NOT EXISTS idx_transactions_bill_id ON transactions(bill_id);
CREATE INDEX IF NOT EXISTS idx_transactions_income_stream_id ON transactions(income_stream_id);
CREATE INDEX IF NOT EXISTS idx_transactions_goal_id ON transactions(goal_id);
CREATE INDEX IF NOT EXISTS idx_transactions_transfer_account_id ON transactions(transfer_account_id);

CREATE TABLE IF NOT EXISTS alerts (
    id                        TEXT PRIMARY KEY,
    user_id                   TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    type                      INTEGER NOT NULL,
    severity                  INTEGER NOT NULL,
    state                     INTEGER NOT NULL,
    title                     TEXT NOT NULL,
    message                   TEXT NOT NULL,
    recommended_action        TEXT NOT NULL DEFAULT '',
    domain                    INTEGER,
    related_account_id        TEXT REFERENCES accounts(id) ON DELETE SET NULL,
    related_bill_id           TEXT REFERENCES bills(id) ON DELETE SET NULL,
    related_goal_id           TEXT REFERENCES goals(id) ON DELETE SET NULL,
    related_income_stream_id  TEXT REFERENCES income_streams(id) ON DELETE SET NULL,
    triggered_at              TEXT NOT NULL,
    acknowledged_at           TEXT,
    snoozed_until             TEXT,
    resolved_at               TEXT,
    expires_at                TEXT,
    created_at                TEXT NOT NULL,
    updated_at                TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_alerts_user_id ON alerts(user_id);
CREATE INDEX IF NOT EXISTS idx_alerts_type ON alerts(type);
CREATE INDEX IF NOT EXISTS idx_alerts_severity ON alerts(severity);
CREATE INDEX IF NOT EXISTS idx_alerts_state ON alerts(state);
CREATE INDEX IF NOT EXISTS idx_alerts_triggered_at ON alerts(triggered_at DESC);
CREATE INDEX IF NOT EXISTS idx_alerts_related_account_id ON alerts(related_account_id);
CREATE INDEX IF NOT EXISTS idx_alerts_related_bill_id ON alerts(related_bill_id);
CREATE INDEX IF NOT EXISTS idx_alerts_related_goal_id ON alerts(related_goal_id);
CREATE INDEX IF NOT EXISTS idx_alerts_related_income_stream_id ON alerts(related_income_stream_id);

CREATE TABLE IF NOT EXISTS forecast_snapshots (
    id             TEXT PRIMARY KEY,
    user_id        TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    domain         INTEGER NOT NULL,
    horizon_days   INTEGER NOT NULL,
    generated_at   TEXT NOT NULL,
    start_date     TEXT NOT NULL,
    end_date       TEXT NOT NULL,
    forecast_data  TEXT NOT NULL,
    runway_days    INTEGER,
    status         INTEGER NOT NULL,
    created_at     TEXT NOT NULL,
    updated_at     TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_forecast_snapshots_key ON forecast_snapshots(user_id, domain, horizon_days, generated_at DESC);

CREATE TABLE IF NOT EXISTS settings (
    id             TEXT PRIMARY KEY,
    user_id        TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    setting_key    TEXT NOT NULL CHECK (setting_key <> ''),
    setting_value  TEXT NOT NULL,
    created_at     TEXT NOT NULL,
    updated_at     TEXT NOT NULL
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_settings_user_key ON settings(user_id, setting_key);
`

// runMigrations executes the schema setup.
func runMigrations(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
