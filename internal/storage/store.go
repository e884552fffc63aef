// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/moneymatters/backend/internal/models"
)

// ListAlertsOptions filters alert listings.
type ListAlertsOptions struct {
	// States restricts the result to these states. Empty means all states.
	States []models.AlertState

	// IncludeExpired keeps unresolved alerts whose ExpiresAt has passed.
	// By default readers never see expired alerts; expiry is a read-time
	// filter, not a write-time mutation.
	IncludeExpired bool
}

// Counts holds per-table row counts, used by seeding and the status command.
type Counts struct {
	Users             int
	Accounts          int
	Transactions      int
	Bills             int
	IncomeStreams     int
	Goals             int
	GoalAccounts      int
	Alerts            int
	ForecastSnapshots int
	Settings          int
}

// Store defines the interface for MoneyMatters persistence.
//
// Every write enforces the integrity ruleset atomically: required fields,
// uniqueness, and foreign keys are checked by the storage engine inside the
// write's transaction, and a violation aborts the whole write with one of the
// package sentinel errors. The store never "fixes" a violation (it will not
// create a missing parent or drop a duplicate silently).
//
// Deletes follow the cascade/nullify policy described in the models package:
// ownership edges cascade, categorization links are set to null.
type Store interface {
	// Users.
	CreateUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error
	DeleteUser(ctx context.Context, id uuid.UUID) error
	ListUsers(ctx context.Context) ([]*models.User, error)

	// Accounts.
	CreateAccount(ctx context.Context, account *models.Account) error
	GetAccount(ctx context.Context, id uuid.UUID) (*models.Account, error)
	UpdateAccount(ctx context.Context, account *models.Account) error
	DeleteAccount(ctx context.Context, id uuid.UUID) error
	ListAccounts(ctx context.Context, userID uuid.UUID) ([]*models.Account, error)

	// Transactions. Listings are ordered by date descending.
	CreateTransaction(ctx context.Context, txn *models.Transaction) error
	GetTransaction(ctx context.Context, id uuid.UUID) (*models.Transaction, error)
	UpdateTransaction(ctx context.Context, txn *models.Transaction) error
	DeleteTransaction(ctx context.Context, id uuid.UUID) error
	ListTransactions(ctx context.Context, accountID uuid.UUID) ([]*models.Transaction, error)

	// Bills.
	CreateBill(ctx context.Context, bill *models.Bill) error
	GetBill(ctx context.Context, id uuid.UUID) (*models.Bill, error)
	UpdateBill(ctx context.Context, bill *models.Bill) error
	DeleteBill(ctx context.Context, id uuid.UUID) error
	ListBills(ctx context.Context, userID uuid.UUID) ([]*models.Bill, error)

	// Income streams.
	CreateIncomeStream(ctx context.Context, stream *models.IncomeStream) error
	GetIncomeStream(ctx context.Context, id uuid.UUID) (*models.IncomeStream, error)
	UpdateIncomeStream(ctx context.Context, stream *models.IncomeStream) error
	DeleteIncomeStream(ctx context.Context, id uuid.UUID) error
	ListIncomeStreams(ctx context.Context, userID uuid.UUID) ([]*models.IncomeStream, error)

	// Goals and goal-account links.
	CreateGoal(ctx context.Context, goal *models.Goal) error
	GetGoal(ctx context.Context, id uuid.UUID) (*models.Goal, error)
	UpdateGoal(ctx context.Context, goal *models.Goal) error
	DeleteGoal(ctx context.Context, id uuid.UUID) error
	ListGoals(ctx context.Context, userID uuid.UUID) ([]*models.Goal, error)

	// AddGoalContribution applies a contribution to the goal's CurrentAmount
	// inside a single transaction, clamping at TargetAmount. It returns the
	// amount actually applied and the clamped remainder (zero when nothing
	// was clamped) so the caller can reallocate the excess.
	AddGoalContribution(ctx context.Context, goalID uuid.UUID, amount decimal.Decimal) (applied, remainder decimal.Decimal, err error)

	LinkGoalAccount(ctx context.Context, link *models.GoalAccount) error
	UnlinkGoalAccount(ctx context.Context, goalID, accountID uuid.UUID) error
	ListGoalAccounts(ctx context.Context, goalID uuid.UUID) ([]*models.GoalAccount, error)

	// Alerts.
	CreateAlert(ctx context.Context, alert *models.Alert) error
	GetAlert(ctx context.Context, id uuid.UUID) (*models.Alert, error)
	DeleteAlert(ctx context.Context, id uuid.UUID) error
	ListAlerts(ctx context.Context, userID uuid.UUID, opts ListAlertsOptions) ([]*models.Alert, error)

	// TransitionAlert moves an alert to target within a single transaction,
	// stamping the matching timestamp (AcknowledgedAt, ResolvedAt, or
	// SnoozedUntil from the snoozedUntil argument). Illegal transitions fail
	// with alerts.ErrInvalidStateTransition; resolving an already-resolved
	// alert is a no-op. Returns the alert in its new state.
	TransitionAlert(ctx context.Context, alertID uuid.UUID, target models.AlertState, snoozedUntil *time.Time) (*models.Alert, error)

	// Forecast snapshots. Latest returns the newest GeneratedAt for the key.
	PutForecastSnapshot(ctx context.Context, snap *models.ForecastSnapshot) error
	LatestForecastSnapshot(ctx context.Context, userID uuid.UUID, domain models.FinancialDomain, horizonDays int) (*models.ForecastSnapshot, error)

	// Settings. The (UserID, Key) pair is unique.
	CreateSetting(ctx context.Context, setting *models.Setting) error

	// UpsertSetting creates the setting or, when the (UserID, Key) pair
	// already exists, replaces its value in place. The existing row keeps
	// its ID and CreatedAt; UpdatedAt advances.
	UpsertSetting(ctx context.Context, setting *models.Setting) error
	GetSetting(ctx context.Context, userID uuid.UUID, key string) (*models.Setting, error)
	UpdateSetting(ctx context.Context, setting *models.Setting) error
	DeleteSetting(ctx context.Context, id uuid.UUID) error
	ListSettings(ctx context.Context, userID uuid.UUID) ([]*models.Setting, error)

	// Counts returns per-table row counts.
	Counts(ctx context.Context) (Counts, error)

	// Close releases any resources held by the store.
	Close() error
}
