package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/moneymatters/backend/internal/alerts"
	"github.com/moneymatters/backend/internal/models"
	"github.com/moneymatters/backend/internal/storage"
)

var testNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	store, err := New(dbPath, WithClock(func() time.Time { return testNow }))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func mustCreateUser(t *testing.T, store *SQLiteStore, email string) *models.User {
	t.Helper()

	user := &models.User{Email: email, Name: "Test User"}
	if err := store.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	return user
}

func mustCreateAccount(t *testing.T, store *SQLiteStore, userID uuid.UUID, name string) *models.Account {
	t.Helper()

	account := &models.Account{
		UserID:      userID,
		Name:        name,
		AccountType: "Checking",
		Domain:      models.DomainPersonal,
	}
	if err := store.CreateAccount(context.Background(), account); err != nil {
		t.Fatalf("CreateAccount failed: %v", err)
	}
	return account
}

func TestUserStore(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	t.Run("Create generates ID and applies defaults", func(t *testing.T) {
		user := &models.User{Email: "alice@example.com", Name: "Alice"}
		if err := store.CreateUser(ctx, user); err != nil {
			t.Fatalf("CreateUser failed: %v", err)
		}
		if user.ID == uuid.Nil {
			t.Error("Expected user ID to be generated")
		}
		if user.TimeZone != models.DefaultTimeZone {
			t.Errorf("TimeZone = %q, want default %q", user.TimeZone, models.DefaultTimeZone)
		}
		if user.DefaultForecastHorizonDays != models.DefaultForecastHorizonDays {
			t.Errorf("Horizon = %d, want default %d", user.DefaultForecastHorizonDays, models.DefaultForecastHorizonDays)
		}
		if user.CreatedAt.IsZero() || user.UpdatedAt.IsZero() {
			t.Error("Expected timestamps to be set")
		}
	})

	t.Run("GetUserByEmail round-trips", func(t *testing.T) {
		got, err := store.GetUserByEmail(ctx, "alice@example.com")
		if err != nil {
			t.Fatalf("GetUserByEmail failed: %v", err)
		}
		if got.Name != "Alice" {
			t.Errorf("Name = %q, want Alice", got.Name)
		}
	})

	t.Run("duplicate email is rejected and the original survives", func(t *testing.T) {
		dup := &models.User{Email: "alice@example.com", Name: "Impostor"}
		if err := store.CreateUser(ctx, dup); !errors.Is(err, storage.ErrUniquenessViolation) {
			t.Fatalf("CreateUser error = %v, want ErrUniquenessViolation", err)
		}
		got, err := store.GetUserByEmail(ctx, "alice@example.com")
		if err != nil {
			t.Fatalf("GetUserByEmail failed: %v", err)
		}
		if got.Name != "Alice" {
			t.Errorf("original user was replaced, Name = %q", got.Name)
		}
	})

	t.Run("empty required field is rejected", func(t *testing.T) {
		if err := store.CreateUser(ctx, &models.User{Email: "", Name: "No Email"}); !errors.Is(err, storage.ErrRequiredFieldMissing) {
			t.Fatalf("CreateUser error = %v, want ErrRequiredFieldMissing", err)
		}
		if err := store.CreateUser(ctx, &models.User{Email: "blank@example.com", Name: ""}); !errors.Is(err, storage.ErrRequiredFieldMissing) {
			t.Fatalf("CreateUser error = %v, want ErrRequiredFieldMissing", err)
		}
	})

	t.Run("Update advances UpdatedAt past CreatedAt", func(t *testing.T) {
		user := mustCreateUser(t, store, "bob@example.com")
		user.Name = "Bob Updated"
		if err := store.UpdateUser(ctx, user); err != nil {
			t.Fatalf("UpdateUser failed: %v", err)
		}
		if !user.UpdatedAt.After(user.CreatedAt) {
			t.Errorf("UpdatedAt %v is not after CreatedAt %v", user.UpdatedAt, user.CreatedAt)
		}
		got, err := store.GetUser(ctx, user.ID)
		if err != nil {
			t.Fatalf("GetUser failed: %v", err)
		}
		if got.Name != "Bob Updated" {
			t.Errorf("Name = %q, want Bob Updated", got.Name)
		}
	})

	t.Run("missing user surfaces ErrNotFound", func(t *testing.T) {
		if _, err := store.GetUser(ctx, uuid.New()); !errors.Is(err, storage.ErrNotFound) {
			t.Fatalf("GetUser error = %v, want ErrNotFound", err)
		}
		if err := store.DeleteUser(ctx, uuid.New()); !errors.Is(err, storage.ErrNotFound) {
			t.Fatalf("DeleteUser error = %v, want ErrNotFound", err)
		}
		if err := store.UpdateUser(ctx, &models.User{ID: uuid.New(), Email: "x@example.com", Name: "X", TimeZone: "UTC", DefaultForecastHorizonDays: 30}); !errors.Is(err, storage.ErrNotFound) {
			t.Fatalf("UpdateUser error = %v, want ErrNotFound", err)
		}
	})
}

func TestAccountStore(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	user := mustCreateUser(t, store, "accounts@example.com")

	t.Run("orphan account is rejected", func(t *testing.T) {
		account := &models.Account{
			UserID:      uuid.New(),
			Name:        "Orphan",
			AccountType: "Checking",
		}
		if err := store.CreateAccount(ctx, account); !errors.Is(err, storage.ErrForeignKeyViolation) {
			t.Fatalf("CreateAccount error = %v, want ErrForeignKeyViolation", err)
		}
	})

	t.Run("large balances round-trip exactly", func(t *testing.T) {
		balance := decimal.RequireFromString("1234567890123456.78")
		account := &models.Account{
			UserID:         user.ID,
			Name:           "Big Balance",
			AccountType:    "Savings",
			CurrentBalance: balance,
		}
		if err := store.CreateAccount(ctx, account); err != nil {
			t.Fatalf("CreateAccount failed: %v", err)
		}
		got, err := store.GetAccount(ctx, account.ID)
		if err != nil {
			t.Fatalf("GetAccount failed: %v", err)
		}
		if !got.CurrentBalance.Equal(balance) {
			t.Errorf("CurrentBalance = %s, want %s", got.CurrentBalance, balance)
		}
	})

	t.Run("negative balances round-trip", func(t *testing.T) {
		balance := decimal.RequireFromString("-2500.00")
		account := &models.Account{
			UserID:         user.ID,
			Name:           "Credit Card",
			AccountType:    "Credit Card",
			CurrentBalance: balance,
		}
		if err := store.CreateAccount(ctx, account); err != nil {
			t.Fatalf("CreateAccount failed: %v", err)
		}
		got, err := store.GetAccount(ctx, account.ID)
		if err != nil {
			t.Fatalf("GetAccount failed: %v", err)
		}
		if !got.CurrentBalance.Equal(balance) {
			t.Errorf("CurrentBalance = %s, want %s", got.CurrentBalance, balance)
		}
	})

	t.Run("unset flags default to true on insert", func(t *testing.T) {
		account := &models.Account{
			UserID:      user.ID,
			Name:        "Fresh",
			AccountType: "Checking",
		}
		if err := store.CreateAccount(ctx, account); err != nil {
			t.Fatalf("CreateAccount failed: %v", err)
		}
		got, err := store.GetAccount(ctx, account.ID)
		if err != nil {
			t.Fatalf("GetAccount failed: %v", err)
		}
		if got.IncludeInForecast == nil || !*got.IncludeInForecast {
			t.Error("IncludeInForecast must default to true")
		}
		if got.IsActive == nil || !*got.IsActive {
			t.Error("IsActive must default to true")
		}
	})

	t.Run("explicit false flags are preserved", func(t *testing.T) {
		inactive := false
		account := &models.Account{
			UserID:            user.ID,
			Name:              "Closed",
			AccountType:       "Savings",
			IncludeInForecast: &inactive,
			IsActive:          &inactive,
		}
		if err := store.CreateAccount(ctx, account); err != nil {
			t.Fatalf("CreateAccount failed: %v", err)
		}
		got, err := store.GetAccount(ctx, account.ID)
		if err != nil {
			t.Fatalf("GetAccount failed: %v", err)
		}
		if *got.IncludeInForecast || *got.IsActive {
			t.Error("explicit false flags must survive the insert defaults")
		}
	})

	t.Run("List returns the user's accounts", func(t *testing.T) {
		got, err := store.ListAccounts(ctx, user.ID)
		if err != nil {
			t.Fatalf("ListAccounts failed: %v", err)
		}
		if len(got) != 4 {
			t.Errorf("ListAccounts returned %d accounts, want 4", len(got))
		}
	})
}

func TestTransactionStore(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	user := mustCreateUser(t, store, "txns@example.com")
	account := mustCreateAccount(t, store, user.ID, "Checking")

	t.Run("List orders by date descending", func(t *testing.T) {
		dates := []time.Time{
			testNow.AddDate(0, 0, -5),
			testNow.AddDate(0, 0, -1),
			// Same second as the previous entry but fractionally later,
			// to pin sub-second ordering of the stored TEXT.
			testNow.AddDate(0, 0, -1).Add(250 * time.Millisecond),
			testNow.AddDate(0, 0, -10),
		}
		for i, date := range dates {
			txn := &models.Transaction{
				AccountID:   account.ID,
				Amount:      decimal.NewFromInt(int64(i + 1)),
				Date:        date,
				Description: "Entry",
			}
			if err := store.CreateTransaction(ctx, txn); err != nil {
				t.Fatalf("CreateTransaction failed: %v", err)
			}
		}

		got, err := store.ListTransactions(ctx, account.ID)
		if err != nil {
			t.Fatalf("ListTransactions failed: %v", err)
		}
		if len(got) != 4 {
			t.Fatalf("ListTransactions returned %d rows, want 4", len(got))
		}
		for i := 1; i < len(got); i++ {
			if got[i].Date.After(got[i-1].Date) {
				t.Errorf("transactions out of order at %d: %v after %v", i, got[i].Date, got[i-1].Date)
			}
		}
	})

	t.Run("empty description is rejected", func(t *testing.T) {
		txn := &models.Transaction{
			AccountID: account.ID,
			Amount:    decimal.NewFromInt(1),
			Date:      testNow,
		}
		if err := store.CreateTransaction(ctx, txn); !errors.Is(err, storage.ErrRequiredFieldMissing) {
			t.Fatalf("CreateTransaction error = %v, want ErrRequiredFieldMissing", err)
		}
	})

	t.Run("link to a missing bill is rejected", func(t *testing.T) {
		missing := uuid.New()
		txn := &models.Transaction{
			AccountID:   account.ID,
			Amount:      decimal.NewFromInt(1),
			Date:        testNow,
			Description: "Bad link",
			BillID:      &missing,
		}
		if err := store.CreateTransaction(ctx, txn); !errors.Is(err, storage.ErrForeignKeyViolation) {
			t.Fatalf("CreateTransaction error = %v, want ErrForeignKeyViolation", err)
		}
	})
}

func TestDeletionPolicy(t *testing.T) {
	ctx := context.Background()

	t.Run("deleting a user cascades to everything they own", func(t *testing.T) {
		store := newTestStore(t)
		user := mustCreateUser(t, store, "cascade@example.com")
		account := mustCreateAccount(t, store, user.ID, "Checking")

		bill := &models.Bill{
			UserID: user.ID, Name: "Rent", Amount: decimal.NewFromInt(2000),
			Frequency: models.BillMonthly, NextDueDate: testNow, IsActive: true,
		}
		if err := store.CreateBill(ctx, bill); err != nil {
			t.Fatalf("CreateBill failed: %v", err)
		}
		txn := &models.Transaction{
			AccountID: account.ID, Amount: decimal.NewFromInt(-100),
			Date: testNow, Description: "Groceries",
		}
		if err := store.CreateTransaction(ctx, txn); err != nil {
			t.Fatalf("CreateTransaction failed: %v", err)
		}
		alert := &models.Alert{UserID: user.ID, Title: "Heads up", Message: "Cash is tight"}
		if err := store.CreateAlert(ctx, alert); err != nil {
			t.Fatalf("CreateAlert failed: %v", err)
		}
		setting := &models.Setting{UserID: user.ID, Key: "DashboardRefreshTime", Value: "08:00"}
		if err := store.CreateSetting(ctx, setting); err != nil {
			t.Fatalf("CreateSetting failed: %v", err)
		}

		if err := store.DeleteUser(ctx, user.ID); err != nil {
			t.Fatalf("DeleteUser failed: %v", err)
		}

		counts, err := store.Counts(ctx)
		if err != nil {
			t.Fatalf("Counts failed: %v", err)
		}
		if counts != (storage.Counts{}) {
			t.Errorf("expected empty database after user cascade, got %+v", counts)
		}
	})

	t.Run("deleting an account cascades transactions and income streams", func(t *testing.T) {
		store := newTestStore(t)
		user := mustCreateUser(t, store, "cascade2@example.com")
		account := mustCreateAccount(t, store, user.ID, "Checking")

		stream := &models.IncomeStream{
			UserID: user.ID, Name: "Salary", TypicalAmount: decimal.NewFromInt(6000),
			Frequency: models.IncomeSemiMonthly, AccountID: account.ID, IsActive: true,
		}
		if err := store.CreateIncomeStream(ctx, stream); err != nil {
			t.Fatalf("CreateIncomeStream failed: %v", err)
		}
		txn := &models.Transaction{
			AccountID: account.ID, Amount: decimal.NewFromInt(6000),
			Date: testNow, Description: "Salary Deposit",
		}
		if err := store.CreateTransaction(ctx, txn); err != nil {
			t.Fatalf("CreateTransaction failed: %v", err)
		}

		if err := store.DeleteAccount(ctx, account.ID); err != nil {
			t.Fatalf("DeleteAccount failed: %v", err)
		}

		if _, err := store.GetTransaction(ctx, txn.ID); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("GetTransaction after cascade = %v, want ErrNotFound", err)
		}
		if _, err := store.GetIncomeStream(ctx, stream.ID); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("GetIncomeStream after cascade = %v, want ErrNotFound", err)
		}
		if _, err := store.GetUser(ctx, user.ID); err != nil {
			t.Errorf("user must survive account deletion, got %v", err)
		}
	})

	t.Run("deleting a bill clears transaction links but keeps the rows", func(t *testing.T) {
		store := newTestStore(t)
		user := mustCreateUser(t, store, "nullify@example.com")
		account := mustCreateAccount(t, store, user.ID, "Checking")

		bill := &models.Bill{
			UserID: user.ID, Name: "Electric", Amount: decimal.NewFromInt(150),
			Frequency: models.BillMonthly, NextDueDate: testNow,
			DefaultAccountID: &account.ID, IsActive: true,
		}
		if err := store.CreateBill(ctx, bill); err != nil {
			t.Fatalf("CreateBill failed: %v", err)
		}
		txn := &models.Transaction{
			AccountID: account.ID, Amount: decimal.NewFromInt(-150),
			Date: testNow, Description: "Electric Bill", BillID: &bill.ID,
		}
		if err := store.CreateTransaction(ctx, txn); err != nil {
			t.Fatalf("CreateTransaction failed: %v", err)
		}

		if err := store.DeleteBill(ctx, bill.ID); err != nil {
			t.Fatalf("DeleteBill failed: %v", err)
		}

		got, err := store.GetTransaction(ctx, txn.ID)
		if err != nil {
			t.Fatalf("transaction must survive bill deletion: %v", err)
		}
		if got.BillID != nil {
			t.Errorf("BillID = %v, want nil after bill deletion", got.BillID)
		}
	})

	t.Run("deleting an account clears bill default-account links", func(t *testing.T) {
		store := newTestStore(t)
		user := mustCreateUser(t, store, "nullify2@example.com")
		account := mustCreateAccount(t, store, user.ID, "Checking")

		bill := &models.Bill{
			UserID: user.ID, Name: "Internet", Amount: decimal.NewFromInt(80),
			Frequency: models.BillMonthly, NextDueDate: testNow,
			DefaultAccountID: &account.ID, IsActive: true,
		}
		if err := store.CreateBill(ctx, bill); err != nil {
			t.Fatalf("CreateBill failed: %v", err)
		}

		if err := store.DeleteAccount(ctx, account.ID); err != nil {
			t.Fatalf("DeleteAccount failed: %v", err)
		}

		got, err := store.GetBill(ctx, bill.ID)
		if err != nil {
			t.Fatalf("bill must survive account deletion: %v", err)
		}
		if got.DefaultAccountID != nil {
			t.Errorf("DefaultAccountID = %v, want nil after account deletion", got.DefaultAccountID)
		}
	})

	t.Run("deleting a goal cascades links and clears transaction references", func(t *testing.T) {
		store := newTestStore(t)
		user := mustCreateUser(t, store, "goalcascade@example.com")
		account := mustCreateAccount(t, store, user.ID, "Savings")

		goal := &models.Goal{
			UserID: user.ID, Name: "Emergency Fund",
			TargetAmount: decimal.NewFromInt(20000), CurrentAmount: decimal.NewFromInt(15000),
			TargetDate: testNow.AddDate(1, 0, 0), FundingStrategy: models.FundingSurplus,
			IsActive: true,
		}
		if err := store.CreateGoal(ctx, goal); err != nil {
			t.Fatalf("CreateGoal failed: %v", err)
		}
		link := &models.GoalAccount{GoalID: goal.ID, AccountID: account.ID}
		if err := store.LinkGoalAccount(ctx, link); err != nil {
			t.Fatalf("LinkGoalAccount failed: %v", err)
		}
		txn := &models.Transaction{
			AccountID: account.ID, Amount: decimal.NewFromInt(500),
			Date: testNow, Description: "Contribution", GoalID: &goal.ID,
		}
		if err := store.CreateTransaction(ctx, txn); err != nil {
			t.Fatalf("CreateTransaction failed: %v", err)
		}

		if err := store.DeleteGoal(ctx, goal.ID); err != nil {
			t.Fatalf("DeleteGoal failed: %v", err)
		}

		links, err := store.ListGoalAccounts(ctx, goal.ID)
		if err != nil {
			t.Fatalf("ListGoalAccounts failed: %v", err)
		}
		if len(links) != 0 {
			t.Errorf("goal-account links must cascade, %d remain", len(links))
		}
		got, err := store.GetTransaction(ctx, txn.ID)
		if err != nil {
			t.Fatalf("transaction must survive goal deletion: %v", err)
		}
		if got.GoalID != nil {
			t.Errorf("GoalID = %v, want nil after goal deletion", got.GoalID)
		}
	})
}

func TestGoalContributions(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	user := mustCreateUser(t, store, "goals@example.com")

	goal := &models.Goal{
		UserID: user.ID, Name: "Emergency Fund",
		TargetAmount:    decimal.NewFromInt(20000),
		CurrentAmount:   decimal.RequireFromString("19800"),
		TargetDate:      testNow.AddDate(1, 0, 0),
		FundingStrategy: models.FundingSurplus,
		IsActive:        true,
	}
	if err := store.CreateGoal(ctx, goal); err != nil {
		t.Fatalf("CreateGoal failed: %v", err)
	}

	t.Run("overshoot is clamped at the target", func(t *testing.T) {
		applied, remainder, err := store.AddGoalContribution(ctx, goal.ID, decimal.NewFromInt(500))
		if err != nil {
			t.Fatalf("AddGoalContribution failed: %v", err)
		}
		if !applied.Equal(decimal.NewFromInt(200)) {
			t.Errorf("applied = %s, want 200", applied)
		}
		if !remainder.Equal(decimal.NewFromInt(300)) {
			t.Errorf("remainder = %s, want 300", remainder)
		}

		got, err := store.GetGoal(ctx, goal.ID)
		if err != nil {
			t.Fatalf("GetGoal failed: %v", err)
		}
		if !got.CurrentAmount.Equal(got.TargetAmount) {
			t.Errorf("CurrentAmount = %s, want clamped at target %s", got.CurrentAmount, got.TargetAmount)
		}
	})

	t.Run("contribution to a full goal applies nothing", func(t *testing.T) {
		applied, remainder, err := store.AddGoalContribution(ctx, goal.ID, decimal.NewFromInt(100))
		if err != nil {
			t.Fatalf("AddGoalContribution failed: %v", err)
		}
		if !applied.IsZero() {
			t.Errorf("applied = %s, want 0", applied)
		}
		if !remainder.Equal(decimal.NewFromInt(100)) {
			t.Errorf("remainder = %s, want 100", remainder)
		}
	})

	t.Run("negative contribution is rejected", func(t *testing.T) {
		if _, _, err := store.AddGoalContribution(ctx, goal.ID, decimal.NewFromInt(-50)); err == nil {
			t.Fatal("AddGoalContribution accepted a negative amount")
		}
	})

	t.Run("unknown goal surfaces ErrNotFound", func(t *testing.T) {
		if _, _, err := store.AddGoalContribution(ctx, uuid.New(), decimal.NewFromInt(10)); !errors.Is(err, storage.ErrNotFound) {
			t.Fatalf("AddGoalContribution error = %v, want ErrNotFound", err)
		}
	})
}

func TestGoalAccountLinks(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	user := mustCreateUser(t, store, "links@example.com")
	account := mustCreateAccount(t, store, user.ID, "Savings")

	goal := &models.Goal{
		UserID: user.ID, Name: "Vacation",
		TargetAmount: decimal.NewFromInt(5000), TargetDate: testNow.AddDate(0, 6, 0),
		FundingStrategy: models.FundingSurplus, IsActive: true,
	}
	if err := store.CreateGoal(ctx, goal); err != nil {
		t.Fatalf("CreateGoal failed: %v", err)
	}

	if err := store.LinkGoalAccount(ctx, &models.GoalAccount{GoalID: goal.ID, AccountID: account.ID}); err != nil {
		t.Fatalf("LinkGoalAccount failed: %v", err)
	}

	t.Run("duplicate pair is rejected", func(t *testing.T) {
		err := store.LinkGoalAccount(ctx, &models.GoalAccount{GoalID: goal.ID, AccountID: account.ID})
		if !errors.Is(err, storage.ErrUniquenessViolation) {
			t.Fatalf("LinkGoalAccount error = %v, want ErrUniquenessViolation", err)
		}
	})

	t.Run("unlink removes the pair", func(t *testing.T) {
		if err := store.UnlinkGoalAccount(ctx, goal.ID, account.ID); err != nil {
			t.Fatalf("UnlinkGoalAccount failed: %v", err)
		}
		links, err := store.ListGoalAccounts(ctx, goal.ID)
		if err != nil {
			t.Fatalf("ListGoalAccounts failed: %v", err)
		}
		if len(links) != 0 {
			t.Errorf("%d links remain after unlink", len(links))
		}
		if err := store.UnlinkGoalAccount(ctx, goal.ID, account.ID); !errors.Is(err, storage.ErrNotFound) {
			t.Fatalf("second unlink error = %v, want ErrNotFound", err)
		}
	})
}

func TestSettingStore(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	alice := mustCreateUser(t, store, "alice-settings@example.com")
	bob := mustCreateUser(t, store, "bob-settings@example.com")

	if err := store.CreateSetting(ctx, &models.Setting{UserID: alice.ID, Key: "AlertChannels.Email", Value: "true"}); err != nil {
		t.Fatalf("CreateSetting failed: %v", err)
	}

	t.Run("duplicate key for the same user is rejected", func(t *testing.T) {
		err := store.CreateSetting(ctx, &models.Setting{UserID: alice.ID, Key: "AlertChannels.Email", Value: "false"})
		if !errors.Is(err, storage.ErrUniquenessViolation) {
			t.Fatalf("CreateSetting error = %v, want ErrUniquenessViolation", err)
		}
	})

	t.Run("same key for another user is fine", func(t *testing.T) {
		if err := store.CreateSetting(ctx, &models.Setting{UserID: bob.ID, Key: "AlertChannels.Email", Value: "false"}); err != nil {
			t.Fatalf("CreateSetting failed: %v", err)
		}
	})

	t.Run("lookup by user and key", func(t *testing.T) {
		got, err := store.GetSetting(ctx, alice.ID, "AlertChannels.Email")
		if err != nil {
			t.Fatalf("GetSetting failed: %v", err)
		}
		if got.Value != "true" {
			t.Errorf("Value = %q, want true", got.Value)
		}
	})

	t.Run("upsert inserts a missing key", func(t *testing.T) {
		setting := &models.Setting{UserID: alice.ID, Key: "DashboardRefreshTime", Value: "08:00"}
		if err := store.UpsertSetting(ctx, setting); err != nil {
			t.Fatalf("UpsertSetting failed: %v", err)
		}
		got, err := store.GetSetting(ctx, alice.ID, "DashboardRefreshTime")
		if err != nil {
			t.Fatalf("GetSetting failed: %v", err)
		}
		if got.Value != "08:00" {
			t.Errorf("Value = %q, want 08:00", got.Value)
		}
	})

	t.Run("upsert replaces an existing value in place", func(t *testing.T) {
		original, err := store.GetSetting(ctx, alice.ID, "DashboardRefreshTime")
		if err != nil {
			t.Fatalf("GetSetting failed: %v", err)
		}

		refresh := &models.Setting{UserID: alice.ID, Key: "DashboardRefreshTime", Value: "09:30"}
		if err := store.UpsertSetting(ctx, refresh); err != nil {
			t.Fatalf("UpsertSetting failed: %v", err)
		}
		if refresh.ID != original.ID {
			t.Errorf("upsert changed identity: ID %s -> %s", original.ID, refresh.ID)
		}
		if !refresh.CreatedAt.Equal(original.CreatedAt) {
			t.Errorf("CreatedAt moved: %v -> %v", original.CreatedAt, refresh.CreatedAt)
		}
		if !refresh.UpdatedAt.After(refresh.CreatedAt) {
			t.Errorf("UpdatedAt %v is not after CreatedAt %v", refresh.UpdatedAt, refresh.CreatedAt)
		}

		got, err := store.GetSetting(ctx, alice.ID, "DashboardRefreshTime")
		if err != nil {
			t.Fatalf("GetSetting failed: %v", err)
		}
		if got.Value != "09:30" {
			t.Errorf("Value = %q, want 09:30", got.Value)
		}

		count := 0
		settings, err := store.ListSettings(ctx, alice.ID)
		if err != nil {
			t.Fatalf("ListSettings failed: %v", err)
		}
		for _, st := range settings {
			if st.Key == "DashboardRefreshTime" {
				count++
			}
		}
		if count != 1 {
			t.Errorf("%d rows for the upserted key, want 1", count)
		}
	})
}

func TestAlertStore(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	user := mustCreateUser(t, store, "alerts@example.com")

	newAlert := func(t *testing.T, expiresAt *time.Time) *models.Alert {
		t.Helper()
		alert := &models.Alert{
			UserID:    user.ID,
			Type:      models.AlertCashShortfall,
			Severity:  models.SeverityWarning,
			Title:     "Cash shortfall ahead",
			Message:   "Projected balance drops below the safe minimum",
			ExpiresAt: expiresAt,
		}
		if err := store.CreateAlert(ctx, alert); err != nil {
			t.Fatalf("CreateAlert failed: %v", err)
		}
		return alert
	}

	t.Run("transition stamps state and timestamp atomically", func(t *testing.T) {
		alert := newAlert(t, nil)

		got, err := store.TransitionAlert(ctx, alert.ID, models.AlertAcknowledged, nil)
		if err != nil {
			t.Fatalf("TransitionAlert failed: %v", err)
		}
		if got.State != models.AlertAcknowledged {
			t.Errorf("State = %s, want Acknowledged", got.State)
		}
		if got.AcknowledgedAt == nil {
			t.Error("AcknowledgedAt not stamped")
		}
		if !got.UpdatedAt.After(got.CreatedAt) {
			t.Errorf("UpdatedAt %v is not after CreatedAt %v", got.UpdatedAt, got.CreatedAt)
		}

		persisted, err := store.GetAlert(ctx, alert.ID)
		if err != nil {
			t.Fatalf("GetAlert failed: %v", err)
		}
		if persisted.State != models.AlertAcknowledged || persisted.AcknowledgedAt == nil {
			t.Error("transition was not persisted")
		}
	})

	t.Run("snooze requires a future timestamp", func(t *testing.T) {
		alert := newAlert(t, nil)
		past := testNow.Add(-time.Hour)

		if _, err := store.TransitionAlert(ctx, alert.ID, models.AlertSnoozed, &past); !errors.Is(err, alerts.ErrInvalidStateTransition) {
			t.Fatalf("TransitionAlert error = %v, want ErrInvalidStateTransition", err)
		}

		future := testNow.Add(48 * time.Hour)
		got, err := store.TransitionAlert(ctx, alert.ID, models.AlertSnoozed, &future)
		if err != nil {
			t.Fatalf("TransitionAlert failed: %v", err)
		}
		if got.SnoozedUntil == nil || !got.SnoozedUntil.Equal(future) {
			t.Errorf("SnoozedUntil = %v, want %v", got.SnoozedUntil, future)
		}
	})

	t.Run("resolve is idempotent", func(t *testing.T) {
		alert := newAlert(t, nil)

		first, err := store.TransitionAlert(ctx, alert.ID, models.AlertResolved, nil)
		if err != nil {
			t.Fatalf("TransitionAlert failed: %v", err)
		}
		again, err := store.TransitionAlert(ctx, alert.ID, models.AlertResolved, nil)
		if err != nil {
			t.Fatalf("repeated resolve failed: %v", err)
		}
		if !again.ResolvedAt.Equal(*first.ResolvedAt) {
			t.Errorf("ResolvedAt moved on repeated resolve: %v vs %v", again.ResolvedAt, first.ResolvedAt)
		}
		if _, err := store.TransitionAlert(ctx, alert.ID, models.AlertAcknowledged, nil); !errors.Is(err, alerts.ErrInvalidStateTransition) {
			t.Fatalf("acknowledge after resolve = %v, want ErrInvalidStateTransition", err)
		}
	})

	t.Run("expired alerts are hidden at read time", func(t *testing.T) {
		scoped := mustCreateUser(t, store, "expiry@example.com")
		lapsed := testNow.Add(-time.Hour)
		upcoming := testNow.Add(time.Hour)

		expired := &models.Alert{UserID: scoped.ID, Title: "Old", Message: "m", ExpiresAt: &lapsed}
		live := &models.Alert{UserID: scoped.ID, Title: "Live", Message: "m", ExpiresAt: &upcoming}
		for _, a := range []*models.Alert{expired, live} {
			if err := store.CreateAlert(ctx, a); err != nil {
				t.Fatalf("CreateAlert failed: %v", err)
			}
		}

		visible, err := store.ListAlerts(ctx, scoped.ID, storage.ListAlertsOptions{})
		if err != nil {
			t.Fatalf("ListAlerts failed: %v", err)
		}
		if len(visible) != 1 || visible[0].ID != live.ID {
			t.Errorf("default listing = %d alerts, want only the live one", len(visible))
		}

		all, err := store.ListAlerts(ctx, scoped.ID, storage.ListAlertsOptions{IncludeExpired: true})
		if err != nil {
			t.Fatalf("ListAlerts failed: %v", err)
		}
		if len(all) != 2 {
			t.Errorf("IncludeExpired listing = %d alerts, want 2", len(all))
		}

		// Expiry never mutates the row.
		got, err := store.GetAlert(ctx, expired.ID)
		if err != nil {
			t.Fatalf("GetAlert failed: %v", err)
		}
		if got.State != models.AlertNew {
			t.Errorf("expired alert state = %s, want untouched New", got.State)
		}
	})

	t.Run("resolved alerts stay visible past expiry", func(t *testing.T) {
		scoped := mustCreateUser(t, store, "resolved-expiry@example.com")
		lapsed := testNow.Add(-time.Hour)

		alert := &models.Alert{UserID: scoped.ID, Title: "Done", Message: "m", ExpiresAt: &lapsed}
		if err := store.CreateAlert(ctx, alert); err != nil {
			t.Fatalf("CreateAlert failed: %v", err)
		}
		if _, err := store.TransitionAlert(ctx, alert.ID, models.AlertResolved, nil); err != nil {
			t.Fatalf("TransitionAlert failed: %v", err)
		}

		visible, err := store.ListAlerts(ctx, scoped.ID, storage.ListAlertsOptions{})
		if err != nil {
			t.Fatalf("ListAlerts failed: %v", err)
		}
		if len(visible) != 1 {
			t.Errorf("resolved alert hidden by expiry filter, got %d alerts", len(visible))
		}
	})

	t.Run("state filter narrows the listing", func(t *testing.T) {
		scoped := mustCreateUser(t, store, "filter@example.com")

		open := &models.Alert{UserID: scoped.ID, Title: "Open", Message: "m"}
		done := &models.Alert{UserID: scoped.ID, Title: "Done", Message: "m"}
		for _, a := range []*models.Alert{open, done} {
			if err := store.CreateAlert(ctx, a); err != nil {
				t.Fatalf("CreateAlert failed: %v", err)
			}
		}
		if _, err := store.TransitionAlert(ctx, done.ID, models.AlertResolved, nil); err != nil {
			t.Fatalf("TransitionAlert failed: %v", err)
		}

		got, err := store.ListAlerts(ctx, scoped.ID, storage.ListAlertsOptions{
			States: []models.AlertState{models.AlertNew, models.AlertAcknowledged, models.AlertSnoozed},
		})
		if err != nil {
			t.Fatalf("ListAlerts failed: %v", err)
		}
		if len(got) != 1 || got[0].ID != open.ID {
			t.Errorf("state filter returned %d alerts, want the open one only", len(got))
		}
	})
}

func TestForecastSnapshotStore(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	user := mustCreateUser(t, store, "snapshots@example.com")

	runway := 12
	put := func(t *testing.T, generatedAt time.Time, data string) *models.ForecastSnapshot {
		t.Helper()
		snap := &models.ForecastSnapshot{
			UserID:       user.ID,
			Domain:       models.DomainPersonal,
			HorizonDays:  30,
			GeneratedAt:  generatedAt,
			StartDate:    testNow,
			EndDate:      testNow.AddDate(0, 0, 30),
			ForecastData: data,
			RunwayDays:   &runway,
			Status:       models.StatusYellow,
		}
		if err := store.PutForecastSnapshot(ctx, snap); err != nil {
			t.Fatalf("PutForecastSnapshot failed: %v", err)
		}
		return snap
	}

	t.Run("latest by GeneratedAt wins", func(t *testing.T) {
		put(t, testNow.Add(-2*time.Hour), "old")
		latest := put(t, testNow.Add(-time.Hour), "new")

		got, err := store.LatestForecastSnapshot(ctx, user.ID, models.DomainPersonal, 30)
		if err != nil {
			t.Fatalf("LatestForecastSnapshot failed: %v", err)
		}
		if got.ID != latest.ID {
			t.Errorf("got snapshot %s, want latest %s", got.ID, latest.ID)
		}
		if got.ForecastData != "new" {
			t.Errorf("ForecastData = %q, want new", got.ForecastData)
		}
		if got.RunwayDays == nil || *got.RunwayDays != runway {
			t.Errorf("RunwayDays = %v, want %d", got.RunwayDays, runway)
		}
	})

	t.Run("latest wins across sub-second gaps", func(t *testing.T) {
		// A whole-second and a fractional timestamp inside the same second;
		// the stored TEXT must still order these chronologically.
		put(t, testNow.Add(time.Hour), "on the second")
		newest := put(t, testNow.Add(time.Hour).Add(500*time.Millisecond), "half a second later")

		got, err := store.LatestForecastSnapshot(ctx, user.ID, models.DomainPersonal, 30)
		if err != nil {
			t.Fatalf("LatestForecastSnapshot failed: %v", err)
		}
		if got.ID != newest.ID {
			t.Errorf("got snapshot generated %v, want the one from %v", got.GeneratedAt, newest.GeneratedAt)
		}
	})

	t.Run("missing key surfaces ErrNotFound", func(t *testing.T) {
		if _, err := store.LatestForecastSnapshot(ctx, user.ID, models.DomainBusiness, 30); !errors.Is(err, storage.ErrNotFound) {
			t.Fatalf("LatestForecastSnapshot error = %v, want ErrNotFound", err)
		}
	})
}

func TestCounts(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	user := mustCreateUser(t, store, "counts@example.com")
	mustCreateAccount(t, store, user.ID, "Checking")
	mustCreateAccount(t, store, user.ID, "Savings")

	counts, err := store.Counts(ctx)
	if err != nil {
		t.Fatalf("Counts failed: %v", err)
	}
	if counts.Users != 1 {
		t.Errorf("Users = %d, want 1", counts.Users)
	}
	if counts.Accounts != 2 {
		t.Errorf("Accounts = %d, want 2", counts.Accounts)
	}
	if counts.Transactions != 0 {
		t.Errorf("Transactions = %d, want 0", counts.Transactions)
	}
}
