// Package seed populates an empty database with a realistic development
// data set: one user with five accounts across both domains, six bills, two
// income streams, three goals with their account links, a month of
// transactions, and five settings.
package seed

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/moneymatters/backend/internal/models"
	"github.com/moneymatters/backend/internal/storage"
)

// Run seeds the store once. Idempotency is guarded on any User existing:
// rerunning against a seeded (or otherwise populated) database is a no-op.
// now anchors all relative dates so runs are reproducible under test.
func Run(ctx context.Context, store storage.Store, now time.Time) error {
	now = now.UTC()

	users, err := store.ListUsers(ctx)
	if err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	if len(users) > 0 {
		slog.Debug("Seed skipped, users already present", "count", len(users))
		return nil
	}

	user := &models.User{
		Email:                      "dev@moneymatters.local",
		Name:                       "Development User",
		TimeZone:                   "America/New_York",
		DefaultForecastHorizonDays: 30,
	}
	if err := store.CreateUser(ctx, user); err != nil {
		return fmt.Errorf("seed user: %w", err)
	}

	accounts, err := seedAccounts(ctx, store, user)
	if err != nil {
		return err
	}
	bills, err := seedBills(ctx, store, user, accounts, now)
	if err != nil {
		return err
	}
	streams, err := seedIncomeStreams(ctx, store, user, accounts, now)
	if err != nil {
		return err
	}
	goals, err := seedGoals(ctx, store, user, accounts, now)
	if err != nil {
		return err
	}
	if err := seedTransactions(ctx, store, accounts, bills, streams, goals, now); err != nil {
		return err
	}
	if err := seedSettings(ctx, store, user); err != nil {
		return err
	}

	slog.Info("Seeded development data", "user", user.Email)
	return nil
}

func money(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type accountSet struct {
	personalChecking *models.Account
	personalSavings  *models.Account
	businessChecking *models.Account
	businessSavings  *models.Account
	creditCard       *models.Account
}

func seedAccounts(ctx context.Context, store storage.Store, user *models.User) (*accountSet, error) {
	set := &accountSet{
		personalChecking: &models.Account{
			UserID: user.ID, Name: "Personal Checking", Institution: "Chase Bank",
			AccountType: "Checking", Domain: models.DomainPersonal,
			CurrentBalance: money("5000"), SafeMinimumBalance: money("1000"),
		},
		personalSavings: &models.Account{
			UserID: user.ID, Name: "Personal Savings", Institution: "Chase Bank",
			AccountType: "Savings", Domain: models.DomainPersonal,
			CurrentBalance: money("15000"), SafeMinimumBalance: money("5000"),
		},
		businessChecking: &models.Account{
			UserID: user.ID, Name: "Business Checking", Institution: "Bank of America",
			AccountType: "Checking", Domain: models.DomainBusiness,
			CurrentBalance: money("25000"), SafeMinimumBalance: money("10000"),
		},
		businessSavings: &models.Account{
			UserID: user.ID, Name: "Business Savings", Institution: "Bank of America",
			AccountType: "Savings", Domain: models.DomainBusiness,
			CurrentBalance: money("50000"), SafeMinimumBalance: money("20000"),
		},
		creditCard: &models.Account{
			UserID: user.ID, Name: "Credit Card", Institution: "Chase",
			AccountType: "Credit Card", Domain: models.DomainPersonal,
			CurrentBalance: money("-2500"), SafeMinimumBalance: money("0"),
		},
	}
	for _, a := range []*models.Account{
		set.personalChecking, set.personalSavings, set.businessChecking,
		set.businessSavings, set.creditCard,
	} {
		if err := store.CreateAccount(ctx, a); err != nil {
			return nil, fmt.Errorf("seed account %q: %w", a.Name, err)
		}
	}
	return set, nil
}

type billSet struct {
	rent, electric, internet *models.Bill
}

func seedBills(ctx context.Context, store storage.Store, user *models.User, accounts *accountSet, now time.Time) (*billSet, error) {
	intp := func(v int) *int { return &v }
	firstOfNext := firstOfNextMonth(now)

	set := &billSet{
		rent: &models.Bill{
			UserID: user.ID, Name: "Rent", Amount: money("2000"),
			Frequency: models.BillMonthly, DayOfMonth: intp(1),
			NextDueDate: firstOfNext, Domain: models.DomainPersonal,
			DefaultAccountID: &accounts.personalChecking.ID,
			Priority:         1, IsActive: true,
		},
		electric: &models.Bill{
			UserID: user.ID, Name: "Electric Bill", Amount: money("150"),
			Frequency: models.BillMonthly, DayOfMonth: intp(15),
			NextDueDate: nextDueDate(now, 15), Domain: models.DomainPersonal,
			DefaultAccountID: &accounts.personalChecking.ID,
			Priority:         2, IsAutoPay: true, IsActive: true,
		},
		internet: &models.Bill{
			UserID: user.ID, Name: "Internet", Amount: money("80"),
			Frequency: models.BillMonthly, DayOfMonth: intp(10),
			NextDueDate: nextDueDate(now, 10), Domain: models.DomainPersonal,
			DefaultAccountID: &accounts.personalChecking.ID,
			Priority:         2, IsAutoPay: true, IsActive: true,
		},
	}
	phone := &models.Bill{
		UserID: user.ID, Name: "Phone Bill", Amount: money("60"),
		Frequency: models.BillMonthly, DayOfMonth: intp(5),
		NextDueDate: nextDueDate(now, 5), Domain: models.DomainPersonal,
		DefaultAccountID: &accounts.personalChecking.ID,
		Priority:         3, IsAutoPay: true, IsActive: true,
	}
	saas := &models.Bill{
		UserID: user.ID, Name: "SaaS Subscriptions", Amount: money("200"),
		Frequency: models.BillMonthly, DayOfMonth: intp(1),
		NextDueDate: firstOfNext, Domain: models.DomainBusiness,
		DefaultAccountID: &accounts.businessChecking.ID,
		Priority:         3, IsAutoPay: true, IsActive: true,
	}
	officeRent := &models.Bill{
		UserID: user.ID, Name: "Office Rent", Amount: money("1500"),
		Frequency: models.BillMonthly, DayOfMonth: intp(1),
		NextDueDate: firstOfNext, Domain: models.DomainBusiness,
		DefaultAccountID: &accounts.businessChecking.ID,
		Priority:         1, IsActive: true,
	}

	for _, b := range []*models.Bill{set.rent, set.electric, set.internet, phone, saas, officeRent} {
		if err := store.CreateBill(ctx, b); err != nil {
			return nil, fmt.Errorf("seed bill %q: %w", b.Name, err)
		}
	}
	return set, nil
}

type streamSet struct {
	salary *models.IncomeStream
}

func seedIncomeStreams(ctx context.Context, store storage.Store, user *models.User, accounts *accountSet, now time.Time) (*streamSet, error) {
	payday := nextSemiMonthlyPayday(now)
	windowStart := payday.AddDate(0, 0, -2)
	windowEnd := payday.AddDate(0, 0, 2)

	set := &streamSet{
		salary: &models.IncomeStream{
			UserID: user.ID, Name: "Salary", TypicalAmount: money("6000"),
			Frequency: models.IncomeSemiMonthly, Domain: models.DomainPersonal,
			AccountID:               accounts.personalChecking.ID,
			NextExpectedDate:        &payday,
			NextExpectedWindowStart: &windowStart,
			NextExpectedWindowEnd:   &windowEnd,
			IsActive:                true,
		},
	}
	clientRevenue := &models.IncomeStream{
		UserID: user.ID, Name: "Client Revenue", TypicalAmount: money("10000"),
		Frequency: models.IncomeIrregular, Domain: models.DomainBusiness,
		AccountID: accounts.businessChecking.ID,
		IsActive:  true,
	}

	for _, st := range []*models.IncomeStream{set.salary, clientRevenue} {
		if err := store.CreateIncomeStream(ctx, st); err != nil {
			return nil, fmt.Errorf("seed income stream %q: %w", st.Name, err)
		}
	}
	return set, nil
}

type goalSet struct {
	emergencyFund, newLaptop *models.Goal
}

func seedGoals(ctx context.Context, store storage.Store, user *models.User, accounts *accountSet, now time.Time) (*goalSet, error) {
	fixed500 := money("500")
	fixed300 := money("300")

	set := &goalSet{
		emergencyFund: &models.Goal{
			UserID: user.ID, Name: "Emergency Fund",
			TargetAmount: money("20000"), CurrentAmount: money("15000"),
			TargetDate: now.AddDate(1, 0, 0), Domain: models.DomainPersonal,
			FundingStrategy:         models.FundingFixedAmount,
			FixedContributionAmount: &fixed500,
			Priority:                1, IsActive: true,
		},
		newLaptop: &models.Goal{
			UserID: user.ID, Name: "New Laptop",
			TargetAmount: money("3000"), CurrentAmount: money("1000"),
			TargetDate: now.AddDate(0, 0, 90), Domain: models.DomainBusiness,
			FundingStrategy:         models.FundingFixedAmount,
			FixedContributionAmount: &fixed300,
			Priority:                2, IsActive: true,
		},
	}
	vacation := &models.Goal{
		UserID: user.ID, Name: "Vacation Fund",
		TargetAmount: money("5000"), CurrentAmount: money("1500"),
		TargetDate: now.AddDate(0, 6, 0), Domain: models.DomainPersonal,
		FundingStrategy: models.FundingSurplus,
		Priority:        3, IsActive: true,
	}

	for _, g := range []*models.Goal{set.emergencyFund, set.newLaptop, vacation} {
		if err := store.CreateGoal(ctx, g); err != nil {
			return nil, fmt.Errorf("seed goal %q: %w", g.Name, err)
		}
	}

	links := []*models.GoalAccount{
		{GoalID: set.emergencyFund.ID, AccountID: accounts.personalSavings.ID},
		{GoalID: set.newLaptop.ID, AccountID: accounts.businessSavings.ID},
		{GoalID: vacation.ID, AccountID: accounts.personalSavings.ID},
	}
	for _, l := range links {
		if err := store.LinkGoalAccount(ctx, l); err != nil {
			return nil, fmt.Errorf("seed goal account link: %w", err)
		}
	}
	return set, nil
}

func seedTransactions(ctx context.Context, store storage.Store, accounts *accountSet, bills *billSet, streams *streamSet, goals *goalSet, now time.Time) error {
	txns := []*models.Transaction{
		{
			AccountID: accounts.personalChecking.ID, Amount: money("6000"),
			Date: now.AddDate(0, 0, -15), Description: "Salary Deposit",
			Category: "Income", IncomeStreamID: &streams.salary.ID, IsReconciled: true,
		},
		{
			AccountID: accounts.personalChecking.ID, Amount: money("6000"),
			Date: now.AddDate(0, 0, -30), Description: "Salary Deposit",
			Category: "Income", IncomeStreamID: &streams.salary.ID, IsReconciled: true,
		},
		{
			AccountID: accounts.personalChecking.ID, Amount: money("-2000"),
			Date: now.AddDate(0, 0, -25), Description: "Rent Payment",
			Category: "Housing", BillID: &bills.rent.ID, IsReconciled: true,
		},
		{
			AccountID: accounts.personalChecking.ID, Amount: money("-150"),
			Date: now.AddDate(0, 0, -12), Description: "Electric Bill",
			Category: "Utilities", BillID: &bills.electric.ID, IsReconciled: true,
		},
		{
			AccountID: accounts.personalChecking.ID, Amount: money("-80"),
			Date: now.AddDate(0, 0, -18), Description: "Internet Bill",
			Category: "Utilities", BillID: &bills.internet.ID, IsReconciled: true,
		},
		{
			AccountID: accounts.personalSavings.ID, Amount: money("500"),
			Date: now.AddDate(0, 0, -15), Description: "Emergency Fund Contribution",
			Category: "Savings", GoalID: &goals.emergencyFund.ID, IsReconciled: true,
		},
		{
			AccountID: accounts.businessSavings.ID, Amount: money("300"),
			Date: now.AddDate(0, 0, -10), Description: "Laptop Fund Contribution",
			Category: "Savings", GoalID: &goals.newLaptop.ID, IsReconciled: true,
		},
		{
			AccountID: accounts.personalChecking.ID, Amount: money("-120"),
			Date: now.AddDate(0, 0, -5), Description: "Grocery Store",
			Category: "Food & Dining", IsReconciled: true,
		},
		{
			AccountID: accounts.creditCard.ID, Amount: money("-75"),
			Date: now.AddDate(0, 0, -3), Description: "Gas Station",
			Category: "Transportation", IsReconciled: true,
		},
	}
	for _, t := range txns {
		if err := store.CreateTransaction(ctx, t); err != nil {
			return fmt.Errorf("seed transaction %q: %w", t.Description, err)
		}
	}
	return nil
}

func seedSettings(ctx context.Context, store storage.Store, user *models.User) error {
	settings := []*models.Setting{
		{UserID: user.ID, Key: "AlertThreshold.CashShortfall", Value: "7"},
		{UserID: user.ID, Key: "AlertThreshold.BillRisk", Value: "5"},
		{UserID: user.ID, Key: "AlertChannels.Email", Value: "true"},
		{UserID: user.ID, Key: "AlertChannels.InApp", Value: "true"},
		{UserID: user.ID, Key: "DashboardRefreshTime", Value: "08:00"},
	}
	for _, st := range settings {
		if err := store.CreateSetting(ctx, st); err != nil {
			return fmt.Errorf("seed setting %q: %w", st.Key, err)
		}
	}
	return nil
}

func firstOfNextMonth(now time.Time) time.Time {
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	return first.AddDate(0, 1, 0)
}

// nextDueDate returns the next occurrence of dayOfMonth strictly after now,
// clamping to the month's last day for short months.
func nextDueDate(now time.Time, dayOfMonth int) time.Time {
	due := time.Date(now.Year(), now.Month(), min(dayOfMonth, daysInMonth(now.Year(), now.Month())), 0, 0, 0, 0, time.UTC)
	if !due.After(now) {
		next := now.AddDate(0, 1, 0)
		due = time.Date(next.Year(), next.Month(), min(dayOfMonth, daysInMonth(next.Year(), next.Month())), 0, 0, 0, 0, time.UTC)
	}
	return due
}

// nextSemiMonthlyPayday returns the next 15th or month-end payday on a
// semi-monthly schedule.
func nextSemiMonthlyPayday(now time.Time) time.Time {
	day := now.Day()
	last := daysInMonth(now.Year(), now.Month())
	switch {
	case day < 15:
		return time.Date(now.Year(), now.Month(), 15, 0, 0, 0, 0, time.UTC)
	case day < last:
		return time.Date(now.Year(), now.Month(), last, 0, 0, 0, 0, time.UTC)
	default:
		next := now.AddDate(0, 1, 0)
		return time.Date(next.Year(), next.Month(), 15, 0, 0, 0, 0, time.UTC)
	}
}

func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
