package models

// FinancialDomain partitions a user's finances into personal and business,
// used to scope forecasts and reporting.
type FinancialDomain int

const (
	DomainPersonal FinancialDomain = 0
	DomainBusiness FinancialDomain = 1
)

func (d FinancialDomain) String() string {
	switch d {
	case DomainPersonal:
		return "Personal"
	case DomainBusiness:
		return "Business"
	}
	return "Unknown"
}

// BillFrequency is how often a recurring bill comes due.
type BillFrequency int

const (
	BillWeekly    BillFrequency = 0
	BillBiWeekly  BillFrequency = 1
	BillMonthly   BillFrequency = 2
	BillQuarterly BillFrequency = 3
	BillAnnually  BillFrequency = 4
)

func (f BillFrequency) String() string {
	switch f {
	case BillWeekly:
		return "Weekly"
	case BillBiWeekly:
		return "BiWeekly"
	case BillMonthly:
		return "Monthly"
	case BillQuarterly:
		return "Quarterly"
	case BillAnnually:
		return "Annually"
	}
	return "Unknown"
}

// IncomeFrequency is how often an income stream pays out.
type IncomeFrequency int

const (
	IncomeWeekly      IncomeFrequency = 0
	IncomeBiWeekly    IncomeFrequency = 1
	IncomeSemiMonthly IncomeFrequency = 2
	IncomeMonthly     IncomeFrequency = 3
	IncomeIrregular   IncomeFrequency = 4
)

func (f IncomeFrequency) String() string {
	switch f {
	case IncomeWeekly:
		return "Weekly"
	case IncomeBiWeekly:
		return "BiWeekly"
	case IncomeSemiMonthly:
		return "SemiMonthly"
	case IncomeMonthly:
		return "Monthly"
	case IncomeIrregular:
		return "Irregular"
	}
	return "Unknown"
}

// GoalFundingStrategy selects how a goal's periodic contribution is computed.
type GoalFundingStrategy int

const (
	// FundingFixedAmount contributes FixedContributionAmount per period.
	FundingFixedAmount GoalFundingStrategy = 0
	// FundingPercentOfIncome contributes PercentOfIncome% of the period's income.
	FundingPercentOfIncome GoalFundingStrategy = 1
	// FundingSurplus contributes whatever remains after bills, safe minimums,
	// and higher-priority goals have claimed their share.
	FundingSurplus GoalFundingStrategy = 2
)

func (s GoalFundingStrategy) String() string {
	switch s {
	case FundingFixedAmount:
		return "FixedAmount"
	case FundingPercentOfIncome:
		return "PercentOfIncome"
	case FundingSurplus:
		return "Surplus"
	}
	return "Unknown"
}

// AlertType classifies what a generated alert is about.
type AlertType int

const (
	AlertCashShortfall AlertType = 0
	AlertBillRisk      AlertType = 1
	AlertIncomeDelayed AlertType = 2
	AlertGoalRisk      AlertType = 3
	AlertLowBalance    AlertType = 4
)

func (t AlertType) String() string {
	switch t {
	case AlertCashShortfall:
		return "CashShortfall"
	case AlertBillRisk:
		return "BillRisk"
	case AlertIncomeDelayed:
		return "IncomeDelayed"
	case AlertGoalRisk:
		return "GoalRisk"
	case AlertLowBalance:
		return "LowBalance"
	}
	return "Unknown"
}

// AlertSeverity is the urgency level of an alert.
type AlertSeverity int

const (
	SeverityInfo     AlertSeverity = 0
	SeverityWarning  AlertSeverity = 1
	SeverityCritical AlertSeverity = 2
)

func (s AlertSeverity) String() string {
	switch s {
	case SeverityInfo:
		return "Info"
	case SeverityWarning:
		return "Warning"
	case SeverityCritical:
		return "Critical"
	}
	return "Unknown"
}

// AlertState is the lifecycle state of an alert instance.
// Resolved is terminal; recurrence creates a fresh alert.
type AlertState int

const (
	AlertNew          AlertState = 0
	AlertAcknowledged AlertState = 1
	AlertSnoozed      AlertState = 2
	AlertResolved     AlertState = 3
)

func (s AlertState) String() string {
	switch s {
	case AlertNew:
		return "New"
	case AlertAcknowledged:
		return "Acknowledged"
	case AlertSnoozed:
		return "Snoozed"
	case AlertResolved:
		return "Resolved"
	}
	return "Unknown"
}

// StatusIndicator is the traffic-light health rating of a forecast.
type StatusIndicator int

const (
	StatusGreen  StatusIndicator = 0
	StatusYellow StatusIndicator = 1
	StatusRed    StatusIndicator = 2
)

func (s StatusIndicator) String() string {
	switch s {
	case StatusGreen:
		return "Green"
	case StatusYellow:
		return "Yellow"
	case StatusRed:
		return "Red"
	}
	return "Unknown"
}
