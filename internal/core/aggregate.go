package core

import "sort"

type (
	// CategoryAmount is an amount aggregated by category name.
	CategoryAmount struct {
		Category string `json:"category"`
		Amount   Money  `json:"amount"`
	}

	// BudgetStatus describes one category's spend against its configured
	// ceiling. Percent is capped at 100 so progress bars stay bounded;
	// callers that need to flag overspend use Overspent instead.
	BudgetStatus struct {
		Spent   Money   `json:"spent"`
		Limit   Money   `json:"limit"`
		Percent float64 `json:"percent"`
	}

	// Summary is the full aggregate record for one active window: every
	// number and grouping the dashboard displays.
	Summary struct {
		TotalIncome   Money `json:"total_income"`
		TotalExpenses Money `json:"total_expenses"`
		Balance       Money `json:"balance"`

		// CategorySpend holds absolute expense sums for each category that
		// appears among active expense entries, orphaned categories included.
		CategorySpend map[string]Money `json:"category_spend"`

		// BudgetUtilization has one entry per category known to the budget
		// limit configuration, whether or not it saw any spend.
		BudgetUtilization map[string]BudgetStatus `json:"budget_utilization"`

		// GoalProgress is the active-window balance measured against the
		// savings goal, capped at 100. The numerator deliberately equals
		// the window balance rather than a cumulative savings figure.
		GoalProgress float64 `json:"goal_progress"`

		// SpendSeries is CategorySpend flattened for chart rendering:
		// sorted by amount descending (ties by name), zero-spend omitted.
		SpendSeries []CategoryAmount `json:"spend_series"`
	}
)

// Overspent reports whether spend exceeded a configured positive limit.
func (b BudgetStatus) Overspent() bool {
	return b.Limit.Cents > 0 && b.Spent.Cents > b.Limit.Cents
}

// Summarize derives the aggregate record from the active transaction subset
// and the user's settings. It is a total function: any list of valid
// transactions produces a Summary, an empty list produces zeros and empty
// (non-nil) maps, and zero limits or a zero goal yield 0% rather than a
// division error.
func Summarize(active []Transaction, settings Settings) Summary {
	s := Summary{
		CategorySpend:     make(map[string]Money),
		BudgetUtilization: make(map[string]BudgetStatus),
		SpendSeries:       []CategoryAmount{},
	}

	for _, t := range active {
		switch {
		case t.IsIncome():
			s.TotalIncome = s.TotalIncome.Add(t.Amount)
		case t.IsExpense():
			spent := t.Amount.Abs()
			s.TotalExpenses = s.TotalExpenses.Add(spent)
			s.CategorySpend[t.Category] = s.CategorySpend[t.Category].Add(spent)
		}
		// Zero-amount entries contribute to nothing.
	}
	s.Balance = s.TotalIncome.Sub(s.TotalExpenses)

	for category, limit := range settings.BudgetLimits {
		spent := s.CategorySpend[category]
		s.BudgetUtilization[category] = BudgetStatus{
			Spent:   spent,
			Limit:   limit,
			Percent: cappedPercent(spent.Cents, limit.Cents),
		}
	}

	s.GoalProgress = cappedPercent(s.Balance.Cents, settings.SavingsGoal.Cents)

	for category, amount := range s.CategorySpend {
		if amount.IsZero() {
			continue
		}
		s.SpendSeries = append(s.SpendSeries, CategoryAmount{Category: category, Amount: amount})
	}
	sort.Slice(s.SpendSeries, func(i, j int) bool {
		if s.SpendSeries[i].Amount.Cents != s.SpendSeries[j].Amount.Cents {
			return s.SpendSeries[i].Amount.Cents > s.SpendSeries[j].Amount.Cents
		}
		return s.SpendSeries[i].Category < s.SpendSeries[j].Category
	})

	return s
}

// cappedPercent computes numerator/denominator as a percentage capped at
// 100. A non-positive denominator means "not configured" and yields 0.
// A negative numerator (a window in the red against a goal) stays negative,
// exactly as the original dashboard computed it.
func cappedPercent(numerator, denominator int64) float64 {
	if denominator <= 0 {
		return 0
	}
	percent := float64(numerator) / float64(denominator) * 100
	if percent > 100 {
		return 100
	}
	return percent
}
