package reports

import "time"

// Pnl is a profit & loss summary for a date range, derived entirely from
// journal lines. Revenue is the negated balance of INCOME accounts,
// expenses the balance of EXPENSE accounts, so voided sales cancel out of
// both sides through their reversal entries.
type Pnl struct {
	From      time.Time `json:"from"`
	To        time.Time `json:"to"`
	Revenue   float64   `json:"revenue"`
	Expenses  float64   `json:"expenses"`
	NetProfit float64   `json:"net_profit"`
}

// pnlFromBalances folds per-type journal balances (debit minus credit)
// into a P&L. INCOME accounts carry credit balances, so revenue is the
// negated balance; EXPENSE accounts carry debit balances and are taken
// as-is.
func pnlFromBalances(from, to time.Time, balances map[string]float64) Pnl {
	pnl := Pnl{From: from, To: to}
	pnl.Revenue = -balances["INCOME"]
	pnl.Expenses = balances["EXPENSE"]
	pnl.NetProfit = pnl.Revenue - pnl.Expenses
	return pnl
}

// DailyRevenue is one day's order volume. NetRevenue is quantity times
// unit price summed over the day's lines; Revenue is the tax-inclusive
// line total.
type DailyRevenue struct {
	Date       time.Time `json:"date"`
	Orders     int64     `json:"orders"`
	NetRevenue float64   `json:"net_revenue"`
	Tax        float64   `json:"tax"`
	Revenue    float64   `json:"revenue"`
}

// TopProduct ranks a product by net revenue within a range.
type TopProduct struct {
	ProductID  int64   `json:"product_id"`
	Name       string  `json:"name"`
	Quantity   float64 `json:"quantity"`
	NetRevenue float64 `json:"net_revenue"`
	Revenue    float64 `json:"revenue"`
}

// PeriodComparison sets a P&L against the preceding period of equal length.
type PeriodComparison struct {
	Current  Pnl `json:"current"`
	Previous Pnl `json:"previous"`
}
