package peerreview

import (
	"cmp"
	"slices"

	"github.com/shopspring/decimal"
)

// OpenFee is a fee with an unpaid remainder after netting
type OpenFee struct {
	Fee       Transaction     `json:"fee"`
	Remaining decimal.Decimal `json:"remaining"`
}

// YearBalance is the netted position of one fiscal year
type YearBalance struct {
	Year     int             `json:"year"`
	Fees     decimal.Decimal `json:"fees"`
	Payments decimal.Decimal `json:"payments"`
	// Balance is the unpaid remainder of the year's fees, never negative
	Balance decimal.Decimal `json:"balance"`
	// Credit is the unapplied remainder of the year's payments
	Credit   decimal.Decimal `json:"credit"`
	OpenFees []OpenFee       `json:"open_fees,omitempty"`
}

// Summary is the netted ledger
type Summary struct {
	Years   []YearBalance   `json:"years"`
	Balance decimal.Decimal `json:"balance"`
	Credit  decimal.Decimal `json:"credit"`
}

// YearBalance returns the netted position for year, or false if the ledger has none
func (s Summary) YearBalance(year int) (YearBalance, bool) {
	for _, y := range s.Years {
		if y.Year == year {
			return y, true
		}
	}
	return YearBalance{}, false
}

// Ledger is a firm's peer-review billing history
type Ledger struct {
	Transactions []Transaction
}

// Net nets the ledger per fiscal year, most recent year first.
//
// Payments only settle fees of their own year. Within a year the oldest
// unmatched payment is applied to the oldest unmatched fee until one side
// is exhausted. Netting the same transactions always yields the same result.
func (l Ledger) Net() Summary {
	byYear := make(map[int][]Transaction)
	for _, tx := range Normalize(l.Transactions) {
		byYear[tx.Year] = append(byYear[tx.Year], tx)
	}

	years := make([]int, 0, len(byYear))
	for y := range byYear {
		years = append(years, y)
	}
	slices.Sort(years)
	slices.Reverse(years)

	summary := Summary{Balance: decimal.Zero, Credit: decimal.Zero}
	for _, y := range years {
		yb := netYear(y, byYear[y])
		summary.Years = append(summary.Years, yb)
		summary.Balance = summary.Balance.Add(yb.Balance)
		summary.Credit = summary.Credit.Add(yb.Credit)
	}
	return summary
}

func netYear(year int, txs []Transaction) YearBalance {
	var fees, payments []Transaction
	for _, tx := range txs {
		if tx.Type == TypeFee {
			fees = append(fees, tx)
		} else {
			payments = append(payments, tx)
		}
	}
	byDate := func(a, b Transaction) int { return a.Date.Compare(b.Date) }
	slices.SortStableFunc(fees, byDate)
	slices.SortStableFunc(payments, byDate)

	yb := YearBalance{Year: year, Fees: decimal.Zero, Payments: decimal.Zero}
	feeLeft := make([]decimal.Decimal, len(fees))
	for i, f := range fees {
		feeLeft[i] = f.Amount
		yb.Fees = yb.Fees.Add(f.Amount)
	}
	payLeft := make([]decimal.Decimal, len(payments))
	for i, p := range payments {
		payLeft[i] = p.Amount
		yb.Payments = yb.Payments.Add(p.Amount)
	}

	fi, pi := 0, 0
	for fi < len(fees) && pi < len(payments) {
		applied := decimal.Min(feeLeft[fi], payLeft[pi])
		feeLeft[fi] = feeLeft[fi].Sub(applied)
		payLeft[pi] = payLeft[pi].Sub(applied)
		if feeLeft[fi].IsZero() {
			fi++
		}
		if payLeft[pi].IsZero() {
			pi++
		}
	}

	yb.Balance = decimal.Zero
	for i := fi; i < len(fees); i++ {
		if feeLeft[i].IsPositive() {
			yb.Balance = yb.Balance.Add(feeLeft[i])
			yb.OpenFees = append(yb.OpenFees, OpenFee{Fee: fees[i], Remaining: feeLeft[i]})
		}
	}
	yb.Credit = decimal.Zero
	for i := pi; i < len(payments); i++ {
		yb.Credit = yb.Credit.Add(payLeft[i])
	}
	return yb
}

// sumFees totals the fee lines of year billed to class
func sumFees(txs []Transaction, year int, match func(class string) bool) decimal.Decimal {
	total := decimal.Zero
	for _, tx := range txs {
		if tx.Type == TypeFee && tx.Year == year && match(tx.BillingClass) {
			total = total.Add(tx.Amount.Abs())
		}
	}
	return total
}

// latestYear returns the most recent year in the ledger
func latestYear(txs []Transaction) int {
	if len(txs) == 0 {
		return 0
	}
	return slices.MaxFunc(txs, func(a, b Transaction) int { return cmp.Compare(a.Year, b.Year) }).Year
}
