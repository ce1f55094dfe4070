package peerreview

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/vscpa/backend/internal/domain/integration"
	"github.com/vscpa/backend/internal/domain/shared"
)

// ErrRateNotFound is returned when no peer-review rate exists for a billing class
var ErrRateNotFound = shared.NewDomainError("RATE_NOT_FOUND", "Peer review rate not found")

// Rates maps billing class code to the annual peer-review fee
type Rates map[string]decimal.Decimal

// RatesFromRemote builds the rate table for fiscalYear. Entries for other
// years or with non-numeric amounts are ignored.
func RatesFromRemote(rates []integration.Rate, fiscalYear int) Rates {
	out := make(Rates, len(rates))
	for _, r := range rates {
		if r.FiscalYear != 0 && r.FiscalYear != fiscalYear {
			continue
		}
		amount, ok := r.Amount.Decimal()
		if !ok {
			continue
		}
		out[strings.TrimSpace(r.BillingClassCode)] = amount
	}
	return out
}

// ApplyBillingClassChange returns the ledger with lines synthesized for a
// firm whose billing class changed after fiscalYear was billed.
//
// When the year's fees were billed to another class and none to
// currentClass, three lines dated now are added: a negative adjustment for
// the unpaid part of the old fee, a fee at the currentClass rate, and a
// payment carrying over what was already paid toward the old fee. The
// adjustment and carried payment are omitted when zero. A ledger that
// already has a fee for currentClass in that year is returned unchanged,
// so applying the change twice is harmless. The input is not modified.
func (l Ledger) ApplyBillingClassChange(currentClass string, rates Rates, fiscalYear int, now time.Time) (Ledger, error) {
	currentClass = strings.TrimSpace(currentClass)
	if currentClass == "" {
		return l, nil
	}
	normalized := Normalize(l.Transactions)

	if sumFees(normalized, fiscalYear, func(c string) bool { return c == currentClass }).IsPositive() {
		return l, nil
	}
	oldFee := sumFees(normalized, fiscalYear, func(c string) bool { return c != "" && c != currentClass })
	if !oldFee.IsPositive() {
		return l, nil
	}
	oldClass := previousClass(normalized, fiscalYear, currentClass)

	rate, ok := rates[currentClass]
	if !ok {
		return l, fmt.Errorf("%w: class %s, year %d", ErrRateNotFound, currentClass, fiscalYear)
	}

	year, _ := l.Net().YearBalance(fiscalYear)
	unpaid := decimal.Min(year.Balance, oldFee)
	paid := oldFee.Sub(unpaid)
	note := fmt.Sprintf("Billing class changed from %s to %s", oldClass, currentClass)

	out := Ledger{Transactions: make([]Transaction, 0, len(l.Transactions)+3)}
	out.Transactions = append(out.Transactions, l.Transactions...)
	if unpaid.IsPositive() {
		out.Transactions = append(out.Transactions, Transaction{
			Type: TypeAdjustment, Amount: unpaid.Neg(), Year: fiscalYear, Date: now,
			Note: note, BillingClass: oldClass, Synthetic: true,
		})
	}
	out.Transactions = append(out.Transactions, Transaction{
		Type: TypeFee, Amount: rate, Year: fiscalYear, Date: now,
		Note: note, BillingClass: currentClass, Synthetic: true,
	})
	if paid.IsPositive() {
		out.Transactions = append(out.Transactions, Transaction{
			Type: TypePayment, Amount: paid, Year: fiscalYear, Date: now,
			Note: "Payment transferred from " + oldClass + " fee", BillingClass: currentClass, Synthetic: true,
		})
	}
	return out, nil
}

func previousClass(txs []Transaction, year int, currentClass string) string {
	for _, tx := range txs {
		if tx.Type == TypeFee && tx.Year == year && tx.BillingClass != "" && tx.BillingClass != currentClass {
			return tx.BillingClass
		}
	}
	return ""
}

// CurrentYear returns fiscalYear, or the latest year billed when the ledger
// has nothing for fiscalYear yet
func (l Ledger) CurrentYear(fiscalYear int) int {
	for _, tx := range l.Transactions {
		if tx.Year == fiscalYear {
			return fiscalYear
		}
	}
	if y := latestYear(l.Transactions); y != 0 {
		return y
	}
	return fiscalYear
}
