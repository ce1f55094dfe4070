package membership

import (
	"github.com/shopspring/decimal"
	"github.com/vscpa/backend/internal/domain/integration"
)

// DuesBalance returns the amount the member owes. ok is false when AM.net
// reports no balance or a non-numeric one.
//
// Terminated members have their unpaid dues written off in AM.net, which
// zeroes the reported balance. Reinstatement requires paying those dues, so
// for a terminated member the written-off amounts are added back.
func DuesBalance(dues *integration.Dues, status StatusCode) (decimal.Decimal, bool) {
	if dues == nil {
		return decimal.Zero, false
	}
	balance, ok := dues.Balance.Decimal()
	if !ok {
		return decimal.Zero, false
	}
	if status != StatusTerminated {
		return balance, true
	}
	for _, tx := range dues.Transactions {
		if tx.Type != integration.DuesTransactionWriteOff {
			continue
		}
		balance = balance.Add(tx.Amount.OrZero().Abs())
	}
	return balance, true
}

// HasActivePaymentPlan reports whether any plan is in force
func HasActivePaymentPlan(plans []integration.PaymentPlan) bool {
	for _, p := range plans {
		if p.IsActive() {
			return true
		}
	}
	return false
}
