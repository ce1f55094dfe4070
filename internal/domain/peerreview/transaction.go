package peerreview

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/vscpa/backend/internal/domain/integration"
)

// TransactionType is the AM.net peer-review ledger line type
type TransactionType string

const (
	TypePayment    TransactionType = "Payment"
	TypeFee        TransactionType = "Fee"
	TypeAdjustment TransactionType = "Adjustment"
	TypePrinted    TransactionType = "Printed"
)

// Transaction is one peer-review billing line
type Transaction struct {
	Type         TransactionType `json:"type"`
	Amount       decimal.Decimal `json:"amount"`
	Year         int             `json:"year"`
	Note         string          `json:"note,omitempty"`
	Date         time.Time       `json:"date"`
	BillingClass string          `json:"billing_class,omitempty"`
	// Synthetic marks lines generated locally for a billing-class change
	Synthetic bool `json:"synthetic,omitempty"`
}

// FromRemote converts AM.net ledger lines. Lines with an unknown type or a
// non-numeric amount are skipped and returned separately.
func FromRemote(lines []integration.PeerReviewTransaction) (txs []Transaction, skipped []integration.PeerReviewTransaction) {
	txs = make([]Transaction, 0, len(lines))
	for _, line := range lines {
		typ, ok := parseType(line.TransactionTypeCode)
		amount, numeric := line.Amount.Decimal()
		if !ok || !numeric {
			skipped = append(skipped, line)
			continue
		}
		txs = append(txs, Transaction{
			Type:         typ,
			Amount:       amount,
			Year:         line.Year,
			Note:         line.Note,
			Date:         line.Date.Time,
			BillingClass: strings.TrimSpace(line.BillingClassCode),
		})
	}
	return txs, skipped
}

func parseType(code string) (TransactionType, bool) {
	switch t := TransactionType(strings.TrimSpace(code)); t {
	case TypePayment, TypeFee, TypeAdjustment, TypePrinted:
		return t, true
	}
	return "", false
}

// Normalize converts the ledger to fees and payments only.
// Positive adjustments become fees and negative adjustments become payments
// of the absolute amount; zero adjustments and printed lines are dropped.
// Payments are made positive. The input is not modified.
func Normalize(txs []Transaction) []Transaction {
	out := make([]Transaction, 0, len(txs))
	for _, tx := range txs {
		switch tx.Type {
		case TypePrinted:
			continue
		case TypeAdjustment:
			if tx.Amount.IsZero() {
				continue
			}
			if tx.Amount.IsPositive() {
				tx.Type = TypeFee
			} else {
				tx.Type = TypePayment
			}
			tx.Amount = tx.Amount.Abs()
		case TypePayment, TypeFee:
			tx.Amount = tx.Amount.Abs()
		}
		out = append(out, tx)
	}
	return out
}
