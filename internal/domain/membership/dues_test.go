package membership

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/vscpa/backend/internal/domain/integration"
)

func TestDuesBalance(t *testing.T) {
	writeOffs := []integration.DuesTransaction{
		{Type: integration.DuesTransactionInvoice, Amount: "245"},
		{Type: integration.DuesTransactionWriteOff, Amount: "-245"},
		{Type: integration.DuesTransactionWriteOff, Amount: "-30.50"},
		{Type: integration.DuesTransactionPayment, Amount: "-10"},
	}

	tests := []struct {
		name   string
		dues   *integration.Dues
		status StatusCode
		want   string
		wantOK bool
	}{
		{"nil dues", nil, StatusMember, "0", false},
		{"absent balance", &integration.Dues{}, StatusMember, "0", false},
		{"non numeric balance", &integration.Dues{Balance: "N/A"}, StatusMember, "0", false},
		{"numeric balance", &integration.Dues{Balance: "120.00"}, StatusMember, "120", true},
		{"credit balance", &integration.Dues{Balance: "-15"}, StatusMember, "-15", true},
		{"write-offs ignored for members", &integration.Dues{Balance: "0", Transactions: writeOffs}, StatusMember, "0", true},
		{"write-offs added back when terminated", &integration.Dues{Balance: "0", Transactions: writeOffs}, StatusTerminated, "275.5", true},
		{"terminated with unknown balance", &integration.Dues{Balance: "", Transactions: writeOffs}, StatusTerminated, "0", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := DuesBalance(tt.dues, tt.status)
			assert.Equal(t, tt.wantOK, ok)
			assert.True(t, decimal.RequireFromString(tt.want).Equal(got), "got %s", got)
		})
	}
}

func TestHasActivePaymentPlan(t *testing.T) {
	assert.False(t, HasActivePaymentPlan(nil))
	assert.False(t, HasActivePaymentPlan([]integration.PaymentPlan{{Status: "Closed"}}))
	assert.True(t, HasActivePaymentPlan([]integration.PaymentPlan{{Status: "Closed"}, {Status: "Active"}}))
}
