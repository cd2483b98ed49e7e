package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPOStatusTransitions(t *testing.T) {
	testCases := []struct {
		from    POStatus
		to      POStatus
		allowed bool
	}{
		{PODraft, POPendingApproval, true},
		{PODraft, POApproved, false},
		{PODraft, POPurchased, false},
		{POPendingApproval, POApproved, true},
		{POPendingApproval, PODeclined, true},
		{POPendingApproval, PODraft, false},
		{POApproved, POPendingPurchase, true},
		{POApproved, POPurchased, false},
		{PODeclined, PODraft, true},
		{PODeclined, POPendingApproval, false},
		{POPendingPurchase, POPurchased, true},
		{POPurchased, PODraft, false},
		{POPurchased, POPendingApproval, false},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.allowed, tc.from.CanTransitionTo(tc.to),
			"%s -> %s", tc.from, tc.to)
	}
}

func TestPOStatusIsEditable(t *testing.T) {
	assert.True(t, PODraft.IsEditable())
	assert.True(t, PODeclined.IsEditable())
	assert.False(t, POPendingApproval.IsEditable())
	assert.False(t, POApproved.IsEditable())
	assert.False(t, POPendingPurchase.IsEditable())
	assert.False(t, POPurchased.IsEditable())
}

func TestSortLineItemsForReview(t *testing.T) {
	items := []LineItem{
		{Vendor: "zeta supplies", ItemName: "cables"},
		{Vendor: "", ItemName: "unsourced part"},
		{Vendor: "Acme", ItemName: "widgets"},
		{Vendor: "acme", ItemName: "bolts"}, // Same vendor ignoring case; must keep original order
		{Vendor: "Midway Co", ItemName: "paint"},
	}

	SortLineItemsForReview(items)

	require.Len(t, items, 5)
	assert.Equal(t, "widgets", items[0].ItemName, "case-insensitive vendor sort")
	assert.Equal(t, "bolts", items[1].ItemName, "stable: tie keeps original order")
	assert.Equal(t, "paint", items[2].ItemName)
	assert.Equal(t, "cables", items[3].ItemName)
	assert.Equal(t, "unsourced part", items[4].ItemName, "empty vendor sorts last")
}

func TestComputeTotalAmount(t *testing.T) {
	items := []LineItem{
		{TotalPrice: decimal.NewFromFloat(19.99)},
		{TotalPrice: decimal.NewFromFloat(0.01)},
		{TotalPrice: decimal.NewFromInt(80)},
	}
	assert.True(t, ComputeTotalAmount(items).Equal(decimal.NewFromInt(100)))
	assert.True(t, ComputeTotalAmount(nil).IsZero())
}

func TestTransactionAllocatedTotal(t *testing.T) {
	txn := Transaction{
		DebitAmount: decimal.NewFromFloat(42.50),
		SubOrgID:    "org-a",
	}
	assert.True(t, txn.AllocatedTotal().Equal(decimal.NewFromFloat(42.50)),
		"legacy scalar target attributes the full debit amount")

	txn.SubOrgID = ""
	assert.True(t, txn.AllocatedTotal().IsZero(), "no target means nothing attributed")

	txn.Allocations = []TransactionAllocation{
		{SubOrgID: "org-a", Amount: decimal.NewFromInt(20)},
		{SubOrgID: "org-b", Amount: decimal.NewFromFloat(22.50)},
	}
	assert.True(t, txn.AllocatedTotal().Equal(decimal.NewFromFloat(42.50)))
}
