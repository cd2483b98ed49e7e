package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionStatus indicates how much of a transaction's amount has been
// attributed to sub-organizations.
type TransactionStatus string

const (
	// TransactionPending means the transaction is unallocated or only
	// partially allocated.
	TransactionPending TransactionStatus = "PENDING"
	// TransactionAllocated means the full debit amount is attributed,
	// either via the legacy scalar target or a fully-summing split.
	TransactionAllocated TransactionStatus = "ALLOCATED"
)

// Transaction represents a single bank-statement debit to be attributed to
// one or more sub-organizations and optionally linked to purchase orders.
//
// Exactly one of the legacy scalar target (SubOrgID/SubOrgName) or the
// Allocations slice may be populated. The same duality exists for the PO
// side: LinkedPOID/LinkedPOName vs POLinks. Allocation and link slices are
// replaced wholesale on edit, never patched element-wise, so their sums stay
// consistent with DebitAmount.
type Transaction struct {
	TransactionID string          `json:"id"` // Primary Key (e.g., UUID)
	PostDate      time.Time       `json:"postDate"`
	Description   string          `json:"description"`
	DebitAmount   decimal.Decimal `json:"debitAmount"` // Always > 0

	SubOrgID    string                  `json:"subOrgId,omitempty"`   // Legacy single target
	SubOrgName  string                  `json:"subOrgName,omitempty"` // Denormalized for display
	Allocations []TransactionAllocation `json:"allocations,omitempty"`

	LinkedPOID   string   `json:"linkedPOId,omitempty"`   // Legacy single link
	LinkedPOName string   `json:"linkedPOName,omitempty"` // Denormalized for display
	POLinks      []POLink `json:"poLinks,omitempty"`

	Notes           string            `json:"notes,omitempty"`
	ReceiptURL      string            `json:"receiptUrl,omitempty"`
	ReceiptFileName string            `json:"receiptFileName,omitempty"`
	Status          TransactionStatus `json:"status"`
	AuditFields
}

// TransactionAllocation attributes part of a transaction's debit amount to a
// single sub-organization. Percentage is always relative to the parent
// transaction's DebitAmount.
type TransactionAllocation struct {
	AllocationID string          `json:"id"`
	SubOrgID     string          `json:"subOrgId"`
	SubOrgName   string          `json:"subOrgName"` // Denormalized for display
	Amount       decimal.Decimal `json:"amount"`
	Percentage   decimal.Decimal `json:"percentage"`
}

// POLink attributes part of a transaction's debit amount to a purchase
// order. Percentage is relative to the transaction's DebitAmount, not the
// purchase order's total.
type POLink struct {
	LinkID     string          `json:"id"`
	POID       string          `json:"poId"`
	POName     string          `json:"poName"` // Denormalized for display
	Amount     decimal.Decimal `json:"amount"`
	Percentage decimal.Decimal `json:"percentage"`
}

// AllocatedTotal sums the amounts attributed to sub-organizations. For a
// legacy scalar target the whole debit amount counts as attributed.
func (t Transaction) AllocatedTotal() decimal.Decimal {
	if len(t.Allocations) == 0 {
		if t.SubOrgID != "" {
			return t.DebitAmount
		}
		return decimal.Zero
	}
	total := decimal.Zero
	for _, a := range t.Allocations {
		total = total.Add(a.Amount)
	}
	return total
}

// TransactionUpdate describes a partial update to a transaction. Nil fields
// are omitted from the write entirely. The Clear* flags write explicit NULLs
// to retire legacy scalar fields once the multi-target shape takes over.
type TransactionUpdate struct {
	PostDate          *time.Time
	Description       *string
	DebitAmount       *decimal.Decimal
	SubOrgID          *string
	SubOrgName        *string
	Allocations       *[]TransactionAllocation // Replace wholesale
	POLinks           *[]POLink                // Replace wholesale
	ClearLegacySubOrg bool
	ClearLegacyPOLink bool
	Notes             *string
	ReceiptURL        *string
	ReceiptFileName   *string
	Status            *TransactionStatus
}
