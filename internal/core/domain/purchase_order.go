package domain

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// POStatus is the approval state of a purchase order.
type POStatus string

const (
	PODraft           POStatus = "DRAFT"
	POPendingApproval POStatus = "PENDING_APPROVAL"
	POApproved        POStatus = "APPROVED"
	PODeclined        POStatus = "DECLINED"
	POPendingPurchase POStatus = "PENDING_PURCHASE"
	POPurchased       POStatus = "PURCHASED" // Terminal
)

// poTransitions is the full approval state machine:
// draft -> pending_approval -> {approved, declined};
// approved -> pending_purchase -> purchased; declined -> draft (resubmit).
var poTransitions = map[POStatus][]POStatus{
	PODraft:           {POPendingApproval},
	POPendingApproval: {POApproved, PODeclined},
	POApproved:        {POPendingPurchase},
	PODeclined:        {PODraft},
	POPendingPurchase: {POPurchased},
	POPurchased:       {},
}

// CanTransitionTo reports whether the state machine permits moving from s to next.
func (s POStatus) CanTransitionTo(next POStatus) bool {
	for _, allowed := range poTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsEditable reports whether the purchase order's content (line items,
// organizations, allocations) may still be modified. All other states are
// immutable snapshots awaiting a transition.
func (s POStatus) IsEditable() bool {
	return s == PODraft || s == PODeclined
}

// LineItem is a single purchasable row within a purchase order.
type LineItem struct {
	Vendor     string          `json:"vendor"`
	ItemName   string          `json:"itemName"`
	SKU        string          `json:"sku,omitempty"`
	Quantity   decimal.Decimal `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unitPrice"`
	TotalPrice decimal.Decimal `json:"totalPrice"` // quantity * unitPrice
	Link       string          `json:"link,omitempty"`
	Notes      string          `json:"notes,omitempty"`
}

// POOrganization allocates part of a purchase order's own total to a
// sub-organization, independent of any transaction-side allocation.
type POOrganization struct {
	OrgAllocID      string          `json:"id"`
	SubOrgID        string          `json:"subOrgId"`
	SubOrgName      string          `json:"subOrgName"` // Denormalized for display
	AllocatedAmount decimal.Decimal `json:"allocatedAmount"`
	Percentage      decimal.Decimal `json:"percentage"`
}

// PurchaseOrder is a request to spend money, moving through the approval
// state machine. Purchase orders do not participate in the sub-organization
// budgetSpent aggregate; only transactions do.
type PurchaseOrder struct {
	POID        string   `json:"id"` // Primary Key (e.g., UUID)
	Name        string   `json:"name"`
	CreatorID   string   `json:"creatorId"`
	CreatorName string   `json:"creatorName"` // Denormalized for display
	Status      POStatus `json:"status"`

	SubOrgID      string           `json:"subOrgId,omitempty"`   // Legacy single organization
	SubOrgName    string           `json:"subOrgName,omitempty"` // Denormalized for display
	Organizations []POOrganization `json:"organizations,omitempty"`

	LineItems   []LineItem      `json:"lineItems"`
	TotalAmount decimal.Decimal `json:"totalAmount"` // Sum of line item totals

	SpecialRequest          string `json:"specialRequest,omitempty"`
	OverBudgetJustification string `json:"overBudgetJustification,omitempty"`
	AdminComments           string `json:"adminComments,omitempty"`
	AuditFields
}

// ComputeTotalAmount sums the line item totals.
func ComputeTotalAmount(items []LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, li := range items {
		total = total.Add(li.TotalPrice)
	}
	return total
}

// SortLineItemsForReview orders line items by vendor name for reviewers:
// case-insensitive, ties keep original order, empty vendor sorts last.
// Called when a purchase order enters PENDING_APPROVAL.
func SortLineItemsForReview(items []LineItem) {
	sort.SliceStable(items, func(i, j int) bool {
		vi := strings.ToLower(strings.TrimSpace(items[i].Vendor))
		vj := strings.ToLower(strings.TrimSpace(items[j].Vendor))
		if vi == "" {
			return false
		}
		if vj == "" {
			return true
		}
		return vi < vj
	})
}
