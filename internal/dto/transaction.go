package dto

import (
	"time"

	"github.com/orgbooks/po_budget_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// AllocationInput is one (sub-organization, amount) row of a split.
// Percentage is derived server-side; clients never send it.
type AllocationInput struct {
	SubOrgID string          `json:"subOrgId" binding:"required"`
	Amount   decimal.Decimal `json:"amount" binding:"required"`
}

// POLinkInput is one (purchase order, amount) row of a link set. Rows with a
// zero amount or empty poId are treated as incomplete edits and dropped
// silently before save.
type POLinkInput struct {
	POID   string          `json:"poId"`
	Amount decimal.Decimal `json:"amount"`
}

// CreateTransactionRequest carries a manually entered or imported bank
// transaction. At most one of SubOrgID (legacy single target) or Allocations
// may be set.
type CreateTransactionRequest struct {
	PostDate        time.Time         `json:"postDate" binding:"required"`
	Description     string            `json:"description" binding:"required"`
	DebitAmount     decimal.Decimal   `json:"debitAmount" binding:"required"`
	SubOrgID        string            `json:"subOrgId"`
	Allocations     []AllocationInput `json:"allocations" binding:"omitempty,dive"`
	Notes           string            `json:"notes"`
	ReceiptURL      string            `json:"receiptUrl"`
	ReceiptFileName string            `json:"receiptFileName"`
}

// UpdateTransactionRequest defines the data allowed for updating a
// transaction. Pointers differentiate omitted fields from zero values;
// omitted fields are left untouched in the store.
type UpdateTransactionRequest struct {
	PostDate        *time.Time         `json:"postDate"`
	Description     *string            `json:"description"`
	DebitAmount     *decimal.Decimal   `json:"debitAmount"`
	Allocations     *[]AllocationInput `json:"allocations"` // Replace wholesale
	Notes           *string            `json:"notes"`
	ReceiptURL      *string            `json:"receiptUrl"`
	ReceiptFileName *string            `json:"receiptFileName"`
}

// ReplaceAllocationsRequest replaces a transaction's allocation set
// wholesale. Exactly one of Allocations (manual amounts) or
// SplitEquallyAmong (equal distribution targets) should be provided; an
// empty request marks the transaction explicitly unallocated.
type ReplaceAllocationsRequest struct {
	Allocations       []AllocationInput `json:"allocations" binding:"omitempty,dive"`
	SplitEquallyAmong []string          `json:"splitEquallyAmong"`
}

// ReplaceLinksRequest replaces a transaction's purchase-order links wholesale.
type ReplaceLinksRequest struct {
	Links []POLinkInput `json:"links"`
}

// ListTransactionsParams defines query parameters for listing transactions.
type ListTransactionsParams struct {
	Limit     int     `form:"limit,default=20"`
	NextToken *string `form:"nextToken"`
}

// AllocationResponse mirrors a persisted allocation row.
type AllocationResponse struct {
	ID         string          `json:"id"`
	SubOrgID   string          `json:"subOrgId"`
	SubOrgName string          `json:"subOrgName"`
	Amount     decimal.Decimal `json:"amount"`
	Percentage decimal.Decimal `json:"percentage"`
}

// POLinkResponse mirrors a persisted purchase-order link row.
type POLinkResponse struct {
	ID         string          `json:"id"`
	POID       string          `json:"poId"`
	POName     string          `json:"poName"`
	Amount     decimal.Decimal `json:"amount"`
	Percentage decimal.Decimal `json:"percentage"`
}

// TransactionResponse defines the data returned for a transaction.
type TransactionResponse struct {
	ID              string               `json:"id"`
	PostDate        time.Time            `json:"postDate"`
	Description     string               `json:"description"`
	DebitAmount     decimal.Decimal      `json:"debitAmount"`
	SubOrgID        string               `json:"subOrgId,omitempty"`
	SubOrgName      string               `json:"subOrgName,omitempty"`
	Allocations     []AllocationResponse `json:"allocations,omitempty"`
	LinkedPOID      string               `json:"linkedPOId,omitempty"`
	LinkedPOName    string               `json:"linkedPOName,omitempty"`
	POLinks         []POLinkResponse     `json:"poLinks,omitempty"`
	Notes           string               `json:"notes,omitempty"`
	ReceiptURL      string               `json:"receiptUrl,omitempty"`
	ReceiptFileName string               `json:"receiptFileName,omitempty"`
	Status          string               `json:"status"`
	CreatedAt       time.Time            `json:"createdAt"`
	UpdatedAt       time.Time            `json:"updatedAt"`

	// ReconciliationWarning is set when the mutation committed but the
	// triggered budget recompute failed; budgets converge on the next
	// successful pass.
	ReconciliationWarning string `json:"reconciliationWarning,omitempty"`
}

// ListTransactionsResponse wraps a page of transactions.
type ListTransactionsResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
	NextToken    *string               `json:"nextToken,omitempty"`
}

// IsEqualSplit reports whether the caller asked for an equal distribution
// instead of supplying manual amounts.
func (r ReplaceAllocationsRequest) IsEqualSplit() bool {
	return len(r.SplitEquallyAmong) > 0
}

// ToTransactionResponse converts a domain.Transaction to its response DTO.
func ToTransactionResponse(t *domain.Transaction) TransactionResponse {
	resp := TransactionResponse{
		ID:              t.TransactionID,
		PostDate:        t.PostDate,
		Description:     t.Description,
		DebitAmount:     t.DebitAmount,
		SubOrgID:        t.SubOrgID,
		SubOrgName:      t.SubOrgName,
		LinkedPOID:      t.LinkedPOID,
		LinkedPOName:    t.LinkedPOName,
		Notes:           t.Notes,
		ReceiptURL:      t.ReceiptURL,
		ReceiptFileName: t.ReceiptFileName,
		Status:          string(t.Status),
		CreatedAt:       t.CreatedAt,
		UpdatedAt:       t.LastUpdatedAt,
	}
	for _, a := range t.Allocations {
		resp.Allocations = append(resp.Allocations, AllocationResponse{
			ID:         a.AllocationID,
			SubOrgID:   a.SubOrgID,
			SubOrgName: a.SubOrgName,
			Amount:     a.Amount,
			Percentage: a.Percentage,
		})
	}
	resp.POLinks = ToPOLinkResponses(t.POLinks)
	return resp
}

// ToPOLinkResponses converts domain links to response DTOs.
func ToPOLinkResponses(links []domain.POLink) []POLinkResponse {
	if len(links) == 0 {
		return nil
	}
	out := make([]POLinkResponse, len(links))
	for i, l := range links {
		out[i] = POLinkResponse{
			ID:         l.LinkID,
			POID:       l.POID,
			POName:     l.POName,
			Amount:     l.Amount,
			Percentage: l.Percentage,
		}
	}
	return out
}

// ToListTransactionsResponse converts a page of domain transactions.
func ToListTransactionsResponse(txns []domain.Transaction, nextToken *string) ListTransactionsResponse {
	out := make([]TransactionResponse, len(txns))
	for i := range txns {
		out[i] = ToTransactionResponse(&txns[i])
	}
	return ListTransactionsResponse{Transactions: out, NextToken: nextToken}
}
