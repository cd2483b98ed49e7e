package dto

import (
	"time"

	"github.com/orgbooks/po_budget_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// LineItemInput is one purchasable row of a purchase order request.
// TotalPrice is computed server-side as quantity * unitPrice.
type LineItemInput struct {
	Vendor    string          `json:"vendor" binding:"required"`
	ItemName  string          `json:"itemName" binding:"required"`
	SKU       string          `json:"sku"`
	Quantity  decimal.Decimal `json:"quantity" binding:"required"`
	UnitPrice decimal.Decimal `json:"unitPrice" binding:"required"`
	Link      string          `json:"link"`
	Notes     string          `json:"notes"`
}

// POOrganizationInput allocates part of the purchase order's total to a
// sub-organization. Percentage is derived server-side.
type POOrganizationInput struct {
	SubOrgID        string          `json:"subOrgId" binding:"required"`
	AllocatedAmount decimal.Decimal `json:"allocatedAmount" binding:"required"`
}

// CreatePORequest carries a new draft purchase order. At most one of
// SubOrgID (legacy single organization) or Organizations may be set.
type CreatePORequest struct {
	Name                    string                `json:"name" binding:"required"`
	SubOrgID                string                `json:"subOrgId"`
	Organizations           []POOrganizationInput `json:"organizations" binding:"omitempty,dive"`
	LineItems               []LineItemInput       `json:"lineItems" binding:"required,min=1,dive"`
	SpecialRequest          string                `json:"specialRequest"`
	OverBudgetJustification string                `json:"overBudgetJustification"`
}

// UpdatePORequest defines the content edits allowed while a purchase order
// is in an editable state (draft or declined).
type UpdatePORequest struct {
	Name                    *string                `json:"name"`
	SubOrgID                *string                `json:"subOrgId"`
	Organizations           *[]POOrganizationInput `json:"organizations"` // Replace wholesale
	LineItems               *[]LineItemInput       `json:"lineItems"`     // Replace wholesale
	SpecialRequest          *string                `json:"specialRequest"`
	OverBudgetJustification *string                `json:"overBudgetJustification"`
}

// DeclinePORequest carries the reviewer's comments back to the creator.
type DeclinePORequest struct {
	AdminComments string `json:"adminComments" binding:"required"`
}

// ListPOsParams defines query parameters for listing purchase orders.
type ListPOsParams struct {
	Status string `form:"status"`
	Limit  int    `form:"limit,default=20"`
	Offset int    `form:"offset,default=0"`
}

// POOrganizationResponse mirrors a persisted organization allocation.
type POOrganizationResponse struct {
	ID              string          `json:"id"`
	SubOrgID        string          `json:"subOrgId"`
	SubOrgName      string          `json:"subOrgName"`
	AllocatedAmount decimal.Decimal `json:"allocatedAmount"`
	Percentage      decimal.Decimal `json:"percentage"`
}

// LineItemResponse mirrors a persisted line item.
type LineItemResponse struct {
	Vendor     string          `json:"vendor"`
	ItemName   string          `json:"itemName"`
	SKU        string          `json:"sku,omitempty"`
	Quantity   decimal.Decimal `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unitPrice"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
	Link       string          `json:"link,omitempty"`
	Notes      string          `json:"notes,omitempty"`
}

// POResponse defines the data returned for a purchase order.
type POResponse struct {
	ID                      string                   `json:"id"`
	Name                    string                   `json:"name"`
	CreatorID               string                   `json:"creatorId"`
	CreatorName             string                   `json:"creatorName"`
	Status                  string                   `json:"status"`
	SubOrgID                string                   `json:"subOrgId,omitempty"`
	SubOrgName              string                   `json:"subOrgName,omitempty"`
	Organizations           []POOrganizationResponse `json:"organizations,omitempty"`
	LineItems               []LineItemResponse       `json:"lineItems"`
	TotalAmount             decimal.Decimal          `json:"totalAmount"`
	SpecialRequest          string                   `json:"specialRequest,omitempty"`
	OverBudgetJustification string                   `json:"overBudgetJustification,omitempty"`
	AdminComments           string                   `json:"adminComments,omitempty"`
	CreatedAt               time.Time                `json:"createdAt"`
	UpdatedAt               time.Time                `json:"updatedAt"`
}

// ListPOsResponse wraps a page of purchase orders.
type ListPOsResponse struct {
	PurchaseOrders []POResponse `json:"purchaseOrders"`
}

// ToPOResponse converts a domain.PurchaseOrder to its response DTO.
func ToPOResponse(po *domain.PurchaseOrder) POResponse {
	resp := POResponse{
		ID:                      po.POID,
		Name:                    po.Name,
		CreatorID:               po.CreatorID,
		CreatorName:             po.CreatorName,
		Status:                  string(po.Status),
		SubOrgID:                po.SubOrgID,
		SubOrgName:              po.SubOrgName,
		TotalAmount:             po.TotalAmount,
		SpecialRequest:          po.SpecialRequest,
		OverBudgetJustification: po.OverBudgetJustification,
		AdminComments:           po.AdminComments,
		CreatedAt:               po.CreatedAt,
		UpdatedAt:               po.LastUpdatedAt,
	}
	for _, org := range po.Organizations {
		resp.Organizations = append(resp.Organizations, POOrganizationResponse{
			ID:              org.OrgAllocID,
			SubOrgID:        org.SubOrgID,
			SubOrgName:      org.SubOrgName,
			AllocatedAmount: org.AllocatedAmount,
			Percentage:      org.Percentage,
		})
	}
	resp.LineItems = make([]LineItemResponse, len(po.LineItems))
	for i, li := range po.LineItems {
		resp.LineItems[i] = LineItemResponse{
			Vendor:     li.Vendor,
			ItemName:   li.ItemName,
			SKU:        li.SKU,
			Quantity:   li.Quantity,
			UnitPrice:  li.UnitPrice,
			TotalPrice: li.TotalPrice,
			Link:       li.Link,
			Notes:      li.Notes,
		}
	}
	return resp
}

// ToListPOsResponse converts a slice of domain purchase orders.
func ToListPOsResponse(pos []domain.PurchaseOrder) ListPOsResponse {
	out := make([]POResponse, len(pos))
	for i := range pos {
		out[i] = ToPOResponse(&pos[i])
	}
	return ListPOsResponse{PurchaseOrders: out}
}
