package domain

import "github.com/shopspring/decimal"

// SubOrganization is a budget-holding unit within the parent organization.
// The catalog is seeded once by migration and entries are never deleted.
type SubOrganization struct {
	SubOrgID        string          `json:"id"`   // Primary Key (e.g., UUID)
	Name            string          `json:"name"` // Unique display label
	BudgetAllocated decimal.Decimal `json:"budgetAllocated"`
	// BudgetSpent is derived from the full transaction set. It is written
	// exclusively by the reconciliation service; every other component
	// treats it as read-only.
	BudgetSpent decimal.Decimal `json:"budgetSpent"`
	AuditFields
}

// BudgetRemaining returns the unspent portion of the allocated budget.
// Negative values mean the sub-organization is over budget.
func (s SubOrganization) BudgetRemaining() decimal.Decimal {
	return s.BudgetAllocated.Sub(s.BudgetSpent)
}
