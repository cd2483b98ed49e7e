// Package allocation holds the pure math for splitting a monetary total
// across targets (sub-organizations or purchase orders) and validating an
// existing split. It performs no I/O; services feed it entries extracted
// from domain records.
package allocation

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	// ErrOverAllocated indicates the sum of allocated amounts exceeds the total.
	ErrOverAllocated = errors.New("allocated amounts exceed the total")
	// ErrDuplicateTarget indicates the same target id appears more than once.
	ErrDuplicateTarget = errors.New("duplicate allocation target")
	// ErrUnbalanced indicates the allocated sum does not match the total and
	// the caller required a full allocation.
	ErrUnbalanced = errors.New("allocated amounts do not sum to the total")
	// ErrMissingTarget indicates an entry carries an amount but no target id.
	ErrMissingTarget = errors.New("allocation entry is missing a target")
)

// AmountEpsilon absorbs floating-point rounding when comparing monetary sums:
// 0.01 of a currency unit.
var AmountEpsilon = decimal.NewFromFloat(0.01)

var hundred = decimal.NewFromInt(100)

// Entry is one (target, amount) pair of an allocation set.
type Entry struct {
	TargetID string
	Amount   decimal.Decimal
}

// Share is one computed slice of an equal distribution.
type Share struct {
	Amount     decimal.Decimal
	Percentage decimal.Decimal
}

// DistributeEqually splits total across n targets: each share receives the
// raw total/n quotient and percentage 100/n rounded to two places. Amounts
// are deliberately not rounded to whole cents: per-share cent rounding can
// drift the sum past the epsilon (1.00 across 6 would become 6 x 0.17),
// while the quotient keeps the sum within it for any n.
func DistributeEqually(total decimal.Decimal, n int) []Share {
	if n <= 0 {
		return nil
	}
	count := decimal.NewFromInt(int64(n))
	amount := total.Div(count)
	percentage := hundred.Div(count).Round(2)
	shares := make([]Share, n)
	for i := range shares {
		shares[i] = Share{Amount: amount, Percentage: percentage}
	}
	return shares
}

// Percentage derives the percentage an amount represents of a total:
// amount/total*100, or zero when the total is not positive. Recomputed
// whenever an amount or the parent total changes.
func Percentage(amount, total decimal.Decimal) decimal.Decimal {
	if total.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	return amount.Div(total).Mul(hundred)
}

// AmountForPercentage is the inverse derivation used in manual-percentage
// mode: percentage/100*total.
func AmountForPercentage(percentage, total decimal.Decimal) decimal.Decimal {
	return percentage.Mul(total).Div(hundred)
}

// ValidateSet checks an allocation set against its parent total.
//
// Failure modes, in order of detection:
//   - ErrMissingTarget: an entry with a non-zero amount has no target id.
//   - ErrDuplicateTarget: the same target id appears twice, regardless of
//     differing amounts.
//   - ErrOverAllocated: the sum exceeds the total by more than the epsilon.
//   - ErrUnbalanced: requireFull is set and |sum - total| > epsilon.
//
// An empty set is valid: it represents an explicitly unallocated record
// (requireFull callers still get ErrUnbalanced unless the total is zero).
// Error messages name the offending amounts and targets since the
// arithmetic is otherwise opaque to the user.
func ValidateSet(entries []Entry, total decimal.Decimal, requireFull bool) error {
	seen := make(map[string]struct{}, len(entries))
	sum := decimal.Zero
	for _, e := range entries {
		if e.TargetID == "" {
			return fmt.Errorf("%w: amount %s has no target", ErrMissingTarget, e.Amount.StringFixed(2))
		}
		if _, dup := seen[e.TargetID]; dup {
			return fmt.Errorf("%w: target %s appears more than once", ErrDuplicateTarget, e.TargetID)
		}
		seen[e.TargetID] = struct{}{}
		sum = sum.Add(e.Amount)
	}

	if sum.Sub(total).GreaterThan(AmountEpsilon) {
		return fmt.Errorf("%w: total allocated %s exceeds amount %s",
			ErrOverAllocated, sum.StringFixed(2), total.StringFixed(2))
	}
	if requireFull && sum.Sub(total).Abs().GreaterThan(AmountEpsilon) {
		return fmt.Errorf("%w: allocated %s of %s",
			ErrUnbalanced, sum.StringFixed(2), total.StringFixed(2))
	}
	return nil
}

// IsFullyAllocated reports whether sum covers total within the epsilon.
func IsFullyAllocated(sum, total decimal.Decimal) bool {
	return sum.Sub(total).Abs().LessThanOrEqual(AmountEpsilon)
}
