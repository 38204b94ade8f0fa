// Package alerts watches the cached stock collection and notifies an
// operator webhook when lines fall to or below their thresholds.
package alerts

import (
	"errors"
	"fmt"

	"github.com/saul00x/gestion3-sub000/internal/catalog"
)

// Operator compares a quantity against a threshold.
type Operator string

const (
	OperatorLess        Operator = "<"
	OperatorLessOrEqual Operator = "<="
)

// Valid returns true when the operator is supported.
func (o Operator) Valid() bool {
	switch o {
	case OperatorLess, OperatorLessOrEqual:
		return true
	default:
		return false
	}
}

// Rule decides when a stock line is low. A line's own threshold (seuil)
// wins; FallbackThreshold applies to lines without one.
type Rule struct {
	Operator          Operator
	FallbackThreshold float64
}

// Validate checks rule invariants.
func (r Rule) Validate() error {
	if !r.Operator.Valid() {
		return errors.New("alerts: invalid operator")
	}
	if r.FallbackThreshold < 0 {
		return errors.New("alerts: negative threshold")
	}
	return nil
}

// Finding is one low-stock condition.
type Finding struct {
	StockID     string
	ProductID   string
	ProductName string
	StoreID     string
	StoreName   string
	Quantity    float64
	Threshold   float64
}

// Key identifies the finding for deduplication.
func (f Finding) Key() string {
	return f.StockID
}

func (f Finding) String() string {
	return fmt.Sprintf("%s @ %s: %g left (threshold %g)", f.ProductName, f.StoreName, f.Quantity, f.Threshold)
}

// Evaluate scans a catalog snapshot and returns all low-stock findings.
func (r Rule) Evaluate(snapshot catalog.Snapshot) []Finding {
	var findings []Finding
	for _, line := range snapshot.Stocks {
		threshold := line.Threshold.Float64()
		if threshold <= 0 {
			threshold = r.FallbackThreshold
		}
		if threshold <= 0 {
			continue
		}
		quantity := line.Quantity.Float64()
		low := false
		switch r.Operator {
		case OperatorLess:
			low = quantity < threshold
		case OperatorLessOrEqual:
			low = quantity <= threshold
		}
		if !low {
			continue
		}
		finding := Finding{
			StockID:   line.ID,
			ProductID: line.ProductID,
			StoreID:   line.StoreID,
			Quantity:  quantity,
			Threshold: threshold,
		}
		if product, ok := snapshot.ProductByID(line.ProductID); ok {
			finding.ProductName = product.Name
		}
		if store, ok := snapshot.StoreByID(line.StoreID); ok {
			finding.StoreName = store.Name
		}
		findings = append(findings, finding)
	}
	return findings
}
