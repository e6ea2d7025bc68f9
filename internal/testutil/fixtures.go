package testutil

import (
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/alexanderramin/tally/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var testCodeCounter atomic.Int64

// Order options
type OrderOption func(*domain.Order)

func WithOrderCode(code string) OrderOption {
	return func(o *domain.Order) {
		o.Code = code
	}
}

func WithWeightBasis(b domain.WeightBasis) OrderOption {
	return func(o *domain.Order) {
		o.WeightBasis = b
	}
}

func defaultOrderCode(name string) string {
	upper := strings.ToUpper(name)
	var letters []byte
	for i := 0; i < len(upper) && len(letters) < 3; i++ {
		if upper[i] >= 'A' && upper[i] <= 'Z' {
			letters = append(letters, upper[i])
		}
	}
	for len(letters) < 3 {
		letters = append(letters, 'X')
	}
	n := testCodeCounter.Add(1)
	return fmt.Sprintf("%s%02d", string(letters), n)
}

func NewTestOrder(name string, opts ...OrderOption) *domain.Order {
	now := time.Now().UTC()
	o := &domain.Order{
		ID:          uuid.New().String(),
		Code:        defaultOrderCode(name),
		Name:        name,
		WeightBasis: domain.WeightHours,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WorkNode options
type NodeOption func(*domain.WorkNode)

func WithNodeKind(k domain.NodeKind) NodeOption {
	return func(n *domain.WorkNode) {
		n.Kind = k
	}
}

func WithParentID(id string) NodeOption {
	return func(n *domain.WorkNode) {
		n.ParentID = &id
	}
}

func WithHours(h int) NodeOption {
	return func(n *domain.WorkNode) {
		n.Hours = h
	}
}

func WithBudget(b int64) NodeOption {
	return func(n *domain.WorkNode) {
		n.Budget = decimal.NewFromInt(b)
	}
}

func WithOrderIndex(i int) NodeOption {
	return func(n *domain.WorkNode) {
		n.OrderIndex = i
	}
}

func WithSeq(seq int) NodeOption {
	return func(n *domain.WorkNode) {
		n.Seq = seq
	}
}

// NewTestNode returns a line node with 100 hours.
func NewTestNode(orderID, name string, opts ...NodeOption) *domain.WorkNode {
	now := time.Now().UTC()
	n := &domain.WorkNode{
		ID:        uuid.New().String(),
		OrderID:   orderID,
		Name:      name,
		Kind:      domain.NodeLine,
		Hours:     100,
		Budget:    decimal.Zero,
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Assignment options
type AssignmentOption func(*domain.DirectAdvanceAssignment)

func WithReportGlobal() AssignmentOption {
	return func(a *domain.DirectAdvanceAssignment) {
		a.ReportGlobalAdvance = true
	}
}

// WithMeasurement appends a measurement on the given YYYY-MM-DD day.
func WithMeasurement(day string, value int64) AssignmentOption {
	return func(a *domain.DirectAdvanceAssignment) {
		d, err := time.Parse("2006-01-02", day)
		if err != nil {
			panic(err)
		}
		a.Measurements = append(a.Measurements, domain.AdvanceMeasurement{
			ID:           uuid.New().String(),
			AssignmentID: a.ID,
			Date:         d,
			Value:        decimal.NewFromInt(value),
		})
	}
}

func NewTestAssignment(nodeID, typeName string, maxValue int64, opts ...AssignmentOption) *domain.DirectAdvanceAssignment {
	now := time.Now().UTC()
	a := &domain.DirectAdvanceAssignment{
		ID:          uuid.New().String(),
		NodeID:      nodeID,
		AdvanceType: typeName,
		MaxValue:    decimal.NewFromInt(maxValue),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}
