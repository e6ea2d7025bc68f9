package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// WorkNode is a node of an order's work-breakdown structure: either a group
// of other nodes or a line carrying planned effort.
type WorkNode struct {
	ID         string
	OrderID    string
	ParentID   *string
	Seq        int // order-scoped sequential ID
	Code       string
	Name       string
	Kind       NodeKind
	OrderIndex int
	Hours      int
	Budget     decimal.Decimal
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// IsGroup reports whether the node may hold children.
func (n *WorkNode) IsGroup() bool {
	return n.Kind == NodeGroup
}
