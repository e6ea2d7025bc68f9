// Package advance computes progress ("advance") of a work-breakdown tree.
//
// Nodes hold direct advance assignments: dated measurement series of one
// advance type. Every group derives indirect assignments from the direct
// assignments found below it, and each node reports one overall completion
// percentage taken from its global assignment or from the weighted average
// of its children.
//
// A Tree is an in-memory snapshot addressed by NodeID handles. It does no
// I/O and is not safe for concurrent mutation.
package advance

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/alexanderramin/tally/internal/domain"
	"github.com/shopspring/decimal"
)

// NodeID is a handle to a node of a Tree.
type NodeID int

// NoNode is the parent of the root.
const NoNode NodeID = -1

// NodeSpec describes a node when it is added to a Tree.
type NodeSpec struct {
	Key    string // caller identifier, unique within the tree
	Name   string
	Hours  int
	Budget decimal.Decimal
}

// selection is a transient choice of the global indirect assignment of a
// group. An unset selection means the default applies; a set selection with
// an empty type means no indirect assignment reports global advance.
type selection struct {
	set      bool
	typeName string
}

type node struct {
	spec     NodeSpec
	parent   NodeID
	children []NodeID
	direct   []*Assignment
	selected selection
}

// Tree is a work-breakdown tree with its advance assignments.
type Tree struct {
	nodes     []node
	keys      map[string]NodeID
	types     map[string]domain.AdvanceType
	clock     func() time.Time
	basis     domain.WeightBasis
	consensus bool
	logger    *slog.Logger
}

// Option configures a Tree.
type Option func(*Tree)

// WithClock sets the source of the current date used by AdvancePercentage.
func WithClock(now func() time.Time) Option {
	return func(t *Tree) {
		if now != nil {
			t.clock = now
		}
	}
}

// WithWeightBasis selects hours or budget as the weight of each node.
func WithWeightBasis(b domain.WeightBasis) Option {
	return func(t *Tree) {
		if b != "" {
			t.basis = b
		}
	}
}

// WithConsensusSelection makes a group report global advance through the
// advance type all of its children report through, when there is one,
// instead of the children average.
func WithConsensusSelection() Option {
	return func(t *Tree) {
		t.consensus = true
	}
}

// WithLogger sets the logger receiving debug records about flag changes.
func WithLogger(l *slog.Logger) Option {
	return func(t *Tree) {
		if l != nil {
			t.logger = l
		}
	}
}

// NewTree creates a tree holding only its root. The predefined advance
// types are registered.
func NewTree(root NodeSpec, opts ...Option) *Tree {
	t := &Tree{
		keys:   make(map[string]NodeID),
		types:  make(map[string]domain.AdvanceType),
		clock:  time.Now,
		basis:  domain.WeightHours,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(t)
	}
	for _, at := range domain.PredefinedAdvanceTypes() {
		t.types[at.Name] = at
	}
	t.nodes = append(t.nodes, node{spec: root, parent: NoNode})
	if root.Key != "" {
		t.keys[root.Key] = 0
	}
	return t
}

// Root returns the root handle.
func (t *Tree) Root() NodeID {
	return 0
}

// Len returns the number of nodes, root included.
func (t *Tree) Len() int {
	return len(t.nodes)
}

// Today returns the current date according to the tree's clock.
func (t *Tree) Today() time.Time {
	return Day(t.clock())
}

// AddNode appends a child to parent and returns its handle.
func (t *Tree) AddNode(parent NodeID, spec NodeSpec) (NodeID, error) {
	if !t.valid(parent) {
		return NoNode, fmt.Errorf("parent %d: %w", parent, ErrUnknownNode)
	}
	if spec.Hours < 0 {
		return NoNode, fmt.Errorf("node %q hours %d: %w", spec.Name, spec.Hours, ErrInvalidWeight)
	}
	if spec.Budget.IsNegative() {
		return NoNode, fmt.Errorf("node %q budget %s: %w", spec.Name, spec.Budget, ErrInvalidWeight)
	}
	if spec.Key != "" {
		if _, exists := t.keys[spec.Key]; exists {
			return NoNode, fmt.Errorf("node key %q already in tree", spec.Key)
		}
	}

	id := NodeID(len(t.nodes))
	t.nodes = append(t.nodes, node{spec: spec, parent: parent})
	t.nodes[parent].children = append(t.nodes[parent].children, id)
	if spec.Key != "" {
		t.keys[spec.Key] = id
	}
	return id, nil
}

// Find returns the handle of the node added with key.
func (t *Tree) Find(key string) (NodeID, bool) {
	id, ok := t.keys[key]
	return id, ok
}

// Spec returns the description the node was added with.
func (t *Tree) Spec(id NodeID) NodeSpec {
	if !t.valid(id) {
		return NodeSpec{}
	}
	return t.nodes[id].spec
}

// Parent returns the parent handle, or NoNode for the root.
func (t *Tree) Parent(id NodeID) NodeID {
	if !t.valid(id) {
		return NoNode
	}
	return t.nodes[id].parent
}

// Children returns the node's children in insertion order.
func (t *Tree) Children(id NodeID) []NodeID {
	if !t.valid(id) {
		return nil
	}
	out := make([]NodeID, len(t.nodes[id].children))
	copy(out, t.nodes[id].children)
	return out
}

// IsLeaf reports whether the node has no children.
func (t *Tree) IsLeaf(id NodeID) bool {
	return t.valid(id) && len(t.nodes[id].children) == 0
}

// Walk visits the subtree of id depth-first in pre-order. Returning false
// from fn skips the children of the visited node.
func (t *Tree) Walk(id NodeID, fn func(id NodeID, depth int) bool) {
	if !t.valid(id) {
		return
	}
	t.walk(id, 0, fn)
}

func (t *Tree) walk(id NodeID, depth int, fn func(NodeID, int) bool) {
	if !fn(id, depth) {
		return
	}
	for _, c := range t.nodes[id].children {
		t.walk(c, depth+1, fn)
	}
}

// Weight returns the planned effort of a node: its own hours or budget for
// a leaf, the sum of its children's weights for a group.
func (t *Tree) Weight(id NodeID) decimal.Decimal {
	if !t.valid(id) {
		return decimal.Zero
	}
	n := &t.nodes[id]
	if len(n.children) == 0 {
		if t.basis == domain.WeightBudget {
			return n.spec.Budget
		}
		return decimal.NewFromInt(int64(n.spec.Hours))
	}
	total := decimal.Zero
	for _, c := range n.children {
		total = total.Add(t.Weight(c))
	}
	return total
}

// RegisterType adds or replaces an advance type.
func (t *Tree) RegisterType(at domain.AdvanceType) error {
	if at.Name == "" {
		return fmt.Errorf("advance type name is required")
	}
	if !at.DefaultMaxValue.IsPositive() {
		return fmt.Errorf("advance type %q max value %s: %w", at.Name, at.DefaultMaxValue, ErrInvalidMaxValue)
	}
	if at.Precision < 0 {
		return fmt.Errorf("advance type %q precision %d must not be negative", at.Name, at.Precision)
	}
	t.types[at.Name] = at
	return nil
}

// Type looks up a registered advance type.
func (t *Tree) Type(name string) (domain.AdvanceType, bool) {
	at, ok := t.types[name]
	return at, ok
}

func (t *Tree) precision(typeName string) int32 {
	if at, ok := t.types[typeName]; ok {
		return at.Precision
	}
	return domain.DefaultAdvancePrecision
}

func (t *Tree) valid(id NodeID) bool {
	return id >= 0 && int(id) < len(t.nodes)
}

func (t *Tree) key(id NodeID) string {
	if k := t.nodes[id].spec.Key; k != "" {
		return k
	}
	return fmt.Sprintf("#%d", id)
}
