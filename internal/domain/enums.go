package domain

type NodeKind string

const (
	NodeGroup NodeKind = "group"
	NodeLine  NodeKind = "line"
)

// ValidNodeKinds is the canonical set of accepted node kind strings.
var ValidNodeKinds = map[string]bool{
	"group": true, "line": true,
}

// WeightBasis selects which planned quantity weighs a node when child
// percentages are averaged into their parent.
type WeightBasis string

const (
	WeightHours  WeightBasis = "hours"
	WeightBudget WeightBasis = "budget"
)

// ValidWeightBases is the canonical set of accepted weight basis strings.
var ValidWeightBases = map[string]bool{
	"hours": true, "budget": true,
}

// SourceKind tells where a node's overall percentage comes from.
type SourceKind string

const (
	SourceNone     SourceKind = "none"
	SourceDirect   SourceKind = "direct"
	SourceIndirect SourceKind = "indirect"
)
