package advance

import "errors"

var (
	// ErrDuplicateAdvanceAssignmentForNode is returned when a node, one of its
	// ancestors or one of its descendants already holds a direct assignment
	// of the same advance type.
	ErrDuplicateAdvanceAssignmentForNode = errors.New("duplicate advance assignment for node")

	// ErrDuplicateGlobalReportFlag is returned when a second direct assignment
	// of one node is flagged as reporting the node's global advance.
	ErrDuplicateGlobalReportFlag = errors.New("another advance assignment already reports global advance")

	ErrInvalidMeasurement        = errors.New("invalid advance measurement")
	ErrInvalidMaxValue           = errors.New("invalid advance max value")
	ErrInvalidWeight             = errors.New("invalid node weight")
	ErrUnknownAdvanceType        = errors.New("unknown advance type")
	ErrUnknownNode               = errors.New("unknown node")
	ErrAssignmentNotFound        = errors.New("advance assignment not found")
	ErrChildrenTypeNotAssignable = errors.New("children advance type cannot be assigned directly")
)
