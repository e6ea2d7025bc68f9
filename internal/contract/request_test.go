package contract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewProgressRequest_SetsDefaults(t *testing.T) {
	req := NewProgressRequest("order-1")

	assert.Equal(t, "order-1", req.OrderID)
	assert.Nil(t, req.At)
	assert.NotNil(t, req.Selections)
	assert.Empty(t, req.Selections)
	assert.True(t, req.IncludeAssignments)
}

func TestProgressError_Message(t *testing.T) {
	err := &ProgressError{Code: ProgressErrInvalidSelection, Message: "node #3 has no indirect units"}
	assert.Equal(t, "INVALID_SELECTION: node #3 has no indirect units", err.Error())
}
