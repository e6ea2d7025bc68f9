package cli

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveOrderID(t *testing.T) {
	app := testApp(t)
	seedBridge(t, app)
	ctx := context.Background()

	byCode, err := resolveOrderID(ctx, app, "br01")
	require.NoError(t, err)

	byPrefix, err := resolveOrderID(ctx, app, byCode[:6])
	require.NoError(t, err)
	assert.Equal(t, byCode, byPrefix)

	_, err = resolveOrderID(ctx, app, "zz-nothing")
	assert.ErrorContains(t, err, "order not found")
}

func TestResolveNodeID(t *testing.T) {
	app := testApp(t)
	seedBridge(t, app)
	ctx := context.Background()
	orderID, err := resolveOrderID(ctx, app, "BR01")
	require.NoError(t, err)

	bySeq, err := resolveNodeID(ctx, app, "#2", orderID)
	require.NoError(t, err)
	plain, err := resolveNodeID(ctx, app, "2", orderID)
	require.NoError(t, err)
	assert.Equal(t, bySeq, plain)

	byID, err := resolveNodeID(ctx, app, bySeq, "")
	require.NoError(t, err)
	assert.Equal(t, bySeq, byID)

	byPrefix, err := resolveNodeID(ctx, app, bySeq[:8], "")
	require.NoError(t, err)
	assert.Equal(t, bySeq, byPrefix)

	_, err = resolveNodeID(ctx, app, "#9", orderID)
	assert.ErrorContains(t, err, "node #9 not found")
}

func TestMatchID_Ambiguous(t *testing.T) {
	_, err := matchID("node", "ab", []string{"abc", "abd"})
	assert.ErrorContains(t, err, "ambiguous (2 matches)")

	id, err := matchID("node", "abc", []string{"abc", "abcd"})
	require.NoError(t, err)
	assert.Equal(t, "abc", id)
}
