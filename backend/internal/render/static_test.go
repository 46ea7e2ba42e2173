package render_test

import (
	"bytes"
	"context"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"friendgraph/backend/internal/graph"
	"friendgraph/backend/internal/render"
)

func snapshotOf(t *testing.T, pairs ...[2]graph.UserID) *graph.Snapshot {
	t.Helper()
	ctx := context.Background()
	svc := newService()
	scope := graph.Scope{GuildID: "g", ChannelID: "c"}
	for _, p := range pairs {
		_, err := svc.Connect(ctx, scope, p[0], p[1])
		require.NoError(t, err)
	}
	snap, err := svc.Snapshot(ctx, scope)
	require.NoError(t, err)
	return snap
}

func TestToDOTContainsEachNodeAndEdgeOnce(t *testing.T) {
	snap := snapshotOf(t,
		[2]graph.UserID{"u1", "u2"},
		[2]graph.UserID{"u2", "u3"},
	)

	dot := render.ToDOT(snap, render.IDLabels)

	assert.True(t, strings.HasPrefix(dot, "graph G {"))
	assert.Equal(t, 1, strings.Count(dot, `"u1" [label=`))
	assert.Equal(t, 1, strings.Count(dot, `"u2" [label=`))
	assert.Equal(t, 1, strings.Count(dot, `"u3" [label=`))
	assert.Equal(t, 1, strings.Count(dot, `"u1" -- "u2"`))
	assert.Equal(t, 1, strings.Count(dot, `"u2" -- "u3"`))
}

func TestToDOTDropsUnresolvableNodesWithTheirEdges(t *testing.T) {
	snap := snapshotOf(t,
		[2]graph.UserID{"u1", "u2"},
		[2]graph.UserID{"u2", "gone"},
	)

	labels := func(id graph.UserID) (string, bool) {
		if id == "gone" {
			return "", false
		}
		return string(id), true
	}

	dot := render.ToDOT(snap, labels)
	assert.NotContains(t, dot, "gone")
	assert.Contains(t, dot, `"u1" -- "u2"`)
}

func TestToDOTEmptyGraph(t *testing.T) {
	snap := snapshotOf(t)
	dot := render.ToDOT(snap, nil)
	assert.Contains(t, dot, "graph G {")
	assert.NotContains(t, dot, "--")
}

func TestStaticPNGProducesValidImage(t *testing.T) {
	snap := snapshotOf(t,
		[2]graph.UserID{"u1", "u2"},
		[2]graph.UserID{"u2", "u3"},
	)

	data, err := render.StaticPNG(context.Background(), snap, render.IDLabels)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Greater(t, img.Bounds().Dx(), 0)
}

func TestStaticPNGEmptyGraphStillRenders(t *testing.T) {
	snap := snapshotOf(t)

	data, err := render.StaticPNG(context.Background(), snap, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}

func TestRenderingDoesNotMutateSnapshot(t *testing.T) {
	snap := snapshotOf(t, [2]graph.UserID{"u1", "u2"})
	nodesBefore := append([]graph.UserID(nil), snap.Nodes...)
	edgesBefore := append([]graph.Edge(nil), snap.Edges...)

	_ = render.ToDOT(snap, render.IDLabels)
	_, err := render.InteractiveHTML(snap, render.IDLabels)
	require.NoError(t, err)

	assert.Equal(t, nodesBefore, snap.Nodes)
	assert.Equal(t, edgesBefore, snap.Edges)
}
