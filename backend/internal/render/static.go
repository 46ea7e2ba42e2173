package render

import (
	"bytes"
	"context"
	"fmt"

	"github.com/goccy/go-graphviz"

	"friendgraph/backend/internal/graph"
)

// LabelFunc resolves a node's display label. Returning ok=false drops the
// node (and every edge touching it) from the output, which is how nodes for
// users who have left the guild are filtered out of renders.
type LabelFunc func(id graph.UserID) (label string, ok bool)

// IDLabels labels every node with its raw identifier and drops nothing.
func IDLabels(id graph.UserID) (string, bool) {
	return string(id), true
}

// StaticPNG renders a snapshot to a raster image: spring-model layout, nodes
// as labeled points, edges as lines. An empty snapshot renders a valid blank
// image. The snapshot is read-only and is never modified.
func StaticPNG(ctx context.Context, snap *graph.Snapshot, labels LabelFunc) ([]byte, error) {
	if labels == nil {
		labels = IDLabels
	}

	dot := ToDOT(snap, labels)

	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	// neato's spring model matches the force-directed placement the static
	// view calls for; placement varies between renders and that is fine.
	gv.SetLayout(graphviz.NEATO)

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}

// ToDOT converts a snapshot to undirected Graphviz DOT. Nodes whose label
// resolver drops them are omitted along with their edges.
func ToDOT(snap *graph.Snapshot, labels LabelFunc) string {
	if labels == nil {
		labels = IDLabels
	}

	kept := make(map[graph.UserID]string, len(snap.Nodes))
	for _, n := range snap.Nodes {
		if label, ok := labels(n); ok {
			kept[n] = label
		}
	}

	var buf bytes.Buffer
	buf.WriteString("graph G {\n")
	buf.WriteString("  bgcolor=\"white\";\n")
	buf.WriteString("  overlap=false;\n")
	buf.WriteString("  node [shape=circle, style=filled, fillcolor=skyblue, fontsize=10];\n")
	buf.WriteString("  edge [color=gray40];\n")
	buf.WriteString("\n")

	for _, n := range snap.Nodes {
		label, ok := kept[n]
		if !ok {
			continue
		}
		fmt.Fprintf(&buf, "  %q [label=%q];\n", string(n), label)
	}

	buf.WriteString("\n")
	for _, e := range snap.Edges {
		if _, ok := kept[e.A]; !ok {
			continue
		}
		if _, ok := kept[e.B]; !ok {
			continue
		}
		fmt.Fprintf(&buf, "  %q -- %q;\n", string(e.A), string(e.B))
	}

	buf.WriteString("}\n")
	return buf.String()
}
