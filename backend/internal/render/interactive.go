package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"

	"friendgraph/backend/internal/graph"
)

// visNode and visEdge mirror the vis-network dataset shapes embedded in the
// interactive document.
type visNode struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

type visEdge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// InteractiveHTML renders a snapshot to a self-contained HTML document with a
// client-side physics canvas (vis-network, barnes-hut). The page needs no
// further server involvement: pan, zoom and drag all run in the browser.
// Every node and edge is encoded exactly once; an empty snapshot produces a
// valid empty-canvas document.
func InteractiveHTML(snap *graph.Snapshot, labels LabelFunc) ([]byte, error) {
	if labels == nil {
		labels = IDLabels
	}

	kept := make(map[graph.UserID]bool, len(snap.Nodes))
	nodes := make([]visNode, 0, len(snap.Nodes))
	for _, n := range snap.Nodes {
		label, ok := labels(n)
		if !ok {
			continue
		}
		kept[n] = true
		nodes = append(nodes, visNode{ID: string(n), Label: label})
	}

	edges := make([]visEdge, 0, len(snap.Edges))
	for _, e := range snap.Edges {
		if !kept[e.A] || !kept[e.B] {
			continue
		}
		edges = append(edges, visEdge{From: string(e.A), To: string(e.B)})
	}

	nodesJSON, err := json.Marshal(nodes)
	if err != nil {
		return nil, fmt.Errorf("encode nodes: %w", err)
	}
	edgesJSON, err := json.Marshal(edges)
	if err != nil {
		return nil, fmt.Errorf("encode edges: %w", err)
	}

	var buf bytes.Buffer
	err = interactiveTmpl.Execute(&buf, interactiveData{
		Nodes: template.JS(nodesJSON),
		Edges: template.JS(edgesJSON),
	})
	if err != nil {
		return nil, fmt.Errorf("render template: %w", err)
	}
	return buf.Bytes(), nil
}

type interactiveData struct {
	Nodes template.JS
	Edges template.JS
}

var interactiveTmpl = template.Must(template.New("interactive").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Friendship Graph</title>
<script src="https://unpkg.com/vis-network@9.1.9/standalone/umd/vis-network.min.js"></script>
<style>
  html, body { margin: 0; padding: 0; background: #FFFFFF; }
  #graph { width: 100%; height: 100vh; }
</style>
</head>
<body>
<div id="graph"></div>
<script>
  var nodes = new vis.DataSet({{.Nodes}});
  var edges = new vis.DataSet({{.Edges}});
  var container = document.getElementById("graph");
  var options = {
    nodes: {
      scaling: { min: 20, max: 50 },
      font: { size: 20, face: "arial", color: "black" }
    },
    edges: {
      width: 3,
      color: { inherit: true },
      smooth: { enabled: true, type: "dynamic" }
    },
    physics: {
      barnesHut: {
        gravitationalConstant: -2000,
        springLength: 95,
        springConstant: 0.04
      },
      stabilization: { iterations: 200 }
    },
    interaction: { dragNodes: true, zoomView: true, dragView: true }
  };
  new vis.Network(container, { nodes: nodes, edges: edges }, options);
</script>
</body>
</html>
`))
