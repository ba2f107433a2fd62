package graph

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	graphlib "github.com/dominikbraun/graph"
)

// FormatDOT renders the include graph in Graphviz DOT format. Nodes are
// labeled by basename; test sources are filled light green, everything else
// white.
func FormatDOT(g graphlib.Graph[string, string], testFiles map[string]bool) (string, error) {
	adjacency, err := g.AdjacencyMap()
	if err != nil {
		return "", fmt.Errorf("failed to read adjacency map: %w", err)
	}

	nodes := make([]string, 0, len(adjacency))
	for node := range adjacency {
		nodes = append(nodes, node)
	}
	sort.Strings(nodes)

	var sb strings.Builder
	sb.WriteString("digraph dependencies {\n")
	sb.WriteString("  rankdir=LR;\n")
	sb.WriteString("  node [shape=box];\n\n")

	styledNodes := make(map[string]bool)
	for _, node := range nodes {
		base := filepath.Base(node)
		if styledNodes[base] {
			continue
		}
		styledNodes[base] = true

		color := "white"
		if testFiles[node] {
			color = "lightgreen"
		}
		sb.WriteString(fmt.Sprintf("  %q [style=filled, fillcolor=%s];\n", base, color))
	}
	sb.WriteString("\n")

	for _, node := range nodes {
		targets := make([]string, 0, len(adjacency[node]))
		for target := range adjacency[node] {
			targets = append(targets, target)
		}
		sort.Strings(targets)

		for _, target := range targets {
			sb.WriteString(fmt.Sprintf("  %q -> %q;\n", filepath.Base(node), filepath.Base(target)))
		}
	}

	sb.WriteString("}\n")
	return sb.String(), nil
}
