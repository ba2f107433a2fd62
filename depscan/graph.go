package depscan

import (
	"errors"

	"github.com/dominikbraun/graph"
)

// Graph builds the directed include graph reachable from the given roots.
// Each edge points from a declaring file to one of its resolved dependencies.
func (r *Resolver) Graph(roots []string) (graph.Graph[string, string], error) {
	g := graph.New(graph.StringHash, graph.Directed())

	visited := make(map[string]bool)
	work := make([]string, 0, len(roots))

	for _, root := range roots {
		if err := addVertex(g, root); err != nil {
			return nil, err
		}
		work = append(work, root)
	}

	for len(work) > 0 {
		current := work[len(work)-1]
		work = work[:len(work)-1]

		if visited[current] || !fileExists(current) {
			continue
		}
		visited[current] = true

		decls, err := r.scanner.Scan(current)
		if err != nil {
			return nil, err
		}

		for _, decl := range decls {
			dep := r.resolvePath(current, decl.Path)
			if err := addVertex(g, dep); err != nil {
				return nil, err
			}
			if err := g.AddEdge(current, dep); err != nil && !errors.Is(err, graph.ErrEdgeAlreadyExists) {
				return nil, err
			}
			if !visited[dep] {
				work = append(work, dep)
			}
		}
	}

	return g, nil
}

func addVertex(g graph.Graph[string, string], vertex string) error {
	if err := g.AddVertex(vertex); err != nil && !errors.Is(err, graph.ErrVertexAlreadyExists) {
		return err
	}
	return nil
}
