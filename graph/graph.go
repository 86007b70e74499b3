// Package graph defines the knowledge graph query engine used by the graph lookup tool,
// and an in-memory engine.
package graph

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
)

//go:generate mockgen -source=graph.go -destination=../mocks/mockgraph/graph_mock.gen.go -package mockgraph

// Engine queries the knowledge graph.
type Engine interface {
	// Query returns the nodes and relations reachable within hops from the nodes matching the keyword.
	Query(ctx context.Context, keyword string, hops int) (any, error)
}

// Triple is a relation between two nodes.
type Triple struct {
	Subject   string `json:"subject" yaml:"subject"`
	Predicate string `json:"predicate" yaml:"predicate"`
	Object    string `json:"object" yaml:"object"`
}

// Result of a graph query.
type Result struct {
	Nodes   []string  `json:"nodes" yaml:"nodes"`
	Triples []*Triple `json:"triples" yaml:"triples"`
}

// MemoryGraph is an in-memory Engine.
type MemoryGraph struct {
	mu      sync.RWMutex
	triples []*Triple
	// node to indexes of triples
	edges map[string][]int
}

var _ Engine = (*MemoryGraph)(nil)

// NewMemoryGraph returns a graph with the triples.
func NewMemoryGraph(triples ...*Triple) *MemoryGraph {
	g := &MemoryGraph{
		edges: make(map[string][]int),
	}
	for _, t := range triples {
		g.AddTriple(t)
	}
	return g
}

// AddTriple adds the relation to the graph.
func (g *MemoryGraph) AddTriple(t *Triple) {
	if t == nil || t.Subject == "" || t.Object == "" {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	idx := len(g.triples)
	g.triples = append(g.triples, t)
	g.edges[t.Subject] = append(g.edges[t.Subject], idx)
	if t.Object != t.Subject {
		g.edges[t.Object] = append(g.edges[t.Object], idx)
	}
}

// Query walks the graph in both directions from every node containing the keyword, case-insensitive.
func (g *MemoryGraph) Query(ctx context.Context, keyword string, hops int) (any, error) {
	keyword = strings.ToLower(strings.TrimSpace(keyword))
	if keyword == "" {
		return nil, errors.New("keyword must not be empty")
	}
	if hops < 0 {
		return nil, errors.Newf("invalid hops: %d", hops)
	}

	g.mu.RLock()
	defer g.mu.RUnlock()

	visited := map[string]bool{}
	var frontier []string
	for node := range g.edges {
		if strings.Contains(strings.ToLower(node), keyword) {
			visited[node] = true
			frontier = append(frontier, node)
		}
	}

	used := map[int]bool{}
	for hop := 0; hop < hops && len(frontier) > 0; hop++ {
		if err := ctx.Err(); err != nil {
			return nil, errors.WithStack(err)
		}
		var next []string
		for _, node := range frontier {
			for _, idx := range g.edges[node] {
				used[idx] = true
				t := g.triples[idx]
				for _, n := range []string{t.Subject, t.Object} {
					if !visited[n] {
						visited[n] = true
						next = append(next, n)
					}
				}
			}
		}
		frontier = next
	}

	res := &Result{
		Nodes:   make([]string, 0, len(visited)),
		Triples: make([]*Triple, 0, len(used)),
	}
	for node := range visited {
		res.Nodes = append(res.Nodes, node)
	}
	slices.Sort(res.Nodes)

	idxs := make([]int, 0, len(used))
	for idx := range used {
		idxs = append(idxs, idx)
	}
	slices.Sort(idxs)
	for _, idx := range idxs {
		res.Triples = append(res.Triples, g.triples[idx])
	}
	return res, nil
}
