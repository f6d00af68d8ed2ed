// Package interference provides the undirected conflict graph register
// allocation operates on. Vertices are symbolic names (variables and
// physical registers); an edge means the two may not share a register.
package interference

import (
	"fmt"
	"sort"
)

// Set is an unordered collection of vertex names.
type Set map[string]struct{}

// NewSet returns a set containing the given names.
func NewSet(names ...string) Set {
	s := make(Set, len(names))
	for _, name := range names {
		s[name] = struct{}{}
	}
	return s
}

// Add inserts a name into the set.
func (s Set) Add(name string) { s[name] = struct{}{} }

// Contains reports membership.
func (s Set) Contains(name string) bool {
	_, ok := s[name]
	return ok
}

// Sorted returns the members in lexical order, for deterministic output.
func (s Set) Sorted() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Graph is an undirected interference graph stored as adjacency sets.
// The symmetric closure is maintained on every mutation: whenever (u,v)
// is added, v is in adj(u) and u is in adj(v). The graph is append-only;
// there is no edge or vertex removal.
type Graph struct {
	adjacency map[string]Set
}

// New creates a graph whose adjacency mapping contains every given vertex
// with an empty neighbor set. Duplicate vertices overwrite earlier entries.
func New(vertices []string) *Graph {
	g := &Graph{adjacency: make(map[string]Set, len(vertices))}
	for _, v := range vertices {
		g.adjacency[v] = NewSet()
	}
	return g
}

// AddEdge records that u and v interfere: v is inserted into u's neighbor
// set and u into v's, as two independent mutations. Unknown endpoints are
// created with an empty neighbor set first rather than rejected.
func (g *Graph) AddEdge(u, v string) {
	g.ensure(u).Add(v)
	g.ensure(v).Add(u)
}

func (g *Graph) ensure(v string) Set {
	s, ok := g.adjacency[v]
	if !ok {
		s = NewSet()
		g.adjacency[v] = s
	}
	return s
}

// Adjacent returns the neighbor set of u. Querying a vertex that is not in
// the graph is a caller error and is reported as one.
func (g *Graph) Adjacent(u string) (Set, error) {
	s, ok := g.adjacency[u]
	if !ok {
		return nil, fmt.Errorf("interference: unknown vertex %q", u)
	}
	return s, nil
}

// HasEdge reports whether u and v interfere.
func (g *Graph) HasEdge(u, v string) bool {
	s, ok := g.adjacency[u]
	return ok && s.Contains(v)
}

// Degree returns the number of neighbors of u, zero for unknown vertices.
func (g *Graph) Degree(u string) int {
	return len(g.adjacency[u])
}

// VertexCount returns the number of vertices.
func (g *Graph) VertexCount() int { return len(g.adjacency) }

// EdgeCount returns the number of undirected edges. Self-loops, while
// meaningless, count once.
func (g *Graph) EdgeCount() int {
	count := 0
	for u, neighbors := range g.adjacency {
		for v := range neighbors {
			if u <= v {
				count++
			}
		}
	}
	return count
}

// Vertices returns all vertex names in lexical order.
func (g *Graph) Vertices() []string {
	names := make([]string, 0, len(g.adjacency))
	for v := range g.adjacency {
		names = append(names, v)
	}
	sort.Strings(names)
	return names
}
