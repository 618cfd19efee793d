package leiden

import (
	"fmt"
	"sort"
)

// Graph is an immutable weighted undirected graph over a dense node index
// space 0..NumNodes()-1. Each index maps to the caller's node id.
//
// Besides adjacency, every node carries the bookkeeping needed to evaluate
// quality on aggregated graphs: the number of original nodes it stands for
// (size), its null-model degree (strength) and the weight of original edges
// absorbed inside it (self weight).
type Graph struct {
	ids         []int64
	index       map[int64]int
	adjacency   [][]int
	weights     [][]float64
	degrees     []float64
	sizes       []float64
	strengths   []float64
	selfWeights []float64
	numEdges    int
	totalWeight float64
}

// Builder accumulates nodes and edges and validates them on Build.
type Builder struct {
	ids   []int64
	index map[int64]int
	edges []builderEdge
	seen  map[[2]int64]bool
	err   error
}

type builderEdge struct {
	u, v   int64
	weight float64
}

// NewBuilder creates an empty graph builder.
func NewBuilder() *Builder {
	return &Builder{
		index: make(map[int64]int),
		seen:  make(map[[2]int64]bool),
	}
}

// AddNode registers a node id. Registering the same id twice is malformed.
func (b *Builder) AddNode(id int64) *Builder {
	if b.err != nil {
		return b
	}
	if _, exists := b.index[id]; exists {
		b.err = malformed("duplicate node id %d", id)
		return b
	}
	b.index[id] = len(b.ids)
	b.ids = append(b.ids, id)
	return b
}

// AddEdge adds an unweighted undirected edge.
func (b *Builder) AddEdge(u, v int64) *Builder {
	return b.AddWeightedEdge(u, v, 1.0)
}

// AddWeightedEdge adds an undirected edge with a positive weight. Endpoints
// are resolved at Build time so nodes may be added after their edges.
func (b *Builder) AddWeightedEdge(u, v int64, weight float64) *Builder {
	if b.err != nil {
		return b
	}
	if u == v {
		b.err = malformed("self-loop on node %d", u)
		return b
	}
	if weight <= 0 {
		b.err = malformed("non-positive weight %f on edge %d-%d", weight, u, v)
		return b
	}
	key := [2]int64{u, v}
	if u > v {
		key = [2]int64{v, u}
	}
	if b.seen[key] {
		b.err = malformed("parallel edge %d-%d", u, v)
		return b
	}
	b.seen[key] = true
	b.edges = append(b.edges, builderEdge{u: u, v: v, weight: weight})
	return b
}

// Build validates the accumulated input and returns the graph.
func (b *Builder) Build() (*Graph, error) {
	if b.err != nil {
		return nil, b.err
	}

	g := newGraph(len(b.ids))
	copy(g.ids, b.ids)
	for id, i := range b.index {
		g.index[id] = i
	}

	for _, e := range b.edges {
		ui, ok := b.index[e.u]
		if !ok {
			return nil, malformed("edge %d-%d references unknown node %d", e.u, e.v, e.u)
		}
		vi, ok := b.index[e.v]
		if !ok {
			return nil, malformed("edge %d-%d references unknown node %d", e.u, e.v, e.v)
		}
		g.addEdge(ui, vi, e.weight)
	}

	for i := range g.ids {
		g.sizes[i] = 1
		g.strengths[i] = g.degrees[i]
	}
	g.finalize()
	return g, nil
}

func newGraph(numNodes int) *Graph {
	return &Graph{
		ids:         make([]int64, numNodes),
		index:       make(map[int64]int, numNodes),
		adjacency:   make([][]int, numNodes),
		weights:     make([][]float64, numNodes),
		degrees:     make([]float64, numNodes),
		sizes:       make([]float64, numNodes),
		strengths:   make([]float64, numNodes),
		selfWeights: make([]float64, numNodes),
	}
}

// addEdge is only used while a graph is being assembled.
func (g *Graph) addEdge(u, v int, weight float64) {
	g.adjacency[u] = append(g.adjacency[u], v)
	g.weights[u] = append(g.weights[u], weight)
	g.adjacency[v] = append(g.adjacency[v], u)
	g.weights[v] = append(g.weights[v], weight)
	g.degrees[u] += weight
	g.degrees[v] += weight
	g.numEdges++
	g.totalWeight += weight
}

// finalize sorts every adjacency row so neighbor iteration is deterministic
// and edge lookups can binary search.
func (g *Graph) finalize() {
	for i := range g.adjacency {
		row, ws := g.adjacency[i], g.weights[i]
		sort.Sort(adjacencyRow{row, ws})
	}
}

type adjacencyRow struct {
	nodes   []int
	weights []float64
}

func (r adjacencyRow) Len() int           { return len(r.nodes) }
func (r adjacencyRow) Less(i, j int) bool { return r.nodes[i] < r.nodes[j] }
func (r adjacencyRow) Swap(i, j int) {
	r.nodes[i], r.nodes[j] = r.nodes[j], r.nodes[i]
	r.weights[i], r.weights[j] = r.weights[j], r.weights[i]
}

// NumNodes returns the number of nodes.
func (g *Graph) NumNodes() int { return len(g.ids) }

// NumEdges returns the number of distinct undirected edges.
func (g *Graph) NumEdges() int { return g.numEdges }

// TotalWeight returns m, the total edge weight the quality functions
// normalise by. On weighted aggregates this is still the original m.
func (g *Graph) TotalWeight() float64 { return g.totalWeight }

// ID returns the caller-facing id of node index i.
func (g *Graph) ID(i int) int64 { return g.ids[i] }

// Index returns the dense index of a node id.
func (g *Graph) Index(id int64) (int, bool) {
	i, ok := g.index[id]
	return i, ok
}

// Degree returns the number of neighbors of node i.
func (g *Graph) Degree(i int) int { return len(g.adjacency[i]) }

// WeightedDegree returns the sum of incident edge weights of node i.
func (g *Graph) WeightedDegree(i int) float64 { return g.degrees[i] }

// Size returns the number of original nodes node i represents.
func (g *Graph) Size(i int) float64 { return g.sizes[i] }

// Strength returns the degree of node i used by the modularity null model.
func (g *Graph) Strength(i int) float64 { return g.strengths[i] }

// SelfWeight returns the weight of original edges absorbed inside node i.
func (g *Graph) SelfWeight(i int) float64 { return g.selfWeights[i] }

// GetNeighbors returns the neighbors of node i and the matching edge weights.
// The slices are owned by the graph and must not be modified.
func (g *Graph) GetNeighbors(i int) ([]int, []float64) {
	if i < 0 || i >= len(g.ids) {
		return nil, nil
	}
	return g.adjacency[i], g.weights[i]
}

// GetEdgeWeight returns the weight of edge u-v, or 0 if there is none.
func (g *Graph) GetEdgeWeight(u, v int) float64 {
	if u < 0 || u >= len(g.ids) || v < 0 || v >= len(g.ids) {
		return 0
	}
	row := g.adjacency[u]
	k := sort.SearchInts(row, v)
	if k < len(row) && row[k] == v {
		return g.weights[u][k]
	}
	return 0
}

// HasEdge reports whether u and v are adjacent.
func (g *Graph) HasEdge(u, v int) bool {
	return g.GetEdgeWeight(u, v) > 0
}

// Validate checks structural consistency.
func (g *Graph) Validate() error {
	for i := range g.adjacency {
		if len(g.adjacency[i]) != len(g.weights[i]) {
			return fmt.Errorf("adjacency and weights inconsistent for node %d", i)
		}
		for k, j := range g.adjacency[i] {
			if j < 0 || j >= len(g.ids) {
				return fmt.Errorf("invalid neighbor %d for node %d", j, i)
			}
			if j == i {
				return fmt.Errorf("self-loop on node %d", i)
			}
			if g.weights[i][k] <= 0 {
				return fmt.Errorf("non-positive weight %f for edge %d-%d", g.weights[i][k], i, j)
			}
			if g.GetEdgeWeight(j, i) != g.weights[i][k] {
				return fmt.Errorf("graph is not symmetric: edge %d-%d", i, j)
			}
		}
	}
	return nil
}
