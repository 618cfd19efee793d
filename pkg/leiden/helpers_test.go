package leiden

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

type testEdge struct {
	u, v   int64
	weight float64
}

func buildGraph(t testing.TB, numNodes int, edges []testEdge) *Graph {
	t.Helper()
	b := NewBuilder()
	for i := 0; i < numNodes; i++ {
		b.AddNode(int64(i))
	}
	for _, e := range edges {
		w := e.weight
		if w == 0 {
			w = 1
		}
		b.AddWeightedEdge(e.u, e.v, w)
	}
	g, err := b.Build()
	require.NoError(t, err)
	return g
}

// twoTriangles is {0,1,2} and {3,4,5} joined by the bridge 2-3.
func twoTriangles(t testing.TB) *Graph {
	return buildGraph(t, 6, []testEdge{
		{u: 0, v: 1}, {u: 0, v: 2}, {u: 1, v: 2},
		{u: 3, v: 4}, {u: 3, v: 5}, {u: 4, v: 5},
		{u: 2, v: 3},
	})
}

func completeGraph(t testing.TB, n int) *Graph {
	var edges []testEdge
	for u := 0; u < n; u++ {
		for v := u + 1; v < n; v++ {
			edges = append(edges, testEdge{u: int64(u), v: int64(v)})
		}
	}
	return buildGraph(t, n, edges)
}

// randomGraph draws a G(n, p) graph with integer weights in [1, 3].
func randomGraph(rng *rand.Rand, n int, p float64) *Graph {
	b := NewBuilder()
	for i := 0; i < n; i++ {
		b.AddNode(int64(i))
	}
	for u := 0; u < n; u++ {
		for v := u + 1; v < n; v++ {
			if rng.Float64() < p {
				b.AddWeightedEdge(int64(u), int64(v), float64(1+rng.Intn(3)))
			}
		}
	}
	g, err := b.Build()
	if err != nil {
		panic(err)
	}
	return g
}

func randomPartition(rng *rand.Rand, g *Graph, k int) *Partition {
	assignment := make([]int, g.NumNodes())
	for v := range assignment {
		assignment[v] = rng.Intn(k)
	}
	p, err := NewPartitionFromAssignment(g, assignment)
	if err != nil {
		panic(err)
	}
	return p
}

func testConfig(overrides map[string]interface{}) *Config {
	config := NewConfig()
	config.Set("logging.level", "disabled")
	config.Set("algorithm.random_seed", int64(42))
	for k, v := range overrides {
		config.Set(k, v)
	}
	return config
}

// sameCommunity reports whether all listed node ids share one label.
func sameCommunity(communities map[int64]int, ids ...int64) bool {
	for _, id := range ids[1:] {
		if communities[id] != communities[ids[0]] {
			return false
		}
	}
	return true
}

func disjointTriangles(t *testing.T) *Graph {
	return buildGraph(t, 6, []testEdge{
		{u: 0, v: 1}, {u: 0, v: 2}, {u: 1, v: 2},
		{u: 3, v: 4}, {u: 3, v: 5}, {u: 4, v: 5},
	})
}
