package leiden

import (
	"math/rand"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// connected reports whether the members induce a connected subgraph of g.
func connected(g *Graph, members []int) bool {
	induced := simple.NewUndirectedGraph()
	in := make(map[int]bool, len(members))
	for _, v := range members {
		in[v] = true
		induced.AddNode(simple.Node(v))
	}
	for _, v := range members {
		neighbors, _ := g.GetNeighbors(v)
		for _, u := range neighbors {
			if in[u] && u > v {
				induced.SetEdge(simple.Edge{F: simple.Node(v), T: simple.Node(u)})
			}
		}
	}
	return len(topo.ConnectedComponents(induced)) == 1
}

// refines reports whether every community of fine lies inside one community
// of coarse.
func refines(fine, coarse *Partition) bool {
	for _, c := range fine.Communities() {
		members := fine.Members(c)
		for _, v := range members[1:] {
			if coarse.CommunityOf(v) != coarse.CommunityOf(members[0]) {
				return false
			}
		}
	}
	return true
}

func TestRefineSplitsDisconnectedCommunity(t *testing.T) {
	// Two triangles with no bridge, forced into one community.
	g := buildGraph(t, 6, []testEdge{
		{u: 0, v: 1}, {u: 0, v: 2}, {u: 1, v: 2},
		{u: 3, v: 4}, {u: 3, v: 5}, {u: 4, v: 5},
	})
	p, err := NewPartitionFromAssignment(g, []int{0, 0, 0, 0, 0, 0})
	require.NoError(t, err)

	refined := Refine(g, p, Quality{Kind: CPM, Resolution: 0.1}, 0.01, rand.New(rand.NewSource(1)))
	require.NoError(t, refined.Validate(g))

	assert.True(t, refines(refined, p))
	for _, c := range refined.Communities() {
		assert.True(t, connected(g, refined.Members(c)))
	}
	assert.Equal(t, refined.CommunityOf(0), refined.CommunityOf(1))
	assert.Equal(t, refined.CommunityOf(0), refined.CommunityOf(2))
	assert.Equal(t, refined.CommunityOf(3), refined.CommunityOf(4))
	assert.Equal(t, refined.CommunityOf(3), refined.CommunityOf(5))
	assert.NotEqual(t, refined.CommunityOf(0), refined.CommunityOf(3))
}

func TestRefineKeepsSingletonCommunities(t *testing.T) {
	g := twoTriangles(t)
	p := NewSingletonPartition(g)

	refined := Refine(g, p, Quality{Kind: CPM, Resolution: 0.5}, 0.01, rand.New(rand.NewSource(3)))
	assert.Equal(t, 6, refined.NumCommunities())
}

func TestRefineIsDeterministicForSeed(t *testing.T) {
	rng := rand.New(rand.NewSource(99))
	g := randomGraph(rng, 30, 0.2)
	p, err := NewPartitionFromAssignment(g, make([]int, g.NumNodes()))
	require.NoError(t, err)
	q := Quality{Kind: CPM, Resolution: 0.05}

	first := Refine(g, p, q, 0.5, rand.New(rand.NewSource(5)))
	second := Refine(g, p, q, 0.5, rand.New(rand.NewSource(5)))
	assert.Equal(t, first.Assignment(), second.Assignment())
}

func TestRefineProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("refined communities are connected subsets", prop.ForAll(
		func(seed int64, modularity bool, theta float64) bool {
			rng := rand.New(rand.NewSource(seed))
			g := randomGraph(rng, 2+rng.Intn(25), 0.2)
			p := randomPartition(rng, g, 1+rng.Intn(3))
			q := Quality{Kind: CPM, Resolution: 0.2}
			if modularity {
				q = Quality{Kind: Modularity, Resolution: 1}
			}

			refined := Refine(g, p, q, theta, rng)
			if refined.Validate(g) != nil || !refines(refined, p) {
				return false
			}
			for _, c := range refined.Communities() {
				if !connected(g, refined.Members(c)) {
					return false
				}
			}
			return refined.NumCommunities() >= p.NumCommunities()
		},
		gen.Int64(),
		gen.Bool(),
		gen.Float64Range(0.01, 1),
	))

	properties.TestingRun(t)
}
