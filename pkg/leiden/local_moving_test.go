package leiden

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMoveNodesFastTwoTriangles(t *testing.T) {
	g := twoTriangles(t)
	p := NewSingletonPartition(g)
	q := Quality{Kind: CPM, Resolution: 0.5}

	moves, err := MoveNodesFast(g, p, q, 0, nil)
	require.NoError(t, err)
	assert.Greater(t, moves, 0)
	require.NoError(t, p.Validate(g))

	assert.Equal(t, 2, p.NumCommunities())
	assert.Equal(t, p.CommunityOf(0), p.CommunityOf(1))
	assert.Equal(t, p.CommunityOf(0), p.CommunityOf(2))
	assert.Equal(t, p.CommunityOf(3), p.CommunityOf(4))
	assert.Equal(t, p.CommunityOf(3), p.CommunityOf(5))
	assert.InDelta(t, 3.0, q.Value(g, p), 1e-12)
}

func TestMoveNodesFastResolutionExtremes(t *testing.T) {
	g := completeGraph(t, 4)

	t.Run("high resolution keeps singletons", func(t *testing.T) {
		p := NewSingletonPartition(g)
		moves, err := MoveNodesFast(g, p, Quality{Kind: CPM, Resolution: 1.5}, 0, nil)
		require.NoError(t, err)
		assert.Equal(t, 0, moves)
		assert.Equal(t, 4, p.NumCommunities())
	})

	t.Run("low resolution merges the clique", func(t *testing.T) {
		p := NewSingletonPartition(g)
		_, err := MoveNodesFast(g, p, Quality{Kind: CPM, Resolution: 0.1}, 0, nil)
		require.NoError(t, err)
		assert.Equal(t, 1, p.NumCommunities())
	})
}

func TestMoveNodesFastLeavesIsolatedNodeAlone(t *testing.T) {
	g := buildGraph(t, 4, []testEdge{{u: 0, v: 1}, {u: 1, v: 2}, {u: 0, v: 2}})
	p := NewSingletonPartition(g)

	_, err := MoveNodesFast(g, p, Quality{Kind: CPM, Resolution: 0.5}, 0, nil)
	require.NoError(t, err)
	assert.Equal(t, []int{3}, p.Members(p.CommunityOf(3)))
	assert.Equal(t, 2, p.NumCommunities())
}

func TestMoveNodesFastBudget(t *testing.T) {
	g := twoTriangles(t)
	p := NewSingletonPartition(g)

	moves, err := MoveNodesFast(g, p, Quality{Kind: CPM, Resolution: 0.5}, 1, nil)
	assert.Equal(t, 1, moves)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDidNotConverge))

	var convErr *ConvergenceError
	require.True(t, errors.As(err, &convErr))
	assert.Equal(t, "local_moving", convErr.Phase)
	assert.Equal(t, 1, convErr.Limit)
	assert.NoError(t, p.Validate(g), "partition stays valid when the budget runs out")
}

func TestMoveNodesFastTracksImprovingMoves(t *testing.T) {
	g := twoTriangles(t)
	p := NewSingletonPartition(g)
	q := Quality{Kind: Modularity, Resolution: 1}
	tracker := NewMemoryTracker(nil)
	tracker.SetLevel(3)

	moves, err := MoveNodesFast(g, p, q, 0, tracker)
	require.NoError(t, err)

	events := tracker.Events()
	require.Len(t, events, moves)
	previous := q.Value(g, NewSingletonPartition(g))
	for i, e := range events {
		assert.Equal(t, i+1, e.MoveNumber)
		assert.Equal(t, 3, e.Level)
		assert.Equal(t, "modularity", e.Quality)
		assert.Greater(t, e.Gain, 0.0)
		assert.InDelta(t, previous+e.Gain, e.Value, 1e-12)
		previous = e.Value
	}
}

func TestMoveNodesFastProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("quality never drops", prop.ForAll(
		func(seed int64, modularity bool, resolution float64) bool {
			rng := rand.New(rand.NewSource(seed))
			g := randomGraph(rng, 2+rng.Intn(20), 0.25)
			p := randomPartition(rng, g, 1+rng.Intn(3))
			q := Quality{Kind: CPM, Resolution: resolution}
			if modularity {
				q.Kind = Modularity
			}

			before := q.Value(g, p)
			if _, err := MoveNodesFast(g, p, q, 0, nil); err != nil {
				return false
			}
			return p.Validate(g) == nil && q.Value(g, p) >= before-1e-9
		},
		gen.Int64(),
		gen.Bool(),
		gen.Float64Range(0.05, 1.5),
	))

	properties.Property("result is a local optimum and a fixed point", prop.ForAll(
		func(seed int64, modularity bool, resolution float64) bool {
			rng := rand.New(rand.NewSource(seed))
			g := randomGraph(rng, 2+rng.Intn(20), 0.25)
			p := NewSingletonPartition(g)
			q := Quality{Kind: CPM, Resolution: resolution}
			if modularity {
				q.Kind = Modularity
			}

			if _, err := MoveNodesFast(g, p, q, 0, nil); err != nil {
				return false
			}

			for v := 0; v < g.NumNodes(); v++ {
				if q.Delta(g, p, v, NewCommunity) > 1e-9 {
					return false
				}
				neighbors, _ := g.GetNeighbors(v)
				for _, u := range neighbors {
					if q.Delta(g, p, v, p.CommunityOf(u)) > 1e-9 {
						return false
					}
				}
			}

			moves, err := MoveNodesFast(g, p, q, 0, nil)
			return err == nil && moves == 0
		},
		gen.Int64(),
		gen.Bool(),
		gen.Float64Range(0.05, 1.5),
	))

	properties.TestingRun(t)
}
