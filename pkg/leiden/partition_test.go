package leiden

import (
	"math/rand"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSingletonPartition(t *testing.T) {
	g := twoTriangles(t)
	p := NewSingletonPartition(g)

	assert.Equal(t, 6, p.NumNodes())
	assert.Equal(t, 6, p.NumCommunities())
	for v := 0; v < 6; v++ {
		assert.Equal(t, v, p.CommunityOf(v))
		assert.Equal(t, []int{v}, p.Members(v))
		assert.Equal(t, 1.0, p.CommunitySize(v))
		assert.Equal(t, g.Strength(v), p.CommunityStrength(v))
		assert.Equal(t, 0.0, p.InternalWeight(v))
	}
	assert.NoError(t, p.Validate(g))
}

func TestPartitionFromAssignment(t *testing.T) {
	g := twoTriangles(t)

	p, err := NewPartitionFromAssignment(g, []int{7, 7, 7, 3, 3, 3})
	require.NoError(t, err)
	assert.Equal(t, 2, p.NumCommunities())
	assert.Equal(t, 0, p.CommunityOf(0), "labels follow first appearance")
	assert.Equal(t, 1, p.CommunityOf(5))
	assert.Equal(t, 3.0, p.InternalWeight(0))
	assert.Equal(t, 3.0, p.CommunitySize(1))
	assert.Equal(t, 7.0, p.CommunityStrength(1))
	assert.NoError(t, p.Validate(g))

	_, err = NewPartitionFromAssignment(g, []int{0, 0})
	assert.Error(t, err)
}

func TestMoveKeepsIndexesInStep(t *testing.T) {
	g := twoTriangles(t)
	p := NewSingletonPartition(g)

	got := p.Move(g, 0, 1)
	assert.Equal(t, 1, got)
	assert.False(t, p.Exists(0), "emptied community is released")
	assert.Equal(t, 5, p.NumCommunities())
	assert.Equal(t, []int{0, 1}, p.Members(1))
	assert.Equal(t, 1.0, p.InternalWeight(1))
	assert.Equal(t, 2.0, p.CommunitySize(1))
	require.NoError(t, p.Validate(g))

	// The released id is handed out again for a fresh community.
	fresh := p.Move(g, 1, NewCommunity)
	assert.Equal(t, 0, fresh)
	assert.Equal(t, []int{0}, p.Members(1))
	assert.Equal(t, 0.0, p.InternalWeight(1))
	require.NoError(t, p.Validate(g))

	// Moving a node to its own community changes nothing.
	assert.Equal(t, fresh, p.Move(g, 1, fresh))
	assert.Equal(t, 6, p.NumCommunities())
}

func TestMoveUnknownCommunityPanics(t *testing.T) {
	g := twoTriangles(t)
	p := NewSingletonPartition(g)
	p.Move(g, 0, 1)

	assert.Panics(t, func() { p.Move(g, 2, 0) })
	assert.Panics(t, func() { p.Move(g, 2, 99) })
}

func TestAssignmentIsCompact(t *testing.T) {
	g := twoTriangles(t)
	p := NewSingletonPartition(g)
	p.Move(g, 0, 2)
	p.Move(g, 1, 2)
	p.Move(g, 4, 5)

	assert.Equal(t, []int{0, 0, 0, 1, 2, 2}, p.Assignment())
	assert.Equal(t, []int{2, 3, 5}, p.Communities())
}

func TestCloneIsIndependent(t *testing.T) {
	g := twoTriangles(t)
	p := NewSingletonPartition(g)
	clone := p.Clone()
	clone.Move(g, 0, 1)

	assert.Equal(t, 6, p.NumCommunities())
	assert.Equal(t, 0, p.CommunityOf(0))
	assert.NoError(t, p.Validate(g))
	assert.NoError(t, clone.Validate(g))
}

func TestPartitionProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("random moves keep the partition consistent", prop.ForAll(
		func(seed int64) bool {
			rng := rand.New(rand.NewSource(seed))
			g := randomGraph(rng, 2+rng.Intn(15), 0.3)
			p := randomPartition(rng, g, 1+rng.Intn(4))

			for i := 0; i < 50; i++ {
				v := rng.Intn(g.NumNodes())
				comms := p.Communities()
				target := NewCommunity
				if k := rng.Intn(len(comms) + 1); k < len(comms) {
					target = comms[k]
				}
				p.Move(g, v, target)
				if p.Validate(g) != nil {
					return false
				}
			}

			// Internal weights must match a rebuild from scratch.
			rebuilt, err := NewPartitionFromAssignment(g, p.Assignment())
			if err != nil {
				return false
			}
			for _, c := range p.Communities() {
				rc := rebuilt.CommunityOf(p.Members(c)[0])
				if !approxEqual(p.InternalWeight(c), rebuilt.InternalWeight(rc)) {
					return false
				}
			}
			return true
		},
		gen.Int64(),
	))

	properties.TestingRun(t)
}
