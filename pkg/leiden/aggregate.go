package leiden

import (
	"fmt"
	"sort"
	"strings"
)

// EdgeMode controls how inter-community edges are merged on aggregation.
type EdgeMode int

const (
	// EdgeWeighted sums original edge weights per community pair and carries
	// sizes, strengths and absorbed weight so quality is preserved exactly.
	EdgeWeighted EdgeMode = iota
	// EdgeDeduplicated keeps one unit-weight edge per community pair. Sizes
	// and absorbed weight are still carried, so CPM is preserved exactly while
	// modularity sees a coarser null model.
	EdgeDeduplicated
)

func (m EdgeMode) String() string {
	switch m {
	case EdgeWeighted:
		return "weighted"
	case EdgeDeduplicated:
		return "deduplicated"
	default:
		return fmt.Sprintf("EdgeMode(%d)", int(m))
	}
}

// ParseEdgeMode accepts "weighted" or "deduplicated".
func ParseEdgeMode(s string) (EdgeMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "weighted":
		return EdgeWeighted, nil
	case "deduplicated", "dedup":
		return EdgeDeduplicated, nil
	default:
		return 0, fmt.Errorf("%w: unknown aggregate edge mode %q", ErrInvalidConfig, s)
	}
}

// Aggregate collapses every community of p into one super-node. Super-node i
// stands for the i-th community in ascending id order; the returned slice
// lists, per super-node, the nodes of g it contains. Edges inside a
// community are absorbed rather than kept as self-loops.
func Aggregate(g *Graph, p *Partition, mode EdgeMode) (*Graph, [][]int) {
	comms := p.Communities()
	commToSuper := make(map[int]int, len(comms))
	members := make([][]int, len(comms))

	super := newGraph(len(comms))
	for i, c := range comms {
		commToSuper[c] = i
		members[i] = p.Members(c)
		super.ids[i] = int64(i)
		super.index[int64(i)] = i
		super.sizes[i] = p.CommunitySize(c)
	}

	superEdges := make(map[[2]int]float64)
	for u := 0; u < g.NumNodes(); u++ {
		su := commToSuper[p.CommunityOf(u)]
		neighbors, weights := g.GetNeighbors(u)
		for k, v := range neighbors {
			if v <= u {
				continue
			}
			sv := commToSuper[p.CommunityOf(v)]
			if su == sv {
				continue
			}
			edge := [2]int{su, sv}
			if sv < su {
				edge = [2]int{sv, su}
			}
			superEdges[edge] += weights[k]
		}
	}

	keys := make([][2]int, 0, len(superEdges))
	for edge := range superEdges {
		keys = append(keys, edge)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i][0] != keys[j][0] {
			return keys[i][0] < keys[j][0]
		}
		return keys[i][1] < keys[j][1]
	})

	for _, edge := range keys {
		weight := superEdges[edge]
		if mode == EdgeDeduplicated {
			weight = 1
		}
		super.addEdge(edge[0], edge[1], weight)
	}

	for i, c := range comms {
		super.selfWeights[i] = p.InternalWeight(c)
	}
	switch mode {
	case EdgeDeduplicated:
		for i := range comms {
			super.strengths[i] = super.degrees[i] + 2*super.selfWeights[i]
			super.totalWeight += super.selfWeights[i]
		}
	default:
		for i, c := range comms {
			super.strengths[i] = p.CommunityStrength(c)
		}
		super.totalWeight = g.TotalWeight()
	}
	super.finalize()
	return super, members
}

// Lineage records, for every node of the current level, the original
// (level 0) node indices it represents. Records are indexed by node index.
type Lineage struct {
	origins [][]int
}

// NewLineage starts a lineage where node i represents original node i.
func NewLineage(numNodes int) *Lineage {
	origins := make([][]int, numNodes)
	for i := range origins {
		origins[i] = []int{i}
	}
	return &Lineage{origins: origins}
}

// Len returns the number of nodes at the current level.
func (l *Lineage) Len() int { return len(l.origins) }

// Origins returns the original nodes represented by node i.
func (l *Lineage) Origins(i int) []int { return l.origins[i] }

// Aggregate returns the lineage of the next level, where super-node i is
// the union of the current-level nodes listed in members[i].
func (l *Lineage) Aggregate(members [][]int) *Lineage {
	next := make([][]int, len(members))
	for i, group := range members {
		for _, v := range group {
			next[i] = append(next[i], l.origins[v]...)
		}
		sort.Ints(next[i])
	}
	return &Lineage{origins: next}
}

// Expand maps a current-level assignment back to the original nodes.
func (l *Lineage) Expand(assignment []int, numOriginal int) []int {
	out := make([]int, numOriginal)
	for i, label := range assignment {
		for _, orig := range l.origins[i] {
			out[orig] = label
		}
	}
	return out
}
