package leiden

import (
	"fmt"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/community"
	"gonum.org/v1/gonum/graph/simple"
)

// ToGonum converts g to a gonum weighted undirected graph keyed by the
// caller's node ids, for layout and visualization consumers.
func ToGonum(g *Graph) *simple.WeightedUndirectedGraph {
	out := simple.NewWeightedUndirectedGraph(0, 0)
	for i := 0; i < g.NumNodes(); i++ {
		out.AddNode(simple.Node(g.ID(i)))
	}
	for u := 0; u < g.NumNodes(); u++ {
		neighbors, weights := g.GetNeighbors(u)
		for k, v := range neighbors {
			if v <= u {
				continue
			}
			out.SetWeightedEdge(simple.WeightedEdge{
				F: simple.Node(g.ID(u)),
				T: simple.Node(g.ID(v)),
				W: weights[k],
			})
		}
	}
	return out
}

// GonumCommunities groups the nodes of g by assignment label, in ascending
// label order.
func GonumCommunities(g *Graph, assignment []int) ([][]graph.Node, error) {
	if len(assignment) != g.NumNodes() {
		return nil, fmt.Errorf("assignment covers %d nodes, graph has %d", len(assignment), g.NumNodes())
	}
	maxLabel := -1
	for _, c := range assignment {
		if c < 0 {
			return nil, fmt.Errorf("negative community label %d", c)
		}
		maxLabel = max(maxLabel, c)
	}
	byLabel := make([][]graph.Node, maxLabel+1)
	for v, c := range assignment {
		byLabel[c] = append(byLabel[c], simple.Node(g.ID(v)))
	}
	communities := make([][]graph.Node, 0, len(byLabel))
	for _, nodes := range byLabel {
		if len(nodes) > 0 {
			communities = append(communities, nodes)
		}
	}
	return communities, nil
}

// GonumModularity scores an assignment with gonum's modularity at the given
// resolution. Only meaningful on level 0 graphs.
func GonumModularity(g *Graph, assignment []int, resolution float64) (float64, error) {
	communities, err := GonumCommunities(g, assignment)
	if err != nil {
		return 0, err
	}
	if g.NumEdges() == 0 {
		return 0, nil
	}
	return community.Q(ToGonum(g), communities, resolution), nil
}
