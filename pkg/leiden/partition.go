package leiden

import (
	"fmt"
	"sort"
)

// NewCommunity is the Move/Delta target meaning "place the node alone in a
// fresh community".
const NewCommunity = -1

// Partition assigns every node of a graph to exactly one community and keeps
// the reverse index and per-community aggregates in step with the lookup.
// Move is the only mutator.
type Partition struct {
	nodeToComm []int
	position   []int     // index of the node inside members[nodeToComm[v]]
	members    [][]int   // community id -> nodes; nil for released ids
	size       []float64 // recursive size
	strength   []float64 // summed node strengths
	internal   []float64 // internal edge weight, absorbed self weight included
	free       []int
	count      int
}

// NewSingletonPartition places every node of g in its own community, with
// community id equal to the node index.
func NewSingletonPartition(g *Graph) *Partition {
	n := g.NumNodes()
	p := &Partition{
		nodeToComm: make([]int, n),
		position:   make([]int, n),
		members:    make([][]int, n),
		size:       make([]float64, n),
		strength:   make([]float64, n),
		internal:   make([]float64, n),
		count:      n,
	}
	for v := 0; v < n; v++ {
		p.nodeToComm[v] = v
		p.members[v] = []int{v}
		p.size[v] = g.Size(v)
		p.strength[v] = g.Strength(v)
		p.internal[v] = g.SelfWeight(v)
	}
	return p
}

// NewPartitionFromAssignment builds a partition from a node -> label slice.
// Labels are relabelled to 0..k-1 in order of first appearance.
func NewPartitionFromAssignment(g *Graph, assignment []int) (*Partition, error) {
	n := g.NumNodes()
	if len(assignment) != n {
		return nil, fmt.Errorf("assignment covers %d nodes, graph has %d", len(assignment), n)
	}

	relabel := make(map[int]int)
	p := &Partition{
		nodeToComm: make([]int, n),
		position:   make([]int, n),
	}
	for v, label := range assignment {
		c, ok := relabel[label]
		if !ok {
			c = len(p.members)
			relabel[label] = c
			p.members = append(p.members, nil)
			p.size = append(p.size, 0)
			p.strength = append(p.strength, 0)
			p.internal = append(p.internal, 0)
		}
		p.nodeToComm[v] = c
		p.position[v] = len(p.members[c])
		p.members[c] = append(p.members[c], v)
		p.size[c] += g.Size(v)
		p.strength[c] += g.Strength(v)
		p.internal[c] += g.SelfWeight(v)
	}
	p.count = len(p.members)

	for v := 0; v < n; v++ {
		neighbors, weights := g.GetNeighbors(v)
		for k, u := range neighbors {
			if u > v && p.nodeToComm[u] == p.nodeToComm[v] {
				p.internal[p.nodeToComm[v]] += weights[k]
			}
		}
	}
	return p, nil
}

// NumNodes returns the number of nodes covered by the partition.
func (p *Partition) NumNodes() int { return len(p.nodeToComm) }

// NumCommunities returns the number of non-empty communities.
func (p *Partition) NumCommunities() int { return p.count }

// CommunityOf returns the community id of node v.
func (p *Partition) CommunityOf(v int) int { return p.nodeToComm[v] }

// Exists reports whether c is a live community id.
func (p *Partition) Exists(c int) bool {
	return c >= 0 && c < len(p.members) && p.members[c] != nil
}

// Members returns a sorted copy of the nodes in community c.
func (p *Partition) Members(c int) []int {
	if !p.Exists(c) {
		return nil
	}
	out := append([]int(nil), p.members[c]...)
	sort.Ints(out)
	return out
}

// MemberCount returns the number of nodes in community c.
func (p *Partition) MemberCount(c int) int {
	if !p.Exists(c) {
		return 0
	}
	return len(p.members[c])
}

// Communities returns the live community ids in ascending order.
func (p *Partition) Communities() []int {
	out := make([]int, 0, p.count)
	for c, m := range p.members {
		if m != nil {
			out = append(out, c)
		}
	}
	return out
}

// CommunitySize returns the recursive size of community c.
func (p *Partition) CommunitySize(c int) float64 { return p.size[c] }

// CommunityStrength returns the summed strength of community c.
func (p *Partition) CommunityStrength(c int) float64 { return p.strength[c] }

// InternalWeight returns the edge weight inside community c.
func (p *Partition) InternalWeight(c int) float64 { return p.internal[c] }

// WeightToCommunity sums the weights of edges from v to members of c,
// ignoring v itself.
func (p *Partition) WeightToCommunity(g *Graph, v, c int) float64 {
	if c == NewCommunity {
		return 0
	}
	weight := 0.0
	neighbors, weights := g.GetNeighbors(v)
	for k, u := range neighbors {
		if p.nodeToComm[u] == c {
			weight += weights[k]
		}
	}
	return weight
}

// Move relocates v into target (an existing community id or NewCommunity)
// and returns the community v ends up in. The lookup, the member sets and
// the aggregates are updated together; a community emptied by the move is
// released. Moving into an unknown community id panics.
func (p *Partition) Move(g *Graph, v, target int) int {
	old := p.nodeToComm[v]
	if target == old {
		return old
	}
	if target != NewCommunity && !p.Exists(target) {
		panic(fmt.Sprintf("leiden: move of node %d into unknown community %d", v, target))
	}

	wOld := p.WeightToCommunity(g, v, old)
	wNew := p.WeightToCommunity(g, v, target)
	sv, kv, self := g.Size(v), g.Strength(v), g.SelfWeight(v)

	// Detach from the old community with a swap-remove.
	members := p.members[old]
	pos := p.position[v]
	last := members[len(members)-1]
	members[pos] = last
	p.position[last] = pos
	members = members[:len(members)-1]
	p.size[old] -= sv
	p.strength[old] -= kv
	p.internal[old] -= wOld + self
	if len(members) == 0 {
		p.release(old)
	} else {
		p.members[old] = members
	}

	if target == NewCommunity {
		target = p.allocate()
	}
	p.nodeToComm[v] = target
	p.position[v] = len(p.members[target])
	p.members[target] = append(p.members[target], v)
	p.size[target] += sv
	p.strength[target] += kv
	p.internal[target] += wNew + self
	return target
}

func (p *Partition) release(c int) {
	p.members[c] = nil
	p.size[c], p.strength[c], p.internal[c] = 0, 0, 0
	p.free = append(p.free, c)
	p.count--
}

func (p *Partition) allocate() int {
	p.count++
	if n := len(p.free); n > 0 {
		c := p.free[n-1]
		p.free = p.free[:n-1]
		p.members[c] = make([]int, 0, 1)
		return c
	}
	p.members = append(p.members, make([]int, 0, 1))
	p.size = append(p.size, 0)
	p.strength = append(p.strength, 0)
	p.internal = append(p.internal, 0)
	return len(p.members) - 1
}

// Assignment returns node -> compact community label, labels numbered in
// ascending community id order.
func (p *Partition) Assignment() []int {
	compact := make(map[int]int, p.count)
	for i, c := range p.Communities() {
		compact[c] = i
	}
	out := make([]int, len(p.nodeToComm))
	for v, c := range p.nodeToComm {
		out[v] = compact[c]
	}
	return out
}

// Clone returns an independent copy.
func (p *Partition) Clone() *Partition {
	clone := &Partition{
		nodeToComm: append([]int(nil), p.nodeToComm...),
		position:   append([]int(nil), p.position...),
		members:    make([][]int, len(p.members)),
		size:       append([]float64(nil), p.size...),
		strength:   append([]float64(nil), p.strength...),
		internal:   append([]float64(nil), p.internal...),
		free:       append([]int(nil), p.free...),
		count:      p.count,
	}
	for c, m := range p.members {
		if m != nil {
			clone.members[c] = append(make([]int, 0, len(m)), m...)
		}
	}
	return clone
}

// Validate checks that the lookup, member sets and aggregates agree with
// each other and with g.
func (p *Partition) Validate(g *Graph) error {
	if len(p.nodeToComm) != g.NumNodes() {
		return fmt.Errorf("partition covers %d nodes, graph has %d", len(p.nodeToComm), g.NumNodes())
	}
	live := 0
	covered := 0
	for c, m := range p.members {
		if m == nil {
			continue
		}
		live++
		if len(m) == 0 {
			return fmt.Errorf("community %d is empty", c)
		}
		size, strength := 0.0, 0.0
		for pos, v := range m {
			if p.nodeToComm[v] != c {
				return fmt.Errorf("node %d listed in community %d but mapped to %d", v, c, p.nodeToComm[v])
			}
			if p.position[v] != pos {
				return fmt.Errorf("node %d has stale position in community %d", v, c)
			}
			size += g.Size(v)
			strength += g.Strength(v)
			covered++
		}
		if !approxEqual(size, p.size[c]) || !approxEqual(strength, p.strength[c]) {
			return fmt.Errorf("community %d aggregates out of date", c)
		}
	}
	if live != p.count {
		return fmt.Errorf("community count %d, found %d live communities", p.count, live)
	}
	if covered != len(p.nodeToComm) {
		return fmt.Errorf("%d nodes covered, expected %d", covered, len(p.nodeToComm))
	}
	return nil
}
