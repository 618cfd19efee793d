package leiden

import (
	"math/rand"
	"sort"
)

// Refine splits every community of p into well-connected sub-communities.
// Within each community S it starts from singletons and merges each
// well-connected singleton node v into a well-connected neighboring
// sub-community C, drawn with probability proportional to exp(delta/theta)
// over the candidates whose quality delta is non-negative (staying alone has
// delta 0). The result refines p: each of its communities lies inside one
// community of p.
func Refine(g *Graph, p *Partition, q Quality, theta float64, rng *rand.Rand) *Partition {
	refined := NewSingletonPartition(g)
	gamma := q.scaledResolution(g)

	for _, c := range p.Communities() {
		subset := p.Members(c)
		if len(subset) < 2 {
			continue
		}
		refineSubset(g, p, refined, q, gamma, theta, rng, c, subset)
	}
	return refined
}

func refineSubset(g *Graph, p, refined *Partition, q Quality, gamma, theta float64, rng *rand.Rand, c int, subset []int) {
	totalWeight := 0.0
	for _, v := range subset {
		totalWeight += q.nodeWeight(g, v)
	}

	// external[X] = w(X, S\X) and weight[X] = ||X|| per refined community X.
	external := make(map[int]float64, len(subset))
	weight := make(map[int]float64, len(subset))
	for _, v := range subset {
		x := refined.CommunityOf(v)
		external[x] = p.WeightToCommunity(g, v, c)
		weight[x] = q.nodeWeight(g, v)
	}
	wellConnected := func(x int) bool {
		wx := weight[x]
		return external[x] >= gamma*wx*(totalWeight-wx)
	}

	candidates := make([]int, 0, len(subset))
	for _, v := range subset {
		if wellConnected(refined.CommunityOf(v)) {
			candidates = append(candidates, v)
		}
	}
	rng.Shuffle(len(candidates), func(i, j int) { candidates[i], candidates[j] = candidates[j], candidates[i] })

	toComm := make(map[int]float64)
	for _, v := range candidates {
		own := refined.CommunityOf(v)
		if refined.MemberCount(own) != 1 {
			continue
		}

		for x := range toComm {
			delete(toComm, x)
		}
		neighbors, weights := g.GetNeighbors(v)
		for k, u := range neighbors {
			if p.CommunityOf(u) == c {
				toComm[refined.CommunityOf(u)] += weights[k]
			}
		}

		targets := []int{own}
		for x := range toComm {
			if x != own && wellConnected(x) {
				targets = append(targets, x)
			}
		}
		sort.Ints(targets[1:])

		deltas := make([]float64, len(targets))
		for i, x := range targets[1:] {
			deltas[i+1] = q.moveGain(g, refined, v, x, toComm[x], 0)
		}

		idx := SampleCategorical(rng, softmaxWeights(deltas, theta))
		if idx <= 0 {
			continue
		}

		chosen := targets[idx]
		external[chosen] += external[own] - 2*toComm[chosen]
		weight[chosen] += weight[own]
		delete(external, own)
		delete(weight, own)
		refined.Move(g, v, chosen)
	}
}
