package leiden

// nodeQueue is a FIFO of node indices with membership tracking so a node is
// never queued twice.
type nodeQueue struct {
	items   []int
	head    int
	inQueue []bool
}

func newNodeQueue(n int) *nodeQueue {
	q := &nodeQueue{items: make([]int, 0, n), inQueue: make([]bool, n)}
	q.pushAll()
	return q
}

func (q *nodeQueue) pushAll() {
	if q.empty() {
		q.items = q.items[:0]
		q.head = 0
	}
	for v := range q.inQueue {
		q.push(v)
	}
}

func (q *nodeQueue) push(v int) {
	if q.inQueue[v] {
		return
	}
	q.inQueue[v] = true
	q.items = append(q.items, v)
}

func (q *nodeQueue) pop() int {
	v := q.items[q.head]
	q.head++
	// Compact once the consumed prefix dominates the buffer.
	if q.head > 1024 && q.head*2 > len(q.items) {
		q.items = append(q.items[:0], q.items[q.head:]...)
		q.head = 0
	}
	q.inQueue[v] = false
	return v
}

func (q *nodeQueue) empty() bool { return q.head >= len(q.items) }

// MoveNodesFast runs the queue-driven local moving phase on p in place until
// no single-node move strictly improves q. It returns the number of moves
// applied. maxMoves <= 0 means no budget; when the budget is exhausted the
// partition is left valid and a ConvergenceError is returned.
//
// Only neighbors of a moved node are re-queued, so once the queue drains
// every node is queued again; the phase ends after a full pass without
// moves.
func MoveNodesFast(g *Graph, p *Partition, q Quality, maxMoves int, tracker *MoveTracker) (int, error) {
	queue := newNodeQueue(g.NumNodes())
	moves := 0
	passMoves := 0
	neighborComms := make(map[int]float64)

	for {
		if queue.empty() {
			if passMoves == 0 {
				break
			}
			passMoves = 0
			queue.pushAll()
		}
		v := queue.pop()
		current := p.CommunityOf(v)

		for c := range neighborComms {
			delete(neighborComms, c)
		}
		neighbors, weights := g.GetNeighbors(v)
		for k, u := range neighbors {
			neighborComms[p.CommunityOf(u)] += weights[k]
		}
		wOwn := neighborComms[current]

		bestComm := current
		bestGain := 0.0
		for c, w := range neighborComms {
			if c == current {
				continue
			}
			gain := q.moveGain(g, p, v, c, w, wOwn)
			if gain > bestGain || (gain == bestGain && bestComm != current && c < bestComm) {
				bestComm = c
				bestGain = gain
			}
		}
		if gain := q.moveGain(g, p, v, NewCommunity, 0, wOwn); gain > bestGain {
			bestComm = NewCommunity
			bestGain = gain
		}

		if bestGain <= 0 || bestComm == current {
			continue
		}

		if maxMoves > 0 && moves >= maxMoves {
			return moves, &ConvergenceError{Phase: "local_moving", Limit: maxMoves}
		}

		target := p.Move(g, v, bestComm)
		moves++
		passMoves++
		if tracker != nil {
			tracker.LogMove(q.Kind, v, current, target, bestGain, q.Value(g, p))
		}

		for _, u := range neighbors {
			if p.CommunityOf(u) != target {
				queue.push(u)
			}
		}
	}
	return moves, nil
}
