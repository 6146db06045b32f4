package simulator

import "trafficsim/internal/plan"

// pairItem is one entry in the scheduler's min-heap: an agent waiting to
// attempt the transition from instruction A (its current exit side) to
// instruction B (its next enter side) at Time.
type pairItem struct {
	Time    int
	AgentID string
	A, B    plan.Instruction
	index   int // heap.Interface bookkeeping
}

// priorityQueue is a (time, agent_id) ordered min-heap, with agent_id as
// the deterministic tie-break for equal times.
type priorityQueue []*pairItem

func (pq priorityQueue) Len() int { return len(pq) }

func (pq priorityQueue) Less(i, j int) bool {
	if pq[i].Time != pq[j].Time {
		return pq[i].Time < pq[j].Time
	}
	return pq[i].AgentID < pq[j].AgentID
}

func (pq priorityQueue) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
	pq[i].index = i
	pq[j].index = j
}

func (pq *priorityQueue) Push(x any) {
	item := x.(*pairItem)
	item.index = len(*pq)
	*pq = append(*pq, item)
}

func (pq *priorityQueue) Pop() any {
	old := *pq
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.index = -1
	*pq = old[:n-1]
	return item
}
