package spf

// candidate is a pending (cost, node, arrived-from) entry.
type candidate struct {
	cost int64
	node NodeID
	from NodeID
}

// candidateQueue is a min-heap of candidates ordered by ascending cost.
// Stale entries are not removed on improvement; they are discarded when
// popped (lazy decrease-key).
type candidateQueue []candidate

func (q candidateQueue) Len() int           { return len(q) }
func (q candidateQueue) Less(i, j int) bool { return q[i].cost < q[j].cost }
func (q candidateQueue) Swap(i, j int)      { q[i], q[j] = q[j], q[i] }

func (q *candidateQueue) Push(x interface{}) { *q = append(*q, x.(candidate)) }

func (q *candidateQueue) Pop() interface{} {
	old := *q
	n := len(old)
	c := old[n-1]
	*q = old[:n-1]
	return c
}
