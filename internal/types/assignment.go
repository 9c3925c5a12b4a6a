package types

import "sync"

// AssignmentIndex maps a sub-routine name to the clusters that claimed it.
// It only grows; Record is safe for concurrent use.
type AssignmentIndex struct {
	mu     sync.Mutex
	claims map[string][]string
	order  []string
}

func NewAssignmentIndex() *AssignmentIndex {
	return &AssignmentIndex{claims: make(map[string][]string)}
}

// Record appends cluster to the claim list of subroutine.
func (a *AssignmentIndex) Record(subroutine, cluster string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.claims == nil {
		a.claims = make(map[string][]string)
	}
	if _, ok := a.claims[subroutine]; !ok {
		a.order = append(a.order, subroutine)
	}
	a.claims[subroutine] = append(a.claims[subroutine], cluster)
}

// Claims returns a copy of the clusters that claimed subroutine.
func (a *AssignmentIndex) Claims(subroutine string) []string {
	if a == nil {
		return nil
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	c := a.claims[subroutine]
	if len(c) == 0 {
		return nil
	}
	return append([]string(nil), c...)
}

// Len is the number of distinct sub-routines claimed at least once.
func (a *AssignmentIndex) Len() int {
	if a == nil {
		return 0
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.claims)
}

// Duplicated lists sub-routines claimed by more than one cluster, in first
// claim order.
func (a *AssignmentIndex) Duplicated() []string {
	if a == nil {
		return nil
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	var out []string
	for _, name := range a.order {
		if len(a.claims[name]) > 1 {
			out = append(out, name)
		}
	}
	return out
}
