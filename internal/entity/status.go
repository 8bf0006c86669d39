package entity

// Status is the ingestion lifecycle state of an image record.
// Transitions are strictly monotonic: PENDING -> PROCESSING -> READY | FAILED.
type Status string

const (
	Pending    Status = "PENDING"
	Processing Status = "PROCESSING"
	Ready      Status = "READY"
	Failed     Status = "FAILED"
)

var statusRank = map[Status]int{
	Pending:    0,
	Processing: 1,
	Ready:      2,
	Failed:     2,
}

func (s Status) Valid() bool {
	_, ok := statusRank[s]
	return ok
}

// Terminal reports whether no further transition is allowed from s.
func (s Status) Terminal() bool {
	return s == Ready || s == Failed
}

// CanTransition reports whether moving from s to next advances the lifecycle
// by exactly one step.
func (s Status) CanTransition(next Status) bool {
	from, ok := statusRank[s]
	if !ok {
		return false
	}
	to, ok := statusRank[next]
	if !ok {
		return false
	}

	return !s.Terminal() && to == from+1
}

// Beyond reports whether s is strictly further along the lifecycle than
// other. The two terminal states share a rank, so neither is beyond the
// other: a record that ended READY still conflicts with a FAILED commit.
func (s Status) Beyond(other Status) bool {
	return statusRank[s] > statusRank[other]
}
