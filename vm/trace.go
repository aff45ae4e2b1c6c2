package vm

// StepRecord is one executed instruction's footprint, captured for
// replay in the trace viewer and for streaming to the trace server.
type StepRecord struct {
	IP         int
	Op         Opcode
	StackDepth int
	Symmetry   Symmetry
}

// Trace accumulates StepRecords for one activation. A VM with a nil
// Trace records nothing; attaching one is opt-in since most runs (e.g.
// inside a bulk simulation) have no use for per-step history.
type Trace struct {
	Records []StepRecord
	// MaxRecords caps retention; 0 means unbounded. Long-running
	// activations under a large instruction budget can otherwise
	// accumulate an unbounded trace.
	MaxRecords int
}

// NewTrace returns an empty trace, optionally capped at maxRecords (0
// for unbounded).
func NewTrace(maxRecords int) *Trace {
	return &Trace{MaxRecords: maxRecords}
}

// Record appends one step, dropping the oldest entry first if the trace
// is at its cap.
func (t *Trace) Record(r StepRecord) {
	if t.MaxRecords > 0 && len(t.Records) >= t.MaxRecords {
		t.Records = t.Records[1:]
	}
	t.Records = append(t.Records, r)
}

// Len reports how many steps are currently retained.
func (t *Trace) Len() int {
	return len(t.Records)
}
