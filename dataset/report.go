package dataset

import "fmt"

// Skip names one input item that was left out of a batch and why.
type Skip struct {
	Item   string
	Reason string
}

// Report summarizes a batch operation: how many items made it through and
// which were skipped. A skip never aborts the batch; callers inspect the
// report to decide whether the outcome is acceptable.
type Report struct {
	Processed int
	Skips     []Skip
}

func (r *Report) addProcessed() {
	r.Processed++
}

func (r *Report) skip(item, reason string) {
	r.Skips = append(r.Skips, Skip{Item: item, Reason: reason})
}

// Skipped reports how many items were left out.
func (r *Report) Skipped() int {
	return len(r.Skips)
}

// Empty reports whether nothing at all was processed. CLI drivers treat an
// empty report as a failed run.
func (r *Report) Empty() bool {
	return r.Processed == 0
}

// Summary returns a one-line human-readable account of the batch.
func (r *Report) Summary() string {
	return fmt.Sprintf("%d processed, %d skipped", r.Processed, len(r.Skips))
}
