package shared

import "time"

// DeadlineResult describes how a RunWithDeadline loop ended
type DeadlineResult struct {
	// Completed is true when step reported there was no more work before the budget ran out
	Completed bool
	Steps     int
	Elapsed   time.Duration
}

// RunWithDeadline repeatedly calls step until it returns false or the elapsed
// time measured on clock exceeds budget. The budget is checked before each step,
// so a single step is never interrupted. A non-positive budget runs no steps.
func RunWithDeadline(clock Clock, budget time.Duration, step func() bool) DeadlineResult {
	start := clock.Now()
	result := DeadlineResult{}

	for {
		elapsed := clock.Since(start)
		if elapsed >= budget {
			result.Elapsed = elapsed
			return result
		}
		if !step() {
			result.Completed = true
			result.Elapsed = clock.Since(start)
			return result
		}
		result.Steps++
	}
}
