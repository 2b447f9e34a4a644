package utils

import (
	"fmt"
	"sort"
	"sync"
	"time"
)

// StageTracker records how long each pipeline stage takes across runs.
type StageTracker struct {
	stages map[string][]time.Duration
	mu     sync.Mutex
}

func NewStageTracker() *StageTracker {
	return &StageTracker{
		stages: make(map[string][]time.Duration),
	}
}

func (st *StageTracker) Track(stage string, duration time.Duration) {
	st.mu.Lock()
	defer st.mu.Unlock()

	st.stages[stage] = append(st.stages[stage], duration)
}

// Time runs fn and records its duration under the given stage name.
func (st *StageTracker) Time(stage string, fn func() error) error {
	start := time.Now()
	err := fn()
	st.Track(stage, time.Since(start))
	return err
}

func (st *StageTracker) Report() string {
	st.mu.Lock()
	defer st.mu.Unlock()

	names := make([]string, 0, len(st.stages))
	for name := range st.stages {
		names = append(names, name)
	}
	sort.Strings(names)

	report := "Stage timings:\n"
	for _, name := range names {
		durations := st.stages[name]
		var total time.Duration
		for _, d := range durations {
			total += d
		}
		avg := total / time.Duration(len(durations))
		report += fmt.Sprintf("  %s: count=%d avg=%v total=%v\n", name, len(durations), avg, total)
	}

	return report
}
