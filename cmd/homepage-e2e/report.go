package main

import (
	"fmt"
	"io"
	"time"

	"github.com/thesyncim/homepage-e2e/pkg/scenario"
)

// report prints one line per case and a summary. It returns true when
// every case passed.
func report(w io.Writer, results []scenario.Result) bool {
	for _, r := range results {
		if r.Passed() {
			fmt.Fprintf(w, "PASS  %-45s %8v\n", r.Scenario, r.Duration.Round(time.Millisecond))
			continue
		}
		fmt.Fprintf(w, "FAIL  %-45s %8v  step=%q reached=%s run=%s\n      %v\n",
			r.Scenario, r.Duration.Round(time.Millisecond), r.FailedStep, r.Reached, r.RunID, r.Err)
	}

	passed, failed := scenario.Summarize(results)
	fmt.Fprintf(w, "\n%d passed, %d failed\n", passed, failed)
	return failed == 0 && passed > 0
}

func checkMark(pass bool) string {
	if pass {
		return "PASS"
	}
	return "FAIL"
}

func formatDuration(d time.Duration) string {
	h := d / time.Hour
	m := (d % time.Hour) / time.Minute
	s := (d % time.Minute) / time.Second
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
