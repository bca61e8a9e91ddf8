package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	_ "net/http/pprof" // Enable pprof endpoints
	"os"
	"runtime"
	"sort"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/thesyncim/homepage-e2e/pkg/scenario"
)

const statusEvery = 10 // iterations between status lines

func soakFlags() []cli.Flag {
	return []cli.Flag{
		&cli.DurationFlag{Name: "duration", Value: time.Hour, Usage: "stop after this long"},
		&cli.IntFlag{Name: "iterations", Usage: "stop after this many suite runs (0: no limit)"},
		&cli.IntFlag{Name: "pprof-port", Usage: "serve pprof on this port (0: disabled)"},
	}
}

// SoakResult contains the results of a soak run.
type SoakResult struct {
	Duration   time.Duration
	Iterations int
	Cases      int
	Failures   map[string]int // scenario name -> failed runs
	FirstErr   map[string]error
	PeakHeapMB float64
	Status     string
}

// suiteFunc runs the homepage suite once.
type suiteFunc func(ctx context.Context) []scenario.Result

func soakCommand(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	log := newLogger(cfg)

	if port := c.Int("pprof-port"); port > 0 {
		go func() {
			addr := fmt.Sprintf(":%d", port)
			if err := http.ListenAndServe(addr, nil); err != nil {
				log.Warn().Err(err).Msg("pprof server failed")
			}
		}()
	}

	fmt.Printf("Homepage Soak Runner\n")
	fmt.Printf("====================\n")
	fmt.Printf("Base URL:   %s\n", cfg.BaseURL)
	fmt.Printf("Backend:    %s\n", cfg.Backend)
	fmt.Printf("Duration:   %v\n", c.Duration("duration"))
	fmt.Printf("\n")

	ctx, cancel := signalContext()
	defer cancel()

	runner := newRunner(cfg, &log)
	suite := func(ctx context.Context) []scenario.Result {
		return runner.Run(ctx, scenario.Homepage()...)
	}

	result := runSoak(ctx, os.Stdout, suite, c.Duration("duration"), c.Int("iterations"))
	printSummary(os.Stdout, result)

	if result.Status != "PASS" {
		return errCasesFailed
	}
	return nil
}

// runSoak repeats suite until duration elapses, maxIter runs complete
// (when positive) or ctx ends.
func runSoak(ctx context.Context, w io.Writer, suite suiteFunc, duration time.Duration, maxIter int) SoakResult {
	result := SoakResult{
		Failures: make(map[string]int),
		FirstErr: make(map[string]error),
		Status:   "PASS",
	}

	var memStats runtime.MemStats
	start := time.Now()
	fmt.Fprintf(w, "[%s] Starting soak run...\n", formatDuration(0))

	for {
		elapsed := time.Since(start)
		if ctx.Err() != nil || elapsed >= duration || (maxIter > 0 && result.Iterations >= maxIter) {
			result.Duration = elapsed
			break
		}

		for _, r := range suite(ctx) {
			result.Cases++
			if r.Passed() {
				continue
			}
			result.Failures[r.Scenario]++
			if _, seen := result.FirstErr[r.Scenario]; !seen {
				result.FirstErr[r.Scenario] = r.Err
				fmt.Fprintf(w, "[%s] FAIL %s at %q: %v\n", formatDuration(time.Since(start)), r.Scenario, r.FailedStep, r.Err)
			}
			result.Status = "FAIL"
		}
		result.Iterations++

		runtime.ReadMemStats(&memStats)
		heapMB := float64(memStats.HeapAlloc) / (1024 * 1024)
		if heapMB > result.PeakHeapMB {
			result.PeakHeapMB = heapMB
		}

		if result.Iterations%statusEvery == 0 {
			fmt.Fprintf(w, "[%s] Iterations: %d, Cases: %d, Failed: %d, HeapAlloc: %.2f MB\n",
				formatDuration(time.Since(start)), result.Iterations, result.Cases, totalFailures(result), heapMB)
		}
	}

	if result.Cases == 0 {
		result.Status = "FAIL"
	}
	return result
}

func totalFailures(r SoakResult) int {
	n := 0
	for _, f := range r.Failures {
		n += f
	}
	return n
}

func printSummary(w io.Writer, result SoakResult) {
	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "Soak Run Complete\n")
	fmt.Fprintf(w, "=================\n")
	fmt.Fprintf(w, "Duration:          %v\n", result.Duration.Round(time.Second))
	fmt.Fprintf(w, "Iterations:        %d\n", result.Iterations)
	fmt.Fprintf(w, "Cases:             %d\n", result.Cases)
	fmt.Fprintf(w, "Failed cases:      %d\n", totalFailures(result))
	fmt.Fprintf(w, "Peak HeapAlloc:    %.2f MB\n", result.PeakHeapMB)
	fmt.Fprintf(w, "Status:            %s\n", result.Status)

	if len(result.Failures) > 0 {
		names := make([]string, 0, len(result.Failures))
		for name := range result.Failures {
			names = append(names, name)
		}
		sort.Strings(names)

		fmt.Fprintf(w, "\nFlaky scenarios:\n")
		for _, name := range names {
			fmt.Fprintf(w, "  - %s: %d/%d failed (%v)\n", name, result.Failures[name], result.Iterations, result.FirstErr[name])
		}
	}

	fmt.Fprintf(w, "\nPass Criteria:\n")
	fmt.Fprintf(w, "  - At least one case ran: %s\n", checkMark(result.Cases > 0))
	fmt.Fprintf(w, "  - No failed cases:       %s\n", checkMark(totalFailures(result) == 0))
}
