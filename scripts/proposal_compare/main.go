// Command proposal_compare generates two timetable proposals for the same
// term against a running API instance, one strict and one with degraded fill
// enabled, and reports the quality delta. Useful before deciding whether a
// term needs the relaxed mode at all.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/okulplan/timetable-engine/internal/dto"
)

type runResult struct {
	Label    string
	Response dto.GenerateScheduleResponse
	Duration time.Duration
}

func main() {
	var (
		base    string
		termID  string
		timeout time.Duration
	)

	flag.StringVar(&base, "base", "http://localhost:8080", "API base URL")
	flag.StringVar(&termID, "term", "", "Term ID to generate for")
	flag.DurationVar(&timeout, "timeout", 60*time.Second, "HTTP client timeout")
	flag.Parse()

	if termID == "" {
		log.Fatal("missing required -term flag")
	}

	client := &http.Client{Timeout: timeout}

	strict, err := generate(client, base, termID, false)
	if err != nil {
		log.Fatalf("strict run failed: %v", err)
	}
	degraded, err := generate(client, base, termID, true)
	if err != nil {
		log.Fatalf("degraded run failed: %v", err)
	}

	printReport(strict, degraded)

	if degraded.Response.Stats.UnmetHours > 0 {
		os.Exit(1)
	}
}

func generate(client *http.Client, base, termID string, allowDegraded bool) (runResult, error) {
	label := "strict"
	if allowDegraded {
		label = "degraded"
	}
	result := runResult{Label: label}

	payload, err := json.Marshal(dto.GenerateScheduleRequest{
		TermID:            termID,
		AllowDegradedFill: &allowDegraded,
	})
	if err != nil {
		return result, err
	}

	url := strings.TrimRight(base, "/") + "/api/v1/schedule/generate"
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return result, err
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		return result, err
	}
	defer resp.Body.Close()
	result.Duration = time.Since(start)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return result, err
	}
	if resp.StatusCode != http.StatusOK {
		return result, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var envelope struct {
		Data dto.GenerateScheduleResponse `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return result, fmt.Errorf("decode response: %w", err)
	}
	result.Response = envelope.Data
	return result, nil
}

func printReport(strict, degraded runResult) {
	fmt.Println("Proposal Compare Report")
	fmt.Println("=======================")
	for _, run := range []runResult{strict, degraded} {
		stats := run.Response.Stats
		fmt.Printf("[%s] proposal %s (%s)\n", run.Label, run.Response.ProposalID, run.Duration)
		fmt.Printf("  Score: %.1f | Placed: %d | Unmet: %d | Backtracks: %d\n",
			run.Response.Score, stats.PlacedHours, stats.UnmetHours, stats.Backtracks)
		fmt.Printf("  Alternatives: %d | Gap placements: %d | Degraded relocations: %d\n",
			stats.AlternativesUsed, stats.GapPlacements, stats.DegradedRelocations)
		fmt.Printf("  Shortfalls: %d | Unresolved conflicts: %d\n",
			len(run.Response.Shortfalls), unresolvedCount(run.Response.Conflicts))
	}

	fmt.Printf("Score delta (degraded - strict): %+.1f\n",
		degraded.Response.Score-strict.Response.Score)
	fmt.Printf("Unmet hours delta: %+d\n",
		degraded.Response.Stats.UnmetHours-strict.Response.Stats.UnmetHours)
}

func unresolvedCount(conflicts []dto.ConflictInfo) int {
	count := 0
	for _, c := range conflicts {
		if !c.Resolved {
			count++
		}
	}
	return count
}
