// Gendata writes a deterministic synthetic incident dataset as JSON, for
// loading into the search backend with the ingest tool.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/linnemanlabs/derrick/internal/incident"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "fatal error:", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		count int
		seed  int64
		out   string
	)
	flag.IntVar(&count, "count", 200, "Number of incident records to generate")
	flag.Int64Var(&seed, "seed", 42, "Random seed; the same seed yields the same dataset")
	flag.StringVar(&out, "out", "demo_incidents.json", "Output file path")
	flag.Parse()

	if count <= 0 {
		return fmt.Errorf("count must be positive, got %d", count)
	}

	records := incident.Generate(count, seed)

	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("create %s: %w", out, err)
	}
	defer func() { _ = f.Close() }()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("encode records: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", out, err)
	}

	bySeverity := map[string]int{}
	byType := map[string]int{}
	for _, r := range records {
		bySeverity[r.Severity]++
		byType[r.IncidentType]++
	}

	fmt.Printf("wrote %d incidents to %s\n", len(records), out)
	fmt.Println("severity distribution:")
	for _, sev := range []string{"CRITICAL", "HIGH", "MEDIUM", "LOW"} {
		if n := bySeverity[sev]; n > 0 {
			fmt.Printf("  %-8s %d\n", sev, n)
		}
	}
	fmt.Println("incident types:")
	for _, it := range incident.KnownTypes() {
		if n := byType[it]; n > 0 {
			fmt.Printf("  %-22s %d\n", it, n)
		}
	}
	return nil
}
