// Ingest loads an incident dataset into the search backend: it ensures the
// incident index exists, bulk-indexes the records, and verifies the load with
// a count query.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/linnemanlabs/go-core/cfg"
	"github.com/linnemanlabs/go-core/log"
	v "github.com/linnemanlabs/go-core/version"

	"github.com/linnemanlabs/derrick/internal/incident"
	"github.com/linnemanlabs/derrick/internal/search"
)

const appName = "derrick"
const component = "ingest"

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "fatal error:", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	v.AppName = appName
	v.Component = component

	var (
		logCfg   log.Config
		endpoint string
		apiKey   string
		index    string
		input    string
	)
	logCfg.RegisterFlags(flag.CommandLine)
	flag.StringVar(&endpoint, "search-endpoint", "", "Search backend base URL")
	flag.StringVar(&apiKey, "search-api-key", "", "Search backend API key")
	flag.StringVar(&index, "incident-index", "oilfield-incidents", "Incident index name")
	flag.StringVar(&input, "input", "demo_incidents.json", "Incident dataset file to load")
	flag.Parse()

	cfg.FillFromEnv(flag.CommandLine, "DERRICK_", func(format string, args ...any) {
		fmt.Fprintf(os.Stderr, format+"\n", args...)
	})

	if err := errors.Join(
		logCfg.Validate(),
		requireFlag("search-endpoint", endpoint),
		requireFlag("search-api-key", apiKey),
		requireFlag("incident-index", index),
	); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	lg, err := log.New(logCfg.ToOptions(v.AppName))
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	L := lg.With("component", component)

	records, err := loadRecords(input)
	if err != nil {
		return err
	}
	L.Info(ctx, "loaded incident dataset", "file", input, "records", len(records))

	client := search.New(endpoint, apiKey)

	if err := client.EnsureIncidentIndex(ctx, index); err != nil {
		return fmt.Errorf("ensure index: %w", err)
	}
	L.Info(ctx, "incident index ready", "index", index)

	n, err := client.BulkIndex(ctx, index, records)
	if err != nil {
		return fmt.Errorf("bulk index: %w", err)
	}
	L.Info(ctx, "bulk index complete", "index", index, "indexed", n)

	if err := verify(ctx, client, index, L); err != nil {
		L.Error(ctx, err, "post-load verification failed", "index", index)
		return err
	}
	return nil
}

func requireFlag(name, value string) error {
	if value == "" {
		return fmt.Errorf("%s is required", name)
	}
	return nil
}

func loadRecords(path string) ([]incident.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var records []incident.Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%s contains no incident records", path)
	}
	return records, nil
}

// verify counts documents and summarizes severities so a bad load is caught
// here instead of at first query.
func verify(ctx context.Context, client *search.Client, index string, L log.Logger) error {
	esql := fmt.Sprintf(`FROM %s
| STATS count = COUNT(*) BY severity
| SORT count DESC`, index)

	rows, err := client.Query(ctx, esql)
	if err != nil {
		return fmt.Errorf("verification query: %w", err)
	}

	total := 0
	for _, row := range rows.Maps() {
		var count int
		var sev string
		_ = json.Unmarshal(row["count"], &count)
		_ = json.Unmarshal(row["severity"], &sev)
		total += count
		L.Info(ctx, "indexed severity bucket", "severity", sev, "count", count)
	}
	L.Info(ctx, "verification complete", "index", index, "total", total)
	return nil
}
