package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/livingdw67/ira-analysis/internal/config"
	"github.com/livingdw67/ira-analysis/internal/ingest"
)

func main() {
	var (
		cfgPath    = flag.String("config", os.Getenv("IRA_CONFIG"), "Path to YAML config (defaults when empty)")
		root       = flag.String("root", "", "Dataset root, s3://bucket/prefix or a local mirror (empty = config)")
		state      = flag.String("state", "", "Two-letter state to keep (empty = config)")
		table      = flag.String("table", "metadata", "Metadata directory under the release root")
		outputPath = flag.String("output", "", "Output CSV path (default: <state>_resstock_metadata.csv)")
		timeout    = flag.Duration("timeout", 10*time.Minute, "Overall timeout for object storage calls")
	)
	flag.Parse()

	cfg, err := config.LoadFromEnv(*cfgPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *root != "" {
		cfg.Dataset.Root = *root
	}
	if *state != "" {
		cfg.Dataset.State = *state
	}
	if *outputPath == "" {
		*outputPath = cfg.Files.MetadataCSV
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()
	store, err := cfg.Dataset.OpenStore(ctx)
	if err != nil {
		log.Fatalf("Failed to open dataset store: %v", err)
	}

	release := cfg.Dataset.ReleaseRoot()
	fmt.Printf("Pulling %s metadata for %s from %s\n", *table, cfg.Dataset.State, release)

	res, err := ingest.PullMetadata(ctx, store, ingest.MetadataOptions{
		Root:   release,
		Table:  *table,
		State:  cfg.Dataset.State,
		Output: *outputPath,
	})
	if err != nil {
		log.Fatalf("Failed to pull metadata: %v", err)
	}

	fmt.Printf("Read %d files\n", len(res.Files))
	fmt.Printf("Saved %d buildings (%d columns) to %s\n", res.Rows, len(res.Columns), res.Output)
}
