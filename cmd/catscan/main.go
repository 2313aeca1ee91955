// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/poiesic/catscan"
	"github.com/poiesic/catscan/batchscan"
	"github.com/poiesic/catscan/core"
	"github.com/poiesic/catscan/search"
	"github.com/poiesic/catscan/server"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp(os.Stdout).Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp(out io.Writer) *cli.App {
	return &cli.App{
		Name:      "catscan",
		Usage:     "Check web pages against the Consumer Action Taskforce wiki",
		Writer:    out,
		ErrWriter: os.Stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to YAML configuration file",
				EnvVars: []string{"CATSCAN_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "db",
				Aliases: []string{"d"},
				Usage:   "Path to BadgerDB database directory (overrides config)",
				EnvVars: []string{"CATSCAN_DB"},
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "scan",
				Usage:     "Check one or more page URLs",
				ArgsUsage: "URL...",
				Action:    scanCommand,
			},
			{
				Name:   "batch",
				Usage:  "Check a list of page URLs concurrently",
				Action: batchCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "file",
						Aliases:  []string{"f"},
						Usage:    "File with one URL per line, or - for stdin",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Number of concurrent checks (defaults to pool_size from config)",
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N pages",
						Value: 100,
					},
				},
			},
			{
				Name:      "search",
				Usage:     "Search the wiki dataset",
				ArgsUsage: "QUERY",
				Action:    searchCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "mode",
						Aliases: []string{"m"},
						Usage:   "Search mode (simple, fuzzy, fuzzy-all, consecutive, category, domain, website)",
						Value:   string(search.ModeFuzzy),
					},
				},
			},
			{
				Name:      "mute",
				Usage:     "Silence a page for the mute window",
				ArgsUsage: "PAGE_ID",
				Action:    muteCommand,
			},
			{
				Name:      "hide",
				Usage:     "Hide a page permanently",
				ArgsUsage: "PAGE_ID",
				Action:    hideCommand,
			},
			{
				Name:      "reset",
				Usage:     "Clear a page's mute or hide",
				ArgsUsage: "PAGE_ID",
				Action:    resetCommand,
			},
			{
				Name:   "status",
				Usage:  "Show dataset and suppression status",
				Action: statusCommand,
			},
			{
				Name:   "refresh",
				Usage:  "Download the latest wiki export",
				Action: refreshCommand,
			},
			{
				Name:      "import",
				Usage:     "Load a wiki export from a local file",
				ArgsUsage: "FILE",
				Action:    importCommand,
			},
			{
				Name:   "serve",
				Usage:  "Serve the HTTP API and refresh the dataset on schedule",
				Action: serveCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "addr",
						Usage: "Listen address (defaults to listen_addr from config)",
					},
					&cli.BoolFlag{
						Name:  "no-refresh",
						Usage: "Disable scheduled dataset refreshes",
					},
				},
			},
		},
	}
}

// loadConfig reads --config when given and applies --db.
func loadConfig(c *cli.Context) (*catscan.Config, error) {
	cfg := catscan.DefaultConfig()
	if path := c.String("config"); path != "" {
		loaded, err := catscan.LoadConfig(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}
	if db := c.String("db"); db != "" {
		cfg.DBPath = db
	}
	return cfg, nil
}

func openEngine(c *cli.Context) (*catscan.Engine, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, err
	}
	engine, err := catscan.NewEngine(cfg, catscan.WithLogger(slog.Default()))
	if err != nil {
		return nil, fmt.Errorf("failed to open engine: %w", err)
	}
	return engine, nil
}

func scanCommand(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("at least one URL is required")
	}

	engine, err := openEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	out := c.App.Writer
	for _, rawURL := range c.Args().Slice() {
		report, err := engine.CheckPage(c.Context, rawURL, nil)
		if err != nil {
			fmt.Fprintf(out, "%s: %v\n", rawURL, err)
			continue
		}
		printReport(out, report)
	}
	return nil
}

func printReport(out io.Writer, report *catscan.Report) {
	if report.Skipped != catscan.SkipNone {
		fmt.Fprintf(out, "%s: skipped (%s)\n", report.URL, report.Skipped)
		return
	}

	fmt.Fprintf(out, "%s: %d match(es) via %s", report.URL, report.Pages.Len(), report.Strategy)
	if report.Entity != "" {
		fmt.Fprintf(out, ", entity %q", report.Entity)
	}
	if report.Suppressed > 0 {
		fmt.Fprintf(out, ", %d suppressed", report.Suppressed)
	}
	fmt.Fprintln(out)
	printPages(out, report.Pages)
}

func printPages(out io.Writer, pages *search.ResultSet) {
	for entry := range pages.All() {
		fmt.Fprintf(out, "  [%d] %-12s %s  %s\n", entry.EntryID(), entry.ArticleType(), entry.Title(), entry.URL())
	}
}

func batchCommand(c *cli.Context) error {
	urls, err := readURLs(c.String("file"), os.Stdin)
	if err != nil {
		return err
	}
	if len(urls) == 0 {
		return fmt.Errorf("no URLs to check")
	}
	if c.Int("report-interval") <= 0 {
		return fmt.Errorf("report-interval must be greater than 0")
	}

	engine, err := openEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	workers := c.Int("workers")
	if workers <= 0 {
		workers = engine.Config().PoolSize
	}

	runner, err := batchscan.NewRunner(engine.Lookup,
		batchscan.WithPoolSize(workers),
		batchscan.WithProgress(os.Stderr, c.Int("report-interval")),
		batchscan.WithLogger(slog.Default()),
	)
	if err != nil {
		return fmt.Errorf("failed to create runner: %w", err)
	}
	defer runner.Release()

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(os.Stderr, "Checking %d pages with %d workers\n", len(urls), workers)
	batch, err := runner.Run(ctx, urls)
	if err != nil {
		return fmt.Errorf("batch failed: %w", err)
	}

	out := c.App.Writer
	for _, result := range batch.Results {
		switch {
		case result.Err != nil:
			fmt.Fprintf(out, "%s: error: %v\n", result.URL, result.Err)
		case result.Found():
			fmt.Fprintf(out, "%s: %d match(es)\n", result.URL, result.Pages.Len())
			printPages(out, result.Pages)
		}
	}
	fmt.Fprintf(out, "Batch %s: %d checked, %d with matches, %d failed in %s\n",
		batch.ID, len(batch.Results), batch.Found(), batch.Failed(), batch.Elapsed.Round(time.Millisecond))
	return nil
}

// readURLs reads one URL per line, skipping blanks and # comments.
func readURLs(path string, stdin io.Reader) ([]string, error) {
	var r io.Reader = stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open URL list: %w", err)
		}
		defer f.Close()
		r = f
	}

	var urls []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read URL list: %w", err)
	}
	return urls, nil
}

func searchCommand(c *cli.Context) error {
	query := strings.Join(c.Args().Slice(), " ")
	if strings.TrimSpace(query) == "" {
		return fmt.Errorf("a query is required")
	}
	mode, err := search.ParseMode(c.String("mode"))
	if err != nil {
		return err
	}

	engine, err := openEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	results, err := engine.Store().Query(mode, query)
	if err != nil {
		return err
	}

	out := c.App.Writer
	fmt.Fprintf(out, "Found %d hits\n", results.Len())
	printPages(out, results)
	return nil
}

func parsePageID(c *cli.Context) (core.ID, error) {
	if c.NArg() != 1 {
		return 0, fmt.Errorf("exactly one page ID is required")
	}
	id, err := strconv.ParseInt(c.Args().First(), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid page ID %q", c.Args().First())
	}
	return core.ID(id), nil
}

func muteCommand(c *cli.Context) error {
	pageID, err := parsePageID(c)
	if err != nil {
		return err
	}
	engine, err := openEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	if err := engine.Mute(c.Context, pageID); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "Page %d muted for %s\n", pageID, engine.Config().MuteWindow)
	return nil
}

func hideCommand(c *cli.Context) error {
	pageID, err := parsePageID(c)
	if err != nil {
		return err
	}
	engine, err := openEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	if err := engine.Hide(c.Context, pageID); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "Page %d hidden\n", pageID)
	return nil
}

func resetCommand(c *cli.Context) error {
	pageID, err := parsePageID(c)
	if err != nil {
		return err
	}
	engine, err := openEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	if err := engine.Reset(c.Context, pageID); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "Page %d reset\n", pageID)
	return nil
}

func statusCommand(c *cli.Context) error {
	engine, err := openEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	ctx := c.Context
	out := c.App.Writer
	cfg := engine.Config()

	fmt.Fprintf(out, "Enabled: %t\n", cfg.Enabled)
	fmt.Fprintf(out, "Entries: %d\n", engine.Store().Len())
	fmt.Fprintf(out, "Loaded: checksum %.12s\n", engine.DatasetChecksum())
	fmt.Fprintf(out, "Strategies: %s\n", strings.Join(engine.Strategies(), ", "))
	if info, err := engine.DatasetInfo(ctx); err == nil {
		fmt.Fprintf(out, "Dataset: %s (fetched %s, %d bytes, checksum %.12s)\n",
			info.Source, info.FetchedAt.Format(time.RFC3339), info.Size, info.Checksum)
	} else {
		fmt.Fprintln(out, "Dataset: bundled")
	}

	records, err := engine.Suppressions(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Suppressions: %d\n", len(records))
	for _, record := range records {
		state, err := engine.State(ctx, record.PageID)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "  [%d] %s\n", record.PageID, state)
	}
	return nil
}

func refreshCommand(c *cli.Context) error {
	engine, err := openEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	result, err := engine.Refresh(c.Context)
	if err != nil {
		return fmt.Errorf("refresh failed: %w", err)
	}
	if !result.Changed {
		fmt.Fprintln(c.App.Writer, "Dataset unchanged")
		return nil
	}
	fmt.Fprintf(c.App.Writer, "Dataset updated: %d entries from %s\n", result.Entries, result.Snapshot.Source)
	return nil
}

func importCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("exactly one file is required")
	}
	path := c.Args().First()
	payload, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read export: %w", err)
	}

	engine, err := openEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	result, err := engine.LoadDataset(c.Context, payload, path)
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}
	if !result.Changed {
		fmt.Fprintln(c.App.Writer, "Dataset unchanged")
		return nil
	}
	fmt.Fprintf(c.App.Writer, "Imported %d entries from %s\n", result.Entries, path)
	return nil
}

func serveCommand(c *cli.Context) error {
	engine, err := openEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	if !c.Bool("no-refresh") {
		if err := engine.StartRefresh(); err != nil {
			return fmt.Errorf("failed to schedule refresh: %w", err)
		}
	}

	srv, err := server.New(engine, server.WithLogger(slog.Default()))
	if err != nil {
		return err
	}

	addr := c.String("addr")
	if addr == "" {
		addr = engine.Config().ListenAddr
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return srv.ListenAndServe(ctx, addr)
}

func setupLogger(c *cli.Context) error {
	level, err := catscan.ParseLogLevel(c.String("log-level"))
	if err != nil {
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", c.String("log-level"))
	}

	// Configure slog with the specified level
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
