// Copyright 2026 The PSGC API Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/url"
	"os"
	"path"
	"slices"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/psgcapi/psgc/psgc"
	"github.com/psgcapi/psgc/utils/httputils"
	"github.com/psgcapi/psgc/utils/textutils"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

const importBatchSize = 5000

type importOptions struct {
	strict    bool
	traceHTTP bool
	progress  bool
}

var importFlags importOptions

var importCmd = &cobra.Command{
	Use:   "import <file|url>",
	Short: "Imports a PSA publication datafile (.xlsx or .csv) into the DuckDB file",
	Long: `
import reads the PSGC sheet of a PSA publication datafile, derives the parent of
every unit from its code, checks that the result forms a valid hierarchy and
replaces the content of the DuckDB file with it.
`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		if cfg.DBPath == "" {
			return errors.New("a DuckDB file is required (--db)")
		}

		options := importFlags
		options.progress = isatty.IsTerminal(os.Stderr.Fd())

		_, err = importPublication(cmd.Context(), args[0], cfg.DBPath, options)

		return err
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
	importCmd.Flags().BoolVar(&importFlags.strict, "strict", false, "Fail on units whose parent cannot be derived instead of dropping them")
	importCmd.Flags().BoolVar(&importFlags.traceHTTP, "trace-http", false, "Display HTTP requests-responses when downloading")
}

func isURL(source string) bool {
	u, err := url.Parse(source)

	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func importPublication(ctx context.Context, source, dbPath string, options importOptions) (psgc.PublicationReport, error) {
	var report psgc.PublicationReport

	file := source

	if isURL(source) {
		tmp, err := download(ctx, source, options)
		if err != nil {
			return report, err
		}
		defer os.Remove(tmp)

		file = tmp
	}

	repo, err := openRepository(dbPath)
	if err != nil {
		return report, err
	}
	defer repo.DB().Close()

	log.Printf("📖 Reading %s", source)

	rows, err := repo.ReadPublication(file)
	if err != nil {
		return report, fmt.Errorf("reading publication: %w", err)
	}

	units, report, err := psgc.FromPublication(rows, options.strict)
	if err != nil {
		return report, fmt.Errorf("converting publication: %w", err)
	}

	logReport(report)

	if _, err := psgc.NewIndex(units); err != nil {
		return report, fmt.Errorf("validating hierarchy: %w", err)
	}

	if err := repo.Clear(); err != nil {
		return report, fmt.Errorf("clearing previous dataset: %w", err)
	}

	var bar *progressbar.ProgressBar
	if options.progress {
		bar = progressbar.NewOptions(len(units),
			progressbar.OptionSetDescription("Storing units"),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
	}

	for batch := range slices.Chunk(units, importBatchSize) {
		if err := repo.BulkInsert(batch); err != nil {
			return report, fmt.Errorf("storing units: %w", err)
		}

		if bar != nil {
			_ = bar.Add(len(batch))
		}
	}

	if bar != nil {
		_ = bar.Finish()
	}

	log.Printf("✅ Stored %s units in %s", textutils.FormatInt(len(units)), dbPath)

	return report, nil
}

func logReport(report psgc.PublicationReport) {
	log.Printf("📊 %s rows read, %s units kept", textutils.FormatInt(report.Rows), textutils.FormatInt(report.Units))

	labels := make([]string, 0, len(report.Skipped))
	for label := range report.Skipped {
		labels = append(labels, label)
	}

	slices.Sort(labels)

	for _, label := range labels {
		log.Printf("⏭️  Skipped %s rows at level %q", textutils.FormatInt(report.Skipped[label]), label)
	}

	if n := len(report.Orphans); n > 0 {
		const shown = 10

		sample := report.Orphans[:min(n, shown)]
		log.Printf("⚠️  Dropped %s units without a parent one level above: %s",
			textutils.FormatInt(n), strings.Join(sample, ", "))
	}
}

// download stores the document at rawURL in a temporary file, keeping the
// extension so that the reader can be picked from it.
func download(ctx context.Context, rawURL string, options importOptions) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}

	var trace io.Writer
	if options.traceHTTP {
		trace = os.Stderr
	}

	client := httputils.NewClient(httputils.ClientOptions{
		UserAgent: fmt.Sprintf("psgc/%s", Version),
		Trace:     trace,
	})

	log.Printf("🌐 Downloading %s", rawURL)

	body, size, err := httputils.Fetch(ctx, client, rawURL)
	if err != nil {
		return "", err
	}
	defer body.Close()

	f, err := os.CreateTemp("", "psgc-*"+path.Ext(u.Path))
	if err != nil {
		return "", fmt.Errorf("creating temporary file: %w", err)
	}

	var dst io.Writer = f
	if options.progress {
		dst = io.MultiWriter(f, progressbar.DefaultBytes(size, "Downloading"))
	}

	if _, err := io.Copy(dst, body); err != nil {
		return "", errors.Join(fmt.Errorf("downloading %s: %w", rawURL, err), f.Close(), os.Remove(f.Name()))
	}

	if err := f.Close(); err != nil {
		return "", errors.Join(err, os.Remove(f.Name()))
	}

	return f.Name(), nil
}
