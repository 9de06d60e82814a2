package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/xhad/medscan/internal/models"
	"github.com/xhad/medscan/internal/types"
	"github.com/xhad/medscan/pkg/source"
	"github.com/xhad/medscan/pkg/store"
)

type extractOptions struct {
	json    bool
	workers int
	store   bool
}

func extractCmd(global *globalOptions) *cobra.Command {
	var opts extractOptions

	cmd := &cobra.Command{
		Use:   "extract <path|url>...",
		Short: "Extract medical information from report files or URLs",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(global)
			if err != nil {
				return err
			}
			return runExtract(cmd.Context(), a, opts, args, cmd.OutOrStdout())
		},
	}
	cmd.Flags().BoolVar(&opts.json, "json", false, "Print results as JSON")
	cmd.Flags().IntVarP(&opts.workers, "workers", "w", 4, "Number of documents processed in parallel")
	cmd.Flags().BoolVar(&opts.store, "store", false, "Save results to the configured database")
	return cmd
}

// outcome is one input location after fetching and extraction.
type outcome struct {
	Location string                  `json:"location"`
	ID       string                  `json:"id,omitempty"`
	Document models.Document         `json:"-"`
	Result   models.ExtractionResult `json:"result"`
	Err      error                   `json:"-"`
	Error    string                  `json:"error,omitempty"`
}

func runExtract(ctx context.Context, a *app, opts extractOptions, locations []string, out io.Writer) error {
	src := source.NewWithConfig(source.SourceConfig{
		Timeout:    a.cfg.Source.Timeout,
		RateLimit:  a.cfg.Source.RateLimit,
		UserAgent:  a.cfg.Source.UserAgent,
		OnProgress: func(location string) {
			a.logger.Debug().Str("location", location).Msg("fetching report")
		},
	})

	bar := getProgressBar(len(locations), "📄 Extracting reports...", !opts.json)
	start := time.Now()
	outcomes := processAll(ctx, src, a.pipeline, locations, opts.workers, func() {
		bar.Add(1)
	})
	bar.Finish()
	a.logger.Debug().Int("documents", len(outcomes)).Dur("elapsed", time.Since(start)).Msg("batch complete")

	if opts.store {
		if err := saveOutcomes(ctx, a, outcomes); err != nil {
			return err
		}
	}

	if opts.json {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(outcomes); err != nil {
			return err
		}
	} else {
		fmt.Fprintln(out)
		for _, o := range outcomes {
			printOutcome(out, o)
		}
	}

	failed := 0
	for _, o := range outcomes {
		if o.Err != nil || !o.Result.Success {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d documents failed", failed, len(outcomes))
	}
	return nil
}

// processAll fetches and extracts every location on a bounded pool of
// workers. Outcomes keep input order.
func processAll(ctx context.Context, src types.TextSource, ext types.Extractor, locations []string, workers int, done func()) []outcome {
	if workers < 1 {
		workers = 1
	}

	outcomes := make([]outcome, len(locations))
	jobs := make(chan int)
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				outcomes[i] = processOne(ctx, src, ext, locations[i])
				if done != nil {
					done()
				}
			}
		}()
	}

	for i := range locations {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return outcomes
}

func processOne(ctx context.Context, src types.TextSource, ext types.Extractor, location string) outcome {
	o := outcome{Location: location}

	doc, err := src.Fetch(ctx, location)
	if err != nil {
		o.Err = err
		o.Error = err.Error()
		return o
	}

	o.Document = doc
	o.Result = ext.ExtractDocument(doc)
	return o
}

func saveOutcomes(ctx context.Context, a *app, outcomes []outcome) error {
	var docs []models.ProcessedDocument
	var idx []int
	for i, o := range outcomes {
		if o.Err != nil {
			continue
		}
		docs = append(docs, models.ProcessedDocument{Document: o.Document, Result: o.Result})
		idx = append(idx, i)
	}
	if len(docs) == 0 {
		return nil
	}

	spinner := getSpinner("💾 Saving results...")
	defer spinner.Finish()

	rs, err := store.NewWithConfig(store.StoreConfig{
		ConnString: a.cfg.Database.URL,
		TableName:  a.cfg.Database.TableName,
		BatchSize:  a.cfg.Database.BatchSize,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize result store: %w", err)
	}
	defer rs.Close()

	ids, err := rs.Save(ctx, docs)
	if err != nil {
		return fmt.Errorf("failed to store results: %w", err)
	}
	for j, id := range ids {
		outcomes[idx[j]].ID = id
	}
	return nil
}

func printOutcome(out io.Writer, o outcome) {
	ok := color.New(color.FgGreen).FprintfFunc()
	fail := color.New(color.FgRed).FprintfFunc()
	label := color.New(color.FgCyan).FprintfFunc()

	if o.Err != nil {
		fail(out, "✗ %s: %v\n", o.Location, o.Err)
		return
	}
	if !o.Result.Success {
		fail(out, "✗ %s: %s\n", o.Location, o.Result.Error)
		return
	}

	ok(out, "✓ %s", o.Location)
	if o.ID != "" {
		fmt.Fprintf(out, " (%s)", o.ID)
	}
	fmt.Fprintln(out)

	label(out, "  Patient:   ")
	fmt.Fprintln(out, describePatient(o.Result.PatientDetails))
	label(out, "  Diseases:  ")
	fmt.Fprintln(out, strings.Join(o.Result.Diseases, ", "))
	label(out, "  Allergies: ")
	fmt.Fprintln(out, orDash(o.Result.Allergies))
	label(out, "  Labs:      ")
	fmt.Fprintln(out, describeLabs(o.Result.LabValues))
}

func describePatient(d models.PatientDetails) string {
	var parts []string
	if d.Name != nil {
		parts = append(parts, *d.Name)
	}
	if d.Age != nil {
		parts = append(parts, fmt.Sprintf("%d years", *d.Age))
	}
	if d.Gender != nil {
		parts = append(parts, string(*d.Gender))
	}
	if d.HeightCM != nil {
		parts = append(parts, fmt.Sprintf("%d cm", *d.HeightCM))
	}
	if d.WeightKG != nil {
		parts = append(parts, fmt.Sprintf("%d kg", *d.WeightKG))
	}
	return orDash(strings.Join(parts, ", "))
}

func describeLabs(labs models.LabValues) string {
	var parts []string
	for _, k := range models.LabKeys {
		if v, ok := labs[k]; ok {
			parts = append(parts, fmt.Sprintf("%s=%g", k, v))
		}
	}
	return orDash(strings.Join(parts, " "))
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
