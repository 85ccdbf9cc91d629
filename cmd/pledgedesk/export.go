package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/zeptools/pledgedesk/export"
	"github.com/zeptools/pledgedesk/rasterize"
	"github.com/zeptools/pledgedesk/rasterize/chromium"
	"github.com/zeptools/pledgedesk/render"
)

type exportOpts struct {
	out        string
	jobs       int
	at         string
	templates  string
	browserBin string
	controlURL string
}

var exportFlags exportOpts

var exportCmd = &cobra.Command{
	Use:   "export RECORD.yaml...",
	Short: "Export record files to PDF",
	Long: `Renders every record file into its pledge document and writes
تعهد_<observer>.pdf into the output directory. A failing record does not stop the others.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		at, err := exportFlags.exportTime()
		if err != nil {
			return err
		}
		store, err := render.NewStore(exportFlags.templates)
		if err != nil {
			return err
		}
		engine := chromium.New(chromium.Config{
			Bin:        exportFlags.browserBin,
			ControlURL: exportFlags.controlURL,
		})
		defer func() {
			if err := engine.Close(); err != nil {
				log.Printf("[ERROR][EXPORT] closing browser: %v", err)
			}
		}()
		renderer, err := render.New(store)
		if err != nil {
			return err
		}
		return exportRecords(ctx, renderer, engine, args, exportFlags.out, exportFlags.jobs, at)
	},
}

func init() {
	f := exportCmd.Flags()
	f.StringVarP(&exportFlags.out, "out", "o", ".", "output directory")
	f.IntVarP(&exportFlags.jobs, "jobs", "j", 2, "records exported at the same time")
	f.StringVar(&exportFlags.at, "at", "", "document date and time, RFC3339 (default: now)")
	f.StringVar(&exportFlags.templates, "templates", "", "template directory (default: embedded)")
	f.StringVar(&exportFlags.browserBin, "browser-bin", "", "chromium binary")
	f.StringVar(&exportFlags.controlURL, "control-url", "", "DevTools URL of a running browser")
}

func (o exportOpts) exportTime() (time.Time, error) {
	if o.at == "" {
		return time.Now(), nil
	}
	at, err := time.Parse(time.RFC3339, o.at)
	if err != nil {
		return time.Time{}, fmt.Errorf("--at: %w", err)
	}
	return at, nil
}

// exportRecords runs one pipeline per record file, at most jobs at a time.
// Each record is keyed by its path.
func exportRecords(ctx context.Context, renderer export.Renderer, engine rasterize.Engine, paths []string, out string, jobs int, at time.Time) error {
	pipeline := export.New(renderer, engine, export.Config{Creator: "pledgedesk"})
	saver := export.DirSaver{Dir: out}

	var g errgroup.Group
	if jobs > 0 {
		g.SetLimit(jobs)
	}
	failed := make([]error, len(paths))
	for i, path := range paths {
		g.Go(func() error {
			rec, err := loadRecordFile(ctx, path)
			if err != nil {
				failed[i] = err
				return nil
			}
			res, err := pipeline.Run(ctx, path, rec, at, saver)
			if err != nil {
				failed[i] = fmt.Errorf("%s: %s: %w", path, export.UserMessage(err), err)
				return nil
			}
			fmt.Fprintf(os.Stdout, "%s -> %s (%d pages)\n", path, res.Filename, res.Pages)
			return nil
		})
	}
	_ = g.Wait()

	n := 0
	for _, err := range failed {
		if err != nil {
			n++
			log.Printf("[ERROR][EXPORT] %v", err)
		}
	}
	if n > 0 {
		return fmt.Errorf("%d of %d records failed", n, len(paths))
	}
	return nil
}
