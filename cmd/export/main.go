// Command export schreibt die Literaturverzeichnisse aller (oder ausgewählter) Projekte
// einmalig in den konfigurierten S3-Bucket und rotiert alte Exporte.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"citation-hand/config"
	"citation-hand/services"
	"citation-hand/services/render"
	"citation-hand/storage"
)

// exportOptions sind die Kommandozeilenparameter.
type exportOptions struct {
	projects []uint
	styles   []string
	keep     int
}

func main() {
	if err := newRootCmd(runExport).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(run func(ctx context.Context, opts exportOptions, styles []render.Style) error) *cobra.Command {
	var opts exportOptions
	cmd := &cobra.Command{
		Use:          "export",
		Short:        "Exportiert Literaturverzeichnisse nach S3",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			styles, err := parseStyles(opts.styles)
			if err != nil {
				return err
			}
			return run(cmd.Context(), opts, styles)
		},
	}
	cmd.Flags().UintSliceVarP(&opts.projects, "project", "p", nil, "Projekt-IDs (Standard: alle Projekte)")
	cmd.Flags().StringSliceVarP(&opts.styles, "style", "s", nil, "Stile apa,mla (Standard: alle)")
	cmd.Flags().IntVar(&opts.keep, "keep", 0, "Anzahl aufzubewahrender Exporte je Projekt und Stil (Standard: EXPORT_KEEP)")
	return cmd
}

func parseStyles(raw []string) ([]render.Style, error) {
	styles := make([]render.Style, 0, len(raw))
	for _, s := range raw {
		style, err := render.ParseStyle(s)
		if err != nil {
			return nil, err
		}
		styles = append(styles, style)
	}
	return styles, nil
}

func runExport(ctx context.Context, opts exportOptions, styles []render.Style) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if !cfg.ExportEnabled() {
		return fmt.Errorf("export target not configured: S3_URL, S3_BUCKET, S3_KEY and S3_SECRET are required")
	}
	logging, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("can't initialize zap logger: %v", err)
	}
	defer logging.Sync()

	provider, err := storage.Open(cfg, logging)
	if err != nil {
		return err
	}
	defer provider.Close()

	s3Client, err := storage.NewS3Client(ctx, cfg)
	if err != nil {
		return fmt.Errorf("create s3 client: %w", err)
	}

	keep := cfg.ExportKeep
	if opts.keep > 0 {
		keep = opts.keep
	}
	engine := services.NewEngine(provider, logging, time.Now)
	exporter := services.NewExporter(engine, storage.NewS3Store(s3Client, cfg), keep, logging)

	report, err := exporter.Run(ctx, opts.projects, styles)
	if err != nil {
		return err
	}
	logging.Info("Export erfolgreich abgeschlossen.", zap.String("run_id", report.RunID),
		zap.Strings("uploaded", report.Uploaded), zap.Int("removed", report.Removed))
	return nil
}
