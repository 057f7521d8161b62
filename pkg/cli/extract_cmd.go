package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"parquet-meta/internal/config"
	"parquet-meta/internal/domain"
	"parquet-meta/internal/engine"
	"parquet-meta/internal/extract"
	"parquet-meta/internal/parquetschema"
	"parquet-meta/internal/report"
	"parquet-meta/internal/service/metadata"
	"parquet-meta/internal/storage"
)

const defaultReportPath = "parquet_metadata.xlsx"

func newExtractCmd(opts *globalOptions) *cobra.Command {
	var (
		reportPath string
		noReport   bool
		seed       uint64
	)

	cmd := &cobra.Command{
		Use:   "extract <file|dir|s3://bucket/key>...",
		Short: "Extract column metadata and write the report",
		Long: "Classify every column of the given Parquet files and write the metadata spreadsheet.\n" +
			"Directories contribute their *.parquet files in name order. The records are also\n" +
			"printed in the selected output format.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.LoadDotEnv(".env"); err != nil {
				return err
			}
			cfg, err := config.LoadFromEnv()
			if err != nil {
				return fmt.Errorf("config: %w", err)
			}
			logger := newLogger(cmd.ErrOrStderr(), opts.verbose)
			for _, w := range cfg.Warnings {
				logger.Warn(w)
			}

			if !cmd.Flags().Changed("seed") {
				seed = resolveSeed(os.Getenv("SAMPLE_SEED") != "", cfg.SampleSeed, opts.active.Seed)
			}
			if !cmd.Flags().Changed("report") {
				reportPath = defaultReportPath
				if opts.active.Report != "" {
					reportPath = opts.active.Report
				}
			}

			paths, err := metadata.ExpandInputs(args)
			if err != nil {
				return err
			}
			if len(paths) == 0 {
				return domain.ErrValidation("no .parquet files found in %v", args)
			}

			ctx := cmd.Context()
			db, err := engine.Open(ctx, cfg.DuckDBMaxMemory)
			if err != nil {
				return err
			}
			defer db.Close() //nolint:errcheck

			var stagers []domain.Stager
			if cfg.HasS3Config() {
				stager, err := storage.NewS3Stager(cfg, logger.With("component", "storage"))
				if err != nil {
					return err
				}
				stagers = append(stagers, stager)
			}

			svc := metadata.NewService(
				extract.New(
					engine.NewParquetLoader(db, logger.With("component", "engine")),
					parquetschema.NewReader(),
					seed,
					logger.With("component", "extract"),
				),
				report.NewWorkbookWriter(logger.With("component", "report")),
				logger.With("component", "metadata"),
				stagers...,
			)

			var records []domain.Record
			if noReport {
				records, err = svc.Extract(ctx, paths)
			} else {
				records, err = svc.Report(ctx, paths, reportPath)
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if getOutputFormat(cmd) == "json" {
				if err := report.WriteJSON(out, records); err != nil {
					return err
				}
			} else if err := report.WriteTable(out, records); err != nil {
				return err
			}
			if !noReport {
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Report written to %s\n", reportPath)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&reportPath, "report", "r", defaultReportPath, "Path of the .xlsx report")
	cmd.Flags().BoolVar(&noReport, "no-report", false, "Only print the records, do not write the report")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "Seed for value sampling (default from SAMPLE_SEED, then the profile)")
	cmd.MarkFlagsMutuallyExclusive("report", "no-report")

	return cmd
}

// resolveSeed picks the sampling seed when --seed is not given, with the
// same precedence as --output: env > profile > default.
func resolveSeed(envSet bool, envSeed uint64, profileSeed *uint64) uint64 {
	if !envSet && profileSeed != nil {
		return *profileSeed
	}
	return envSeed
}
