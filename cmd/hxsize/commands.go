package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	auth "Thermex/internal/auth"
	"Thermex/internal/calc/batch"
	"Thermex/internal/calc/exchanger"
	"Thermex/internal/calc/importer"
	"Thermex/internal/calc/recommend"
	"Thermex/internal/calc/report"
	"Thermex/internal/config"
	"Thermex/internal/fluid"
	"Thermex/internal/repo"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// options shared by every command.
type options struct {
	constantsFile string
	source        string
	databaseURL   string
	logLevel      string
	jsonOut       bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "hxsize",
		Short:         "Size double-pipe and shell-and-tube heat exchangers",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			config.ConfigureLogger(logrus.StandardLogger(), opts.logLevel, "text")
			logrus.SetOutput(cmd.ErrOrStderr())
		},
	}
	env := config.LoadEnv()
	flags := root.PersistentFlags()
	flags.StringVar(&opts.constantsFile, "constants", env.ConstantsFile, "ini file with hardware and design constants")
	flags.StringVar(&opts.source, "source", env.FluidSource, "fluid property source: table, nist or postgres")
	flags.StringVar(&opts.databaseURL, "database-url", env.DatabaseURL, "Postgres connection string for --source postgres")
	flags.StringVar(&opts.logLevel, "log-level", "warn", "log level")
	flags.BoolVar(&opts.jsonOut, "json", false, "write results as JSON")

	root.AddCommand(
		newSizeCmd(opts),
		newBatchCmd(opts),
		newRecommendCmd(opts),
		newCatalogCmd(opts),
		newFluidsCmd(opts),
		newHashPasswordCmd(),
	)
	return root
}

// calculator builds a calculator from the flags. The returned func releases
// the property source.
func (o *options) calculator(ctx context.Context) (*exchanger.Calculator, func() error, error) {
	constants, err := config.LoadConstants(o.constantsFile)
	if err != nil {
		return nil, nil, err
	}
	provider, closeFn, err := repo.OpenProvider(ctx, o.source, o.databaseURL)
	if err != nil {
		return nil, nil, err
	}
	return exchanger.NewCalculator(constants, provider, logrus.StandardLogger()), closeFn, nil
}

// readYAML decodes a YAML or JSON file into v.
func readYAML(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newSizeCmd(opts *options) *cobra.Command {
	var pdfPath string
	var meta report.Meta
	cmd := &cobra.Command{
		Use:   "size <case.yaml>",
		Short: "Size one exchanger",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var in exchanger.Input
			if err := readYAML(args[0], &in); err != nil {
				return err
			}
			calc, closeFn, err := opts.calculator(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			res, err := calc.Calculate(cmd.Context(), in)
			if err != nil {
				return err
			}
			if pdfPath != "" {
				f, err := os.Create(pdfPath)
				if err != nil {
					return err
				}
				if err := report.Render(f, meta, res); err != nil {
					f.Close()
					return err
				}
				if err := f.Close(); err != nil {
					return err
				}
			}
			if opts.jsonOut {
				return writeJSON(cmd, res)
			}
			return printResult(cmd.OutOrStdout(), res)
		},
	}
	cmd.Flags().StringVar(&pdfPath, "pdf", "", "also write a PDF data sheet to this path")
	cmd.Flags().StringVar(&meta.Project, "project", "", "project name for the PDF")
	cmd.Flags().StringVar(&meta.Author, "author", "", "author for the PDF")
	return cmd
}

func newBatchCmd(opts *options) *cobra.Command {
	var workers int
	var outPath string
	cmd := &cobra.Command{
		Use:   "batch <cases.yaml|cases.xlsx>",
		Short: "Size many cases concurrently",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, rows, skipped, err := readBatch(args[0])
			if err != nil {
				return err
			}
			if workers > 0 {
				in.Workers = workers
			}
			calc, closeFn, err := opts.calculator(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			res, err := batch.Run(cmd.Context(), calc, in)
			if err != nil {
				return err
			}
			if outPath != "" {
				f, err := os.Create(outPath)
				if err != nil {
					return err
				}
				if err := importer.WriteResults(f, res, rows, skipped); err != nil {
					f.Close()
					return err
				}
				if err := f.Close(); err != nil {
					return err
				}
			}
			if opts.jsonOut {
				return writeJSON(cmd, res)
			}
			return printBatch(cmd.OutOrStdout(), res, skipped)
		},
	}
	cmd.Flags().IntVar(&workers, "workers", 0, "concurrent runs (default GOMAXPROCS)")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "write an xlsx results workbook")
	return cmd
}

// readBatch loads a YAML item list or an xlsx case sheet. rows holds the
// source row of each item (1-based list position for YAML).
func readBatch(path string) (batch.Input, []int, []importer.RowError, error) {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		f, err := os.Open(path)
		if err != nil {
			return batch.Input{}, nil, nil, err
		}
		defer f.Close()
		cases, skipped, err := importer.ReadCases(f)
		if err != nil {
			return batch.Input{}, nil, nil, err
		}
		in := batch.Input{Items: make([]exchanger.Input, len(cases))}
		rows := make([]int, len(cases))
		for i, c := range cases {
			in.Items[i], rows[i] = c.Input, c.Row
		}
		return in, rows, skipped, nil
	}

	var in batch.Input
	if err := readYAML(path, &in); err != nil {
		return batch.Input{}, nil, nil, err
	}
	rows := make([]int, len(in.Items))
	for i := range rows {
		rows[i] = i + 1
	}
	return in, rows, nil, nil
}

func newRecommendCmd(opts *options) *cobra.Command {
	var in recommend.Input
	cmd := &cobra.Command{
		Use:   "recommend <case.yaml>",
		Short: "Rate a duty against every catalog geometry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := readYAML(args[0], &in.Case); err != nil {
				return err
			}
			calc, closeFn, err := opts.calculator(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			res, err := recommend.Recommend(cmd.Context(), calc, in)
			if err != nil {
				return err
			}
			if opts.jsonOut {
				return writeJSON(cmd, res)
			}
			return printRecommendation(cmd.OutOrStdout(), res)
		},
	}
	cmd.Flags().IntVar(&in.MaxPasses, "max-passes", 0, "reject geometries needing more hairpin passes")
	cmd.Flags().Float64Var(&in.MaxPressureDropPSI, "max-drop", 0, "reject geometries whose larger side drop exceeds this (psi)")
	cmd.Flags().IntVar(&in.Workers, "workers", 0, "concurrent runs (default GOMAXPROCS)")
	return cmd
}

func newCatalogCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "catalog",
		Short: "List the double-pipe and tube catalogs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			listing := exchanger.Listing()
			if opts.jsonOut {
				return writeJSON(cmd, listing)
			}
			return printCatalog(cmd.OutOrStdout(), listing)
		},
	}
}

func newFluidsCmd(opts *options) *cobra.Command {
	fluids := &cobra.Command{
		Use:   "fluids",
		Short: "Inspect and load fluid property data",
	}
	fluids.AddCommand(&cobra.Command{
		Use:   "lookup <substance> <temperature_f>",
		Short: "Look up properties from the configured source",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var t float64
			if _, err := fmt.Sscanf(args[1], "%g", &t); err != nil {
				return fmt.Errorf("temperature %q: %w", args[1], err)
			}
			provider, closeFn, err := repo.OpenProvider(cmd.Context(), opts.source, opts.databaseURL)
			if err != nil {
				return err
			}
			defer closeFn()
			p, err := provider.Lookup(cmd.Context(), args[0], t)
			if err != nil {
				return err
			}
			if opts.jsonOut {
				return writeJSON(cmd, p)
			}
			return printProperties(cmd.OutOrStdout(), args[0], t, p)
		},
	})
	fluids.AddCommand(&cobra.Command{
		Use:   "seed",
		Short: "Load the built-in property table into Postgres",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := repo.Open(cmd.Context(), opts.databaseURL)
			if err != nil {
				return err
			}
			defer db.Close()
			pg := repo.NewPostgresPropertyDB(db)
			if err := pg.EnsureSchema(cmd.Context()); err != nil {
				return err
			}
			for name, points := range fluid.DefaultPoints() {
				if err := pg.Store(cmd.Context(), name, points); err != nil {
					return fmt.Errorf("seed %s: %w", name, err)
				}
				logrus.WithFields(logrus.Fields{"substance": name, "points": len(points)}).Info("seeded")
			}
			return nil
		},
	})
	return fluids
}

func newHashPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password <password>",
		Short: "Print a bcrypt hash for ADMIN_PASSWORD_HASH",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := auth.HashPassword(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
}
