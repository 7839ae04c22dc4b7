package main

import (
	"context"
	"fmt"
	"os"
	"sort"

	"ddl-lint/internal/config"
	"ddl-lint/internal/linter"
	"ddl-lint/internal/model"
	"ddl-lint/internal/parser"
	"ddl-lint/internal/reporter"
	"ddl-lint/internal/rules"
	"ddl-lint/internal/scanner"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	cfgPath     string
	reportFmt   string
	outputFile  string
	excludes    []string
	concurrency int
	verbose     bool

	foundErrors bool
)

var rootCmd = &cobra.Command{
	Use:   "ddl-lint [paths...]",
	Short: "Check warehouse DDL against naming and governance standards",
	Long: `ddl-lint parses CREATE TABLE / CREATE VIEW statements and checks them
against the warehouse standard: naming prefixes, required audit columns,
primary keys, SCD2 column sets, PII masking and tagging, data-type
conventions and comments. Exit status is nonzero when any ERROR-severity
violation is found.`,
	Args:          cobra.ArbitraryArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		initLogging(verbose)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			args = []string{"."}
		}
		return runLint(args)
	},
}

var initConfigCmd = &cobra.Command{
	Use:   "init-config [path]",
	Short: "Write the built-in standard to a YAML file for customizing",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "ddl-lint.yaml"
		if len(args) == 1 {
			path = args[0]
		}
		if err := config.WriteDefault(path); err != nil {
			return err
		}
		log.Info().Str("path", path).Msg("standard file written")
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose (debug) logging")
	rootCmd.Flags().StringVarP(&cfgPath, "config", "c", "", "Path to the standard file (defaults to built-in standard)")
	rootCmd.Flags().StringVarP(&reportFmt, "format", "f", "console", "Report format (console, json)")
	rootCmd.Flags().StringVarP(&outputFile, "out", "o", "", "Write the report to a file instead of stdout")
	rootCmd.Flags().StringSliceVarP(&excludes, "exclude", "e", nil, "Glob patterns to exclude from scanning")
	rootCmd.Flags().IntVar(&concurrency, "concurrency", 8, "Number of files linted in parallel")
	rootCmd.AddCommand(initConfigCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("fatal error")
		os.Exit(2)
	}
	if foundErrors {
		os.Exit(1)
	}
}

func runLint(paths []string) error {
	// Configuration problems fail the run before any parsing begins.
	std, err := config.Load(cfgPath, rules.IDs())
	if err != nil {
		return fmt.Errorf("invalid standard: %w", err)
	}

	sqlParser := parser.New()
	engine := linter.New(rules.Defaults(std)...)

	ctx := context.Background()
	walker := scanner.NewFileWalker([]string{"sql"}, excludes)
	pool := scanner.NewWorkerPool(concurrency, func(path string) ([]model.Finding, error) {
		return lintFile(sqlParser, engine, path)
	})

	var findings []model.Finding
	for _, root := range paths {
		if _, err := os.Stat(root); err != nil {
			return fmt.Errorf("path does not exist: %s", root)
		}

		filePaths, walkErrs := walker.Walk(ctx, root)
		results := pool.Start(ctx, filePaths)

		var fileResults []scanner.FileResult
		for res := range results {
			if res.Error != nil {
				log.Warn().Str("file", res.Path).Err(res.Error).Msg("skipping file")
				continue
			}
			fileResults = append(fileResults, res)
		}
		if err := <-walkErrs; err != nil {
			return fmt.Errorf("scanning %s: %w", root, err)
		}

		// Workers finish out of order; sort per root for stable output.
		sort.Slice(fileResults, func(i, j int) bool {
			return fileResults[i].Path < fileResults[j].Path
		})
		for _, res := range fileResults {
			findings = append(findings, res.Findings...)
		}
	}

	report := model.NewReport(findings)
	if err := emit(report); err != nil {
		return fmt.Errorf("reporting failed: %w", err)
	}

	foundErrors = report.HasErrors()
	return nil
}

func lintFile(p *parser.Parser, engine *linter.Linter, path string) ([]model.Finding, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	res := p.Parse(string(content), path)
	log.Debug().Str("file", path).Int("objects", len(res.Objects)).Msg("parsed")

	findings := res.Findings
	findings = append(findings, engine.Run(res.Objects)...)
	return findings, nil
}

func emit(report *model.Report) error {
	if reportFmt != "console" && reportFmt != "json" {
		return fmt.Errorf("unknown report format %q (want console or json)", reportFmt)
	}

	out := os.Stdout
	if outputFile != "" {
		f, err := os.Create(outputFile)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}

	var rpt model.Reporter
	switch reportFmt {
	case "json":
		rpt = reporter.NewJSONReporter(out)
	default:
		rpt = reporter.NewConsoleReporter(out)
	}
	return rpt.Report(report)
}
