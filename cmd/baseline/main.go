package main

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/jward/baseline"
)

var (
	flagConfig  string
	flagFormat  string
	flagVerbose bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "baseline",
	Short:         "Flag web platform features with incomplete browser support",
	Long:          "Baseline parses CSS, JavaScript, TypeScript, and HTML with tree-sitter and reports features that are not yet supported by all browsers.",
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return validateFormat(flagFormat)
	},
	// No Run — prints help by default.
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to TOML config file")
	rootCmd.PersistentFlags().StringVar(&flagFormat, "format", "text", "output format: json|text")
	rootCmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "enable debug logging")

	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(featuresCmd)
}

var (
	flagRulesDir  string
	flagDataset   string
	flagDatasetDB string
	flagStrict    bool
)

var checkCmd = &cobra.Command{
	Use:   "check [path...]",
	Short: "Analyze files or directories and report diagnostics",
	Long:  "Walks the given paths (default: current directory), analyzes every supported file, and prints diagnostics for features with incomplete browser support.",
	RunE:  runCheck,
}

func init() {
	checkCmd.Flags().StringVar(&flagRulesDir, "rules", "", "directory of Risor rule scripts extending the mapping tables")
	checkCmd.Flags().StringVar(&flagDataset, "dataset", "", "JSON compatibility dataset (default: embedded snapshot)")
	checkCmd.Flags().StringVar(&flagDatasetDB, "dataset-db", "", "SQLite compatibility dataset, opened read-only")
	checkCmd.Flags().BoolVar(&flagStrict, "strict", false, "exit nonzero when any diagnostic is found")
}

func runCheck(cmd *cobra.Command, args []string) error {
	start := time.Now()
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	eng, err := buildEngine()
	if err != nil {
		return err
	}
	defer eng.Close()

	if err := eng.Initialize(ctx); err != nil {
		return fmt.Errorf("loading dataset: %w", err)
	}

	docs, err := collectDocuments(args)
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		fmt.Fprintln(os.Stderr, "no supported files found")
		return nil
	}

	results, err := eng.AnalyzeAll(ctx, docs)
	if err != nil {
		return err
	}

	total := outputResults(os.Stdout, flagFormat, results)
	if flagFormat == formatText {
		fmt.Fprintf(os.Stderr, "%d files, %d findings in %s\n",
			len(docs), total, time.Since(start).Round(time.Millisecond))
	}
	if flagStrict && total > 0 {
		return fmt.Errorf("%d findings", total)
	}
	return nil
}

var featuresCmd = &cobra.Command{
	Use:   "features [path]",
	Short: "List the feature IDs used by a single file",
	Long:  "Analyzes one file and prints every feature occurrence it contains, including fully supported ones.",
	Args:  cobra.ExactArgs(1),
	RunE:  runFeatures,
}

func runFeatures(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	eng, err := buildEngine()
	if err != nil {
		return err
	}
	defer eng.Close()

	doc, ok, err := readDocument(args[0])
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("unsupported file type: %s", args[0])
	}

	occs, err := eng.Features(ctx, doc)
	if err != nil {
		return err
	}
	return outputFeatures(os.Stdout, flagFormat, occs)
}

// buildEngine assembles engine options from the config file first,
// then command-line flags on top.
func buildEngine() (*baseline.Engine, error) {
	cfg, err := loadConfig(flagConfig)
	if err != nil {
		return nil, err
	}
	opts, err := cfg.options()
	if err != nil {
		return nil, err
	}

	if flagVerbose {
		log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
		opts = append(opts, baseline.WithLogger(log))
	}
	if flagDataset != "" {
		opts = append(opts, baseline.WithDatasetJSON(flagDataset))
	}
	if flagDatasetDB != "" {
		opts = append(opts, baseline.WithDatasetDB(flagDatasetDB))
	}
	if flagRulesDir != "" {
		opts = append(opts, baseline.WithRulesFS(os.DirFS(flagRulesDir)))
	}
	return baseline.New(opts...)
}

// collectDocuments walks the given paths (default ".") and reads every
// file with a supported extension.
func collectDocuments(args []string) ([]baseline.Document, error) {
	if len(args) == 0 {
		args = []string{"."}
	}

	var docs []baseline.Document
	for _, root := range args {
		info, err := os.Stat(root)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			doc, ok, err := readDocument(root)
			if err != nil {
				return nil, err
			}
			if ok {
				docs = append(docs, doc)
			}
			continue
		}

		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if name := d.Name(); name == "node_modules" || name == ".git" {
					return filepath.SkipDir
				}
				return nil
			}
			doc, ok, rerr := readDocument(path)
			if rerr != nil {
				return rerr
			}
			if ok {
				docs = append(docs, doc)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })
	return docs, nil
}

// readDocument reads one file, returning ok=false for unsupported
// extensions.
func readDocument(path string) (baseline.Document, bool, error) {
	kind, ok := baseline.KindForFile(path)
	if !ok {
		return baseline.Document{}, false, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return baseline.Document{}, false, fmt.Errorf("reading %s: %w", path, err)
	}
	return baseline.Document{ID: path, Text: string(data), Kind: kind}, true, nil
}
