package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/termshield/internal/config"
	"github.com/standardbeagle/termshield/internal/debug"
	"github.com/standardbeagle/termshield/internal/metrics"
	"github.com/standardbeagle/termshield/internal/orchestrator"
	"github.com/standardbeagle/termshield/internal/security"
	"github.com/standardbeagle/termshield/internal/version"
	"github.com/standardbeagle/termshield/internal/vocabulary"
)

// loadConfigWithOverrides loads configuration and applies CLI flag overrides
func loadConfigWithOverrides(c *cli.Context) (*config.Config, error) {
	configPath := c.String("config")

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config from %s: %w", configPath, err)
	}

	if c.Bool("no-builtin") {
		cfg.Vocabulary.UseBuiltin = false
	}
	if c.Bool("no-fuzzy") {
		cfg.Matching.EnableFuzzy = false
	}
	if c.Bool("no-context") {
		cfg.Matching.EnableContext = false
	}
	if c.IsSet("threshold") {
		cfg.Matching.FuzzyThreshold = c.Float64("threshold")
	}
	if c.IsSet("workers") {
		cfg.Orchestrator.MaxWorkers = c.Int("workers")
	}

	return cfg, cfg.Validate()
}

// loadVocabulary merges the configured vocabulary with --vocab patterns,
// which are resolved against the working directory.
func loadVocabulary(c *cli.Context, cfg *config.Config) (*vocabulary.Vocabulary, error) {
	vocab, err := vocabulary.LoadPaths(cfg.Vocabulary.BaseDir, cfg.Vocabulary.Paths, cfg.Vocabulary.UseBuiltin)
	if err != nil {
		return nil, err
	}
	if extra := c.StringSlice("vocab"); len(extra) > 0 {
		more, err := vocabulary.LoadPaths(".", extra, false)
		if err != nil {
			return nil, err
		}
		vocab = vocabulary.Merge(vocab, more)
	}
	return vocab, nil
}

func newOrchestrator(c *cli.Context) (*orchestrator.Orchestrator, *config.Config, error) {
	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return nil, nil, err
	}
	vocab, err := loadVocabulary(c, cfg)
	if err != nil {
		return nil, nil, err
	}
	o, err := orchestrator.New(vocab, cfg)
	if err != nil {
		return nil, nil, err
	}
	return o, cfg, nil
}

// readInput returns the contents of the first argument, or of stdin when
// there is none or it is "-". Documents that are not plain UTF-8 text are
// rejected.
func readInput(c *cli.Context) (string, error) {
	v := security.NewInputValidator(c.Int64("max-bytes"))
	path := c.Args().First()
	if path == "" || path == "-" {
		text, err := v.ReadDocument(c.App.Reader)
		if err != nil {
			return "", fmt.Errorf("stdin: %w", err)
		}
		return text, nil
	}
	return readDocument(v, path)
}

func readDocument(v *security.InputValidator, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	defer f.Close()
	text, err := v.ReadDocument(f)
	if err != nil {
		return "", fmt.Errorf("%s: %w", path, err)
	}
	return text, nil
}

func wantJSON(c *cli.Context) bool {
	return c.String("format") == "json"
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// printStats writes the cumulative report to stderr when --stats is set.
func printStats(c *cli.Context, src metrics.StatsSource) error {
	if !c.Bool("stats") {
		return nil
	}
	report := metrics.NewReport(src.Stats())
	if wantJSON(c) {
		return writeJSON(c.App.ErrWriter, report.FormatAsJSON())
	}
	_, err := fmt.Fprint(c.App.ErrWriter, report.FormatAsText())
	return err
}

func newApp(stdin io.Reader, stdout, stderr io.Writer) *cli.App {
	return &cli.App{
		Name:                   "termshield",
		Usage:                  "Find and protect clinical terminology in text before machine translation",
		Version:                version.Version,
		UseShortOptionHandling: true,
		Reader:                 stdin,
		Writer:                 stdout,
		ErrWriter:              stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Config file path",
				Value:   config.DefaultConfigFile,
			},
			&cli.StringSliceFlag{
				Name:  "vocab",
				Usage: "Additional vocabulary files matching glob patterns (e.g., --vocab 'vocab/**/*.toml')",
			},
			&cli.BoolFlag{
				Name:  "no-builtin",
				Usage: "Do not load the built-in clinical vocabulary",
			},
			&cli.BoolFlag{
				Name:  "no-fuzzy",
				Usage: "Disable approximate matching",
			},
			&cli.BoolFlag{
				Name:  "no-context",
				Usage: "Disable context re-weighting and specialty vocabularies",
			},
			&cli.Float64Flag{
				Name:  "threshold",
				Usage: "Minimum similarity for fuzzy matches (overrides config)",
			},
			&cli.IntFlag{
				Name:  "workers",
				Usage: "Maximum chunk workers for large documents (0 = GOMAXPROCS)",
			},
			&cli.Int64Flag{
				Name:  "max-bytes",
				Usage: "Reject input documents larger than this (0 = 32 MiB)",
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format: text or json",
				Value:   "text",
			},
			&cli.BoolFlag{
				Name:  "stats",
				Usage: "Print matching statistics to stderr when done",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Write debug logs to a file (components from TERMSHIELD_DEBUG, default all)",
			},
			&cli.StringFlag{
				Name:  "debug-dir",
				Usage: "Directory for --debug log files (default: a termshield directory under the system temp dir)",
			},
		},
		Before: func(c *cli.Context) error {
			if f := c.String("format"); f != "text" && f != "json" {
				return fmt.Errorf("unknown format %q (want text or json)", f)
			}
			if c.Bool("debug") {
				debug.Enable(os.Getenv(debug.EnvVar))
				path, err := debug.OpenLogFile(c.String("debug-dir"))
				if err != nil {
					return err
				}
				fmt.Fprintf(c.App.ErrWriter, "debug log: %s\n", path)
			}
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:      "match",
				Aliases:   []string{"m"},
				Usage:     "List vocabulary matches in a document",
				ArgsUsage: "[FILE]",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "watch",
						Aliases: []string{"w"},
						Usage:   "Re-run when the document or vocabulary files change",
					},
					&cli.StringFlag{
						Name:  "metrics-addr",
						Usage: "Serve Prometheus metrics on this address while watching (e.g., :9090)",
					},
				},
				Action: matchCommand,
			},
			{
				Name:      "context",
				Usage:     "Show the detected specialties, urgency and setting of a document",
				ArgsUsage: "[FILE]",
				Action:    contextCommand,
			},
			{
				Name:      "prepare",
				Usage:     "Replace protected terms with placeholders and print the prepared document as JSON",
				ArgsUsage: "[FILE]",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "source", Aliases: []string{"s"}, Usage: "Source language", Value: "en"},
					&cli.StringFlag{Name: "target", Aliases: []string{"t"}, Usage: "Target language", Required: true},
					&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "Write the prepared JSON to this file instead of stdout"},
				},
				Action: prepareCommand,
			},
			{
				Name:      "restore",
				Usage:     "Put protected terms back into a translated document",
				ArgsUsage: "[FILE]",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "prepared", Aliases: []string{"p"}, Usage: "JSON written by prepare", Required: true},
					&cli.BoolFlag{Name: "original", Usage: "Restore original terms instead of vocabulary translations"},
					&cli.BoolFlag{Name: "strict", Usage: "Exit with an error when restoration produced warnings"},
				},
				Action: restoreCommand,
			},
			{
				Name:   "vocab",
				Usage:  "Summarize the loaded vocabulary",
				Action: vocabCommand,
			},
			{
				Name:  "version",
				Usage: "Show detailed version information",
				Action: func(c *cli.Context) error {
					_, err := fmt.Fprintln(c.App.Writer, version.FullInfo())
					return err
				},
			},
		},
	}
}

// execute runs the CLI and returns the process exit code. Errors are
// recorded in the debug log before it is closed.
func execute(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	err := debug.Fatal(newApp(stdin, stdout, stderr).Run(args))
	if cerr := debug.CloseLog(); err == nil && cerr != nil {
		err = cerr
	}
	if err != nil {
		fmt.Fprintf(stderr, "%v\n", err)
		return 1
	}
	return 0
}

func main() {
	os.Exit(execute(os.Args, os.Stdin, os.Stdout, os.Stderr))
}

// absDir returns the absolute directory holding path.
func absDir(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return filepath.Dir(abs), nil
}
