package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/natedelduca/json-split/internal/config"
	"github.com/natedelduca/json-split/internal/discover"
	"github.com/natedelduca/json-split/internal/logger"
	"github.com/natedelduca/json-split/internal/output"
	"github.com/natedelduca/json-split/internal/splitter"
	"github.com/natedelduca/json-split/internal/ui"
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		return runPrompt(nil, stdin, stdout, stderr)
	}

	cmd := args[0]
	args = args[1:]

	switch cmd {
	case "prompt":
		return runPrompt(args, stdin, stdout, stderr)
	case "split":
		return runSplit(args, stdout, stderr)
	case "init":
		return runInit(args, stdout, stderr)
	case "help", "-h", "--help":
		usage(stdout)
		return nil
	default:
		usage(stderr)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func usage(w io.Writer) {
	fmt.Fprintf(w, `json-split – split a large JSON array into size-bounded files

Usage:
  json-split                      prompt for a file and split it
  json-split prompt [--config path]
  json-split split [--config path] [--max-size-mb n] [--indent n]
                   [--format json|jsonl] [--output-dir dir] [--dry-run] [-v] <file>
  json-split init [--config path]
`)
}

func runInit(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", config.DefaultFile, "config file path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	path, err := resolvePath(*configPath)
	if err != nil {
		return err
	}
	if err := config.Save(path, config.Default()); err != nil {
		return err
	}

	fmt.Fprintf(stdout, "wrote default config to %s\n", path)
	return nil
}

// runPrompt is the interactive mode: ask for a path, then split it with the
// configured defaults. A path that does not exist is reported and is not
// treated as a failure.
func runPrompt(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("prompt", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", config.DefaultFile, "config file path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	initLogging(cfg, stderr)

	path, err := ui.AskInputPath(stdin, stdout)
	if err != nil {
		return err
	}

	if _, err := discover.Discover(path); errors.Is(err, discover.ErrNotFound) {
		fmt.Fprintf(stdout, "error: file does not exist: %s\n", path)
		return nil
	}

	opts, err := optionsFromConfig(cfg)
	if err != nil {
		return err
	}
	opts.Progress = stdout

	_, err = splitter.Split(path, opts)
	return err
}

func runSplit(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("split", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", config.DefaultFile, "config file path")
	maxSize := fs.Float64("max-size-mb", config.DefaultMaxSizeMB, "approximate maximum size of each chunk in MiB")
	indent := fs.Int("indent", 2, "indent width for json output (0 for compact)")
	format := fs.String("format", "json", "output format: json or jsonl")
	outputDir := fs.String("output-dir", "", "directory for chunk files (default: next to the input)")
	dryRun := fs.Bool("dry-run", false, "report the planned chunks without writing them")
	verbose := fs.Bool("v", false, "enable debug logging")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		usage(stderr)
		return errors.New("split needs exactly one input file")
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}

	// Only flags given on the command line override the config file.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "max-size-mb":
			cfg.MaxSizeMB = *maxSize
		case "indent":
			cfg.Indent = *indent
		case "format":
			cfg.Format = strings.ToLower(*format)
		case "output-dir":
			cfg.OutputDir = *outputDir
		case "v":
			if *verbose {
				cfg.LogLevel = "debug"
			}
		}
	})
	if err := cfg.Validate(); err != nil {
		return err
	}
	initLogging(cfg, stderr)

	opts, err := optionsFromConfig(cfg)
	if err != nil {
		return err
	}
	opts.DryRun = *dryRun
	opts.Progress = stdout

	_, err = splitter.Split(fs.Arg(0), opts)
	return err
}

func optionsFromConfig(cfg config.Config) (splitter.Options, error) {
	format, err := output.ParseFormat(cfg.Format)
	if err != nil {
		return splitter.Options{}, err
	}
	indent := cfg.Indent
	return splitter.Options{
		MaxSizeMB: cfg.MaxSizeMB,
		Format:    format,
		Indent:    &indent,
		OutputDir: cfg.OutputDir,
	}, nil
}

func initLogging(cfg config.Config, w io.Writer) {
	logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		Writer: w,
	})
}

func loadConfig(configPath string) (config.Config, error) {
	path, err := resolvePath(configPath)
	if err != nil {
		return config.Config{}, err
	}
	cfg, err := config.LoadOrDefault(path)
	if err != nil {
		return config.Config{}, fmt.Errorf("load %s: %w", path, err)
	}
	return cfg, nil
}

func resolvePath(p string) (string, error) {
	if filepath.IsAbs(p) {
		return p, nil
	}
	root, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(root, p), nil
}
