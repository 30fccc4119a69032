package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sandpy"
	"sandpy/internal/config"
	"sandpy/internal/log"
	"sandpy/internal/parser"
	"sandpy/internal/repl"
	"sandpy/internal/store"

	"gopkg.in/yaml.v3"
)

const historyFile = ".sandpy_history"

var (
	Version   = "dev"
	BuildDate = "unknown"
	Commit    = "unknown"
)

const (
	exitOK        = 0
	exitExecution = 1
	exitUsage     = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

type options struct {
	help       bool
	version    bool
	configPath string
	ttl        int64
	format     string
	storeDrv   string
	storeDSN   string
	repl       bool
	debugAST   bool
	logLevel   string
	logFile    string
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	var opts options
	fs := flag.NewFlagSet("sandpy", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.BoolVar(&opts.help, "help", false, "Display help information and exit")
	fs.BoolVar(&opts.help, "h", false, "Display help information and exit")
	fs.BoolVar(&opts.version, "version", false, "Display version information and exit")
	fs.BoolVar(&opts.version, "v", false, "Display version information and exit")
	fs.StringVar(&opts.configPath, "config", "", "Load settings from a TOML file")
	fs.Int64Var(&opts.ttl, "ttl", config.DefaultTTL, "Fuel budget for the run")
	fs.StringVar(&opts.format, "format", config.DefaultOutputFormat, "Output format: json, yaml, text")
	fs.StringVar(&opts.storeDrv, "store-driver", "", "Record the run: sqlite3, mysql, postgres")
	fs.StringVar(&opts.storeDSN, "store-dsn", "", "Data source name for the run store")
	fs.BoolVar(&opts.repl, "repl", false, "Start an interactive session")
	fs.BoolVar(&opts.debugAST, "debug-ast", false, "Print the AST as JSON and exit")
	fs.StringVar(&opts.logLevel, "log-level", config.DefaultLogLevel, "Log level: trace, debug, info, warn, error, none")
	fs.StringVar(&opts.logFile, "log-file", "", "Log file path (if not set, logs to stderr)")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}

	if opts.version {
		fmt.Fprintf(stdout, "sandpy version 'v%s' %s %s\n", Version, BuildDate, Commit)
		return exitOK
	}
	if opts.help {
		printHelp(stdout)
		return exitOK
	}

	cfg := config.Default()
	if opts.configPath != "" {
		loaded, err := config.Load(opts.configPath)
		if err != nil {
			fmt.Fprintln(stderr, err)
			return exitUsage
		}
		cfg = loaded
	}
	cfg.Version, cfg.BuildDate, cfg.Commit = Version, BuildDate, Commit

	// explicit flags win over the file
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "ttl":
			cfg.TTL = opts.ttl
		case "format":
			cfg.Output.Format = opts.format
		case "store-driver":
			cfg.Store.Driver = opts.storeDrv
		case "store-dsn":
			cfg.Store.DSN = opts.storeDSN
		case "log-level":
			cfg.Log.Level = opts.logLevel
		case "log-file":
			cfg.Log.File = opts.logFile
		}
	})
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(stderr, err)
		return exitUsage
	}

	logger, closeLog := log.Setup(cfg.Log.Level, cfg.Log.File)
	defer closeLog()
	slog.SetDefault(logger)

	execOpts := sandpy.Options{
		MaxAllocBytes: cfg.MaxAllocBytes,
		MaxCallDepth:  cfg.MaxCallDepth,
		Logger:        logger,
	}

	if opts.repl {
		home, _ := os.UserHomeDir()
		hist := ""
		if home != "" {
			hist = filepath.Join(home, historyFile)
		}
		repl.Start(repl.NewSession(cfg.TTL, execOpts, stdout), hist)
		return exitOK
	}

	source, err := readSource(fs.Arg(0), stdin)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitUsage
	}

	if opts.debugAST {
		module, err := parser.Parse(source)
		if err != nil {
			fmt.Fprintln(stderr, err)
			return exitUsage
		}
		out, err := parser.RenderASTAsJSON(module)
		if err != nil {
			fmt.Fprintln(stderr, err)
			return exitExecution
		}
		fmt.Fprintln(stdout, out)
		return exitOK
	}

	logger.Info("running script", slog.String("file", fs.Arg(0)), slog.Int64("ttl", cfg.TTL))
	bindings, execErr := sandpy.ExecWith(source, cfg.TTL, execOpts)

	if cfg.Store.Driver != "" {
		if err := record(cfg.Store, logger, store.NewRun(source, cfg.TTL, bindings, execErr)); err != nil {
			logger.Error("failed to record run", slog.Any("error", err))
			fmt.Fprintln(stderr, err)
		}
	}

	if execErr != nil {
		io.WriteString(stderr, sandpy.RenderError(source, execErr))
		var e *sandpy.ExecError
		if errors.As(execErr, &e) && e.Kind == sandpy.ParseFailure {
			return exitUsage
		}
		return exitExecution
	}

	if err := writeBindings(stdout, cfg.Output.Format, bindings); err != nil {
		fmt.Fprintln(stderr, err)
		return exitExecution
	}
	return exitOK
}

func readSource(path string, stdin io.Reader) (string, error) {
	if path == "" || path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read script: %w", err)
	}
	return string(data), nil
}

func record(cfg config.StoreConfig, logger *slog.Logger, run *store.Run) error {
	s, err := store.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return err
	}
	defer s.Close()
	s.SetLogger(logger)

	ctx := context.Background()
	if err := s.Migrate(ctx); err != nil {
		return err
	}
	id, err := s.SaveRun(ctx, run)
	if err != nil {
		return err
	}
	logger.Info("run recorded", slog.Int64("id", id), slog.String("driver", cfg.Driver))
	return nil
}

func writeBindings(w io.Writer, format string, b *sandpy.Bindings) error {
	switch format {
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(b); err != nil {
			return err
		}
		return enc.Close()
	case "text":
		for name, v := range b.All() {
			if s, ok := v.(string); ok && b.Type(name) == "str" {
				fmt.Fprintf(w, "%s: %s = %q\n", name, b.Type(name), s)
				continue
			}
			fmt.Fprintf(w, "%s: %s = %v\n", name, b.Type(name), v)
		}
		return nil
	default:
		data, err := json.MarshalIndent(b, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(w, "%s\n", data)
		return err
	}
}

func printHelp(w io.Writer) {
	fmt.Fprintf(w, `Usage: sandpy [options] [filename]

Options:
  -ttl <n>              Fuel budget for the run. Default is %d.
  -config <file>        Load settings from a TOML file. Flags override it.
  -format <fmt>         Output format for the bindings: json, yaml, text.
  -store-driver <drv>   Record the run: sqlite3, mysql, postgres.
  -store-dsn <dsn>      Data source name for the run store.
  -repl                 Start an interactive session.
  -debug-ast            Print the AST as JSON and exit.
  -log-level <level>    Set the log level: trace, debug, info, warn, error, none.
  -log-file <path>      Specify a log file to write logs. Default is stderr.
  -help                 Display this help information and exit.
  -version              Display version information and exit.

The script is read from filename, or from stdin when it is absent or '-'.
Exit status is 0 on success, 1 on an execution failure and 2 on a parse
or usage failure.

Examples:
  sandpy script.py
  echo 'x = 1 + 2' | sandpy -format yaml
  sandpy -ttl 500 -store-driver sqlite3 -store-dsn runs.db script.py

Version Information:
  Version:    %s
  Build Date: %s
  Commit:     %s
`, config.DefaultTTL, Version, BuildDate, Commit)
}
