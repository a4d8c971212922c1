// Command texlab is the LSP server binary: it reads JSON-RPC from stdin,
// writes to stdout, and logs operator-facing output to stderr.
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"texlab-go/internal/config"
	"texlab-go/internal/diagnostics"
	"texlab-go/internal/logging"
	"texlab-go/internal/lspserver"
	"texlab-go/internal/syntax/bibtex"
	"texlab-go/internal/syntax/latex"
	"texlab-go/internal/workspace"
)

var version = "dev"

type appState struct {
	logger  *zap.Logger
	cfg     *config.Config
	cfgPath string
	verbose bool
}

func main() {
	app := &appState{}

	rootCmd := &cobra.Command{
		Use:           "texlab",
		Short:         "Language server for TeX and BibTeX",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := zapcore.InfoLevel
			if app.verbose {
				level = zapcore.DebugLevel
			}
			encoderCfg := zap.NewProductionEncoderConfig()
			encoderCfg.TimeKey = "ts"
			core := zapcore.NewCore(
				zapcore.NewConsoleEncoder(encoderCfg),
				zapcore.Lock(os.Stderr),
				level,
			)
			app.logger = zap.New(core)

			cfg, err := config.Load(app.cfgPath)
			if err != nil {
				app.logger.Warn("configuration file ignored", zap.Error(err))
			}
			app.cfg = cfg

			wd, _ := os.Getwd()
			if err := logging.Initialize(wd, cfg.Logging.DebugMode, categorySet(cfg)); err != nil {
				app.logger.Warn("file logging unavailable", zap.Error(err))
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = app.logger.Sync()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(app)
		},
	}
	rootCmd.PersistentFlags().BoolVarP(&app.verbose, "verbose", "v", false, "enable debug logging on stderr")
	rootCmd.PersistentFlags().StringVar(&app.cfgPath, "config", ".texlab.yaml", "path to the configuration file")

	rootCmd.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the language server on stdio (the default)",
			RunE: func(cmd *cobra.Command, args []string) error {
				return runServe(app)
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the server version",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Println(version)
			},
		},
		&cobra.Command{
			Use:   "check [file...]",
			Short: "Parse files and print their syntax diagnostics",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return runCheck(app, args)
			},
		},
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func categorySet(cfg *config.Config) map[logging.Category]bool {
	if len(cfg.Logging.Categories) == 0 {
		return nil
	}
	out := make(map[logging.Category]bool, len(cfg.Logging.Categories))
	for name, enabled := range cfg.Logging.Categories {
		out[logging.Category(name)] = enabled
	}
	return out
}

func runServe(app *appState) error {
	app.logger.Info("texlab starting", zap.String("version", version))
	server := lspserver.New(app.logger, app.cfg, nil, nil)
	err := server.Run(context.Background(), stdio{})
	if err != nil {
		app.logger.Error("transport failed", zap.Error(err))
		return err
	}
	app.logger.Info("texlab stopped")
	return nil
}

// runCheck is a direct-action convenience: parse each file and print its
// syntax diagnostics without starting a server.
func runCheck(app *appState, paths []string) error {
	exitErr := false
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
			exitErr = true
			continue
		}
		lang, ok := workspace.LanguageFromPath(path)
		if !ok {
			fmt.Fprintf(os.Stderr, "%s: unrecognised file type\n", path)
			exitErr = true
			continue
		}
		text := string(data)
		lines := workspace.NewLineIndex(text)
		var diags []diagnostics.Diagnostic
		switch lang {
		case workspace.LanguageTex:
			green := latex.Parse(text, latex.Options{VerbatimEnvironments: app.cfg.Syntax.VerbatimEnvironments})
			diags = diagnostics.SyntaxTex(green)
		case workspace.LanguageBib:
			diags = diagnostics.SyntaxBib(bibtex.Parse(text))
		default:
			continue
		}
		for _, d := range diags {
			pos := lines.ToLineCol(d.Range.Start)
			fmt.Printf("%s:%d:%d: %s\n", path, pos.Line+1, pos.Character+1, d.Message)
		}
		if len(diags) > 0 {
			exitErr = true
		}
	}
	if exitErr {
		return fmt.Errorf("check found problems")
	}
	return nil
}

// stdio adapts the process's stdin/stdout into the single
// io.ReadWriteCloser the JSON-RPC stream wants.
type stdio struct{}

func (stdio) Read(p []byte) (int, error)  { return os.Stdin.Read(p) }
func (stdio) Write(p []byte) (int, error) { return os.Stdout.Write(p) }
func (stdio) Close() error {
	if err := os.Stdin.Close(); err != nil {
		return err
	}
	return os.Stdout.Close()
}

var _ io.ReadWriteCloser = stdio{}
