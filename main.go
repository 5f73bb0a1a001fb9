package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/bulga138/tekst/buffer"
	"github.com/bulga138/tekst/config"
	"github.com/bulga138/tekst/editor"
	"github.com/bulga138/tekst/logger"
	"github.com/bulga138/tekst/terminal"
	"github.com/bulga138/tekst/version"
)

var errorFormat = color.New(color.FgHiRed).SprintFunc()

type options struct {
	configPath string
	bufferKind string
	debug      bool
	initConfig bool
}

func main() {
	cmd := newRootCmd()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), errorFormat("tekst: "+err.Error()))
	}
	// The exit status is 0 whatever happened.
}

func newRootCmd() *cobra.Command {
	var opts options
	cmd := &cobra.Command{
		Use:   "tekst [flags] <file>",
		Short: "A small terminal text editor",
		Long: `tekst edits one file in the terminal.

Keys:
  arrows, Home, End     move the cursor
  Backspace, Delete     delete
  Ctrl-S                save
  Ctrl-E                save as
  Ctrl-Q, Ctrl-C        quit`,
		Version:       version.GetFullVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.initConfig {
				return writeDefaultConfig(cmd.OutOrStdout(), opts.configPath)
			}
			if len(args) != 1 {
				return cmd.Usage()
			}
			return run(cmd.Context(), opts, args[0])
		},
	}
	cmd.SetVersionTemplate("tekst {{.Version}}\n")

	flags := cmd.Flags()
	flags.StringVar(&opts.configPath, "config", "", "config file path (default $XDG_CONFIG_HOME/tekst/config.toml)")
	flags.StringVar(&opts.bufferKind, "buffer", "", "buffer strategy: lines, contiguous or rope")
	flags.BoolVar(&opts.debug, "debug", false, "record debug diagnostics")
	flags.BoolVar(&opts.initConfig, "init-config", false, "write the default config file and exit")
	return cmd
}

func writeDefaultConfig(w io.Writer, path string) error {
	path, err := config.Save(config.DefaultConfig(), path)
	if err != nil {
		return fmt.Errorf("error saving config: %w", err)
	}
	fmt.Fprintf(w, "Wrote %s\n", path)
	return nil
}

func run(ctx context.Context, opts options, filename string) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	if opts.bufferKind != "" {
		cfg.Buffer = opts.bufferKind
	}
	kind, err := buffer.ParseKind(cfg.Buffer)
	if err != nil {
		return err
	}

	level := slog.LevelWarn
	if opts.debug || cfg.Debug {
		level = slog.LevelDebug
	}
	sink := logger.New(logger.Options{
		Level:     level,
		File:      cfg.LogFile,
		MaxSizeMB: cfg.LogMaxSizeMB,
	})
	// Diagnostics go to stderr once the screen is ours again.
	defer sink.Flush(os.Stderr)
	log := sink.Logger()
	log.Debug("starting", "version", version.GetVersion(), "file", filename, "buffer", string(kind))

	buf, err := buffer.Open(kind, filename, log)
	if err != nil {
		return err
	}

	term := terminal.New()
	defer term.Close()

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGTERM, syscall.SIGHUP)
	defer stop()

	return editor.New(term, cfg, buf, log).Run(ctx)
}
