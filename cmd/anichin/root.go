package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/zhadevv/anichin/internal/config"
	"github.com/zhadevv/anichin/internal/logger"
	"github.com/zhadevv/anichin/internal/scraper/anichin"
)

// errReported is returned when the failure was already written to the output.
var errReported = errors.New("operation failed")

type rootOptions struct {
	configPath string
	format     string
	baseURL    string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "anichin",
		Short:         "Scrape listings, series and episodes from anichin.cafe",
		Version:       config.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !lo.Contains(outputFormats, opts.format) {
				return fmt.Errorf("unknown output format %q (want one of %v)", opts.format, outputFormats)
			}
			return nil
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "Path to config file")
	flags.StringVarP(&opts.format, "format", "f", formatJSON, "Output format: json, table or markdown")
	flags.StringVar(&opts.baseURL, "base-url", "", "Override the scraped site")
	flags.StringVar(&opts.logLevel, "log-level", "", "Override the log level (trace, debug, info, warn, error)")
	lo.Must0(cmd.RegisterFlagCompletionFunc("format", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return outputFormats, cobra.ShellCompDirectiveNoFileComp
	}))

	cmd.AddCommand(newScrapeCmds(opts)...)
	cmd.AddCommand(newServeCmd(opts))

	return cmd
}

// loadConfig reads the config file and environment, then applies flag overrides.
func (o *rootOptions) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}
	if o.baseURL != "" {
		cfg.Scraper.BaseURL = o.baseURL
	}
	if o.logLevel != "" {
		cfg.Logging.Level = o.logLevel
	}
	return cfg, nil
}

// newLogger builds the application logger. One-shot commands keep stdout for
// results and log to stderr.
func newLogger(cfg *config.Config, out io.Writer, streaming bool) *logger.Logger {
	return logger.New(logger.Config{
		Level:           cfg.Logging.Level,
		Format:          cfg.Logging.Format,
		Path:            cfg.Logging.Path,
		MaxSizeMB:       cfg.Logging.MaxSizeMB,
		MaxBackups:      cfg.Logging.MaxBackups,
		MaxAgeDays:      cfg.Logging.MaxAgeDays,
		Compress:        cfg.Logging.Compress,
		EnableStreaming: streaming || cfg.Logging.EnableStreaming,
		BufferSize:      cfg.Logging.BufferSize,
		Output:          out,
	})
}

// newClient loads configuration and builds a scraper client for one-shot commands.
func (o *rootOptions) newClient() (*anichin.Client, *logger.Logger, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, nil, err
	}
	log := newLogger(cfg, os.Stderr, false)
	client, err := anichin.New(cfg.Scraper, log.Logger)
	if err != nil {
		_ = log.Close()
		return nil, nil, err
	}
	return client, log, nil
}
