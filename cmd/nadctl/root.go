package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/avrkit/nadavr"
)

// rootOptions carries the persistent flags and the resolved config.
type rootOptions struct {
	Host       string
	Port       int
	ConfigPath string
	LogLevel   string
	LogFormat  string

	cfg    *Config
	logger *slog.Logger
}

// NewRootCommand builds the nadctl command tree.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "nadctl",
		Short: "Control a NAD receiver over its TCP protocol",
		Long: `nadctl talks to a NAD receiver over the line-oriented TCP control
protocol: send raw commands, run queries, watch the unsolicited event
stream, and drive power, volume, mute and source selection.`,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts.ConfigPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			// Flags override the file.
			if opts.Host != "" {
				cfg.Host = opts.Host
			}
			if opts.Port != 0 {
				cfg.Port = opts.Port
			}
			if opts.LogLevel != "" {
				cfg.Log.Level = opts.LogLevel
			}
			if opts.LogFormat != "" {
				cfg.Log.Format = opts.LogFormat
			}
			if cfg.Host == "" {
				return fmt.Errorf("no device host given (use --host or a config file)")
			}
			opts.cfg = cfg
			opts.logger = setupLogger(cfg.Log.Level, cfg.Log.Format)
			return nil
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&opts.Host, "host", "H", "", "Device address")
	flags.IntVarP(&opts.Port, "port", "p", 0, "Control port (default 23; older units use 50001)")
	flags.StringVarP(&opts.ConfigPath, "config", "c", "", "Path to a YAML config file")
	flags.StringVar(&opts.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flags.StringVar(&opts.LogFormat, "log-format", "", "Log format (text or json)")

	cmd.AddCommand(
		NewSendCommand(opts),
		NewQueryCommand(opts),
		NewWatchCommand(opts),
		NewInfoCommand(opts),
		NewPowerCommand(opts),
		NewVolumeCommand(opts),
		NewMuteCommand(opts),
		NewSourceCommand(opts),
	)

	return cmd
}

// clientConfig translates the resolved CLI config into a client Config.
func (o *rootOptions) clientConfig() *nadavr.Config {
	cfg := nadavr.DefaultConfig(o.cfg.Host)
	if o.cfg.Port != 0 {
		cfg.Port = o.cfg.Port
	}
	if o.cfg.QueryTimeout != 0 {
		cfg.QueryTimeout = time.Duration(o.cfg.QueryTimeout)
	}
	if o.cfg.ReconnectInterval != 0 {
		cfg.ReconnectInterval = time.Duration(o.cfg.ReconnectInterval)
	}
	cfg.Logger = o.logger
	return cfg
}

// withDevice connects, runs fn, and always disconnects.
func (o *rootOptions) withDevice(ctx context.Context, fn func(*nadavr.Device) error) error {
	client := nadavr.NewClient(o.clientConfig())
	device := nadavr.NewDevice(client)

	if err := client.Connect(ctx); err != nil {
		return fmt.Errorf("connect %s: %w", client.Addr(), err)
	}
	defer client.Disconnect()

	return fn(device)
}
