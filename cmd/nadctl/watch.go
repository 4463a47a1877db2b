package main

import (
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/avrkit/nadavr"
)

// NewWatchCommand builds the event stream watcher.
func NewWatchCommand(opts *rootOptions) *cobra.Command {
	var metricsListen string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Stream unsolicited device events until interrupted",
		Example: `  nadctl --host 192.168.1.40 watch
  nadctl --host 192.168.1.40 watch --metrics-listen :9090`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			cfg := opts.clientConfig()
			if metricsListen != "" {
				cfg.Metrics = nadavr.NewMetrics()
			}

			client := nadavr.NewClient(cfg)
			device := nadavr.NewDevice(client)

			client.OnConnect(func(connected bool) {
				fmt.Printf("# connection: %v\n", connected)
			})
			device.OnUpdate(func(f nadavr.Frame) {
				fmt.Println(f.Raw)
			})

			if metricsListen != "" {
				mux := http.NewServeMux()
				mux.Handle("/metrics", cfg.Metrics.Handler())
				srv := &http.Server{Addr: metricsListen, Handler: mux}
				go func() {
					if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
						opts.logger.Error("metrics listener failed", "error", err)
					}
				}()
				defer srv.Close()
			}

			if err := client.Connect(ctx); err != nil {
				return fmt.Errorf("connect %s: %w", client.Addr(), err)
			}
			defer client.Disconnect()

			<-ctx.Done()
			return nil
		},
	}

	cmd.Flags().StringVar(&metricsListen, "metrics-listen", "", "Serve prometheus metrics on this address")
	return cmd
}
