package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/avrkit/nadavr"
)

// NewQueryCommand builds the query runner.
func NewQueryCommand(opts *rootOptions) *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "query <command>",
		Short: "Send a query and print the reply",
		Example: `  nadctl --host 192.168.1.40 query Main.Volume?
  nadctl --host 192.168.1.40 query Main.Model? --timeout 5s`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withDevice(cmd.Context(), func(d *nadavr.Device) error {
				reply, err := d.Client().QueryTimeout(cmd.Context(), args[0], timeout)
				if err != nil {
					return err
				}
				fmt.Println(reply)
				return nil
			})
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", 2*time.Second, "Reply timeout")
	return cmd
}
