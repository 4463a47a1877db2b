package main

import (
	"github.com/spf13/cobra"

	"github.com/avrkit/nadavr"
)

// NewSendCommand builds the fire-and-forget command sender.
func NewSendCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "send <command>",
		Short: "Send a raw command without waiting for a reply",
		Example: `  nadctl --host 192.168.1.40 send Main.Power=On
  nadctl --host 192.168.1.40 send Main.Volume=-35`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withDevice(cmd.Context(), func(d *nadavr.Device) error {
				return d.Client().Send(args[0])
			})
		},
	}
}
