package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/avrkit/nadavr"
)

// NewSourceCommand builds the source command group.
func NewSourceCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "source",
		Short: "List or select input sources",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List the enabled sources",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return opts.withDevice(cmd.Context(), func(d *nadavr.Device) error {
					if err := d.PollSources(cmd.Context(), 0); err != nil {
						return err
					}
					for _, s := range d.Sources().EnabledSources() {
						fmt.Printf("%s: %s\n", s.ID, s.Name)
					}
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "select <name>",
			Short: "Select an input source by name",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return opts.withDevice(cmd.Context(), func(d *nadavr.Device) error {
					if err := d.PollSources(cmd.Context(), 0); err != nil {
						return err
					}
					return d.SelectSource(args[0])
				})
			},
		},
	)

	return cmd
}
