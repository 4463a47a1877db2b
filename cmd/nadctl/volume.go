package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/avrkit/nadavr"
)

// NewVolumeCommand builds the volume command group.
func NewVolumeCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "volume",
		Short: "Read or change the main zone volume",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "get",
			Short: "Print the current volume",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return opts.withDevice(cmd.Context(), func(d *nadavr.Device) error {
					reply, err := d.Client().Query(cmd.Context(), nadavr.CmdVolumeQuery)
					if err != nil {
						return err
					}
					f := nadavr.ParseFrame(reply)
					db, err := nadavr.ParseVolume(f.Value)
					if err != nil {
						return fmt.Errorf("unexpected reply %q", reply)
					}
					fmt.Printf("%d dB (%.0f%%)\n", db, nadavr.VolumeToLevel(db)*100)
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "set <dB>",
			Short: "Set the volume to an absolute dB value (-90..0)",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				db, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("volume must be an integer dB value: %w", err)
				}
				return opts.withDevice(cmd.Context(), func(d *nadavr.Device) error {
					return d.SetVolumeDB(db)
				})
			},
		},
		&cobra.Command{
			Use:   "up",
			Short: "Step the volume up",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return opts.withDevice(cmd.Context(), func(d *nadavr.Device) error {
					return d.VolumeUp()
				})
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Step the volume down",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return opts.withDevice(cmd.Context(), func(d *nadavr.Device) error {
					return d.VolumeDown()
				})
			},
		},
	)

	return cmd
}
