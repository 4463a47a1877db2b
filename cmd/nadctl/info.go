package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/avrkit/nadavr"
)

// NewInfoCommand builds the identification/enumeration command.
func NewInfoCommand(opts *rootOptions) *cobra.Command {
	var sourceCount int

	cmd := &cobra.Command{
		Use:   "info",
		Short: "Show model, firmware and the enabled sources",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withDevice(cmd.Context(), func(d *nadavr.Device) error {
				ctx := cmd.Context()
				if err := d.PollDeviceInfo(ctx); err != nil {
					return err
				}
				if err := d.PollSources(ctx, sourceCount); err != nil {
					return err
				}
				if err := d.Refresh(ctx); err != nil {
					return err
				}

				model := d.Model()
				if model == "" {
					model = "(unknown)"
				}
				firmware := d.Firmware()
				if firmware == "" {
					firmware = "(unknown)"
				}

				fmt.Printf("Model:    %s\n", model)
				fmt.Printf("Firmware: %s\n", firmware)
				fmt.Printf("Power:    %v\n", d.Power())
				if d.Power() {
					fmt.Printf("Volume:   %d dB (%.0f%%)\n", d.VolumeDB(), d.VolumeLevel()*100)
					fmt.Printf("Muted:    %v\n", d.Muted())
					fmt.Printf("Source:   %s\n", d.Source())
				}

				sources := d.Sources().EnabledSources()
				if len(sources) > 0 {
					fmt.Println("Sources:")
					for _, s := range sources {
						fmt.Printf("  %s: %s\n", s.ID, s.Name)
					}
				}
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&sourceCount, "sources", nadavr.DefaultSourceCount, "How many source slots to enumerate")
	return cmd
}
