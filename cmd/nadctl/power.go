package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/avrkit/nadavr"
)

// NewPowerCommand builds the power on/off command.
func NewPowerCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:       "power on|off",
		Short:     "Turn the device on or put it in standby",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"on", "off"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withDevice(cmd.Context(), func(d *nadavr.Device) error {
				switch args[0] {
				case "on":
					return d.PowerOn()
				case "off":
					return d.PowerOff()
				default:
					return fmt.Errorf("unknown power state %q", args[0])
				}
			})
		},
	}
}

// NewMuteCommand builds the mute on/off command.
func NewMuteCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:       "mute on|off",
		Short:     "Mute or unmute the device",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"on", "off"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withDevice(cmd.Context(), func(d *nadavr.Device) error {
				switch args[0] {
				case "on":
					return d.SetMuted(true)
				case "off":
					return d.SetMuted(false)
				default:
					return fmt.Errorf("unknown mute state %q", args[0])
				}
			})
		},
	}
}
