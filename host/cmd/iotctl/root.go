package main

import (
	"github.com/spf13/cobra"

	"github.com/rene-schmidt/embedded-iot-controller/host/config"
)

var (
	cfgPath string
	device  string
	baud    int
)

var rootCmd = &cobra.Command{
	Use:   "iotctl",
	Short: "Host tools for the embedded IoT controller",
	Long: `iotctl talks to the IoT controller board from the development host.

Commands:
  monitor  attach to the board's USB serial console
  listen   receive and display the board's UDP/TCP telemetry

A YAML configuration file can supply defaults for the serial device and
the listen addresses; command-line flags override it.`,
	Version:       "1.0.0",
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "YAML configuration file")
	rootCmd.PersistentFlags().StringVarP(&device, "port", "p", "", "Serial port device")
	rootCmd.PersistentFlags().IntVarP(&baud, "baud", "b", 0, "Baud rate")
}

// loadConfig merges the configuration file (if any) with flag overrides.
func loadConfig() (*config.Config, error) {
	cfg := config.Default()
	if cfgPath != "" {
		loaded, err := config.Load(cfgPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if device != "" {
		cfg.Serial.Device = device
	}
	if baud > 0 {
		cfg.Serial.Baud = baud
	}
	return cfg, nil
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
