package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rene-schmidt/embedded-iot-controller/host/serial"
)

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Attach to the controller's USB serial console",
	Long: `Open the controller's serial console and connect it to this terminal.

Everything typed is sent to the board's command interpreter; everything
the board prints (command responses and, when enabled with 'log on',
the periodic status line) is shown here. Detach with Ctrl-C.`,
	RunE: runMonitor,
}

func init() {
	rootCmd.AddCommand(monitorCmd)
}

func runMonitor(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	port, err := serial.Open(serial.DefaultConfig(cfg.Serial.Device))
	if err != nil {
		return err
	}
	defer port.Close()

	fmt.Fprintf(os.Stderr, "monitor: attached to %s (Ctrl-C to detach)\n", cfg.Serial.Device)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	errc := make(chan error, 2)

	// Board -> terminal.
	go func() {
		buf := make([]byte, 256)
		for {
			n, err := port.Read(buf)
			if n > 0 {
				os.Stdout.Write(buf[:n])
			}
			if err != nil && err != io.EOF {
				errc <- err
				return
			}
		}
	}()

	// Terminal -> board.
	go func() {
		buf := make([]byte, 256)
		for {
			n, err := os.Stdin.Read(buf)
			if n > 0 {
				if _, werr := port.Write(buf[:n]); werr != nil {
					errc <- werr
					return
				}
			}
			if err != nil {
				errc <- err
				return
			}
		}
	}()

	select {
	case <-sig:
		fmt.Fprintln(os.Stderr, "\nmonitor: detached")
		return nil
	case err := <-errc:
		return err
	}
}
