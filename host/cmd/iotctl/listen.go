package main

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"

	"github.com/rene-schmidt/embedded-iot-controller/host/telemetry"
)

var (
	listenUDP string
	listenTCP string
	listenWS  string
	statEvery int
)

var listenCmd = &cobra.Command{
	Use:   "listen",
	Short: "Receive and display the controller's telemetry",
	Long: `Listen for the controller's telemetry on UDP and TCP.

The board sends one JSON line per second on each channel. Each received
record is displayed; with --ws an embedded websocket server rebroadcasts
the raw JSON lines to any connected clients, for dashboards.`,
	RunE: runListen,
}

func init() {
	rootCmd.AddCommand(listenCmd)
	listenCmd.Flags().StringVar(&listenUDP, "udp", "", "UDP listen address (overrides config)")
	listenCmd.Flags().StringVar(&listenTCP, "tcp", "", "TCP listen address (overrides config)")
	listenCmd.Flags().StringVar(&listenWS, "ws", "", "Websocket rebroadcast address, e.g. :8080")
	listenCmd.Flags().IntVar(&statEvery, "stats", 10, "Print counters every N records (0 = never)")
}

// broadcaster fans raw telemetry lines out to websocket clients.
type broadcaster struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
}

func newBroadcaster() *broadcaster {
	return &broadcaster{clients: make(map[*websocket.Conn]struct{})}
}

func (b *broadcaster) add(c *websocket.Conn) {
	b.mu.Lock()
	b.clients[c] = struct{}{}
	b.mu.Unlock()
}

func (b *broadcaster) send(line []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for c := range b.clients {
		if err := c.WriteMessage(websocket.TextMessage, line); err != nil {
			c.Close()
			delete(b.clients, c)
		}
	}
}

func (b *broadcaster) serve(addr string) {
	upgrader := websocket.Upgrader{
		// Telemetry is read-only; any origin may subscribe.
		CheckOrigin: func(r *http.Request) bool { return true },
	}

	http.HandleFunc("/telemetry", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		b.add(conn)
	})

	go func() {
		if err := http.ListenAndServe(addr, nil); err != nil {
			fmt.Fprintf(os.Stderr, "listen: websocket server: %v\n", err)
		}
	}()
}

func runListen(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if listenUDP != "" {
		cfg.Listen.UDPAddr = listenUDP
	}
	if listenTCP != "" {
		cfg.Listen.TCPAddr = listenTCP
	}
	if listenWS != "" {
		cfg.Listen.WSAddr = listenWS
	}

	var bc *broadcaster
	if cfg.Listen.WSAddr != "" {
		bc = newBroadcaster()
		bc.serve(cfg.Listen.WSAddr)
		fmt.Fprintf(os.Stderr, "listen: websocket on %s/telemetry\n", cfg.Listen.WSAddr)
	}

	type event struct {
		src  telemetry.Source
		line []byte
	}
	events := make(chan event, 64)

	if cfg.Listen.UDPAddr != "" {
		pc, err := net.ListenPacket("udp", cfg.Listen.UDPAddr)
		if err != nil {
			return err
		}
		defer pc.Close()
		fmt.Fprintf(os.Stderr, "listen: udp on %s\n", cfg.Listen.UDPAddr)

		go func() {
			buf := make([]byte, 512)
			for {
				n, _, err := pc.ReadFrom(buf)
				if err != nil {
					return
				}
				line := make([]byte, n)
				copy(line, buf[:n])
				events <- event{src: telemetry.SourceUDP, line: line}
			}
		}()
	}

	if cfg.Listen.TCPAddr != "" {
		ln, err := net.Listen("tcp", cfg.Listen.TCPAddr)
		if err != nil {
			return err
		}
		defer ln.Close()
		fmt.Fprintf(os.Stderr, "listen: tcp on %s\n", cfg.Listen.TCPAddr)

		go func() {
			for {
				conn, err := ln.Accept()
				if err != nil {
					return
				}
				go func(conn net.Conn) {
					defer conn.Close()
					sc := bufio.NewScanner(conn)
					for sc.Scan() {
						line := append([]byte(nil), sc.Bytes()...)
						events <- event{src: telemetry.SourceTCP, line: line}
					}
				}(conn)
			}
		}()
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	var stats telemetry.Stats
	for {
		select {
		case <-sig:
			fmt.Println(telemetry.RenderStats(&stats))
			return nil

		case ev := <-events:
			rec, err := telemetry.Parse(ev.line)
			if err != nil {
				stats.ParseErrs++
				continue
			}
			stats.Observe(ev.src, rec)
			fmt.Println(telemetry.RenderRecord(ev.src, rec))

			if bc != nil {
				bc.send(ev.line)
			}
			if statEvery > 0 && stats.Total()%uint64(statEvery) == 0 {
				fmt.Println(telemetry.RenderStats(&stats))
			}
		}
	}
}
