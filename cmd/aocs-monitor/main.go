// Command aocs-monitor subscribes to a daemon's telemetry websocket and
// prints live status, results and host health.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gorilla/websocket"

	"github.com/astraios/go-aocs/pkg/protocol"
)

func main() {
	addr := flag.String("addr", "localhost:8000", "Daemon address")
	flag.Parse()

	url := fmt.Sprintf("ws://%s/ws/telemetry", *addr)
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "dial %s: %v\n", url, err)
		os.Exit(1)
	}
	defer conn.Close()

	fmt.Printf("connected to %s\n", url)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		conn.Close()
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			fmt.Println("\ndisconnected")
			return
		}

		msg, err := protocol.ParseMessage(data)
		if err != nil {
			fmt.Fprintf(os.Stderr, "bad frame: %v\n", err)
			continue
		}

		switch msg.Type {
		case protocol.TypeStatus:
			st, err := msg.GetStatusData()
			if err != nil {
				continue
			}
			line := fmt.Sprintf("angle=%7.2f° target=%7.2f° rate=%6.2f deg/s moving=%-5v docking=%-5v",
				st.CurrentAngle, st.TargetAngle, st.Rate, st.Moving, st.Docking)
			if st.Vision != nil {
				line += fmt.Sprintf(" vision: err=%.2f° dist=%.1f age=%dms",
					st.Vision.AngleError, st.Vision.Distance, st.Vision.AgeMs)
			}
			fmt.Printf("\r%s", line)

		case protocol.TypeResult:
			res, err := msg.GetResultData()
			if err != nil {
				continue
			}
			fmt.Printf("\n[%s] %s: success=%v reached=%v final=%.2f° %s\n",
				res.ID, res.Command, res.Success, res.Reached, res.FinalAngle, res.Reason)

		case protocol.TypeHost:
			host, err := msg.GetHostData()
			if err != nil {
				continue
			}
			fmt.Printf("\n[host] cpu=%.1f°C load=%.2f mem=%d/%d kB free\n",
				host.CPUTempC, host.Load1, host.MemFreeKB, host.MemTotalKB)
		}
	}
}
