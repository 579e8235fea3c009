// Command observer tails the gateway's push channel from a terminal:
// lifecycle events and status lines as they are broadcast. Useful for
// watching a headless deployment authenticate.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/gorilla/websocket"
)

var (
	timeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	readyStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	authStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true)
	qrStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
)

type event struct {
	Type    string `json:"type"`
	Payload string `json:"payload"`
}

func main() {
	url := flag.String("url", "ws://127.0.0.1:8000/ws", "Gateway push channel URL")
	flag.Parse()

	conn, _, err := websocket.DefaultDialer.Dial(*url, nil)
	if err != nil {
		log.Fatalf("dial %s: %v", *url, err)
	}
	defer conn.Close()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			fmt.Println(statusStyle.Render("connection closed: " + err.Error()))
			os.Exit(0)
		}

		var ev event
		if err := json.Unmarshal(data, &ev); err != nil {
			continue
		}

		stamp := timeStyle.Render(time.Now().Format("15:04:05"))
		switch ev.Type {
		case "ready":
			fmt.Println(stamp, readyStyle.Render("READY"), statusStyle.Render(ev.Payload))
		case "authenticated":
			fmt.Println(stamp, authStyle.Render("AUTH"), statusStyle.Render(ev.Payload))
		case "qr":
			// The payload is a PNG data URL; too big to print raw.
			fmt.Println(stamp, qrStyle.Render("QR"), statusStyle.Render(fmt.Sprintf("scan image received (%d bytes)", len(ev.Payload))))
		default:
			fmt.Println(stamp, statusStyle.Render(ev.Payload))
		}
	}
}
