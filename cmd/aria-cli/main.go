// aria-cli sends text commands to a running aria-server and prints the
// replies. With -watch it streams assistant events instead.
package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"aria/assistant"
	"aria/eventbus"
)

func main() {
	var (
		serverURL = flag.String("server", "http://localhost:8181", "aria-server base URL")
		watch     = flag.Bool("watch", false, "Stream assistant events instead of sending commands")
	)
	flag.Parse()

	if *watch {
		watchEvents(*serverURL)
		return
	}

	if args := flag.Args(); len(args) > 0 {
		sendCommand(*serverURL, strings.Join(args, " "))
		return
	}

	// Interactive mode.
	fmt.Println("ARIA - tapez une commande, ou 'quit' pour sortir.")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "quit" || line == "exit" {
			break
		}
		sendCommand(*serverURL, line)
	}
}

func sendCommand(baseURL, text string) {
	body, _ := json.Marshal(map[string]string{"text": text, "channel": "cli"})
	client := &http.Client{Timeout: 2 * time.Minute}
	resp, err := client.Post(baseURL+"/api/v1/command", "application/json", bytes.NewReader(body))
	if err != nil {
		log.Fatalf("❌ Request failed: %v", err)
	}
	defer resp.Body.Close()

	var response assistant.Response
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		log.Fatalf("❌ Bad response: %v", err)
	}

	fmt.Printf("[%s %.2f] %s\n", response.Intent, response.Confidence, response.Text)
	if response.Task != nil {
		for i, step := range response.Task.Steps {
			status := "ok"
			if step.Error != "" {
				status = "error: " + step.Error
			} else if !step.Completed {
				status = "skipped"
			}
			fmt.Printf("  %d. %s (%s)\n", i+1, step.Description, status)
		}
	}
}

func watchEvents(baseURL string) {
	wsURL := strings.Replace(baseURL, "http", "ws", 1) + "/ws/events"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		log.Fatalf("❌ Failed to connect to %s: %v", wsURL, err)
	}
	defer conn.Close()
	fmt.Printf("Connected to %s\n", wsURL)

	for {
		var evt eventbus.AssistantEvent
		if err := conn.ReadJSON(&evt); err != nil {
			log.Fatalf("❌ Connection lost: %v", err)
		}
		fmt.Printf("%s %-18s %s\n", evt.Timestamp.Format("15:04:05"), evt.Type, evt.Payload.Text)
	}
}
