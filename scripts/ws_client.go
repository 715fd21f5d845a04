// Package main runs a demo WebSocket client for run progress events.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/gorilla/websocket"
)

type wsMessage struct {
	Type    string          `json:"type"`
	ID      string          `json:"id,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

func main() {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	base := fmt.Sprintf("http://localhost:%s", port)

	// Connect WS before triggering the run so progress events are not missed
	u := url.URL{Scheme: "ws", Host: "localhost:" + port, Path: "/v1/runs/stream/ws"}
	c, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		log.Fatal("dial:", err)
	}
	defer func() { _ = c.Close() }()

	if err := c.WriteJSON(wsMessage{Type: "connection_init"}); err != nil {
		log.Fatal(err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			var m wsMessage
			if err := c.ReadJSON(&m); err != nil {
				log.Printf("read: %v", err)
				return
			}
			log.Printf("WS <- %s: %s", m.Type, string(m.Payload))
		}
	}()

	// Trigger a small seeded run
	body := []byte(`{"seed":42,"numDeliveries":15,"numVehicles":4,"timeBudgetMs":2000}`)
	req, _ := http.NewRequest(http.MethodPost, base+"/v1/optimize", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = resp.Body.Close() }()
	var rec struct {
		ID      string `json:"id"`
		Metrics struct {
			DistanceReductionPct float64 `json:"distanceReductionPct"`
		} `json:"metrics"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&rec); err != nil {
		log.Fatal(err)
	}
	log.Printf("Run %s: distance reduced %.1f%%", rec.ID, rec.Metrics.DistanceReductionPct)

	// subscribe to the run's events (late subscribers still get heartbeats)
	pl, _ := json.Marshal(map[string]any{"runId": rec.ID})
	if err := c.WriteJSON(wsMessage{Type: "subscribe", ID: "1", Payload: pl}); err != nil {
		log.Fatal(err)
	}

	select {
	case <-time.After(2 * time.Second):
	case <-done:
	}
}
