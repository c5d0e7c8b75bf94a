package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

// Demo roster: league player ids with display names.
var demoRoster = []struct {
	ID   int64
	Name string
}{
	{8478402, "Connor McDavid"},
	{8477934, "Leon Draisaitl"},
	{8477492, "Nathan MacKinnon"},
	{8479318, "Auston Matthews"},
	{8476453, "Nikita Kucherov"},
	{8480069, "Cale Makar"},
	{8477956, "David Pastrnak"},
	{8478864, "Kirill Kaprizov"},
	{8481559, "Jack Hughes"},
	{8478048, "Igor Shesterkin"},
}

type command struct {
	Type    string `json:"type"`
	UserID  string `json:"user_id"`
	Payload any    `json:"payload,omitempty"`
}

func main() {
	apiURL := flag.String("api", "http://localhost:8080/api/v1", "agent API base URL")
	userID := flag.String("user", "demo-user", "user to seed")
	recommend := flag.Bool("recommend", true, "request recommendations after seeding")
	flag.Parse()

	client := &http.Client{Timeout: 30 * time.Second}

	added := 0
	for _, p := range demoRoster {
		status, body := send(client, *apiURL, command{
			Type:    "add_player",
			UserID:  *userID,
			Payload: map[string]any{"player_id": p.ID, "name": p.Name},
		})
		switch status {
		case http.StatusOK:
			added++
			fmt.Printf("added %s (%d)\n", p.Name, p.ID)
		case http.StatusBadRequest:
			// Already rostered from a previous run.
			fmt.Printf("skipped %s: %s\n", p.Name, body)
		default:
			log.Fatalf("add_player %d failed: %d %s", p.ID, status, body)
		}
	}
	fmt.Printf("Seeded %d/%d players for %s\n", added, len(demoRoster), *userID)

	if !*recommend {
		return
	}
	status, body := send(client, *apiURL, command{Type: "get_recommendations", UserID: *userID})
	if status != http.StatusOK {
		log.Fatalf("get_recommendations failed: %d %s", status, body)
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, body, "", "  "); err != nil {
		fmt.Println(string(body))
		return
	}
	fmt.Println(pretty.String())
}

func send(client *http.Client, apiURL string, cmd command) (int, []byte) {
	payload, err := json.Marshal(cmd)
	if err != nil {
		log.Fatalf("Failed to marshal command: %v", err)
	}

	req, err := http.NewRequest(http.MethodPost, apiURL+"/agent/commands", bytes.NewReader(payload))
	if err != nil {
		log.Fatalf("Failed to create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		log.Fatalf("Failed to send request: %v", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, body
}
