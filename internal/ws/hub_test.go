package ws

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/coder/websocket"
)

func TestHubBroadcastAndInbound(t *testing.T) {
	var mu sync.Mutex
	var gotUser string
	var gotData []byte
	hub := NewHub(func(userID string, data []byte) {
		mu.Lock()
		gotUser = userID
		gotData = data
		mu.Unlock()
	})
	defer hub.Close()

	srv := httptest.NewServer(hub)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	url := strings.Replace(srv.URL, "http", "ws", 1) + "?user=alice"
	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer func() {
		_ = conn.Close(websocket.StatusNormalClosure, "")
	}()

	// Wait for registration.
	deadline := time.Now().Add(2 * time.Second)
	for hub.Len() == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("client never registered")
		}
		time.Sleep(10 * time.Millisecond)
	}

	hub.Broadcast("race_started", map[string]string{"raceId": "r1"})

	_, data, err := conn.Read(ctx)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if env.Kind != "race_started" {
		t.Fatalf("unexpected kind: %q", env.Kind)
	}

	if err := conn.Write(ctx, websocket.MessageText, []byte(`{"type":"join"}`)); err != nil {
		t.Fatalf("write: %v", err)
	}
	deadline = time.Now().Add(2 * time.Second)
	for {
		mu.Lock()
		user, data := gotUser, gotData
		mu.Unlock()
		if user == "alice" && len(data) > 0 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("inbound message never delivered")
		}
		time.Sleep(10 * time.Millisecond)
	}
}
