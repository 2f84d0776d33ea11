package realtime

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func hubLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

type wireEnvelope struct {
	Event     string          `json:"event"`
	Data      json.RawMessage `json:"data"`
	Timestamp string          `json:"timestamp"`
}

// dialHub spins up a hub behind a test websocket server and returns a
// connected client. Reading the greeting guarantees Attach completed.
func dialHub(t *testing.T) (*Hub, *websocket.Conn, func()) {
	t.Helper()
	hub := NewHub(hubLogger())
	upgrader := websocket.Upgrader{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		hub.Attach(NewConnection(ws))
	}))

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		srv.Close()
		t.Fatal(err)
	}

	cleanup := func() {
		client.Close()
		hub.Close()
		srv.Close()
	}
	return hub, client, cleanup
}

func readEnvelope(t *testing.T, client *websocket.Conn) wireEnvelope {
	t.Helper()
	_ = client.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := client.ReadMessage()
	if err != nil {
		t.Fatal(err)
	}
	var env wireEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		t.Fatal(err)
	}
	return env
}

func TestHub_GreetsOnAttach(t *testing.T) {
	hub, client, cleanup := dialHub(t)
	defer cleanup()

	greeting := readEnvelope(t, client)
	if greeting.Event != EventConnected {
		t.Errorf("first event = %q, want %q", greeting.Event, EventConnected)
	}
	if hub.ConnectedCount() != 1 {
		t.Errorf("connected = %d, want 1", hub.ConnectedCount())
	}
}

func TestHub_BroadcastReachesClient(t *testing.T) {
	hub, client, cleanup := dialHub(t)
	defer cleanup()
	readEnvelope(t, client) // greeting

	delivered := hub.Broadcast(EventNewMessage, map[string]string{"text": "oi"})
	if delivered != 1 {
		t.Fatalf("delivered = %d, want 1", delivered)
	}

	env := readEnvelope(t, client)
	if env.Event != EventNewMessage {
		t.Errorf("event = %q", env.Event)
	}
	var data map[string]string
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatal(err)
	}
	if data["text"] != "oi" {
		t.Errorf("data = %v", data)
	}
	if env.Timestamp == "" {
		t.Error("envelope must carry a timestamp")
	}
}

func TestHub_OrderEventsUseStableNames(t *testing.T) {
	hub, client, cleanup := dialHub(t)
	defer cleanup()
	readEnvelope(t, client) // greeting

	hub.EmitNewOrder(map[string]string{"id": "o1"})
	hub.EmitOrderStatusChanged("o1", "NEW", "READY")

	if env := readEnvelope(t, client); env.Event != EventNewOrder {
		t.Errorf("event = %q, want %q", env.Event, EventNewOrder)
	}
	env := readEnvelope(t, client)
	if env.Event != EventOrderStatusChanged {
		t.Errorf("event = %q, want %q", env.Event, EventOrderStatusChanged)
	}
	var change map[string]string
	if err := json.Unmarshal(env.Data, &change); err != nil {
		t.Fatal(err)
	}
	if change["oldStatus"] != "NEW" || change["newStatus"] != "READY" {
		t.Errorf("change = %v", change)
	}
}

func TestMarshal_Envelope(t *testing.T) {
	var env wireEnvelope
	if err := json.Unmarshal(Marshal(EventPong, nil), &env); err != nil {
		t.Fatal(err)
	}
	if env.Event != EventPong {
		t.Errorf("event = %q", env.Event)
	}
	if _, err := time.Parse(time.RFC3339, env.Timestamp); err != nil {
		t.Errorf("timestamp %q is not RFC3339", env.Timestamp)
	}
}
