package realtime

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gorilla/websocket"
)

// dialConnection upgrades a real websocket pair and returns the
// server-side Connection. With startLoop false the write loop stays
// off so the send buffer can be filled deterministically.
func dialConnection(t *testing.T, startLoop bool) (*Connection, *websocket.Conn, func()) {
	t.Helper()
	upgrader := websocket.Upgrader{}
	connCh := make(chan *Connection, 1)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		conn := NewConnection(ws)
		if startLoop {
			conn.Start()
		}
		connCh <- conn
	}))

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		srv.Close()
		t.Fatal(err)
	}
	conn := <-connCh

	cleanup := func() {
		client.Close()
		srv.Close()
	}
	return conn, client, cleanup
}

// A broadcast racing a client disconnect must never bring the process
// down: Send against a closing connection fails, it does not panic.
func TestConnection_SendRacesClose(t *testing.T) {
	for i := 0; i < 50; i++ {
		conn, _, cleanup := dialConnection(t, true)

		payload := Marshal(EventNewMessage, map[string]string{"text": "oi"})
		start := make(chan struct{})
		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			<-start
			for j := 0; j < 32; j++ {
				_ = conn.Send(payload)
			}
		}()
		go func() {
			defer wg.Done()
			<-start
			conn.Close(websocket.CloseNormalClosure, "client gone")
		}()
		close(start)
		wg.Wait()

		if err := conn.Send(payload); err == nil {
			t.Fatal("Send after Close must report an error")
		}
		cleanup()
	}
}

func TestConnection_CloseIsIdempotent(t *testing.T) {
	conn, _, cleanup := dialConnection(t, true)
	defer cleanup()

	conn.Close(websocket.CloseNormalClosure, "bye")
	conn.Close(websocket.CloseNormalClosure, "bye again")

	if err := conn.Send([]byte(`{}`)); err == nil {
		t.Error("Send on a closed connection must fail")
	}
}

func TestConnection_FullBufferClosesInsteadOfBlocking(t *testing.T) {
	// No write loop: the buffer fills and the overflowing Send must
	// close the connection rather than block the broadcaster.
	conn, _, cleanup := dialConnection(t, false)
	defer cleanup()

	var err error
	for i := 0; i <= cap(conn.send); i++ {
		if err = conn.Send([]byte(`{}`)); err != nil {
			break
		}
	}
	if err == nil {
		t.Fatal("overflowing Send must fail")
	}
	select {
	case <-conn.close:
	default:
		t.Error("overflow must close the connection")
	}
}
