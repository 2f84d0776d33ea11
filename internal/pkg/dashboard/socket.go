package dashboard

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/pedrohenriquebasilio/biteboard-backend/internal/infrastructure/realtime"
)

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Allow all origins for now; plug a proper checker when auth is added.
		return true
	},
}

type inboundFrame struct {
	Event string `json:"event"`
}

const socketReadTimeout = 60 * time.Second

// SocketController upgrades dashboard clients onto the realtime hub and
// answers their control frames: ping keepalives and order-room
// subscription toggles. All event delivery happens through the hub.
type SocketController struct {
	hub    *realtime.Hub
	logger *slog.Logger
}

func NewSocketController(hub *realtime.Hub, logger *slog.Logger) *SocketController {
	return &SocketController{hub: hub, logger: logger}
}

// Handle upgrades the connection and processes frames until the client
// disconnects.
func (ctl *SocketController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		ws, err := wsUpgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			// Upgrade already wrote the response; just log and return.
			ctl.logger.Warn("websocket upgrade failed", "error", err)
			return
		}

		conn := realtime.NewConnection(ws)
		ctl.hub.Attach(conn)
		defer func() {
			ctl.hub.Detach(conn)
			conn.Close(websocket.CloseNormalClosure, "session closed")
		}()

		ws.SetReadLimit(1 << 20) // 1MB payload cap
		_ = ws.SetReadDeadline(time.Now().Add(socketReadTimeout))
		ws.SetPongHandler(func(string) error {
			return ws.SetReadDeadline(time.Now().Add(socketReadTimeout))
		})

		for {
			_, data, err := ws.ReadMessage()
			if err != nil {
				return
			}
			_ = ws.SetReadDeadline(time.Now().Add(socketReadTimeout))

			var frame inboundFrame
			if err := json.Unmarshal(data, &frame); err != nil {
				continue
			}

			switch frame.Event {
			case "ping":
				_ = conn.Send(realtime.Marshal(realtime.EventPong, nil))
			case "subscribe_orders":
				ctl.hub.Join(realtime.RoomOrders, conn)
				_ = conn.Send(realtime.Marshal(realtime.EventSubscribed, map[string]string{"room": realtime.RoomOrders}))
			case "unsubscribe_orders":
				ctl.hub.Leave(realtime.RoomOrders, conn)
				_ = conn.Send(realtime.Marshal(realtime.EventUnsubscribed, map[string]string{"room": realtime.RoomOrders}))
			}
		}
	}
}
