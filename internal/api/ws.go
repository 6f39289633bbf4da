package api

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/annel0/voxel-sandbox/internal/eventbus"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// SceneMessage кадр потока /ws
type SceneMessage struct {
	ID        string          `json:"id,omitempty"`
	Type      string          `json:"type"`
	Timestamp time.Time       `json:"ts"`
	Payload   json.RawMessage `json:"payload"`
}

// MessageTypeSnapshot первый кадр потока: текущая карта занятости
const MessageTypeSnapshot = "Snapshot"

const (
	writeWait  = 5 * time.Second
	readWait   = 60 * time.Second
	pingPeriod = readWait * 9 / 10
)

// handleSceneStream отдаёт рендеру снимок сцены и затем события по мере их появления.
// ?types=BlockPlaced,Reset ограничивает типы событий.
//
// Подписка оформляется до снимка, поэтому события сразу после снимка
// могут повторять его содержимое; применение по ключу ячейки идемпотентно.
func (rs *RestServer) handleSceneStream(c *gin.Context) {
	conn, err := rs.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		rs.log.Warn("Upgrade /ws: %v", err)
		return
	}
	defer conn.Close()

	var filter eventbus.Filter
	if types := c.Query("types"); types != "" {
		filter.Types = strings.Split(types, ",")
	}

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	out := make(chan []byte, 256)
	sub, err := rs.bus.Subscribe(ctx, filter, func(ctx context.Context, ev *eventbus.Envelope) {
		b, err := json.Marshal(SceneMessage{ID: ev.ID, Type: ev.EventType, Timestamp: ev.Timestamp, Payload: ev.Payload})
		if err != nil {
			return
		}
		select {
		case out <- b:
		default:
			// Медленный клиент: кадр теряется, клиент перечитывает /api/blocks
		}
	})
	if err != nil {
		rs.log.Error("Подписка /ws: %v", err)
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseInternalServerErr, "subscribe failed"), time.Now().Add(time.Second))
		return
	}
	defer sub.Unsubscribe()

	blocks := rs.session.Blocks()
	snapshot, err := json.Marshal(BlocksResponse{Blocks: blocks, Total: len(blocks)})
	if err != nil {
		return
	}
	first, _ := json.Marshal(SceneMessage{Type: MessageTypeSnapshot, Timestamp: time.Now().UTC(), Payload: snapshot})
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteMessage(websocket.TextMessage, first); err != nil {
		return
	}

	rs.log.Debug("🔌 /ws подключён %s", c.ClientIP())

	// Writer goroutine.
	writeErr := make(chan error, 1)
	go func() {
		ticker := time.NewTicker(pingPeriod)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				writeErr <- ctx.Err()
				return
			case b := <-out:
				_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
				if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
					writeErr <- err
					return
				}
			case <-ticker.C:
				if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
					writeErr <- err
					return
				}
			}
		}
	}()

	// Reader loop: входящие кадры не нужны, только pong и закрытие.
	_ = conn.SetReadDeadline(time.Now().Add(readWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(readWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	cancel()
	_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"), time.Now().Add(time.Second))

	// Дожидаемся writer, чтобы он не пережил conn.
	select {
	case <-writeErr:
	case <-time.After(500 * time.Millisecond):
	}
	rs.log.Debug("🔌 /ws отключён %s", c.ClientIP())
}
