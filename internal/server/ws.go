package server

import (
	"net/http"
	"time"

	"github.com/ayusman/nidra/internal/status"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	writeWait  = 5 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// StatusSocket pushes every published snapshot to WebSocket clients as JSON.
type StatusSocket struct {
	cell *status.Cell
	log  logrus.FieldLogger
}

// NewStatusSocket creates a StatusSocket reading from cell.
func NewStatusSocket(cell *status.Cell, log logrus.FieldLogger) *StatusSocket {
	return &StatusSocket{cell: cell, log: log}
}

// ServeHTTP upgrades the connection, sends the current snapshot and then
// every subsequent one until the client goes away.
func (h *StatusSocket) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WithError(err).Warn("websocket upgrade error")
		return
	}
	defer conn.Close()

	id := uuid.New().String()
	updates, cancel, err := h.cell.Subscribe(id, 16)
	if err != nil {
		h.log.WithError(err).Error("status subscribe failed")
		return
	}
	defer cancel()

	log := h.log.WithFields(logrus.Fields{"subscriber": id, "remote": r.RemoteAddr})
	log.Debug("status socket connected")

	// Reader: handles pongs and notices the client closing
	closed := make(chan struct{})
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()

	if err := h.send(conn, h.cell.Read()); err != nil {
		return
	}

	for {
		select {
		case <-closed:
			log.Debug("status socket closed")
			return
		case <-r.Context().Done():
			return
		case snap, ok := <-updates:
			if !ok {
				return
			}
			if err := h.send(conn, snap); err != nil {
				log.WithError(err).Debug("status socket write failed")
				return
			}
		case <-ping.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (h *StatusSocket) send(conn *websocket.Conn, s status.Snapshot) error {
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(s)
}
