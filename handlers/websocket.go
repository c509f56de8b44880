package handlers

import (
	"net/http"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true }, // Note: Check the origin in production
}

// WsHandler upgrades the connection and hands it to the session
// coordinator. Authentication happens in-band through the login
// packet.
func (a *App) WsHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		a.Log.Errorw("upgrade error", "err", err)
		return
	}
	a.Game.AcceptConnection(conn)
}
