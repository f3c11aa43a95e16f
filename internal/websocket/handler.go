package websocket

import (
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/davidarico/stinkbot-sub000/internal/auth"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Access control happens via the signed token, not the Origin
		// header.
		return true
	},
}

// Handler upgrades authenticated moderator connections onto the hub.
type Handler struct {
	hub         *Hub
	tokenSecret []byte
}

func NewHandler(hub *Hub, tokenSecret []byte) *Handler {
	return &Handler{hub: hub, tokenSecret: tokenSecret}
}

// ServeWS handles GET /ws/games/{gameID}?token=...
// The token must be signed for that game.
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	gameID, err := strconv.ParseInt(chi.URLParam(r, "gameID"), 10, 64)
	if err != nil {
		http.Error(w, "invalid game id", http.StatusBadRequest)
		return
	}
	claims, err := auth.VerifyToken(h.tokenSecret, r.URL.Query().Get("token"))
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	if claims.GameID != gameID {
		http.Error(w, "token is for a different game", http.StatusForbidden)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket: upgrade: %v", err)
		return
	}
	client := newClient(h.hub, conn, gameID)
	h.hub.register <- client
	go client.writePump()
	go client.readPump()
}
