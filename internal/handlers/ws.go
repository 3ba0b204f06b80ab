package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/lracdim/trazer-backend/internal/types"
	"github.com/lracdim/trazer-backend/internal/utils"
)

const (
	pongWait       = 60 * time.Second
	maxMessageSize = 512
)

// WebSocket upgrades an authenticated connection and registers it with the
// hub. Supervisors and admins receive dashboard broadcasts; guards only their
// private events. All writes to the conn, including the keepalive pings, go
// through the hub so they are serialized with concurrent broadcasts.
func (h *Handlers) WebSocket(c *gin.Context) {
	currentUser, err := utils.GetCurrentUser(c)

	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			for _, allowed := range types.AllowedOrigins {
				if origin == allowed {
					return true
				}
			}
			return false
		},
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	// Set up connection parameters
	conn.SetReadLimit(maxMessageSize)
	if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		log.Printf("Failed to set initial read deadline: %v", err)
		conn.Close()
		return
	}
	conn.SetPongHandler(func(string) error {
		if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
			log.Printf("Failed to set read deadline in pong handler: %v", err)
		}
		return nil
	})

	h.Hub.Register(currentUser.ID, currentUser.Role, conn)

	done := make(chan struct{})

	// Clean up when connection closes
	defer func() {
		close(done)
		h.Hub.Unregister(currentUser.ID, conn)
		conn.Close()

		log.Printf("WebSocket connection closed for user %s", currentUser.ID)
	}()

	// Send welcome message
	if err := h.Hub.SendTo(conn, "connected", "WebSocket connection established"); err != nil {
		log.Printf("Failed to send welcome message: %v", err)
		return
	}

	go h.Hub.KeepAlive(conn, done)

	for {
		// Set read deadline for each message
		if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
			log.Printf("Failed to set read deadline for user %s: %v", currentUser.ID, err)
			break
		}

		messageType, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error for user %s: %v", currentUser.ID, err)
			}
			break
		}

		if messageType == websocket.TextMessage {
			log.Printf("Received message from user %s: %s", currentUser.ID, string(message))
		}
	}
}
