package websocket

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// GamificationWebSocketHandler upgrades an authenticated request to a
// WebSocket subscribed to live gamification events. Runs behind the auth
// middleware, which has already set the user id.
func GamificationWebSocketHandler(c *gin.Context) {
	userID, exists := c.Get("userID")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}

	client := &GamificationClient{
		Conn:   conn,
		UserID: userID.(primitive.ObjectID).Hex(),
	}
	RegisterGamificationClient(client)
	defer UnregisterGamificationClient(client)

	client.SafeWriteJSON(map[string]interface{}{
		"type":   "connected",
		"userId": client.UserID,
	})

	// Keep the connection alive until the client goes away
	for {
		messageType, _, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("Gamification WebSocket error: %v", err)
			}
			break
		}
		if messageType == websocket.PingMessage {
			if err := conn.WriteMessage(websocket.PongMessage, nil); err != nil {
				log.Printf("Error writing pong: %v", err)
				break
			}
		}
	}
}
