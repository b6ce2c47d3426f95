package websocket

import (
	"log"
	"sync"

	"learnhub/models"

	"github.com/gorilla/websocket"
)

// GamificationClient is one connected dashboard listening for live updates
type GamificationClient struct {
	Conn    *websocket.Conn
	UserID  string
	writeMu sync.Mutex
}

// SafeWriteJSON serializes writes to the client's connection
func (gc *GamificationClient) SafeWriteJSON(v interface{}) error {
	gc.writeMu.Lock()
	defer gc.writeMu.Unlock()
	return gc.Conn.WriteJSON(v)
}

var (
	gamificationClients = make(map[*GamificationClient]bool)
	gamificationMutex   sync.RWMutex
)

// RegisterGamificationClient adds a client to the broadcast hub
func RegisterGamificationClient(client *GamificationClient) {
	gamificationMutex.Lock()
	defer gamificationMutex.Unlock()
	gamificationClients[client] = true
	log.Printf("Gamification client registered. Total clients: %d", len(gamificationClients))
}

// UnregisterGamificationClient removes a client and closes its connection
func UnregisterGamificationClient(client *GamificationClient) {
	gamificationMutex.Lock()
	defer gamificationMutex.Unlock()
	delete(gamificationClients, client)
	client.Conn.Close()
	log.Printf("Gamification client unregistered. Total clients: %d", len(gamificationClients))
}

// BroadcastGamificationEvent pushes an event to every connected client
func BroadcastGamificationEvent(event models.GamificationEvent) {
	gamificationMutex.RLock()
	defer gamificationMutex.RUnlock()

	for client := range gamificationClients {
		if err := client.SafeWriteJSON(event); err != nil {
			log.Printf("Error broadcasting gamification event to client: %v", err)
			go UnregisterGamificationClient(client)
		}
	}
}

// GamificationClientsCount returns the number of connected clients
func GamificationClientsCount() int {
	gamificationMutex.RLock()
	defer gamificationMutex.RUnlock()
	return len(gamificationClients)
}
