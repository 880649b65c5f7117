package socket

import (
	"log"

	socketio "github.com/googollee/go-socket.io"
)

// NewSocketServer initializes and returns a new Socket.IO server. Clients
// subscribe to topics with "join": "user:{userId}" for their personal feed
// and "room:{chatRoomId}" for an open conversation.
func NewSocketServer() *socketio.Server {
	server := socketio.NewServer(nil)

	server.OnConnect("/", func(c socketio.Conn) error {
		log.Println("✅ Socket connected:", c.ID())
		return nil
	})

	server.OnEvent("/", "join", func(c socketio.Conn, data map[string]string) {
		topic := data["topic"]
		if topic == "" {
			log.Println("❌ Invalid topic in join request")
			return
		}
		log.Printf("👥 Socket %s joined topic %s\n", c.ID(), topic)
		c.Join(topic)
	})

	server.OnEvent("/", "leave", func(c socketio.Conn, data map[string]string) {
		topic := data["topic"]
		if topic == "" {
			return
		}
		log.Printf("👋 Socket %s left topic %s\n", c.ID(), topic)
		c.Leave(topic)
	})

	server.OnEvent("/", "typing", func(c socketio.Conn, data map[string]string) {
		roomID := data["chatRoomId"]
		if roomID == "" {
			return
		}
		server.BroadcastToRoom("/", "room:"+roomID, "typing", data)
	})

	server.OnError("/", func(c socketio.Conn, err error) {
		log.Println("⚠️ Socket error:", err)
	})

	server.OnDisconnect("/", func(c socketio.Conn, reason string) {
		log.Println("❌ Socket disconnected:", c.ID(), reason)
	})

	return server
}

// Notifier adapts the Socket.IO server to the services' realtime contract.
// Publishing broadcasts to whoever currently subscribes to the topic;
// delivery is best-effort and never blocks the caller.
type Notifier struct {
	Server *socketio.Server
}

// Publish broadcasts an event on a topic.
func (n *Notifier) Publish(topic, event string, payload interface{}) {
	n.Server.BroadcastToRoom("/", topic, event, payload)
}
