package server

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/drawdash/server/internal"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

const (
	writeWait      = 10 * time.Second
	sendBufferSize = 64

	// maxMessageSize bounds inbound frames well above any legal payload
	// (guesses cap at 50 chars, stroke payloads are a handful of fields)
	// so oversized frames fail before the JSON decoder sees them.
	maxMessageSize = 8 * 1024
)

// session is one websocket connection. It implements internal.Client; all
// writes go through the send channel and a single writePump so the gorilla
// one-writer rule holds.
type session struct {
	id   string
	conn *websocket.Conn
	send chan []byte
	done chan struct{}
}

func newSession(conn *websocket.Conn) *session {
	return &session{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan []byte, sendBufferSize),
		done: make(chan struct{}),
	}
}

// Send queues an outbound message. A slow client whose buffer is full loses
// the message rather than stalling the game.
func (s *session) Send(msg internal.Envelope) {
	payload, err := json.Marshal(msg)
	if err != nil {
		log.Printf("[session] marshal %s failed: %v", msg.Type, err)
		return
	}
	select {
	case <-s.done:
	case s.send <- payload:
	default:
		log.Printf("[session] %s send buffer full, dropping %s", s.id, msg.Type)
	}
}

func (s *session) writePump() {
	defer s.conn.Close()
	for {
		select {
		case <-s.done:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			s.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		case payload := <-s.send:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				log.Printf("[session] %s write failed: %v", s.id, err)
				return
			}
		}
	}
}

// HandleWebSocket upgrades the connection and pumps events into the router
// until the peer goes away.
func (s *Server) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("Upgrade failed: ", err)
		return
	}

	conn.SetReadLimit(maxMessageSize)

	sess := newSession(conn)
	go sess.writePump()

	s.router.Connect(sess.id, sess)
	defer func() {
		s.router.Disconnect(sess.id)
		close(sess.done)
	}()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[session] %s read failed: %v", sess.id, err)
			}
			return
		}

		var msg internal.Message[json.RawMessage]
		if err := json.Unmarshal(raw, &msg); err != nil {
			log.Printf("[session] %s sent malformed frame: %v", sess.id, err)
			continue
		}
		s.router.HandleEvent(sess.id, msg.Type, msg.Data)
	}
}
