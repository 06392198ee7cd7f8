package ws

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

type Client struct {
	Conn *websocket.Conn
	Send chan []byte
}

type Hub struct {
	Clients       map[string]map[*websocket.Conn]*Client // Theo từng courseID
	GlobalClients map[*websocket.Conn]*Client            // Dành cho bảng xếp hạng chung
	Mutex         sync.RWMutex
}

var H = Hub{
	Clients:       make(map[string]map[*websocket.Conn]*Client),
	GlobalClients: make(map[*websocket.Conn]*Client),
}

// Struct thông báo có lượt nộp bài mới cho 1 course
type CourseResultUpdate struct {
	Type     string `json:"type"`
	CourseID string `json:"course_id"`
	Marks    int    `json:"marks"`
	TakenAt  int64  `json:"taken_at"`
}

// Register theo courseID riêng
func (h *Hub) Register(courseID string, conn *websocket.Conn) {
	h.Mutex.Lock()
	defer h.Mutex.Unlock()

	if _, ok := h.Clients[courseID]; !ok {
		h.Clients[courseID] = make(map[*websocket.Conn]*Client)
	}

	client := &Client{
		Conn: conn,
		Send: make(chan []byte, 256),
	}

	h.Clients[courseID][conn] = client

	go h.readPump(courseID, conn)
	go h.writePump(courseID, conn)
}

// Register global cho trang bảng xếp hạng
func (h *Hub) RegisterGlobal(conn *websocket.Conn) {
	h.Mutex.Lock()
	defer h.Mutex.Unlock()

	client := &Client{
		Conn: conn,
		Send: make(chan []byte, 256),
	}

	h.GlobalClients[conn] = client

	go h.readGlobalPump(conn)
	go h.writeGlobalPump(conn)
}

// Broadcast theo courseID
func (h *Hub) Broadcast(courseID string, data []byte) {
	h.Mutex.RLock()
	defer h.Mutex.RUnlock()

	if clients, ok := h.Clients[courseID]; ok {
		for _, client := range clients {
			select {
			case client.Send <- data:
			default:
			}
		}
	}
}

// Broadcast toàn bộ global clients (bảng xếp hạng)
func (h *Hub) BroadcastGlobal(data []byte) {
	h.Mutex.RLock()
	defer h.Mutex.RUnlock()

	for _, client := range h.GlobalClients {
		select {
		case client.Send <- data:
		default:
		}
	}
}

// GetStats trả số kết nối hiện tại (cho health check)
func (h *Hub) GetStats() map[string]int {
	h.Mutex.RLock()
	defer h.Mutex.RUnlock()

	courseConns := 0
	for _, clients := range h.Clients {
		courseConns += len(clients)
	}
	return map[string]int{
		"course_clients": courseConns,
		"global_clients": len(h.GlobalClients),
	}
}

// Public function báo có lượt nộp bài mới cho course
func SendCourseResultUpdate(courseID string, marks int, takenAt time.Time) {
	update := CourseResultUpdate{
		Type:     "course_result",
		CourseID: courseID,
		Marks:    marks,
		TakenAt:  takenAt.Unix(),
	}
	data, err := json.Marshal(update)
	if err != nil {
		log.Println("JSON marshal error:", err)
		return
	}
	H.Broadcast(courseID, data)
}

// Public function báo bảng xếp hạng có thể đã thay đổi
func BroadcastLeaderboardChanged() {
	data := []byte(`{"type": "leaderboard_changed"}`)
	H.BroadcastGlobal(data)
}

// Unregister client theo courseID
func (h *Hub) Unregister(courseID string, conn *websocket.Conn) {
	h.Mutex.Lock()
	defer h.Mutex.Unlock()

	if clients, ok := h.Clients[courseID]; ok {
		if client, ok := clients[conn]; ok {
			close(client.Send)
			delete(clients, conn)
		}
		if len(clients) == 0 {
			delete(h.Clients, courseID)
		}
	}
}

// Unregister global client
func (h *Hub) UnregisterGlobal(conn *websocket.Conn) {
	h.Mutex.Lock()
	defer h.Mutex.Unlock()

	if client, ok := h.GlobalClients[conn]; ok {
		close(client.Send)
		delete(h.GlobalClients, conn)
	}
}

// Read pump riêng theo courseID
func (h *Hub) readPump(courseID string, conn *websocket.Conn) {
	defer h.Unregister(courseID, conn)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

// Write pump riêng theo courseID
func (h *Hub) writePump(courseID string, conn *websocket.Conn) {
	h.Mutex.RLock()
	client := h.Clients[courseID][conn]
	h.Mutex.RUnlock()
	if client == nil {
		return
	}
	defer func() {
		conn.WriteMessage(websocket.CloseMessage, []byte{})
		conn.Close()
	}()
	for msg := range client.Send {
		if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			break
		}
	}
}

// Read pump global
func (h *Hub) readGlobalPump(conn *websocket.Conn) {
	defer h.UnregisterGlobal(conn)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

// Write pump global
func (h *Hub) writeGlobalPump(conn *websocket.Conn) {
	h.Mutex.RLock()
	client := h.GlobalClients[conn]
	h.Mutex.RUnlock()
	if client == nil {
		return
	}
	defer func() {
		conn.WriteMessage(websocket.CloseMessage, []byte{})
		conn.Close()
	}()
	for msg := range client.Send {
		if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			break
		}
	}
}
