// room/room.go
package room

import (
	"sync"
	"time"

	"github.com/wfunc/mafiaserver/session"
)

// Room 是订阅某个房间推送的连接集合，ID 与 lobby ID 相同
type Room struct {
	ID        string
	CreatedAt time.Time
	Players   map[string]*session.Session // sessionID -> session
	mutex     sync.RWMutex
}

// NewRoom 创建一个新的订阅集合
func NewRoom(id string) *Room {
	return &Room{
		ID:        id,
		CreatedAt: time.Now(),
		Players:   make(map[string]*session.Session),
	}
}

// GetID 返回房间ID
func (r *Room) GetID() string {
	return r.ID
}

// AddPlayer 添加一个连接
func (r *Room) AddPlayer(s *session.Session) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.Players[s.ID] = s
}

// RemovePlayer 移除一个连接，返回剩余数量
func (r *Room) RemovePlayer(sessionID string) int {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	delete(r.Players, sessionID)
	return len(r.Players)
}

// GetSessions returns a slice of all sessions in the room (thread-safe).
func (r *Room) GetSessions() []*session.Session {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	sessions := make([]*session.Session, 0, len(r.Players))
	for _, s := range r.Players {
		sessions = append(sessions, s)
	}
	return sessions
}

// --- 房间管理器 ---

// Manager 管理所有订阅集合
type Manager struct {
	rooms map[string]*Room
	mutex sync.RWMutex
}

// NewRoomManager 创建一个新的房间管理器
func NewRoomManager() *Manager {
	return &Manager{
		rooms: make(map[string]*Room),
	}
}

// Subscribe 把连接加入 lobbyID 的推送，并退出它之前订阅的房间
func (m *Manager) Subscribe(lobbyID string, s *session.Session) {
	if prev := s.LobbyID(); prev != "" && prev != lobbyID {
		m.Unsubscribe(s)
	}

	m.mutex.Lock()
	room, exists := m.rooms[lobbyID]
	if !exists {
		room = NewRoom(lobbyID)
		m.rooms[lobbyID] = room
	}
	// 在管理器锁内加入，避免并发 Unsubscribe 把刚创建的空房间删掉
	room.AddPlayer(s)
	m.mutex.Unlock()

	s.SetLobbyID(lobbyID)
}

// Unsubscribe 退出当前订阅，空房间被移除
func (m *Manager) Unsubscribe(s *session.Session) {
	lobbyID := s.LobbyID()
	if lobbyID == "" {
		return
	}
	s.SetLobbyID("")

	m.mutex.Lock()
	defer m.mutex.Unlock()
	if room, exists := m.rooms[lobbyID]; exists && room.RemovePlayer(s.ID) == 0 {
		delete(m.rooms, lobbyID)
	}
}

// RemoveRoom 从管理器中移除一个房间
func (m *Manager) RemoveRoom(id string) {
	m.mutex.Lock()
	room, exists := m.rooms[id]
	delete(m.rooms, id)
	m.mutex.Unlock()

	if exists {
		for _, s := range room.GetSessions() {
			s.SetLobbyID("")
		}
	}
}

// GetRoom 从管理器中获取一个房间
func (m *Manager) GetRoom(id string) (*Room, bool) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	room, exists := m.rooms[id]
	return room, exists
}

// Count 有订阅者的房间数
func (m *Manager) Count() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.rooms)
}
