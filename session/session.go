// session/session.go
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/wfunc/mafiaserver/logger"
	"github.com/wfunc/mafiaserver/network"
)

const outboxSize = 64

var (
	ErrOutboxFull = errors.New("session outbox full")
	ErrClosed     = errors.New("session closed")
)

type outgoing struct {
	msgID uint16
	data  []byte
}

// Session 一个 WebSocket 连接。发送经由缓冲队列和独立的写协程，
// 调用方（包括持有房间锁的广播）不会被慢连接阻塞
type Session struct {
	ID        string
	Conn      network.Connection
	CreatedAt time.Time

	mutex      sync.RWMutex
	playerID   string
	playerName string
	lobbyID    string
	lastActive time.Time

	outbox    chan outgoing
	done      chan struct{}
	closeOnce sync.Once
}

func NewSession(id string, conn network.Connection) *Session {
	now := time.Now()
	s := &Session{
		ID:         id,
		Conn:       conn,
		CreatedAt:  now,
		lastActive: now,
		outbox:     make(chan outgoing, outboxSize),
		done:       make(chan struct{}),
	}
	go s.writeLoop()
	return s
}

func (s *Session) writeLoop() {
	for {
		select {
		case msg := <-s.outbox:
			if err := s.Conn.Send(msg.msgID, msg.data); err != nil {
				logger.Log.Warnw("send failed, closing session", "session", s.ID, "error", err)
				s.Close()
				return
			}
		case <-s.done:
			return
		}
	}
}

// Login binds the connection to a player identity.
func (s *Session) Login(playerID, name string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.playerID = playerID
	s.playerName = name
}

func (s *Session) PlayerID() string {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.playerID
}

func (s *Session) PlayerName() string {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.playerName
}

func (s *Session) LobbyID() string {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.lobbyID
}

func (s *Session) SetLobbyID(lobbyID string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.lobbyID = lobbyID
}

// Touch 更新心跳时间
func (s *Session) Touch() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.lastActive = time.Now()
}

func (s *Session) LastActive() time.Time {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.lastActive
}

// Send 入队，不阻塞。队列满时丢弃消息并返回 ErrOutboxFull
func (s *Session) Send(msgID uint16, data []byte) error {
	select {
	case <-s.done:
		return ErrClosed
	default:
	}
	select {
	case s.outbox <- outgoing{msgID: msgID, data: data}:
		return nil
	default:
		return ErrOutboxFull
	}
}

func (s *Session) GetID() string {
	return s.ID
}

func (s *Session) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.done)
		err = s.Conn.Close()
	})
	return err
}

// Session管理器
type Manager struct {
	sessions map[string]*Session
	mutex    sync.RWMutex
}

func NewManager() *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
	}
}

func (m *Manager) Add(session *Session) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.sessions[session.ID] = session
}

func (m *Manager) Remove(sessionID string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	delete(m.sessions, sessionID)
}

func (m *Manager) Get(sessionID string) (*Session, bool) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	session, exists := m.sessions[sessionID]
	return session, exists
}

func (m *Manager) GetByPlayerID(playerID string) []*Session {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	var result []*Session
	for _, session := range m.sessions {
		if session.PlayerID() == playerID {
			result = append(result, session)
		}
	}
	return result
}

// Count 在线连接数
func (m *Manager) Count() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.sessions)
}
