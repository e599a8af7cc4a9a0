package websocket

import (
	"encoding/json"
	"sync"
	"time"

	"skillnet/pkg/logger"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Client 代表一个用户的WebSocket连接
type Client struct {
	UserID uint
	Conn   *websocket.Conn
	Send   chan []byte
}

// Event 推送给客户端的事件
type Event struct {
	Type      string                 `json:"type"`
	Data      map[string]interface{} `json:"data,omitempty"`
	Timestamp int64                  `json:"timestamp"`
}

// Manager 管理所有在线用户的WebSocket连接（并发安全）
// 每个用户仅保留最新的一条连接
type Manager struct {
	clients map[uint]*Client
	lock    sync.RWMutex
}

// NewManager 创建连接管理器
func NewManager() *Manager {
	return &Manager{clients: make(map[uint]*Client)}
}

// AddClient 添加新连接，旧连接的发送通道会被关闭
func (m *Manager) AddClient(client *Client) {
	m.lock.Lock()
	defer m.lock.Unlock()
	if old, ok := m.clients[client.UserID]; ok && old != client {
		close(old.Send)
	}
	m.clients[client.UserID] = client
}

// RemoveClient 移除连接；若该用户已被新连接替换则不做处理
func (m *Manager) RemoveClient(client *Client) {
	m.lock.Lock()
	defer m.lock.Unlock()
	if c, ok := m.clients[client.UserID]; ok && c == client {
		close(c.Send)
		delete(m.clients, client.UserID)
	}
}

// SendToUser 推送消息给指定用户，不在线或发送队列已满时丢弃
func (m *Manager) SendToUser(userID uint, msg []byte) bool {
	m.lock.RLock()
	defer m.lock.RUnlock()
	client, ok := m.clients[userID]
	if !ok {
		return false
	}
	select {
	case client.Send <- msg:
		return true
	default:
		return false
	}
}

// Notify 推送好友事件
func (m *Manager) Notify(userID uint, event string, payload map[string]interface{}) {
	msg, err := json.Marshal(Event{Type: event, Data: payload, Timestamp: time.Now().Unix()})
	if err != nil {
		logger.Error("序列化推送事件失败", zap.String("event", event), zap.Error(err))
		return
	}
	if !m.SendToUser(userID, msg) {
		logger.Debug("用户不在线，事件未推送", zap.Uint("user_id", userID), zap.String("event", event))
	}
}

// IsOnline 判断用户是否在线
func (m *Manager) IsOnline(userID uint) bool {
	m.lock.RLock()
	defer m.lock.RUnlock()
	_, ok := m.clients[userID]
	return ok
}

// OnlineCount 在线连接数
func (m *Manager) OnlineCount() int {
	m.lock.RLock()
	defer m.lock.RUnlock()
	return len(m.clients)
}
