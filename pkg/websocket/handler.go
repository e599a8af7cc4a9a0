package websocket

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"skillnet/config"
	"skillnet/pkg/jwt"
	"skillnet/pkg/logger"
	"skillnet/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // 允许跨域
	},
}

// Handler WebSocket 接入
type Handler struct {
	manager *Manager
	jwtSvc  *jwt.JWTService
	cfg     config.WebSocketConfig
}

// NewHandler 创建WebSocket处理器
func NewHandler(manager *Manager, jwtSvc *jwt.JWTService, cfg config.WebSocketConfig) *Handler {
	return &Handler{manager: manager, jwtSvc: jwtSvc, cfg: cfg}
}

// Serve Gin路由处理函数，token 通过 query 或 Sec-WebSocket-Protocol 传递
func (h *Handler) Serve(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		token = strings.TrimPrefix(c.GetHeader("Sec-WebSocket-Protocol"), "Bearer ")
	}
	if token == "" {
		response.Unauthorized(c, "missing token")
		return
	}

	claims, err := h.jwtSvc.ValidateToken(token)
	if err != nil {
		response.Unauthorized(c, "invalid or expired token")
		return
	}
	userID, _ := strconv.ParseUint(claims.Subject, 10, 64)
	if userID == 0 {
		response.Unauthorized(c, "invalid token subject")
		return
	}

	// 回显子协议，避免客户端提示 "Server sent no subprotocol"
	respHeader := http.Header{}
	if protocol := c.GetHeader("Sec-WebSocket-Protocol"); protocol != "" {
		respHeader.Set("Sec-WebSocket-Protocol", protocol)
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, respHeader)
	if err != nil {
		logger.Warn("WebSocket升级失败", zap.Error(err))
		return
	}

	client := &Client{
		UserID: uint(userID),
		Conn:   conn,
		Send:   make(chan []byte, 64),
	}
	h.manager.AddClient(client)
	logger.Info("WebSocket已连接", zap.Uint("user_id", client.UserID))

	go h.writeLoop(client)
	h.readLoop(client)

	h.manager.RemoveClient(client)
	_ = conn.Close()
	logger.Info("WebSocket已断开", zap.Uint("user_id", client.UserID))
}

// writeLoop 写协程：转发推送事件并定时发送ping
func (h *Handler) writeLoop(client *Client) {
	ticker := time.NewTicker(h.cfg.PingInterval)
	defer ticker.Stop()
	for {
		select {
		case msg, ok := <-client.Send:
			if !ok {
				_ = client.Conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
					time.Now().Add(time.Second))
				return
			}
			_ = client.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := client.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			if err := client.Conn.WriteControl(websocket.PingMessage, []byte("ping"), time.Now().Add(5*time.Second)); err != nil {
				return
			}
		}
	}
}

// readLoop 读协程：只用于心跳，超时未收到任何数据则断开
func (h *Handler) readLoop(client *Client) {
	conn := client.Conn
	_ = conn.SetReadDeadline(time.Now().Add(h.cfg.ReadTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(h.cfg.ReadTimeout))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(h.cfg.ReadTimeout))
	}
}
