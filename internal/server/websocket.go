package server

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/lucasew/mdpipe/internal/markdown"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for now
	},
}

// PreviewMessage is sent back for every document received on /ws.
type PreviewMessage struct {
	HTML string `json:"html"`
}

// WebSocketServer renders each text frame it receives as a Markdown
// document and answers with a PreviewMessage.
type WebSocketServer struct {
	renderer        *markdown.Renderer
	maxMessageBytes int64
	logger          *slog.Logger
}

func NewWebSocketServer(renderer *markdown.Renderer, maxMessageBytes int64, logger *slog.Logger) *WebSocketServer {
	return &WebSocketServer{
		renderer:        renderer,
		maxMessageBytes: maxMessageBytes,
		logger:          logger,
	}
}

func (s *WebSocketServer) HandleConnect(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("failed to upgrade connection", "error", err)
		return
	}
	defer func() {
		_ = conn.Close()
	}()
	conn.SetReadLimit(s.maxMessageBytes)

	s.logger.Debug("preview client connected", "remote", r.RemoteAddr)

	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			var closeErr *websocket.CloseError
			if errors.As(err, &closeErr) && (closeErr.Code == websocket.CloseNormalClosure || closeErr.Code == websocket.CloseGoingAway) {
				s.logger.Debug("preview client closed connection", "remote", r.RemoteAddr)
				return
			}
			s.logger.Error("preview connection error", "remote", r.RemoteAddr, "error", err)
			return
		}

		if msgType != websocket.TextMessage {
			cm := websocket.FormatCloseMessage(websocket.CloseUnsupportedData, "text frames only")
			_ = conn.WriteMessage(websocket.CloseMessage, cm)
			return
		}

		msg := PreviewMessage{HTML: string(s.renderer.Render(string(data)))}
		if err := conn.WriteJSON(msg); err != nil {
			s.logger.Error("failed to send preview", "remote", r.RemoteAddr, "error", err)
			return
		}
	}
}
