package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mindwell/portal-gateway/internal/chat"
)

const streamWriteTimeout = 10 * time.Second

// ChatClientMessage is sent by the chat view over the stream
type ChatClientMessage struct {
	Type string `json:"type"` // load_more
}

func (s *Server) upgrader() *websocket.Upgrader {
	allowed := make(map[string]bool, len(s.config.Server.AllowedOrigins))
	for _, o := range s.config.Server.AllowedOrigins {
		allowed[o] = true
	}

	return &websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || allowed["*"] || allowed[origin]
		},
	}
}

// handleChatStream pushes poller events to the chat view until the session
// ends or either side goes away
func (s *Server) handleChatStream(w http.ResponseWriter, r *http.Request) {
	ref, ok := s.ownedSessionRef(w, r)
	if !ok {
		return
	}

	conn, err := s.upgrader().Upgrade(w, r, nil)
	if err != nil {
		slog.Error("failed to upgrade to websocket", "error", err)
		return
	}
	defer conn.Close()

	slog.Info("chat stream connected", "chat_id", ref.ChatID)

	poller := chat.NewPoller(s.deps.Messages, ref,
		chat.WithPollInterval(s.config.Chat.PollInterval),
		chat.WithTickInterval(s.config.Chat.TickInterval),
		chat.WithPageSize(s.config.Chat.PageSize),
		chat.WithClock(s.now),
	)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	var (
		wg      sync.WaitGroup
		writeMu sync.Mutex
	)
	emit := func(e chat.Event) error {
		writeMu.Lock()
		defer writeMu.Unlock()
		conn.SetWriteDeadline(time.Now().Add(streamWriteTimeout))
		return conn.WriteJSON(e)
	}

	// Poller -> WebSocket
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer cancel()
		if err := poller.Run(ctx, emit); err != nil {
			slog.Debug("chat stream write failed", "chat_id", ref.ChatID, "error", err)
			return
		}

		writeMu.Lock()
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session ended"),
			time.Now().Add(time.Second))
		writeMu.Unlock()
	}()

	// WebSocket -> Poller
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer cancel()
		for {
			_, message, err := conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					slog.Debug("websocket read error", "error", err)
				}
				return
			}

			var msg ChatClientMessage
			if err := json.Unmarshal(message, &msg); err != nil {
				slog.Debug("invalid message format", "error", err)
				continue
			}

			switch msg.Type {
			case "load_more":
				if !poller.LoadMore() {
					slog.Debug("no older messages", "chat_id", ref.ChatID)
				}
			}
		}
	}()

	go func() {
		<-ctx.Done()
		conn.SetReadDeadline(time.Now())
	}()

	wg.Wait()
	slog.Info("chat stream closed", "chat_id", ref.ChatID)
}
