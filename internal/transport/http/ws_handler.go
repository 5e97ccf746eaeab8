package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"hero-trivia-engine/internal/app"
	"hero-trivia-engine/internal/domain"
)

// eventBuffer bounds the per-connection event backlog; the emitter drops the
// oldest event when a slow client falls behind.
const eventBuffer = 64

type WSHandler struct {
	service  *app.GameService
	logger   *zap.Logger
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.GameService, logger *zap.Logger) *WSHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WSHandler{
		service: service,
		logger:  logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type startPayload struct {
	Mode       domain.Mode       `json:"mode"`
	Difficulty domain.Difficulty `json:"difficulty"`
	Config     app.StartConfig   `json:"config"`
}

type answerPayload struct {
	Index int `json:"index"`
}

type powerUpPayload struct {
	Multiplier float64 `json:"multiplier"`
	Questions  int     `json:"questions"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

type readyPayload struct {
	Profile domain.PlayerProfile `json:"profile"`
}

type startedPayload struct {
	SessionID string             `json:"sessionId"`
	Session   domain.GameSession `json:"session"`
}

// ServeWS upgrades the request and runs one player's games over the socket.
// Engine events are forwarded as they are emitted; closing the socket
// abandons any unfinished session.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	playerID := r.URL.Query().Get("playerId")
	displayName := r.URL.Query().Get("name")
	if playerID == "" {
		http.Error(w, "missing playerId", http.StatusBadRequest)
		return
	}

	player, err := h.service.OpenPlayer(r.Context(), playerID, displayName)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	defer player.Close()

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("ws upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	updates, cancel := player.SubscribeChan(eventBuffer)
	defer cancel()

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				h.logger.Debug("ws write error", zap.String("player_id", playerID), zap.Error(err))
				return
			}
		}
	}()

	go func() {
		defer close(updatesDone)
		for {
			select {
			case ev, ok := <-updates:
				if !ok {
					return
				}
				select {
				case send <- outboundMessage[any]{Type: string(ev.Type), Payload: ev}:
				case <-closeSignals:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	send <- outboundMessage[any]{Type: "ready", Payload: readyPayload{Profile: player.Profile()}}

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		reply, err := h.dispatch(r.Context(), player, inbound)
		if err != nil {
			send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}}
			continue
		}
		if reply != nil {
			send <- *reply
		}
	}

	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
}

// dispatch applies one client command. Most commands answer through the
// event stream; only start and state replies are returned directly.
func (h *WSHandler) dispatch(ctx context.Context, player *app.Player, in inboundMessage) (*outboundMessage[any], error) {
	if in.Type == "start" {
		var p startPayload
		if err := decode(in.Payload, &p); err != nil {
			return nil, err
		}
		if p.Difficulty == "" {
			p.Difficulty = player.Profile().Settings.DefaultDifficulty
		}
		session, err := player.Start(ctx, p.Mode, p.Difficulty, p.Config)
		if err != nil {
			return nil, err
		}
		return &outboundMessage[any]{Type: "started", Payload: startedPayload{SessionID: session.ID(), Session: session.Snapshot()}}, nil
	}

	session, err := player.Session()
	if err != nil {
		return nil, err
	}
	switch in.Type {
	case "answer":
		var p answerPayload
		if err := decode(in.Payload, &p); err != nil {
			return nil, err
		}
		_, err = session.SubmitAnswer(p.Index)
	case "timeout":
		_, err = session.Timeout()
	case "skip":
		_, err = session.Skip()
	case "next":
		err = session.NextQuestion()
	case "pause":
		err = session.Pause()
	case "resume":
		err = session.Resume()
	case "end":
		_, err = session.EndEarly()
	case "powerup":
		var p powerUpPayload
		if err := decode(in.Payload, &p); err != nil {
			return nil, err
		}
		err = session.ActivatePowerUp(p.Multiplier, p.Questions)
	case "state":
		return &outboundMessage[any]{Type: "state", Payload: session.Snapshot()}, nil
	default:
		return nil, fmt.Errorf("unsupported message type %q", in.Type)
	}
	return nil, err
}

func decode(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		return errors.New("missing payload")
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("invalid payload: %w", err)
	}
	return nil
}
