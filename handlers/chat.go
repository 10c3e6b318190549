package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"concierge/models"
	"concierge/services/speech"
	"concierge/utils"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

type ChatRouter interface {
	Route(ctx context.Context, userID, message string) models.ChatResponse
}

type SessionResetter interface {
	Cancel(ctx context.Context, userID string) error
}

type Transcriber interface {
	Transcribe(ctx context.Context, filename string, audio io.Reader) (string, error)
}

// VoiceResponse is a chat reply plus the text recognized from the upload.
type VoiceResponse struct {
	Transcript string `json:"transcript"`
	models.ChatResponse
}

type wsMessage struct {
	Text string `json:"text"`
}

const wsIdleTimeout = 5 * time.Minute

// ChatHandler serves the guest-facing conversation endpoints.
type ChatHandler struct {
	router   ChatRouter
	sessions SessionResetter
	stt      Transcriber
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

// NewChatHandler wires the handler. A nil transcriber disables the voice endpoint.
func NewChatHandler(router ChatRouter, sessions SessionResetter, stt Transcriber, origins []string, logger *zap.Logger) *ChatHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChatHandler{
		router:   router,
		sessions: sessions,
		stt:      stt,
		logger:   logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4 * 1024,
			WriteBufferSize: 4 * 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				for _, allowed := range origins {
					if allowed == "*" || allowed == origin {
						return true
					}
				}
				return false
			},
		},
	}
}

// Chat handles POST /api/chat.
func (h *ChatHandler) Chat(c *gin.Context) {
	var req models.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	resp := h.router.Route(c.Request.Context(), req.UserID, req.Text)
	c.JSON(http.StatusOK, resp)
}

// Voice handles POST /api/chat/voice with a multipart "audio" wav and a "user_id" field.
func (h *ChatHandler) Voice(c *gin.Context) {
	if h.stt == nil {
		utils.JSONError(c, http.StatusServiceUnavailable, "voice input is not available", "")
		return
	}

	userID := strings.TrimSpace(c.PostForm("user_id"))
	if userID == "" {
		utils.JSONError(c, http.StatusBadRequest, "user_id is required", "")
		return
	}

	file, header, err := c.Request.FormFile("audio")
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "audio file is required", err.Error())
		return
	}
	defer file.Close()

	text, err := h.stt.Transcribe(c.Request.Context(), header.Filename, file)
	if err != nil {
		switch {
		case errors.Is(err, speech.ErrUnsupportedFormat):
			utils.JSONError(c, http.StatusBadRequest, "invalid audio", err.Error())
		case errors.Is(err, speech.ErrTooLarge):
			utils.JSONError(c, http.StatusRequestEntityTooLarge, "audio file too large", err.Error())
		case errors.Is(err, speech.ErrNoSpeech):
			utils.JSONError(c, http.StatusUnprocessableEntity, "no speech recognized", "")
		default:
			requestLogger(c, h.logger).Error("Transcription failed", zap.String("userID", userID), zap.Error(err))
			utils.JSONError(c, http.StatusBadGateway, "speech recognition failed", "")
		}
		return
	}

	resp := h.router.Route(c.Request.Context(), userID, text)
	c.JSON(http.StatusOK, VoiceResponse{Transcript: text, ChatResponse: resp})
}

// ResetSession handles DELETE /api/chat/session/:userID.
func (h *ChatHandler) ResetSession(c *gin.Context) {
	userID := c.Param("userID")
	if err := h.sessions.Cancel(c.Request.Context(), userID); err != nil {
		requestLogger(c, h.logger).Error("Failed to clear session", zap.String("userID", userID), zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "failed to clear session", "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "cleared", "user_id": userID})
}

// Stream handles GET /api/chat/ws?user_id=... Each text frame {"text": ...}
// is answered with one ChatResponse frame.
func (h *ChatHandler) Stream(c *gin.Context) {
	userID := strings.TrimSpace(c.Query("user_id"))
	if userID == "" {
		utils.JSONError(c, http.StatusBadRequest, "user_id is required", "")
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		requestLogger(c, h.logger).Warn("WebSocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	log := requestLogger(c, h.logger).With(zap.String("userID", userID))
	log.Debug("WebSocket session opened")

	for {
		_ = conn.SetReadDeadline(time.Now().Add(wsIdleTimeout))

		var msg wsMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn("WebSocket read failed", zap.Error(err))
			}
			return
		}
		if strings.TrimSpace(msg.Text) == "" {
			continue
		}

		resp := h.router.Route(c.Request.Context(), userID, msg.Text)
		if err := conn.WriteJSON(resp); err != nil {
			log.Warn("WebSocket write failed", zap.Error(err))
			return
		}
	}
}

// Health reports the last dependency snapshot.
func Health(c *gin.Context) {
	status := utils.GetHealthStatus()
	healthy := status.Mongo == nil || *status.Mongo
	for _, ok := range status.Redis {
		healthy = healthy && ok
	}

	code := http.StatusOK
	state := "ok"
	if !healthy {
		code = http.StatusServiceUnavailable
		state = "degraded"
	}
	c.JSON(code, gin.H{"status": state, "dependencies": status})
}
