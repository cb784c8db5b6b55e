package httpapi

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"go.uber.org/zap"

	"github.com/custodia-labs/paddock/internal/core/domain"
)

type chatRequest struct {
	ChatID    string `form:"chat_id" json:"chat_id"`
	UserInput string `form:"user_input" json:"user_input"`
}

type chatResponse struct {
	Response string `json:"response"`
	ChatID   string `json:"chat_id"`
}

type createChatRequest struct {
	Message string `json:"message"`
}

type chatJSON struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
}

type messageJSON struct {
	ID        int64     `json:"id"`
	ChatID    string    `json:"chat_id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

type postMessageRequest struct {
	ChatID  string `json:"chat_id" binding:"required"`
	Content string `json:"content" binding:"required"`
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// postChat answers one message. Parameters are read from the query string,
// or from a JSON body when one is sent.
func (s *Server) postChat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		s.fail(c, http.StatusBadRequest, err)
		return
	}
	if c.ContentType() == binding.MIMEJSON {
		if err := c.ShouldBindJSON(&req); err != nil {
			s.fail(c, http.StatusBadRequest, err)
			return
		}
	}
	if strings.TrimSpace(req.UserInput) == "" {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": "user_input is required"})
		return
	}

	answer, err := s.chat.Ask(c.Request.Context(), req.ChatID, req.UserInput)
	if err != nil {
		s.fail(c, statusFor(err), err)
		return
	}
	c.JSON(http.StatusOK, chatResponse{Response: answer.Content, ChatID: answer.ChatID})
}

// createChat starts a chat. A non-empty first message is appended for the
// polling loop to answer.
func (s *Server) createChat(c *gin.Context) {
	var req createChatRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			s.fail(c, http.StatusBadRequest, err)
			return
		}
	}

	ctx := c.Request.Context()
	chat, err := s.chat.StartChat(ctx, req.Message)
	if err != nil {
		s.fail(c, statusFor(err), err)
		return
	}
	body := gin.H{"chat": toChatJSON(*chat)}
	if strings.TrimSpace(req.Message) != "" {
		msg, err := s.chat.Enqueue(ctx, chat.ID, req.Message)
		if err != nil {
			s.fail(c, statusFor(err), err)
			return
		}
		body["message"] = toMessageJSON(*msg)
	}
	c.JSON(http.StatusCreated, body)
}

func (s *Server) listChats(c *gin.Context) {
	chats, err := s.chat.ListChats(c.Request.Context())
	if err != nil {
		s.fail(c, statusFor(err), err)
		return
	}
	out := make([]chatJSON, len(chats))
	for i, ch := range chats {
		out[i] = toChatJSON(ch)
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) listMessages(c *gin.Context) {
	msgs, err := s.chat.History(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, statusFor(err), err)
		return
	}
	out := make([]messageJSON, len(msgs))
	for i, m := range msgs {
		out[i] = toMessageJSON(m)
	}
	c.JSON(http.StatusOK, out)
}

// postMessage appends a user message without waiting for the answer.
func (s *Server) postMessage(c *gin.Context) {
	var req postMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, http.StatusBadRequest, err)
		return
	}
	msg, err := s.chat.Enqueue(c.Request.Context(), req.ChatID, req.Content)
	if err != nil {
		s.fail(c, statusFor(err), err)
		return
	}
	c.JSON(http.StatusAccepted, toMessageJSON(*msg))
}

func (s *Server) fail(c *gin.Context, status int, err error) {
	if status >= http.StatusInternalServerError {
		s.log.Error("request failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
	}
	c.JSON(status, gin.H{"detail": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrLLMUnavailable), errors.Is(err, domain.ErrEmbeddingUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func toChatJSON(c domain.Chat) chatJSON {
	return chatJSON{ID: c.ID, Title: c.Title, CreatedAt: c.CreatedAt}
}

func toMessageJSON(m domain.Message) messageJSON {
	return messageJSON{
		ID:        m.ID,
		ChatID:    m.ChatID,
		Role:      string(m.Role),
		Content:   m.Content,
		CreatedAt: m.CreatedAt,
	}
}
