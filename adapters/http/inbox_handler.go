package http

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	inboxUC "github.com/anhtran/folio-api/internal/application/usecase/inbox"
	"github.com/anhtran/folio-api/internal/domain/inbox"
	"github.com/anhtran/folio-api/pkg/apperror"
	"github.com/anhtran/folio-api/pkg/logger"
)

type InboxHandler struct {
	inbox  *inboxUC.InboxManager
	logger logger.Logger
}

func NewInboxHandler(manager *inboxUC.InboxManager, log logger.Logger) *InboxHandler {
	return &InboxHandler{inbox: manager, logger: log}
}

func (h *InboxHandler) ListMessages(c *gin.Context) {
	messages, err := h.inbox.List(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, ToMessageDTOs(messages))
}

// StreamMessages bridges the live inbox subscription to server-sent events.
// One "snapshot" event carries the full ordered list; the stream ends when
// the client disconnects.
func (h *InboxHandler) StreamMessages(c *gin.Context) {
	snapshots, release, err := h.inbox.Subscribe(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	defer release()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	c.Stream(func(w io.Writer) bool {
		select {
		case <-c.Request.Context().Done():
			return false
		case snapshot, ok := <-snapshots:
			if !ok {
				return false
			}
			c.SSEvent("snapshot", ToMessageDTOs(snapshot.Messages))
			return true
		}
	})
}

func (h *InboxHandler) MarkRead(c *gin.Context) {
	messageID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.Error(apperror.NewInvalidInput("invalid message ID", err))
		return
	}

	if err := h.inbox.MarkRead(c.Request.Context(), messageID); err != nil {
		if errors.Is(err, inbox.ErrMessageNotFound) {
			c.Error(apperror.NewNotFound("message", messageID.String()))
			return
		}
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Message marked as read"})
}

// Contact is the public contact form endpoint.
func (h *InboxHandler) Contact(c *gin.Context) {
	var req ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("invalid JSON body for contact message", err))
		return
	}

	msg, err := h.inbox.Receive(c.Request.Context(), req.Name, req.Email, req.Message)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message": "Message sent successfully",
		"id":      msg.ID.String(),
	})
}
