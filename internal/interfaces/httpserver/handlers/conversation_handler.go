package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/knowyourdocs/docchat/internal/domain/conversation"
	"github.com/knowyourdocs/docchat/internal/interfaces/httpserver/responses"
	"github.com/knowyourdocs/docchat/internal/utils/platformerrors"
)

// ConversationHandler serves conversation listing and history endpoints.
type ConversationHandler struct {
	conversationService *conversation.Service
	log                 zerolog.Logger
}

// NewConversationHandler builds the conversation handler.
func NewConversationHandler(conversationService *conversation.Service, log zerolog.Logger) *ConversationHandler {
	return &ConversationHandler{
		conversationService: conversationService,
		log:                 log,
	}
}

// List returns the owner's conversations, newest first.
func (h *ConversationHandler) List(reqCtx *gin.Context) {
	ownerID := reqCtx.Query("ownerId")
	if ownerID == "" {
		responses.HandleNewError(reqCtx, platformerrors.ErrorTypeValidation, "ownerId is missing")
		return
	}

	conversations, err := h.conversationService.ListByOwner(reqCtx.Request.Context(), ownerID)
	if err != nil {
		responses.HandleError(reqCtx, err, "")
		return
	}

	reqCtx.JSON(200, responses.ConversationListResponse{
		Success:       true,
		Conversations: conversations,
	})
}

// Messages returns one conversation's documents and ordered query history.
func (h *ConversationHandler) Messages(reqCtx *gin.Context) {
	ownerID := reqCtx.Query("ownerId")
	if ownerID == "" {
		responses.HandleNewError(reqCtx, platformerrors.ErrorTypeValidation, "ownerId is missing")
		return
	}
	conversationID := reqCtx.Param("id")

	history, err := h.conversationService.History(reqCtx.Request.Context(), conversationID, ownerID)
	if err != nil {
		responses.HandleError(reqCtx, err, "")
		return
	}

	reqCtx.JSON(200, responses.MessagesResponse{
		Success: true,
		History: history,
	})
}
