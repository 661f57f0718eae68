package responses

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/knowyourdocs/docchat/internal/domain/conversation"
	"github.com/knowyourdocs/docchat/internal/utils/platformerrors"
)

// ErrorResponse is the uniform failure body.
type ErrorResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	Code      string `json:"code"`
	RequestID string `json:"requestId,omitempty"`
}

// UploadResponse reports a completed ingestion.
type UploadResponse struct {
	Success         bool                   `json:"success"`
	ConversationID  string                 `json:"conversationId"`
	ChunksProcessed int                    `json:"chunksProcessed"`
	DocDetails      *conversation.Document `json:"docDetails"`
}

// QueryResponse reports a completed non-streaming answer.
type QueryResponse struct {
	Success        bool   `json:"success"`
	ConversationID string `json:"conversationId"`
	Answer         string `json:"answer"`
}

// ConversationListResponse lists the owner's conversations, newest first.
type ConversationListResponse struct {
	Success       bool                         `json:"success"`
	Conversations []*conversation.Conversation `json:"conversations"`
}

// MessagesResponse is the owner-scoped history of one conversation.
type MessagesResponse struct {
	Success bool                  `json:"success"`
	History *conversation.History `json:"history"`
}

// HandleError maps domain errors onto HTTP responses.
func HandleError(reqCtx *gin.Context, err error, message string) {
	var domainErr *platformerrors.PlatformError
	if errors.As(err, &domainErr) {
		if message == "" {
			message = domainErr.Message
		}
		statusCode := platformerrors.ErrorTypeToHTTPStatus(domainErr.GetErrorType())
		reqCtx.AbortWithStatusJSON(statusCode, ErrorResponse{
			Success:   false,
			Message:   message,
			Code:      string(domainErr.GetErrorType()),
			RequestID: domainErr.RequestID,
		})
		return
	}

	if message == "" && err != nil {
		message = err.Error()
	}
	reqCtx.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{
		Success: false,
		Message: message,
		Code:    string(platformerrors.ErrorTypeInternal),
	})
}

// HandleNewError creates a typed error at the handler layer and handles it.
func HandleNewError(reqCtx *gin.Context, errorType platformerrors.ErrorType, message string) {
	ctx := reqCtx.Request.Context()
	err := platformerrors.NewError(ctx, platformerrors.LayerHandler, errorType, message, nil)
	HandleError(reqCtx, err, message)
}
