package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/knowyourdocs/docchat/internal/domain/ingest"
	"github.com/knowyourdocs/docchat/internal/domain/rag"
	"github.com/knowyourdocs/docchat/internal/infrastructure/metrics"
	"github.com/knowyourdocs/docchat/internal/interfaces/httpserver/middlewares"
	"github.com/knowyourdocs/docchat/internal/interfaces/httpserver/requests"
	"github.com/knowyourdocs/docchat/internal/interfaces/httpserver/responses"
	"github.com/knowyourdocs/docchat/internal/utils/platformerrors"
)

// FileHandler serves document upload and query endpoints.
type FileHandler struct {
	ingestService  *ingest.Service
	ragService     *rag.Service
	maxUploadBytes int64
	streamTimeout  time.Duration
	log            zerolog.Logger
}

// NewFileHandler builds the file handler. streamTimeout bounds one streamed
// answer end to end; zero disables the deadline.
func NewFileHandler(ingestService *ingest.Service, ragService *rag.Service, maxUploadBytes int64, streamTimeout time.Duration, log zerolog.Logger) *FileHandler {
	return &FileHandler{
		ingestService:  ingestService,
		ragService:     ragService,
		maxUploadBytes: maxUploadBytes,
		streamTimeout:  streamTimeout,
		log:            log,
	}
}

// Upload ingests one multipart document into the caller's conversation.
func (h *FileHandler) Upload(reqCtx *gin.Context) {
	ownerID := reqCtx.PostForm("ownerId")
	conversationID := reqCtx.PostForm("conversationId")

	fileHeader, err := reqCtx.FormFile("file")
	if err != nil {
		metrics.UploadsTotal.WithLabelValues("error").Inc()
		responses.HandleNewError(reqCtx, platformerrors.ErrorTypeValidation, "file is missing")
		return
	}
	if h.maxUploadBytes > 0 && fileHeader.Size > h.maxUploadBytes {
		metrics.UploadsTotal.WithLabelValues("error").Inc()
		responses.HandleNewError(reqCtx, platformerrors.ErrorTypeValidation,
			fmt.Sprintf("file exceeds the %d byte upload limit", h.maxUploadBytes))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		metrics.UploadsTotal.WithLabelValues("error").Inc()
		responses.HandleNewError(reqCtx, platformerrors.ErrorTypeValidation, "file could not be read")
		return
	}
	defer file.Close()

	buf, err := io.ReadAll(file)
	if err != nil {
		metrics.UploadsTotal.WithLabelValues("error").Inc()
		responses.HandleNewError(reqCtx, platformerrors.ErrorTypeValidation, "file could not be read")
		return
	}

	result, err := h.ingestService.Ingest(reqCtx.Request.Context(), ingest.Params{
		OwnerID:        ownerID,
		ConversationID: conversationID,
		FileName:       fileHeader.Filename,
		FileBuffer:     buf,
	})
	if err != nil {
		metrics.UploadsTotal.WithLabelValues("error").Inc()
		responses.HandleError(reqCtx, err, "")
		return
	}

	metrics.UploadsTotal.WithLabelValues("ok").Inc()
	metrics.UploadBytesTotal.Add(float64(len(buf)))
	metrics.ChunksProcessedTotal.Add(float64(result.ChunksProcessed))

	reqCtx.JSON(200, responses.UploadResponse{
		Success:         true,
		ConversationID:  result.Conversation.PublicID,
		ChunksProcessed: result.ChunksProcessed,
		DocDetails:      result.Document,
	})
}

// Query answers one question, streaming over SSE unless stream=false.
func (h *FileHandler) Query(reqCtx *gin.Context) {
	var req requests.QueryRequest
	if err := req.Bind(reqCtx); err != nil {
		responses.HandleNewError(reqCtx, platformerrors.ErrorTypeValidation, "malformed query request")
		return
	}

	params := rag.AskParams{
		OwnerID:        req.OwnerID,
		ConversationID: req.ConversationID,
		Title:          req.Title,
		QueryText:      req.QueryText,
	}

	if req.WantsStream() {
		h.streamQuery(reqCtx, params)
		return
	}

	start := time.Now()
	result, err := h.ragService.Ask(reqCtx.Request.Context(), params)
	if err != nil {
		metrics.QueriesTotal.WithLabelValues("sync", "error").Inc()
		responses.HandleError(reqCtx, err, "")
		return
	}
	metrics.QueriesTotal.WithLabelValues("sync", "ok").Inc()
	metrics.GenerationDuration.WithLabelValues("sync").Observe(time.Since(start).Seconds())

	reqCtx.JSON(200, responses.QueryResponse{
		Success:        true,
		ConversationID: result.Conversation.PublicID,
		Answer:         result.Answer,
	})
}

// streamQuery forwards answer deltas over SSE. The chatId event fires once
// when this request created the conversation; each delta is an unnamed data
// event carrying the JSON-encoded text; end terminates a successful stream.
// A disconnected or failed stream persists nothing.
func (h *FileHandler) streamQuery(reqCtx *gin.Context, params rag.AskParams) {
	ctx := reqCtx.Request.Context()
	if h.streamTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.streamTimeout)
		defer cancel()
	}
	start := time.Now()

	session, err := h.ragService.OpenStream(ctx, params)
	if err != nil {
		metrics.QueriesTotal.WithLabelValues("stream", "error").Inc()
		responses.HandleError(reqCtx, err, "")
		return
	}
	defer session.Close()

	flusher, ok := middlewares.PrepareSSE(reqCtx)
	if !ok {
		metrics.QueriesTotal.WithLabelValues("stream", "error").Inc()
		responses.HandleNewError(reqCtx, platformerrors.ErrorTypeInternal, "streaming unsupported by connection")
		return
	}

	if session.Created {
		if err := h.writeSSEEvent(reqCtx, flusher, "chatId", session.Conversation.PublicID); err != nil {
			return
		}
	}

	var full strings.Builder
	for {
		select {
		case <-ctx.Done():
			// Client left or the stream deadline passed; the partial
			// answer is discarded.
			metrics.QueriesTotal.WithLabelValues("stream", "cancelled").Inc()
			return
		default:
		}

		delta, err := session.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			h.log.Warn().Err(err).Msg("stream broke mid-answer")
			metrics.QueriesTotal.WithLabelValues("stream", "error").Inc()
			_ = h.writeSSEEvent(reqCtx, flusher, "error", "generation failed")
			return
		}

		payload, err := json.Marshal(delta)
		if err != nil {
			continue
		}
		if err := h.writeSSEData(reqCtx, flusher, string(payload)); err != nil {
			metrics.QueriesTotal.WithLabelValues("stream", "cancelled").Inc()
			return
		}
		metrics.StreamDeltasTotal.Inc()
		full.WriteString(delta)
	}

	if err := session.Finalize(ctx, full.String()); err != nil {
		h.log.Error().Err(err).Msg("failed to persist streamed answer")
		metrics.QueriesTotal.WithLabelValues("stream", "error").Inc()
		_ = h.writeSSEEvent(reqCtx, flusher, "error", "failed to save answer")
		return
	}

	metrics.QueriesTotal.WithLabelValues("stream", "ok").Inc()
	metrics.GenerationDuration.WithLabelValues("stream").Observe(time.Since(start).Seconds())
	h.log.Info().
		Str("conversation_id", session.Conversation.PublicID).
		Bool("grounded", session.Grounded).
		Msg("query answered")
	_ = h.writeSSEEvent(reqCtx, flusher, "end", "done")
}

func (h *FileHandler) writeSSEData(reqCtx *gin.Context, flusher interface{ Flush() }, data string) error {
	if _, err := reqCtx.Writer.WriteString("data: " + data + "\n\n"); err != nil {
		return err
	}
	flusher.Flush()
	return nil
}

func (h *FileHandler) writeSSEEvent(reqCtx *gin.Context, flusher interface{ Flush() }, event, data string) error {
	if _, err := reqCtx.Writer.WriteString("event: " + event + "\ndata: " + data + "\n\n"); err != nil {
		return err
	}
	flusher.Flush()
	return nil
}
