package message

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"chatterbox/internal/delivery/http/response"
	dom "chatterbox/internal/domain/entity"
	"chatterbox/internal/pkg/customerrors"
	srvMessage "chatterbox/internal/usecase/message"

	"github.com/go-chi/chi/v5"
)

const maxBodyBytes = 1 << 20

const messageNotFound = "Message not found"

type MessageService interface {
	ListMessages(ctx context.Context) ([]dom.Message, error)
	CreateMessage(ctx context.Context, in srvMessage.CreateMessageInput) (dom.Message, error)
	UpdateMessage(ctx context.Context, id int64, patch *srvMessage.MessagePatch) (dom.Message, error)
	DeleteMessage(ctx context.Context, id int64) error
}

type MessageHandler struct {
	MessSrv MessageService
	logger  *slog.Logger
}

func NewMessageHandler(messSrv MessageService, logger *slog.Logger) *MessageHandler {
	return &MessageHandler{
		MessSrv: messSrv,
		logger:  logger,
	}
}

// /messages
func (h *MessageHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.ListMessages)
	r.Post("/", h.CreateMessage)
	r.Patch("/{id:[0-9]+}", h.UpdateMessage)
	r.Delete("/{id:[0-9]+}", h.DeleteMessage)
}

// pattern: /messages
// method:  GET
// info:    all messages, oldest first
func (h *MessageHandler) ListMessages(w http.ResponseWriter, r *http.Request) {
	messages, err := h.MessSrv.ListMessages(r.Context())
	if err != nil {
		h.logger.Error("failed to list messages", slog.String("error", err.Error()))
		h.writeErrors(w, http.StatusInternalServerError, "failed to list messages")
		return
	}
	h.writeJSON(w, http.StatusOK, messages)
}

// pattern: /messages
// method:  POST
// info:    create a message from {body, username}
func (h *MessageHandler) CreateMessage(w http.ResponseWriter, r *http.Request) {
	raw, err := readObject(w, r)
	if err != nil {
		h.logger.Debug("rejected create payload", slog.String("error", err.Error()))
		h.writeErrors(w, http.StatusBadRequest, err.Error())
		return
	}

	var request srvMessage.CreateMessageInput
	if err := json.Unmarshal(raw, &request); err != nil {
		h.logger.Debug("failed to decode request", slog.String("error", err.Error()))
		h.writeErrors(w, http.StatusBadRequest, fmt.Sprintf("%s: %s", customerrors.ErrDecodingRequestBody, err))
		return
	}

	message, err := h.MessSrv.CreateMessage(r.Context(), request)
	if err != nil {
		var verr *customerrors.ValidationError
		if errors.As(err, &verr) {
			h.writeErrors(w, http.StatusBadRequest, verr.Messages...)
			return
		}
		h.logger.Error("failed to create message", slog.String("error", err.Error()))
		h.writeErrors(w, http.StatusBadRequest, "failed to save message")
		return
	}

	h.writeJSON(w, http.StatusCreated, message)
}

// pattern: /messages/{id}
// method:  PATCH
// info:    change the body of a message
func (h *MessageHandler) UpdateMessage(w http.ResponseWriter, r *http.Request) {
	id, ok := messageID(r)
	if !ok {
		h.writeNotFound(w)
		return
	}

	patch, decodeErr := decodePatch(w, r)

	message, err := h.MessSrv.UpdateMessage(r.Context(), id, patch)
	if err != nil {
		var verr *customerrors.ValidationError
		switch {
		case errors.Is(err, customerrors.ErrMessageNotFound):
			h.writeNotFound(w)
		case errors.Is(err, customerrors.ErrNoUpdateData):
			if decodeErr != nil && !errors.Is(decodeErr, customerrors.ErrNoData) {
				h.writeErrors(w, http.StatusBadRequest, decodeErr.Error())
				return
			}
			h.writeErrors(w, http.StatusBadRequest, customerrors.ErrNoUpdateData.Error())
		case errors.As(err, &verr):
			h.writeErrors(w, http.StatusBadRequest, verr.Messages...)
		default:
			h.logger.Error("failed to update message", slog.Int64("id", id), slog.String("error", err.Error()))
			h.writeErrors(w, http.StatusBadRequest, "failed to update message")
		}
		return
	}

	h.writeJSON(w, http.StatusOK, message)
}

// pattern: /messages/{id}
// method:  DELETE
// info:    remove a message
func (h *MessageHandler) DeleteMessage(w http.ResponseWriter, r *http.Request) {
	id, ok := messageID(r)
	if !ok {
		h.writeNotFound(w)
		return
	}

	if err := h.MessSrv.DeleteMessage(r.Context(), id); err != nil {
		if errors.Is(err, customerrors.ErrMessageNotFound) {
			h.writeNotFound(w)
			return
		}
		h.logger.Error("failed to delete message", slog.Int64("id", id), slog.String("error", err.Error()))
		h.writeErrors(w, http.StatusInternalServerError, "failed to delete message")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *MessageHandler) writeJSON(w http.ResponseWriter, status int, payload any) {
	if err := response.JSON(w, status, payload); err != nil {
		h.logger.Error("failed to encode response", slog.String("error", err.Error()))
	}
}

func (h *MessageHandler) writeErrors(w http.ResponseWriter, status int, messages ...string) {
	if err := response.Errors(w, status, messages...); err != nil {
		h.logger.Error("failed to encode response", slog.String("error", err.Error()))
	}
}

func (h *MessageHandler) writeNotFound(w http.ResponseWriter) {
	if err := response.Error(w, http.StatusNotFound, messageNotFound); err != nil {
		h.logger.Error("failed to encode response", slog.String("error", err.Error()))
	}
}

// messageID reports false for ids that cannot address a row.
func messageID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// readObject returns the request body if it is a non-empty JSON object.
// An absent body, `null` and `{}` yield customerrors.ErrNoData.
func readObject(w http.ResponseWriter, r *http.Request) (json.RawMessage, error) {
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", customerrors.ErrDecodingRequestBody, err)
	}

	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, customerrors.ErrNoData
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("%w: %s", customerrors.ErrDecodingRequestBody, err)
	}
	if len(fields) == 0 {
		return nil, customerrors.ErrNoData
	}
	return raw, nil
}

// decodePatch returns a nil patch with the reason when the body carries no
// usable update.
func decodePatch(w http.ResponseWriter, r *http.Request) (*srvMessage.MessagePatch, error) {
	raw, err := readObject(w, r)
	if err != nil {
		return nil, err
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("%w: %s", customerrors.ErrDecodingRequestBody, err)
	}

	patch := &srvMessage.MessagePatch{}
	if body, ok := fields["body"]; ok {
		var s *string
		if err := json.Unmarshal(body, &s); err != nil || s == nil {
			return nil, errors.New("body must be a string")
		}
		patch.Body = s
	}
	return patch, nil
}
