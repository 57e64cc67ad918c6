package message

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strings"
	"time"

	dom "chatterbox/internal/domain/entity"
	"chatterbox/internal/domain/events"
	"chatterbox/internal/pkg/customerrors"
	"chatterbox/internal/pkg/metrics"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
)

//go:generate mockgen -source=message_usecase.go -destination=mock/message_mocks.go -package=mock

type MessageRepository interface {
	ListMessages(ctx context.Context) ([]dom.Message, error)
	CreateMessage(ctx context.Context, msg dom.Message) (dom.Message, error)
	UpdateMessage(ctx context.Context, id int64, apply func(*dom.Message) error) (dom.Message, error)
	DeleteMessage(ctx context.Context, id int64) error
}

type EventPublisher interface {
	Publish(ctx context.Context, event events.MessageEvent) error
}

type CreateMessageInput struct {
	Body     string `json:"body" validate:"required"`
	Username string `json:"username" validate:"required"`
}

// MessagePatch holds the mutable fields of a message. A nil field is left as is.
type MessagePatch struct {
	Body *string `json:"body" validate:"omitnil,min=1"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

type MessageService struct {
	Msg    MessageRepository
	Events EventPublisher
	Logger *slog.Logger
	Clock  func() time.Time
}

func NewMessageService(msg MessageRepository, publisher EventPublisher, logger *slog.Logger) *MessageService {
	return &MessageService{
		Msg:    msg,
		Events: publisher,
		Logger: logger,
		Clock:  time.Now,
	}
}

func (m *MessageService) ListMessages(ctx context.Context) ([]dom.Message, error) {
	msgs, err := m.Msg.ListMessages(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	if msgs == nil {
		msgs = []dom.Message{}
	}
	return msgs, nil
}

func (m *MessageService) CreateMessage(ctx context.Context, in CreateMessageInput) (dom.Message, error) {
	if err := validateStruct(in); err != nil {
		return dom.Message{}, err
	}

	now := m.now()
	msg, err := m.Msg.CreateMessage(ctx, dom.Message{
		Body:      in.Body,
		Username:  in.Username,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return dom.Message{}, fmt.Errorf("failed to create message: %w", err)
	}

	metrics.MessagesProcessedTotal.WithLabelValues("create").Inc()
	m.publish(ctx, events.MessageEvent{
		Type:       events.MessageCreated,
		MessageID:  msg.ID,
		Body:       msg.Body,
		Username:   msg.Username,
		OccurredAt: now,
	})
	return msg, nil
}

// UpdateMessage applies patch to the message with the given id. The lookup
// happens first, so a missing message wins over a missing patch.
func (m *MessageService) UpdateMessage(ctx context.Context, id int64, patch *MessagePatch) (dom.Message, error) {
	var changed bool
	msg, err := m.Msg.UpdateMessage(ctx, id, func(msg *dom.Message) error {
		if patch == nil {
			return customerrors.ErrNoUpdateData
		}
		if err := validateStruct(patch); err != nil {
			return err
		}
		if patch.Body == nil {
			return nil
		}

		msg.Body = *patch.Body
		msg.UpdatedAt = m.advance(msg.UpdatedAt)
		changed = true
		return nil
	})
	if err != nil {
		return dom.Message{}, fmt.Errorf("failed to update message %d: %w", id, err)
	}

	if changed {
		metrics.MessagesProcessedTotal.WithLabelValues("update").Inc()
		m.publish(ctx, events.MessageEvent{
			Type:       events.MessageUpdated,
			MessageID:  msg.ID,
			Body:       msg.Body,
			Username:   msg.Username,
			OccurredAt: msg.UpdatedAt,
		})
	}
	return msg, nil
}

func (m *MessageService) DeleteMessage(ctx context.Context, id int64) error {
	if err := m.Msg.DeleteMessage(ctx, id); err != nil {
		return fmt.Errorf("failed to delete message %d: %w", id, err)
	}

	metrics.MessagesProcessedTotal.WithLabelValues("delete").Inc()
	m.publish(ctx, events.MessageEvent{
		Type:       events.MessageDeleted,
		MessageID:  id,
		OccurredAt: m.now(),
	})
	return nil
}

func (m *MessageService) publish(ctx context.Context, event events.MessageEvent) {
	if m.Events == nil {
		return
	}
	if err := m.Events.Publish(ctx, event); err != nil {
		metrics.EventsPublishFailedTotal.Inc()
		m.Logger.Warn("failed to publish event",
			slog.String("type", string(event.Type)),
			slog.Int64("message_id", event.MessageID),
			slog.String("error", err.Error()))
	}
}

// now is truncated to microseconds, the resolution postgres stores.
func (m *MessageService) now() time.Time {
	clock := m.Clock
	if clock == nil {
		clock = time.Now
	}
	return clock().UTC().Truncate(time.Microsecond)
}

// advance returns a timestamp strictly after prev.
func (m *MessageService) advance(prev time.Time) time.Time {
	now := m.now()
	if !now.After(prev) {
		return prev.Add(time.Microsecond)
	}
	return now
}

func validateStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %w", customerrors.ErrInvalidInput, err)
	}

	return &customerrors.ValidationError{
		Messages: lo.Map(verrs, func(fe validator.FieldError, _ int) string {
			switch fe.Tag() {
			case "required":
				return fe.Field() + " is required"
			case "min":
				return fe.Field() + " must not be empty"
			default:
				return fe.Field() + " is invalid"
			}
		}),
	}
}
