package inbox

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/anhtran/folio-api/adapters/event"
	"github.com/anhtran/folio-api/internal/domain/inbox"
	"github.com/anhtran/folio-api/pkg/apperror"
	"github.com/anhtran/folio-api/pkg/logger"
)

var tracer = otel.Tracer("inbox_manager")

// EventPublisher is the slice of the kafka producer the inbox needs.
type EventPublisher interface {
	PublishMessageEvent(ctx context.Context, payload event.MessageEventPayload) error
}

// Snapshot is one materialization of the message list, newest first.
type Snapshot struct {
	Messages []*inbox.Message
}

// InboxManager maintains a live, push-updated view of contact messages.
// It holds no list itself: every change notification triggers a full
// re-materialization from the repository, so a successful MarkRead becomes
// visible to subscribers only when its notification arrives.
type InboxManager struct {
	repo     inbox.Repository
	notifier inbox.Notifier
	events   EventPublisher
	logger   logger.Logger
}

func NewInboxManager(repo inbox.Repository, notifier inbox.Notifier, events EventPublisher, log logger.Logger) *InboxManager {
	return &InboxManager{repo: repo, notifier: notifier, events: events, logger: log}
}

// Subscribe opens a live view over the message collection. The first snapshot
// is delivered as soon as the initial materialization completes; afterwards a
// new snapshot follows every remote change. The subscription runs until the
// context is canceled or the release function is called; release is safe to
// call more than once, and a released subscription never publishes again.
func (m *InboxManager) Subscribe(ctx context.Context) (<-chan Snapshot, func(), error) {
	ticks, releaseTicks, err := m.notifier.Subscribe(ctx)
	if err != nil {
		return nil, nil, apperror.NewUnavailable("failed to open inbox subscription", err)
	}

	out := make(chan Snapshot, 1)
	go func() {
		defer close(out)

		m.publish(ctx, out)
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-ticks:
				if !ok {
					return
				}
				m.publish(ctx, out)
			}
		}
	}()

	return out, releaseTicks, nil
}

// publish re-materializes the ordered list and delivers it, keeping only the
// newest snapshot for a consumer that has fallen behind.
func (m *InboxManager) publish(ctx context.Context, out chan Snapshot) {
	messages, err := m.repo.ListNewestFirst(ctx)
	if err != nil {
		m.logger.Error("Failed to materialize inbox snapshot", err)
		return
	}

	snapshot := Snapshot{Messages: messages}
	select {
	case out <- snapshot:
		return
	default:
	}
	select {
	case <-out:
	default:
	}
	select {
	case out <- snapshot:
	default:
	}
}

// List returns one materialization without a live subscription.
func (m *InboxManager) List(ctx context.Context) ([]*inbox.Message, error) {
	return m.repo.ListNewestFirst(ctx)
}

// MarkRead flips read=true on exactly one message. Idempotent at the data
// level. The in-memory view is not mutated here: subscribers observe the
// change when the store's notification arrives.
func (m *InboxManager) MarkRead(ctx context.Context, id uuid.UUID) error {
	ctx, span := tracer.Start(ctx, "MarkRead")
	defer span.End()

	if err := m.repo.MarkRead(ctx, id); err != nil {
		span.RecordError(err)
		return err
	}

	if err := m.notifier.NotifyChanged(ctx); err != nil {
		m.logger.Warn("Failed to notify inbox change", zap.Error(err))
	}
	m.emit(ctx, event.EventMessageRead, id)
	return nil
}

// Receive persists a visitor inquiry from the public contact form with a
// server-assigned timestamp and read=false.
func (m *InboxManager) Receive(ctx context.Context, name, email, body string) (*inbox.Message, error) {
	ctx, span := tracer.Start(ctx, "Receive")
	defer span.End()

	msg := &inbox.Message{
		ID:    uuid.New(),
		Name:  name,
		Email: email,
		Body:  body,
	}
	if err := msg.Validate(); err != nil {
		return nil, apperror.NewInvalidInput("message validation failed", err)
	}

	if err := m.repo.Insert(ctx, msg); err != nil {
		span.RecordError(err)
		return nil, err
	}

	if err := m.notifier.NotifyChanged(ctx); err != nil {
		m.logger.Warn("Failed to notify inbox change", zap.Error(err))
	}
	m.emit(ctx, event.EventMessageReceived, msg.ID)
	return msg, nil
}

func (m *InboxManager) emit(ctx context.Context, eventType string, id uuid.UUID) {
	if m.events == nil {
		return
	}
	payload := event.MessageEventPayload{
		EventType: eventType,
		MessageID: id.String(),
		Timestamp: time.Now().UTC(),
	}
	if err := m.events.PublishMessageEvent(ctx, payload); err != nil {
		m.logger.Error("Failed to publish message event", err, zap.String("message_id", id.String()))
	}
}
