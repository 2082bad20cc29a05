package inbox

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrMessageNotFound = errors.New("message not found")
	ErrNameRequired    = errors.New("name is required")
	ErrEmailRequired   = errors.New("email is required")
	ErrBodyRequired    = errors.New("message body is required")
)

// Message is one contact-form inquiry. Timestamp is server-assigned at
// creation; Read flips false to true exactly once and never back.
type Message struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Body      string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Read      bool      `json:"read"`
}

func (m *Message) Validate() error {
	if strings.TrimSpace(m.Name) == "" {
		return ErrNameRequired
	}
	if strings.TrimSpace(m.Email) == "" {
		return ErrEmailRequired
	}
	if strings.TrimSpace(m.Body) == "" {
		return ErrBodyRequired
	}
	return nil
}

type Repository interface {
	// Insert stores a new message; the timestamp is assigned by the store.
	Insert(ctx context.Context, m *Message) error
	// ListNewestFirst returns all messages ordered by timestamp descending.
	ListNewestFirst(ctx context.Context) ([]*Message, error)
	// MarkRead sets read=true on one message. Idempotent; ErrMessageNotFound
	// when no row matches.
	MarkRead(ctx context.Context, id uuid.UUID) error
}

// Notifier carries change notifications from the store to live subscribers.
// Subscribers re-materialize the list on every notification.
type Notifier interface {
	NotifyChanged(ctx context.Context) error
	// Subscribe returns a channel that receives one value per remote change
	// and a release function. Release is safe to call more than once.
	Subscribe(ctx context.Context) (<-chan struct{}, func(), error)
}
