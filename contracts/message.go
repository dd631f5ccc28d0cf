package contracts

import (
	"time"

	"github.com/google/uuid"
)

// Message is the interface payloads implement when they want identity and
// correlation metadata. The dispatch core itself accepts any payload type;
// configuration-driven setup deals in Message values so replies can be
// correlated with the request that caused them.
type Message interface {
	GetID() string
	GetTimestamp() time.Time
	GetCorrelationID() string
	SetCorrelationID(correlationID string)
}

// BaseMessage provides common fields for message payloads
type BaseMessage struct {
	ID            string    `json:"id"`
	Timestamp     time.Time `json:"timestamp"`
	CorrelationID string    `json:"correlationId,omitempty"`
}

// NewBaseMessage creates a new base message with generated ID and current timestamp
func NewBaseMessage() BaseMessage {
	return BaseMessage{
		ID:        uuid.New().String(),
		Timestamp: time.Now().UTC(),
	}
}

// GetID returns the message ID
func (m BaseMessage) GetID() string {
	return m.ID
}

// GetTimestamp returns the message timestamp
func (m BaseMessage) GetTimestamp() time.Time {
	return m.Timestamp
}

// GetCorrelationID returns the correlation ID
func (m BaseMessage) GetCorrelationID() string {
	return m.CorrelationID
}

// SetCorrelationID sets the correlation ID
func (m *BaseMessage) SetCorrelationID(correlationID string) {
	m.CorrelationID = correlationID
}

// NewReplyTo creates a base message correlated with the message it answers.
// If the request carries a correlation ID the reply inherits it; otherwise
// the request's own ID becomes the correlation ID.
func NewReplyTo(request Message) BaseMessage {
	reply := NewBaseMessage()
	if cid := request.GetCorrelationID(); cid != "" {
		reply.CorrelationID = cid
	} else {
		reply.CorrelationID = request.GetID()
	}
	return reply
}
