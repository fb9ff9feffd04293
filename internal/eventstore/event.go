package eventstore

import "time"

// Event represents one recorded occurrence of a project build.
type Event interface {
	// ID returns the store-assigned identifier, zero before it was stored.
	ID() int64
	// BuildID returns the build invocation this event belongs to.
	BuildID() string
	// Type returns the event type name.
	Type() string
	// Timestamp returns when the event occurred.
	Timestamp() time.Time
	// Payload returns the JSON event data.
	Payload() []byte
	// Metadata returns optional event metadata.
	Metadata() map[string]string
}

// BaseEvent provides a default implementation of Event. Its fields are
// excluded from payload encoding of embedding events.
type BaseEvent struct {
	EventID        int64             `json:"-"`
	EventBuildID   string            `json:"-"`
	EventType      string            `json:"-"`
	EventTimestamp time.Time         `json:"-"`
	EventPayload   []byte            `json:"-"`
	EventMetadata  map[string]string `json:"-"`
}

func (e *BaseEvent) ID() int64                   { return e.EventID }
func (e *BaseEvent) BuildID() string             { return e.EventBuildID }
func (e *BaseEvent) Type() string                { return e.EventType }
func (e *BaseEvent) Timestamp() time.Time        { return e.EventTimestamp }
func (e *BaseEvent) Payload() []byte             { return e.EventPayload }
func (e *BaseEvent) Metadata() map[string]string { return e.EventMetadata }
