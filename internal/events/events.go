// Copyright (c) 2026 Blog Team
// Blog - REST blog back end
// This source code is licensed under the MIT license found in the LICENSE file.

// Package events publishes domain events (post created, user registered, ...)
// to Kafka.
package events

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Event types.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
	// ActionRegistered is only used with the user resource.
	ActionRegistered = "registered"
)

var (
	// ErrBufferFull is returned by Publish when the producer cannot keep up.
	ErrBufferFull = errors.New("event buffer full")
	// ErrClosed is returned by Publish after Close.
	ErrClosed = errors.New("publisher closed")
)

// Event is a single domain event.
type Event struct {
	ID         uuid.UUID `json:"id"`
	Type       string    `json:"type"`
	Resource   string    `json:"resource"`
	ResourceID int       `json:"resourceId"`
	OccurredAt time.Time `json:"occurredAt"`
	Payload    any       `json:"payload,omitempty"`
}

// New builds an event of type "<resource>.<action>".
func New(resource, action string, id int, payload any) Event {
	return Event{
		ID:         uuid.New(),
		Type:       resource + "." + action,
		Resource:   resource,
		ResourceID: id,
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	}
}

// Key is the partitioning key of the event.
func (e Event) Key() string {
	return fmt.Sprintf("%s:%d", e.Resource, e.ResourceID)
}

// Publisher hands events to a transport.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
func (NopPublisher) Close() error                         { return nil }
