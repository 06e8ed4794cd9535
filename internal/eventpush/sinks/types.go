// Package sinks delivers encoded balance events to external systems.
package sinks

import "context"

type Message struct {
	// Key groups messages that must stay ordered, the player id.
	Key  string
	Body []byte
}

type Adapter interface {
	Name() string
	Send(ctx context.Context, endpoint, secret string, msg Message) error
}
