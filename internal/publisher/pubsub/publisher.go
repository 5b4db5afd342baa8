// Package pubsub publishes stored-spirit events to Google Cloud Pub/Sub.
package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cloud.google.com/go/pubsub"
	"google.golang.org/api/option"
)

// EventAttribute carries the event name on every message.
const EventAttribute = "event_type"

// Publisher sends JSON events to a single Pub/Sub topic.
type Publisher struct {
	client *pubsub.Client
	topic  *pubsub.Topic
	owned  bool
}

// New connects to Pub/Sub and targets topicID in projectID.
func New(ctx context.Context, projectID, topicID string, opts ...option.ClientOption) (*Publisher, error) {
	if projectID == "" || topicID == "" {
		return nil, fmt.Errorf("pubsub project and topic are required")
	}
	client, err := pubsub.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("create pubsub client: %w", err)
	}
	p := NewWithClient(client, topicID)
	p.owned = true
	return p, nil
}

// NewWithClient publishes through an existing client. Close leaves the client open.
func NewWithClient(client *pubsub.Client, topicID string) *Publisher {
	return &Publisher{client: client, topic: client.Topic(topicID)}
}

// Publish marshals payload to JSON and waits for the server to acknowledge it.
// event is sent as the event_type attribute.
func (p *Publisher) Publish(ctx context.Context, event string, payload any) (string, error) {
	if p == nil || p.topic == nil {
		return "", fmt.Errorf("pubsub publisher is not configured")
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal payload: %w", err)
	}
	msg := &pubsub.Message{
		Data: data,
		Attributes: map[string]string{
			EventAttribute: event,
			"published_at": time.Now().UTC().Format(time.RFC3339),
		},
	}
	id, err := p.topic.Publish(ctx, msg).Get(ctx)
	if err != nil {
		return "", fmt.Errorf("publish %s: %w", event, err)
	}
	return id, nil
}

// Close flushes pending messages and closes the client when New created it.
func (p *Publisher) Close() error {
	p.topic.Stop()
	if !p.owned {
		return nil
	}
	if err := p.client.Close(); err != nil {
		return fmt.Errorf("close pubsub client: %w", err)
	}
	return nil
}
