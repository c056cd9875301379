package pubsub

import "cloud.google.com/go/pubsub"

type client struct {
	client   *pubsub.Client
	teardown func()
}

// EventType represents the type of event/message sent via pubsub.
// It doubles as the topic name.
type EventType string

const (
	EventSettleMatch  EventType = "settle-match"
	EventMatchSettled EventType = "match-settled"
)

// PushMessage is the JSON envelope Pub/Sub push subscriptions deliver.
type PushMessage struct {
	Subscription string `json:"subscription"`
	Message      struct {
		Data      string `json:"data"`
		MessageID string `json:"messageId"`
	} `json:"message"`
}
