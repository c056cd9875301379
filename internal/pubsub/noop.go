package pubsub

import "github.com/charmbracelet/log"

// noop is used when no GCP project is configured. Messages are dropped.
type noop struct{}

// NewNoop returns a PubSubClient that logs and discards outgoing messages.
func NewNoop() PubSubClient {
	return noop{}
}

func (noop) SendMessage(topic EventType, data any) error {
	log.Debug("Pub/Sub disabled, dropping message", "topic", topic)
	return nil
}

func (noop) ProcessMessage(data []byte, returnValue any) error {
	return decode(data, returnValue)
}

func (noop) Close() error { return nil }

// Enabled reports whether messages sent through client reach a real topic.
func Enabled(client PubSubClient) bool {
	_, dropped := client.(noop)
	return !dropped
}
