package services

import (
	"encoding/json"
	"log"
)

// EventPublisher publishes lifecycle events to the message broker.
// A nil publisher disables publishing; failures are logged, never fatal.
type EventPublisher interface {
	Publish(routingKey string, body []byte) error
}

func publishEvent(pub EventPublisher, routingKey string, payload map[string]interface{}) {
	if pub == nil {
		return
	}
	body, err := json.Marshal(payload)
	if err != nil {
		log.Printf("Failed to marshal %s event: %v", routingKey, err)
		return
	}
	if err := pub.Publish(routingKey, body); err != nil {
		log.Printf("Warning: failed to publish %s event: %v", routingKey, err)
	}
}
