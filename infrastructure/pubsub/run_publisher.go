package pubsub

import (
	"context"
	"encoding/json"
	"fmt"

	"cloud.google.com/go/pubsub"
	"playlist-exporter/domain/dto"
	"playlist-exporter/infrastructure/logger"
)

// NewClient returns nil when no project is configured
func NewClient(ctx context.Context, projectID string) (*pubsub.Client, error) {
	if projectID == "" {
		return nil, nil
	}
	client, err := pubsub.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to create pubsub client: %w", err)
	}
	return client, nil
}

// RunPublisher announces finished export runs on a Pub/Sub topic
type RunPublisher struct {
	client  *pubsub.Client
	topicID string
}

func NewRunPublisher(client *pubsub.Client, topicID string) *RunPublisher {
	return &RunPublisher{client: client, topicID: topicID}
}

func (p *RunPublisher) Notify(ctx context.Context, event dto.RunEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	topic := p.client.Topic(p.topicID)
	defer topic.Stop()

	// Create the topic if it doesn't exist.
	exists, err := topic.Exists(ctx)
	if err != nil {
		return err
	}
	if !exists {
		logger.GetLogger().WithField("topic", p.topicID).Info("Topic doesn't exist - creating it")
		if _, err := p.client.CreateTopic(ctx, p.topicID); err != nil {
			return err
		}
	}

	serverID, err := topic.Publish(ctx, &pubsub.Message{
		Data: payload,
		Attributes: map[string]string{
			"playlistId": event.PlaylistID,
			"status":     event.Status,
		},
	}).Get(ctx)
	if err != nil {
		return err
	}

	logger.GetLogger().WithField("server ID", serverID).Info("Run event published")
	return nil
}
