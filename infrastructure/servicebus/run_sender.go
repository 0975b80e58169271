package servicebus

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/messaging/azservicebus"
	"playlist-exporter/domain/dto"
	"playlist-exporter/infrastructure/logger"
)

// NewClient authenticates with the default Azure credential chain.
// It returns nil when no namespace is configured.
func NewClient(namespace string) (*azservicebus.Client, error) {
	if namespace == "" {
		return nil, nil
	}
	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load azure credential: %w", err)
	}
	client, err := azservicebus.NewClient(namespace, cred, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create service bus client: %w", err)
	}
	return client, nil
}

// RunSender forwards export run events to a Service Bus queue
type RunSender struct {
	client *azservicebus.Client
	queue  string
}

func NewRunSender(client *azservicebus.Client, queue string) *RunSender {
	return &RunSender{client: client, queue: queue}
}

func (s *RunSender) Notify(ctx context.Context, event dto.RunEvent) error {
	if s.client == nil {
		return nil
	}
	msg, err := newMessage(event)
	if err != nil {
		return err
	}

	sender, err := s.client.NewSender(s.queue, nil)
	if err != nil {
		return fmt.Errorf("failed to create sender: %w", err)
	}
	defer func() {
		if err := sender.Close(context.Background()); err != nil {
			logger.GetLogger().WithField("error", err).Error("Error while closing sender.")
		}
	}()

	if err := sender.SendMessage(ctx, msg, nil); err != nil {
		return fmt.Errorf("failed to send run event: %w", err)
	}
	return nil
}

func newMessage(event dto.RunEvent) (*azservicebus.Message, error) {
	body, err := json.Marshal(event)
	if err != nil {
		return nil, err
	}
	contentType := "application/json"
	subject := "export." + event.Status
	return &azservicebus.Message{
		Body:        body,
		ContentType: &contentType,
		Subject:     &subject,
		ApplicationProperties: map[string]any{
			"playlistId": event.PlaylistID,
			"rowCount":   event.RowCount,
		},
	}, nil
}
