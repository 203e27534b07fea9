package push

import (
	"context"
	"fmt"

	"github.com/sideshow/apns2"
	"github.com/sideshow/apns2/payload"
	"github.com/sideshow/apns2/token"
)

type APNSProvider struct {
	client *apns2.Client
	topic  string
}

func NewAPNSProvider(keyFile, keyID, teamID, topic string, production bool) (*APNSProvider, error) {
	authKey, err := token.AuthKeyFromFile(keyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load auth key: %w", err)
	}

	tokenProvider := &token.Token{
		AuthKey: authKey,
		KeyID:   keyID,
		TeamID:  teamID,
	}

	client := apns2.NewTokenClient(tokenProvider)
	if production {
		client = client.Production()
	} else {
		client = client.Development()
	}

	return &APNSProvider{
		client: client,
		topic:  topic,
	}, nil
}

func (a *APNSProvider) Name() string {
	return "apns"
}

func (a *APNSProvider) SendNotification(ctx context.Context, request *NotificationRequest) (*NotificationResponse, error) {
	notification := buildAPNSNotification(a.topic, request)

	response, err := a.client.PushWithContext(ctx, notification)
	if err != nil {
		return &NotificationResponse{
			Success: false,
			Error:   err.Error(),
			Token:   request.Token,
		}, fmt.Errorf("apns push: %w", err)
	}

	if response.Sent() {
		return &NotificationResponse{
			MessageID: response.ApnsID,
			Success:   true,
			Token:     request.Token,
		}, nil
	}

	return &NotificationResponse{
		Success: false,
		Error:   response.Reason,
		Token:   request.Token,
	}, fmt.Errorf("APNS error: %s", response.Reason)
}

func buildAPNSNotification(topic string, request *NotificationRequest) *apns2.Notification {
	p := payload.NewPayload().AlertTitle(request.Title).AlertBody(request.Body)

	if request.Sound != "" {
		p = p.Sound(request.Sound)
	}

	for key, value := range request.Data {
		p = p.Custom(key, value)
	}

	notification := &apns2.Notification{
		DeviceToken: request.Token,
		Topic:       topic,
		Payload:     p,
		PushType:    apns2.PushTypeAlert,
	}

	if request.Priority == "high" {
		notification.Priority = apns2.PriorityHigh
	} else {
		notification.Priority = apns2.PriorityLow
	}

	if request.CollapseKey != "" {
		notification.CollapseID = request.CollapseKey
	}

	return notification
}
