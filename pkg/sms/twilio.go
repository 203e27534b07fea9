package sms

import (
	"context"
	"fmt"

	"github.com/twilio/twilio-go"
	api "github.com/twilio/twilio-go/rest/api/v2010"
)

type TwilioProvider struct {
	client     *twilio.RestClient
	accountSID string
	fromNumber string
}

func NewTwilioProvider(accountSID, authToken, fromNumber string) *TwilioProvider {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})

	return &TwilioProvider{
		client:     client,
		accountSID: accountSID,
		fromNumber: fromNumber,
	}
}

func (t *TwilioProvider) Name() string {
	return "twilio"
}

func (t *TwilioProvider) IsAvailable() bool {
	return t.accountSID != "" && t.fromNumber != ""
}

func (t *TwilioProvider) SendSMS(ctx context.Context, request *SMSRequest) (*SMSResponse, error) {
	if err := ctx.Err(); err != nil {
		return &SMSResponse{Status: StatusFailed, Error: err.Error()}, err
	}

	params := &api.CreateMessageParams{}
	params.SetTo(request.To)
	params.SetFrom(t.getFromNumber(request.From))
	params.SetBody(request.Message)

	resp, err := t.client.Api.CreateMessage(params)
	if err != nil {
		return &SMSResponse{
			Status: StatusFailed,
			Error:  err.Error(),
		}, fmt.Errorf("twilio create message: %w", err)
	}

	response := &SMSResponse{}
	if resp.Sid != nil {
		response.MessageID = *resp.Sid
	}
	if resp.Status != nil {
		response.Status = string(*resp.Status)
	}
	if resp.ErrorMessage != nil {
		response.Error = *resp.ErrorMessage
	}

	return response, nil
}

func (t *TwilioProvider) getFromNumber(from string) string {
	if from != "" {
		return from
	}
	return t.fromNumber
}
