package services

import (
	"context"

	"sosapp/internal/models"
	"sosapp/internal/ports"
	"sosapp/internal/utils"
	"sosapp/pkg/logger"
	"sosapp/pkg/sms"
)

// SMSDispatcher delivers location texts through the configured SMS provider.
type SMSDispatcher struct {
	provider sms.SMSProvider
	logger   *logger.Logger
}

var _ ports.MessageDispatcher = (*SMSDispatcher)(nil)

// NewSMSDispatcher accepts a nil provider; the dispatcher then reports the
// transport as unavailable.
func NewSMSDispatcher(provider sms.SMSProvider, log *logger.Logger) *SMSDispatcher {
	d := &SMSDispatcher{
		provider: provider,
		logger:   log.WithComponent("sms_dispatcher"),
	}
	if provider != nil {
		d.logger = d.logger.WithField("provider", provider.Name())
	}
	return d
}

func (d *SMSDispatcher) IsAvailable(ctx context.Context) bool {
	return d.provider != nil && d.provider.IsAvailable()
}

func (d *SMSDispatcher) Send(ctx context.Context, recipient, text string) models.DeliveryOutcome {
	outcome := models.DeliveryOutcome{Recipient: recipient}

	if d.provider == nil {
		outcome.Error = models.ErrTransportUnavailable.Error()
		return outcome
	}

	resp, err := d.provider.SendSMS(ctx, &sms.SMSRequest{
		To:      utils.NormalizePhone(recipient),
		Message: text,
		Type:    "transactional",
	})
	if err != nil {
		outcome.Error = err.Error()
		d.logger.WithContext(ctx).WithError(err).WithField("recipient", utils.MaskPhone(recipient)).Debug("SMS send failed")
		return outcome
	}

	outcome.MessageID = resp.MessageID
	if sms.IsFailure(resp.Status) {
		outcome.Error = resp.Error
		if outcome.Error == "" {
			outcome.Error = "message " + resp.Status
		}
		return outcome
	}

	outcome.Succeeded = true
	return outcome
}
