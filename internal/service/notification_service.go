package service

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/shiftboard/internal/config"
	"github.com/spec-kit/shiftboard/internal/events"
)

// NotificationService forwards saved schedules to an external webhook.
type NotificationService struct {
	webhookURL string
	timeout    time.Duration
	logger     *zap.Logger
	dispatcher events.Dispatcher
}

type webhookBody struct {
	Event     events.EventType `json:"event"`
	EventID   string           `json:"event_id"`
	Timestamp time.Time        `json:"timestamp"`
	Actor     events.Actor     `json:"actor"`
	Payload   any              `json:"payload"`
}

// NewNotificationService constructs the service.
func NewNotificationService(cfg config.NotificationConfig, dispatcher events.Dispatcher, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := time.Duration(cfg.WebhookTimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &NotificationService{
		webhookURL: cfg.WebhookURL,
		timeout:    timeout,
		logger:     logger,
		dispatcher: dispatcher,
	}
}

// Enabled reports whether a webhook is configured.
func (s *NotificationService) Enabled() bool {
	return s != nil && s.webhookURL != ""
}

// RegisterHandlers subscribes to schedule events when a webhook is configured.
func (s *NotificationService) RegisterHandlers() {
	if !s.Enabled() || s.dispatcher == nil {
		return
	}
	s.dispatcher.Subscribe(events.EventScheduleSaved, s.handleScheduleSaved)
}

func (s *NotificationService) handleScheduleSaved(_ context.Context, evt events.Event) error {
	if err := s.post(evt); err != nil {
		s.logger.Warn("webhook delivery failed", zap.String("event_id", evt.ID), zap.Error(err))
		return nil
	}
	s.logger.Debug("webhook delivered", zap.String("event_id", evt.ID))
	return nil
}

func (s *NotificationService) post(evt events.Event) error {
	agent := fiber.Post(s.webhookURL).
		Timeout(s.timeout).
		JSON(webhookBody{
			Event:     evt.Type,
			EventID:   evt.ID,
			Timestamp: evt.Timestamp,
			Actor:     evt.Actor,
			Payload:   evt.Payload,
		})
	status, _, errs := agent.Bytes()
	if len(errs) > 0 {
		return errs[0]
	}
	if status < 200 || status >= 300 {
		return fmt.Errorf("webhook responded with status %d", status)
	}
	return nil
}
