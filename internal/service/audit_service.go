package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/classroom-service/internal/events"
	"github.com/spec-kit/classroom-service/internal/observability"
)

// AuditService records an operator-visible trail of auth and domain
// events.
type AuditService struct {
	logger     *zap.Logger
	metrics    *observability.Metrics
	dispatcher events.Dispatcher
}

// NewAuditService builds the service.
func NewAuditService(logger *zap.Logger, metrics *observability.Metrics, dispatcher events.Dispatcher) *AuditService {
	return &AuditService{logger: logger, metrics: metrics, dispatcher: dispatcher}
}

// RegisterHandlers subscribes the audit trail to all known event types.
func (s *AuditService) RegisterHandlers() {
	eventTypes := []events.EventType{
		events.EventUserRegistered,
		events.EventUserLoggedIn,
		events.EventTokenRefreshed,
		events.EventStudentCreated,
		events.EventStudentUpdated,
		events.EventStudentDeleted,
	}
	for _, eventType := range eventTypes {
		s.dispatcher.Subscribe(eventType, s.record)
	}
}

func (s *AuditService) record(_ context.Context, event events.Event) error {
	s.metrics.RecordEvent(string(event.Type))
	s.logger.Info("audit",
		zap.String("event_id", event.ID),
		zap.String("event_type", string(event.Type)),
		zap.String("user_id", event.Actor.UserID),
		zap.String("username", event.Actor.Username),
		zap.String("role", event.Actor.Role.String()),
		zap.Time("at", event.Timestamp),
	)
	return nil
}
