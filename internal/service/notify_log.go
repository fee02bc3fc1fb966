package service

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/fvnks/konecte.cl-sub001/internal/models"
)

// LogNotifier records every transition as a structured log line. It backs the
// audit trail and serves as the always-on fallback when no WebSocket client
// is connected for either participant.
type LogNotifier struct {
	log *logrus.Logger
}

// NewLogNotifier creates a LogNotifier.
func NewLogNotifier(log *logrus.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

// NotifyTransition implements domain.Notifier.
func (n *LogNotifier) NotifyTransition(_ context.Context, evt models.TransitionEvent) error {
	n.log.WithFields(logrus.Fields{
		"visit_id":    evt.VisitID,
		"property_id": evt.PropertyID,
		"visitor_id":  evt.VisitorID,
		"owner_id":    evt.OwnerID,
		"old_status":  evt.OldStatus,
		"new_status":  evt.NewStatus,
		"actor_id":    evt.ActorID,
	}).Info("visit transition")

	return nil
}
