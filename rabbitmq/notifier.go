package rabbitmq

import (
	"municipal-reports-service/models"

	"github.com/apex/log"
)

const (
	// RoutingKeyStatus carries report status change events.
	RoutingKeyStatus = "report.status"
	// RoutingKeyComment carries comment-appended events.
	RoutingKeyComment = "report.comment"
)

// Notifier publishes lifecycle and collaboration events for the real-time
// dispatcher. It implements services.Notifier. With a nil publisher it
// degrades to log-only, so the service keeps working without a broker.
type Notifier struct {
	publisher *Publisher
}

// NewNotifier creates a notifier over the given publisher. publisher may be
// nil.
func NewNotifier(publisher *Publisher) *Notifier {
	return &Notifier{publisher: publisher}
}

// StatusChanged publishes a status change event.
func (n *Notifier) StatusChanged(event models.StatusEvent) {
	if n.publisher == nil {
		log.Infof("Notifier disabled, dropping status event for report %d (%s -> %s)",
			event.ReportID, event.FromStatus, event.ToStatus)
		return
	}
	if err := n.publisher.Publish(RoutingKeyStatus, event); err != nil {
		log.Errorf("Failed to publish status event for report %d: %v", event.ReportID, err)
		return
	}
	log.Infof("Published status event for report %d (%s -> %s)",
		event.ReportID, event.FromStatus, event.ToStatus)
}

// CommentAdded publishes a comment-appended event.
func (n *Notifier) CommentAdded(event models.CommentEvent) {
	if n.publisher == nil {
		log.Infof("Notifier disabled, dropping comment event for report %d", event.ReportID)
		return
	}
	if err := n.publisher.Publish(RoutingKeyComment, event); err != nil {
		log.Errorf("Failed to publish comment event for report %d: %v", event.ReportID, err)
		return
	}
	log.Infof("Published comment event %d for report %d", event.CommentID, event.ReportID)
}
