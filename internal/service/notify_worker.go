package service

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/fvnks/konecte.cl-sub001/internal/domain"
	"github.com/fvnks/konecte.cl-sub001/internal/metrics"
	"github.com/fvnks/konecte.cl-sub001/internal/models"
)

// notifyTimeout bounds a single notifier dispatch.
const notifyTimeout = 5 * time.Second

// NotifyWorker buffers transition events and dispatches them to the
// registered notifiers from a single goroutine. Dispatch is fire-and-forget:
// a full queue drops the event with a warning, and notifier failures are
// logged, never propagated to the transition that produced them.
type NotifyWorker struct {
	notifiers []domain.Notifier
	log       *logrus.Logger
	jobs      chan models.TransitionEvent
}

// NewNotifyWorker creates a NotifyWorker with the given queue capacity.
func NewNotifyWorker(log *logrus.Logger, queueSize int, notifiers ...domain.Notifier) *NotifyWorker {
	if queueSize <= 0 {
		queueSize = 1000
	}

	return &NotifyWorker{
		notifiers: notifiers,
		log:       log,
		jobs:      make(chan models.TransitionEvent, queueSize),
	}
}

// Enqueue adds a transition event. Non-blocking; drops the event if the
// queue is full.
func (w *NotifyWorker) Enqueue(evt models.TransitionEvent) {
	select {
	case w.jobs <- evt:
		metrics.NotifyQueueDepth.Set(float64(len(w.jobs)))
	default:
		w.log.WithField("visit_id", evt.VisitID).Warn("notify queue full, dropping transition event")
	}
}

// Run processes events until the context is cancelled, then drains the queue.
func (w *NotifyWorker) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			w.drain()
			return
		case evt := <-w.jobs:
			w.process(evt)
		}
	}
}

func (w *NotifyWorker) drain() {
	for {
		select {
		case evt := <-w.jobs:
			w.process(evt)
		default:
			return
		}
	}
}

func (w *NotifyWorker) process(evt models.TransitionEvent) {
	metrics.NotifyQueueDepth.Set(float64(len(w.jobs)))

	for _, n := range w.notifiers {
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)

		if err := n.NotifyTransition(ctx, evt); err != nil {
			w.log.WithError(err).WithFields(logrus.Fields{
				"visit_id": evt.VisitID,
				"actor_id": evt.ActorID,
			}).Warn("transition notification failed")
		}

		cancel()
	}
}
