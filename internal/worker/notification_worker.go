package worker

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/spec-kit/request-workflow/internal/events"
	"github.com/spec-kit/request-workflow/internal/service"
)

// NotificationWorker delivers notifications off the request path. Events
// are buffered in a channel; when the buffer is full new events are
// dropped and logged rather than blocking a commit.
type NotificationWorker struct {
	notifications *service.NotificationService
	logger        *zap.Logger
	queue         chan events.Event
	cancel        context.CancelFunc
	wg            sync.WaitGroup
}

// StartNotificationWorker subscribes to the dispatcher and starts the
// delivery goroutines.
func StartNotificationWorker(dispatcher events.Dispatcher, notifications *service.NotificationService, logger *zap.Logger, buffer, workers int) *NotificationWorker {
	if buffer <= 0 {
		buffer = 128
	}
	if workers <= 0 {
		workers = 2
	}

	ctx, cancel := context.WithCancel(context.Background())
	w := &NotificationWorker{
		notifications: notifications,
		logger:        logger,
		queue:         make(chan events.Event, buffer),
		cancel:        cancel,
	}

	for _, eventType := range []events.EventType{
		events.EventTicketCreated,
		events.EventTicketStatusChanged,
		events.EventTicketResubmitted,
		events.EventProgrammerAssigned,
	} {
		dispatcher.Subscribe(eventType, w.enqueue)
	}

	for i := 0; i < workers; i++ {
		w.wg.Add(1)
		go w.run(ctx)
	}
	return w
}

// Stop drains nothing: in-flight deliveries finish, queued events are
// abandoned.
func (w *NotificationWorker) Stop() {
	w.cancel()
	w.wg.Wait()
}

func (w *NotificationWorker) enqueue(_ context.Context, event events.Event) error {
	select {
	case w.queue <- event:
	default:
		w.logger.Warn("notification queue full, dropping event",
			zap.String("event_id", event.ID),
			zap.String("event_type", string(event.Type)))
	}
	return nil
}

func (w *NotificationWorker) run(ctx context.Context) {
	defer w.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case event := <-w.queue:
			if err := w.notifications.Handle(ctx, event); err != nil {
				w.logger.Error("notification delivery failed",
					zap.String("event_id", event.ID),
					zap.String("event_type", string(event.Type)),
					zap.Error(err))
			}
		}
	}
}
