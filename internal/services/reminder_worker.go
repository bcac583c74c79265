package services

import (
	"context"
	"sync"
	"time"

	"groupsync/internal/logger"
)

// ReminderWorker runs the reminder scan on a fixed interval
type ReminderWorker struct {
	scanner  *ReminderScanner
	interval time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewReminderWorker(scanner *ReminderScanner, interval time.Duration) *ReminderWorker {
	return &ReminderWorker{
		scanner:  scanner,
		interval: interval,
	}
}

// Start begins the ticker loop; a non-positive interval disables the worker
func (w *ReminderWorker) Start(ctx context.Context) {
	if w.interval <= 0 {
		logger.Named("reminders").Info("Reminder worker disabled")
		return
	}

	w.mu.Lock()
	ctx, w.cancel = context.WithCancel(ctx)
	w.done = make(chan struct{})
	w.mu.Unlock()

	go w.run(ctx)
}

func (w *ReminderWorker) run(ctx context.Context) {
	defer close(w.done)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.scanner.Run(ctx)
		}
	}
}

// Stop cancels the loop and waits for an in-flight scan to return
func (w *ReminderWorker) Stop() {
	w.mu.Lock()
	cancel, done := w.cancel, w.done
	w.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}
