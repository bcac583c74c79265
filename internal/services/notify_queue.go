package services

import (
	"context"
	"sync"

	"groupsync/internal/email"
	"groupsync/internal/logger"
)

// Notifications is the fire-and-forget side of email delivery used by the interactive services
type Notifications interface {
	Enqueue(req NotifyRequest) bool
	EnqueueEmail(t email.Type, d email.Data) bool
}

type notifyJob struct {
	fanOut *NotifyRequest
	direct *directEmail
}

type directEmail struct {
	t email.Type
	d email.Data
}

// NotifyQueue runs notifications on background workers so the primary
// action never waits for, or fails because of, email delivery.
type NotifyQueue struct {
	runner  jobRunner
	workers int

	mu     sync.RWMutex
	jobs   chan notifyJob
	closed bool
	wg     sync.WaitGroup
}

func NewNotifyQueue(notifier *Notifier, mailer *email.Mailer, workers, size int) *NotifyQueue {
	if workers < 1 {
		workers = 1
	}
	if size < 1 {
		size = 1
	}
	return &NotifyQueue{
		runner:  jobRunner{notifier: notifier, mailer: mailer},
		workers: workers,
		jobs:    make(chan notifyJob, size),
	}
}

// Start launches the workers. They exit once Stop has drained the queue.
func (q *NotifyQueue) Start(ctx context.Context) {
	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go func() {
			defer q.wg.Done()
			for job := range q.jobs {
				q.runner.run(ctx, job)
			}
		}()
	}
}

// Stop refuses new jobs and waits for queued ones to finish
func (q *NotifyQueue) Stop() {
	q.mu.Lock()
	if !q.closed {
		q.closed = true
		close(q.jobs)
	}
	q.mu.Unlock()
	q.wg.Wait()
}

// Enqueue schedules a group fan-out. It returns false when the job was dropped.
func (q *NotifyQueue) Enqueue(req NotifyRequest) bool {
	return q.push(notifyJob{fanOut: &req})
}

// EnqueueEmail schedules a single email. It returns false when the job was dropped.
func (q *NotifyQueue) EnqueueEmail(t email.Type, d email.Data) bool {
	return q.push(notifyJob{direct: &directEmail{t: t, d: d}})
}

func (q *NotifyQueue) push(job notifyJob) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		logger.Named("notify").Warn("Notification dropped: queue stopped")
		return false
	}
	select {
	case q.jobs <- job:
		return true
	default:
		logger.Named("notify").Warn("Notification dropped: queue full")
		return false
	}
}

// jobRunner executes queued notifications; failures are logged, never returned
type jobRunner struct {
	notifier *Notifier
	mailer   *email.Mailer
}

func (r jobRunner) run(ctx context.Context, job notifyJob) {
	log := logger.Named("notify")

	switch {
	case job.fanOut != nil:
		result, err := r.notifier.Notify(ctx, *job.fanOut)
		if err != nil {
			log.Errorf("Fan-out %s for group %s failed: %v", job.fanOut.EmailType, job.fanOut.GroupID, err)
			return
		}
		if len(result.Errors) > 0 {
			log.Warnf("Fan-out %s for group %s: %d of %d sends failed", job.fanOut.EmailType, job.fanOut.GroupID, len(result.Errors), result.NotifiedCount)
		}
	case job.direct != nil:
		if _, err := r.mailer.Send(ctx, job.direct.t, job.direct.d); err != nil {
			log.Errorf("Failed to send %s to %s: %v", job.direct.t, job.direct.d.To, err)
		}
	}
}
