package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"groupsync/internal/email"
	"groupsync/internal/logger"

	amqp "github.com/rabbitmq/amqp091-go"
)

// DefaultAMQPQueue is the durable queue notification jobs are published to
const DefaultAMQPQueue = "groupsync.notifications"

// queueMessage is the wire form of a notifyJob
type queueMessage struct {
	Kind      string         `json:"kind"`
	Notify    *NotifyRequest `json:"notify,omitempty"`
	EmailType email.Type     `json:"emailType,omitempty"`
	EmailData *email.Data    `json:"emailData,omitempty"`
}

const (
	consumerTag = "groupsync-notify"

	kindFanOut = "fan-out"
	kindEmail  = "email"
)

func encodeJob(job notifyJob) ([]byte, error) {
	var msg queueMessage
	switch {
	case job.fanOut != nil:
		msg = queueMessage{Kind: kindFanOut, Notify: job.fanOut}
	case job.direct != nil:
		msg = queueMessage{Kind: kindEmail, EmailType: job.direct.t, EmailData: &job.direct.d}
	default:
		return nil, fmt.Errorf("empty notification job")
	}
	return json.Marshal(msg)
}

func decodeJob(body []byte) (notifyJob, error) {
	var msg queueMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		return notifyJob{}, err
	}
	switch msg.Kind {
	case kindFanOut:
		if msg.Notify == nil {
			return notifyJob{}, fmt.Errorf("fan-out message without request")
		}
		return notifyJob{fanOut: msg.Notify}, nil
	case kindEmail:
		if msg.EmailData == nil {
			return notifyJob{}, fmt.Errorf("email message without data")
		}
		return notifyJob{direct: &directEmail{t: msg.EmailType, d: *msg.EmailData}}, nil
	}
	return notifyJob{}, fmt.Errorf("unknown message kind %q", msg.Kind)
}

// AMQPQueue publishes notification jobs to RabbitMQ and consumes them with a
// pool of workers, so queued emails survive a restart of the service.
type AMQPQueue struct {
	runner  jobRunner
	workers int
	queue   string

	conn   *amqp.Connection
	mu     sync.Mutex // guards ch for publishing
	ch     *amqp.Channel
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewAMQPQueue dials url and declares the durable queue
func NewAMQPQueue(url string, notifier *Notifier, mailer *email.Mailer, workers int) (*AMQPQueue, error) {
	if workers < 1 {
		workers = 1
	}
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open a channel: %w", err)
	}
	if _, err := ch.QueueDeclare(DefaultAMQPQueue, true, false, false, false, nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to declare a queue: %w", err)
	}
	return &AMQPQueue{
		runner:  jobRunner{notifier: notifier, mailer: mailer},
		workers: workers,
		queue:   DefaultAMQPQueue,
		conn:    conn,
		ch:      ch,
	}, nil
}

// Enqueue implements Notifications
func (q *AMQPQueue) Enqueue(req NotifyRequest) bool {
	return q.publish(notifyJob{fanOut: &req})
}

// EnqueueEmail implements Notifications
func (q *AMQPQueue) EnqueueEmail(t email.Type, d email.Data) bool {
	return q.publish(notifyJob{direct: &directEmail{t: t, d: d}})
}

func (q *AMQPQueue) publish(job notifyJob) bool {
	log := logger.Named("notify")

	body, err := encodeJob(job)
	if err != nil {
		log.Errorf("Notification dropped: %v", err)
		return false
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	q.mu.Lock()
	err = q.ch.PublishWithContext(ctx, "", q.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	})
	q.mu.Unlock()
	if err != nil {
		log.Errorf("Notification dropped: failed to publish: %v", err)
		return false
	}
	return true
}

// Start consumes the queue on its own channel until ctx is cancelled or Close is called
func (q *AMQPQueue) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	q.cancel = cancel

	ch, err := q.conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open a consumer channel: %w", err)
	}
	if err := ch.Qos(q.workers, 0, false); err != nil {
		ch.Close()
		return fmt.Errorf("failed to set prefetch: %w", err)
	}
	deliveries, err := ch.Consume(q.queue, consumerTag, false, false, false, false, nil)
	if err != nil {
		ch.Close()
		return fmt.Errorf("failed to register a consumer: %w", err)
	}

	var workers sync.WaitGroup
	for i := 0; i < q.workers; i++ {
		workers.Add(1)
		go func() {
			defer workers.Done()
			q.consume(ctx, deliveries)
		}()
	}

	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		<-ctx.Done()
		// Cancelling the consumer closes deliveries; workers ack what they hold before the channel goes
		if err := ch.Cancel(consumerTag, false); err != nil {
			logger.Named("notify").Warnf("Cancel consumer: %v", err)
		}
		workers.Wait()
		ch.Close()
	}()
	return nil
}

func (q *AMQPQueue) consume(ctx context.Context, deliveries <-chan amqp.Delivery) {
	log := logger.Named("notify")
	for d := range deliveries {
		job, err := decodeJob(d.Body)
		if err != nil {
			log.Errorf("Discarding malformed notification: %v", err)
			d.Nack(false, false)
			continue
		}
		// A failed send is logged by the runner and not requeued
		q.runner.run(context.WithoutCancel(ctx), job)
		d.Ack(false)
	}
}

// Close stops the consumer, waits for in-flight jobs and closes the connection
func (q *AMQPQueue) Close() error {
	if q.cancel != nil {
		q.cancel()
	}
	q.wg.Wait()

	q.mu.Lock()
	q.ch.Close()
	q.mu.Unlock()
	return q.conn.Close()
}
