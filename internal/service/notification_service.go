package service

import (
	"account_manager/internal/domain"
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"
)

type Sink interface {
	Deliver(ctx context.Context, msg NotificationMessage) error
}

type NotificationMessage struct {
	Event     domain.Event
	Text      string
	CreatedAt time.Time
}

// NotificationService is an asynchronous domain.Notifier. Notify never blocks
// the account operation that produced the event.
type NotificationService struct {
	sinks        []Sink
	messageQueue chan NotificationMessage
	workers      int
	shutdownChan chan struct{}
	closeOnce    sync.Once
	wg           sync.WaitGroup
	logger       *slog.Logger
}

var _ domain.Notifier = (*NotificationService)(nil)

func NewNotificationService(sinks []Sink, workers, queueSize int, logger *slog.Logger) *NotificationService {
	if logger == nil {
		logger = slog.Default()
	}
	if workers < 1 {
		workers = 1
	}
	if queueSize < 1 {
		queueSize = 1
	}

	service := &NotificationService{
		sinks:        sinks,
		messageQueue: make(chan NotificationMessage, queueSize),
		workers:      workers,
		shutdownChan: make(chan struct{}),
		logger:       logger,
	}

	service.startWorkers()

	return service
}

func (s *NotificationService) Notify(e domain.Event) {
	msg := NotificationMessage{
		Event:     e,
		Text:      e.String(),
		CreatedAt: time.Now(),
	}

	select {
	case <-s.shutdownChan:
		s.logger.Warn("Notification dropped after shutdown",
			slog.String("account_id", e.AccountID),
			slog.String("kind", string(e.Kind)))
		return
	default:
	}

	select {
	case s.messageQueue <- msg:
	default:
		s.logger.Warn("Notification queue full, dropping message",
			slog.String("account_id", e.AccountID),
			slog.String("kind", string(e.Kind)))
	}
}

func (s *NotificationService) startWorkers() {
	for i := 0; i < s.workers; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}
}

func (s *NotificationService) worker(id int) {
	defer s.wg.Done()

	s.logger.Debug("Notification worker started", slog.Int("worker_id", id))

	for {
		select {
		case msg := <-s.messageQueue:
			s.processNotification(msg, id)
		case <-s.shutdownChan:
			s.drain(id)
			s.logger.Debug("Notification worker stopping", slog.Int("worker_id", id))
			return
		}
	}
}

func (s *NotificationService) drain(workerID int) {
	for {
		select {
		case msg := <-s.messageQueue:
			s.processNotification(msg, workerID)
		default:
			return
		}
	}
}

func (s *NotificationService) processNotification(msg NotificationMessage, workerID int) {
	startTime := time.Now()

	for _, sink := range s.sinks {
		if err := sink.Deliver(context.Background(), msg); err != nil {
			s.logger.Error("Failed to deliver notification",
				slog.String("account_id", msg.Event.AccountID),
				slog.String("kind", string(msg.Event.Kind)),
				slog.String("error", err.Error()),
				slog.Int("worker_id", workerID))
		}
	}

	s.logger.Debug("Notification delivered",
		slog.String("account_id", msg.Event.AccountID),
		slog.Int("worker_id", workerID),
		slog.Duration("duration", time.Since(startTime)))
}

// Shutdown stops the workers after they flush queued messages.
func (s *NotificationService) Shutdown(ctx context.Context) error {
	s.closeOnce.Do(func() { close(s.shutdownChan) })

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Notification service shutdown complete")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

type WriterSink struct {
	mu sync.Mutex
	w  io.Writer
}

func NewWriterSink(w io.Writer) *WriterSink {
	return &WriterSink{w: w}
}

func (s *WriterSink) Deliver(ctx context.Context, msg NotificationMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := fmt.Fprintln(s.w, msg.Text)
	return err
}

type LogSink struct {
	logger *slog.Logger
}

func NewLogSink(logger *slog.Logger) *LogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSink{logger: logger}
}

func (s *LogSink) Deliver(ctx context.Context, msg NotificationMessage) error {
	s.logger.InfoContext(ctx, msg.Text,
		slog.String("account_id", msg.Event.AccountID),
		slog.String("kind", string(msg.Event.Kind)),
		slog.String("amount", msg.Event.Amount.String()),
		slog.String("balance", msg.Event.Balance.String()))
	return nil
}

type MockSink struct {
	mu       sync.Mutex
	Messages []NotificationMessage
	Err      error
}

func (m *MockSink) Deliver(ctx context.Context, msg NotificationMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Messages = append(m.Messages, msg)
	return m.Err
}

func (m *MockSink) Delivered() []NotificationMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]NotificationMessage, len(m.Messages))
	copy(out, m.Messages)
	return out
}
