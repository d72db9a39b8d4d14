package rabbitmq

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/magabrotheeeer/license-manager/internal/lib/sl"
)

var (
	// ErrQueueFull очередь событий переполнена, событие отброшено.
	ErrQueueFull = errors.New("download event queue is full")
	// ErrPublisherClosed публикация после Close.
	ErrPublisherClosed = errors.New("download event publisher is closed")
)

// DownloadPublisher синхронно публикует события о загрузках.
type DownloadPublisher interface {
	PublishDownload(ctx context.Context, event DownloadEvent) error
	Close() error
}

// AsyncPublisher ставит события в буферизованную очередь и публикует их
// из фоновой горутины. PublishDownload никогда не ждёт брокер.
type AsyncPublisher struct {
	log     *slog.Logger
	next    DownloadPublisher
	timeout time.Duration

	mu     sync.RWMutex
	closed bool
	events chan DownloadEvent
	done   chan struct{}
}

// NewAsyncPublisher запускает фоновую публикацию в next.
// timeout ограничивает публикацию одного события и ожидание очереди в Close.
func NewAsyncPublisher(log *slog.Logger, next DownloadPublisher, queueSize int, timeout time.Duration) *AsyncPublisher {
	if queueSize < 1 {
		queueSize = 1
	}
	p := &AsyncPublisher{
		log:     log,
		next:    next,
		timeout: timeout,
		events:  make(chan DownloadEvent, queueSize),
		done:    make(chan struct{}),
	}
	go p.run()
	return p
}

// PublishDownload ставит событие в очередь. При переполнении возвращает ErrQueueFull.
func (p *AsyncPublisher) PublishDownload(_ context.Context, event DownloadEvent) error {
	const op = "rabbitmq.AsyncPublisher.PublishDownload"

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return fmt.Errorf("%s: %w", op, ErrPublisherClosed)
	}
	select {
	case p.events <- event:
		return nil
	default:
		return fmt.Errorf("%s: %w", op, ErrQueueFull)
	}
}

func (p *AsyncPublisher) run() {
	const op = "rabbitmq.AsyncPublisher.run"
	defer close(p.done)

	for event := range p.events {
		ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
		err := p.next.PublishDownload(ctx, event)
		cancel()
		if err != nil {
			p.log.Warn("failed to publish download event",
				slog.String("op", op),
				slog.String("request_id", event.RequestID),
				sl.Err(err),
			)
		}
	}
}

// Close перестаёт принимать события, ждёт публикации очереди не дольше
// timeout и закрывает next. Закрытие next прерывает зависшую публикацию.
func (p *AsyncPublisher) Close() error {
	const op = "rabbitmq.AsyncPublisher.Close"

	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.events)
	}
	p.mu.Unlock()

	timer := time.NewTimer(p.timeout)
	defer timer.Stop()
	select {
	case <-p.done:
	case <-timer.C:
		p.log.Warn("download event queue was not drained before shutdown", slog.String("op", op))
	}

	if err := p.next.Close(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
