// Copyright (c) 2026 Blog Team
// Blog - REST blog back end
// This source code is licensed under the MIT license found in the LICENSE file.

package events

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"
	"github.com/segmentio/kafka-go"
	"github.com/toeirei/blog/internal/logging"
)

// DefaultBufferSize is the number of events queued before Publish fails.
const DefaultBufferSize = 256

// MessageWriter is the subset of *kafka.Writer the producer needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// NewKafkaWriter returns a writer for topic balanced by message key.
func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		BatchTimeout:           50 * time.Millisecond,
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}
}

// StartProducer drains bucket into writer until ctx is done. Every failure
// is reported on errs, which is closed on return.
func StartProducer(
	ctx context.Context,
	wg *sync.WaitGroup,
	writer MessageWriter,
	bucket <-chan *Event,
	errs chan<- error,
) {
	defer wg.Done()
	defer close(errs)

	for {
		select {
		case <-ctx.Done():
			return
		case e := <-bucket:
			serialized, err := json.Marshal(e)
			if err != nil {
				errs <- err
				continue
			}
			err = writer.WriteMessages(ctx, kafka.Message{
				Key:   []byte(e.Key()),
				Value: serialized,
				Time:  e.OccurredAt,
			})
			if err != nil && ctx.Err() == nil {
				errs <- err
			}
		}
	}
}

// KafkaPublisher queues events in memory and writes them from a single
// producer goroutine.
type KafkaPublisher struct {
	writer MessageWriter
	bucket chan *Event
	errs   chan error

	wg        sync.WaitGroup
	cancel    context.CancelFunc
	closed    atomic.Bool
	closeOnce sync.Once
}

// NewKafkaPublisher returns a publisher queueing up to buffer events.
func NewKafkaPublisher(writer MessageWriter, buffer int) *KafkaPublisher {
	if buffer <= 0 {
		buffer = DefaultBufferSize
	}
	return &KafkaPublisher{
		writer: writer,
		bucket: make(chan *Event, buffer),
		errs:   make(chan error, 16),
		cancel: func() {},
	}
}

// Start launches the producer; it stops when ctx is done or on Close.
func (p *KafkaPublisher) Start(ctx context.Context) {
	ctx, p.cancel = context.WithCancel(ctx)
	p.wg.Add(2)
	go StartProducer(ctx, &p.wg, p.writer, p.bucket, p.errs)
	go func() {
		defer p.wg.Done()
		for err := range p.errs {
			logging.Warnf("events: kafka write failed: %v", err)
		}
	}()
}

// Publish queues e without blocking.
func (p *KafkaPublisher) Publish(_ context.Context, e Event) error {
	if p.closed.Load() {
		return ErrClosed
	}
	select {
	case p.bucket <- &e:
		return nil
	default:
		return ErrBufferFull
	}
}

// Close stops the producer, waits for it and closes the writer. Events
// still queued are dropped.
func (p *KafkaPublisher) Close() error {
	var err error
	p.closeOnce.Do(func() {
		p.closed.Store(true)
		p.cancel()
		p.wg.Wait()
		if n := len(p.bucket); n > 0 {
			logging.Warnf("events: dropping %d unsent events", n)
		}
		err = p.writer.Close()
	})
	return err
}
