package kafka

import (
	"context"
	"errors"
	"github.com/segmentio/kafka-go"
	"log"
	"time"
)

var ErrClosed = errors.New("kafka: producer closed")

type Producer struct {
	topic   string
	w       *kafka.Writer
	inbox   chan kafka.Message
	closeCh chan struct{}
	done    chan struct{}
}

func NewProducer(brokers []string, topic string, buf int) *Producer {
	return &Producer{
		topic: topic,
		w: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			BatchTimeout: 50 * time.Millisecond,
		},
		inbox:   make(chan kafka.Message, buf),
		closeCh: make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// Start menjalankan loop writer. Pesan di inbox tetap di-flush saat ctx selesai.
func (p *Producer) Start(ctx context.Context) {
	go func() {
		defer close(p.closeCh)
		defer p.w.Close()
		for {
			select {
			case <-ctx.Done():
				p.drain()
				return
			case <-p.done:
				p.drain()
				return
			case m := <-p.inbox:
				p.write(m)
			}
		}
	}()
}

func (p *Producer) drain() {
	for {
		select {
		case m := <-p.inbox:
			p.write(m)
		default:
			return
		}
	}
}

func (p *Producer) write(m kafka.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := p.w.WriteMessages(ctx, m); err != nil {
		log.Printf("kafka producer %s: write failed key=%s: %v", p.topic, m.Key, err)
	}
}

// Publish antri ke inbox; blok sampai ada slot atau ctx selesai.
func (p *Producer) Publish(ctx context.Context, key, value []byte, headers ...kafka.Header) error {
	select {
	case <-p.done:
		return ErrClosed
	default:
	}
	select {
	case p.inbox <- kafka.Message{Key: key, Value: value, Time: time.Now(), Headers: headers}:
		return nil
	case <-p.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close menghentikan Publish baru; goroutine nge-flush sisa pesan lalu exit rapi.
func (p *Producer) Close() { close(p.done) }

// Tunggu sampai goroutine selesai.
func (p *Producer) WaitClosed() { <-p.closeCh }
