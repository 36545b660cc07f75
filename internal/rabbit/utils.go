package rabbit

import (
	"context"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Message is one delivery from the queue. The consumer must Ack or
// Nack every message it receives.
type Message interface {
	AckMsg() error
	NackMsg(requeue bool) error
	Body() []byte
}

// ConsumerMessage wraps an AMQP delivery.
type ConsumerMessage struct {
	body     []byte
	delivery *amqp.Delivery
}

func (m *ConsumerMessage) AckMsg() error { return m.delivery.Ack(false) }

func (m *ConsumerMessage) NackMsg(requeue bool) error { return m.delivery.Nack(false, requeue) }

func (m *ConsumerMessage) Body() []byte { return m.body }

// Consume streams deliveries from the configured queue. The channel is
// closed when ctx is cancelled or the client shuts down. If the broker
// connection drops, consumption resumes on the rebuilt channel.
func (rb *Rabbit) Consume(ctx context.Context, wg *sync.WaitGroup) <-chan Message {
	outChan := make(chan Message, 100)

	wg.Add(1)
	go func() {
		defer wg.Done()
		defer close(outChan)
	outerLoop:
		for {
			select {
			case <-rb.shutdownSignal:
				rb.log.Info("rabbit consumer stopping on shutdown", nil, nil)
				return
			case <-ctx.Done():
				rb.log.Info("rabbit consumer stopping on context cancellation", ctx.Err(), nil)
				return
			default:
			}

			rb.mu.RLock()
			msgs, err := rb.channel.Consume(
				rb.cfg.Channel.QueueName,
				"",    // consumer tag
				false, // autoAck
				false, // exclusive
				false, // noLocal
				false, // noWait
				nil,
			)
			rb.mu.RUnlock()

			if err != nil {
				rb.log.Error("rabbit consumer setup failed", err, map[string]interface{}{
					"queue": rb.cfg.Channel.QueueName,
				})
				time.Sleep(100 * time.Millisecond)
				continue
			}

			for {
				select {
				case <-rb.shutdownSignal:
					rb.log.Info("rabbit consumer stopping on shutdown", nil, nil)
					return
				case <-ctx.Done():
					rb.log.Info("rabbit consumer stopping on context cancellation", ctx.Err(), nil)
					return
				case msg, ok := <-msgs:
					if !ok {
						// Channel died; rebuild the consumer.
						continue outerLoop
					}
					delivery := msg
					outChan <- &ConsumerMessage{body: delivery.Body, delivery: &delivery}
				}
			}
		}
	}()

	return outChan
}

// Publish sends a message to the configured exchange with the
// configured routing key.
func (rb *Rabbit) Publish(ctx context.Context, body []byte) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	rb.mu.RLock()
	defer rb.mu.RUnlock()

	err := rb.channel.PublishWithContext(ctx,
		rb.cfg.Channel.ExchangeName,
		rb.cfg.Channel.RoutingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType: rb.cfg.Channel.ContentType,
			Body:        body,
		},
	)
	if err != nil {
		return fmt.Errorf("rabbit: publish: %w", err)
	}
	return nil
}
