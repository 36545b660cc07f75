package rabbit

import (
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/tutuni-ai/backend/internal/logger"
)

// Rabbit is a RabbitMQ client with automatic reconnection. The channel
// is guarded by mu and swapped whole when the connection is rebuilt.
type Rabbit struct {
	cfg     Config
	conn    *amqp.Connection
	channel *amqp.Channel
	log     *logger.Logger

	mu             sync.RWMutex
	shutdownSignal chan struct{}
}

// NewClient connects to the broker and declares the configured
// topology.
func NewClient(cfg Config, log *logger.Logger) (*Rabbit, error) {
	conn, err := dial(cfg, log)
	if err != nil {
		return nil, err
	}

	ch, err := setupChannel(conn, cfg, log)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}

	return &Rabbit{
		cfg:            cfg,
		conn:           conn,
		channel:        ch,
		log:            log,
		shutdownSignal: make(chan struct{}),
	}, nil
}

// dial opens the AMQP connection. A short heartbeat surfaces dead
// connections quickly so the retry loop can take over.
func dial(cfg Config, log *logger.Logger) (*amqp.Connection, error) {
	scheme := "amqp"
	if cfg.Connection.SSLEnabled {
		scheme = "amqps"
	}
	hostURL := fmt.Sprintf("%s://%s:%s@%s:%d",
		scheme, cfg.Connection.User, cfg.Connection.Password,
		cfg.Connection.Host, cfg.Connection.Port)

	log.Info("connecting to rabbit", nil, map[string]interface{}{
		"host": cfg.Connection.Host,
		"port": cfg.Connection.Port,
	})

	conn, err := amqp.DialConfig(hostURL, amqp.Config{Heartbeat: 2 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("rabbit: connect: %w", err)
	}
	log.Info("connected to rabbit", nil, nil)
	return conn, nil
}

// setupChannel opens a confirmed channel and, for consumers, declares
// the exchange, the queue with its dead letter wiring, the binding and
// the prefetch window.
func setupChannel(conn *amqp.Connection, cfg Config, log *logger.Logger) (*amqp.Channel, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("rabbit: open channel: %w", err)
	}
	if err := ch.Confirm(false); err != nil {
		return nil, fmt.Errorf("rabbit: enable publisher confirms: %w", err)
	}

	if !cfg.Channel.IsConsumer {
		return ch, nil
	}

	err = ch.ExchangeDeclare(
		cfg.Channel.ExchangeName,
		cfg.Channel.ExchangeType,
		true,  // durable
		false, // autoDelete
		false, // internal
		false, // noWait
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("rabbit: declare exchange %q: %w", cfg.Channel.ExchangeName, err)
	}

	queueArgs := amqp.Table{}
	if dl := cfg.DeadLetter; dl.ExchangeName != "" && dl.TTLSeconds > 0 {
		if err := ch.ExchangeDeclare(dl.ExchangeName, "direct", true, false, false, false, nil); err != nil {
			return nil, fmt.Errorf("rabbit: declare dead letter exchange %q: %w", dl.ExchangeName, err)
		}
		if _, err := ch.QueueDeclare(dl.QueueName, true, false, false, false, nil); err != nil {
			return nil, fmt.Errorf("rabbit: declare dead letter queue %q: %w", dl.QueueName, err)
		}
		if err := ch.QueueBind(dl.QueueName, dl.RoutingKey, dl.ExchangeName, false, nil); err != nil {
			return nil, fmt.Errorf("rabbit: bind dead letter queue %q: %w", dl.QueueName, err)
		}
		queueArgs = amqp.Table{
			"x-dead-letter-exchange":    dl.ExchangeName,
			"x-dead-letter-routing-key": dl.RoutingKey,
			"x-message-ttl":             dl.TTLSeconds * 1000,
		}
	}

	if _, err := ch.QueueDeclare(cfg.Channel.QueueName, true, false, false, false, queueArgs); err != nil {
		return nil, fmt.Errorf("rabbit: declare queue %q: %w", cfg.Channel.QueueName, err)
	}
	if err := ch.QueueBind(cfg.Channel.QueueName, cfg.Channel.RoutingKey, cfg.Channel.ExchangeName, false, nil); err != nil {
		return nil, fmt.Errorf("rabbit: bind queue %q: %w", cfg.Channel.QueueName, err)
	}

	if cfg.Channel.PrefetchCount > 0 {
		if err := ch.Qos(cfg.Channel.PrefetchCount, 0, false); err != nil {
			return nil, fmt.Errorf("rabbit: set qos: %w", err)
		}
	}

	return ch, nil
}

// retryConnection watches for connection loss and rebuilds connection
// and channel until shutdown. Run as a goroutine.
func (rb *Rabbit) retryConnection() {
outerLoop:
	for {
		errChan := make(chan *amqp.Error, 1)

		rb.mu.RLock()
		rb.conn.NotifyClose(errChan)
		rb.mu.RUnlock()

		select {
		case <-rb.shutdownSignal:
			return
		case amqpErr, ok := <-errChan:
			if !ok {
				// Clean close during shutdown.
				select {
				case <-rb.shutdownSignal:
					return
				default:
				}
			}
			rb.log.Warn("rabbit connection closed, reconnecting", amqpErr, nil)

			for {
				select {
				case <-rb.shutdownSignal:
					return
				default:
				}

				conn, err := dial(rb.cfg, rb.log)
				if err != nil {
					rb.log.Error("rabbit reconnection failed", err, nil)
					time.Sleep(time.Second)
					continue
				}

				ch, err := setupChannel(conn, rb.cfg, rb.log)
				if err != nil {
					rb.log.Error("rabbit channel reopen failed", err, nil)
					_ = conn.Close()
					time.Sleep(time.Second)
					continue
				}

				rb.mu.Lock()
				if rb.channel != nil {
					_ = rb.channel.Close()
				}
				rb.conn = conn
				rb.channel = ch
				rb.mu.Unlock()

				rb.log.Info("reconnected to rabbit", nil, nil)
				continue outerLoop
			}
		}
	}
}

// gracefulShutdown stops the retry loop and closes channel and
// connection.
func (rb *Rabbit) gracefulShutdown() {
	close(rb.shutdownSignal)

	rb.mu.Lock()
	defer rb.mu.Unlock()

	rb.log.Info("closing rabbit channel", nil, nil)
	if rb.channel != nil {
		if err := rb.channel.Close(); err != nil {
			rb.log.Error("error closing rabbit channel", err, nil)
		}
	}
	if rb.conn != nil && !rb.conn.IsClosed() {
		if err := rb.conn.Close(); err != nil {
			rb.log.Error("error closing rabbit connection", err, nil)
		}
	}
}
