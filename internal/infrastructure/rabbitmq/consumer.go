package rabbitmq

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/jhoicas/inventory-events/internal/domain"
	"github.com/jhoicas/inventory-events/pkg/logger"
	amqp "github.com/rabbitmq/amqp091-go"
)

// Handler procesa el cuerpo de un mensaje entregado. Si devuelve error el
// mensaje se rechaza sin requeue y el broker lo enruta a la dead-letter queue.
type Handler func(ctx context.Context, body []byte) error

// Estados del consumer: Uninitialized → Initialized → Consuming → Closed.
type consumerState int

const (
	stateUninitialized consumerState = iota
	stateInitialized
	stateConsuming
	stateClosed
)

// ConsumerConfig topología de un consumer.
type ConsumerConfig struct {
	Exchange   string // exchange fanout durable
	Queue      string // queue durable del servicio
	RoutingKey string // vacío: fanout ignora routing keys
	Prefetch   int    // mensajes en vuelo (1 = orden estricto de procesamiento)
}

// DeadLetterExchange nombre del DLX asociado al exchange principal.
func (c ConsumerConfig) DeadLetterExchange() string { return c.Exchange + ".dlx" }

// DeadLetterQueue nombre de la queue donde se estacionan los mensajes rechazados.
func (c ConsumerConfig) DeadLetterQueue() string { return c.Queue + ".dlq" }

// Consumer base de consumo sobre la conexión compartida del EventBus.
// Abre su propio canal, declara la topología (exchange, queue, DLX, binding)
// y entrega cada mensaje al Handler con confirmación manual: ack en éxito,
// nack sin requeue en error (el mensaje queda en la DLQ, inspeccionable y
// re-publicable, en vez de perderse o de ciclar en redelivery infinito).
type Consumer struct {
	bus *EventBus
	cfg ConsumerConfig
	log *logger.Logger

	mu    sync.Mutex
	ch    *amqp.Channel
	state consumerState
}

// NewConsumer construye el consumer; la topología se declara en Initialize.
func NewConsumer(bus *EventBus, cfg ConsumerConfig, log *logger.Logger) *Consumer {
	if cfg.Prefetch <= 0 {
		cfg.Prefetch = 1
	}
	return &Consumer{bus: bus, cfg: cfg, log: log, state: stateUninitialized}
}

// Initialize abre el canal y declara exchange, DLX, queues y bindings.
func (c *Consumer) Initialize() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != stateUninitialized {
		return fmt.Errorf("initialize consumer %s: estado inválido", c.cfg.Queue)
	}

	ch, err := c.bus.Channel()
	if err != nil {
		return fmt.Errorf("initialize consumer %s: %w", c.cfg.Queue, err)
	}

	if err := ch.ExchangeDeclare(c.cfg.Exchange, "fanout", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange %s: %w", c.cfg.Exchange, err)
	}

	// Topología dead-letter: los nack sin requeue terminan en <queue>.dlq.
	if err := ch.ExchangeDeclare(c.cfg.DeadLetterExchange(), "fanout", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare DLX %s: %w", c.cfg.DeadLetterExchange(), err)
	}
	if _, err := ch.QueueDeclare(c.cfg.DeadLetterQueue(), true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare DLQ %s: %w", c.cfg.DeadLetterQueue(), err)
	}
	if err := ch.QueueBind(c.cfg.DeadLetterQueue(), "", c.cfg.DeadLetterExchange(), false, nil); err != nil {
		return fmt.Errorf("bind DLQ %s: %w", c.cfg.DeadLetterQueue(), err)
	}

	if _, err := ch.QueueDeclare(c.cfg.Queue, true, false, false, false, amqp.Table{
		"x-dead-letter-exchange": c.cfg.DeadLetterExchange(),
	}); err != nil {
		return fmt.Errorf("declare queue %s: %w", c.cfg.Queue, err)
	}
	if err := ch.QueueBind(c.cfg.Queue, c.cfg.RoutingKey, c.cfg.Exchange, false, nil); err != nil {
		return fmt.Errorf("bind queue %s: %w", c.cfg.Queue, err)
	}

	c.ch = ch
	c.state = stateInitialized
	c.log.Info().
		Str("exchange", c.cfg.Exchange).
		Str("queue", c.cfg.Queue).
		Msg("consumer inicializado")
	return nil
}

// StartConsuming fija el prefetch y empieza a entregar mensajes al handler
// en una goroutine propia. Solo es válido desde el estado Initialized.
func (c *Consumer) StartConsuming(ctx context.Context, handler Handler) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != stateInitialized {
		return fmt.Errorf("%w: queue %s", domain.ErrConsumerNotInitialized, c.cfg.Queue)
	}

	if err := c.ch.Qos(c.cfg.Prefetch, 0, false); err != nil {
		return fmt.Errorf("set prefetch %s: %w", c.cfg.Queue, err)
	}

	tag := c.cfg.Queue + "-" + uuid.NewString()
	deliveries, err := c.ch.ConsumeWithContext(ctx, c.cfg.Queue, tag, false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume %s: %w", c.cfg.Queue, err)
	}

	c.state = stateConsuming
	c.log.Info().Str("queue", c.cfg.Queue).Str("consumer_tag", tag).Msg("escuchando mensajes")

	go func() {
		for d := range deliveries {
			c.handleDelivery(ctx, d, handler)
		}
		c.log.Info().Str("queue", c.cfg.Queue).Msg("canal de entregas cerrado")
	}()
	return nil
}

// handleDelivery ejecuta el handler y confirma o rechaza el mensaje.
// Confirmación manual siempre: nunca auto-ack.
func (c *Consumer) handleDelivery(ctx context.Context, d amqp.Delivery, handler Handler) {
	if err := handler(ctx, d.Body); err != nil {
		c.log.Error().
			Err(err).
			Str("queue", c.cfg.Queue).
			Uint64("delivery_tag", d.DeliveryTag).
			Msg("error procesando mensaje, se envía a DLQ")
		if nackErr := d.Nack(false, false); nackErr != nil {
			c.log.Error().Err(nackErr).Str("queue", c.cfg.Queue).Msg("nack falló")
		}
		return
	}
	if ackErr := d.Ack(false); ackErr != nil {
		c.log.Error().Err(ackErr).Str("queue", c.cfg.Queue).Msg("ack falló")
	}
}

// Close cierra el canal. Idempotente.
func (c *Consumer) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == stateClosed {
		return nil
	}
	c.state = stateClosed
	if c.ch != nil {
		return c.ch.Close()
	}
	return nil
}
