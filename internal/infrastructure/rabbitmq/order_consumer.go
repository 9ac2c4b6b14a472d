package rabbitmq

import (
	"context"

	"github.com/jhoicas/inventory-events/internal/domain/event"
	"github.com/jhoicas/inventory-events/pkg/config"
	"github.com/jhoicas/inventory-events/pkg/logger"
)

// StockDecreaser puerto hacia el comando que aplica el descuento de stock.
type StockDecreaser interface {
	Execute(ctx context.Context, evt event.OrderCreated) error
}

// OrderConsumer consume eventos de órdenes creadas del exchange fanout y
// delega en el comando de descuento. Solo sabe decodificar el payload; el
// ack/nack lo decide el Consumer base según el resultado del comando.
type OrderConsumer struct {
	consumer  *Consumer
	decreaser StockDecreaser
	log       *logger.Logger
}

// NewOrderConsumer construye el consumer de órdenes sobre el bus compartido.
func NewOrderConsumer(bus *EventBus, cfg config.RabbitConfig, decreaser StockDecreaser, log *logger.Logger) *OrderConsumer {
	consumer := NewConsumer(bus, ConsumerConfig{
		Exchange:   cfg.OrderExchange,
		Queue:      cfg.OrderQueue,
		RoutingKey: "", // fanout ignora routing keys
		Prefetch:   cfg.Prefetch,
	}, log)
	return &OrderConsumer{consumer: consumer, decreaser: decreaser, log: log}
}

// Initialize declara la topología del consumer.
func (c *OrderConsumer) Initialize() error {
	return c.consumer.Initialize()
}

// Start comienza a consumir órdenes.
func (c *OrderConsumer) Start(ctx context.Context) error {
	return c.consumer.StartConsuming(ctx, c.handle)
}

// handle decodifica el evento y ejecuta el descuento. Un payload malformado
// devuelve error y termina en la DLQ igual que un fallo de negocio.
func (c *OrderConsumer) handle(ctx context.Context, body []byte) error {
	evt, err := event.DecodeOrderCreated(body)
	if err != nil {
		return err
	}
	c.log.Debug().Str("order_id", evt.OrderID).Msg("evento de orden recibido")
	return c.decreaser.Execute(ctx, evt)
}

// Close cierra el canal del consumer.
func (c *OrderConsumer) Close() error {
	return c.consumer.Close()
}
