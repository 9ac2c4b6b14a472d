package rabbitmq

import (
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// EventBus administra la única conexión AMQP compartida del proceso.
// Se construye explícitamente en main y se inyecta a cada consumer: el orden
// de apagado (consumers primero, bus después) queda en manos del caller.
// Cada consumer abre su propio canal sobre esta conexión; los canales no se
// comparten entre consumers.
type EventBus struct {
	conn *amqp.Connection
}

// Connect abre la conexión al broker.
func Connect(url string) (*EventBus, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("conectar a RabbitMQ: %w", err)
	}
	return &EventBus{conn: conn}, nil
}

// Channel abre un canal nuevo sobre la conexión compartida.
func (b *EventBus) Channel() (*amqp.Channel, error) {
	ch, err := b.conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("abrir canal AMQP: %w", err)
	}
	return ch, nil
}

// Close cierra la conexión. Llamar después de cerrar todos los consumers.
func (b *EventBus) Close() error {
	if b.conn == nil || b.conn.IsClosed() {
		return nil
	}
	return b.conn.Close()
}
