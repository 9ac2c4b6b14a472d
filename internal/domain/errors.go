package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrProductNotFound   = errors.New("producto no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrDuplicate         = errors.New("recurso duplicado")
	ErrInsufficientStock = errors.New("stock insuficiente")

	// Ciclo de vida de la unidad de trabajo.
	ErrTransactionActive   = errors.New("ya hay una transacción activa")
	ErrNoActiveTransaction = errors.New("no hay una transacción activa")

	// Ciclo de vida de los consumers de eventos.
	ErrConsumerNotInitialized = errors.New("consumer no inicializado")
)
