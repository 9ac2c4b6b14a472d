package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jhoicas/inventory-events/internal/application/inventory"
	"github.com/jhoicas/inventory-events/internal/infrastructure/postgres"
	"github.com/jhoicas/inventory-events/internal/infrastructure/rabbitmq"
	httpRouter "github.com/jhoicas/inventory-events/internal/interfaces/http"
	"github.com/jhoicas/inventory-events/pkg/config"
	"github.com/jhoicas/inventory-events/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	// Bus de eventos: una sola conexión AMQP para todo el proceso, construida
	// aquí e inyectada a los consumers. Se cierra después de los consumers.
	bus, err := rabbitmq.Connect(cfg.Rabbit.URL)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a RabbitMQ")
	}
	defer bus.Close()

	commandTimeout := time.Duration(cfg.App.CommandTimeoutMS) * time.Millisecond

	// Cada comando recibe una unidad de trabajo fresca por ejecución.
	uowFactory := postgres.NewUnitOfWorkFactory(pool)
	createProductCmd := inventory.NewCreateProductCommand(uowFactory, commandTimeout)
	decreaseStockCmd := inventory.NewDecreaseStockCommand(uowFactory, commandTimeout, log)

	// Las queries de lectura operan contra el pool ambiente, sin transacción.
	poolRepo := postgres.NewInventoryRepository(pool)
	listInventoryQ := inventory.NewListInventoryQuery(poolRepo)
	checkStockQ := inventory.NewCheckStockAvailabilityQuery(poolRepo)

	orderConsumer := rabbitmq.NewOrderConsumer(bus, cfg.Rabbit, decreaseStockCmd, log)
	if err := orderConsumer.Initialize(); err != nil {
		log.Fatal().Err(err).Msg("inicializar consumer de órdenes")
	}
	defer orderConsumer.Close()
	if err := orderConsumer.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("arrancar consumer de órdenes")
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Inventory Events API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		CreateProduct: createProductCmd,
		ListInventory: listInventoryQ,
		CheckStock:    checkStockQ,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	// Consumers primero, bus después (los defer corren en orden inverso).
	log.Info().Msg("aplicación detenida")
}
