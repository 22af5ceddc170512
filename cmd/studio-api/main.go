package main

import (
	"net/http"

	callbackshandler "tunestudio/internal/callbacks/handler"
	callbacksrepo "tunestudio/internal/callbacks/repository"
	callbacksservice "tunestudio/internal/callbacks/service"
	callbacksvalidator "tunestudio/internal/callbacks/validator"
	clientshandler "tunestudio/internal/clients/handler"
	clientsrepo "tunestudio/internal/clients/repository"
	clientsservice "tunestudio/internal/clients/service"
	clientsvalidator "tunestudio/internal/clients/validator"
	ordershandler "tunestudio/internal/orders/handler"
	ordersrepo "tunestudio/internal/orders/repository"
	ordersservice "tunestudio/internal/orders/service"
	ordersvalidator "tunestudio/internal/orders/validator"
	"tunestudio/pkg/app"
	"tunestudio/pkg/config"
	"tunestudio/pkg/kafka"
	kafka_config "tunestudio/pkg/kafka/config"
	kafka_middleware "tunestudio/pkg/kafka/middleware"
)

const ServiceName = "studio-api"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()

	application := app.NewApplication(cfg, ServiceName)
	application.SignRoute(http.MethodPost, callbackshandler.CreatePath)

	events := initEvents(cfg, application)

	clientRepo := clientsrepo.NewMongoClientRepository(cfg)
	clientService := clientsservice.NewClientService(
		clientRepo,
		clientsvalidator.NewClientValidator(),
		events,
		cfg,
	)

	callbackService := callbacksservice.NewCallbackService(
		callbacksrepo.NewMongoCallbackRepository(cfg),
		clientRepo,
		callbacksvalidator.NewCallbackValidator(),
		events,
		cfg,
	)

	orderService := ordersservice.NewOrderService(
		ordersrepo.NewMongoOrderRepository(cfg),
		clientRepo,
		ordersvalidator.NewOrderValidator(),
		events,
		cfg,
	)

	cfg.Log.Info("Services initialized")

	application.SetApp(
		clientshandler.NewClientHandler(clientService, cfg.Log),
		callbackshandler.NewCallbackHandler(callbackService, cfg.Log),
		ordershandler.NewOrderHandler(orderService, cfg.Log),
	)
	application.Run()
}

// initEvents returns nil when events are disabled so services skip publishing.
func initEvents(cfg *config.Config, application *app.Application) kafka.Publisher {
	if !cfg.EventsEnabled {
		cfg.Log.Info("Event publishing disabled")
		return nil
	}

	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}
	kafkaCfg.LogConfiguration(cfg.Log)

	producer, err := kafka.NewProducer(kafkaCfg, cfg.CallbackTopic, cfg.CallbackDLQTopic, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
	}

	if kafkaCfg.EnableMiddleware {
		producer.Use(kafka_middleware.LoggingProducerMiddleware(cfg.Log))
		if reg := application.Registerer(); reg != nil {
			producer.Use(kafka_middleware.NewMetrics(reg).ProducerMiddleware())
		}
	}

	application.OnShutdown(producer.Close)
	return producer
}
