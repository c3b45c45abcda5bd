package main

import (
	"context"
	"time"

	fleethandler "github.com/Harshal-SL/InstaDrive/internal/fleet/handler"
	fleetrepository "github.com/Harshal-SL/InstaDrive/internal/fleet/repository"
	fleetservice "github.com/Harshal-SL/InstaDrive/internal/fleet/service"
	fleetvalidator "github.com/Harshal-SL/InstaDrive/internal/fleet/validator"
	"github.com/Harshal-SL/InstaDrive/internal/reservations/handler"
	"github.com/Harshal-SL/InstaDrive/internal/reservations/repository"
	"github.com/Harshal-SL/InstaDrive/internal/reservations/service"
	"github.com/Harshal-SL/InstaDrive/internal/reservations/validator"
	"github.com/Harshal-SL/InstaDrive/pkg/app"
	"github.com/Harshal-SL/InstaDrive/pkg/config"
	"github.com/Harshal-SL/InstaDrive/pkg/kafka"
	kafka_config "github.com/Harshal-SL/InstaDrive/pkg/kafka/config"
	kafka_middleware "github.com/Harshal-SL/InstaDrive/pkg/kafka/middleware"
)

const ServiceName = "reservations"

const dlqTopic = "reservation-events-dlq"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()

	cfg.Log.Info("Starting Reservations service")

	carService, reservationService, events := initServices(cfg)
	if events != nil {
		defer events.Close()
	}

	sweeper := service.NewSweeper(reservationService, cfg)
	sweeper.Start()

	serverApp := app.NewApplication()
	serverApp.SetApp(cfg,
		handler.NewReservationHandler(reservationService, cfg.Log),
		fleethandler.NewCarHandler(carService, cfg.Log),
	)
	serverApp.AddWorker(sweeper)
	serverApp.Run()
}

func initServices(cfg *config.Config) (fleetservice.CarService, service.ReservationService, *kafka.Producer) {
	ensureCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	carRepo := fleetrepository.NewMongoCarRepository(cfg)
	if err := carRepo.EnsureIndexes(ensureCtx); err != nil {
		cfg.Log.Fatal("Failed to ensure car indexes", "error", err)
	}
	carValidator := fleetvalidator.NewCarValidator(cfg.Log)
	carService := fleetservice.NewCarService(carRepo, carValidator, cfg)

	reservationRepo := repository.NewMongoReservationRepository(cfg)
	if err := reservationRepo.EnsureIndexes(ensureCtx); err != nil {
		cfg.Log.Fatal("Failed to ensure reservation indexes", "error", err)
	}
	lockRepo := repository.NewReservationLockRepository(cfg)
	reservationValidator := validator.NewReservationValidator(cfg.Log)

	events := initEventProducer(cfg)

	var publisher service.EventPublisher
	if events != nil {
		publisher = events
	}

	reservationService := service.NewReservationService(
		reservationRepo,
		lockRepo,
		reservationValidator,
		carService,
		publisher,
		cfg,
	)

	cfg.Log.Info("Reservations service initialized", "database", cfg.MongoDatabaseName)
	return carService, reservationService, events
}

// initEventProducer is best-effort: the service runs without event emission
// when the broker configuration is unusable.
func initEventProducer(cfg *config.Config) *kafka.Producer {
	kafkaCfg := kafka_config.Load()
	kafkaCfg.LogConfiguration(cfg.Log.Info)

	producer, err := kafka.NewProducer(kafkaCfg, service.TopicReservationEvents, dlqTopic)
	if err != nil {
		cfg.Log.Warn("Kafka producer unavailable, reservation events disabled", "error", err)
		return nil
	}

	if kafkaCfg.EnableMiddleware {
		producer.Use(kafka_middleware.LoggingProducerMiddleware(cfg.Log))
	}

	return producer
}
