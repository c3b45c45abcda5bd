package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/Harshal-SL/InstaDrive/internal/reservations/service"
	"github.com/Harshal-SL/InstaDrive/pkg/kafka"
	kafka_config "github.com/Harshal-SL/InstaDrive/pkg/kafka/config"
	kafka_middleware "github.com/Harshal-SL/InstaDrive/pkg/kafka/middleware"
	"github.com/Harshal-SL/InstaDrive/pkg/logger"
)

const ServiceName = "notifier"

const (
	consumerGroup = "notifier"
	dlqTopic      = "reservation-events-dlq"
	journalPath   = "logs/reservations.log"
)

// notifier consumes reservation lifecycle events and appends them to a
// local journal, one line per event. It stands in for an outbound
// notification channel.
type notifier struct {
	log  *logger.Logger
	path string
	mu   sync.Mutex
}

func (n *notifier) handle(ctx context.Context, msg kafka.Message) error {
	var event service.ReservationEvent
	if err := msg.DecodeValue(&event); err != nil {
		return kafka.NewPermanentError("failed to decode reservation event", err)
	}

	line := fmt.Sprintf("%s %s reference=%s car=%s user=%s start=%s end=%s amount=%.2f status=%s\n",
		time.Now().UTC().Format(time.RFC3339),
		msg.GetEventType(),
		event.Reference,
		event.CarID,
		event.UserID,
		event.StartDate.Format(time.DateOnly),
		event.EndDate.Format(time.DateOnly),
		event.Amount,
		event.Status,
	)

	n.mu.Lock()
	defer n.mu.Unlock()

	f, err := os.OpenFile(n.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return kafka.NewTransientError("failed to open notification journal", err)
	}
	defer f.Close()

	if _, err := f.WriteString(line); err != nil {
		return kafka.NewTransientError("failed to append notification", err)
	}
	return nil
}

func main() {
	log := logger.New(logger.Config{Service: ServiceName})

	if err := os.MkdirAll(filepath.Dir(journalPath), 0o755); err != nil {
		log.Fatal("Failed to create journal directory", "error", err)
	}

	kafkaCfg := kafka_config.Load()
	kafkaCfg.LogConfiguration(log.Info)

	n := &notifier{log: log, path: journalPath}

	consumer, err := kafka.NewConsumer(kafkaCfg, service.TopicReservationEvents, consumerGroup, dlqTopic, n.handle)
	if err != nil {
		log.Fatal("Failed to create Kafka consumer", "error", err)
	}

	if kafkaCfg.EnableMiddleware {
		consumer.Use(kafka_middleware.LoggingConsumerMiddleware(log))
	}

	ctx, cancel := context.WithCancel(context.Background())

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-shutdown
		log.Info("Shutdown signal received", "signal", sig)
		cancel()
	}()

	log.Info("Notifier consuming reservation events",
		"topic", service.TopicReservationEvents,
		"group", consumerGroup,
		"journal", journalPath,
	)

	if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("Consumer stopped with error", "error", err)
	}

	if err := consumer.Close(); err != nil {
		log.Error("Failed to close consumer", "error", err)
	}
	log.Info("Notifier stopped")
}
