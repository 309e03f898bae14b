package main

import (
	"context"
	"fmt"

	"openspace/internal/notifications"
	reservationshandler "openspace/internal/reservations/handler"
	reservationsrepository "openspace/internal/reservations/repository"
	reservationsservice "openspace/internal/reservations/service"
	reservationsvalidator "openspace/internal/reservations/validator"
	spaceshandler "openspace/internal/spaces/handler"
	spacesrepository "openspace/internal/spaces/repository"
	spacesservice "openspace/internal/spaces/service"
	spacesvalidator "openspace/internal/spaces/validator"
	"openspace/pkg/app"
	"openspace/pkg/auth"
	"openspace/pkg/config"
	"openspace/pkg/contracts"
	"openspace/pkg/kafka"
	kafka_config "openspace/pkg/kafka/config"
	kafka_middleware "openspace/pkg/kafka/middleware"
	"openspace/pkg/locker"
)

const ServiceName = "openspace"

func main() {
	cfg := config.Load(ServiceName)
	if cfg.StorageDriver == config.StorageMongo {
		cfg.SetMongo()
	}

	cfg.Log.Info("Starting openspace service")

	gateway, closeGateway, err := initGateway(cfg)
	if err != nil {
		cfg.Log.Fatal("Failed to initialize notification gateway", "notifier", cfg.Notifier, "error", err)
	}

	handlers, dispatcher := initServices(cfg, gateway)

	serverApp := app.NewApplication()
	serverApp.SetApp(cfg, handlers...)
	serverApp.OnShutdown(func(ctx context.Context) {
		drain(ctx, cfg, dispatcher)
	})
	serverApp.OnShutdown(func(context.Context) {
		if err := closeGateway(); err != nil {
			cfg.Log.Error("Failed to close notification gateway", "error", err)
		}
	})
	serverApp.Run()
}

type repositories struct {
	spaces       spacesrepository.SpaceRepository
	reservations reservationsrepository.ReservationRepository
}

func initRepositories(cfg *config.Config) repositories {
	if cfg.StorageDriver == config.StorageMemory {
		cfg.Log.Warn("Using in-memory storage; data is lost on restart")
		return repositories{
			spaces:       spacesrepository.NewMemorySpaceRepository(),
			reservations: reservationsrepository.NewMemoryReservationRepository(),
		}
	}
	return repositories{
		spaces:       spacesrepository.NewMongoSpaceRepository(cfg),
		reservations: reservationsrepository.NewMongoReservationRepository(cfg),
	}
}

// initLocker always serializes in-process; LOCK_MODE=mongo adds a lock
// document so replicas sharing the database serialize too.
func initLocker(cfg *config.Config) locker.Locker {
	local := locker.NewKeyed()
	if cfg.LockMode != config.LockMongo {
		return local
	}
	return locker.Chain(local, reservationsrepository.NewSpaceLockRepository(cfg))
}

func initGateway(cfg *config.Config) (notifications.Gateway, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Notifier {
	case config.NotifierSendGrid:
		return notifications.NewSendGridGateway(cfg.SendGridAPIKey, cfg.SendGridFromEmail, cfg.SendGridFromName, cfg.Log), noop, nil

	case config.NotifierKafka:
		kcfg, err := kafka_config.Load()
		if err != nil {
			return nil, nil, err
		}
		kcfg.LogConfiguration(cfg.Log.Info)
		producer, err := kafka.NewProducer(kcfg, cfg.NotificationsTopic, cfg.Log)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create notifications producer: %w", err)
		}
		producer.Use(kafka_middleware.LoggingProducerMiddleware(cfg.Log))
		return notifications.NewKafkaGateway(producer), producer.Close, nil

	default:
		return notifications.NewLogGateway(cfg.Log), noop, nil
	}
}

func initServices(cfg *config.Config, gateway notifications.Gateway) ([]contracts.Handler, *notifications.Dispatcher) {
	repos := initRepositories(cfg)
	spaceLocker := initLocker(cfg)
	authenticator := auth.NewAuthenticator(cfg.JWTSecret, cfg.Log)
	dispatcher := notifications.NewDispatcher(gateway, cfg.NotificationTimeout, cfg.Log)

	spaceService := spacesservice.NewSpaceService(
		repos.spaces,
		repos.reservations,
		spaceLocker,
		spacesvalidator.NewSpaceValidator(cfg.Log),
		cfg,
	)
	reservationService := reservationsservice.NewReservationService(
		repos.reservations,
		repos.spaces,
		spaceLocker,
		reservationsvalidator.NewReservationValidator(cfg.Log),
		dispatcher,
		cfg,
	)

	cfg.Log.Info("Services initialized",
		"storage_driver", cfg.StorageDriver,
		"lock_mode", cfg.LockMode,
		"notifier", cfg.Notifier,
	)

	return []contracts.Handler{
		spaceshandler.NewSpaceHandler(spaceService, authenticator, cfg.Log),
		reservationshandler.NewReservationHandler(reservationService, authenticator, cfg.Log),
	}, dispatcher
}

func drain(ctx context.Context, cfg *config.Config, dispatcher *notifications.Dispatcher) {
	done := make(chan struct{})
	go func() {
		dispatcher.Wait()
		close(done)
	}()

	select {
	case <-done:
		cfg.Log.Info("Pending notifications delivered")
	case <-ctx.Done():
		cfg.Log.Warn("Shutdown deadline reached with notifications still in flight")
	}
}
