//go:build wireinject
// +build wireinject

package main

import (
	"peerpay_settlement/internal/app"
	"peerpay_settlement/internal/conf"
	"peerpay_settlement/internal/dao/mongodb"
	"peerpay_settlement/internal/dao/repository"
	"peerpay_settlement/internal/limiter"
	"peerpay_settlement/internal/live"
	"peerpay_settlement/internal/logger"
	"peerpay_settlement/internal/mq"
	"peerpay_settlement/internal/mq/rabbitmq"
	"peerpay_settlement/internal/provider"
	"peerpay_settlement/internal/service"
	"peerpay_settlement/internal/worker"

	"github.com/google/wire"
)

// baseProviders contains the components every app variant shares.
var baseProviders = wire.NewSet(
	wire.FieldsOf(new(*conf.AppConfig), "LogConfig", "MongodbConfig", "WorkerConfig", "RabbitMQConfig", "LiveConfig", "Port"),
	provider.ProvideAppMode,
	logger.NewLogger,
	mongodb.NewMongoDB,
	provider.ProvideDatabase,
	provider.ProvideOrderEventsTopic,
	provider.ProvideHealthServer,
	mongodb.NewOutboxDAO,
	wire.Bind(new(repository.OutboxRepository), new(*mongodb.OutboxDAO)),
	mongodb.NewHeartbeatDAO,
	wire.Bind(new(repository.HeartbeatRepository), new(*mongodb.HeartbeatDAO)),
	live.NewHub,
	wire.Bind(new(worker.Bridge), new(*live.Hub)),
	rabbitmq.NewPublisher,
	wire.Bind(new(mq.Publisher), new(*rabbitmq.Publisher)),
	worker.NewOutboxProcessor,
	worker.NewHealthMonitor,
	provideWorkers,
)

// liveFeedProviders contains the authentication stack for the live feed.
var liveFeedProviders = wire.NewSet(
	wire.FieldsOf(new(*conf.AppConfig), "RedisConfig", "RateLimiterConfig"),
	provider.ProvideRelationClient,
	provider.ProvideJwtManager,
	provider.ProvideRedisNamespace,
	provider.ProvideRedisClient,
	limiter.NewManager,
	live.NewWSHandler,
)

// provideWorkers collects the background workers run by every app variant.
func provideWorkers(p *worker.OutboxProcessor, m *worker.HealthMonitor) []worker.Worker {
	return []worker.Worker{p, m}
}

// provideNilHttpHandlerRegister provides a nil register for apps without HTTP routes.
func provideNilHttpHandlerRegister() app.HttpHandlerRegister {
	return nil
}

func InitializeAPIApp(appConfig *conf.AppConfig) (*app.App, func(), error) {
	wire.Build(
		baseProviders,
		liveFeedProviders,
		provider.ProvideKnownWorkers,
		service.NewDebugService,
		app.NewHttpHandlerRegister,
		app.NewApp,
	)
	return nil, nil, nil
}

func InitializeWorkerApp(appConfig *conf.AppConfig) (*app.App, func(), error) {
	wire.Build(
		baseProviders,
		provideNilHttpHandlerRegister,
		app.NewApp,
	)
	return nil, nil, nil
}
