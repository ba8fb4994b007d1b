//go:build wireinject
// +build wireinject

package main

import (
	"peerpay_settlement/cmd/consumer/handlers"
	"peerpay_settlement/internal/conf"
	"peerpay_settlement/internal/dao/mongodb"
	"peerpay_settlement/internal/dao/repository"
	"peerpay_settlement/internal/logger"
	"peerpay_settlement/internal/logic"
	"peerpay_settlement/internal/mq/rabbitmq"
	"peerpay_settlement/internal/provider"
	"peerpay_settlement/pkg/snowflake"

	"github.com/google/wire"
)

// provideHandlers collects all individual MessageHandlers into a slice.
func provideHandlers(orderHandler *handlers.OrderLifecycleHandler, notificationHandler *handlers.NotificationHandler) []handlers.MessageHandler {
	return []handlers.MessageHandler{
		orderHandler,
		notificationHandler,
	}
}

// InitializeConsumerApp creates the consumer application and its dependencies.
func InitializeConsumerApp(appConfig *conf.AppConfig) (*ConsumerApp, func(), error) {
	wire.Build(
		wire.FieldsOf(new(*conf.AppConfig), "LogConfig", "MongodbConfig", "RabbitMQConfig", "WorkerConfig"),
		provider.ProvideAppMode,

		logger.NewLogger,
		mongodb.NewMongoDB,
		provider.ProvideDatabase,
		provider.ProvideTransactionManager,
		provider.ProvideMachineID,
		snowflake.NewGenerator,

		mongodb.NewOutboxDAO,
		wire.Bind(new(repository.OutboxRepository), new(*mongodb.OutboxDAO)),

		logic.NewOrderEventPublisher,

		rabbitmq.NewConsumer,
		handlers.NewOrderLifecycleHandler,
		handlers.NewNotificationHandler,
		provideHandlers,

		NewConsumerApp,
	)
	return nil, nil, nil
}
