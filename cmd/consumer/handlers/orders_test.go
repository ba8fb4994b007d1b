package handlers

import (
	"context"
	"errors"
	"testing"

	"peerpay_settlement/internal/conf"
	"peerpay_settlement/internal/db"
	"peerpay_settlement/internal/logic"
	"peerpay_settlement/internal/models"
	"peerpay_settlement/pkg/snowflake"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T, outboxRepo *mockOutboxRepository) *OrderLifecycleHandler {
	t.Helper()
	idGen, err := snowflake.NewGenerator(1)
	require.NoError(t, err)
	publisher := logic.NewOrderEventPublisher(outboxRepo, idGen)
	cfg := &conf.RabbitMQConfig{OrderLifecycleQueue: "order_lifecycle"}
	return NewOrderLifecycleHandler(publisher, db.NewNoOpTransactionManager(), zap.NewNop(), cfg)
}

func TestOrderLifecycleHandler_Handle(t *testing.T) {
	t.Run("RecordsStatusChange", func(t *testing.T) {
		outboxRepo := newMockOutboxRepository()
		h := newTestHandler(t, outboxRepo)

		var created *models.OutboxEvent
		outboxRepo.On("Create", mock.Anything, mock.MatchedBy(func(e *models.OutboxEvent) bool {
			created = e
			return true
		})).Return(nil).Once()

		body := []byte(`{"type":"order_status_changed","order_id":"order-1","from":"accepted","to":"escrow_funding"}`)
		require.NoError(t, h.Handle(context.Background(), amqp.Delivery{Body: body}))

		require.NotNil(t, created)
		assert.Equal(t, "order_status_changed", created.EventType)
		assert.Equal(t, "order-1", created.SubjectID)
		assert.Equal(t, models.OutboxStatusPending, created.Status)
		outboxRepo.AssertExpectations(t)
	})

	t.Run("RecordsDisputeRaised", func(t *testing.T) {
		outboxRepo := newMockOutboxRepository()
		h := newTestHandler(t, outboxRepo)

		outboxRepo.On("Create", mock.Anything, mock.MatchedBy(func(e *models.OutboxEvent) bool {
			return e.EventType == "dispute_raised"
		})).Return(nil).Once()

		body := []byte(`{"type":"dispute_raised","order_id":"order-1","data":{"raised_by":"buyer-1","reason":"fiat not received"}}`)
		require.NoError(t, h.Handle(context.Background(), amqp.Delivery{Body: body}))
		outboxRepo.AssertExpectations(t)
	})

	t.Run("MalformedBodyIsAckedAndDropped", func(t *testing.T) {
		outboxRepo := newMockOutboxRepository()
		h := newTestHandler(t, outboxRepo)

		require.NoError(t, h.Handle(context.Background(), amqp.Delivery{Body: []byte("{not json")}))
		outboxRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("MissingOrderIDIsDropped", func(t *testing.T) {
		outboxRepo := newMockOutboxRepository()
		h := newTestHandler(t, outboxRepo)

		body := []byte(`{"type":"order_created","data":{}}`)
		require.NoError(t, h.Handle(context.Background(), amqp.Delivery{Body: body}))
		outboxRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("UnknownTypeIsDropped", func(t *testing.T) {
		outboxRepo := newMockOutboxRepository()
		h := newTestHandler(t, outboxRepo)

		body := []byte(`{"type":"order_archived","order_id":"order-1"}`)
		require.NoError(t, h.Handle(context.Background(), amqp.Delivery{Body: body}))
		outboxRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("StoreFailureRequeues", func(t *testing.T) {
		outboxRepo := newMockOutboxRepository()
		h := newTestHandler(t, outboxRepo)

		outboxRepo.On("Create", mock.Anything, mock.Anything).
			Return(errors.New("connection reset")).Once()

		body := []byte(`{"type":"order_status_changed","order_id":"order-1","from":"accepted","to":"escrow_funding"}`)
		err := h.Handle(context.Background(), amqp.Delivery{Body: body})
		require.Error(t, err)
		outboxRepo.AssertExpectations(t)
	})
}

func TestOrderLifecycleHandler_QueueName(t *testing.T) {
	h := newTestHandler(t, newMockOutboxRepository())
	assert.Equal(t, "order_lifecycle", h.QueueName())
}

// --- Mocks ---

type mockOutboxRepository struct {
	mock.Mock
}

func newMockOutboxRepository() *mockOutboxRepository {
	return &mockOutboxRepository{}
}

func (m *mockOutboxRepository) Create(ctx context.Context, event *models.OutboxEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *mockOutboxRepository) ClaimDue(ctx context.Context, limit int, maxAttempts int) ([]*models.OutboxEvent, error) {
	panic("not implemented")
}

func (m *mockOutboxRepository) MarkSent(ctx context.Context, id primitive.ObjectID) error {
	panic("not implemented")
}

func (m *mockOutboxRepository) MarkFailed(ctx context.Context, id primitive.ObjectID, errText string, maxAttempts int) error {
	panic("not implemented")
}

func (m *mockOutboxRepository) CountsByStatus(ctx context.Context) (map[string]int64, error) {
	panic("not implemented")
}

func (m *mockOutboxRepository) Recent(ctx context.Context, status string, limit int64) ([]*models.OutboxEvent, error) {
	panic("not implemented")
}
