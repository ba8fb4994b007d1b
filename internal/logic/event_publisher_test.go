package logic

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"peerpay_settlement/internal/constants"
	"peerpay_settlement/internal/models"
	"peerpay_settlement/pkg/snowflake"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newTestPublisher(t *testing.T, outboxRepo *mockOutboxRepository) *OrderEventPublisher {
	t.Helper()
	idGen, err := snowflake.NewGenerator(1)
	require.NoError(t, err)
	return NewOrderEventPublisher(outboxRepo, idGen)
}

func TestOrderEventPublisher_PublishStatusChanged(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		outboxRepo := newMockOutboxRepository()
		p := newTestPublisher(t, outboxRepo)

		var created *models.OutboxEvent
		outboxRepo.On("Create", mock.Anything, mock.MatchedBy(func(e *models.OutboxEvent) bool {
			created = e
			return true
		})).Return(nil).Once()

		id, err := p.PublishStatusChanged(context.Background(), "order-123",
			constants.OrderAccepted, constants.OrderEscrowFunding)
		require.NoError(t, err)
		assert.False(t, id.IsZero())

		require.NotNil(t, created)
		assert.Equal(t, id, created.ID)
		assert.Equal(t, constants.EventOrderStatusChanged.String(), created.EventType)
		assert.Equal(t, "order-123", created.SubjectID)
		assert.Equal(t, models.OutboxStatusPending, created.Status)
		assert.Zero(t, created.Attempts)
		assert.False(t, created.CreatedAt.IsZero())

		var envelope models.EventEnvelope
		require.NoError(t, json.Unmarshal([]byte(created.Payload), &envelope))
		assert.Equal(t, constants.EventOrderStatusChanged.String(), envelope.Type)
		assert.Equal(t, "order-123", envelope.OrderID)
		assert.NotZero(t, envelope.Seq)

		var data models.StatusChangedData
		require.NoError(t, json.Unmarshal(envelope.Data, &data))
		assert.Equal(t, "accepted", data.From)
		assert.Equal(t, "escrow_funding", data.To)

		outboxRepo.AssertExpectations(t)
	})

	t.Run("StoreFailurePropagates", func(t *testing.T) {
		outboxRepo := newMockOutboxRepository()
		p := newTestPublisher(t, outboxRepo)

		storeErr := errors.New("connection reset")
		outboxRepo.On("Create", mock.Anything, mock.Anything).Return(storeErr).Once()

		id, err := p.PublishStatusChanged(context.Background(), "order-123",
			constants.OrderFiatSent, constants.OrderFiatConfirmed)
		require.Error(t, err)
		assert.ErrorIs(t, err, storeErr)
		assert.True(t, id.IsZero())

		outboxRepo.AssertExpectations(t)
	})
}

func TestOrderEventPublisher_PublishOrderCreated(t *testing.T) {
	outboxRepo := newMockOutboxRepository()
	p := newTestPublisher(t, outboxRepo)

	var created *models.OutboxEvent
	outboxRepo.On("Create", mock.Anything, mock.MatchedBy(func(e *models.OutboxEvent) bool {
		created = e
		return true
	})).Return(nil).Once()

	_, err := p.PublishOrderCreated(context.Background(), "order-456", models.OrderCreatedData{
		BuyerID:        "buyer-1",
		SellerID:       "seller-1",
		Amount:         "0.5",
		CryptoCurrency: "BTC",
		FiatCurrency:   "EUR",
	})
	require.NoError(t, err)

	var envelope models.EventEnvelope
	require.NoError(t, json.Unmarshal([]byte(created.Payload), &envelope))
	var data models.OrderCreatedData
	require.NoError(t, json.Unmarshal(envelope.Data, &data))
	assert.Equal(t, "buyer-1", data.BuyerID)
	assert.Equal(t, "BTC", data.CryptoCurrency)

	outboxRepo.AssertExpectations(t)
}

func TestOrderEventPublisher_SequencesAreDistinct(t *testing.T) {
	outboxRepo := newMockOutboxRepository()
	p := newTestPublisher(t, outboxRepo)

	seen := make(map[uint64]bool)
	outboxRepo.On("Create", mock.Anything, mock.MatchedBy(func(e *models.OutboxEvent) bool {
		var envelope models.EventEnvelope
		if err := json.Unmarshal([]byte(e.Payload), &envelope); err != nil {
			return false
		}
		seen[envelope.Seq] = true
		return true
	})).Return(nil).Times(3)

	for i := 0; i < 3; i++ {
		_, err := p.PublishDisputeRaised(context.Background(), "order-789", models.DisputeRaisedData{
			RaisedBy: "buyer-1",
			Reason:   "fiat not received",
		})
		require.NoError(t, err)
	}

	assert.Len(t, seen, 3)
	outboxRepo.AssertExpectations(t)
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
