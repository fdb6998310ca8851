package orders

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/angelmondragon/threadline-backend/pkg/enums"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: conn}), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)
	return gormDB, mock
}

func TestUpdateIfRequiresNoPendingClaim(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := NewRepository(gormDB)

	mock.ExpectExec(`UPDATE "orders" SET .*"fulfillment_status"=.* WHERE \(id = \$\d+ AND fulfillment_status = \$\d+ AND payment_status = \$\d+\) AND pending_transition IS NULL`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	changed, err := repo.UpdateIf(context.Background(), uuid.New(), Expectation{
		Fulfillment: enums.FulfillmentStatusPacked,
		Payment:     enums.PaymentStatusAuthorized,
	}, map[string]any{"fulfillment_status": enums.FulfillmentStatusShipped})
	require.NoError(t, err)
	assert.True(t, changed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateIfWithClaimReportsLostRace(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := NewRepository(gormDB)

	mock.ExpectExec(`UPDATE "orders" SET .* AND pending_transition = \$\d+`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	changed, err := repo.UpdateIf(context.Background(), uuid.New(), Expectation{
		Fulfillment: enums.FulfillmentStatusShipped,
		Payment:     enums.PaymentStatusAuthorized,
		ClaimedBy:   enums.OrderTransitionCapturePayment,
	}, map[string]any{"payment_status": enums.PaymentStatusCaptured})
	require.NoError(t, err)
	assert.False(t, changed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClaimTakesOverStaleClaims(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := NewRepository(gormDB)

	mock.ExpectExec(`UPDATE "orders" SET .*"pending_transition"=.* \(pending_transition IS NULL OR pending_since < \$\d+\)`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	now := time.Now().UTC()
	claimed, err := repo.Claim(context.Background(), uuid.New(), Expectation{
		Fulfillment: enums.FulfillmentStatusShipped,
		Payment:     enums.PaymentStatusAuthorized,
	}, enums.OrderTransitionCapturePayment, now, now.Add(-30*time.Second))
	require.NoError(t, err)
	assert.True(t, claimed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClaimPropagatesDriverErrors(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := NewRepository(gormDB)

	mock.ExpectExec(`UPDATE "orders"`).WillReturnError(errors.New("connection reset"))

	_, err := repo.Claim(context.Background(), uuid.New(), Expectation{}, enums.OrderTransitionRefundPayment, time.Now(), time.Now())
	assert.Error(t, err)
}

func TestNextOrderNumberStartsAtFirst(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := NewRepository(gormDB)

	mock.ExpectQuery(`SELECT MAX\(order_number\) FROM "orders"`).
		WillReturnRows(sqlmock.NewRows([]string{"max"}).AddRow(nil))
	n, err := repo.NextOrderNumber(context.Background())
	require.NoError(t, err)
	assert.Equal(t, FirstOrderNumber, n)

	mock.ExpectQuery(`SELECT MAX\(order_number\) FROM "orders"`).
		WillReturnRows(sqlmock.NewRows([]string{"max"}).AddRow(int64(1041)))
	n, err = repo.NextOrderNumber(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1042), n)
}
