package catalog

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/threadline-backend/pkg/activation"
	"github.com/angelmondragon/threadline-backend/pkg/db"
	"github.com/angelmondragon/threadline-backend/pkg/db/dbtest"
	"github.com/angelmondragon/threadline-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/threadline-backend/pkg/errors"
	"github.com/angelmondragon/threadline-backend/pkg/logger"
	"github.com/angelmondragon/threadline-backend/pkg/outbox"
)

func newTestService(t *testing.T) (Service, *db.Client, *outbox.Service) {
	t.Helper()
	client := dbtest.Open(t)
	events := outbox.NewService(outbox.NewRepository(client.DB()), nil)
	svc, err := NewService(NewRepository(client.DB()), client, events, logger.Nop())
	require.NoError(t, err)
	return svc, client, events
}

func TestNewServiceValidatesDependencies(t *testing.T) {
	_, err := NewService(nil, nil, nil, nil)
	require.Error(t, err)
}

func TestChecklistReportsEveryFailure(t *testing.T) {
	svc, client, _ := newTestService(t)
	product := seedProduct(t, client, "tee", nil, false)
	variant := seedVariant(t, client, product, "TEE-BLK-M", 4, false,
		primaryReady("https://cdn.example/a.jpg"),
		primaryReady("https://cdn.example/b.jpg"),
	)

	verdict, err := svc.Checklist(context.Background(), variant.ID)
	require.NoError(t, err)
	assert.False(t, verdict.CanActivate)
	assert.Equal(t, []activation.Check{activation.CheckHasExactlyOnePrimary, activation.CheckHasPrice}, verdict.Reasons)

	_, err = svc.Checklist(context.Background(), uuid.New())
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.CodeOf(err))
}

func TestSetVariantActiveBlockedByPolicy(t *testing.T) {
	svc, client, _ := newTestService(t)
	product := seedProduct(t, client, "tee", int64Ptr(35000), false)
	variant := seedVariant(t, client, product, "TEE-BLK-M", 4, false,
		models.VariantImage{Role: "primary", Status: "pending", URL: "https://cdn.example/a.jpg"},
	)

	_, err := svc.SetVariantActive(context.Background(), variant.ID, true, "ops")
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeActivationBlocked, typed.Code())
	details := typed.Details().(map[string]any)
	assert.Equal(t, []activation.Check{activation.CheckPrimaryReady}, details["reasons"])

	var reloaded models.Variant
	require.NoError(t, client.DB().First(&reloaded, "id = ?", variant.ID).Error)
	assert.False(t, reloaded.Active)
}

func TestSetVariantActiveRecordsEvent(t *testing.T) {
	svc, client, events := newTestService(t)
	ctx := context.Background()
	product := seedProduct(t, client, "tee", int64Ptr(35000), false)
	variant := seedVariant(t, client, product, "TEE-BLK-M", 4, false, primaryReady("https://cdn.example/a.jpg"))

	state, err := svc.SetVariantActive(ctx, variant.ID, true, "ops")
	require.NoError(t, err)
	assert.True(t, state.Active)
	assert.True(t, state.Verdict.CanActivate)

	again, err := svc.SetVariantActive(ctx, variant.ID, true, "ops")
	require.NoError(t, err)
	assert.True(t, again.Active)

	history, err := events.History(ctx, outbox.AggregateVariant, variant.ID)
	require.NoError(t, err)
	require.Len(t, history, 1, "repeating an activation is a no-op")
	assert.Equal(t, outbox.EventVariantActivated, history[0].EventType)
}

func TestDeactivatingLastVariantUnpublishesProduct(t *testing.T) {
	svc, client, _ := newTestService(t)
	ctx := context.Background()
	product := seedProduct(t, client, "tee", int64Ptr(35000), true)
	variant := seedVariant(t, client, product, "TEE-BLK-M", 4, true, primaryReady("https://cdn.example/a.jpg"))

	state, err := svc.SetVariantActive(ctx, variant.ID, false, "ops")
	require.NoError(t, err)
	assert.False(t, state.Active)
	assert.True(t, state.ProductUnpublished)

	var reloaded models.Product
	require.NoError(t, client.DB().First(&reloaded, "id = ?", product.ID).Error)
	assert.False(t, reloaded.Published)
}

func TestSetProductPublished(t *testing.T) {
	svc, client, _ := newTestService(t)
	ctx := context.Background()
	product := seedProduct(t, client, "tee", int64Ptr(35000), false)

	_, err := svc.SetProductPublished(ctx, product.ID, true, "ops")
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeActivationBlocked, typed.Code())
	assert.Equal(t, []activation.ProductCheck{activation.ProductCheckHasActiveVariant}, typed.Details().(map[string]any)["reasons"])

	seedVariant(t, client, product, "TEE-BLK-M", 4, true, primaryReady("https://cdn.example/a.jpg"))
	seedVariant(t, client, product, "TEE-BLK-L", 0, false)

	state, err := svc.SetProductPublished(ctx, product.ID, true, "ops")
	require.NoError(t, err)
	assert.True(t, state.Published)
	assert.True(t, state.Verdict.CanPublish)

	state, err = svc.SetProductPublished(ctx, product.ID, false, "ops")
	require.NoError(t, err)
	assert.False(t, state.Published)
}

func TestSetProductPublishedBlockedByIneligibleActiveVariant(t *testing.T) {
	svc, client, _ := newTestService(t)
	product := seedProduct(t, client, "tee", int64Ptr(35000), false)
	seedVariant(t, client, product, "TEE-BLK-M", 4, true, primaryReady("https://cdn.example/a.jpg"))
	broken := seedVariant(t, client, product, "TEE-BLK-S", 4, true)

	_, err := svc.SetProductPublished(context.Background(), product.ID, true, "ops")
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	blocking := typed.Details().(map[string]any)["blocking"].(map[string]activation.Verdict)
	assert.Contains(t, blocking, broken.ID.String())
}
