package catalog

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/threadline-backend/pkg/db/dbtest"
	"github.com/angelmondragon/threadline-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/threadline-backend/pkg/errors"
)

func TestLookupVariantsByIDAndSKU(t *testing.T) {
	client := dbtest.Open(t)
	repo := NewRepository(client.DB())
	ctx := context.Background()

	product := seedProduct(t, client, "essential-tee", int64Ptr(35000), true)
	black := seedVariant(t, client, product, "TEE-BLK-M", 5, true,
		secondary("https://cdn.example/back.jpg", 2),
		primaryReady("https://cdn.example/front.jpg"),
	)
	white := seedVariant(t, client, product, "TEE-WHT-M", 0, false)

	snaps, err := repo.LookupVariants(ctx, []uuid.UUID{black.ID, uuid.New()}, []string{"TEE-WHT-M", "MISSING"})
	require.NoError(t, err)
	require.Len(t, snaps, 2)

	bySKU := map[string]VariantSnapshot{}
	for _, snap := range snaps {
		bySKU[snap.SKU] = snap
	}

	got := bySKU["TEE-BLK-M"]
	assert.Equal(t, black.ID, got.VariantID)
	assert.Equal(t, "Essential Tee", got.ProductTitle)
	assert.True(t, got.ProductPublished)
	assert.True(t, got.Active)
	require.NotNil(t, got.EffectivePrice())
	assert.Equal(t, int64(35000), *got.EffectivePrice())
	require.Len(t, got.Images, 2)
	assert.Equal(t, "https://cdn.example/front.jpg", got.Images[0].URL, "images are ordered by position")
	assert.Equal(t, "https://cdn.example/front.jpg", got.PrimaryImageURL())

	assert.Equal(t, white.ID, bySKU["TEE-WHT-M"].VariantID)
	assert.False(t, bySKU["TEE-WHT-M"].Active)

	none, err := repo.LookupVariants(ctx, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestDecrementStockHasFloorAtZero(t *testing.T) {
	client := dbtest.Open(t)
	repo := NewRepository(client.DB())
	ctx := context.Background()

	product := seedProduct(t, client, "hoodie", int64Ptr(79900), true)
	variant := seedVariant(t, client, product, "HOOD-GRY-L", 3, true)

	require.NoError(t, repo.DecrementStock(ctx, variant.ID, 2))

	err := repo.DecrementStock(ctx, variant.ID, 2)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeOutOfStock, typed.Code())
	details := typed.Details().(map[string]any)
	assert.Equal(t, int64(1), details["available"])
	assert.Equal(t, int64(2), details["requested"])

	var reloaded models.Variant
	require.NoError(t, client.DB().First(&reloaded, "id = ?", variant.ID).Error)
	assert.Equal(t, int64(1), reloaded.Stock)

	err = repo.DecrementStock(ctx, uuid.New(), 1)
	assert.Equal(t, pkgerrors.CodeVariantNotFound, pkgerrors.CodeOf(err))

	err = repo.DecrementStock(ctx, variant.ID, 0)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))
}

func TestCountActiveVariants(t *testing.T) {
	client := dbtest.Open(t)
	repo := NewRepository(client.DB())

	product := seedProduct(t, client, "cap", nil, false)
	seedVariant(t, client, product, "CAP-BLK", 1, true)
	seedVariant(t, client, product, "CAP-RED", 1, false)

	count, err := repo.CountActiveVariants(context.Background(), product.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}
