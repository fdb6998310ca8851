package catalog

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/threadline-backend/pkg/db"
	"github.com/angelmondragon/threadline-backend/pkg/db/models"
	"github.com/angelmondragon/threadline-backend/pkg/enums"
)

func int64Ptr(v int64) *int64 { return &v }

func seedProduct(t *testing.T, client *db.Client, slug string, price *int64, published bool) *models.Product {
	t.Helper()
	product := &models.Product{Slug: slug, Title: "Essential Tee", PriceMinor: price, Currency: enums.CurrencySEK}
	require.NoError(t, client.DB().Create(product).Error)
	if published {
		require.NoError(t, client.DB().Model(product).Update("published", true).Error)
		product.Published = true
	}
	return product
}

func seedVariant(t *testing.T, client *db.Client, product *models.Product, sku string, stock int64, active bool, images ...models.VariantImage) *models.Variant {
	t.Helper()
	variant := &models.Variant{ProductID: product.ID, SKU: sku, Title: sku, Stock: stock}
	require.NoError(t, client.DB().Create(variant).Error)
	if active {
		require.NoError(t, client.DB().Model(variant).Update("active", true).Error)
		variant.Active = true
	}
	for i := range images {
		images[i].VariantID = variant.ID
		require.NoError(t, client.DB().Create(&images[i]).Error)
	}
	variant.Images = images
	return variant
}

func primaryReady(url string) models.VariantImage {
	return models.VariantImage{Role: enums.ImageRolePrimary, Status: enums.MediaStatusReady, URL: url, Position: 0}
}

func secondary(url string, position int) models.VariantImage {
	return models.VariantImage{Role: enums.ImageRoleSecondary, Status: enums.MediaStatusReady, URL: url, Position: position}
}
