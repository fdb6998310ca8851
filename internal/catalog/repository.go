package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/threadline-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/threadline-backend/pkg/errors"
)

// Repository reads and updates products and variants.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

func orderedImages(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC").Order("id ASC")
}

// LookupVariants loads every variant matching one of ids or skus. Unknown
// references are absent from the result; callers decide what that means.
func (r *Repository) LookupVariants(ctx context.Context, ids []uuid.UUID, skus []string) ([]VariantSnapshot, error) {
	if len(ids) == 0 && len(skus) == 0 {
		return nil, nil
	}

	query := r.db.WithContext(ctx).
		Preload("Product").
		Preload("Images", orderedImages)
	switch {
	case len(ids) > 0 && len(skus) > 0:
		query = query.Where("id IN ? OR sku IN ?", ids, skus)
	case len(ids) > 0:
		query = query.Where("id IN ?", ids)
	default:
		query = query.Where("sku IN ?", skus)
	}

	var rows []models.Variant
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]VariantSnapshot, 0, len(rows))
	for i := range rows {
		out = append(out, snapshotFromModel(&rows[i]))
	}
	return out, nil
}

// FindVariant loads a variant with its product and ordered images.
func (r *Repository) FindVariant(ctx context.Context, id uuid.UUID) (*models.Variant, error) {
	var variant models.Variant
	err := r.db.WithContext(ctx).
		Preload("Product").
		Preload("Images", orderedImages).
		First(&variant, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &variant, nil
}

// FindProduct loads a product with every variant and image.
func (r *Repository) FindProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Preload("Variants", func(db *gorm.DB) *gorm.DB { return db.Order("sku ASC") }).
		Preload("Variants.Images", orderedImages).
		First(&product, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *Repository) SetVariantActive(ctx context.Context, id uuid.UUID, active bool) error {
	return r.db.WithContext(ctx).
		Model(&models.Variant{}).
		Where("id = ?", id).
		Update("active", active).Error
}

func (r *Repository) SetProductPublished(ctx context.Context, id uuid.UUID, published bool) error {
	return r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", id).
		Update("published", published).Error
}

// CountActiveVariants counts the active variants of a product.
func (r *Repository) CountActiveVariants(ctx context.Context, productID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Variant{}).
		Where("product_id = ? AND active = ?", productID, true).
		Count(&count).Error
	return count, err
}

// DecrementStock removes qty units from a variant, never letting stock drop
// below zero. When the floor would be crossed nothing changes and an
// OUT_OF_STOCK error reports what is left.
func (r *Repository) DecrementStock(ctx context.Context, variantID uuid.UUID, qty int64) error {
	if qty <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	res := r.db.WithContext(ctx).
		Model(&models.Variant{}).
		Where("id = ? AND stock >= ?", variantID, qty).
		Update("stock", gorm.Expr("stock - ?", qty))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 1 {
		return nil
	}

	var variant models.Variant
	if err := r.db.WithContext(ctx).Select("id", "sku", "stock").First(&variant, "id = ?", variantID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeVariantNotFound, "variant not found").
				WithDetails(map[string]any{"variantId": variantID.String()})
		}
		return err
	}
	return pkgerrors.New(pkgerrors.CodeOutOfStock, "insufficient stock").
		WithDetails(map[string]any{
			"variantId": variantID.String(),
			"sku":       variant.SKU,
			"available": variant.Stock,
			"requested": qty,
		})
}

// CommitStock decrements stock inside the caller's transaction.
func (r *Repository) CommitStock(ctx context.Context, tx *gorm.DB, variantID uuid.UUID, qty int64) error {
	return r.WithTx(tx).DecrementStock(ctx, variantID, qty)
}
