package catalog

import (
	"github.com/google/uuid"

	"github.com/angelmondragon/threadline-backend/pkg/activation"
	"github.com/angelmondragon/threadline-backend/pkg/db/models"
	"github.com/angelmondragon/threadline-backend/pkg/enums"
)

// ImageSnapshot is a read-only copy of a variant image.
type ImageSnapshot struct {
	URL      string
	Role     enums.ImageRole
	Status   enums.MediaStatus
	Position int
}

// VariantSnapshot is the read model handed to the pricing engine: the variant,
// the fields of its product that pricing needs and its ordered images.
type VariantSnapshot struct {
	VariantID         uuid.UUID
	ProductID         uuid.UUID
	SKU               string
	VariantTitle      string
	ProductTitle      string
	ProductSlug       string
	Stock             int64
	PriceOverride     *int64
	ProductPrice      *int64
	Currency          enums.Currency
	Active            bool
	ProductPublished  bool
	CanonicalImageURL *string
	Images            []ImageSnapshot
}

// EffectivePrice is the variant override, else the product price.
func (s VariantSnapshot) EffectivePrice() *int64 {
	return activation.EffectivePrice(s.PriceOverride, s.ProductPrice)
}

// PolicyInput converts the snapshot into the activation policy input.
func (s VariantSnapshot) PolicyInput() activation.VariantSnapshot {
	images := make([]activation.Image, 0, len(s.Images))
	for _, img := range s.Images {
		images = append(images, activation.Image{Role: img.Role, Status: img.Status, Reference: img.URL})
	}
	return activation.VariantSnapshot{
		SKU:            s.SKU,
		Stock:          s.Stock,
		EffectivePrice: s.EffectivePrice(),
		Images:         images,
	}
}

// PrimaryImageURL returns the primary image, else the first image, else "".
func (s VariantSnapshot) PrimaryImageURL() string {
	for _, img := range s.Images {
		if img.Role.IsPrimary() {
			return img.URL
		}
	}
	if len(s.Images) > 0 {
		return s.Images[0].URL
	}
	return ""
}

func snapshotFromModel(v *models.Variant) VariantSnapshot {
	snap := VariantSnapshot{
		VariantID:     v.ID,
		ProductID:     v.ProductID,
		SKU:           v.SKU,
		VariantTitle:  v.Title,
		Stock:         v.Stock,
		PriceOverride: v.PriceOverrideMinor,
		Active:        v.Active,
		Images:        make([]ImageSnapshot, 0, len(v.Images)),
	}
	if v.Product != nil {
		snap.ProductTitle = v.Product.Title
		snap.ProductSlug = v.Product.Slug
		snap.ProductPrice = v.Product.PriceMinor
		snap.Currency = v.Product.Currency
		snap.ProductPublished = v.Product.Published
		snap.CanonicalImageURL = v.Product.CanonicalImageURL
	}
	for _, img := range v.Images {
		snap.Images = append(snap.Images, ImageSnapshot{
			URL:      img.URL,
			Role:     img.Role,
			Status:   img.Status,
			Position: img.Position,
		})
	}
	return snap
}
