package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/threadline-backend/pkg/enums"
)

// Product owns variants and carries the fallback price used when a variant has
// no override.
type Product struct {
	ID                uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Slug              string         `gorm:"column:slug;not null;uniqueIndex"`
	Title             string         `gorm:"column:title;not null"`
	PriceMinor        *int64         `gorm:"column:price_minor"`
	Currency          enums.Currency `gorm:"column:currency;type:text;not null;default:'SEK'"`
	Published         bool           `gorm:"column:published;not null;default:false"`
	CanonicalImageURL *string        `gorm:"column:canonical_image_url"`
	Variants          []Variant      `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt         time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}

func (p *Product) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
