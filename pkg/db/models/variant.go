package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/threadline-backend/pkg/enums"
)

// Variant is the sellable unit. Stock is decremented only when an order is placed.
type Variant struct {
	ID                 uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID          uuid.UUID      `gorm:"column:product_id;type:uuid;not null"`
	SKU                string         `gorm:"column:sku;not null;uniqueIndex"`
	Title              string         `gorm:"column:title;not null"`
	Stock              int64          `gorm:"column:stock;not null;default:0"`
	PriceOverrideMinor *int64         `gorm:"column:price_override_minor"`
	Active             bool           `gorm:"column:active;not null;default:false"`
	Product            *Product       `gorm:"foreignKey:ProductID"`
	Images             []VariantImage `gorm:"foreignKey:VariantID;constraint:OnDelete:CASCADE"`
	CreatedAt          time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}

func (v *Variant) BeforeCreate(*gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}

// VariantImage is an ordered image attached to a variant.
type VariantImage struct {
	ID        uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	VariantID uuid.UUID         `gorm:"column:variant_id;type:uuid;not null"`
	Role      enums.ImageRole   `gorm:"column:role;type:text;not null;default:'secondary'"`
	Status    enums.MediaStatus `gorm:"column:status;type:text;not null;default:'pending'"`
	URL       string            `gorm:"column:url;not null"`
	Position  int               `gorm:"column:position;not null;default:0"`
	CreatedAt time.Time         `gorm:"column:created_at;autoCreateTime"`
}

func (i *VariantImage) BeforeCreate(*gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
