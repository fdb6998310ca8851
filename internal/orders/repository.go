package orders

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/threadline-backend/pkg/db/models"
	"github.com/angelmondragon/threadline-backend/pkg/enums"
	"github.com/angelmondragon/threadline-backend/pkg/pagination"
)

// FirstOrderNumber is assigned to the first order of an empty store.
const FirstOrderNumber int64 = 1001

// Expectation is the state a conditional update must still observe.
type Expectation struct {
	Fulfillment enums.FulfillmentStatus
	Payment     enums.PaymentStatus
	// ClaimedBy requires the row to carry this in-flight transition. When
	// empty the row must carry none.
	ClaimedBy enums.OrderTransition
}

// ListFilters narrows the admin order list.
type ListFilters struct {
	Fulfillment *enums.FulfillmentStatus
	Payment     *enums.PaymentStatus
}

// Repository reads and conditionally updates order rows.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// Create inserts the order together with its items.
func (r *Repository) Create(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

// NextOrderNumber returns one past the highest order number in use. The
// unique index on order_number rejects a concurrent duplicate.
func (r *Repository) NextOrderNumber(ctx context.Context) (int64, error) {
	var max *int64
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Select("MAX(order_number)").
		Scan(&max).Error
	if err != nil {
		return 0, err
	}
	if max == nil || *max < FirstOrderNumber {
		return FirstOrderNumber, nil
	}
	return *max + 1, nil
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Where("id = ?", id).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *Repository) FindByNumber(ctx context.Context, number int64) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Where("order_number = ?", number).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// UpdateIf applies updates only while the row still matches expect. It reports
// whether the row was changed; false means another request got there first.
func (r *Repository) UpdateIf(ctx context.Context, id uuid.UUID, expect Expectation, updates map[string]any) (bool, error) {
	q := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND fulfillment_status = ? AND payment_status = ?", id, expect.Fulfillment, expect.Payment)
	if expect.ClaimedBy == "" {
		q = q.Where("pending_transition IS NULL")
	} else {
		q = q.Where("pending_transition = ?", expect.ClaimedBy)
	}
	res := q.Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// Claim marks a gateway transition as in flight so that concurrent requests
// cannot reach the gateway for the same order. A claim older than staleBefore
// is treated as abandoned and may be taken over.
func (r *Repository) Claim(ctx context.Context, id uuid.UUID, expect Expectation, transition enums.OrderTransition, now, staleBefore time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND fulfillment_status = ? AND payment_status = ?", id, expect.Fulfillment, expect.Payment).
		Where("(pending_transition IS NULL OR pending_since < ?)", staleBefore).
		Updates(map[string]any{
			"pending_transition": transition,
			"pending_since":      now,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// ReleaseClaim clears an in-flight marker without touching any status.
func (r *Repository) ReleaseClaim(ctx context.Context, id uuid.UUID, transition enums.OrderTransition) error {
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND pending_transition = ?", id, transition).
		Updates(map[string]any{
			"pending_transition": nil,
			"pending_since":      nil,
		}).Error
}

// StaleClaims returns orders whose in-flight marker is older than before,
// oldest first.
func (r *Repository) StaleClaims(ctx context.Context, before time.Time, limit int) ([]models.Order, error) {
	var rows []models.Order
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("pending_transition IS NOT NULL AND pending_since < ?", before).
		Order("pending_since ASC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

// ExpireClaim clears a claim only while it is still the stale one observed by
// the caller, so a claim re-taken in the meantime is left alone.
func (r *Repository) ExpireClaim(ctx context.Context, id uuid.UUID, transition enums.OrderTransition, before time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND pending_transition = ? AND pending_since < ?", id, transition, before).
		Updates(map[string]any{
			"pending_transition": nil,
			"pending_since":      nil,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// List returns one page of orders, newest first, keyed on order number.
func (r *Repository) List(ctx context.Context, filters ListFilters, window pagination.Window) ([]models.Order, string, error) {
	q := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "order_number"}, Desc: true}).
		Limit(window.Fetch())

	if filters.Fulfillment != nil {
		q = q.Where("fulfillment_status = ?", *filters.Fulfillment)
	}
	if filters.Payment != nil {
		q = q.Where("payment_status = ?", *filters.Payment)
	}
	if window.Before != nil {
		q = q.Where("order_number < ?", *window.Before)
	}

	var rows []models.Order
	if err := q.Find(&rows).Error; err != nil {
		return nil, "", err
	}
	page, next := pagination.Trim(rows, window, func(o models.Order) int64 { return o.OrderNumber })
	return page, next, nil
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
