package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/threadline-backend/pkg/activation"
	"github.com/angelmondragon/threadline-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/threadline-backend/pkg/errors"
	"github.com/angelmondragon/threadline-backend/pkg/logger"
	"github.com/angelmondragon/threadline-backend/pkg/outbox"
)

// Service runs the catalog publish workflow.
type Service interface {
	Checklist(ctx context.Context, variantID uuid.UUID) (*activation.Verdict, error)
	SetVariantActive(ctx context.Context, variantID uuid.UUID, active bool, actor string) (*VariantState, error)
	SetProductPublished(ctx context.Context, productID uuid.UUID, published bool, actor string) (*ProductState, error)
}

// VariantState is returned after an activation change.
type VariantState struct {
	VariantID          uuid.UUID          `json:"variantId"`
	Active             bool               `json:"active"`
	Verdict            activation.Verdict `json:"verdict"`
	ProductUnpublished bool               `json:"productUnpublished"`
}

// ProductState is returned after a publish change.
type ProductState struct {
	ProductID uuid.UUID                 `json:"productId"`
	Published bool                      `json:"published"`
	Verdict   activation.ProductVerdict `json:"verdict"`
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type service struct {
	repo   *Repository
	tx     txRunner
	outbox outboxEmitter
	logg   *logger.Logger
}

// NewService constructs the catalog service.
func NewService(repo *Repository, tx txRunner, emitter outboxEmitter, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if emitter == nil {
		return nil, fmt.Errorf("outbox emitter required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, tx: tx, outbox: emitter, logg: logg}, nil
}

func (s *service) Checklist(ctx context.Context, variantID uuid.UUID) (*activation.Verdict, error) {
	variant, err := s.repo.FindVariant(ctx, variantID)
	if err != nil {
		return nil, mapLookupError(err, "variant")
	}
	verdict := activation.Evaluate(snapshotFromModel(variant).PolicyInput())
	return &verdict, nil
}

func (s *service) SetVariantActive(ctx context.Context, variantID uuid.UUID, active bool, actor string) (*VariantState, error) {
	var state *VariantState
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		variant, err := repo.FindVariant(ctx, variantID)
		if err != nil {
			return mapLookupError(err, "variant")
		}
		verdict := activation.Evaluate(snapshotFromModel(variant).PolicyInput())
		state = &VariantState{VariantID: variant.ID, Active: variant.Active, Verdict: verdict}

		if variant.Active == active {
			return nil
		}

		if active {
			if strings.TrimSpace(variant.SKU) == "" {
				return pkgerrors.New(pkgerrors.CodeValidation, "variant sku is required before activation")
			}
			if !verdict.CanActivate {
				return pkgerrors.New(pkgerrors.CodeActivationBlocked, "variant does not meet activation requirements").
					WithDetails(map[string]any{
						"variantId": variant.ID.String(),
						"reasons":   verdict.Reasons,
						"checklist": verdict.Checklist,
					})
			}
		}

		if err := repo.SetVariantActive(ctx, variant.ID, active); err != nil {
			return err
		}
		state.Active = active

		eventType := outbox.EventVariantActivated
		if !active {
			eventType = outbox.EventVariantDeactivated
			unpublished, err := s.unpublishIfEmpty(ctx, tx, repo, variant.Product, actor)
			if err != nil {
				return err
			}
			state.ProductUnpublished = unpublished
		}

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     eventType,
			AggregateType: outbox.AggregateVariant,
			AggregateID:   variant.ID,
			Actor:         actor,
			Data:          map[string]any{"sku": variant.SKU, "productId": variant.ProductID.String()},
		})
	})
	if err != nil {
		return nil, err
	}

	logCtx := s.logg.WithFields(ctx, map[string]any{"variant_id": variantID.String(), "active": state.Active})
	s.logg.Info(logCtx, "catalog.variant_activation")
	return state, nil
}

// unpublishIfEmpty keeps a published product from being left without any
// active variant.
func (s *service) unpublishIfEmpty(ctx context.Context, tx *gorm.DB, repo *Repository, product *models.Product, actor string) (bool, error) {
	if product == nil || !product.Published {
		return false, nil
	}
	remaining, err := repo.CountActiveVariants(ctx, product.ID)
	if err != nil {
		return false, err
	}
	if remaining > 0 {
		return false, nil
	}
	if err := repo.SetProductPublished(ctx, product.ID, false); err != nil {
		return false, err
	}
	return true, s.outbox.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     outbox.EventProductUnpublished,
		AggregateType: outbox.AggregateProduct,
		AggregateID:   product.ID,
		Actor:         actor,
		Data:          map[string]any{"reason": "no active variants"},
	})
}

func (s *service) SetProductPublished(ctx context.Context, productID uuid.UUID, published bool, actor string) (*ProductState, error) {
	var state *ProductState
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		product, err := repo.FindProduct(ctx, productID)
		if err != nil {
			return mapLookupError(err, "product")
		}

		variants := make([]activation.ProductVariant, 0, len(product.Variants))
		for i := range product.Variants {
			v := &product.Variants[i]
			v.Product = product
			variants = append(variants, activation.ProductVariant{
				ID:       v.ID.String(),
				Active:   v.Active,
				Snapshot: snapshotFromModel(v).PolicyInput(),
			})
		}
		verdict := activation.EvaluateProduct(variants)
		state = &ProductState{ProductID: product.ID, Published: product.Published, Verdict: verdict}

		if product.Published == published {
			return nil
		}
		if published && !verdict.CanPublish {
			return pkgerrors.New(pkgerrors.CodeActivationBlocked, "product does not meet publish requirements").
				WithDetails(map[string]any{
					"productId": product.ID.String(),
					"reasons":   verdict.Reasons,
					"blocking":  verdict.Blocking,
				})
		}

		if err := repo.SetProductPublished(ctx, product.ID, published); err != nil {
			return err
		}
		state.Published = published

		eventType := outbox.EventProductPublished
		if !published {
			eventType = outbox.EventProductUnpublished
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     eventType,
			AggregateType: outbox.AggregateProduct,
			AggregateID:   product.ID,
			Actor:         actor,
			Data:          map[string]any{"slug": product.Slug},
		})
	})
	if err != nil {
		return nil, err
	}

	logCtx := s.logg.WithFields(ctx, map[string]any{"product_id": productID.String(), "published": state.Published})
	s.logg.Info(logCtx, "catalog.product_publish")
	return state, nil
}

func mapLookupError(err error, entity string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, entity+" not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load "+entity)
}
