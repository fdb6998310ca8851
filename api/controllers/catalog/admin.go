package catalog

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/angelmondragon/threadline-backend/api/middleware"
	"github.com/angelmondragon/threadline-backend/api/responses"
	internalcatalog "github.com/angelmondragon/threadline-backend/internal/catalog"
	"github.com/angelmondragon/threadline-backend/pkg/activation"
	pkgerrors "github.com/angelmondragon/threadline-backend/pkg/errors"
	"github.com/angelmondragon/threadline-backend/pkg/logger"
)

type catalogService interface {
	Checklist(ctx context.Context, variantID uuid.UUID) (*activation.Verdict, error)
	SetVariantActive(ctx context.Context, variantID uuid.UUID, active bool, actor string) (*internalcatalog.VariantState, error)
	SetProductPublished(ctx context.Context, productID uuid.UUID, published bool, actor string) (*internalcatalog.ProductState, error)
}

// VariantChecklist renders the activation checklist for a variant.
func VariantChecklist(svc catalogService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}
		variantID, err := parseID(r, "variantId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		verdict, err := svc.Checklist(r.Context(), variantID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, verdict)
	}
}

// SetVariantActive activates or deactivates a variant.
func SetVariantActive(svc catalogService, active bool, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}
		variantID, err := parseID(r, "variantId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		state, err := svc.SetVariantActive(r.Context(), variantID, active, middleware.ActorFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, state)
	}
}

// SetProductPublished publishes or unpublishes a product.
func SetProductPublished(svc catalogService, published bool, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}
		productID, err := parseID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		state, err := svc.SetProductPublished(r.Context(), productID, published, middleware.ActorFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, state)
	}
}

func parseID(r *http.Request, param string) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, param))
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, param+" is required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+param)
	}
	return id, nil
}
