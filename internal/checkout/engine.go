package checkout

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/angelmondragon/threadline-backend/internal/catalog"
	"github.com/angelmondragon/threadline-backend/pkg/activation"
	"github.com/angelmondragon/threadline-backend/pkg/config"
	"github.com/angelmondragon/threadline-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/threadline-backend/pkg/errors"
	"github.com/angelmondragon/threadline-backend/pkg/logger"
	"github.com/angelmondragon/threadline-backend/pkg/metrics"
	"github.com/angelmondragon/threadline-backend/pkg/money"
)

// MaxLines caps the number of lines in one cart request.
const MaxLines = 100

// CatalogLookup returns current snapshots for the referenced variants.
type CatalogLookup interface {
	LookupVariants(ctx context.Context, ids []uuid.UUID, skus []string) ([]catalog.VariantSnapshot, error)
}

// Pricer is the contract order placement depends on.
type Pricer interface {
	PriceCart(ctx context.Context, req Request) (*Quote, error)
}

// Engine prices carts. It only reads the catalog.
type Engine struct {
	catalog     CatalogLookup
	origin      *url.URL
	productPath string
	taxRateBP   int64
	currency    enums.Currency
	locale      string
	metrics     *metrics.Commerce
	logg        *logger.Logger
}

// NewEngine builds the pricing engine from the storefront configuration.
func NewEngine(lookup CatalogLookup, cfg config.StorefrontConfig, m *metrics.Commerce, logg *logger.Logger) (*Engine, error) {
	if lookup == nil {
		return nil, fmt.Errorf("catalog lookup required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	origin, err := url.Parse(strings.TrimSpace(cfg.SiteOrigin))
	if err != nil || !activation.IsAbsoluteHTTPReference(origin.String()) {
		return nil, fmt.Errorf("site origin %q must be an absolute http(s) url", cfg.SiteOrigin)
	}
	if cfg.TaxRateBP < 0 || cfg.TaxRateBP > money.MaxTaxRateBP {
		return nil, fmt.Errorf("tax rate %d out of range", cfg.TaxRateBP)
	}
	currency, err := enums.ParseCurrency(cfg.DefaultCurrency)
	if err != nil {
		return nil, err
	}
	productPath := cfg.ProductPath
	if productPath == "" {
		productPath = "/products"
	}
	return &Engine{
		catalog:     lookup,
		origin:      origin,
		productPath: productPath,
		taxRateBP:   cfg.TaxRateBP,
		currency:    currency,
		locale:      cfg.DefaultLocale,
		metrics:     m,
		logg:        logg,
	}, nil
}

// PriceCart resolves, validates and prices every line in input order. Any
// rejection aborts the whole request; there are no partial quotes.
func (e *Engine) PriceCart(ctx context.Context, req Request) (*Quote, error) {
	quote, err := e.priceCart(ctx, req)
	if err != nil {
		e.metrics.IncQuote(string(pkgerrors.CodeOf(err)))
		return nil, err
	}
	e.metrics.IncQuote("ok")
	for _, w := range quote.Warnings {
		e.metrics.IncWarning(string(w.Type))
	}
	return quote, nil
}

func (e *Engine) priceCart(ctx context.Context, req Request) (*Quote, error) {
	currency, locale, err := e.validate(req)
	if err != nil {
		return nil, err
	}

	snapshots, err := e.lookup(ctx, req.Items)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]catalog.VariantSnapshot, len(snapshots))
	bySKU := make(map[string]catalog.VariantSnapshot, len(snapshots))
	for _, snap := range snapshots {
		byID[snap.VariantID] = snap
		bySKU[snap.SKU] = snap
	}

	quote := &Quote{
		Currency:  currency,
		Locale:    locale,
		LineItems: make([]LineItem, 0, len(req.Items)),
		Warnings:  []Warning{},
	}
	requested := make(map[uuid.UUID]int64, len(req.Items))

	for pos, line := range req.Items {
		snap, ok := resolve(line, byID, bySKU)
		if !ok {
			return nil, lineError(pkgerrors.CodeVariantNotFound, "variant not found", pos, line, nil)
		}
		if !snap.Active {
			return nil, lineError(pkgerrors.CodeVariantInactive, "variant is not active", pos, line, &snap)
		}
		if !snap.ProductPublished {
			return nil, lineError(pkgerrors.CodeProductNotPublished, "product is not published", pos, line, &snap)
		}
		verdict := activation.Evaluate(snap.PolicyInput())
		if reasons := purchaseBlockers(verdict); len(reasons) > 0 {
			return nil, lineError(pkgerrors.CodeVariantInactive, "variant is not purchasable", pos, line, &snap).
				WithDetails(mergeDetails(pos, line, &snap, map[string]any{"reasons": reasons}))
		}

		// Duplicate lines for one variant draw on the same stock.
		requested[snap.VariantID] += line.Quantity
		if requested[snap.VariantID] > snap.Stock {
			available := snap.Stock
			if available < 0 {
				available = 0
			}
			return nil, lineError(pkgerrors.CodeOutOfStock, "insufficient stock", pos, line, &snap).
				WithDetails(mergeDetails(pos, line, &snap, map[string]any{
					"available": available,
					"requested": requested[snap.VariantID],
				}))
		}

		price := snap.EffectivePrice()
		if verdict.Has(activation.CheckHasPrice) {
			return nil, lineError(pkgerrors.CodePriceMissing, "variant has no price", pos, line, &snap)
		}
		if snap.Currency != "" && snap.Currency != currency {
			return nil, lineError(pkgerrors.CodePriceMissing, "variant is not priced in the store currency", pos, line, &snap).
				WithDetails(mergeDetails(pos, line, &snap, map[string]any{
					"currency": snap.Currency,
					"expected": currency,
				}))
		}

		item, err := e.buildLineItem(snap, *price, line.Quantity)
		if err != nil {
			return nil, err
		}
		quote.LineItems = append(quote.LineItems, item)

		if line.ClientUnitPrice != nil && *line.ClientUnitPrice != *price {
			quote.Warnings = append(quote.Warnings, Warning{
				Type:         enums.CheckoutWarningTypePriceChanged,
				Position:     pos,
				Reference:    snap.SKU,
				OldUnitPrice: *line.ClientUnitPrice,
				NewUnitPrice: *price,
				Message:      fmt.Sprintf("price changed from %d to %d", *line.ClientUnitPrice, *price),
			})
		}

		if quote.OrderAmount, err = money.Add(quote.OrderAmount, item.TotalAmount); err != nil {
			return nil, err
		}
		if quote.OrderTaxAmount, err = money.Add(quote.OrderTaxAmount, item.TotalTaxAmount); err != nil {
			return nil, err
		}
	}

	if len(quote.Warnings) > 0 {
		logCtx := e.logg.WithField(ctx, "warnings", len(quote.Warnings))
		e.logg.Info(logCtx, "checkout.price_drift")
	}
	return quote, nil
}

func (e *Engine) validate(req Request) (enums.Currency, string, error) {
	if len(req.Items) == 0 {
		return "", "", pkgerrors.New(pkgerrors.CodeValidation, "cart has no items")
	}
	if len(req.Items) > MaxLines {
		return "", "", pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("cart exceeds %d lines", MaxLines))
	}
	for pos, line := range req.Items {
		if line.VariantID == nil && strings.TrimSpace(line.SKU) == "" {
			return "", "", pkgerrors.New(pkgerrors.CodeValidation, "each item needs a variantId or sku").
				WithDetails(map[string]any{"position": pos})
		}
		if line.Quantity <= 0 {
			return "", "", pkgerrors.New(pkgerrors.CodeValidation, "quantity must be a positive integer").
				WithDetails(map[string]any{"position": pos, "quantity": line.Quantity})
		}
		if line.ClientUnitPrice != nil && *line.ClientUnitPrice < 0 {
			return "", "", pkgerrors.New(pkgerrors.CodeValidation, "clientUnitPrice must be non-negative").
				WithDetails(map[string]any{"position": pos})
		}
	}

	currency := e.currency
	if req.Currency != "" && req.Currency != e.currency {
		return "", "", pkgerrors.New(pkgerrors.CodeValidation, "unsupported currency").
			WithDetails(map[string]any{"currency": req.Currency, "supported": e.currency})
	}
	locale := strings.TrimSpace(req.Locale)
	if locale == "" {
		locale = e.locale
	}
	return currency, locale, nil
}

func (e *Engine) lookup(ctx context.Context, lines []LineRequest) ([]catalog.VariantSnapshot, error) {
	ids := make([]uuid.UUID, 0, len(lines))
	skus := make([]string, 0, len(lines))
	for _, line := range lines {
		if line.VariantID != nil {
			ids = append(ids, *line.VariantID)
			continue
		}
		skus = append(skus, strings.TrimSpace(line.SKU))
	}
	snapshots, err := e.catalog.LookupVariants(ctx, ids, skus)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "catalog lookup failed")
	}
	return snapshots, nil
}

// purchaseBlockers drops hasPrice from the failing checks; a missing price is
// reported as PRICE_MISSING after the stock check.
func purchaseBlockers(verdict activation.Verdict) []activation.Check {
	out := make([]activation.Check, 0, len(verdict.Reasons))
	for _, reason := range verdict.Reasons {
		if reason != activation.CheckHasPrice {
			out = append(out, reason)
		}
	}
	return out
}

func resolve(line LineRequest, byID map[uuid.UUID]catalog.VariantSnapshot, bySKU map[string]catalog.VariantSnapshot) (catalog.VariantSnapshot, bool) {
	if line.VariantID != nil {
		snap, ok := byID[*line.VariantID]
		return snap, ok
	}
	snap, ok := bySKU[strings.TrimSpace(line.SKU)]
	return snap, ok
}

func (e *Engine) buildLineItem(snap catalog.VariantSnapshot, unitPrice, quantity int64) (LineItem, error) {
	total, err := money.ComputeLineTotal(unitPrice, quantity)
	if err != nil {
		return LineItem{}, err
	}
	tax, err := money.ComputeTaxPortion(total, e.taxRateBP)
	if err != nil {
		return LineItem{}, err
	}

	image := snap.PrimaryImageURL()
	if image == "" && snap.CanonicalImageURL != nil {
		image = *snap.CanonicalImageURL
	}

	return LineItem{
		Reference:      snap.SKU,
		Name:           snap.ProductTitle,
		VariantName:    snap.VariantTitle,
		Quantity:       quantity,
		UnitPrice:      unitPrice,
		TaxRate:        e.taxRateBP,
		TotalAmount:    total,
		TotalTaxAmount: tax,
		ImageURL:       e.absolute(image),
		ProductURL:     e.productURL(snap),
		MerchantData:   MerchantData{ProductID: snap.ProductID, VariantID: snap.VariantID},
	}, nil
}

// absolute resolves ref against the site origin. Already absolute refs are kept.
func (e *Engine) absolute(ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}
	parsed, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	return e.origin.ResolveReference(parsed).String()
}

func (e *Engine) productURL(snap catalog.VariantSnapshot) string {
	u := e.origin.JoinPath(e.productPath, snap.ProductSlug)
	q := u.Query()
	q.Set("sku", snap.SKU)
	u.RawQuery = q.Encode()
	return u.String()
}

func lineError(code pkgerrors.Code, msg string, pos int, line LineRequest, snap *catalog.VariantSnapshot) *pkgerrors.Error {
	return pkgerrors.New(code, msg).WithDetails(mergeDetails(pos, line, snap, nil))
}

func mergeDetails(pos int, line LineRequest, snap *catalog.VariantSnapshot, extra map[string]any) map[string]any {
	details := map[string]any{"position": pos}
	if line.VariantID != nil {
		details["variantId"] = line.VariantID.String()
	}
	if sku := strings.TrimSpace(line.SKU); sku != "" {
		details["sku"] = sku
	}
	if snap != nil {
		details["variantId"] = snap.VariantID.String()
		details["sku"] = snap.SKU
		details["productId"] = snap.ProductID.String()
	}
	for k, v := range extra {
		details[k] = v
	}
	return details
}
