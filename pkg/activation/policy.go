// Package activation decides whether a variant may be sold and whether a
// product may be published. Catalog administration and checkout both call
// Evaluate so the two never disagree.
package activation

import (
	"net/url"
	"strings"

	"github.com/angelmondragon/threadline-backend/pkg/enums"
)

// Check identifies one condition of the variant checklist.
type Check string

const (
	CheckHasImages             Check = "hasImages"
	CheckHasExactlyOnePrimary  Check = "hasExactlyOnePrimary"
	CheckPrimaryReady          Check = "primaryReady"
	CheckPrimaryReferenceValid Check = "primaryReferenceValid"
	CheckHasPrice              Check = "hasPrice"
)

// Checks lists every variant condition in evaluation order.
var Checks = []Check{
	CheckHasImages,
	CheckHasExactlyOnePrimary,
	CheckPrimaryReady,
	CheckPrimaryReferenceValid,
	CheckHasPrice,
}

// Image is the slice of a variant image the policy looks at.
type Image struct {
	Role      enums.ImageRole
	Status    enums.MediaStatus
	Reference string
}

// VariantSnapshot is the policy input. EffectivePrice is the variant override
// or, when absent, the owning product's price.
type VariantSnapshot struct {
	SKU            string
	Stock          int64
	EffectivePrice *int64
	Images         []Image
}

// CheckResult is one row of the rendered checklist.
type CheckResult struct {
	Check  Check `json:"check"`
	Passed bool  `json:"passed"`
}

// Verdict is the outcome of Evaluate. Reasons holds the failing checks in
// evaluation order and is empty when CanActivate is true.
type Verdict struct {
	CanActivate bool          `json:"canActivate"`
	Reasons     []Check       `json:"reasons"`
	Checklist   []CheckResult `json:"checklist"`
}

// Has reports whether the verdict lists the given failing check.
func (v Verdict) Has(check Check) bool {
	for _, reason := range v.Reasons {
		if reason == check {
			return true
		}
	}
	return false
}

// Evaluate runs every check without short-circuiting.
func Evaluate(v VariantSnapshot) Verdict {
	primaries := primaryImages(v.Images)

	results := map[Check]bool{
		CheckHasImages:             len(v.Images) > 0,
		CheckHasExactlyOnePrimary:  len(primaries) == 1,
		CheckPrimaryReady:          allPrimaries(primaries, func(img Image) bool { return img.Status.Servable() }),
		CheckPrimaryReferenceValid: allPrimaries(primaries, func(img Image) bool { return IsAbsoluteHTTPReference(img.Reference) }),
		CheckHasPrice:              HasPrice(v.EffectivePrice),
	}

	verdict := Verdict{
		CanActivate: true,
		Reasons:     []Check{},
		Checklist:   make([]CheckResult, 0, len(Checks)),
	}
	for _, check := range Checks {
		passed := results[check]
		verdict.Checklist = append(verdict.Checklist, CheckResult{Check: check, Passed: passed})
		if !passed {
			verdict.CanActivate = false
			verdict.Reasons = append(verdict.Reasons, check)
		}
	}
	return verdict
}

// HasPrice is the effective-price rule shared with the pricing engine.
func HasPrice(effective *int64) bool {
	return effective != nil && *effective >= 0
}

// EffectivePrice resolves the variant override, falling back to the product price.
func EffectivePrice(override, productPrice *int64) *int64 {
	if override != nil {
		return override
	}
	return productPrice
}

// IsAbsoluteHTTPReference reports whether ref parses as an absolute http(s) URL.
func IsAbsoluteHTTPReference(ref string) bool {
	trimmed := strings.TrimSpace(ref)
	if trimmed == "" {
		return false
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func primaryImages(images []Image) []Image {
	out := make([]Image, 0, 1)
	for _, img := range images {
		if img.Role.IsPrimary() {
			out = append(out, img)
		}
	}
	return out
}

// allPrimaries fails when there is no primary image at all.
func allPrimaries(primaries []Image, ok func(Image) bool) bool {
	if len(primaries) == 0 {
		return false
	}
	for _, img := range primaries {
		if !ok(img) {
			return false
		}
	}
	return true
}
