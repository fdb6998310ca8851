package activation

// ProductCheck identifies one condition of the product publish gate.
type ProductCheck string

const (
	ProductCheckHasActiveVariant       ProductCheck = "hasActiveVariant"
	ProductCheckActiveVariantsEligible ProductCheck = "activeVariantsEligible"
)

// ProductVariant pairs a variant's active flag with its policy input.
type ProductVariant struct {
	ID       string
	Active   bool
	Snapshot VariantSnapshot
}

// ProductVerdict is the outcome of EvaluateProduct. Blocking maps each active
// variant that fails the variant policy to its verdict.
type ProductVerdict struct {
	CanPublish bool               `json:"canPublish"`
	Reasons    []ProductCheck     `json:"reasons"`
	Blocking   map[string]Verdict `json:"blocking,omitempty"`
}

// EvaluateProduct applies the publish gate: at least one active variant, and
// every active variant passes Evaluate on its own.
func EvaluateProduct(variants []ProductVariant) ProductVerdict {
	verdict := ProductVerdict{CanPublish: true, Reasons: []ProductCheck{}}

	active := 0
	for _, variant := range variants {
		if !variant.Active {
			continue
		}
		active++
		if v := Evaluate(variant.Snapshot); !v.CanActivate {
			if verdict.Blocking == nil {
				verdict.Blocking = map[string]Verdict{}
			}
			verdict.Blocking[variant.ID] = v
		}
	}

	if active == 0 {
		verdict.CanPublish = false
		verdict.Reasons = append(verdict.Reasons, ProductCheckHasActiveVariant)
	}
	if len(verdict.Blocking) > 0 {
		verdict.CanPublish = false
		verdict.Reasons = append(verdict.Reasons, ProductCheckActiveVariantsEligible)
	}
	return verdict
}
