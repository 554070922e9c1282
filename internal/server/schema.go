// internal/server/schema.go
package server

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// draftPatchSchema is the wire-level gate for merge-update payloads. The
// typed applier revalidates enum membership and team shape; this layer
// rejects structurally bad JSON early with a field-by-field report.
const draftPatchSchema = `{
	"type": "object",
	"additionalProperties": false,
	"properties": {
		"companyName": {"type": "string"},
		"address": {"type": "string"},
		"city": {"type": "string"},
		"state": {"type": "string"},
		"country": {"type": "string"},
		"website": {"type": "string"},
		"socials": {
			"type": "object",
			"additionalProperties": false,
			"properties": {
				"x": {"type": "string"},
				"linkedin": {"type": "string"},
				"instagram": {"type": "string"},
				"tiktok": {"type": "string"},
				"facebook": {"type": "string"}
			}
		},
		"team": {
			"type": "array",
			"minItems": 1,
			"items": {
				"type": "object",
				"additionalProperties": false,
				"properties": {
					"firstName": {"type": "string"},
					"lastName": {"type": "string"},
					"role": {"type": "string"},
					"linkedin": {"type": "string"},
					"email": {"type": "string"},
					"phone": {"type": "string"},
					"bio": {"type": "string"},
					"skillsMarkets": {"type": "string"}
				}
			}
		},
		"operatingName": {"type": "string"},
		"legalName": {"type": "string"},
		"foundedDate": {"type": "string"},
		"stage": {"type": "string"},
		"problem": {"type": "string"},
		"strengths": {"type": "string"},
		"productTags": {"type": "array", "items": {"type": "string"}},
		"competition": {"type": "string"},
		"traction": {"type": "string"},
		"valuation": {"type": "string"},
		"currency": {"type": "string"},
		"keyCustomers": {"type": "string"},
		"raising": {"type": "string"},
		"amountRaising": {"type": "string"},
		"salesRevenueRange": {"type": "string"},
		"pmf": {"type": "string"},
		"biz": {"type": "string"},
		"vision": {"type": "string"},
		"productVideo": {"type": "string"},
		"bizVideo": {"type": "string"},
		"companyLinkedIn": {"type": "string"},
		"twitter": {"type": "string"},
		"instagram": {"type": "string"},
		"industryFit": {"type": "string"},
		"industryFitAlt": {"type": "string"},
		"productDescription": {"type": "string"},
		"productType": {"type": "string"},
		"revenueRange": {"type": "string"},
		"tradeShows": {"type": "string"},
		"currentAssets": {"type": "string"}
	}
}`

var compiledPatchSchema = gojsonschema.NewStringLoader(draftPatchSchema)

// validatePatchPayload checks raw merge-update JSON against the closed
// draft schema before it reaches the typed applier.
func validatePatchPayload(raw []byte) error {
	result, err := gojsonschema.Validate(compiledPatchSchema, gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return fmt.Errorf("patch payload is not valid JSON: %w", err)
	}
	if result.Valid() {
		return nil
	}
	issues := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		issues = append(issues, e.String())
	}
	return fmt.Errorf("patch payload rejected: %s", strings.Join(issues, "; "))
}
