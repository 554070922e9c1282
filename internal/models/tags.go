// internal/models/tags.go
package models

// ProductTags is the closed vocabulary offered on the problem screen,
// grouped as food & nutrition, care & wellness, and pet tech.
var ProductTags = []string{
	"Specialized Diets",
	"Alternative Proteins",
	"Personalized Nutrition",
	"Supplements & Functional Ingredients",
	"Sustainable & Eco-friendly Solutions",
	"Fresh & Human-Grade Meal Services",
	"Treats & Snacks Innovation",

	"Veterinary Telehealth",
	"Preventive Care & Diagnostics",
	"Pet Insurance & Financing",
	"Behavior & Training Solutions",
	"Holistic & Alternative Therapies",
	"Grooming & Hygiene",
	"Pet Mobility & Recovery Solutions",
	"Animal Medicine",
	"Animal Health, other",

	"Pet Wearables & Trackers",
	"Pet-focused Social Platforms",
	"Pet Service Platforms",
	"Pet-focused E-commerce Innovations",
	"Interactive Toys & Smart Devices",
	"Pet Data & Insights Platforms",
	"AI-driven Pet Companions",
}

var productTagSet = func() map[string]struct{} {
	s := make(map[string]struct{}, len(ProductTags))
	for _, t := range ProductTags {
		s[t] = struct{}{}
	}
	return s
}()

// IsKnownProductTag reports whether tag belongs to the vocabulary.
func IsKnownProductTag(tag string) bool {
	_, ok := productTagSet[tag]
	return ok
}
