// internal/models/draft.go
package models

import (
	"encoding/json"
	"fmt"
)

// Enumerated field values. Drafts in progress may hold the empty string
// for any of these; a non-empty value must come from the closed set.
var (
	Stages             = []string{"Idea", "Pre-Launch", "Launched", "Growth"}
	Currencies         = []string{"USD", "EUR", "GBP", "CAD", "AUD", "JPY", "CNY"}
	RaisingValues      = []string{"yes", "no"}
	TradeShowValues    = []string{"yes", "no", "not-yet"}
	SalesRevenueRanges = []string{"Pre-revenue", "Under $1M", "$1-$5M", "$5-$15M", "$15M+"}
)

// Socials holds the company's social handles collected on the snapshot screen.
type Socials struct {
	X         string `json:"x"`
	LinkedIn  string `json:"linkedin"`
	Instagram string `json:"instagram"`
	TikTok    string `json:"tiktok"`
	Facebook  string `json:"facebook"`
}

// TeamMember is one entry on the team screen.
type TeamMember struct {
	FirstName     string `json:"firstName"`
	LastName      string `json:"lastName"`
	Role          string `json:"role"`
	LinkedIn      string `json:"linkedin"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	Bio           string `json:"bio"`
	SkillsMarkets string `json:"skillsMarkets"`
}

// FormDraft is the single shared record every wizard screen reads and writes.
type FormDraft struct {
	// Snapshot
	CompanyName string  `json:"companyName"`
	Address     string  `json:"address"`
	City        string  `json:"city"`
	State       string  `json:"state"`
	Country     string  `json:"country"`
	Website     string  `json:"website"`
	Socials     Socials `json:"socials"`

	// Team
	Team []TeamMember `json:"team"`

	// Basics
	OperatingName string `json:"operatingName"`
	LegalName     string `json:"legalName"`
	FoundedDate   string `json:"foundedDate"`
	Stage         string `json:"stage"`

	// Problem
	Problem     string   `json:"problem"`
	Strengths   string   `json:"strengths"`
	ProductTags []string `json:"productTags"`

	// Market
	Competition       string `json:"competition"`
	Traction          string `json:"traction"`
	Valuation         string `json:"valuation"`
	Currency          string `json:"currency"`
	KeyCustomers      string `json:"keyCustomers"`
	Raising           string `json:"raising"`
	AmountRaising     string `json:"amountRaising"`
	SalesRevenueRange string `json:"salesRevenueRange"`

	// Narratives
	PMF    string `json:"pmf"`
	Biz    string `json:"biz"`
	Vision string `json:"vision"`

	// Uploads and links
	ProductVideo    string `json:"productVideo"`
	BizVideo        string `json:"bizVideo"`
	CompanyLinkedIn string `json:"companyLinkedIn"`
	Twitter         string `json:"twitter"`
	Instagram       string `json:"instagram"`

	// Industry fit
	IndustryFit        string `json:"industryFit"`
	IndustryFitAlt     string `json:"industryFitAlt"`
	ProductDescription string `json:"productDescription"`
	ProductType        string `json:"productType"`

	// Financials
	RevenueRange  string `json:"revenueRange"`
	TradeShows    string `json:"tradeShows"`
	CurrentAssets string `json:"currentAssets"`

	// Set once, by submit. Never accepted through a patch.
	SubmittedAt string `json:"submittedAt,omitempty"`
}

// NewFormDraft returns the initial empty draft: one blank team member,
// USD currency, no tags.
func NewFormDraft() FormDraft {
	return FormDraft{
		Team:        []TeamMember{{}},
		Currency:    "USD",
		ProductTags: []string{},
	}
}

// ToMap renders the draft as a generic document for the store layer.
func (d FormDraft) ToMap() map[string]interface{} {
	raw, _ := json.Marshal(d)
	var m map[string]interface{}
	_ = json.Unmarshal(raw, &m)
	return m
}

// DraftFromMap decodes a stored document back into a typed draft.
func DraftFromMap(m map[string]interface{}) (FormDraft, error) {
	raw, err := json.Marshal(m)
	if err != nil {
		return FormDraft{}, err
	}
	var d FormDraft
	if err := json.Unmarshal(raw, &d); err != nil {
		return FormDraft{}, err
	}
	return d, nil
}

// ApplyPatch merges a shallow top-level patch into the draft. The key set
// is closed: unknown keys and submittedAt are rejected, enum fields must
// hold a value from their set (or empty to clear), and a team patch may
// never leave the roster empty. The draft is modified only when the whole
// patch is valid.
func (d *FormDraft) ApplyPatch(patch map[string]interface{}) error {
	next := *d
	for key, value := range patch {
		if err := next.applyField(key, value); err != nil {
			return err
		}
	}
	*d = next
	return nil
}

func (d *FormDraft) applyField(key string, value interface{}) error {
	switch key {
	case "companyName":
		return setString(&d.CompanyName, key, value)
	case "address":
		return setString(&d.Address, key, value)
	case "city":
		return setString(&d.City, key, value)
	case "state":
		return setString(&d.State, key, value)
	case "country":
		return setString(&d.Country, key, value)
	case "website":
		return setString(&d.Website, key, value)
	case "socials":
		return decodeInto(&d.Socials, key, value)
	case "team":
		var team []TeamMember
		if err := decodeInto(&team, key, value); err != nil {
			return err
		}
		if len(team) == 0 {
			return fmt.Errorf("field %q: team must keep at least one member", key)
		}
		d.Team = team
		return nil
	case "operatingName":
		return setString(&d.OperatingName, key, value)
	case "legalName":
		return setString(&d.LegalName, key, value)
	case "foundedDate":
		return setString(&d.FoundedDate, key, value)
	case "stage":
		return setEnum(&d.Stage, key, value, Stages)
	case "problem":
		return setString(&d.Problem, key, value)
	case "strengths":
		return setString(&d.Strengths, key, value)
	case "productTags":
		var tags []string
		if err := decodeInto(&tags, key, value); err != nil {
			return err
		}
		for _, t := range tags {
			if !IsKnownProductTag(t) {
				return fmt.Errorf("field %q: unknown product tag %q", key, t)
			}
		}
		d.ProductTags = tags
		return nil
	case "competition":
		return setString(&d.Competition, key, value)
	case "traction":
		return setString(&d.Traction, key, value)
	case "valuation":
		return setString(&d.Valuation, key, value)
	case "currency":
		return setEnum(&d.Currency, key, value, Currencies)
	case "keyCustomers":
		return setString(&d.KeyCustomers, key, value)
	case "raising":
		return setEnum(&d.Raising, key, value, RaisingValues)
	case "amountRaising":
		return setString(&d.AmountRaising, key, value)
	case "salesRevenueRange":
		return setEnum(&d.SalesRevenueRange, key, value, SalesRevenueRanges)
	case "pmf":
		return setString(&d.PMF, key, value)
	case "biz":
		return setString(&d.Biz, key, value)
	case "vision":
		return setString(&d.Vision, key, value)
	case "productVideo":
		return setString(&d.ProductVideo, key, value)
	case "bizVideo":
		return setString(&d.BizVideo, key, value)
	case "companyLinkedIn":
		return setString(&d.CompanyLinkedIn, key, value)
	case "twitter":
		return setString(&d.Twitter, key, value)
	case "instagram":
		return setString(&d.Instagram, key, value)
	case "industryFit":
		return setString(&d.IndustryFit, key, value)
	case "industryFitAlt":
		return setString(&d.IndustryFitAlt, key, value)
	case "productDescription":
		return setString(&d.ProductDescription, key, value)
	case "productType":
		return setString(&d.ProductType, key, value)
	case "revenueRange":
		return setString(&d.RevenueRange, key, value)
	case "tradeShows":
		return setEnum(&d.TradeShows, key, value, TradeShowValues)
	case "currentAssets":
		return setString(&d.CurrentAssets, key, value)
	case "submittedAt":
		return fmt.Errorf("field %q: set only by submit", key)
	default:
		return fmt.Errorf("unknown field %q", key)
	}
}

func setString(dst *string, key string, value interface{}) error {
	s, ok := value.(string)
	if !ok {
		return fmt.Errorf("field %q: expected string, got %T", key, value)
	}
	*dst = s
	return nil
}

func setEnum(dst *string, key string, value interface{}, allowed []string) error {
	s, ok := value.(string)
	if !ok {
		return fmt.Errorf("field %q: expected string, got %T", key, value)
	}
	if s == "" {
		*dst = ""
		return nil
	}
	for _, a := range allowed {
		if s == a {
			*dst = s
			return nil
		}
	}
	return fmt.Errorf("field %q: value %q not in %v", key, s, allowed)
}

// decodeInto coerces a JSON-decoded value into a typed destination.
func decodeInto(dst interface{}, key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("field %q: %w", key, err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("field %q: %w", key, err)
	}
	return nil
}
