// internal/wizard/screens.go
package wizard

import (
	"strings"

	"founder-intake/internal/models"
)

// ScreenID indexes the fixed linear screen sequence.
type ScreenID int

const (
	ScreenWelcome ScreenID = iota
	ScreenBasics
	ScreenSnapshot
	ScreenTeam
	ScreenProblem
	ScreenMarket
	ScreenNarrative
	ScreenIndustry
	ScreenFinancials
	ScreenReview

	ScreenCount = 10
)

// Screen is one wizard step. CanAdvance gates forward navigation off
// this screen; the review screen's predicate also gates submit.
type Screen struct {
	ID         ScreenID
	Name       string
	CanAdvance func(models.FormDraft) bool
}

func filled(values ...string) bool {
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			return false
		}
	}
	return true
}

// Screens is the transition table. Welcome has no requirements; every
// other screen lists its required non-blank fields.
var Screens = [ScreenCount]Screen{
	{ID: ScreenWelcome, Name: "welcome", CanAdvance: func(models.FormDraft) bool { return true }},
	{ID: ScreenBasics, Name: "basics", CanAdvance: func(d models.FormDraft) bool {
		return filled(d.OperatingName, d.FoundedDate, d.Stage)
	}},
	{ID: ScreenSnapshot, Name: "snapshot", CanAdvance: func(d models.FormDraft) bool {
		return filled(d.CompanyName, d.Address, d.City, d.State, d.Country, d.Website)
	}},
	{ID: ScreenTeam, Name: "team", CanAdvance: func(d models.FormDraft) bool {
		if len(d.Team) == 0 {
			return false
		}
		// linkedin is the only optional member field
		for _, m := range d.Team {
			if !filled(m.FirstName, m.LastName, m.Role, m.Email, m.Phone, m.Bio, m.SkillsMarkets) {
				return false
			}
		}
		return true
	}},
	{ID: ScreenProblem, Name: "problem", CanAdvance: func(d models.FormDraft) bool {
		return len(d.ProductTags) > 0 && filled(d.Problem, d.Strengths)
	}},
	{ID: ScreenMarket, Name: "market", CanAdvance: func(d models.FormDraft) bool {
		return filled(d.Competition, d.Traction, d.KeyCustomers, d.Raising)
	}},
	{ID: ScreenNarrative, Name: "narrative", CanAdvance: func(d models.FormDraft) bool {
		return filled(d.PMF, d.Biz, d.Vision)
	}},
	{ID: ScreenIndustry, Name: "industry", CanAdvance: func(d models.FormDraft) bool {
		return filled(d.IndustryFit, d.ProductDescription)
	}},
	{ID: ScreenFinancials, Name: "financials", CanAdvance: func(d models.FormDraft) bool {
		return filled(d.SalesRevenueRange, d.TradeShows, d.CurrentAssets)
	}},
	{ID: ScreenReview, Name: "review", CanAdvance: reviewComplete},
}

// reviewComplete is the full submission checklist: company identity,
// first team member essentials, every narrative, industry fit including
// the alternative framing, and the financials.
func reviewComplete(d models.FormDraft) bool {
	if len(d.Team) == 0 {
		return false
	}
	lead := d.Team[0]
	return filled(
		d.CompanyName, d.Address, d.City, d.State, d.Country,
		lead.FirstName, lead.LastName, lead.Role, lead.Email, lead.Bio,
		d.OperatingName, d.FoundedDate, d.Stage,
		d.Problem, d.Strengths,
		d.Competition, d.Traction, d.KeyCustomers, d.Raising,
		d.PMF, d.Biz, d.Vision,
		d.IndustryFit, d.IndustryFitAlt, d.ProductDescription,
		d.SalesRevenueRange, d.TradeShows, d.CurrentAssets,
	)
}
