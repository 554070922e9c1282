// internal/wizard/screens_test.go
package wizard

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"founder-intake/internal/models"
)

func fullMember() models.TeamMember {
	return models.TeamMember{
		FirstName:     "Dana",
		LastName:      "Lee",
		Role:          "CEO",
		Email:         "dana@pawscale.example",
		Phone:         "+1-512-555-0142",
		Bio:           "Second-time founder.",
		SkillsMarkets: "DTC pet retail",
	}
}

func completeDraft() models.FormDraft {
	d := models.NewFormDraft()
	d.CompanyName = "PawScale"
	d.Address = "100 Congress Ave"
	d.City = "Austin"
	d.State = "TX"
	d.Country = "USA"
	d.Website = "https://pawscale.example"
	d.Team = []models.TeamMember{fullMember()}
	d.OperatingName = "PawScale Inc"
	d.LegalName = "PawScale Incorporated"
	d.FoundedDate = "2024-03-01"
	d.Stage = "Launched"
	d.Problem = "Vets are overbooked."
	d.Strengths = "Clinical advisory board."
	d.ProductTags = []string{"Veterinary Telehealth"}
	d.Competition = "Legacy clinic software."
	d.Traction = "1,200 weekly consults."
	d.KeyCustomers = "Independent clinics."
	d.Raising = "yes"
	d.AmountRaising = "$2M"
	d.SalesRevenueRange = "Under $1M"
	d.PMF = "Strong pull from clinics."
	d.Biz = "Per-seat subscription."
	d.Vision = "Telehealth-first animal care."
	d.IndustryFit = "Fits the vet-tech wave."
	d.IndustryFitAlt = "Picks up where clinics stop."
	d.ProductDescription = "Browser-based triage console."
	d.TradeShows = "not-yet"
	d.CurrentAssets = "Deck, demo, LOIs"
	return d
}

func TestScreenOrder(t *testing.T) {
	names := make([]string, 0, ScreenCount)
	for _, s := range Screens {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{
		"welcome", "basics", "snapshot", "team", "problem",
		"market", "narrative", "industry", "financials", "review",
	}, names)
}

func TestScreenPredicates(t *testing.T) {
	complete := completeDraft()

	tests := []struct {
		name   string
		screen ScreenID
		mutate func(*models.FormDraft)
		want   bool
	}{
		{"welcome always passes", ScreenWelcome, func(d *models.FormDraft) { *d = models.NewFormDraft() }, true},
		{"basics complete", ScreenBasics, nil, true},
		{"basics missing stage", ScreenBasics, func(d *models.FormDraft) { d.Stage = "" }, false},
		{"snapshot complete", ScreenSnapshot, nil, true},
		{"snapshot blank website", ScreenSnapshot, func(d *models.FormDraft) { d.Website = "   " }, false},
		{"team complete", ScreenTeam, nil, true},
		{"team linkedin optional", ScreenTeam, func(d *models.FormDraft) { d.Team[0].LinkedIn = "" }, true},
		{"team member missing phone", ScreenTeam, func(d *models.FormDraft) { d.Team[0].Phone = "" }, false},
		{"team member missing email", ScreenTeam, func(d *models.FormDraft) { d.Team[0].Email = "" }, false},
		{"team second member incomplete", ScreenTeam, func(d *models.FormDraft) {
			d.Team = append(d.Team, models.TeamMember{FirstName: "Sam"})
		}, false},
		{"team empty roster", ScreenTeam, func(d *models.FormDraft) { d.Team = nil }, false},
		{"problem complete", ScreenProblem, nil, true},
		{"problem no tags", ScreenProblem, func(d *models.FormDraft) { d.ProductTags = nil }, false},
		{"market complete", ScreenMarket, nil, true},
		{"market raising unset", ScreenMarket, func(d *models.FormDraft) { d.Raising = "" }, false},
		{"narrative complete", ScreenNarrative, nil, true},
		{"narrative missing vision", ScreenNarrative, func(d *models.FormDraft) { d.Vision = "" }, false},
		{"industry complete", ScreenIndustry, nil, true},
		{"industry alt not required to advance", ScreenIndustry, func(d *models.FormDraft) { d.IndustryFitAlt = "" }, true},
		{"industry missing description", ScreenIndustry, func(d *models.FormDraft) { d.ProductDescription = "" }, false},
		{"financials complete", ScreenFinancials, nil, true},
		{"financials tradeShows unset", ScreenFinancials, func(d *models.FormDraft) { d.TradeShows = "" }, false},
		{"review complete", ScreenReview, nil, true},
		{"review requires industryFitAlt", ScreenReview, func(d *models.FormDraft) { d.IndustryFitAlt = "" }, false},
		{"review requires lead bio", ScreenReview, func(d *models.FormDraft) { d.Team[0].Bio = "" }, false},
		{"review lead phone not required", ScreenReview, func(d *models.FormDraft) { d.Team[0].Phone = "" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := complete
			d.Team = append([]models.TeamMember(nil), complete.Team...)
			if tt.mutate != nil {
				tt.mutate(&d)
			}
			assert.Equal(t, tt.want, Screens[tt.screen].CanAdvance(d))
		})
	}
}

func TestProgressFor(t *testing.T) {
	assert.Equal(t, 0, progressFor(ScreenWelcome))
	assert.Equal(t, 44, progressFor(ScreenProblem))
	assert.Equal(t, 100, progressFor(ScreenReview))
}
