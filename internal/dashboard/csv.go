// internal/dashboard/csv.go
package dashboard

import (
	"fmt"
	"io"
	"strings"

	"founder-intake/internal/common/metrics"
	"founder-intake/internal/models"
)

// csvHeaders is the fixed export schema. Column order is part of the
// contract; downstream sheets key off it.
var csvHeaders = []string{
	"Company Name",
	"Operating Name",
	"Legal Name",
	"Address",
	"City",
	"State",
	"Country",
	"Website",
	"Founded Date",
	"Stage",
	"Team Members",
	"Problem",
	"Strengths",
	"Product Tags",
	"Competition",
	"Traction",
	"Valuation",
	"Currency",
	"Key Customers",
	"Raising",
	"Amount Raising",
	"Sales Revenue Range",
	"Revenue Range",
	"Current Assets",
	"Trade Shows",
	"PMF",
	"Business Model",
	"Vision",
	"Industry Fit",
	"Industry Fit Alt",
	"Product Description",
	"Product Type",
	"Product Video",
	"Business Video",
	"LinkedIn",
	"Twitter",
	"Instagram",
	"TikTok",
	"Facebook",
	"Submitted At",
}

// WriteCSV renders the entries as CSV: a pure transform of the list it is
// given, one row per entry. Team members and product tags flatten into
// single cells joined with "; ". Cells are quoted only when they contain
// a comma, quote, or newline; quotes are doubled.
func WriteCSV(w io.Writer, entries []models.Submission) error {
	lines := make([]string, 0, len(entries)+1)
	lines = append(lines, strings.Join(csvHeaders, ","))

	for _, e := range entries {
		row := csvRow(e.Draft)
		cells := make([]string, len(row))
		for i, cell := range row {
			cells[i] = escapeCell(cell)
		}
		lines = append(lines, strings.Join(cells, ","))
	}

	if _, err := io.WriteString(w, strings.Join(lines, "\n")); err != nil {
		return fmt.Errorf("writing csv: %w", err)
	}
	metrics.DashboardExportsTotal.Inc()
	return nil
}

func csvRow(d models.FormDraft) []string {
	teamCells := make([]string, 0, len(d.Team))
	for _, m := range d.Team {
		teamCells = append(teamCells, fmt.Sprintf("%s %s (%s)", m.FirstName, m.LastName, m.Role))
	}

	tradeShows := "No"
	if d.TradeShows == "yes" {
		tradeShows = "Yes"
	}

	return []string{
		d.CompanyName,
		d.OperatingName,
		d.LegalName,
		d.Address,
		d.City,
		d.State,
		d.Country,
		d.Website,
		d.FoundedDate,
		d.Stage,
		strings.Join(teamCells, "; "),
		d.Problem,
		d.Strengths,
		strings.Join(d.ProductTags, "; "),
		d.Competition,
		d.Traction,
		d.Valuation,
		d.Currency,
		d.KeyCustomers,
		d.Raising,
		d.AmountRaising,
		d.SalesRevenueRange,
		d.RevenueRange,
		d.CurrentAssets,
		tradeShows,
		d.PMF,
		d.Biz,
		d.Vision,
		d.IndustryFit,
		d.IndustryFitAlt,
		d.ProductDescription,
		d.ProductType,
		d.ProductVideo,
		d.BizVideo,
		firstNonEmpty(d.CompanyLinkedIn, d.Socials.LinkedIn),
		firstNonEmpty(d.Twitter, d.Socials.X),
		firstNonEmpty(d.Instagram, d.Socials.Instagram),
		d.Socials.TikTok,
		d.Socials.Facebook,
		d.SubmittedAt,
	}
}

func escapeCell(cell string) string {
	escaped := strings.ReplaceAll(cell, `"`, `""`)
	if strings.ContainsAny(escaped, ",\"\n") {
		return `"` + escaped + `"`
	}
	return escaped
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
