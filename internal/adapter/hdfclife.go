package adapter

import (
	"bytes"
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/coverscan/coverscan/internal/fetch"
	"github.com/coverscan/coverscan/internal/model"
	"github.com/coverscan/coverscan/internal/normalize"
)

const hdfcLifeURL = "https://www.hdfclife.com/term-insurance-plans"

// hdfcCatalog is HDFC Life's current term lineup. The page publishes a
// premium-by-age table rather than a plan listing, so the lineup is fixed and
// the scrape refreshes the flagship premium from the live table.
var hdfcCatalog = []model.RawPlan{
	{
		PlanName: "Click 2 Protect Super", Provider: "HDFC Life",
		CSRText: "99.50%", PremiumText: "992/month",
		SumAssuredText: "50 Lakh - 200 Cr", AgeText: "18 - 65", TermText: "10 to 40",
		FeaturesText: "Life & CI Rebalance|Income benefit option|Return of premium|Waiver on disability|Cover till age 85",
		SourceURL:    "https://www.hdfclife.com/term-insurance-plans/click-2-protect-super",
	},
	{
		PlanName: "Click 2 Protect Life", Provider: "HDFC Life",
		CSRText: "99.50%", PremiumText: "850/month",
		SumAssuredText: "50 Lakh - 200 Cr", AgeText: "18 - 65", TermText: "10 to 40",
		FeaturesText: "Pure term plan|Flexible premium payment|Critical illness optional|Whole life option|Affordable",
		SourceURL:    "https://www.hdfclife.com/term-insurance-plans/click-2-protect-life",
	},
	{
		PlanName: "Sanchay Plus Term Plan", Provider: "HDFC Life",
		CSRText: "99.50%", PremiumText: "1200/month",
		SumAssuredText: "1 Cr - 200 Cr", AgeText: "30 - 65", TermText: "5 to 40",
		FeaturesText: "Return of premium|Guaranteed income|Whole life cover|Critical illness|Maturity benefit",
		SourceURL:    "https://www.hdfclife.com/savings-and-investment-plans/sanchay-plus",
	},
}

// HDFCLife scrapes HDFC Life's term insurance page for the age-30 premium of
// Click 2 Protect Super and emits the fixed catalog with that live figure.
type HDFCLife struct {
	client *fetch.Client
	url    string
}

func NewHDFCLife(client *fetch.Client) *HDFCLife {
	return &HDFCLife{client: client, url: hdfcLifeURL}
}

func (h *HDFCLife) Name() string { return "hdfclife" }

func (h *HDFCLife) Scrape(ctx context.Context) ([]model.Plan, error) {
	body, err := h.client.Get(ctx, h.url)
	if err != nil {
		return nil, eris.Wrap(err, "hdfclife: fetch")
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, eris.Wrap(err, "hdfclife: parse html")
	}

	livePremium := h.premiumAtAge30(doc)

	raws := make([]model.RawPlan, len(hdfcCatalog))
	copy(raws, hdfcCatalog)
	for i := range raws {
		raws[i].Source = h.Name()
	}
	if livePremium != "" {
		raws[0].PremiumText = livePremium
	}

	plans := normalize.Plans(raws)
	zap.L().Info("scraped source",
		zap.String("source", h.Name()),
		zap.Int("rows", len(raws)),
		zap.Int("plans", len(plans)),
		zap.Bool("live_premium", livePremium != ""))
	return plans, nil
}

// premiumAtAge30 extracts the monthly premium for a 30 year old from the
// premium-by-age table, returning "" when the table is missing or reshaped.
func (h *HDFCLife) premiumAtAge30(doc *goquery.Document) string {
	var premium string
	doc.Find("table").EachWithBreak(func(_ int, table *goquery.Selection) bool {
		rows := table.Find("tr")
		header := rowCells(rows.First())
		if !headerMatches(header, "age") || !headerMatches(header, "premium", "base") {
			return true
		}
		rows.Slice(1, rows.Length()).Each(func(_ int, row *goquery.Selection) {
			cells := rowCells(row)
			if len(cells) < 2 {
				return
			}
			if strings.Contains(strings.ToLower(cellAt(cells, 0)), "30") {
				if v, ok := normalize.ParseNumber(cellAt(cells, 1)); ok && v > 0 {
					premium = cellAt(cells, 1) + "/month"
				}
			}
		})
		return false
	})
	return premium
}
