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

const maxLifeURL = "https://www.maxlifeinsurance.com/term-insurance-plans"

// axisMaxCSR is the insurer's IRDAI-published claim settlement ratio; the
// product pages themselves do not repeat it.
const axisMaxCSR = "99.51%"

// maxLifePlans carries per-plan detail the listing table omits, keyed by a
// lowercase fragment of the plan name.
var maxLifePlans = map[string]struct {
	ageText  string
	saText   string
	features string
	url      string
}{
	"smart term plan plus": {
		ageText: "18 - 40", saText: "1 Cr - 1000 Cr",
		features: "15% discount on premiums|Salaried individuals|Critical illness|Accidental death|Joint life option",
		url:      "https://www.maxlifeinsurance.com/term-insurance-plans/smart-term-plan-plus",
	},
	"smart total elite protection": {
		ageText: "18 - 65", saText: "1 Cr - 1000 Cr",
		features: "Premium deferment option|Salaried individuals|Critical illness|Comprehensive protection|High sum assured",
		url:      "https://www.maxlifeinsurance.com/term-insurance-plans/smart-total-elite-protection",
	},
	"smart secure plus": {
		ageText: "18 - 65", saText: "25 Lakh - 1000 Cr",
		features: "Self-employed friendly|Joint life cover|Critical illness rider|Terminal illness|Multiple payout options",
		url:      "https://www.maxlifeinsurance.com/term-insurance-plans/smart-secure-plus-plan",
	},
	"saral jeevan bima": {
		ageText: "18 - 65", saText: "5 Lakh - 25 Lakh",
		features: "Low-income individuals|Simple process|Basic life cover|Affordable premiums|5-25 lakh coverage",
		url:      "https://www.maxlifeinsurance.com/term-insurance-plans/saral-jeevan-bima",
	},
}

// MaxLife scrapes Axis Max Life's own product listing page, the only insurer
// first-party source with live premium quotes in a plain HTML table.
type MaxLife struct {
	client *fetch.Client
	url    string
}

func NewMaxLife(client *fetch.Client) *MaxLife {
	return &MaxLife{client: client, url: maxLifeURL}
}

func (m *MaxLife) Name() string { return "maxlife" }

func (m *MaxLife) Scrape(ctx context.Context) ([]model.Plan, error) {
	body, err := m.client.Get(ctx, m.url)
	if err != nil {
		return nil, eris.Wrap(err, "maxlife: fetch")
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, eris.Wrap(err, "maxlife: parse html")
	}

	planTable := findMaxLifePlanTable(doc)
	if planTable == nil {
		zap.L().Warn("plan table not found", zap.String("source", m.Name()))
		return nil, nil
	}

	var raws []model.RawPlan
	seen := map[string]bool{}
	rows := planTable.Find("tr")
	rows.Slice(1, rows.Length()).Each(func(_ int, row *goquery.Selection) {
		cells := rowCells(row)
		if len(cells) < 4 {
			return
		}

		// Columns: Sr.No | Plan | Ideal for | Sum Assured | Premium | Features.
		planName := cellAt(cells, 1)
		if len(planName) < 5 || seen[strings.ToLower(planName)] {
			return
		}
		seen[strings.ToLower(planName)] = true

		raw := model.RawPlan{
			PlanName:       planName,
			Provider:       "Axis Max Life",
			Source:         m.Name(),
			CSRText:        axisMaxCSR,
			SumAssuredText: cellAt(cells, 3),
			PremiumText:    cellAt(cells, 4),
			TermText:       "10 to 50 years",
		}
		for frag, d := range maxLifePlans {
			if strings.Contains(strings.ToLower(planName), frag) {
				raw.AgeText = d.ageText
				raw.FeaturesText = d.features
				raw.SourceURL = d.url
				if raw.SumAssuredText == "" {
					raw.SumAssuredText = d.saText
				}
				break
			}
		}
		raws = append(raws, raw)
	})

	plans := normalize.Plans(raws)
	zap.L().Info("scraped source",
		zap.String("source", m.Name()),
		zap.Int("rows", len(raws)),
		zap.Int("plans", len(plans)))
	return plans, nil
}

func findMaxLifePlanTable(doc *goquery.Document) *goquery.Selection {
	var found *goquery.Selection
	doc.Find("table").EachWithBreak(func(_ int, table *goquery.Selection) bool {
		header := rowCells(table.Find("tr").First())
		if headerMatches(header, "plan") &&
			headerMatches(header, "premium", "ideal", "sum") {
			found = table
			return false
		}
		return true
	})
	return found
}
