package adapter

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/coverscan/coverscan/internal/fetch"
	"github.com/coverscan/coverscan/internal/model"
	"github.com/coverscan/coverscan/internal/normalize"
)

const policyBazaarURL = "https://www.policybazaar.com/life-insurance/term-insurance/"

// maxPolicyBazaarCards caps how many rendered plan cards we parse.
const maxPolicyBazaarCards = 10

// PolicyBazaar scrapes PolicyBazaar's quote listing. The page is fully
// JavaScript-rendered, so it needs the headless browser and only runs when
// browser scraping is enabled in configuration.
type PolicyBazaar struct {
	browser *fetch.Browser
	url     string
}

func NewPolicyBazaar(browser *fetch.Browser) *PolicyBazaar {
	return &PolicyBazaar{browser: browser, url: policyBazaarURL}
}

func (p *PolicyBazaar) Name() string { return "policybazaar" }

func (p *PolicyBazaar) Scrape(ctx context.Context) ([]model.Plan, error) {
	html, err := p.browser.RenderedHTML(ctx, p.url, "")
	if err != nil {
		return nil, eris.Wrap(err, "policybazaar: render")
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, eris.Wrap(err, "policybazaar: parse html")
	}

	var raws []model.RawPlan
	// Card class names churn with site releases; match loosely.
	doc.Find(`.plan-card, .planCard, [class*="plan-card"], [class*="planCard"]`).
		EachWithBreak(func(i int, card *goquery.Selection) bool {
			if i >= maxPolicyBazaarCards {
				return false
			}
			name := firstText(card, `[class*="plan-name"], [class*="planName"], h3, h4`)
			provider := firstText(card, `[class*="insurer"], [class*="company"], [class*="brand"]`)
			if name == "" || provider == "" {
				return true
			}
			raws = append(raws, model.RawPlan{
				PlanName:    name,
				Provider:    provider,
				Source:      p.Name(),
				PremiumText: firstText(card, `[class*="premium"], [class*="price"], [class*="amount"]`),
				CSRText:     firstText(card, `[class*="claim"], [class*="csr"], [class*="settlement"]`),
			})
			return true
		})

	plans := normalize.Plans(raws)
	zap.L().Info("scraped source",
		zap.String("source", p.Name()),
		zap.Int("rows", len(raws)),
		zap.Int("plans", len(plans)))
	return plans, nil
}

func firstText(s *goquery.Selection, selector string) string {
	return strings.Join(strings.Fields(s.Find(selector).First().Text()), " ")
}
