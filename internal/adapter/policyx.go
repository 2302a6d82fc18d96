package adapter

import (
	"bytes"
	"context"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/coverscan/coverscan/internal/fetch"
	"github.com/coverscan/coverscan/internal/model"
	"github.com/coverscan/coverscan/internal/normalize"
)

const policyxURL = "https://www.policyx.com/term-insurance/"

// PolicyX scrapes PolicyX.com's best-plans comparison table. It is the one
// listing source that publishes a live monthly premium column alongside CSR.
type PolicyX struct {
	client *fetch.Client
	url    string
}

func NewPolicyX(client *fetch.Client) *PolicyX {
	return &PolicyX{client: client, url: policyxURL}
}

func (p *PolicyX) Name() string { return "policyx" }

func (p *PolicyX) Scrape(ctx context.Context) ([]model.Plan, error) {
	body, err := p.client.Get(ctx, p.url)
	if err != nil {
		return nil, eris.Wrap(err, "policyx: fetch")
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, eris.Wrap(err, "policyx: parse html")
	}

	var raws []model.RawPlan
	doc.Find("table").Each(func(_ int, table *goquery.Selection) {
		rows := table.Find("tr")
		if rows.Length() < 2 {
			return
		}
		if !headerMatches(rowCells(rows.First()), "csr", "claim", "settlement") {
			return
		}

		// Columns: Provider | Plan | Features | CSR | Monthly Premium.
		rows.Slice(1, rows.Length()).Each(func(_ int, row *goquery.Selection) {
			cells := rowCells(row)
			if len(cells) < 3 {
				return
			}
			premium := cellAt(cells, 4)
			if premium != "" {
				// The column shows a monthly figure without saying so;
				// tag it for the normalizer.
				premium += "/month"
			}
			raws = append(raws, model.RawPlan{
				PlanName:     cellAt(cells, 1),
				Provider:     cellAt(cells, 0),
				Source:       p.Name(),
				FeaturesText: cellAt(cells, 2),
				CSRText:      cellAt(cells, 3),
				PremiumText:  premium,
			})
		})
	})

	plans := normalize.Plans(raws)
	zap.L().Info("scraped source",
		zap.String("source", p.Name()),
		zap.Int("rows", len(raws)),
		zap.Int("plans", len(plans)))
	return plans, nil
}
