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

const coverfoxURL = "https://www.coverfox.com/term-insurance/"

// Coverfox scrapes Coverfox's term insurance landing page, which carries two
// tables: plan details (age, sum assured, term) and CSR by insurer. Rows are
// keyed by insurer from the CSR table and enriched with details when the plan
// details table mentions the same insurer.
type Coverfox struct {
	client *fetch.Client
	url    string
}

func NewCoverfox(client *fetch.Client) *Coverfox {
	return &Coverfox{client: client, url: coverfoxURL}
}

func (c *Coverfox) Name() string { return "coverfox" }

// planDetail is a row of the details table, kept as display text for the
// normalizer.
type planDetail struct {
	ageText  string
	saText   string
	termText string
}

func (c *Coverfox) Scrape(ctx context.Context) ([]model.Plan, error) {
	body, err := c.client.Get(ctx, c.url)
	if err != nil {
		return nil, eris.Wrap(err, "coverfox: fetch")
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, eris.Wrap(err, "coverfox: parse html")
	}

	tables := doc.Find("table")
	if tables.Length() < 2 {
		zap.L().Warn("expected two tables", zap.String("source", c.Name()), zap.Int("found", tables.Length()))
		return nil, nil
	}

	// Table 1: plan details keyed by lowercased plan name.
	details := map[string]planDetail{}
	detailRows := tables.Eq(0).Find("tr")
	detailRows.Slice(1, detailRows.Length()).Each(func(_ int, row *goquery.Selection) {
		cells := rowCells(row)
		if len(cells) < 2 {
			return
		}
		details[strings.ToLower(cellAt(cells, 0))] = planDetail{
			ageText:  cellAt(cells, 1),
			saText:   cellAt(cells, 2),
			termText: cellAt(cells, 3),
		}
	})

	// Table 2: CSR by insurer, one plan per insurer.
	var raws []model.RawPlan
	seen := map[string]bool{}
	csrRows := tables.Eq(1).Find("tr")
	csrRows.Slice(1, csrRows.Length()).Each(func(_ int, row *goquery.Selection) {
		cells := rowCells(row)
		if len(cells) < 2 {
			return
		}
		provider := cellAt(cells, 0)
		ref, known := normalize.LookupProvider(provider)
		if !known || seen[ref.Key] {
			return
		}
		seen[ref.Key] = true

		raw := model.RawPlan{
			Provider: provider,
			Source:   c.Name(),
			CSRText:  cellAt(cells, 1),
		}
		// Enrich from the details table when a row names this insurer.
		for name, d := range details {
			if strings.Contains(name, ref.Key) {
				raw.AgeText = d.ageText
				raw.SumAssuredText = d.saText
				raw.TermText = d.termText
				break
			}
		}
		raws = append(raws, raw)
	})

	plans := normalize.Plans(raws)
	zap.L().Info("scraped source",
		zap.String("source", c.Name()),
		zap.Int("rows", len(raws)),
		zap.Int("plans", len(plans)))
	return plans, nil
}
