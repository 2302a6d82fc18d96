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

const coverfoxCSRURL = "https://www.coverfox.com/life-insurance/claim-settlement-ratio/"

// CoverfoxCSR scrapes Coverfox's dedicated claim-settlement-ratio page. It
// yields one plan per insurer (the flagship term plan from the reference
// table) with a live CSR figure, and covers insurers the listing sources
// miss.
type CoverfoxCSR struct {
	client *fetch.Client
	url    string
}

func NewCoverfoxCSR(client *fetch.Client) *CoverfoxCSR {
	return &CoverfoxCSR{client: client, url: coverfoxCSRURL}
}

func (c *CoverfoxCSR) Name() string { return "coverfox_csr" }

func (c *CoverfoxCSR) Scrape(ctx context.Context) ([]model.Plan, error) {
	body, err := c.client.Get(ctx, c.url)
	if err != nil {
		return nil, eris.Wrap(err, "coverfox_csr: fetch")
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, eris.Wrap(err, "coverfox_csr: parse html")
	}

	csrTable := findCSRTable(doc)
	if csrTable == nil {
		zap.L().Warn("csr table not found", zap.String("source", c.Name()))
		return nil, nil
	}

	var raws []model.RawPlan
	seen := map[string]bool{}
	rows := csrTable.Find("tr")
	rows.Slice(1, rows.Length()).Each(func(_ int, row *goquery.Selection) {
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

		// Plan name left empty: the reference table's flagship plan for the
		// insurer fills it during normalization.
		raws = append(raws, model.RawPlan{
			Provider: provider,
			Source:   c.Name(),
			CSRText:  cellAt(cells, 1),
		})
	})

	plans := normalize.Plans(raws)
	zap.L().Info("scraped source",
		zap.String("source", c.Name()),
		zap.Int("rows", len(raws)),
		zap.Int("plans", len(plans)))
	return plans, nil
}

// findCSRTable locates the insurer-vs-ratio table among all tables on the page.
func findCSRTable(doc *goquery.Document) *goquery.Selection {
	var found *goquery.Selection
	doc.Find("table").EachWithBreak(func(_ int, table *goquery.Selection) bool {
		header := rowCells(table.Find("tr").First())
		if headerMatches(header, "provider", "insurer", "insurance") &&
			headerMatches(header, "ratio", "csr", "claim") {
			found = table
			return false
		}
		return true
	})
	return found
}
