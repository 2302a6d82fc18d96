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

const bankBazaarURL = "https://www.bankbazaar.com/insurance/term-insurance.html"

// BankBazaar scrapes BankBazaar's term insurance comparison tables. The site
// serves full server-side HTML, which makes it the most reliable source and
// the first one the ingestion run tries.
type BankBazaar struct {
	client *fetch.Client
	url    string
}

func NewBankBazaar(client *fetch.Client) *BankBazaar {
	return &BankBazaar{client: client, url: bankBazaarURL}
}

func (b *BankBazaar) Name() string { return "bankbazaar" }

func (b *BankBazaar) Scrape(ctx context.Context) ([]model.Plan, error) {
	body, err := b.client.Get(ctx, b.url)
	if err != nil {
		return nil, eris.Wrap(err, "bankbazaar: fetch")
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, eris.Wrap(err, "bankbazaar: parse html")
	}

	var raws []model.RawPlan
	doc.Find("table").Each(func(_ int, table *goquery.Selection) {
		rows := table.Find("tr")
		if rows.Length() < 3 {
			return
		}
		if !headerMatches(rowCells(rows.First()), "claim", "csr", "settlement") {
			return
		}

		// Columns: Provider | Plan | CSR.
		rows.Slice(1, rows.Length()).Each(func(_ int, row *goquery.Selection) {
			cells := rowCells(row)
			if len(cells) < 3 {
				return
			}
			// SourceURL stays empty so normalization points at the
			// insurer's own plan page instead of the listing.
			raws = append(raws, model.RawPlan{
				PlanName: cellAt(cells, 1),
				Provider: cellAt(cells, 0),
				Source:   b.Name(),
				CSRText:  cellAt(cells, 2),
			})
		})
	})

	plans := normalize.Plans(raws)
	zap.L().Info("scraped source",
		zap.String("source", b.Name()),
		zap.Int("rows", len(raws)),
		zap.Int("plans", len(plans)))
	return plans, nil
}
