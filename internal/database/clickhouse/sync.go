package clickhouse

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/badno/shopcsv/internal/schema"
	"github.com/badno/shopcsv/pkg/models"
)

// PriceRecord is one market price observation for a variant.
type PriceRecord struct {
	Handle         string
	VariantSKU     string
	Market         string
	Price          *float64
	CompareAtPrice *float64
	Included       bool
}

// SyncResult summarizes a completed price sync run
type SyncResult struct {
	BatchID       uuid.UUID
	RecordsSynced int
	StartTime     time.Time
	EndTime       time.Time
	Errors        []error
}

// Duration returns how long the sync took
func (r *SyncResult) Duration() time.Duration {
	return r.EndTime.Sub(r.StartTime)
}

// Syncer pushes variant and per-market prices into ClickHouse
type Syncer struct {
	client *Client
}

// NewSyncer creates a new price syncer
func NewSyncer(client *Client) *Syncer {
	return &Syncer{client: client}
}

// defaultMarket labels the base price columns that carry no market suffix.
const defaultMarket = "default"

// SyncPrices extracts every price observation from the collection and
// inserts them as a single batch. Rows with no parseable price on any
// market are skipped.
func (s *Syncer) SyncPrices(ctx context.Context, c *models.Collection) (*SyncResult, error) {
	result := &SyncResult{
		BatchID:   uuid.New(),
		StartTime: time.Now(),
	}

	records := ExtractPrices(c)
	if len(records) == 0 {
		result.EndTime = time.Now()
		return result, nil
	}

	batch, err := s.client.conn.PrepareBatch(ctx, fmt.Sprintf(`
		INSERT INTO %s (batch_id, handle, variant_sku, market, price, compare_at_price, included, synced_at)
	`, s.client.config.Table))
	if err != nil {
		return nil, fmt.Errorf("failed to prepare batch: %w", err)
	}

	syncedAt := time.Now()
	for _, rec := range records {
		included := uint8(0)
		if rec.Included {
			included = 1
		}
		if err := batch.Append(
			result.BatchID,
			rec.Handle,
			rec.VariantSKU,
			rec.Market,
			rec.Price,
			rec.CompareAtPrice,
			included,
			syncedAt,
		); err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("failed to append %s/%s: %w", rec.Handle, rec.Market, err))
			continue
		}
		result.RecordsSynced++
	}

	if err := batch.Send(); err != nil {
		return nil, fmt.Errorf("failed to send batch: %w", err)
	}

	result.EndTime = time.Now()
	return result, nil
}

// ExtractPrices walks every variant and collects its base price plus
// one record per market price column present on the variant row.
func ExtractPrices(c *models.Collection) []PriceRecord {
	var records []PriceRecord
	for _, p := range c.Products() {
		handle := p.Handle()
		for _, v := range p.Variants {
			records = append(records, variantPrices(handle, v)...)
		}
	}
	return records
}

func variantPrices(handle string, v *models.Variant) []PriceRecord {
	var records []PriceRecord

	base := PriceRecord{
		Handle:     handle,
		VariantSKU: v.SKU(),
		Market:     defaultMarket,
		Included:   true,
	}
	base.Price = parsePrice(v.Price())
	base.CompareAtPrice = parsePrice(v.CompareAtPrice())
	if base.Price != nil || base.CompareAtPrice != nil {
		records = append(records, base)
	}

	// Market columns appear in row order, so grouping by market keeps
	// the first-seen order of the export.
	markets := make(map[string]*PriceRecord)
	var order []string
	for _, col := range v.Fields.Keys() {
		field, market, ok := schema.ParseMarketColumn(col)
		if !ok {
			continue
		}
		rec, seen := markets[market]
		if !seen {
			rec = &PriceRecord{
				Handle:     handle,
				VariantSKU: v.SKU(),
				Market:     market,
				Included:   true,
			}
			markets[market] = rec
			order = append(order, market)
		}
		value := v.Fields.Get(col)
		switch field {
		case "Price":
			rec.Price = parsePrice(value)
		case "Compare At Price":
			rec.CompareAtPrice = parsePrice(value)
		case "Included":
			rec.Included = !strings.EqualFold(strings.TrimSpace(value), "false")
		}
	}
	for _, market := range order {
		rec := markets[market]
		if rec.Price != nil || rec.CompareAtPrice != nil {
			records = append(records, *rec)
		}
	}
	return records
}

func parsePrice(raw string) *float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &f
}
