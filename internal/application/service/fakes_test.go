package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/garyjia/courier-billing/internal/domain/entity"
	"github.com/garyjia/courier-billing/internal/domain/event"
	"github.com/garyjia/courier-billing/internal/domain/rating"
	"github.com/shopspring/decimal"
)

const testFranchise int64 = 1

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

type recordingLogger struct {
	mu      sync.Mutex
	entries []string
}

func (l *recordingLogger) Info(msg string, _ ...interface{})  { l.add("INFO " + msg) }
func (l *recordingLogger) Error(msg string, _ ...interface{}) { l.add("ERROR " + msg) }

func (l *recordingLogger) add(s string) {
	l.mu.Lock()
	l.entries = append(l.entries, s)
	l.mu.Unlock()
}

func (l *recordingLogger) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// fakeConfigRepo serves one fixed configuration and counts loads
type fakeConfigRepo struct {
	mu    sync.Mutex
	cfg   *rating.FranchiseConfig
	loads int
}

func (r *fakeConfigRepo) LoadFranchiseConfig(_ context.Context, franchiseID int64) (*rating.FranchiseConfig, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loads++
	if r.cfg == nil || r.cfg.FranchiseID != franchiseID {
		return nil, nil
	}
	cfg := *r.cfg
	return &cfg, nil
}

func (r *fakeConfigRepo) ListFranchiseIDs(context.Context) ([]int64, error) {
	if r.cfg == nil {
		return nil, nil
	}
	return []int64{r.cfg.FranchiseID}, nil
}

func (r *fakeConfigRepo) ReplaceFranchiseConfig(_ context.Context, cfg *rating.FranchiseConfig) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cfg = cfg
	return nil
}

func (r *fakeConfigRepo) ReplaceCompanyRates(_ context.Context, rates []entity.RateRule) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cfg != nil {
		r.cfg.CompanyRates = rates
	}
	return nil
}

func (r *fakeConfigRepo) loadCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.loads
}

// fakeInvoiceRepo keeps headers and lines in memory and enforces one line
// per shipment per header
type fakeInvoiceRepo struct {
	mu      sync.Mutex
	nextID  int64
	headers map[int64]*entity.InvoiceHeader
	lines   map[int64][]*entity.InvoiceLine
}

func newFakeInvoiceRepo() *fakeInvoiceRepo {
	return &fakeInvoiceRepo{
		headers: make(map[int64]*entity.InvoiceHeader),
		lines:   make(map[int64][]*entity.InvoiceLine),
	}
}

func (r *fakeInvoiceRepo) CreateHeader(_ context.Context, h *entity.InvoiceHeader) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	h.ID = r.nextID
	h.CreatedAt = time.Now()
	h.UpdatedAt = h.CreatedAt
	c := *h
	r.headers[h.ID] = &c
	return nil
}

func (r *fakeInvoiceRepo) GetHeader(_ context.Context, id int64) (*entity.InvoiceHeader, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.headers[id]
	if !ok {
		return nil, nil
	}
	c := *h
	return &c, nil
}

func (r *fakeInvoiceRepo) UpdateHeaderStatus(_ context.Context, id int64, status entity.InvoiceStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.headers[id]
	if !ok {
		return fmt.Errorf("header %d not found", id)
	}
	h.Status = status
	return nil
}

func (r *fakeInvoiceRepo) FindLineByShipment(_ context.Context, headerID int64, shipmentID string) (*entity.InvoiceLine, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, l := range r.lines[headerID] {
		if l.ShipmentID == shipmentID {
			c := *l
			return &c, nil
		}
	}
	return nil, nil
}

func (r *fakeInvoiceRepo) CreateLine(_ context.Context, line *entity.InvoiceLine) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, l := range r.lines[line.HeaderID] {
		if l.ShipmentID == line.ShipmentID {
			return fmt.Errorf("UNIQUE constraint failed: invoice_lines.header_id, invoice_lines.shipment_id")
		}
	}
	r.nextID++
	line.ID = r.nextID
	c := *line
	r.lines[line.HeaderID] = append(r.lines[line.HeaderID], &c)
	return nil
}

func (r *fakeInvoiceRepo) ListLines(_ context.Context, headerID int64) ([]*entity.InvoiceLine, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*entity.InvoiceLine, 0, len(r.lines[headerID]))
	for _, l := range r.lines[headerID] {
		c := *l
		out = append(out, &c)
	}
	return out, nil
}

func (r *fakeInvoiceRepo) RecomputeTotals(_ context.Context, headerID int64) (*entity.InvoiceTotals, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t := &entity.InvoiceTotals{}
	for _, l := range r.lines[headerID] {
		t.LineCount++
		t.GrossMinor += l.GrossMinor
		t.DiscountMinor += l.DiscountMinor
		t.TaxMinor += l.TaxMinor
		t.RoundingMinor += l.RoundingMinor
		t.TotalMinor += l.AmountMinor
	}
	h := r.headers[headerID]
	h.LineCount = t.LineCount
	h.GrossMinor = t.GrossMinor
	h.DiscountMinor = t.DiscountMinor
	h.TaxMinor = t.TaxMinor
	h.RoundingMinor = t.RoundingMinor
	h.TotalMinor = t.TotalMinor
	return t, nil
}

func (r *fakeInvoiceRepo) lineCount(headerID int64) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.lines[headerID])
}

func (r *fakeInvoiceRepo) putHeader(status entity.InvoiceStatus) int64 {
	h := &entity.InvoiceHeader{FranchiseID: testFranchise, InvoiceNumber: "INV-T", Status: status}
	_ = r.CreateHeader(context.Background(), h)
	return h.ID
}

type passthroughTx struct{}

func (passthroughTx) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []*event.Event
}

func (p *recordingPublisher) DispatchAsync(_ context.Context, evt *event.Event) {
	p.mu.Lock()
	p.events = append(p.events, evt)
	p.mu.Unlock()
}

func (p *recordingPublisher) ofType(t event.Type) []*event.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []*event.Event
	for _, e := range p.events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// testConfig prices METRO -> NORTH express at 123.456 with 5% fuel and 18% GST
// and carries one recharge discount.
func testConfig() *rating.FranchiseConfig {
	return &rating.FranchiseConfig{
		FranchiseID: testFranchise,
		Name:        "Mumbai Central",
		Sectors: []entity.Sector{
			entity.NewSector(10, testFranchise, "Metro", "METRO", []string{"400001"}, []entity.ServiceType{entity.ServiceExpress}, 1),
			entity.NewSector(11, testFranchise, "North", "NORTH", []string{"110001"}, []entity.ServiceType{entity.ServiceExpress}, 1),
		},
		Rates: []entity.RateRule{{
			ID:            100,
			FranchiseID:   testFranchise,
			FromZone:      "METRO",
			ToZone:        "NORTH",
			ServiceType:   entity.ServiceExpress,
			WeightFrom:    dec("0"),
			WeightTo:      dec("5"),
			Rate:          dec("123.456"),
			FuelSurcharge: dec("5"),
			GSTPercentage: dec("18"),
		}},
		Discounts: []entity.DiscountRule{{
			ID:           7,
			FranchiseID:  testFranchise,
			Name:         "wallet bonus",
			RuleType:     entity.RuleTypePromo,
			AppliesTo:    entity.AppliesToRecharge,
			DiscountType: entity.DiscountPercent,
			Value:        dec("5"),
			MaxDiscount:  dec("0"),
			Priority:     1,
			Status:       entity.RuleStatusActive,
		}},
	}
}

func shipment(id string) entity.Shipment {
	return entity.Shipment{
		ID:                 id,
		OriginPincode:      "400001",
		DestinationPincode: "110001",
		Weight:             dec("2.5"),
		ServiceType:        entity.ServiceExpress,
		CustomerID:         "CUST-1",
	}
}

type fixture struct {
	configs   *fakeConfigRepo
	invoices  *fakeInvoiceRepo
	events    *recordingPublisher
	snapshots SnapshotProvider
	rating    RatingService
	invoice   InvoiceService
}

func newFixture() *fixture {
	f := &fixture{
		configs:  &fakeConfigRepo{cfg: testConfig()},
		invoices: newFakeInvoiceRepo(),
		events:   &recordingPublisher{},
	}
	locks := NewHeaderLocks()
	f.snapshots = NewSnapshotProvider(f.configs, time.Minute, nopLogger{})
	lines := NewLineGenerator(f.invoices, passthroughTx{}, locks, nopLogger{})
	f.rating = NewRatingService(f.snapshots, lines, f.invoices, f.events, nopLogger{}, 4)
	f.invoice = NewInvoiceService(f.invoices, passthroughTx{}, f.snapshots, locks, f.events, nopLogger{})
	return f
}
