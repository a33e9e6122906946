package rating

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/garyjia/courier-billing/internal/domain/entity"
	"github.com/garyjia/courier-billing/pkg/utils"
)

// Policy holds the franchise billing policy
type Policy struct {
	RoundOff bool `json:"round_off"`
}

// FranchiseConfig is the raw configuration for one franchise as loaded from storage
type FranchiseConfig struct {
	FranchiseID  int64
	Name         string
	Policy       Policy
	Sectors      []entity.Sector
	Rates        []entity.RateRule
	CompanyRates []entity.RateRule
	Discounts    []entity.DiscountRule
}

// Snapshot is a validated, read-only view of one franchise's configuration.
// A Snapshot is safe for concurrent use; nothing mutates it after Build.
type Snapshot struct {
	franchiseID  int64
	name         string
	version      string
	policy       Policy
	sectors      []entity.Sector
	rates        []entity.RateRule
	companyRates []entity.RateRule
	discounts    []CompiledRule
}

// Build validates cfg and returns a snapshot. Integrity problems are reported
// together as one ErrConfigIntegrity error; a malformed discount condition is
// reported as ErrDiscountConditionInvalid.
func Build(cfg FranchiseConfig) (*Snapshot, error) {
	v := &validator{franchiseID: cfg.FranchiseID}
	if cfg.FranchiseID <= 0 {
		v.addf("franchise id must be positive, got %d", cfg.FranchiseID)
	}

	sectors := v.sectors(cfg.Sectors)
	zones := make(map[string]bool, len(sectors))
	for _, s := range sectors {
		zones[s.ZoneCode] = true
	}
	rates := v.rates("rate", cfg.Rates, cfg.FranchiseID, zones)
	companyRates := v.rates("company rate", cfg.CompanyRates, entity.CompanyFranchiseID, nil)
	discounts := v.discounts(cfg.Discounts)

	if len(v.problems) > 0 {
		return nil, fmt.Errorf("%w: franchise %d: %s", ErrConfigIntegrity, cfg.FranchiseID, strings.Join(v.problems, "; "))
	}

	compiled := make([]CompiledRule, 0, len(discounts))
	for _, d := range discounts {
		cr, err := Compile(d)
		if err != nil {
			return nil, err
		}
		compiled = append(compiled, cr)
	}

	s := &Snapshot{
		franchiseID:  cfg.FranchiseID,
		name:         cfg.Name,
		policy:       cfg.Policy,
		sectors:      sectors,
		rates:        rates,
		companyRates: companyRates,
		discounts:    compiled,
	}
	version, err := s.computeVersion()
	if err != nil {
		return nil, fmt.Errorf("failed to compute snapshot version: %w", err)
	}
	s.version = version
	return s, nil
}

// FranchiseID returns the owning franchise
func (s *Snapshot) FranchiseID() int64 { return s.franchiseID }

// Name returns the franchise display name
func (s *Snapshot) Name() string { return s.name }

// Version is a content hash of the configuration. Two snapshots built from
// equal configuration have equal versions.
func (s *Snapshot) Version() string { return s.version }

// Policy returns the billing policy
func (s *Snapshot) Policy() Policy { return s.policy }

// Overlap describes two rules pricing the same lane over intersecting weights
type Overlap struct {
	Level    entity.RateLevel `json:"level"`
	Key      entity.RateKey   `json:"key"`
	FirstID  int64            `json:"first_id"`
	SecondID int64            `json:"second_id"`
}

// Overlaps lists every overlapping pair of rate rules. Rating a shipment that
// falls into an overlap fails with ErrRateAmbiguous; this lets the defect be
// found before a shipment hits it.
func (s *Snapshot) Overlaps() []Overlap {
	var out []Overlap
	out = append(out, overlapsIn(s.rates, entity.RateLevelFranchise)...)
	out = append(out, overlapsIn(s.companyRates, entity.RateLevelCompany)...)
	return out
}

func overlapsIn(rules []entity.RateRule, level entity.RateLevel) []Overlap {
	var out []Overlap
	for i := 0; i < len(rules); i++ {
		for j := i + 1; j < len(rules); j++ {
			if rules[i].Overlaps(&rules[j]) {
				out = append(out, Overlap{
					Level:    level,
					Key:      rules[i].Key(),
					FirstID:  rules[i].ID,
					SecondID: rules[j].ID,
				})
			}
		}
	}
	return out
}

type canonicalSector struct {
	ID           int64                `json:"id"`
	Name         string               `json:"name"`
	ZoneCode     string               `json:"zone_code"`
	Pincodes     []string             `json:"pincodes"`
	Capabilities []entity.ServiceType `json:"capabilities"`
	Priority     int                  `json:"priority_sequence"`
}

type canonicalConfig struct {
	FranchiseID  int64                 `json:"franchise_id"`
	Policy       Policy                `json:"policy"`
	Sectors      []canonicalSector     `json:"sectors"`
	Rates        []entity.RateRule     `json:"rates"`
	CompanyRates []entity.RateRule     `json:"company_rates"`
	Discounts    []entity.DiscountRule `json:"discounts"`
}

func (s *Snapshot) computeVersion() (string, error) {
	c := canonicalConfig{
		FranchiseID:  s.franchiseID,
		Policy:       s.policy,
		Rates:        s.rates,
		CompanyRates: s.companyRates,
	}
	for i := range s.sectors {
		sec := &s.sectors[i]
		c.Sectors = append(c.Sectors, canonicalSector{
			ID:           sec.ID,
			Name:         sec.Name,
			ZoneCode:     sec.ZoneCode,
			Pincodes:     sec.PincodeList(),
			Capabilities: sec.CapabilityList(),
			Priority:     sec.PrioritySequence,
		})
	}
	for _, d := range s.discounts {
		c.Discounts = append(c.Discounts, d.Rule)
	}

	payload, err := json.Marshal(c)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:16]), nil
}

type validator struct {
	franchiseID int64
	problems    []string
}

func (v *validator) addf(format string, args ...any) {
	v.problems = append(v.problems, fmt.Sprintf(format, args...))
}

func normalizeZone(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func (v *validator) sectors(in []entity.Sector) []entity.Sector {
	out := make([]entity.Sector, 0, len(in))
	seen := make(map[int64]bool, len(in))

	for _, s := range in {
		if seen[s.ID] {
			v.addf("sector %d: duplicate id", s.ID)
			continue
		}
		seen[s.ID] = true

		if s.FranchiseID != v.franchiseID {
			v.addf("sector %d: belongs to franchise %d", s.ID, s.FranchiseID)
		}
		zone := normalizeZone(s.ZoneCode)
		if zone == "" {
			v.addf("sector %d: missing zone code", s.ID)
		}
		if len(s.Pincodes) == 0 {
			v.addf("sector %d: no pincodes", s.ID)
		}
		if len(s.Capabilities) == 0 {
			v.addf("sector %d: no capabilities", s.ID)
		}

		pincodes := make([]string, 0, len(s.Pincodes))
		for p := range s.Pincodes {
			if err := utils.ValidatePincode(p); err != nil {
				v.addf("sector %d: %v", s.ID, err)
			}
			pincodes = append(pincodes, p)
		}
		capabilities := make([]entity.ServiceType, 0, len(s.Capabilities))
		for c := range s.Capabilities {
			if !c.IsValid() {
				v.addf("sector %d: unknown service type %q", s.ID, c)
			}
			capabilities = append(capabilities, c)
		}

		out = append(out, entity.NewSector(s.ID, s.FranchiseID, s.Name, zone, pincodes, capabilities, s.PrioritySequence))
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// rates validates one rate table. zones, when non-nil, restricts lane zone
// codes to those defined by the franchise's sectors.
func (v *validator) rates(label string, in []entity.RateRule, owner int64, zones map[string]bool) []entity.RateRule {
	out := make([]entity.RateRule, 0, len(in))
	seen := make(map[int64]bool, len(in))

	for _, r := range in {
		if seen[r.ID] {
			v.addf("%s %d: duplicate id", label, r.ID)
			continue
		}
		seen[r.ID] = true

		if r.FranchiseID != owner {
			v.addf("%s %d: belongs to franchise %d", label, r.ID, r.FranchiseID)
		}
		r.FromZone = normalizeZone(r.FromZone)
		r.ToZone = normalizeZone(r.ToZone)
		if r.FromZone == "" || r.ToZone == "" {
			v.addf("%s %d: missing zone code", label, r.ID)
		} else if zones != nil {
			for _, z := range []string{r.FromZone, r.ToZone} {
				if !zones[z] {
					v.addf("%s %d: zone %s is not defined by any sector", label, r.ID, z)
				}
			}
		}
		if !r.ServiceType.IsValid() {
			v.addf("%s %d: unknown service type %q", label, r.ID, r.ServiceType)
		}
		if r.WeightFrom.IsNegative() || !r.WeightFrom.LessThan(r.WeightTo) {
			v.addf("%s %d: invalid weight range [%s, %s)", label, r.ID, r.WeightFrom, r.WeightTo)
		}
		if r.Rate.IsNegative() || r.FuelSurcharge.IsNegative() || r.GSTPercentage.IsNegative() {
			v.addf("%s %d: negative rate or percentage", label, r.ID)
		}
		out = append(out, r)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (v *validator) discounts(in []entity.DiscountRule) []entity.DiscountRule {
	out := make([]entity.DiscountRule, 0, len(in))
	seen := make(map[int64]bool, len(in))

	for _, d := range in {
		if seen[d.ID] {
			v.addf("discount %d: duplicate id", d.ID)
			continue
		}
		seen[d.ID] = true

		if d.FranchiseID != v.franchiseID {
			v.addf("discount %d: belongs to franchise %d", d.ID, d.FranchiseID)
		}
		if !d.RuleType.IsValid() {
			v.addf("discount %d: unknown rule type %q", d.ID, d.RuleType)
		}
		if !d.AppliesTo.IsValid() {
			v.addf("discount %d: unknown applies_to %q", d.ID, d.AppliesTo)
		}
		if !d.DiscountType.IsValid() {
			v.addf("discount %d: unknown discount type %q", d.ID, d.DiscountType)
		}
		if !d.Status.IsValid() {
			v.addf("discount %d: unknown status %q", d.ID, d.Status)
		}
		if d.Value.IsNegative() || d.MaxDiscount.IsNegative() {
			v.addf("discount %d: negative value or cap", d.ID)
		}
		if d.DiscountType == entity.DiscountPercent && d.Value.GreaterThan(hundred) {
			v.addf("discount %d: percentage above 100", d.ID)
		}
		out = append(out, d)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
