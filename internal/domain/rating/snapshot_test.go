package rating

import (
	"testing"

	"github.com/garyjia/courier-billing/internal/domain/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild_VersionIsContentHash(t *testing.T) {
	a := mustBuild(baseConfig())

	shuffled := baseConfig()
	s := shuffled.Sectors
	s[0], s[3] = s[3], s[0]
	r := shuffled.Rates
	r[0], r[1] = r[1], r[0]
	b := mustBuild(shuffled)

	assert.NotEmpty(t, a.Version())
	assert.Equal(t, a.Version(), b.Version())

	changed := baseConfig()
	changed.Rates[0].Rate = dec("124")
	c := mustBuild(changed)
	assert.NotEqual(t, a.Version(), c.Version())

	policy := baseConfig()
	policy.Policy.RoundOff = true
	assert.NotEqual(t, a.Version(), mustBuild(policy).Version())
}

func TestBuild_NormalizesZoneCodes(t *testing.T) {
	cfg := baseConfig()
	cfg.Sectors[1].ZoneCode = " north "
	cfg.Rates[0].ToZone = "North"
	snap := mustBuild(cfg)

	res, err := snap.Rate(expressShipment("CN-1", "2"))
	require.NoError(t, err)
	assert.Equal(t, "NORTH", res.ToZone)
}

func TestBuild_IntegrityViolations(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*FranchiseConfig)
		want   string
	}{
		{"sector of another franchise", func(c *FranchiseConfig) { c.Sectors[0].FranchiseID = 2 }, "sector 10: belongs to franchise 2"},
		{"malformed pincode", func(c *FranchiseConfig) { c.Sectors[1].Pincodes["11001"] = struct{}{} }, "invalid pincode"},
		{"unknown capability", func(c *FranchiseConfig) { c.Sectors[1].Capabilities["TELEPORT"] = struct{}{} }, "unknown service type"},
		{"duplicate sector", func(c *FranchiseConfig) { c.Sectors = append(c.Sectors, c.Sectors[0]) }, "duplicate id"},
		{"empty weight range", func(c *FranchiseConfig) { c.Rates[0].WeightTo = dec("0") }, "invalid weight range"},
		{"negative rate", func(c *FranchiseConfig) { c.Rates[0].Rate = dec("-1") }, "negative rate"},
		{"dangling zone", func(c *FranchiseConfig) { c.Rates[0].ToZone = "SOUTH" }, "zone SOUTH is not defined"},
		{"company rate owned by franchise", func(c *FranchiseConfig) { c.CompanyRates[0].FranchiseID = 1 }, "company rate 900: belongs to franchise 1"},
		{"percent above 100", func(c *FranchiseConfig) {
			c.Discounts = []entity.DiscountRule{discountRule(1, 1, entity.DiscountPercent, "120", "0")}
		}, "percentage above 100"},
		{"bad discount enum", func(c *FranchiseConfig) {
			d := discountRule(1, 1, entity.DiscountFlat, "10", "0")
			d.AppliesTo = "WALLET"
			c.Discounts = []entity.DiscountRule{d}
		}, "unknown applies_to"},
		{"missing franchise", func(c *FranchiseConfig) { c.FranchiseID = 0 }, "franchise id must be positive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := baseConfig()
			tt.mutate(&cfg)

			_, err := Build(cfg)
			require.ErrorIs(t, err, ErrConfigIntegrity)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestBuild_InvalidConditionNamesRule(t *testing.T) {
	cfg := baseConfig()
	d := discountRule(77, 1, entity.DiscountFlat, "10", "0")
	d.Condition = `{"any":[]}`
	cfg.Discounts = []entity.DiscountRule{d}

	_, err := Build(cfg)
	require.ErrorIs(t, err, ErrDiscountConditionInvalid)
	re, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, int64(77), re.Detail["rule_id"])
	assert.Equal(t, StageConfig, re.Stage)
}

func TestBuild_RejectsNullConditionValue(t *testing.T) {
	cfg := baseConfig()
	d := discountRule(78, 1, entity.DiscountPercent, "50", "0")
	d.Condition = `{"attr":"weight","op":"gte","value":null}`
	cfg.Discounts = []entity.DiscountRule{d}

	_, err := Build(cfg)
	require.ErrorIs(t, err, ErrDiscountConditionInvalid)
	re, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, int64(78), re.Detail["rule_id"])
}

func TestSnapshot_Overlaps(t *testing.T) {
	cfg := baseConfig()
	cfg.Rates = append(cfg.Rates,
		rateRule(102, testFranchise, "METRO", "NORTH", entity.ServiceExpress, "4", "6", "150", "0", "18"),
		rateRule(103, testFranchise, "METRO", "NORTH", entity.ServiceDocument, "4", "6", "150", "0", "18"))
	cfg.CompanyRates = append(cfg.CompanyRates,
		rateRule(901, entity.CompanyFranchiseID, "METRO", "EAST", entity.ServiceDocument, "9", "20", "80", "10", "18"))
	snap := mustBuild(cfg)

	overlaps := snap.Overlaps()
	require.Len(t, overlaps, 3)
	assert.Equal(t, Overlap{Level: entity.RateLevelFranchise, Key: cfg.Rates[0].Key(), FirstID: 100, SecondID: 102}, overlaps[0])
	assert.Equal(t, int64(101), overlaps[1].FirstID)
	assert.Equal(t, int64(102), overlaps[1].SecondID)
	assert.Equal(t, entity.RateLevelCompany, overlaps[2].Level)
	assert.Equal(t, int64(900), overlaps[2].FirstID)
	assert.Equal(t, int64(901), overlaps[2].SecondID)

	assert.Empty(t, mustBuild(baseConfig()).Overlaps())
}

func TestBuild_DoesNotAliasInput(t *testing.T) {
	cfg := baseConfig()
	snap := mustBuild(cfg)

	cfg.Sectors[1].Pincodes["110002"] = struct{}{}
	sh := expressShipment("CN-1", "2")
	sh.DestinationPincode = "110002"

	_, err := snap.Rate(sh)
	assert.ErrorIs(t, err, ErrZoneUnresolved)
}
