package entity

// ServiceType is the courier product a shipment is booked under
type ServiceType string

// Service types offered across franchises
const (
	ServiceDocument           ServiceType = "DOCUMENT"
	ServiceNonDocumentAir     ServiceType = "NON_DOCUMENT_AIR"
	ServiceNonDocumentSurface ServiceType = "NON_DOCUMENT_SURFACE"
	ServiceExpress            ServiceType = "EXPRESS"
	ServicePriority           ServiceType = "PRIORITY"
	ServiceEcommercePrepaid   ServiceType = "ECOMMERCE_PREPAID"
	ServiceEcommerceCOD       ServiceType = "ECOMMERCE_COD"
)

var validServiceTypes = map[ServiceType]bool{
	ServiceDocument:           true,
	ServiceNonDocumentAir:     true,
	ServiceNonDocumentSurface: true,
	ServiceExpress:            true,
	ServicePriority:           true,
	ServiceEcommercePrepaid:   true,
	ServiceEcommerceCOD:       true,
}

// IsValid reports whether s is a known service type
func (s ServiceType) IsValid() bool {
	return validServiceTypes[s]
}

// RuleType classifies a discount rule
type RuleType string

// Discount rule types
const (
	RuleTypeVolume   RuleType = "VOLUME"
	RuleTypeRoute    RuleType = "ROUTE"
	RuleTypeCustomer RuleType = "CUSTOMER"
	RuleTypeSLA      RuleType = "SLA"
	RuleTypeTier     RuleType = "TIER"
	RuleTypePromo    RuleType = "PROMO"
)

// IsValid reports whether r is a known rule type
func (r RuleType) IsValid() bool {
	switch r {
	case RuleTypeVolume, RuleTypeRoute, RuleTypeCustomer, RuleTypeSLA, RuleTypeTier, RuleTypePromo:
		return true
	}
	return false
}

// AppliesTo is the billing context a discount rule participates in
type AppliesTo string

// Billing contexts
const (
	AppliesToShipment AppliesTo = "SHIPMENT"
	AppliesToRecharge AppliesTo = "RECHARGE"
)

// IsValid reports whether a is a known billing context
func (a AppliesTo) IsValid() bool {
	return a == AppliesToShipment || a == AppliesToRecharge
}

// DiscountType selects how a discount value is applied
type DiscountType string

// Discount types
const (
	DiscountFlat    DiscountType = "FLAT"
	DiscountPercent DiscountType = "PERCENT"
)

// IsValid reports whether d is a known discount type
func (d DiscountType) IsValid() bool {
	return d == DiscountFlat || d == DiscountPercent
}

// RuleStatus gates whether a discount rule is a candidate
type RuleStatus string

// Rule statuses
const (
	RuleStatusActive   RuleStatus = "ACTIVE"
	RuleStatusInactive RuleStatus = "INACTIVE"
)

// IsValid reports whether s is a known rule status
func (s RuleStatus) IsValid() bool {
	return s == RuleStatusActive || s == RuleStatusInactive
}

// RateLevel records which table a rate was resolved from
type RateLevel string

// Rate table levels
const (
	RateLevelFranchise RateLevel = "FRANCHISE"
	RateLevelCompany   RateLevel = "COMPANY"
)

// CompanyFranchiseID marks rate rules that belong to the company-wide table
const CompanyFranchiseID int64 = 0
