// Package condition implements the bounded predicate tree attached to discount
// rules. A tree is a closed set of node kinds (all, any, comparison) over a
// fixed attribute vocabulary, parsed and type-checked once when configuration
// is loaded and evaluated without reflection afterwards.
package condition

import (
	"github.com/shopspring/decimal"
)

// Attribute names a shipment fact a comparison can read
type Attribute string

// Supported attributes
const (
	AttrOriginZone      Attribute = "origin_zone"
	AttrDestinationZone Attribute = "destination_zone"
	AttrWeight          Attribute = "weight"
	AttrServiceType     Attribute = "service_type"
	AttrCustomerID      Attribute = "customer_id"
	AttrShipmentCount   Attribute = "shipment_count"
	AttrSLA             Attribute = "sla"
)

type kind int

const (
	kindString kind = iota
	kindNumber
	kindBool
)

var attributeKinds = map[Attribute]kind{
	AttrOriginZone:      kindString,
	AttrDestinationZone: kindString,
	AttrWeight:          kindNumber,
	AttrServiceType:     kindString,
	AttrCustomerID:      kindString,
	AttrShipmentCount:   kindNumber,
	AttrSLA:             kindBool,
}

// Operator is a comparison operator
type Operator string

// Supported operators
const (
	OpEq    Operator = "eq"
	OpNeq   Operator = "neq"
	OpIn    Operator = "in"
	OpNotIn Operator = "not_in"
	OpGt    Operator = "gt"
	OpGte   Operator = "gte"
	OpLt    Operator = "lt"
	OpLte   Operator = "lte"
)

// Facts is the evaluation input
type Facts struct {
	OriginZone      string
	DestinationZone string
	Weight          decimal.Decimal
	ServiceType     string
	CustomerID      string
	ShipmentCount   int64
	SLA             bool
}

func (f Facts) str(attr Attribute) string {
	switch attr {
	case AttrOriginZone:
		return f.OriginZone
	case AttrDestinationZone:
		return f.DestinationZone
	case AttrServiceType:
		return f.ServiceType
	case AttrCustomerID:
		return f.CustomerID
	}
	return ""
}

func (f Facts) number(attr Attribute) decimal.Decimal {
	switch attr {
	case AttrWeight:
		return f.Weight
	case AttrShipmentCount:
		return decimal.NewFromInt(f.ShipmentCount)
	}
	return decimal.Zero
}

// Node is a validated predicate
type Node interface {
	Eval(f Facts) bool
	node()
}

// Always matches every shipment. It is the parse result of an empty condition.
type Always struct{}

// All matches when every child matches
type All struct {
	Children []Node
}

// Any matches when at least one child matches
type Any struct {
	Children []Node
}

// Compare tests one attribute. Exactly one of the value fields is used,
// chosen by the attribute kind.
type Compare struct {
	Attr    Attribute
	Op      Operator
	Strings []string
	Numbers []decimal.Decimal
	Bool    bool
}

func (Always) node()   {}
func (*All) node()     {}
func (*Any) node()     {}
func (*Compare) node() {}

// Eval implements Node
func (Always) Eval(Facts) bool { return true }

// Eval implements Node
func (n *All) Eval(f Facts) bool {
	for _, c := range n.Children {
		if !c.Eval(f) {
			return false
		}
	}
	return true
}

// Eval implements Node
func (n *Any) Eval(f Facts) bool {
	for _, c := range n.Children {
		if c.Eval(f) {
			return true
		}
	}
	return false
}

// Eval implements Node
func (n *Compare) Eval(f Facts) bool {
	switch attributeKinds[n.Attr] {
	case kindBool:
		v := f.SLA
		if n.Op == OpNeq {
			return v != n.Bool
		}
		return v == n.Bool
	case kindNumber:
		return n.evalNumber(f.number(n.Attr))
	default:
		return n.evalString(f.str(n.Attr))
	}
}

func (n *Compare) evalString(v string) bool {
	switch n.Op {
	case OpEq, OpIn:
		return containsString(n.Strings, v)
	case OpNeq, OpNotIn:
		return !containsString(n.Strings, v)
	}
	return false
}

func (n *Compare) evalNumber(v decimal.Decimal) bool {
	switch n.Op {
	case OpEq, OpIn:
		return containsNumber(n.Numbers, v)
	case OpNeq, OpNotIn:
		return !containsNumber(n.Numbers, v)
	case OpGt:
		return v.GreaterThan(n.Numbers[0])
	case OpGte:
		return v.GreaterThanOrEqual(n.Numbers[0])
	case OpLt:
		return v.LessThan(n.Numbers[0])
	case OpLte:
		return v.LessThanOrEqual(n.Numbers[0])
	}
	return false
}

func containsString(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}

func containsNumber(values []decimal.Decimal, v decimal.Decimal) bool {
	for _, d := range values {
		if d.Equal(v) {
			return true
		}
	}
	return false
}
