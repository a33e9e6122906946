package condition

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func facts() Facts {
	return Facts{
		OriginZone:      "METRO",
		DestinationZone: "NORTH",
		Weight:          decimal.RequireFromString("2.5"),
		ServiceType:     "EXPRESS",
		CustomerID:      "CUST-7",
		ShipmentCount:   120,
		SLA:             true,
	}
}

func TestParse_EmptyIsAlways(t *testing.T) {
	for _, raw := range []string{"", "  ", "null", "{}"} {
		n, err := Parse(raw)
		require.NoError(t, err, raw)
		assert.IsType(t, Always{}, n)
		assert.True(t, n.Eval(Facts{}))
	}
}

func TestEval(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want bool
	}{
		{"string eq normalizes case", `{"attr":"destination_zone","op":"eq","value":"north"}`, true},
		{"string neq", `{"attr":"origin_zone","op":"neq","value":"METRO"}`, false},
		{"string in", `{"attr":"service_type","op":"in","value":["PRIORITY","EXPRESS"]}`, true},
		{"string not_in", `{"attr":"service_type","op":"not_in","value":["EXPRESS"]}`, false},
		{"customer id is case sensitive", `{"attr":"customer_id","op":"eq","value":"cust-7"}`, false},
		{"number gte", `{"attr":"shipment_count","op":"gte","value":100}`, true},
		{"number lt", `{"attr":"weight","op":"lt","value":"2.5"}`, false},
		{"number lte", `{"attr":"weight","op":"lte","value":2.5}`, true},
		{"number gt", `{"attr":"weight","op":"gt","value":2}`, true},
		{"number in", `{"attr":"shipment_count","op":"in","value":[1,120]}`, true},
		{"bool eq", `{"attr":"sla","op":"eq","value":true}`, true},
		{"bool neq", `{"attr":"sla","op":"neq","value":true}`, false},
		{"all", `{"all":[{"attr":"sla","op":"eq","value":true},{"attr":"weight","op":"gte","value":5}]}`, false},
		{"any", `{"any":[{"attr":"sla","op":"eq","value":false},{"attr":"weight","op":"gte","value":1}]}`, true},
		{"nested", `{"all":[{"any":[{"attr":"origin_zone","op":"eq","value":"METRO"}]},{"attr":"customer_id","op":"eq","value":"CUST-7"}]}`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := Parse(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, n.Eval(facts()))
		})
	}
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"not json", `{"attr":`},
		{"unknown attribute", `{"attr":"colour","op":"eq","value":"red"}`},
		{"unknown field", `{"attr":"sla","op":"eq","value":true,"extra":1}`},
		{"two forms", `{"all":[{"attr":"sla","op":"eq","value":true}],"attr":"sla"}`},
		{"empty group", `{"any":[]}`},
		{"missing value", `{"attr":"weight","op":"gt"}`},
		{"ordering on string", `{"attr":"origin_zone","op":"gt","value":"A"}`},
		{"ordering on bool", `{"attr":"sla","op":"lt","value":true}`},
		{"wrong value type", `{"attr":"weight","op":"gt","value":true}`},
		{"in needs list", `{"attr":"service_type","op":"in","value":"EXPRESS"}`},
		{"empty list", `{"attr":"service_type","op":"in","value":[]}`},
		{"unknown operator", `{"attr":"weight","op":"between","value":1}`},
		{"null bool", `{"attr":"sla","op":"eq","value":null}`},
		{"null number", `{"attr":"weight","op":"gte","value":null}`},
		{"null string", `{"attr":"origin_zone","op":"eq","value":null}`},
		{"null list", `{"attr":"service_type","op":"in","value":null}`},
		{"null in string list", `{"attr":"service_type","op":"in","value":["EXPRESS",null]}`},
		{"null in number list", `{"attr":"shipment_count","op":"in","value":[1,null]}`},
		{"trailing garbage", `{"attr":"weight","op":"gte","value":1}garbage`},
		{"trailing object", `{"attr":"weight","op":"gte","value":1} {"attr":"bogus"}`},
		{"trailing data in child", `{"all":[{"attr":"sla","op":"eq","value":true}]}{}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.raw)
			assert.ErrorIs(t, err, ErrInvalid)
		})
	}
}

func TestParse_DepthLimit(t *testing.T) {
	leaf := `{"attr":"sla","op":"eq","value":true}`

	nest := func(levels int) string {
		raw := leaf
		for i := 0; i < levels; i++ {
			raw = `{"all":[` + raw + `]}`
		}
		return raw
	}

	_, err := Parse(nest(MaxDepth - 1))
	require.NoError(t, err)

	_, err = Parse(nest(MaxDepth))
	require.ErrorIs(t, err, ErrInvalid)
	assert.True(t, strings.Contains(err.Error(), "nesting"))
}
