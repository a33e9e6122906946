package condition

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	// MaxDepth bounds nesting of all/any groups
	MaxDepth = 8
	// MaxChildren bounds the width of one group
	MaxChildren = 32
	// MaxListValues bounds in/not_in lists
	MaxListValues = 256
)

// ErrInvalid is returned for any malformed condition
var ErrInvalid = errors.New("invalid condition")

type wireNode struct {
	All   []json.RawMessage `json:"all"`
	Any   []json.RawMessage `json:"any"`
	Attr  string            `json:"attr"`
	Op    string            `json:"op"`
	Value json.RawMessage   `json:"value"`
}

// Parse decodes and validates a JSON condition. Empty input, "null" and "{}"
// parse to Always.
func Parse(raw string) (Node, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || trimmed == "null" || trimmed == "{}" {
		return Always{}, nil
	}
	return parseNode([]byte(trimmed), "$", 1)
}

func parseNode(raw []byte, path string, depth int) (Node, error) {
	if depth > MaxDepth {
		return nil, fmt.Errorf("%w: %s: nesting deeper than %d", ErrInvalid, path, MaxDepth)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	var w wireNode
	if err := dec.Decode(&w); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalid, path, err)
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return nil, fmt.Errorf("%w: %s: unexpected data after condition", ErrInvalid, path)
	}

	forms := 0
	if w.All != nil {
		forms++
	}
	if w.Any != nil {
		forms++
	}
	if w.Attr != "" || w.Op != "" || w.Value != nil {
		forms++
	}
	if forms != 1 {
		return nil, fmt.Errorf("%w: %s: node must be exactly one of all, any or comparison", ErrInvalid, path)
	}

	switch {
	case w.All != nil:
		children, err := parseChildren(w.All, path+".all", depth)
		if err != nil {
			return nil, err
		}
		return &All{Children: children}, nil
	case w.Any != nil:
		children, err := parseChildren(w.Any, path+".any", depth)
		if err != nil {
			return nil, err
		}
		return &Any{Children: children}, nil
	default:
		return parseCompare(w, path)
	}
}

func parseChildren(raws []json.RawMessage, path string, depth int) ([]Node, error) {
	if len(raws) == 0 {
		return nil, fmt.Errorf("%w: %s: group must not be empty", ErrInvalid, path)
	}
	if len(raws) > MaxChildren {
		return nil, fmt.Errorf("%w: %s: more than %d children", ErrInvalid, path, MaxChildren)
	}
	children := make([]Node, 0, len(raws))
	for i, r := range raws {
		child, err := parseNode(r, fmt.Sprintf("%s[%d]", path, i), depth+1)
		if err != nil {
			return nil, err
		}
		children = append(children, child)
	}
	return children, nil
}

func parseCompare(w wireNode, path string) (Node, error) {
	attr := Attribute(w.Attr)
	k, ok := attributeKinds[attr]
	if !ok {
		return nil, fmt.Errorf("%w: %s: unknown attribute %q", ErrInvalid, path, w.Attr)
	}
	op := Operator(w.Op)
	if w.Value == nil || isNull(w.Value) {
		return nil, fmt.Errorf("%w: %s: missing value", ErrInvalid, path)
	}

	c := &Compare{Attr: attr, Op: op}
	switch k {
	case kindBool:
		if op != OpEq && op != OpNeq {
			return nil, fmt.Errorf("%w: %s: operator %q not allowed for %s", ErrInvalid, path, w.Op, attr)
		}
		if err := json.Unmarshal(w.Value, &c.Bool); err != nil {
			return nil, fmt.Errorf("%w: %s: %s expects a boolean", ErrInvalid, path, attr)
		}
	case kindString:
		values, err := stringValues(op, w.Value)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %s: %v", ErrInvalid, path, attr, err)
		}
		if attr != AttrCustomerID {
			for i := range values {
				values[i] = strings.ToUpper(values[i])
			}
		}
		c.Strings = values
	case kindNumber:
		values, err := numberValues(op, w.Value)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %s: %v", ErrInvalid, path, attr, err)
		}
		c.Numbers = values
	}
	return c, nil
}

func stringValues(op Operator, raw json.RawMessage) ([]string, error) {
	switch op {
	case OpEq, OpNeq:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, errors.New("expects a string")
		}
		return []string{strings.TrimSpace(s)}, nil
	case OpIn, OpNotIn:
		items, err := listItems(raw)
		if err != nil {
			return nil, err
		}
		list := make([]string, len(items))
		for i, item := range items {
			if err := json.Unmarshal(item, &list[i]); err != nil {
				return nil, errors.New("expects a list of strings")
			}
			list[i] = strings.TrimSpace(list[i])
		}
		return list, nil
	}
	return nil, fmt.Errorf("operator %q not allowed", op)
}

func numberValues(op Operator, raw json.RawMessage) ([]decimal.Decimal, error) {
	switch op {
	case OpEq, OpNeq, OpGt, OpGte, OpLt, OpLte:
		var d decimal.Decimal
		if err := json.Unmarshal(raw, &d); err != nil {
			return nil, errors.New("expects a number")
		}
		return []decimal.Decimal{d}, nil
	case OpIn, OpNotIn:
		items, err := listItems(raw)
		if err != nil {
			return nil, err
		}
		list := make([]decimal.Decimal, len(items))
		for i, item := range items {
			if err := json.Unmarshal(item, &list[i]); err != nil {
				return nil, errors.New("expects a list of numbers")
			}
		}
		return list, nil
	}
	return nil, fmt.Errorf("operator %q not allowed", op)
}

// listItems splits a JSON list into its elements. Null elements are rejected;
// the value decoders would otherwise read them as "" or 0.
func listItems(raw json.RawMessage) ([]json.RawMessage, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, errors.New("expects a list")
	}
	if len(items) == 0 || len(items) > MaxListValues {
		return nil, fmt.Errorf("list must hold 1 to %d values", MaxListValues)
	}
	for i, item := range items {
		if isNull(item) {
			return nil, fmt.Errorf("list value %d is null", i)
		}
	}
	return items, nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
