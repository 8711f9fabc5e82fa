package domain

import (
	"math"
	"strconv"
	"strings"
)

// RawKey is a field name recognized in extraction responses.
type RawKey string

const (
	RawInvoiceID       RawKey = "invoice_id"
	RawInvoiceNumber   RawKey = "Invoice Number"
	RawCompanyName     RawKey = "Company Name"
	RawCompanyAddress  RawKey = "Company Address"
	RawCustomerName    RawKey = "Customer Name"
	RawCustomerAddress RawKey = "Customer Address"
	RawDescription     RawKey = "Description"
	RawQuantity        RawKey = "Quantity"
	RawUnitPrice       RawKey = "Unit Price"
	RawTaxes           RawKey = "Taxes"
	RawAmount          RawKey = "Amount"
	RawTotal           RawKey = "Total"
	RawInvoiceDate     RawKey = "Invoice Date"
	RawDueDate         RawKey = "Due Date"
)

// KnownRawKeys lists every recognized key.
var KnownRawKeys = []RawKey{
	RawInvoiceID, RawInvoiceNumber, RawCompanyName, RawCompanyAddress,
	RawCustomerName, RawCustomerAddress, RawDescription, RawQuantity,
	RawUnitPrice, RawTaxes, RawAmount, RawTotal, RawInvoiceDate, RawDueDate,
}

// IsKnownRawKey reports whether k is a recognized key.
func IsKnownRawKey(k string) bool {
	for _, known := range KnownRawKeys {
		if string(known) == k {
			return true
		}
	}
	return false
}

// RawKind tags the JSON type of a raw value.
type RawKind int

const (
	RawKindNull RawKind = iota
	RawKindString
	RawKindNumber
	RawKindBool
	RawKindOther
)

// RawValue is a single untyped value from an extraction response.
type RawValue struct {
	Kind RawKind
	Str  string
	Num  float64
	Bool bool
}

// StringValue returns v rendered as text. Numbers are formatted, null is empty.
func (v RawValue) StringValue() string {
	switch v.Kind {
	case RawKindString:
		return v.Str
	case RawKindNumber:
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	case RawKindBool:
		return strconv.FormatBool(v.Bool)
	}
	return ""
}

// NumberValue returns v as a number. Unparseable text and non-scalar values yield 0.
func (v RawValue) NumberValue() float64 {
	switch v.Kind {
	case RawKindNumber:
		return v.Num
	case RawKindString:
		if n, ok := ParseAmount(v.Str); ok {
			return n
		}
	}
	return 0
}

// RawFieldMap is the decoded extraction response: recognized keys plus whatever else came back.
type RawFieldMap struct {
	Known map[RawKey]RawValue
	Extra map[string]RawValue
}

// NewRawFieldMap returns an empty map.
func NewRawFieldMap() *RawFieldMap {
	return &RawFieldMap{Known: map[RawKey]RawValue{}, Extra: map[string]RawValue{}}
}

// Set stores value under key, routing unknown keys to Extra.
func (m *RawFieldMap) Set(key string, value RawValue) {
	if IsKnownRawKey(key) {
		m.Known[RawKey(key)] = value
		return
	}
	m.Extra[key] = value
}

// Get returns the value of a recognized key.
func (m *RawFieldMap) Get(key RawKey) (RawValue, bool) {
	if m == nil || m.Known == nil {
		return RawValue{}, false
	}
	v, ok := m.Known[key]
	return v, ok
}

// ParseAmount parses a monetary or numeric string after removing whitespace
// and currency symbols. When both separators appear, the last one is the
// decimal mark. A lone comma followed by one or two digits is a decimal comma;
// any other comma must group thousands. Non-finite and hex forms are rejected.
func ParseAmount(s string) (float64, bool) {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\n', '\u00a0', '$', '€', '£', '¥', '₹':
			return -1
		}
		return r
	}, s)
	if cleaned == "" {
		return 0, false
	}
	for _, r := range cleaned {
		if !strings.ContainsRune("0123456789.,+-eE", r) {
			return 0, false
		}
	}

	normalized, ok := normalizeSeparators(cleaned)
	if !ok {
		return 0, false
	}
	n, err := strconv.ParseFloat(normalized, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}

func normalizeSeparators(s string) (string, bool) {
	lastComma := strings.LastIndexByte(s, ',')
	if lastComma < 0 {
		return s, true
	}
	lastDot := strings.LastIndexByte(s, '.')

	switch {
	case lastDot > lastComma:
		// 1,234.50
		return groupedDigits(s[:lastDot], ',') + s[lastDot:], validGrouping(s[:lastDot], ',')
	case lastDot >= 0:
		// 1.234,56
		whole := s[:lastComma]
		return groupedDigits(whole, '.') + "." + s[lastComma+1:], validGrouping(whole, '.')
	case strings.Count(s, ",") == 1 && len(s)-lastComma-1 <= 2 && lastComma > 0:
		// 12,50
		return s[:lastComma] + "." + s[lastComma+1:], true
	default:
		return groupedDigits(s, ','), validGrouping(s, ',')
	}
}

func groupedDigits(s string, sep byte) string {
	return strings.ReplaceAll(s, string(sep), "")
}

// validGrouping reports whether every sep in s is followed by exactly three
// digits before the next sep or the end of s.
func validGrouping(s string, sep byte) bool {
	parts := strings.Split(s, string(sep))
	if len(parts) == 1 {
		return true
	}
	lead := strings.TrimLeft(parts[0], "+-")
	if lead == "" || len(lead) > 3 || strings.Trim(lead, "0123456789") != "" {
		return false
	}
	for _, p := range parts[1:] {
		if len(p) != 3 || strings.Trim(p, "0123456789") != "" {
			return false
		}
	}
	return true
}
