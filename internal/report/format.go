package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// FormatType is the closed set of column display formats. Every variant has
// an explicit parse and format path; there is no stringly-typed fallback.
type FormatType int

const (
	FormatText FormatType = iota
	FormatNumber
	FormatCurrency
	FormatPercentage
	FormatDate
)

// String returns the wire name of the format type.
func (f FormatType) String() string {
	switch f {
	case FormatNumber:
		return "number"
	case FormatCurrency:
		return "currency"
	case FormatPercentage:
		return "percentage"
	case FormatDate:
		return "date"
	default:
		return "text"
	}
}

// ParseFormatType parses a wire format name.
func ParseFormatType(s string) (FormatType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "text":
		return FormatText, nil
	case "number":
		return FormatNumber, nil
	case "currency":
		return FormatCurrency, nil
	case "percentage":
		return FormatPercentage, nil
	case "date":
		return FormatDate, nil
	default:
		return FormatText, fmt.Errorf("unknown format type: %q", s)
	}
}

// Next cycles to the following format type (column editor keybinding).
func (f FormatType) Next() FormatType {
	switch f {
	case FormatText:
		return FormatNumber
	case FormatNumber:
		return FormatCurrency
	case FormatCurrency:
		return FormatPercentage
	case FormatPercentage:
		return FormatDate
	default:
		return FormatText
	}
}

// Value is a parsed cell value tagged with its format variant. Exactly one
// of the payload fields is meaningful, selected by Format.
type Value struct {
	Format FormatType
	Text   string
	Number decimal.Decimal // number, currency, percentage
	Date   time.Time
}

// ParseError is a typed per-variant parse failure. The caller keeps the
// original input; nothing is silently coerced to NaN or empty.
type ParseError struct {
	Format FormatType
	Raw    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("cannot parse %q as %s", e.Raw, e.Format)
}

var dateLayouts = []string{"2006-01-02", time.RFC3339, "01/02/2006"}

// ParseValue parses a raw string into a typed value for the given format.
func ParseValue(format FormatType, raw string) (Value, error) {
	trimmed := strings.TrimSpace(raw)

	switch format {
	case FormatText:
		return Value{Format: FormatText, Text: raw}, nil

	case FormatNumber:
		d, err := decimal.NewFromString(stripGrouping(trimmed))
		if err != nil {
			return Value{}, &ParseError{Format: format, Raw: raw}
		}
		return Value{Format: FormatNumber, Number: d}, nil

	case FormatCurrency:
		s := stripGrouping(trimmed)
		s = strings.TrimPrefix(s, "$")
		if strings.HasPrefix(s, "-$") {
			s = "-" + s[2:]
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return Value{}, &ParseError{Format: format, Raw: raw}
		}
		return Value{Format: FormatCurrency, Number: d}, nil

	case FormatPercentage:
		s := strings.TrimSuffix(stripGrouping(trimmed), "%")
		d, err := decimal.NewFromString(s)
		if err != nil {
			return Value{}, &ParseError{Format: format, Raw: raw}
		}
		return Value{Format: FormatPercentage, Number: d}, nil

	case FormatDate:
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, trimmed); err == nil {
				return Value{Format: FormatDate, Date: t}, nil
			}
		}
		return Value{}, &ParseError{Format: format, Raw: raw}

	default:
		return Value{}, &ParseError{Format: format, Raw: raw}
	}
}

// FormatValue renders a typed value for display or export.
func FormatValue(v Value) string {
	switch v.Format {
	case FormatNumber:
		return v.Number.String()
	case FormatCurrency:
		return formatCurrency(v.Number)
	case FormatPercentage:
		return v.Number.String() + "%"
	case FormatDate:
		return v.Date.Format("2006-01-02")
	default:
		return v.Text
	}
}

// FormatCell renders an arbitrary backend cell under a column format.
// Unparseable values pass through unchanged so a bad cell never corrupts
// its row.
func FormatCell(format FormatType, raw any) string {
	if raw == nil {
		return ""
	}
	var s string
	switch rv := raw.(type) {
	case string:
		s = rv
	case float64:
		s = decimal.NewFromFloat(rv).String()
	case int:
		s = decimal.NewFromInt(int64(rv)).String()
	case int64:
		s = decimal.NewFromInt(rv).String()
	default:
		s = fmt.Sprint(raw)
	}

	v, err := ParseValue(format, s)
	if err != nil {
		return s
	}
	return FormatValue(v)
}

// formatCurrency renders a decimal as a dollar amount with thousands
// separators, e.g. -1234.5 -> "-$1,234.50".
func formatCurrency(d decimal.Decimal) string {
	neg := d.IsNegative()
	fixed := d.Abs().StringFixed(2)

	parts := strings.SplitN(fixed, ".", 2)
	intPart := parts[0]
	if len(intPart) > 3 {
		var b strings.Builder
		for i, digit := range intPart {
			if i > 0 && (len(intPart)-i)%3 == 0 {
				b.WriteByte(',')
			}
			b.WriteRune(digit)
		}
		intPart = b.String()
	}

	out := "$" + intPart + "." + parts[1]
	if neg {
		return "-" + out
	}
	return out
}

// stripGrouping removes thousands separators from numeric input.
func stripGrouping(s string) string {
	return strings.ReplaceAll(s, ",", "")
}
