package money

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var printer = message.NewPrinter(language.BrazilianPortuguese)

// Normalize parses pt-BR formatted numeric text ("1.234,56", "R$ 100.000,00")
// into a float64. Of all period/comma separators the last one is the decimal
// separator; the rest are thousands separators and are dropped. Malformed or
// non-finite input yields 0, never an error.
func Normalize(value string) float64 {
	if value == "" {
		return 0
	}

	var b strings.Builder
	for _, r := range value {
		if (r >= '0' && r <= '9') || r == '.' || r == ',' || r == '-' {
			b.WriteRune(r)
		}
	}
	clean := b.String()

	if last := strings.LastIndexAny(clean, ".,"); last >= 0 {
		var d strings.Builder
		for i := 0; i < len(clean); i++ {
			switch clean[i] {
			case '.', ',':
				if i == last {
					d.WriteByte('.')
				}
			default:
				d.WriteByte(clean[i])
			}
		}
		clean = d.String()
	}

	n, err := strconv.ParseFloat(clean, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0
	}
	return n
}

// Amount is a monetary value that accepts either a JSON number or pt-BR
// formatted text when decoding. Numeric input passes through unchanged;
// text goes through Normalize. Decoding never fails: garbage becomes 0.
type Amount float64

func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*a = 0
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			*a = 0
			return nil
		}
		*a = Amount(Normalize(s))
		return nil
	}

	var f float64
	if err := json.Unmarshal(data, &f); err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		*a = 0
		return nil
	}
	*a = Amount(f)
	return nil
}

func (a Amount) Float64() float64 {
	return float64(a)
}

// FormatCurrency renders an amount as pt-BR currency ("R$ 1.234,56").
// Non-finite values render as zero.
func FormatCurrency(n float64) string {
	if math.IsNaN(n) || math.IsInf(n, 0) {
		n = 0
	}
	return printer.Sprintf("R$ %v", number.Decimal(n,
		number.MinFractionDigits(2), number.MaxFractionDigits(2)))
}

// FormatPercentage renders a value expressed in 0-100 units as a pt-BR
// percentage with two fraction digits ("78,13%").
func FormatPercentage(p float64) string {
	if math.IsNaN(p) || math.IsInf(p, 0) {
		p = 0
	}
	return printer.Sprintf("%v", number.Percent(p/100,
		number.MinFractionDigits(2), number.MaxFractionDigits(2)))
}

// FormatPercentageDirect renders a value that is already a percentage used
// directly in chart and label contexts. The scaling convention of each call
// site differs from FormatPercentage even though the rendering matches; the
// two entry points are kept separate so call sites stay auditable.
func FormatPercentageDirect(p float64) string {
	return FormatPercentage(p)
}
