package models

import (
	"strconv"
	"strings"
)

// ParsePrice converts a display price string ("199.90 ₺", "1.299,90 TL",
// "1,299.90") to its numeric value. Both Turkish and English separator
// conventions are accepted: when dot and comma are both present, the one
// appearing last is the decimal separator. A string with no digits
// parses to 0 and ok is false; callers treat 0 as the missing-price
// sentinel.
func ParsePrice(s string) (price float64, ok bool) {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9', r == '.', r == ',', r == '-':
			b.WriteRune(r)
		}
	}
	cleaned := b.String()
	if cleaned == "" {
		return 0, false
	}

	lastDot := strings.LastIndexByte(cleaned, '.')
	lastComma := strings.LastIndexByte(cleaned, ',')
	switch {
	case lastDot >= 0 && lastComma >= 0:
		if lastComma > lastDot {
			// "1.299,90": dots group, comma is decimal
			cleaned = strings.ReplaceAll(cleaned, ".", "")
			cleaned = strings.Replace(cleaned, ",", ".", 1)
		} else {
			// "1,299.90": commas group, dot is decimal
			cleaned = strings.ReplaceAll(cleaned, ",", "")
		}
	case lastComma >= 0:
		if strings.Count(cleaned, ",") == 1 && len(cleaned)-lastComma-1 <= 2 {
			// "199,90": decimal comma
			cleaned = strings.Replace(cleaned, ",", ".", 1)
		} else {
			// "1,299" or "1,299,000": grouping commas
			cleaned = strings.ReplaceAll(cleaned, ",", "")
		}
	case strings.Count(cleaned, ".") > 1:
		// "1.299.900": grouping dots, no decimal part
		cleaned = strings.ReplaceAll(cleaned, ".", "")
	}

	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// NumericPrice returns the product's numeric price, preferring the
// server-provided raw value over parsing the display string.
func (p Product) NumericPrice() float64 {
	if p.RawPrice > 0 {
		return p.RawPrice
	}
	price, _ := ParsePrice(p.Price)
	return price
}
