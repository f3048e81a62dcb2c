package application

import (
	"math"
	"strconv"
	"strings"
)

// Ordered fallback chain for extracting a monetary amount out of the
// heterogeneous per-code form payloads. The order is a fixed contract:
// the first candidate that parses to a finite number wins, even when later
// candidates are also present.
var amountFields = []string{"amount", "totalAmount", "requestedAmount", "estimatedAmount"}

var invoiceAmountFields = []string{"totalGross", "totalNet", "totalAmount", "total"}

// DeriveAmount extracts a best-effort amount from an application's form
// data. ok is false when no candidate parses.
func DeriveAmount(formData FormData) (float64, bool) {
	if formData == nil {
		return 0, false
	}

	for _, field := range amountFields {
		if v, ok := parseNumber(formData[field]); ok {
			return v, true
		}
	}

	if invoice, ok := formData["invoice"].(map[string]any); ok {
		for _, field := range invoiceAmountFields {
			if v, ok := parseNumber(invoice[field]); ok {
				return v, true
			}
		}
	}

	if v, ok := sumLineAmounts(formData["details"]); ok {
		return v, true
	}

	if invoice, ok := formData["invoice"].(map[string]any); ok {
		if v, ok := sumLineAmounts(invoice["lines"]); ok {
			return v, true
		}
	}

	return 0, false
}

// SumAmounts totals a collection of applications. Records without a
// derivable amount contribute zero; this never fails.
func SumAmounts(apps []*Application) float64 {
	var total float64
	for _, app := range apps {
		if v, ok := DeriveAmount(app.FormData); ok {
			total += v
		}
	}
	return total
}

func sumLineAmounts(value any) (float64, bool) {
	lines, ok := value.([]any)
	if !ok || len(lines) == 0 {
		return 0, false
	}

	var total float64
	parsedAny := false
	for _, line := range lines {
		entry, ok := line.(map[string]any)
		if !ok {
			continue
		}
		if v, ok := parseNumber(entry["amount"]); ok {
			total += v
			parsedAny = true
		}
	}

	return total, parsedAny
}

func parseNumber(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return finite(v)
	case float32:
		return finite(float64(v))
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		// Strip thousands separators before parsing: "1,000" parses as 1000.
		cleaned := strings.TrimSpace(strings.ReplaceAll(v, ",", ""))
		if cleaned == "" {
			return 0, false
		}
		parsed, err := strconv.ParseFloat(cleaned, 64)
		if err != nil {
			return 0, false
		}
		return finite(parsed)
	}
	return 0, false
}

func finite(v float64) (float64, bool) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
