// Package numfmt разбирает числа, введенные в локальном формате:
// суммы с разделителями разрядов и валютой, координаты с запятой вместо точки.
package numfmt

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// ParseDigits отбрасывает все символы, кроме цифр, и разбирает остаток.
// Пустой результат дает 0. Ошибок не бывает: при переполнении возвращается math.MaxInt64.
func ParseDigits(s string) int64 {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if digits == "" {
		return 0
	}
	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return math.MaxInt64
	}
	return n
}

// NormalizeDecimal приводит число к каноничному виду с точкой в качестве разделителя.
//
//	"-6,2088"    -> "-6.2088"
//	"1.234,56"   -> "1234.56"
//	"1,234.56"   -> "1234.56"
//	"1.250.000"  -> "1250000"
func NormalizeDecimal(s string) string {
	s = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || r == '\'' {
			return -1
		}
		return r
	}, s)
	if s == "" {
		return ""
	}

	lastDot := strings.LastIndex(s, ".")
	lastComma := strings.LastIndex(s, ",")

	switch {
	case lastDot >= 0 && lastComma >= 0:
		// десятичный разделитель - тот, что встречается последним
		if lastComma > lastDot {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case lastComma >= 0:
		if strings.Count(s, ",") > 1 {
			s = strings.ReplaceAll(s, ",", "")
		} else {
			s = strings.Replace(s, ",", ".", 1)
		}
	case lastDot >= 0:
		if strings.Count(s, ".") > 1 {
			s = strings.ReplaceAll(s, ".", "")
		}
	}
	return s
}

// ParseDecimal разбирает число в локальном формате.
func ParseDecimal(s string) (float64, error) {
	normalized := NormalizeDecimal(s)
	if normalized == "" {
		return 0, fmt.Errorf("empty number")
	}
	v, err := strconv.ParseFloat(normalized, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q: %w", s, err)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("invalid number %q", s)
	}
	return v, nil
}

// ParseLatitude разбирает широту и проверяет диапазон [-90, 90].
func ParseLatitude(s string) (float64, error) {
	v, err := ParseDecimal(s)
	if err != nil {
		return 0, err
	}
	if v < -90 || v > 90 {
		return 0, fmt.Errorf("latitude %v out of range", v)
	}
	return v, nil
}

// ParseLongitude разбирает долготу и проверяет диапазон [-180, 180].
func ParseLongitude(s string) (float64, error) {
	v, err := ParseDecimal(s)
	if err != nil {
		return 0, err
	}
	if v < -180 || v > 180 {
		return 0, fmt.Errorf("longitude %v out of range", v)
	}
	return v, nil
}

// ParseNumber принимает значение из формы (число или строку) и возвращает float64.
// Пустое значение считается нулем. ok == false, если значение не числовое.
func ParseNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case nil:
		return 0, true
	case float64:
		return n, !math.IsNaN(n) && !math.IsInf(n, 0)
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		if strings.TrimSpace(n) == "" {
			return 0, true
		}
		f, err := ParseDecimal(n)
		return f, err == nil
	default:
		return 0, false
	}
}

// ParseAmount превращает денежное значение из формы в int64.
// Строки разбираются через ParseDigits, поэтому "Rp 1.250.000" дает 1250000.
// Числа из JSON уже типизированы: дробная часть отбрасывается, знак сохраняется.
func ParseAmount(v any) int64 {
	switch n := v.(type) {
	case nil:
		return 0
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return 0
		}
		return int64(n)
	case float32:
		return int64(n)
	case int:
		return int64(n)
	case int32:
		return int64(n)
	case int64:
		return n
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i
		}
		f, err := n.Float64()
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0
		}
		return int64(f)
	case string:
		return ParseDigits(n)
	default:
		return ParseDigits(fmt.Sprint(n))
	}
}

// FormatDecimal печатает координату или площадь без лишних нулей.
func FormatDecimal(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
