package shared

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
)

// Salvadoran document and contact formats. Inputs arrive as the operator
// typed them; formatting normalizes before validation, mirroring the input
// masks the administration forms applied.

var (
	duiPattern    = regexp.MustCompile(`^0\d{7}-\d$`)
	phonePattern  = regexp.MustCompile(`^[267]\d{3}-\d{4}$`)
	mobilePattern = regexp.MustCompile(`^[67]\d{3}-\d{4}$`)
	weightPattern = regexp.MustCompile(`^\d+(\.\d{1,2})?$`)
)

var (
	ErrInvalidDUI    = errors.New("El DUI no tiene un formato válido")
	ErrInvalidPhone  = errors.New("El teléfono no tiene un formato válido")
	ErrInvalidWeight = errors.New("El peso no tiene un formato válido")
	ErrWeightZero    = errors.New("El peso debe ser mayor que cero")
)

// FormatDUI reformats raw digit input into the masked 0XXXXXXX-D form.
// The mask forces the leading zero: an input of "123456789" yields
// "01234567-8", matching the behavior of the capture forms.
func FormatDUI(raw string) (string, error) {
	digits := onlyDigits(raw)
	switch {
	case len(digits) == 9 && digits[0] == '0':
		return digits[:8] + "-" + digits[8:], nil
	case len(digits) >= 8:
		return "0" + digits[:7] + "-" + digits[7:8], nil
	default:
		return "", ErrInvalidDUI
	}
}

// ValidDUI reports whether a formatted DUI matches the canonical mask.
func ValidDUI(dui string) bool {
	return duiPattern.MatchString(dui)
}

// FormatPhone reformats an 8 digit phone into XXXX-XXXX.
func FormatPhone(raw string) (string, error) {
	digits := onlyDigits(raw)
	if len(digits) != 8 {
		return "", ErrInvalidPhone
	}
	return digits[:4] + "-" + digits[4:], nil
}

// ValidContactPhone accepts landlines and mobiles (prefix 2, 6 or 7), the
// rule applied to employee and address contact numbers.
func ValidContactPhone(phone string) bool {
	return phonePattern.MatchString(phone)
}

// ValidMobile accepts only mobile prefixes 6 and 7, the rule applied to
// client phone numbers.
func ValidMobile(phone string) bool {
	return mobilePattern.MatchString(phone)
}

// ParseWeight validates and parses a package weight. Grouping separators are
// stripped first; the remaining text must be a positive decimal with at most
// two fraction digits.
func ParseWeight(raw string) (float64, error) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	if !weightPattern.MatchString(cleaned) {
		return 0, ErrInvalidWeight
	}
	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, ErrInvalidWeight
	}
	if value <= 0 {
		return 0, ErrWeightZero
	}
	return value, nil
}

func onlyDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
