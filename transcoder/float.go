package transcoder

import (
	"math"
	"strconv"
	"strings"
)

// Exponent form is used when the decimal exponent falls outside
// [minPlainExp, maxPlainExp].
const (
	minPlainExp = -4
	maxPlainExp = 16
)

// appendFloat writes f in the wire's shortest round-trip form.
func appendFloat(dst []byte, f float64) []byte {
	switch {
	case math.IsNaN(f):
		return append(dst, "NAN"...)
	case math.IsInf(f, 1):
		return append(dst, "INF"...)
	case math.IsInf(f, -1):
		return append(dst, "-INF"...)
	case f == 0:
		if math.Signbit(f) {
			return append(dst, "-0"...)
		}
		return append(dst, '0')
	}

	sci := strconv.FormatFloat(f, 'e', -1, 64)
	e := strings.IndexByte(sci, 'e')
	exp, _ := strconv.Atoi(sci[e+1:])
	if exp >= minPlainExp && exp <= maxPlainExp {
		return strconv.AppendFloat(dst, f, 'f', -1, 64)
	}

	mant := sci[:e]
	dst = append(dst, mant...)
	if strings.IndexByte(mant, '.') < 0 {
		dst = append(dst, ".0"...)
	}
	dst = append(dst, 'E')
	if exp < 0 {
		dst = append(dst, '-')
		exp = -exp
	} else {
		dst = append(dst, '+')
	}
	return strconv.AppendInt(dst, int64(exp), 10)
}

// parseFloat accepts the encoder's output plus any plain decimal or
// exponent literal.
func parseFloat(text []byte) (float64, bool) {
	switch string(text) {
	case "INF", "+INF":
		return math.Inf(1), true
	case "-INF":
		return math.Inf(-1), true
	case "NAN", "-NAN":
		return math.NaN(), true
	}
	if len(text) == 0 {
		return 0, false
	}
	digits := 0
	for _, c := range text {
		switch {
		case c >= '0' && c <= '9':
			digits++
		case c == '.' || c == '-' || c == '+' || c == 'e' || c == 'E':
		default:
			return 0, false
		}
	}
	if digits == 0 {
		return 0, false
	}
	f, err := strconv.ParseFloat(string(text), 64)
	if err != nil {
		if ne, ok := err.(*strconv.NumError); ok && ne.Err == strconv.ErrRange {
			return f, true
		}
		return 0, false
	}
	return f, true
}
