package ews

import (
	"encoding"
	"encoding/base64"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// valueCodec parses and formats one Go type.
type valueCodec struct {
	parse  func(s string) (interface{}, error)
	format func(v interface{}) (string, error)
}

func newCodec[T any](parse func(s string) (T, error), format func(v T) string) valueCodec {
	return valueCodec{
		parse: func(s string) (interface{}, error) {
			return parse(s)
		},
		format: func(v interface{}) (string, error) {
			return format(v.(T)), nil
		},
	}
}

var codecs = map[reflect.Type]valueCodec{
	reflect.TypeOf(""): newCodec(func(s string) (string, error) {
		return s, nil
	}, func(v string) string {
		return v
	}),
	reflect.TypeOf(false): newCodec(parseBool, strconv.FormatBool),
	reflect.TypeOf(int(0)): newCodec(func(s string) (int, error) {
		return strconv.Atoi(strings.TrimSpace(s))
	}, strconv.Itoa),
	reflect.TypeOf(int32(0)): newCodec(func(s string) (int32, error) {
		v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 32)
		return int32(v), err
	}, func(v int32) string {
		return strconv.FormatInt(int64(v), 10)
	}),
	reflect.TypeOf(int64(0)): newCodec(func(s string) (int64, error) {
		return strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	}, func(v int64) string {
		return strconv.FormatInt(v, 10)
	}),
	reflect.TypeOf(float64(0)): newCodec(func(s string) (float64, error) {
		return strconv.ParseFloat(strings.TrimSpace(s), 64)
	}, func(v float64) string {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}),
	reflect.TypeOf(time.Time{}): newCodec(ParseDateTime, FormatDateTime),
	reflect.TypeOf(time.Duration(0)): newCodec(ParseDuration, FormatDuration),
	reflect.TypeOf([]byte(nil)): newCodec(base64.StdEncoding.DecodeString, base64.StdEncoding.EncodeToString),
}

var (
	textUnmarshalerType = reflect.TypeOf((*encoding.TextUnmarshaler)(nil)).Elem()
)

// ParseValue decodes a wire value. Besides the built-in primitive types,
// any type whose pointer implements encoding.TextUnmarshaler is supported.
func ParseValue[T any](s string) (T, error) {
	var v T
	t := reflect.TypeOf(&v).Elem()
	if codec, ok := codecs[t]; ok {
		parsed, err := codec.parse(s)
		if err != nil {
			return v, &Error{Kind: ErrKindInvalidValue, Message: fmt.Sprintf("cannot parse %q as %v", s, t), Err: err}
		}
		return parsed.(T), nil
	}
	if u, ok := interface{}(&v).(encoding.TextUnmarshaler); ok {
		if err := u.UnmarshalText([]byte(s)); err != nil {
			return v, &Error{Kind: ErrKindInvalidValue, Message: fmt.Sprintf("cannot parse %q as %v", s, t), Err: err}
		}
		return v, nil
	}
	return v, &Error{Kind: ErrKindInvalidValue, Message: fmt.Sprintf("no codec for %v", t)}
}

// FormatValue encodes a value for the wire.
func FormatValue(v interface{}) (string, error) {
	if codec, ok := codecs[reflect.TypeOf(v)]; ok {
		return codec.format(v)
	}
	switch v := v.(type) {
	case encoding.TextMarshaler:
		b, err := v.MarshalText()
		if err != nil {
			return "", &Error{Kind: ErrKindInvalidValue, Err: err}
		}
		return string(b), nil
	case fmt.Stringer:
		return v.String(), nil
	}
	return "", &Error{Kind: ErrKindInvalidValue, Message: fmt.Sprintf("no codec for %T", v)}
}

// hasCodec reports whether values of type t can be parsed.
func hasCodec(t reflect.Type) bool {
	if _, ok := codecs[t]; ok {
		return true
	}
	return reflect.PointerTo(t).Implements(textUnmarshalerType)
}

func parseBool(s string) (bool, error) {
	switch strings.TrimSpace(s) {
	case "true", "1":
		return true, nil
	case "false", "0":
		return false, nil
	}
	return false, fmt.Errorf("invalid boolean %q", s)
}

var dateTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02Z07:00",
	"2006-01-02",
}

// ParseDateTime parses an xs:dateTime or xs:date value. Values without a
// time zone are read as UTC.
func ParseDateTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	var firstErr error
	for _, layout := range dateTimeLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return time.Time{}, firstErr
}

// FormatDateTime formats an xs:dateTime value. UTC times use the "Z" suffix,
// other times keep their offset.
func FormatDateTime(t time.Time) string {
	return t.Format(time.RFC3339Nano)
}

// ParseDuration parses a signed xs:duration value, such as "-PT8H" or
// "P1DT30M". Years and months are rejected, since they don't have a fixed
// length. Only seconds may carry a fraction.
func ParseDuration(s string) (time.Duration, error) {
	orig := s
	s = strings.TrimSpace(s)

	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}
	if !strings.HasPrefix(s, "P") {
		return 0, fmt.Errorf("invalid duration %q", orig)
	}
	s = s[1:]

	limit := uint64(math.MaxInt64)
	if neg {
		limit++
	}

	var total uint64
	inTime, parts, timeParts := false, 0, 0
	for s != "" {
		if s[0] == 'T' {
			if inTime {
				return 0, fmt.Errorf("invalid duration %q", orig)
			}
			inTime = true
			s = s[1:]
			continue
		}
		i := strings.IndexAny(s, "YMWDHS")
		if i <= 0 {
			return 0, fmt.Errorf("invalid duration %q", orig)
		}
		num, designator := s[:i], s[i]
		s = s[i+1:]

		var unit uint64
		switch {
		case designator == 'W' && !inTime:
			unit = uint64(7 * 24 * time.Hour)
		case designator == 'D' && !inTime:
			unit = uint64(24 * time.Hour)
		case designator == 'H' && inTime:
			unit = uint64(time.Hour)
		case designator == 'M' && inTime:
			unit = uint64(time.Minute)
		case designator == 'S' && inTime:
			unit = uint64(time.Second)
		default:
			return 0, fmt.Errorf("unsupported duration %q", orig)
		}

		v, err := parseDurationComponent(num, unit)
		if err != nil || v > limit-total {
			return 0, fmt.Errorf("invalid duration %q", orig)
		}
		total += v
		parts++
		if inTime {
			timeParts++
		}
	}
	if parts == 0 || (inTime && timeParts == 0) {
		return 0, fmt.Errorf("invalid duration %q", orig)
	}

	if neg {
		return time.Duration(-total), nil
	}
	return time.Duration(total), nil
}

// parseDurationComponent returns num*unit in nanoseconds. A fraction is only
// accepted for seconds and is truncated to nanoseconds.
func parseDurationComponent(num string, unit uint64) (uint64, error) {
	intPart, frac, hasFrac := strings.Cut(num, ".")
	if hasFrac && unit != uint64(time.Second) {
		return 0, fmt.Errorf("fractional %q", num)
	}
	n, err := strconv.ParseUint(intPart, 10, 64)
	if err != nil {
		return 0, err
	}
	if n > math.MaxUint64/unit {
		return 0, fmt.Errorf("component %q out of range", num)
	}
	n *= unit

	if hasFrac {
		if frac == "" || strings.Trim(frac, "0123456789") != "" {
			return 0, fmt.Errorf("invalid fraction %q", num)
		}
		if len(frac) > 9 {
			frac = frac[:9]
		}
		nanos, _ := strconv.ParseUint(frac+strings.Repeat("0", 9-len(frac)), 10, 64)
		if n > math.MaxUint64-nanos {
			return 0, fmt.Errorf("component %q out of range", num)
		}
		n += nanos
	}
	return n, nil
}

// FormatDuration formats an xs:duration value.
func FormatDuration(d time.Duration) string {
	var sb strings.Builder
	u := uint64(d)
	if d < 0 {
		sb.WriteByte('-')
		u = uint64(-(d + 1)) + 1
	}
	sb.WriteByte('P')

	const (
		day    = uint64(24 * time.Hour)
		hour   = uint64(time.Hour)
		minute = uint64(time.Minute)
		second = uint64(time.Second)
	)

	if days := u / day; days > 0 {
		fmt.Fprintf(&sb, "%dD", days)
		u %= day
	} else if u == 0 {
		sb.WriteString("T0S")
		return sb.String()
	}
	if u == 0 {
		return sb.String()
	}

	sb.WriteByte('T')
	if h := u / hour; h > 0 {
		fmt.Fprintf(&sb, "%dH", h)
		u %= hour
	}
	if m := u / minute; m > 0 {
		fmt.Fprintf(&sb, "%dM", m)
		u %= minute
	}
	if u > 0 {
		sb.WriteString(strconv.FormatUint(u/second, 10))
		if nanos := u % second; nanos > 0 {
			sb.WriteByte('.')
			sb.WriteString(strings.TrimRight(fmt.Sprintf("%09d", nanos), "0"))
		}
		sb.WriteByte('S')
	}
	return sb.String()
}
