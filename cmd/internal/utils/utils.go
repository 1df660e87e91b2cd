package utils

import (
	"fmt"
	"reflect"
	"strings"
	"time"
)

func FormatEpoch(millis int64) string {
	return time.UnixMilli(millis).
		UTC().
		Format(time.RFC3339)
}

func NowUTC() int64 {
	return time.Now().
		UTC().
		UnixMilli()
}

func FromEpoch(rfc string) (int64, error) {
	t, err := time.Parse(time.RFC3339, rfc)
	if err != nil {
		return 0, err
	}
	return t.UnixMilli(), nil
}

// DateOnly normalizes a date string to "YYYY-MM-DD". It accepts both plain
// dates and full ISO timestamps ("2025-10-30T00:00:00.000Z") and keeps only
// the calendar-day prefix.
func DateOnly(s string) (string, error) {
	if len(s) >= len(time.DateOnly) {
		prefix := s[:len(time.DateOnly)]
		if _, err := time.Parse(time.DateOnly, prefix); err == nil {
			return prefix, nil
		}
	}
	return "", fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
}

func Sanitize(o any) {
	v := reflect.ValueOf(o)
	if v.Kind() != reflect.Ptr || v.IsNil() {
		panic("sanitize: expected pointer to struct")
	}

	v = v.Elem()
	if v.Kind() != reflect.Struct {
		panic("sanitize: expected struct")
	}

	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		switch field.Kind() {
		case reflect.String:
			field.SetString(sanitizeString(field.String()))

		case reflect.Slice:
			if field.Type().Elem().Kind() == reflect.String {
				for j := 0; j < field.Len(); j++ {
					field.Index(j).SetString(sanitizeString(field.Index(j).String()))
				}
			}
		}
	}
}

func sanitizeString(s string) string {
	return strings.TrimSpace(s)
}
