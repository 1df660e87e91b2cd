package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateOnly(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"2026-09-10", "2026-09-10", true},
		{"2026-09-10T00:00:00.000Z", "2026-09-10", true},
		{"2026-09-10T14:30:00-03:00", "2026-09-10", true},
		{"2026-9-1", "", false},
		{"10/09/2026", "", false},
		{"", "", false},
		{"not a date", "", false},
	}
	for _, tc := range cases {
		got, err := DateOnly(tc.in)
		if tc.ok {
			require.NoError(t, err, "input %q", tc.in)
			assert.Equal(t, tc.want, got, "input %q", tc.in)
		} else {
			assert.Error(t, err, "input %q", tc.in)
		}
	}
}

func TestSanitizeTrimsStringsAndSlices(t *testing.T) {
	req := struct {
		Name string
		Tags []string
		N    int
	}{Name: "  hello ", Tags: []string{" a", "b "}, N: 3}

	Sanitize(&req)

	assert.Equal(t, "hello", req.Name)
	assert.Equal(t, []string{"a", "b"}, req.Tags)
	assert.Equal(t, 3, req.N)
}
