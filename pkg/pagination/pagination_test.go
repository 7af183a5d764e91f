package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClamp(t *testing.T) {
	cases := []struct {
		name       string
		page       int
		limit      int
		wantPage   int
		wantLimit  int
		wantOffset int
	}{
		{"defaults", 0, 0, 1, DefaultLimit, 0},
		{"negative values", -3, -1, 1, DefaultLimit, 0},
		{"normal", 3, 25, 3, 25, 50},
		{"limit capped", 1, 500, 1, MaxLimit, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			params := Clamp(tc.page, tc.limit)
			assert.Equal(t, tc.wantPage, params.Page)
			assert.Equal(t, tc.wantLimit, params.Limit)
			assert.Equal(t, tc.wantOffset, params.Offset)
		})
	}
}
