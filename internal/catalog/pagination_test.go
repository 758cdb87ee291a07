package catalog

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func render(markers []Marker) []string {
	out := make([]string, len(markers))
	for i, m := range markers {
		out[i] = m.String()
	}
	return out
}

func TestMarkers(t *testing.T) {
	tests := []struct {
		name           string
		current, total int
		want           []string
	}{
		{name: "no pages", current: 1, total: 0, want: []string{}},
		{name: "few pages", current: 3, total: 5, want: []string{"1", "2", "3", "4", "5"}},
		{name: "seven pages", current: 7, total: 7, want: []string{"1", "2", "3", "4", "5", "6", "7"}},
		{name: "start", current: 1, total: 10, want: []string{"1", "2", "3", "4", "ellipsis", "10"}},
		{name: "third", current: 3, total: 10, want: []string{"1", "2", "3", "4", "ellipsis", "10"}},
		{name: "end", current: 10, total: 10, want: []string{"1", "ellipsis", "7", "8", "9", "10"}},
		{name: "near end", current: 8, total: 10, want: []string{"1", "ellipsis", "7", "8", "9", "10"}},
		{name: "middle", current: 5, total: 10, want: []string{"1", "ellipsis", "4", "5", "6", "ellipsis", "10"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, render(Markers(tt.current, tt.total)))
		})
	}
}

func TestMarkersAnyCurrentWithFivePages(t *testing.T) {
	for current := 1; current <= 5; current++ {
		assert.Equal(t, []string{"1", "2", "3", "4", "5"}, render(Markers(current, 5)))
	}
}

func TestMarkerJSON(t *testing.T) {
	data, err := json.Marshal(Markers(1, 10))
	require.NoError(t, err)
	assert.JSONEq(t, `[1,2,3,4,"ellipsis",10]`, string(data))
}
