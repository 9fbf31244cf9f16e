package episodes_test

import (
	"errors"
	"reflect"
	"testing"

	"podboost/internal/episodes"
	"podboost/internal/services"
)

func TestParseRange(t *testing.T) {
	cases := []struct {
		name string
		spec string
		want []int
	}{
		{"single", "5", []int{5}},
		{"span", "1-4", []int{1, 2, 3, 4}},
		{"list", "1,3,5", []int{1, 3, 5}},
		{"mixed", "1-3,7,10-12", []int{1, 2, 3, 7, 10, 11, 12}},
		{"overlap deduplicated", "1-5,3-7", []int{1, 2, 3, 4, 5, 6, 7}},
		{"unsorted input", "9,2,5", []int{2, 5, 9}},
		{"whitespace", " 1 - 3 , 5 ", []int{1, 2, 3, 5}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := episodes.ParseRange(tc.spec)
			if err != nil {
				t.Fatalf("ParseRange(%q) failed: %v", tc.spec, err)
			}
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("ParseRange(%q) = %v, want %v", tc.spec, got, tc.want)
			}
		})
	}
}

func TestParseRangeRejectsMalformedInput(t *testing.T) {
	cases := []struct {
		name string
		spec string
	}{
		{"empty", ""},
		{"letters", "abc"},
		{"backwards span", "10-5"},
		{"zero", "0"},
		{"negative", "-3"},
		{"trailing comma", "1,2,"},
		{"dangling dash", "1-"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := episodes.ParseRange(tc.spec)
			if err == nil {
				t.Fatalf("ParseRange(%q) succeeded, want error", tc.spec)
			}
			if !errors.Is(err, services.ErrValidation) {
				t.Fatalf("ParseRange(%q) error = %v, want validation marker", tc.spec, err)
			}
		})
	}
}
