package catalog

import (
	"testing"
	"time"
)

func TestSortKey(t *testing.T) {
	year := time.Now().Year()

	tests := []struct {
		name string
		in   string
		want DateKey
	}{
		{name: "iso", in: "2024-03-05", want: DateKey{2024, 3, 5}},
		{name: "iso with time", in: "2024-03-05T19:00:00", want: DateKey{2024, 3, 5}},
		{name: "dotted", in: "05.03.2024", want: DateKey{2024, 3, 5}},
		{name: "dotted single digit", in: "5.3.2024", want: DateKey{2024, 3, 5}},
		{name: "slashed", in: "05/03/2024", want: DateKey{2024, 3, 5}},
		{name: "named russian", in: "5 марта 2024", want: DateKey{2024, 3, 5}},
		{name: "named russian abbreviated", in: "17 авг 2025", want: DateKey{2025, 8, 17}},
		{name: "named english", in: "5 March 2024", want: DateKey{2024, 3, 5}},
		{name: "named no year", in: "5 марта", want: DateKey{year, 3, 5}},
		{name: "named english no year", in: "12 sep", want: DateKey{year, 9, 12}},
		{name: "day dot month", in: "17.08", want: DateKey{year, 8, 17}},
		{name: "day dot month in text", in: "сб 17.08, 19:00", want: DateKey{year, 8, 17}},
		{name: "dotted run resumes scan", in: "1.2.3", want: DateKey{year, 3, 2}},
		{name: "dotted run with later pair", in: "1.2.3 05.06", want: DateKey{year, 3, 2}},
		{name: "unknown month with year", in: "5 хз 2024", want: DateKey{2024, 1, 5}},
		{name: "empty", in: "", want: UnknownDate},
		{name: "whitespace", in: "   ", want: UnknownDate},
		{name: "garbage", in: "скоро в продаже", want: UnknownDate},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := SortKey(tc.in); got != tc.want {
				t.Fatalf("SortKey(%q) = %+v, want %+v", tc.in, got, tc.want)
			}
		})
	}
}

func TestDateKeyLess(t *testing.T) {
	tests := []struct {
		name string
		a, b DateKey
		want bool
	}{
		{name: "earlier year", a: DateKey{2023, 12, 31}, b: DateKey{2024, 1, 1}, want: true},
		{name: "earlier month", a: DateKey{2024, 3, 31}, b: DateKey{2024, 4, 1}, want: true},
		{name: "earlier day", a: DateKey{2024, 3, 5}, b: DateKey{2024, 3, 6}, want: true},
		{name: "equal", a: DateKey{2024, 3, 5}, b: DateKey{2024, 3, 5}, want: false},
		{name: "unknown sorts last", a: DateKey{2024, 3, 5}, b: UnknownDate, want: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.a.Less(tc.b); got != tc.want {
				t.Fatalf("%+v.Less(%+v) = %v, want %v", tc.a, tc.b, got, tc.want)
			}
		})
	}
}
