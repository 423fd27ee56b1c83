package catalog

import (
	"testing"

	"gigradar/shared/go/models"
)

func TestField(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "Москва", want: "Москва"},
		{in: " Москва ", want: "Москва"},
		{in: "-", want: ""},
		{in: " - ", want: ""},
		{in: "", want: ""},
	}
	for _, tc := range tests {
		if got := Field(tc.in); got != tc.want {
			t.Errorf("Field(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestEventDate(t *testing.T) {
	tests := []struct {
		name string
		rec  models.EventRecord
		want string
	}{
		{
			name: "dates list joined capped at three",
			rec:  models.EventRecord{Dates: []string{"05.03", "06.03", "07.03", "08.03"}, Date: "ignored"},
			want: "05.03, 06.03, 07.03",
		},
		{
			name: "dates list with placeholders",
			rec:  models.EventRecord{Dates: []string{"-", "05.03"}},
			want: "05.03",
		},
		{
			name: "date field",
			rec:  models.EventRecord{Date: "2024-03-05"},
			want: "2024-03-05",
		},
		{
			name: "description head with time and relative day stripped",
			rec:  models.EventRecord{Description: "завтра 5 марта, 19:00 • клуб Урбан"},
			want: "5 марта",
		},
		{
			name: "nothing",
			rec:  models.EventRecord{},
			want: "",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := EventDate(tc.rec); got != tc.want {
				t.Fatalf("EventDate = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestEventTime(t *testing.T) {
	rec := models.EventRecord{Description: "5 марта, 19:00 • клуб Урбан"}
	if got := EventTime(rec); got != "19:00" {
		t.Fatalf("EventTime = %q, want %q", got, "19:00")
	}
	if got := EventTime(models.EventRecord{Description: "5 марта • клуб"}); got != "" {
		t.Fatalf("EventTime = %q, want empty", got)
	}
}

func TestEventVenue(t *testing.T) {
	tests := []struct {
		name string
		rec  models.EventRecord
		want string
	}{
		{
			name: "explicit venue",
			rec:  models.EventRecord{Venue: "ГлавClub", Description: "5 марта • другой клуб"},
			want: "ГлавClub",
		},
		{
			name: "description fallback",
			rec:  models.EventRecord{Description: "5 марта, 19:00 • клуб Урбан, Москва"},
			want: "клуб Урбан, Москва",
		},
		{
			name: "no separator",
			rec:  models.EventRecord{Description: "5 марта"},
			want: "",
		},
		{
			name: "placeholder venue",
			rec:  models.EventRecord{Venue: "-"},
			want: "",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := EventVenue(tc.rec); got != tc.want {
				t.Fatalf("EventVenue = %q, want %q", got, tc.want)
			}
		})
	}
}
