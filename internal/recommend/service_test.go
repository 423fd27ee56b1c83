package recommend

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"gigradar/shared/go/models"
)

func TestParseIndices(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []int
	}{
		{
			name: "plain json",
			in:   `{"recommended_indices": [1, 5, 12]}`,
			want: []int{1, 5, 12},
		},
		{
			name: "markdown fences",
			in:   "```json\n{\"recommended_indices\": [2, 3]}\n```",
			want: []int{2, 3},
		},
		{
			name: "surrounding prose",
			in:   `Вот мои рекомендации: {"recommended_indices": [7]} Удачи!`,
			want: []int{7},
		},
		{
			name: "digit strings",
			in:   `{"recommended_indices": ["4", "9"]}`,
			want: []int{4, 9},
		},
		{
			name: "mixed junk entries skipped",
			in:   `{"recommended_indices": [1, "x", null, 2.0]}`,
			want: []int{1, 2},
		},
		{
			name: "no json",
			in:   "не могу помочь",
			want: nil,
		},
		{
			name: "broken json",
			in:   `{"recommended_indices": [1, 2`,
			want: nil,
		},
		{
			name: "empty",
			in:   "",
			want: nil,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := parseIndices(tc.in); !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("parseIndices(%q) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestServiceDisabled(t *testing.T) {
	s := NewService("", "", "")
	if s.Enabled() {
		t.Fatalf("service without a key must be disabled")
	}
	_, err := s.Recommend(context.Background(), []string{"a"}, nil, "moscow", 10)
	if !errors.Is(err, ErrDisabled) {
		t.Fatalf("err = %v, want ErrDisabled", err)
	}
}

func TestRecommend(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		w.Write([]byte(`{
			"candidates": [
				{"content": {"parts": [{"text": "{\"recommended_indices\": [2, 1, 99]}"}]}}
			]
		}`))
	}))
	defer srv.Close()

	s := NewService("key", srv.URL, "test-model")

	records := []models.EventRecord{
		{URL: "https://a.ru/moscow/e/1", Title: "первый"},
		{URL: "https://a.ru/moscow/e/2", Title: "второй"},
		{URL: "https://a.ru/kazan/e/3", Title: "не тот город"},
	}

	got, err := s.Recommend(context.Background(), []string{"Сплин"}, records, "moscow", 10)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}

	if len(got) != 2 {
		t.Fatalf("got %d records, want 2", len(got))
	}
	if got[0].Title != "второй" || got[1].Title != "первый" {
		t.Fatalf("unexpected order: %q, %q", got[0].Title, got[1].Title)
	}
	for _, rec := range got {
		if !rec.Recommended {
			t.Errorf("record %s not marked recommended", rec.URL)
		}
	}
}

func TestRecommendNoCityCandidates(t *testing.T) {
	s := NewService("key", "http://unused.invalid", "m")

	records := []models.EventRecord{
		{URL: "https://a.ru/kazan/e/3", Title: "x"},
	}

	got, err := s.Recommend(context.Background(), []string{"Сплин"}, records, "moscow", 10)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no candidates, got %d", len(got))
	}
}

func TestRecommendCapsResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"candidates": [
				{"content": {"parts": [{"text": "{\"recommended_indices\": [1, 2, 3]}"}]}}
			]
		}`))
	}))
	defer srv.Close()

	s := NewService("key", srv.URL, "m")

	records := []models.EventRecord{
		{URL: "https://a.ru/moscow/e/1"},
		{URL: "https://a.ru/moscow/e/2"},
		{URL: "https://a.ru/moscow/e/3"},
	}

	got, err := s.Recommend(context.Background(), []string{"a"}, records, "moscow", 2)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d records, want cap of 2", len(got))
	}
}
