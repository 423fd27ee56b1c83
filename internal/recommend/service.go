package recommend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"gigradar/internal/catalog"
	"gigradar/shared/go/models"
)

// ErrDisabled is returned when no API key is configured.
var ErrDisabled = errors.New("recommendations disabled")

const (
	// DefaultBaseURL is the generative language API root.
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	// DefaultModel is the model used for recommendation prompts.
	DefaultModel = "gemini-2.0-flash-exp"

	// DefaultMaxRecommendations caps one response.
	DefaultMaxRecommendations = 10

	maxPromptArtists    = 20
	maxPromptConcerts   = 50
	maxDescriptionRunes = 200
)

// Service asks a language model which of the user's candidate concerts fit
// the taste implied by their playlist artists.
type Service struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

// NewService creates a Service. Empty baseURL and model fall back to
// defaults; an empty apiKey leaves the service disabled.
func NewService(apiKey, baseURL, model string) *Service {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if model == "" {
		model = DefaultModel
	}
	return &Service{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// Enabled reports whether an API key is configured.
func (s *Service) Enabled() bool {
	return s.apiKey != ""
}

// Recommend picks up to max records from the candidate list that suit the
// given artists, restricted to concerts whose URL carries the city slug.
// Returned records are marked recommended. An empty candidate pool or an
// unusable model response yields an empty result, not an error.
func (s *Service) Recommend(ctx context.Context, artistNames []string, records []models.EventRecord, citySlug string, max int) ([]models.EventRecord, error) {
	if !s.Enabled() {
		return nil, ErrDisabled
	}
	if len(artistNames) == 0 {
		return nil, nil
	}
	if max <= 0 {
		max = DefaultMaxRecommendations
	}

	candidates := filterByCitySlug(records, citySlug)
	if len(candidates) == 0 {
		return nil, nil
	}

	prompt := buildPrompt(artistNames, candidates, citySlug, max)

	text, err := s.generateContent(ctx, prompt)
	if err != nil {
		return nil, err
	}

	indices := parseIndices(text)

	seen := make(map[string]struct{})
	var out []models.EventRecord
	for _, idx := range indices {
		if idx < 1 || idx > len(candidates) {
			continue
		}
		rec := candidates[idx-1]
		url := catalog.Field(rec.URL)
		if url == "" {
			continue
		}
		if _, dup := seen[url]; dup {
			continue
		}
		seen[url] = struct{}{}
		rec.Recommended = true
		out = append(out, rec)
		if len(out) >= max {
			break
		}
	}

	return out, nil
}

// filterByCitySlug keeps records whose URL path carries the city segment.
func filterByCitySlug(records []models.EventRecord, slug string) []models.EventRecord {
	if slug == "" {
		return records
	}
	var out []models.EventRecord
	for _, rec := range records {
		if url := catalog.Field(rec.URL); url != "" && strings.Contains(url, "/"+slug+"/") {
			out = append(out, rec)
		}
	}
	return out
}

func buildPrompt(artistNames []string, concerts []models.EventRecord, citySlug string, max int) string {
	if len(artistNames) > maxPromptArtists {
		artistNames = artistNames[:maxPromptArtists]
	}
	if len(concerts) > maxPromptConcerts {
		concerts = concerts[:maxPromptConcerts]
	}

	var list strings.Builder
	for i, rec := range concerts {
		fmt.Fprintf(&list, "%d. %s", i+1, catalog.Field(rec.Title))
		if desc := catalog.Field(rec.Description); desc != "" {
			fmt.Fprintf(&list, "\n   Описание: %s", truncateRunes(desc, maxDescriptionRunes))
		}
		if url := catalog.Field(rec.URL); url != "" {
			fmt.Fprintf(&list, "\n   URL: %s", url)
		}
		list.WriteString("\n")
	}

	return fmt.Sprintf(`Ты музыкальный эксперт. Проанализируй стиль музыки исполнителей из плейлиста пользователя и порекомендуй концерты, которые могут быть интересны.

Исполнители из плейлиста:
%s

Доступные концерты в городе %s:
%s
Проанализируй музыкальные стили исполнителей и найди концерты, которые могут быть интересны пользователю.

Верни JSON объект с номерами рекомендованных концертов, максимум %d рекомендаций, строго в формате:
{"recommended_indices": [1, 5, 12]}

ВАЖНО: Ответь только JSON объектом, без дополнительного текста и markdown форматирования.`,
		strings.Join(artistNames, ", "), citySlug, list.String(), max)
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}

type generatePart struct {
	Text string `json:"text"`
}

type modelContent struct {
	Parts []generatePart `json:"parts"`
}

type generateConfig struct {
	Temperature     float64 `json:"temperature"`
	TopP            float64 `json:"topP"`
	TopK            int     `json:"topK"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type generateRequest struct {
	Contents         []modelContent `json:"contents"`
	GenerationConfig generateConfig `json:"generationConfig"`
}

type generateResponse struct {
	Candidates []struct {
		Content modelContent `json:"content"`
	} `json:"candidates"`
}

func (s *Service) generateContent(ctx context.Context, prompt string) (string, error) {
	reqBody := generateRequest{
		Contents: []modelContent{{Parts: []generatePart{{Text: prompt}}}},
		GenerationConfig: generateConfig{
			Temperature:     0.3,
			TopP:            0.95,
			TopK:            40,
			MaxOutputTokens: 1024,
		},
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	reqURL := fmt.Sprintf("%s/models/%s:generateContent?key=%s", s.baseURL, s.model, s.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("model api error %d: %s", resp.StatusCode, string(body))
	}

	var result generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	if len(result.Candidates) == 0 || len(result.Candidates[0].Content.Parts) == 0 {
		return "", nil
	}
	return result.Candidates[0].Content.Parts[0].Text, nil
}

// parseIndices pulls the recommended_indices array out of the model
// response. Models wrap JSON in prose or markdown fences despite
// instructions, so everything outside the outermost braces is discarded,
// and both numeric and digit-string entries are accepted. Unusable text
// yields an empty list.
func parseIndices(text string) []int {
	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start < 0 || end <= start {
		return nil
	}

	var payload struct {
		RecommendedIndices []any `json:"recommended_indices"`
	}
	if err := json.Unmarshal([]byte(text[start:end+1]), &payload); err != nil {
		return nil
	}

	var indices []int
	for _, v := range payload.RecommendedIndices {
		switch n := v.(type) {
		case float64:
			indices = append(indices, int(n))
		case string:
			if i, err := strconv.Atoi(strings.TrimSpace(n)); err == nil {
				indices = append(indices, i)
			}
		}
	}
	return indices
}
