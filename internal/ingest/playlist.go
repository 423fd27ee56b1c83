package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"
)

// ErrInvalidPlaylistURL means the text holds neither an embed snippet nor a
// public playlist link.
var ErrInvalidPlaylistURL = errors.New("playlist url not recognized")

var (
	iframeSrcRe      = regexp.MustCompile(`(?i)<iframe[^>]*src\s*=\s*["']([^"']+)["']`)
	iframePlaylistRe = regexp.MustCompile(`/iframe/playlist/([^/]+)/(\d+)`)
	userPlaylistRe   = regexp.MustCompile(`/users/([^/]+)/playlists/(\d+)`)
)

// PlaylistRef identifies a public playlist by its owner and kind.
type PlaylistRef struct {
	Owner string
	Kind  string
}

// ParsePlaylistURL extracts a playlist reference from user-pasted text. The
// text may be a raw link or a full iframe embed snippet; both the embed
// path form and the public profile path form are accepted.
func ParsePlaylistURL(text string) (PlaylistRef, error) {
	u := strings.TrimSpace(text)
	if m := iframeSrcRe.FindStringSubmatch(text); m != nil {
		u = strings.TrimSpace(m[1])
	}

	if m := iframePlaylistRe.FindStringSubmatch(u); m != nil {
		return PlaylistRef{Owner: m[1], Kind: m[2]}, nil
	}
	if m := userPlaylistRe.FindStringSubmatch(u); m != nil {
		return PlaylistRef{Owner: m[1], Kind: m[2]}, nil
	}

	return PlaylistRef{}, ErrInvalidPlaylistURL
}

// PlaylistClient reads public playlists from the music service API.
type PlaylistClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewPlaylistClient creates a client against the given API base URL.
func NewPlaylistClient(baseURL string) *PlaylistClient {
	return &PlaylistClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

type playlistResponse struct {
	Result struct {
		Title  string `json:"title"`
		Tracks []struct {
			Track struct {
				Artists []struct {
					Name string `json:"name"`
				} `json:"artists"`
			} `json:"track"`
		} `json:"tracks"`
	} `json:"result"`
}

// Artists fetches the playlist and returns the primary artist of each
// track, ordered by first appearance, without repeats.
func (c *PlaylistClient) Artists(ctx context.Context, ref PlaylistRef) ([]string, error) {
	reqURL := fmt.Sprintf("%s/users/%s/playlists/%s", c.baseURL, ref.Owner, ref.Kind)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var result playlistResponse
	if err := decodeJSON(resp.Body, &result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	seen := make(map[string]struct{})
	var names []string
	for _, t := range result.Result.Tracks {
		if len(t.Track.Artists) == 0 {
			continue
		}
		name := strings.TrimSpace(t.Track.Artists[0].Name)
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}

	return names, nil
}

func decodeJSON(r io.Reader, v any) error {
	return json.NewDecoder(r).Decode(v)
}
