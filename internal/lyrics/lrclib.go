package lyrics

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"

	"github.com/HeinSoeHtet/harp/internal/models"
)

const lrclibBaseURL = "https://lrclib.net/api"

// DurationTolerance is the window, in seconds, within which an LRCLIB result's
// duration is considered a match for the local song.
const DurationTolerance = 5.0

// LRCLIBClient searches the LRCLIB catalog for synced lyrics.
type LRCLIBClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewLRCLIBClient creates a client for the LRCLIB API. An empty baseURL uses
// the public instance.
func NewLRCLIBClient(baseURL string, client *http.Client) *LRCLIBClient {
	if baseURL == "" {
		baseURL = lrclibBaseURL
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &LRCLIBClient{baseURL: baseURL, httpClient: client}
}

// lrclibResult is one search hit from LRCLIB.
type lrclibResult struct {
	ID           int     `json:"id"`
	TrackName    string  `json:"trackName"`
	ArtistName   string  `json:"artistName"`
	Duration     float64 `json:"duration"`
	SyncedLyrics string  `json:"syncedLyrics"`
}

// Search looks up synced lyrics for a song by title and artist, matching
// results against the song's duration within [DurationTolerance].
//
// Returns nil (no error) when nothing usable is found; the caller decides
// whether a miss matters.
func (c *LRCLIBClient) Search(ctx context.Context, title, artist string, duration float64) ([]models.LyricLine, error) {
	query := url.Values{}
	query.Set("q", artist+" "+title)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("lyric search failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("lyric search error: status %d", resp.StatusCode)
	}

	var results []lrclibResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, fmt.Errorf("failed to decode search results: %w", err)
	}

	for _, result := range results {
		if result.SyncedLyrics == "" {
			continue
		}
		if duration > 0 && math.Abs(result.Duration-duration) > DurationTolerance {
			continue
		}
		return ParseLRC(result.SyncedLyrics), nil
	}

	return nil, nil
}
