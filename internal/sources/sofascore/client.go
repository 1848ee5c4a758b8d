package sofascore

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/fortuna/augur/internal/analyzer"
	"github.com/fortuna/augur/internal/sources"
)

const (
	BaseURL = "https://api.sofascore.com"

	UserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// Client queries the SofaScore event-search API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a SofaScore client (empty baseURL selects production).
func New(baseURL string) *Client {
	if baseURL == "" {
		baseURL = BaseURL
	}
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Name identifies this source in results and statistics.
func (c *Client) Name() string {
	return "sofascore"
}

// Confidence reports the trust level assigned to this source's results.
func (c *Client) Confidence() string {
	return sources.ConfidenceMedium
}

type searchResponse struct {
	Events []apiEvent `json:"events"`
}

type apiEvent struct {
	HomeTeam struct {
		Name string `json:"name"`
	} `json:"homeTeam"`
	AwayTeam struct {
		Name string `json:"name"`
	} `json:"awayTeam"`
	HomeScore struct {
		Current *int `json:"current"`
	} `json:"homeScore"`
	AwayScore struct {
		Current *int `json:"current"`
	} `json:"awayScore"`
	Status struct {
		Type string `json:"type"` // finished | inprogress | notstarted
	} `json:"status"`
	StartTimestamp int64 `json:"startTimestamp"`
}

// Search runs a text search for the team and picks the most recent event
// that satisfies the opponent and date constraints.
func (c *Client) Search(ctx context.Context, team, opponent, date string) (*sources.MatchResult, error) {
	endpoint := fmt.Sprintf("%s/api/v1/search/events?q=%s", c.baseURL, url.QueryEscape(team))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", UserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sofascore request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, sources.ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("sofascore returned status %d", resp.StatusCode)
	}

	var payload searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	normTeam := analyzer.Normalize(team)
	normOpp := analyzer.Normalize(opponent)

	for i := range payload.Events {
		event := &payload.Events[i]

		if !sources.MatchesTeam(normTeam, event.HomeTeam.Name, event.AwayTeam.Name) {
			continue
		}
		if normOpp != "" && !sources.MatchesTeam(normOpp, event.HomeTeam.Name, event.AwayTeam.Name) {
			continue
		}

		eventDate := time.Unix(event.StartTimestamp, 0).UTC().Format("2006-01-02")
		if date != "" && eventDate != date {
			continue
		}

		return c.convert(event, eventDate), nil
	}

	return nil, sources.ErrNotFound
}

func (c *Client) convert(event *apiEvent, eventDate string) *sources.MatchResult {
	result := &sources.MatchResult{
		HomeTeam:   event.HomeTeam.Name,
		AwayTeam:   event.AwayTeam.Name,
		Source:     c.Name(),
		Confidence: c.Confidence(),
		MatchDate:  eventDate,
	}

	switch event.Status.Type {
	case "finished":
		result.Status = sources.StatusFinished
	case "inprogress":
		result.Status = sources.StatusLive
	default:
		result.Status = sources.StatusScheduled
	}

	if result.Status == sources.StatusFinished {
		home, away := event.HomeScore.Current, event.AwayScore.Current
		if home == nil || away == nil || !sources.SaneScore(*home, *away) {
			result.Status = sources.StatusScheduled
			return result
		}
		result.HomeScore = *home
		result.AwayScore = *away
		result.Winner = sources.DeriveWinner(*home, *away)
	}

	return result
}
