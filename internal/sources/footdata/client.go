package footdata

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
	// BaseURL for the football-data.org v4 API
	BaseURL = "https://api.football-data.org"

	// searchWindowDays is how far back to look when the slip carried no
	// match date.
	searchWindowDays = 7
)

// Client queries the football-data.org API. It is the most authoritative
// source in the chain.
type Client struct {
	baseURL    string
	authToken  string
	httpClient *http.Client
}

// New creates a football-data client. An empty baseURL selects the
// production API.
func New(baseURL, authToken string) *Client {
	if baseURL == "" {
		baseURL = BaseURL
	}
	return &Client{
		baseURL:   baseURL,
		authToken: authToken,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Name identifies this source in results and statistics.
func (c *Client) Name() string {
	return "football-data"
}

// Confidence reports the trust level assigned to this source's results.
func (c *Client) Confidence() string {
	return sources.ConfidenceVeryHigh
}

type matchesResponse struct {
	Matches []apiMatch `json:"matches"`
}

type apiMatch struct {
	UTCDate  string  `json:"utcDate"`
	Status   string  `json:"status"`
	HomeTeam apiTeam `json:"homeTeam"`
	AwayTeam apiTeam `json:"awayTeam"`
	Score    struct {
		FullTime struct {
			Home *int `json:"home"`
			Away *int `json:"away"`
		} `json:"fullTime"`
	} `json:"score"`
}

type apiTeam struct {
	Name      string `json:"name"`
	ShortName string `json:"shortName"`
}

// Search looks the team up in the match list for the requested date (or a
// trailing window when no date is known) and returns the first fixture the
// team appears in.
func (c *Client) Search(ctx context.Context, team, opponent, date string) (*sources.MatchResult, error) {
	dateFrom, dateTo := searchRange(date)

	endpoint := fmt.Sprintf("%s/v4/matches?dateFrom=%s&dateTo=%s",
		c.baseURL, url.QueryEscape(dateFrom), url.QueryEscape(dateTo))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if c.authToken != "" {
		req.Header.Set("X-Auth-Token", c.authToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("football-data request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, sources.ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("football-data returned status %d", resp.StatusCode)
	}

	var payload matchesResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	normTeam := analyzer.Normalize(team)
	normOpp := analyzer.Normalize(opponent)

	for i := range payload.Matches {
		m := &payload.Matches[i]
		if !teamInMatch(normTeam, m) {
			continue
		}
		if normOpp != "" && !teamInMatch(normOpp, m) {
			continue
		}
		return c.convert(m)
	}

	return nil, sources.ErrNotFound
}

// teamInMatch checks the normalized team against both sides of a fixture.
func teamInMatch(normTeam string, m *apiMatch) bool {
	return sources.MatchesTeam(normTeam, m.HomeTeam.Name, m.HomeTeam.ShortName) ||
		sources.MatchesTeam(normTeam, m.AwayTeam.Name, m.AwayTeam.ShortName)
}

// convert maps an API match into the shared MatchResult shape.
func (c *Client) convert(m *apiMatch) (*sources.MatchResult, error) {
	result := &sources.MatchResult{
		HomeTeam:   m.HomeTeam.Name,
		AwayTeam:   m.AwayTeam.Name,
		Source:     c.Name(),
		Confidence: c.Confidence(),
	}

	if t, err := time.Parse(time.RFC3339, m.UTCDate); err == nil {
		result.MatchDate = t.Format("2006-01-02")
	}

	switch m.Status {
	case "FINISHED":
		result.Status = sources.StatusFinished
	case "IN_PLAY", "PAUSED":
		result.Status = sources.StatusLive
	default:
		result.Status = sources.StatusScheduled
	}

	// Only FINISHED matches with both scores present are decidable.
	if result.Status == sources.StatusFinished {
		home, away := m.Score.FullTime.Home, m.Score.FullTime.Away
		if home == nil || away == nil || !sources.SaneScore(*home, *away) {
			result.Status = sources.StatusScheduled
			return result, nil
		}
		result.HomeScore = *home
		result.AwayScore = *away
		result.Winner = sources.DeriveWinner(*home, *away)
	}

	return result, nil
}

// searchRange returns the dateFrom/dateTo pair for a query. An explicit
// slip date narrows the window to that single day.
func searchRange(date string) (string, string) {
	if date != "" {
		if _, err := time.Parse("2006-01-02", date); err == nil {
			return date, date
		}
	}
	now := time.Now().UTC()
	return now.AddDate(0, 0, -searchWindowDays).Format("2006-01-02"),
		now.Format("2006-01-02")
}
