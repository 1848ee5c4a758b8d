package espn

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/fortuna/augur/internal/analyzer"
	"github.com/fortuna/augur/internal/sources"
)

const (
	BaseURL = "https://site.api.espn.com/apis/site/v2/sports"

	// UserAgent mimics a browser; ESPN rejects Go's default client
	// fingerprint.
	UserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// defaultLeagues are the soccer scoreboard paths searched in order.
var defaultLeagues = []string{
	"soccer/eng.1",
	"soccer/eng.2",
	"soccer/esp.1",
	"soccer/ger.1",
	"soccer/ita.1",
	"soccer/fra.1",
	"soccer/uefa.champions",
}

// Client handles ESPN scoreboard API requests across a set of leagues.
type Client struct {
	baseURL    string
	leagues    []string
	httpClient *http.Client
}

// New creates an ESPN client with a custom base URL (empty selects the
// production API).
func New(baseURL string) *Client {
	if baseURL == "" {
		baseURL = BaseURL
	}
	return &Client{
		baseURL: baseURL,
		leagues: defaultLeagues,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// Name identifies this source in results and statistics.
func (c *Client) Name() string {
	return "espn"
}

// Confidence reports the trust level assigned to this source's results.
func (c *Client) Confidence() string {
	return sources.ConfidenceHigh
}

type scoreboardResponse struct {
	Events []struct {
		Date         string `json:"date"`
		Competitions []struct {
			Competitors []competitor `json:"competitors"`
			Status      struct {
				Type struct {
					State     string `json:"state"` // pre | in | post
					Completed bool   `json:"completed"`
				} `json:"type"`
			} `json:"status"`
		} `json:"competitions"`
	} `json:"events"`
}

type competitor struct {
	HomeAway string `json:"homeAway"`
	Score    string `json:"score"`
	Team     struct {
		DisplayName      string `json:"displayName"`
		ShortDisplayName string `json:"shortDisplayName"`
	} `json:"team"`
}

// Search walks the configured league scoreboards for the requested date
// until one of them carries a fixture involving the team.
func (c *Client) Search(ctx context.Context, team, opponent, date string) (*sources.MatchResult, error) {
	normTeam := analyzer.Normalize(team)
	normOpp := analyzer.Normalize(opponent)

	for _, league := range c.leagues {
		board, err := c.fetchScoreboard(ctx, league, date)
		if err != nil {
			// One broken league feed should not hide the others.
			continue
		}

		if result := findEvent(board, normTeam, normOpp, c.Name(), c.Confidence()); result != nil {
			return result, nil
		}
	}

	return nil, sources.ErrNotFound
}

// fetchScoreboard fetches one league's scoreboard, optionally pinned to a
// date (YYYY-MM-DD in, YYYYMMDD on the wire).
func (c *Client) fetchScoreboard(ctx context.Context, league, date string) (*scoreboardResponse, error) {
	url := fmt.Sprintf("%s/%s/scoreboard", c.baseURL, league)
	if date != "" {
		if t, err := time.Parse("2006-01-02", date); err == nil {
			url = fmt.Sprintf("%s?dates=%s", url, t.Format("20060102"))
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", UserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("espn request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("espn returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	// ESPN serves an HTML error page for unknown league paths.
	if len(body) > 0 && body[0] == '<' {
		return nil, fmt.Errorf("espn returned HTML error page")
	}

	var board scoreboardResponse
	if err := json.Unmarshal(body, &board); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	return &board, nil
}

// findEvent scans a scoreboard for the team and converts the first hit.
func findEvent(board *scoreboardResponse, normTeam, normOpp, source, confidence string) *sources.MatchResult {
	for _, event := range board.Events {
		for _, comp := range event.Competitions {
			var home, away *competitor
			for i := range comp.Competitors {
				switch comp.Competitors[i].HomeAway {
				case "home":
					home = &comp.Competitors[i]
				case "away":
					away = &comp.Competitors[i]
				}
			}
			if home == nil || away == nil {
				continue
			}

			if !competitorMatches(normTeam, home) && !competitorMatches(normTeam, away) {
				continue
			}
			if normOpp != "" && !competitorMatches(normOpp, home) && !competitorMatches(normOpp, away) {
				continue
			}

			result := &sources.MatchResult{
				HomeTeam:   home.Team.DisplayName,
				AwayTeam:   away.Team.DisplayName,
				Source:     source,
				Confidence: confidence,
			}
			if t, err := time.Parse(time.RFC3339, event.Date); err == nil {
				result.MatchDate = t.Format("2006-01-02")
			} else if t, err := time.Parse("2006-01-02T15:04Z", event.Date); err == nil {
				result.MatchDate = t.Format("2006-01-02")
			}

			switch comp.Status.Type.State {
			case "post":
				result.Status = sources.StatusFinished
			case "in":
				result.Status = sources.StatusLive
			default:
				result.Status = sources.StatusScheduled
			}

			if result.Status == sources.StatusFinished {
				homeScore, okH := parseScore(home.Score)
				awayScore, okA := parseScore(away.Score)
				if !comp.Status.Type.Completed || !okH || !okA || !sources.SaneScore(homeScore, awayScore) {
					// Finished but score missing or implausible:
					// not decidable.
					result.Status = sources.StatusScheduled
					return result
				}
				result.HomeScore = homeScore
				result.AwayScore = awayScore
				result.Winner = sources.DeriveWinner(homeScore, awayScore)
			}

			return result
		}
	}
	return nil
}

func competitorMatches(normTeam string, c *competitor) bool {
	return sources.MatchesTeam(normTeam, c.Team.DisplayName, c.Team.ShortDisplayName)
}

func parseScore(s string) (int, bool) {
	var v int
	if _, err := fmt.Sscanf(s, "%d", &v); err != nil {
		return 0, false
	}
	return v, true
}
