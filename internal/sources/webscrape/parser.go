package webscrape

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/fortuna/augur/internal/analyzer"
	"github.com/fortuna/augur/internal/sources"
)

// scoreLinePattern is the fallback for pages without a structured card:
// "Liverpool 2 - 1 Arsenal".
var scoreLinePattern = regexp.MustCompile(`([A-Za-z][A-Za-z .']{1,30}?)\s+(\d{1,2})\s*[-–]\s*(\d{1,2})\s+([A-Za-z][A-Za-z .']{1,30})`)

// ParseResultCard extracts a match result for the given team from a search
// results page. Search pages use varying widget structures, so parsing
// tries the structured sports card first and falls back to a plain-text
// score pattern.
func ParseResultCard(html, team string) (*sources.MatchResult, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	normTeam := analyzer.Normalize(team)

	if result := parseSportsCard(doc); result != nil {
		if sources.MatchesTeam(normTeam, result.HomeTeam, result.AwayTeam) {
			return result, nil
		}
	}

	if result := parseScoreText(doc, normTeam); result != nil {
		return result, nil
	}

	return nil, sources.ErrNotFound
}

// parseSportsCard extracts the match widget that search pages render for
// "<team> vs <team>" queries.
func parseSportsCard(doc *goquery.Document) *sources.MatchResult {
	card := doc.Find("div.imso_mh__lv-m-stl-cont").First()
	if card.Length() == 0 {
		card = doc.Find("div.imso_mh__ma-sc-cont").First()
	}
	if card.Length() == 0 {
		return nil
	}

	result := &sources.MatchResult{}

	card.Find("div.imso_mh__first-tn-ed, div.imso_mh__second-tn-ed").Each(func(i int, team *goquery.Selection) {
		name := strings.TrimSpace(team.Text())
		if i == 0 {
			result.HomeTeam = name
		} else if i == 1 {
			result.AwayTeam = name
		}
	})

	var scores []int
	card.Find("div.imso_mh__l-tm-sc, div.imso_mh__r-tm-sc").Each(func(i int, score *goquery.Selection) {
		if v, err := strconv.Atoi(strings.TrimSpace(score.Text())); err == nil {
			scores = append(scores, v)
		}
	})

	statusText := strings.ToLower(strings.TrimSpace(card.Find("span.imso_mh__ft-mtch, div.imso_mh__pst-m-stts").First().Text()))
	result.Status = classifyStatus(statusText)

	if result.HomeTeam == "" || result.AwayTeam == "" {
		return nil
	}

	if result.Status == sources.StatusFinished {
		if len(scores) < 2 || !sources.SaneScore(scores[0], scores[1]) {
			result.Status = sources.StatusScheduled
			return result
		}
		result.HomeScore = scores[0]
		result.AwayScore = scores[1]
		result.Winner = sources.DeriveWinner(scores[0], scores[1])
	}

	return result
}

// parseScoreText scans visible page text for a "A 2 - 1 B" score line
// involving the team.
func parseScoreText(doc *goquery.Document, normTeam string) *sources.MatchResult {
	text := doc.Find("body").Text()

	for _, m := range scoreLinePattern.FindAllStringSubmatch(text, 10) {
		home := strings.TrimSpace(m[1])
		away := strings.TrimSpace(m[4])

		if !sources.MatchesTeam(normTeam, home, away) {
			continue
		}

		homeScore, _ := strconv.Atoi(m[2])
		awayScore, _ := strconv.Atoi(m[3])
		if !sources.SaneScore(homeScore, awayScore) {
			continue
		}

		return &sources.MatchResult{
			HomeTeam:  home,
			AwayTeam:  away,
			HomeScore: homeScore,
			AwayScore: awayScore,
			Winner:    sources.DeriveWinner(homeScore, awayScore),
			// A bare score line carries no liveness signal; assume the
			// match is over.
			Status: sources.StatusFinished,
		}
	}

	return nil
}

// classifyStatus maps card status text to the shared status constants.
func classifyStatus(statusText string) string {
	switch {
	case strings.Contains(statusText, "full-time"),
		strings.Contains(statusText, "full time"),
		strings.Contains(statusText, "ft"),
		strings.Contains(statusText, "final"),
		strings.Contains(statusText, "ended"):
		return sources.StatusFinished
	case strings.Contains(statusText, "live"),
		strings.Contains(statusText, "half"),
		statusText != "" && strings.HasSuffix(statusText, "'"):
		return sources.StatusLive
	default:
		return sources.StatusScheduled
	}
}
