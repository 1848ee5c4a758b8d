package footdata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fortuna/augur/internal/sources"
)

const matchesFixture = `{
  "matches": [
    {
      "utcDate": "2026-03-14T15:00:00Z",
      "status": "FINISHED",
      "homeTeam": {"name": "Liverpool FC", "shortName": "Liverpool"},
      "awayTeam": {"name": "AFC Bournemouth", "shortName": "Bournemouth"},
      "score": {"fullTime": {"home": 2, "away": 0}}
    },
    {
      "utcDate": "2026-03-14T17:30:00Z",
      "status": "IN_PLAY",
      "homeTeam": {"name": "Arsenal FC", "shortName": "Arsenal"},
      "awayTeam": {"name": "Chelsea FC", "shortName": "Chelsea"},
      "score": {"fullTime": {"home": null, "away": null}}
    },
    {
      "utcDate": "2026-03-15T14:00:00Z",
      "status": "FINISHED",
      "homeTeam": {"name": "Everton FC", "shortName": "Everton"},
      "awayTeam": {"name": "Fulham FC", "shortName": "Fulham"},
      "score": {"fullTime": {"home": 1, "away": null}}
    }
  ]
}`

func fixtureServer(t *testing.T) (*httptest.Server, *http.Request) {
	t.Helper()
	var captured http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = *r
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(matchesFixture))
	}))
	t.Cleanup(srv.Close)
	return srv, &captured
}

func TestSearchFinishedMatch(t *testing.T) {
	srv, req := fixtureServer(t)
	client := New(srv.URL, "test-token")

	result, err := client.Search(context.Background(), "Liverpool", "Bournemouth", "2026-03-14")
	require.NoError(t, err)

	assert.Equal(t, "Liverpool FC", result.HomeTeam)
	assert.Equal(t, "AFC Bournemouth", result.AwayTeam)
	assert.Equal(t, "2-0", result.Score())
	assert.Equal(t, sources.WinnerHome, result.Winner)
	assert.Equal(t, sources.StatusFinished, result.Status)
	assert.Equal(t, "2026-03-14", result.MatchDate)
	assert.Equal(t, "football-data", result.Source)
	assert.Equal(t, sources.ConfidenceVeryHigh, result.Confidence)

	assert.Equal(t, "test-token", req.Header.Get("X-Auth-Token"))
	assert.Equal(t, "2026-03-14", req.URL.Query().Get("dateFrom"))
	assert.Equal(t, "2026-03-14", req.URL.Query().Get("dateTo"))
}

func TestSearchMatchesShortName(t *testing.T) {
	srv, _ := fixtureServer(t)
	client := New(srv.URL, "")

	result, err := client.Search(context.Background(), "Bournemouth", "", "")
	require.NoError(t, err)
	assert.Equal(t, "AFC Bournemouth", result.AwayTeam)
}

func TestSearchLiveMatchIsPendingScore(t *testing.T) {
	srv, _ := fixtureServer(t)
	client := New(srv.URL, "")

	result, err := client.Search(context.Background(), "Arsenal", "", "")
	require.NoError(t, err)
	assert.Equal(t, sources.StatusLive, result.Status)
	assert.Empty(t, result.Winner)
}

func TestSearchMissingScoreDowngradesStatus(t *testing.T) {
	srv, _ := fixtureServer(t)
	client := New(srv.URL, "")

	// Marked FINISHED upstream but the away score never arrived.
	result, err := client.Search(context.Background(), "Everton", "", "")
	require.NoError(t, err)
	assert.Equal(t, sources.StatusScheduled, result.Status)
	assert.Empty(t, result.Winner)
}

func TestSearchOpponentFilter(t *testing.T) {
	srv, _ := fixtureServer(t)
	client := New(srv.URL, "")

	// Liverpool played Bournemouth, not Chelsea; the constraint must miss.
	_, err := client.Search(context.Background(), "Liverpool", "Chelsea", "")
	assert.ErrorIs(t, err, sources.ErrNotFound)
}

func TestSearchUnknownTeam(t *testing.T) {
	srv, _ := fixtureServer(t)
	client := New(srv.URL, "")

	_, err := client.Search(context.Background(), "Atlantis United", "", "")
	assert.ErrorIs(t, err, sources.ErrNotFound)
}

func TestSearchUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	t.Cleanup(srv.Close)

	client := New(srv.URL, "")
	_, err := client.Search(context.Background(), "Liverpool", "", "")
	require.Error(t, err)
	assert.NotErrorIs(t, err, sources.ErrNotFound)
}

func TestSearchNotFoundStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(srv.Close)

	client := New(srv.URL, "")
	_, err := client.Search(context.Background(), "Liverpool", "", "")
	assert.ErrorIs(t, err, sources.ErrNotFound)
}
