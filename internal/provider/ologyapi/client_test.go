package ologyapi

import (
	"context"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"ology/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := NewClient(srv.URL, 1000)
	require.NoError(t, err)
	c.http.SetRetryWaitTime(time.Millisecond).SetRetryMaxWaitTime(5 * time.Millisecond)
	return c
}

func day(s string) time.Time {
	d, _ := time.ParseInLocation(dateLayout, s, time.UTC)
	return d
}

func TestNewClient_RequiresBaseURL(t *testing.T) {
	_, err := NewClient("", 1)
	require.Error(t, err)
}

func TestFetchHistory(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/history", r.URL.Path)
		assert.Equal(t, "example.org", r.URL.Query().Get("domain"))
		assert.Equal(t, "2013-01-01", r.URL.Query().Get("start-date"))
		assert.Equal(t, "2013-01-03", r.URL.Query().Get("end-date"))
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"result": {"count": 17, "days": [
			{"date": "2013-01-03", "count": "5"},
			{"date": "2013-01-01", "count": 2},
			{"date": "2013-01-02", "count": 1e1},
			{"date": "2013-01-04", "count": null}
		]}}`))
	})

	s, err := c.FetchHistoryWithToken(context.Background(), HistoryQuery{
		Domain: "example.org", From: day("2013-01-01"), To: day("2013-01-03"),
	}, "tok")
	require.NoError(t, err)
	require.Len(t, s, 4)
	assert.Equal(t, model.DataPoint{X: float64(day("2013-01-01").Unix()), Y: 2}, s[0])
	assert.Equal(t, model.DataPoint{X: float64(day("2013-01-02").Unix()), Y: 10}, s[1])
	assert.Equal(t, model.DataPoint{X: float64(day("2013-01-03").Unix()), Y: 5}, s[2])
	assert.True(t, math.IsNaN(s[3].Y))
}

func TestFetchHistory_BadDate(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"result": {"count": 1, "days": [{"date": "01/02/2013", "count": 1}]}}`))
	})
	_, err := c.FetchHistoryWithToken(context.Background(), HistoryQuery{Domain: "a.org", From: day("2013-01-01"), To: day("2013-01-02")}, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "01/02/2013")
}

func TestFetchHistory_InvalidQuery(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected")
	})
	_, err := c.FetchHistoryWithToken(context.Background(), HistoryQuery{}, "")
	require.Error(t, err)
	_, err = c.FetchHistoryWithToken(context.Background(), HistoryQuery{Domain: "a.org", From: day("2014-01-01"), To: day("2013-01-01")}, "")
	require.Error(t, err)
}

func TestFetchHistory_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(`{"result": {"count": 0, "days": []}}`))
	})
	var observed []int
	c.OnResponse = func(path string, status int, _ time.Duration) { observed = append(observed, status) }

	s, err := c.FetchHistoryWithToken(context.Background(), HistoryQuery{Domain: "a.org", From: day("2013-01-01"), To: day("2013-01-02")}, "")
	require.NoError(t, err)
	assert.Empty(t, s)
	assert.Equal(t, int32(3), calls.Load())
	assert.Equal(t, []int{http.StatusOK}, observed)
}

func TestFetchHistory_ClientErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`unknown domain`))
	})
	_, err := c.FetchHistoryWithToken(context.Background(), HistoryQuery{Domain: "a.org", From: day("2013-01-01"), To: day("2013-01-02")}, "")

	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusNotFound, se.Status)
	assert.Equal(t, "unknown domain", se.Body)
	assert.Equal(t, int32(1), calls.Load())
}

func TestFetchTopDomains(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "/top-domains", r.URL.Path)
		assert.Equal(t, "2", q.Get("page"))
		assert.Equal(t, "none", q.Get("subdomain-rollup"))
		assert.Equal(t, "2010-01-01", q.Get("start-date"))
		_, _ = w.Write([]byte(`[{"domain": "example.org", "count": 42}, {"domain": "b.net", "count": "7"}]`))
	})

	got, err := c.FetchTopDomainsWithToken(context.Background(), TopDomainsQuery{
		From: day("2010-01-01"), To: day("2014-01-01"), Page: 2,
	}, "")
	require.NoError(t, err)
	assert.Equal(t, []model.TopDomain{{Domain: "example.org", Count: 42}, {Domain: "b.net", Count: 7}}, got)
}

func TestFetch_ContextCanceled(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.FetchTopDomainsWithToken(ctx, TopDomainsQuery{}, "")
	require.Error(t, err)
}
