package encyclopedia

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, srv.Client())
}

func TestSummarySuccess(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "query", r.URL.Query().Get("action"))
		assert.Equal(t, "Go (programming language)", r.URL.Query().Get("titles"))
		assert.Equal(t, "3", r.URL.Query().Get("exsentences"))
		fmt.Fprint(w, `{"query":{"pages":{"12345":{"title":"Go","extract":"Go is a programming language."}}}}`)
	})

	summary, err := c.Summary(context.Background(), "Go (programming language)", 3)
	require.NoError(t, err)
	assert.Equal(t, "Go is a programming language.", summary)
}

func TestSummaryNotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"query":{"pages":{"-1":{"title":"Xyzzy","missing":""}}}}`)
	})

	_, err := c.Summary(context.Background(), "xyzzy", 3)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSummaryDisambiguation(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("action") {
		case "query":
			fmt.Fprint(w, `{"query":{"pages":{"7":{"title":"Mercury","pageprops":{"disambiguation":""}}}}}`)
		case "opensearch":
			fmt.Fprint(w, `["mercury",["Mercury (planet)","Mercury (element)"],["",""],["",""]]`)
		default:
			http.Error(w, "unexpected action", http.StatusBadRequest)
		}
	})

	_, err := c.Summary(context.Background(), "mercury", 3)

	var dis *DisambiguationError
	require.True(t, errors.As(err, &dis))
	require.NotEmpty(t, dis.Options)
	assert.Equal(t, "Mercury (planet)", dis.Options[0])
}

func TestSummaryServerError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	_, err := c.Summary(context.Background(), "anything", 3)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}
