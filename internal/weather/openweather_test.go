package weather

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

func TestCurrentSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "new york", r.URL.Query().Get("q"))
		assert.Equal(t, "metric", r.URL.Query().Get("units"))
		assert.Equal(t, "test-key", r.URL.Query().Get("appid"))
		fmt.Fprint(w, `{"cod":200,"weather":[{"description":"clear sky"}],"main":{"temp":18.3,"humidity":40}}`)
	}))
	defer srv.Close()

	c := NewClient("test-key", srv.URL, srv.Client())
	report, err := c.Current(context.Background(), "new york")
	require.NoError(t, err)
	assert.Equal(t, "clear sky", report.Description)
	assert.InDelta(t, 18.3, report.TempC, 0.001)
	assert.Equal(t, 40, report.Humidity)
}

func TestCurrentCityNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"cod":"404","message":"city not found"}`)
	}))
	defer srv.Close()

	c := NewClient("test-key", srv.URL, srv.Client())
	_, err := c.Current(context.Background(), "nowhereville")

	var nf *NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "city not found", nf.Message)
}

func TestCurrentUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close() // refuse connections

	c := NewClient("test-key", srv.URL, nil)
	_, err := c.Current(context.Background(), "paris")
	assert.ErrorIs(t, err, ErrUnreachable)
}
