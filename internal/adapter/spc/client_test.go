package spc

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_ReportsBetween(t *testing.T) {
	from := time.Date(2026, 5, 3, 0, 0, 0, 0, time.UTC)
	to := from.Add(24 * time.Hour)

	t.Run("decodes reports and passes the window", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/reports", r.URL.Path)
			assert.Equal(t, "2026-05-03T00:00:00Z", r.URL.Query().Get("start"))
			assert.Equal(t, "2026-05-04T00:00:00Z", r.URL.Query().Get("end"))
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`[
				{"id":"r1","time":"2026-05-03T18:10:00Z","hazard":"hail","lat":31.02,"lon":-98.44,"area_code":"48201","magnitude":1.25},
				{"id":"r2","time":"2026-05-03T19:00:00Z","hazard":"wind","lat":34.94,"lon":-95.59,"area_code":"40121","magnitude":65}
			]`))
		}))
		defer srv.Close()

		client := NewClient(srv.URL, time.Second, slog.Default())
		reports, err := client.ReportsBetween(context.Background(), from, to)

		require.NoError(t, err)
		require.Len(t, reports, 2)
		assert.Equal(t, "r1", reports[0].ID)
		assert.Equal(t, 1.25, reports[0].Magnitude)
		assert.Equal(t, "48201", reports[0].AreaCode)
	})

	t.Run("empty window", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte(`[]`))
		}))
		defer srv.Close()

		reports, err := NewClient(srv.URL, time.Second, slog.Default()).ReportsBetween(context.Background(), from, to)
		require.NoError(t, err)
		assert.Empty(t, reports)
	})

	t.Run("non-200 is an error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "boom", http.StatusBadGateway)
		}))
		defer srv.Close()

		_, err := NewClient(srv.URL, time.Second, slog.Default()).ReportsBetween(context.Background(), from, to)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "502")
	})
}
