package store

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/maintenance-service/internal/config"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *SheetClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewSheetClient(config.SheetConfig{
		BaseURL:               server.URL,
		Token:                 "test-token",
		RequestTimeoutSeconds: 5,
	}, zap.NewNop())
}

func TestSheetClient_RowsDecodesAndAuthorizes(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		assert.Equal(t, "/tables/requests/rows", r.URL.Path)
		_ = json.NewEncoder(w).Encode(rowsResponse{Rows: []Row{
			{Index: 1, Cells: []string{"id-1", "new"}},
			{Index: 2, Cells: []string{"id-2", "completed"}},
		}})
	})

	rows, err := client.Rows(context.Background(), "requests")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "id-2", rows[1].Cell(1))
}

func TestSheetClient_FindRowMissingIsTerminalNotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := client.FindRow(context.Background(), "requests", "nope")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRowNotFound)
	assert.False(t, IsTransient(err))
}

func TestSheetClient_ServerErrorsAreTransient(t *testing.T) {
	for _, status := range []int{http.StatusInternalServerError, http.StatusBadGateway, http.StatusTooManyRequests} {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		})
		err := client.AppendRow(context.Background(), "requests", []string{"id"})
		require.Error(t, err)
		assert.True(t, IsTransient(err), "status %d must be retryable", status)
	}
}

func TestSheetClient_ClientErrorsAreTerminal(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "cells out of range", http.StatusBadRequest)
	})

	err := client.UpdateCell(context.Background(), "requests", 1, 99, "x")
	require.Error(t, err)
	assert.False(t, IsTransient(err))
	assert.Contains(t, err.Error(), "remote status 400")
}

func TestSheetClient_ConnectionFailureIsTransient(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	server.Close()

	client := NewSheetClient(config.SheetConfig{BaseURL: server.URL}, zap.NewNop())
	err := client.Ping(context.Background())
	require.Error(t, err)
	assert.True(t, IsTransient(err))
}

func TestSheetClient_UpdateCellHitsCellPath(t *testing.T) {
	var gotPath, gotBody string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		var req updateCellRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		gotBody = req.Value
	})

	require.NoError(t, client.UpdateCell(context.Background(), "requests", 4, 2, "in_progress"))
	assert.Equal(t, "/tables/requests/rows/4/cells/2", gotPath)
	assert.Equal(t, "in_progress", gotBody)
}
