package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/attar/internal/auth"
	"github.com/MrJamesThe3rd/attar/internal/catalog"
	"github.com/MrJamesThe3rd/attar/internal/transaction"
)

func TestClient_PushTransaction(t *testing.T) {
	signer := auth.NewSigner("secret", time.Minute)

	tests := []struct {
		name    string
		status  int
		wantErr bool
	}{
		{name: "created", status: http.StatusCreated},
		{name: "already held", status: http.StatusOK},
		{name: "conflict", status: http.StatusConflict},
		{name: "server error", status: http.StatusInternalServerError, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got transaction.Transaction

			mux := http.NewServeMux()
			mux.Handle("POST /api/v1/sync/transactions", auth.Middleware(signer)(http.HandlerFunc(
				func(w http.ResponseWriter, r *http.Request) {
					require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

					id, _ := auth.TerminalID(r.Context())
					assert.Equal(t, "T1", id)

					w.WriteHeader(tt.status)
				})))

			srv := httptest.NewServer(mux)
			defer srv.Close()

			tx := &transaction.Transaction{
				ID:         uuid.New(),
				TerminalID: "T1",
				CreatedAt:  time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
				Status:     transaction.StatusPending,
				Totals:     transaction.Totals{GrandTotal: decimal.RequireFromString("2625")},
			}

			err := NewClient(srv.URL+"/", "T1", signer).PushTransaction(context.Background(), tx)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tx.ID, got.ID)
			assert.True(t, got.Totals.GrandTotal.Equal(tx.Totals.GrandTotal))
		})
	}
}

func TestClient_FetchCatalogAndPing(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("GET /api/v1/catalog", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]catalog.Item{{
			ID: "oud-1", Name: "Cambodi Oud", Price: decimal.RequireFromString("1250.50"), Stock: 3,
		}})
	})

	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := NewClient(srv.URL, "T1", nil)

	require.NoError(t, c.Ping(context.Background()))

	items, err := c.FetchCatalog(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "oud-1", items[0].ID)
	assert.True(t, items[0].Price.Equal(decimal.RequireFromString("1250.5")))

	_, err = c.FetchCustomers(context.Background())
	assert.Error(t, err)
}

func TestClient_PingUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	assert.Error(t, NewClient(url, "T1", nil).Ping(context.Background()))
}
