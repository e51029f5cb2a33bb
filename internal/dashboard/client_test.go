package dashboard

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alex-user-go/sheltersignal/internal/insights/types"
)

func TestClient_FetchProperty_Success(t *testing.T) {
	var gotPath, gotAddress string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAddress = r.URL.Query().Get("address")
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"formattedAddress":"1 Main St","valueEstimate":500000,"historicalValues":[{"date":"2024-01-01","value":480000}]}`)
	}))
	defer srv.Close()

	data, err := NewClient(srv.URL, time.Second).FetchProperty(context.Background(), "  1 Main St ")
	require.NoError(t, err)

	assert.Equal(t, "/api/property", gotPath)
	assert.Equal(t, "1 Main St", gotAddress)
	assert.Equal(t, "1 Main St", data.FormattedAddress)
	require.NotNil(t, data.ValueEstimate)
	assert.Equal(t, 500000.0, *data.ValueEstimate)
	assert.Len(t, data.HistoricalValues, 1)
}

func TestClient_FetchProperty_Errors(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantKind    Kind
		wantMessage string
	}{
		{
			name:        "not found with message",
			status:      http.StatusNotFound,
			body:        `{"message":"Property data not found for the specified address."}`,
			wantKind:    KindNotFound,
			wantMessage: "Property data not found for the specified address.",
		},
		{
			name:        "not found without message",
			status:      http.StatusNotFound,
			wantKind:    KindNotFound,
			wantMessage: MsgNotFound,
		},
		{
			name:        "validation",
			status:      http.StatusBadRequest,
			body:        `{"message":"Address query parameter is required"}`,
			wantKind:    KindValidation,
			wantMessage: "Address query parameter is required",
		},
		{
			name:        "bad gateway",
			status:      http.StatusBadGateway,
			body:        `{"message":"Bad Gateway: Error with data provider."}`,
			wantKind:    KindSystem,
			wantMessage: "Bad Gateway: Error with data provider.",
		},
		{
			name:        "server error without body",
			status:      http.StatusInternalServerError,
			wantKind:    KindSystem,
			wantMessage: "Request failed with status 500.",
		},
		{
			name:        "malformed success body",
			status:      http.StatusOK,
			body:        `{not json`,
			wantKind:    KindSystem,
			wantMessage: MsgBadResponse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			_, err := NewClient(srv.URL, time.Second).FetchProperty(context.Background(), "1 Main St")

			var fe *FetchError
			require.True(t, errors.As(err, &fe), "want *FetchError, got %v", err)
			assert.Equal(t, tt.wantKind, fe.Kind)
			assert.Equal(t, tt.wantMessage, fe.Message)
		})
	}
}

func TestClient_FetchProperty_BlankAddress(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, time.Second).FetchProperty(context.Background(), "   ")

	var fe *FetchError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, KindValidation, fe.Kind)
	assert.Equal(t, int32(0), calls.Load())
}

func TestClient_FetchProperty_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewClient(url, time.Second).FetchProperty(context.Background(), "1 Main St")

	state := StateOf(nil, err)
	failed, ok := state.(Failed)
	require.True(t, ok)
	assert.Equal(t, KindSystem, failed.Kind)
	assert.Equal(t, MsgUnreachable, failed.Message)
}

func TestStateOf(t *testing.T) {
	assert.Equal(t, Failed{Kind: KindSystem, Message: "boom"}, StateOf(nil, errors.New("boom")))
	assert.Equal(t, Failed{Kind: KindNotFound, Message: MsgNotFound}, StateOf(nil, nil))
	assert.IsType(t, Ready{}, StateOf(&types.PropertyData{}, nil))
}
