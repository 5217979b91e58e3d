package providers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/orris-inc/channelsync/internal/shared/config"
)

var testCreds = config.ProviderCredentials{ClientID: "client-id", ClientSecret: "client-secret"}

const testRedirect = "https://api.example.com/oauth/test/callback"

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func newTestServer(t *testing.T, h http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return srv
}

// hangingHandler answers only after the client has given up.
func hangingHandler(w http.ResponseWriter, r *http.Request) {
	select {
	case <-r.Context().Done():
	case <-time.After(2 * time.Second):
	}
}

func shortClient() *http.Client {
	return NewHTTPClient(50 * time.Millisecond)
}
