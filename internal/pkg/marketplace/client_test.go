package marketplace

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
)

type refreshableToken struct {
	current   string
	next      string
	refreshed atomic.Int32
}

func (t *refreshableToken) Token() string { return t.current }

func (t *refreshableToken) Refresh(ctx context.Context) (string, error) {
	t.refreshed.Add(1)
	return t.next, nil
}

func TestGetUserCartSuccess(t *testing.T) {
	userID := uuid.New()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte("invalid method"))
			return
		}
		if r.URL.Path != "/api/v1/users/"+userID.String()+"/cart" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte("invalid path"))
			return
		}
		if r.Header.Get("Authorization") != "Bearer test-token" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte("invalid auth"))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"success":true,"data":{"items":[{"item_id":%q,"name":"Strobe kit","price":25,"quantity":2}]}}`, uuid.New())
	}))
	t.Cleanup(server.Close)

	client := NewClient(server.URL, StaticToken("test-token"), time.Second, "Rently/1.0")
	cart, err := client.GetUserCart(context.Background(), userID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cart.Items) != 1 {
		t.Fatalf("got %d items, want 1", len(cart.Items))
	}
	if total := cart.Total(); total != 50 {
		t.Errorf("Total = %v, want 50", total)
	}
}

func TestExpiredTokenRefreshedOnce(t *testing.T) {
	var calls atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := calls.Add(1)
		if r.Header.Get("Authorization") != "Bearer fresh-token" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"success":false,"error":{"code":"TOKEN_EXPIRED","message":"expired"}}`))
			return
		}
		if n < 2 {
			t.Errorf("fresh token presented before a 401 round trip")
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"data":{"items":[]}}`))
	}))
	t.Cleanup(server.Close)

	tokens := &refreshableToken{current: "stale-token", next: "fresh-token"}
	client := NewClient(server.URL, tokens, time.Second, "Rently/1.0")

	if _, err := client.GetUserCart(context.Background(), uuid.New()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := tokens.refreshed.Load(); got != 1 {
		t.Errorf("refreshed %d times, want exactly 1", got)
	}
	if got := calls.Load(); got != 2 {
		t.Errorf("server saw %d requests, want 2 (original + one replay)", got)
	}
}

func TestRefreshFailureSurfacesAuthError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"success":false,"error":{"code":"TOKEN_EXPIRED","message":"expired"}}`))
	}))
	t.Cleanup(server.Close)

	client := NewClient(server.URL, StaticToken("stale"), time.Second, "Rently/1.0")
	_, err := client.GetUserCart(context.Background(), uuid.New())
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "marketplace auth error") {
		t.Fatalf("expected auth classification, got %v", err)
	}
}

func TestAPIErrorSurfaced(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"success":false,"error":{"code":"SLOT_TAKEN","message":"slot already reserved"}}`))
	}))
	t.Cleanup(server.Close)

	client := NewClient(server.URL, StaticToken("token"), time.Second, "Rently/1.0")
	_, err := client.ReserveTimeSlot(context.Background(), uuid.New(), ReserveRequest{
		ItemID:      uuid.New(),
		StudioID:    uuid.New(),
		BookingDate: time.Now(),
		Hours:       1,
	})
	if err == nil {
		t.Fatal("expected error")
	}

	apiErr, ok := IsAPIError(err)
	if !ok {
		t.Fatalf("expected APIError, got %T: %v", err, err)
	}
	if apiErr.Code != "SLOT_TAKEN" || apiErr.Status != http.StatusConflict {
		t.Errorf("got code=%s status=%d, want SLOT_TAKEN/409", apiErr.Code, apiErr.Status)
	}
}

func TestTimeoutClassified(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(server.Close)

	client := NewClient(server.URL, StaticToken("token"), 20*time.Millisecond, "Rently/1.0")
	_, err := client.GetUserCart(context.Background(), uuid.New())
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if !strings.Contains(err.Error(), "marketplace timeout") {
		t.Fatalf("expected timeout classification, got %v", err)
	}
}
