package api

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/ferretex/storefront-client/pkg/enums"
	pkgerrors "github.com/ferretex/storefront-client/pkg/errors"
	"github.com/ferretex/storefront-client/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(server.URL, testLogger())
	if err != nil {
		t.Fatalf("building client: %v", err)
	}
	return client, server
}

func TestNewClientValidation(t *testing.T) {
	t.Parallel()

	if _, err := NewClient("", testLogger()); err == nil {
		t.Fatal("expected error for empty base url")
	}
	if _, err := NewClient("http://localhost:3000", nil); err == nil {
		t.Fatal("expected error for nil logger")
	}
	client, err := NewClient("http://localhost:3000/", testLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if client.baseURL != "http://localhost:3000" {
		t.Fatalf("trailing slash should be trimmed, got %q", client.baseURL)
	}
}

func TestLoginSuccessNormalizesRole(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/auth/login" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"token":"tok-1","user":{"id":"u1","name":"Ana","email":"a@x.cl","rol":"admin"}}`)
	})

	result, err := client.Login(context.Background(), "a@x.cl", "secret")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Token != "tok-1" {
		t.Fatalf("unexpected token %q", result.Token)
	}
	if result.User.Role != enums.RoleManager {
		t.Fatalf("expected normalized manager role, got %s", result.User.Role)
	}
}

func TestLoginFailureUsesBodyMessage(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		io.WriteString(w, `{"message":"credenciales invalidas"}`)
	})

	_, err := client.Login(context.Background(), "a@x.cl", "wrong")
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeAuthFailed {
		t.Fatalf("expected AUTH_FAILED, got %v", err)
	}
	if typed.Message() != "credenciales invalidas" {
		t.Fatalf("expected message from body, got %q", typed.Message())
	}
	if typed.Status() != http.StatusUnauthorized {
		t.Fatalf("expected status retained, got %d", typed.Status())
	}
}

func TestErrorFallbackMessageForOpaqueBodies(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		io.WriteString(w, `<html>upstream sad</html>`)
	})

	err := client.Health(context.Background())
	typed := pkgerrors.As(err)
	if typed == nil {
		t.Fatalf("expected typed error, got %v", err)
	}
	// Plain-text bodies become the message directly.
	if typed.Message() != "<html>upstream sad</html>" {
		t.Fatalf("unexpected message %q", typed.Message())
	}

	client2, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	err = client2.Health(context.Background())
	if typed := pkgerrors.As(err); typed == nil || typed.Message() != "HTTP 502" {
		t.Fatalf("expected HTTP 502 fallback, got %v", err)
	}
}

func TestListProductsOmitsEmptyFilters(t *testing.T) {
	t.Parallel()

	var gotQuery string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		io.WriteString(w, `[]`)
	})

	min := decimal.NewFromInt(1000)
	_, err := client.ListProducts(context.Background(), ProductFilters{
		Query:    "taladro",
		MinPrice: &min,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotQuery != "minPrice=1000&q=taladro" {
		t.Fatalf("empty filters must be omitted, got %q", gotQuery)
	}

	_, err = client.ListProducts(context.Background(), ProductFilters{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotQuery != "" {
		t.Fatalf("zero filters should produce no query string, got %q", gotQuery)
	}
}

func TestGetProductNotFound(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		io.WriteString(w, `{"error":"product not found"}`)
	})

	_, err := client.GetProduct(context.Background(), "missing")
	if !pkgerrors.HasCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}

func TestTokenRequiredFailsFastWithoutRequest(t *testing.T) {
	t.Parallel()

	called := false
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	ctx := context.Background()
	if _, err := client.ListMyOrders(ctx, ""); !pkgerrors.HasCode(err, pkgerrors.CodeAuthRequired) {
		t.Fatalf("expected AUTH_REQUIRED, got %v", err)
	}
	if _, err := client.CreateOrder(ctx, "  ", OrderPayload{}); !pkgerrors.HasCode(err, pkgerrors.CodeAuthRequired) {
		t.Fatalf("expected AUTH_REQUIRED for blank token, got %v", err)
	}
	if err := client.UpdateOrderStatus(ctx, "", "o1", enums.OrderStatusPaid); !pkgerrors.HasCode(err, pkgerrors.CodeAuthRequired) {
		t.Fatalf("expected AUTH_REQUIRED, got %v", err)
	}
	if called {
		t.Fatal("no request may be issued when the token is missing")
	}
}

func TestBearerTokenAttached(t *testing.T) {
	t.Parallel()

	var gotAuth string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		io.WriteString(w, `[]`)
	})

	if _, err := client.ListMyOrders(context.Background(), "tok-9"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotAuth != "Bearer tok-9" {
		t.Fatalf("expected bearer header, got %q", gotAuth)
	}
}

func TestChangeMarker(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/products/meta" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		io.WriteString(w, `{"lastChanged":"2026-08-20T14:00:00Z"}`)
	})

	marker, err := client.ChangeMarker(context.Background(), ResourceProducts, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if marker.LastChanged != "2026-08-20T14:00:00Z" {
		t.Fatalf("unexpected marker %+v", marker)
	}
}

func TestTransportErrorIsDependency(t *testing.T) {
	t.Parallel()

	client, server := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})
	server.Close()

	err := client.Health(context.Background())
	if !pkgerrors.HasCode(err, pkgerrors.CodeDependency) {
		t.Fatalf("expected DEPENDENCY_ERROR, got %v", err)
	}
	if !pkgerrors.Retryable(err) {
		t.Fatal("transport failures should be retryable")
	}
}
