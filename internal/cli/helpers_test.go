package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/stockroom/internal/notify"
	"github.com/aussiebroadwan/stockroom/internal/session"
	"github.com/aussiebroadwan/stockroom/internal/store"
	"github.com/aussiebroadwan/stockroom/pkg/invsdk"
	"github.com/aussiebroadwan/stockroom/pkg/slogx"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

const (
	testUser     = "alice"
	testPassword = "secret"
	testUserID   = 7
)

// recorded is one request the fake backend served.
type recorded struct {
	Method string
	Path   string
	Query  string
	Body   map[string]any
}

// inventoryServer fakes the inventory REST backend: one user, one product,
// rotating token pairs.
type inventoryServer struct {
	t    *testing.T
	role string

	mu       sync.Mutex
	seq      int
	access   map[string]bool
	refresh  string
	requests []recorded
	product  invsdk.Product
}

func newInventoryServer(t *testing.T, role string) (*inventoryServer, *httptest.Server) {
	s := &inventoryServer{
		t:      t,
		role:   role,
		access: map[string]bool{},
		product: invsdk.Product{
			ProductID:    8,
			ItemCode:     "HB-100",
			Name:         "Hex bolt",
			SupplierID:   2,
			CategoryID:   3,
			UnitCost:     0.25,
			SellingPrice: 0.5,
			StockOnHand:  120,
			IsActive:     true,
		},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/users/login", s.login)
	mux.HandleFunc("POST /api/v1/users/refresh", s.refreshTokens)
	mux.HandleFunc("GET /api/v1/products", s.authed(func(w http.ResponseWriter, _ *http.Request, _ map[string]any) {
		writeJSON(w, http.StatusOK, []invsdk.Product{s.currentProduct()})
	}))
	mux.HandleFunc("GET /api/v1/products/{id}", s.authed(func(w http.ResponseWriter, _ *http.Request, _ map[string]any) {
		writeJSON(w, http.StatusOK, s.currentProduct())
	}))
	mux.HandleFunc("PUT /api/v1/products/{id}", s.authed(s.echoProduct))
	mux.HandleFunc("PATCH /api/v1/products/{id}", s.authed(s.echoProduct))
	mux.HandleFunc("POST /api/v1/products", s.authed(s.echoProduct))
	mux.HandleFunc("DELETE /api/v1/products/{id}", s.authed(func(w http.ResponseWriter, _ *http.Request, _ map[string]any) {
		w.WriteHeader(http.StatusNoContent)
	}))
	mux.HandleFunc("POST /api/v1/transactions", s.authed(func(w http.ResponseWriter, _ *http.Request, body map[string]any) {
		writeJSON(w, http.StatusCreated, body)
	}))

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return s, srv
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *inventoryServer) record(r *http.Request) map[string]any {
	var body map[string]any
	if data, _ := io.ReadAll(r.Body); len(data) > 0 {
		require.NoError(s.t, json.Unmarshal(data, &body))
	}

	s.mu.Lock()
	s.requests = append(s.requests, recorded{
		Method: r.Method,
		Path:   strings.TrimPrefix(r.URL.Path, "/api/v1"),
		Query:  r.URL.RawQuery,
		Body:   body,
	})
	s.mu.Unlock()
	return body
}

// issue mints a fresh pair and makes it the only valid one. Callers hold mu.
func (s *inventoryServer) issue() invsdk.TokenResponse {
	s.seq++
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": testUserID,
		"type":    "access",
		"role":    s.role,
		"jti":     fmt.Sprint(s.seq),
		"exp":     time.Now().Add(15 * time.Minute).Unix(),
	})
	access, err := tok.SignedString([]byte("backend-secret"))
	require.NoError(s.t, err)

	s.access = map[string]bool{access: true}
	s.refresh = fmt.Sprintf("refresh-%d", s.seq)
	return invsdk.TokenResponse{AccessToken: access, RefreshToken: s.refresh}
}

func (s *inventoryServer) login(w http.ResponseWriter, r *http.Request) {
	body := s.record(r)
	switch {
	case body["username"] != testUser:
		writeJSON(w, http.StatusNotFound, invsdk.ErrorResponse{Message: "User not found"})
	case body["password"] != testPassword:
		writeJSON(w, http.StatusUnauthorized, invsdk.ErrorResponse{Message: "Invalid password"})
	default:
		s.mu.Lock()
		pair := s.issue()
		s.mu.Unlock()
		writeJSON(w, http.StatusOK, pair)
	}
}

func (s *inventoryServer) refreshTokens(w http.ResponseWriter, r *http.Request) {
	body := s.record(r)

	s.mu.Lock()
	defer s.mu.Unlock()

	if body["refresh_token"] != s.refresh {
		writeJSON(w, http.StatusUnauthorized, invsdk.ErrorResponse{Message: "Token is invalid"})
		return
	}
	writeJSON(w, http.StatusOK, s.issue())
}

func (s *inventoryServer) authed(next func(http.ResponseWriter, *http.Request, map[string]any)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body := s.record(r)

		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		s.mu.Lock()
		ok := s.access[token]
		s.mu.Unlock()

		if !ok {
			writeJSON(w, http.StatusUnauthorized, invsdk.ErrorResponse{Message: "Token is invalid"})
			return
		}
		next(w, r, body)
	}
}

func (s *inventoryServer) echoProduct(w http.ResponseWriter, r *http.Request, body map[string]any) {
	p := s.currentProduct()
	data, err := json.Marshal(body)
	require.NoError(s.t, err)
	require.NoError(s.t, json.Unmarshal(data, &p))

	status := http.StatusOK
	if r.Method == http.MethodPost {
		status = http.StatusCreated
	}
	writeJSON(w, status, p)
}

func (s *inventoryServer) currentProduct() invsdk.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.product
}

// expireAccess invalidates the current access token but keeps the refresh
// token, as if the access token timed out.
func (s *inventoryServer) expireAccess() {
	s.mu.Lock()
	s.access = map[string]bool{}
	s.mu.Unlock()
}

// calls returns the recorded requests for method and path.
func (s *inventoryServer) calls(method, path string) []recorded {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []recorded
	for _, r := range s.requests {
		if r.Method == method && r.Path == path {
			out = append(out, r)
		}
	}
	return out
}

type harness struct {
	backend *inventoryServer
	cli     *CLI
	manager *session.Manager
	router  *Router
	queue   *notify.Queue
	stdout  *bytes.Buffer
	stderr  *bytes.Buffer
}

func newHarness(t *testing.T, role string) *harness {
	t.Helper()

	backend, srv := newInventoryServer(t, role)
	client := invsdk.NewSDKClient(srv.URL + "/api/v1")
	router := NewRouter()
	logger := slogx.Discard()

	manager, err := session.NewManager(session.Config{}, client, store.NewMemory(),
		session.WithNavigator(router),
		session.WithLogger(logger),
	)
	require.NoError(t, err)
	t.Cleanup(manager.Stop)

	queue := notify.NewQueue(notify.WithTTL(time.Minute))
	t.Cleanup(queue.Close)

	h := &harness{
		backend: backend,
		manager: manager,
		router:  router,
		queue:   queue,
		stdout:  &bytes.Buffer{},
		stderr:  &bytes.Buffer{},
	}
	h.cli = New(Deps{
		Manager:  manager,
		API:      client.Session(manager),
		Queue:    queue,
		Notifier: notify.NewNotifier(queue, logger),
		Router:   router,
		Logger:   logger,
		Stdin:    strings.NewReader(""),
		Stdout:   h.stdout,
		Stderr:   h.stderr,
		Version:  "test",
	})
	return h
}

// run executes one command line with fresh output buffers.
func (h *harness) run(args ...string) error {
	h.stdout.Reset()
	h.stderr.Reset()
	return h.cli.Run(context.Background(), args)
}

func (h *harness) login(t *testing.T) {
	t.Helper()
	require.NoError(t, h.run("login", testUser, "--password", testPassword))
	require.True(t, h.manager.IsAuthenticated())
}
