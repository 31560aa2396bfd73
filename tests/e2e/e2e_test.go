//go:build integration

package e2e

// End-to-end integration tests using real Postgres + Redis via testcontainers.
// Run with: go test -tags integration ./tests/e2e/... -v
//
// Scenarios:
//   - full order cycle (login → create product → open order → prepare → checkout → stats)
//   - cancellation restores stock
//   - insufficient stock rejects the whole order
//   - parallel placements cannot oversell a product
//   - station queue visibility per role

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"

	"github.com/IagoMorais/sistema-venda/internal/config"
	"github.com/IagoMorais/sistema-venda/internal/infra"
	"github.com/IagoMorais/sistema-venda/internal/router"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	tcRedis "github.com/testcontainers/testcontainers-go/modules/redis"
	"golang.org/x/crypto/bcrypt"
)

// ── Helpers ──────────────────────────────────────────────────────────────────

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

func do(t *testing.T, srv *httptest.Server, method, path string, body *bytes.Buffer, token string) *http.Response {
	t.Helper()
	var req *http.Request
	var err error
	if body != nil {
		req, err = http.NewRequest(method, srv.URL+path, body)
	} else {
		req, err = http.NewRequest(method, srv.URL+path, nil)
	}
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response, dest any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dest))
}

// ── Suite setup ──────────────────────────────────────────────────────────────

type testEnv struct {
	server *httptest.Server
	tokens map[string]string // role → JWT
}

func (e *testEnv) token(role string) string { return e.tokens[role] }

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	pgC, err := tcPostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcPostgres.WithDatabase("comanda_test"),
		tcPostgres.WithUsername("comanda"),
		tcPostgres.WithPassword("comanda"),
		tcPostgres.BasicWaitStrategies(),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgC.Terminate(ctx) })

	pgURL, err := pgC.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	rdC, err := tcRedis.RunContainer(ctx,
		testcontainers.WithImage("redis:7-alpine"),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdC.Terminate(ctx) })

	rdURL, err := rdC.ConnectionString(ctx)
	require.NoError(t, err)

	cfg := &config.Config{
		Port:                   8000,
		Env:                    "test",
		JWTSecret:              "test-secret-key",
		JWTExpirationHours:     8,
		JWTRefreshHours:        24,
		DatabaseURL:            pgURL,
		RedisURL:               rdURL,
		WorkerPoolSize:         1,
		CheckoutToleranceCents: 1,
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	require.NoError(t, err)

	rdb, err := infra.NewRedis(cfg.RedisURL)
	require.NoError(t, err)

	// Seed one user per role
	for _, u := range []struct{ username, password, role string }{
		{"admin", "admin123", "admin"},
		{"garcom", "garcom123", "waiter"},
		{"caixa", "caixa123", "cashier"},
		{"cozinha", "cozinha123", "kitchen"},
		{"bar", "bar123", "bar"},
	} {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.password), bcrypt.MinCost)
		require.NoError(t, err)
		require.NoError(t, db.Exec(
			`INSERT INTO users (username, password_hash, role, active) VALUES (?, ?, ?, true)
			 ON CONFLICT DO NOTHING`,
			u.username, string(hash), u.role,
		).Error)
	}

	srv := httptest.NewServer(router.New(cfg, db, rdb))
	t.Cleanup(srv.Close)

	env := &testEnv{server: srv, tokens: make(map[string]string)}
	for role, creds := range map[string][2]string{
		"admin":   {"admin", "admin123"},
		"waiter":  {"garcom", "garcom123"},
		"cashier": {"caixa", "caixa123"},
		"kitchen": {"cozinha", "cozinha123"},
	} {
		resp := do(t, srv, "POST", "/v1/auth/login",
			jsonBody(t, map[string]string{"username": creds[0], "password": creds[1]}), "")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var body struct {
			AccessToken string `json:"access_token"`
		}
		decodeJSON(t, resp, &body)
		require.NotEmpty(t, body.AccessToken)
		env.tokens[role] = body.AccessToken
	}
	return env
}

func (e *testEnv) createProduct(t *testing.T, name string, price float64, quantity int, station string) string {
	t.Helper()
	resp := do(t, e.server, "POST", "/v1/products",
		jsonBody(t, map[string]any{
			"name":          name,
			"brand":         "Casa",
			"price":         price,
			"quantity":      quantity,
			"minStockLevel": 2,
			"station":       station,
		}),
		e.token("admin"),
	)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var prod struct {
		ID string `json:"id"`
	}
	decodeJSON(t, resp, &prod)
	return prod.ID
}

type orderPayload struct {
	ID          string `json:"id"`
	Status      string `json:"status"`
	TotalAmount string `json:"totalAmount"`
	Items       []struct {
		ID      string `json:"id"`
		Station string `json:"station"`
		Status  string `json:"status"`
	} `json:"items"`
}

// ── Tests ────────────────────────────────────────────────────────────────────

func TestE2E_FullOrderCycle(t *testing.T) {
	env := setupTestEnv(t)

	burgerID := env.createProduct(t, "X-Burger", 21.00, 20, "kitchen")

	// Waiter opens the order
	resp := do(t, env.server, "POST", "/v1/orders",
		jsonBody(t, map[string]any{
			"tableNumber": "7",
			"items":       []map[string]any{{"productId": burgerID, "quantity": 2}},
		}),
		env.token("waiter"),
	)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var order orderPayload
	decodeJSON(t, resp, &order)
	assert.Equal(t, "open", order.Status)
	assert.Equal(t, "42", order.TotalAmount)
	require.Len(t, order.Items, 1)

	// Kitchen sees it in the queue and marks the item ready
	resp = do(t, env.server, "GET", "/v1/station/queue", nil, env.token("kitchen"))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var queue []orderPayload
	decodeJSON(t, resp, &queue)
	require.Len(t, queue, 1)

	resp = do(t, env.server, "PATCH", "/v1/order-items/"+order.Items[0].ID+"/status",
		jsonBody(t, map[string]string{"status": "ready"}), env.token("kitchen"))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Cashier settles with pix
	resp = do(t, env.server, "POST", "/v1/orders/"+order.ID+"/checkout",
		jsonBody(t, map[string]any{"paymentMethod": "pix", "totalAmount": 42.00}),
		env.token("cashier"),
	)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var paid orderPayload
	decodeJSON(t, resp, &paid)
	assert.Equal(t, "paid", paid.Status)

	// Stats reflect the sale
	resp = do(t, env.server, "GET", "/v1/stats", nil, env.token("admin"))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var stats struct {
		TotalSales   int64  `json:"totalSales"`
		TotalRevenue string `json:"totalRevenue"`
	}
	decodeJSON(t, resp, &stats)
	assert.Equal(t, int64(1), stats.TotalSales)
	assert.Equal(t, "42", stats.TotalRevenue)
}

func TestE2E_CancelRestoresStock(t *testing.T) {
	env := setupTestEnv(t)

	prodID := env.createProduct(t, "Chopp 500ml", 12.00, 10, "bar")

	resp := do(t, env.server, "POST", "/v1/orders",
		jsonBody(t, map[string]any{
			"tableNumber": "3",
			"items":       []map[string]any{{"productId": prodID, "quantity": 3}},
		}),
		env.token("waiter"),
	)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var order orderPayload
	decodeJSON(t, resp, &order)

	// Stock dropped to 7
	var prod struct {
		Quantity int `json:"quantity"`
	}
	resp = do(t, env.server, "GET", "/v1/products/"+prodID, nil, env.token("waiter"))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeJSON(t, resp, &prod)
	assert.Equal(t, 7, prod.Quantity)

	// Admin cancels — stock returns to 10
	resp = do(t, env.server, "PATCH", "/v1/orders/"+order.ID+"/cancel", nil, env.token("admin"))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = do(t, env.server, "GET", "/v1/products/"+prodID, nil, env.token("waiter"))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeJSON(t, resp, &prod)
	assert.Equal(t, 10, prod.Quantity)
}

func TestE2E_InsufficientStockRejectsOrder(t *testing.T) {
	env := setupTestEnv(t)

	prodID := env.createProduct(t, "Picanha", 89.90, 2, "kitchen")

	resp := do(t, env.server, "POST", "/v1/orders",
		jsonBody(t, map[string]any{
			"tableNumber": "5",
			"items":       []map[string]any{{"productId": prodID, "quantity": 5}},
		}),
		env.token("waiter"),
	)
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	var body struct {
		Detail string `json:"detail"`
	}
	decodeJSON(t, resp, &body)
	assert.Contains(t, body.Detail, "Estoque insuficiente")

	// Stock untouched
	var prod struct {
		Quantity int `json:"quantity"`
	}
	resp = do(t, env.server, "GET", "/v1/products/"+prodID, nil, env.token("waiter"))
	decodeJSON(t, resp, &prod)
	assert.Equal(t, 2, prod.Quantity)
}

func TestE2E_CheckoutBlockedWhilePending(t *testing.T) {
	env := setupTestEnv(t)

	prodID := env.createProduct(t, "Risoto", 38.00, 10, "kitchen")

	resp := do(t, env.server, "POST", "/v1/orders",
		jsonBody(t, map[string]any{
			"tableNumber": "9",
			"items":       []map[string]any{{"productId": prodID, "quantity": 1}},
		}),
		env.token("waiter"),
	)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var order orderPayload
	decodeJSON(t, resp, &order)

	resp = do(t, env.server, "POST", "/v1/orders/"+order.ID+"/checkout",
		jsonBody(t, map[string]any{"paymentMethod": "cash"}),
		env.token("cashier"),
	)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestE2E_SwaggerServesSpec(t *testing.T) {
	env := setupTestEnv(t)

	resp := do(t, env.server, "GET", "/swagger/doc.json", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var spec struct {
		Swagger string         `json:"swagger"`
		Paths   map[string]any `json:"paths"`
	}
	decodeJSON(t, resp, &spec)
	assert.Equal(t, "2.0", spec.Swagger)
	assert.Contains(t, spec.Paths, "/v1/orders")
}

func TestE2E_ParallelOrdersNeverOversell(t *testing.T) {
	env := setupTestEnv(t)

	prodID := env.createProduct(t, "Feijoada", 45.00, 3, "kitchen")

	// Six waiters race for three portions. The guarded decrement must admit
	// exactly three orders and reject the rest without going negative.
	const attempts = 6
	results := make(chan int, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(table int) {
			defer wg.Done()
			payload, err := json.Marshal(map[string]any{
				"tableNumber": strconv.Itoa(table),
				"items":       []map[string]any{{"productId": prodID, "quantity": 1}},
			})
			if err != nil {
				results <- 0
				return
			}
			req, err := http.NewRequest("POST", env.server.URL+"/v1/orders", bytes.NewBuffer(payload))
			if err != nil {
				results <- 0
				return
			}
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("Authorization", "Bearer "+env.token("waiter"))
			resp, err := env.server.Client().Do(req)
			if err != nil {
				results <- 0
				return
			}
			resp.Body.Close()
			results <- resp.StatusCode
		}(i + 1)
	}
	wg.Wait()
	close(results)

	var created, rejected int
	for code := range results {
		switch code {
		case http.StatusCreated:
			created++
		case http.StatusConflict:
			rejected++
		default:
			t.Fatalf("unexpected status %d", code)
		}
	}
	assert.Equal(t, 3, created)
	assert.Equal(t, 3, rejected)

	var prod struct {
		Quantity int `json:"quantity"`
	}
	resp := do(t, env.server, "GET", "/v1/products/"+prodID, nil, env.token("waiter"))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeJSON(t, resp, &prod)
	assert.Equal(t, 0, prod.Quantity)
}

func TestE2E_RoleEnforcement(t *testing.T) {
	env := setupTestEnv(t)

	// Waiters cannot create products
	resp := do(t, env.server, "POST", "/v1/products",
		jsonBody(t, map[string]any{"name": "Proibido", "brand": "X", "price": 1, "quantity": 1, "minStockLevel": 0}),
		env.token("waiter"),
	)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// Cashiers cannot open orders
	resp = do(t, env.server, "POST", "/v1/orders",
		jsonBody(t, map[string]any{"tableNumber": "1", "items": []map[string]any{}}),
		env.token("cashier"),
	)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// No token at all
	resp = do(t, env.server, "GET", "/v1/products", nil, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
