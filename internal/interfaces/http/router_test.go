package http_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/Invoicer-api/internal/application/auth"
	"github.com/jhoicas/Invoicer-api/internal/application/billing"
	"github.com/jhoicas/Invoicer-api/internal/application/dto"
	"github.com/jhoicas/Invoicer-api/internal/application/usecase"
	dombilling "github.com/jhoicas/Invoicer-api/internal/domain/billing"
	"github.com/jhoicas/Invoicer-api/internal/infrastructure/cache"
	"github.com/jhoicas/Invoicer-api/internal/infrastructure/memory"
	apphttp "github.com/jhoicas/Invoicer-api/internal/interfaces/http"
	"github.com/jhoicas/Invoicer-api/pkg/logger"
)

// newTestAPI arma la API completa sobre el store en memoria.
func newTestAPI(t *testing.T) *fiber.App {
	t.Helper()
	store := memory.NewStore()
	tx := memory.NewTxRunner(store)
	log := logger.Nop()
	idem := cache.NewInMemoryIdempotencyStore()
	t.Cleanup(func() { _ = idem.Close() })

	authUC := auth.NewAuthUseCase(memory.NewUserRepository(store), auth.JWTConfig{
		Secret:     testJWTSecret,
		ExpMinutes: testExpMin,
		Issuer:     testIssuer,
	}, log).WithBcryptCost(bcrypt.MinCost)

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		AuthUC:         authUC,
		CompanyUC:      usecase.NewCompanyUseCase(memory.NewCompanyRepository(store), tx, log),
		InvoiceUC:      billing.NewInvoiceUseCase(tx, memory.NewInvoiceRepository(store), dombilling.NewNumberGenerator(), log),
		JWTSecret:      testJWTSecret,
		Idempotency:    idem,
		IdempotencyTTL: time.Minute,
		ServiceName:    "invoicer-api-test",
		Log:            log,
	})
	return app
}

type apiCall struct {
	method string
	path   string
	token  string
	body   any
	header map[string]string
}

func call(t *testing.T, app *fiber.App, in apiCall) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if in.body != nil {
		raw, err := json.Marshal(in.body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(in.method, in.path, reader)
	if in.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if in.token != "" {
		req.Header.Set("Authorization", "Bearer "+in.token)
	}
	for k, v := range in.header {
		req.Header.Set(k, v)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, raw
}

func decode[T any](t *testing.T, raw []byte) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	return out
}

// register crea un usuario y devuelve su token.
func register(t *testing.T, app *fiber.App, email string) string {
	t.Helper()
	resp, raw := call(t, app, apiCall{
		method: http.MethodPost,
		path:   "/api/auth/register",
		body:   fiber.Map{"name": "Demo", "email": email, "password": "secret123"},
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, string(raw))
	out := decode[dto.AuthResponse](t, raw)
	require.True(t, out.Success)
	require.NotEmpty(t, out.Token)
	return out.Token
}

func createCompany(t *testing.T, app *fiber.App, token, name string) dto.CompanyResponse {
	t.Helper()
	resp, raw := call(t, app, apiCall{method: http.MethodPost, path: "/api/companies", token: token, body: fiber.Map{"name": name}})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, string(raw))
	return decode[dto.CompanyResponse](t, raw)
}

func invoiceBody(companyID string) fiber.Map {
	return fiber.Map{
		"companyId":     companyID,
		"customerName":  "Bob",
		"taxPercentage": 10,
		"items":         []fiber.Map{{"name": "Widget", "qty": 2, "rate": 50}},
	}
}

func TestAPI_Health(t *testing.T) {
	app := newTestAPI(t)
	resp, raw := call(t, app, apiCall{method: http.MethodGet, path: "/api/health"})
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, string(raw), `"status":"ok"`)
}

func TestAPI_AuthFlow(t *testing.T) {
	app := newTestAPI(t)
	token := register(t, app, "  Demo@Example.COM ")

	resp, raw := call(t, app, apiCall{method: http.MethodGet, path: "/api/auth/me", token: token})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	me := decode[dto.MeResponse](t, raw)
	assert.Equal(t, "demo@example.com", me.User.Email)

	resp, _ = call(t, app, apiCall{
		method: http.MethodPost,
		path:   "/api/auth/register",
		body:   fiber.Map{"name": "Otro", "email": "demo@example.com", "password": "secret123"},
	})
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)

	resp, raw = call(t, app, apiCall{
		method: http.MethodPost,
		path:   "/api/auth/login",
		body:   fiber.Map{"email": "demo@example.com", "password": "incorrecta"},
	})
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "UNAUTHORIZED", decode[dto.ErrorResponse](t, raw).Code)

	resp, _ = call(t, app, apiCall{
		method: http.MethodPut,
		path:   "/api/auth/change-password",
		token:  token,
		body:   fiber.Map{"currentPassword": "secret123", "newPassword": "nuevo-secreto"},
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, _ = call(t, app, apiCall{
		method: http.MethodPost,
		path:   "/api/auth/login",
		body:   fiber.Map{"email": "DEMO@example.com", "password": "nuevo-secreto"},
	})
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestAPI_RegisterValidationDetails(t *testing.T) {
	app := newTestAPI(t)
	resp, raw := call(t, app, apiCall{
		method: http.MethodPost,
		path:   "/api/auth/register",
		body:   fiber.Map{"email": "a@b.c", "password": "123"},
	})
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	out := decode[dto.ErrorResponse](t, raw)
	assert.Equal(t, "VALIDATION", out.Code)
	assert.Contains(t, out.Details, "name")
	assert.Contains(t, out.Details, "password")
}

func TestAPI_ProtectedRoutesRequireToken(t *testing.T) {
	app := newTestAPI(t)
	for _, path := range []string{"/api/companies", "/api/invoices", "/api/invoices/summary", "/api/auth/me"} {
		resp, _ := call(t, app, apiCall{method: http.MethodGet, path: path})
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode, path)
	}
}

func TestAPI_EndToEndInvoiceLifecycle(t *testing.T) {
	app := newTestAPI(t)
	token := register(t, app, "u@example.com")
	company := createCompany(t, app, token, "Acme")

	resp, raw := call(t, app, apiCall{method: http.MethodPost, path: "/api/invoices", token: token, body: invoiceBody(company.ID)})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, string(raw))
	inv := decode[dto.InvoiceResponse](t, raw)
	assert.True(t, inv.Subtotal.Equal(decimal.NewFromInt(100)))
	assert.True(t, inv.Tax.Equal(decimal.NewFromInt(10)))
	assert.True(t, inv.Total.Equal(decimal.NewFromInt(110)))
	assert.Equal(t, "Pending", inv.Status)
	assert.Equal(t, inv.Date, inv.DueDate)
	assert.Regexp(t, `^INV-`, inv.ID)

	resp, raw = call(t, app, apiCall{method: http.MethodPut, path: "/api/invoices/" + inv.ID + "/mark-paid", token: token})
	require.Equal(t, fiber.StatusOK, resp.StatusCode, string(raw))
	paid := decode[dto.InvoiceResponse](t, raw)
	assert.Equal(t, "Paid", paid.Status)
	assert.True(t, paid.Total.Equal(inv.Total))
	assert.Equal(t, inv.CustomerName, paid.CustomerName)
	assert.Equal(t, inv.Date, paid.Date)

	resp, raw = call(t, app, apiCall{method: http.MethodDelete, path: "/api/companies/" + company.ID, token: token})
	require.Equal(t, fiber.StatusConflict, resp.StatusCode, string(raw))
	assert.Equal(t, "CONFLICT", decode[dto.ErrorResponse](t, raw).Code)

	resp, _ = call(t, app, apiCall{method: http.MethodDelete, path: "/api/invoices/" + inv.ID, token: token})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, raw = call(t, app, apiCall{method: http.MethodDelete, path: "/api/companies/" + company.ID, token: token})
	require.Equal(t, fiber.StatusOK, resp.StatusCode, string(raw))
	assert.True(t, decode[dto.SuccessResponse](t, raw).Success)
}

func TestAPI_InvoiceLookupByKeyAndUpdate(t *testing.T) {
	app := newTestAPI(t)
	token := register(t, app, "u@example.com")
	company := createCompany(t, app, token, "Acme")
	_, raw := call(t, app, apiCall{method: http.MethodPost, path: "/api/invoices", token: token, body: invoiceBody(company.ID)})
	inv := decode[dto.InvoiceResponse](t, raw)

	resp, raw := call(t, app, apiCall{method: http.MethodGet, path: "/api/invoices/" + inv.Key, token: token})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, inv.ID, decode[dto.InvoiceResponse](t, raw).ID)

	resp, raw = call(t, app, apiCall{
		method: http.MethodPatch,
		path:   "/api/invoices/" + inv.ID,
		token:  token,
		body: fiber.Map{
			"id":            "INV-OTRO",
			"companyId":     "otra-empresa",
			"taxPercentage": "20",
			"items":         []fiber.Map{{"name": "Widget", "qty": "3", "rate": 50}},
		},
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode, string(raw))
	updated := decode[dto.InvoiceResponse](t, raw)
	assert.Equal(t, inv.ID, updated.ID)
	assert.Equal(t, company.ID, updated.CompanyID)
	assert.True(t, updated.Subtotal.Equal(decimal.NewFromInt(150)))
	assert.True(t, updated.Tax.Equal(decimal.NewFromInt(30)))
	assert.True(t, updated.Total.Equal(decimal.NewFromInt(180)))

	resp, _ = call(t, app, apiCall{method: http.MethodPatch, path: "/api/invoices/" + inv.ID, token: token, body: fiber.Map{"status": "Cancelled"}})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestAPI_OwnerIsolation(t *testing.T) {
	app := newTestAPI(t)
	alice := register(t, app, "alice@example.com")
	bob := register(t, app, "bob@example.com")
	company := createCompany(t, app, alice, "Acme")
	_, raw := call(t, app, apiCall{method: http.MethodPost, path: "/api/invoices", token: alice, body: invoiceBody(company.ID)})
	inv := decode[dto.InvoiceResponse](t, raw)

	resp, _ := call(t, app, apiCall{method: http.MethodGet, path: "/api/companies/" + company.ID, token: bob})
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	resp, _ = call(t, app, apiCall{method: http.MethodGet, path: "/api/invoices/" + inv.ID, token: bob})
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	resp, _ = call(t, app, apiCall{method: http.MethodPost, path: "/api/invoices", token: bob, body: invoiceBody(company.ID)})
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	resp, _ = call(t, app, apiCall{method: http.MethodPatch, path: "/api/invoices/" + inv.ID, token: bob, body: fiber.Map{"customerName": "Mallory"}})
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	resp, _ = call(t, app, apiCall{method: http.MethodPut, path: "/api/invoices/" + inv.ID + "/mark-paid", token: bob})
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	resp, _ = call(t, app, apiCall{method: http.MethodDelete, path: "/api/invoices/" + inv.ID, token: bob})
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp, raw = call(t, app, apiCall{method: http.MethodGet, path: "/api/invoices/" + inv.ID, token: alice})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	untouched := decode[dto.InvoiceResponse](t, raw)
	assert.Equal(t, "Bob", untouched.CustomerName)
	assert.Equal(t, "Pending", untouched.Status)

	resp, raw = call(t, app, apiCall{method: http.MethodGet, path: "/api/invoices", token: bob})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Empty(t, decode[[]dto.InvoiceResponse](t, raw))
}

func TestAPI_CreateInvoiceWithoutItemsIsRejected(t *testing.T) {
	app := newTestAPI(t)
	token := register(t, app, "u@example.com")
	company := createCompany(t, app, token, "Acme")
	body := invoiceBody(company.ID)
	body["items"] = []fiber.Map{}

	resp, raw := call(t, app, apiCall{method: http.MethodPost, path: "/api/invoices", token: token, body: body})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", decode[dto.ErrorResponse](t, raw).Code)
}

func TestAPI_Summary(t *testing.T) {
	app := newTestAPI(t)
	token := register(t, app, "u@example.com")
	company := createCompany(t, app, token, "Acme")
	for i := 0; i < 2; i++ {
		resp, _ := call(t, app, apiCall{method: http.MethodPost, path: "/api/invoices", token: token, body: invoiceBody(company.ID)})
		require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	}
	_, raw := call(t, app, apiCall{method: http.MethodGet, path: "/api/invoices", token: token})
	list := decode[[]dto.InvoiceResponse](t, raw)
	require.Len(t, list, 2)
	resp, _ := call(t, app, apiCall{method: http.MethodPut, path: "/api/invoices/" + list[0].ID + "/mark-paid", token: token})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, raw = call(t, app, apiCall{method: http.MethodGet, path: "/api/invoices/summary", token: token})
	require.Equal(t, fiber.StatusOK, resp.StatusCode, string(raw))
	sum := decode[dto.InvoiceSummaryResponse](t, raw)
	assert.Equal(t, 2, sum.TotalInvoices)
	assert.Equal(t, 1, sum.PaidCount)
	assert.Equal(t, 1, sum.PendingCount)
	assert.True(t, sum.TotalRevenue.Equal(decimal.NewFromInt(220)))
	assert.True(t, sum.Outstanding.Equal(decimal.NewFromInt(110)))
}

func TestAPI_IdempotentInvoiceCreation(t *testing.T) {
	app := newTestAPI(t)
	token := register(t, app, "u@example.com")
	company := createCompany(t, app, token, "Acme")
	key := map[string]string{apphttp.HeaderIdempotencyKey: "create-1"}

	first, rawFirst := call(t, app, apiCall{method: http.MethodPost, path: "/api/invoices", token: token, body: invoiceBody(company.ID), header: key})
	require.Equal(t, fiber.StatusCreated, first.StatusCode)
	assert.Empty(t, first.Header.Get(apphttp.HeaderIdempotentReplay))

	second, rawSecond := call(t, app, apiCall{method: http.MethodPost, path: "/api/invoices", token: token, body: invoiceBody(company.ID), header: key})
	require.Equal(t, fiber.StatusCreated, second.StatusCode)
	assert.Equal(t, "true", second.Header.Get(apphttp.HeaderIdempotentReplay))
	assert.JSONEq(t, string(rawFirst), string(rawSecond))

	changed := invoiceBody(company.ID)
	changed["customerName"] = "Alice"
	reused, raw := call(t, app, apiCall{method: http.MethodPost, path: "/api/invoices", token: token, body: changed, header: key})
	assert.Equal(t, fiber.StatusUnprocessableEntity, reused.StatusCode)
	assert.Equal(t, "IDEMPOTENCY_KEY_REUSED", decode[dto.ErrorResponse](t, raw).Code)

	_, raw = call(t, app, apiCall{method: http.MethodGet, path: "/api/invoices", token: token})
	assert.Len(t, decode[[]dto.InvoiceResponse](t, raw), 1)
}

func TestAPI_IdempotencyKeyReleasedOnFailure(t *testing.T) {
	app := newTestAPI(t)
	token := register(t, app, "u@example.com")
	company := createCompany(t, app, token, "Acme")
	key := map[string]string{apphttp.HeaderIdempotencyKey: "retry-me"}

	resp, _ := call(t, app, apiCall{method: http.MethodPost, path: "/api/invoices", token: token, body: invoiceBody("no-existe"), header: key})
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp, _ = call(t, app, apiCall{method: http.MethodPost, path: "/api/invoices", token: token, body: invoiceBody(company.ID), header: key})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	assert.Empty(t, resp.Header.Get(apphttp.HeaderIdempotentReplay))
}
