package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/storefront/internal/api/http/handlers"
	"github.com/spec-kit/storefront/internal/auth"
	"github.com/spec-kit/storefront/internal/config"
	"github.com/spec-kit/storefront/internal/docstore"
	"github.com/spec-kit/storefront/internal/domain"
	"github.com/spec-kit/storefront/internal/events"
	"github.com/spec-kit/storefront/internal/observability"
	"github.com/spec-kit/storefront/internal/permission"
	"github.com/spec-kit/storefront/internal/repository"
	"github.com/spec-kit/storefront/internal/service"
	"github.com/spec-kit/storefront/pkg/util/errorutil"
)

type server struct {
	app         *fiber.App
	provisioner *auth.Provisioner
}

func newServer(t *testing.T) *server {
	t.Helper()
	logger := zap.NewNop()
	metrics := observability.NewMetrics()
	client := docstore.NewClient(docstore.NewMemoryBackend(), docstore.Options{
		Cache:    docstore.NewMemoryCache(0),
		Metrics:  metrics,
		Uncached: []string{domain.CollectionAuthCredentials},
	})

	users := repository.NewUserRepository(client)
	products := repository.NewProductRepository(client)
	orders := repository.NewOrderRepository(client)
	tickets := repository.NewTicketRepository(client)
	faqs := repository.NewFAQRepository(client)

	authenticator := auth.NewAuthenticator(repository.NewCredentialRepository(client), users,
		auth.NewTokenManager("test-secret", 5), auth.Options{BcryptCost: bcrypt.MinCost})
	resolver := permission.NewResolver(users, logger)
	dispatcher := events.NewInMemoryDispatcher(logger)

	productService := service.NewProductService(service.ProductDependencies{ProductRepo: products})
	faqService := service.NewFAQService(faqs, logger)
	orderService := service.NewOrderService(service.OrderDependencies{OrderRepo: orders, ProductRepo: products, Dispatcher: dispatcher})
	ticketService := service.NewTicketService(service.TicketDependencies{TicketRepo: tickets, Dispatcher: dispatcher})
	userService := service.NewUserService(service.UserDependencies{UserRepo: users, Dispatcher: dispatcher})
	backupService := service.NewBackupService(service.BackupDependencies{
		Store:      client,
		BackupRepo: repository.NewBackupRepository(client),
		Dispatcher: dispatcher,
	})

	app := fiber.New(fiber.Config{BodyLimit: config.AppConfig{BodyLimitMB: 8}.BodyLimit()})
	RegisterMiddlewares(app, logger, metrics, 0)
	RegisterRoutes(app, RouteConfig{
		Health:         handlers.NewHealthHandler("storefront", "test", map[string]handlers.Pinger{"store": client}),
		Auth:           handlers.NewAuthHandler(authenticator),
		Catalog:        handlers.NewCatalogHandler(productService, faqService),
		Orders:         handlers.NewOrdersHandler(orderService),
		Tickets:        handlers.NewTicketsHandler(ticketService, userService),
		Me:             handlers.NewMeHandler(userService, resolver, authenticator),
		Users:          handlers.NewUsersHandler(userService),
		Products:       handlers.NewProductsHandler(productService),
		FAQs:           handlers.NewFAQsHandler(faqService),
		Settings:       handlers.NewSettingsHandler(service.NewSettingsService(repository.NewSettingsRepository(client), logger)),
		Backups:        handlers.NewBackupsHandler(backupService),
		Dashboard:      handlers.NewDashboardHandler(service.NewDashboardService(orders, users, tickets)),
		AuthMiddleware: auth.NewMiddleware(authenticator),
		Permissions:    resolver,
		Metrics:        metrics,
	})
	return &server{app: app, provisioner: auth.NewProvisioner(users, logger)}
}

type reply struct {
	status int
	header http.Header
	raw    []byte
	body   map[string]any
}

func (r reply) data() map[string]any {
	d, _ := r.body["data"].(map[string]any)
	return d
}

func (r reply) list() []any {
	l, _ := r.body["data"].([]any)
	return l
}

func (r reply) errorCode() string {
	e, _ := r.body["error"].(map[string]any)
	code, _ := e["code"].(string)
	return code
}

func (s *server) call(t *testing.T, method, path, token string, body any) reply {
	t.Helper()
	var payload io.Reader
	if body != nil {
		raw, ok := body.([]byte)
		if !ok {
			var err error
			raw, err = json.Marshal(body)
			require.NoError(t, err)
		}
		payload = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, payload)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	out := reply{status: resp.StatusCode, header: resp.Header, raw: raw}
	_ = json.Unmarshal(raw, &out.body)
	return out
}

func (s *server) signUp(t *testing.T, email string) (uid, token string) {
	t.Helper()
	r := s.call(t, http.MethodPost, "/auth/sign-up", "", map[string]any{
		"email": email, "password": "secret1", "displayName": "Sara",
	})
	require.Equal(t, http.StatusCreated, r.status, string(r.raw))
	return r.data()["uid"].(string), r.data()["token"].(string)
}

func (s *server) superAdmin(t *testing.T, email string) string {
	t.Helper()
	uid, token := s.signUp(t, email)
	require.NoError(t, s.provisioner.PromoteSuperAdmin(context.Background(), uid))
	return token
}

func TestHealthEndpoints(t *testing.T) {
	s := newServer(t)
	r := s.call(t, http.MethodGet, "/health/live", "", nil)
	assert.Equal(t, http.StatusOK, r.status)
	assert.Equal(t, "alive", r.body["status"])

	r = s.call(t, http.MethodGet, "/health/ready", "", nil)
	assert.Equal(t, http.StatusOK, r.status)
	assert.Equal(t, map[string]any{"store": "ok"}, r.body["dependencies"])
}

func TestAuthAndProfileFlow(t *testing.T) {
	s := newServer(t)
	_, token := s.signUp(t, "sara@example.com")

	r := s.call(t, http.MethodGet, "/me", token, nil)
	require.Equal(t, http.StatusOK, r.status)
	assert.Equal(t, "Sara", r.data()["displayName"])

	r = s.call(t, http.MethodPatch, "/me", token, map[string]any{"phone": "0500"})
	require.Equal(t, http.StatusOK, r.status)
	assert.Equal(t, "0500", r.data()["phone"])

	r = s.call(t, http.MethodGet, "/me/permissions", token, nil)
	require.Equal(t, http.StatusOK, r.status)
	for name, shown := range r.data() {
		assert.False(t, shown.(bool), name)
	}

	r = s.call(t, http.MethodPost, "/auth/sign-in", "", map[string]any{"email": "sara@example.com", "password": "nope123"})
	assert.Equal(t, http.StatusUnauthorized, r.status)
	assert.Equal(t, errorutil.CodeWrongPassword, r.errorCode())

	r = s.call(t, http.MethodPost, "/auth/sign-up", "", map[string]any{"email": "sara@example.com", "password": "secret1"})
	assert.Equal(t, http.StatusConflict, r.status)
	assert.Equal(t, errorutil.CodeEmailInUse, r.errorCode())

	r = s.call(t, http.MethodPost, "/auth/password", token, map[string]any{"currentPassword": "secret1", "newPassword": "secret2"})
	assert.Equal(t, http.StatusNoContent, r.status)
	r = s.call(t, http.MethodPost, "/auth/sign-in", "", map[string]any{"email": "sara@example.com", "password": "secret2"})
	assert.Equal(t, http.StatusOK, r.status)

	r = s.call(t, http.MethodGet, "/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, r.status)
}

func TestAdminRoutesRequirePermission(t *testing.T) {
	s := newServer(t)
	_, userToken := s.signUp(t, "user@example.com")
	adminToken := s.superAdmin(t, "boss@example.com")

	r := s.call(t, http.MethodGet, "/admin/orders", "", nil)
	assert.Equal(t, http.StatusUnauthorized, r.status)
	errBody := r.body["error"].(map[string]any)
	assert.Equal(t, string(errorutil.KindUnauthenticated), errBody["kind"])

	r = s.call(t, http.MethodGet, "/admin/orders", userToken, nil)
	assert.Equal(t, http.StatusForbidden, r.status)
	assert.Equal(t, errorutil.CodePermissionDenied, r.errorCode())

	r = s.call(t, http.MethodGet, "/admin/orders", adminToken, nil)
	assert.Equal(t, http.StatusOK, r.status)
	assert.Equal(t, false, r.body["fromCache"])

	r = s.call(t, http.MethodGet, "/me/permissions", adminToken, nil)
	assert.Equal(t, true, r.data()["settings"])
}

func TestAdminRoleOpensConsole(t *testing.T) {
	s := newServer(t)
	bossToken := s.superAdmin(t, "boss@example.com")
	uid, token := s.signUp(t, "manager@example.com")

	r := s.call(t, http.MethodGet, "/me", token, nil)
	require.Equal(t, http.StatusOK, r.status)
	assert.Equal(t, false, r.data()["isAdmin"])

	r = s.call(t, http.MethodPatch, "/admin/users/"+uid+"/role", bossToken, map[string]any{"role": "admin", "reason": "promotion"})
	require.Equal(t, http.StatusOK, r.status, string(r.raw))

	r = s.call(t, http.MethodGet, "/me", token, nil)
	require.Equal(t, http.StatusOK, r.status)
	assert.Equal(t, true, r.data()["isAdmin"])
	assert.Equal(t, "admin", r.data()["role"])

	for _, path := range []string{"/admin/orders", "/admin/tickets", "/admin/dashboard", "/admin/users", "/admin/backups"} {
		r = s.call(t, http.MethodGet, path, token, nil)
		assert.Equal(t, http.StatusOK, r.status, path)
	}

	r = s.call(t, http.MethodGet, "/me/permissions", token, nil)
	require.Equal(t, http.StatusOK, r.status)
	for name, shown := range r.data() {
		assert.True(t, shown.(bool), name)
	}

	r = s.call(t, http.MethodPatch, "/admin/users/"+uid+"/role", token, map[string]any{"role": "super_admin"})
	assert.Equal(t, http.StatusForbidden, r.status)
	r = s.call(t, http.MethodPost, "/admin/settings/reset", token, nil)
	assert.Equal(t, http.StatusForbidden, r.status)
	r = s.call(t, http.MethodPost, "/admin/backups/import", token, []byte(`{}`))
	assert.Equal(t, http.StatusForbidden, r.status)
}

func TestOrderLifecycleOverHTTP(t *testing.T) {
	s := newServer(t)
	adminToken := s.superAdmin(t, "boss@example.com")
	_, userToken := s.signUp(t, "user@example.com")

	r := s.call(t, http.MethodPost, "/admin/products", adminToken, map[string]any{
		"name": "POS Basic", "category": "basic", "price": 99.5,
	})
	require.Equal(t, http.StatusCreated, r.status, string(r.raw))
	productID := r.data()["id"].(string)

	order := map[string]any{
		"systemId": productID, "customerName": "Ali", "businessName": "Ali Market",
		"phoneNumber": "0555", "location": "Riyadh",
	}
	r = s.call(t, http.MethodPost, "/orders", "", order)
	require.Equal(t, http.StatusCreated, r.status, string(r.raw))
	assert.Equal(t, "pending", r.data()["status"])
	assert.Nil(t, r.data()["userId"])
	guestOrder := r.data()["id"].(string)

	r = s.call(t, http.MethodPost, "/orders", userToken, order)
	require.Equal(t, http.StatusCreated, r.status)
	r = s.call(t, http.MethodGet, "/me/orders", userToken, nil)
	assert.Len(t, r.list(), 1)

	r = s.call(t, http.MethodPatch, "/admin/orders/"+guestOrder+"/status", adminToken, map[string]any{"status": "approved"})
	require.Equal(t, http.StatusOK, r.status)
	assert.Equal(t, "approved", r.data()["status"])

	r = s.call(t, http.MethodPatch, "/admin/orders/"+guestOrder+"/status", adminToken, map[string]any{"status": "rejected"})
	assert.Equal(t, http.StatusBadRequest, r.status)
	assert.Equal(t, errorutil.CodeInvalidTransition, r.errorCode())

	r = s.call(t, http.MethodGet, "/admin/dashboard", adminToken, nil)
	require.Equal(t, http.StatusOK, r.status)
	assert.EqualValues(t, 2, r.data()["orders"])
	assert.EqualValues(t, 1, r.data()["pendingOrders"])

	r = s.call(t, http.MethodPost, "/admin/products/"+productID+"/toggle", adminToken, nil)
	require.Equal(t, http.StatusOK, r.status)
	assert.Equal(t, false, r.data()["isActive"])
	r = s.call(t, http.MethodGet, "/catalog/products", "", nil)
	assert.Empty(t, r.list())
	r = s.call(t, http.MethodGet, "/catalog/products/"+productID, "", nil)
	assert.Equal(t, http.StatusOK, r.status)
}

func TestTicketRepliesOverHTTP(t *testing.T) {
	s := newServer(t)
	adminToken := s.superAdmin(t, "boss@example.com")
	_, userToken := s.signUp(t, "user@example.com")
	_, otherToken := s.signUp(t, "other@example.com")

	r := s.call(t, http.MethodPost, "/tickets", userToken, map[string]any{"subject": "Printer", "message": "It jams"})
	require.Equal(t, http.StatusCreated, r.status, string(r.raw))
	id := r.data()["id"].(string)

	r = s.call(t, http.MethodPost, "/tickets/"+id+"/replies", userToken, map[string]any{"content": "Still jams"})
	require.Equal(t, http.StatusCreated, r.status)
	assert.Equal(t, "Sara", r.data()["authorName"])

	r = s.call(t, http.MethodPost, "/tickets/"+id+"/replies", otherToken, map[string]any{"content": "me too"})
	assert.Equal(t, http.StatusForbidden, r.status)
	r = s.call(t, http.MethodGet, "/me/tickets/"+id, otherToken, nil)
	assert.Equal(t, http.StatusNotFound, r.status)

	r = s.call(t, http.MethodPost, "/admin/tickets/"+id+"/replies", adminToken, map[string]any{"content": "Fixed", "status": "closed"})
	require.Equal(t, http.StatusCreated, r.status)

	r = s.call(t, http.MethodPost, "/tickets/"+id+"/replies", userToken, map[string]any{"content": "thanks"})
	assert.Equal(t, http.StatusBadRequest, r.status)
	assert.Equal(t, errorutil.CodeTicketClosed, r.errorCode())

	r = s.call(t, http.MethodGet, "/me/tickets/"+id, userToken, nil)
	require.Equal(t, http.StatusOK, r.status)
	assert.Len(t, r.data()["replies"], 2)
}

func TestBackupDownloadAndImport(t *testing.T) {
	s := newServer(t)
	adminToken := s.superAdmin(t, "boss@example.com")

	r := s.call(t, http.MethodPost, "/admin/products", adminToken, map[string]any{"name": "POS", "category": "basic", "price": 10})
	require.Equal(t, http.StatusCreated, r.status)
	productID := r.data()["id"].(string)

	r = s.call(t, http.MethodPost, "/admin/backups?download=true", adminToken, nil)
	require.Equal(t, http.StatusOK, r.status)
	assert.Contains(t, r.header.Get("Content-Disposition"), "attachment")
	file := r.raw
	assert.Equal(t, "1.0", r.body["version"])

	r = s.call(t, http.MethodDelete, "/admin/products/"+productID, adminToken, nil)
	require.Equal(t, http.StatusNoContent, r.status)
	r = s.call(t, http.MethodGet, "/catalog/products", "", nil)
	assert.Empty(t, r.list())

	r = s.call(t, http.MethodPost, "/admin/backups/import", adminToken, file)
	require.Equal(t, http.StatusOK, r.status, string(r.raw))
	restored := r.data()["restored"].(map[string]any)
	assert.EqualValues(t, 1, restored["products"])

	r = s.call(t, http.MethodGet, "/catalog/products", "", nil)
	require.Len(t, r.list(), 1)
	assert.Equal(t, productID, r.list()[0].(map[string]any)["id"])

	r = s.call(t, http.MethodGet, "/admin/backups", adminToken, nil)
	assert.Len(t, r.list(), 1)

	r = s.call(t, http.MethodPost, "/admin/backups/import", adminToken, []byte("{not json"))
	assert.Equal(t, http.StatusBadRequest, r.status)

	r = s.call(t, http.MethodPost, "/admin/backups/cleanup", adminToken, map[string]any{"maxAgeDays": 30})
	require.Equal(t, http.StatusOK, r.status)
	assert.EqualValues(t, 0, r.data()["removed"])
}

func TestImportAcceptsBundlesAboveDefaultBodyLimit(t *testing.T) {
	s := newServer(t)
	adminToken := s.superAdmin(t, "boss@example.com")

	bundle := func(size int) []byte {
		raw, err := json.Marshal(map[string]any{
			"timestamp": "2024-03-01T10:00:00.000Z",
			"version":   "1.0",
			"data": map[string]any{
				"products": []any{map[string]any{
					"id": "big", "name": "Big", "category": "basic", "price": 1, "isActive": true,
					"description": strings.Repeat("x", size),
				}},
			},
		})
		require.NoError(t, err)
		return raw
	}

	r := s.call(t, http.MethodPost, "/admin/backups/import", adminToken, bundle(5<<20))
	require.Equal(t, http.StatusOK, r.status)
	assert.EqualValues(t, 1, r.data()["restored"].(map[string]any)["products"])

	r = s.call(t, http.MethodPost, "/admin/backups/import", adminToken, bundle(9<<20))
	assert.Equal(t, http.StatusRequestEntityTooLarge, r.status)
}

func TestSettingsOverHTTP(t *testing.T) {
	s := newServer(t)
	adminToken := s.superAdmin(t, "boss@example.com")

	r := s.call(t, http.MethodPatch, "/admin/settings/theme", adminToken, map[string]any{"value": "dark"})
	require.Equal(t, http.StatusOK, r.status)
	assert.Equal(t, "dark", r.data()["theme"])
	assert.Equal(t, "ar", r.data()["language"])

	r = s.call(t, http.MethodPost, "/admin/settings/reset", adminToken, nil)
	require.Equal(t, http.StatusOK, r.status)
	assert.Equal(t, "light", r.data()["theme"])
}

func TestUnknownRouteAndMetrics(t *testing.T) {
	s := newServer(t)
	r := s.call(t, http.MethodGet, "/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, r.status)
	assert.Equal(t, errorutil.CodeNotFound, r.errorCode())

	s.call(t, http.MethodGet, "/catalog/faqs", "", nil)
	r = s.call(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, r.status)
	assert.Contains(t, string(r.raw), "http_requests_total")
	assert.Contains(t, string(r.raw), "docstore_operations_total")
}
