package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Antocflores/casino/internal/handlers"
	"github.com/Antocflores/casino/internal/middleware"
	"github.com/Antocflores/casino/internal/models"
	"github.com/Antocflores/casino/internal/repositories"
	"github.com/Antocflores/casino/internal/services"
	"github.com/Antocflores/casino/pkg/feed"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupApp builds a Fiber app backed by a test-scoped in-memory SQLite
// database with the full handler/service/repository stack wired.
func setupApp(t *testing.T) *fiber.App {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	assert.NoError(t, err)
	err = db.AutoMigrate(&models.Product{}, &models.Cart{}, &models.Order{}, &models.QueueEntry{})
	assert.NoError(t, err)

	productRepo := repositories.NewGORMProductRepository(db)
	cartRepo := repositories.NewGORMCartRepository(db)
	orderRepo := repositories.NewGORMOrderRepository(db)
	queueRepo := repositories.NewGORMQueueRepository(db)

	hub := feed.NewHub()

	authService, err := services.NewAuthService(services.AuthConfig{
		AdminEmail:    "admin123@gmail.com",
		AdminPassword: "123456",
		BuyerDomain:   "@usm.cl",
		JWTSecret:     "test_jwt_secret",
	})
	assert.NoError(t, err)
	catalogService := services.NewCatalogService(productRepo, hub, nil)
	cartService := services.NewCartService(cartRepo, productRepo)
	orderService := services.NewOrderService(orderRepo, queueRepo, cartRepo, productRepo, hub, nil, time.Now)
	queueService := services.NewQueueService(queueRepo, orderRepo, hub, nil, 5*time.Minute, time.Second, time.Now)

	assert.NoError(t, catalogService.SeedDefaults())

	app := fiber.New()
	apiV1 := app.Group("/api/v1")

	handlers.NewAuthHandler(authService).RegisterRoutes(apiV1)

	protected := apiV1.Group("", middleware.AuthRequired(authService))
	handlers.NewProductHandler(catalogService).RegisterRoutes(protected)
	handlers.NewCartHandler(cartService).RegisterRoutes(protected)
	handlers.NewOrderHandler(orderService).RegisterRoutes(protected)
	handlers.NewQueueHandler(queueService).RegisterRoutes(protected)

	return app
}

func doRequest(t *testing.T, app *fiber.App, method, path, token string, body interface{}) (int, map[string]interface{}) {
	t.Helper()

	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		assert.NoError(t, err)
		reqBody = bytes.NewReader(encoded)
	}
	req := httptest.NewRequest(method, path, reqBody)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	assert.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	assert.NoError(t, err)

	var parsed map[string]interface{}
	if len(raw) > 0 && raw[0] == '{' {
		assert.NoError(t, json.Unmarshal(raw, &parsed))
	}
	return resp.StatusCode, parsed
}

func login(t *testing.T, app *fiber.App, email, password string) string {
	t.Helper()
	status, body := doRequest(t, app, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    email,
		"password": password,
	})
	assert.Equal(t, http.StatusOK, status)
	token, _ := body["token"].(string)
	assert.NotEmpty(t, token)
	return token
}

func listProducts(t *testing.T, app *fiber.App, token string) []models.Product {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req, -1)
	assert.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var products []models.Product
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&products))
	return products
}

func productByName(t *testing.T, products []models.Product, name string) models.Product {
	t.Helper()
	for _, p := range products {
		if p.Name == name {
			return p
		}
	}
	t.Fatalf("product %s not in catalog", name)
	return models.Product{}
}

func TestLoginRules(t *testing.T) {
	app := setupApp(t)

	// Buyer domain logs in without a password check
	login(t, app, "alumno@usm.cl", "")

	// Admin needs the right password
	status, _ := doRequest(t, app, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    "admin123@gmail.com",
		"password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, status)
	login(t, app, "admin123@gmail.com", "123456")

	// Foreign domains are rejected
	status, _ = doRequest(t, app, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    "someone@gmail.com",
		"password": "",
	})
	assert.Equal(t, http.StatusForbidden, status)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	app := setupApp(t)

	status, _ := doRequest(t, app, http.MethodGet, "/api/v1/products", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestAdminRoutesRejectBuyers(t *testing.T) {
	app := setupApp(t)
	buyerToken := login(t, app, "alumno@usm.cl", "")

	status, _ := doRequest(t, app, http.MethodPost, "/api/v1/queue/advance", buyerToken, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = doRequest(t, app, http.MethodGet, "/api/v1/queue/", buyerToken, nil)
	assert.Equal(t, http.StatusForbidden, status)
}

func TestCatalogSeedAndAdminQuantityEdit(t *testing.T) {
	app := setupApp(t)
	adminToken := login(t, app, "admin123@gmail.com", "123456")

	products := listProducts(t, app, adminToken)
	assert.Len(t, products, 4)
	galleta := productByName(t, products, "Galleta")
	assert.Equal(t, 800, galleta.Price)
	assert.Equal(t, 100, galleta.Quantity)

	status, _ := doRequest(t, app, http.MethodPatch, "/api/v1/products/"+galleta.ID+"/quantity", adminToken, map[string]int{
		"quantity": 7,
	})
	assert.Equal(t, http.StatusOK, status)

	products = listProducts(t, app, adminToken)
	assert.Equal(t, 7, productByName(t, products, "Galleta").Quantity)

	// Negative quantities never reach the catalog
	status, _ = doRequest(t, app, http.MethodPatch, "/api/v1/products/"+galleta.ID+"/quantity", adminToken, map[string]int{
		"quantity": -1,
	})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestCartStockGuardOverHTTP(t *testing.T) {
	app := setupApp(t)
	adminToken := login(t, app, "admin123@gmail.com", "123456")
	buyerToken := login(t, app, "alumno@usm.cl", "")

	products := listProducts(t, app, buyerToken)
	galleta := productByName(t, products, "Galleta")

	// Shrink the stock to 4, put 2 in the cart, then ask for 3 more.
	status, _ := doRequest(t, app, http.MethodPatch, "/api/v1/products/"+galleta.ID+"/quantity", adminToken, map[string]int{"quantity": 4})
	assert.Equal(t, http.StatusOK, status)

	status, _ = doRequest(t, app, http.MethodPost, "/api/v1/cart/items", buyerToken, map[string]interface{}{
		"product_id": galleta.ID,
		"quantity":   2,
	})
	assert.Equal(t, http.StatusCreated, status)

	status, body := doRequest(t, app, http.MethodPost, "/api/v1/cart/items", buyerToken, map[string]interface{}{
		"product_id": galleta.ID,
		"quantity":   3,
	})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "Insufficient stock", body["message"])
}

func TestOrderAndQueueLifecycle(t *testing.T) {
	app := setupApp(t)
	adminToken := login(t, app, "admin123@gmail.com", "123456")
	buyerToken := login(t, app, "alumno@usm.cl", "")

	products := listProducts(t, app, buyerToken)
	galleta := productByName(t, products, "Galleta")
	bebida := productByName(t, products, "Bebida")

	// Cart: 2x Galleta (800) + 1x Bebida (1000)
	status, _ := doRequest(t, app, http.MethodPost, "/api/v1/cart/items", buyerToken, map[string]interface{}{
		"product_id": galleta.ID, "quantity": 2,
	})
	assert.Equal(t, http.StatusCreated, status)
	status, _ = doRequest(t, app, http.MethodPost, "/api/v1/cart/items", buyerToken, map[string]interface{}{
		"product_id": bebida.ID, "quantity": 1,
	})
	assert.Equal(t, http.StatusCreated, status)

	status, body := doRequest(t, app, http.MethodGet, "/api/v1/cart/", buyerToken, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(2600), body["total_price"])

	// Place the order
	status, body = doRequest(t, app, http.MethodPost, "/api/v1/orders/", buyerToken, nil)
	assert.Equal(t, http.StatusCreated, status)
	order := body["order"].(map[string]interface{})
	entry := body["queue_entry"].(map[string]interface{})
	assert.Equal(t, float64(2600), order["total_price"])
	assert.Equal(t, "pending", order["status"])
	assert.Equal(t, "waiting", entry["status"])
	entryID := entry["id"].(string)

	// The cart is now empty, so a second placement fails fast
	status, _ = doRequest(t, app, http.MethodGet, "/api/v1/cart/", buyerToken, nil)
	assert.Equal(t, http.StatusOK, status)
	status, _ = doRequest(t, app, http.MethodPost, "/api/v1/orders/", buyerToken, nil)
	assert.NotEqual(t, http.StatusCreated, status)

	// Buyer is first in line
	status, body = doRequest(t, app, http.MethodGet, "/api/v1/queue/position", buyerToken, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(1), body["position"])

	// Admin advances the queue; the buyer sees the countdown start
	status, body = doRequest(t, app, http.MethodPost, "/api/v1/queue/advance", adminToken, nil)
	assert.Equal(t, http.StatusOK, status)
	advanced := body["entry"].(map[string]interface{})
	assert.Equal(t, "notified", advanced["status"])

	status, body = doRequest(t, app, http.MethodGet, "/api/v1/queue/position", buyerToken, nil)
	assert.Equal(t, http.StatusOK, status)
	countdown, ok := body["countdown_seconds"].(float64)
	assert.True(t, ok)
	assert.InDelta(t, 300, countdown, 2)

	// Advancing an empty queue reports it
	status, _ = doRequest(t, app, http.MethodPost, "/api/v1/queue/advance", adminToken, nil)
	assert.Equal(t, http.StatusConflict, status)

	// Admin completes the pickup; order follows, buyer leaves the queue
	status, _ = doRequest(t, app, http.MethodPost, "/api/v1/queue/"+entryID+"/complete", adminToken, nil)
	assert.Equal(t, http.StatusOK, status)

	status, body = doRequest(t, app, http.MethodGet, "/api/v1/orders/"+order["id"].(string), buyerToken, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "completed", body["status"])

	status, _ = doRequest(t, app, http.MethodGet, "/api/v1/queue/position", buyerToken, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestMarkMissedCancelsOrder(t *testing.T) {
	app := setupApp(t)
	adminToken := login(t, app, "admin123@gmail.com", "123456")
	buyerToken := login(t, app, "alumno@usm.cl", "")

	products := listProducts(t, app, buyerToken)
	galleta := productByName(t, products, "Galleta")

	status, _ := doRequest(t, app, http.MethodPost, "/api/v1/cart/items", buyerToken, map[string]interface{}{
		"product_id": galleta.ID, "quantity": 1,
	})
	assert.Equal(t, http.StatusCreated, status)

	status, body := doRequest(t, app, http.MethodPost, "/api/v1/orders/", buyerToken, nil)
	assert.Equal(t, http.StatusCreated, status)
	order := body["order"].(map[string]interface{})
	entry := body["queue_entry"].(map[string]interface{})

	status, _ = doRequest(t, app, http.MethodPost, "/api/v1/queue/advance", adminToken, nil)
	assert.Equal(t, http.StatusOK, status)

	status, _ = doRequest(t, app, http.MethodPost, "/api/v1/queue/"+entry["id"].(string)+"/miss", adminToken, nil)
	assert.Equal(t, http.StatusOK, status)

	status, body = doRequest(t, app, http.MethodGet, "/api/v1/orders/"+order["id"].(string), buyerToken, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "cancelled", body["status"])
}

func TestBuyersCannotReadOthersOrders(t *testing.T) {
	app := setupApp(t)
	buyerToken := login(t, app, "alumno@usm.cl", "")
	otherToken := login(t, app, "otro@usm.cl", "")

	products := listProducts(t, app, buyerToken)
	galleta := productByName(t, products, "Galleta")

	status, _ := doRequest(t, app, http.MethodPost, "/api/v1/cart/items", buyerToken, map[string]interface{}{
		"product_id": galleta.ID, "quantity": 1,
	})
	assert.Equal(t, http.StatusCreated, status)
	status, body := doRequest(t, app, http.MethodPost, "/api/v1/orders/", buyerToken, nil)
	assert.Equal(t, http.StatusCreated, status)
	orderID := body["order"].(map[string]interface{})["id"].(string)

	status, _ = doRequest(t, app, http.MethodGet, "/api/v1/orders/"+orderID, otherToken, nil)
	assert.Equal(t, http.StatusForbidden, status)
}

func TestPlaceOrderWithEmptyCart(t *testing.T) {
	app := setupApp(t)
	buyerToken := login(t, app, "alumno@usm.cl", "")

	status, body := doRequest(t, app, http.MethodPost, "/api/v1/orders/", buyerToken, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Cart is empty", body["message"])
}
