//go:build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/andreasstove999/ecommerce-system/storefront-service-go/internal/cart"
	"github.com/andreasstove999/ecommerce-system/storefront-service-go/internal/catalog"
	"github.com/andreasstove999/ecommerce-system/storefront-service-go/internal/checkout"
	"github.com/andreasstove999/ecommerce-system/storefront-service-go/internal/events"
	httpapi "github.com/andreasstove999/ecommerce-system/storefront-service-go/internal/http"
	"github.com/andreasstove999/ecommerce-system/storefront-service-go/internal/middleware"
	"github.com/andreasstove999/ecommerce-system/storefront-service-go/internal/order"
	"github.com/andreasstove999/ecommerce-system/storefront-service-go/internal/sequence"
	"github.com/andreasstove999/ecommerce-system/storefront-service-go/internal/shipping"
	"github.com/andreasstove999/ecommerce-system/storefront-service-go/internal/testutil"
)

const jwtSecret = "integration-secret"

type discardUploader struct{}

func (discardUploader) Upload(_ context.Context, key, _ string, body io.Reader) (string, error) {
	_, _ = io.Copy(io.Discard, body)
	return "https://cdn.test/" + key, nil
}

type stack struct {
	server   *httptest.Server
	orders   *order.PostgresRepository
	products *catalog.PostgresRepository
	conn     *amqp.Connection
}

func startStack(t *testing.T) *stack {
	t.Helper()
	logger := log.New(io.Discard, "", 0)

	pool, _ := testutil.StartPostgres(t)
	conn := testutil.StartRabbitMQ(t)
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	publisher, err := events.NewPublisher(conn, sequence.NewCounter(pool), events.PublisherOptions{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = publisher.Close() })

	productRepo := catalog.NewPostgresRepository(pool)
	orderRepo := order.NewPostgresRepository(pool)

	catalogSvc := catalog.NewService(productRepo, discardUploader{}, publisher, logger)
	cartSvc := cart.NewService(cart.NewRedisStore(rdb, time.Hour, logger), catalogSvc, logger)
	shippingSvc := shipping.NewService(shipping.NewPostgresRepository(pool))

	h := httpapi.NewHandler(httpapi.Deps{
		Logger:            logger,
		Catalog:           catalogSvc,
		Cart:              cartSvc,
		Checkout:          checkout.NewService(cartSvc, shippingSvc, orderRepo, publisher, logger),
		Orders:            order.NewService(orderRepo, publisher, logger),
		Shipping:          shippingSvc,
		ShopName:          "Integration Shop",
		LowStockThreshold: 5,
	})
	srv := httptest.NewServer(httpapi.NewRouter(h, httpapi.RouterOptions{
		CORSAllowOrigins: []string{"*"},
		AdminJWTSecret:   jwtSecret,
	}))
	t.Cleanup(srv.Close)

	return &stack{server: srv, orders: orderRepo, products: productRepo, conn: conn}
}

func (s *stack) call(t *testing.T, method, path string, body any, headers map[string]string) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, s.server.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func waitForEnvelope(t *testing.T, msgs <-chan amqp.Delivery) events.EventEnvelope {
	t.Helper()
	select {
	case msg := <-msgs:
		var env events.EventEnvelope
		require.NoError(t, json.Unmarshal(msg.Body, &env))
		return env
	case <-time.After(10 * time.Second):
		t.Fatal("timed out waiting for event")
		return events.EventEnvelope{}
	}
}

func TestCheckoutReservesStockAndPublishes(t *testing.T) {
	s := startStack(t)
	ctx := context.Background()
	placed := testutil.BindQueue(t, s.conn, events.EventsExchange, events.OrderPlacedRoutingKey)
	changed := testutil.BindQueue(t, s.conn, events.EventsExchange, events.OrderStatusChangedRoutingKey)

	session := map[string]string{middleware.HeaderSessionID: "session-1"}
	resp := s.call(t, http.MethodPost, "/api/cart/items", map[string]any{"productId": "4", "quantity": 3}, session)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = s.call(t, http.MethodPost, "/api/checkout", checkout.Details{
		Name: "Rahim", Phone: "01700000000", Address: "House 1", District: "Rajshahi",
	}, session)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var o order.Order
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&o))
	require.Equal(t, "3660", o.Amount.String())

	p, err := s.products.GetProduct(ctx, "4")
	require.NoError(t, err)
	require.Equal(t, 7, p.Stock)

	stored, err := s.orders.Get(ctx, o.ID)
	require.NoError(t, err)
	require.Len(t, stored.Items, 1)
	require.Equal(t, order.StatusPending, stored.Status)

	env := waitForEnvelope(t, placed)
	require.NoError(t, env.Validate(events.EventTypeOrderPlaced, 1))
	require.Equal(t, o.ID, env.PartitionKey)
	require.Equal(t, int64(1), env.Sequence)

	// the cart is gone after checkout
	resp = s.call(t, http.MethodGet, "/api/cart", nil, session)
	var c map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&c))
	require.EqualValues(t, 0, c["count"])

	token, err := middleware.SignAdminToken(jwtSecret, "admin@shop.test", middleware.RoleAdmin, time.Hour)
	require.NoError(t, err)
	admin := map[string]string{"Authorization": "Bearer " + token}

	resp = s.call(t, http.MethodPatch, "/api/admin/orders/"+o.ID+"/status", map[string]string{"status": "Processing"}, admin)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	env = waitForEnvelope(t, changed)
	require.NoError(t, env.Validate(events.EventTypeOrderStatusChanged, 1))
	require.Equal(t, int64(2), env.Sequence)
}

func TestCheckoutRejectsOversell(t *testing.T) {
	s := startStack(t)
	ctx := context.Background()

	require.NoError(t, s.products.SetStock(ctx, "5", 2))

	session := map[string]string{middleware.HeaderSessionID: "session-2"}
	resp := s.call(t, http.MethodPost, "/api/cart/items", map[string]any{"productId": "5", "quantity": 2}, session)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// stock drops after the item was carted
	require.NoError(t, s.products.SetStock(ctx, "5", 1))

	o := order.Order{
		Customer: "Karim", Phone: "018", Address: "Road 3", Status: order.StatusPending,
		Items: []order.Item{{ProductID: "5", Name: "Soft Cotton Hijab", Quantity: 2}},
	}
	err := s.orders.Place(ctx, &o)
	var stockErr *order.StockError
	require.ErrorAs(t, err, &stockErr)
	require.Equal(t, 1, stockErr.Depleted[0].Available)

	p, err := s.products.GetProduct(ctx, "5")
	require.NoError(t, err)
	require.Equal(t, 1, p.Stock)
}
