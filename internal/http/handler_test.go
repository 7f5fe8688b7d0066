package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/andreasstove999/ecommerce-system/storefront-service-go/internal/apperr"
	"github.com/andreasstove999/ecommerce-system/storefront-service-go/internal/cart"
	"github.com/andreasstove999/ecommerce-system/storefront-service-go/internal/catalog"
	"github.com/andreasstove999/ecommerce-system/storefront-service-go/internal/checkout"
	"github.com/andreasstove999/ecommerce-system/storefront-service-go/internal/media"
	"github.com/andreasstove999/ecommerce-system/storefront-service-go/internal/middleware"
	"github.com/andreasstove999/ecommerce-system/storefront-service-go/internal/order"
	"github.com/andreasstove999/ecommerce-system/storefront-service-go/internal/shipping"
)

const testSecret = "test-secret"

type fakeCatalog struct {
	products  map[string]catalog.Product
	createErr error
	lowStock  []catalog.Product
	panics    bool

	listCategory string
	listQuery    string

	created   catalog.ProductInput
	mainImage *catalog.Image
	gallery   []string
	createdBy string
}

func (f *fakeCatalog) ListCategories(context.Context, string) ([]catalog.Category, error) {
	if f.panics {
		panic("catalog unavailable")
	}
	return []catalog.Category{{ID: "tea", Name: "Tea", ProductCount: 1}}, nil
}

func (f *fakeCatalog) CreateCategory(context.Context, catalog.CategoryInput) (catalog.Category, error) {
	return catalog.Category{}, apperr.Conflict("Slug must be unique.")
}

func (f *fakeCatalog) UpdateCategory(_ context.Context, id string, in catalog.CategoryInput) (catalog.Category, error) {
	return catalog.Category{ID: id, Name: in.Name}, nil
}

func (f *fakeCatalog) DeleteCategory(context.Context, string) error { return nil }

func (f *fakeCatalog) ListProducts(_ context.Context, categoryID, q string) ([]catalog.Product, error) {
	f.listCategory, f.listQuery = categoryID, q
	out := make([]catalog.Product, 0, len(f.products))
	for _, p := range f.products {
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeCatalog) GetProduct(_ context.Context, id string) (catalog.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return catalog.Product{}, apperr.ErrNotFound
	}
	return p, nil
}

func (f *fakeCatalog) CreateProduct(_ context.Context, in catalog.ProductInput, main *catalog.Image, gallery []catalog.Image, createdBy string) (catalog.Product, error) {
	f.created = in
	f.mainImage = main
	f.createdBy = createdBy
	for _, g := range gallery {
		f.gallery = append(f.gallery, g.Filename)
	}
	if f.createErr != nil {
		return catalog.Product{}, f.createErr
	}
	return catalog.Product{ID: "new-id", Name: in.Name, Price: in.Price, Stock: in.Stock, CreatedBy: createdBy}, nil
}

func (f *fakeCatalog) AdjustStock(_ context.Context, id string, stock int) (catalog.Product, error) {
	if stock < 0 {
		return catalog.Product{}, apperr.Invalid("Stock must be a non-negative integer.")
	}
	p, ok := f.products[id]
	if !ok {
		return catalog.Product{}, apperr.ErrNotFound
	}
	p.Stock = stock
	return p, nil
}

func (f *fakeCatalog) LowStock(context.Context, int) ([]catalog.Product, error) {
	return f.lowStock, nil
}

type fakeCart struct {
	carts map[string]cart.Cart
}

func (f *fakeCart) Get(_ context.Context, sid string) (cart.Cart, error) {
	return f.carts[sid], nil
}

func (f *fakeCart) Add(_ context.Context, sid, productID string, qty int) (cart.Cart, *cart.Notice, error) {
	c := f.carts[sid]
	n := c.Add(cart.Snapshot{ID: productID, Name: "Tea", Price: decimal.NewFromInt(100), Stock: 3}, qty)
	f.carts[sid] = c
	return c, n, nil
}

func (f *fakeCart) SetQuantity(_ context.Context, sid, productID string, qty int) (cart.Cart, *cart.Notice, error) {
	c := f.carts[sid]
	line, ok := c.Get(productID)
	if !ok {
		return cart.Cart{}, nil, cart.ErrLineNotFound
	}
	n, err := c.SetQuantity(line.Product, qty)
	f.carts[sid] = c
	return c, n, err
}

func (f *fakeCart) Remove(_ context.Context, sid, productID string) (cart.Cart, *cart.Notice, error) {
	c := f.carts[sid]
	n := c.Remove(productID)
	f.carts[sid] = c
	return c, n, nil
}

func (f *fakeCart) Clear(_ context.Context, sid string) error {
	delete(f.carts, sid)
	return nil
}

type fakeCheckout struct {
	err error
}

func (f *fakeCheckout) Place(_ context.Context, sid string, d checkout.Details) (order.Order, error) {
	if f.err != nil {
		return order.Order{}, f.err
	}
	return order.Order{ID: "order-1", Customer: d.Name, Status: order.StatusPending}, nil
}

type fakeOrders struct {
	orders     []order.Order
	lastFilter order.ListFilter
}

func (f *fakeOrders) List(_ context.Context, lf order.ListFilter) (order.Page, error) {
	f.lastFilter = lf
	return order.Page{Orders: f.orders, Total: len(f.orders), Page: 1, PageSize: 10}, nil
}

func (f *fakeOrders) All(context.Context) ([]order.Order, error) { return f.orders, nil }

func (f *fakeOrders) Get(_ context.Context, id string) (order.Order, error) {
	for _, o := range f.orders {
		if o.ID == id {
			return o, nil
		}
	}
	return order.Order{}, apperr.ErrNotFound
}

func (f *fakeOrders) UpdateStatus(ctx context.Context, id string, status order.Status) (order.Order, error) {
	o, err := f.Get(ctx, id)
	if err != nil {
		return order.Order{}, err
	}
	o.Status = status
	return o, nil
}

func (f *fakeOrders) Delete(ctx context.Context, id string) error {
	_, err := f.Get(ctx, id)
	return err
}

type fakeShipping struct{}

func (fakeShipping) List(context.Context) ([]shipping.Rule, error) {
	return []shipping.Rule{{ID: "default", District: shipping.RestOfCountry, Charge: 120}}, nil
}

func (fakeShipping) Add(_ context.Context, district string, charge int) (shipping.Rule, error) {
	if district == "" {
		return shipping.Rule{}, apperr.Invalid("Please select a district and enter a valid shipping charge.")
	}
	return shipping.Rule{ID: shipping.RuleID(district), District: district, Charge: charge}, nil
}

func (fakeShipping) Update(_ context.Context, id, district string, charge int) (shipping.Rule, error) {
	return shipping.Rule{ID: id, District: district, Charge: charge}, nil
}

func (fakeShipping) Delete(context.Context, string) error { return nil }

func (fakeShipping) ChargeFor(_ context.Context, district string) (int, error) {
	if strings.EqualFold(district, "rajshahi") {
		return 60, nil
	}
	return 120, nil
}

type testEnv struct {
	router   http.Handler
	catalog  *fakeCatalog
	cart     *fakeCart
	checkout *fakeCheckout
	orders   *fakeOrders
}

var orderDate = time.Date(2024, 5, 14, 10, 0, 0, 0, time.UTC)

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		catalog: &fakeCatalog{
			products: map[string]catalog.Product{
				"p-1": {ID: "p-1", Name: "Tea", Price: decimal.NewFromInt(100), Stock: 3},
			},
			lowStock: []catalog.Product{{ID: "p-2", Name: "Honey", Stock: 1}},
		},
		cart:     &fakeCart{carts: map[string]cart.Cart{}},
		checkout: &fakeCheckout{},
		orders: &fakeOrders{orders: []order.Order{{
			ID: "order-1", Customer: "Rahim", Phone: "01700000000", Address: "House 1",
			Items:    []order.Item{{ProductID: "p-1", Name: "Tea", Quantity: 2, Price: decimal.NewFromInt(100)}},
			Status:   order.StatusDelivered,
			Subtotal: decimal.NewFromInt(200), Shipping: decimal.NewFromInt(60), Amount: decimal.NewFromInt(260),
			Date: orderDate,
		}}},
	}
	h := NewHandler(Deps{
		Logger:            log.New(io.Discard, "", 0),
		Catalog:           env.catalog,
		Cart:              env.cart,
		Checkout:          env.checkout,
		Orders:            env.orders,
		Shipping:          fakeShipping{},
		ShopName:          "Test Shop",
		LowStockThreshold: 5,
	})
	h.now = func() time.Time { return time.Date(2024, 5, 15, 18, 0, 0, 0, time.UTC) }
	env.router = NewRouter(h, RouterOptions{CORSAllowOrigins: []string{"*"}, AdminJWTSecret: testSecret})
	return env
}

func (e *testEnv) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

func jsonRequest(method, target string, body any) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func asAdmin(t *testing.T, req *http.Request) *http.Request {
	t.Helper()
	token, err := middleware.SignAdminToken(testSecret, "admin@shop.example", middleware.RoleAdmin, time.Hour)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func withSession(req *http.Request, sid string) *http.Request {
	req.Header.Set(middleware.HeaderSessionID, sid)
	return req
}

func decodeBody[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}

func TestHealthRoute(t *testing.T) {
	env := newTestEnv(t)
	rr := env.do(t, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	body := decodeBody[map[string]string](t, rr)
	require.Equal(t, "ok", body["status"])
	require.NotEmpty(t, rr.Header().Get(middleware.HeaderCorrelationID))
}

func TestPanicResponseCarriesCorrelationID(t *testing.T) {
	env := newTestEnv(t)
	env.catalog.panics = true

	req := httptest.NewRequest(http.MethodGet, "/api/catalog/categories", nil)
	req.Header.Set(middleware.HeaderCorrelationID, "corr-42")
	rr := env.do(t, req)
	require.Equal(t, http.StatusInternalServerError, rr.Code)

	body := decodeBody[map[string]string](t, rr)
	require.Equal(t, "internal error", body["error"])
	require.Equal(t, "corr-42", body["correlationId"])
}

func TestListProductsPassesSearchQuery(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, httptest.NewRequest(http.MethodGet, "/api/catalog/products?category=tea&q=Green", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "tea", env.catalog.listCategory)
	require.Equal(t, "Green", env.catalog.listQuery)
}

func TestGetProduct(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, httptest.NewRequest(http.MethodGet, "/api/catalog/products/p-1", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	p := decodeBody[catalog.Product](t, rr)
	require.Equal(t, "Tea", p.Name)

	rr = env.do(t, httptest.NewRequest(http.MethodGet, "/api/catalog/products/missing", nil))
	require.Equal(t, http.StatusNotFound, rr.Code)
}

func TestShippingChargeIsPublic(t *testing.T) {
	env := newTestEnv(t)
	rr := env.do(t, httptest.NewRequest(http.MethodGet, "/api/shipping/charge?district=Rajshahi", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	body := decodeBody[map[string]any](t, rr)
	require.EqualValues(t, 60, body["charge"])
}

func TestCartRequiresSession(t *testing.T) {
	env := newTestEnv(t)
	rr := env.do(t, httptest.NewRequest(http.MethodGet, "/api/cart", nil))
	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Contains(t, rr.Body.String(), "X-Session-Id")
}

func TestCartFlow(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, withSession(jsonRequest(http.MethodPost, "/api/cart/items", cartItemRequest{ProductID: "p-1", Quantity: 5}), "s-1"))
	require.Equal(t, http.StatusOK, rr.Code)
	resp := decodeBody[cartResponse](t, rr)
	require.Equal(t, 3, resp.Count)
	require.NotNil(t, resp.Notice)
	require.Equal(t, "Stock limit reached", resp.Notice.Title)
	require.True(t, resp.Subtotal.Equal(decimal.NewFromInt(300)))
	require.True(t, resp.Items[0].Total.Equal(decimal.NewFromInt(300)))

	rr = env.do(t, withSession(jsonRequest(http.MethodPut, "/api/cart/items/p-1", cartItemRequest{Quantity: 0}), "s-1"))
	require.Equal(t, http.StatusOK, rr.Code)
	resp = decodeBody[cartResponse](t, rr)
	require.Empty(t, resp.Items)
	require.Equal(t, "Removed from cart", resp.Notice.Title)

	rr = env.do(t, withSession(jsonRequest(http.MethodPut, "/api/cart/items/p-1", cartItemRequest{Quantity: 1}), "s-1"))
	require.Equal(t, http.StatusNotFound, rr.Code)

	rr = env.do(t, withSession(httptest.NewRequest(http.MethodDelete, "/api/cart", nil), "s-1"))
	require.Equal(t, http.StatusNoContent, rr.Code)
}

func TestCheckout(t *testing.T) {
	env := newTestEnv(t)
	details := checkout.Details{Name: "Rahim", Phone: "017", Address: "House 1", District: "Rajshahi"}

	rr := env.do(t, withSession(jsonRequest(http.MethodPost, "/api/checkout", details), "s-1"))
	require.Equal(t, http.StatusCreated, rr.Code)
	o := decodeBody[order.Order](t, rr)
	require.Equal(t, "order-1", o.ID)

	env.checkout.err = apperr.Invalid("Your cart is empty.")
	rr = env.do(t, withSession(jsonRequest(http.MethodPost, "/api/checkout", details), "s-1"))
	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Equal(t, "Your cart is empty.", decodeBody[errorResponse](t, rr).Error)

	env.checkout.err = &order.StockError{Depleted: []order.DepletedLine{{ProductID: "p-1", Name: "Tea", Requested: 4, Available: 3}}}
	rr = env.do(t, withSession(jsonRequest(http.MethodPost, "/api/checkout", details), "s-1"))
	require.Equal(t, http.StatusConflict, rr.Code)
	body := decodeBody[errorResponse](t, rr)
	require.Len(t, body.Depleted, 1)
	require.Equal(t, 3, body.Depleted[0].Available)
}

func TestAdminRoutesRequireToken(t *testing.T) {
	env := newTestEnv(t)
	rr := env.do(t, httptest.NewRequest(http.MethodGet, "/api/admin/orders", nil))
	require.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = env.do(t, asAdmin(t, httptest.NewRequest(http.MethodGet, "/api/admin/orders?status=delivered&page=2", nil)))
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, order.StatusDelivered, env.orders.lastFilter.Status)
	require.Equal(t, 2, env.orders.lastFilter.Page)
}

func TestListOrdersRejectsUnknownStatus(t *testing.T) {
	env := newTestEnv(t)
	rr := env.do(t, asAdmin(t, httptest.NewRequest(http.MethodGet, "/api/admin/orders?status=lost", nil)))
	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestUpdateOrderStatus(t *testing.T) {
	env := newTestEnv(t)
	rr := env.do(t, asAdmin(t, jsonRequest(http.MethodPatch, "/api/admin/orders/order-1/status", statusRequest{Status: "shipped"})))
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, order.StatusShipped, decodeBody[order.Order](t, rr).Status)

	rr = env.do(t, asAdmin(t, jsonRequest(http.MethodPatch, "/api/admin/orders/nope/status", statusRequest{Status: "shipped"})))
	require.Equal(t, http.StatusNotFound, rr.Code)
}

func TestOrderInvoice(t *testing.T) {
	env := newTestEnv(t)
	rr := env.do(t, asAdmin(t, httptest.NewRequest(http.MethodGet, "/api/admin/orders/order-1/invoice", nil)))
	require.Equal(t, http.StatusOK, rr.Code)
	require.Contains(t, rr.Header().Get("Content-Type"), "text/plain")
	require.Contains(t, rr.Header().Get("Content-Disposition"), "invoice-order-1.txt")
	require.Contains(t, rr.Body.String(), "Test Shop")
	require.Contains(t, rr.Body.String(), "2 x Tea")
}

func TestCustomers(t *testing.T) {
	env := newTestEnv(t)
	rr := env.do(t, asAdmin(t, httptest.NewRequest(http.MethodGet, "/api/admin/customers?phone=0170", nil)))
	require.Equal(t, http.StatusOK, rr.Code)
	body := decodeBody[[]map[string]any](t, rr)
	require.Len(t, body, 1)

	rr = env.do(t, asAdmin(t, httptest.NewRequest(http.MethodGet, "/api/admin/customers/orders", nil)))
	require.Equal(t, http.StatusBadRequest, rr.Code)

	rr = env.do(t, asAdmin(t, httptest.NewRequest(http.MethodGet, "/api/admin/customers/orders?name=Rahim&phone=01700000000", nil)))
	require.Equal(t, http.StatusOK, rr.Code)
	require.Len(t, decodeBody[[]order.Order](t, rr), 1)
}

func TestDashboard(t *testing.T) {
	env := newTestEnv(t)
	rr := env.do(t, asAdmin(t, httptest.NewRequest(http.MethodGet, "/api/admin/dashboard", nil)))
	require.Equal(t, http.StatusOK, rr.Code)

	body := decodeBody[map[string]any](t, rr)
	require.EqualValues(t, 1, body["totalSales"])
	require.Len(t, body["lowStock"], 1)
	require.Len(t, body["salesByDay"], 7)
}

func TestDashboardNoLowStockIsEmptyList(t *testing.T) {
	env := newTestEnv(t)
	env.catalog.lowStock = []catalog.Product{}

	rr := env.do(t, asAdmin(t, httptest.NewRequest(http.MethodGet, "/api/admin/dashboard", nil)))
	require.Equal(t, http.StatusOK, rr.Code)
	require.Contains(t, rr.Body.String(), `"lowStock":[]`)
}

func TestCategoryConflictMessage(t *testing.T) {
	env := newTestEnv(t)
	rr := env.do(t, asAdmin(t, jsonRequest(http.MethodPost, "/api/admin/categories", catalog.CategoryInput{Name: "Tea"})))
	require.Equal(t, http.StatusConflict, rr.Code)
	require.Equal(t, "Slug must be unique.", decodeBody[errorResponse](t, rr).Error)
}

func TestShippingRuleValidation(t *testing.T) {
	env := newTestEnv(t)
	rr := env.do(t, asAdmin(t, jsonRequest(http.MethodPost, "/api/admin/shipping/rules", shippingRuleRequest{Charge: 50})))
	require.Equal(t, http.StatusBadRequest, rr.Code)

	rr = env.do(t, asAdmin(t, jsonRequest(http.MethodPost, "/api/admin/shipping/rules", shippingRuleRequest{District: "Dhaka", Charge: 50})))
	require.Equal(t, http.StatusCreated, rr.Code)
	require.Equal(t, "dhaka", decodeBody[shipping.Rule](t, rr).ID)
}

func TestAdjustStock(t *testing.T) {
	env := newTestEnv(t)
	rr := env.do(t, asAdmin(t, jsonRequest(http.MethodPost, "/api/admin/products/p-1/stock", map[string]int{"stock": 9})))
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, 9, decodeBody[catalog.Product](t, rr).Stock)

	rr = env.do(t, asAdmin(t, jsonRequest(http.MethodPost, "/api/admin/products/p-1/stock", map[string]any{})))
	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func multipartProduct(t *testing.T, fields map[string]string, files map[string][]string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	for field, names := range files {
		for _, name := range names {
			h := make(textproto.MIMEHeader)
			h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, name))
			h.Set("Content-Type", "image/png")
			part, err := mw.CreatePart(h)
			require.NoError(t, err)
			_, err = part.Write([]byte("\x89PNG fake image bytes"))
			require.NoError(t, err)
		}
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/admin/products", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestCreateProductMultipart(t *testing.T) {
	env := newTestEnv(t)
	fields := map[string]string{
		"name": "Green Tea", "highlights": "Fresh", "description": "Leaves",
		"price": "250.50", "stock": "12", "category": "tea",
	}
	files := map[string][]string{"image": {"main.png"}, "gallery": {"g1.png", "g2.png"}}

	rr := env.do(t, asAdmin(t, multipartProduct(t, fields, files)))
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	require.Equal(t, "Green Tea", env.catalog.created.Name)
	require.True(t, env.catalog.created.Price.Equal(decimal.RequireFromString("250.50")))
	require.Equal(t, 12, env.catalog.created.Stock)
	require.NotNil(t, env.catalog.mainImage)
	require.Equal(t, "main.png", env.catalog.mainImage.Filename)
	require.Equal(t, "image/png", env.catalog.mainImage.ContentType)
	require.Equal(t, []string{"g1.png", "g2.png"}, env.catalog.gallery)
	require.Equal(t, "admin@shop.example", env.catalog.createdBy)
}

func TestCreateProductUploadErrors(t *testing.T) {
	env := newTestEnv(t)
	fields := map[string]string{"name": "Green Tea", "price": "1", "stock": "1", "category": "tea"}
	files := map[string][]string{"image": {"main.png"}}

	env.catalog.createErr = fmt.Errorf("%w after 300 seconds", media.ErrUploadTimeout)
	rr := env.do(t, asAdmin(t, multipartProduct(t, fields, files)))
	require.Equal(t, http.StatusGatewayTimeout, rr.Code)

	env.catalog.createErr = fmt.Errorf("%w: products/x: boom", media.ErrUploadFailed)
	rr = env.do(t, asAdmin(t, multipartProduct(t, fields, files)))
	require.Equal(t, http.StatusBadGateway, rr.Code)

	env.catalog.createErr = nil
	rr = env.do(t, asAdmin(t, jsonRequest(http.MethodPost, "/api/admin/products", map[string]string{"name": "x"})))
	require.Equal(t, http.StatusBadRequest, rr.Code)
}
