package httpserver

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func doRequest(router *gin.Engine, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func sessionHeaders(sid string) map[string]string {
	return map[string]string{sessionHeader: sid}
}

func TestStorefront_UnknownOrUnpublishedShop(t *testing.T) {
	f := newTestRouter(t)

	if rec := doRequest(f.router, "GET", "/store/nope/cart", "", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("unknown shop: expected 404, got %d", rec.Code)
	}
	if rec := doRequest(f.router, "GET", "/store/hidden/cart", "", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("unpublished shop: expected 404, got %d", rec.Code)
	}
}

func TestStorefront_SessionIssuedWhenMissing(t *testing.T) {
	f := newTestRouter(t)

	rec := doRequest(f.router, "GET", "/store/demo/cart", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rec.Code, rec.Body.String())
	}
	if rec.Header().Get(sessionHeader) == "" {
		t.Fatal("expected a session id header on first contact")
	}
}

func TestStorefront_CartRoundTrip(t *testing.T) {
	f := newTestRouter(t)
	h := sessionHeaders("sess-1")

	rec := doRequest(f.router, "POST", "/store/demo/cart/items", `{"id":"p-1","name":"Mug","priceCents":1000}`, h)
	if rec.Code != http.StatusOK {
		t.Fatalf("add: expected 200, got %d body=%s", rec.Code, rec.Body.String())
	}
	rec = doRequest(f.router, "POST", "/store/demo/cart/items", `{"id":"p-1","name":"Mug","priceCents":1000}`, h)
	if rec.Code != http.StatusOK {
		t.Fatalf("add again: %d", rec.Code)
	}

	var cart struct {
		Count         int   `json:"count"`
		SubtotalCents int64 `json:"subtotalCents"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &cart); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if cart.Count != 2 || cart.SubtotalCents != 2000 {
		t.Fatalf("cart = %+v, want count 2 subtotal 2000", cart)
	}

	rec = doRequest(f.router, "PATCH", "/store/demo/cart/items/p-1", `{"quantity":0}`, h)
	if rec.Code != http.StatusOK {
		t.Fatalf("update: %d", rec.Code)
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &cart); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if cart.Count != 0 {
		t.Fatalf("quantity 0 should empty the cart, got count %d", cart.Count)
	}

	// A different session never sees this cart.
	rec = doRequest(f.router, "GET", "/store/demo/cart", "", sessionHeaders("sess-2"))
	if !strings.Contains(rec.Body.String(), `"count":0`) {
		t.Fatalf("session isolation broken: %s", rec.Body.String())
	}
}

func TestStorefront_AddItemValidation(t *testing.T) {
	f := newTestRouter(t)
	h := sessionHeaders("sess-1")

	if rec := doRequest(f.router, "POST", "/store/demo/cart/items", `{"name":"NoID","priceCents":100}`, h); rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
}

func TestStorefront_CheckoutFlow(t *testing.T) {
	f := newTestRouter(t)
	h := sessionHeaders("sess-1")

	if rec := doRequest(f.router, "POST", "/store/demo/cart/items", `{"id":"p-1","name":"Mug","priceCents":1000}`, h); rec.Code != http.StatusOK {
		t.Fatalf("add item: %d", rec.Code)
	}

	// Advancing with an empty address fails and stays on step 1.
	rec := doRequest(f.router, "POST", "/store/demo/checkout/advance", "", h)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d body=%s", rec.Code, rec.Body.String())
	}

	address := `{"firstName":"Jana","lastName":"Nováková","email":"jana@example.com","phone":"+421900000000","street":"Hlavná 1","city":"Bratislava","zip":"81101"}`
	if rec := doRequest(f.router, "PUT", "/store/demo/checkout/address", address, h); rec.Code != http.StatusOK {
		t.Fatalf("address: %d body=%s", rec.Code, rec.Body.String())
	}
	if rec := doRequest(f.router, "POST", "/store/demo/checkout/advance", "", h); rec.Code != http.StatusOK {
		t.Fatalf("advance 1->2: %d body=%s", rec.Code, rec.Body.String())
	}

	if rec := doRequest(f.router, "PUT", "/store/demo/checkout/shipping-method", `{"id":"unknown"}`, h); rec.Code != http.StatusBadRequest {
		t.Fatalf("unknown method: expected 400, got %d", rec.Code)
	}
	if rec := doRequest(f.router, "PUT", "/store/demo/checkout/shipping-method", `{"id":"dpd"}`, h); rec.Code != http.StatusOK {
		t.Fatalf("shipping: %d body=%s", rec.Code, rec.Body.String())
	}
	if rec := doRequest(f.router, "POST", "/store/demo/checkout/advance", "", h); rec.Code != http.StatusOK {
		t.Fatalf("advance 2->3: %d", rec.Code)
	}

	if rec := doRequest(f.router, "PUT", "/store/demo/checkout/payment-method", `{"id":"cod"}`, h); rec.Code != http.StatusOK {
		t.Fatalf("payment: %d body=%s", rec.Code, rec.Body.String())
	}
	if rec := doRequest(f.router, "POST", "/store/demo/checkout/advance", "", h); rec.Code != http.StatusOK {
		t.Fatalf("advance 3->4: %d", rec.Code)
	}

	// Subtotal 10.00, DPD 4.90, COD fee 1.50.
	rec = doRequest(f.router, "GET", "/store/demo/checkout/quote", "", h)
	var quote struct {
		TotalCents   int64 `json:"totalCents"`
		FreeShipping bool  `json:"freeShipping"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &quote); err != nil {
		t.Fatalf("decode quote: %v", err)
	}
	if quote.TotalCents != 1640 || quote.FreeShipping {
		t.Fatalf("quote = %+v", quote)
	}

	// Submitting without agreed terms is refused.
	if rec := doRequest(f.router, "POST", "/store/demo/checkout/submit", "", h); rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("submit without terms: expected 422, got %d", rec.Code)
	}

	if rec := doRequest(f.router, "PUT", "/store/demo/checkout/terms", `{"agreeTerms":true}`, h); rec.Code != http.StatusOK {
		t.Fatalf("terms: %d", rec.Code)
	}
	rec = doRequest(f.router, "POST", "/store/demo/checkout/submit", "", h)
	if rec.Code != http.StatusCreated {
		t.Fatalf("submit: expected 201, got %d body=%s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"orderNumber":"ORD-`) {
		t.Fatalf("missing order number: %s", rec.Body.String())
	}
	if len(f.orders.orders) != 1 {
		t.Fatalf("orders persisted = %d, want 1", len(f.orders.orders))
	}

	// Submission cleared the cart and reset the wizard.
	if rec := doRequest(f.router, "GET", "/store/demo/cart", "", h); !strings.Contains(rec.Body.String(), `"count":0`) {
		t.Fatalf("cart not cleared: %s", rec.Body.String())
	}
	if rec := doRequest(f.router, "GET", "/store/demo/checkout", "", h); !strings.Contains(rec.Body.String(), `"step":1`) {
		t.Fatalf("wizard not reset: %s", rec.Body.String())
	}
}

func TestStorefront_MethodCatalogs(t *testing.T) {
	f := newTestRouter(t)
	h := sessionHeaders("sess-1")

	rec := doRequest(f.router, "GET", "/store/demo/checkout/shipping-methods", "", h)
	if rec.Code != http.StatusOK {
		t.Fatalf("shipping methods: %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `"id":"dpd"`) || strings.Contains(body, `"id":"gls"`) {
		t.Fatalf("unexpected shipping catalog: %s", body)
	}

	rec = doRequest(f.router, "GET", "/store/demo/checkout/payment-methods", "", h)
	body = rec.Body.String()
	if !strings.Contains(body, `"id":"cod"`) || strings.Contains(body, `"id":"comgate"`) {
		t.Fatalf("unexpected payment catalog: %s", body)
	}
}

func TestStorefront_ClearCartResetsCheckout(t *testing.T) {
	f := newTestRouter(t)
	h := sessionHeaders("sess-1")

	doRequest(f.router, "POST", "/store/demo/cart/items", `{"id":"p-1","name":"Mug","priceCents":1000}`, h)
	address := `{"firstName":"Jana","lastName":"Nováková","email":"jana@example.com","phone":"+421900000000","street":"Hlavná 1","city":"Bratislava","zip":"81101"}`
	doRequest(f.router, "PUT", "/store/demo/checkout/address", address, h)
	doRequest(f.router, "POST", "/store/demo/checkout/advance", "", h)

	if rec := doRequest(f.router, "DELETE", "/store/demo/cart", "", h); rec.Code != http.StatusOK {
		t.Fatalf("clear: %d", rec.Code)
	}
	if rec := doRequest(f.router, "GET", "/store/demo/checkout", "", h); !strings.Contains(rec.Body.String(), `"step":1`) {
		t.Fatalf("checkout should reset with the cart: %s", rec.Body.String())
	}
}

func TestStorefront_Products(t *testing.T) {
	f := newTestRouter(t)

	rec := doRequest(f.router, "GET", "/store/demo/products", "", nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"sku":"MUG"`) {
		t.Fatalf("list: %d body=%s", rec.Code, rec.Body.String())
	}
	if rec := doRequest(f.router, "GET", "/store/demo/products/p-404", "", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
