package controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/omegeangel1/project-2-sub000/config"
	"github.com/omegeangel1/project-2-sub000/discord"
	"github.com/omegeangel1/project-2-sub000/store"
	"github.com/omegeangel1/project-2-sub000/web/controllers"
)

type fakeNotifier struct {
	sent []discord.OrderNotification
	err  error
}

func (f *fakeNotifier) NotifyOrder(ctx context.Context, n discord.OrderNotification) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, n)
	return nil
}

func newTestController(t *testing.T) (*controllers.Controller, *fakeNotifier) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dir := t.TempDir()
	st, err := store.Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	notifier := &fakeNotifier{}
	ct := &controllers.Controller{
		Cfg:      &config.Config{JWTSecret: "test-secret", DiscordGuildID: "guild1"},
		Store:    st,
		Sessions: store.OpenSession(filepath.Join(dir, "session.json")),
		Notifier: notifier,
	}
	return ct, notifier
}

func orderRouter(ct *controllers.Controller) *gin.Engine {
	r := gin.New()
	r.POST("/orders", ct.SubmitOrder)
	r.GET("/orders/:orderId", ct.GetOrder)
	r.GET("/plans", ct.Plans)
	r.POST("/coupons/validate", ct.ValidateCoupon)
	return r
}

func postJSON(t *testing.T, r *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestSubmitDomainOrder(t *testing.T) {
	ct, notifier := newTestController(t)
	r := orderRouter(ct)

	w := postJSON(t, r, "/orders", map[string]any{
		"type":     "domain",
		"planName": "example.com",
		"price":    "₹999/year",
		"customer": map[string]string{
			"name":  "Alex",
			"email": "alex@example.com",
		},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		OrderID string `json:"orderId"`
		Status  string `json:"status"`
		Total   string `json:"total"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(resp.OrderID, "DOM") || len(resp.OrderID) != 13 {
		t.Errorf("order id = %q", resp.OrderID)
	}
	if resp.Status != "pending" || resp.Total != "₹999/year" {
		t.Errorf("unexpected response: %+v", resp)
	}

	if len(notifier.sent) != 1 {
		t.Fatalf("expected one webhook notification, got %d", len(notifier.sent))
	}
	n := notifier.sent[0]
	if n.PlanName != "example.com" || n.Price != "₹999/year" || n.OrderCode != resp.OrderID {
		t.Errorf("notification mismatch: %+v", n)
	}

	// the order is queryable by the code the customer saw
	req := httptest.NewRequest(http.MethodGet, "/orders/"+resp.OrderID, nil)
	w2 := httptest.NewRecorder()
	r.ServeHTTP(w2, req)
	if w2.Code != http.StatusOK {
		t.Errorf("lookup status %d", w2.Code)
	}
}

func TestSubmitOrderWithAddons(t *testing.T) {
	ct, notifier := newTestController(t)
	r := orderRouter(ct)

	w := postJSON(t, r, "/orders", map[string]any{
		"type":     "minecraft",
		"planName": "Stone",
		"price":    "₹199/month",
		"addons": []map[string]any{
			{"name": "Extra backup", "unitPrice": "₹30", "quantity": 2},
		},
		"customer": map[string]string{"name": "Steve", "email": "steve@example.com"},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Total string `json:"total"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Total != "₹259/month" {
		t.Errorf("total = %q, want ₹259/month", resp.Total)
	}
	if notifier.sent[0].Addons["Extra backup"] != 2 {
		t.Errorf("addons not relayed: %+v", notifier.sent[0].Addons)
	}
}

func TestSubmitOrderAppliesCoupon(t *testing.T) {
	ct, _ := newTestController(t)
	ct.Store.CreateCoupon(store.Coupon{
		Code:          "SAVE10",
		DiscountType:  store.DiscountPercentage,
		DiscountValue: 10,
		UsageLimit:    1,
		ExpiryDate:    time.Now().Add(time.Hour),
		IsActive:      true,
	})
	r := orderRouter(ct)

	w := postJSON(t, r, "/orders", map[string]any{
		"type":     "vps",
		"planName": "VPS Starter",
		"price":    "₹349/month",
		"coupon":   "SAVE10",
		"customer": map[string]string{"name": "A", "email": "a@example.com"},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Total string `json:"total"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Total != "₹315/month" {
		t.Errorf("total = %q, want ₹315/month", resp.Total)
	}

	// the single use is consumed
	w2 := postJSON(t, r, "/coupons/validate", map[string]string{"code": "SAVE10"})
	if !strings.Contains(w2.Body.String(), `"valid":false`) {
		t.Errorf("coupon should be exhausted: %s", w2.Body.String())
	}
}

func TestSubmitOrderValidation(t *testing.T) {
	ct, notifier := newTestController(t)
	r := orderRouter(ct)

	cases := []map[string]any{
		{"type": "yacht", "planName": "x", "price": "₹1", "customer": map[string]string{"name": "a", "email": "b"}},
		{"type": "vps", "planName": "", "price": "₹1", "customer": map[string]string{"name": "a", "email": "b"}},
		{"type": "vps", "planName": "x", "price": "₹1", "customer": map[string]string{"name": "", "email": "b"}},
		{"type": "vps", "planName": "x", "price": "free", "customer": map[string]string{"name": "a", "email": "b"}},
		{"type": "vps", "planName": "x", "price": "₹1", "coupon": "NOSUCH", "customer": map[string]string{"name": "a", "email": "b"}},
	}
	for i, body := range cases {
		if w := postJSON(t, r, "/orders", body); w.Code != http.StatusBadRequest {
			t.Errorf("case %d: status %d, want 400", i, w.Code)
		}
	}
	if len(notifier.sent) != 0 {
		t.Error("rejected orders must not notify")
	}
	if len(ct.Store.GetAllOrders()) != 0 {
		t.Error("rejected orders must not be stored")
	}
}

func TestSubmitOrderSurvivesWebhookFailure(t *testing.T) {
	ct, notifier := newTestController(t)
	notifier.err = errors.New("discord is down")
	r := orderRouter(ct)

	w := postJSON(t, r, "/orders", map[string]any{
		"type":     "domain",
		"planName": "example.com",
		"price":    "₹999/year",
		"customer": map[string]string{"name": "Alex", "email": "alex@example.com"},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("submission must succeed despite webhook failure, got %d", w.Code)
	}

	orders := ct.Store.GetAllOrders()
	if len(orders) != 1 || !orders[0].NotifyFailed {
		t.Errorf("order should be flagged notifyFailed: %+v", orders)
	}
}

func TestGetOrderNotFound(t *testing.T) {
	ct, _ := newTestController(t)
	r := orderRouter(ct)

	req := httptest.NewRequest(http.MethodGet, "/orders/DOM000000XXXX", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("status %d, want 404", w.Code)
	}
}

func TestPlansFilter(t *testing.T) {
	ct, _ := newTestController(t)
	r := orderRouter(ct)

	req := httptest.NewRequest(http.MethodGet, "/plans?type=domain", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d", w.Code)
	}
	var resp struct {
		Plans []store.Plan `json:"plans"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Plans) == 0 {
		t.Fatal("seeded domain plans missing")
	}
	for _, p := range resp.Plans {
		if p.Type != store.OrderDomain {
			t.Errorf("filter leaked %s plan %q", p.Type, p.Name)
		}
	}
}
