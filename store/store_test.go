package store_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/omegeangel1/project-2-sub000/store"
)

func openStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func snapshot(t *testing.T, s *store.Store) string {
	t.Helper()
	data, err := json.Marshal(map[string]any{
		"users":   s.GetAllUsers(),
		"orders":  s.GetAllOrders(),
		"offers":  s.GetAllSpecialOffers(),
		"coupons": s.GetAllCoupons(),
		"plans":   s.GetAllPlans(),
	})
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func TestSeedPlansOnFirstRunOnly(t *testing.T) {
	dir := t.TempDir()
	s, err := store.Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	plans := s.GetAllPlans()
	if len(plans) == 0 {
		t.Fatal("expected seeded plan catalog")
	}

	s2, err := store.Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	if got := len(s2.GetAllPlans()); got != len(plans) {
		t.Errorf("reopen changed plan count: %d != %d", got, len(plans))
	}
}

func TestConfirmOrderUnknownCode(t *testing.T) {
	s := openStore(t)
	s.CreateUser("111", "steve", "steve@example.com")

	before := snapshot(t, s)
	if s.ConfirmOrder("DOM000000XXXX") {
		t.Error("confirming an unknown order should return false")
	}
	if after := snapshot(t, s); after != before {
		t.Error("store mutated by a failed confirm")
	}
}

func TestConfirmOrderAppendsPurchase(t *testing.T) {
	s := openStore(t)
	u := s.CreateUser("222", "alex", "alex@example.com")

	ord := s.CreateOrder(store.Order{
		OrderCode: store.GenerateOrderCode("DOM"),
		UserID:    u.ID,
		Type:      store.OrderDomain,
		PlanName:  "example.com",
		Price:     "₹999/year",
		Status:    store.StatusPending,
		CustomerInfo: store.CustomerInfo{
			Name:  "Alex",
			Email: "alex@example.com",
		},
	})

	if !s.ConfirmOrder(ord.OrderCode) {
		t.Fatal("confirm failed")
	}

	got, ok := s.GetOrder(ord.OrderCode)
	if !ok || got.Status != store.StatusConfirmed {
		t.Fatalf("order not confirmed: %+v", got)
	}

	user, _ := s.GetUser(u.ID)
	if len(user.Purchases) != 1 {
		t.Fatalf("expected 1 purchase, got %d", len(user.Purchases))
	}
	p := user.Purchases[0]
	if !p.RenewalDate.Equal(ord.CreatedAt.AddDate(1, 0, 0)) {
		t.Errorf("domain renewal should be +1 year, got %v (created %v)", p.RenewalDate, ord.CreatedAt)
	}
}

func TestConfirmOrderMonthlyRenewal(t *testing.T) {
	s := openStore(t)
	u := s.CreateUser("333", "notch", "notch@example.com")

	for _, typ := range []store.OrderType{store.OrderMinecraft, store.OrderVPS} {
		ord := s.CreateOrder(store.Order{
			OrderCode: store.GenerateOrderCode(store.OrderCodePrefix(typ)),
			UserID:    u.ID,
			Type:      typ,
			PlanName:  "Stone",
			Price:     "₹199/month",
			Status:    store.StatusPending,
		})
		if !s.ConfirmOrder(ord.OrderCode) {
			t.Fatalf("confirm %s failed", typ)
		}
		user, _ := s.GetUser(u.ID)
		p := user.Purchases[len(user.Purchases)-1]
		if !p.RenewalDate.Equal(ord.CreatedAt.AddDate(0, 1, 0)) {
			t.Errorf("%s renewal should be +1 month, got %v", typ, p.RenewalDate)
		}
	}
}

func TestConfirmOrderIdempotent(t *testing.T) {
	s := openStore(t)
	u := s.CreateUser("444", "herobrine", "h@example.com")
	ord := s.CreateOrder(store.Order{
		OrderCode: store.GenerateOrderCode("MIN"),
		UserID:    u.ID,
		Type:      store.OrderMinecraft,
		PlanName:  "Dirt",
		Price:     "₹99/month",
		Status:    store.StatusPending,
	})

	if !s.ConfirmOrder(ord.OrderCode) {
		t.Fatal("first confirm failed")
	}
	if s.ConfirmOrder(ord.OrderCode) {
		t.Error("second confirm should be a no-op returning false")
	}
	user, _ := s.GetUser(u.ID)
	if len(user.Purchases) != 1 {
		t.Errorf("double confirm appended %d purchases", len(user.Purchases))
	}
}

func TestOrderTransitions(t *testing.T) {
	s := openStore(t)
	ord := s.CreateOrder(store.Order{
		OrderCode: store.GenerateOrderCode("VPS"),
		Type:      store.OrderVPS,
		PlanName:  "VPS Starter",
		Price:     "₹349/month",
		Status:    store.StatusPending,
	})

	if !s.CancelOrder(ord.OrderCode) {
		t.Fatal("cancel failed")
	}
	if s.CancelOrder(ord.OrderCode) {
		t.Error("cancelling a cancelled order should fail")
	}
	if s.ConfirmOrder(ord.OrderCode) {
		t.Error("confirming a cancelled order should fail")
	}

	// admin override back to pending, then the normal path works again
	if !s.ResetOrder(ord.OrderCode) {
		t.Fatal("reset failed")
	}
	if !s.ConfirmOrder(ord.OrderCode) {
		t.Error("confirm after reset failed")
	}

	if !s.DeleteOrder(ord.OrderCode) {
		t.Fatal("delete failed")
	}
	if _, ok := s.GetOrder(ord.OrderCode); ok {
		t.Error("order still present after delete")
	}
}

func TestCouponValidation(t *testing.T) {
	s := openStore(t)

	valid := s.CreateCoupon(store.Coupon{
		Code:          "SAVE10",
		DiscountType:  store.DiscountPercentage,
		DiscountValue: 10,
		UsageLimit:    2,
		ExpiryDate:    time.Now().Add(24 * time.Hour),
		IsActive:      true,
	})
	s.CreateCoupon(store.Coupon{
		Code:          "EXPIRED",
		DiscountType:  store.DiscountFixed,
		DiscountValue: 50,
		UsageLimit:    10,
		ExpiryDate:    time.Now().Add(-time.Hour),
		IsActive:      true,
	})
	s.CreateCoupon(store.Coupon{
		Code:          "DISABLED",
		DiscountType:  store.DiscountFixed,
		DiscountValue: 50,
		UsageLimit:    10,
		ExpiryDate:    time.Now().Add(24 * time.Hour),
		IsActive:      false,
	})

	if _, ok := s.ValidateCoupon("SAVE10"); !ok {
		t.Error("SAVE10 should validate")
	}
	if _, ok := s.ValidateCoupon("EXPIRED"); ok {
		t.Error("expired coupon should not validate")
	}
	if _, ok := s.ValidateCoupon("DISABLED"); ok {
		t.Error("inactive coupon should not validate")
	}
	if _, ok := s.ValidateCoupon("NOSUCH"); ok {
		t.Error("unknown coupon should not validate")
	}

	// consume up to the limit, then fail
	if !s.UseCoupon(valid.Code) || !s.UseCoupon(valid.Code) {
		t.Fatal("use within limit failed")
	}
	if s.UseCoupon(valid.Code) {
		t.Error("use past the limit should fail")
	}
	if _, ok := s.ValidateCoupon(valid.Code); ok {
		t.Error("exhausted coupon should not validate")
	}
}

func TestSpecialOfferLifecycle(t *testing.T) {
	s := openStore(t)
	o := s.CreateSpecialOffer(store.SpecialOffer{
		Type:               store.OrderMinecraft,
		PlanName:           "Diamond",
		OriginalPrice:      "₹499/month",
		DiscountPrice:      "₹399/month",
		DiscountPercentage: 20,
		IsActive:           true,
	})

	if !s.ToggleSpecialOffer(o.ID) {
		t.Fatal("toggle failed")
	}
	offers := s.GetAllSpecialOffers()
	if len(offers) != 1 || offers[0].IsActive {
		t.Errorf("toggle did not flip isActive: %+v", offers)
	}
	if !s.DeleteSpecialOffer(o.ID) {
		t.Fatal("delete failed")
	}
	if s.DeleteSpecialOffer(o.ID) {
		t.Error("double delete should fail")
	}
}

func TestAnalytics(t *testing.T) {
	s := openStore(t)
	u := s.CreateUser("555", "a", "a@example.com")
	s.CreateUser("556", "b", "b@example.com")
	s.SetMembership(u.ID, store.MembershipPremium)

	c1 := s.CreateOrder(store.Order{OrderCode: store.GenerateOrderCode("MIN"), UserID: u.ID, Type: store.OrderMinecraft, Status: store.StatusPending})
	s.CreateOrder(store.Order{OrderCode: store.GenerateOrderCode("VPS"), UserID: u.ID, Type: store.OrderVPS, Status: store.StatusPending})
	s.ConfirmOrder(c1.OrderCode)

	s.CreateCoupon(store.Coupon{Code: "A", UsageLimit: 1, ExpiryDate: time.Now().Add(time.Hour), IsActive: true})
	s.CreateSpecialOffer(store.SpecialOffer{PlanName: "Dirt", IsActive: true})

	a := s.GetAnalytics()
	if a.TotalUsers != 2 || a.PremiumUsers != 1 || a.NormalUsers != 1 {
		t.Errorf("user counts wrong: %+v", a)
	}
	if a.TotalOrders != 2 || a.ConfirmedOrders != 1 || a.PendingOrders != 1 {
		t.Errorf("order counts wrong: %+v", a)
	}
	if a.ActiveCoupons != 1 || a.ActiveOffers != 1 {
		t.Errorf("promo counts wrong: %+v", a)
	}
}

func TestPersistenceRoundTrip(t *testing.T) {
	dir := t.TempDir()
	s, err := store.Open(dir)
	if err != nil {
		t.Fatal(err)
	}

	u := s.CreateUser("777", "roundtrip", "rt@example.com")
	ord := s.CreateOrder(store.Order{
		OrderCode: store.GenerateOrderCode("DOM"),
		UserID:    u.ID,
		Type:      store.OrderDomain,
		PlanName:  "example.com",
		Price:     "₹999/year",
		Status:    store.StatusPending,
	})
	s.ConfirmOrder(ord.OrderCode)
	s.CreateCoupon(store.Coupon{Code: "RT", UsageLimit: 5, ExpiryDate: time.Now().Add(time.Hour), IsActive: true})
	s.CreateSpecialOffer(store.SpecialOffer{PlanName: "Stone", IsActive: true})
	s.Flush()

	reloaded, err := store.Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	if snapshot(t, reloaded) != snapshot(t, s) {
		t.Error("reloaded store differs from original")
	}
}
