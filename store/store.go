// Package store keeps the reseller's working set (users, orders, special
// offers, coupons, plan catalog) in memory and writes each collection to its
// own JSON file after every mutation. It is the only place order status is
// tracked; the mysql archive behind the admin panel is written separately and
// is the record to consult across machines. A single Store must not be shared
// across processes.
package store

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	usersFile   = "users.json"
	ordersFile  = "orders.json"
	offersFile  = "offers.json"
	couponsFile = "coupons.json"
	plansFile   = "plans.json"
)

type Store struct {
	mu  sync.Mutex
	dir string

	users   map[string]*User
	orders  map[string]*Order
	offers  map[string]*SpecialOffer
	coupons map[string]*Coupon
	plans   map[string]*Plan
}

// Open loads all collections from dir, creating it if needed. A corrupt
// collection file is logged and replaced by an empty collection rather than
// failing startup. The plan catalog is seeded on first run only.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("store: %w", err)
	}

	s := &Store{
		dir:     dir,
		users:   make(map[string]*User),
		orders:  make(map[string]*Order),
		offers:  make(map[string]*SpecialOffer),
		coupons: make(map[string]*Coupon),
		plans:   make(map[string]*Plan),
	}

	loadCollection(dir, usersFile, &s.users)
	loadCollection(dir, ordersFile, &s.orders)
	loadCollection(dir, offersFile, &s.offers)
	loadCollection(dir, couponsFile, &s.coupons)
	loadCollection(dir, plansFile, &s.plans)

	if len(s.plans) == 0 {
		s.seedPlans()
		s.persistLocked()
	}

	return s, nil
}

func loadCollection[T any](dir, name string, into *map[string]*T) {
	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("store: read %s: %v", name, err)
		}
		return
	}
	m := make(map[string]*T)
	if err := json.Unmarshal(data, &m); err != nil {
		log.Printf("store: %s is corrupt, starting with empty collection: %v", name, err)
		return
	}
	*into = m
}

// persistLocked serializes the full map set. Callers must hold s.mu (or be
// the only goroutine with access, as in Open).
func (s *Store) persistLocked() {
	write := func(name string, v any) {
		data, err := json.Marshal(v)
		if err != nil {
			log.Printf("store: marshal %s: %v", name, err)
			return
		}
		if err := os.WriteFile(filepath.Join(s.dir, name), data, 0o644); err != nil {
			log.Printf("store: write %s: %v", name, err)
		}
	}
	write(usersFile, s.users)
	write(ordersFile, s.orders)
	write(offersFile, s.offers)
	write(couponsFile, s.coupons)
	write(plansFile, s.plans)
}

func (s *Store) seedPlans() {
	seed := []Plan{
		{Type: OrderMinecraft, Category: "budget", Name: "Dirt", Price: "₹99/month", Specs: "2GB RAM, 1 vCPU, 10GB SSD"},
		{Type: OrderMinecraft, Category: "budget", Name: "Stone", Price: "₹199/month", Specs: "4GB RAM, 2 vCPU, 25GB SSD"},
		{Type: OrderMinecraft, Category: "premium", Name: "Diamond", Price: "₹499/month", Specs: "8GB RAM, 4 vCPU, 50GB NVMe"},
		{Type: OrderVPS, Category: "standard", Name: "VPS Starter", Price: "₹349/month", Specs: "2GB RAM, 2 vCPU, 40GB SSD"},
		{Type: OrderVPS, Category: "standard", Name: "VPS Pro", Price: "₹699/month", Specs: "4GB RAM, 4 vCPU, 80GB SSD"},
		{Type: OrderDomain, Category: "tld", Name: ".com Domain", Price: "₹999/year", Specs: "Free WHOIS privacy, DNS management"},
		{Type: OrderDomain, Category: "tld", Name: ".in Domain", Price: "₹599/year", Specs: "Free WHOIS privacy, DNS management"},
	}
	for i := range seed {
		p := seed[i]
		p.ID = uuid.NewString()
		p.IsActive = true
		s.plans[p.ID] = &p
	}
}

// --- users ---

// CreateUser does not deduplicate by Discord id; check GetUserByDiscordID
// first.
func (s *Store) CreateUser(discordID, username, email string) User {
	s.mu.Lock()
	defer s.mu.Unlock()

	u := &User{
		ID:             uuid.NewString(),
		DiscordID:      discordID,
		Username:       username,
		Email:          email,
		MembershipType: MembershipNormal,
		CreatedAt:      time.Now(),
	}
	s.users[u.ID] = u
	s.persistLocked()
	return copyUser(u)
}

func (s *Store) GetUser(id string) (User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return User{}, false
	}
	return copyUser(u), true
}

// GetUserByDiscordID is a linear scan; fine at this scale.
func (s *Store) GetUserByDiscordID(discordID string) (User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.DiscordID == discordID {
			return copyUser(u), true
		}
	}
	return User{}, false
}

func (s *Store) SetMembership(userID string, m MembershipType) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return false
	}
	u.MembershipType = m
	s.persistLocked()
	return true
}

func (s *Store) GetAllUsers() []User {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, copyUser(u))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// --- orders ---

// CreateOrder allocates the storage id and timestamp. The order code and the
// initial pending status come from the caller.
func (s *Store) CreateOrder(o Order) Order {
	s.mu.Lock()
	defer s.mu.Unlock()

	o.ID = uuid.NewString()
	o.CreatedAt = time.Now()
	if o.Status == "" {
		o.Status = StatusPending
	}
	cp := o
	s.orders[o.ID] = &cp
	s.persistLocked()
	return o
}

// GetOrder looks an order up by its human-facing code.
func (s *Store) GetOrder(orderCode string) (Order, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o := s.findByCodeLocked(orderCode)
	if o == nil {
		return Order{}, false
	}
	return *o, true
}

func (s *Store) findByCodeLocked(orderCode string) *Order {
	for _, o := range s.orders {
		if o.OrderCode == orderCode {
			return o
		}
	}
	return nil
}

// ConfirmOrder moves a pending order to confirmed and appends the purchase
// snapshot to the owning user. Confirming an unknown or already-settled
// order returns false and mutates nothing, so a double confirm cannot append
// a second purchase.
func (s *Store) ConfirmOrder(orderCode string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	o := s.findByCodeLocked(orderCode)
	if o == nil || o.Status != StatusPending {
		return false
	}
	o.Status = StatusConfirmed

	if u, ok := s.users[o.UserID]; ok {
		u.Purchases = append(u.Purchases, Purchase{
			OrderCode:   o.OrderCode,
			Type:        o.Type,
			PlanName:    o.PlanName,
			Price:       o.Price,
			PurchasedAt: time.Now(),
			RenewalDate: renewalDate(o.Type, o.CreatedAt),
		})
	}

	s.persistLocked()
	return true
}

func renewalDate(t OrderType, from time.Time) time.Time {
	if t == OrderDomain {
		return from.AddDate(1, 0, 0)
	}
	return from.AddDate(0, 1, 0)
}

// CancelOrder is the other one-way transition out of pending.
func (s *Store) CancelOrder(orderCode string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	o := s.findByCodeLocked(orderCode)
	if o == nil || o.Status != StatusPending {
		return false
	}
	o.Status = StatusCancelled
	s.persistLocked()
	return true
}

// ResetOrder forces an order back to pending. This is an explicit admin
// override, not a normal transition; an earlier purchase snapshot stays on
// the user.
func (s *Store) ResetOrder(orderCode string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	o := s.findByCodeLocked(orderCode)
	if o == nil {
		return false
	}
	o.Status = StatusPending
	s.persistLocked()
	return true
}

func (s *Store) DeleteOrder(orderCode string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	o := s.findByCodeLocked(orderCode)
	if o == nil {
		return false
	}
	delete(s.orders, o.ID)
	s.persistLocked()
	return true
}

// MarkNotifyFailed flags an order whose webhook notification did not go out,
// so undelivered notifications stay visible in the admin panel.
func (s *Store) MarkNotifyFailed(orderCode string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if o := s.findByCodeLocked(orderCode); o != nil {
		o.NotifyFailed = true
		s.persistLocked()
	}
}

func (s *Store) GetAllOrders() []Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Order, 0, len(s.orders))
	for _, o := range s.orders {
		out = append(out, *o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// --- special offers ---

func (s *Store) CreateSpecialOffer(o SpecialOffer) SpecialOffer {
	s.mu.Lock()
	defer s.mu.Unlock()

	o.ID = uuid.NewString()
	o.CreatedAt = time.Now()
	cp := o
	s.offers[o.ID] = &cp
	s.persistLocked()
	return o
}

func (s *Store) ToggleSpecialOffer(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.offers[id]
	if !ok {
		return false
	}
	o.IsActive = !o.IsActive
	s.persistLocked()
	return true
}

func (s *Store) DeleteSpecialOffer(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.offers[id]; !ok {
		return false
	}
	delete(s.offers, id)
	s.persistLocked()
	return true
}

func (s *Store) GetAllSpecialOffers() []SpecialOffer {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]SpecialOffer, 0, len(s.offers))
	for _, o := range s.offers {
		out = append(out, *o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// --- coupons ---

func (s *Store) CreateCoupon(c Coupon) Coupon {
	s.mu.Lock()
	defer s.mu.Unlock()

	c.ID = uuid.NewString()
	c.UsedCount = 0
	c.CreatedAt = time.Now()
	cp := c
	s.coupons[c.ID] = &cp
	s.persistLocked()
	return c
}

// ValidateCoupon reports whether code is redeemable right now: active, under
// its usage limit, and not expired.
func (s *Store) ValidateCoupon(code string) (Coupon, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.findCouponLocked(code)
	if c == nil || !couponValidLocked(c) {
		return Coupon{}, false
	}
	return *c, true
}

// UseCoupon validates and increments the use count in one critical section,
// so the count can never pass the limit.
func (s *Store) UseCoupon(code string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.findCouponLocked(code)
	if c == nil || !couponValidLocked(c) {
		return false
	}
	c.UsedCount++
	s.persistLocked()
	return true
}

func (s *Store) findCouponLocked(code string) *Coupon {
	for _, c := range s.coupons {
		if c.Code == code {
			return c
		}
	}
	return nil
}

func couponValidLocked(c *Coupon) bool {
	return c.IsActive && c.UsedCount < c.UsageLimit && c.ExpiryDate.After(time.Now())
}

func (s *Store) GetAllCoupons() []Coupon {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Coupon, 0, len(s.coupons))
	for _, c := range s.coupons {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// --- plans ---

func (s *Store) GetAllPlans() []Plan {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Plan, 0, len(s.plans))
	for _, p := range s.plans {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// --- aggregates ---

// GetAnalytics recomputes everything by full scan at call time. O(n), which
// is fine for a small reseller's dataset.
func (s *Store) GetAnalytics() Analytics {
	s.mu.Lock()
	defer s.mu.Unlock()

	var a Analytics
	a.TotalUsers = len(s.users)
	for _, u := range s.users {
		if u.MembershipType == MembershipPremium {
			a.PremiumUsers++
		} else {
			a.NormalUsers++
		}
	}
	a.TotalOrders = len(s.orders)
	for _, o := range s.orders {
		switch o.Status {
		case StatusConfirmed:
			a.ConfirmedOrders++
		case StatusPending:
			a.PendingOrders++
		}
	}
	for _, c := range s.coupons {
		if couponValidLocked(c) {
			a.ActiveCoupons++
		}
	}
	for _, o := range s.offers {
		if o.IsActive {
			a.ActiveOffers++
		}
	}
	return a
}

// Flush rewrites every collection file. It does not synchronize with any
// other process or machine; the old system's "forceSync" did nothing more.
func (s *Store) Flush() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.persistLocked()
}

func copyUser(u *User) User {
	cp := *u
	cp.Purchases = append([]Purchase(nil), u.Purchases...)
	return cp
}
