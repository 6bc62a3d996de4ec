package store

import "time"

type MembershipType string

const (
	MembershipNormal  MembershipType = "normal"
	MembershipPremium MembershipType = "premium"
)

type OrderType string

const (
	OrderMinecraft OrderType = "minecraft"
	OrderVPS       OrderType = "vps"
	OrderDomain    OrderType = "domain"
)

type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusConfirmed OrderStatus = "confirmed"
	StatusCancelled OrderStatus = "cancelled"
)

type User struct {
	ID             string         `json:"id"`
	DiscordID      string         `json:"discordId"`
	Username       string         `json:"username"`
	Email          string         `json:"email"`
	MembershipType MembershipType `json:"membershipType"`
	Purchases      []Purchase     `json:"purchases"`
	CreatedAt      time.Time      `json:"createdAt"`
}

// Purchase is a denormalized snapshot of a confirmed order, appended to the
// owning user. Hosting renews monthly, domains yearly.
type Purchase struct {
	OrderCode   string    `json:"orderId"`
	Type        OrderType `json:"type"`
	PlanName    string    `json:"planName"`
	Price       string    `json:"price"`
	PurchasedAt time.Time `json:"purchasedAt"`
	RenewalDate time.Time `json:"renewalDate"`
}

type CustomerInfo struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
	Discord string `json:"discord,omitempty"`
}

// Order keeps two identifiers: ID is the storage key, OrderCode is the short
// human-facing code shown to the customer and used in support flows.
type Order struct {
	ID           string       `json:"id"`
	OrderCode    string       `json:"orderId"`
	UserID       string       `json:"userId"`
	Type         OrderType    `json:"type"`
	PlanName     string       `json:"planName"`
	Price        string       `json:"price"`
	Status       OrderStatus  `json:"status"`
	CustomerInfo CustomerInfo `json:"customerInfo"`
	NotifyFailed bool         `json:"notifyFailed,omitempty"`
	CreatedAt    time.Time    `json:"createdAt"`
}

type SpecialOffer struct {
	ID                 string    `json:"id"`
	Type               OrderType `json:"type"`
	PlanName           string    `json:"planName"`
	OriginalPrice      string    `json:"originalPrice"`
	DiscountPrice      string    `json:"discountPrice"`
	DiscountPercentage int       `json:"discountPercentage"`
	IsActive           bool      `json:"isActive"`
	CreatedAt          time.Time `json:"createdAt"`
}

type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

type Coupon struct {
	ID            string       `json:"id"`
	Code          string       `json:"code"`
	DiscountType  DiscountType `json:"discountType"`
	DiscountValue int          `json:"discountValue"`
	UsageLimit    int          `json:"usageLimit"`
	UsedCount     int          `json:"usedCount"`
	ExpiryDate    time.Time    `json:"expiryDate"`
	IsActive      bool         `json:"isActive"`
	CreatedAt     time.Time    `json:"createdAt"`
}

type Plan struct {
	ID       string    `json:"id"`
	Type     OrderType `json:"type"`
	Category string    `json:"category"`
	Name     string    `json:"name"`
	Price    string    `json:"price"`
	Specs    string    `json:"specs"`
	IsActive bool      `json:"isActive"`
}

type Analytics struct {
	TotalUsers      int `json:"totalUsers"`
	PremiumUsers    int `json:"premiumUsers"`
	NormalUsers     int `json:"normalUsers"`
	TotalOrders     int `json:"totalOrders"`
	ConfirmedOrders int `json:"confirmedOrders"`
	PendingOrders   int `json:"pendingOrders"`
	ActiveCoupons   int `json:"activeCoupons"`
	ActiveOffers    int `json:"activeOffers"`
}
