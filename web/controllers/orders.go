package controllers

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/omegeangel1/project-2-sub000/discord"
	"github.com/omegeangel1/project-2-sub000/pricing"
	"github.com/omegeangel1/project-2-sub000/store"
)

const notifyTimeout = 15 * time.Second

type addonSelection struct {
	Name      string `json:"name"`
	UnitPrice string `json:"unitPrice"` // display price per unit, e.g. "₹30"
	Quantity  int    `json:"quantity"`
}

type orderRequest struct {
	Type     string             `json:"type"`
	PlanName string             `json:"planName"`
	Price    string             `json:"price"` // display price of the selected plan
	Specs    string             `json:"specs"`
	Coupon   string             `json:"coupon"`
	Addons   []addonSelection   `json:"addons"`
	Customer store.CustomerInfo `json:"customer"`
}

// SubmitOrder validates the form, prices it, records a pending order and
// relays the webhook notification. Webhook delivery failure does not fail
// the submission: the customer still gets their order id, the failure is
// logged and flagged on the order.
func (ct *Controller) SubmitOrder(c *gin.Context) {
	var req orderRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read body"})
		return
	}

	typ := store.OrderType(req.Type)
	switch typ {
	case store.OrderMinecraft, store.OrderVPS, store.OrderDomain:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order type"})
		return
	}
	if req.PlanName == "" || req.Price == "" || req.Customer.Name == "" || req.Customer.Email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields"})
		return
	}

	total, err := pricing.Parse(req.Price)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid plan price"})
		return
	}
	addons := make(map[string]int, len(req.Addons))
	for _, a := range req.Addons {
		if a.Quantity <= 0 {
			continue
		}
		unit, err := pricing.Parse(a.UnitPrice)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid addon price for " + a.Name})
			return
		}
		total = total.Add(unit.Amount * a.Quantity)
		addons[a.Name] = a.Quantity
	}

	if req.Coupon != "" {
		coupon, ok := ct.Store.ValidateCoupon(req.Coupon)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid or expired coupon"})
			return
		}
		total = applyDiscount(total, coupon)
		if !ct.Store.UseCoupon(req.Coupon) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid or expired coupon"})
			return
		}
	}

	var userID string
	if st := ct.Sessions.GetAuthState(); st.IsAuthenticated && st.User != nil {
		if u, ok := ct.Store.GetUserByDiscordID(st.User.ID); ok {
			userID = u.ID
		}
	}

	order := ct.Store.CreateOrder(store.Order{
		OrderCode:    store.GenerateOrderCode(store.OrderCodePrefix(typ)),
		UserID:       userID,
		Type:         typ,
		PlanName:     req.PlanName,
		Price:        total.String(),
		Status:       store.StatusPending,
		CustomerInfo: req.Customer,
	})

	if ct.Notifier != nil {
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()
		err := ct.Notifier.NotifyOrder(ctx, discord.OrderNotification{
			OrderCode: order.OrderCode,
			Type:      order.Type,
			PlanName:  order.PlanName,
			Specs:     req.Specs,
			Price:     order.Price,
			Customer:  order.CustomerInfo,
			Addons:    addons,
		})
		if err != nil {
			// invisible to the customer, so it must at least be loud here
			log.Printf("webhook: order %s not delivered: %v", order.OrderCode, err)
			ct.Store.MarkNotifyFailed(order.OrderCode)
			order.NotifyFailed = true
		}
	}

	ct.archiveOrder(order)

	c.JSON(http.StatusOK, gin.H{
		"orderId": order.OrderCode,
		"status":  order.Status,
		"total":   order.Price,
	})
}

// GetOrder looks up an order by its human-facing code.
func (ct *Controller) GetOrder(c *gin.Context) {
	order, ok := ct.Store.GetOrder(c.Param("orderId"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"orderId":   order.OrderCode,
		"type":      order.Type,
		"planName":  order.PlanName,
		"price":     order.Price,
		"status":    order.Status,
		"createdAt": order.CreatedAt,
	})
}

func applyDiscount(p pricing.Price, c store.Coupon) pricing.Price {
	switch c.DiscountType {
	case store.DiscountPercentage:
		p.Amount -= p.Amount * c.DiscountValue / 100
	case store.DiscountFixed:
		p.Amount -= c.DiscountValue
	}
	if p.Amount < 0 {
		p.Amount = 0
	}
	return p
}
