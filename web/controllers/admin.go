package controllers

import (
	"encoding/csv"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
	"golang.org/x/crypto/bcrypt"

	"github.com/omegeangel1/project-2-sub000/store"
	"github.com/omegeangel1/project-2-sub000/web/db"
)

// AdminLogin checks credentials against the admin database and mints a JWT.
func (ct *Controller) AdminLogin(c *gin.Context) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read body"})
		return
	}

	if ct.DB == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Admin database not configured"})
		return
	}

	var admin db.AdminUser
	ct.DB.First(&admin, "email = ?", body.Email)
	if admin.ID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid email or password"})
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(admin.Password), []byte(body.Password)); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid email or password"})
		return
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  admin.Email,
		"role": "admin",
		"exp":  time.Now().Add(24 * time.Hour).Unix(),
	})
	tokenString, err := token.SignedString([]byte(ct.Cfg.JWTSecret))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": tokenString})
}

func (ct *Controller) AdminListOrders(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"orders": ct.Store.GetAllOrders()})
}

// AdminConfirmOrder settles a pending order. On success the purchase is
// recorded, the archive updated, and the customer mailed.
func (ct *Controller) AdminConfirmOrder(c *gin.Context) {
	code := c.Param("orderId")
	if !ct.Store.ConfirmOrder(code) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found or not pending"})
		return
	}

	order, _ := ct.Store.GetOrder(code)
	ct.archiveOrder(order)

	if ct.Mailer.Enabled() && order.CustomerInfo.Email != "" {
		go func() {
			if err := ct.Mailer.SendOrderConfirmed(order.CustomerInfo.Email, order.OrderCode, order.PlanName, order.Price); err != nil {
				log.Printf("email: order %s: %v", order.OrderCode, err)
			}
		}()
	}

	c.JSON(http.StatusOK, gin.H{"message": "Order confirmed"})
}

func (ct *Controller) AdminCancelOrder(c *gin.Context) {
	code := c.Param("orderId")
	if !ct.Store.CancelOrder(code) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found or not pending"})
		return
	}
	if order, ok := ct.Store.GetOrder(code); ok {
		ct.archiveOrder(order)
	}
	c.JSON(http.StatusOK, gin.H{"message": "Order cancelled"})
}

// AdminResetOrder forces an order back to pending. Explicit override for
// mistakes; not part of the normal transition set.
func (ct *Controller) AdminResetOrder(c *gin.Context) {
	code := c.Param("orderId")
	if !ct.Store.ResetOrder(code) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}
	if order, ok := ct.Store.GetOrder(code); ok {
		ct.archiveOrder(order)
	}
	c.JSON(http.StatusOK, gin.H{"message": "Order reset to pending"})
}

func (ct *Controller) AdminDeleteOrder(c *gin.Context) {
	if !ct.Store.DeleteOrder(c.Param("orderId")) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Order deleted"})
}

// AdminExportOrders streams all orders as CSV.
func (ct *Controller) AdminExportOrders(c *gin.Context) {
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", `attachment; filename="orders.csv"`)

	w := csv.NewWriter(c.Writer)
	w.Write([]string{"orderId", "type", "planName", "price", "status", "customerName", "customerEmail", "notifyFailed", "createdAt"})
	for _, o := range ct.Store.GetAllOrders() {
		failed := ""
		if o.NotifyFailed {
			failed = "yes"
		}
		w.Write([]string{
			o.OrderCode,
			string(o.Type),
			o.PlanName,
			o.Price,
			string(o.Status),
			o.CustomerInfo.Name,
			o.CustomerInfo.Email,
			failed,
			o.CreatedAt.Format(time.RFC3339),
		})
	}
	w.Flush()
}

func (ct *Controller) AdminAnalytics(c *gin.Context) {
	c.JSON(http.StatusOK, ct.Store.GetAnalytics())
}

// AdminHealth reports host load alongside store counters.
func (ct *Controller) AdminHealth(c *gin.Context) {
	cpuUsage, err := cpu.Percent(time.Second, false)
	if err != nil || len(cpuUsage) == 0 {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read CPU usage"})
		return
	}
	memInfo, err := mem.VirtualMemory()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read memory usage"})
		return
	}

	hostname, _ := os.Hostname()
	c.JSON(http.StatusOK, gin.H{
		"hostname":            hostname,
		"cpu_usage":           cpuUsage[0],
		"memory_total":        memInfo.Total,
		"memory_used":         memInfo.Used,
		"memory_used_percent": memInfo.UsedPercent,
		"db_connected":        ct.DB != nil,
	})
}

// --- promotions ---

func (ct *Controller) AdminCreateOffer(c *gin.Context) {
	var req struct {
		Type               string `json:"type"`
		PlanName           string `json:"planName"`
		OriginalPrice      string `json:"originalPrice"`
		DiscountPrice      string `json:"discountPrice"`
		DiscountPercentage int    `json:"discountPercentage"`
	}
	if err := c.BindJSON(&req); err != nil || req.PlanName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	offer := ct.Store.CreateSpecialOffer(store.SpecialOffer{
		Type:               store.OrderType(req.Type),
		PlanName:           req.PlanName,
		OriginalPrice:      req.OriginalPrice,
		DiscountPrice:      req.DiscountPrice,
		DiscountPercentage: req.DiscountPercentage,
		IsActive:           true,
	})
	c.JSON(http.StatusOK, gin.H{"offer": offer})
}

func (ct *Controller) AdminToggleOffer(c *gin.Context) {
	if !ct.Store.ToggleSpecialOffer(c.Param("id")) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Offer not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Offer toggled"})
}

func (ct *Controller) AdminDeleteOffer(c *gin.Context) {
	if !ct.Store.DeleteSpecialOffer(c.Param("id")) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Offer not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Offer deleted"})
}

func (ct *Controller) AdminListCoupons(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"coupons": ct.Store.GetAllCoupons()})
}

func (ct *Controller) AdminCreateCoupon(c *gin.Context) {
	var req struct {
		Code          string `json:"code"`
		DiscountType  string `json:"discountType"`
		DiscountValue int    `json:"discountValue"`
		UsageLimit    int    `json:"usageLimit"`
		ExpiryDate    string `json:"expiryDate"` // RFC3339
	}
	if err := c.BindJSON(&req); err != nil || req.Code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	dt := store.DiscountType(req.DiscountType)
	if dt != store.DiscountPercentage && dt != store.DiscountFixed {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid discount type"})
		return
	}
	expiry, err := time.Parse(time.RFC3339, req.ExpiryDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid expiration date"})
		return
	}

	coupon := ct.Store.CreateCoupon(store.Coupon{
		Code:          req.Code,
		DiscountType:  dt,
		DiscountValue: req.DiscountValue,
		UsageLimit:    req.UsageLimit,
		ExpiryDate:    expiry,
		IsActive:      true,
	})
	c.JSON(http.StatusOK, gin.H{"coupon": coupon})
}
