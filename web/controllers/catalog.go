package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/omegeangel1/project-2-sub000/store"
)

// Plans lists active catalog entries, optionally filtered by type and
// category.
func (ct *Controller) Plans(c *gin.Context) {
	typ := c.Query("type")
	category := c.Query("category")

	plans := []store.Plan{}
	for _, p := range ct.Store.GetAllPlans() {
		if !p.IsActive {
			continue
		}
		if typ != "" && string(p.Type) != typ {
			continue
		}
		if category != "" && p.Category != category {
			continue
		}
		plans = append(plans, p)
	}
	c.JSON(http.StatusOK, gin.H{"plans": plans})
}

// Offers lists active special offers.
func (ct *Controller) Offers(c *gin.Context) {
	offers := []store.SpecialOffer{}
	for _, o := range ct.Store.GetAllSpecialOffers() {
		if o.IsActive {
			offers = append(offers, o)
		}
	}
	c.JSON(http.StatusOK, gin.H{"offers": offers})
}

// ValidateCoupon checks a code without consuming a use.
func (ct *Controller) ValidateCoupon(c *gin.Context) {
	var req struct {
		Code string `json:"code"`
	}
	if err := c.BindJSON(&req); err != nil || req.Code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing coupon code"})
		return
	}

	coupon, ok := ct.Store.ValidateCoupon(req.Code)
	if !ok {
		c.JSON(http.StatusOK, gin.H{"valid": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"valid":         true,
		"discountType":  coupon.DiscountType,
		"discountValue": coupon.DiscountValue,
	})
}

// InviteQR renders the guild invite link as a QR code, the manual fallback
// when auto-join fails.
func (ct *Controller) InviteQR(c *gin.Context) {
	if ct.Cfg.DiscordInviteURL == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "No invite link configured"})
		return
	}
	png, err := qrcode.Encode(ct.Cfg.DiscordInviteURL, qrcode.Medium, 256)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate QR code"})
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}
