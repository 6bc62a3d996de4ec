package main

import (
	"log"
	"path/filepath"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/omegeangel1/project-2-sub000/config"
	"github.com/omegeangel1/project-2-sub000/discord"
	"github.com/omegeangel1/project-2-sub000/store"
	"github.com/omegeangel1/project-2-sub000/web/controllers"
	"github.com/omegeangel1/project-2-sub000/web/db"
	"github.com/omegeangel1/project-2-sub000/web/email"
	"github.com/omegeangel1/project-2-sub000/web/middleware"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalln(err)
	}

	st, err := store.Open(cfg.DataDir)
	if err != nil {
		log.Fatalln("store:", err)
	}
	sessions := store.OpenSession(filepath.Join(cfg.DataDir, "session.json"))

	var gdb *gorm.DB
	if cfg.DBDSN != "" {
		gdb, err = db.Connect(cfg.DBDSN)
		if err != nil {
			log.Fatalln("db:", err)
		}
		if err := db.EnsureAdmin(gdb, cfg.AdminEmail, cfg.AdminPassword); err != nil {
			log.Fatalln("db: bootstrap admin:", err)
		}
	} else {
		log.Println("DB not configured, admin login disabled")
	}

	var notifier discord.Notifier
	if cfg.DiscordWebhookURL != "" {
		notifier, err = discord.NewWebhookNotifier(cfg.DiscordWebhookURL)
		if err != nil {
			log.Fatalln("webhook:", err)
		}
	} else {
		log.Println("DISCORD_WEBHOOK_URL not set, order notifications disabled")
	}

	ct := &controllers.Controller{
		Cfg:      cfg,
		Store:    st,
		Sessions: sessions,
		Discord: &discord.Client{
			ClientID:     cfg.DiscordClientID,
			ClientSecret: cfg.DiscordClientSecret,
			RedirectURI:  cfg.DiscordRedirectURI,
			BotToken:     cfg.DiscordBotToken,
			APIBase:      cfg.DiscordAPIBase,
		},
		Notifier: notifier,
		DB:       gdb,
		Mailer: email.Mailer{
			Server:   cfg.SMTPServer,
			Port:     cfg.SMTPPort,
			User:     cfg.SMTPUser,
			Pass:     cfg.SMTPPass,
			FromAddr: cfg.FromAddr,
			FromName: cfg.FromName,
		},
	}

	r := gin.Default()
	r.Use(cors.Default())

	limiter := middleware.NewRateLimiter(15, 15) // 15 requests/min/IP
	limiter.StartCleanup(10 * time.Minute)
	rl := limiter.Middleware()

	r.POST("/auth/discord", rl, ct.ExchangeCode)
	r.GET("/auth/me", rl, ct.Me)
	r.POST("/auth/logout", rl, ct.Logout)

	r.GET("/plans", rl, ct.Plans)
	r.GET("/offers", rl, ct.Offers)
	r.POST("/coupons/validate", rl, ct.ValidateCoupon)
	r.POST("/orders", rl, ct.SubmitOrder)
	r.GET("/orders/:orderId", rl, ct.GetOrder)
	r.GET("/invite/qr", rl, ct.InviteQR)

	r.POST("/admin/login", rl, ct.AdminLogin)

	admin := r.Group("/admin", middleware.RequireAdmin(cfg.JWTSecret))
	admin.GET("/orders", ct.AdminListOrders)
	admin.POST("/orders/:orderId/confirm", ct.AdminConfirmOrder)
	admin.POST("/orders/:orderId/cancel", ct.AdminCancelOrder)
	admin.POST("/orders/:orderId/reset", ct.AdminResetOrder)
	admin.DELETE("/orders/:orderId", ct.AdminDeleteOrder)
	admin.GET("/export", ct.AdminExportOrders)
	admin.GET("/analytics", ct.AdminAnalytics)
	admin.GET("/health", ct.AdminHealth)
	admin.POST("/offers", ct.AdminCreateOffer)
	admin.POST("/offers/:id/toggle", ct.AdminToggleOffer)
	admin.DELETE("/offers/:id", ct.AdminDeleteOffer)
	admin.GET("/coupons", ct.AdminListCoupons)
	admin.POST("/coupons", ct.AdminCreateCoupon)

	r.Run(":" + cfg.Port)
}
