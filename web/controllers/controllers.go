// Package controllers holds the gin handlers. One Controller is constructed
// at process start with every service it needs; there are no package-level
// singletons.
package controllers

import (
	"errors"
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/omegeangel1/project-2-sub000/config"
	"github.com/omegeangel1/project-2-sub000/discord"
	"github.com/omegeangel1/project-2-sub000/store"
	"github.com/omegeangel1/project-2-sub000/web/db"
	"github.com/omegeangel1/project-2-sub000/web/email"
)

type Controller struct {
	Cfg      *config.Config
	Store    *store.Store
	Sessions *store.SessionStore
	Discord  *discord.Client
	Notifier discord.Notifier // nil when no webhook is configured
	DB       *gorm.DB         // nil when no DSN is configured
	Mailer   email.Mailer
}

// archiveOrder mirrors an order into the admin database. Best-effort: the
// local store stays authoritative for the request, failures are only logged.
func (ct *Controller) archiveOrder(o store.Order) {
	if ct.DB == nil {
		return
	}

	rec := db.ArchivedOrder{
		OrderCode:     o.OrderCode,
		UserID:        o.UserID,
		Type:          string(o.Type),
		PlanName:      o.PlanName,
		Price:         o.Price,
		Status:        string(o.Status),
		CustomerName:  o.CustomerInfo.Name,
		CustomerEmail: o.CustomerInfo.Email,
		NotifyFailed:  o.NotifyFailed,
	}
	if o.Status == store.StatusConfirmed {
		now := time.Now()
		rec.ConfirmedAt = &now
	}

	var existing db.ArchivedOrder
	err := ct.DB.Where("order_code = ?", o.OrderCode).First(&existing).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		err = ct.DB.Create(&rec).Error
	case err == nil:
		existing.Status = rec.Status
		existing.NotifyFailed = rec.NotifyFailed
		if existing.ConfirmedAt == nil {
			existing.ConfirmedAt = rec.ConfirmedAt
		}
		err = ct.DB.Save(&existing).Error
	}
	if err != nil {
		log.Printf("archive: order %s: %v", o.OrderCode, err)
	}
}
