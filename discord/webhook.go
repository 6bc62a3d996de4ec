package discord

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"golang.org/x/time/rate"

	"github.com/omegeangel1/project-2-sub000/store"
)

// OrderNotification is the payload relayed to the ops channel when an order
// comes in. There is no order-management backend; this webhook is it.
type OrderNotification struct {
	OrderCode string
	Type      store.OrderType
	PlanName  string
	Specs     string
	Price     string // formatted total
	Customer  store.CustomerInfo
	Addons    map[string]int // addon name -> quantity
}

type Notifier interface {
	NotifyOrder(ctx context.Context, n OrderNotification) error
}

// WebhookNotifier posts order embeds to a Discord webhook, throttled to stay
// under the webhook rate limit.
type WebhookNotifier struct {
	session *discordgo.Session
	id      string
	token   string
	limiter *rate.Limiter
}

func NewWebhookNotifier(webhookURL string) (*WebhookNotifier, error) {
	id, token, err := parseWebhookURL(webhookURL)
	if err != nil {
		return nil, err
	}
	// webhook execution needs no bot credential
	session, err := discordgo.New("")
	if err != nil {
		return nil, err
	}
	return &WebhookNotifier{
		session: session,
		id:      id,
		token:   token,
		limiter: rate.NewLimiter(rate.Every(2*time.Second), 5),
	}, nil
}

func (w *WebhookNotifier) NotifyOrder(ctx context.Context, n OrderNotification) error {
	if err := w.limiter.Wait(ctx); err != nil {
		return err
	}
	_, err := w.session.WebhookExecute(w.id, w.token, false, BuildOrderPayload(n))
	return err
}

func parseWebhookURL(raw string) (id, token string, err error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", "", fmt.Errorf("invalid webhook url: %w", err)
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	// .../webhooks/{id}/{token}
	for i, p := range parts {
		if p == "webhooks" && i+2 < len(parts) {
			return parts[i+1], parts[i+2], nil
		}
	}
	return "", "", fmt.Errorf("invalid webhook url: no webhooks/{id}/{token} path")
}

var embedColors = map[store.OrderType]int{
	store.OrderMinecraft: 0x2ecc71,
	store.OrderVPS:       0x3498db,
	store.OrderDomain:    0xe67e22,
}

// BuildOrderPayload lays the order out as one colored embed with titled
// fields: customer, address, plan/specs, pricing.
func BuildOrderPayload(n OrderNotification) *discordgo.WebhookParams {
	fields := []*discordgo.MessageEmbedField{
		{Name: "Order ID", Value: n.OrderCode, Inline: true},
		{Name: "Plan", Value: n.PlanName, Inline: true},
		{Name: "Price", Value: n.Price, Inline: true},
	}

	customer := n.Customer.Name
	if n.Customer.Email != "" {
		customer += "\n" + n.Customer.Email
	}
	if n.Customer.Phone != "" {
		customer += "\n" + n.Customer.Phone
	}
	if n.Customer.Discord != "" {
		customer += "\n@" + n.Customer.Discord
	}
	fields = append(fields, &discordgo.MessageEmbedField{Name: "Customer", Value: customer})

	if n.Customer.Address != "" {
		fields = append(fields, &discordgo.MessageEmbedField{Name: "Address", Value: n.Customer.Address})
	}
	if n.Specs != "" {
		fields = append(fields, &discordgo.MessageEmbedField{Name: "Specs", Value: n.Specs})
	}
	if len(n.Addons) > 0 {
		names := make([]string, 0, len(n.Addons))
		for name := range n.Addons {
			names = append(names, name)
		}
		sort.Strings(names)
		var b strings.Builder
		for _, name := range names {
			fmt.Fprintf(&b, "%s x%d\n", name, n.Addons[name])
		}
		fields = append(fields, &discordgo.MessageEmbedField{Name: "Addons", Value: strings.TrimSpace(b.String())})
	}

	embed := &discordgo.MessageEmbed{
		Title:     fmt.Sprintf("New %s order", n.Type),
		Color:     embedColors[n.Type],
		Fields:    fields,
		Timestamp: time.Now().Format(time.RFC3339),
	}
	return &discordgo.WebhookParams{
		Username: "Order Desk",
		Embeds:   []*discordgo.MessageEmbed{embed},
	}
}
