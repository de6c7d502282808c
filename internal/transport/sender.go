// Package transport is the outbound side of the messenger: what the bot
// sends to chats and to the payment provider.
package transport

import (
	"context"
	"github.com/ariefcatur/go-shop-bot/internal/checkout"
)

type Button struct {
	Text string `json:"text"`
	// Data turns the button into an inline one carrying callback data.
	Data string `json:"data,omitempty"`
}

type Message struct {
	ChatID int64    `json:"chat_id"`
	Text   string   `json:"text,omitempty"`
	Photos []string `json:"photos,omitempty"`
	// Keyboard rows. Nil leaves the current keyboard, RemoveKeyboard drops it.
	Keyboard       [][]Button `json:"keyboard,omitempty"`
	RemoveKeyboard bool       `json:"remove_keyboard,omitempty"`
}

type LabeledPrice struct {
	Label  string `json:"label"`
	Amount int    `json:"amount"` // minor units
}

type Invoice struct {
	ChatID       int64          `json:"chat_id"`
	Title        string         `json:"title"`
	Description  string         `json:"description"`
	Payload      string         `json:"payload"`
	Currency     string         `json:"currency"`
	PhotoURL     string         `json:"photo_url,omitempty"`
	Prices       []LabeledPrice `json:"prices"`
	NeedName     bool           `json:"need_name"`
	NeedPhone    bool           `json:"need_phone_number"`
	NeedEmail    bool           `json:"need_email"`
	NeedShipping bool           `json:"need_shipping_address"`
	// Flexible makes the provider send a shipping query.
	Flexible bool `json:"is_flexible"`
}

type ShippingOption struct {
	ID     string         `json:"id"`
	Title  string         `json:"title"`
	Prices []LabeledPrice `json:"prices"`
}

type ShippingAnswer struct {
	QueryID string           `json:"shipping_query_id"`
	OK      bool             `json:"ok"`
	Options []ShippingOption `json:"shipping_options,omitempty"`
	Error   string           `json:"error_message,omitempty"`
}

type PreCheckoutAnswer struct {
	QueryID string `json:"pre_checkout_query_id"`
	OK      bool   `json:"ok"`
	Error   string `json:"error_message,omitempty"`
}

// InlineResult is one article in an inline search answer. Choosing it posts
// Text into the chat, with Button under it.
type InlineResult struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	ThumbURL    string `json:"thumb_url,omitempty"`
	Text        string `json:"message_text"`
	Button      Button `json:"button"`
}

type InlineAnswer struct {
	QueryID string         `json:"inline_query_id"`
	Results []InlineResult `json:"results"`
	// NextOffset is empty on the last page.
	NextOffset string `json:"next_offset"`
	CacheTime  int    `json:"cache_time"`
}

type Sender interface {
	Send(ctx context.Context, m Message) error
	SendInvoice(ctx context.Context, inv Invoice) error
	AnswerShipping(ctx context.Context, a ShippingAnswer) error
	AnswerPreCheckout(ctx context.Context, a PreCheckoutAnswer) error
	AnswerInline(ctx context.Context, a InlineAnswer) error
}

// NewInvoice converts a checkout invoice into the provider request. Amounts
// are sent in minor units; contact and shipping details are always asked.
func NewInvoice(chatID int64, currency string, inv checkout.Invoice) Invoice {
	out := Invoice{
		ChatID:       chatID,
		Title:        inv.Title,
		Description:  inv.Description,
		Payload:      inv.Payload,
		Currency:     currency,
		PhotoURL:     inv.PhotoURL,
		NeedName:     true,
		NeedPhone:    true,
		NeedEmail:    true,
		NeedShipping: true,
		Flexible:     true,
	}
	for _, l := range inv.Lines {
		out.Prices = append(out.Prices, LabeledPrice{Label: l.Label, Amount: l.Amount * checkout.MinorUnits})
	}
	return out
}

func NewShippingAnswer(queryID string, a checkout.ShippingAnswer) ShippingAnswer {
	out := ShippingAnswer{QueryID: queryID, OK: a.OK, Error: a.Error}
	for _, o := range a.Options {
		opt := ShippingOption{ID: o.ID, Title: o.Title}
		for _, p := range o.Prices {
			opt.Prices = append(opt.Prices, LabeledPrice{Label: p.Label, Amount: p.Amount * checkout.MinorUnits})
		}
		out.Options = append(out.Options, opt)
	}
	return out
}
