// Package bot turns inbound messenger updates into calls on the shop
// engines and sends the answers back.
package bot

import (
	"github.com/ariefcatur/go-shop-bot/internal/checkout"
	"github.com/ariefcatur/go-shop-bot/internal/wizard"
)

type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username,omitempty"`
	FullName string `json:"full_name,omitempty"`
}

// Message is a private chat message. The gateway delivers an album as one
// message carrying every photo.
type Message struct {
	Text   string   `json:"text,omitempty"`
	Photos []string `json:"photos,omitempty"`
	Album  bool     `json:"album,omitempty"`
	// Other is set for attachments the bot does not read: documents,
	// stickers, albums of videos.
	Other   bool                        `json:"other,omitempty"`
	Payment *checkout.SuccessfulPayment `json:"successful_payment,omitempty"`
}

type Callback struct {
	ID   string `json:"id"`
	Data string `json:"data"`
}

// ChatSender marks an inline query typed in the private chat with the bot.
const ChatSender = "sender"

// InlineQuery is typed after the bot's @name in any chat. Offset is the
// NextOffset of the previous page, empty for the first one.
type InlineQuery struct {
	ID       string `json:"id"`
	Query    string `json:"query"`
	Offset   string `json:"offset"`
	ChatType string `json:"chat_type,omitempty"`
}

// Update carries exactly one of Message, Callback, InlineQuery,
// ShippingQuery or PreCheckoutQuery.
type Update struct {
	ID               string                     `json:"update_id"`
	From             User                       `json:"from"`
	Message          *Message                   `json:"message,omitempty"`
	Callback         *Callback                  `json:"callback_query,omitempty"`
	InlineQuery      *InlineQuery               `json:"inline_query,omitempty"`
	ShippingQuery    *checkout.ShippingQuery    `json:"shipping_query,omitempty"`
	PreCheckoutQuery *checkout.PreCheckoutQuery `json:"pre_checkout_query,omitempty"`
}

func (u Update) Valid() bool {
	n := 0
	for _, set := range []bool{u.Message != nil, u.Callback != nil, u.InlineQuery != nil, u.ShippingQuery != nil, u.PreCheckoutQuery != nil} {
		if set {
			n++
		}
	}
	return n == 1 && u.From.ID != 0
}

// Input classifies the message for the admin wizard.
func (m Message) Input() wizard.Input {
	switch {
	case m.Other && m.Album:
		return wizard.Input{Kind: wizard.KindMediaGroup}
	case m.Other:
		return wizard.Input{Kind: wizard.KindOther}
	case m.Album || len(m.Photos) > 1:
		return wizard.PhotoGroup(m.Photos...)
	case len(m.Photos) == 1:
		return wizard.Photo(m.Photos[0])
	}
	return wizard.Text(m.Text)
}
