package bot

import (
	"context"
	"errors"
	"github.com/ariefcatur/go-shop-bot/internal/basket"
	"github.com/ariefcatur/go-shop-bot/internal/catalog"
	"github.com/ariefcatur/go-shop-bot/internal/checkout"
	"github.com/ariefcatur/go-shop-bot/internal/transport"
	"github.com/ariefcatur/go-shop-bot/internal/wizard"
	"log"
	"strings"
	"time"
)

// Router is the single Handler behind the dispatcher.
type Router struct {
	Admins    map[int64]bool
	Wizard    *wizard.Engine
	Catalog   catalog.Repository
	Customers catalog.CustomerRepository
	Basket    *basket.Service
	Checkout  *checkout.Engine
	Sender    transport.Sender
	Currency  string
	// BotName is the bot's @username, used in referral links.
	BotName string
	Now     func() time.Time
}

var _ Handler = (*Router)(nil)

func (r *Router) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now().UTC()
}

// Handle never returns domain errors: they are answered in the chat. An
// infrastructure error is logged, answered with a generic text and returned.
func (r *Router) Handle(ctx context.Context, u Update) error {
	var err error
	switch {
	case u.ShippingQuery != nil:
		err = r.onShipping(ctx, *u.ShippingQuery)
	case u.PreCheckoutQuery != nil:
		err = r.onPreCheckout(ctx, *u.PreCheckoutQuery)
	case u.Callback != nil:
		err = r.onCallback(ctx, u.From, u.Callback.Data)
	case u.InlineQuery != nil:
		err = r.onInline(ctx, u.From, *u.InlineQuery)
	case u.Message != nil && u.Message.Payment != nil:
		err = r.onPayment(ctx, *u.Message.Payment)
	case u.Message != nil:
		err = r.onMessage(ctx, u.From, *u.Message)
	}
	if err != nil {
		log.Printf("bot: update %s from %d: %v", u.ID, u.From.ID, err)
		if serr := r.say(ctx, u.From.ID, textError); serr != nil {
			log.Printf("bot: answer %d: %v", u.From.ID, serr)
		}
	}
	return err
}

func (r *Router) send(ctx context.Context, m transport.Message) error {
	return r.Sender.Send(ctx, m)
}

func (r *Router) say(ctx context.Context, chatID int64, text string) error {
	return r.send(ctx, transport.Message{ChatID: chatID, Text: text})
}

func (r *Router) onMessage(ctx context.Context, from User, m Message) error {
	cmd, arg, _ := strings.Cut(strings.TrimSpace(m.Text), " ")
	switch cmd {
	case "/start":
		return r.start(ctx, from, strings.TrimSpace(arg))
	case "/get_link":
		return r.getLink(ctx, from)
	}
	switch strings.TrimSpace(m.Text) {
	case "/help":
		return r.say(ctx, from.ID, textHelp)
	case "/menu":
		return r.showCategories(ctx, from.ID)
	case "/basket":
		return r.showBasket(ctx, from)
	case "/admin":
		if r.Admins[from.ID] {
			reply, err := r.Wizard.Start(ctx, from.ID)
			if err != nil {
				return err
			}
			return r.send(ctx, wizardMessage(from.ID, reply))
		}
	}

	if r.Admins[from.ID] {
		reply, err := r.Wizard.Handle(ctx, from.ID, m.Input())
		if err == nil {
			return r.send(ctx, wizardMessage(from.ID, reply))
		}
		if !errors.Is(err, wizard.ErrNoSession) {
			return err
		}
	}
	return r.say(ctx, from.ID, textFallback)
}

// wizardMessage lays the buttons out two per row.
func wizardMessage(chatID int64, reply wizard.Reply) transport.Message {
	m := transport.Message{ChatID: chatID, Text: reply.Text, Photos: reply.Photos}
	if len(reply.Buttons) == 0 {
		m.RemoveKeyboard = true
		return m
	}
	for i := 0; i < len(reply.Buttons); i += 2 {
		row := []transport.Button{{Text: reply.Buttons[i]}}
		if i+1 < len(reply.Buttons) {
			row = append(row, transport.Button{Text: reply.Buttons[i+1]})
		}
		m.Keyboard = append(m.Keyboard, row)
	}
	return m
}

// start registers the customer. A payload naming another customer records
// the referral on first registration and tells the referrer.
func (r *Router) start(ctx context.Context, from User, payload string) error {
	ref, err := r.referrer(ctx, from.ID, payload)
	if err != nil {
		return err
	}
	c := catalog.Customer{ID: from.ID, Username: from.Username, FullName: from.FullName, FirstSeen: r.now()}
	if ref != nil {
		c.ReferrerID = ref.ID
	}
	created, err := r.Customers.UpsertCustomer(ctx, c)
	if err != nil {
		return err
	}
	if created && ref != nil {
		r.notifyReferrer(ctx, *ref, from)
	}
	return r.send(ctx, transport.Message{
		ChatID:   from.ID,
		Text:     textHello(displayName(from), created),
		Keyboard: catalogKeyboard(),
	})
}

func (r *Router) onShipping(ctx context.Context, q checkout.ShippingQuery) error {
	return r.Sender.AnswerShipping(ctx, transport.NewShippingAnswer(q.ID, r.Checkout.Shipping.Answer(q)))
}

func (r *Router) onPreCheckout(ctx context.Context, q checkout.PreCheckoutQuery) error {
	res, err := r.Checkout.PreCheckout(ctx, q)
	if err != nil {
		// refuse rather than leave the provider hanging
		if aerr := r.Sender.AnswerPreCheckout(ctx, transport.PreCheckoutAnswer{QueryID: q.ID, Error: textError}); aerr != nil {
			log.Printf("bot: answer pre-checkout %s: %v", q.ID, aerr)
		}
		return err
	}
	a := transport.PreCheckoutAnswer{QueryID: q.ID, OK: res.OK}
	if !res.OK {
		a.Error = res.Text
	}
	if err := r.Sender.AnswerPreCheckout(ctx, a); err != nil {
		return err
	}
	if res.OK {
		return r.say(ctx, q.CustomerID, res.Text)
	}
	return nil
}

func (r *Router) onPayment(ctx context.Context, sp checkout.SuccessfulPayment) error {
	rc, err := r.Checkout.ConfirmPayment(ctx, sp)
	if errors.Is(err, checkout.ErrInsufficientStock) {
		return r.say(ctx, sp.CustomerID, textStockConflict)
	}
	if err != nil {
		return err
	}
	if rc.Duplicate {
		log.Printf("bot: duplicate payment %s from %d ignored", sp.ChargeID, sp.CustomerID)
		return nil
	}
	return r.send(ctx, transport.Message{
		ChatID:   sp.CustomerID,
		Text:     ReceiptText(rc),
		Keyboard: [][]transport.Button{{{Text: labelCatalog, Data: cbMenu}}},
	})
}

// Throttled tells a flooding user to slow down. Wire it to
// Dispatcher.OnThrottled.
func (r *Router) Throttled(ctx context.Context, userID int64) {
	if err := r.say(ctx, userID, textThrottled); err != nil {
		log.Printf("bot: throttle notice %d: %v", userID, err)
	}
}
