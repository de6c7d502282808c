package bot

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"github.com/ariefcatur/go-shop-bot/internal/catalog"
	"log"
	"strconv"
)

// EncodeStartPayload hides the customer id in a /start deep link payload.
func EncodeStartPayload(customerID int64) string {
	return base64.RawURLEncoding.EncodeToString([]byte(strconv.FormatInt(customerID, 10)))
}

// DecodeStartPayload returns 0 when the payload is not a customer id.
func DecodeStartPayload(payload string) int64 {
	raw, err := base64.RawURLEncoding.DecodeString(payload)
	if err != nil {
		return 0
	}
	id, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0
	}
	return id
}

// startLink is the link that opens the bot and registers the visitor as
// brought in by customerID.
func (r *Router) startLink(customerID int64) string {
	p := EncodeStartPayload(customerID)
	if r.BotName == "" {
		return "/start " + p
	}
	return fmt.Sprintf("https://t.me/%s?start=%s", r.BotName, p)
}

func (r *Router) getLink(ctx context.Context, from User) error {
	if err := r.say(ctx, from.ID, textReferralIntro); err != nil {
		return err
	}
	return r.say(ctx, from.ID, r.startLink(from.ID))
}

// referrer resolves a start payload to an existing customer other than
// the visitor.
func (r *Router) referrer(ctx context.Context, visitor int64, payload string) (*catalog.Customer, error) {
	id := DecodeStartPayload(payload)
	if id == 0 || id == visitor {
		return nil, nil
	}
	c, err := r.Customers.Customer(ctx, id)
	if errors.Is(err, catalog.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// notifyReferrer is best effort: the referrer may have blocked the bot.
func (r *Router) notifyReferrer(ctx context.Context, ref catalog.Customer, newcomer User) {
	if err := r.say(ctx, ref.ID, textReferred(displayName(User{Username: ref.Username, FullName: ref.FullName}), displayName(newcomer))); err != nil {
		log.Printf("bot: referral notice %d: %v", ref.ID, err)
	}
}
