package bot

import (
	"fmt"
	"github.com/ariefcatur/go-shop-bot/internal/basket"
	"github.com/ariefcatur/go-shop-bot/internal/catalog"
	"github.com/ariefcatur/go-shop-bot/internal/checkout"
	"github.com/ariefcatur/go-shop-bot/internal/events"
	"strings"
)

const (
	textHelp = "You can browse the catalog with /menu and open your basket with /basket.\n" +
		"Items stay in the basket for 3 hours after your last change.\n" +
		"Type the bot's name and the start of an item name in this chat to search. " +
		"/get_link gives you a link to invite friends."
	textFallback      = "I don't understand that. Use /menu to browse the catalog or /help."
	textError         = "Something went wrong. Please try again in a minute."
	textThrottled     = "Too many requests. Please slow down."
	textCatalog       = "Here is what we have:"
	textCatalogEmpty  = "Nothing is on sale right now. Please come back later."
	textItemGone      = "This item is no longer available. Back to the catalog:"
	textLineGone      = "This item is no longer available, it will be dropped at payment."
	textOnlyItem      = "This is the only item here."
	textOnePhoto      = "This item has only one photo."
	textBasketEmpty   = "Your basket is empty."
	textBasketExpired = "More than 3 hours have passed, your basket was already cleared."
	textBasketCleared = "Your basket is cleared."
	textBasketFull    = "The basket is full. Pay for it or remove something first."
	textOverCeiling   = "The total is above 1000000. Please remove something from the basket."
	textPayOrClear    = "If everything is right, press \"Pay\". Otherwise clear the basket or remove a line:"
	textStockConflict = "We received your payment, but an item sold out in the meantime. " +
		"An administrator will contact you about a refund."
	textReferralIntro    = "Here is your invitation link. Copy it or forward the next message to a friend:"
	textShareTitle       = "Send the shop link"
	textShareDescription = "Tap here to send a link to the shop"

	labelCatalog = "Catalog"
	labelBasket  = "Basket"
	labelBack    = "Back"
	labelPay     = "Pay"
	labelClear   = "Clear basket"
	labelPhotos  = "More photos"
)

func textHello(name string, created bool) string {
	if created {
		return fmt.Sprintf("Hi, %s!\n\nYou are registered now. Open the catalog to start shopping:", name)
	}
	return fmt.Sprintf("Hi, %s!\n\nWelcome back. Open the catalog to start shopping:", name)
}

func textReferred(referrer, newcomer string) string {
	return fmt.Sprintf("%s, %s has just joined the shop through your link.", referrer, newcomer)
}

func textShareLink(link string) string {
	return fmt.Sprintf("To start shopping open %s and press \"Start\".", link)
}

// ItemText is the customer card of an item.
func ItemText(it catalog.Item) string {
	return fmt.Sprintf("%q\nPrice: %d\n\nIn stock: %d pcs.\n\n%s", it.Name, it.Price, it.Stock, it.Description)
}

func textAdded(name string, e catalog.BasketEntry, qty int) string {
	return fmt.Sprintf("Added %q x%d to the basket. %d pcs. of this item in the basket now.", name, qty, e.Quantity)
}

func textStockLimit(l *basket.StockLimit) string {
	return fmt.Sprintf("Only %d pcs. of %q in stock and %d already in your basket.", l.Stock, l.Name, l.InBasket)
}

func textMaxQuantity(n int) string { return fmt.Sprintf("%d is all we have in stock.", n) }

// BasketText lists the basket the way the customer sees it.
func BasketText(name string, v basket.View) string {
	if v.Empty() {
		return textBasketEmpty
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s, your basket:\n", name)
	for i, l := range v.Lines {
		fmt.Fprintf(&b, "%d. ID %d - %q - %d x %d pcs. = %d\n", i+1, l.ItemID, l.Name, l.Price, l.Quantity, l.Sum())
	}
	fmt.Fprintf(&b, "\nTotal: %d\n\n%s", v.Total, textPayOrClear)
	return b.String()
}

// ChangesText explains what reconciliation did before an invoice.
func ChangesText(changes []checkout.Change) string {
	var clipped, dropped []string
	for _, c := range changes {
		switch c.Verdict {
		case checkout.LineClipped:
			clipped = append(clipped, fmt.Sprintf("- %q (ID %d): %d pcs. left", c.Name, c.ItemID, c.Quantity))
		case checkout.LineRejected:
			name := c.Name
			if name == "" {
				name = "item"
			}
			dropped = append(dropped, fmt.Sprintf("- %q (ID %d)", name, c.ItemID))
		}
	}
	var parts []string
	if len(clipped) > 0 {
		parts = append(parts, "Less stock is left than you asked for, quantities were reduced:\n"+strings.Join(clipped, "\n"))
	}
	if len(dropped) > 0 {
		parts = append(parts, "These items are no longer sold and were removed:\n"+strings.Join(dropped, "\n"))
	}
	return strings.Join(parts, "\n\n")
}

// ReceiptText thanks the customer for a settled payment.
func ReceiptText(r checkout.Receipt) string {
	var b strings.Builder
	b.WriteString("Thank you! Payment received.\n\n")
	for _, l := range r.Lines {
		fmt.Fprintf(&b, "%q x%d = %d\n", l.Name, l.Quantity, l.Price*l.Quantity)
	}
	if r.Shipping.Title != "" {
		fmt.Fprintf(&b, "Shipping: %s, %d\n", r.Shipping.Title, r.Shipping.Fee)
	}
	fmt.Fprintf(&b, "Paid: %d %s", r.Paid, r.Currency)
	return b.String()
}

// AdminOrderText is the notification admins get for a settled order.
func AdminOrderText(p events.OrderSettledPayload) string {
	var b strings.Builder
	fmt.Fprintf(&b, "New order from %s (ID %d)\n", p.CustomerName, p.CustomerID)
	if p.Phone != "" {
		fmt.Fprintf(&b, "Phone: %s\n", p.Phone)
	}
	if p.Email != "" {
		fmt.Fprintf(&b, "Email: %s\n", p.Email)
	}
	b.WriteString("\n")
	for _, l := range p.Lines {
		fmt.Fprintf(&b, "ID %d %q: %d x %d = %d, %d left\n", l.ItemID, l.Name, l.Quantity, l.Price, l.Price*l.Quantity, l.StockLeft)
	}
	fmt.Fprintf(&b, "\nGoods: %d\n", p.GoodsTotal)
	fmt.Fprintf(&b, "Shipping: %s, %d\n", orDash(p.Shipping.Title), p.Shipping.Fee)
	fmt.Fprintf(&b, "Address: %s\n", orDash(p.Shipping.Address))
	fmt.Fprintf(&b, "Paid: %d %s\n", p.Paid, p.Currency)
	fmt.Fprintf(&b, "Charge: %s / %s", p.ChargeID, p.ProviderChargeID)
	return b.String()
}

// AdminRejectedText warns admins about a payment that was refused or, for
// STOCK_CONFLICT, captured without stock.
func AdminRejectedText(p events.PaymentRejectedPayload) string {
	var b strings.Builder
	if p.Reason == "STOCK_CONFLICT" {
		fmt.Fprintf(&b, "Payment of customer %d was captured but the stock is gone. Refund needed.\n", p.CustomerID)
	} else {
		fmt.Fprintf(&b, "Payment of customer %d was refused: %s\n", p.CustomerID, p.Reason)
	}
	for _, l := range p.Lines {
		fmt.Fprintf(&b, "ID %d: %s", l.ItemID, l.Reason)
		if l.Reason == "SHORT_STOCK" {
			fmt.Fprintf(&b, " (%d wanted, %d left)", l.Required, l.Available)
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "Payload: %s\nAuthorized: %d, expected: %d", p.Payload, p.Authorized, p.Expected)
	return b.String()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
