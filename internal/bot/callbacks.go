package bot

import (
	"context"
	"errors"
	"fmt"
	"github.com/ariefcatur/go-shop-bot/internal/basket"
	"github.com/ariefcatur/go-shop-bot/internal/catalog"
	"github.com/ariefcatur/go-shop-bot/internal/checkout"
	"github.com/ariefcatur/go-shop-bot/internal/transport"
	"strconv"
	"strings"
)

// Callback data is "action" or "action:n:n...".
const (
	cbMenu     = "menu"
	cbCategory = "cat"    // cat:category
	cbSubcat   = "sub"    // sub:category:subcategory
	cbItem     = "item"   // item:id:qty
	cbNext     = "next"   // next:id
	cbPrev     = "prev"   // prev:id
	cbPhotos   = "photos" // photos:id
	cbAdd      = "add"    // add:id:qty
	cbBuy      = "buy"    // buy:id:qty
	cbBasket   = "basket"
	cbRemove   = "del" // del:id
	cbQuantity = "qty" // qty:id:qty, basket line
	cbClear    = "clear"
	cbPay      = "pay"
)

func cb(action string, args ...int) string {
	var b strings.Builder
	b.WriteString(action)
	for _, a := range args {
		b.WriteByte(':')
		b.WriteString(strconv.Itoa(a))
	}
	return b.String()
}

func parseCallback(data string) (string, []int, error) {
	parts := strings.Split(data, ":")
	args := make([]int, 0, len(parts)-1)
	for _, p := range parts[1:] {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return "", nil, fmt.Errorf("bot: bad callback %q", data)
		}
		args = append(args, n)
	}
	return parts[0], args, nil
}

var callbackArity = map[string]int{
	cbMenu: 0, cbCategory: 1, cbSubcat: 2, cbItem: 2, cbNext: 1, cbPrev: 1, cbPhotos: 1,
	cbAdd: 2, cbBuy: 2, cbBasket: 0, cbRemove: 1, cbQuantity: 2, cbClear: 0, cbPay: 0,
}

func (r *Router) onCallback(ctx context.Context, from User, data string) error {
	action, args, err := parseCallback(data)
	if n, known := callbackArity[action]; err != nil || !known || n != len(args) {
		// stale keyboards from an older release end up here
		return r.say(ctx, from.ID, textFallback)
	}
	uid := from.ID
	switch action {
	case cbMenu:
		return r.showCategories(ctx, uid)
	case cbCategory:
		return r.showCategory(ctx, uid, args[0])
	case cbSubcat:
		return r.showItems(ctx, uid, args[0], args[1])
	case cbItem:
		return r.showItem(ctx, uid, args[0], args[1])
	case cbNext:
		return r.scroll(ctx, uid, args[0], 1)
	case cbPrev:
		return r.scroll(ctx, uid, args[0], -1)
	case cbPhotos:
		return r.showPhotos(ctx, uid, args[0])
	case cbAdd:
		return r.addToBasket(ctx, uid, args[0], args[1])
	case cbBuy:
		return r.buyNow(ctx, uid, args[0], args[1])
	case cbBasket:
		return r.showBasket(ctx, from)
	case cbRemove:
		v, err := r.Basket.Remove(ctx, uid, args[0])
		if err != nil {
			return err
		}
		return r.sendBasket(ctx, from, v)
	case cbQuantity:
		return r.setBasketQuantity(ctx, from, args[0], args[1])
	case cbClear:
		if err := r.Basket.Clear(ctx, uid); err != nil {
			return err
		}
		return r.send(ctx, transport.Message{ChatID: uid, Text: textBasketCleared, Keyboard: catalogKeyboard()})
	case cbPay:
		return r.payBasket(ctx, from)
	}
	return nil
}

func catalogKeyboard() [][]transport.Button {
	return [][]transport.Button{{{Text: labelCatalog, Data: cbMenu}, {Text: labelBasket, Data: cbBasket}}}
}

func (r *Router) showCategories(ctx context.Context, uid int64) error {
	cats, err := r.Catalog.Categories(ctx, catalog.ScopeAvailable)
	if err != nil {
		return err
	}
	if len(cats) == 0 {
		return r.say(ctx, uid, textCatalogEmpty)
	}
	m := transport.Message{ChatID: uid, Text: textCatalog}
	for _, c := range cats {
		m.Keyboard = append(m.Keyboard, []transport.Button{{Text: c.Name, Data: cb(cbCategory, c.Code)}})
	}
	m.Keyboard = append(m.Keyboard, []transport.Button{{Text: labelBasket, Data: cbBasket}})
	return r.send(ctx, m)
}

// showCategory lists subcategories, or goes straight to the items when the
// category only holds unfiled ones.
func (r *Router) showCategory(ctx context.Context, uid int64, code int) error {
	subs, err := r.Catalog.Subcategories(ctx, code, catalog.ScopeAvailable)
	if err != nil {
		return err
	}
	switch {
	case len(subs) == 0:
		return r.itemGone(ctx, uid)
	case len(subs) == 1 && subs[0].None():
		return r.showItems(ctx, uid, code, 0)
	}
	m := transport.Message{ChatID: uid, Text: textCatalog}
	for _, s := range subs {
		name := s.Name
		if s.None() {
			name = "Other"
		}
		m.Keyboard = append(m.Keyboard, []transport.Button{{Text: name, Data: cb(cbSubcat, code, s.Code)}})
	}
	m.Keyboard = append(m.Keyboard, []transport.Button{{Text: labelBack, Data: cbMenu}})
	return r.send(ctx, m)
}

// shelf lists the available items of one subcategory. Subcategory 0 is the
// "Other" shelf: only items filed under no subcategory.
func (r *Router) shelf(ctx context.Context, cat, sub int) ([]catalog.Item, error) {
	items, err := r.Catalog.Items(ctx, cat, sub, catalog.ScopeAvailable)
	if err != nil || sub != 0 {
		return items, err
	}
	out := items[:0]
	for _, it := range items {
		if !it.HasSubcategory() {
			out = append(out, it)
		}
	}
	return out, nil
}

func (r *Router) showItems(ctx context.Context, uid int64, cat, sub int) error {
	items, err := r.shelf(ctx, cat, sub)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		return r.itemGone(ctx, uid)
	}
	m := transport.Message{ChatID: uid, Text: textCatalog}
	for _, it := range items {
		m.Keyboard = append(m.Keyboard, []transport.Button{{
			Text: fmt.Sprintf("%s - %d", it.Name, it.Price),
			Data: cb(cbItem, it.ID, 1),
		}})
	}
	m.Keyboard = append(m.Keyboard, []transport.Button{{Text: labelBack, Data: cb(cbCategory, cat)}})
	return r.send(ctx, m)
}

func (r *Router) itemGone(ctx context.Context, uid int64) error {
	if err := r.say(ctx, uid, textItemGone); err != nil {
		return err
	}
	return r.showCategories(ctx, uid)
}

// available returns nil when the item cannot be bought any more.
func (r *Router) available(ctx context.Context, id int) (*catalog.Item, error) {
	it, err := r.Catalog.Item(ctx, id)
	if errors.Is(err, catalog.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if !it.Available() {
		return nil, nil
	}
	return &it, nil
}

// showItem renders the item card with qty selected, clamped to [1, stock].
func (r *Router) showItem(ctx context.Context, uid int64, id, qty int) error {
	it, err := r.available(ctx, id)
	if err != nil {
		return err
	}
	if it == nil {
		return r.itemGone(ctx, uid)
	}
	if qty > it.Stock {
		if err := r.say(ctx, uid, textMaxQuantity(it.Stock)); err != nil {
			return err
		}
		qty = it.Stock
	}
	qty = max(qty, 1)

	back := cb(cbSubcat, it.CategoryCode, it.SubcategoryCode)
	return r.send(ctx, transport.Message{
		ChatID: uid,
		Text:   ItemText(*it),
		Photos: it.Photos[:1],
		Keyboard: [][]transport.Button{
			{{Text: "-", Data: cb(cbItem, id, qty-1)}, {Text: strconv.Itoa(qty), Data: cb(cbItem, id, qty)}, {Text: "+", Data: cb(cbItem, id, qty+1)}},
			{{Text: fmt.Sprintf("Add %d to basket", qty), Data: cb(cbAdd, id, qty)}, {Text: "Buy now", Data: cb(cbBuy, id, qty)}},
			{{Text: "<", Data: cb(cbPrev, id)}, {Text: labelPhotos, Data: cb(cbPhotos, id)}, {Text: ">", Data: cb(cbNext, id)}},
			{{Text: labelBack, Data: back}, {Text: labelBasket, Data: cbBasket}},
		},
	})
}

// NextID picks the neighbour of cur in ids, wrapping around at both ends.
// An id missing from ids restarts at the first one. ok is false when cur is
// the only id.
func NextID(ids []int, cur, dir int) (next int, ok bool) {
	if len(ids) == 0 || (len(ids) == 1 && ids[0] == cur) {
		return 0, false
	}
	i := -1
	for j, id := range ids {
		if id == cur {
			i = j
			break
		}
	}
	if i < 0 {
		return ids[0], true
	}
	n := len(ids)
	return ids[((i+dir)%n+n)%n], true
}

func (r *Router) scroll(ctx context.Context, uid int64, id, dir int) error {
	it, err := r.Catalog.Item(ctx, id)
	if errors.Is(err, catalog.ErrNotFound) {
		return r.itemGone(ctx, uid)
	}
	if err != nil {
		return err
	}
	items, err := r.shelf(ctx, it.CategoryCode, it.SubcategoryCode)
	if err != nil {
		return err
	}
	ids := make([]int, len(items))
	for i, x := range items {
		ids[i] = x.ID
	}
	next, ok := NextID(ids, id, dir)
	if !ok {
		if len(ids) == 0 {
			return r.itemGone(ctx, uid)
		}
		return r.say(ctx, uid, textOnlyItem)
	}
	return r.showItem(ctx, uid, next, 1)
}

func (r *Router) showPhotos(ctx context.Context, uid int64, id int) error {
	it, err := r.available(ctx, id)
	if err != nil {
		return err
	}
	if it == nil {
		return r.itemGone(ctx, uid)
	}
	if len(it.Photos) < 2 {
		return r.say(ctx, uid, textOnePhoto)
	}
	return r.send(ctx, transport.Message{
		ChatID:   uid,
		Text:     fmt.Sprintf("%q", it.Name),
		Photos:   it.Photos,
		Keyboard: [][]transport.Button{{{Text: labelBack, Data: cb(cbItem, id, 1)}}},
	})
}

func (r *Router) addToBasket(ctx context.Context, uid int64, id, qty int) error {
	e, err := r.Basket.Add(ctx, uid, id, qty)
	var limit *basket.StockLimit
	switch {
	case errors.Is(err, basket.ErrUnavailable):
		return r.itemGone(ctx, uid)
	case errors.Is(err, basket.ErrFull):
		return r.say(ctx, uid, textBasketFull)
	case errors.Is(err, basket.ErrQuantity):
		return r.showItem(ctx, uid, id, 1)
	case errors.As(err, &limit):
		return r.say(ctx, uid, textStockLimit(limit))
	case err != nil:
		return err
	}
	it, err := r.Catalog.Item(ctx, id)
	if err != nil {
		return err
	}
	return r.send(ctx, transport.Message{ChatID: uid, Text: textAdded(it.Name, e, qty), Keyboard: catalogKeyboard()})
}

func (r *Router) showBasket(ctx context.Context, from User) error {
	v, err := r.Basket.Show(ctx, from.ID)
	if err != nil {
		return err
	}
	return r.sendBasket(ctx, from, v)
}

func (r *Router) sendBasket(ctx context.Context, from User, v basket.View) error {
	m := transport.Message{ChatID: from.ID, Text: BasketText(displayName(from), v)}
	if v.Empty() {
		m.Keyboard = [][]transport.Button{{{Text: labelCatalog, Data: cbMenu}}}
		return r.send(ctx, m)
	}
	m.Keyboard = append(m.Keyboard, []transport.Button{{Text: labelPay, Data: cbPay}, {Text: labelClear, Data: cbClear}})
	for _, l := range v.Lines {
		m.Keyboard = append(m.Keyboard, []transport.Button{
			{Text: "-", Data: cb(cbQuantity, l.ItemID, l.Quantity-1)},
			{Text: fmt.Sprintf("Remove %s", l.Name), Data: cb(cbRemove, l.ItemID)},
			{Text: "+", Data: cb(cbQuantity, l.ItemID, l.Quantity+1)},
		})
	}
	m.Keyboard = append(m.Keyboard, []transport.Button{{Text: labelCatalog, Data: cbMenu}})
	return r.send(ctx, m)
}

// setBasketQuantity applies a +/- press on a basket line. 0 removes it.
func (r *Router) setBasketQuantity(ctx context.Context, from User, id, qty int) error {
	v, err := r.Basket.SetQuantity(ctx, from.ID, id, qty)
	var limit *basket.StockLimit
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		// the line expired or was paid for since the keyboard was sent
		return r.showBasket(ctx, from)
	case errors.Is(err, basket.ErrUnavailable):
		if err := r.say(ctx, from.ID, textLineGone); err != nil {
			return err
		}
		return r.showBasket(ctx, from)
	case errors.As(err, &limit):
		return r.say(ctx, from.ID, textMaxQuantity(limit.Stock))
	case err != nil:
		return err
	}
	return r.sendBasket(ctx, from, v)
}

func displayName(u User) string {
	if u.FullName != "" {
		return u.FullName
	}
	if u.Username != "" {
		return u.Username
	}
	return "Customer"
}

func (r *Router) buyNow(ctx context.Context, uid int64, id, qty int) error {
	if qty < 1 {
		return r.showItem(ctx, uid, id, 1)
	}
	res, err := r.Checkout.InvoiceForItem(ctx, id, qty)
	if err != nil {
		return err
	}
	return r.answerInvoice(ctx, User{ID: uid}, res)
}

func (r *Router) payBasket(ctx context.Context, from User) error {
	res, err := r.Checkout.InvoiceForBasket(ctx, from.ID)
	if err != nil {
		return err
	}
	return r.answerInvoice(ctx, from, res)
}

func (r *Router) answerInvoice(ctx context.Context, from User, res checkout.InvoiceResult) error {
	uid := from.ID
	switch res.Outcome {
	case checkout.Issued:
		return r.Sender.SendInvoice(ctx, transport.NewInvoice(uid, r.Currency, res.Invoice))
	case checkout.OverCeiling:
		return r.say(ctx, uid, textOverCeiling)
	case checkout.TooManyLines:
		return r.say(ctx, uid, textBasketFull)
	}

	if note := ChangesText(res.Changes); note != "" {
		if err := r.say(ctx, uid, note); err != nil {
			return err
		}
	}
	switch {
	case res.Outcome == checkout.Empty && len(res.Changes) == 0:
		return r.send(ctx, transport.Message{ChatID: uid, Text: textBasketExpired, Keyboard: catalogKeyboard()})
	case len(res.Basket) > 0:
		v := basket.View{Lines: res.Basket}
		for _, l := range res.Basket {
			v.Total += l.Sum()
		}
		return r.sendBasket(ctx, from, v)
	case len(res.Changes) == 1 && res.Changes[0].Verdict == checkout.LineClipped:
		// buy now: offer the clipped quantity
		return r.showItem(ctx, uid, res.Changes[0].ItemID, res.Changes[0].Quantity)
	}
	return r.showCategories(ctx, uid)
}
