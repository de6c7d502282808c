package checkout

import (
	"context"
	"github.com/ariefcatur/go-shop-bot/internal/catalog"
	"github.com/ariefcatur/go-shop-bot/internal/catalog/catalogtest"
	"github.com/ariefcatur/go-shop-bot/internal/events"
	"github.com/ariefcatur/go-shop-bot/internal/events/eventstest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
	"time"
)

const customer int64 = 500

var now = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

type fakeReservations struct {
	jobs     map[int64]time.Time
	canceled int
}

func (f *fakeReservations) Touch(_ context.Context, id int64, ref time.Time) error {
	if f.jobs == nil {
		f.jobs = map[int64]time.Time{}
	}
	f.jobs[id] = ref
	return nil
}

func (f *fakeReservations) Cancel(_ context.Context, id int64) (bool, error) {
	f.canceled++
	if _, ok := f.jobs[id]; !ok {
		return true, nil
	}
	delete(f.jobs, id)
	return false, nil
}

type fixture struct {
	repo   *catalogtest.Memory
	res    *fakeReservations
	events *eventstest.Recorder
	eng    *Engine
}

func newFixture(items ...catalog.Item) *fixture {
	f := &fixture{repo: catalogtest.New(items...), res: &fakeReservations{}, events: &eventstest.Recorder{}}
	f.eng = &Engine{
		Items:        f.repo,
		Basket:       f.repo,
		Stock:        f.repo,
		Customers:    f.repo,
		Reservations: f.res,
		Shipping:     DefaultShipping(),
		Events:       f.events,
		Dedup:        &MemoryDedup{},
		BasketPhoto:  "https://cdn.example.com/basket.jpg",
		Now:          func() time.Time { return now },
	}
	return f
}

func (f *fixture) put(t *testing.T, itemID, qty int) {
	t.Helper()
	require.NoError(t, f.repo.PutBasketEntry(context.Background(), catalog.BasketEntry{
		CustomerID: customer, ItemID: itemID, Quantity: qty, ModifiedAt: now.Add(-time.Hour),
	}))
	require.NoError(t, f.res.Touch(context.Background(), customer, now.Add(-time.Hour)))
}

func (f *fixture) stock(t *testing.T, id int) int {
	t.Helper()
	it, err := f.repo.Item(context.Background(), id)
	require.NoError(t, err)
	return it.Stock
}

func item(id int, name string, price, stock int) catalog.Item {
	return catalog.Item{
		ID: id, CategoryName: "Gifts", CategoryCode: 1000, Name: name,
		Photos: []string{"p"}, Price: price, Description: name + " description",
		Stock: stock, Visible: true, QuickView: "https://cdn.example.com/" + name + ".jpg",
	}
}

func TestCheck(t *testing.T) {
	hidden := item(1, "a", 100, 5)
	hidden.Visible = false
	sold := item(2, "b", 100, 0)
	ok := item(3, "c", 100, 5)

	tests := []struct {
		name string
		it   *catalog.Item
		qty  int
		want LineResult
	}{
		{"missing", nil, 1, LineResult{Verdict: LineRejected}},
		{"hidden", &hidden, 1, LineResult{Verdict: LineRejected}},
		{"sold out", &sold, 1, LineResult{Verdict: LineRejected}},
		{"over stock", &ok, 9, LineResult{Verdict: LineClipped, Quantity: 5}},
		{"exact stock", &ok, 5, LineResult{Verdict: LineAccepted, Quantity: 5}},
		{"under stock", &ok, 2, LineResult{Verdict: LineAccepted, Quantity: 2}},
		{"zero", &ok, 0, LineResult{Verdict: LineRejected}},
		{"negative", &ok, -3, LineResult{Verdict: LineRejected}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Check(tt.it, tt.qty))
		})
	}
}

func TestCheck_NeverAcceptsAboveStock(t *testing.T) {
	for stock := 0; stock <= 12; stock++ {
		it := item(1, "a", 100, stock)
		for qty := 1; qty <= 15; qty++ {
			r := Check(&it, qty)
			if r.Verdict == LineAccepted {
				assert.LessOrEqual(t, qty, stock)
			}
			assert.LessOrEqual(t, r.Quantity, stock)
		}
	}
}

func TestInvoiceForBasket_ClipBlocksInvoice(t *testing.T) {
	f := newFixture(item(7, "Mug", 250, 5))
	f.put(t, 7, 5)
	f.repo.SetStock(7, 2) // an admin edit while the item sits in the basket

	ctx := context.Background()
	res, err := f.eng.InvoiceForBasket(ctx, customer)
	require.NoError(t, err)
	assert.Equal(t, Clipped, res.Outcome)
	assert.Equal(t, StatusClipped, res.Status)
	assert.Empty(t, res.Invoice.Payload)
	assert.Equal(t, []Change{{ItemID: 7, Name: "Mug", Verdict: LineClipped, Quantity: 2}}, res.Changes)
	require.Len(t, res.Basket, 1)
	assert.Equal(t, 2, res.Basket[0].Quantity)
	assert.Equal(t, now, f.res.jobs[customer])

	entry, err := f.repo.BasketEntry(ctx, customer, 7)
	require.NoError(t, err)
	assert.Equal(t, 2, entry.Quantity)

	// the customer confirms again
	res, err = f.eng.InvoiceForBasket(ctx, customer)
	require.NoError(t, err)
	assert.Equal(t, Issued, res.Outcome)
	assert.Equal(t, "7:2:b", res.Invoice.Payload)
	assert.Equal(t, 500, res.Invoice.Total)
	assert.Equal(t, "Basket", res.Invoice.Title)
	assert.Equal(t, "https://cdn.example.com/basket.jpg", res.Invoice.PhotoURL)
}

func TestInvoiceForBasket_DropsUnavailableLines(t *testing.T) {
	hidden := item(8, "Card", 50, 3)
	hidden.Visible = false
	f := newFixture(item(7, "Mug", 250, 5), hidden, item(9, "Box", 40, 1))
	f.put(t, 7, 1)
	f.put(t, 8, 1)
	f.put(t, 9, 1)
	f.repo.SetStock(9, 0)

	ctx := context.Background()
	res, err := f.eng.InvoiceForBasket(ctx, customer)
	require.NoError(t, err)
	assert.Equal(t, Rejected, res.Outcome)
	assert.Len(t, res.Changes, 2)
	require.Len(t, res.Basket, 1)
	assert.Equal(t, 7, res.Basket[0].ItemID)

	res, err = f.eng.InvoiceForBasket(ctx, customer)
	require.NoError(t, err)
	assert.Equal(t, Issued, res.Outcome)
	assert.Equal(t, "7:1:b", res.Invoice.Payload)
}

func TestInvoiceForBasket_EverythingGone(t *testing.T) {
	f := newFixture(item(7, "Mug", 250, 5))
	f.put(t, 7, 2)
	f.repo.SetStock(7, 0)

	res, err := f.eng.InvoiceForBasket(context.Background(), customer)
	require.NoError(t, err)
	assert.Equal(t, Empty, res.Outcome)
	assert.Empty(t, res.Basket)
	assert.NotContains(t, f.res.jobs, customer)
	assert.Equal(t, 1, f.res.canceled)
}

func TestInvoiceForBasket_Empty(t *testing.T) {
	f := newFixture()
	res, err := f.eng.InvoiceForBasket(context.Background(), customer)
	require.NoError(t, err)
	assert.Equal(t, Empty, res.Outcome)
}

func TestInvoiceForBasket_Ceiling(t *testing.T) {
	f := newFixture(item(1, "Ring", 600_000, 5), item(2, "Chain", 400_000, 5))
	f.put(t, 1, 1)
	f.put(t, 2, 1)

	res, err := f.eng.InvoiceForBasket(context.Background(), customer)
	require.NoError(t, err)
	assert.Equal(t, Issued, res.Outcome, "exactly the ceiling is allowed")
	assert.Equal(t, Ceiling, res.Invoice.Total)

	f.put(t, 2, 2)
	res, err = f.eng.InvoiceForBasket(context.Background(), customer)
	require.NoError(t, err)
	assert.Equal(t, OverCeiling, res.Outcome)
	assert.Equal(t, 1_400_000, res.Total)
	assert.Empty(t, res.Invoice.Payload)
}

func TestInvoiceForItem(t *testing.T) {
	mug := item(7, "Mug", 250, 5)
	mug.ShortDescription = "Ceramic"
	f := newFixture(mug)

	res, err := f.eng.InvoiceForItem(context.Background(), 7, 2)
	require.NoError(t, err)
	assert.Equal(t, Issued, res.Outcome)
	assert.Equal(t, "7:2:i", res.Invoice.Payload)
	assert.Equal(t, "Mug - 2 pcs.", res.Invoice.Title)
	assert.Equal(t, "Ceramic", res.Invoice.Description)
	assert.Equal(t, "https://cdn.example.com/Mug.jpg", res.Invoice.PhotoURL)
	assert.Equal(t, 500, res.Invoice.Total)

	res, err = f.eng.InvoiceForItem(context.Background(), 7, 6)
	require.NoError(t, err)
	assert.Equal(t, Clipped, res.Outcome)
	assert.Equal(t, 5, res.Changes[0].Quantity)

	res, err = f.eng.InvoiceForItem(context.Background(), 99, 1)
	require.NoError(t, err)
	assert.Equal(t, Rejected, res.Outcome)
}

func TestInvoiceForItem_NonPositiveQuantity(t *testing.T) {
	f := newFixture(item(7, "Mug", 250, 5))
	for _, qty := range []int{0, -3} {
		res, err := f.eng.InvoiceForItem(context.Background(), 7, qty)
		require.NoError(t, err)
		assert.Equal(t, Rejected, res.Outcome, "qty %d", qty)
		assert.Zero(t, res.Total)
		assert.Empty(t, res.Invoice.Payload)
	}
}

func TestInvoiceForItem_LongTitleClipped(t *testing.T) {
	f := newFixture(item(7, "Very long handmade ceramic mug", 250, 500))
	res, err := f.eng.InvoiceForItem(context.Background(), 7, 100)
	require.NoError(t, err)
	assert.Equal(t, 32, len([]rune(res.Invoice.Title)))
}

func preCheckout(payload string, total int, option string) PreCheckoutQuery {
	return PreCheckoutQuery{
		ID: "q1", CustomerID: customer, Currency: "RUB",
		TotalAmount: total, Payload: payload, ShippingOptionID: option,
	}
}

func TestPreCheckout_Accepts(t *testing.T) {
	f := newFixture(item(7, "Mug", 250, 5))
	res, err := f.eng.PreCheckout(context.Background(), preCheckout("7:2:b", (500+300)*100, "moscow"))
	require.NoError(t, err)
	assert.True(t, res.OK)
	assert.Equal(t, StatusConfirmed, res.Status)
	assert.Empty(t, f.events.Events())
}

func TestPreCheckout_TotalMismatchLeavesStock(t *testing.T) {
	f := newFixture(item(7, "Mug", 250, 5))
	for _, total := range []int{50_001, 49_999, 80_000} {
		res, err := f.eng.PreCheckout(context.Background(), preCheckout("7:2:i", total, "pickup"))
		require.NoError(t, err)
		assert.False(t, res.OK, "total %d", total)
		assert.Equal(t, StatusDrifted, res.Status)
		assert.Equal(t, 50_000, res.Expected)
	}
	assert.Equal(t, 5, f.stock(t, 7))

	rejected := f.events.OfType(events.EventPaymentRejected)
	require.Len(t, rejected, 3)
	body, err := events.UnwrapPayload[events.PaymentRejectedPayload](rejected[0].Payload)
	require.NoError(t, err)
	assert.Equal(t, "TOTAL_MISMATCH", body.Reason)
	assert.Equal(t, 50_001, body.Authorized)
}

func TestPreCheckout_PriceDrift(t *testing.T) {
	f := newFixture(item(7, "Mug", 250, 5))
	require.NoError(t, f.repo.UpdateItemField(context.Background(), 7, catalog.FieldPrice, 260))

	res, err := f.eng.PreCheckout(context.Background(), preCheckout("7:2:i", 500*100, "pickup"))
	require.NoError(t, err)
	assert.False(t, res.OK)
	assert.Equal(t, textPriceChanged, res.Text)
}

func TestPreCheckout_StockDrift(t *testing.T) {
	f := newFixture(item(7, "Mug", 250, 5), item(8, "Cup", 100, 5))
	f.repo.SetStock(7, 1)
	require.NoError(t, f.repo.DeleteItem(context.Background(), 8))

	res, err := f.eng.PreCheckout(context.Background(), preCheckout("7:2:8:1:b", 600*100, "odi"))
	require.NoError(t, err)
	assert.False(t, res.OK)
	assert.Contains(t, res.Text, `only 1 of "Mug" (ID 7) left, you are ordering 2`)
	assert.Contains(t, res.Text, "item ID 8 is no longer sold")

	body, err := events.UnwrapPayload[events.PaymentRejectedPayload](f.events.Events()[0].Payload)
	require.NoError(t, err)
	assert.Equal(t, "DRIFT", body.Reason)
	assert.Len(t, body.Lines, 2)
}

func TestPreCheckout_BadInput(t *testing.T) {
	f := newFixture(item(7, "Mug", 250, 5))
	for _, q := range []PreCheckoutQuery{
		preCheckout("7:2", 50_000, "pickup"),
		preCheckout("7:2:i", 50_000, "teleport"),
	} {
		res, err := f.eng.PreCheckout(context.Background(), q)
		require.NoError(t, err)
		assert.False(t, res.OK)
		assert.Equal(t, textInvoiceInvalid, res.Text)
	}
}

func payment(payload string, total int) SuccessfulPayment {
	return SuccessfulPayment{
		CustomerID: customer, Currency: "RUB", TotalAmount: total, Payload: payload,
		ShippingOptionID: "moscow",
		Order: OrderInfo{
			Name: "Anna", Phone: "+70000000000", Email: "anna@example.com",
			Address: Address{CountryCode: "RU", City: "Moscow", StreetLine1: "Tverskaya 1", PostCode: "125009"},
		},
		ChargeID: "tg-1", ProviderChargeID: "pr-1",
	}
}

func TestConfirmPayment_FromBasket(t *testing.T) {
	f := newFixture(item(7, "Mug", 250, 5), item(8, "Cup", 100, 3))
	f.put(t, 7, 2)
	f.put(t, 8, 1)
	ctx := context.Background()

	r, err := f.eng.ConfirmPayment(ctx, payment("7:2:8:1:b", (600+300)*100))
	require.NoError(t, err)
	assert.Equal(t, StatusSettled, r.Status)
	assert.True(t, r.FromBasket)
	assert.Equal(t, 600, r.GoodsTotal)
	assert.Equal(t, 900, r.Paid)
	assert.Equal(t, events.Shipping{OptionID: "moscow", Title: "Moscow city", Fee: 300, Address: "RU, 125009, Moscow, Tverskaya 1"}, r.Shipping)
	assert.Equal(t, []events.SettledLine{
		{ItemID: 7, Name: "Mug", Quantity: 2, Price: 250, StockLeft: 3},
		{ItemID: 8, Name: "Cup", Quantity: 1, Price: 100, StockLeft: 2},
	}, r.Lines)

	assert.Equal(t, 3, f.stock(t, 7))
	lines, err := f.repo.BasketLines(ctx, customer)
	require.NoError(t, err)
	assert.Empty(t, lines)
	assert.NotContains(t, f.res.jobs, customer)

	c, err := f.repo.Customer(ctx, customer)
	require.NoError(t, err)
	assert.Equal(t, "anna@example.com", c.Email)

	settled := f.events.OfType(events.EventOrderSettled)
	require.Len(t, settled, 1)
	assert.Equal(t, events.TopicOrderSettled, settled[0].Topic)
	body, err := events.UnwrapPayload[events.OrderSettledPayload](settled[0].Payload)
	require.NoError(t, err)
	assert.Equal(t, "pr-1", body.ProviderChargeID)
	assert.Equal(t, 900, body.Paid)
}

func TestConfirmPayment_SingleItemKeepsBasket(t *testing.T) {
	f := newFixture(item(7, "Mug", 250, 5))
	f.put(t, 7, 1)

	r, err := f.eng.ConfirmPayment(context.Background(), payment("7:1:i", 550*100))
	require.NoError(t, err)
	assert.False(t, r.FromBasket)
	assert.Equal(t, 0, f.res.canceled)
	lines, err := f.repo.BasketLines(context.Background(), customer)
	require.NoError(t, err)
	assert.Len(t, lines, 1)
}

func TestConfirmPayment_Duplicate(t *testing.T) {
	f := newFixture(item(7, "Mug", 250, 5))
	ctx := context.Background()

	_, err := f.eng.ConfirmPayment(ctx, payment("7:2:i", 800*100))
	require.NoError(t, err)
	r, err := f.eng.ConfirmPayment(ctx, payment("7:2:i", 800*100))
	require.NoError(t, err)
	assert.True(t, r.Duplicate)
	assert.Equal(t, 3, f.stock(t, 7))
	assert.Len(t, f.events.OfType(events.EventOrderSettled), 1)
}

func TestConfirmPayment_InsufficientStock(t *testing.T) {
	f := newFixture(item(7, "Mug", 250, 5), item(8, "Cup", 100, 3))
	f.repo.SetStock(8, 0)

	r, err := f.eng.ConfirmPayment(context.Background(), payment("7:2:8:1:b", 900*100))
	assert.ErrorIs(t, err, ErrInsufficientStock)
	assert.Equal(t, StatusDrifted, r.Status)
	assert.Equal(t, 5, f.stock(t, 7), "no partial decrement")
	assert.Empty(t, f.events.OfType(events.EventOrderSettled))
	assert.Len(t, f.events.OfType(events.EventPaymentRejected), 1)
}

func TestConfirmPayment_EventFailureDoesNotFail(t *testing.T) {
	f := newFixture(item(7, "Mug", 250, 5))
	f.events.Err = assert.AnError

	_, err := f.eng.ConfirmPayment(context.Background(), payment("7:1:i", 550*100))
	require.NoError(t, err)
	assert.Equal(t, 4, f.stock(t, 7))
}

func TestStatusPaths(t *testing.T) {
	paths := [][]Status{
		{StatusBuilt, StatusInvoiceRequested, StatusValidated, StatusPaymentPending, StatusConfirmed, StatusSettled},
		{StatusBuilt, StatusInvoiceRequested, StatusClipped},
		{StatusBuilt, StatusInvoiceRequested, StatusRejected},
		{StatusBuilt, StatusInvoiceRequested, StatusValidated, StatusPaymentPending, StatusDrifted},
	}
	for _, p := range paths {
		for i := 1; i < len(p); i++ {
			assert.True(t, CanTransition(p[i-1], p[i]), "%s -> %s", p[i-1], p[i])
		}
		assert.True(t, p[len(p)-1].Terminal())
	}
	assert.False(t, CanTransition(StatusValidated, StatusSettled))
	assert.False(t, CanTransition(StatusDrifted, StatusConfirmed))
}
