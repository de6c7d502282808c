package bot

import (
	"github.com/ariefcatur/go-shop-bot/internal/basket"
	"github.com/ariefcatur/go-shop-bot/internal/catalog"
	"github.com/ariefcatur/go-shop-bot/internal/checkout"
	"github.com/ariefcatur/go-shop-bot/internal/events"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"testing"
)

func golden(t *testing.T) *goldie.Goldie {
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

func TestBasketText(t *testing.T) {
	g := golden(t)
	g.Assert(t, "basket", []byte(BasketText("Ann", basket.View{
		Lines: []catalog.BasketLine{
			{ItemID: 7, Name: "Green tea", Price: 250, Quantity: 2},
			{ItemID: 12, Name: "Mug", Price: 400, Quantity: 1},
		},
		Total: 900,
	})))
	assert.Equal(t, textBasketEmpty, BasketText("Ann", basket.View{}))
}

func TestAdminOrderText(t *testing.T) {
	g := golden(t)
	g.Assert(t, "admin_order", []byte(AdminOrderText(events.OrderSettledPayload{
		CustomerID:   500,
		CustomerName: "Ann Lee",
		Phone:        "+79001234567",
		Email:        "ann@example.com",
		FromBasket:   true,
		Lines: []events.SettledLine{
			{ItemID: 7, Name: "Green tea", Quantity: 2, Price: 250, StockLeft: 3},
			{ItemID: 12, Name: "Mug", Quantity: 1, Price: 400, StockLeft: 0},
		},
		GoodsTotal:       900,
		Shipping:         events.Shipping{OptionID: "moscow", Title: "Moscow city", Fee: 300, Address: "RU, 101000, Moscow, Tverskaya 1"},
		Paid:             1200,
		Currency:         "RUB",
		ChargeID:         "ch_1",
		ProviderChargeID: "pr_1",
	})))
}

func TestAdminRejectedText(t *testing.T) {
	g := golden(t)
	g.Assert(t, "admin_stock_conflict", []byte(AdminRejectedText(events.PaymentRejectedPayload{
		CustomerID: 500,
		Payload:    "7:4:b",
		Reason:     "STOCK_CONFLICT",
		Lines:      []events.RejectedLine{{ItemID: 7, Reason: "SHORT_STOCK", Required: 4, Available: 1}},
		Authorized: 130000,
	})))
}

func TestChangesText(t *testing.T) {
	got := ChangesText([]checkout.Change{
		{ItemID: 7, Name: "Green tea", Verdict: checkout.LineClipped, Quantity: 1},
		{ItemID: 9, Verdict: checkout.LineRejected},
	})
	assert.Equal(t, "Less stock is left than you asked for, quantities were reduced:\n"+
		`- "Green tea" (ID 7): 1 pcs. left`+"\n\n"+
		"These items are no longer sold and were removed:\n"+
		`- "item" (ID 9)`, got)
	assert.Empty(t, ChangesText(nil))
}
