package wizard

import (
	"github.com/ariefcatur/go-shop-bot/internal/catalog"
	"github.com/sebdah/goldie/v2"
	"testing"
)

func TestItemCard(t *testing.T) {
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)

	g.Assert(t, "item_card", []byte(ItemCard(catalog.Item{
		ID:              7,
		CategoryName:    "Spices",
		CategoryCode:    1000,
		SubcategoryName: "Red",
		SubcategoryCode: 10001,
		Name:            "Saffron",
		Photos:          []string{"p1", "p2"},
		Price:           450,
		Description:     "Threads from Iran.\nHand picked.",
		Stock:           5,
		Visible:         true,
		QuickView:       "https://cdn.example.com/saffron.jpg",
	})))

	g.Assert(t, "item_card_unfiled", []byte(ItemCard(catalog.Item{
		ID:               12,
		CategoryName:     "Gifts",
		CategoryCode:     1003,
		Name:             "Mug",
		Photos:           []string{"p1"},
		Price:            250,
		Description:      "White mug",
		ShortDescription: "Ceramic, 300 ml",
		QuickView:        "photo-q",
	})))
}
