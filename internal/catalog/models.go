package catalog

import "time"

// Item is one purchasable catalog entry. SubcategoryCode == 0 means the item
// sits directly in its category.
type Item struct {
	ID               int      `validate:"min=1,max=9999"`
	CategoryName     string   `validate:"required,max=30"`
	CategoryCode     int      `validate:"min=1000,max=9999"`
	SubcategoryName  string   `validate:"max=30"`
	SubcategoryCode  int      `validate:"min=0"`
	Name             string   `validate:"required,max=30"`
	Photos           []string `validate:"min=1,max=10,dive,required"`
	Price            int      `validate:"min=10,max=1000000"`
	Description      string   `validate:"required,max=800"`
	ShortDescription string   `validate:"max=50"`
	Stock            int      `validate:"min=0,max=9999"`
	Visible          bool
	QuickView        string `validate:"required"`
}

// Available is the one availability rule used by browsing, basket and
// checkout: hidden or sold-out items cannot be bought.
func (it Item) Available() bool { return it.Visible && it.Stock > 0 }

func (it Item) HasSubcategory() bool { return it.SubcategoryCode != 0 }

type Category struct {
	Name string
	Code int
}

// Subcategory with Code == 0 stands for items filed without a subcategory.
type Subcategory struct {
	Name string
	Code int
}

func (s Subcategory) None() bool { return s.Code == 0 }

type Customer struct {
	ID        int64
	Username  string
	FullName  string
	Email     string
	FirstSeen time.Time
	// ReferrerID is the customer whose link brought this one in, 0 if none.
	// Only the first registration records it.
	ReferrerID int64
}

type BasketEntry struct {
	CustomerID int64
	ItemID     int
	Quantity   int
	ModifiedAt time.Time
}

// BasketLine is a basket entry joined with the item it points to.
type BasketLine struct {
	ItemID   int
	Name     string
	Price    int
	Quantity int
}

func (l BasketLine) Sum() int { return l.Price * l.Quantity }

// Scope narrows catalog lookups.
type Scope int

const (
	ScopeAll       Scope = iota // admin view
	ScopeAvailable              // visible and in stock
)

// Field names a single mutable column of an item.
type Field string

const (
	FieldID               Field = "item_id"
	FieldName             Field = "item_name"
	FieldPhotos           Field = "item_photos"
	FieldPrice            Field = "item_price"
	FieldDescription      Field = "item_description"
	FieldShortDescription Field = "item_short_description"
	FieldStock            Field = "item_stock"
	FieldVisible          Field = "item_visible"
	FieldQuickView        Field = "item_quick_view"
)

// Limits enforced before allocating new codes.
const (
	MaxItemsPerGroup       = 98
	MaxCategories          = 97
	MaxSubcategoriesPerCat = 98
)
