package catalog

import "context"

// Repository is what the admin wizard and the shop browse through.
type Repository interface {
	Item(ctx context.Context, id int) (Item, error)
	ItemIDs(ctx context.Context) ([]int, error)
	ItemNames(ctx context.Context) ([]string, error)
	Categories(ctx context.Context, scope Scope) ([]Category, error)
	Subcategories(ctx context.Context, categoryCode int, scope Scope) ([]Subcategory, error)
	Items(ctx context.Context, categoryCode, subcategoryCode int, scope Scope) ([]Item, error)
	// ItemsLike pages through available items whose name starts with
	// prefix, case-insensitively, ordered by name.
	ItemsLike(ctx context.Context, prefix string, offset, limit int) ([]Item, error)

	CountCategories(ctx context.Context) (int, error)
	CountSubcategories(ctx context.Context, categoryCode int) (int, error)
	// CountItems counts a whole category when subcategoryCode is 0.
	CountItems(ctx context.Context, categoryCode, subcategoryCode int) (int, error)

	CreateItem(ctx context.Context, it Item) error
	UpdateItemField(ctx context.Context, id int, f Field, v any) error
	DeleteItem(ctx context.Context, id int) error

	DeleteCategory(ctx context.Context, name string) (int64, error)
	DeleteSubcategory(ctx context.Context, category, subcategory string) (int64, error)
	RenameCategory(ctx context.Context, oldName, newName string) (int64, error)
	RenameSubcategory(ctx context.Context, category, oldName, newName string) (int64, error)
}

type BasketRepository interface {
	BasketEntry(ctx context.Context, customerID int64, itemID int) (BasketEntry, error)
	BasketLines(ctx context.Context, customerID int64) ([]BasketLine, error)
	// PutBasketEntry inserts or replaces the (customer, item) row.
	PutBasketEntry(ctx context.Context, e BasketEntry) error
	DeleteBasketEntry(ctx context.Context, customerID int64, itemID int) error
	ClearBasket(ctx context.Context, customerID int64) error
}

// StockLine is one decrement applied by CommitStock.
type StockLine struct {
	ItemID   int
	Quantity int
}

type StockCommitter interface {
	// CommitStock decrements every line in one transaction. A line whose
	// stock dropped below the requested quantity aborts the whole commit
	// with *ShortStock.
	CommitStock(ctx context.Context, lines []StockLine) ([]Item, error)
}

type CustomerRepository interface {
	UpsertCustomer(ctx context.Context, c Customer) (created bool, err error)
	Customer(ctx context.Context, id int64) (Customer, error)
	SetCustomerEmail(ctx context.Context, id int64, email string) error
}

// ShortStock lists lines that could not be decremented.
type ShortStock struct {
	Lines []StockShortage
}

type StockShortage struct {
	ItemID    int
	Required  int
	Available int
}

func (e *ShortStock) Error() string { return "catalog: insufficient stock" }
