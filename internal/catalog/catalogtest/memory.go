// Package catalogtest provides an in-memory catalog for tests.
package catalogtest

import (
	"context"
	"fmt"
	"github.com/ariefcatur/go-shop-bot/internal/catalog"
	"sort"
	"strings"
	"sync"
)

// Memory mirrors the constraints of the Postgres schema: unique ids and
// names, and basket rows pinning the items they reference.
type Memory struct {
	mu        sync.Mutex
	items     map[int]catalog.Item
	basket    map[int64]map[int]catalog.BasketEntry
	customers map[int64]catalog.Customer
}

var (
	_ catalog.Repository         = (*Memory)(nil)
	_ catalog.BasketRepository   = (*Memory)(nil)
	_ catalog.StockCommitter     = (*Memory)(nil)
	_ catalog.CustomerRepository = (*Memory)(nil)
)

func New(items ...catalog.Item) *Memory {
	m := &Memory{
		items:     map[int]catalog.Item{},
		basket:    map[int64]map[int]catalog.BasketEntry{},
		customers: map[int64]catalog.Customer{},
	}
	for _, it := range items {
		m.items[it.ID] = cloneItem(it)
	}
	return m
}

func cloneItem(it catalog.Item) catalog.Item {
	it.Photos = append([]string(nil), it.Photos...)
	return it
}

// SetStock changes stock directly, as a concurrent admin edit would.
func (m *Memory) SetStock(id, stock int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	it := m.items[id]
	it.Stock = stock
	m.items[id] = it
}

func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

func (m *Memory) sorted(keep func(catalog.Item) bool) []catalog.Item {
	out := make([]catalog.Item, 0, len(m.items))
	for _, it := range m.items {
		if keep(it) {
			out = append(out, cloneItem(it))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func inScope(it catalog.Item, scope catalog.Scope) bool {
	return scope == catalog.ScopeAll || it.Available()
}

func (m *Memory) Item(_ context.Context, id int) (catalog.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	it, ok := m.items[id]
	if !ok {
		return catalog.Item{}, catalog.ErrNotFound
	}
	return cloneItem(it), nil
}

func (m *Memory) ItemIDs(context.Context) ([]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]int, 0, len(m.items))
	for id := range m.items {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids, nil
}

func (m *Memory) ItemNames(context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := make([]string, 0, len(m.items))
	for _, it := range m.items {
		names = append(names, it.Name)
	}
	sort.Strings(names)
	return names, nil
}

func (m *Memory) Categories(_ context.Context, scope catalog.Scope) ([]catalog.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	seen := map[catalog.Category]bool{}
	var out []catalog.Category
	for _, it := range m.items {
		c := catalog.Category{Name: it.CategoryName, Code: it.CategoryCode}
		if inScope(it, scope) && !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *Memory) Subcategories(_ context.Context, categoryCode int, scope catalog.Scope) ([]catalog.Subcategory, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	seen := map[catalog.Subcategory]bool{}
	var out []catalog.Subcategory
	for _, it := range m.items {
		s := catalog.Subcategory{Name: it.SubcategoryName, Code: it.SubcategoryCode}
		if it.CategoryCode == categoryCode && inScope(it, scope) && !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *Memory) Items(_ context.Context, categoryCode, subcategoryCode int, scope catalog.Scope) ([]catalog.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sorted(func(it catalog.Item) bool {
		return it.CategoryCode == categoryCode &&
			(subcategoryCode == 0 || it.SubcategoryCode == subcategoryCode) &&
			inScope(it, scope)
	}), nil
}

func (m *Memory) ItemsLike(_ context.Context, prefix string, offset, limit int) ([]catalog.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	prefix = strings.ToLower(prefix)
	out := m.sorted(func(it catalog.Item) bool {
		return it.Available() && strings.HasPrefix(strings.ToLower(it.Name), prefix)
	})
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *Memory) CountCategories(context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := map[string]bool{}
	for _, it := range m.items {
		names[it.CategoryName] = true
	}
	return len(names), nil
}

func (m *Memory) CountSubcategories(_ context.Context, categoryCode int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := map[string]bool{}
	for _, it := range m.items {
		if it.CategoryCode == categoryCode && it.HasSubcategory() {
			names[it.SubcategoryName] = true
		}
	}
	return len(names), nil
}

func (m *Memory) CountItems(_ context.Context, categoryCode, subcategoryCode int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, it := range m.items {
		if it.CategoryCode == categoryCode && (subcategoryCode == 0 || it.SubcategoryCode == subcategoryCode) {
			n++
		}
	}
	return n, nil
}

func (m *Memory) nameTaken(name string, except int) bool {
	for id, it := range m.items {
		if id != except && catalog.SameName(it.Name, name) {
			return true
		}
	}
	return false
}

func (m *Memory) referenced(id int) bool {
	for _, lines := range m.basket {
		if _, ok := lines[id]; ok {
			return true
		}
	}
	return false
}

func (m *Memory) CreateItem(_ context.Context, it catalog.Item) error {
	if err := catalog.ValidateItem(it); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[it.ID]; ok {
		return &catalog.UniqueViolation{Field: catalog.FieldID, Value: fmt.Sprint(it.ID)}
	}
	if m.nameTaken(it.Name, 0) {
		return &catalog.UniqueViolation{Field: catalog.FieldName, Value: it.Name}
	}
	m.items[it.ID] = cloneItem(it)
	return nil
}

func (m *Memory) UpdateItemField(_ context.Context, id int, f catalog.Field, v any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	it, ok := m.items[id]
	if !ok {
		return catalog.ErrNotFound
	}
	switch f {
	case catalog.FieldID:
		newID := v.(int)
		if _, taken := m.items[newID]; taken && newID != id {
			return &catalog.UniqueViolation{Field: f, Value: fmt.Sprint(newID)}
		}
		if m.referenced(id) {
			return catalog.ErrForeignKey
		}
		delete(m.items, id)
		it.ID = newID
		m.items[newID] = it
		return nil
	case catalog.FieldName:
		if m.nameTaken(v.(string), id) {
			return &catalog.UniqueViolation{Field: f, Value: v.(string)}
		}
		it.Name = v.(string)
	case catalog.FieldPhotos:
		it.Photos = append([]string(nil), v.([]string)...)
	case catalog.FieldPrice:
		it.Price = v.(int)
	case catalog.FieldDescription:
		it.Description = v.(string)
	case catalog.FieldShortDescription:
		it.ShortDescription = v.(string)
	case catalog.FieldStock:
		it.Stock = v.(int)
	case catalog.FieldVisible:
		it.Visible = v.(bool)
	case catalog.FieldQuickView:
		it.QuickView = v.(string)
	default:
		return fmt.Errorf("catalogtest: field %q is not mutable", f)
	}
	m.items[id] = it
	return nil
}

func (m *Memory) DeleteItem(_ context.Context, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[id]; !ok {
		return catalog.ErrNotFound
	}
	if m.referenced(id) {
		return catalog.ErrForeignKey
	}
	delete(m.items, id)
	return nil
}

func (m *Memory) deleteWhere(match func(catalog.Item) bool) (int64, error) {
	var ids []int
	for id, it := range m.items {
		if match(it) {
			if m.referenced(id) {
				return 0, catalog.ErrForeignKey
			}
			ids = append(ids, id)
		}
	}
	for _, id := range ids {
		delete(m.items, id)
	}
	return int64(len(ids)), nil
}

func (m *Memory) DeleteCategory(_ context.Context, name string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.deleteWhere(func(it catalog.Item) bool { return it.CategoryName == name })
}

func (m *Memory) DeleteSubcategory(_ context.Context, category, subcategory string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.deleteWhere(func(it catalog.Item) bool {
		return it.CategoryName == category && it.SubcategoryName == subcategory
	})
}

func (m *Memory) RenameCategory(_ context.Context, oldName, newName string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, it := range m.items {
		if it.CategoryName == oldName {
			it.CategoryName = newName
			m.items[id] = it
			n++
		}
	}
	return n, nil
}

func (m *Memory) RenameSubcategory(_ context.Context, category, oldName, newName string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, it := range m.items {
		if it.CategoryName == category && it.SubcategoryName == oldName {
			it.SubcategoryName = newName
			m.items[id] = it
			n++
		}
	}
	return n, nil
}

func (m *Memory) CommitStock(_ context.Context, lines []catalog.StockLine) ([]catalog.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var short []catalog.StockShortage
	for _, l := range lines {
		it := m.items[l.ItemID]
		if it.Stock < l.Quantity {
			short = append(short, catalog.StockShortage{ItemID: l.ItemID, Required: l.Quantity, Available: it.Stock})
		}
	}
	if len(short) > 0 {
		return nil, &catalog.ShortStock{Lines: short}
	}
	out := make([]catalog.Item, 0, len(lines))
	for _, l := range lines {
		it := m.items[l.ItemID]
		it.Stock -= l.Quantity
		m.items[l.ItemID] = it
		out = append(out, cloneItem(it))
	}
	return out, nil
}

func (m *Memory) BasketEntry(_ context.Context, customerID int64, itemID int) (catalog.BasketEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.basket[customerID][itemID]
	if !ok {
		return catalog.BasketEntry{}, catalog.ErrNotFound
	}
	return e, nil
}

func (m *Memory) BasketLines(_ context.Context, customerID int64) ([]catalog.BasketLine, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entries := make([]catalog.BasketEntry, 0, len(m.basket[customerID]))
	for _, e := range m.basket[customerID] {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].ModifiedAt.Equal(entries[j].ModifiedAt) {
			return entries[i].ModifiedAt.Before(entries[j].ModifiedAt)
		}
		return entries[i].ItemID < entries[j].ItemID
	})
	out := make([]catalog.BasketLine, 0, len(entries))
	for _, e := range entries {
		it := m.items[e.ItemID]
		out = append(out, catalog.BasketLine{ItemID: e.ItemID, Name: it.Name, Price: it.Price, Quantity: e.Quantity})
	}
	return out, nil
}

func (m *Memory) PutBasketEntry(_ context.Context, e catalog.BasketEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[e.ItemID]; !ok {
		return catalog.ErrForeignKey
	}
	if m.basket[e.CustomerID] == nil {
		m.basket[e.CustomerID] = map[int]catalog.BasketEntry{}
	}
	m.basket[e.CustomerID][e.ItemID] = e
	return nil
}

func (m *Memory) DeleteBasketEntry(_ context.Context, customerID int64, itemID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.basket[customerID], itemID)
	if len(m.basket[customerID]) == 0 {
		delete(m.basket, customerID)
	}
	return nil
}

func (m *Memory) ClearBasket(_ context.Context, customerID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.basket, customerID)
	return nil
}

func (m *Memory) UpsertCustomer(_ context.Context, c catalog.Customer) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	old, ok := m.customers[c.ID]
	if ok {
		old.Username, old.FullName = c.Username, c.FullName
		m.customers[c.ID] = old
		return false, nil
	}
	m.customers[c.ID] = c
	return true, nil
}

func (m *Memory) Customer(_ context.Context, id int64) (catalog.Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.customers[id]
	if !ok {
		return catalog.Customer{}, catalog.ErrNotFound
	}
	return c, nil
}

func (m *Memory) SetCustomerEmail(_ context.Context, id int64, email string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := m.customers[id]
	c.ID = id
	c.Email = email
	m.customers[id] = c
	return nil
}
