package catalog

import (
	"errors"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"strings"
	"testing"
)

func validItem() Item {
	return Item{
		ID:           7,
		CategoryName: "Spices",
		CategoryCode: 1000,
		Name:         "Saffron",
		Photos:       []string{"photo-1"},
		Price:        450,
		Description:  "Threads from Iran",
		Stock:        5,
		Visible:      true,
		QuickView:    "https://cdn.example.com/saffron.jpg",
	}
}

func TestValidateItem(t *testing.T) {
	require.NoError(t, ValidateItem(validItem()))

	withSub := validItem()
	withSub.SubcategoryName, withSub.SubcategoryCode = "Red", 10001
	require.NoError(t, ValidateItem(withSub))

	tests := []struct {
		name   string
		mutate func(*Item)
	}{
		{"id zero", func(it *Item) { it.ID = 0 }},
		{"id too large", func(it *Item) { it.ID = 10000 }},
		{"category code short", func(it *Item) { it.CategoryCode = 999 }},
		{"name too long", func(it *Item) { it.Name = strings.Repeat("a", 31) }},
		{"no photos", func(it *Item) { it.Photos = nil }},
		{"too many photos", func(it *Item) { it.Photos = make([]string, 11) }},
		{"price too low", func(it *Item) { it.Price = 9 }},
		{"price too high", func(it *Item) { it.Price = 1000001 }},
		{"description too long", func(it *Item) { it.Description = strings.Repeat("d", 801) }},
		{"short description too long", func(it *Item) { it.ShortDescription = strings.Repeat("s", 51) }},
		{"negative stock", func(it *Item) { it.Stock = -1 }},
		{"stock too large", func(it *Item) { it.Stock = 10000 }},
		{"subcategory name without code", func(it *Item) { it.SubcategoryName = "Red" }},
		{"subcategory code without name", func(it *Item) { it.SubcategoryCode = 10001 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			it := validItem()
			tt.mutate(&it)
			assert.Error(t, ValidateItem(it))
		})
	}
}

func TestValidateItem_CountsRunes(t *testing.T) {
	it := validItem()
	it.Name = strings.Repeat("ж", 30)
	assert.NoError(t, ValidateItem(it))
}

func TestAvailable(t *testing.T) {
	it := validItem()
	assert.True(t, it.Available())

	it.Stock = 0
	assert.False(t, it.Available())

	it.Stock, it.Visible = 3, false
	assert.False(t, it.Available())
}

func TestNameHelpers(t *testing.T) {
	assert.True(t, SameName("Gifts", "gIFTS"))
	assert.True(t, SameName("Специи", "СПЕЦИИ"))
	assert.False(t, SameName("Gifts", "Gift"))

	cats := []Category{{"Gifts", 1000}, {"Spices", 1001}}
	c, ok := FindCategory(cats, "spices")
	require.True(t, ok)
	assert.Equal(t, 1001, c.Code)

	subs := []Subcategory{{"", 0}, {"Red", 10011}}
	_, ok = FindSubcategory(subs, "")
	assert.False(t, ok)
	s, ok := FindSubcategory(subs, "RED")
	require.True(t, ok)
	assert.Equal(t, 10011, s.Code)

	assert.True(t, OnlyUnfiled([]Subcategory{{}}))
	assert.False(t, OnlyUnfiled(subs))
	assert.Equal(t, []Subcategory{{"Red", 10011}}, Named(subs))
}

func TestMapPgError(t *testing.T) {
	err := mapPgError(&pgconn.PgError{Code: "23505", ConstraintName: "items_pkey"},
		map[Field]string{FieldID: "7", FieldName: "Saffron"})
	var uv *UniqueViolation
	require.True(t, errors.As(err, &uv))
	assert.Equal(t, FieldID, uv.Field)
	assert.Equal(t, "7", uv.Value)

	err = mapPgError(&pgconn.PgError{Code: "23505", ConstraintName: "items_item_name_key"},
		map[Field]string{FieldID: "7", FieldName: "Saffron"})
	require.True(t, errors.As(err, &uv))
	assert.Equal(t, FieldName, uv.Field)
	assert.Equal(t, "Saffron", uv.Value)

	err = mapPgError(&pgconn.PgError{Code: "23503"}, nil)
	assert.ErrorIs(t, err, ErrForeignKey)

	other := errors.New("boom")
	assert.Same(t, other, mapPgError(other, nil))
	assert.NoError(t, mapPgError(nil, nil))
}
