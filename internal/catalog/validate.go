package catalog

import (
	"fmt"
	"github.com/go-playground/validator/v10"
	"golang.org/x/text/cases"
)

var validate = validator.New()

func init() {
	validate.RegisterStructValidation(func(sl validator.StructLevel) {
		it := sl.Current().Interface().(Item)
		if (it.SubcategoryName == "") != (it.SubcategoryCode == 0) {
			sl.ReportError(it.SubcategoryCode, "SubcategoryCode", "SubcategoryCode", "subcategory_pair", "")
		}
	}, Item{})
}

// ValidateItem checks the bounds every stored item must respect.
func ValidateItem(it Item) error {
	if err := validate.Struct(it); err != nil {
		return fmt.Errorf("validate item %d: %w", it.ID, err)
	}
	return nil
}

// SameName compares display names the way admins expect: case-insensitively.
func SameName(a, b string) bool {
	return cases.Fold().String(a) == cases.Fold().String(b)
}

func FindCategory(list []Category, name string) (Category, bool) {
	for _, c := range list {
		if SameName(c.Name, name) {
			return c, true
		}
	}
	return Category{}, false
}

func FindSubcategory(list []Subcategory, name string) (Subcategory, bool) {
	for _, s := range list {
		if !s.None() && SameName(s.Name, name) {
			return s, true
		}
	}
	return Subcategory{}, false
}

func ContainsName(names []string, name string) bool {
	for _, n := range names {
		if SameName(n, name) {
			return true
		}
	}
	return false
}

// OnlyUnfiled reports whether a category's subcategory list holds nothing but
// items filed without a subcategory.
func OnlyUnfiled(list []Subcategory) bool {
	return len(list) == 1 && list[0].None()
}

// Named drops the "no subcategory" entry.
func Named(list []Subcategory) []Subcategory {
	out := make([]Subcategory, 0, len(list))
	for _, s := range list {
		if !s.None() {
			out = append(out, s)
		}
	}
	return out
}
