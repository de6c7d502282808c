// Package codes assigns the lowest free number in a bounded range.
//
// Items, categories and subcategories all use human-readable numeric
// identifiers. Allocation always fills the first gap so the namespaces stay
// dense and the chosen value is predictable for the admin.
package codes

import (
	"fmt"
	"sort"
	"strconv"
)

const (
	ItemIDFloor   = 1
	ItemIDCeiling = 9999

	CategoryFloor   = 1000
	CategoryCeiling = 9999

	// A subcategory code stays below the category code followed by "9999".
	SuffixFloor   = 1
	SuffixCeiling = 9998
)

// Namespace names the range a LimitExceeded error refers to.
type Namespace string

const (
	NamespaceItem        Namespace = "item"
	NamespaceCategory    Namespace = "category"
	NamespaceSubcategory Namespace = "subcategory"
	NamespaceRange       Namespace = "range"
)

// LimitExceeded is returned when no free value is left below the ceiling.
type LimitExceeded struct {
	Namespace Namespace
	Ceiling   int
}

func (e *LimitExceeded) Error() string {
	return fmt.Sprintf("%s limit exceeded: no free value up to %d", e.Namespace, e.Ceiling)
}

// Next returns the smallest value >= floor that is not in used.
// used does not need to be sorted and is never modified.
func Next(used []int, floor, ceiling int) (int, error) {
	next, err := next(used, floor, ceiling)
	if err != nil {
		return 0, &LimitExceeded{Namespace: NamespaceRange, Ceiling: ceiling}
	}
	return next, nil
}

func next(used []int, floor, ceiling int) (int, error) {
	if floor > ceiling {
		return 0, errFull
	}
	in := make([]int, 0, len(used))
	for _, u := range used {
		if u >= floor && u <= ceiling {
			in = append(in, u)
		}
	}
	if len(in) == 0 {
		return floor, nil
	}
	sort.Ints(in)
	in = dedup(in)

	if in[0] != floor {
		return floor, nil
	}
	for i := 1; i < len(in); i++ {
		if in[i]-in[i-1] != 1 {
			return in[i-1] + 1, nil
		}
	}
	n := in[len(in)-1] + 1
	if n > ceiling {
		return 0, errFull
	}
	return n, nil
}

var errFull = fmt.Errorf("range full")

func dedup(sorted []int) []int {
	out := sorted[:1]
	for _, v := range sorted[1:] {
		if v != out[len(out)-1] {
			out = append(out, v)
		}
	}
	return out
}

// ItemID picks the default identifier for a new item.
func ItemID(used []int) (int, error) {
	id, err := next(used, ItemIDFloor, ItemIDCeiling)
	if err != nil {
		return 0, &LimitExceeded{Namespace: NamespaceItem, Ceiling: ItemIDCeiling}
	}
	return id, nil
}

// CategoryCode picks the code for a new category.
func CategoryCode(used []int) (int, error) {
	code, err := next(used, CategoryFloor, CategoryCeiling)
	if err != nil {
		return 0, &LimitExceeded{Namespace: NamespaceCategory, Ceiling: CategoryCeiling}
	}
	return code, nil
}

// SubcategoryCode picks the code for a new subcategory of categoryCode.
//
// A subcategory code is the category code followed by a decimal suffix, so
// 1000 with suffix 3 becomes 10003. Codes belonging to other categories are
// ignored.
func SubcategoryCode(categoryCode int, used []int) (int, error) {
	suffixes := make([]int, 0, len(used))
	for _, code := range used {
		prefix, suffix, ok := SplitSubcategory(code)
		if ok && prefix == categoryCode {
			suffixes = append(suffixes, suffix)
		}
	}
	suffix, err := next(suffixes, SuffixFloor, SuffixCeiling)
	if err != nil {
		return 0, &LimitExceeded{Namespace: NamespaceSubcategory, Ceiling: JoinSubcategory(categoryCode, SuffixCeiling)}
	}
	return JoinSubcategory(categoryCode, suffix), nil
}

// JoinSubcategory concatenates a category code and a suffix.
func JoinSubcategory(categoryCode, suffix int) int {
	n, _ := strconv.Atoi(strconv.Itoa(categoryCode) + strconv.Itoa(suffix))
	return n
}

// SplitSubcategory is the inverse of JoinSubcategory. It reports false for
// values that cannot be a subcategory code.
func SplitSubcategory(code int) (categoryCode, suffix int, ok bool) {
	s := strconv.Itoa(code)
	if len(s) < 5 {
		return 0, 0, false
	}
	categoryCode, err := strconv.Atoi(s[:4])
	if err != nil {
		return 0, 0, false
	}
	suffix, err = strconv.Atoi(s[4:])
	if err != nil {
		return 0, 0, false
	}
	return categoryCode, suffix, true
}
