package wizard

import (
	"fmt"
	"github.com/ariefcatur/go-shop-bot/internal/catalog"
	"strconv"
	"strings"
)

const (
	labelCancel        = "Cancel"
	labelDefault       = "Default"
	labelNoSubcategory = "No subcategory"
	labelNotRequired   = "Not required"
	labelYes           = "Yes"
	labelNo            = "No"

	labelAddItem           = "Add item"
	labelChangeItem        = "Change item"
	labelDeleteCategory    = "Delete category"
	labelRenameCategory    = "Rename category"
	labelDeleteSubcategory = "Delete subcategory"
	labelRenameSubcategory = "Rename subcategory"
)

var menuButtons = []string{
	labelAddItem, labelChangeItem,
	labelDeleteCategory, labelRenameCategory,
	labelDeleteSubcategory, labelRenameSubcategory,
	labelCancel,
}

var (
	idButtons        = []string{labelDefault, labelCancel}
	cancelButtons    = []string{labelCancel}
	yesNoButtons     = []string{labelYes, labelNo, labelCancel}
	shortDescButtons = []string{labelNotRequired, labelCancel}
)

var menuFlows = map[string]State{
	labelAddItem:           StateAddID,
	labelChangeItem:        StateChangeCategory,
	labelDeleteCategory:    StateDelCatCategory,
	labelRenameCategory:    StateRenCatCategory,
	labelDeleteSubcategory: StateDelSubCategory,
	labelRenameSubcategory: StateRenSubCategory,
}

const (
	textMenu       = "Admin menu. Choose an action:"
	textCancelled  = "Operation cancelled. Nothing was saved. /admin to start again"
	textUnknown    = "Please choose one of the buttons below."
	textNoItems    = "The catalog is empty. Add an item first. /admin"
	textStale      = "This item no longer exists, it was probably deleted by another admin. /admin"
	textForeignKey = "The item is still in a customer's basket and cannot be deleted or renumbered. " +
		"Hide it or set its quantity to 0, then retry after the basket expires (3 hours)."
	textAskName       = "Enter the name of the new item (up to 30 characters):"
	textAskPhotos     = "Send one photo or an album of up to 10 photos:"
	textAskPrice      = "Enter the price, a whole number from 10 to 1000000:"
	textAskDesc       = "Enter the description (up to 800 characters):"
	textAskShortDesc  = "Enter a short description (up to 50 characters) or press \"Not required\":"
	textAskStock      = "Enter the quantity in stock, from 0 to 9999:"
	textAskVisible    = "Should customers see the item? Yes / No"
	textAskQuickView  = "Send a single photo or a link to a .jpg/.jpeg image for the quick view:"
	textAskMainPhoto  = "Send the new main photo:"
	textAskConfirm    = "Are you sure? Yes / No"
	textBadName       = "Please enter text of 1 to 30 characters."
	textBadPhotos     = "Please send one photo or an album of 1 to 10 photos only."
	textBadQuickView  = "Please send a single photo or a link ending in .jpg or .jpeg. Albums are not accepted."
	textNoSubcatFound = "This category has no subcategories. Nothing to do. /admin"
)

func rejected(in Input, hint string) string {
	if in.Kind != KindText {
		return fmt.Sprintf("You can't send a %s here. %s", in.Kind, hint)
	}
	return fmt.Sprintf("You entered: %s. %s", in.Text, hint)
}

func joinInts(v []int) string {
	s := make([]string, len(v))
	for i, n := range v {
		s[i] = strconv.Itoa(n)
	}
	return strings.Join(s, ", ")
}

func askID(used []int) string {
	if len(used) == 0 {
		return "STEP 1: enter the item ID, a whole number from 1 to 9999, or keep \"Default\":"
	}
	return fmt.Sprintf("STEP 1: enter the item ID, a whole number from 1 to 9999 not in use (%s), or keep \"Default\":",
		joinInts(used))
}

func askCategory(cats []catalog.Category) string {
	if len(cats) == 0 {
		return "STEP 2: there are no categories yet. Enter the name of a new category:"
	}
	return "STEP 2: choose the item's category or enter a new one:"
}

func limitText(what string, max int) string {
	return fmt.Sprintf("The limit of %d %s has been reached. /admin", max, what)
}

func uniqueText(uv *catalog.UniqueViolation) string {
	switch uv.Field {
	case catalog.FieldID:
		return fmt.Sprintf("An item with ID %s already exists. Nothing was saved. /admin", uv.Value)
	case catalog.FieldName:
		return fmt.Sprintf("An item named %q already exists. Nothing was saved. /admin", uv.Value)
	}
	return fmt.Sprintf("Duplicate %s %q. Nothing was saved. /admin", uv.Field, uv.Value)
}

func categoryNames(cats []catalog.Category) []string {
	out := make([]string, 0, len(cats)+1)
	for _, c := range cats {
		out = append(out, c.Name)
	}
	return append(out, labelCancel)
}

func subcategoryNames(subs []catalog.Subcategory, withNone bool) []string {
	out := make([]string, 0, len(subs)+2)
	for _, s := range subs {
		if !s.None() {
			out = append(out, s.Name)
		}
	}
	if withNone {
		out = append(out, labelNoSubcategory)
	}
	return append(out, labelCancel)
}

func itemNames(items []ItemRef) []string {
	out := make([]string, 0, len(items)+1)
	for _, it := range items {
		out = append(out, it.Name)
	}
	return append(out, labelCancel)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func visibility(v bool) string {
	if v {
		return "visible"
	}
	return "hidden"
}

// ItemCard renders the admin view of an item.
func ItemCard(it catalog.Item) string {
	sub, subCode := "-", "-"
	if it.HasSubcategory() {
		sub, subCode = it.SubcategoryName, strconv.Itoa(it.SubcategoryCode)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "ID: %d\n", it.ID)
	fmt.Fprintf(&b, "Category: %s (%d)\n", it.CategoryName, it.CategoryCode)
	fmt.Fprintf(&b, "Subcategory: %s (%s)\n", sub, subCode)
	fmt.Fprintf(&b, "Name: %s\n", it.Name)
	fmt.Fprintf(&b, "Photos: %d\n", len(it.Photos))
	fmt.Fprintf(&b, "Price: %d\n", it.Price)
	fmt.Fprintf(&b, "Description:\n%s\n", it.Description)
	fmt.Fprintf(&b, "Short description: %s\n", orDash(it.ShortDescription))
	fmt.Fprintf(&b, "In stock: %d\n", it.Stock)
	fmt.Fprintf(&b, "Visibility: %s\n", visibility(it.Visible))
	fmt.Fprintf(&b, "Quick view: %s\n", it.QuickView)
	return b.String()
}
