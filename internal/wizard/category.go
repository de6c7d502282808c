package wizard

import (
	"context"
	"errors"
	"fmt"
	"github.com/ariefcatur/go-shop-bot/internal/catalog"
)

const textGroupInBasket = "Some of these items are still in customers' baskets, nothing was deleted. " +
	"Hide them or set their quantity to 0, then retry after the baskets expire (3 hours). /admin"

func (e *Engine) delCatCategory(_ context.Context, s *Session, in Input) (Reply, State, error) {
	c, ok := chooseCategory(s, in)
	if !ok {
		return stay(s, textUnknown, categoryNames(s.Categories))
	}
	s.Category = c
	return Reply{
		Text:    fmt.Sprintf("Delete category %q with all its items? %s", c.Name, textAskConfirm),
		Buttons: yesNoButtons,
	}, StateDelCatConfirm, nil
}

func (e *Engine) delCatConfirm(ctx context.Context, s *Session, in Input) (Reply, State, error) {
	yes, ok := parseYesNo(in)
	if !ok {
		return stay(s, textAskConfirm, yesNoButtons)
	}
	if !yes {
		return done(textCancelled)
	}
	n, err := e.Repo.DeleteCategory(ctx, s.Category.Name)
	if errors.Is(err, catalog.ErrForeignKey) {
		return done(textGroupInBasket)
	}
	if err != nil {
		return Reply{}, "", err
	}
	// groups only exist through their items: nothing matched means the
	// category went away after it was offered
	if n == 0 {
		return done(textStale)
	}
	return done(deletedText("Category", s.Category.Name, n))
}

func (e *Engine) renCatCategory(_ context.Context, s *Session, in Input) (Reply, State, error) {
	c, ok := chooseCategory(s, in)
	if !ok {
		return stay(s, textUnknown, categoryNames(s.Categories))
	}
	s.Category = c
	return Reply{
		Text:    fmt.Sprintf("Enter the new name for category %q (up to 30 characters):", c.Name),
		Buttons: cancelButtons,
	}, StateRenCatName, nil
}

func (e *Engine) renCatName(ctx context.Context, s *Session, in Input) (Reply, State, error) {
	name, ok := parseName(in)
	if !ok {
		return stay(s, rejected(in, textBadName), cancelButtons)
	}
	if other, found := catalog.FindCategory(s.Categories, name); found && other.Code != s.Category.Code {
		return stay(s, fmt.Sprintf("Category %q already exists. Enter another name:", other.Name), cancelButtons)
	}
	n, err := e.Repo.RenameCategory(ctx, s.Category.Name, name)
	if err != nil {
		return Reply{}, "", err
	}
	if n == 0 {
		return done(textStale)
	}
	return done(renamedText("Category", s.Category.Name, name, n))
}

func (e *Engine) delSubCategory(ctx context.Context, s *Session, in Input) (Reply, State, error) {
	return e.pickParent(ctx, s, in, StateDelSubSubcategory, "Choose the subcategory to delete:")
}

func (e *Engine) renSubCategory(ctx context.Context, s *Session, in Input) (Reply, State, error) {
	return e.pickParent(ctx, s, in, StateRenSubSubcategory, "Choose the subcategory to rename:")
}

// pickParent is the category step shared by the subcategory flows.
func (e *Engine) pickParent(ctx context.Context, s *Session, in Input, next State, prompt string) (Reply, State, error) {
	c, ok := chooseCategory(s, in)
	if !ok {
		return stay(s, textUnknown, categoryNames(s.Categories))
	}
	subs, err := e.Repo.Subcategories(ctx, c.Code, catalog.ScopeAll)
	if err != nil {
		return Reply{}, "", err
	}
	named := catalog.Named(subs)
	if len(named) == 0 {
		return done(textNoSubcatFound)
	}
	s.Category, s.Subcategories = c, named
	return Reply{Text: prompt, Buttons: subcategoryNames(named, false)}, next, nil
}

func (e *Engine) delSubSubcategory(_ context.Context, s *Session, in Input) (Reply, State, error) {
	sc, ok := chooseSubcategory(s, in)
	if !ok {
		return stay(s, textUnknown, subcategoryNames(s.Subcategories, false))
	}
	s.Subcategory = sc
	return Reply{
		Text:    fmt.Sprintf("Delete subcategory %q of %q with all its items? %s", sc.Name, s.Category.Name, textAskConfirm),
		Buttons: yesNoButtons,
	}, StateDelSubConfirm, nil
}

func (e *Engine) delSubConfirm(ctx context.Context, s *Session, in Input) (Reply, State, error) {
	yes, ok := parseYesNo(in)
	if !ok {
		return stay(s, textAskConfirm, yesNoButtons)
	}
	if !yes {
		return done(textCancelled)
	}
	n, err := e.Repo.DeleteSubcategory(ctx, s.Category.Name, s.Subcategory.Name)
	if errors.Is(err, catalog.ErrForeignKey) {
		return done(textGroupInBasket)
	}
	if err != nil {
		return Reply{}, "", err
	}
	if n == 0 {
		return done(textStale)
	}
	return done(deletedText("Subcategory", s.Subcategory.Name, n))
}

func (e *Engine) renSubSubcategory(_ context.Context, s *Session, in Input) (Reply, State, error) {
	sc, ok := chooseSubcategory(s, in)
	if !ok {
		return stay(s, textUnknown, subcategoryNames(s.Subcategories, false))
	}
	s.Subcategory = sc
	return Reply{
		Text:    fmt.Sprintf("Enter the new name for subcategory %q (up to 30 characters):", sc.Name),
		Buttons: cancelButtons,
	}, StateRenSubName, nil
}

func (e *Engine) renSubName(ctx context.Context, s *Session, in Input) (Reply, State, error) {
	name, ok := parseName(in)
	if !ok {
		return stay(s, rejected(in, textBadName), cancelButtons)
	}
	if other, found := catalog.FindSubcategory(s.Subcategories, name); found && other.Code != s.Subcategory.Code {
		return stay(s, fmt.Sprintf("Subcategory %q already exists. Enter another name:", other.Name), cancelButtons)
	}
	n, err := e.Repo.RenameSubcategory(ctx, s.Category.Name, s.Subcategory.Name, name)
	if err != nil {
		return Reply{}, "", err
	}
	if n == 0 {
		return done(textStale)
	}
	return done(renamedText("Subcategory", s.Subcategory.Name, name, n))
}

func deletedText(kind, name string, n int64) string {
	return fmt.Sprintf("%s %q deleted.\nquantity_deleted_items: %d\n/admin", kind, name, n)
}

func renamedText(kind, oldName, newName string, n int64) string {
	return fmt.Sprintf("%s %q renamed to %q.\nquantity_updated_items: %d\n/admin", kind, oldName, newName, n)
}
