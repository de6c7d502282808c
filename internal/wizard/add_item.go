package wizard

import (
	"context"
	"errors"
	"fmt"
	"github.com/ariefcatur/go-shop-bot/internal/catalog"
	"github.com/ariefcatur/go-shop-bot/internal/codes"
	"slices"
)

func (e *Engine) addID(ctx context.Context, s *Session, in Input) (Reply, State, error) {
	if isWord(in, labelDefault) {
		id, err := codes.ItemID(s.UsedIDs)
		var le *codes.LimitExceeded
		if errors.As(err, &le) {
			return done(limitText("items", codes.ItemIDCeiling))
		}
		s.Draft.ID = id
	} else if id, ok := parseItemID(in); ok && !slices.Contains(s.UsedIDs, id) {
		s.Draft.ID = id
	} else {
		return stay(s, rejected(in, askID(s.UsedIDs)), idButtons)
	}
	return Reply{
		Text:    fmt.Sprintf("ID %d accepted.\n\n%s", s.Draft.ID, askCategory(s.Categories)),
		Buttons: categoryNames(s.Categories),
	}, StateAddCategory, nil
}

func (e *Engine) addCategory(ctx context.Context, s *Session, in Input) (Reply, State, error) {
	name, ok := parseName(in)
	if !ok {
		return stay(s, rejected(in, textBadName), categoryNames(s.Categories))
	}

	if c, found := catalog.FindCategory(s.Categories, name); found {
		subs, err := e.Repo.Subcategories(ctx, c.Code, catalog.ScopeAll)
		if err != nil {
			return Reply{}, "", err
		}
		s.Draft.CategoryName, s.Draft.CategoryCode = c.Name, c.Code

		if catalog.OnlyUnfiled(subs) {
			n, err := e.Repo.CountItems(ctx, c.Code, 0)
			if err != nil {
				return Reply{}, "", err
			}
			if n >= catalog.MaxItemsPerGroup {
				return done(fmt.Sprintf("Category %s already holds %d items, the limit. Create a new category. /admin",
					c.Name, catalog.MaxItemsPerGroup))
			}
			return Reply{
				Text: fmt.Sprintf("Existing category %s (code %d) has items and no subcategories, "+
					"so the subcategory step is skipped.\n\nSTEP 4: %s", c.Name, c.Code, textAskName),
				Buttons: cancelButtons,
			}, StateAddName, nil
		}

		s.Subcategories = subs
		return Reply{
			Text: fmt.Sprintf("Existing category %s (code %d).\n\nSTEP 3: choose the subcategory or enter a new one:",
				c.Name, c.Code),
			Buttons: subcategoryNames(subs, len(catalog.Named(subs)) == 0),
		}, StateAddSubcategory, nil
	}

	n, err := e.Repo.CountCategories(ctx)
	if err != nil {
		return Reply{}, "", err
	}
	if n >= catalog.MaxCategories {
		return done(limitText("categories", catalog.MaxCategories))
	}
	code, err := codes.CategoryCode(categoryCodes(s.Categories))
	var le *codes.LimitExceeded
	if errors.As(err, &le) {
		return done(limitText("category codes", codes.CategoryCeiling))
	}

	s.Draft.CategoryName, s.Draft.CategoryCode = name, code
	s.Subcategories = nil
	return Reply{
		Text: fmt.Sprintf("New category %s gets code %d.\n\nSTEP 3: enter a new subcategory or choose %q:",
			name, code, labelNoSubcategory),
		Buttons: subcategoryNames(nil, true),
	}, StateAddSubcategory, nil
}

func (e *Engine) addSubcategory(ctx context.Context, s *Session, in Input) (Reply, State, error) {
	named := catalog.Named(s.Subcategories)
	allowNone := len(named) == 0
	buttons := subcategoryNames(s.Subcategories, allowNone)

	if isWord(in, labelNoSubcategory) {
		if !allowNone {
			return stay(s, "This category already has subcategories. Choose one or enter a new one:", buttons)
		}
		s.Draft.SubcategoryName, s.Draft.SubcategoryCode = "", 0
		return Reply{Text: "No subcategory.\n\nSTEP 4: " + textAskName, Buttons: cancelButtons}, StateAddName, nil
	}

	name, ok := parseName(in)
	if !ok {
		return stay(s, rejected(in, textBadName), buttons)
	}

	if sc, found := catalog.FindSubcategory(named, name); found {
		n, err := e.Repo.CountItems(ctx, s.Draft.CategoryCode, sc.Code)
		if err != nil {
			return Reply{}, "", err
		}
		if n >= catalog.MaxItemsPerGroup {
			return done(fmt.Sprintf("Subcategory %s already holds %d items, the limit. Create a new subcategory. /admin",
				sc.Name, catalog.MaxItemsPerGroup))
		}
		s.Draft.SubcategoryName, s.Draft.SubcategoryCode = sc.Name, sc.Code
		return Reply{
			Text:    fmt.Sprintf("Existing subcategory %s (code %d).\n\nSTEP 4: %s", sc.Name, sc.Code, textAskName),
			Buttons: cancelButtons,
		}, StateAddName, nil
	}

	n, err := e.Repo.CountSubcategories(ctx, s.Draft.CategoryCode)
	if err != nil {
		return Reply{}, "", err
	}
	if n >= catalog.MaxSubcategoriesPerCat {
		return done(limitText("subcategories in this category", catalog.MaxSubcategoriesPerCat))
	}
	code, err := codes.SubcategoryCode(s.Draft.CategoryCode, subcategoryCodes(named))
	var le *codes.LimitExceeded
	if errors.As(err, &le) {
		return done(limitText("subcategory codes", codes.SuffixCeiling))
	}

	s.Draft.SubcategoryName, s.Draft.SubcategoryCode = name, code
	return Reply{
		Text:    fmt.Sprintf("New subcategory %s gets code %d.\n\nSTEP 4: %s", name, code, textAskName),
		Buttons: cancelButtons,
	}, StateAddName, nil
}

func (e *Engine) addName(ctx context.Context, s *Session, in Input) (Reply, State, error) {
	name, ok := parseName(in)
	if !ok {
		return stay(s, rejected(in, textBadName), cancelButtons)
	}
	names, err := e.Repo.ItemNames(ctx)
	if err != nil {
		return Reply{}, "", err
	}
	if catalog.ContainsName(names, name) {
		return stay(s, fmt.Sprintf("An item named %q already exists. Enter another name:", name), cancelButtons)
	}
	s.Draft.Name = name
	return Reply{Text: "STEP 5: " + textAskPhotos, Buttons: cancelButtons}, StateAddPhotos, nil
}

func (e *Engine) addPhotos(_ context.Context, s *Session, in Input) (Reply, State, error) {
	photos, ok := parsePhotos(in)
	if !ok {
		return stay(s, rejected(in, textBadPhotos), cancelButtons)
	}
	s.Draft.Photos = photos
	return Reply{
		Text:    fmt.Sprintf("%d photo(s) saved.\n\nSTEP 6: %s", len(photos), textAskPrice),
		Buttons: cancelButtons,
	}, StateAddPrice, nil
}

func (e *Engine) addPrice(_ context.Context, s *Session, in Input) (Reply, State, error) {
	price, ok := parsePrice(in)
	if !ok {
		return stay(s, rejected(in, textAskPrice), cancelButtons)
	}
	s.Draft.Price = price
	return Reply{Text: "STEP 7: " + textAskDesc, Buttons: cancelButtons}, StateAddDescription, nil
}

func (e *Engine) addDescription(_ context.Context, s *Session, in Input) (Reply, State, error) {
	desc, ok := parseDescription(in)
	if !ok {
		return stay(s, rejected(in, textAskDesc), cancelButtons)
	}
	s.Draft.Description = desc
	return Reply{Text: "STEP 8: " + textAskShortDesc, Buttons: shortDescButtons}, StateAddShortDescription, nil
}

func (e *Engine) addShortDescription(_ context.Context, s *Session, in Input) (Reply, State, error) {
	short, ok := parseShortDescription(in)
	if !ok {
		return stay(s, rejected(in, textAskShortDesc), shortDescButtons)
	}
	s.Draft.ShortDescription = short
	return Reply{Text: "STEP 9: " + textAskStock, Buttons: cancelButtons}, StateAddStock, nil
}

func (e *Engine) addStock(_ context.Context, s *Session, in Input) (Reply, State, error) {
	n, ok := parseStock(in)
	if !ok {
		return stay(s, rejected(in, textAskStock), cancelButtons)
	}
	s.Draft.Stock = n
	return Reply{Text: "STEP 10: " + textAskVisible, Buttons: yesNoButtons}, StateAddVisible, nil
}

func (e *Engine) addVisible(_ context.Context, s *Session, in Input) (Reply, State, error) {
	yes, ok := parseYesNo(in)
	if !ok {
		return stay(s, rejected(in, textAskVisible), yesNoButtons)
	}
	s.Draft.Visible = yes
	return Reply{Text: "STEP 11: " + textAskQuickView, Buttons: cancelButtons}, StateAddQuickView, nil
}

func (e *Engine) addQuickView(ctx context.Context, s *Session, in Input) (Reply, State, error) {
	qv, ok := parseQuickView(in)
	if !ok {
		return stay(s, rejected(in, textBadQuickView), cancelButtons)
	}
	s.Draft.QuickView = qv

	if err := e.Repo.CreateItem(ctx, s.Draft); err != nil {
		var uv *catalog.UniqueViolation
		if errors.As(err, &uv) {
			return done(uniqueText(uv))
		}
		return Reply{}, "", err
	}
	return Reply{Text: "Item saved.\n\n" + ItemCard(s.Draft), Photos: s.Draft.Photos}, StateDone, nil
}
