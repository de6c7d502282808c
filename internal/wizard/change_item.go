package wizard

import (
	"context"
	"errors"
	"fmt"
	"github.com/ariefcatur/go-shop-bot/internal/catalog"
	"slices"
	"strings"
)

// EditField is an entry of the change-item field menu.
type EditField string

const (
	EditID               EditField = "ID"
	EditName             EditField = "Name"
	EditPhotos           EditField = "Photos"
	EditMainPhoto        EditField = "Main photo"
	EditPrice            EditField = "Price"
	EditDescription      EditField = "Description"
	EditShortDescription EditField = "Short description"
	EditStock            EditField = "Quantity"
	EditVisible          EditField = "Visibility"
	EditQuickView        EditField = "Quick view"
	EditDelete           EditField = "Delete"
)

var editFields = []EditField{
	EditID, EditName, EditPhotos, EditMainPhoto, EditPrice, EditDescription,
	EditShortDescription, EditStock, EditVisible, EditQuickView, EditDelete,
}

var fieldButtons = func() []string {
	out := make([]string, 0, len(editFields)+1)
	for _, f := range editFields {
		out = append(out, string(f))
	}
	return append(out, labelCancel)
}()

func refs(items []catalog.Item) []ItemRef {
	out := make([]ItemRef, len(items))
	for i, it := range items {
		out[i] = ItemRef{ID: it.ID, Name: it.Name}
	}
	return out
}

// fetchTarget re-reads the item being edited. ok is false when it is gone.
func (e *Engine) fetchTarget(ctx context.Context, s *Session) (it catalog.Item, ok bool, err error) {
	it, err = e.Repo.Item(ctx, s.TargetID)
	if errors.Is(err, catalog.ErrNotFound) {
		return catalog.Item{}, false, nil
	}
	return it, err == nil, err
}

func (e *Engine) changeCategory(ctx context.Context, s *Session, in Input) (Reply, State, error) {
	c, ok := chooseCategory(s, in)
	if !ok {
		return stay(s, textUnknown, categoryNames(s.Categories))
	}
	subs, err := e.Repo.Subcategories(ctx, c.Code, catalog.ScopeAll)
	if err != nil {
		return Reply{}, "", err
	}
	s.Category = c

	if len(catalog.Named(subs)) == 0 {
		items, err := e.Repo.Items(ctx, c.Code, 0, catalog.ScopeAll)
		if err != nil {
			return Reply{}, "", err
		}
		if len(items) == 0 {
			return done(textNoItems)
		}
		s.Items = refs(items)
		return Reply{Text: "Choose the item:", Buttons: itemNames(s.Items)}, StateChangeItem, nil
	}
	s.Subcategories = subs
	return Reply{Text: "Choose the subcategory:", Buttons: subcategoryNames(subs, hasNone(subs))}, StateChangeSubcategory, nil
}

func (e *Engine) changeSubcategory(ctx context.Context, s *Session, in Input) (Reply, State, error) {
	var items []catalog.Item
	if isWord(in, labelNoSubcategory) && hasNone(s.Subcategories) {
		all, err := e.Repo.Items(ctx, s.Category.Code, 0, catalog.ScopeAll)
		if err != nil {
			return Reply{}, "", err
		}
		for _, it := range all {
			if !it.HasSubcategory() {
				items = append(items, it)
			}
		}
		s.Subcategory = catalog.Subcategory{}
	} else if sc, ok := chooseSubcategory(s, in); ok {
		var err error
		items, err = e.Repo.Items(ctx, s.Category.Code, sc.Code, catalog.ScopeAll)
		if err != nil {
			return Reply{}, "", err
		}
		s.Subcategory = sc
	} else {
		return stay(s, textUnknown, subcategoryNames(s.Subcategories, hasNone(s.Subcategories)))
	}

	if len(items) == 0 {
		return done(textNoItems)
	}
	s.Items = refs(items)
	return Reply{Text: "Choose the item:", Buttons: itemNames(s.Items)}, StateChangeItem, nil
}

func (e *Engine) changeItem(ctx context.Context, s *Session, in Input) (Reply, State, error) {
	idx := -1
	if in.Kind == KindText {
		idx = slices.IndexFunc(s.Items, func(r ItemRef) bool {
			return catalog.SameName(r.Name, strings.TrimSpace(in.Text))
		})
	}
	if idx < 0 {
		return stay(s, textUnknown, itemNames(s.Items))
	}

	s.TargetID = s.Items[idx].ID
	it, ok, err := e.fetchTarget(ctx, s)
	if err != nil {
		return Reply{}, "", err
	}
	if !ok {
		return done(textStale)
	}
	return Reply{
		Text:    ItemCard(it) + "\nWhat do you want to change?",
		Buttons: fieldButtons,
		Photos:  it.Photos,
	}, StateChangeField, nil
}

func (e *Engine) changeField(ctx context.Context, s *Session, in Input) (Reply, State, error) {
	idx := -1
	if in.Kind == KindText {
		idx = slices.IndexFunc(editFields, func(f EditField) bool { return isWord(in, string(f)) })
	}
	if idx < 0 {
		return stay(s, textUnknown, fieldButtons)
	}
	f := editFields[idx]

	it, ok, err := e.fetchTarget(ctx, s)
	if err != nil {
		return Reply{}, "", err
	}
	if !ok {
		return done(textStale)
	}
	s.Edit = f

	if f == EditDelete {
		return Reply{
			Text:    fmt.Sprintf("Delete %q (ID %d)? %s", it.Name, it.ID, textAskConfirm),
			Buttons: yesNoButtons,
		}, StateChangeDelete, nil
	}
	if f == EditID {
		ids, err := e.Repo.ItemIDs(ctx)
		if err != nil {
			return Reply{}, "", err
		}
		s.UsedIDs = ids
	}
	return Reply{Text: promptFor(f, s), Buttons: buttonsFor(f)}, StateChangeValue, nil
}

func promptFor(f EditField, s *Session) string {
	switch f {
	case EditID:
		return strings.Replace(askID(s.UsedIDs), "STEP 1: ", "", 1)
	case EditName:
		return textAskName
	case EditPhotos:
		return textAskPhotos
	case EditMainPhoto:
		return textAskMainPhoto
	case EditPrice:
		return textAskPrice
	case EditDescription:
		return textAskDesc
	case EditShortDescription:
		return textAskShortDesc
	case EditStock:
		return textAskStock
	case EditVisible:
		return textAskVisible
	case EditQuickView:
		return textAskQuickView
	}
	return textUnknown
}

func buttonsFor(f EditField) []string {
	switch f {
	case EditShortDescription:
		return shortDescButtons
	case EditVisible:
		return yesNoButtons
	}
	return cancelButtons
}

// parseEdit validates the new value for f against the current item.
func (e *Engine) parseEdit(ctx context.Context, s *Session, it catalog.Item, in Input) (catalog.Field, any, bool, error) {
	switch s.Edit {
	case EditID:
		id, ok := parseItemID(in)
		if ok && id != it.ID && slices.Contains(s.UsedIDs, id) {
			ok = false
		}
		return catalog.FieldID, id, ok, nil
	case EditName:
		name, ok := parseName(in)
		if !ok {
			return "", nil, false, nil
		}
		names, err := e.Repo.ItemNames(ctx)
		if err != nil {
			return "", nil, false, err
		}
		names = slices.DeleteFunc(names, func(n string) bool { return n == it.Name })
		return catalog.FieldName, name, !catalog.ContainsName(names, name), nil
	case EditPhotos:
		photos, ok := parsePhotos(in)
		return catalog.FieldPhotos, photos, ok, nil
	case EditMainPhoto:
		if in.Kind != KindPhoto || len(in.Photos) != 1 {
			return "", nil, false, nil
		}
		photos := slices.Clone(it.Photos)
		if len(photos) == 0 {
			photos = []string{in.Photos[0]}
		} else {
			photos[0] = in.Photos[0]
		}
		return catalog.FieldPhotos, photos, true, nil
	case EditPrice:
		price, ok := parsePrice(in)
		return catalog.FieldPrice, price, ok, nil
	case EditDescription:
		desc, ok := parseDescription(in)
		return catalog.FieldDescription, desc, ok, nil
	case EditShortDescription:
		short, ok := parseShortDescription(in)
		return catalog.FieldShortDescription, short, ok, nil
	case EditStock:
		n, ok := parseStock(in)
		return catalog.FieldStock, n, ok, nil
	case EditVisible:
		yes, ok := parseYesNo(in)
		return catalog.FieldVisible, yes, ok, nil
	case EditQuickView:
		qv, ok := parseQuickView(in)
		return catalog.FieldQuickView, qv, ok, nil
	}
	return "", nil, false, fmt.Errorf("wizard: unknown edit field %q", s.Edit)
}

func (e *Engine) changeValue(ctx context.Context, s *Session, in Input) (Reply, State, error) {
	it, ok, err := e.fetchTarget(ctx, s)
	if err != nil {
		return Reply{}, "", err
	}
	if !ok {
		return done(textStale)
	}

	field, value, ok, err := e.parseEdit(ctx, s, it, in)
	if err != nil {
		return Reply{}, "", err
	}
	if !ok {
		return stay(s, rejected(in, promptFor(s.Edit, s)), buttonsFor(s.Edit))
	}

	if err := e.Repo.UpdateItemField(ctx, it.ID, field, value); err != nil {
		var uv *catalog.UniqueViolation
		switch {
		case errors.As(err, &uv):
			return done(uniqueText(uv))
		case errors.Is(err, catalog.ErrNotFound):
			return done(textStale)
		case errors.Is(err, catalog.ErrForeignKey):
			return done(textForeignKey)
		}
		return Reply{}, "", err
	}

	id := it.ID
	if field == catalog.FieldID {
		id = value.(int)
	}
	updated, err := e.Repo.Item(ctx, id)
	if err != nil {
		return done(fmt.Sprintf("%s updated. /admin", s.Edit))
	}
	return Reply{Text: fmt.Sprintf("%s updated.\n\n%s", s.Edit, ItemCard(updated))}, StateDone, nil
}

func (e *Engine) changeDelete(ctx context.Context, s *Session, in Input) (Reply, State, error) {
	yes, ok := parseYesNo(in)
	if !ok {
		return stay(s, textAskConfirm, yesNoButtons)
	}
	if !yes {
		it, ok, err := e.fetchTarget(ctx, s)
		if err != nil {
			return Reply{}, "", err
		}
		if !ok {
			return done(textStale)
		}
		return Reply{Text: ItemCard(it) + "\nWhat do you want to change?", Buttons: fieldButtons}, StateChangeField, nil
	}

	err := e.Repo.DeleteItem(ctx, s.TargetID)
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		return done(textStale)
	case errors.Is(err, catalog.ErrForeignKey):
		return done(textForeignKey)
	case err != nil:
		return Reply{}, "", err
	}
	return done(fmt.Sprintf("Item ID %d deleted. /admin", s.TargetID))
}
