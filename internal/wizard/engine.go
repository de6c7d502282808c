// Package wizard drives admins through the multi-step catalog forms.
//
// Each admin has at most one Session. A message is routed to the handler of
// the session's current State, which either re-prompts (state unchanged),
// moves to a state allowed by validNext, or closes the session. Nothing is
// written to the catalog before the final step of a flow.
package wizard

import (
	"context"
	"errors"
	"fmt"
	"github.com/ariefcatur/go-shop-bot/internal/catalog"
	"strings"
)

var ErrNoSession = errors.New("wizard: no active session")

// Reply is what the admin sees after a message. Photos, when present, are
// sent as an album before Text.
type Reply struct {
	Text    string
	Buttons []string
	Photos  []string
}

type Engine struct {
	Repo     catalog.Repository
	Sessions Store
}

type step func(ctx context.Context, s *Session, in Input) (Reply, State, error)

// Start opens (or restarts) the admin menu.
func (e *Engine) Start(ctx context.Context, adminID int64) (Reply, error) {
	s := &Session{AdminID: adminID, Flow: FlowMenu, State: StateMenu}
	if err := e.Sessions.Save(ctx, s); err != nil {
		return Reply{}, err
	}
	return Reply{Text: textMenu, Buttons: menuButtons}, nil
}

func (e *Engine) Active(ctx context.Context, adminID int64) (bool, error) {
	s, err := e.Sessions.Load(ctx, adminID)
	return s != nil, err
}

// Handle feeds one message into the admin's session.
func (e *Engine) Handle(ctx context.Context, adminID int64, in Input) (Reply, error) {
	s, err := e.Sessions.Load(ctx, adminID)
	if err != nil {
		return Reply{}, err
	}
	if s == nil {
		return Reply{}, ErrNoSession
	}
	if isCancel(in) {
		if err := e.Sessions.Delete(ctx, adminID); err != nil {
			return Reply{}, err
		}
		return Reply{Text: textCancelled}, nil
	}

	fn := e.step(s.State)
	if fn == nil {
		_ = e.Sessions.Delete(ctx, adminID)
		return Reply{}, fmt.Errorf("wizard: no handler for state %q", s.State)
	}

	from := s.State
	r, next, err := fn(ctx, s, in)
	if err != nil {
		return Reply{}, err
	}
	if next != from && !CanTransition(from, next) {
		_ = e.Sessions.Delete(ctx, adminID)
		return Reply{}, fmt.Errorf("wizard: illegal transition %s -> %s", from, next)
	}

	if next == StateDone {
		return r, e.Sessions.Delete(ctx, adminID)
	}
	if from == StateMenu && next != from {
		s.Flow = flowOf[next]
	}
	s.State = next
	return r, e.Sessions.Save(ctx, s)
}

func (e *Engine) step(st State) step {
	switch st {
	case StateMenu:
		return e.menu

	case StateAddID:
		return e.addID
	case StateAddCategory:
		return e.addCategory
	case StateAddSubcategory:
		return e.addSubcategory
	case StateAddName:
		return e.addName
	case StateAddPhotos:
		return e.addPhotos
	case StateAddPrice:
		return e.addPrice
	case StateAddDescription:
		return e.addDescription
	case StateAddShortDescription:
		return e.addShortDescription
	case StateAddStock:
		return e.addStock
	case StateAddVisible:
		return e.addVisible
	case StateAddQuickView:
		return e.addQuickView

	case StateChangeCategory:
		return e.changeCategory
	case StateChangeSubcategory:
		return e.changeSubcategory
	case StateChangeItem:
		return e.changeItem
	case StateChangeField:
		return e.changeField
	case StateChangeValue:
		return e.changeValue
	case StateChangeDelete:
		return e.changeDelete

	case StateDelCatCategory:
		return e.delCatCategory
	case StateDelCatConfirm:
		return e.delCatConfirm
	case StateRenCatCategory:
		return e.renCatCategory
	case StateRenCatName:
		return e.renCatName
	case StateDelSubCategory:
		return e.delSubCategory
	case StateDelSubSubcategory:
		return e.delSubSubcategory
	case StateDelSubConfirm:
		return e.delSubConfirm
	case StateRenSubCategory:
		return e.renSubCategory
	case StateRenSubSubcategory:
		return e.renSubSubcategory
	case StateRenSubName:
		return e.renSubName
	}
	return nil
}

func stay(s *Session, text string, buttons []string) (Reply, State, error) {
	return Reply{Text: text, Buttons: buttons}, s.State, nil
}

func done(text string) (Reply, State, error) {
	return Reply{Text: text}, StateDone, nil
}

func (e *Engine) menu(ctx context.Context, s *Session, in Input) (Reply, State, error) {
	var next State
	for label, st := range menuFlows {
		if isWord(in, label) {
			next = st
		}
	}
	if next == "" {
		return stay(s, textUnknown, menuButtons)
	}

	cats, err := e.Repo.Categories(ctx, catalog.ScopeAll)
	if err != nil {
		return Reply{}, "", err
	}
	s.Categories = cats

	if next == StateAddID {
		ids, err := e.Repo.ItemIDs(ctx)
		if err != nil {
			return Reply{}, "", err
		}
		s.UsedIDs = ids
		return Reply{Text: askID(ids), Buttons: idButtons}, StateAddID, nil
	}
	if len(cats) == 0 {
		return done(textNoItems)
	}
	return Reply{Text: "Choose a category:", Buttons: categoryNames(cats)}, next, nil
}

// chooseCategory matches a button press against the categories loaded into
// the session.
func chooseCategory(s *Session, in Input) (catalog.Category, bool) {
	if in.Kind != KindText {
		return catalog.Category{}, false
	}
	return catalog.FindCategory(s.Categories, strings.TrimSpace(in.Text))
}

func chooseSubcategory(s *Session, in Input) (catalog.Subcategory, bool) {
	if in.Kind != KindText {
		return catalog.Subcategory{}, false
	}
	return catalog.FindSubcategory(s.Subcategories, strings.TrimSpace(in.Text))
}

func categoryCodes(cats []catalog.Category) []int {
	out := make([]int, len(cats))
	for i, c := range cats {
		out[i] = c.Code
	}
	return out
}

func subcategoryCodes(subs []catalog.Subcategory) []int {
	out := make([]int, 0, len(subs))
	for _, s := range subs {
		if !s.None() {
			out = append(out, s.Code)
		}
	}
	return out
}

func hasNone(subs []catalog.Subcategory) bool {
	for _, s := range subs {
		if s.None() {
			return true
		}
	}
	return false
}
