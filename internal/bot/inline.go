package bot

import (
	"context"
	"fmt"
	"github.com/ariefcatur/go-shop-bot/internal/catalog"
	"github.com/ariefcatur/go-shop-bot/internal/transport"
	"strconv"
)

const (
	inlinePage  = 50
	inlineCache = 5 // seconds
)

// onInline answers a name search in the private chat with the bot. Typed in
// any other chat the query offers the shop link instead.
func (r *Router) onInline(ctx context.Context, from User, q InlineQuery) error {
	if q.ChatType != ChatSender {
		return r.Sender.AnswerInline(ctx, transport.InlineAnswer{
			QueryID:   q.ID,
			CacheTime: inlineCache,
			Results: []transport.InlineResult{{
				ID:          "share",
				Title:       textShareTitle,
				Description: textShareDescription,
				Text:        textShareLink(r.startLink(from.ID)),
			}},
		})
	}

	offset, err := strconv.Atoi(q.Offset)
	if err != nil || offset < 0 {
		offset = 0
	}
	// one extra row tells whether another page follows
	items, err := r.Catalog.ItemsLike(ctx, q.Query, offset, inlinePage+1)
	if err != nil {
		return err
	}
	a := transport.InlineAnswer{QueryID: q.ID, CacheTime: inlineCache, Results: []transport.InlineResult{}}
	if len(items) > inlinePage {
		items = items[:inlinePage]
		a.NextOffset = strconv.Itoa(offset + inlinePage)
	}
	for _, it := range items {
		a.Results = append(a.Results, inlineResult(it))
	}
	return r.Sender.AnswerInline(ctx, a)
}

func inlineResult(it catalog.Item) transport.InlineResult {
	desc := it.ShortDescription
	if desc == "" {
		desc = it.Description
	}
	return transport.InlineResult{
		ID:          strconv.Itoa(it.ID),
		Title:       it.Name,
		Description: fmt.Sprintf("Price: %d\n%s", it.Price, desc),
		ThumbURL:    it.QuickView,
		Text:        fmt.Sprintf("Price: %d\n%s", it.Price, it.Description),
		Button:      transport.Button{Text: fmt.Sprintf("Open %q in the catalog", it.Name), Data: cb(cbItem, it.ID, 1)},
	}
}
