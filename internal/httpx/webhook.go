package httpx

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"github.com/ariefcatur/go-shop-bot/internal/bot"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"log"
	"net/http"
)

// SecretHeader carries the shared secret the gateway was registered with.
const SecretHeader = "X-Bot-Api-Secret-Token"

const maxUpdateBytes = 1 << 20

type Enqueuer interface {
	Enqueue(ctx context.Context, trace string, u bot.Update) error
}

// WebhookHandler accepts updates pushed by the messenger gateway and hands
// them to the dispatcher. It answers as soon as the update is queued.
type WebhookHandler struct {
	Updates Enqueuer
	Secret  string
}

func (h *WebhookHandler) Register(r *chi.Mux) {
	r.Post("/updates", h.receive)
}

func (h *WebhookHandler) receive(w http.ResponseWriter, r *http.Request) {
	if h.Secret != "" && subtle.ConstantTimeCompare([]byte(r.Header.Get(SecretHeader)), []byte(h.Secret)) != 1 {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "bad secret"})
		return
	}

	var u bot.Update
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxUpdateBytes)).Decode(&u); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if !u.Valid() {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "update must carry a sender and exactly one payload"})
		return
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}

	err := h.Updates.Enqueue(r.Context(), middleware.GetReqID(r.Context()), u)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]string{"status": "queued", "update_id": u.ID})
	case errors.Is(err, bot.ErrThrottled):
		// retrying would only flood the user further
		writeJSON(w, http.StatusOK, map[string]string{"status": "dropped", "update_id": u.ID})
	case errors.Is(err, bot.ErrBusy), errors.Is(err, bot.ErrStopped):
		log.Printf("webhook: update %s from %d: %v", u.ID, u.From.ID, err)
		w.Header().Set("Retry-After", "1")
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": err.Error()})
	default:
		log.Printf("webhook: update %s from %d: %v", u.ID, u.From.ID, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal"})
	}
}
