// Package events defines the envelopes the shop publishes on Kafka.
package events

import (
	"encoding/json"
	"time"
)

const (
	EventOrderSettled    = "OrderSettled"
	EventPaymentRejected = "PaymentRejected"
	EventBasketExpired   = "BasketExpired"
	EventOutbound        = "OutboundMessage"
)

const Version = 1

type Envelope struct {
	EventID       string          `json:"event_id"`      // uuid
	EventType     string          `json:"event_type"`    // salah satu const di atas
	EventVersion  int             `json:"event_version"` // 1
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"` // e.g., "shop-bot"
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"` // biasanya customer id
	Payload       json.RawMessage `json:"payload"`
}

// ---- Payload tipe per event ----

type SettledLine struct {
	ItemID    int    `json:"item_id"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	Price     int    `json:"price"`
	StockLeft int    `json:"stock_left"`
}

type Shipping struct {
	OptionID string `json:"option_id"`
	Title    string `json:"title"`
	Fee      int    `json:"fee"`
	Address  string `json:"address,omitempty"`
}

type OrderSettledPayload struct {
	CustomerID       int64         `json:"customer_id"`
	CustomerName     string        `json:"customer_name"`
	Phone            string        `json:"phone,omitempty"`
	Email            string        `json:"email,omitempty"`
	FromBasket       bool          `json:"from_basket"`
	Lines            []SettledLine `json:"lines"`
	GoodsTotal       int           `json:"goods_total"`
	Shipping         Shipping      `json:"shipping"`
	Paid             int           `json:"paid"`
	Currency         string        `json:"currency"`
	ChargeID         string        `json:"charge_id"`
	ProviderChargeID string        `json:"provider_charge_id"`
}

type RejectedLine struct {
	ItemID    int    `json:"item_id"`
	Reason    string `json:"reason"` // e.g., GONE, HIDDEN, SHORT_STOCK
	Required  int    `json:"required,omitempty"`
	Available int    `json:"available,omitempty"`
}

type PaymentRejectedPayload struct {
	CustomerID int64          `json:"customer_id"`
	Payload    string         `json:"payload"`
	Reason     string         `json:"reason"` // e.g., DRIFT, TOTAL_MISMATCH, BAD_PAYLOAD
	Lines      []RejectedLine `json:"lines,omitempty"`
	Expected   int            `json:"expected"`
	Authorized int            `json:"authorized"`
}

type BasketExpiredPayload struct {
	CustomerID int64     `json:"customer_id"`
	FiredAt    time.Time `json:"fired_at"`
}

// OutboundPayload is a message for the messenger gateway.
type OutboundPayload struct {
	Kind    string          `json:"kind"` // message | invoice | shipping_answer | pre_checkout_answer
	ChatID  int64           `json:"chat_id,omitempty"`
	Message json.RawMessage `json:"message"`
}
