package checkout

import "strings"

// MinorUnits converts whole currency units to the provider's amounts.
const MinorUnits = 100

type Address struct {
	CountryCode string `json:"country_code"`
	State       string `json:"state"`
	City        string `json:"city"`
	StreetLine1 string `json:"street_line1"`
	StreetLine2 string `json:"street_line2"`
	PostCode    string `json:"post_code"`
}

func (a Address) String() string {
	parts := []string{a.CountryCode, a.PostCode, a.State, a.City, a.StreetLine1, a.StreetLine2}
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, ", ")
}

type OrderInfo struct {
	Name    string  `json:"name"`
	Phone   string  `json:"phone_number"`
	Email   string  `json:"email"`
	Address Address `json:"shipping_address"`
}

type ShippingQuery struct {
	ID         string  `json:"id"`
	CustomerID int64   `json:"customer_id"`
	Payload    string  `json:"invoice_payload"`
	Address    Address `json:"shipping_address"`
}

// PreCheckoutQuery asks whether the provider may capture TotalAmount
// (minor units, shipping included).
type PreCheckoutQuery struct {
	ID               string    `json:"id"`
	CustomerID       int64     `json:"customer_id"`
	Currency         string    `json:"currency"`
	TotalAmount      int       `json:"total_amount"`
	Payload          string    `json:"invoice_payload"`
	ShippingOptionID string    `json:"shipping_option_id"`
	Order            OrderInfo `json:"order_info"`
}

type SuccessfulPayment struct {
	CustomerID       int64     `json:"customer_id"`
	Currency         string    `json:"currency"`
	TotalAmount      int       `json:"total_amount"`
	Payload          string    `json:"invoice_payload"`
	ShippingOptionID string    `json:"shipping_option_id"`
	Order            OrderInfo `json:"order_info"`
	ChargeID         string    `json:"telegram_payment_charge_id"`
	ProviderChargeID string    `json:"provider_payment_charge_id"`
}
