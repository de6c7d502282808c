package checkout

import (
	_ "embed"
	"errors"
	"fmt"
	"gopkg.in/yaml.v3"
	"slices"
	"strings"
)

//go:embed shipping.yaml
var defaultShipping []byte

type Price struct {
	Label  string `yaml:"label"`
	Amount int    `yaml:"amount"`
}

type ShippingOption struct {
	ID     string  `yaml:"id"`
	Title  string  `yaml:"title"`
	Prices []Price `yaml:"prices"`
}

// Fee is the sum of the option's prices.
func (o ShippingOption) Fee() int {
	fee := 0
	for _, p := range o.Prices {
		fee += p.Amount
	}
	return fee
}

type Shipping struct {
	Countries []string         `yaml:"countries"`
	Options   []ShippingOption `yaml:"options"`
}

const textNoDelivery = "We don't deliver there"

func LoadShipping(b []byte) (Shipping, error) {
	var s Shipping
	if err := yaml.Unmarshal(b, &s); err != nil {
		return Shipping{}, fmt.Errorf("parse shipping: %w", err)
	}
	if len(s.Options) == 0 {
		return Shipping{}, errors.New("parse shipping: no options")
	}
	seen := map[string]bool{}
	for _, o := range s.Options {
		if o.ID == "" || seen[o.ID] {
			return Shipping{}, fmt.Errorf("parse shipping: bad or duplicate option id %q", o.ID)
		}
		for _, p := range o.Prices {
			if p.Amount < 0 {
				return Shipping{}, fmt.Errorf("parse shipping: negative fee in %q", o.ID)
			}
		}
		seen[o.ID] = true
	}
	return s, nil
}

// DefaultShipping returns the built-in options.
func DefaultShipping() Shipping {
	s, err := LoadShipping(defaultShipping)
	if err != nil {
		panic(err)
	}
	return s
}

func (s Shipping) Option(id string) (ShippingOption, bool) {
	i := slices.IndexFunc(s.Options, func(o ShippingOption) bool { return o.ID == id })
	if i < 0 {
		return ShippingOption{}, false
	}
	return s.Options[i], true
}

func (s Shipping) Delivers(country string) bool {
	return slices.ContainsFunc(s.Countries, func(c string) bool { return strings.EqualFold(c, country) })
}

type ShippingAnswer struct {
	OK      bool
	Options []ShippingOption
	Error   string
}

// Answer replies to a shipping query: every option for a deliverable
// country, a refusal otherwise.
func (s Shipping) Answer(q ShippingQuery) ShippingAnswer {
	if !s.Delivers(q.Address.CountryCode) {
		return ShippingAnswer{Error: textNoDelivery}
	}
	return ShippingAnswer{OK: true, Options: s.Options}
}
