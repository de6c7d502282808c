package checkout

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// MaxPayloadBytes is the provider's limit on the invoice payload.
const MaxPayloadBytes = 128

var ErrBadPayload = errors.New("checkout: bad payload")

type Source byte

const (
	SourceBasket Source = 'b'
	SourceItem   Source = 'i'
)

type Line struct {
	ItemID   int
	Quantity int
}

// Payload is what travels with the invoice. Wire form:
// id:qty:id:qty:...:m where m is b (basket) or i (single item).
type Payload struct {
	Lines  []Line
	Source Source
}

func (p Payload) FromBasket() bool { return p.Source == SourceBasket }

func (p Payload) Encode() string {
	var b strings.Builder
	for _, l := range p.Lines {
		b.WriteString(strconv.Itoa(l.ItemID))
		b.WriteByte(':')
		b.WriteString(strconv.Itoa(l.Quantity))
		b.WriteByte(':')
	}
	b.WriteByte(byte(p.Source))
	return b.String()
}

// Fits reports whether the encoded payload stays within MaxPayloadBytes.
func (p Payload) Fits() bool { return len(p.Encode()) <= MaxPayloadBytes }

func ParsePayload(s string) (Payload, error) {
	if len(s) > MaxPayloadBytes {
		return Payload{}, fmt.Errorf("%w: %d bytes", ErrBadPayload, len(s))
	}
	parts := strings.Split(s, ":")
	n := len(parts) - 1
	if n < 2 || n%2 != 0 {
		return Payload{}, fmt.Errorf("%w: %q", ErrBadPayload, s)
	}

	var p Payload
	switch parts[n] {
	case string(SourceBasket):
		p.Source = SourceBasket
	case string(SourceItem):
		p.Source = SourceItem
	default:
		return Payload{}, fmt.Errorf("%w: marker %q", ErrBadPayload, parts[n])
	}

	seen := map[int]bool{}
	for i := 0; i < n; i += 2 {
		id, err := strconv.Atoi(parts[i])
		if err != nil || id < 1 || id > 9999 || seen[id] {
			return Payload{}, fmt.Errorf("%w: item %q", ErrBadPayload, parts[i])
		}
		qty, err := strconv.Atoi(parts[i+1])
		if err != nil || qty < 1 {
			return Payload{}, fmt.Errorf("%w: quantity %q", ErrBadPayload, parts[i+1])
		}
		seen[id] = true
		p.Lines = append(p.Lines, Line{ItemID: id, Quantity: qty})
	}
	if p.Source == SourceItem && len(p.Lines) != 1 {
		return Payload{}, fmt.Errorf("%w: single item payload with %d lines", ErrBadPayload, len(p.Lines))
	}
	return p, nil
}
