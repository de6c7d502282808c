package wizard

import (
	"regexp"
	"strconv"
	"strings"
)

type Kind int

const (
	KindText Kind = iota
	KindPhoto
	KindPhotoGroup
	// KindMediaGroup is an album holding something other than photos.
	KindMediaGroup
	KindOther
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindPhoto:
		return "photo"
	case KindPhotoGroup:
		return "photo group"
	case KindMediaGroup:
		return "media group"
	}
	return "other"
}

// Input is one admin message as the wizard sees it.
type Input struct {
	Kind   Kind
	Text   string
	Photos []string
}

func Text(s string) Input { return Input{Kind: KindText, Text: s} }

func Photo(id string) Input { return Input{Kind: KindPhoto, Photos: []string{id}} }

func PhotoGroup(ids ...string) Input { return Input{Kind: KindPhotoGroup, Photos: ids} }

var (
	reItemID    = regexp.MustCompile(`^[1-9][0-9]{0,3}$`)
	reName      = regexp.MustCompile(`^.{1,30}$`)
	rePrice     = regexp.MustCompile(`^[1-9][0-9]{1,5}$|^1000000$`)
	reDesc      = regexp.MustCompile(`(?s)^.{1,800}$`)
	reShortDesc = regexp.MustCompile(`^.{1,50}$`)
	reStock     = regexp.MustCompile(`^[1-9][0-9]{0,3}$|^0$`)
	rePhotoURL  = regexp.MustCompile(`^https?://\S+\.(?:jpg|jpeg)$`)
	cancelWords = []string{labelCancel, "отмена"}
)

const maxPhotos = 10

func isWord(in Input, word string) bool {
	return in.Kind == KindText && strings.EqualFold(strings.TrimSpace(in.Text), word)
}

func isCancel(in Input) bool {
	for _, w := range cancelWords {
		if isWord(in, w) {
			return true
		}
	}
	return false
}

func text(in Input) (string, bool) {
	if in.Kind != KindText {
		return "", false
	}
	return strings.TrimSpace(in.Text), true
}

func parseItemID(in Input) (int, bool) {
	s, ok := text(in)
	if !ok || !reItemID.MatchString(s) {
		return 0, false
	}
	n, _ := strconv.Atoi(s)
	return n, true
}

func parseName(in Input) (string, bool) {
	s, ok := text(in)
	if !ok || !reName.MatchString(s) {
		return "", false
	}
	return s, true
}

func parsePrice(in Input) (int, bool) {
	s, ok := text(in)
	if !ok || !rePrice.MatchString(s) {
		return 0, false
	}
	n, _ := strconv.Atoi(s)
	return n, true
}

func parseDescription(in Input) (string, bool) {
	s, ok := text(in)
	if !ok || !reDesc.MatchString(s) {
		return "", false
	}
	return s, true
}

func parseShortDescription(in Input) (string, bool) {
	if isWord(in, labelNotRequired) {
		return "", true
	}
	s, ok := text(in)
	if !ok || !reShortDesc.MatchString(s) {
		return "", false
	}
	return s, true
}

func parseStock(in Input) (int, bool) {
	s, ok := text(in)
	if !ok || !reStock.MatchString(s) {
		return 0, false
	}
	n, _ := strconv.Atoi(s)
	return n, true
}

func parseYesNo(in Input) (yes, ok bool) {
	switch {
	case isWord(in, labelYes):
		return true, true
	case isWord(in, labelNo):
		return false, true
	}
	return false, false
}

// parsePhotos accepts a single photo or an album of up to ten photos.
func parsePhotos(in Input) ([]string, bool) {
	switch in.Kind {
	case KindPhoto, KindPhotoGroup:
		if len(in.Photos) == 0 || len(in.Photos) > maxPhotos {
			return nil, false
		}
		return append([]string(nil), in.Photos...), true
	}
	return nil, false
}

// parseQuickView accepts one photo or a link to a jpeg.
func parseQuickView(in Input) (string, bool) {
	switch in.Kind {
	case KindPhoto:
		if len(in.Photos) != 1 {
			return "", false
		}
		return in.Photos[0], true
	case KindText:
		s := strings.TrimSpace(in.Text)
		if rePhotoURL.MatchString(s) {
			return s, true
		}
	}
	return "", false
}
