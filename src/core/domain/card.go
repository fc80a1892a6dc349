package domain

import "time"

// CardData is the event payload rendered on a card.
type CardData struct {
	EventName string
	Start     time.Time
	End       time.Time
	Covers    []string
	Features  []string // nil when the card carries no feature list
	EventType *string
}

// Card is the display model of an event. Width and Height are optional
// layout hints supplied by the submitting form.
type Card struct {
	ID     string
	Width  *string
	Height *string
	Data   CardData
}

// Equal reports whether two cards carry the same values, comparing
// dates by instant.
func (c Card) Equal(o Card) bool {
	if c.ID != o.ID || !equalOptional(c.Width, o.Width) || !equalOptional(c.Height, o.Height) {
		return false
	}
	a, b := c.Data, o.Data
	if a.EventName != b.EventName || !a.Start.Equal(b.Start) || !a.End.Equal(b.End) {
		return false
	}
	if !equalOptional(a.EventType, b.EventType) || !equalStrings(a.Covers, b.Covers) {
		return false
	}
	if (a.Features == nil) != (b.Features == nil) {
		return false
	}
	return equalStrings(a.Features, b.Features)
}

// CoverAt returns the cover at index, wrapping around the list length.
// It reports false for an empty list.
func CoverAt(covers []string, index int) (string, bool) {
	n := len(covers)
	if n == 0 {
		return "", false
	}
	i := index % n
	if i < 0 {
		i += n
	}
	return covers[i], true
}

// CoverRotation tracks which cover of a card is on display. Reading the
// current cover never moves it; only Advance does.
type CoverRotation struct {
	index int
}

// Current returns the cover on display.
func (r *CoverRotation) Current(covers []string) (string, bool) {
	return CoverAt(covers, r.index)
}

// Advance moves to the next cover and returns it.
func (r *CoverRotation) Advance(covers []string) (string, bool) {
	if len(covers) == 0 {
		r.index = 0
		return "", false
	}
	r.index = (r.index + 1) % len(covers)
	return covers[r.index], true
}

// Index returns the rotation position.
func (r *CoverRotation) Index() int {
	return r.index
}

func equalOptional(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
