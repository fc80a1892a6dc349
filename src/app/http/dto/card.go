package dto

import (
	"encoding/json"
	"fmt"
	"time"

	"eventlisting/src/core/domain"
)

// isoLayout matches JavaScript's Date.toISOString.
const isoLayout = "2006-01-02T15:04:05.000Z07:00"

// CardPostDTO is the flat wire record of a card.
type CardPostDTO struct {
	ID     string       `json:"id"`
	Width  *string      `json:"width"`
	Height *string      `json:"height"`
	Data   CardPostData `json:"data"`
}

// CardPostData is the event part of a CardPostDTO. Dates are ISO-8601.
type CardPostData struct {
	DateStart string   `json:"dateStart"`
	DateEnd   string   `json:"dateEnd"`
	Covers    []string `json:"covers"`
	Features  []string `json:"features"`
	EventType *string  `json:"eventType"`
	EventName string   `json:"eventName"`
}

// EventData is one record of the event list as served by the API.
type EventData struct {
	ID         string   `json:"id"`
	EventName  string   `json:"eventName"`
	EventStart string   `json:"eventStart"`
	EventEnd   string   `json:"eventEnd"`
	Covers     []string `json:"covers"`
	EventType  *string  `json:"eventType"`
	Features   []string `json:"features"`
}

// ToWireFormat flattens card into its wire record. Slices are copied so
// the record never aliases the card.
func ToWireFormat(card domain.Card) CardPostDTO {
	return CardPostDTO{
		ID:     card.ID,
		Width:  card.Width,
		Height: card.Height,
		Data: CardPostData{
			DateStart: formatDate(card.Data.Start),
			DateEnd:   formatDate(card.Data.End),
			Covers:    copyStrings(card.Data.Covers, true),
			Features:  copyStrings(card.Data.Features, false),
			EventType: card.Data.EventType,
			EventName: card.Data.EventName,
		},
	}
}

// FromWireFormat rebuilds a card from its wire record.
func FromWireFormat(rec CardPostDTO) (domain.Card, error) {
	start, err := parseDate("dateStart", rec.Data.DateStart)
	if err != nil {
		return domain.Card{}, err
	}
	end, err := parseDate("dateEnd", rec.Data.DateEnd)
	if err != nil {
		return domain.Card{}, err
	}
	return domain.Card{
		ID:     rec.ID,
		Width:  rec.Width,
		Height: rec.Height,
		Data: domain.CardData{
			EventName: rec.Data.EventName,
			Start:     start,
			End:       end,
			Covers:    copyStrings(rec.Data.Covers, true),
			Features:  copyStrings(rec.Data.Features, false),
			EventType: rec.Data.EventType,
		},
	}, nil
}

// FromEventData maps a list record to a card with no layout hints.
func FromEventData(ev EventData) (domain.Card, error) {
	start, err := parseDate("eventStart", ev.EventStart)
	if err != nil {
		return domain.Card{}, err
	}
	end, err := parseDate("eventEnd", ev.EventEnd)
	if err != nil {
		return domain.Card{}, err
	}
	return domain.Card{
		ID: ev.ID,
		Data: domain.CardData{
			EventName: ev.EventName,
			Start:     start,
			End:       end,
			Covers:    copyStrings(ev.Covers, true),
			Features:  copyStrings(ev.Features, false),
			EventType: ev.EventType,
		},
	}, nil
}

// CardFromCreated maps the API's answer to a create request onto a card
// carrying the layout hints of the submitting form.
func CardFromCreated(raw json.RawMessage, width, height *string) (domain.Card, error) {
	var created struct {
		ID        string   `json:"id"`
		EventName string   `json:"eventName"`
		DateStart string   `json:"dateStart"`
		DateEnd   string   `json:"dateEnd"`
		Covers    []string `json:"covers"`
		EventType *string  `json:"eventType"`
		Features  []string `json:"features"`
	}
	if err := json.Unmarshal(raw, &created); err != nil {
		return domain.Card{}, fmt.Errorf("decode created event: %w", err)
	}
	card, err := FromEventData(EventData{
		ID:         created.ID,
		EventName:  created.EventName,
		EventStart: created.DateStart,
		EventEnd:   created.DateEnd,
		Covers:     created.Covers,
		EventType:  created.EventType,
		Features:   created.Features,
	})
	if err != nil {
		return domain.Card{}, err
	}
	card.Width, card.Height = width, height
	return card, nil
}

func formatDate(t time.Time) string {
	return t.UTC().Format(isoLayout)
}

func parseDate(field, value string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, domain.NewValidationError(field, fmt.Sprintf("invalid date %q", value))
	}
	return t, nil
}

// copyStrings returns a fresh slice. A nil input stays nil unless
// emptyForNil is set.
func copyStrings(in []string, emptyForNil bool) []string {
	if in == nil {
		if emptyForNil {
			return []string{}
		}
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
