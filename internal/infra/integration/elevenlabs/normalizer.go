package elevenlabs

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/xavierca1/voyage-leads/internal/entity"
)

// Normalize maps a post-call payload onto the stored lead shape. Every field
// is resolved on its own; anything missing or of the wrong type becomes null
// or the field default. CreatedAt is left for the store.
func Normalize(p Payload) entity.StoredLead {
	externalID := stringField(p, KeyConversationID)
	if externalID == nil {
		externalID = stringField(p, KeyCallID)
	}

	return entity.StoredLead{
		ExternalID:          externalID,
		Source:              entity.SourceElevenLabsPhone,
		Name:                stringField(p, KeyCustomerName),
		Email:               stringField(p, KeyCustomerEmail),
		Phone:               stringField(p, KeyCustomerPhone),
		DepartureCity:       stringField(p, KeyDepartureCity),
		DestinationCity:     stringField(p, KeyDestinationCity),
		TravelDates:         stringField(p, KeyTravelDates),
		Passengers:          passengersField(p[KeyPassengers]),
		AirlinePreference:   stringField(p, KeyAirlinePreference),
		SpecialRequirements: stringField(p, KeySpecialRequirements),
		Summary:             stringOr(p, KeySummary, DefaultSummary),
		Transcript:          stringOr(p, KeyTranscript, DefaultTranscript),
		Language:            languageField(p[KeyLanguage]),
	}
}

func stringField(p Payload, key string) *string {
	s, ok := p[key].(string)
	if !ok || s == "" {
		return nil
	}
	return &s
}

func stringOr(p Payload, key, def string) string {
	if s := stringField(p, key); s != nil {
		return *s
	}
	return def
}

func languageField(v any) *entity.Language {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	lang, ok := entity.ParseLanguage(s)
	if !ok {
		return nil
	}
	return &lang
}

// passengersField accepts a whole positive number or a string starting with
// one ("3", "3 adults"). Everything else is unknown.
func passengersField(v any) *int {
	var n int
	switch val := v.(type) {
	case float64:
		if val != math.Trunc(val) || val > math.MaxInt32 {
			return nil
		}
		n = int(val)
	case int:
		n = val
	case int64:
		n = int(val)
	case json.Number:
		i, err := val.Int64()
		if err != nil {
			return nil
		}
		n = int(i)
	case string:
		parsed, ok := leadingInt(val)
		if !ok {
			return nil
		}
		n = parsed
	default:
		return nil
	}
	if n <= 0 {
		return nil
	}
	return &n
}

func leadingInt(s string) (int, bool) {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}
