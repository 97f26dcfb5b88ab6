package usecase

import (
	"strings"

	"github.com/xavierca1/voyage-leads/internal/entity"
)

const (
	UnknownCallerName = "Unknown caller"
	UnknownCity       = "Unknown"

	travelDateSeparator = " to "
)

// ToLead builds the application view of a stored lead. It reads no clock and
// no shared state, so the same input always maps to an equal Lead.
func ToLead(id string, s entity.StoredLead) entity.Lead {
	departure, ret := SplitTravelDates(deref(s.TravelDates))

	adults := 1
	if s.Passengers != nil && *s.Passengers > 0 {
		adults = *s.Passengers
	}

	lead := entity.Lead{
		ID:              id,
		Name:            orDefault(s.Name, UnknownCallerName),
		Email:           deref(s.Email),
		Phone:           deref(s.Phone),
		Status:          entity.StatusNew,
		InteractionType: interactionType(s.Source),
		FlightInquiry: entity.FlightInquiry{
			Origin:        orDefault(s.DepartureCity, UnknownCity),
			Destination:   orDefault(s.DestinationCity, UnknownCity),
			DepartureDate: departure,
			ReturnDate:    ret,
			Passengers:    entity.Passengers{Adults: adults},
			Class:         entity.ClassEconomy,
		},
		LeadScore: copyFloat(s.LeadScore),
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.CreatedAt,
		Notes:     nonEmpty(s.SpecialRequirements),
	}

	if s.EnrichedAt != nil {
		lead.UpdatedAt = *s.EnrichedAt
	}

	// A persisted AI summary wins over the provider's call summary.
	if ai := nonEmpty(s.AISummary); ai != nil {
		lead.AISummary = ai
	} else if s.Summary != "" {
		summary := s.Summary
		lead.AISummary = &summary
	}

	if s.Transcript != "" {
		lead.VoiceTranscripts = []entity.VoiceTranscript{{
			ID:        id + "-transcript",
			Speaker:   entity.SpeakerCustomer,
			Text:      s.Transcript,
			Timestamp: s.CreatedAt,
		}}
	}

	return lead
}

// SplitTravelDates splits "<start> to <end>". Without the separator the whole
// string is the departure date and there is no return date. The separator is
// not escaped, so a value containing " to " elsewhere splits there too.
func SplitTravelDates(travelDates string) (string, *string) {
	parts := strings.Split(travelDates, travelDateSeparator)
	if len(parts) < 2 {
		return travelDates, nil
	}
	ret := parts[1]
	return parts[0], &ret
}

// LeadStats are the dashboard headline counters.
type LeadStats struct {
	Total     int `json:"total"`
	Qualified int `json:"qualified"`
}

func ComputeLeadStats(leads []entity.Lead) LeadStats {
	stats := LeadStats{Total: len(leads)}
	for _, l := range leads {
		if l.Status.IsQualified() {
			stats.Qualified++
		}
	}
	return stats
}

func interactionType(source entity.LeadSource) entity.InteractionType {
	switch source {
	case entity.SourceElevenLabsPhone:
		return entity.InteractionVoice
	default:
		return entity.InteractionChat
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func orDefault(s *string, def string) string {
	if s == nil || *s == "" {
		return def
	}
	return *s
}

func nonEmpty(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	v := *s
	return &v
}

func copyFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}
