package entity

import (
	"strings"
	"time"
)

type LeadSource string

const SourceElevenLabsPhone LeadSource = "elevenlabs-phone"

type Language string

const (
	LanguageEnglish Language = "en"
	LanguageFrench  Language = "fr"
)

// ParseLanguage only accepts the exact supported codes.
func ParseLanguage(s string) (Language, bool) {
	switch Language(s) {
	case LanguageEnglish, LanguageFrench:
		return Language(s), true
	}
	return "", false
}

// StoredLead is the persisted lead document. Optional fields are pointers so
// the document always carries every key, with null for unknown values.
type StoredLead struct {
	ExternalID          *string    `json:"externalId"`
	Source              LeadSource `json:"source"`
	Name                *string    `json:"name"`
	Email               *string    `json:"email"`
	Phone               *string    `json:"phone"`
	DepartureCity       *string    `json:"departureCity"`
	DestinationCity     *string    `json:"destinationCity"`
	TravelDates         *string    `json:"travelDates"`
	Passengers          *int       `json:"passengers"`
	AirlinePreference   *string    `json:"airlinePreference"`
	SpecialRequirements *string    `json:"specialRequirements"`
	Summary             string     `json:"summary"`
	Transcript          string     `json:"transcript"`
	Language            *Language  `json:"language"`

	// Enrichment written back through EnrichmentPatch.
	AISummary      *string    `json:"aiSummary"`
	LeadScore      *float64   `json:"leadScore"`
	ScoreReasoning *string    `json:"scoreReasoning"`
	EnrichedAt     *time.Time `json:"enrichedAt"`

	CreatedAt time.Time `json:"createdAt"`
}

// LeadRecord is a stored lead together with its database-assigned id.
type LeadRecord struct {
	ID string `json:"id"`
	StoredLead
}

type LeadStatus string

const (
	StatusNew         LeadStatus = "new"
	StatusContacted   LeadStatus = "contacted"
	StatusQualified   LeadStatus = "qualified"
	StatusProposal    LeadStatus = "proposal"
	StatusNegotiation LeadStatus = "negotiation"
	StatusWon         LeadStatus = "won"
	StatusLost        LeadStatus = "lost"
)

// LeadStatuses is the pipeline order of statuses.
var LeadStatuses = []LeadStatus{
	StatusNew, StatusContacted, StatusQualified, StatusProposal, StatusNegotiation, StatusWon, StatusLost,
}

func ParseLeadStatus(s string) (LeadStatus, bool) {
	for _, st := range LeadStatuses {
		if string(st) == strings.ToLower(strings.TrimSpace(s)) {
			return st, true
		}
	}
	return "", false
}

// IsQualified reports whether the lead is in the qualified part of the funnel.
func (s LeadStatus) IsQualified() bool {
	return s == StatusQualified || s == StatusProposal || s == StatusNegotiation
}

type InteractionType string

const (
	InteractionChat  InteractionType = "chat"
	InteractionVoice InteractionType = "voice"
)

type FlightClass string

const (
	ClassEconomy        FlightClass = "economy"
	ClassPremiumEconomy FlightClass = "premium-economy"
	ClassBusiness       FlightClass = "business"
	ClassFirst          FlightClass = "first-class"
)

type ChatRole string

const (
	RoleUser      ChatRole = "user"
	RoleAssistant ChatRole = "assistant"
)

type ChatMessage struct {
	ID        string    `json:"id"`
	Role      ChatRole  `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

type Speaker string

const (
	SpeakerCustomer Speaker = "customer"
	SpeakerAgent    Speaker = "agent"
)

type VoiceTranscript struct {
	ID        string    `json:"id"`
	Speaker   Speaker   `json:"speaker"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
	Duration  float64   `json:"duration"`
}

type Passengers struct {
	Adults   int `json:"adults"`
	Children int `json:"children"`
	Infants  int `json:"infants"`
}

type FlightInquiry struct {
	Origin        string      `json:"origin"`
	Destination   string      `json:"destination"`
	DepartureDate string      `json:"departureDate"`
	ReturnDate    *string     `json:"returnDate,omitempty"`
	Passengers    Passengers  `json:"passengers"`
	Class         FlightClass `json:"class"`
	Budget        *string     `json:"budget,omitempty"`
}

// Lead is the application view of a lead used by the dashboard and the
// enrichment flows.
type Lead struct {
	ID               string            `json:"id"`
	Name             string            `json:"name"`
	Email            string            `json:"email"`
	Phone            string            `json:"phone"`
	Status           LeadStatus        `json:"status"`
	InteractionType  InteractionType   `json:"interactionType"`
	ChatHistory      []ChatMessage     `json:"chatHistory,omitempty"`
	VoiceTranscripts []VoiceTranscript `json:"voiceTranscripts,omitempty"`
	FlightInquiry    FlightInquiry     `json:"flightInquiry"`
	AISummary        *string           `json:"aiSummary,omitempty"`
	LeadScore        *float64          `json:"leadScore,omitempty"`
	CreatedAt        time.Time         `json:"createdAt"`
	UpdatedAt        time.Time         `json:"updatedAt"`
	Notes            *string           `json:"notes,omitempty"`
}
