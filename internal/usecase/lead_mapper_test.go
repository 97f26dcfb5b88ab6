package usecase

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/voyage-leads/internal/entity"
)

func sampleStoredLead() entity.StoredLead {
	return entity.StoredLead{
		ExternalID:          strPtr("conv-1"),
		Source:              entity.SourceElevenLabsPhone,
		Name:                strPtr("Jane Doe"),
		Email:               strPtr("jane@example.com"),
		Phone:               strPtr("+15145550000"),
		DepartureCity:       strPtr("Montreal"),
		DestinationCity:     strPtr("Paris"),
		TravelDates:         strPtr("2025-06-01 to 2025-06-15"),
		Passengers:          intPtr(3),
		SpecialRequirements: strPtr("Window seat"),
		Summary:             "Wants business class",
		Transcript:          "Customer: I want to fly to Paris",
		CreatedAt:           time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestToLead(t *testing.T) {
	lead := ToLead("lead-1", sampleStoredLead())

	assert.Equal(t, "lead-1", lead.ID)
	assert.Equal(t, "Jane Doe", lead.Name)
	assert.Equal(t, "jane@example.com", lead.Email)
	assert.Equal(t, "+15145550000", lead.Phone)
	assert.Equal(t, entity.StatusNew, lead.Status)
	assert.Equal(t, entity.InteractionVoice, lead.InteractionType)
	assert.Equal(t, "Montreal", lead.FlightInquiry.Origin)
	assert.Equal(t, "Paris", lead.FlightInquiry.Destination)
	assert.Equal(t, "2025-06-01", lead.FlightInquiry.DepartureDate)
	require.NotNil(t, lead.FlightInquiry.ReturnDate)
	assert.Equal(t, "2025-06-15", *lead.FlightInquiry.ReturnDate)
	assert.Equal(t, entity.Passengers{Adults: 3}, lead.FlightInquiry.Passengers)
	assert.Equal(t, entity.ClassEconomy, lead.FlightInquiry.Class)
	require.NotNil(t, lead.AISummary)
	assert.Equal(t, "Wants business class", *lead.AISummary)
	require.NotNil(t, lead.Notes)
	assert.Equal(t, "Window seat", *lead.Notes)
	assert.Equal(t, lead.CreatedAt, lead.UpdatedAt)

	require.Len(t, lead.VoiceTranscripts, 1)
	assert.Equal(t, "lead-1-transcript", lead.VoiceTranscripts[0].ID)
	assert.Equal(t, entity.SpeakerCustomer, lead.VoiceTranscripts[0].Speaker)
	assert.Equal(t, lead.CreatedAt, lead.VoiceTranscripts[0].Timestamp)
}

func TestToLeadDefaults(t *testing.T) {
	lead := ToLead("lead-2", entity.StoredLead{Source: entity.SourceElevenLabsPhone})

	assert.Equal(t, UnknownCallerName, lead.Name)
	assert.Equal(t, UnknownCity, lead.FlightInquiry.Origin)
	assert.Equal(t, UnknownCity, lead.FlightInquiry.Destination)
	assert.Equal(t, "", lead.FlightInquiry.DepartureDate)
	assert.Nil(t, lead.FlightInquiry.ReturnDate)
	assert.Equal(t, 1, lead.FlightInquiry.Passengers.Adults)
	assert.Nil(t, lead.AISummary)
	assert.Nil(t, lead.Notes)
	assert.Nil(t, lead.LeadScore)
	assert.Empty(t, lead.VoiceTranscripts)
}

// TestToLeadIsDeterministic - mapping the same document twice yields equal leads
func TestToLeadIsDeterministic(t *testing.T) {
	stored := sampleStoredLead()
	assert.Equal(t, ToLead("lead-1", stored), ToLead("lead-1", stored))
}

func TestToLeadPrefersPersistedEnrichment(t *testing.T) {
	stored := sampleStoredLead()
	enrichedAt := stored.CreatedAt.Add(time.Hour)
	score := 82.0
	stored.AISummary = strPtr("High intent business traveller")
	stored.LeadScore = &score
	stored.EnrichedAt = &enrichedAt

	lead := ToLead("lead-1", stored)

	assert.Equal(t, "High intent business traveller", *lead.AISummary)
	assert.Equal(t, 82.0, *lead.LeadScore)
	assert.Equal(t, enrichedAt, lead.UpdatedAt)

	// the view does not alias the stored document
	*lead.LeadScore = 10
	assert.Equal(t, 82.0, *stored.LeadScore)
}

func TestSplitTravelDates(t *testing.T) {
	t.Run("with return date", func(t *testing.T) {
		dep, ret := SplitTravelDates("2025-06-01 to 2025-06-15")
		assert.Equal(t, "2025-06-01", dep)
		require.NotNil(t, ret)
		assert.Equal(t, "2025-06-15", *ret)
	})

	t.Run("single date", func(t *testing.T) {
		dep, ret := SplitTravelDates("2025-06-01")
		assert.Equal(t, "2025-06-01", dep)
		assert.Nil(t, ret)
	})

	t.Run("empty", func(t *testing.T) {
		dep, ret := SplitTravelDates("")
		assert.Equal(t, "", dep)
		assert.Nil(t, ret)
	})

	t.Run("separator inside a value", func(t *testing.T) {
		dep, ret := SplitTravelDates("back to school week to 2025-09-10")
		assert.Equal(t, "back", dep)
		require.NotNil(t, ret)
		assert.Equal(t, "school week", *ret)
	})
}

func TestComputeLeadStats(t *testing.T) {
	leads := []entity.Lead{
		{Status: entity.StatusNew},
		{Status: entity.StatusQualified},
		{Status: entity.StatusProposal},
		{Status: entity.StatusNegotiation},
		{Status: entity.StatusWon},
	}

	assert.Equal(t, LeadStats{Total: 5, Qualified: 3}, ComputeLeadStats(leads))
	assert.Equal(t, LeadStats{}, ComputeLeadStats(nil))
}
