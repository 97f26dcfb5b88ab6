package usecase

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xavierca1/voyage-leads/internal/entity"
)

const (
	summarySystemPrompt = "You write concise internal sales notes. Answer with plain text only, no markdown and no preamble."
	scoreSystemPrompt   = "You are a lead scoring service. Respond with a single JSON object matching the provided schema and nothing else."

	chatSystemPrompt = `You are an expert AI assistant for Classy Voyage, a premium flight booking agency.

Your role is to:
- Help customers find and book flights
- Provide information about destinations, flight classes, and pricing
- Collect customer requirements (origin, destination, dates, passengers, class preference)
- Offer personalized recommendations based on budget and preferences
- Be professional, friendly, and helpful

Key points:
- Always prioritize customer satisfaction
- Ask clarifying questions when needed
- Suggest premium options when appropriate
- Be knowledgeable about flight classes (economy, premium economy, business, first class)
- Help with date flexibility to find better deals

Current conversation context is provided in the message history.`
)

// scoreSchema is the output contract of the Score flow.
var scoreSchema = OutputSchema{
	Name: "lead_score",
	Schema: json.RawMessage(`{
  "type": "object",
  "properties": {
    "score": {"type": "number"},
    "reasoning": {"type": "string", "minLength": 1}
  },
  "required": ["score", "reasoning"]
}`),
}

func buildSummaryPrompt(lead entity.Lead, conversation string) string {
	fi := lead.FlightInquiry

	var b strings.Builder
	b.WriteString("You are an AI assistant for Classy Voyage, a premium flight booking agency.\n\n")
	fmt.Fprintf(&b, "Analyze the following %s interaction with %s and provide a concise summary focusing on:\n", lead.InteractionType, lead.Name)
	b.WriteString("- Customer intent and requirements\n")
	b.WriteString("- Budget and preferences\n")
	b.WriteString("- Level of engagement and buying signals\n")
	b.WriteString("- Recommended next steps\n\n")

	b.WriteString("Flight Inquiry Details:\n")
	fmt.Fprintf(&b, "- Route: %s to %s\n", fi.Origin, fi.Destination)
	dates := fi.DepartureDate
	if fi.ReturnDate != nil && *fi.ReturnDate != "" {
		dates += " - " + *fi.ReturnDate
	}
	fmt.Fprintf(&b, "- Dates: %s\n", dates)
	fmt.Fprintf(&b, "- Passengers: %d adult(s), %d child(ren), %d infant(s)\n",
		fi.Passengers.Adults, fi.Passengers.Children, fi.Passengers.Infants)
	fmt.Fprintf(&b, "- Class: %s\n", fi.Class)
	if fi.Budget != nil && *fi.Budget != "" {
		fmt.Fprintf(&b, "- Budget: %s\n", *fi.Budget)
	}

	fmt.Fprintf(&b, "\nConversation:\n%s\n\n", conversation)
	b.WriteString("Provide a professional summary in 2-3 sentences.")
	return b.String()
}

func buildScorePrompt(lead entity.Lead, conversation string) string {
	fi := lead.FlightInquiry

	var b strings.Builder
	b.WriteString("You are an AI lead scoring system for Classy Voyage, a premium flight booking agency.\n\n")
	fmt.Fprintf(&b, "Analyze this %s interaction with %s and assign a lead score from 0-100 based on:\n", lead.InteractionType, lead.Name)
	b.WriteString("- Budget potential (higher class = higher score)\n")
	b.WriteString("- Engagement level and response quality\n")
	b.WriteString("- Clarity of travel plans\n")
	b.WriteString("- Urgency of booking\n")
	b.WriteString("- Likelihood to convert\n\n")

	b.WriteString("Flight Details:\n")
	fmt.Fprintf(&b, "- Route: %s to %s\n", fi.Origin, fi.Destination)
	fmt.Fprintf(&b, "- Class: %s\n", fi.Class)
	if fi.Budget != nil && *fi.Budget != "" {
		fmt.Fprintf(&b, "- Budget: %s\n", *fi.Budget)
	}

	fmt.Fprintf(&b, "\nConversation:\n%s\n\n", conversation)
	b.WriteString("Provide a JSON response with:\n")
	b.WriteString("- score: A number from 0-100\n")
	b.WriteString("- reasoning: A brief explanation (1-2 sentences)")
	return b.String()
}
