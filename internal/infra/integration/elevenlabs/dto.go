package elevenlabs

// Payload is a post-call webhook body. The provider owns the format and may
// add keys at any time, so it is kept as an open map.
type Payload map[string]any

// Keys read from a post-call payload.
const (
	KeyConversationID      = "conversation_id"
	KeyCallID              = "call_id"
	KeyCustomerName        = "customer_name"
	KeyCustomerEmail       = "customer_email"
	KeyCustomerPhone       = "customer_phone"
	KeyDepartureCity       = "departure_city"
	KeyDestinationCity     = "destination_city"
	KeyTravelDates         = "travel_dates"
	KeyPassengers          = "passengers"
	KeyAirlinePreference   = "airline_preference"
	KeySpecialRequirements = "special_requirements"
	KeyTranscript          = "transcript"
	KeySummary             = "summary"
	KeyLanguage            = "language"
)

const (
	DefaultSummary    = "No summary provided"
	DefaultTranscript = ""

	// SignatureHeader carries "t=<unix>,v0=<hex hmac>".
	SignatureHeader = "ElevenLabs-Signature"
)
