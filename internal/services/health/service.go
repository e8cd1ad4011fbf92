package health

// Status is the body of GET /health/.
type Status struct {
	Status           string `json:"status"`
	Message          string `json:"message"`
	OpenAIConfigured bool   `json:"openai_configured"`
}

// Service encapsulates health-related checks.
type Service struct {
	openAIConfigured bool
}

// NewService constructs a new health service.
func NewService(openAIConfigured bool) *Service {
	return &Service{openAIConfigured: openAIConfigured}
}

// Status returns the health payload.
func (s *Service) Status() Status {
	return Status{
		Status:           "ok",
		Message:          "API is working",
		OpenAIConfigured: s.openAIConfigured,
	}
}
