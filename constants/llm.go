package constants

// Default completion provider settings.
const (
	DefaultLLMBaseURL  = "https://api.groq.com/openai/v1"
	DefaultLLMModel    = "llama-3.3-70b-versatile"
	DefaultGeminiModel = "gemini-2.5-flash"
)

// LLM providers accepted by LLM_PROVIDER.
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)
