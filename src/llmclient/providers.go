package llmclient

const (
	ProviderOpenRouter = "openrouter"
	ProviderOpenAI     = "openai"
	ProviderAnthropic  = "anthropic"
	ProviderGemini     = "gemini"
	ProviderOllama     = "ollama"
)

type providerInfo struct {
	baseURL   string
	apiKeyEnv string
}

// every provider is reached through its OpenAI-compatible chat completions endpoint
var providers = map[string]providerInfo{
	ProviderOpenRouter: {baseURL: "https://openrouter.ai/api/v1", apiKeyEnv: "OPENROUTER_API_KEY"},
	ProviderOpenAI:     {baseURL: "https://api.openai.com/v1", apiKeyEnv: "OPENAI_API_KEY"},
	ProviderAnthropic:  {baseURL: "https://api.anthropic.com/v1", apiKeyEnv: "ANTHROPIC_API_KEY"},
	ProviderGemini:     {baseURL: "https://generativelanguage.googleapis.com/v1beta/openai", apiKeyEnv: "GEMINI_API_KEY"},
	ProviderOllama:     {baseURL: "http://localhost:11434/v1"},
}

// Providers lists the supported provider names
func Providers() []string {
	return []string{ProviderOpenRouter, ProviderOpenAI, ProviderAnthropic, ProviderGemini, ProviderOllama}
}

// IsKnownProvider reports whether name is a supported provider
func IsKnownProvider(name string) bool {
	_, ok := providers[name]
	return ok
}

// DefaultBaseURL returns the API base URL of a provider, "" when unknown
func DefaultBaseURL(provider string) string {
	return providers[provider].baseURL
}

// DefaultAPIKeyEnv returns the environment variable conventionally holding
// the provider's API key. Local providers return "".
func DefaultAPIKeyEnv(provider string) string {
	return providers[provider].apiKeyEnv
}

// RequiresAPIKey reports whether calls to provider must be authenticated
func RequiresAPIKey(provider string) bool {
	return DefaultAPIKeyEnv(provider) != ""
}

// some small Gemma models reject a system role
var noSystemRoleModels = []string{"gemma-3-1b-it", "gemma-3-4b-it"}
