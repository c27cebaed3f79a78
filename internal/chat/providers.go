package chat

import "strings"

type Provider struct {
	Name     string
	Endpoint string
	Model    string
	// Attribution sends HTTP-Referer and X-Title.
	Attribution bool
}

var providers = []Provider{
	{Name: "deepseek", Endpoint: "https://api.deepseek.com/v1/chat/completions", Model: "deepseek-chat"},
	{Name: "openrouter", Endpoint: "https://openrouter.ai/api/v1/chat/completions", Model: "openai/gpt-3.5-turbo", Attribution: true},
	{Name: "openai", Endpoint: "https://api.openai.com/v1/chat/completions", Model: "gpt-3.5-turbo"},
}

var keyEnv = map[string]string{
	"deepseek":   "DEEPSEEK_API_KEY",
	"openrouter": "OPENROUTER_API_KEY",
	"openai":     "OPENAI_API_KEY",
}

// LookupProvider returns the named provider, or the first one when the name
// is unknown.
func LookupProvider(name string) Provider {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, p := range providers {
		if p.Name == name {
			return p
		}
	}
	return providers[0]
}

// ResolveCredentials picks the provider and its API key. An explicit
// provider only looks at its own key; otherwise the first provider with a
// key set wins.
func ResolveCredentials(explicit string, getenv func(string) string) (provider, apiKey string) {
	explicit = strings.ToLower(strings.TrimSpace(explicit))
	if env, ok := keyEnv[explicit]; ok {
		return explicit, strings.TrimSpace(getenv(env))
	}
	for _, p := range providers {
		if key := strings.TrimSpace(getenv(keyEnv[p.Name])); key != "" {
			return p.Name, key
		}
	}
	return providers[0].Name, ""
}
