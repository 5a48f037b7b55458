package config

import (
	"fmt"
	"net/url"

	"github.com/manifoldco/promptui"
)

// EndpointPreset is a well-known OpenAI-compatible endpoint.
type EndpointPreset struct {
	Name    string
	BaseURL string
	Model   string
}

// endpointPresets are offered by the wizard; "custom" asks for a URL.
var endpointPresets = []EndpointPreset{
	{Name: "siliconflow", BaseURL: defaultBaseURL, Model: defaultModel},
	{Name: "openai", BaseURL: "https://api.openai.com/v1", Model: "gpt-4o-mini"},
	{Name: "openrouter", BaseURL: "https://openrouter.ai/api/v1", Model: "minimax/minimax-m2.5"},
	{Name: "ollama", BaseURL: "http://localhost:11434/v1", Model: "llama3"},
	{Name: "custom"},
}

// GetPreset returns the endpoint preset with the given name.
// Returns the SiliconFlow preset if the name is unknown.
func GetPreset(name string) EndpointPreset {
	for _, p := range endpointPresets {
		if p.Name == name {
			return p
		}
	}
	return endpointPresets[0]
}

// RunWizard runs an interactive configuration wizard and saves the
// resulting Config to path.
func RunWizard(path string) (*Config, error) {
	fmt.Println("Let's configure the LLM sidecar.")
	fmt.Println()

	// 1. Endpoint selection.
	names := make([]string, len(endpointPresets))
	for i, p := range endpointPresets {
		names[i] = p.Name
	}
	endpointPrompt := promptui.Select{
		Label: "Select an OpenAI-compatible endpoint",
		Items: names,
	}
	_, name, err := endpointPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("endpoint selection: %w", err)
	}
	preset := GetPreset(name)

	// 2. Base URL.
	baseURLPrompt := promptui.Prompt{
		Label:    "Base URL",
		Default:  preset.BaseURL,
		Validate: validateBaseURL,
	}
	baseURL, err := baseURLPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("base url: %w", err)
	}

	// 3. Model.
	modelPrompt := promptui.Prompt{
		Label:   "Model",
		Default: preset.Model,
	}
	model, err := modelPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("model: %w", err)
	}

	// 4. API key, masked.
	keyPrompt := promptui.Prompt{
		Label: "API key (leave blank to use " + legacyEnvPrefix + "API_KEY)",
		Mask:  '*',
	}
	apiKey, err := keyPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("api key: %w", err)
	}

	// 5. Journal.
	journalPrompt := promptui.Select{
		Label: "Record every command in a local journal?",
		Items: []string{"no", "yes"},
	}
	journalIdx, _, err := journalPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("journal selection: %w", err)
	}

	cfg := DefaultConfig()
	cfg.LLM.BaseURL = baseURL
	cfg.LLM.Model = model
	cfg.LLM.APIKey = apiKey
	cfg.Journal.Enabled = journalIdx == 1

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if err := cfg.Save(path); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\nConfiguration saved to %s\n", path)
	return cfg, nil
}

func validateBaseURL(s string) error {
	u, err := url.Parse(s)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("must be an absolute URL")
	}
	return nil
}
