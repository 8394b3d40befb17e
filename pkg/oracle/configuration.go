package oracle

import (
	"github.com/OccupiedPorcupine/beat-your-meet/pkg/common"
	"time"
)

const (
	DefaultBaseUrl = "https://api.mistral.ai/v1"
	DefaultModel   = "mistral-small-latest"
)

func NewConfiguration() Configuration {
	return Configuration{
		true,
		DefaultBaseUrl,
		DefaultModel,
		"",
		"any",
		time.Second * 10,
		false,
	}
}

type Configuration struct {
	Enabled bool   `yaml:"enabled"`
	BaseUrl string `yaml:"baseUrl,omitempty"`
	Model   string `yaml:"model,omitempty"`

	// ApiKey is only used if the platform has no credential store or the
	// store holds no key.
	ApiKey     string        `yaml:"apiKey,omitempty"`
	ToolChoice string        `yaml:"toolChoice,omitempty"`
	Timeout    time.Duration `yaml:"timeout,omitempty"`

	PromptForApiKey bool `yaml:"promptForApiKey,omitempty"`
}

func (this *Configuration) SetupConfiguration(using common.FlagHolder) {
	using.Flag("oracle.enabled", "If disabled the facilitator only acts on timers and explicit commands.").
		Envar("BYM_ORACLE_ENABLED").
		BoolVar(&this.Enabled)
	using.Flag("oracle.baseUrl", "Base URL of the OpenAI compatible chat completions API.").
		Envar("BYM_ORACLE_BASE_URL").
		StringVar(&this.BaseUrl)
	using.Flag("oracle.model", "Model to use for judgments, summaries and answers.").
		Envar("BYM_ORACLE_MODEL").
		StringVar(&this.Model)
	using.Flag("oracle.apiKey", "API key of the chat completions API.").
		Envar("BYM_ORACLE_API_KEY").
		StringVar(&this.ApiKey)
	using.Flag("oracle.toolChoice", "Tool choice sent along with requests which expect a tool call.").
		Envar("BYM_ORACLE_TOOL_CHOICE").
		StringVar(&this.ToolChoice)
	using.Flag("oracle.timeout", "Maximum duration of one request.").
		Envar("BYM_ORACLE_TIMEOUT").
		DurationVar(&this.Timeout)
	using.Flag("oracle.promptForApiKey", "Ask on the terminal for the API key if none is available.").
		Envar("BYM_ORACLE_PROMPT_FOR_API_KEY").
		BoolVar(&this.PromptForApiKey)
}
