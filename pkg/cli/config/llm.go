package config

import (
	_ "embed"
	"os"
	"path/filepath"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gatherly/pkg/domain/model/llm"
	llmService "github.com/m-mizutani/gatherly/pkg/service/llm"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

//go:embed templates/llm.yaml
var defaultCatalog string

// LLMConfig holds the language model gateway configuration
type LLMConfig struct {
	CatalogFile string // YAML file path
	APIKey      string `masq:"secret"`

	// Overrides of the catalog
	BaseURL    string
	ChatModel  string
	TitleModel string
}

// LoadCatalog reads the catalog file, or the embedded default, applies the
// overrides and validates the result.
func (c *LLMConfig) LoadCatalog() (*llm.Catalog, error) {
	var catalog llm.Catalog

	if c.CatalogFile != "" {
		data, err := os.ReadFile(c.CatalogFile)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to read LLM catalog file", goerr.V("file", c.CatalogFile))
		}

		if err := yaml.Unmarshal(data, &catalog); err != nil {
			return nil, goerr.Wrap(err, "failed to parse LLM catalog", goerr.V("file", c.CatalogFile))
		}
	} else {
		if err := yaml.Unmarshal([]byte(defaultCatalog), &catalog); err != nil {
			return nil, goerr.Wrap(err, "failed to parse default LLM catalog")
		}
	}

	if c.BaseURL != "" {
		catalog.Endpoint = c.BaseURL
	}
	if c.ChatModel != "" {
		catalog.Defaults.Chat = c.ChatModel
	}
	if c.TitleModel != "" {
		catalog.Defaults.Title = c.TitleModel
	}

	if err := catalog.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid LLM catalog", goerr.V("file", c.CatalogFile))
	}

	return &catalog, nil
}

// Configure creates the gateway for the catalog's default models
func (c *LLMConfig) Configure() (*llmService.Gateway, error) {
	if c.APIKey == "" {
		return nil, goerr.New("LLM API key is required")
	}

	catalog, err := c.LoadCatalog()
	if err != nil {
		return nil, err
	}

	opts := []llmService.Option{
		llmService.WithModel(catalog.Defaults.Chat),
		llmService.WithTitleModel(catalog.Defaults.Title),
	}
	if catalog.Endpoint != "" {
		opts = append(opts, llmService.WithBaseURL(catalog.Endpoint))
	}

	return llmService.New(c.APIKey, opts...)
}

// Flags returns CLI flags for LLM configuration
func (c *LLMConfig) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "llm-config",
			Sources:     cli.EnvVars("GATHERLY_LLM_CONFIG"),
			Usage:       "Path to LLM catalog file",
			Destination: &c.CatalogFile,
		},
		&cli.StringFlag{
			Name:        "llm-api-key",
			Sources:     cli.EnvVars("GATHERLY_LLM_API_KEY", "OPENAI_API_KEY"),
			Usage:       "API key of the OpenAI compatible endpoint",
			Destination: &c.APIKey,
		},
		&cli.StringFlag{
			Name:        "llm-base-url",
			Sources:     cli.EnvVars("GATHERLY_LLM_BASE_URL"),
			Usage:       "OpenAI compatible endpoint (overrides config file)",
			Destination: &c.BaseURL,
		},
		&cli.StringFlag{
			Name:        "llm-chat-model",
			Sources:     cli.EnvVars("GATHERLY_LLM_CHAT_MODEL"),
			Usage:       "Model for conversation turns (overrides config file)",
			Destination: &c.ChatModel,
		},
		&cli.StringFlag{
			Name:        "llm-title-model",
			Sources:     cli.EnvVars("GATHERLY_LLM_TITLE_MODEL"),
			Usage:       "Model for conversation titles (overrides config file)",
			Destination: &c.TitleModel,
		},
	}
}

// GetDefaultCatalog returns the default catalog template
func GetDefaultCatalog() string {
	return defaultCatalog
}

// GenerateConfigFile writes the default configuration to a file
func GenerateConfigFile(outputPath string) error {
	dir := filepath.Dir(outputPath)
	if err := os.MkdirAll(dir, 0750); err != nil { // #nosec G301 - 0750 is appropriate for config directories
		return goerr.Wrap(err, "failed to create directory", goerr.V("dir", dir))
	}

	if err := os.WriteFile(outputPath, []byte(defaultCatalog), 0600); err != nil { // #nosec G306 - 0600 is appropriate for config files
		return goerr.Wrap(err, "failed to write config file", goerr.V("path", outputPath))
	}

	return nil
}
