package llm

import "github.com/m-mizutani/goerr/v2"

// Model is one chat completion model the gateway may call.
type Model struct {
	ID          string `yaml:"id" json:"id"`
	DisplayName string `yaml:"display_name" json:"display_name"`
	Description string `yaml:"description" json:"description"`
}

// Catalog lists the models an OpenAI compatible endpoint serves and which
// of them are used for chat turns and for titles.
type Catalog struct {
	Endpoint string   `yaml:"endpoint" json:"endpoint"`
	Models   []Model  `yaml:"models" json:"models"`
	Defaults Defaults `yaml:"defaults" json:"defaults"`
}

type Defaults struct {
	Chat  string `yaml:"chat"`
	Title string `yaml:"title"`
}

// HasModel reports whether id is listed in the catalog.
func (c *Catalog) HasModel(id string) bool {
	if id == "" {
		return false
	}
	for _, m := range c.Models {
		if m.ID == id {
			return true
		}
	}
	return false
}

// Validate checks that both default models are listed.
func (c *Catalog) Validate() error {
	if len(c.Models) == 0 {
		return goerr.New("no model is configured")
	}
	if !c.HasModel(c.Defaults.Chat) {
		return goerr.New("default chat model is not in catalog", goerr.V("model", c.Defaults.Chat))
	}
	if !c.HasModel(c.Defaults.Title) {
		return goerr.New("default title model is not in catalog", goerr.V("model", c.Defaults.Title))
	}
	return nil
}
