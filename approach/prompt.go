package approach

// QueryPromptTemplate is the system instruction sent ahead of the bounded
// history. It asks the model to turn the latest question into a search query.
const QueryPromptTemplate = `
Contained is a history of the conversation so far, including a new question asked by the user that needs to be answered.
If the question is not in English, translate the question to English before generating the search query.
`

// Context carries per-call overrides. A nil *Context means all defaults.
type Context struct {
	// Temperature overrides the approach's default temperature.
	Temperature *float64 `json:"temperature,omitempty" yaml:"temperature,omitempty" toml:"temperature,omitempty"`

	// PromptTemplate, when non-empty, replaces QueryPromptTemplate.
	PromptTemplate string `json:"prompt_template,omitempty" yaml:"prompt_template,omitempty" toml:"prompt_template,omitempty"`

	// PromptTemplatePrefix is prepended to the template.
	PromptTemplatePrefix string `json:"prompt_template_prefix,omitempty" yaml:"prompt_template_prefix,omitempty" toml:"prompt_template_prefix,omitempty"`

	// PromptTemplateSuffix is appended to the template.
	PromptTemplateSuffix string `json:"prompt_template_suffix,omitempty" yaml:"prompt_template_suffix,omitempty" toml:"prompt_template_suffix,omitempty"`
}

// Float returns a pointer to v, for Context.Temperature.
func Float(v float64) *float64 {
	return &v
}

func (c *Context) systemPrompt() string {
	if c == nil {
		return QueryPromptTemplate
	}
	tmpl := QueryPromptTemplate
	if c.PromptTemplate != "" {
		tmpl = c.PromptTemplate
	}
	return c.PromptTemplatePrefix + tmpl + c.PromptTemplateSuffix
}

func (c *Context) temperature(def float64) float64 {
	if c == nil || c.Temperature == nil {
		return def
	}
	return *c.Temperature
}
