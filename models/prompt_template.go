package models

import (
	"fmt"
	"time"
)

// TemplateType identifies the generation purpose of a prompt template
type TemplateType string

const (
	TemplateTypeGenerateProps TemplateType = "generate_props"
	TemplateTypeRewriteText   TemplateType = "rewrite_text"
)

// PromptTemplate represents a reusable, placeholder-bearing prompt bound to a
// page-builder component type
type PromptTemplate struct {
	ID             int64        `json:"id"`
	ComponentType  string       `json:"component_type"`
	TemplateName   string       `json:"template_name"`
	TemplateType   TemplateType `json:"template_type"`
	PromptTemplate string       `json:"prompt_template"`
	OutputSchema   *string      `json:"output_schema,omitempty"`
	IsDefault      bool         `json:"is_default"`
	Enabled        bool         `json:"enabled"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

// Validate checks that the template has the fields required to create it
func (t *PromptTemplate) Validate() error {
	if t.ComponentType == "" {
		return fmt.Errorf("component_type is required")
	}
	if t.TemplateName == "" {
		return fmt.Errorf("template_name is required")
	}
	if t.TemplateType == "" {
		return fmt.Errorf("template_type is required")
	}
	if t.PromptTemplate == "" {
		return fmt.Errorf("prompt_template is required")
	}
	return nil
}
