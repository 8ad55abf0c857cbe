package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"easy-website/models"
	"easy-website/observability"
)

const promptTemplateColumns = `id, component_type, template_name, template_type, prompt_template,
		output_schema, is_default, enabled, created_at, updated_at`

func scanPromptTemplate(row pgx.Row) (*models.PromptTemplate, error) {
	var t models.PromptTemplate
	err := row.Scan(&t.ID, &t.ComponentType, &t.TemplateName, &t.TemplateType, &t.PromptTemplate,
		&t.OutputSchema, &t.IsDefault, &t.Enabled, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// FindTemplate resolves the enabled prompt template for a component and
// template type, preferring the default-flagged one and breaking ties by
// lowest id. Returns nil when no enabled template matches.
func (r *Repository) FindTemplate(ctx context.Context, componentType string, templateType models.TemplateType) (*models.PromptTemplate, error) {
	timer := observability.GetMetrics().NewTimer()
	defer timer.ObserveDB("select", "ai_prompt_templates")

	query := fmt.Sprintf(`
		SELECT %s FROM ai_prompt_templates
		WHERE component_type = $1 AND template_type = $2 AND enabled
		ORDER BY is_default DESC, id ASC
		LIMIT 1`, promptTemplateColumns)

	tmpl, err := scanPromptTemplate(r.db.QueryRow(ctx, query, componentType, templateType))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find prompt template for %s/%s: %w", componentType, templateType, err)
	}
	return tmpl, nil
}

// GetTemplate returns a prompt template by id, or nil if it does not exist.
func (r *Repository) GetTemplate(ctx context.Context, id int64) (*models.PromptTemplate, error) {
	query := fmt.Sprintf(`SELECT %s FROM ai_prompt_templates WHERE id = $1`, promptTemplateColumns)

	tmpl, err := scanPromptTemplate(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get prompt template %d: %w", id, err)
	}
	return tmpl, nil
}

// ListTemplates returns all prompt templates grouped by component.
func (r *Repository) ListTemplates(ctx context.Context) ([]models.PromptTemplate, error) {
	query := fmt.Sprintf(`SELECT %s FROM ai_prompt_templates ORDER BY component_type ASC, template_name ASC`, promptTemplateColumns)

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list prompt templates: %w", err)
	}
	defer rows.Close()

	var templates []models.PromptTemplate
	for rows.Next() {
		t, err := scanPromptTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan prompt template: %w", err)
		}
		templates = append(templates, *t)
	}
	return templates, rows.Err()
}

// CreateTemplate inserts a new prompt template and fills in its generated fields.
func (r *Repository) CreateTemplate(ctx context.Context, t *models.PromptTemplate) error {
	query := `
		INSERT INTO ai_prompt_templates (component_type, template_name, template_type,
			prompt_template, output_schema, is_default, enabled)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRow(ctx, query, t.ComponentType, t.TemplateName, t.TemplateType,
		t.PromptTemplate, t.OutputSchema, t.IsDefault, t.Enabled).
		Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create prompt template: %w", err)
	}
	return nil
}

// UpdateTemplate updates an existing prompt template.
func (r *Repository) UpdateTemplate(ctx context.Context, t *models.PromptTemplate) error {
	query := `
		UPDATE ai_prompt_templates
		SET component_type = $1, template_name = $2, template_type = $3, prompt_template = $4,
			output_schema = $5, is_default = $6, enabled = $7, updated_at = NOW()
		WHERE id = $8
		RETURNING updated_at`

	err := r.db.QueryRow(ctx, query, t.ComponentType, t.TemplateName, t.TemplateType,
		t.PromptTemplate, t.OutputSchema, t.IsDefault, t.Enabled, t.ID).Scan(&t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update prompt template %d: %w", t.ID, err)
	}
	return nil
}

// DeleteTemplate removes a prompt template by id.
func (r *Repository) DeleteTemplate(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM ai_prompt_templates WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete prompt template %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("failed to delete prompt template %d: %w", id, pgx.ErrNoRows)
	}
	return nil
}
