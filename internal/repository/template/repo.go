package template

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/wb-go/wbf/dbpg"

	"github.com/aliskhannn/photowatermark/internal/model"
)

// ErrTemplateNotFound is returned when no template has the requested name.
var ErrTemplateNotFound = errors.New("template not found")

// Repository stores watermark templates in Postgres.
type Repository struct {
	db *dbpg.DB
}

// NewRepository creates a new Repository with the given DB connection.
func NewRepository(db *dbpg.DB) *Repository {
	return &Repository{db: db}
}

// SaveTemplate inserts a template or replaces the one with the same name.
func (r *Repository) SaveTemplate(ctx context.Context, t model.Template) (model.Template, error) {
	query := `
		INSERT INTO templates (name, watermark, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (name) DO UPDATE
		SET watermark = EXCLUDED.watermark, updated_at = EXCLUDED.updated_at
		RETURNING updated_at
	`

	wmJSON, err := json.Marshal(t.Watermark)
	if err != nil {
		return model.Template{}, fmt.Errorf("save: failed to marshal watermark: %w", err)
	}

	err = r.db.Master.QueryRowContext(ctx, query, t.Name, wmJSON).Scan(&t.UpdatedAt)
	if err != nil {
		return model.Template{}, fmt.Errorf("save: failed to save template: %w", err)
	}

	return t, nil
}

// GetTemplate retrieves a template by name.
func (r *Repository) GetTemplate(ctx context.Context, name string) (model.Template, error) {
	query := `
		SELECT watermark, updated_at
		FROM templates
		WHERE name = $1
	`

	t := model.Template{Name: name}
	var wmBytes []byte

	err := r.db.QueryRowContext(ctx, query, name).Scan(&wmBytes, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Template{}, ErrTemplateNotFound
		}

		return model.Template{}, fmt.Errorf("get: failed to get template: %w", err)
	}

	if err := json.Unmarshal(wmBytes, &t.Watermark); err != nil {
		return model.Template{}, fmt.Errorf("get: failed to unmarshal watermark: %w", err)
	}

	return t, nil
}

// ListTemplates returns all templates ordered by name.
func (r *Repository) ListTemplates(ctx context.Context) ([]model.Template, error) {
	query := `
		SELECT name, watermark, updated_at
		FROM templates
		ORDER BY name
	`

	rows, err := r.db.Master.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list: failed to query templates: %w", err)
	}
	defer rows.Close()

	var templates []model.Template
	for rows.Next() {
		var t model.Template
		var wmBytes []byte
		if err := rows.Scan(&t.Name, &wmBytes, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("list: failed to scan template: %w", err)
		}
		if err := json.Unmarshal(wmBytes, &t.Watermark); err != nil {
			return nil, fmt.Errorf("list: failed to unmarshal watermark of %s: %w", t.Name, err)
		}
		templates = append(templates, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list: failed to iterate templates: %w", err)
	}

	return templates, nil
}

// DeleteTemplate deletes a template by name.
func (r *Repository) DeleteTemplate(ctx context.Context, name string) error {
	query := `
		DELETE FROM templates WHERE name = $1
	`

	res, err := r.db.ExecContext(ctx, query, name)
	if err != nil {
		return fmt.Errorf("delete: failed to delete template: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete: failed to get number of rows affected: %w", err)
	}

	if n == 0 {
		return ErrTemplateNotFound
	}

	return nil
}
