package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/abhisek/quizarcade/internal/quiz"
	"github.com/abhisek/quizarcade/internal/templates"
)

// TemplateRepo is the game template table. It satisfies templates.Repository
// and adds the write and listing operations used by the CLI.
type TemplateRepo interface {
	templates.Repository

	// Upsert inserts or replaces a template by ID.
	Upsert(ctx context.Context, t templates.Template) error

	// Get returns a template by ID, or nil if it does not exist.
	Get(ctx context.Context, id string) (*templates.Template, error)

	// List returns every template ordered by type then name.
	List(ctx context.Context) ([]templates.Template, error)

	// Delete removes a template. Deleting a missing ID is not an error.
	Delete(ctx context.Context, id string) error
}

type templateRepo struct {
	db *sql.DB
}

const templateColumns = `id, name, code, game_controls, game_instructions, supported_question_type`

func (r *templateRepo) ByTypes(ctx context.Context, types []quiz.QuestionType) ([]templates.Template, error) {
	if len(types) == 0 {
		return nil, nil
	}

	placeholders := make([]string, len(types))
	args := make([]any, len(types))
	for i, t := range types {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = string(t)
	}

	query := `SELECT ` + templateColumns + ` FROM game_templates
		WHERE supported_question_type IN (` + strings.Join(placeholders, ", ") + `)
		ORDER BY created_at, id`
	return r.query(ctx, query, args...)
}

func (r *templateRepo) Upsert(ctx context.Context, t templates.Template) error {
	controls := t.Controls
	if controls == nil {
		controls = []templates.ControlDescriptor{}
	}
	b, err := json.Marshal(controls)
	if err != nil {
		return fmt.Errorf("encode controls: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO game_templates (`+templateColumns+`, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			code = EXCLUDED.code,
			game_controls = EXCLUDED.game_controls,
			game_instructions = EXCLUDED.game_instructions,
			supported_question_type = EXCLUDED.supported_question_type`,
		t.ID, t.Name, t.Code, string(b), t.Instructions, string(t.SupportedType), time.Now().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("upsert template %s: %w", t.ID, err)
	}
	return nil
}

func (r *templateRepo) Get(ctx context.Context, id string) (*templates.Template, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+templateColumns+` FROM game_templates WHERE id = $1`, id)
	t, err := scanTemplate(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get template %s: %w", id, err)
	}
	return &t, nil
}

func (r *templateRepo) List(ctx context.Context) ([]templates.Template, error) {
	return r.query(ctx, `SELECT `+templateColumns+` FROM game_templates
		ORDER BY supported_question_type, name, id`)
}

func (r *templateRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM game_templates WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete template %s: %w", id, err)
	}
	return nil
}

func (r *templateRepo) query(ctx context.Context, query string, args ...any) ([]templates.Template, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query templates: %w", err)
	}
	defer rows.Close()

	var out []templates.Template
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("scan template: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate templates: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTemplate(row rowScanner) (templates.Template, error) {
	var (
		t        templates.Template
		controls string
		typ      string
	)
	if err := row.Scan(&t.ID, &t.Name, &t.Code, &controls, &t.Instructions, &typ); err != nil {
		return templates.Template{}, err
	}
	t.Controls = templates.NormalizeControls(controls)
	t.SupportedType = quiz.QuestionType(typ)
	return t, nil
}
