package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"poke-collect/internal/model"
)

// ErrAssignmentNotFound is returned when an expedition assignment does not
// exist (or does not belong to the player asking).
var ErrAssignmentNotFound = errors.New("expedition assignment not found")

// ExpeditionRepository handles expedition templates, assignments,
// participants and the per-day completion log.
type ExpeditionRepository struct {
	db Querier
}

// NewExpeditionRepository creates a new ExpeditionRepository instance.
func NewExpeditionRepository(db Querier) *ExpeditionRepository {
	return &ExpeditionRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r *ExpeditionRepository) WithTx(tx pgx.Tx) *ExpeditionRepository {
	return &ExpeditionRepository{db: tx}
}

const templateColumns = `id, name, rarity, duration_minutes, requirements, rewards`

func scanTemplate(row pgx.Row) (*model.ExpeditionTemplate, error) {
	var t model.ExpeditionTemplate
	var minutes int
	err := row.Scan(&t.ID, &t.Name, &t.Rarity, &minutes, &t.Requirements, &t.Rewards)
	if err != nil {
		return nil, err
	}
	t.Duration = time.Duration(minutes) * time.Minute
	return &t, nil
}

// InsertTemplate adds a catalog template. Used by seeding and tests.
func (r *ExpeditionRepository) InsertTemplate(ctx context.Context, t *model.ExpeditionTemplate) (*model.ExpeditionTemplate, error) {
	query := `
		INSERT INTO expedition_templates (name, rarity, duration_minutes, requirements, rewards)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + templateColumns

	out, err := scanTemplate(r.db.QueryRow(ctx, query,
		t.Name, t.Rarity, int(t.Duration/time.Minute), t.Requirements, t.Rewards))
	if err != nil {
		return nil, fmt.Errorf("failed to insert template: %w", err)
	}
	return out, nil
}

// EligibleTemplates lists templates the player can still be offered today:
// not currently assigned to them and not completed by them today. The
// completion check reads the date-scoped log, never the (deleted)
// assignment rows.
func (r *ExpeditionRepository) EligibleTemplates(ctx context.Context, playerID int64) ([]*model.ExpeditionTemplate, error) {
	query := `
		SELECT ` + templateColumns + `
		FROM expedition_templates t
		WHERE t.id NOT IN (
			SELECT template_id FROM expedition_assignments WHERE player_id = $1
		)
		AND t.id NOT IN (
			SELECT template_id FROM expedition_completions
			WHERE player_id = $1 AND completed_date = CURRENT_DATE
		)
		ORDER BY t.id
	`

	rows, err := r.db.Query(ctx, query, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list eligible templates: %w", err)
	}
	defer rows.Close()

	var templates []*model.ExpeditionTemplate
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan template: %w", err)
		}
		templates = append(templates, t)
	}
	return templates, rows.Err()
}

const assignmentColumns = `
	a.id, a.player_id, a.template_id, a.assigned_date, a.status, a.started_at, a.ends_at,
	t.id, t.name, t.rarity, t.duration_minutes, t.requirements, t.rewards`

func scanAssignment(row pgx.Row) (*model.ExpeditionAssignment, error) {
	var a model.ExpeditionAssignment
	var t model.ExpeditionTemplate
	var minutes int
	err := row.Scan(
		&a.ID, &a.PlayerID, &a.TemplateID, &a.AssignedDate, &a.Status, &a.StartedAt, &a.EndsAt,
		&t.ID, &t.Name, &t.Rarity, &minutes, &t.Requirements, &t.Rewards,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAssignmentNotFound
		}
		return nil, fmt.Errorf("failed to scan assignment: %w", err)
	}
	t.Duration = time.Duration(minutes) * time.Minute
	a.Template = &t
	return &a, nil
}

// CountAssignments counts the player's live (available or in-progress)
// assignments.
func (r *ExpeditionRepository) CountAssignments(ctx context.Context, playerID int64) (int, error) {
	const query = `SELECT COUNT(*) FROM expedition_assignments WHERE player_id = $1`

	var count int
	if err := r.db.QueryRow(ctx, query, playerID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count assignments: %w", err)
	}
	return count, nil
}

// ListAssignments returns the player's live assignments with templates.
func (r *ExpeditionRepository) ListAssignments(ctx context.Context, playerID int64) ([]*model.ExpeditionAssignment, error) {
	query := `
		SELECT ` + assignmentColumns + `
		FROM expedition_assignments a
		JOIN expedition_templates t ON t.id = a.template_id
		WHERE a.player_id = $1
		ORDER BY a.id
	`

	rows, err := r.db.Query(ctx, query, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}
	defer rows.Close()

	var assignments []*model.ExpeditionAssignment
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, err
		}
		assignments = append(assignments, a)
	}
	return assignments, rows.Err()
}

// CreateAssignment offers a template to the player for today, in state
// available.
func (r *ExpeditionRepository) CreateAssignment(ctx context.Context, playerID, templateID int64) (*model.ExpeditionAssignment, error) {
	query := `
		WITH inserted AS (
			INSERT INTO expedition_assignments (player_id, template_id, assigned_date, status)
			VALUES ($1, $2, CURRENT_DATE, 'available')
			RETURNING *
		)
		SELECT ` + assignmentColumns + `
		FROM inserted a
		JOIN expedition_templates t ON t.id = a.template_id
	`
	return scanAssignment(r.db.QueryRow(ctx, query, playerID, templateID))
}

// GetAssignmentForUpdate loads the player's assignment with a row lock.
func (r *ExpeditionRepository) GetAssignmentForUpdate(ctx context.Context, playerID, assignmentID int64) (*model.ExpeditionAssignment, error) {
	query := `
		SELECT ` + assignmentColumns + `
		FROM expedition_assignments a
		JOIN expedition_templates t ON t.id = a.template_id
		WHERE a.id = $1 AND a.player_id = $2
		FOR UPDATE OF a
	`
	return scanAssignment(r.db.QueryRow(ctx, query, assignmentID, playerID))
}

// StartAssignment transitions an available assignment to in_progress with
// its time window. Returns false if the assignment is not available.
func (r *ExpeditionRepository) StartAssignment(ctx context.Context, assignmentID int64, startedAt, endsAt time.Time) (bool, error) {
	const query = `
		UPDATE expedition_assignments
		SET status = 'in_progress', started_at = $2, ends_at = $3
		WHERE id = $1 AND status = 'available'
	`

	tag, err := r.db.Exec(ctx, query, assignmentID, startedAt, endsAt)
	if err != nil {
		return false, fmt.Errorf("failed to start assignment: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// CreateParticipants links the selected entries to the assignment window.
func (r *ExpeditionRepository) CreateParticipants(ctx context.Context, assignmentID int64, entryIDs []int64, startedAt, endsAt time.Time) error {
	const query = `
		INSERT INTO expedition_participants (assignment_id, entry_id, started_at, ends_at)
		SELECT $1, unnest($2::bigint[]), $3, $4
	`

	if _, err := r.db.Exec(ctx, query, assignmentID, entryIDs, startedAt, endsAt); err != nil {
		return fmt.Errorf("failed to create participants: %w", err)
	}
	return nil
}

// ClaimParticipants stamps claimed_at on the assignment's open
// participations, freeing the entries.
func (r *ExpeditionRepository) ClaimParticipants(ctx context.Context, assignmentID int64, claimedAt time.Time) (int64, error) {
	const query = `
		UPDATE expedition_participants
		SET claimed_at = $2
		WHERE assignment_id = $1 AND claimed_at IS NULL
	`

	tag, err := r.db.Exec(ctx, query, assignmentID, claimedAt)
	if err != nil {
		return 0, fmt.Errorf("failed to claim participants: %w", err)
	}
	return tag.RowsAffected(), nil
}

// DeleteAssignment removes a resolved assignment row, freeing its daily
// slot for tomorrow's replenishment.
func (r *ExpeditionRepository) DeleteAssignment(ctx context.Context, assignmentID int64) error {
	const query = `DELETE FROM expedition_assignments WHERE id = $1`

	tag, err := r.db.Exec(ctx, query, assignmentID)
	if err != nil {
		return fmt.Errorf("failed to delete assignment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAssignmentNotFound
	}
	return nil
}

// RecordCompletion logs (player, template, today) so the template is not
// re-offered today even after the assignment row is deleted.
func (r *ExpeditionRepository) RecordCompletion(ctx context.Context, playerID, templateID int64) error {
	const query = `
		INSERT INTO expedition_completions (player_id, template_id, completed_date)
		VALUES ($1, $2, CURRENT_DATE)
		ON CONFLICT (player_id, template_id, completed_date) DO NOTHING
	`

	if _, err := r.db.Exec(ctx, query, playerID, templateID); err != nil {
		return fmt.Errorf("failed to record completion: %w", err)
	}
	return nil
}

// CountCompletions counts every expedition the player ever completed.
func (r *ExpeditionRepository) CountCompletions(ctx context.Context, playerID int64) (int, error) {
	const query = `SELECT COUNT(*) FROM expedition_completions WHERE player_id = $1`

	var count int
	if err := r.db.QueryRow(ctx, query, playerID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count completions: %w", err)
	}
	return count, nil
}
