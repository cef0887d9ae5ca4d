package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/duskhollow/emberfall/internal/game/session"
)

// ErrStateNotFound is returned when a character-state lookup yields no rows.
var ErrStateNotFound = errors.New("character state not found")

// CharacterStateRepository persists aggregate character snapshots as JSONB.
// It is the save layer that owns engine state between sessions; the engine
// components only ever see the deserialized snapshot.
type CharacterStateRepository struct {
	db *pgxpool.Pool
}

// NewCharacterStateRepository creates a repository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewCharacterStateRepository(db *pgxpool.Pool) *CharacterStateRepository {
	return &CharacterStateRepository{db: db}
}

// Save upserts the snapshot keyed by its character ID.
//
// Precondition: state.ID must be non-empty.
// Postcondition: a subsequent Load of the same ID returns an equal snapshot.
func (r *CharacterStateRepository) Save(ctx context.Context, state session.CharacterState) error {
	if state.ID == "" {
		return fmt.Errorf("saving character state: character ID must not be empty")
	}
	payload, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshalling character state %q: %w", state.ID, err)
	}
	_, err = r.db.Exec(ctx, `
		INSERT INTO character_states (character_id, name, class_id, state, updated_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (character_id)
		DO UPDATE SET name = EXCLUDED.name, class_id = EXCLUDED.class_id,
		              state = EXCLUDED.state, updated_at = NOW()`,
		state.ID, state.Name, state.ClassID, payload,
	)
	if err != nil {
		return fmt.Errorf("upserting character state %q: %w", state.ID, err)
	}
	return nil
}

// Load retrieves the snapshot for the given character ID.
//
// Postcondition: returns the snapshot or ErrStateNotFound.
func (r *CharacterStateRepository) Load(ctx context.Context, characterID string) (session.CharacterState, error) {
	var payload []byte
	err := r.db.QueryRow(ctx,
		`SELECT state FROM character_states WHERE character_id = $1`,
		characterID,
	).Scan(&payload)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return session.CharacterState{}, ErrStateNotFound
		}
		return session.CharacterState{}, fmt.Errorf("loading character state %q: %w", characterID, err)
	}
	var state session.CharacterState
	if err := json.Unmarshal(payload, &state); err != nil {
		return session.CharacterState{}, fmt.Errorf("unmarshalling character state %q: %w", characterID, err)
	}
	return state, nil
}

// Delete removes the snapshot for the given character ID.
//
// Postcondition: returns ErrStateNotFound when no row was deleted.
func (r *CharacterStateRepository) Delete(ctx context.Context, characterID string) error {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM character_states WHERE character_id = $1`,
		characterID,
	)
	if err != nil {
		return fmt.Errorf("deleting character state %q: %w", characterID, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrStateNotFound
	}
	return nil
}

// Summary is a lightweight listing row for save-slot UIs.
type Summary struct {
	CharacterID string
	Name        string
	ClassID     string
	UpdatedAt   time.Time
}

// List returns summaries of all saved characters, most recently updated
// first.
//
// Postcondition: Returns a slice (may be empty) or a non-nil error.
func (r *CharacterStateRepository) List(ctx context.Context) ([]Summary, error) {
	rows, err := r.db.Query(ctx, `
		SELECT character_id, name, class_id, updated_at
		FROM character_states ORDER BY updated_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing character states: %w", err)
	}
	defer rows.Close()

	summaries := make([]Summary, 0)
	for rows.Next() {
		var s Summary
		if err := rows.Scan(&s.CharacterID, &s.Name, &s.ClassID, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning character state row: %w", err)
		}
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}
