package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/ayusman/gesturify/internal/gesture"
)

// Plugin and action used by the default bindings.
const (
	DefaultPlugin = "media-keys"
	DefaultAction = "press"
)

// Binding maps a recognized gesture to a key pressed through a plugin action.
type Binding struct {
	ID         string
	Gesture    gesture.Label
	PluginName string
	ActionName string
	Key        string
	Enabled    bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// DefaultBindings returns the media-key bindings installed on first run.
func DefaultBindings() []Binding {
	keys := []struct {
		gesture gesture.Label
		key     string
	}{
		{gesture.ThumbsUp, "space"},
		{gesture.OpenPalm, "space"},
		{gesture.Point, "nexttrack"},
		{gesture.TwoFingers, "prevtrack"},
		{gesture.Shaka, "volumeup"},
		{gesture.PointDown, "volumedown"},
		{gesture.Fist, "stop"},
	}

	bindings := make([]Binding, 0, len(keys))
	for _, k := range keys {
		bindings = append(bindings, Binding{
			Gesture:    k.gesture,
			PluginName: DefaultPlugin,
			ActionName: DefaultAction,
			Key:        k.key,
			Enabled:    true,
		})
	}
	return bindings
}

// BindingRepository provides CRUD operations for bindings.
type BindingRepository struct {
	db *sql.DB
}

// Bindings returns the binding repository for this store.
func (s *Store) Bindings() *BindingRepository {
	return &BindingRepository{db: s.db}
}

const bindingColumns = `id, gesture, plugin_name, action_name, key_name, enabled, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBinding(row rowScanner) (*Binding, error) {
	b := &Binding{}
	var label string
	var enabled int

	if err := row.Scan(&b.ID, &label, &b.PluginName, &b.ActionName, &b.Key, &enabled, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}

	b.Gesture = gesture.Label(label)
	b.Enabled = enabled != 0
	return b, nil
}

// Create inserts a new binding. An empty ID is filled with a new UUID.
func (r *BindingRepository) Create(b *Binding) error {
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	now := time.Now()
	b.CreatedAt = now
	b.UpdatedAt = now

	_, err := r.db.Exec(
		`INSERT INTO bindings (`+bindingColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		b.ID, string(b.Gesture), b.PluginName, b.ActionName, b.Key, boolToInt(b.Enabled), b.CreatedAt, b.UpdatedAt,
	)
	return err
}

// GetByID retrieves a binding by its ID.
func (r *BindingRepository) GetByID(id string) (*Binding, error) {
	b, err := scanBinding(r.db.QueryRow(`SELECT `+bindingColumns+` FROM bindings WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return b, nil
}

// GetByGesture retrieves the binding for a gesture label.
func (r *BindingRepository) GetByGesture(label gesture.Label) (*Binding, error) {
	b, err := scanBinding(r.db.QueryRow(`SELECT `+bindingColumns+` FROM bindings WHERE gesture = ?`, string(label)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return b, nil
}

// List retrieves all bindings ordered by gesture.
func (r *BindingRepository) List() ([]*Binding, error) {
	rows, err := r.db.Query(`SELECT ` + bindingColumns + ` FROM bindings ORDER BY gesture`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bindings []*Binding
	for rows.Next() {
		b, err := scanBinding(rows)
		if err != nil {
			return nil, err
		}
		bindings = append(bindings, b)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return bindings, nil
}

// Update updates an existing binding.
func (r *BindingRepository) Update(b *Binding) error {
	b.UpdatedAt = time.Now()

	result, err := r.db.Exec(
		`UPDATE bindings SET gesture = ?, plugin_name = ?, action_name = ?, key_name = ?, enabled = ?, updated_at = ?
		 WHERE id = ?`,
		string(b.Gesture), b.PluginName, b.ActionName, b.Key, boolToInt(b.Enabled), b.UpdatedAt, b.ID,
	)
	if err != nil {
		return err
	}

	return expectOneRow(result)
}

// Delete removes a binding by its ID.
func (r *BindingRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM bindings WHERE id = ?`, id)
	if err != nil {
		return err
	}

	return expectOneRow(result)
}

// Seed inserts each binding whose gesture has no binding yet and returns
// how many were added. Existing bindings are left untouched.
func (r *BindingRepository) Seed(defaults []Binding) (int, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(
		`INSERT INTO bindings (` + bindingColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(gesture) DO NOTHING`,
	)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	now := time.Now()
	added := 0
	for _, b := range defaults {
		result, err := stmt.Exec(uuid.New().String(), string(b.Gesture), b.PluginName, b.ActionName, b.Key, boolToInt(b.Enabled), now, now)
		if err != nil {
			return 0, err
		}
		n, err := result.RowsAffected()
		if err != nil {
			return 0, err
		}
		added += int(n)
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}

	return added, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func expectOneRow(result sql.Result) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}
