package state

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/dmorandell/innkeeper/internal/innkeeper/domain"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// SQLiteStore persists conversation state in a local SQLite database.
// Scalar fields map to columns; nested objects (slots, proposal, reservation,
// supervision record) are stored as JSON text columns.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens (or creates) the database at dbPath and runs migrations.
func NewSQLite(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite is single-writer by design. Keep a single shared connection so
	// concurrent callers are serialized by database/sql instead of fighting
	// for write locks across multiple underlying connections.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	s := &SQLiteStore{db: db}
	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return s, nil
}

// DB returns the underlying connection so sibling stores (supervision
// records) can share the same database file.
func (s *SQLiteStore) DB() *sql.DB {
	return s.db
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Get implements Store.
func (s *SQLiteStore) Get(ctx context.Context, tenantID, conversationID string) (*domain.ConversationState, bool, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT slots, last_proposal, last_reservation, sales_stage, active_flow,
		       last_category, supervised, last_supervision, updated_at, updated_by
		FROM conversation_state
		WHERE tenant_id = ? AND conversation_id = ?
	`, tenantID, conversationID)

	var (
		slotsJSON       string
		proposalJSON    sql.NullString
		reservationJSON sql.NullString
		supervisionJSON sql.NullString
		st              domain.ConversationState
	)
	err := row.Scan(&slotsJSON, &proposalJSON, &reservationJSON, &st.SalesStage,
		&st.ActiveFlow, &st.LastCategory, &st.Supervised, &supervisionJSON,
		&st.UpdatedAt, &st.UpdatedBy)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get conversation state: %w", err)
	}

	st.TenantID = tenantID
	st.ConversationID = conversationID
	if err := json.Unmarshal([]byte(slotsJSON), &st.Slots); err != nil {
		return nil, false, fmt.Errorf("failed to decode slots: %w", err)
	}
	if err := decodeNullable(proposalJSON, &st.LastProposal); err != nil {
		return nil, false, fmt.Errorf("failed to decode proposal: %w", err)
	}
	if err := decodeNullable(reservationJSON, &st.LastReservation); err != nil {
		return nil, false, fmt.Errorf("failed to decode reservation: %w", err)
	}
	if err := decodeNullable(supervisionJSON, &st.LastSupervision); err != nil {
		return nil, false, fmt.Errorf("failed to decode supervision record: %w", err)
	}
	return &st, true, nil
}

// Upsert implements Store. The read-merge-write cycle is safe here because
// the store holds a single connection: database/sql serializes all access.
func (s *SQLiteStore) Upsert(ctx context.Context, tenantID, conversationID string, patch domain.StatePatch) (*domain.ConversationState, error) {
	prior, _, err := s.Get(ctx, tenantID, conversationID)
	if err != nil {
		return nil, err
	}

	next, err := applyPatch(prior, tenantID, conversationID, patch, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	slotsJSON, err := json.Marshal(next.Slots)
	if err != nil {
		return nil, fmt.Errorf("failed to encode slots: %w", err)
	}
	proposalJSON, err := encodeNullable(next.LastProposal)
	if err != nil {
		return nil, fmt.Errorf("failed to encode proposal: %w", err)
	}
	reservationJSON, err := encodeNullable(next.LastReservation)
	if err != nil {
		return nil, fmt.Errorf("failed to encode reservation: %w", err)
	}
	supervisionJSON, err := encodeNullable(next.LastSupervision)
	if err != nil {
		return nil, fmt.Errorf("failed to encode supervision record: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO conversation_state
			(tenant_id, conversation_id, slots, last_proposal, last_reservation,
			 sales_stage, active_flow, last_category, supervised, last_supervision,
			 updated_at, updated_by)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (tenant_id, conversation_id) DO UPDATE SET
			slots = excluded.slots,
			last_proposal = excluded.last_proposal,
			last_reservation = excluded.last_reservation,
			sales_stage = excluded.sales_stage,
			active_flow = excluded.active_flow,
			last_category = excluded.last_category,
			supervised = excluded.supervised,
			last_supervision = excluded.last_supervision,
			updated_at = excluded.updated_at,
			updated_by = excluded.updated_by
	`, tenantID, conversationID, string(slotsJSON), proposalJSON, reservationJSON,
		next.SalesStage, next.ActiveFlow, next.LastCategory, next.Supervised,
		supervisionJSON, next.UpdatedAt, next.UpdatedBy)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert conversation state: %w", err)
	}

	return next, nil
}

func encodeNullable(v any) (sql.NullString, error) {
	switch x := v.(type) {
	case *domain.Proposal:
		if x == nil {
			return sql.NullString{}, nil
		}
	case *domain.Reservation:
		if x == nil {
			return sql.NullString{}, nil
		}
	case *domain.SupervisionRecord:
		if x == nil {
			return sql.NullString{}, nil
		}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}

func decodeNullable[T any](col sql.NullString, dst **T) error {
	if !col.Valid || col.String == "" {
		*dst = nil
		return nil
	}
	v := new(T)
	if err := json.Unmarshal([]byte(col.String), v); err != nil {
		return err
	}
	*dst = v
	return nil
}

// runMigrations applies all pending migrations from the embedded directory.
// Files are named NNNN_description.sql and applied in order inside a
// transaction each.
func (s *SQLiteStore) runMigrations() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			description TEXT NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	var currentVersion int
	if err := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&currentVersion); err != nil {
		return fmt.Errorf("failed to get current schema version: %w", err)
	}

	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("failed to read migrations directory: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		parts := strings.SplitN(entry.Name(), "_", 2)
		if len(parts) < 2 {
			continue
		}
		var version int
		if _, err := fmt.Sscanf(parts[0], "%d", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}
		description := strings.TrimSuffix(parts[1], ".sql")

		content, err := migrationsFS.ReadFile(filepath.Join("migrations", entry.Name()))
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", entry.Name(), err)
		}

		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("failed to begin transaction for migration %d: %w", version, err)
		}
		if _, err := tx.Exec(string(content)); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to execute migration %d: %w", version, err)
		}
		if _, err := tx.Exec(
			"INSERT INTO schema_migrations (version, applied_at, description) VALUES (?, ?, ?)",
			version, time.Now(), description,
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to record migration %d: %w", version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", version, err)
		}

		slog.Info("applied migration", "version", fmt.Sprintf("%04d", version), "description", description)
	}

	return nil
}
