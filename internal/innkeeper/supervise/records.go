package supervise

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dmorandell/innkeeper/internal/innkeeper/domain"
)

// ErrRecordNotFound is returned when resolving an ID that does not exist or
// is already resolved.
var ErrRecordNotFound = errors.New("supervision record not found")

// PendingRecord is a queued disagreement awaiting an operator.
type PendingRecord struct {
	TenantID       string
	ConversationID string
	Record         domain.SupervisionRecord
}

// Records is the review queue backed by the shared sqlite database. The
// conversation-state store owns the connection and runs the migrations; this
// type only reads and writes the supervision_records table.
type Records struct {
	db *sql.DB
}

// NewRecords wraps an already migrated database handle.
func NewRecords(db *sql.DB) *Records {
	return &Records{db: db}
}

// Enqueue stores a freshly detected disagreement and returns its record with
// the generated ID filled in.
func (r *Records) Enqueue(ctx context.Context, tenantID, conversationID string, rec domain.SupervisionRecord) (domain.SupervisionRecord, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.At.IsZero() {
		rec.At = time.Now().UTC()
	}

	preJSON, err := json.Marshal(rec.Pre)
	if err != nil {
		return rec, fmt.Errorf("encode pre interpretation: %w", err)
	}
	llmJSON, err := json.Marshal(rec.LLM)
	if err != nil {
		return rec, fmt.Errorf("encode llm interpretation: %w", err)
	}
	verdictJSON, err := json.Marshal(rec.Verdict)
	if err != nil {
		return rec, fmt.Errorf("encode verdict: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO supervision_records
			(id, tenant_id, conversation_id, at, message_text, pre_json, llm_json, verdict_json, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, 'pending')`,
		rec.ID, tenantID, conversationID, rec.At, rec.MessageText, string(preJSON), string(llmJSON), string(verdictJSON))
	if err != nil {
		return rec, fmt.Errorf("insert supervision record: %w", err)
	}
	return rec, nil
}

// ListPending returns unresolved records oldest first, across all
// conversations of the tenant. An empty tenantID lists every tenant.
func (r *Records) ListPending(ctx context.Context, tenantID string, limit int) ([]PendingRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT id, tenant_id, conversation_id, at, message_text, pre_json, llm_json, verdict_json
		FROM supervision_records
		WHERE status = 'pending'`
	args := []any{}
	if tenantID != "" {
		query += ` AND tenant_id = ?`
		args = append(args, tenantID)
	}
	query += ` ORDER BY at ASC LIMIT ?`
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list pending records: %w", err)
	}
	defer rows.Close()

	var out []PendingRecord
	for rows.Next() {
		var (
			p                             PendingRecord
			preJSON, llmJSON, verdictJSON string
		)
		if err := rows.Scan(&p.Record.ID, &p.TenantID, &p.ConversationID, &p.Record.At,
			&p.Record.MessageText, &preJSON, &llmJSON, &verdictJSON); err != nil {
			return nil, fmt.Errorf("scan supervision record: %w", err)
		}
		if err := json.Unmarshal([]byte(preJSON), &p.Record.Pre); err != nil {
			return nil, fmt.Errorf("decode pre interpretation %s: %w", p.Record.ID, err)
		}
		if err := json.Unmarshal([]byte(llmJSON), &p.Record.LLM); err != nil {
			return nil, fmt.Errorf("decode llm interpretation %s: %w", p.Record.ID, err)
		}
		if err := json.Unmarshal([]byte(verdictJSON), &p.Record.Verdict); err != nil {
			return nil, fmt.Errorf("decode verdict %s: %w", p.Record.ID, err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Resolve marks a pending record as handled by an operator.
func (r *Records) Resolve(ctx context.Context, id, resolvedBy string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE supervision_records
		SET status = 'resolved', resolved_at = ?, resolved_by = ?
		WHERE id = ? AND status = 'pending'`,
		time.Now().UTC(), resolvedBy, id)
	if err != nil {
		return fmt.Errorf("resolve supervision record: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("resolve supervision record: %w", err)
	}
	if n == 0 {
		return ErrRecordNotFound
	}
	return nil
}

// CountPending returns the number of turns still waiting for review.
func (r *Records) CountPending(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM supervision_records WHERE status = 'pending'`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count pending supervision records: %w", err)
	}
	return n, nil
}
