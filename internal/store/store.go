// File: internal/store/store.go
// Description: PostgreSQL mission archive. Persistence is an optional
// collaborator of the service layer: pipeline stages never consult it, and a
// nil store simply skips archiving.

package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/debdutta1777/AuraProcure/api/schemas"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// DBPool abstracts the pgxpool.Pool so tests can substitute a mock.
type DBPool interface {
	Ping(ctx context.Context) error
	Begin(ctx context.Context) (pgx.Tx, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error)
}

// Store archives finished and suspended missions in PostgreSQL.
type Store struct {
	pool DBPool
	log  *zap.Logger
}

// New creates a store instance and verifies the connection.
func New(ctx context.Context, pool DBPool, logger *zap.Logger) (*Store, error) {
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &Store{
		pool: pool,
		log:  logger.Named("store"),
	}, nil
}

const upsertMissionSQL = `
    INSERT INTO missions (id, request_text, status, total_budget, total_savings, deadline, result_summary, created_at, updated_at)
    VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
    ON CONFLICT (id) DO UPDATE SET
        status = EXCLUDED.status,
        total_budget = EXCLUDED.total_budget,
        total_savings = EXCLUDED.total_savings,
        deadline = EXCLUDED.deadline,
        result_summary = EXCLUDED.result_summary,
        updated_at = EXCLUDED.updated_at;
`

const upsertApprovalSQL = `
    INSERT INTO approval_requests (id, mission_id, description, total_amount, status, approver, approved_at, created_at)
    VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
    ON CONFLICT (id) DO UPDATE SET
        status = EXCLUDED.status,
        approver = EXCLUDED.approver,
        approved_at = EXCLUDED.approved_at;
`

// ArchiveMission persists the full mission record set in one transaction. It
// is called at every suspension or terminal transition, so all child-table
// writes replace whatever an earlier archive left behind.
func (s *Store) ArchiveMission(ctx context.Context, mctx *schemas.MissionContext) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if rollbackErr := tx.Rollback(ctx); rollbackErr != nil && !errors.Is(rollbackErr, pgx.ErrTxClosed) {
			s.log.Error("Failed to rollback transaction", zap.Error(rollbackErr))
		}
	}()

	m := mctx.Mission
	if _, err := tx.Exec(ctx, upsertMissionSQL,
		m.ID, m.RequestText, string(m.Status), m.TotalBudget, m.TotalSavings,
		m.Deadline, m.ResultSummary, m.CreatedAt.UTC(), m.UpdatedAt.UTC(),
	); err != nil {
		return fmt.Errorf("failed to upsert mission %s: %w", m.ID, err)
	}

	if mctx.Approval != nil {
		a := mctx.Approval
		if _, err := tx.Exec(ctx, upsertApprovalSQL,
			a.ID, a.MissionID, a.Description, a.TotalAmount, string(a.Status),
			a.Approver, a.ApprovedAt, a.CreatedAt.UTC(),
		); err != nil {
			return fmt.Errorf("failed to upsert approval for mission %s: %w", m.ID, err)
		}
	}

	if err := s.replaceQuotes(ctx, tx, mctx); err != nil {
		return err
	}
	if err := s.replaceVerdicts(ctx, tx, mctx); err != nil {
		return err
	}
	if err := s.replaceDocuments(ctx, tx, mctx); err != nil {
		return err
	}
	if err := s.appendLogs(ctx, tx, mctx); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	s.log.Debug("Mission archived",
		zap.String("mission_id", m.ID),
		zap.String("status", string(m.Status)))
	return nil
}

func (s *Store) replaceQuotes(ctx context.Context, tx pgx.Tx, mctx *schemas.MissionContext) error {
	if _, err := tx.Exec(ctx, `DELETE FROM vendor_quotes WHERE mission_id = $1;`, mctx.Mission.ID); err != nil {
		return fmt.Errorf("failed to clear quotes: %w", err)
	}
	if len(mctx.Quotes) == 0 {
		return nil
	}

	rows := make([][]interface{}, len(mctx.Quotes))
	for i, q := range mctx.Quotes {
		rows[i] = []interface{}{
			q.ID, q.MissionID, q.VendorID, q.VendorName, q.ItemName,
			q.Quantity, q.UnitPrice, q.TotalPrice, q.ShippingDays,
			string(q.Availability), q.Score, q.Selected, q.Reasoning,
		}
	}

	copyCount, err := tx.CopyFrom(
		ctx,
		pgx.Identifier{"vendor_quotes"},
		[]string{"id", "mission_id", "vendor_id", "vendor_name", "item_name", "quantity", "unit_price", "total_price", "shipping_days", "availability", "score", "selected", "reasoning"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("failed to copy quotes: %w", err)
	}
	if int(copyCount) != len(mctx.Quotes) {
		return fmt.Errorf("mismatch in copied quote count: expected %d, got %d", len(mctx.Quotes), copyCount)
	}
	return nil
}

func (s *Store) replaceVerdicts(ctx context.Context, tx pgx.Tx, mctx *schemas.MissionContext) error {
	if _, err := tx.Exec(ctx, `DELETE FROM compliance_results WHERE mission_id = $1;`, mctx.Mission.ID); err != nil {
		return fmt.Errorf("failed to clear compliance results: %w", err)
	}
	if len(mctx.Verdicts) == 0 {
		return nil
	}

	rows := make([][]interface{}, len(mctx.Verdicts))
	for i, v := range mctx.Verdicts {
		rows[i] = []interface{}{
			mctx.Mission.ID, v.PolicyID, v.PolicyName, v.Passed, v.Reason, v.Citation,
		}
	}

	copyCount, err := tx.CopyFrom(
		ctx,
		pgx.Identifier{"compliance_results"},
		[]string{"mission_id", "policy_id", "policy_name", "passed", "reason", "citation"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("failed to copy compliance results: %w", err)
	}
	if int(copyCount) != len(mctx.Verdicts) {
		return fmt.Errorf("mismatch in copied verdict count: expected %d, got %d", len(mctx.Verdicts), copyCount)
	}
	return nil
}

func (s *Store) replaceDocuments(ctx context.Context, tx pgx.Tx, mctx *schemas.MissionContext) error {
	if _, err := tx.Exec(ctx, `DELETE FROM procurement_documents WHERE mission_id = $1;`, mctx.Mission.ID); err != nil {
		return fmt.Errorf("failed to clear documents: %w", err)
	}
	if len(mctx.Documents) == 0 {
		return nil
	}

	rows := make([][]interface{}, len(mctx.Documents))
	for i, d := range mctx.Documents {
		metadata, err := json.Marshal(d.Metadata)
		if err != nil {
			return fmt.Errorf("failed to marshal document metadata: %w", err)
		}
		rows[i] = []interface{}{
			d.ID, d.MissionID, string(d.Type), d.Title, d.Content, metadata, d.CreatedAt.UTC(),
		}
	}

	copyCount, err := tx.CopyFrom(
		ctx,
		pgx.Identifier{"procurement_documents"},
		[]string{"id", "mission_id", "type", "title", "content", "metadata", "created_at"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("failed to copy documents: %w", err)
	}
	if int(copyCount) != len(mctx.Documents) {
		return fmt.Errorf("mismatch in copied document count: expected %d, got %d", len(mctx.Documents), copyCount)
	}
	return nil
}

// appendLogs rewrites the mission's audit trail. The trail is append-only in
// memory; replacing the rows keeps re-archiving idempotent.
func (s *Store) appendLogs(ctx context.Context, tx pgx.Tx, mctx *schemas.MissionContext) error {
	if _, err := tx.Exec(ctx, `DELETE FROM agent_logs WHERE mission_id = $1;`, mctx.Mission.ID); err != nil {
		return fmt.Errorf("failed to clear agent logs: %w", err)
	}
	if len(mctx.Logs) == 0 {
		return nil
	}

	rows := make([][]interface{}, len(mctx.Logs))
	for i, entry := range mctx.Logs {
		payload, err := json.Marshal(entry.Payload)
		if err != nil {
			return fmt.Errorf("failed to marshal log payload: %w", err)
		}
		if len(payload) == 0 || string(payload) == "null" {
			payload = []byte("{}")
		}
		rows[i] = []interface{}{
			entry.ID, entry.MissionID, string(entry.Agent), string(entry.Level),
			entry.Message, payload, i, entry.CreatedAt.UTC(),
		}
	}

	copyCount, err := tx.CopyFrom(
		ctx,
		pgx.Identifier{"agent_logs"},
		[]string{"id", "mission_id", "agent_name", "level", "message", "payload", "seq", "created_at"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("failed to copy agent logs: %w", err)
	}
	if int(copyCount) != len(mctx.Logs) {
		return fmt.Errorf("mismatch in copied log count: expected %d, got %d", len(mctx.Logs), copyCount)
	}
	return nil
}

// GetMission loads one archived mission header.
func (s *Store) GetMission(ctx context.Context, missionID string) (*schemas.Mission, error) {
	query := `
        SELECT id, request_text, status, total_budget, total_savings, deadline, result_summary, created_at, updated_at
        FROM missions
        WHERE id = $1;
    `
	rows, err := s.pool.Query(ctx, query, missionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query mission: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("error during row iteration: %w", err)
		}
		return nil, fmt.Errorf("mission %s not found", missionID)
	}

	var m schemas.Mission
	var statusStr string
	if err := rows.Scan(
		&m.ID, &m.RequestText, &statusStr, &m.TotalBudget, &m.TotalSavings,
		&m.Deadline, &m.ResultSummary, &m.CreatedAt, &m.UpdatedAt,
	); err != nil {
		return nil, fmt.Errorf("failed to scan mission row: %w", err)
	}
	m.Status = schemas.MissionStatus(statusStr)
	return &m, nil
}

// ListMissions returns archived mission headers, newest first.
func (s *Store) ListMissions(ctx context.Context, limit int) ([]schemas.Mission, error) {
	query := `
        SELECT id, request_text, status, total_budget, total_savings, deadline, result_summary, created_at, updated_at
        FROM missions
        ORDER BY created_at DESC
        LIMIT $1;
    `
	rows, err := s.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query missions: %w", err)
	}
	defer rows.Close()

	var missions []schemas.Mission
	for rows.Next() {
		var m schemas.Mission
		var statusStr string
		if err := rows.Scan(
			&m.ID, &m.RequestText, &statusStr, &m.TotalBudget, &m.TotalSavings,
			&m.Deadline, &m.ResultSummary, &m.CreatedAt, &m.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan mission row: %w", err)
		}
		m.Status = schemas.MissionStatus(statusStr)
		missions = append(missions, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during row iteration: %w", err)
	}
	return missions, nil
}
