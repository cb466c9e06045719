package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/vmihailenco/msgpack/v5"
	"github.com/zeromicro/go-zero/core/logx"
	"github.com/zeromicro/go-zero/core/stores/redis"

	cachekeys "viralflow-api/internal/cache"
	"viralflow-api/internal/model"
	"viralflow-api/pkg/agent"
	"viralflow-api/pkg/dashboard"
	"viralflow-api/pkg/decode"
)

const defaultCacheTTL = time.Hour

var _ dashboard.RunRecorder = (*RunStore)(nil)

// RunStore mirrors dashboard runs to Postgres and keeps the latest decoded
// record per purpose in Redis.
type RunStore struct {
	runs  model.AgentRunsModel
	redis *redis.Redis
	ttl   cachekeys.TTLSet
	now   func() time.Time
}

// Config enumerates the store collaborators. Either may be nil.
type Config struct {
	RunsModel model.AgentRunsModel
	Redis     *redis.Redis
	TTL       cachekeys.TTLSet
}

// NewRunStore returns nil when neither Postgres nor Redis is configured.
func NewRunStore(cfg Config) *RunStore {
	if cfg.RunsModel == nil && cfg.Redis == nil {
		return nil
	}
	return &RunStore{
		runs:  cfg.RunsModel,
		redis: cfg.Redis,
		ttl:   cfg.TTL,
		now:   time.Now,
	}
}

// LatestSnapshot is the cached form of the last successful run.
type LatestSnapshot struct {
	RunID     string               `msgpack:"run_id" json:"run_id"`
	AgentID   string               `msgpack:"agent_id" json:"agent_id"`
	Record    []byte               `msgpack:"record" json:"-"`
	Artifacts []agent.ArtifactFile `msgpack:"artifacts" json:"artifacts"`
	StoredAt  int64                `msgpack:"stored_at" json:"stored_at"`
}

// Decoded returns the cached record.
func (s LatestSnapshot) Decoded() decode.Record {
	out := decode.Decode(s.Record)
	return out.Record()
}

// RecordRun implements dashboard.RunRecorder.
func (s *RunStore) RecordRun(ctx context.Context, rec dashboard.RunRecord) error {
	if s == nil {
		return nil
	}
	var errs []error
	if s.runs != nil {
		if err := s.insertRun(ctx, rec); err != nil {
			errs = append(errs, err)
		}
	}
	if s.redis != nil && rec.Status == dashboard.StatusOK {
		if err := s.cacheLatest(ctx, rec); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *RunStore) insertRun(ctx context.Context, rec dashboard.RunRecord) error {
	row, err := toRow(rec)
	if err != nil {
		return err
	}
	_, err = s.runs.Insert(ctx, row)
	if err != nil && isUniqueViolation(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("runstore: insert run %s: %w", rec.ID, err)
	}
	return nil
}

func (s *RunStore) cacheLatest(ctx context.Context, rec dashboard.RunRecord) error {
	ttl := cachekeys.LatestRecordTTL(s.ttl)
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	data, err := encodeSnapshot(LatestSnapshot{
		RunID:     rec.ID,
		AgentID:   rec.AgentID,
		Record:    []byte(rec.Record.JSON()),
		Artifacts: rec.Artifacts,
		StoredAt:  s.now().UnixMilli(),
	})
	if err != nil {
		return err
	}
	key := cachekeys.LatestRecordKey(rec.Purpose)
	if err := s.redis.SetexCtx(ctx, key, string(data), int(ttl.Seconds())); err != nil {
		logx.WithContext(ctx).Errorf("runstore: set latest key=%s err=%v", key, err)
		return err
	}
	return nil
}

// Latest returns the cached snapshot for purpose, or false when absent.
func (s *RunStore) Latest(ctx context.Context, purpose string) (*LatestSnapshot, bool, error) {
	if s == nil || s.redis == nil {
		return nil, false, nil
	}
	val, err := s.redis.GetCtx(ctx, cachekeys.LatestRecordKey(purpose))
	if err != nil {
		return nil, false, err
	}
	if val == "" {
		return nil, false, nil
	}
	snap, err := decodeSnapshot([]byte(val))
	if err != nil {
		return nil, false, err
	}
	return snap, true, nil
}

// RecentRuns lists runs from Postgres newest first.
func (s *RunStore) RecentRuns(ctx context.Context, purpose string, limit int) ([]dashboard.RunRecord, error) {
	if s == nil || s.runs == nil {
		return nil, nil
	}
	rows, err := s.runs.FindRecent(ctx, purpose, limit)
	if err != nil {
		return nil, fmt.Errorf("runstore: recent runs: %w", err)
	}
	out := make([]dashboard.RunRecord, 0, len(rows))
	for _, row := range rows {
		out = append(out, fromRow(row))
	}
	return out, nil
}

// HasDatabase reports whether runs are mirrored to Postgres.
func (s *RunStore) HasDatabase() bool {
	return s != nil && s.runs != nil
}

func encodeSnapshot(snap LatestSnapshot) ([]byte, error) {
	data, err := msgpack.Marshal(&snap)
	if err != nil {
		return nil, fmt.Errorf("runstore: encode snapshot: %w", err)
	}
	return data, nil
}

func decodeSnapshot(data []byte) (*LatestSnapshot, error) {
	var snap LatestSnapshot
	if err := msgpack.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("runstore: decode snapshot: %w", err)
	}
	return &snap, nil
}

func toRow(rec dashboard.RunRecord) (*model.AgentRuns, error) {
	row := &model.AgentRuns{
		Id:           rec.ID,
		Purpose:      rec.Purpose,
		AgentId:      rec.AgentID,
		Generation:   int64(rec.Generation),
		Prompt:       rec.Prompt,
		PromptDigest: nullString(rec.PromptDigest),
		Status:       rec.Status,
		DecodeReason: nullString(rec.DecodeReason),
		Message:      nullString(rec.Message),
		StartedAt:    rec.StartedAt.UTC(),
		DurationMs:   rec.Duration.Milliseconds(),
	}
	if row.StartedAt.IsZero() {
		row.StartedAt = time.Now().UTC()
	}
	if rec.Record != nil {
		row.Record = nullString(rec.Record.JSON())
	}
	var err error
	if row.Raw, err = nullJSON(rec.Raw); err != nil {
		return nil, fmt.Errorf("runstore: encode raw response: %w", err)
	}
	if rec.Artifacts != nil {
		if row.Artifacts, err = nullJSON(rec.Artifacts); err != nil {
			return nil, fmt.Errorf("runstore: encode artifacts: %w", err)
		}
	}
	return row, nil
}

func fromRow(row *model.AgentRuns) dashboard.RunRecord {
	rec := dashboard.RunRecord{
		ID:           row.Id,
		Purpose:      row.Purpose,
		AgentID:      row.AgentId,
		Generation:   uint64(row.Generation),
		Prompt:       row.Prompt,
		PromptDigest: row.PromptDigest.String,
		Status:       row.Status,
		DecodeReason: row.DecodeReason.String,
		Message:      row.Message.String,
		StartedAt:    row.StartedAt,
		Duration:     time.Duration(row.DurationMs) * time.Millisecond,
	}
	if row.Record.Valid {
		rec.Record = decode.Decode(row.Record.String).Record()
	}
	if row.Raw.Valid {
		var raw any
		if err := json.Unmarshal([]byte(row.Raw.String), &raw); err == nil {
			rec.Raw = raw
		}
	}
	if row.Artifacts.Valid {
		_ = json.Unmarshal([]byte(row.Artifacts.String), &rec.Artifacts)
	}
	return rec
}

// nullJSON encodes v for a JSONB column. Strings are wrapped as JSON strings.
func nullJSON(v any) (sql.NullString, error) {
	if v == nil {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

func nullString(s string) sql.NullString {
	if strings.TrimSpace(s) == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
