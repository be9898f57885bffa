package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"speechcraft/internal/domain"
)

var _ domain.TranscriptionRepository = (*TranscriptionRepo)(nil)

const transcriptionColumns = `id, user_id, audio_url, file_name, status, text, confidence,
       audio_duration, words_json, error_message, created_at, updated_at`

// TranscriptionRepo stores transcription job lifecycle state in SQLite.
//
// Terminal updates are guarded in SQL: the UPDATE matches only rows still
// processing or already carrying the target terminal status, so a completed
// row can never flip to error and re-applying a terminal write is a no-op.
type TranscriptionRepo struct {
	writeDB *sql.DB
	readDB  *sql.DB
}

// NewTranscriptionRepo creates a new TranscriptionRepo over a write pool and
// a read pool. Pass the same *sql.DB twice when a split is not needed.
func NewTranscriptionRepo(writeDB, readDB *sql.DB) *TranscriptionRepo {
	return &TranscriptionRepo{writeDB: writeDB, readDB: readDB}
}

// Create inserts a new transcription job in processing state.
func (r *TranscriptionRepo) Create(ctx context.Context, job *domain.TranscriptionJob) (*domain.TranscriptionJob, error) {
	if job == nil {
		return nil, domain.ErrValidation("transcription job is required")
	}
	if job.ID == "" {
		job.ID = domain.NewID()
	}
	if job.FileName == "" {
		job.FileName = "Untitled"
	}
	if job.Status == "" {
		job.Status = domain.StatusProcessing
	}

	_, err := r.writeDB.ExecContext(ctx, `
		INSERT INTO transcriptions (id, user_id, audio_url, file_name, status)
		VALUES (?, ?, ?, ?, ?)
	`, job.ID, job.UserID, job.AudioURL, job.FileName, string(job.Status))
	if err != nil {
		return nil, mapDBError(err)
	}

	return r.GetByID(ctx, job.ID)
}

// GetByID returns a transcription job by ID.
func (r *TranscriptionRepo) GetByID(ctx context.Context, id string) (*domain.TranscriptionJob, error) {
	return r.getOne(ctx, `
		SELECT `+transcriptionColumns+`
		FROM transcriptions WHERE id = ?
	`, id)
}

// GetForUser returns a transcription job by ID scoped to its owner. A row
// owned by another user reads as not found.
func (r *TranscriptionRepo) GetForUser(ctx context.Context, id, userID string) (*domain.TranscriptionJob, error) {
	return r.getOne(ctx, `
		SELECT `+transcriptionColumns+`
		FROM transcriptions WHERE id = ? AND user_id = ?
	`, id, userID)
}

// MarkCompleted stores the provider result and marks the job completed. The
// update applies only while the row is processing or already completed.
func (r *TranscriptionRepo) MarkCompleted(ctx context.Context, id string, result domain.TranscriptionResult) error {
	wordsJSON, err := json.Marshal(result.Words)
	if err != nil {
		return fmt.Errorf("marshal words: %w", err)
	}

	res, err := r.writeDB.ExecContext(ctx, `
		UPDATE transcriptions
		SET status = ?, text = ?, confidence = ?, audio_duration = ?, words_json = ?,
		    error_message = NULL, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND status IN (?, ?)
	`, string(domain.StatusCompleted), result.Text, result.Confidence, result.AudioDuration,
		string(wordsJSON), id, string(domain.StatusProcessing), string(domain.StatusCompleted))
	if err != nil {
		return mapDBError(err)
	}

	return r.checkGuardedUpdate(ctx, res, id)
}

// MarkError marks the job failed with an error message. The update applies
// only while the row is processing or already in error.
func (r *TranscriptionRepo) MarkError(ctx context.Context, id, message string) error {
	res, err := r.writeDB.ExecContext(ctx, `
		UPDATE transcriptions
		SET status = ?, error_message = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND status IN (?, ?)
	`, string(domain.StatusError), message, id, string(domain.StatusProcessing), string(domain.StatusError))
	if err != nil {
		return mapDBError(err)
	}

	return r.checkGuardedUpdate(ctx, res, id)
}

// checkGuardedUpdate distinguishes "row missing" from "guard declined": a
// zero-row guarded update on an existing row means the row already holds the
// other terminal status, which is a silent no-op.
func (r *TranscriptionRepo) checkGuardedUpdate(ctx context.Context, res sql.Result, id string) error {
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if rows > 0 {
		return nil
	}

	var exists int
	err = r.writeDB.QueryRowContext(ctx, `SELECT 1 FROM transcriptions WHERE id = ?`, id).Scan(&exists)
	if err != nil {
		return mapDBError(err)
	}
	return nil
}

// List returns one page of a user's jobs, newest first, plus the total
// count of rows matching the filter.
func (r *TranscriptionRepo) List(ctx context.Context, filter domain.HistoryFilter) ([]domain.TranscriptionJob, int64, error) {
	where, args := buildHistoryWhere(filter)

	var total int64
	err := r.readDB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM transcriptions `+where, args...).Scan(&total)
	if err != nil {
		return nil, 0, mapDBError(err)
	}

	page := filter.Page.Normalize()
	listArgs := append(append([]interface{}{}, args...), page.Limit, page.Offset())
	rows, err := r.readDB.QueryContext(ctx, `
		SELECT `+transcriptionColumns+`
		FROM transcriptions `+where+`
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?
	`, listArgs...)
	if err != nil {
		return nil, 0, mapDBError(err)
	}
	defer rows.Close()

	var jobs []domain.TranscriptionJob
	for rows.Next() {
		job, err := scanTranscription(rows)
		if err != nil {
			return nil, 0, err
		}
		jobs = append(jobs, *job)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, mapDBError(err)
	}

	return jobs, total, nil
}

// CountByStatus aggregates per-status counts over the full filtered set,
// not just the current page.
func (r *TranscriptionRepo) CountByStatus(ctx context.Context, filter domain.HistoryFilter) (domain.StatusCounts, error) {
	where, args := buildHistoryWhere(filter)

	var counts domain.StatusCounts
	err := r.readDB.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COALESCE(SUM(CASE WHEN status = 'completed' THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN status = 'processing' THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN status = 'error' THEN 1 ELSE 0 END), 0)
		FROM transcriptions `+where, args...,
	).Scan(&counts.Total, &counts.Completed, &counts.Processing, &counts.Error)
	if err != nil {
		return domain.StatusCounts{}, mapDBError(err)
	}

	return counts, nil
}

// Stats aggregates a user's overall transcription activity.
func (r *TranscriptionRepo) Stats(ctx context.Context, userID string) (*domain.UsageStats, error) {
	var stats domain.UsageStats
	err := r.readDB.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COALESCE(SUM(CASE WHEN status = 'completed' THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN status = 'processing' THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN status = 'error' THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN status = 'completed' THEN COALESCE(audio_duration, 0) ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN strftime('%Y-%m', created_at) = strftime('%Y-%m', 'now') THEN 1 ELSE 0 END), 0)
		FROM transcriptions
		WHERE user_id = ?
	`, userID).Scan(
		&stats.Total,
		&stats.Completed,
		&stats.Processing,
		&stats.Failed,
		&stats.TotalDurationSeconds,
		&stats.ThisMonth,
	)
	if err != nil {
		return nil, mapDBError(err)
	}

	return &stats, nil
}

// Delete removes a job scoped to its owner and returns the removed row so
// callers can clean up the audio blob. A row owned by another user reads as
// not found.
func (r *TranscriptionRepo) Delete(ctx context.Context, id, userID string) (*domain.TranscriptionJob, error) {
	job, err := r.GetForUser(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	res, err := r.writeDB.ExecContext(ctx,
		`DELETE FROM transcriptions WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return nil, mapDBError(err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("rows affected: %w", err)
	}
	if rows == 0 {
		return nil, domain.ErrNotFound("transcription %q not found", id)
	}

	return job, nil
}

// TimeOutStale flips processing rows not touched since cutoff to error with
// the timeout message, returning the affected row ids.
func (r *TranscriptionRepo) TimeOutStale(ctx context.Context, cutoff time.Time) ([]string, error) {
	// updated_at rows are written by CURRENT_TIMESTAMP, so compare in the
	// same UTC text format.
	rows, err := r.writeDB.QueryContext(ctx, `
		SELECT id FROM transcriptions
		WHERE status = ? AND updated_at < ?
	`, string(domain.StatusProcessing), cutoff.UTC().Format("2006-01-02 15:04:05"))
	if err != nil {
		return nil, mapDBError(err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, mapDBError(err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, mapDBError(err)
	}

	for _, id := range ids {
		if err := r.MarkError(ctx, id, domain.TimeoutMessage); err != nil {
			return nil, err
		}
	}

	return ids, nil
}

func buildHistoryWhere(filter domain.HistoryFilter) (string, []interface{}) {
	where := `WHERE user_id = ?`
	args := []interface{}{filter.UserID}

	if filter.Status != nil {
		where += ` AND status = ?`
		args = append(args, string(*filter.Status))
	}
	if filter.Search != nil && *filter.Search != "" {
		where += ` AND (LOWER(file_name) LIKE ? OR LOWER(COALESCE(text, '')) LIKE ?)`
		pattern := "%" + strings.ToLower(*filter.Search) + "%"
		args = append(args, pattern, pattern)
	}

	return where, args
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTranscription(row rowScanner) (*domain.TranscriptionJob, error) {
	var (
		job                  domain.TranscriptionJob
		status               string
		text                 sql.NullString
		confidence           sql.NullFloat64
		audioDuration        sql.NullFloat64
		wordsJSON            sql.NullString
		errorMessage         sql.NullString
		createdAt, updatedAt time.Time
	)

	err := row.Scan(
		&job.ID,
		&job.UserID,
		&job.AudioURL,
		&job.FileName,
		&status,
		&text,
		&confidence,
		&audioDuration,
		&wordsJSON,
		&errorMessage,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, mapDBError(err)
	}

	job.Status = domain.Status(status)
	job.CreatedAt = createdAt
	job.UpdatedAt = updatedAt
	if text.Valid {
		s := text.String
		job.Text = &s
	}
	if confidence.Valid {
		c := confidence.Float64
		job.Confidence = &c
	}
	if audioDuration.Valid {
		d := audioDuration.Float64
		job.AudioDuration = &d
	}
	if errorMessage.Valid {
		msg := errorMessage.String
		job.ErrorMessage = &msg
	}
	if wordsJSON.Valid && wordsJSON.String != "" {
		if err := json.Unmarshal([]byte(wordsJSON.String), &job.Words); err != nil {
			return nil, fmt.Errorf("unmarshal words: %w", err)
		}
	}

	return &job, nil
}

func (r *TranscriptionRepo) getOne(ctx context.Context, stmt string, args ...interface{}) (*domain.TranscriptionJob, error) {
	return scanTranscription(r.readDB.QueryRowContext(ctx, stmt, args...))
}
