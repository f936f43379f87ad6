// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists survey runs in a SQLite database. The pipeline
// checkpoints the survey record once per completed stage, so a restart sees
// the last finished stage's outputs. See docs/ARCHITECTURE § Persistence.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/survey-engine/pkg/types"
)

// DefaultDBPath is where the survey database lives unless configured.
const DefaultDBPath = "surveys.db"

// ErrNotFound reports a survey id with no stored record.
var ErrNotFound = errors.New("survey not found")

// Store manages the surveys SQLite database.
type Store struct {
	db *sql.DB
}

// NewStore opens or creates the survey database and its schema.
func NewStore(cfg types.StoreConfig) (*Store, error) {
	dbPath := cfg.DBPath
	if dbPath == "" {
		dbPath = DefaultDBPath
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS surveys (
			id TEXT PRIMARY KEY,
			topic TEXT NOT NULL,
			additional_info TEXT,
			status TEXT NOT NULL,
			current_agent TEXT,
			progress INTEGER NOT NULL DEFAULT 0,
			error_message TEXT,
			documents TEXT,
			papers TEXT,
			generated TEXT,
			citations TEXT,
			verification TEXT,
			plagiarism TEXT,
			created_at TEXT NOT NULL,
			completed_at TEXT,
			processing_time INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS idx_surveys_status ON surveys(status)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Create inserts a new survey record. A missing ID is assigned, a missing
// status starts as pending, and CreatedAt defaults to now.
func (s *Store) Create(ctx context.Context, survey *types.Survey) error {
	if survey.ID == "" {
		survey.ID = uuid.NewString()
	}
	if survey.Status == "" {
		survey.Status = types.StatusPending
	}
	if survey.CreatedAt.IsZero() {
		survey.CreatedAt = time.Now().UTC()
	}
	return s.upsert(ctx, survey, `INSERT INTO surveys
		(id, topic, additional_info, status, current_agent, progress, error_message,
		 documents, papers, generated, citations, verification, plagiarism,
		 created_at, completed_at, processing_time)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
}

// Save writes the survey's current state over its stored record.
func (s *Store) Save(ctx context.Context, survey *types.Survey) error {
	return s.upsert(ctx, survey, `INSERT INTO surveys
		(id, topic, additional_info, status, current_agent, progress, error_message,
		 documents, papers, generated, citations, verification, plagiarism,
		 created_at, completed_at, processing_time)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			topic=excluded.topic, additional_info=excluded.additional_info,
			status=excluded.status, current_agent=excluded.current_agent,
			progress=excluded.progress, error_message=excluded.error_message,
			documents=excluded.documents, papers=excluded.papers,
			generated=excluded.generated, citations=excluded.citations,
			verification=excluded.verification, plagiarism=excluded.plagiarism,
			completed_at=excluded.completed_at,
			processing_time=excluded.processing_time`)
}

func (s *Store) upsert(ctx context.Context, survey *types.Survey, query string) error {
	documents, err := marshalColumn(survey.Documents)
	if err != nil {
		return err
	}
	papers, err := marshalColumn(survey.RetrievedPapers)
	if err != nil {
		return err
	}
	generated, err := marshalColumn(survey.Generated)
	if err != nil {
		return err
	}
	citations, err := marshalColumn(survey.Citations)
	if err != nil {
		return err
	}
	verification, err := marshalColumn(survey.Verification)
	if err != nil {
		return err
	}
	plagiarism, err := marshalColumn(survey.Plagiarism)
	if err != nil {
		return err
	}

	completedAt := ""
	if !survey.CompletedAt.IsZero() {
		completedAt = survey.CompletedAt.UTC().Format(time.RFC3339Nano)
	}

	_, err = s.db.ExecContext(ctx, query,
		survey.ID, survey.Topic, survey.AdditionalInfo,
		string(survey.Status), string(survey.CurrentAgent), survey.Progress,
		survey.ErrorMessage,
		documents, papers, generated, citations, verification, plagiarism,
		survey.CreatedAt.UTC().Format(time.RFC3339Nano), completedAt,
		survey.ProcessingTime,
	)
	if err != nil {
		return fmt.Errorf("writing survey %s: %w", survey.ID, err)
	}
	return nil
}

// marshalColumn encodes a field as JSON, with nil values stored as empty.
func marshalColumn(v any) (string, error) {
	if v == nil {
		return "", nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encoding column: %w", err)
	}
	if string(data) == "null" {
		return "", nil
	}
	return string(data), nil
}

const selectColumns = `id, topic, additional_info, status, current_agent, progress,
	error_message, documents, papers, generated, citations, verification,
	plagiarism, created_at, completed_at, processing_time`

// Load returns the stored survey for id, or ErrNotFound.
func (s *Store) Load(ctx context.Context, id string) (*types.Survey, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+selectColumns+` FROM surveys WHERE id = ?`, id)
	survey, err := scanSurvey(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("loading survey %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("loading survey %s: %w", id, err)
	}
	return survey, nil
}

// List returns stored surveys newest first. A non-empty status filters by
// lifecycle state.
func (s *Store) List(ctx context.Context, status types.SurveyStatus) ([]types.Survey, error) {
	query := `SELECT ` + selectColumns + ` FROM surveys`
	args := []any{}
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, string(status))
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing surveys: %w", err)
	}
	defer rows.Close()

	var surveys []types.Survey
	for rows.Next() {
		survey, err := scanSurvey(rows)
		if err != nil {
			return nil, fmt.Errorf("listing surveys: %w", err)
		}
		surveys = append(surveys, *survey)
	}
	return surveys, rows.Err()
}

// Delete removes the survey record. Deleting a missing id is ErrNotFound.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM surveys WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting survey %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting survey %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("deleting survey %s: %w", id, ErrNotFound)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSurvey(row rowScanner) (*types.Survey, error) {
	var survey types.Survey
	var status, agent string
	var additionalInfo, errorMessage sql.NullString
	var documents, papers, generated, citations, verification, plagiarism sql.NullString
	var createdAt string
	var completedAt sql.NullString

	err := row.Scan(&survey.ID, &survey.Topic, &additionalInfo, &status, &agent,
		&survey.Progress, &errorMessage,
		&documents, &papers, &generated, &citations, &verification, &plagiarism,
		&createdAt, &completedAt, &survey.ProcessingTime)
	if err != nil {
		return nil, err
	}

	survey.Status = types.SurveyStatus(status)
	survey.CurrentAgent = types.Agent(agent)
	survey.AdditionalInfo = additionalInfo.String
	survey.ErrorMessage = errorMessage.String

	if survey.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	if completedAt.Valid && completedAt.String != "" {
		if survey.CompletedAt, err = parseTime(completedAt.String); err != nil {
			return nil, fmt.Errorf("parsing completed_at: %w", err)
		}
	}

	if err := unmarshalColumn(documents, &survey.Documents); err != nil {
		return nil, err
	}
	if err := unmarshalColumn(papers, &survey.RetrievedPapers); err != nil {
		return nil, err
	}
	if err := unmarshalColumn(generated, &survey.Generated); err != nil {
		return nil, err
	}
	if err := unmarshalColumn(citations, &survey.Citations); err != nil {
		return nil, err
	}
	if err := unmarshalColumn(verification, &survey.Verification); err != nil {
		return nil, err
	}
	if err := unmarshalColumn(plagiarism, &survey.Plagiarism); err != nil {
		return nil, err
	}

	return &survey, nil
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

func unmarshalColumn(col sql.NullString, v any) error {
	if !col.Valid || col.String == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(col.String), v); err != nil {
		return fmt.Errorf("decoding column: %w", err)
	}
	return nil
}
