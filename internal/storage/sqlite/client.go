package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/saadtariq57/richtv-chatbot/pkg/logger"
)

// QueryRecord is one answered query persisted for the history endpoint.
type QueryRecord struct {
	ID            string    `json:"id"`
	QueryText     string    `json:"query_text"`
	Answer        string    `json:"answer"`
	Confidence    float64   `json:"confidence"`
	Categories    []string  `json:"categories"`
	RescueApplied bool      `json:"rescue_applied"`
	LatencyMS     int64     `json:"latency_ms"`
	CreatedAt     time.Time `json:"created_at"`
}

// Client wraps the query-history database.
type Client struct {
	db *sql.DB
}

func NewClient(path string) (*Client, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	client := &Client{db: db}
	if err := client.migrate(); err != nil {
		return nil, err
	}
	logger.Info("sqlite storage initialized", zap.String("path", path))
	return client, nil
}

func (c *Client) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS query_history (
		id TEXT PRIMARY KEY,
		query_text TEXT NOT NULL,
		answer TEXT NOT NULL,
		confidence REAL NOT NULL,
		categories TEXT NOT NULL,
		rescue_applied INTEGER NOT NULL DEFAULT 0,
		latency_ms INTEGER NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_query_history_created_at
		ON query_history(created_at DESC);`

	if _, err := c.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

func (c *Client) InsertQueryRecord(ctx context.Context, rec QueryRecord) error {
	query := `INSERT INTO query_history
		(id, query_text, answer, confidence, categories, rescue_applied, latency_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	rescued := 0
	if rec.RescueApplied {
		rescued = 1
	}
	_, err := c.db.ExecContext(ctx, query,
		rec.ID, rec.QueryText, rec.Answer, rec.Confidence,
		strings.Join(rec.Categories, ","), rescued, rec.LatencyMS, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert query record: %w", err)
	}
	return nil
}

func (c *Client) GetHistory(ctx context.Context, limit int) ([]QueryRecord, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	query := `SELECT id, query_text, answer, confidence, categories, rescue_applied, latency_ms, created_at
		FROM query_history ORDER BY created_at DESC LIMIT ?`

	rows, err := c.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var records []QueryRecord
	for rows.Next() {
		var rec QueryRecord
		var categories string
		var rescued int
		if err := rows.Scan(&rec.ID, &rec.QueryText, &rec.Answer, &rec.Confidence,
			&categories, &rescued, &rec.LatencyMS, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan query record: %w", err)
		}
		if categories != "" {
			rec.Categories = strings.Split(categories, ",")
		}
		rec.RescueApplied = rescued == 1
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (c *Client) Close() error {
	return c.db.Close()
}
