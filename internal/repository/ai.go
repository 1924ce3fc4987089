package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

const maxAIHistory = 50

// AIRepository ведет журнал обращений к модели.
type AIRepository struct {
	db *pgxpool.Pool
}

type AIRequestLog struct {
	RequestType     string
	Month           string
	Provider        string
	Model           string
	Prompt          string
	RequestPayload  []byte
	ResponsePayload []byte
	RawResponse     string
	Success         bool
	ErrorMessage    *string
}

// AIRequestEntry - запись журнала без промпта и сырого ответа.
type AIRequestEntry struct {
	ID           uuid.UUID
	RequestType  string
	Month        *string
	Provider     string
	Model        string
	Response     json.RawMessage
	Success      bool
	ErrorMessage *string
	CreatedAt    time.Time
}

// NewAIRepository создает репозиторий журнала AI-запросов.
func NewAIRepository(db *pgxpool.Pool) *AIRepository {
	return &AIRepository{db: db}
}

// LogRequest сохраняет обращение к модели. Пустые payload пишутся как NULL.
func (r *AIRepository) LogRequest(ctx context.Context, log AIRequestLog) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO ai_requests
		 (request_type, month, provider, model, prompt, request_payload, response_payload, raw_response, success, error_message)
		 VALUES ($1, NULLIF($2, ''), $3, $4, $5, NULLIF($6, '')::jsonb, NULLIF($7, '')::jsonb, $8, $9, $10)`,
		log.RequestType,
		log.Month,
		log.Provider,
		log.Model,
		log.Prompt,
		string(log.RequestPayload),
		string(log.ResponsePayload),
		log.RawResponse,
		log.Success,
		log.ErrorMessage,
	)
	return err
}

// Recent возвращает последние записи указанного типа, новые первыми.
func (r *AIRepository) Recent(ctx context.Context, requestType string, limit int) ([]AIRequestEntry, error) {
	if limit <= 0 || limit > maxAIHistory {
		limit = maxAIHistory
	}

	rows, err := r.db.Query(ctx,
		`SELECT id, request_type, month, provider, model, response_payload, success, error_message, created_at
		 FROM ai_requests
		 WHERE request_type = $1
		 ORDER BY created_at DESC
		 LIMIT $2`,
		requestType, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]AIRequestEntry, 0)
	for rows.Next() {
		var entry AIRequestEntry
		var response []byte
		if err := rows.Scan(&entry.ID, &entry.RequestType, &entry.Month, &entry.Provider, &entry.Model,
			&response, &entry.Success, &entry.ErrorMessage, &entry.CreatedAt); err != nil {
			return nil, err
		}
		if len(response) > 0 {
			entry.Response = json.RawMessage(response)
		}
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}
