package task

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const historyKey = "aria:task_history"

// HistoryRecord ties one task invocation to its outcome.
type HistoryRecord struct {
	Timestamp time.Time `json:"timestamp"`
	Task      string    `json:"task"`
	Result    *Result   `json:"result"`
}

// History keeps task records in Redis with a bounded in-memory mirror for
// fast reads. Redis being unavailable degrades it to memory-only.
type History struct {
	client *redis.Client
	limit  int

	mu      sync.Mutex
	records []HistoryRecord
}

func NewHistory(client *redis.Client, limit int) *History {
	if limit <= 0 {
		limit = 200
	}
	return &History{client: client, limit: limit}
}

// Append stores a record, trimming both stores to the configured limit.
func (h *History) Append(ctx context.Context, taskText string, result *Result) error {
	rec := HistoryRecord{Timestamp: time.Now(), Task: taskText, Result: result}

	h.mu.Lock()
	h.records = append(h.records, rec)
	if len(h.records) > h.limit {
		h.records = h.records[len(h.records)-h.limit:]
	}
	h.mu.Unlock()

	if h.client == nil {
		return nil
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal history record: %w", err)
	}
	pipe := h.client.Pipeline()
	pipe.RPush(ctx, historyKey, data)
	pipe.LTrim(ctx, historyKey, int64(-h.limit), -1)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to persist history record: %w", err)
	}
	return nil
}

// Recent returns up to n most recent records, newest last. It prefers
// Redis so history survives restarts.
func (h *History) Recent(ctx context.Context, n int) ([]HistoryRecord, error) {
	if n <= 0 || n > h.limit {
		n = h.limit
	}

	if h.client != nil {
		raw, err := h.client.LRange(ctx, historyKey, int64(-n), -1).Result()
		if err == nil {
			records := make([]HistoryRecord, 0, len(raw))
			for _, item := range raw {
				var rec HistoryRecord
				if err := json.Unmarshal([]byte(item), &rec); err != nil {
					continue
				}
				records = append(records, rec)
			}
			return records, nil
		}
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	start := 0
	if len(h.records) > n {
		start = len(h.records) - n
	}
	out := make([]HistoryRecord, len(h.records)-start)
	copy(out, h.records[start:])
	return out, nil
}

// Clear drops all stored records.
func (h *History) Clear(ctx context.Context) error {
	h.mu.Lock()
	h.records = nil
	h.mu.Unlock()

	if h.client == nil {
		return nil
	}
	return h.client.Del(ctx, historyKey).Err()
}
