package assistant

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"aria/intent"
)

const conversationKey = "aria:conversation"

// Conversation keeps the recent user/assistant exchanges. Redis is the
// durable store; a bounded in-memory mirror keeps the assistant usable
// when Redis is down.
type Conversation struct {
	client *redis.Client
	limit  int

	mu        sync.Mutex
	exchanges []intent.Exchange
}

func NewConversation(client *redis.Client, limit int) *Conversation {
	if limit <= 0 {
		limit = 50
	}
	return &Conversation{client: client, limit: limit}
}

// Add records one exchange and trims both stores to the limit.
func (c *Conversation) Add(ctx context.Context, user, response string) {
	ex := intent.Exchange{User: user, Assistant: response, Timestamp: time.Now()}

	c.mu.Lock()
	c.exchanges = append(c.exchanges, ex)
	if len(c.exchanges) > c.limit {
		c.exchanges = c.exchanges[len(c.exchanges)-c.limit:]
	}
	c.mu.Unlock()

	if c.client == nil {
		return
	}
	data, err := json.Marshal(ex)
	if err != nil {
		return
	}
	pipe := c.client.Pipeline()
	pipe.RPush(ctx, conversationKey, data)
	pipe.LTrim(ctx, conversationKey, int64(-c.limit), -1)
	_, _ = pipe.Exec(ctx)
}

// Recent returns up to n exchanges, oldest first.
func (c *Conversation) Recent(ctx context.Context, n int) []intent.Exchange {
	if n <= 0 {
		n = c.limit
	}
	if c.client != nil {
		raw, err := c.client.LRange(ctx, conversationKey, int64(-n), -1).Result()
		if err == nil && len(raw) > 0 {
			out := make([]intent.Exchange, 0, len(raw))
			for _, item := range raw {
				var ex intent.Exchange
				if json.Unmarshal([]byte(item), &ex) == nil {
					out = append(out, ex)
				}
			}
			return out
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.exchanges) <= n {
		return append([]intent.Exchange(nil), c.exchanges...)
	}
	return append([]intent.Exchange(nil), c.exchanges[len(c.exchanges)-n:]...)
}

// Clear wipes the conversation in both stores.
func (c *Conversation) Clear(ctx context.Context) {
	c.mu.Lock()
	c.exchanges = nil
	c.mu.Unlock()
	if c.client != nil {
		_ = c.client.Del(ctx, conversationKey).Err()
	}
}
