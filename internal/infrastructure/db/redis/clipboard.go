package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultClipboardTTL = time.Hour

// Clipboard is the export collaborator: copied code is held per session for
// a while so another client of the same session can paste it.
// Key format: clipboard:<session_id>
type Clipboard struct {
	client *redis.Client
	ttl    time.Duration
}

func NewClipboard(client *redis.Client, ttl time.Duration) *Clipboard {
	if ttl <= 0 {
		ttl = defaultClipboardTTL
	}
	return &Clipboard{client: client, ttl: ttl}
}

func (c *Clipboard) Copy(ctx context.Context, sessionID, text string) error {
	if err := c.client.Set(ctx, c.key(sessionID), text, c.ttl).Err(); err != nil {
		return fmt.Errorf("clipboard copy: %w", err)
	}
	return nil
}

// Paste returns the last copied text; ok is false when nothing is held.
func (c *Clipboard) Paste(ctx context.Context, sessionID string) (text string, ok bool, err error) {
	text, err = c.client.Get(ctx, c.key(sessionID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("clipboard paste: %w", err)
	}
	return text, true, nil
}

func (c *Clipboard) key(sessionID string) string {
	return "clipboard:" + sessionID
}
