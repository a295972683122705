// Package session keeps bounded, expiring conversation history per session.
package session

import (
	"sync"
	"time"

	"github.com/bobmcallan/marketctx/internal/common"
	"github.com/bobmcallan/marketctx/internal/interfaces"
	"github.com/bobmcallan/marketctx/internal/models"
)

// entry is one session's history with its expiry.
type entry struct {
	expiresAt time.Time
	messages  []models.ChatMessage
}

// Cache implements interfaces.SessionCache in memory. Each append trims the
// history to the newest maxMessages and pushes expiry out by ttl.
type Cache struct {
	ttl         time.Duration
	maxMessages int
	logger      *common.Logger
	now         func() time.Time // injectable clock for testing

	mu    sync.RWMutex
	items map[string]*entry
}

// NewCache creates a session cache from config.
func NewCache(config common.SessionConfig, logger *common.Logger) *Cache {
	return &Cache{
		ttl:         config.GetTTL(),
		maxMessages: config.GetMaxMessages(),
		logger:      logger,
		now:         time.Now,
		items:       make(map[string]*entry),
	}
}

// Append records a message. Empty content is ignored.
func (c *Cache) Append(sessionID, role, content string) {
	if sessionID == "" || content == "" {
		return
	}
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.items[sessionID]
	if !ok || !now.Before(e.expiresAt) {
		e = &entry{}
		c.items[sessionID] = e
	}
	e.messages = append(e.messages, models.ChatMessage{Role: role, Content: content, CreatedAt: now})
	if over := len(e.messages) - c.maxMessages; over > 0 {
		e.messages = append([]models.ChatMessage(nil), e.messages[over:]...)
	}
	e.expiresAt = now.Add(c.ttl)
}

// History returns a copy of the session's messages, oldest first, or nil when
// the session is unknown or expired.
func (c *Cache) History(sessionID string) []models.ChatMessage {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.items[sessionID]
	if !ok || !c.now().Before(e.expiresAt) {
		return nil
	}
	return append([]models.ChatMessage(nil), e.messages...)
}

// Reset drops a session.
func (c *Cache) Reset(sessionID string) {
	c.mu.Lock()
	delete(c.items, sessionID)
	c.mu.Unlock()
}

// Sweep removes expired sessions and returns how many were dropped.
func (c *Cache) Sweep() int {
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for id, e := range c.items {
		if !now.Before(e.expiresAt) {
			delete(c.items, id)
			n++
		}
	}
	if n > 0 {
		c.logger.Debug().Int("expired", n).Int("remaining", len(c.items)).Msg("Session sweep")
	}
	return n
}

// Len returns the number of tracked sessions, expired or not.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Compile-time check
var _ interfaces.SessionCache = (*Cache)(nil)
