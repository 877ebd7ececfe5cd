// Package session holds per-conversation state: language preference,
// user profile, the product under discussion, message history and the
// intents detected so far. Sessions live in process memory and are
// owned by the Manager.
package session

import (
	"sync"
	"time"

	"github.com/cloudwalk/assistant/internal/intent"
)

// Role identifies the author of a history message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single entry in the conversation history.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Profile categorizes the merchant talking to the assistant. It feeds
// the persona section of the model prompt.
type Profile string

const (
	ProfileNewMerchant      Profile = "new_merchant"
	ProfileExistingCustomer Profile = "existing_customer"
	ProfileTechnicalUser    Profile = "technical_user"
	ProfileInvestor         Profile = "investor"
	ProfilePartner          Profile = "partner"
	ProfileGeneral          Profile = "general"
)

// Profiles returns every recognized profile value.
func Profiles() []Profile {
	return []Profile{
		ProfileNewMerchant,
		ProfileExistingCustomer,
		ProfileTechnicalUser,
		ProfileInvestor,
		ProfilePartner,
		ProfileGeneral,
	}
}

// ValidProfile reports whether p is one of the recognized profiles.
func ValidProfile(p Profile) bool {
	for _, known := range Profiles() {
		if p == known {
			return true
		}
	}
	return false
}

// Context is the mutable state of one conversation. All methods are
// safe for concurrent use; LockTurn serializes whole request/response
// turns so interleaved turns cannot corrupt the history order.
type Context struct {
	id        string
	createdAt time.Time

	turnMu sync.Mutex

	mu              sync.RWMutex
	language        string
	profile         Profile
	currentProduct  string
	history         []Message
	intents         []intent.Kind
	metadata        map[string]string
	lastInteraction time.Time
}

func newContext(id, language string) *Context {
	now := time.Now()
	return &Context{
		id:              id,
		createdAt:       now,
		language:        language,
		profile:         ProfileGeneral,
		metadata:        make(map[string]string),
		lastInteraction: now,
	}
}

// ID returns the session identifier.
func (c *Context) ID() string { return c.id }

// CreatedAt returns when the session was created.
func (c *Context) CreatedAt() time.Time { return c.createdAt }

// LockTurn acquires the per-session turn lock. Callers must pair it
// with UnlockTurn around a full request/response exchange.
func (c *Context) LockTurn() { c.turnMu.Lock() }

// UnlockTurn releases the per-session turn lock.
func (c *Context) UnlockTurn() { c.turnMu.Unlock() }

// Language returns the session's current language code.
func (c *Context) Language() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.language
}

// SetLanguage records the language the conversation is held in.
func (c *Context) SetLanguage(code string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.language = code
}

// Profile returns the merchant profile associated with the session.
func (c *Context) Profile() Profile {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.profile
}

// SetProfile records the merchant profile for the session.
func (c *Context) SetProfile(p Profile) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.profile = p
}

// CurrentProduct returns the product the conversation is focused on,
// or the empty string when none has been established.
func (c *Context) CurrentProduct() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.currentProduct
}

// SetCurrentProduct records the product under discussion.
func (c *Context) SetCurrentProduct(product string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.currentProduct = product
}

// AppendTurn adds a completed user/assistant exchange to the history
// and refreshes the last-interaction timestamp.
func (c *Context) AppendTurn(user, assistant string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.history = append(c.history,
		Message{Role: RoleUser, Content: user},
		Message{Role: RoleAssistant, Content: assistant},
	)
	c.lastInteraction = time.Now()
}

// History returns a copy of the full conversation history.
func (c *Context) History() []Message {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Message, len(c.history))
	copy(out, c.history)
	return out
}

// LastHistory returns a copy of the most recent n history messages.
func (c *Context) LastHistory(n int) []Message {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if n <= 0 {
		return nil
	}
	start := len(c.history) - n
	if start < 0 {
		start = 0
	}
	out := make([]Message, len(c.history)-start)
	copy(out, c.history[start:])
	return out
}

// RecordIntents appends the intents detected in the latest user turn.
func (c *Context) RecordIntents(kinds []intent.Kind) {
	if len(kinds) == 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.intents = append(c.intents, kinds...)
}

// Intents returns a copy of every intent detected over the session.
func (c *Context) Intents() []intent.Kind {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]intent.Kind, len(c.intents))
	copy(out, c.intents)
	return out
}

// SetMetadata stores an arbitrary key/value pair on the session.
func (c *Context) SetMetadata(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.metadata[key] = value
}

// Metadata returns a copy of the session's metadata map.
func (c *Context) Metadata() map[string]string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]string, len(c.metadata))
	for k, v := range c.metadata {
		out[k] = v
	}
	return out
}

// LastInteraction returns the time of the most recent completed turn.
func (c *Context) LastInteraction() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastInteraction
}

// Snapshot is a read-only view of a session used by API responses.
type Snapshot struct {
	ID              string            `json:"id"`
	Language        string            `json:"language"`
	Profile         Profile           `json:"profile"`
	CurrentProduct  string            `json:"current_product,omitempty"`
	History         []Message         `json:"history"`
	Intents         []intent.Kind     `json:"intents"`
	Metadata        map[string]string `json:"metadata,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
	LastInteraction time.Time         `json:"last_interaction"`
}

// Snapshot captures the session state at a point in time.
func (c *Context) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	history := make([]Message, len(c.history))
	copy(history, c.history)
	intents := make([]intent.Kind, len(c.intents))
	copy(intents, c.intents)
	metadata := make(map[string]string, len(c.metadata))
	for k, v := range c.metadata {
		metadata[k] = v
	}
	return Snapshot{
		ID:              c.id,
		Language:        c.language,
		Profile:         c.profile,
		CurrentProduct:  c.currentProduct,
		History:         history,
		Intents:         intents,
		Metadata:        metadata,
		CreatedAt:       c.createdAt,
		LastInteraction: c.lastInteraction,
	}
}
