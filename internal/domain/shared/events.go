// Package shared contains common domain types, errors, and events that are
// used across all domain packages.
package shared

import (
	"encoding/json"
	"time"
)

// EventType represents the type of domain event.
type EventType string

// Domain event types. Each event represents something significant that
// happened in the engine; out-of-scope surfaces (notifications, UI) subscribe
// to these instead of polling.
const (
	// User events
	EventUserRegistered EventType = "user.registered"

	// Gamification events
	EventPointsChanged EventType = "gamification.points_changed"
	EventLevelUp       EventType = "gamification.level_up"
	EventBadgeEarned   EventType = "gamification.badge_earned"
	EventStreakUpdated EventType = "gamification.streak_updated"

	// Quest events
	EventQuestCompleted EventType = "quest.completed"
	EventQuestsReset    EventType = "quest.reset"

	// Archive events
	EventArchiveCompleted EventType = "archive.run_completed"
)

// Event is the interface all domain events implement.
type Event interface {
	// Type returns the event type.
	Type() EventType

	// OccurredAt returns when the event happened.
	OccurredAt() time.Time

	// AggregateID returns the ID of the aggregate the event belongs to
	// (usually a user ID, or "system" for batch events).
	AggregateID() string

	// Payload returns the event payload for serialization.
	Payload() ([]byte, error)
}

// EventHandler processes a single event.
type EventHandler func(event Event) error

// EventPublisher publishes domain events.
type EventPublisher interface {
	Publish(event Event) error
}

// BaseEvent provides common event fields.
type BaseEvent struct {
	EventType EventType `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
	Aggregate string    `json:"aggregate_id"`
}

// Type returns the event type.
func (e BaseEvent) Type() EventType { return e.EventType }

// OccurredAt returns when the event happened.
func (e BaseEvent) OccurredAt() time.Time { return e.Timestamp }

// AggregateID returns the aggregate ID.
func (e BaseEvent) AggregateID() string { return e.Aggregate }

// newBaseEvent builds the common part of an event.
func newBaseEvent(t EventType, aggregateID string) BaseEvent {
	return BaseEvent{
		EventType: t,
		Timestamp: time.Now().UTC(),
		Aggregate: aggregateID,
	}
}

// UserRegisteredEvent is emitted when a user and their profile are created.
type UserRegisteredEvent struct {
	BaseEvent
	UserID   string `json:"user_id"`
	Username string `json:"username"`
}

// NewUserRegisteredEvent creates a UserRegisteredEvent.
func NewUserRegisteredEvent(userID, username string) UserRegisteredEvent {
	return UserRegisteredEvent{
		BaseEvent: newBaseEvent(EventUserRegistered, userID),
		UserID:    userID,
		Username:  username,
	}
}

// Payload serializes the event.
func (e UserRegisteredEvent) Payload() ([]byte, error) { return json.Marshal(e) }

// PointsChangedEvent is emitted whenever a user's points change.
type PointsChangedEvent struct {
	BaseEvent
	UserID    string `json:"user_id"`
	Delta     int    `json:"delta"`
	NewPoints int    `json:"new_points"`
	NewLevel  int    `json:"new_level"`
	Reason    string `json:"reason"`
}

// NewPointsChangedEvent creates a PointsChangedEvent.
func NewPointsChangedEvent(userID string, delta, newPoints, newLevel int, reason string) PointsChangedEvent {
	return PointsChangedEvent{
		BaseEvent: newBaseEvent(EventPointsChanged, userID),
		UserID:    userID,
		Delta:     delta,
		NewPoints: newPoints,
		NewLevel:  newLevel,
		Reason:    reason,
	}
}

// Payload serializes the event.
func (e PointsChangedEvent) Payload() ([]byte, error) { return json.Marshal(e) }

// LevelUpEvent is emitted when a user's derived level increases.
type LevelUpEvent struct {
	BaseEvent
	UserID   string `json:"user_id"`
	OldLevel int    `json:"old_level"`
	NewLevel int    `json:"new_level"`
	Points   int    `json:"points"`
}

// NewLevelUpEvent creates a LevelUpEvent.
func NewLevelUpEvent(userID string, oldLevel, newLevel, points int) LevelUpEvent {
	return LevelUpEvent{
		BaseEvent: newBaseEvent(EventLevelUp, userID),
		UserID:    userID,
		OldLevel:  oldLevel,
		NewLevel:  newLevel,
		Points:    points,
	}
}

// Payload serializes the event.
func (e LevelUpEvent) Payload() ([]byte, error) { return json.Marshal(e) }

// BadgeEarnedEvent is emitted for each newly earned badge.
type BadgeEarnedEvent struct {
	BaseEvent
	UserID string `json:"user_id"`
	Badge  string `json:"badge"`
}

// NewBadgeEarnedEvent creates a BadgeEarnedEvent.
func NewBadgeEarnedEvent(userID, badge string) BadgeEarnedEvent {
	return BadgeEarnedEvent{
		BaseEvent: newBaseEvent(EventBadgeEarned, userID),
		UserID:    userID,
		Badge:     badge,
	}
}

// Payload serializes the event.
func (e BadgeEarnedEvent) Payload() ([]byte, error) { return json.Marshal(e) }

// QuestCompletedEvent is emitted on the false→true completion transition of a
// daily quest, exactly once per quest.
type QuestCompletedEvent struct {
	BaseEvent
	UserID       string `json:"user_id"`
	QuestID      string `json:"quest_id"`
	QuestKind    string `json:"quest_kind"`
	PointsReward int    `json:"points_reward"`
}

// NewQuestCompletedEvent creates a QuestCompletedEvent.
func NewQuestCompletedEvent(userID, questID, questKind string, reward int) QuestCompletedEvent {
	return QuestCompletedEvent{
		BaseEvent:    newBaseEvent(EventQuestCompleted, userID),
		UserID:       userID,
		QuestID:      questID,
		QuestKind:    questKind,
		PointsReward: reward,
	}
}

// Payload serializes the event.
func (e QuestCompletedEvent) Payload() ([]byte, error) { return json.Marshal(e) }

// ArchiveCompletedEvent is emitted once per daily reset run.
type ArchiveCompletedEvent struct {
	BaseEvent
	Boundary       time.Time `json:"boundary"`
	UsersProcessed int       `json:"users_processed"`
	UsersSucceeded int       `json:"users_succeeded"`
	UsersFailed    int       `json:"users_failed"`
}

// NewArchiveCompletedEvent creates an ArchiveCompletedEvent.
func NewArchiveCompletedEvent(boundary time.Time, processed, succeeded, failed int) ArchiveCompletedEvent {
	return ArchiveCompletedEvent{
		BaseEvent:      newBaseEvent(EventArchiveCompleted, "system"),
		Boundary:       boundary,
		UsersProcessed: processed,
		UsersSucceeded: succeeded,
		UsersFailed:    failed,
	}
}

// Payload serializes the event.
func (e ArchiveCompletedEvent) Payload() ([]byte, error) { return json.Marshal(e) }

// NopPublisher discards all events. Useful for tests and for wiring when the
// event bus is disabled.
type NopPublisher struct{}

// Publish implements EventPublisher.
func (NopPublisher) Publish(Event) error { return nil }
