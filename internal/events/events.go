package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// EventType names a progression milestone.
type EventType string

const (
	EventLevelUp              EventType = "level_up"
	EventRoundComplete        EventType = "round_complete"
	EventCurriculumComplete   EventType = "curriculum_complete"
	EventMilestoneReached     EventType = "milestone_reached"
	EventFirstCompletionToday EventType = "first_completion_today"
)

// ProgressEvent is one milestone reached by a learner.
type ProgressEvent struct {
	// ID is a unique identifier for this event
	ID uuid.UUID `json:"id"`

	Type   EventType `json:"type"`
	UserID uuid.UUID `json:"user_id"`

	// Payload contains the type-specific data serialized as JSON
	Payload json.RawMessage `json:"payload"`

	// CreatedAt is the engine clock reading at commit time
	CreatedAt time.Time `json:"created_at"`
}

// LevelUpPayload accompanies EventLevelUp.
type LevelUpPayload struct {
	LevelBefore int `json:"level_before"`
	LevelAfter  int `json:"level_after"`
	TotalXP     int `json:"total_xp"`
}

// CurriculumPayload accompanies EventRoundComplete and EventCurriculumComplete.
type CurriculumPayload struct {
	LessonNumber int `json:"lesson_number"`
}

// MilestonePayload accompanies EventMilestoneReached.
type MilestonePayload struct {
	GemsAwarded          int `json:"gems_awarded"`
	TotalStagesCompleted int `json:"total_stages_completed"`
}

// StreakPayload accompanies EventFirstCompletionToday.
type StreakPayload struct {
	Day    string `json:"day"`
	Streak int    `json:"streak"`
}

// UnmarshalPayload decodes the event payload into the provided structure.
func (e *ProgressEvent) UnmarshalPayload(v any) error {
	return json.Unmarshal(e.Payload, v)
}

// NewProgressEvent creates a ProgressEvent with a fresh id.
func NewProgressEvent(eventType EventType, userID uuid.UUID, payload any, at time.Time) (*ProgressEvent, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &ProgressEvent{
		ID:        uuid.New(),
		Type:      eventType,
		UserID:    userID,
		Payload:   payloadBytes,
		CreatedAt: at,
	}, nil
}

// EventHandler defines an interface for components that can handle events.
type EventHandler interface {
	// HandleEvent processes the given event within the provided context.
	HandleEvent(ctx context.Context, event *ProgressEvent) error
}

// EventEmitter defines an interface for components that can emit events.
// This allows the engine to publish milestones without knowing the handlers.
type EventEmitter interface {
	// EmitEvent publishes the given event to all registered handlers.
	EmitEvent(ctx context.Context, event *ProgressEvent) error
}

// HandlerFunc adapts a function to EventHandler.
type HandlerFunc func(ctx context.Context, event *ProgressEvent) error

// HandleEvent calls f.
func (f HandlerFunc) HandleEvent(ctx context.Context, event *ProgressEvent) error {
	return f(ctx, event)
}
