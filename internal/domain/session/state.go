package session

import (
	"encoding/json"
	"fmt"
	"time"

	"task_practice_bot/internal/domain/task"
)

// TTL is how long a conversation state stays valid without being rewritten.
const TTL = 24 * time.Hour

// Kind is the conversational step a user is in.
type Kind string

const (
	KindNone               Kind = "none"
	KindWaitingForCategory Kind = "waiting_for_category"
	KindWaitingForAnswer   Kind = "waiting_for_answer"
)

// Assignment is the task handed to the user while the bot waits for an answer.
type Assignment struct {
	TaskID   int64   `json:"id"`
	Category string  `json:"category,omitempty"`
	Text     string  `json:"text"`
	MaxScore float64 `json:"max_score"`
}

// NewAssignment snapshots the user-visible part of t.
func NewAssignment(t *task.Task) *Assignment {
	return &Assignment{
		TaskID:   t.ID,
		Category: t.Category,
		Text:     t.Text,
		MaxScore: t.MaxScore,
	}
}

// State is the single-slot session of a user. Assignment is set only for KindWaitingForAnswer.
type State struct {
	UserID     int64
	Kind       Kind
	Assignment *Assignment
	UpdatedAt  time.Time
}

// WaitingForCategory builds the state shown after the category menu.
func WaitingForCategory(userID int64, now time.Time) *State {
	return &State{UserID: userID, Kind: KindWaitingForCategory, UpdatedAt: now}
}

// WaitingForAnswer builds the state holding an assigned task.
func WaitingForAnswer(userID int64, a *Assignment, now time.Time) *State {
	return &State{UserID: userID, Kind: KindWaitingForAnswer, Assignment: a, UpdatedAt: now}
}

// Expired reports whether the state is older than TTL at now.
func (s *State) Expired(now time.Time) bool {
	return now.Sub(s.UpdatedAt) > TTL
}

// data is the stored shape of the state payload.
type data struct {
	Task *Assignment `json:"task,omitempty"`
}

// EncodeData serialises the variant payload of s for the data column.
func EncodeData(s *State) ([]byte, error) {
	d := data{}
	if s.Kind == KindWaitingForAnswer {
		d.Task = s.Assignment
	}
	return json.Marshal(d)
}

// DecodeData restores the variant payload of a stored row into s.
// A waiting_for_answer row without a task is rejected.
func DecodeData(s *State, raw []byte) error {
	var d data
	if len(raw) > 0 && string(raw) != "null" {
		if err := json.Unmarshal(raw, &d); err != nil {
			return fmt.Errorf("decode state data: %w", err)
		}
	}
	switch s.Kind {
	case KindWaitingForAnswer:
		if d.Task == nil || d.Task.TaskID == 0 {
			return fmt.Errorf("state %s for user %d has no task", s.Kind, s.UserID)
		}
		s.Assignment = d.Task
	case KindWaitingForCategory, KindNone:
		s.Assignment = nil
	default:
		return fmt.Errorf("unknown state %q for user %d", s.Kind, s.UserID)
	}
	return nil
}
