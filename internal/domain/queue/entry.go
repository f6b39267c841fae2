package queue

import (
	"database/sql"
	"time"
)

// Status is the lifecycle step of a queue entry.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusProcessed  Status = "processed"
	StatusError      Status = "error"
)

// Entry is one submitted answer waiting to be graded.
// Created by the inbound handler, mutated only by the grading worker.
type Entry struct {
	ID             int64
	ChatID         int64
	UserID         int64
	TaskID         int64
	UserAnswerText string
	Status         Status
	CreatedAt      time.Time
	ProcessedAt    sql.NullTime
	ErrorMessage   sql.NullString
	ClaimedBy      sql.NullString // worker instance holding the entry
	ClaimedAt      sql.NullTime
}

// NewPending returns an entry ready to be enqueued.
func NewPending(chatID, userID, taskID int64, answer string, now time.Time) *Entry {
	return &Entry{
		ChatID:         chatID,
		UserID:         userID,
		TaskID:         taskID,
		UserAnswerText: answer,
		Status:         StatusPending,
		CreatedAt:      now,
	}
}
