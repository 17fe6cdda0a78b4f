package model

import (
	"time"

	"github.com/google/uuid"
)

// JobKind 异步任务类型
type JobKind string

const (
	JobEnrich          JobKind = "enrich"
	JobGenerateMatches JobKind = "generate_matches"
)

// Job 投递给后台协作方的工作项（富化 / 匹配生成）
type Job struct {
	ID         string    `json:"id"`
	Kind       JobKind   `json:"kind"`
	StartupID  string    `json:"startup_id"`
	URL        string    `json:"url,omitempty"`
	Priority   string    `json:"priority,omitempty"`
	Attempts   int       `json:"attempts"`
	LastError  string    `json:"last_error,omitempty"`
	EnqueuedAt time.Time `json:"enqueued_at"`
}

// NewJob 生成带 uuid 的新任务
func NewJob(kind JobKind, startupID string) *Job {
	return &Job{
		ID:         uuid.NewString(),
		Kind:       kind,
		StartupID:  startupID,
		EnqueuedAt: time.Now().UTC(),
	}
}
