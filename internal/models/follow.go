package models

import "time"

// Follow is a directed edge: Follower follows Target.
// The composite primary key is the uniqueness constraint that makes follow idempotent.
type Follow struct {
	FollowerName string    `gorm:"primaryKey;size:64" json:"follower"`
	TargetName   string    `gorm:"primaryKey;size:64;index:idx_follows_target" json:"target"`
	CreatedAt    time.Time `json:"created_at"`
}

// TableName specifies the table name for GORM
func (Follow) TableName() string {
	return "follows"
}

// Follow event types.
const (
	EventFollow   = "follow"
	EventUnfollow = "unfollow"
)

// FollowEvent is published to the target's notification channel when an edge
// is created or removed.
type FollowEvent struct {
	Type     string    `json:"type"`
	Follower string    `json:"follower"`
	Target   string    `json:"target"`
	At       time.Time `json:"at"`
}
