package model

import "time"

// ActivityCompletion represents a completed row of the
// `user_activities_history` table.
//
// Fields:
//  UserID       – user who completed the activity.
//  ActivityType – kind of activity completed.
//  CompletedAt  – UTC completion timestamp.
//  XPEarned     – experience points granted by the completion.
type ActivityCompletion struct {
	UserID       uint64    // user_activities_history.user_id
	ActivityType string    // user_activities_history.activity_type
	CompletedAt  time.Time // user_activities_history.completed_at (UTC)
	XPEarned     int64     // user_activities_history.xp_earned
}
