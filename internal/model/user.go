package model

import "time"

// User represents a row of the `users` table. A waid may have multiple user
// rows because re-onboarding creates a fresh row; the most recently created
// row per waid is canonical for display. The timezone column is free-form
// ("America/Sao_Paulo", "UTC-3", "-3", ...) and resolved by the analytics
// layer.
//
// Fields:
//  ID        – primary key identifier of this user row.
//  WAID      – stable WhatsApp identifier of the end user.
//  FullName  – display name, nil when never captured.
//  Timezone  – free-form timezone string, nil when unknown.
//  Level     – product level label, nil when not set.
//  IsActive  – whether the account is active.
//  CreatedAt – timestamp of row creation (UTC).
//  UpdatedAt – timestamp of last update (UTC).
type User struct {
	ID        uint64    // users.id
	WAID      string    // users.waid
	FullName  *string   // users.full_name (nullable)
	Timezone  *string   // users.timezone (nullable)
	Level     *string   // users.level (nullable)
	IsActive  bool      // users.is_active
	CreatedAt time.Time // users.created_at
	UpdatedAt time.Time // users.updated_at
}
