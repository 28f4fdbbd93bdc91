package model

import "time"

// RecoveryLog represents a row of the `recovery_logs` table: one outbound
// re-engagement template send. LadderStep is the ordinal position of the
// template within the escalating outreach sequence.
//
// Fields:
//  ID           – primary key identifier.
//  UserID       – user the template was sent to.
//  TemplateName – name of the recovery template.
//  LadderStep   – ordinal step within the ladder.
//  SentAt       – UTC send timestamp.
//  Converted    – whether the send was marked converted, nil when unknown.
type RecoveryLog struct {
	ID           uint64    // recovery_logs.id
	UserID       uint64    // recovery_logs.user_id
	TemplateName string    // recovery_logs.template_name
	LadderStep   int       // recovery_logs.ladder_step
	SentAt       time.Time // recovery_logs.sent_at (UTC)
	Converted    *bool     // recovery_logs.converted (nullable)
}
