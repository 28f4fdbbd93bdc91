package model

import "time"

// Sender values stored in messages.sender.
const (
	SenderUser      = "user"
	SenderCompanion = "companion"
)

// Message represents a row of the `messages` table. The raw payload in
// Message may be a plain string, JSON, or a double-encoded JSON string as
// produced by the WhatsApp integration; decoding is the analytics layer's
// job. SentAt is always stored UTC. Rows are immutable once ingested and
// owned by the messaging product; this service only reads them.
//
// Fields:
//  ID      – primary key identifier.
//  UserID  – owning user row, nil for messages not linked to a user.
//  WAID    – stable WhatsApp identifier of the end user.
//  Sender  – "user" or "companion".
//  Type    – optional stored type tag (text, audio, image, ...).
//  Message – raw payload.
//  SentAt  – UTC send timestamp.
//  Status  – optional delivery status.
type Message struct {
	ID      uint64    // messages.id
	UserID  *uint64   // messages.user_id (nullable)
	WAID    string    // messages.waid
	Sender  string    // messages.sender
	Type    *string   // messages.type (nullable)
	Message string    // messages.message
	SentAt  time.Time // messages.sent_at (UTC)
	Status  *string   // messages.status (nullable)
}
