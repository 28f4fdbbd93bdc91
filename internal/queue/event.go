// Package queue defines message payloads exchanged over the message broker.
package queue

// MessageIngestedEvent is published by the messaging pipeline whenever a
// batch of new rows lands in the primary database. The dashboard only uses
// it as a staleness signal, so the payload stays small.
type MessageIngestedEvent struct {
	WAID       string `json:"waid,omitempty"`
	UserID     uint64 `json:"user_id,omitempty"`
	Count      int    `json:"count"`
	IngestedAt string `json:"ingested_at"`
}
