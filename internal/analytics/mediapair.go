package analytics

import "time"

// ConversationMessage is one already-decoded message in a single user's
// conversation, in chronological display order.
type ConversationMessage struct {
	ID     uint64    `json:"id"`
	Sender string    `json:"sender"`
	SentAt time.Time `json:"sent_at"`
	Label  string    `json:"label"`
	Text   string    `json:"text"`
}

// pairWindow is how far apart a media message and its transcript/caption
// companion may be and still be treated as one logical message.
const pairWindow = 120 * time.Second

// mediaPlaceholders maps media labels to the text shown when no companion
// message can be found for them.
var mediaPlaceholders = map[string]string{
	LabelAudio:   "[Audio]",
	LabelImage:   "[Image]",
	LabelSticker: "[Sticker]",
}

// MergeMedia pairs each audio/image/sticker message with the textual
// companion the upstream system logs as a separate adjacent message, and
// suppresses the companion from the output.
//
// Media messages are processed in the slice's own order. For an unconsumed
// media message at position i the candidates are i-1 then i+1, in that
// order. A candidate qualifies when it has the same sender, is not the same
// kind of media, has not already been consumed, and sits within the pairing
// window. Pairing is greedy and single-pass: the first qualifying candidate
// is consumed and its text becomes the media message's display text. A media
// message left unpaired shows a placeholder instead of its raw payload.
func MergeMedia(msgs []ConversationMessage) []ConversationMessage {
	rows := make([]ConversationMessage, len(msgs))
	copy(rows, msgs)
	consumed := make([]bool, len(rows))

	for i := range rows {
		placeholder, isMedia := mediaPlaceholders[rows[i].Label]
		if !isMedia || consumed[i] {
			continue
		}
		paired := false
		for _, j := range [2]int{i - 1, i + 1} {
			if j < 0 || j >= len(rows) || consumed[j] {
				continue
			}
			cand := rows[j]
			if cand.Sender != rows[i].Sender || cand.Label == rows[i].Label {
				continue
			}
			delta := cand.SentAt.Sub(rows[i].SentAt)
			if delta < 0 {
				delta = -delta
			}
			if delta > pairWindow {
				continue
			}
			rows[i].Text = cand.Text
			consumed[j] = true
			paired = true
			break
		}
		if !paired {
			rows[i].Text = placeholder
		}
	}

	out := make([]ConversationMessage, 0, len(rows))
	for i, row := range rows {
		if consumed[i] {
			continue
		}
		out = append(out, row)
	}
	return out
}
