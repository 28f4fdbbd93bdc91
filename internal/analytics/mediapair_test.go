package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2025, time.April, 10, 12, 0, 0, 0, time.UTC)

func TestMergeMedia_PairsTranscriptAndSuppressesIt(t *testing.T) {
	rows := MergeMedia([]ConversationMessage{
		{ID: 1, Sender: "user", SentAt: t0, Label: LabelNone, Text: "ok"},
		{ID: 2, Sender: "user", SentAt: t0.Add(10 * time.Second), Label: LabelAudio, Text: `{"audio":{"url":"x"}}`},
	})
	require.Len(t, rows, 1)
	assert.Equal(t, uint64(2), rows[0].ID)
	assert.Equal(t, "ok", rows[0].Text)
}

func TestMergeMedia_OutsideWindowGetsPlaceholder(t *testing.T) {
	rows := MergeMedia([]ConversationMessage{
		{ID: 1, Sender: "user", SentAt: t0, Label: LabelNone, Text: "ok"},
		{ID: 2, Sender: "user", SentAt: t0.Add(10 * time.Second), Label: LabelAudio},
		{ID: 3, Sender: "user", SentAt: t0.Add(200 * time.Second), Label: LabelAudio},
	})
	require.Len(t, rows, 2)
	assert.Equal(t, "ok", rows[0].Text)
	assert.Equal(t, "[Audio]", rows[1].Text, "second audio must not reuse the consumed text row")
}

func TestMergeMedia_BeforeCandidateWinsOverAfter(t *testing.T) {
	rows := MergeMedia([]ConversationMessage{
		{ID: 1, Sender: "user", SentAt: t0, Label: LabelNone, Text: "before"},
		{ID: 2, Sender: "user", SentAt: t0.Add(5 * time.Second), Label: LabelImage},
		{ID: 3, Sender: "user", SentAt: t0.Add(10 * time.Second), Label: LabelNone, Text: "after"},
	})
	require.Len(t, rows, 2)
	assert.Equal(t, "before", rows[0].Text)
	assert.Equal(t, "after", rows[1].Text)
}

func TestMergeMedia_DifferentSenderNotPaired(t *testing.T) {
	rows := MergeMedia([]ConversationMessage{
		{ID: 1, Sender: "companion", SentAt: t0, Label: LabelNone, Text: "caption?"},
		{ID: 2, Sender: "user", SentAt: t0.Add(5 * time.Second), Label: LabelImage},
	})
	require.Len(t, rows, 2)
	assert.Equal(t, "[Image]", rows[1].Text)
}

func TestMergeMedia_SameKindNeverPairs(t *testing.T) {
	rows := MergeMedia([]ConversationMessage{
		{ID: 1, Sender: "user", SentAt: t0, Label: LabelAudio},
		{ID: 2, Sender: "user", SentAt: t0.Add(5 * time.Second), Label: LabelAudio},
	})
	require.Len(t, rows, 2)
	assert.Equal(t, "[Audio]", rows[0].Text)
	assert.Equal(t, "[Audio]", rows[1].Text)
}

func TestMergeMedia_StickerPlaceholder(t *testing.T) {
	rows := MergeMedia([]ConversationMessage{
		{ID: 1, Sender: "user", SentAt: t0, Label: LabelSticker, Text: `{"sticker":{}}`},
	})
	require.Len(t, rows, 1)
	assert.Equal(t, "[Sticker]", rows[0].Text, "unpaired media never shows its raw payload")
}

func TestMergeMedia_NonMediaUntouched(t *testing.T) {
	in := []ConversationMessage{
		{ID: 1, Sender: "user", SentAt: t0, Label: LabelNone, Text: "a message"},
		{ID: 2, Sender: "companion", SentAt: t0.Add(time.Minute), Label: LabelTemplate, Text: "a template"},
	}
	assert.Equal(t, in, MergeMedia(in))
}
