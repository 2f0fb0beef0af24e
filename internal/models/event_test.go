package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestEventLifecycleForwardOnly(t *testing.T) {
	e := &Event{Status: StatusDraft}

	require.NoError(t, e.Confirm())
	require.Equal(t, StatusConfirmed, e.Status)

	require.NoError(t, e.Archive())
	require.Equal(t, StatusArchived, e.Status)

	require.ErrorIs(t, e.Confirm(), ErrStatusOrder)
	require.ErrorIs(t, e.Archive(), ErrStatusOrder)
	require.Equal(t, StatusArchived, e.Status)
}

func TestEventLifecycleNoSkipping(t *testing.T) {
	e := &Event{Status: StatusDraft}
	require.ErrorIs(t, e.Archive(), ErrStatusOrder)
	require.Equal(t, StatusDraft, e.Status)
}

func TestEventConfirmDoubleFails(t *testing.T) {
	e := &Event{Status: StatusDraft}
	require.NoError(t, e.Confirm())
	require.ErrorIs(t, e.Confirm(), ErrStatusOrder)
}

func TestConfirmMarksMobileCaptureTransferred(t *testing.T) {
	e := &Event{Status: StatusDraft, IsMobileCapture: true}
	require.NoError(t, e.Confirm())
	require.True(t, e.TransferredToDesktop)

	plain := &Event{Status: StatusDraft}
	require.NoError(t, plain.Confirm())
	require.False(t, plain.TransferredToDesktop)
}

func TestCaptureRetentionIsThirtyDays(t *testing.T) {
	require.Equal(t, int64(2_592_000_000), CaptureRetention.Milliseconds())
}

func TestFileRecordExpiry(t *testing.T) {
	now := time.Now()
	expires := now.Add(CaptureRetention).UnixMilli()
	f := FileRecord{ExpiresAt: &expires}

	require.False(t, f.Expired(now))
	require.True(t, f.Expired(now.Add(CaptureRetention).Add(time.Millisecond)))

	remaining, ok := f.RemainingRetention(now)
	require.True(t, ok)
	require.InDelta(t, CaptureRetention.Milliseconds(), remaining.Milliseconds(), 1)

	remaining, ok = f.RemainingRetention(now.Add(CaptureRetention + time.Hour))
	require.True(t, ok)
	require.Zero(t, remaining)
}

func TestFileRecordWithoutExpiryNeverExpires(t *testing.T) {
	f := FileRecord{}
	require.False(t, f.Expired(time.Now().Add(100 * 365 * 24 * time.Hour)))
	_, ok := f.RemainingRetention(time.Now())
	require.False(t, ok)
}

func TestMatchesCaseInsensitiveSubstring(t *testing.T) {
	e := &Event{
		Title:   "Grocery Receipt",
		Summary: "Weekly shopping run",
		Tags:    []string{"Finance", "Food"},
	}

	require.True(t, e.Matches("grocery"))
	require.True(t, e.Matches("SHOPPING"))
	require.True(t, e.Matches("finan"))
	require.True(t, e.Matches("ood"))
	require.False(t, e.Matches("travel"))
	require.False(t, e.Matches(""))
}

func TestEventTypeValid(t *testing.T) {
	require.True(t, EventTypeReceipt.Valid())
	require.True(t, EventTypeOther.Valid())
	require.False(t, EventType("invoice").Valid())
	require.False(t, EventType("").Valid())
}
