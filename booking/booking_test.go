package booking

import (
	"testing"

	"lares/scheduling"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatus(t *testing.T) {
	t.Parallel()

	for _, v := range []string{"PENDING", "CONFIRMED", "CANCELLED", "COMPLETED", "NO_SHOW"} {
		got, err := ParseStatus(v)
		require.NoError(t, err)
		assert.Equal(t, Status(v), got)
	}

	_, err := ParseStatus("pending")
	assert.ErrorIs(t, err, ErrUnknownStatus)
	_, err = ParseStatus("DONE")
	assert.ErrorIs(t, err, ErrUnknownStatus)
}

func TestTransitionTable(t *testing.T) {
	t.Parallel()

	allowed := []struct{ from, to Status }{
		{StatusPending, StatusConfirmed},
		{StatusPending, StatusCancelled},
		{StatusConfirmed, StatusCompleted},
		{StatusConfirmed, StatusNoShow},
		{StatusConfirmed, StatusCancelled},
	}
	for _, tt := range allowed {
		assert.True(t, CanTransition(tt.from, tt.to), "%s -> %s", tt.from, tt.to)
		assert.NoError(t, Transition(tt.from, tt.to))
	}

	denied := []struct{ from, to Status }{
		{StatusPending, StatusCompleted},
		{StatusPending, StatusNoShow},
		{StatusCancelled, StatusPending},
		{StatusCancelled, StatusConfirmed},
		{StatusCompleted, StatusConfirmed},
		{StatusNoShow, StatusPending},
		{StatusConfirmed, StatusPending},
	}
	for _, tt := range denied {
		assert.False(t, CanTransition(tt.from, tt.to), "%s -> %s", tt.from, tt.to)
		err := Transition(tt.from, tt.to)
		require.Error(t, err)
		var terr *TransitionError
		require.ErrorAs(t, err, &terr)
		assert.Equal(t, tt.from, terr.From)
		assert.Equal(t, tt.to, terr.To)
	}
}

func TestIsTerminal(t *testing.T) {
	t.Parallel()

	assert.False(t, IsTerminal(StatusPending))
	assert.False(t, IsTerminal(StatusConfirmed))
	assert.True(t, IsTerminal(StatusCancelled))
	assert.True(t, IsTerminal(StatusCompleted))
	assert.True(t, IsTerminal(StatusNoShow))
}

func TestFilterByStatus(t *testing.T) {
	t.Parallel()

	list := []Booking{
		{ID: "1", Status: StatusPending},
		{ID: "2", Status: StatusConfirmed},
		{ID: "3", Status: StatusPending},
		{ID: "4", Status: StatusNoShow},
	}

	for _, s := range []Status{StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted, StatusNoShow} {
		got := FilterByStatus(list, s)
		for _, b := range got {
			assert.Equal(t, s, b.Status)
		}
	}

	pending := FilterByStatus(list, StatusPending)
	require.Len(t, pending, 2)
	assert.Equal(t, "1", pending[0].ID)
	assert.Equal(t, "3", pending[1].ID)

	assert.Empty(t, FilterByStatus(list, StatusCancelled))
	assert.Equal(t, list, FilterByStatus(list, ""), "no filter keeps the full list in order")
}

func TestReplaceByID(t *testing.T) {
	t.Parallel()

	list := []Booking{
		{ID: "1", Status: StatusPending, ClientName: "Ana"},
		{ID: "2", Status: StatusConfirmed, ClientName: "Bruno"},
	}

	out := ReplaceByID(list, Booking{ID: "1", Status: StatusConfirmed, ClientName: "Ana"})

	require.Len(t, out, 2)
	assert.Equal(t, StatusConfirmed, out[0].Status)
	assert.Equal(t, list[1], out[1], "untouched records keep their fields")
	assert.Equal(t, StatusPending, list[0].Status, "input list is not mutated")

	same := ReplaceByID(list, Booking{ID: "404", Status: StatusNoShow})
	assert.Equal(t, list, same, "unknown id changes nothing")
}

func TestWhatsappLink(t *testing.T) {
	t.Parallel()

	link := whatsappLink("+55 (11) 91234-5678", "LR-12345678")
	assert.Contains(t, link, "https://wa.me/5511912345678?text=")
	assert.Contains(t, link, "LR-12345678")

	assert.Empty(t, whatsappLink("no digits here", "LR-1"))
}

func TestWindowAvailable(t *testing.T) {
	t.Parallel()

	slots := []scheduling.AvailabilitySlot{
		{ID: "a", DayOfWeek: 1, StartTime: "09:00", EndTime: "12:00", IsActive: true},
		{ID: "b", DayOfWeek: 1, StartTime: "14:00", EndTime: "18:00", IsActive: false},
	}

	at := func(s, e string) (int, int) {
		start, err := scheduling.ParseClock(s)
		require.NoError(t, err)
		end, err := scheduling.ParseClock(e)
		require.NoError(t, err)
		return start, end
	}

	start, end := at("09:00", "10:00")
	assert.True(t, windowAvailable(slots, 1, start, end))

	start, end = at("11:30", "12:30")
	assert.False(t, windowAvailable(slots, 1, start, end), "window must fit entirely inside the slot")

	start, end = at("15:00", "16:00")
	assert.False(t, windowAvailable(slots, 1, start, end), "inactive slots take no bookings")

	start, end = at("09:00", "10:00")
	assert.False(t, windowAvailable(slots, 2, start, end), "wrong weekday")
}

func TestCodeMatches(t *testing.T) {
	t.Parallel()

	b := Booking{ID: "b1", ConfirmationCode: "LR-00112233"}

	assert.True(t, codeMatches(b, "LR-00112233"))
	assert.False(t, codeMatches(b, "LR-99999999"), "wrong code must not cancel someone else's visit")
	assert.False(t, codeMatches(b, ""))
	assert.False(t, codeMatches(Booking{ID: "b2"}, "LR-00112233"), "booking without a code matches nothing")
}

func TestSignedPayloadRoundTrip(t *testing.T) {
	t.Parallel()

	payload := signedPayload("b123", "LR-00112233")
	id, err := VerifyPayload(payload)
	require.NoError(t, err)
	assert.Equal(t, "b123", id)

	_, err = VerifyPayload("b123|LR-00112233|forged")
	assert.Error(t, err)
	_, err = VerifyPayload("garbage")
	assert.Error(t, err)
}
