package scheduling

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imedbrahmi/hospital_backend/internal/repo"
)

func monday(start, end string, d int) *repo.Schedule {
	return &repo.Schedule{DayOfWeek: "Monday", StartTime: start, EndTime: end, SlotDuration: d, IsAvailable: true}
}

func times(slots []Slot) []string {
	out := make([]string, 0, len(slots))
	for _, s := range slots {
		out = append(out, s.Time)
	}
	return out
}

func TestDayOfWeek(t *testing.T) {
	day, err := DayOfWeek("2025-01-06")
	require.NoError(t, err)
	assert.Equal(t, "Monday", day)

	for _, bad := range []string{"", "06/01/2025", "2025-13-01", "tomorrow"} {
		_, err := DayOfWeek(bad)
		assert.ErrorIs(t, err, ErrInvalidDate, bad)
	}
}

func TestFreeSlotsFullWindow(t *testing.T) {
	slots := FreeSlots("2025-01-06", monday("09:00", "10:00", 30), nil)
	require.Len(t, slots, 2)
	assert.Equal(t, Slot{Time: "09:00", DateTime: "2025-01-06 09:00", Duration: 30}, slots[0])
	assert.Equal(t, Slot{Time: "09:30", DateTime: "2025-01-06 09:30", Duration: 30}, slots[1])
}

func TestFreeSlotsSkipsBooked(t *testing.T) {
	slots := FreeSlots("2025-01-06", monday("09:00", "10:00", 30), []string{"09:00"})
	assert.Equal(t, []string{"09:30"}, times(slots))
}

func TestFreeSlotsUnavailable(t *testing.T) {
	s := monday("09:00", "17:00", 30)
	s.IsAvailable = false
	assert.Empty(t, FreeSlots("2025-01-06", s, nil))
	assert.Empty(t, FreeSlots("2025-01-06", nil, nil))
	assert.NotNil(t, FreeSlots("2025-01-06", nil, nil))
}

func TestCandidatesCountIsFloor(t *testing.T) {
	cases := []struct {
		start, end string
		d          int
	}{
		{"09:00", "10:00", 30},
		{"09:00", "10:00", 45},
		{"08:15", "12:40", 15},
		{"13:00", "13:10", 15},
		{"00:00", "23:59", 120},
		{"09:00", "17:00", 25},
	}
	for _, tc := range cases {
		t.Run(tc.start+"-"+tc.end, func(t *testing.T) {
			s, _ := minutes(tc.start)
			e, _ := minutes(tc.end)
			got := Candidates(tc.start, tc.end, tc.d)
			assert.Len(t, got, (e-s)/tc.d)
			for _, c := range got {
				m, err := minutes(c)
				require.NoError(t, err)
				assert.LessOrEqual(t, m+tc.d, e)
			}
		})
	}
}

func TestCandidatesRejectsBadWindow(t *testing.T) {
	assert.Empty(t, Candidates("10:00", "09:00", 30))
	assert.Empty(t, Candidates("9am", "10:00", 30))
	assert.Empty(t, Candidates("09:00", "10:00", 0))
}
