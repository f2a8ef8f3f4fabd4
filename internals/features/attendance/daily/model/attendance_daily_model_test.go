package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	punchmodel "hadirku_backend/internals/features/attendance/punchlog/model"
)

func at(h, m int) time.Time {
	return time.Date(2026, 3, 2, h, m, 0, 0, time.UTC)
}

func TestApplyPunchFirstInWins(t *testing.T) {
	var day AttendanceDailyModel

	res := day.ApplyPunch(punchmodel.PunchIn, at(9, 0), "ZK-001", nil)
	assert.Equal(t, MergeApplied, res)
	require.NotNil(t, day.PunchInTime)
	assert.Equal(t, at(9, 0), *day.PunchInTime)

	// IN kedua diabaikan, jam masuk tidak bergeser
	res = day.ApplyPunch(punchmodel.PunchIn, at(9, 5), "ZK-001", nil)
	assert.Equal(t, MergeIgnored, res)
	assert.Equal(t, at(9, 0), *day.PunchInTime)
}

func TestApplyPunchLastOutWins(t *testing.T) {
	var day AttendanceDailyModel

	day.ApplyPunch(punchmodel.PunchOut, at(18, 0), "ZK-001", nil)
	require.NotNil(t, day.PunchOutTime)
	assert.Equal(t, at(18, 0), *day.PunchOutTime)

	// scan OUT ulang menimpa yang lama
	res := day.ApplyPunch(punchmodel.PunchOut, at(18, 10), "ZK-001", nil)
	assert.Equal(t, MergeApplied, res)
	assert.Equal(t, at(18, 10), *day.PunchOutTime)
}

func TestApplyPunchUnknownBehavesAsOut(t *testing.T) {
	var day AttendanceDailyModel

	res := day.ApplyPunch(punchmodel.PunchUnknown, at(17, 45), "ZK-001", nil)
	assert.Equal(t, MergeApplied, res)
	require.NotNil(t, day.PunchOutTime)
	assert.Equal(t, at(17, 45), *day.PunchOutTime)
	assert.Nil(t, day.PunchInTime)
}

func TestApplyPunchStampsBiometricSource(t *testing.T) {
	var day AttendanceDailyModel
	day.ApplyPunch(punchmodel.PunchIn, at(9, 0), "ZK-007", []byte(`{"f":1}`))

	assert.Equal(t, SourceBiometric, day.Source)
	assert.Equal(t, "ZK-007", day.DeviceSerial)
	assert.NotEmpty(t, day.RawPayload)
}

func TestRecomputeDurations(t *testing.T) {
	var day AttendanceDailyModel
	day.ApplyPunch(punchmodel.PunchIn, at(9, 0), "ZK-001", nil)
	day.ApplyPunch(punchmodel.PunchOut, at(17, 30), "ZK-001", nil)

	day.RecomputeDurations(time.Hour)
	assert.Equal(t, StatusPresent, day.Status)
	assert.Equal(t, "7h 30m", day.WorkingHours)
	assert.Equal(t, "1h 0m", day.BreakDuration)
}

func TestRecomputeDurationsClampsNegative(t *testing.T) {
	var day AttendanceDailyModel
	// anomali: OUT sebelum IN
	day.ApplyPunch(punchmodel.PunchIn, at(18, 0), "ZK-001", nil)
	day.ApplyPunch(punchmodel.PunchOut, at(9, 0), "ZK-001", nil)

	day.RecomputeDurations(time.Hour)
	assert.Equal(t, "0h 0m", day.WorkingHours)
	assert.Equal(t, "0h 0m", day.BreakDuration)
}

func TestRecomputeDurationsPartialDay(t *testing.T) {
	var day AttendanceDailyModel
	day.ApplyPunch(punchmodel.PunchIn, at(9, 0), "ZK-001", nil)

	day.RecomputeDurations(time.Hour)
	assert.Equal(t, StatusPartial, day.Status)
	assert.Equal(t, "0h 0m", day.WorkingHours)
}
