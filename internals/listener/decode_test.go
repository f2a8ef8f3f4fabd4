package listener

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	punchmodel "hadirku_backend/internals/features/attendance/punchlog/model"
)

func TestParseHandshake(t *testing.T) {
	serial, err := ParseHandshake("REG ZK-001\r\n")
	require.NoError(t, err)
	assert.Equal(t, "ZK-001", serial)

	serial, err = ParseHandshake("reg FACE-77")
	require.NoError(t, err)
	assert.Equal(t, "FACE-77", serial)

	for _, bad := range []string{"", "REG", "HELLO ZK-001", "REG ZK-001 extra"} {
		_, err := ParseHandshake(bad)
		assert.ErrorIs(t, err, ErrBadHandshake, "input: %q", bad)
	}
}

func TestParseFrameTabDelimited(t *testing.T) {
	f, err := ParseFrame("7\t2026-03-02 09:00:00\t0\t1\n", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, 7, f.DeviceUserID)
	assert.Equal(t, time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC), f.PunchTime)
	assert.Equal(t, punchmodel.PunchIn, f.State)
	assert.Equal(t, punchmodel.VerifyFingerprint, f.Verify)
}

func TestParseFrameSpaceDelimited(t *testing.T) {
	// timestamp "tanggal jam" pecah jadi dua token tanpa tab
	f, err := ParseFrame("12 2026-03-02 17:30:05 OUT FACE", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, 12, f.DeviceUserID)
	assert.Equal(t, time.Date(2026, 3, 2, 17, 30, 5, 0, time.UTC), f.PunchTime)
	assert.Equal(t, punchmodel.PunchOut, f.State)
	assert.Equal(t, punchmodel.VerifyFace, f.Verify)
}

func TestParseFrameUnixTimestamp(t *testing.T) {
	f, err := ParseFrame("3 1772409600 1", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Unix(1772409600, 0).In(time.UTC), f.PunchTime)
	assert.Equal(t, punchmodel.PunchOut, f.State)
	// verify method opsional → default fingerprint
	assert.Equal(t, punchmodel.VerifyFingerprint, f.Verify)
}

func TestParseFrameUnknownStateKept(t *testing.T) {
	// kode state asing bukan decode failure — jatuh ke UNKNOWN
	f, err := ParseFrame("3\t1772409600\t9", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, punchmodel.PunchUnknown, f.State)
}

func TestParseFrameMalformed(t *testing.T) {
	cases := []string{
		"",
		"   ",
		"abc\t1772409600\t0",        // user id bukan angka
		"0\t1772409600\t0",          // user id nol
		"-3\t1772409600\t0",         // user id negatif
		"7\tkemarin-sore\t0",        // timestamp rusak
		"7",                         // field kurang
		"7\t2026-13-45 99:00:00\t0", // tanggal mustahil
	}
	for _, line := range cases {
		_, err := ParseFrame(line, time.UTC)
		assert.ErrorIs(t, err, ErrMalformedFrame, "input: %q", line)
	}
}

func TestParseFrameTimezone(t *testing.T) {
	jakarta, err := time.LoadLocation("Asia/Jakarta")
	require.NoError(t, err)

	f, err := ParseFrame("7\t2026-03-02 09:00:00\t0", jakarta)
	require.NoError(t, err)
	assert.Equal(t, jakarta, f.PunchTime.Location())
	assert.Equal(t, 9, f.PunchTime.Hour())
}
