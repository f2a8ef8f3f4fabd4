package listener

import (
	"errors"
	"strconv"
	"strings"
	"time"

	punchmodel "hadirku_backend/internals/features/attendance/punchlog/model"
)

var (
	ErrMalformedFrame = errors.New("frame push tidak valid")
	ErrBadHandshake   = errors.New("handshake terminal tidak valid")
)

// Frame — satu punch hasil decode dari push terminal.
type Frame struct {
	DeviceUserID int
	PunchTime    time.Time
	State        punchmodel.PunchState
	Verify       punchmodel.VerifyMethod
	Raw          string
}

// ParseHandshake baris pertama koneksi: "REG <serial>".
func ParseHandshake(line string) (string, error) {
	fields := strings.Fields(strings.TrimSpace(line))
	if len(fields) != 2 || !strings.EqualFold(fields[0], "REG") {
		return "", ErrBadHandshake
	}
	return fields[1], nil
}

// ParseFrame decode satu baris push:
//
//	<deviceUserId> <timestamp> <punchState> [<verifyMethod>]
//
// Delimiter tab atau spasi; timestamp unix detik atau "2006-01-02 15:04:05"
// (wall-clock mesin, presisi detik). Firmware tidak bisa dipercaya: salah tipe
// field = frame di-drop, bukan crash.
func ParseFrame(line string, loc *time.Location) (Frame, error) {
	raw := strings.TrimRight(line, "\r\n")
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Frame{}, ErrMalformedFrame
	}

	var fields []string
	if strings.Contains(trimmed, "\t") {
		for _, f := range strings.Split(trimmed, "\t") {
			if f = strings.TrimSpace(f); f != "" {
				fields = append(fields, f)
			}
		}
	} else {
		fields = strings.Fields(trimmed)
		// format "tanggal jam" tanpa tab pecah jadi dua token — gabung lagi
		if len(fields) >= 3 && looksLikeDate(fields[1]) && looksLikeClock(fields[2]) {
			merged := append([]string{fields[0], fields[1] + " " + fields[2]}, fields[3:]...)
			fields = merged
		}
	}

	if len(fields) < 3 {
		return Frame{}, ErrMalformedFrame
	}

	deviceUserID, err := strconv.Atoi(fields[0])
	if err != nil || deviceUserID <= 0 {
		return Frame{}, ErrMalformedFrame
	}

	punchAt, err := parseTimestamp(fields[1], loc)
	if err != nil {
		return Frame{}, ErrMalformedFrame
	}

	f := Frame{
		DeviceUserID: deviceUserID,
		PunchTime:    punchAt,
		State:        punchmodel.ParsePunchState(fields[2]),
		Verify:       punchmodel.VerifyFingerprint,
		Raw:          trimmed,
	}
	if len(fields) >= 4 {
		f.Verify = punchmodel.ParseVerifyMethod(fields[3])
	}
	return f, nil
}

func parseTimestamp(raw string, loc *time.Location) (time.Time, error) {
	if secs, err := strconv.ParseInt(raw, 10, 64); err == nil {
		if secs <= 0 {
			return time.Time{}, ErrMalformedFrame
		}
		return time.Unix(secs, 0).In(loc), nil
	}
	return time.ParseInLocation("2006-01-02 15:04:05", raw, loc)
}

func looksLikeDate(s string) bool {
	return len(s) == 10 && s[4] == '-' && s[7] == '-'
}

func looksLikeClock(s string) bool {
	return len(s) == 8 && s[2] == ':' && s[5] == ':'
}
