package helper

import (
	"fmt"
	"time"
)

// WorkDuration menghitung durasi kerja bersih: (out - in) - istirahat.
// Negatif (clock skew / OUT sebelum IN) di-clamp ke 0 supaya tidak pernah
// menghasilkan durasi minus di laporan.
func WorkDuration(in, out time.Time, lunch time.Duration) time.Duration {
	if in.IsZero() || out.IsZero() {
		return 0
	}
	d := out.Sub(in) - lunch
	if d < 0 {
		return 0
	}
	return d
}

// FormatWorkDuration format durasi jadi "7h 30m" (dipakai kolom working_hours).
func FormatWorkDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	return fmt.Sprintf("%dh %dm", h, m)
}
