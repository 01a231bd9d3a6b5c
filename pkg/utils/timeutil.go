package utils

import (
	"time"
)

// WIB is Western Indonesian Time (UTC+7), the IDX exchange timezone.
var WIB *time.Location

func init() {
	var err error
	WIB, err = time.LoadLocation("Asia/Jakarta")
	if err != nil {
		// Fallback: fixed zone if the tz database is not available.
		WIB = time.FixedZone("WIB", 7*60*60)
	}
}

// NowWIB returns the current time in WIB.
func NowWIB() time.Time {
	return time.Now().In(WIB)
}

// DateStamp formats a time as the "YYYY-MM-DD" date string used for
// listing and delisting dates.
func DateStamp(t time.Time) string {
	return t.In(WIB).Format("2006-01-02")
}

// UpdatedOnStamp formats a time as the GMT "YYYY-MM-DD HH:MM:SS" string
// stored in the updated_on column.
func UpdatedOnStamp(t time.Time) string {
	return t.UTC().Format("2006-01-02 15:04:05")
}

// FileStamp formats a time for snapshot file names: "YYYYMMDD_HHMMSS".
func FileStamp(t time.Time) string {
	return t.In(WIB).Format("20060102_150405")
}
