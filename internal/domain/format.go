package domain

import (
	"strconv"
	"time"
)

// DisplayDateLayout renders dates the way the table shows them, e.g. "Mar 4, 2025".
const DisplayDateLayout = "Jan 2, 2006"

func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(DisplayDateLayout)
}

// FormatCoord renders a latitude or longitude with four decimals.
func FormatCoord(f float64) string {
	return strconv.FormatFloat(f, 'f', 4, 64)
}
