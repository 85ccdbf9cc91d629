package render

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

var arabicIndic = strings.NewReplacer(
	"0", "٠", "1", "١", "2", "٢", "3", "٣", "4", "٤",
	"5", "٥", "6", "٦", "7", "٧", "8", "٨", "9", "٩",
)

// ArabicDigits replaces ASCII digits with Arabic-Indic ones
func ArabicDigits(s string) string {
	return arabicIndic.Replace(s)
}

// FormatDate renders d/m/yyyy without zero padding
func FormatDate(t time.Time) string {
	return ArabicDigits(strconv.Itoa(t.Day()) + "/" + strconv.Itoa(int(t.Month())) + "/" + strconv.Itoa(t.Year()))
}

// FormatTime renders h:mm:ss on a 12-hour clock followed by ص or م
func FormatTime(t time.Time) string {
	h := t.Hour() % 12
	if h == 0 {
		h = 12
	}
	suffix := "ص"
	if t.Hour() >= 12 {
		suffix = "م"
	}
	return ArabicDigits(fmt.Sprintf("%d:%02d:%02d", h, t.Minute(), t.Second())) + " " + suffix
}
