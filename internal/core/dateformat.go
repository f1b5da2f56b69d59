package core

import "strings"

// NoDate is returned by FormatDate when the month part is not recognised.
const NoDate = "No Date"

var monthNames = [12]string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

// FormatDate turns a "YYYY-MM" key into "<MonthName> <Year>". The month must be
// one of "01".."12"; anything else, malformed keys included, yields NoDate.
func FormatDate(key string) string {
	parts := strings.Split(key, "-")
	if len(parts) < 2 {
		return NoDate
	}
	year, month := parts[0], parts[1]
	n, ok := monthNumber(month)
	if !ok {
		return NoDate
	}
	return monthNames[n-1] + " " + year
}

func monthNumber(s string) (int, bool) {
	if len(s) != 2 || s[0] < '0' || s[0] > '1' || s[1] < '0' || s[1] > '9' {
		return 0, false
	}
	n := int(s[0]-'0')*10 + int(s[1]-'0')
	if n < 1 || n > 12 {
		return 0, false
	}
	return n, true
}
