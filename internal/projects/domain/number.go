package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// YearPrefix returns the "YY-" prefix that numbers created at t start with.
func YearPrefix(t time.Time) string {
	return fmt.Sprintf("%02d-", t.Year()%100)
}

// NextNumber picks the number following the numeric maximum among existing.
// Entries without the prefix or with a non-numeric suffix are ignored.
// "24-999" is followed by "24-1000".
func NextNumber(prefix string, existing []string) string {
	max := 0
	for _, n := range existing {
		if !strings.HasPrefix(n, prefix) {
			continue
		}
		seq, err := strconv.Atoi(strings.TrimPrefix(n, prefix))
		if err != nil || seq < 0 {
			continue
		}
		if seq > max {
			max = seq
		}
	}
	return fmt.Sprintf("%s%03d", prefix, max+1)
}
