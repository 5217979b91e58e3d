package providers

import (
	"strconv"
	"strings"
)

// parseISO8601Duration converts durations such as "PT1H2M3S" or "P1DT30S"
// into whole seconds. Year and month designators are rejected.
func parseISO8601Duration(s string) (int, bool) {
	if !strings.HasPrefix(s, "P") || len(s) < 3 {
		return 0, false
	}

	total := 0
	inTime := false
	num := ""
	for _, r := range s[1:] {
		switch {
		case r >= '0' && r <= '9':
			num += string(r)
		case r == 'T':
			if inTime || num != "" {
				return 0, false
			}
			inTime = true
		default:
			if num == "" {
				return 0, false
			}
			n, err := strconv.Atoi(num)
			if err != nil {
				return 0, false
			}
			num = ""

			switch {
			case !inTime && r == 'W':
				total += n * 7 * 86400
			case !inTime && r == 'D':
				total += n * 86400
			case inTime && r == 'H':
				total += n * 3600
			case inTime && r == 'M':
				total += n * 60
			case inTime && r == 'S':
				total += n
			default:
				return 0, false
			}
		}
	}
	if num != "" {
		return 0, false
	}
	return total, true
}
