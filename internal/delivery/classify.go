package delivery

import (
	"regexp"
	"strconv"
	"strings"
)

// cooldownPattern matches the platform's throttle responses, e.g.
// "you are doing that too much. try again in 5 seconds." or
// "... try again in 2 minutes.".
var cooldownPattern = regexp.MustCompile(`(?i)try again in (\d+) (second|minute)s?`)

// permanentMarkers are the API error codes meaning the target user can
// never be messaged: deleted accounts and users who blocked the sender.
var permanentMarkers = []string{
	"USER_DOESNT_EXIST",
	"INVALID_USER",
	"NOT_WHITELISTED_BY_USER_MESSAGE",
}

// CooldownSeconds extracts the cooldown duration from a throttle error
// message. The second return is false when the message is not a throttle.
func CooldownSeconds(message string) (int, bool) {
	m := cooldownPattern.FindStringSubmatch(message)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	if strings.EqualFold(m[2], "minute") {
		n *= 60
	}
	return n, true
}

// IsPermanentRejection reports whether the error message means the user is
// permanently unreachable.
func IsPermanentRejection(message string) bool {
	upper := strings.ToUpper(message)
	for _, marker := range permanentMarkers {
		if strings.Contains(upper, marker) {
			return true
		}
	}
	return false
}
