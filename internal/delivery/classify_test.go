package delivery

import "testing"

func TestCooldownSeconds(t *testing.T) {
	tests := []struct {
		name     string
		message  string
		wantSecs int
		wantOK   bool
	}{
		{
			name:     "one second",
			message:  "you are doing that too much. try again in 1 second.",
			wantSecs: 1,
			wantOK:   true,
		},
		{
			name:     "plural seconds",
			message:  "try again in 2 seconds",
			wantSecs: 2,
			wantOK:   true,
		},
		{
			name:     "minutes convert",
			message:  "try again in 1 minutes",
			wantSecs: 60,
			wantOK:   true,
		},
		{
			name:     "plural minutes",
			message:  "Try again in 3 minutes.",
			wantSecs: 180,
			wantOK:   true,
		},
		{
			name:    "not a throttle",
			message: "RATELIMIT exceeded somewhere else",
			wantOK:  false,
		},
		{
			name:    "empty message",
			message: "",
			wantOK:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			secs, ok := CooldownSeconds(tt.message)
			if ok != tt.wantOK {
				t.Fatalf("CooldownSeconds(%q) ok = %v, want %v", tt.message, ok, tt.wantOK)
			}
			if ok && secs != tt.wantSecs {
				t.Errorf("CooldownSeconds(%q) = %d, want %d", tt.message, secs, tt.wantSecs)
			}
		})
	}
}

func TestIsPermanentRejection(t *testing.T) {
	tests := []struct {
		message string
		want    bool
	}{
		{"api error USER_DOESNT_EXIST: that user doesn't exist", true},
		{"api error INVALID_USER: invalid user", true},
		{"api error NOT_WHITELISTED_BY_USER_MESSAGE: user only accepts trusted senders", true},
		{"api error not_whitelisted_by_user_message: lowercase still matches", true},
		{"try again in 2 seconds", false},
		{"connection refused", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := IsPermanentRejection(tt.message); got != tt.want {
			t.Errorf("IsPermanentRejection(%q) = %v, want %v", tt.message, got, tt.want)
		}
	}
}
