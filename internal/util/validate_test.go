package util

import "testing"

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		email string
		ok    bool
	}{
		{"ops@example.com", true},
		{"first.last+noc@corp.example.org", true},
		{"", false},
		{"not-an-email", false},
		{"ops@localhost", false},
		{"Ops <ops@example.com>", false},
	}
	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			err := ValidateEmail(tt.email)
			if tt.ok && err != nil {
				t.Errorf("expected %q to be valid, got %v", tt.email, err)
			}
			if !tt.ok && err == nil {
				t.Errorf("expected %q to be invalid", tt.email)
			}
		})
	}
}
