package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidatePincode(t *testing.T) {
	tests := []struct {
		name    string
		pincode string
		wantErr bool
	}{
		{"valid", "400001", false},
		{"leading zero", "040001", true},
		{"too short", "40001", true},
		{"too long", "4000011", true},
		{"letters", "40A001", true},
		{"empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePincode(tt.pincode)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"400001", "400002", "400003"}, SplitList(" 400001, 400002;400003 "))
	assert.Nil(t, SplitList("   "))
}

func TestSanitizeString(t *testing.T) {
	assert.Equal(t, "abc", SanitizeString("a\x00b\x1fc"))
}
