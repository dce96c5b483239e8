package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncode(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"Simple", "abc", "222"},
		{"Full_Keypad", "adgjmptw", "23456789"},
		{"Four_Letter_Keys", "pqrswxyz", "77779999"},
		{"Mixed_Case", "John", "5646"},
		{"Spaces_Dropped", "Ann Lee", "266533"},
		{"Digits_Dropped", "R2D2", "73"},
		{"Punctuation_Dropped", "O'Brien-Smith", "62743676484"},
		{"Accents_Dropped", "Zoé", "96"},
		{"Empty", "", ""},
		{"No_Letters", "123 !?", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Encode(tt.in))
		})
	}
}

func TestMatches(t *testing.T) {
	tests := []struct {
		name    string
		contact string
		digits  string
		want    bool
	}{
		{"Prefix", "John", "56", true},
		{"Infix", "John", "64", true},
		{"Across_Words", "Ann Lee", "65", true},
		{"Full", "John", "5646", true},
		{"No_Match", "John", "99", false},
		{"Longer_Than_Name", "Jo", "567", false},
		{"Non_Digit_Input", "John", "5*", false},
		{"Empty_Input", "John", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Matches(tt.contact, tt.digits))
		})
	}
}
