package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHighlightSpans(t *testing.T) {
	tests := []struct {
		name      string
		contact   Contact
		query     string
		wantName  *Span
		wantPhone *Span
	}{
		{
			name:     "Name_Prefix",
			contact:  Contact{Name: "John Smith", PhoneNumber: "555-1234"},
			query:    "56",
			wantName: &Span{Start: 0, End: 2},
		},
		{
			name:      "Phone_Only",
			contact:   Contact{Name: "John Smith", PhoneNumber: "555-1234"},
			query:     "55",
			wantPhone: &Span{Start: 0, End: 2},
		},
		{
			name:      "Both",
			contact:   Contact{Name: "Ann", PhoneNumber: "0266"},
			query:     "266",
			wantName:  &Span{Start: 0, End: 3},
			wantPhone: &Span{Start: 1, End: 4},
		},
		{
			// The span covers the space between the matched letters.
			name:     "Across_Words",
			contact:  Contact{Name: "Ann Lee", PhoneNumber: "000"},
			query:    "65",
			wantName: &Span{Start: 2, End: 5},
		},
		{
			name:     "Skips_Dropped_Runes",
			contact:  Contact{Name: "Zoé Ann", PhoneNumber: "000"},
			query:    "26",
			wantName: &Span{Start: 4, End: 6},
		},
		{
			name:      "Phone_Rune_Offsets",
			contact:   Contact{Name: "X", PhoneNumber: "☎ 123"},
			query:     "12",
			wantPhone: &Span{Start: 2, End: 4},
		},
		{
			name:    "Empty_Query",
			contact: Contact{Name: "John", PhoneNumber: "123"},
			query:   "",
		},
		{
			name:    "No_Match",
			contact: Contact{Name: "John", PhoneNumber: "123"},
			query:   "99",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := HighlightSpans(tt.contact, tt.query)
			assert.Equal(t, tt.wantName, h.Name, "name span")
			assert.Equal(t, tt.wantPhone, h.Phone, "phone span")
		})
	}
}

// Every name span must decode back to exactly the queried digits.
func TestHighlightSpans_NameRoundTrip(t *testing.T) {
	names := []string{"John Smith", "O'Brien", "Zoé Ann", "Mary-Jane Watson", "Ann Lee"}
	for _, name := range names {
		enc := Encode(name)
		for i := 0; i < len(enc); i++ {
			for j := i + 1; j <= len(enc); j++ {
				digits := enc[i:j]
				span := nameSpan(name, digits)
				if !assert.NotNil(t, span, "%s / %s", name, digits) {
					continue
				}
				covered := string([]rune(name)[span.Start:span.End])
				assert.Contains(t, Encode(covered), digits, "%s / %s", name, digits)
			}
		}
	}
}
