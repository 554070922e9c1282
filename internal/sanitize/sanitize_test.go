// internal/sanitize/sanitize_test.go
package sanitize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClean(t *testing.T) {
	tests := []struct {
		name string
		in   interface{}
		want interface{}
	}{
		{
			name: "nil entries removed at top level",
			in:   map[string]interface{}{"a": "x", "b": nil},
			want: map[string]interface{}{"a": "x"},
		},
		{
			name: "nested maps cleaned",
			in: map[string]interface{}{
				"socials": map[string]interface{}{"x": "@co", "tiktok": nil},
			},
			want: map[string]interface{}{
				"socials": map[string]interface{}{"x": "@co"},
			},
		},
		{
			name: "array order preserved and elements cleaned",
			in: []interface{}{
				map[string]interface{}{"firstName": "Dana", "phone": nil},
				map[string]interface{}{"firstName": "Sam"},
			},
			want: []interface{}{
				map[string]interface{}{"firstName": "Dana"},
				map[string]interface{}{"firstName": "Sam"},
			},
		},
		{
			name: "non-nil falsy values kept",
			in:   map[string]interface{}{"empty": "", "zero": 0.0, "no": false},
			want: map[string]interface{}{"empty": "", "zero": 0.0, "no": false},
		},
		{
			name: "scalars pass through",
			in:   "hello",
			want: "hello",
		},
		{
			name: "nil inside arrays kept as element",
			in:   []interface{}{"a", nil, "b"},
			want: []interface{}{"a", nil, "b"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Clean(tt.in))
		})
	}
}
