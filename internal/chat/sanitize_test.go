package chat_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/clinicavet/vet-scheduler/internal/chat"
)

func TestSanitizeBody(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain text", "hello", "hello"},
		{"trims whitespace", "  hola  ", "hola"},
		{"script block removed wholesale", "<script>alert(1)</script>hello", "hello"},
		{"script with attributes", `<script type="text/javascript">steal()</script>ok`, "ok"},
		{"multiline script", "<script>\nalert(1)\n</script>safe", "safe"},
		{"remaining tags stripped", "<b>bold</b> and <i>italic</i>", "bold and italic"},
		{"tags only becomes empty", "<div><br/></div>", ""},
		{"unclosed script loses tags only", "<script>alert(1)", "alert(1)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, chat.SanitizeBody(tt.input))
		})
	}
}

func TestSanitizeBodyKeepsLongText(t *testing.T) {
	long := strings.Repeat("a", 1500)
	// Length enforcement is the store's job; sanitization must not hide an
	// over-long body by truncating it.
	assert.Len(t, chat.SanitizeBody(long), 1500)
}
