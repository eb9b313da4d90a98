package sanitizer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oncallkit/notifydesk/pkg/sanitizer"
)

func TestStripHTML(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "strips script injection", input: `Phone<script>alert('xss')</script>`, expected: "Phone"},
		{name: "strips nested tags", input: `<b>Work <i>cell</i></b>`, expected: "Work cell"},
		{name: "keeps ampersands readable", input: "Home & away", expected: "Home & away"},
		{name: "handles plain text", input: "Pager", expected: "Pager"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, sanitizer.StripHTML(tt.input))
		})
	}
}

func TestSanitizeHTML(t *testing.T) {
	t.Parallel()

	out := sanitizer.SanitizeHTML(`<p onclick="x()">Hi <strong>there</strong></p><script>1</script>`)
	assert.Equal(t, "<p>Hi <strong>there</strong></p>", out)
}

func TestSanitizeStruct(t *testing.T) {
	t.Parallel()

	t.Run("applies tags in order", func(t *testing.T) {
		t.Parallel()

		v := struct {
			Name  string `sanitize:"strip,spaces,trim"`
			Value string `sanitize:"trim,lower"`
			Other string
		}{
			Name:  "  <em>Work</em>   phone ",
			Value: "  Ops@Example.COM ",
			Other: "  untouched ",
		}

		require.NoError(t, sanitizer.SanitizeStruct(&v))
		assert.Equal(t, "Work phone", v.Name)
		assert.Equal(t, "ops@example.com", v.Value)
		assert.Equal(t, "  untouched ", v.Other)
	})

	t.Run("rejects unknown tags", func(t *testing.T) {
		t.Parallel()

		v := struct {
			Name string `sanitize:"shout"`
		}{Name: "x"}
		require.ErrorIs(t, sanitizer.SanitizeStruct(&v), sanitizer.ErrUnknownTag)
	})

	t.Run("ignores non-pointers", func(t *testing.T) {
		t.Parallel()

		require.NoError(t, sanitizer.SanitizeStruct(struct{ Name string }{}))
	})
}
