package validator_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oncallkit/notifydesk/pkg/validator"
)

func TestValidationErrors_Translate(t *testing.T) {
	t.Parallel()

	translate := func(key string, values map[string]any) string {
		tmpl := map[string]string{
			"validation.required":   "The {{field}} field is required.",
			"validation.max_length": "The {{field}} must be at most {{max}} characters long.",
		}[key]
		if tmpl == "" {
			return key
		}
		for k, v := range values {
			tmpl = strings.ReplaceAll(tmpl, "{{"+k+"}}", fmt.Sprint(v))
		}
		return tmpl
	}

	t.Run("translates messages in place", func(t *testing.T) {
		t.Parallel()

		err := validator.Apply(
			validator.RequiredString("name", ""),
			validator.MaxLenString("value", "abcdef", 3),
		)
		errs := validator.ExtractValidationErrors(err)
		require.Len(t, errs, 2)

		errs.Translate(translate)

		assert.Equal(t, "The name field is required.", errs[0].Message)
		assert.Equal(t, "The value must be at most 3 characters long.", errs[1].Message)
		assert.Equal(t, "name", errs[0].Field)
	})

	t.Run("nil fn is a no-op", func(t *testing.T) {
		t.Parallel()

		errs := validator.ValidationErrors{{Field: "name", Message: "is required", TranslationKey: "validation.required"}}
		errs.Translate(nil)
		assert.Equal(t, "is required", errs[0].Message)
	})

	t.Run("skips errors without a key", func(t *testing.T) {
		t.Parallel()

		errs := validator.ValidationErrors{{Field: "value", Message: "already in use"}}
		errs.Translate(translate)
		assert.Equal(t, "already in use", errs[0].Message)
	})
}
