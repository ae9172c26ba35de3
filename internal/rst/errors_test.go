package rst

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/rsttools/internal/foundation/errors"
)

func TestClassifyScanError(t *testing.T) {
	t.Run("malformed markup", func(t *testing.T) {
		_, scanErr := Scan([]string{"Intro", "Què :ref:`caption <object` end"}, "object.rst")
		require.Error(t, scanErr)

		err := ClassifyScanError(scanErr, "guide/index.rst")
		assert.Equal(t, errors.CategoryMarkup, errors.GetCategory(err))
		require.ErrorIs(t, err, scanErr)

		classified, ok := errors.AsClassified(err)
		require.True(t, ok)
		assert.Equal(t, errors.ErrorContext{"file": "guide/index.rst", "line": 2, "column": 19}, classified.Context())
	})

	t.Run("anything else", func(t *testing.T) {
		cause := stderrors.New("boom")
		err := ClassifyScanError(cause, "index.rst")
		assert.Equal(t, errors.CategoryInternal, errors.GetCategory(err))
		require.ErrorIs(t, err, cause)
	})
}

func TestMalformedMarkupError_Message(t *testing.T) {
	err := &MalformedMarkupError{Line: 1, Column: 4, Content: "a <b"}
	assert.Equal(t, `malformed markup on line 2, column 5: unbalanced caption delimiter in "a <b"`, err.Error())
}
