package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorMessage(t *testing.T) {
	assert.Equal(t, "not_found", (&Error{Code: CodeNotFound}).Error())
	assert.Equal(t, "citation not found", (&Error{Code: CodeNotFound, Message: "citation not found"}).Error())
	assert.Equal(t, "doi: invalid DOI", ForField(CodeFormat, "doi", "invalid DOI").Error())
}

func TestIsMatchesByCode(t *testing.T) {
	err := fmt.Errorf("update: %w", New(CodeNotFound, "project not found"))
	assert.True(t, errors.Is(err, New(CodeNotFound, "")))
	assert.False(t, errors.Is(err, New(CodeConflict, "")))
}

func TestWrapKeepsOriginalCode(t *testing.T) {
	inner := ForField(CodeMissingField, "publisher", "required")
	wrapped := Wrap(inner, CodeInternal, "create failed")

	assert.True(t, HasCode(wrapped, CodeMissingField))
	assert.Equal(t, "publisher", FieldOf(wrapped))

	plain := Wrap(errors.New("disk full"), CodeInternal, "create failed")
	assert.Equal(t, CodeInternal, CodeOf(plain))
	assert.Equal(t, CodeInternal, CodeOf(errors.New("boom")))
}

func TestDuplicateCarriesExistingID(t *testing.T) {
	err := fmt.Errorf("create: %w", Duplicate(42))

	require.True(t, HasCode(err, CodeDuplicateCitation))
	id, ok := ExistingID(err)
	require.True(t, ok)
	assert.Equal(t, uint(42), id)

	_, ok = ExistingID(New(CodeNotFound, "x"))
	assert.False(t, ok)
}
