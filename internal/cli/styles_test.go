package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStyleSigned(t *testing.T) {
	assert.Equal(t, ErrorStyle.Render("-5"), StyleSigned(-5, "-5"))
	assert.Equal(t, SuccessStyle.Render("5"), StyleSigned(5, "5"))
	assert.Equal(t, SuccessStyle.Render("0"), StyleSigned(0, "0"))
}

func TestFormatMessages(t *testing.T) {
	assert.Contains(t, FormatSuccess("saved"), SuccessIcon+" saved")
	assert.Contains(t, FormatError("failed"), ErrorIcon+" failed")
	assert.Contains(t, FormatWarning("careful"), WarningIcon+" careful")
}
