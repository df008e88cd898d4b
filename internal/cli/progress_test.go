package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSaveProgress(t *testing.T) {
	var out bytes.Buffer
	p := NewSaveProgress(&out)
	assert.False(t, p.Done())

	for i := 1; i <= 4; i++ {
		p.Update(i, 4)
	}

	assert.True(t, p.Done())
	assert.Contains(t, out.String(), "Saving records")
	assert.Contains(t, out.String(), "4/4")
}
