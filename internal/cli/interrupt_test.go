package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInterruptHandler(t *testing.T) {
	tests := []struct {
		pending  func() bool
		name     string
		wantSave bool
	}{
		{name: "nothing pending", pending: func() bool { return false }},
		{name: "no tracker", pending: nil},
		{name: "unsaved edits", pending: func() bool { return true }, wantSave: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			h := NewInterruptHandler(&out, tt.pending)
			ctx := h.HandleInterrupts(context.Background())
			assert.False(t, h.WasInterrupted())

			h.Interrupt()
			h.Interrupt()

			<-ctx.Done()
			assert.True(t, h.WasInterrupted())
			assert.Equal(t, 1, bytes.Count(out.Bytes(), []byte("Interrupted!")))
			assert.Equal(t, tt.wantSave, bytes.Contains(out.Bytes(), []byte("lifesheet save")))
		})
	}
}
