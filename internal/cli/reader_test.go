package cli

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLineReader_ReadLine(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "plain", input: "asha\n", want: "asha"},
		{name: "trims whitespace", input: "  asha  \n", want: "asha"},
		{name: "empty line", input: "\n", want: ""},
		{name: "no trailing newline", input: "asha", want: "asha"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewLineReader(strings.NewReader(tt.input)).ReadLine(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLineReader_EOF(t *testing.T) {
	_, err := NewLineReader(strings.NewReader("")).ReadLine(context.Background())
	assert.ErrorIs(t, err, io.EOF)
}

func TestLineReader_Cancelled(t *testing.T) {
	pr, pw := io.Pipe()
	defer func() { _ = pw.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := NewLineReader(pr).ReadLine(ctx)
	assert.ErrorIs(t, err, ErrInputCancelled)
}

func TestPrompter(t *testing.T) {
	ctx := context.Background()

	t.Run("ask uses default on empty answer", func(t *testing.T) {
		var out bytes.Buffer
		got, err := NewPrompter(strings.NewReader("\n"), &out).Ask(ctx, "API URL", "http://localhost:5001/api")
		require.NoError(t, err)
		assert.Equal(t, "http://localhost:5001/api", got)
		assert.Contains(t, out.String(), "API URL [http://localhost:5001/api]")
	})

	t.Run("required repeats until answered", func(t *testing.T) {
		var out bytes.Buffer
		got, err := NewPrompter(strings.NewReader("\n\nasha\n"), &out).Required(ctx, "Username")
		require.NoError(t, err)
		assert.Equal(t, "asha", got)
		assert.Equal(t, 2, strings.Count(out.String(), "A value is required."))
	})

	t.Run("confirm", func(t *testing.T) {
		for input, want := range map[string]bool{"y\n": true, "YES\n": true, "n\n": false, "\n": false, "maybe\n": false} {
			got, err := NewPrompter(strings.NewReader(input), io.Discard).Confirm(ctx, "Delete?")
			require.NoError(t, err)
			assert.Equal(t, want, got, "input %q", input)
		}
	})
}
