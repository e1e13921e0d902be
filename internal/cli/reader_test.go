package cli

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLineReader_ReadLine(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr error
	}{
		{name: "successful read", input: "c\n", want: "c"},
		{name: "extra whitespace", input: "  b  \n", want: "b"},
		{name: "empty line", input: "\n", want: ""},
		{name: "final line without newline", input: "q", want: "q"},
		{name: "end of input", input: "", wantErr: io.EOF},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewLineReader(strings.NewReader(tt.input))
			got, err := r.ReadLine(context.Background())
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLineReader_Cancelled(t *testing.T) {
	pr, pw := io.Pipe()
	defer func() { _ = pw.Close() }()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := NewLineReader(pr)
	_, err := r.ReadLine(ctx)
	assert.ErrorIs(t, err, ErrInputCancelled)
}

func TestLineReader_SequentialAndExhausted(t *testing.T) {
	r := NewLineReader(strings.NewReader("c\nn\n"))
	ctx := context.Background()

	first, err := r.ReadLine(ctx)
	require.NoError(t, err)
	second, err := r.ReadLine(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "n"}, []string{first, second})

	_, err = r.ReadLine(ctx)
	assert.ErrorIs(t, err, io.EOF)
	_, err = r.ReadLine(ctx)
	assert.ErrorIs(t, err, io.EOF)
}
