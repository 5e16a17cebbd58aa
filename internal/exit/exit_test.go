package exit

import (
	"bytes"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResults(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		result *Result
		code   int
		output *os.File
	}{
		{name: "matched", result: Matched(), code: 0, output: os.Stdout},
		{name: "no_match", result: NoMatch(), code: 1, output: os.Stdout},
		{name: "success", result: Success("ok"), code: 0, output: os.Stdout},
		{name: "error", result: Error("boom"), code: 2, output: os.Stderr},
		{name: "errorf", result: Errorf("bad %d", 3), code: 2, output: os.Stderr},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.code, tt.result.ExitCode)
			assert.Equal(t, tt.output, tt.result.Output)
		})
	}
}

func TestPrint(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	r := Errorf("Error: %s\n", "bad selector")
	r.Output = &buf
	r.Print()
	assert.Equal(t, "Error: bad selector\n", buf.String())

	buf.Reset()
	r = NoMatch()
	r.Output = &buf
	r.Print()
	assert.Empty(t, buf.String())
}

func TestFromError(t *testing.T) {
	t.Parallel()

	assert.Nil(t, FromError(nil))

	r := FromError(errors.New("broken"))
	require.NotNil(t, r)
	assert.Equal(t, CodeError, r.ExitCode)
	assert.Equal(t, "Error: broken\n", r.Message)
}
