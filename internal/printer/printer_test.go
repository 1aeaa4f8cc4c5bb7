package printer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/hay-kot/criterio"
	"github.com/stretchr/testify/assert"
)

func TestPrinter_NoColorOffTerminal(t *testing.T) {
	var buf bytes.Buffer
	p := New(&buf)

	p.Successf("saved %d", 3)
	p.Warnf("careful")
	p.Infof("note")

	assert.Equal(t, "✔ saved 3\n• careful\n• note\n", buf.String())
	assert.Equal(t, "✔ ok", p.StatusOK())
	assert.Equal(t, "✘ expired", p.StatusFailed("expired"))
}

func TestPrinter_FatalError(t *testing.T) {
	var buf bytes.Buffer
	New(&buf).FatalError(errors.New("boom"))
	assert.Equal(t, "╭ Error\n│ boom\n╵\n", buf.String())
}

func TestPrinter_ValidationErrors(t *testing.T) {
	var b criterio.FieldErrorsBuilder
	b = b.Append("store.driver", errors.New("unknown driver"))
	err := fmt.Errorf("load config: %w", b.ToError())

	var buf bytes.Buffer
	New(&buf).FatalError(err)

	out := buf.String()
	assert.Contains(t, out, "╭ Validation Error\n")
	assert.Contains(t, out, "│ load config\n")
	assert.Contains(t, out, "│ ✘ store.driver: unknown driver\n")
}

func TestCtx(t *testing.T) {
	var buf bytes.Buffer
	p := New(&buf)
	assert.Same(t, p, Ctx(NewContext(context.Background(), p)))
	assert.NotNil(t, Ctx(context.Background()))
}
