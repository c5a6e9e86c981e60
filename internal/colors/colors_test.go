package colors

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

type recordingLogger struct {
	entries []string
}

func (r *recordingLogger) Debug(msg string, args ...any) { r.entries = append(r.entries, "debug:"+msg) }
func (r *recordingLogger) Info(msg string, args ...any)  { r.entries = append(r.entries, "info:"+msg) }
func (r *recordingLogger) Warn(msg string, args ...any)  { r.entries = append(r.entries, "warn:"+msg) }
func (r *recordingLogger) Error(msg string, args ...any) { r.entries = append(r.entries, "error:"+msg) }

func captureOutput(t *testing.T) (*bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	var out, errOut bytes.Buffer
	SetOutput(&out, &errOut)
	t.Cleanup(func() {
		SetOutput(nil, nil)
		SetQuiet(false)
		SetDebug(false)
		SetLogger(nil)
	})
	return &out, &errOut
}

func TestError(t *testing.T) {
	_, errOut := captureOutput(t)

	Error("something went wrong")

	assert.Contains(t, errOut.String(), "Error:")
	assert.Contains(t, errOut.String(), "something went wrong")
	assert.Contains(t, errOut.String(), Red)
}

func TestSuccess(t *testing.T) {
	out, _ := captureOutput(t)

	Success("preferences saved")

	assert.Contains(t, out.String(), checkmark)
	assert.Contains(t, out.String(), "preferences saved")
	assert.Contains(t, out.String(), Green)
}

func TestWarning(t *testing.T) {
	_, errOut := captureOutput(t)

	Warning("this is a warning")

	assert.Contains(t, errOut.String(), "Warning:")
	assert.Contains(t, errOut.String(), Yellow)
}

func TestInfoSuppressedWhenQuiet(t *testing.T) {
	out, errOut := captureOutput(t)
	SetQuiet(true)

	Info("hidden")
	Warning("still shown")

	assert.Empty(t, out.String())
	assert.Contains(t, errOut.String(), "still shown")
}

func TestDebugOnlyWhenEnabled(t *testing.T) {
	_, errOut := captureOutput(t)

	Debug("not yet")
	assert.Empty(t, errOut.String())

	SetDebug(true)
	Debug("now")
	assert.Contains(t, errOut.String(), "Debug:")
	assert.Contains(t, errOut.String(), "now")
}

func TestMessagesMirroredToLogger(t *testing.T) {
	captureOutput(t)
	rec := &recordingLogger{}
	SetLogger(rec)

	Info("a", "b")
	Success("done")
	Warning("careful")
	Error("boom")

	assert.Equal(t, []string{"info:a b", "info:done", "warn:careful", "error:boom"}, rec.entries)
}
