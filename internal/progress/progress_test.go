package progress

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/exp/teatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chmouel/lazyplaylist/internal/models"
	"github.com/chmouel/lazyplaylist/internal/validate"
)

func probed(done, total int, name string, alive bool) EventMsg {
	reason := models.ReasonOK
	if !alive {
		reason = "http_404"
	}
	return EventMsg{
		Kind:   validate.EventProbed,
		Done:   done,
		Total:  total,
		Result: models.ProbeResult{Channel: models.Channel{Name: name}, Alive: alive, Reason: reason},
	}
}

func TestModelCountsAndQuitsOnFinish(t *testing.T) {
	tm := teatest.NewTestModel(t, NewModel("plain", nil), teatest.WithInitialTermSize(100, 30))

	tm.Send(EventMsg{Kind: validate.EventStart, Total: 3, Message: "validating 3 channels"})
	tm.Send(EventMsg{Kind: validate.EventWarning, Message: "source not found: jose3.m3u"})
	tm.Send(probed(1, 3, "La 1", true))
	tm.Send(probed(2, 3, "Canal 24", false))
	tm.Send(probed(3, 3, "Gol", true))

	teatest.WaitFor(t, tm.Output(), func(b []byte) bool {
		return bytes.Contains(b, []byte("3/3"))
	}, teatest.WithCheckInterval(50*time.Millisecond), teatest.WithDuration(2*time.Second))

	report := &validate.Report{Valid: 2, Failed: 1}
	tm.Send(FinishedMsg{Report: report})
	tm.WaitFinished(t, teatest.WithFinalTimeout(2*time.Second))

	m, ok := tm.FinalModel(t).(*Model)
	require.True(t, ok)
	valid, failed := m.Counts()
	assert.Equal(t, 2, valid)
	assert.Equal(t, 1, failed)
	assert.Equal(t, []string{"source not found: jose3.m3u"}, m.warnings)
	got, err := m.Result()
	require.NoError(t, err)
	assert.Same(t, report, got)
}

func TestInterruptCancelsOnce(t *testing.T) {
	calls := 0
	tm := teatest.NewTestModel(t, NewModel("plain", func() { calls++ }), teatest.WithInitialTermSize(100, 30))

	tm.Send(tea.KeyMsg{Type: tea.KeyCtrlC})
	tm.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})

	teatest.WaitFor(t, tm.Output(), func(b []byte) bool {
		return bytes.Contains(b, []byte("Stopping"))
	}, teatest.WithCheckInterval(50*time.Millisecond), teatest.WithDuration(2*time.Second))

	tm.Send(FinishedMsg{Err: errors.New("boom")})
	tm.WaitFinished(t, teatest.WithFinalTimeout(2*time.Second))

	m := tm.FinalModel(t).(*Model)
	assert.True(t, m.stopping)
	assert.Equal(t, 1, calls)
	_, err := m.Result()
	assert.EqualError(t, err, "boom")
}

func TestRecentLinesAreBounded(t *testing.T) {
	m := NewModel("plain", nil)
	for i := 1; i <= recentLimit+4; i++ {
		m.Update(probed(i, recentLimit+4, "c", true))
	}
	assert.Len(t, m.recent, recentLimit)
	assert.True(t, strings.HasPrefix(m.recent[len(m.recent)-1], "[10/10]"))
}

func TestResultLine(t *testing.T) {
	assert.Equal(t, "[1/2] OK   La 1 (ok)", ResultLine(validate.Event(probed(1, 2, "La 1", true))))
	assert.Equal(t, "[2/2] FAIL Gol (http_404)", ResultLine(validate.Event(probed(2, 2, "Gol", false))))
}

func TestPlain(t *testing.T) {
	var buf bytes.Buffer
	handle := Plain(&buf, 20)

	handle(validate.Event{Kind: validate.EventStart, Total: 1, Message: "validating 1 channels"})
	handle(validate.Event(probed(1, 1, "A very long channel name that overflows", true)))
	handle(validate.Event{Kind: validate.EventDone, Done: 1, Total: 1})

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "validating 1 channe…", lines[0])
	assert.True(t, strings.HasSuffix(lines[1], "…"))
	assert.True(t, strings.HasPrefix(lines[2], "finished 1 channel"))
}
