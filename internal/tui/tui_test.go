package tui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sokinpui/coder.go/model"
)

type fakeExecutor struct {
	summary model.Summary
	err     error
}

func (f fakeExecutor) Execute(context.Context) (model.Summary, error) {
	return f.summary, f.err
}

func TestRunProducesSummary(t *testing.T) {
	r := &model.BatchResult{Status: model.Complete, Modified: 1}
	m := New(context.Background(), fakeExecutor{summary: model.Summary{Result: r}})

	msg := m.run()
	_, cmd := m.Update(msg)
	require.NotNil(t, cmd)
	assert.Equal(t, stateSummary, m.state)
	assert.Contains(t, m.View(), "Batch complete")

	summary, err := m.Result()
	require.NoError(t, err)
	assert.Same(t, r, summary.Result)
}

func TestRunError(t *testing.T) {
	m := New(context.Background(), fakeExecutor{err: errors.New("no input files")})

	m.Update(m.run())
	assert.Equal(t, stateError, m.state)
	assert.Contains(t, m.View(), "no input files")
	_, err := m.Result()
	assert.Error(t, err)
}

func TestQuitWhileProcessingWaitsForExecutor(t *testing.T) {
	r := &model.BatchResult{Status: model.Complete, Modified: 3}
	m := New(context.Background(), fakeExecutor{summary: model.Summary{Result: r}})

	m.Update(progressMsg{current: 1, total: 3})
	assert.Contains(t, m.View(), "[1/3]")

	for _, key := range []tea.KeyMsg{{Type: tea.KeyCtrlC}, {Type: tea.KeyRunes, Runes: []rune("q")}} {
		_, cmd := m.Update(key)
		assert.Nil(t, cmd)
		assert.Equal(t, stateProcessing, m.state)
	}
	assert.Contains(t, m.View(), "Finishing")

	_, cmd := m.Update(m.run())
	require.NotNil(t, cmd)
	assert.Equal(t, stateSummary, m.state)
	summary, err := m.Result()
	require.NoError(t, err)
	assert.Same(t, r, summary.Result)
}

func TestQuitAfterSummary(t *testing.T) {
	m := New(context.Background(), fakeExecutor{summary: model.Summary{Result: &model.BatchResult{}}})
	m.Update(m.run())

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}
