package worker

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeWorker struct {
	name     string
	startErr error
	stopErr  error
	events   *[]string
}

func (f *fakeWorker) Start(ctx context.Context) error {
	if f.startErr != nil {
		return f.startErr
	}
	*f.events = append(*f.events, "start:"+f.name)
	return nil
}

func (f *fakeWorker) Stop() error {
	*f.events = append(*f.events, "stop:"+f.name)
	return f.stopErr
}

func (f *fakeWorker) Name() string { return f.name }

func TestWorkerManager_Lifecycle(t *testing.T) {
	var events []string
	m := NewWorkerManager(zap.NewNop())

	require.NoError(t, m.Register(&fakeWorker{name: "a", events: &events}))
	require.NoError(t, m.Register(&fakeWorker{name: "b", events: &events}))
	assert.Error(t, m.Register(&fakeWorker{name: "a", events: &events}))
	assert.Equal(t, 2, m.GetWorkerCount())

	require.NoError(t, m.StartAll(context.Background()))
	assert.True(t, m.IsRunning())
	assert.Error(t, m.StartAll(context.Background()))
	assert.Error(t, m.Register(&fakeWorker{name: "c", events: &events}))

	require.NoError(t, m.StopAll())
	assert.False(t, m.IsRunning())
	require.NoError(t, m.StopAll())

	assert.Equal(t, []string{"start:a", "start:b", "stop:b", "stop:a"}, events)
}

func TestWorkerManager_StartFailureStopsStarted(t *testing.T) {
	var events []string
	m := NewWorkerManager(zap.NewNop())

	require.NoError(t, m.Register(&fakeWorker{name: "a", events: &events}))
	require.NoError(t, m.Register(&fakeWorker{name: "b", events: &events, startErr: errors.New("port busy")}))
	require.NoError(t, m.Register(&fakeWorker{name: "c", events: &events}))

	err := m.StartAll(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "port busy")
	assert.False(t, m.IsRunning())
	assert.Equal(t, []string{"start:a", "stop:a"}, events)
}

func TestWorkerManager_StopErrors(t *testing.T) {
	var events []string
	m := NewWorkerManager(zap.NewNop())

	require.NoError(t, m.Register(&fakeWorker{name: "a", events: &events, stopErr: errors.New("stuck")}))
	require.NoError(t, m.Register(&fakeWorker{name: "b", events: &events}))
	require.NoError(t, m.StartAll(context.Background()))

	err := m.StopAll()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "a: stuck")
	assert.Equal(t, []string{"start:a", "start:b", "stop:b", "stop:a"}, events)
}
