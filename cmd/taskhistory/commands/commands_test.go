package commands_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/taskhistory/cmd/taskhistory/commands"
	"go.trai.ch/taskhistory/internal/app"
	"go.trai.ch/taskhistory/internal/build"
)

type mockApp struct {
	global     app.GlobalOptions
	recordFunc func(ctx context.Context, taskPath string, outputs []string, opts app.RecordOptions) error
	showFunc   func(ctx context.Context, taskPath string) error
	cleanFunc  func(ctx context.Context, opts app.CleanOptions) error
}

func (m *mockApp) Configure(opts app.GlobalOptions) {
	m.global = opts
}

func (m *mockApp) Record(ctx context.Context, taskPath string, outputs []string, opts app.RecordOptions) error {
	if m.recordFunc != nil {
		return m.recordFunc(ctx, taskPath, outputs, opts)
	}
	return nil
}

func (m *mockApp) Show(ctx context.Context, taskPath string) error {
	if m.showFunc != nil {
		return m.showFunc(ctx, taskPath)
	}
	return nil
}

func (m *mockApp) Clean(ctx context.Context, opts app.CleanOptions) error {
	if m.cleanFunc != nil {
		return m.cleanFunc(ctx, opts)
	}
	return nil
}

func TestCommands_Record(t *testing.T) {
	t.Run("wires arguments and flags", func(t *testing.T) {
		var capturedPath string
		var capturedOutputs []string
		var capturedOpts app.RecordOptions

		mock := &mockApp{
			recordFunc: func(_ context.Context, taskPath string, outputs []string, opts app.RecordOptions) error {
				capturedPath = taskPath
				capturedOutputs = outputs
				capturedOpts = opts
				return nil
			},
		}

		cli := commands.New(mock)
		cli.SetArgs([]string{"record", ":app:build", "out/a", "out/b", "-i", "src", "--input", "go.mod", "--rebuild"})

		err := cli.Execute(context.Background())
		require.NoError(t, err)
		assert.Equal(t, ":app:build", capturedPath)
		assert.Equal(t, []string{"out/a", "out/b"}, capturedOutputs)
		assert.Equal(t, []string{"src", "go.mod"}, capturedOpts.Inputs)
		assert.True(t, mock.global.Rebuild)
		assert.False(t, mock.global.JSON)
	})

	t.Run("requires a task path", func(t *testing.T) {
		mock := &mockApp{
			recordFunc: func(context.Context, string, []string, app.RecordOptions) error {
				panic("should not be called")
			},
		}

		cli := commands.New(mock)
		cli.SetOutput(new(bytes.Buffer), new(bytes.Buffer))
		cli.SetArgs([]string{"record"})

		err := cli.Execute(context.Background())
		require.Error(t, err)
	})

	t.Run("returns error on record failure", func(t *testing.T) {
		mock := &mockApp{
			recordFunc: func(context.Context, string, []string, app.RecordOptions) error {
				return errors.New("simulated error")
			},
		}

		cli := commands.New(mock)
		cli.SetOutput(new(bytes.Buffer), new(bytes.Buffer))
		cli.SetArgs([]string{"record", ":a"})

		err := cli.Execute(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "simulated error")
	})
}

func TestCommands_Show(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "task", args: []string{"show", ":app:build"}, want: ":app:build"},
		{name: "all tasks", args: []string{"show"}, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			captured := "unset"
			mock := &mockApp{
				showFunc: func(_ context.Context, taskPath string) error {
					captured = taskPath
					return nil
				},
			}

			cli := commands.New(mock)
			cli.SetArgs(append(tt.args, "--json", "--trace"))

			require.NoError(t, cli.Execute(context.Background()))
			assert.Equal(t, tt.want, captured)
			assert.True(t, mock.global.JSON)
			assert.True(t, mock.global.Trace)
		})
	}
}

func TestCommands_Clean(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want app.CleanOptions
	}{
		{name: "default", args: []string{"clean"}, want: app.CleanOptions{Records: true, Snapshots: true}},
		{name: "records", args: []string{"clean", "--records"}, want: app.CleanOptions{Records: true}},
		{name: "snapshots", args: []string{"clean", "-s"}, want: app.CleanOptions{Snapshots: true}},
		{name: "both", args: []string{"clean", "-r", "-s"}, want: app.CleanOptions{Records: true, Snapshots: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var captured app.CleanOptions
			mock := &mockApp{
				cleanFunc: func(_ context.Context, opts app.CleanOptions) error {
					captured = opts
					return nil
				},
			}

			cli := commands.New(mock)
			cli.SetArgs(tt.args)

			require.NoError(t, cli.Execute(context.Background()))
			assert.Equal(t, tt.want, captured)
		})
	}
}

func TestCommands_Version(t *testing.T) {
	mock := &mockApp{}
	cli := commands.New(mock)

	buf := new(bytes.Buffer)
	cli.SetOutput(buf, buf)
	cli.SetArgs([]string{"version"})

	err := cli.Execute(context.Background())
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "taskhistory version "+build.Version)
}
