package bot

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rsarvar1a/riddler/logging"
	"github.com/rsarvar1a/riddler/marathon"
	"github.com/rsarvar1a/riddler/storage"
)

// replySink records what a command invocation sends back.
type replySink struct {
	replies []marathon.Reply
}

func (r *replySink) Send(_ context.Context, reply marathon.Reply) error {
	r.replies = append(r.replies, reply)
	return nil
}

func TestRunCommandIsolatesPanics(t *testing.T) {
	logging.Log = logrus.New()

	dir := t.TempDir()
	roster := &storage.YAMLRosterStorage{Dir: dir}
	attempts := &storage.YAMLAttemptStorage{Dir: dir, Roster: roster}
	service := marathon.NewService(roster, attempts, marathon.NewResolver([]string{"100"}))

	organizer := marathon.Caller{ID: "100", GuildID: "g1", ChannelID: "c1"}
	sink := &replySink{}
	require.NoError(t, service.Initialize(context.Background(), sink, organizer,
		[]byte("p1:\n  name: Cryptic One\n  category: crypto\n  points: 100\n  url: https://example.com/p1\n"),
		[]byte("alpha:\n  members: [u1]\n  channels: [c1]\n"),
	))

	snapshot := func(t *testing.T, name string) []byte {
		t.Helper()
		raw, err := os.ReadFile(filepath.Join(dir, name))
		require.NoError(t, err)
		return raw
	}
	teamsBefore := snapshot(t, "teams.yaml")
	attemptsBefore := snapshot(t, "attempts.yaml")

	t.Run("a missing-team lookup becomes an error reply", func(t *testing.T) {
		sink := &replySink{}

		runCommand(context.Background(), "add_channel", sink, func() error {
			// "zeta" was never initialized, so the handler dereferences a
			// missing map entry and dies mid-invocation.
			return service.AddChannel(context.Background(), sink, organizer, "zeta")
		})

		require.NotEmpty(t, sink.replies, "the recover path must still answer the caller")
		reply := sink.replies[len(sink.replies)-1]
		assert.True(t, reply.Failed)
		assert.Error(t, reply.Err)
	})

	t.Run("persisted state is untouched by the dead invocation", func(t *testing.T) {
		assert.Equal(t, teamsBefore, snapshot(t, "teams.yaml"))
		assert.Equal(t, attemptsBefore, snapshot(t, "attempts.yaml"))
	})

	t.Run("a handler error is swallowed without a panic reply", func(t *testing.T) {
		sink := &replySink{}

		runCommand(context.Background(), "unlock", sink, func() error {
			return assert.AnError
		})

		assert.Empty(t, sink.replies, "plain errors are logged, not re-reported")
	})
}
