package services

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRebuildServiceStartStop(t *testing.T) {
	builder := newTestBuilder(t, &stubDataSource{}, t.TempDir())
	service := NewRebuildService(builder, nil, testLogger(), time.Hour)

	require.NoError(t, service.Start())
	assert.Error(t, service.Start(), "second start should be rejected")

	status := service.Status()
	assert.Equal(t, true, status["is_running"])
	assert.Equal(t, time.Hour.String(), status["rebuild_interval"])
	assert.Equal(t, 1, status["cron_jobs"])

	service.Stop()
	status = service.Status()
	assert.Equal(t, false, status["is_running"])

	// Stopping twice is harmless.
	service.Stop()
}

func TestRebuildServiceRejectsZeroInterval(t *testing.T) {
	builder := newTestBuilder(t, &stubDataSource{}, t.TempDir())
	service := NewRebuildService(builder, nil, testLogger(), 0)

	assert.Error(t, service.Start())
}

func TestRebuildServiceTriggerNow(t *testing.T) {
	outputDir := t.TempDir()
	builder := newTestBuilder(t, &stubDataSource{}, outputDir)
	service := NewRebuildService(builder, nil, testLogger(), time.Hour)

	service.TriggerNow()

	require.Eventually(t, func() bool {
		_, err := os.Stat(filepath.Join(outputDir, "index.html"))
		return err == nil
	}, 5*time.Second, 20*time.Millisecond, "triggered rebuild should write the site")

	status := service.Status()
	lastBuildID, ok := status["last_build_id"].(string)
	require.True(t, ok, "status should carry the last build id")
	assert.NotEmpty(t, lastBuildID)
}

func TestRebuildServiceNotifiesReloadClients(t *testing.T) {
	hub, server := newHubServer(t)
	conn := dialHub(t, server)
	require.Eventually(t, func() bool {
		return hub.ClientCount() == 1
	}, time.Second, 10*time.Millisecond)

	builder := newTestBuilder(t, &stubDataSource{}, t.TempDir())
	service := NewRebuildService(builder, hub, testLogger(), time.Hour)

	service.TriggerNow()

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"type":"reload"`)
}

func TestRebuildServiceKeepsSiteOnFailure(t *testing.T) {
	outputDir := t.TempDir()
	builder := newTestBuilder(t, &stubDataSource{}, outputDir)
	service := NewRebuildService(builder, nil, testLogger(), time.Hour)

	service.TriggerNow()
	require.Eventually(t, func() bool {
		_, err := os.Stat(filepath.Join(outputDir, "index.html"))
		return err == nil
	}, 5*time.Second, 20*time.Millisecond)

	first := service.Status()["last_build_id"]

	// Make the next write fail by replacing the output dir with a file.
	require.NoError(t, os.RemoveAll(outputDir))
	require.NoError(t, os.WriteFile(outputDir, []byte("x"), 0o644))
	t.Cleanup(func() { os.Remove(outputDir) })

	service.TriggerNow()
	time.Sleep(200 * time.Millisecond)

	assert.Equal(t, first, service.Status()["last_build_id"], "failed build must not advance the status")
}
