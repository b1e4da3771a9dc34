package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "stories/story.json", cfg.StoryPath)
	assert.Equal(t, BackendMemory, cfg.SessionBackend)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.Empty(t, cfg.StartScene)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("SCENEPLAY_PORT", "9090")
	t.Setenv("STORY_PATH", "stories/video.yaml")
	t.Setenv("START_SCENE", "prologue")
	t.Setenv("SESSION_BACKEND", "redis")
	t.Setenv("SESSION_TTL", "90m")
	t.Setenv("REDIS_DB", "3")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Addr())
	assert.Equal(t, "stories/video.yaml", cfg.StoryPath)
	assert.Equal(t, "prologue", cfg.StartScene)
	assert.Equal(t, BackendRedis, cfg.SessionBackend)
	assert.Equal(t, 90*time.Minute, cfg.SessionTTL)
	assert.Equal(t, 3, cfg.RedisDB)
}

func TestLoad_BadBackend(t *testing.T) {
	t.Setenv("SESSION_BACKEND", "postgres")
	_, err := Load()
	assert.ErrorContains(t, err, "SESSION_BACKEND")
}

func TestLoad_BadDuration(t *testing.T) {
	t.Setenv("SESSION_TTL", "forever")
	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_NonPositiveTTL(t *testing.T) {
	t.Setenv("SESSION_TTL", "0s")
	_, err := Load()
	assert.ErrorContains(t, err, "SESSION_TTL")
}
