package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/typemaster/internal/lesson"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	assert.Nil(t, cfg.Practice.Mode)
	assert.Empty(t, cfg.Lessons)
}

func TestLoadConfigPracticeAndLessons(t *testing.T) {
	path := writeConfig(t, `
[practice]
mode = "lessons"
lesson = 2

[[lessons]]
title = "Numbers"
text = "12345 67890"

[[lessons]]
text = "!@#$%"
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.NotNil(t, cfg.Practice.Mode)
	assert.Equal(t, "lessons", *cfg.Practice.Mode)
	require.NotNil(t, cfg.Practice.Lesson)
	assert.Equal(t, 2, *cfg.Practice.Lesson)
	assert.Nil(t, cfg.Practice.TextID)

	set, err := cfg.LessonSet()
	require.NoError(t, err)
	require.Equal(t, 2, set.Len())
	second, ok := set.At(1)
	require.True(t, ok)
	assert.Equal(t, "Lesson 2", second.Title)
}

func TestLoadConfigUnknownKey(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, "[practice]\nwords = 10\n"))
	assert.Error(t, err)
}

func TestLessonSetDefault(t *testing.T) {
	set, err := FileConfig{}.LessonSet()
	require.NoError(t, err)
	assert.Equal(t, lesson.DefaultSet().Len(), set.Len())
}

func TestLessonSetRejectsEmptyText(t *testing.T) {
	cfg := FileConfig{Lessons: []LessonConfig{{Title: "x"}}}
	_, err := cfg.LessonSet()
	assert.Error(t, err)
}

func TestXDGPaths(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/cfg")
	t.Setenv("XDG_DATA_HOME", "/tmp/data")
	assert.Equal(t, filepath.Join("/tmp/cfg", "typemaster", "config.toml"), DefaultConfigPath())
	assert.Equal(t, filepath.Join("/tmp/data", "typemaster", "texts.db"), DefaultDBPath())
}

func TestExpandHome(t *testing.T) {
	t.Setenv("HOME", "/home/typist")
	assert.Equal(t, filepath.Join("/home/typist", "text.txt"), ExpandHome("~/text.txt"))
	assert.Equal(t, "/home/typist", ExpandHome("~"))
	assert.Equal(t, "/abs/text.txt", ExpandHome("/abs/text.txt"))
	assert.Equal(t, "~other/text.txt", ExpandHome("~other/text.txt"))
	assert.Equal(t, "rel.txt", ExpandHome("rel.txt"))
}
