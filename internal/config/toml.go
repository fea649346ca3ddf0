// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/verte-zerg/typemaster/internal/lesson"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Practice PracticeConfig `toml:"practice"`
	Lessons  []LessonConfig `toml:"lessons"`
}

// PracticeConfig maps practice-related settings.
type PracticeConfig struct {
	Mode     *string `toml:"mode"`
	TextID   *int64  `toml:"text-id"`
	TextFile *string `toml:"text-file"`
	Lesson   *int    `toml:"lesson"`
}

// LessonConfig is one [[lessons]] entry.
type LessonConfig struct {
	Title string `toml:"title"`
	Text  string `toml:"text"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	return cfg, nil
}

// LessonSet returns the configured lessons, or the built-in set when the
// file defines none.
func (c FileConfig) LessonSet() (lesson.Set, error) {
	if len(c.Lessons) == 0 {
		return lesson.DefaultSet(), nil
	}
	lessons := make([]lesson.Lesson, 0, len(c.Lessons))
	for _, l := range c.Lessons {
		lessons = append(lessons, lesson.Lesson{Title: l.Title, Text: l.Text})
	}
	set, err := lesson.NewSet(lessons)
	if err != nil {
		return lesson.Set{}, fmt.Errorf("invalid [[lessons]]: %w", err)
	}
	return set, nil
}
