// Package model defines shared data structures.
package model

import "time"

// Mode selects which screen the practice shell opens on.
type Mode int

const (
	// ModeTest is the timed, scored typing test.
	ModeTest Mode = iota
	// ModeLessons is guided practice over a fixed lesson set.
	ModeLessons
)

// String returns the flag spelling of the mode.
func (m Mode) String() string {
	switch m {
	case ModeLessons:
		return "lessons"
	default:
		return "test"
	}
}

// Config defines practice settings.
type Config struct {
	Mode     Mode
	TextID   int64
	TextFile string
	Lesson   int
}

// Text is a reference text available for practice.
type Text struct {
	ID        int64
	Title     string
	Body      string
	Builtin   bool
	CreatedAt time.Time
}
