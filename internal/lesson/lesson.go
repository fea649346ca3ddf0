// Package lesson provides the guided-practice lesson set and its cursor.
package lesson

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/verte-zerg/typemaster/internal/diff"
)

// ErrOutOfRange is returned when selecting an index outside the lesson set.
var ErrOutOfRange = errors.New("lesson index out of range")

// Lesson is a titled practice text.
type Lesson struct {
	Title string
	Text  string
}

// Set is an immutable, ordered list of lessons.
type Set struct {
	lessons []Lesson
}

var defaultLessons = []Lesson{
	{
		Title: "Home Row (ASDF JKL;)",
		Text:  "asdf jkl; asdf jkl; asdf jkl; asdf jkl; asdf jkl; asdf jkl; asdf jkl; asdf jkl;",
	},
	{
		Title: "Home Row (Full)",
		Text:  "asdfg hjkl; asdfg hjkl; asdfg hjkl; asdfg hjkl; asdfg hjkl; asdfg hjkl;",
	},
	{
		Title: "Top Row",
		Text:  "qwerty uiop qwerty uiop qwerty uiop qwerty uiop qwerty uiop qwerty uiop",
	},
	{
		Title: "Bottom Row",
		Text:  "zxcvb nm,./ zxcvb nm,./ zxcvb nm,./ zxcvb nm,./ zxcvb nm,./ zxcvb nm,./",
	},
	{
		Title: "All Letters",
		Text:  "abcdefghijklmnopqrstuvwxyz abcdefghijklmnopqrstuvwxyz abcdefghijklmnopqrstuvwxyz",
	},
}

// DefaultSet returns the built-in keyboard-row lessons.
func DefaultSet() Set {
	return Set{lessons: append([]Lesson(nil), defaultLessons...)}
}

// NewSet validates and copies lessons into a Set.
func NewSet(lessons []Lesson) (Set, error) {
	if len(lessons) == 0 {
		return Set{}, fmt.Errorf("lesson set is empty")
	}
	out := make([]Lesson, len(lessons))
	for i, l := range lessons {
		if strings.TrimSpace(l.Text) == "" {
			return Set{}, fmt.Errorf("lesson %d has empty text", i+1)
		}
		if l.Title == "" {
			l.Title = fmt.Sprintf("Lesson %d", i+1)
		}
		out[i] = l
	}
	return Set{lessons: out}, nil
}

// Len returns the number of lessons.
func (s Set) Len() int {
	return len(s.lessons)
}

// At returns the lesson at index i.
func (s Set) At(i int) (Lesson, bool) {
	if i < 0 || i >= len(s.lessons) {
		return Lesson{}, false
	}
	return s.lessons[i], true
}

// All returns a copy of the lessons in order.
func (s Set) All() []Lesson {
	return append([]Lesson(nil), s.lessons...)
}

// Sequencer walks a lesson Set and holds the input typed for the current
// lesson. It is not safe for concurrent use.
type Sequencer struct {
	set   Set
	index int
	typed string
}

// NewSequencer returns a Sequencer positioned on the first lesson.
// An empty set falls back to DefaultSet.
func NewSequencer(set Set) *Sequencer {
	if set.Len() == 0 {
		set = DefaultSet()
	}
	return &Sequencer{set: set}
}

// Set returns the lesson set being walked.
func (s *Sequencer) Set() Set {
	return s.set
}

// Index returns the zero-based current lesson index.
func (s *Sequencer) Index() int {
	return s.index
}

// Current returns the current lesson.
func (s *Sequencer) Current() Lesson {
	return s.set.lessons[s.index]
}

// Select moves to index. Moving clears the typed input; selecting the
// current index keeps it.
func (s *Sequencer) Select(index int) error {
	if index < 0 || index >= s.set.Len() {
		return fmt.Errorf("%w: %d not in [0, %d]", ErrOutOfRange, index, s.set.Len()-1)
	}
	s.moveTo(index)
	return nil
}

// Next advances to the following lesson. It reports false, leaving the
// input untouched, when already on the last lesson.
func (s *Sequencer) Next() bool {
	if s.index >= s.set.Len()-1 {
		return false
	}
	s.moveTo(s.index + 1)
	return true
}

// Previous steps back one lesson. It reports false, leaving the input
// untouched, when already on the first lesson.
func (s *Sequencer) Previous() bool {
	if s.index == 0 {
		return false
	}
	s.moveTo(s.index - 1)
	return true
}

func (s *Sequencer) moveTo(index int) {
	if index == s.index {
		return
	}
	s.index = index
	s.typed = ""
}

// Input replaces the typed buffer.
func (s *Sequencer) Input(text string) {
	s.typed = text
}

// Typed returns the current typed buffer.
func (s *Sequencer) Typed() string {
	return s.typed
}

// Classes classifies the typed buffer against the current lesson.
func (s *Sequencer) Classes() []diff.Class {
	return diff.Classify(s.Current().Text, s.typed)
}

// Complete reports whether the typed buffer has exactly the lesson's length.
// Correctness is not required.
func (s *Sequencer) Complete() bool {
	return utf8.RuneCountInString(s.typed) == utf8.RuneCountInString(s.Current().Text)
}
