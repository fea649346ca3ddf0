// Package stats contains metrics calculations and reporting.
package stats

import (
	"fmt"
	"io"
	"math"
	"time"
	"unicode/utf8"

	"github.com/verte-zerg/typemaster/internal/lesson"
	"github.com/verte-zerg/typemaster/internal/model"
)

// charsPerWord is the standard word length used for WPM.
const charsPerWord = 5.0

// Result holds the scored outcome of a finished session.
type Result struct {
	WPM      int
	Accuracy int
	Errors   int
	Correct  int
}

// Compute scores typed against reference over the elapsed duration.
// Non-positive durations yield a zero Result. WPM and accuracy are rounded
// half away from zero.
func Compute(reference, typed string, elapsed time.Duration) Result {
	return ComputeRunes([]rune(reference), []rune(typed), elapsed)
}

// ComputeRunes is Compute for callers that already hold rune slices. Only the
// first min(len(typed), len(reference)) positions are scanned.
func ComputeRunes(reference, typed []rune, elapsed time.Duration) Result {
	seconds := float64(elapsed.Milliseconds()) / 1000.0
	if seconds <= 0 {
		return Result{}
	}
	n := len(typed)
	if n > len(reference) {
		n = len(reference)
	}
	var res Result
	for i := 0; i < n; i++ {
		if typed[i] == reference[i] {
			res.Correct++
		} else {
			res.Errors++
		}
	}
	wpm, accuracy := rates(res.Correct, n, seconds)
	res.WPM = int(math.Round(wpm))
	res.Accuracy = int(math.Round(accuracy))
	return res
}

// rates returns words per minute and accuracy in percent. Accuracy of an
// empty input is 100.
func rates(correct, typed int, seconds float64) (wpm, accuracy float64) {
	minutes := seconds / 60.0
	wpm = (float64(correct) / charsPerWord) / minutes
	accuracy = 100
	if typed > 0 {
		accuracy = float64(correct) / float64(typed) * 100
	}
	return wpm, accuracy
}

// FormatClock renders elapsed ticks (seconds) as mm:ss.
func FormatClock(ticks int) string {
	if ticks < 0 {
		ticks = 0
	}
	return fmt.Sprintf("%02d:%02d", ticks/60, ticks%60)
}

// RenderResult prints a finished session's metrics.
func RenderResult(w io.Writer, res Result, ticks int) error {
	if _, err := fmt.Fprintln(w, "Result"); err != nil {
		return err
	}
	rows := [][]string{
		{"WPM", fmt.Sprintf("%d", res.WPM)},
		{"Accuracy", fmt.Sprintf("%d%%", res.Accuracy)},
		{"Errors", fmt.Sprintf("%d", res.Errors)},
		{"Time", FormatClock(ticks)},
	}
	return writeLines(w, formatTable(nil, rows, map[int]bool{1: true}))
}

// RenderLessons prints the lesson set with one row per lesson.
func RenderLessons(w io.Writer, lessons []lesson.Lesson) error {
	if len(lessons) == 0 {
		_, err := fmt.Fprintln(w, "No lessons found.")
		return err
	}
	headers := []string{"#", "Title", "Chars"}
	rows := make([][]string, 0, len(lessons))
	for i, l := range lessons {
		rows = append(rows, []string{
			fmt.Sprintf("%d", i+1),
			l.Title,
			fmt.Sprintf("%d", utf8.RuneCountInString(l.Text)),
		})
	}
	return writeLines(w, formatTable(headers, rows, map[int]bool{0: true, 2: true}))
}

// RenderTexts prints the text library, truncating bodies to a preview.
func RenderTexts(w io.Writer, texts []model.Text, previewWidth int) error {
	if len(texts) == 0 {
		_, err := fmt.Fprintln(w, "No texts found.")
		return err
	}
	headers := []string{"ID", "Title", "Chars", "Preview"}
	rows := make([][]string, 0, len(texts))
	for _, t := range texts {
		title := t.Title
		if t.Builtin {
			title += " (built-in)"
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", t.ID),
			title,
			fmt.Sprintf("%d", utf8.RuneCountInString(t.Body)),
			preview(t.Body, previewWidth),
		})
	}
	return writeLines(w, formatTable(headers, rows, map[int]bool{0: true, 2: true}))
}

func preview(body string, width int) string {
	if width <= 0 {
		return body
	}
	runes := []rune(body)
	if len(runes) <= width {
		return body
	}
	if width <= 3 {
		return string(runes[:width])
	}
	return string(runes[:width-3]) + "..."
}

func writeLines(w io.Writer, lines []string) error {
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
