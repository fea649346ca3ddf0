// Package diff classifies typed input against a reference text.
package diff

// Class is the classification of a single reference position.
type Class uint8

const (
	// Untyped marks a position the user has not reached yet.
	Untyped Class = iota
	// Correct marks a position typed with the exact reference character.
	Correct
	// Incorrect marks a position typed with any other character.
	Incorrect
)

// String returns the lower-case class name.
func (c Class) String() string {
	switch c {
	case Untyped:
		return "untyped"
	case Correct:
		return "correct"
	case Incorrect:
		return "incorrect"
	default:
		return "unknown"
	}
}

// Classify returns one class per rune of reference. Typed runes past the end
// of reference are not represented.
func Classify(reference, typed string) []Class {
	return ClassifyRunes([]rune(reference), []rune(typed))
}

// ClassifyRunes is Classify for callers that already hold rune slices.
func ClassifyRunes(reference, typed []rune) []Class {
	out := make([]Class, len(reference))
	for i, want := range reference {
		if i >= len(typed) {
			// Remaining entries keep the Untyped zero value.
			break
		}
		if typed[i] == want {
			out[i] = Correct
		} else {
			out[i] = Incorrect
		}
	}
	return out
}

// Count tallies a classification.
func Count(classes []Class) (correct, incorrect, untyped int) {
	for _, c := range classes {
		switch c {
		case Correct:
			correct++
		case Incorrect:
			incorrect++
		default:
			untyped++
		}
	}
	return correct, incorrect, untyped
}
