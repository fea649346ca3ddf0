// Package generator chooses practice texts.
package generator

import (
	"math/rand"
	"time"

	"github.com/verte-zerg/typemaster/internal/model"
)

// Picker selects reference texts at random.
type Picker struct {
	rnd *rand.Rand
}

// New returns a Picker seeded with the current time.
func New() *Picker {
	return NewWithSeed(time.Now().UnixNano())
}

// NewWithSeed returns a deterministic Picker.
func NewWithSeed(seed int64) *Picker {
	return &Picker{rnd: rand.New(rand.NewSource(seed))}
}

// Pick returns a random text whose ID differs from excludeID when another
// choice exists. ok is false for an empty slice.
func (p *Picker) Pick(texts []model.Text, excludeID int64) (model.Text, bool) {
	if len(texts) == 0 {
		return model.Text{}, false
	}
	candidates := make([]int, 0, len(texts))
	for i, t := range texts {
		if t.ID != excludeID {
			candidates = append(candidates, i)
		}
	}
	if len(candidates) == 0 {
		return texts[p.rnd.Intn(len(texts))], true
	}
	return texts[candidates[p.rnd.Intn(len(candidates))]], true
}
