// Package feature turns raw task attributes into the numeric vectors the
// estimation model is trained on, and owns the categorical vocabulary and
// normalization state shared by every prediction.
package feature

import "sort"

// UnknownCode is the reserved code for category values never seen during
// training. Inference must map novel values here instead of failing.
const UnknownCode = 0

// Vocabulary maps each distinct category value to a stable positive integer
// code. It grows monotonically as training batches introduce new values and
// never reassigns a code once issued.
type Vocabulary struct {
	codes map[string]int
	next  int
}

func NewVocabulary() *Vocabulary {
	return &Vocabulary{codes: make(map[string]int), next: UnknownCode + 1}
}

// Extend registers any values not yet in the vocabulary. New values within a
// batch are assigned codes in sorted order so training is deterministic.
func (v *Vocabulary) Extend(values []string) {
	fresh := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, val := range values {
		if _, ok := v.codes[val]; ok {
			continue
		}
		if _, ok := seen[val]; ok {
			continue
		}
		seen[val] = struct{}{}
		fresh = append(fresh, val)
	}
	sort.Strings(fresh)
	for _, val := range fresh {
		v.codes[val] = v.next
		v.next++
	}
}

// Code returns the stable code for a value, or UnknownCode when the value was
// never observed during training.
func (v *Vocabulary) Code(value string) int {
	if code, ok := v.codes[value]; ok {
		return code
	}
	return UnknownCode
}

// Size returns the number of known values, excluding the unknown bucket.
func (v *Vocabulary) Size() int {
	return len(v.codes)
}

func (v *Vocabulary) snapshot() vocabularySnapshot {
	codes := make(map[string]int, len(v.codes))
	for k, c := range v.codes {
		codes[k] = c
	}
	return vocabularySnapshot{Codes: codes, Next: v.next}
}

func restoreVocabulary(snap vocabularySnapshot) *Vocabulary {
	v := NewVocabulary()
	for k, c := range snap.Codes {
		v.codes[k] = c
	}
	if snap.Next > v.next {
		v.next = snap.Next
	}
	return v
}
