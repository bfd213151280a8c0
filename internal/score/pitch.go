package score

import (
	"math"
	"strconv"
	"strings"
)

const (
	lowestOctave  = 0
	highestOctave = 8
	concertA      = 440.0
	concertAKey   = 69
)

var semitones = map[byte]int{'C': 0, 'D': 2, 'E': 4, 'F': 5, 'G': 7, 'A': 9, 'B': 11}

// Pitches maps note names to frequencies in Hz. A frequency of zero means
// rest.
type Pitches map[string]float64

// DefaultPitches returns equal-tempered frequencies (A4 = 440 Hz) for C0
// through B8, with sharp and flat spellings, rounded to 0.01 Hz. REST maps
// to zero.
func DefaultPitches() Pitches {
	p := Pitches{Rest: 0}
	for oct := lowestOctave; oct <= highestOctave; oct++ {
		for _, letter := range "CDEFGAB" {
			for _, acc := range []string{"", "#", "b"} {
				name := string(letter) + acc + strconv.Itoa(oct)
				key, _ := MIDIKey(name)
				p[name] = math.Round(KeyFrequency(key)*100) / 100
			}
		}
	}
	return p
}

// Frequency resolves name. Lookup is exact first, then with the note letter
// upper-cased so "c#4" matches "C#4". REST matches in any case.
func (p Pitches) Frequency(name string) (float64, bool) {
	name = strings.TrimSpace(name)
	if f, ok := p[name]; ok {
		return f, true
	}
	if strings.EqualFold(name, Rest) {
		return 0, true
	}
	if name == "" {
		return 0, false
	}
	f, ok := p[strings.ToUpper(name[:1])+name[1:]]
	return f, ok
}

// KeyFrequency is the equal-tempered frequency of a MIDI key number.
func KeyFrequency(key int) float64 {
	return concertA * math.Pow(2, float64(key-concertAKey)/12)
}

// MIDIKey parses a scientific pitch name such as "A4", "C#3" or "Bb5" into a
// MIDI key number (C4 = 60).
func MIDIKey(name string) (int, bool) {
	name = strings.TrimSpace(name)
	if len(name) < 2 {
		return 0, false
	}
	semi, ok := semitones[strings.ToUpper(name[:1])[0]]
	if !ok {
		return 0, false
	}
	rest := name[1:]
	switch rest[0] {
	case '#':
		semi++
		rest = rest[1:]
	case 'b':
		semi--
		rest = rest[1:]
	}
	oct, err := strconv.Atoi(rest)
	if err != nil || oct < -1 || oct > 9 {
		return 0, false
	}
	key := (oct+1)*12 + semi
	if key < 0 || key > 127 {
		return 0, false
	}
	return key, true
}
