package score

import (
	"fmt"
	"io"
	"math"
	"sort"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

// TicksPerQuarter is the resolution of exported MIDI files.
const TicksPerQuarter = 960

type noteEvent struct {
	tick uint32
	on   bool
	key  uint8
	vel  uint8
}

// ToSMF converts the score timeline to a multi-track Standard MIDI File. Each
// score track becomes one MIDI track on its own channel. Notes whose pitch
// does not parse are left out but still advance time.
func (s *Score) ToSMF() *smf.SMF {
	tempo := s.Metadata.Tempo
	if tempo <= 0 {
		tempo = defaultTempo
	}
	ticksPerMs := float64(TicksPerQuarter) * tempo / 60000
	toTicks := func(ms float64) uint32 { return uint32(math.Round(ms * ticksPerMs)) }

	out := smf.New()
	out.TimeFormat = smf.MetricTicks(TicksPerQuarter)

	var conductor smf.Track
	if s.Metadata.Title != "" {
		conductor.Add(0, smf.MetaTrackSequenceName(s.Metadata.Title))
	}
	conductor.Add(0, smf.MetaTempo(tempo))
	conductor.Close(0)
	out.Add(conductor)

	for i, t := range s.Tracks {
		ch := uint8(i % 16)
		var events []noteEvent
		var pos float64
		emit := func(n Note, start float64) {
			key, ok := MIDIKey(n.Pitch)
			if n.IsRest() || !ok || n.DurationMs <= 0 {
				return
			}
			events = append(events,
				noteEvent{tick: toTicks(start), on: true, key: uint8(key), vel: velocity(n.Volume)},
				noteEvent{tick: toTicks(start + n.DurationMs), key: uint8(key)},
			)
		}
		for _, it := range t.Items {
			switch v := it.(type) {
			case Note:
				emit(v, pos)
			case Chord:
				for _, n := range v.Notes {
					emit(n, pos)
				}
			}
			pos += it.Duration()
		}
		// Note-offs sort ahead of note-ons sharing a tick so repeated keys retrigger.
		sort.SliceStable(events, func(a, b int) bool {
			if events[a].tick != events[b].tick {
				return events[a].tick < events[b].tick
			}
			return !events[a].on && events[b].on
		})

		var tr smf.Track
		tr.Add(0, smf.MetaTrackSequenceName(fmt.Sprintf("%d %s", i+1, t.Instrument)))
		var last uint32
		for _, e := range events {
			msg := midi.NoteOff(ch, e.key)
			if e.on {
				msg = midi.NoteOn(ch, e.key, e.vel)
			}
			tr.Add(e.tick-last, msg)
			last = e.tick
		}
		tr.Close(toTicks(pos) - min(last, toTicks(pos)))
		out.Add(tr)
	}
	return out
}

// WriteSMF writes the score as a Standard MIDI File.
func (s *Score) WriteSMF(w io.Writer) error {
	if _, err := s.ToSMF().WriteTo(w); err != nil {
		return fmt.Errorf("score: write midi: %w", err)
	}
	return nil
}

func velocity(volume float64) uint8 {
	v := math.Round(volume * 127)
	return uint8(min(max(v, 1), 127))
}
