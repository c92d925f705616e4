// Package audio composes the feedback cues for the board. Synthesis
// happens client-side; the server only describes tones and forwards
// them to connected clients.
package audio

import "math/rand"

// Tone describes one oscillator note. Start is an offset in seconds
// from "now" on the client's audio clock.
type Tone struct {
	Freq     float64 `json:"freq"`
	Start    float64 `json:"start"`
	Duration float64 `json:"duration"`
	Waveform string  `json:"waveform"`
	GainDB   float64 `json:"gain_db"`
}

// Player is the audio collaborator the reveal engine talks to.
type Player interface {
	PlayTones(tones []Tone)
	StartAmbientNoise()
	StopAmbientNoise()
}

// Congrats is the celebratory sequence played when the final character
// locks: a quick C-major arpeggio followed by a short stacked chord.
func Congrats() []Tone {
	notes := []float64{523.25, 659.25, 783.99} // C5, E5, G5
	tones := make([]Tone, 0, len(notes)*2)
	for i, f := range notes {
		tones = append(tones, Tone{
			Freq: f, Start: 0.18 * float64(i), Duration: 0.16,
			Waveform: "triangle", GainDB: -8,
		})
	}
	for i, f := range notes {
		wave := "sine"
		if i == 1 {
			wave = "square"
		}
		tones = append(tones, Tone{
			Freq: f, Start: 0.6, Duration: 0.55,
			Waveform: wave, GainDB: -12,
		})
	}
	return tones
}

// ShuffleTick is one randomized percussive click of the shuffle phase.
func ShuffleTick(rng *rand.Rand) Tone {
	return Tone{
		Freq:     420 + rng.Float64()*120,
		Duration: 0.045,
		Waveform: "square",
		GainDB:   -18,
	}
}

// Broadcaster delivers typed messages to connected clients.
type Broadcaster interface {
	BroadcastMessage(msgType string, payload interface{})
}

// Remote forwards cues to clients over the broadcast channel.
type Remote struct {
	hub Broadcaster
}

// NewRemote creates a Player backed by a client broadcaster.
func NewRemote(hub Broadcaster) *Remote {
	return &Remote{hub: hub}
}

func (r *Remote) PlayTones(tones []Tone) {
	r.hub.BroadcastMessage("audio_tones", map[string]interface{}{"tones": tones})
}

func (r *Remote) StartAmbientNoise() {
	r.hub.BroadcastMessage("audio_noise", map[string]interface{}{"on": true})
}

func (r *Remote) StopAmbientNoise() {
	r.hub.BroadcastMessage("audio_noise", map[string]interface{}{"on": false})
}

// Silent is a no-op Player for tests and headless runs.
type Silent struct{}

func (Silent) PlayTones([]Tone)   {}
func (Silent) StartAmbientNoise() {}
func (Silent) StopAmbientNoise()  {}
