package audio

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"

	"github.com/oshokin/work-alarm/internal/logger"
)

const (
	// SampleRate is the playback sample rate in Hz.
	SampleRate = 44100

	// DefaultFrequency is the tone pitch in Hz.
	DefaultFrequency = 880
	// DefaultVolume is the initial amplitude relative to full scale.
	DefaultVolume = 0.2
	// DefaultDuration is the tone length.
	DefaultDuration = 700 * time.Millisecond

	// decayFloor is the gain reached at the end of the tone, relative to the start.
	decayFloor = 1e-5
	// bytesPerSample is the size of one mono 16-bit sample.
	bytesPerSample = 2
	// pollInterval is how often playback completion is checked.
	pollInterval = 10 * time.Millisecond
)

// The device context can only be created once per process.
var (
	deviceOnce sync.Once
	device     *oto.Context
	deviceErr  error
)

// Options describes the tone.
type Options struct {
	// Frequency is the pitch in Hz.
	Frequency float64
	// Volume is the initial amplitude in [0, 1].
	Volume float64
	// Duration is the tone length.
	Duration time.Duration
}

// Beeper plays a decaying sine tone.
type Beeper struct {
	// pcm is the pre-rendered tone.
	pcm []byte
	// wg tracks running playbacks.
	wg sync.WaitGroup
}

// New renders the tone. Zero options take the defaults.
func New(opts Options) *Beeper {
	if opts.Frequency <= 0 {
		opts.Frequency = DefaultFrequency
	}

	if opts.Volume <= 0 {
		opts.Volume = DefaultVolume
	}

	if opts.Duration <= 0 {
		opts.Duration = DefaultDuration
	}

	return &Beeper{
		pcm: Tone(opts.Frequency, opts.Volume, opts.Duration, SampleRate),
	}
}

// Play starts the tone and returns immediately. Failures are logged.
func (b *Beeper) Play(ctx context.Context) {
	b.wg.Add(1)

	go func() {
		defer b.wg.Done()

		if err := b.play(); err != nil {
			logger.WarnKV(ctx, "Audio failed", "error", err)
		}
	}()
}

// Wait blocks until every started tone finished.
func (b *Beeper) Wait() {
	b.wg.Wait()
}

func (b *Beeper) play() error {
	deviceOnce.Do(func() {
		var ready chan struct{}

		device, ready, deviceErr = oto.NewContext(&oto.NewContextOptions{
			SampleRate:   SampleRate,
			ChannelCount: 1,
			Format:       oto.FormatSignedInt16LE,
		})
		if deviceErr == nil {
			<-ready
		}
	})

	if deviceErr != nil {
		return fmt.Errorf("open audio device: %w", deviceErr)
	}

	player := device.NewPlayer(bytes.NewReader(b.pcm))
	player.Play()

	for player.IsPlaying() {
		time.Sleep(pollInterval)
	}

	if err := player.Close(); err != nil {
		return fmt.Errorf("close audio player: %w", err)
	}

	return nil
}

// Tone renders a mono signed 16-bit little-endian sine whose amplitude
// decays exponentially from volume to volume*1e-5 over duration.
func Tone(frequency, volume float64, duration time.Duration, sampleRate int) []byte {
	samples := int(duration.Seconds() * float64(sampleRate))
	if samples <= 0 {
		return nil
	}

	var (
		pcm   = make([]byte, samples*bytesPerSample)
		decay = math.Log(decayFloor) / float64(samples)
	)

	for i := range samples {
		t := float64(i) / float64(sampleRate)
		gain := volume * math.Exp(decay*float64(i))
		value := gain * math.Sin(2*math.Pi*frequency*t) * math.MaxInt16

		binary.LittleEndian.PutUint16(pcm[i*bytesPerSample:], uint16(int16(value)))
	}

	return pcm
}
