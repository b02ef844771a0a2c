package audio

import (
	"encoding/binary"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func sample(pcm []byte, i int) int16 {
	return int16(binary.LittleEndian.Uint16(pcm[i*bytesPerSample:]))
}

// TestTone_Shape checks length, silence at t=0, peak bound and decay.
func TestTone_Shape(t *testing.T) {
	t.Parallel()

	const volume = 0.5

	pcm := Tone(DefaultFrequency, volume, DefaultDuration, SampleRate)
	samples := int(DefaultDuration.Seconds() * SampleRate)

	require.Len(t, pcm, samples*bytesPerSample)
	require.Zero(t, sample(pcm, 0))

	var head, tail int16

	for i := range samples {
		v := sample(pcm, i)
		if v < 0 {
			v = -v
		}

		require.LessOrEqual(t, float64(v), volume*math.MaxInt16+1)

		switch {
		case i < samples/10:
			head = max(head, v)
		case i > samples*9/10:
			tail = max(tail, v)
		}
	}

	peak := volume * math.MaxInt16

	require.Greater(t, head, int16(peak/2))
	require.Less(t, tail, int16(peak/100))
}

// TestTone_Empty verifies a non-positive duration renders nothing.
func TestTone_Empty(t *testing.T) {
	t.Parallel()

	require.Empty(t, Tone(DefaultFrequency, DefaultVolume, 0, SampleRate))
}

// TestNew_Defaults verifies zero options render the default tone.
func TestNew_Defaults(t *testing.T) {
	t.Parallel()

	b := New(Options{})
	require.Len(t, b.pcm, int(DefaultDuration.Seconds()*SampleRate)*bytesPerSample)

	b = New(Options{Duration: 100 * time.Millisecond})
	require.Len(t, b.pcm, SampleRate/10*bytesPerSample)
}
