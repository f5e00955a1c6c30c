// This file is part of Retrace.
//
// Retrace is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Retrace is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Retrace.  If not, see <https://www.gnu.org/licenses/>.

// Package wavwriter records the cadence of presented frames as a WAV file.
// Every frame adds the number of samples that the audio system would
// produce for one frame at the current refresh rate. The first sample of
// each frame is a click so the frame boundaries can be seen in an audio
// editor.
//
// Audio data is buffered in memory in its entirety and written to disk when
// EndMixing() is called. It is therefore probably only suitable for testing
// purposes.
package wavwriter

import (
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/jetsetilly/retrace/curated"
	"github.com/jetsetilly/retrace/logger"
)

// SampleFreq is the sample rate of the WAV file.
const SampleFreq = 48000

const (
	bitDepth = 16
	click    = 0x7fff

	// the format value for PCM data in a WAV file
	pcmFormat = 1
)

// WavWriter implements the video.AudioSync interface.
type WavWriter struct {
	filename string
	buffer   []int

	// samples per frame at the current refresh rate. the fractional part is
	// carried over to the next frame
	perFrame float64
	carry    float64
}

// New is the preferred method of initialisation for the WavWriter type.
func New(filename string) (*WavWriter, error) {
	if filename == "" {
		return nil, curated.Errorf("wavwriter: no filename")
	}

	aw := &WavWriter{
		filename: filename,
		buffer:   make([]int, 0, SampleFreq),
	}
	aw.SetRefreshRate(0)

	return aw, nil
}

// SetRefreshRate implements the video.AudioSync interface. A rate of zero or
// less is treated as the NTSC field rate.
func (aw *WavWriter) SetRefreshRate(hz float32) {
	if hz <= 0 {
		hz = 59.94
	}
	aw.perFrame = SampleFreq / float64(hz)
	logger.Logf(logger.Allow, "wavwriter", "%.2f samples per frame", aw.perFrame)
}

// Frame adds the samples for one frame.
func (aw *WavWriter) Frame() {
	aw.carry += aw.perFrame
	n := int(aw.carry)
	aw.carry -= float64(n)
	if n == 0 {
		return
	}

	aw.buffer = append(aw.buffer, click)
	for range n - 1 {
		aw.buffer = append(aw.buffer, 0)
	}
}

// Samples returns the number of samples recorded.
func (aw *WavWriter) Samples() int {
	return len(aw.buffer)
}

// EndMixing writes the recorded samples to the file.
func (aw *WavWriter) EndMixing() (rerr error) {
	f, err := os.Create(aw.filename)
	if err != nil {
		return curated.Errorf("wavwriter: %v", err)
	}
	defer func() {
		err := f.Close()
		if err != nil && rerr == nil {
			rerr = curated.Errorf("wavwriter: %v", err)
		}
	}()

	enc := wav.NewEncoder(f, SampleFreq, bitDepth, 1, pcmFormat)

	buf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: 1,
			SampleRate:  SampleFreq,
		},
		Data:           aw.buffer,
		SourceBitDepth: bitDepth,
	}

	logger.Logf(logger.Allow, "wavwriter", "writing audio to %s", aw.filename)

	if err := enc.Write(buf); err != nil {
		return curated.Errorf("wavwriter: %v", err)
	}
	if err := enc.Close(); err != nil {
		return curated.Errorf("wavwriter: %v", err)
	}

	return nil
}
