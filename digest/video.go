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

package digest

import (
	"crypto/sha1"
	"encoding/binary"
	"fmt"
)

// Video is an implementation of the Digest interface for video output. Data
// for a frame is added with the Write() and WriteUint32() functions. The hash
// is updated when NewFrame() is called.
type Video struct {
	digest [sha1.Size]byte
	data   []byte
	frames int
}

// NewVideo is the preferred method of initialisation for the Video type.
func NewVideo() *Video {
	dig := &Video{}
	dig.ResetDigest()
	return dig
}

// Hash implements the Digest interface.
func (dig *Video) Hash() string {
	return fmt.Sprintf("%x", dig.digest)
}

// ResetDigest implements the Digest interface.
func (dig *Video) ResetDigest() {
	clear(dig.digest[:])
	dig.data = dig.data[:0]
	dig.frames = 0
}

// Frames returns the number of frames that have been folded into the digest.
func (dig *Video) Frames() int {
	return dig.frames
}

// Write adds data to the current frame. Implements the io.Writer interface.
func (dig *Video) Write(p []byte) (int, error) {
	dig.data = append(dig.data, p...)
	return len(p), nil
}

// WriteUint32 adds a single value to the current frame.
func (dig *Video) WriteUint32(v uint32) {
	dig.data = binary.BigEndian.AppendUint32(dig.data, v)
}

// NewFrame completes the current frame and chains the result with the hash of
// the previous frame.
func (dig *Video) NewFrame() {
	// chain fingerprints by hashing the value of the last fingerprint with
	// the frame data
	h := sha1.New()
	h.Write(dig.digest[:])
	h.Write(dig.data)
	copy(dig.digest[:], h.Sum(nil))

	dig.data = dig.data[:0]
	dig.frames++
}
