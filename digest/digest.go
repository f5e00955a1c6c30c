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

// Package digest is used to create sha-1 hashes of the video output. The
// hashes are chained so that the hash for a frame depends on every frame that
// came before it. Two runs of the pipeline that produce the same sequence of
// frames will therefore produce the same hash.
//
// The digest is used by the recorder device to compare the output of the
// pipeline against known values.
package digest

// Digest implementations compute a value that can be used to decide whether
// two instances of a pipeline run have produced the same output.
type Digest interface {
	Hash() string
	ResetDigest()
}
