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

package device

// Matrix is a 4x4 matrix stored in column-major order, which is the order
// expected by OpenGL.
type Matrix [16]float32

// Identity returns the identity matrix.
func Identity() Matrix {
	return Matrix{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Ortho returns an orthographic projection matrix. The same as the
// glOrtho() function.
func Ortho(left, right, bottom, top, near, far float32) Matrix {
	return Matrix{
		2 / (right - left), 0, 0, 0,
		0, 2 / (top - bottom), 0, 0,
		0, 0, -2 / (far - near), 0,
		-(right + left) / (right - left), -(top + bottom) / (top - bottom), -(far + near) / (far - near), 1,
	}
}

// Mul returns the result of m x n.
func (m Matrix) Mul(n Matrix) Matrix {
	var r Matrix
	for c := range 4 {
		for row := range 4 {
			var v float32
			for k := range 4 {
				v += m[k*4+row] * n[c*4+k]
			}
			r[c*4+row] = v
		}
	}
	return r
}

// Transform applies the matrix to the point (x, y, 0, 1) and returns the
// resulting x and y.
func (m Matrix) Transform(x, y float32) (float32, float32) {
	return m[0]*x + m[4]*y + m[12], m[1]*x + m[5]*y + m[13]
}
