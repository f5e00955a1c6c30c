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

package prefs

import (
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"
)

// Value represents the actual Go preference value.
type Value any

// Pref is the interface implemented by all preference types.
type Pref interface {
	fmt.Stringer
	Set(value Value) error
	Get() Value
	Reset() error
}

type hooks struct {
	pre  atomic.Value // func(Value) error
	post atomic.Value // func(Value) error
}

func (h *hooks) runPre(v Value) error {
	if f, ok := h.pre.Load().(func(Value) error); ok && f != nil {
		return f(v)
	}
	return nil
}

func (h *hooks) runPost(v Value) error {
	if f, ok := h.post.Load().(func(Value) error); ok && f != nil {
		return f(v)
	}
	return nil
}

// SetHookPre sets the function to be called before the value is changed. The
// value is not changed if the function returns an error.
func (h *hooks) SetHookPre(f func(value Value) error) {
	h.pre.Store(f)
}

// SetHookPost sets the function to be called after the value is changed.
func (h *hooks) SetHookPost(f func(value Value) error) {
	h.post.Store(f)
}

// Bool implements a boolean type in the prefs system.
type Bool struct {
	hooks
	value atomic.Value // bool
}

func (p *Bool) String() string {
	return fmt.Sprintf("%v", p.Get().(bool))
}

// Set new value to Bool type. New value must be of type bool or string. A
// string value of anything other than "true" (case insensitive) will set the
// value to false.
func (p *Bool) Set(v Value) error {
	var nv bool
	switch v := v.(type) {
	case bool:
		nv = v
	case string:
		nv = strings.ToLower(strings.TrimSpace(v)) == "true"
	default:
		return fmt.Errorf("prefs: cannot convert %T to prefs.Bool", v)
	}

	if err := p.runPre(nv); err != nil {
		return err
	}
	p.value.Store(nv)
	return p.runPost(nv)
}

// Get returns the raw pref value.
func (p *Bool) Get() Value {
	ov := p.value.Load()
	if ov == nil {
		return false
	}
	return ov.(bool)
}

// Reset sets the boolean value to false.
func (p *Bool) Reset() error {
	return p.Set(false)
}

// String implements a string type in the prefs system.
type String struct {
	hooks
	value atomic.Value // string
}

func (p *String) String() string {
	return p.Get().(string)
}

// Set new value to String type. New value of any type is converted to a
// string.
func (p *String) Set(v Value) error {
	nv := strings.TrimSpace(fmt.Sprintf("%v", v))

	if err := p.runPre(nv); err != nil {
		return err
	}
	p.value.Store(nv)
	return p.runPost(nv)
}

// Get returns the raw pref value.
func (p *String) Get() Value {
	ov := p.value.Load()
	if ov == nil {
		return ""
	}
	return ov.(string)
}

// Reset sets the string value to the empty string.
func (p *String) Reset() error {
	return p.Set("")
}

// Int implements a signed integer type in the prefs system.
type Int struct {
	hooks
	value atomic.Value // int
}

func (p *Int) String() string {
	return fmt.Sprintf("%d", p.Get().(int))
}

// Set new value to Int type. New value can be an int or string.
func (p *Int) Set(v Value) error {
	var nv int
	switch v := v.(type) {
	case int64:
		nv = int(v)
	case int32:
		nv = int(v)
	case int:
		nv = v
	case string:
		var err error
		nv, err = strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("prefs: cannot convert %T to prefs.Int: %w", v, err)
		}
	default:
		return fmt.Errorf("prefs: cannot convert %T to prefs.Int", v)
	}

	if err := p.runPre(nv); err != nil {
		return err
	}
	p.value.Store(nv)
	return p.runPost(nv)
}

// Get returns the raw pref value.
func (p *Int) Get() Value {
	ov := p.value.Load()
	if ov == nil {
		return 0
	}
	return ov.(int)
}

// Reset sets the int value to zero.
func (p *Int) Reset() error {
	return p.Set(0)
}

// Float implements a floating point type in the prefs system.
type Float struct {
	hooks
	value atomic.Value // float64
}

func (p *Float) String() string {
	return fmt.Sprintf("%.3f", p.Get().(float64))
}

// Set new value to Float type. New value can be a float64, float32, int or
// string.
func (p *Float) Set(v Value) error {
	var nv float64
	switch v := v.(type) {
	case float64:
		nv = v
	case float32:
		nv = float64(v)
	case int:
		nv = float64(v)
	case string:
		var err error
		nv, err = strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return fmt.Errorf("prefs: cannot convert %T to prefs.Float: %w", v, err)
		}
	default:
		return fmt.Errorf("prefs: cannot convert %T to prefs.Float", v)
	}

	if err := p.runPre(nv); err != nil {
		return err
	}
	p.value.Store(nv)
	return p.runPost(nv)
}

// Get returns the raw pref value.
func (p *Float) Get() Value {
	ov := p.value.Load()
	if ov == nil {
		return float64(0.0)
	}
	return ov.(float64)
}

// Reset sets the float value to zero.
func (p *Float) Reset() error {
	return p.Set(0.0)
}
