/*
 * MIT License
 *
 * Copyright (c) 2020 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

package msg

// GroupMaxLength is the maximum length, in bytes, of a RADIO/DISH group
// name (spec.md §3, "Message").
const GroupMaxLength = 255

// groupInlineLength is the threshold under which a group name is stored
// inline in the Message rather than in a refcounted heap object.
const groupInlineLength = 15

// Group is a RADIO/DISH group name. Short names are stored by value;
// long names are stored behind a shared, refcounted pointer so that
// copying a Message does not re-allocate the group name.
type Group struct {
	short [groupInlineLength]byte
	n     uint8
	long  *longGroup
}

type longGroup struct {
	name string
	refs int32
}

// NewGroup builds a Group from a name, choosing inline or heap storage
// depending on its length.
func NewGroup(name string) (Group, error) {
	var g Group
	if len(name) > GroupMaxLength {
		return g, ErrorGroupTooLong.Error()
	}
	if len(name) <= groupInlineLength {
		g.n = uint8(len(name))
		copy(g.short[:], name)
		return g, nil
	}
	g.long = &longGroup{name: name, refs: 1}
	return g, nil
}

// Name returns the group name.
func (g Group) Name() string {
	if g.long != nil {
		return g.long.name
	}
	return string(g.short[:g.n])
}

// IsZero reports whether the group carries no name.
func (g Group) IsZero() bool {
	return g.long == nil && g.n == 0
}

// dup bumps the refcount of a heap-backed group name; inline groups are
// copied by value and need no bookkeeping.
func (g Group) dup() Group {
	if g.long != nil {
		g.long.refs++
	}
	return g
}
