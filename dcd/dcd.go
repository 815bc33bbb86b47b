/*
 * dcd.go, part of gomm.
 *
 *
 * Copyright 2024 Raul Mera <rmera{at}usach(dot)cl>
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 *
 */
/***Dedicated to the long life of the Ven. Khenpo Phuntzok Tenzin Rinpoche***/

package dcd

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strings"
)

const maxTitle = 80

var (
	ErrXPlor      = errors.New("X-plor DCD not supported")
	ErrFixedAtoms = errors.New("fixed atoms not supported")
	ErrTruncated  = errors.New("trajectory ends in the middle of a frame")
	ErrFormat     = errors.New("wrong DCD format")
)

//Error is a problem with a DCD file.
type Error struct {
	File string
	Msg  string
	Err  error
}

func (err *Error) Error() string {
	name := err.File
	if name == "" {
		name = "(stream)"
	}
	if err.Err == nil {
		return fmt.Sprintf("dcd file %s error: %s", name, err.Msg)
	}
	return fmt.Sprintf("dcd file %s error: %s: %v", name, err.Msg, err.Err)
}

func (err *Error) Unwrap() error { return err.Err }

//Header is the information at the beginning of a CHARMM/OpenMM DCD trajectory.
type Header struct {
	Frames   int     //NSET, the number of frames the writer claims to have written
	Start    int     //ISTART, step of the first frame
	Interval int     //NSAVC, steps between frames
	Steps    int     //NSTEP, total steps
	Delta    float32 //time step, in AKMA units
	NAtoms   int
	UnitCell bool //each frame starts with a unit cell record
	FourDim  bool
	Titles   []string
	Endian   binary.ByteOrder //little endian if nil
}

func (H *Header) endian() binary.ByteOrder {
	if H.Endian == nil {
		return binary.LittleEndian
	}
	return H.Endian
}

//Size returns the length, in bytes, of the header on disk.
func (H *Header) Size() int64 {
	titles := len(H.Titles)
	return 4 + 4 + 80 + 4 + //control block
		4 + 4 + int64(maxTitle*titles) + 4 + //titles
		4 + 4 + 4 //number of atoms
}

//FrameSize returns the length, in bytes, of one frame on disk.
func (H *Header) FrameSize() int64 {
	block := int64(4*H.NAtoms + 8)
	s := 3 * block
	if H.FourDim {
		s += block
	}
	if H.UnitCell {
		s += 4 + 48 + 4
	}
	return s
}

//headerReader reads Fortran records, keeping the first error.
type headerReader struct {
	r   io.Reader
	e   binary.ByteOrder
	err error
}

func (h *headerReader) read(n int) []byte {
	if h.err != nil {
		return nil
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(h.r, buf); err != nil {
		h.err = err
		return nil
	}
	return buf
}

func (h *headerReader) readInt32() int32 {
	b := h.read(4)
	if b == nil {
		return 0
	}
	return int32(h.e.Uint32(b))
}

//expect reads an int32 and fails if it is not val.
func (h *headerReader) expect(val int32, what string) {
	got := h.readInt32()
	if h.err == nil && got != val {
		h.err = fmt.Errorf("%w: %s is %d, expected %d", ErrFormat, what, got, val)
	}
}

//ReadHeader reads the header of a DCD trajectory from r. It supports
//big and little endian files written by CHARMM, NAMD (>=2.1) or OpenMM,
//without fixed atoms.
func ReadHeader(r io.Reader) (*Header, error) {
	first := make([]byte, 4)
	if _, err := io.ReadFull(r, first); err != nil {
		return nil, &Error{Msg: "reading header", Err: err}
	}
	H := new(Header)
	//The first thing in the file is an 84. If it isn't, the file is big endian.
	switch {
	case binary.LittleEndian.Uint32(first) == 84:
		H.Endian = binary.LittleEndian
	case binary.BigEndian.Uint32(first) == 84:
		H.Endian = binary.BigEndian
	default:
		return nil, &Error{Msg: "bad first record", Err: ErrFormat}
	}
	h := &headerReader{r: r, e: H.Endian}
	magic := h.read(4)
	icntrl := h.read(80)
	h.expect(84, "end of control block")
	if h.err != nil {
		return nil, &Error{Msg: "reading control block", Err: h.err}
	}
	if string(magic) != "CORD" {
		return nil, &Error{Msg: fmt.Sprintf("wrong magic number %q", magic), Err: ErrFormat}
	}
	at := func(i int) int32 { return int32(H.Endian.Uint32(icntrl[4*i:])) }
	//X-plor sets the last int to zero, CHARMM to its version number.
	if at(19) == 0 {
		return nil, &Error{Msg: "reading control block", Err: ErrXPlor}
	}
	if at(8) != 0 {
		return nil, &Error{Msg: fmt.Sprintf("%d fixed atoms", at(8)), Err: ErrFixedAtoms}
	}
	H.Frames = int(at(0))
	H.Start = int(at(1))
	H.Interval = int(at(2))
	H.Steps = int(at(3))
	H.Delta = math.Float32frombits(uint32(at(9)))
	H.UnitCell = at(10) != 0
	H.FourDim = at(11) == 1

	size := h.readInt32()
	ntitle := h.readInt32()
	if h.err == nil && (ntitle < 0 || size != 4+maxTitle*ntitle) {
		return nil, &Error{Msg: fmt.Sprintf("title block of %d bytes for %d titles", size, ntitle), Err: ErrFormat}
	}
	for i := 0; i < int(ntitle); i++ {
		t := h.read(maxTitle)
		H.Titles = append(H.Titles, strings.TrimRight(string(t), " \x00"))
	}
	h.expect(size, "end of title block")
	h.expect(4, "start of atom count")
	H.NAtoms = int(h.readInt32())
	h.expect(4, "end of atom count")
	if h.err != nil {
		return nil, &Error{Msg: "reading header", Err: h.err}
	}
	if H.NAtoms <= 0 {
		return nil, &Error{Msg: fmt.Sprintf("%d atoms", H.NAtoms), Err: ErrFormat}
	}
	return H, nil
}

//ReadHeaderFile reads the header of the DCD file name.
func ReadHeaderFile(name string) (*Header, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, &Error{File: name, Msg: "unable to open file", Err: err}
	}
	defer f.Close()
	H, err := ReadHeader(f)
	if err != nil {
		var derr *Error
		if errors.As(err, &derr) {
			derr.File = name
		}
		return nil, err
	}
	return H, nil
}

//CountFrames returns the header of the DCD file name and the number of complete
//frames it contains, obtained from the file size, so nothing but the header is read.
//If the file ends with an incomplete frame, the complete ones are returned together
//with an error wrapping ErrTruncated.
func CountFrames(name string) (int, *Header, error) {
	H, err := ReadHeaderFile(name)
	if err != nil {
		return 0, nil, err
	}
	info, err := os.Stat(name)
	if err != nil {
		return 0, H, &Error{File: name, Msg: "stat", Err: err}
	}
	body := info.Size() - H.Size()
	fs := H.FrameSize()
	n := int(body / fs)
	if rest := body % fs; rest != 0 {
		return n, H, &Error{File: name, Msg: fmt.Sprintf("%d trailing bytes after frame %d", rest, n), Err: ErrTruncated}
	}
	return n, H, nil
}
