/*
 * dcd_write.go, part of gomm.
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

package dcd

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
)

//Writer writes a DCD trajectory, one frame at a time.
type Writer struct {
	w      io.Writer
	H      Header
	frames int
	c      io.Closer
}

//NewWriter writes the header H to w and returns a writer for
//its frames. H.Frames is the frame count written in the header, and Close
//sets it to the actual count, if w is also an io.WriteSeeker.
func NewWriter(w io.Writer, H Header) (*Writer, error) {
	if H.NAtoms <= 0 {
		return nil, &Error{Msg: fmt.Sprintf("can't write a trajectory with %d atoms", H.NAtoms)}
	}
	if len(H.Titles) == 0 {
		H.Titles = []string{"Created by gomm"}
	}
	W := &Writer{w: w, H: H}
	if err := W.writeHeader(); err != nil {
		return nil, err
	}
	return W, nil
}

//Create creates the file name and returns a writer for it.
func Create(name string, H Header) (*Writer, error) {
	f, err := os.Create(name)
	if err != nil {
		return nil, &Error{File: name, Msg: "unable to create file", Err: err}
	}
	W, err := NewWriter(f, H)
	if err != nil {
		f.Close()
		if derr, ok := err.(*Error); ok {
			derr.File = name
		}
		return nil, err
	}
	W.c = f
	return W, nil
}

func (W *Writer) write(data any) error {
	if err := binary.Write(W.w, W.H.endian(), data); err != nil {
		return &Error{Msg: "writing", Err: err}
	}
	return nil
}

func (W *Writer) writeHeader() error {
	H := &W.H
	e := H.endian()
	icntrl := make([]byte, 80)
	put := func(i int, v int32) { e.PutUint32(icntrl[4*i:], uint32(v)) }
	put(0, int32(H.Frames))
	put(1, int32(H.Start))
	put(2, int32(H.Interval))
	put(3, int32(H.Steps))
	put(9, int32(math.Float32bits(H.Delta)))
	if H.UnitCell {
		put(10, 1)
	}
	if H.FourDim {
		put(11, 1)
	}
	put(19, 24) //CHARMM version, as OpenMM writes it.
	titles := make([]byte, 0, maxTitle*len(H.Titles))
	for _, t := range H.Titles {
		b := make([]byte, maxTitle)
		copy(b, t)
		for i := len(t); i < maxTitle; i++ {
			b[i] = ' '
		}
		titles = append(titles, b...)
	}
	tsize := int32(4 + len(titles))
	for _, v := range []any{
		int32(84), []byte("CORD"), icntrl, int32(84),
		tsize, int32(len(H.Titles)), titles, tsize,
		int32(4), int32(H.NAtoms), int32(4),
	} {
		if err := W.write(v); err != nil {
			return err
		}
	}
	return nil
}

func (W *Writer) block(data []float32) error {
	size := int32(4 * len(data))
	if err := W.write(size); err != nil {
		return err
	}
	if err := W.write(data); err != nil {
		return err
	}
	return W.write(size)
}

//WriteFrame writes the coordinates x, y and z (and w, for 4-dimensional trajectories)
//of a frame. If the trajectory has unit cells, cell must contain the 6 cell parameters.
func (W *Writer) WriteFrame(cell []float64, coords ...[]float32) error {
	ncoords := 3
	if W.H.FourDim {
		ncoords = 4
	}
	if len(coords) != ncoords {
		return &Error{Msg: fmt.Sprintf("%d coordinate blocks for a frame that needs %d", len(coords), ncoords)}
	}
	for _, c := range coords {
		if len(c) != W.H.NAtoms {
			return &Error{Msg: fmt.Sprintf("%d coordinates don't match the trajectory size %d", len(c), W.H.NAtoms)}
		}
	}
	if W.H.UnitCell {
		if len(cell) != 6 {
			return &Error{Msg: "the unit cell needs 6 parameters"}
		}
		for _, v := range []any{int32(48), cell, int32(48)} {
			if err := W.write(v); err != nil {
				return err
			}
		}
	}
	for _, c := range coords {
		if err := W.block(c); err != nil {
			return err
		}
	}
	W.frames++
	return nil
}

//Frames returns the number of frames written so far.
func (W *Writer) Frames() int { return W.frames }

//Close updates the frame count in the header, if possible, and closes the
//file, if the writer created it.
func (W *Writer) Close() error {
	if s, ok := W.w.(io.WriteSeeker); ok {
		cur, err := s.Seek(0, io.SeekCurrent)
		if err == nil {
			_, err = s.Seek(8, io.SeekStart)
		}
		if err == nil {
			err = W.write(int32(W.frames))
		}
		if err == nil {
			_, err = s.Seek(cur, io.SeekStart)
		}
		if err != nil {
			return &Error{Msg: "updating the frame count", Err: err}
		}
	}
	if W.c != nil {
		return W.c.Close()
	}
	return nil
}
