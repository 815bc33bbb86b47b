/*
 * mdlog.go, part of gomm.
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

package mdlog

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"
)

//Channel is one of the quantities the engine reports along the trajectory.
type Channel int

const (
	Energy Channel = iota + 1
	Temperature
	Volume
)

var channelNames = []string{"", "energy", "temperature", "volume"}

var channelLabels = []string{"Step", "Potential energy (kJ/mol)", "Temperature (K)", "Volume (nm^3)"}

var channelQuantities = []string{"step", "potential energy", "temperature", "volume"}

func (C Channel) String() string {
	if C < Energy || C > Volume {
		return fmt.Sprintf("Channel(%d)", int(C))
	}
	return channelNames[C]
}

//Label returns the name and unit of the channel, for plots.
func (C Channel) Label() string {
	if C < Energy || C > Volume {
		return C.String()
	}
	return channelLabels[C]
}

//Quantity returns the name of the quantity in the channel, in lower case.
func (C Channel) Quantity() string {
	if C < Energy || C > Volume {
		return C.String()
	}
	return channelQuantities[C]
}

//Column is the column of the log holding the channel. Column 0 is the step.
func (C Channel) Column() int { return int(C) }

//ParseChannel returns the channel with the name s.
func ParseChannel(s string) (Channel, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i := Energy; i <= Volume; i++ {
		if channelNames[i] == s {
			return i, nil
		}
	}
	return 0, fmt.Errorf("unknown channel %q, use one of %s", s, strings.Join(channelNames[1:], ", "))
}

//Columns is the number of columns in an engine log: step, potential energy,
//temperature and volume.
const Columns = 4

//Table is the content of an engine log, one row per report.
type Table struct {
	data *mat.Dense
}

//Rows returns the number of reports in the table.
func (T *Table) Rows() int {
	if T.data == nil {
		return 0
	}
	r, _ := T.data.Dims()
	return r
}

//Steps returns the step of each report.
func (T *Table) Steps() []float64 {
	return mat.Col(nil, 0, T.data)
}

//Column returns the values of the channel C.
func (T *Table) Column(C Channel) ([]float64, error) {
	if C < Energy || C > Volume {
		return nil, fmt.Errorf("invalid channel %d", int(C))
	}
	return mat.Col(nil, C.Column(), T.data), nil
}

//ParseError is a line of a log that could not be read.
type ParseError struct {
	Line int
	Msg  string
}

func (err *ParseError) Error() string {
	return fmt.Sprintf("engine log, line %d: %s", err.Line, err.Msg)
}

//Read reads an engine log from r. Lines starting with # and blank
//lines are skipped. Other lines must have Columns comma-separated numbers.
func Read(r io.Reader) (*Table, error) {
	var raw []float64
	s := bufio.NewScanner(r)
	n := 0
	for s.Scan() {
		n++
		line := strings.TrimSpace(s.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, ",")
		if len(fields) != Columns {
			return nil, &ParseError{Line: n, Msg: fmt.Sprintf("%d fields, expected %d", len(fields), Columns)}
		}
		for _, f := range fields {
			v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
			if err != nil {
				return nil, &ParseError{Line: n, Msg: err.Error()}
			}
			raw = append(raw, v)
		}
	}
	if err := s.Err(); err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("engine log has no reports")
	}
	return &Table{data: mat.NewDense(len(raw)/Columns, Columns, raw)}, nil
}

//ReadFile reads the engine log name. Files ending in .zst or .gz
//are decompressed.
func ReadFile(name string) (*Table, error) {
	r, err := Open(name)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	T, err := Read(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return T, nil
}
