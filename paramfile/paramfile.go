/*
 * paramfile.go, part of gomm.
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

package paramfile

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

//Separator splits the key from the value in each line.
const Separator = "::"

//Line is one option in a parameter file.
type Line struct {
	Key   string
	Value string
}

func (L Line) String() string {
	return L.Key + " " + Separator + " " + L.Value
}

//File is an ordered set of key :: value lines with unique keys.
//The zero value is not usable, use New, Parse or ReadFile.
type File struct {
	name  string
	lines []Line
	index map[string]int
}

//New returns an empty parameter file. The name is only used
//in error messages, and can be empty.
func New(name string) *File {
	F := new(File)
	F.name = name
	F.index = make(map[string]int)
	return F
}

//Name returns the name the file was created or read with.
func (F *File) Name() string {
	return F.name
}

//Add appends a new option at the end of the file. It fails if the key
//is already present or if either the key or the value can't be represented
//in the format.
func (F *File) Add(key, value string) error {
	if key == "" || key != strings.TrimSpace(key) || strings.Contains(key, Separator) || strings.ContainsAny(key, "\r\n") {
		return &Error{File: F.name, Key: key, Err: ErrBadKey}
	}
	if strings.ContainsAny(value, "\r\n") {
		return &Error{File: F.name, Key: key, Err: ErrBadValue, msg: "value spans more than one line"}
	}
	if _, ok := F.index[key]; ok {
		return &Error{File: F.name, Key: key, Err: ErrDuplicateKey}
	}
	F.index[key] = len(F.lines)
	F.lines = append(F.lines, Line{Key: key, Value: value})
	return nil
}

//Len returns the number of options in the file.
func (F *File) Len() int {
	return len(F.lines)
}

//Has returns true if key is present in the file.
func (F *File) Has(key string) bool {
	_, ok := F.index[key]
	return ok
}

//Keys returns the keys in the file, in order.
func (F *File) Keys() []string {
	ret := make([]string, 0, len(F.lines))
	for _, v := range F.lines {
		ret = append(ret, v.Key)
	}
	return ret
}

//Lines returns a copy of the lines of the file, in order.
func (F *File) Lines() []Line {
	ret := make([]Line, len(F.lines))
	copy(ret, F.lines)
	return ret
}

//Map returns the key->value mapping of the file.
func (F *File) Map() map[string]string {
	ret := make(map[string]string, len(F.lines))
	for _, v := range F.lines {
		ret[v.Key] = v.Value
	}
	return ret
}

//Get returns the value for key, or an error wrapping ErrMissingKey.
func (F *File) Get(key string) (string, error) {
	i, ok := F.index[key]
	if !ok {
		return "", &Error{File: F.name, Key: key, Err: ErrMissingKey}
	}
	return F.lines[i].Value, nil
}

//Float returns the value for key parsed as a float64.
func (F *File) Float(key string) (float64, error) {
	s, err := F.Get(key)
	if err != nil {
		return 0, err
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, &Error{File: F.name, Key: key, Err: ErrBadValue, msg: err.Error()}
	}
	return f, nil
}

//Int returns the value for key parsed as an int.
func (F *File) Int(key string) (int, error) {
	s, err := F.Get(key)
	if err != nil {
		return 0, err
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0, &Error{File: F.name, Key: key, Err: ErrBadValue, msg: err.Error()}
	}
	return i, nil
}

//Bool returns the value for key parsed as a boolean. Only
//"True" and "False" are accepted, as written by FormatBool.
func (F *File) Bool(key string) (bool, error) {
	s, err := F.Get(key)
	if err != nil {
		return false, err
	}
	switch s {
	case "True":
		return true, nil
	case "False":
		return false, nil
	}
	return false, &Error{File: F.name, Key: key, Err: ErrBadValue, msg: fmt.Sprintf("%q is not True or False", s)}
}

//Floats returns the value for key parsed as a comma-separated list of float64.
func (F *File) Floats(key string) ([]float64, error) {
	s, err := F.Get(key)
	if err != nil {
		return nil, err
	}
	fields := strings.Split(s, ",")
	ret := make([]float64, 0, len(fields))
	for _, v := range fields {
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return nil, &Error{File: F.name, Key: key, Err: ErrBadValue, msg: err.Error()}
		}
		ret = append(ret, f)
	}
	return ret, nil
}

//WriteTo writes the file to w, one "key :: value" line per option.
func (F *File) WriteTo(w io.Writer) (int64, error) {
	var buf bytes.Buffer
	for _, v := range F.lines {
		buf.WriteString(v.String())
		buf.WriteByte('\n')
	}
	return buf.WriteTo(w)
}

//WriteFile writes the file to the given path, replacing anything
//that was there.
func (F *File) WriteFile(name string) error {
	out, err := os.Create(name)
	if err != nil {
		return err
	}
	if _, err := F.WriteTo(out); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

//Parse reads a parameter file from r. Each non-blank line is split on the first
//separator and both sides are trimmed. Duplicated keys are an error.
func Parse(r io.Reader, name ...string) (*File, error) {
	fname := ""
	if len(name) > 0 {
		fname = name[0]
	}
	F := New(fname)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for nline := 1; scanner.Scan(); nline++ {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		key, value, found := strings.Cut(line, Separator)
		if !found {
			return nil, &Error{File: fname, Line: nline, Err: ErrMalformed, msg: fmt.Sprintf("no %q in %q", Separator, line)}
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		if key == "" {
			return nil, &Error{File: fname, Line: nline, Err: ErrMalformed, msg: "empty key"}
		}
		if err := F.Add(key, value); err != nil {
			err.(*Error).Line = nline
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading parameter file %s: %w", fname, err)
	}
	return F, nil
}

//ReadFile opens and parses the parameter file name.
func ReadFile(name string) (*File, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f, name)
}

//FormatFloat writes v the way the engine side expects floats:
//the shortest representation that reads back to v, always with
//a decimal point unless it needs an exponent (5.0, 0.004, 1e-05).
func FormatFloat(v float64) string {
	a := math.Abs(v)
	if math.IsInf(v, 0) || math.IsNaN(v) || (a != 0 && (a < 1e-4 || a >= 1e16)) {
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

//FormatBool writes b as True or False.
func FormatBool(b bool) string {
	if b {
		return "True"
	}
	return "False"
}
