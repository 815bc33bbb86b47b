/*
 * pdb.go, part of gomm.
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

//Package pdb reads and filters PDB files line by line. It only parses the
//fields it needs to decide whether to keep an atom, and writes the kept
//lines unchanged, except for the alternate location indicator, which is
//blanked when only the first alternate location is kept.
package pdb

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	mm "github.com/rmera/gomm"
)

//Atom holds the identification fields of an ATOM or HETATM record.
type Atom struct {
	Serial  int
	Name    string
	AltLoc  byte
	ResName string
	Chain   byte
	ResSeq  int
	ICode   byte //insertion code
	Het     bool
}

type residueKey struct {
	chain  byte
	resSeq int
	icode  byte
}

func (A *Atom) residue() residueKey { return residueKey{A.Chain, A.ResSeq, A.ICode} }

//ParseError is a line that could not be read.
type ParseError struct {
	Line int
	Msg  string
}

func (err *ParseError) Error() string {
	return fmt.Sprintf("PDB line %d: %s", err.Line, err.Msg)
}

func record(line string) string {
	if len(line) < 6 {
		return strings.TrimSpace(line)
	}
	return strings.TrimSpace(line[:6])
}

//ParseAtom reads the identification fields of an ATOM or HETATM line.
//The line must reach at least the residue number column.
func ParseAtom(line string) (*Atom, error) {
	rec := record(line)
	if rec != "ATOM" && rec != "HETATM" {
		return nil, fmt.Errorf("not an atom record: %q", rec)
	}
	if len(line) < 26 {
		return nil, fmt.Errorf("atom record too short (%d columns)", len(line))
	}
	A := &Atom{Het: rec == "HETATM"}
	var err error
	//Serials beyond 99999 are written in hexadecimal by some programs, so
	//a bad serial is not an error. Filters don't rely on it.
	A.Serial, err = strconv.Atoi(strings.TrimSpace(line[6:11]))
	if err != nil {
		A.Serial = -1
	}
	A.Name = strings.TrimSpace(line[12:16])
	A.AltLoc = line[16]
	A.ResName = strings.TrimSpace(line[17:20])
	A.Chain = line[21]
	A.ResSeq, err = strconv.Atoi(strings.TrimSpace(line[22:26]))
	if err != nil {
		return nil, fmt.Errorf("bad residue number %q", line[22:26])
	}
	A.ICode = ' '
	if len(line) > 26 {
		A.ICode = line[26]
	}
	return A, nil
}

var waterNames = map[string]bool{"HOH": true, "WAT": true, "H2O": true, "DOD": true, "TIP": true, "SOL": true}

//IsWater returns true if the atom belongs to a water residue.
func (A *Atom) IsWater() bool {
	return waterNames[A.ResName]
}

//Report counts what Clean did.
type Report struct {
	Kept          int
	Waters        int
	Hetero        int
	OtherChains   int
	OtherAltLocs  int
	DroppedOthers int //ANISOU and CONECT records of removed atoms
}

//Removed returns the number of atoms removed.
func (R *Report) Removed() int {
	return R.Waters + R.Hetero + R.OtherChains + R.OtherAltLocs
}

type cleaner struct {
	opt     mm.CleanOptions
	chains  map[byte]bool
	altlocs map[residueKey]byte //the first alternate location of each residue
	removed map[int]bool
	report  *Report
}

func newCleaner(opt mm.CleanOptions) *cleaner {
	c := &cleaner{opt: opt, altlocs: make(map[residueKey]byte), removed: make(map[int]bool), report: new(Report)}
	if len(opt.Chains) > 0 {
		c.chains = make(map[byte]bool)
		for _, v := range opt.Chains {
			if v != "" {
				c.chains[v[0]] = true
			}
		}
	}
	return c
}

//keep decides whether an atom is kept and updates the report.
func (c *cleaner) keep(A *Atom) bool {
	R := c.report
	switch {
	case A.IsWater():
		if c.opt.RemoveWaters {
			R.Waters++
			return false
		}
	case A.Het && c.opt.RemoveHetero:
		R.Hetero++
		return false
	}
	if c.chains != nil && !c.chains[A.Chain] {
		R.OtherChains++
		return false
	}
	if c.opt.FirstAltLoc && A.AltLoc != ' ' {
		first, ok := c.altlocs[A.residue()]
		if !ok {
			first = A.AltLoc
			c.altlocs[A.residue()] = first
		}
		if A.AltLoc != first {
			R.OtherAltLocs++
			return false
		}
	}
	R.Kept++
	return true
}

//refersRemoved returns true if an ANISOU or CONECT line refers to a removed atom.
func (c *cleaner) refersRemoved(rec, line string) bool {
	if len(c.removed) == 0 {
		return false
	}
	if rec == "ANISOU" {
		if len(line) < 11 {
			return false
		}
		n, err := strconv.Atoi(strings.TrimSpace(line[6:11]))
		return err == nil && c.removed[n]
	}
	//CONECT serials are in 5-column fields from column 7 on.
	for i := 6; i+5 <= len(line); i += 5 {
		n, err := strconv.Atoi(strings.TrimSpace(line[i : i+5]))
		if err == nil && c.removed[n] {
			return true
		}
	}
	return false
}

//Clean copies the PDB in r to w, leaving out the atoms the options
//exclude, and the TER, ANISOU and CONECT records that refer to them.
//It fails if nothing would be left.
func Clean(r io.Reader, w io.Writer, opt mm.CleanOptions) (*Report, error) {
	c := newCleaner(opt)
	out := bufio.NewWriter(w)
	scanner := bufio.NewScanner(r)
	for nline := 1; scanner.Scan(); nline++ {
		line := strings.TrimRight(scanner.Text(), "\r")
		rec := record(line)
		switch rec {
		case "ATOM", "HETATM":
			A, err := ParseAtom(line)
			if err != nil {
				return nil, &ParseError{Line: nline, Msg: err.Error()}
			}
			if !c.keep(A) {
				if A.Serial >= 0 {
					c.removed[A.Serial] = true
				}
				continue
			}
			if opt.FirstAltLoc && A.AltLoc != ' ' {
				line = line[:16] + " " + line[17:]
			}
		case "TER":
			//TER records carry the chain in column 22 when they are complete.
			if c.chains != nil && len(line) > 21 && line[21] != ' ' && !c.chains[line[21]] {
				continue
			}
		case "ANISOU", "CONECT":
			if c.refersRemoved(rec, line) {
				c.report.DroppedOthers++
				continue
			}
		}
		if _, err := out.WriteString(line + "\n"); err != nil {
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if c.report.Kept == 0 {
		return c.report, fmt.Errorf("no atoms left after cleaning (%d removed)", c.report.Removed())
	}
	return c.report, out.Flush()
}

//CleanFile cleans the PDB file in and writes the result to out.
//in and out can't be the same file.
func CleanFile(in, out string, opt mm.CleanOptions) (*Report, error) {
	fin, err := os.Open(in)
	if err != nil {
		return nil, err
	}
	defer fin.Close()
	fout, err := os.Create(out)
	if err != nil {
		return nil, err
	}
	R, err := Clean(fin, fout, opt)
	if err != nil {
		fout.Close()
		return R, fmt.Errorf("cleaning %s: %w", in, err)
	}
	return R, fout.Close()
}

//Count returns the number of atom records in the PDB file name.
func Count(name string) (int, error) {
	f, err := os.Open(name)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	n := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		switch record(scanner.Text()) {
		case "ATOM", "HETATM":
			n++
		}
	}
	return n, scanner.Err()
}
