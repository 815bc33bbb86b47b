/*
 * errors.go, part of gomm.
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
	"errors"
	"fmt"
)

var (
	ErrMissingKey   = errors.New("missing key")
	ErrDuplicateKey = errors.New("duplicate key")
	ErrMalformed    = errors.New("malformed line")
	ErrBadKey       = errors.New("invalid key")
	ErrBadValue     = errors.New("invalid value")
)

//Error is returned by all the functions in this package. It carries
//the file, line and key involved, when known. Use errors.Is with the
//Err* variables to tell the kinds apart.
type Error struct {
	File string
	Line int
	Key  string
	Err  error
	msg  string
}

func (err *Error) Error() string {
	where := err.File
	if where == "" {
		where = "parameter file"
	}
	if err.Line > 0 {
		where = fmt.Sprintf("%s:%d", where, err.Line)
	}
	ret := fmt.Sprintf("%s: %s", where, err.Err)
	if err.Key != "" {
		ret = fmt.Sprintf("%s %q", ret, err.Key)
	}
	if err.msg != "" {
		ret = ret + ": " + err.msg
	}
	return ret
}

func (err *Error) Unwrap() error { return err.Err }
