/*
 * summary.go, part of gomm.
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
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

//Stats describes the values of a channel along a trajectory.
type Stats struct {
	Channel Channel
	N       int
	Mean    float64
	StdDev  float64
	Min     float64
	Max     float64
}

func (S Stats) String() string {
	return fmt.Sprintf("%s: n=%d mean=%.4f std=%.4f min=%.4f max=%.4f", S.Channel.Label(), S.N, S.Mean, S.StdDev, S.Min, S.Max)
}

//Summary returns the statistics of the channel C in T. The standard
//deviation is the unbiased one, and 0 for a single report.
func Summary(T *Table, C Channel) (Stats, error) {
	v, err := T.Column(C)
	if err != nil {
		return Stats{}, err
	}
	S := Stats{Channel: C, N: len(v), Min: floats.Min(v), Max: floats.Max(v)}
	if len(v) == 1 {
		S.Mean = v[0]
		return S, nil
	}
	S.Mean, S.StdDev = stat.MeanStdDev(v, nil)
	return S, nil
}
