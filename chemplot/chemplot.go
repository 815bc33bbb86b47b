/*
 * chemplot.go, part of gomm.
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

//Package chemplot renders the engine logs of simulations as plots.
package chemplot

import (
	"fmt"

	"github.com/rmera/gomm/mdlog"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

//Series is a named engine log.
type Series struct {
	Name  string
	Table *mdlog.Table
}

//Size of the saved plots.
var (
	Width  = 6 * vg.Inch
	Height = 4 * vg.Inch
)

//Title returns the default title for a plot of the channel C of the trajectory
//of system. system can be empty.
func Title(system string, C mdlog.Channel) string {
	if system == "" {
		return "Trajectory " + C.Quantity()
	}
	return system + " trajectory " + C.Quantity()
}

func basicPlot(title string, C mdlog.Channel) *plot.Plot {
	p := plot.New()
	p.Title.Padding = 3 * vg.Millimeter
	p.Title.Text = title
	p.X.Label.Text = "Step"
	p.Y.Label.Text = C.Label()
	p.Add(plotter.NewGrid())
	return p
}

//ChannelPlot plots the channel C of the log T against the step, and saves
//the plot to filename. The format is taken from the extension (png, svg, pdf...).
func ChannelPlot(T *mdlog.Table, C mdlog.Channel, title, filename string) error {
	return ChannelPlots([]Series{{Table: T}}, C, title, filename)
}

//ChannelPlots plots the channel C of several logs together, each with a different
//color. Series with a name get an entry in the legend.
func ChannelPlots(series []Series, C mdlog.Channel, title, filename string) error {
	if len(series) == 0 {
		return fmt.Errorf("chemplot: nothing to plot")
	}
	p := basicPlot(title, C)
	for i, s := range series {
		if s.Table == nil || s.Table.Rows() == 0 {
			return fmt.Errorf("chemplot: series %d (%s) is empty", i, s.Name)
		}
		vals, err := s.Table.Column(C)
		if err != nil {
			return err
		}
		steps := s.Table.Steps()
		pts := make(plotter.XYs, len(vals))
		for j, v := range vals {
			pts[j].X = steps[j]
			pts[j].Y = v
		}
		l, err := plotter.NewLine(pts)
		if err != nil {
			return fmt.Errorf("chemplot: series %d (%s): %w", i, s.Name, err)
		}
		l.LineStyle.Width = vg.Points(1)
		l.LineStyle.Color = seriesColor(i, len(series))
		p.Add(l)
		if s.Name != "" {
			p.Legend.Add(s.Name, l)
		}
	}
	return p.Save(Width, Height, filename)
}
