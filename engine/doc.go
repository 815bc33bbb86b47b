/*
 * doc.go, part of gomm.
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

/*
Package engine is the engine side of the parameter file contract.

It reads a parameter file written by the gomm protocols, rebuilds the typed
values it carries, and renders a driver program for the OpenMM engine with
every value as a literal. A file with a water model (wModel) asks for a system
preparation, a file with an integrator, for a simulation.

The OpenMMHandle writes the driver to the working directory and runs the
interpreter on it. The mmengine command is a thin wrapper over the handle.
*/
package engine
