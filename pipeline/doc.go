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
Package pipeline runs protocols as a fixed sequence of steps.

A Pipeline is an explicit state machine: Pending, then Running for each step
in order, then Succeeded, or Failed at the first step that returns an error.
Steps get an ExecContext with the run's directory, the environment to add to
every program they spawn, the Runner that spawns them, and the logger.
*/
package pipeline
