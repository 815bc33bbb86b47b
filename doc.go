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

/***Dedicated to the long life of the Ven. Khenpo Phuntzok Tenzin Rinpoche***/

/*
Package mm holds the run configurations for the three gomm protocols:
receptor preparation, system preparation (solvation) and system simulation.

Each configuration is a plain struct with defaults (DefaultReceptor, DefaultSystem,
DefaultSimulation), a Validate method, and for the protocols that go through the
engine, a Params method that produces the parameter file the engine reads.
Only the options that apply to a given configuration are written, so, for instance,
a Verlet simulation file carries no temperature, and a file without
minimization carries no minimization tolerance.

Configurations can be loaded from YAML or HCL files with LoadFile.

	simulation {
	  input      = "1ake_system.pdb"
	  integrator = "Langevin"
	  steps      = 50000
	  barostat {
	    enabled = true
	  }
	}

The enumerations (Integrator, Constraints, NonbondedMethod, etc.) are
written and read by their labels, which are the names the engine uses.
*/
package mm
