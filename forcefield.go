/*
 * forcefield.go, part of gomm.
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

package mm

import (
	"fmt"
	"strings"
)

//FFFamily is the family of the main force field.
type FFFamily int

const (
	Amber14 FFFamily = iota
	CHARMM36
	OlderFF
)

var ffFamilyLabels = []string{"Amber14", "CHARMM36", "Old"}

func (F FFFamily) String() string { return label(ffFamilyLabels, int(F), "FFFamily") }

func ParseFFFamily(s string) (FFFamily, error) {
	i, err := parseLabel(ffFamilyLabels, s, "force field family")
	return FFFamily(i), err
}

func (F FFFamily) MarshalText() ([]byte, error) { return []byte(F.String()), nil }

//The main and water choices available for each family.
var (
	AmberMain   = []string{"All", "protein.ff14SB", "protein.ff15ipq", "DNA.OL15", "DNA.bsc1", "RNA.OL3", "lipid17"}
	AmberWater  = []string{"SPCE", "OPC", "OPC3", "tip3p", "tip3pfb", "tip4pew", "tip4pfb"}
	CHARMMWater = []string{"Water", "SPCE", "tip3p-pme-b", "tip3p-pme-f", "tip4pew", "tip4p2005", "tip5p", "tip5pew"}
	OldMain     = []string{"amber96", "amber99sb", "amber99sbildn", "amber99sbnmr", "amber03", "amber10", "charmm_polar_2013"}
	OldWater    = []string{"tip3p", "tip3pfb", "tip4pew", "tip4pfb", "tip5p", "spce", "swm4ndp", "opc", "opc3"}
)

//ForceField selects the pair of definition files used to build the
//engine's force field. Main is ignored for CHARMM36, which has a single
//main file.
type ForceField struct {
	Family FFFamily `yaml:"family"`
	Main   string   `yaml:"main"`
	Water  string   `yaml:"water"`
}

//DefaultForceField returns Amber14 (all) with TIP3P water.
func DefaultForceField() ForceField {
	return ForceField{Family: Amber14, Main: "All", Water: "tip3p"}
}

func (F ForceField) choices() (main, water []string) {
	switch F.Family {
	case Amber14:
		return AmberMain, AmberWater
	case CHARMM36:
		return nil, CHARMMWater
	case OlderFF:
		return OldMain, OldWater
	}
	return nil, nil
}

//Validate checks that the main and water choices exist for the family.
func (F ForceField) Validate() error {
	mains, waters := F.choices()
	if waters == nil {
		return fmt.Errorf("unknown force field family %d", int(F.Family))
	}
	if mains != nil {
		if _, err := parseLabel(mains, F.Main, F.Family.String()+" main force field"); err != nil {
			return err
		}
	}
	if _, err := parseLabel(waters, F.Water, F.Family.String()+" water force field"); err != nil {
		return err
	}
	return nil
}

//canonical returns the choice in list that matches s, with the list's spelling.
func canonical(list []string, s string) string {
	i, err := parseLabel(list, s, "")
	if err != nil {
		return s
	}
	return list[i]
}

//Files returns the names of the main and water definition files
//for the force field, as the engine expects them.
func (F ForceField) Files() (main, water string) {
	mains, waters := F.choices()
	w := canonical(waters, F.Water)
	switch F.Family {
	case Amber14:
		m := canonical(mains, F.Main)
		if m == "All" || m == "" {
			main = "amber14-all.xml"
		} else {
			main = fmt.Sprintf("amber14/%s.xml", m)
		}
		water = fmt.Sprintf("amber14/%s.xml", strings.ToLower(w))
	case CHARMM36:
		main = "charmm36.xml"
		water = fmt.Sprintf("charmm36/%s.xml", strings.ToLower(w))
	case OlderFF:
		main = canonical(mains, F.Main) + ".xml"
		water = w + ".xml"
	}
	return main, water
}

//WaterModel guesses the solvent model name from the water force field file.
func WaterModel(waterFile string) string {
	switch {
	case strings.Contains(waterFile, "spce"):
		return "spce"
	case strings.Contains(waterFile, "tip4p"):
		return "tip4pew"
	case strings.Contains(waterFile, "tip5p"):
		return "tip5p"
	}
	return "tip3p"
}
