package engine

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	mm "github.com/rmera/gomm"
	"github.com/rmera/gomm/paramfile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInspect(Te *testing.T) {
	F, err := paramfile.ReadFile("testdata/simulationParams.txt")
	require.NoError(Te, err)
	k, err := Inspect(F)
	require.NoError(Te, err)
	assert.Equal(Te, Simulate, k)

	G, err := paramfile.ReadFile("testdata/solvationParams.txt")
	require.NoError(Te, err)
	k, err = Inspect(G)
	require.NoError(Te, err)
	assert.Equal(Te, Prepare, k)

	_, err = Inspect(paramfile.New("empty"))
	assert.ErrorIs(Te, err, ErrUnknownKind)
}

func TestDecodeSimulate(Te *testing.T) {
	F, err := paramfile.ReadFile("testdata/simulationParams.txt")
	require.NoError(Te, err)
	S, err := DecodeSimulate(F)
	require.NoError(Te, err)
	assert.Equal(Te, mm.Langevin, S.Integrator)
	assert.Equal(Te, mm.PME, S.Nonbonded.Method)
	assert.Equal(Te, mm.HBonds, S.Constraints)
	assert.Equal(Te, 300.0, S.Temperature)
	assert.True(Te, S.Minimize)
	assert.True(Te, S.Barostat)
	assert.Equal(Te, 25, S.BarFreq)
	assert.Equal(Te, "0", S.GPUs)
	st, traj, log, minlog := S.Outputs()
	assert.Equal(Te, "1ake_prepared_system.pdb", st)
	assert.Equal(Te, "1ake_prepared_system.dcd", traj)
	assert.Equal(Te, MDLog, log)
	assert.Equal(Te, MinLog, minlog)
}

func TestDecodeMissingKey(Te *testing.T) {
	in := "inputFile :: a.pdb\nmFF :: amber14-all.xml\nwFF :: amber14/tip3p.xml\nnSteps :: 100\n" +
		"constraints :: HBonds\nnbMethod :: NoCutoff\nnbCutoff :: 1.0\nintegrator :: Langevin\n" +
		"stepSize :: 0.002\nfricCoef :: 1.0\naddMinimization :: False\naddBarostat :: False\nnTraj :: 10\n"
	F, err := paramfile.Parse(strings.NewReader(in), "simulationParams.txt")
	require.NoError(Te, err)
	_, err = DecodeSimulate(F)
	require.Error(Te, err)
	assert.ErrorIs(Te, err, paramfile.ErrMissingKey)
	assert.Contains(Te, err.Error(), "temperature")

	bad := strings.Replace(in, "integrator :: Langevin", "integrator :: Leapfrog", 1)
	F, err = paramfile.Parse(strings.NewReader(bad))
	require.NoError(Te, err)
	_, err = DecodeSimulate(F)
	assert.ErrorIs(Te, err, paramfile.ErrBadValue)
}

//Each integrator gets exactly its own arguments, in order, whatever
//else the configuration carries.
func TestIntegratorArgs(Te *testing.T) {
	want := map[mm.Integrator][]string{
		mm.Verlet:           {"stepSize"},
		mm.Langevin:         {"temperature", "fricCoef", "stepSize"},
		mm.LangevinMiddle:   {"temperature", "fricCoef", "stepSize"},
		mm.Brownian:         {"temperature", "fricCoef", "stepSize"},
		mm.NoseHoover:       {"temperature", "fricCoef", "stepSize"},
		mm.VariableVerlet:   {"errTol"},
		mm.VariableLangevin: {"temperature", "fricCoef", "errTol"},
	}
	for _, I := range mm.Integrators() {
		C := mm.DefaultSimulation()
		C.Input = "x.pdb"
		C.Integrator = I
		C.Temperature = 310
		C.Friction = 2
		C.CollisionFreq = 3
		C.StepSize = 0.002
		C.ErrorTolerance = 0.0005
		values := map[string]float64{"temperature": 310, "fricCoef": 2, "stepSize": 0.002, "errTol": 0.0005}
		if I == mm.NoseHoover {
			values["fricCoef"] = 3
		}
		F, err := C.Params()
		require.NoError(Te, err)
		S, err := DecodeSimulate(F)
		require.NoError(Te, err, I.String())
		args, err := IntegratorArgs(S)
		require.NoError(Te, err)
		var names []string
		for _, a := range args {
			names = append(names, a.Name)
			assert.NotZero(Te, a.Value, "%s %s", I, a.Name)
			assert.Equal(Te, values[a.Name], a.Value, "%s %s", I, a.Name)
		}
		if diff := cmp.Diff(want[I], names); diff != "" {
			Te.Errorf("%s arguments (-want +got):\n%s", I, diff)
		}
	}
}

func TestRenderSimulate(Te *testing.T) {
	F, err := paramfile.ReadFile("testdata/simulationParams.txt")
	require.NoError(Te, err)
	var buf bytes.Buffer
	kind, base, err := Render(&buf, F)
	require.NoError(Te, err)
	assert.Equal(Te, Simulate, kind)
	assert.Equal(Te, "1ake_prepared_system", base)
	out := buf.String()
	for _, want := range []string{
		`pdb = PDBFile("/runs/1ake_prepared_system.pdb")`,
		`nonbondedMethod=PME,`,
		`constraints=HBonds)`,
		`MonteCarloBarostat(1.0*bar, 300.0*kelvin, 25)`,
		`integrator = LangevinIntegrator(300.0*kelvin, 1.0/picosecond, 0.004*picoseconds)`,
		`properties['DeviceIndex'] = "0"`,
		`simulation.minimizeEnergy(tolerance=10.0*kilojoules_per_mole/nanometer, maxIterations=10000)`,
		`DCDReporter("1ake_prepared_system.dcd", 100)`,
		`StateDataReporter("md_log.txt", 100`,
		`StateDataReporter("min_log.txt", 100`,
		`simulation.step(10000)`,
		`with open("1ake_prepared_system.pdb", 'w') as f:`,
	} {
		assert.Contains(Te, out, want)
	}
}

func TestRenderSimulateVerlet(Te *testing.T) {
	C := mm.DefaultSimulation()
	C.Input = "sys.pdb"
	C.Integrator = mm.VariableVerlet
	C.Minimization.Enabled = false
	F, err := C.Params()
	require.NoError(Te, err)
	var buf bytes.Buffer
	_, _, err = Render(&buf, F)
	require.NoError(Te, err)
	out := buf.String()
	assert.Contains(Te, out, "integrator = VariableVerletIntegrator(0.001)")
	assert.NotContains(Te, out, "MonteCarloBarostat")
	assert.NotContains(Te, out, "minimizeEnergy")
	assert.NotContains(Te, out, "DeviceIndex")
}

func TestRenderPrepare(Te *testing.T) {
	F, err := paramfile.ReadFile("testdata/solvationParams.txt")
	require.NoError(Te, err)
	var buf bytes.Buffer
	kind, base, err := Render(&buf, F)
	require.NoError(Te, err)
	assert.Equal(Te, Prepare, kind)
	assert.Equal(Te, "1ake_prepared", base)
	out := buf.String()
	for _, want := range []string{
		`modeller.addHydrogens(forcefield, pH=7.0)`,
		`model="tip3p"`,
		`boxSize=Vec3(5.0, 5.0, 6.5)*nanometers`,
		`ionicStrength=0.15*molar, neutralize=True`,
		`positiveIon="Na+", negativeIon="Cl-")`,
		`with open("1ake_prepared_system.pdb", 'w') as f:`,
	} {
		assert.Contains(Te, out, want)
	}
	assert.NotContains(Te, out, "padding=")
}

func TestHandle(Te *testing.T) {
	if runtime.GOOS == "windows" {
		Te.Skip("needs a POSIX shell")
	}
	dir := Te.TempDir()
	fake := filepath.Join(dir, "fakepython")
	require.NoError(Te, os.WriteFile(fake, []byte("#!/bin/sh\necho \"driving $1\"\n"), 0755))

	F, err := paramfile.ReadFile("testdata/solvationParams.txt")
	require.NoError(Te, err)
	O := NewOpenMMHandle()
	O.SetDir(dir)
	O.SetCommand(fake)
	assert.Error(Te, O.Run(context.Background(), nil))
	require.NoError(Te, O.BuildInput(F))
	assert.Equal(Te, filepath.Join(dir, "1ake_prepared_driver.py"), O.Driver())
	assert.FileExists(Te, O.Driver())

	var echo bytes.Buffer
	require.NoError(Te, O.Run(context.Background(), &echo))
	assert.Equal(Te, "driving 1ake_prepared_driver.py\n", echo.String())
	log, err := os.ReadFile(O.Log())
	require.NoError(Te, err)
	assert.Equal(Te, echo.String(), string(log))

	O.SetCommand(filepath.Join(dir, "nonexistent"))
	err = O.Run(context.Background(), nil)
	var eerr *Error
	assert.True(Te, errors.As(err, &eerr))
}
