/*
 * main_test.go, part of gomm.
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

package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	mm "github.com/rmera/gomm"
	"github.com/rmera/gomm/binder"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const mdLog = `#"Step","Potential Energy (kJ/mole)","Temperature (K)","Box Volume (nm^3)"
100,-41234.5,289.3,126.1
200,-41010.2,297.8,126.4
`

func script(Te *testing.T, dir, name, body string) string {
	if runtime.GOOS == "windows" {
		Te.Skip("needs a POSIX shell")
	}
	p := filepath.Join(dir, name)
	require.NoError(Te, os.WriteFile(p, []byte("#!/bin/sh\n"+body), 0755))
	return p
}

func TestUsage(Te *testing.T) {
	var stdout, stderr bytes.Buffer
	err := run(context.Background(), nil, &stdout, &stderr)
	var eerr *ExitError
	require.True(Te, errors.As(err, &eerr))
	assert.Equal(Te, 2, eerr.Code)
	assert.Contains(Te, stderr.String(), "Usage")

	err = run(context.Background(), []string{"dock", "x.yaml"}, &stdout, &stderr)
	require.True(Te, errors.As(err, &eerr))
	assert.Contains(Te, err.Error(), "unknown command")

	err = run(context.Background(), []string{"-env", "NOEQUALS", "system", "x.yaml"}, &stdout, &stderr)
	assert.Error(Te, err)
}

func TestSystemRun(Te *testing.T) {
	dir := Te.TempDir()
	require.NoError(Te, os.WriteFile(filepath.Join(dir, "1ake_prepared.pdb"), []byte("END\n"), 0644))
	cfg := filepath.Join(dir, "system.yaml")
	require.NoError(Te, os.WriteFile(cfg, []byte("system:\n  input: 1ake_prepared.pdb\n  box:\n    kind: Padding\n    padding: 1.2\n"), 0644))
	engine := script(Te, dir, "engine.sh", "test \"$GOMM_TEST\" = on || exit 3\necho END > 1ake_prepared_system.pdb\n")
	work := filepath.Join(dir, "runs")
	edges := filepath.Join(dir, "provenance.jsonl")

	var stdout, stderr bytes.Buffer
	args := []string{"-workdir", work, "-engine", engine, "-env", "GOMM_TEST=on", "-provenance", edges, "system", cfg}
	require.NoError(Te, run(context.Background(), args, &stdout, &stderr), stderr.String())
	fields := strings.Fields(stdout.String())
	require.Len(Te, fields, 3)
	assert.Equal(Te, "system", fields[0])
	assert.FileExists(Te, fields[2])
	runDir := filepath.Dir(fields[2])
	assert.True(Te, strings.HasPrefix(filepath.Base(runDir), "system_1ake_prepared_"))

	R, err := binder.ReadResult(runDir)
	require.NoError(Te, err)
	assert.Equal(Te, fields[1], R.ID.String())
	E, err := binder.ReadEdges(edges)
	require.NoError(Te, err)
	require.Len(Te, E, 1)
	assert.Equal(Te, filepath.Join(dir, "1ake_prepared.pdb"), E[0].To)

	params, err := os.ReadFile(filepath.Join(runDir, "solvationParams.txt"))
	require.NoError(Te, err)
	assert.Contains(Te, string(params), "padDist :: 1.2")

	//a simulation of the prepared system, with a failing engine.
	simcfg := filepath.Join(dir, "md.yaml")
	require.NoError(Te, os.WriteFile(simcfg, []byte("simulation:\n  steps: 100\n  trajectory_interval: 10\n"), 0644))
	failing := script(Te, dir, "failing.sh", "exit 4\n")
	stdout.Reset()
	err = run(context.Background(), []string{"-workdir", work, "-engine", failing, "-from", runDir, "simulate", simcfg}, &stdout, &stderr)
	require.Error(Te, err)
	assert.Contains(Te, err.Error(), "exited with code 4")
	assert.Empty(Te, stdout.String())

	err = run(context.Background(), []string{"receptor", simcfg}, &stdout, &stderr)
	assert.Contains(Te, err.Error(), "simulation configuration")
}

func TestViewArchive(Te *testing.T) {
	dir := Te.TempDir()
	name := filepath.Join(dir, "md_log.txt")
	require.NoError(Te, os.WriteFile(name, []byte(mdLog), 0644))
	var stdout, stderr bytes.Buffer
	png := filepath.Join(dir, "temperature.png")
	require.NoError(Te, run(context.Background(), []string{"view", "-channel", "temperature", "-o", png, name}, &stdout, &stderr))
	assert.Contains(Te, stdout.String(), "mean=293.5500")
	assert.FileExists(Te, png)

	err := run(context.Background(), []string{"view", "-channel", "pressure", name}, &stdout, &stderr)
	assert.Error(Te, err)

	stdout.Reset()
	require.NoError(Te, run(context.Background(), []string{"archive", dir}, &stdout, &stderr))
	assert.Equal(Te, name+".zst\n", stdout.String())
	stdout.Reset()
	require.NoError(Te, run(context.Background(), []string{"view", name + ".zst"}, &stdout, &stderr))
	assert.Contains(Te, stdout.String(), "Potential energy")

	assert.Error(Te, run(context.Background(), []string{"archive", Te.TempDir()}, &stdout, &stderr))
}

func TestConfig(Te *testing.T) {
	dir := Te.TempDir()
	cfg := filepath.Join(dir, "md.hcl")
	src := "simulation {\n  input = \"1ake_system.pdb\"\n  integrator = \"VariableVerlet\"\n  barostat {\n    enabled = true\n  }\n}\n"
	require.NoError(Te, os.WriteFile(cfg, []byte(src), 0644))
	var stdout, stderr bytes.Buffer
	require.NoError(Te, run(context.Background(), []string{"config", cfg}, &stdout, &stderr))
	out := stdout.String()
	assert.Contains(Te, out, "integrator: VariableVerlet")
	assert.Contains(Te, out, "steps: 10000")
	assert.Contains(Te, out, filepath.Join(dir, "1ake_system.pdb"))

	want, err := mm.LoadFile(cfg)
	require.NoError(Te, err)
	got, err := mm.LoadYAML(strings.NewReader(out))
	require.NoError(Te, err)
	assert.Equal(Te, want, got)

	require.NoError(Te, os.WriteFile(cfg, []byte("simulation {\n  steps = 0\n}\n"), 0644))
	assert.Error(Te, run(context.Background(), []string{"config", cfg}, &stdout, &stderr))
	err = run(context.Background(), []string{"config"}, &stdout, &stderr)
	var eerr *ExitError
	require.True(Te, errors.As(err, &eerr))
	assert.Equal(Te, 2, eerr.Code)
}

func TestSystemName(Te *testing.T) {
	dir := Te.TempDir()
	log := filepath.Join(dir, "md_log.txt")
	assert.Equal(Te, "md_log", systemName(log))
	assert.Equal(Te, "md_log", systemName(log+".zst"))
	R := &binder.Result{Kind: binder.KindSimulation, Dir: dir, Structure: "1ake_prepared_system.pdb"}
	require.NoError(Te, R.Write())
	assert.Equal(Te, "1ake_prepared_system", systemName(log))
}
