/*
 * binder_test.go, part of gomm.
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

package binder

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	mm "github.com/rmera/gomm"
	"github.com/rmera/gomm/dcd"
	"github.com/rmera/gomm/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(Te *testing.T, dir string, names ...string) {
	for _, n := range names {
		require.NoError(Te, os.WriteFile(filepath.Join(dir, n), []byte("END\n"), 0644))
	}
}

func trajectory(Te *testing.T, name string, frames int) {
	W, err := dcd.Create(name, dcd.Header{NAtoms: 2})
	require.NoError(Te, err)
	for i := 0; i < frames; i++ {
		require.NoError(Te, W.WriteFrame(nil, []float32{0, 1}, []float32{0, 1}, []float32{0, 1}))
	}
	require.NoError(Te, W.Close())
}

func simulation() *mm.Simulation {
	S := mm.DefaultSimulation()
	S.Input = "/runs/system/1ake_prepared_system.pdb"
	S.Steps = 1000
	S.TrajInterval = 100
	S.StepSize = 0.002
	return S
}

func TestFramesAndTime(Te *testing.T) {
	assert.Equal(Te, 10, Frames(1000, 100))
	assert.Equal(Te, 3, Frames(1000, 300))
	assert.Equal(Te, 0, Frames(1000, 0))
	S := simulation()
	assert.InDelta(Te, 0.02, ElapsedTime(10, S), 1e-12)
	S.Integrator = mm.VariableLangevin
	assert.InDelta(Te, 0.02, ElapsedTime(10, S), 1e-12)

	R := new(Result)
	R.SetTrajectory(S)
	assert.True(Te, R.Traj.Variable)
	assert.Equal(Te, 0.002, R.Traj.StepSize)
	assert.InDelta(Te, 0.02, R.Traj.Time, 1e-12)
	S.Integrator = mm.Verlet
	R.SetTrajectory(S)
	assert.False(Te, R.Traj.Variable)
}

func TestBindSimulation(Te *testing.T) {
	dir := Te.TempDir()
	S := simulation()
	touch(Te, dir, "1ake_prepared_system.pdb", "md_log.txt", "min_log.txt")
	trajectory(Te, filepath.Join(dir, "1ake_prepared_system.dcd"), 10)
	var logs bytes.Buffer
	B := New(nil, logging.New("debug", "text", &logs))
	R, err := B.BindSimulation(context.Background(), dir, S)
	require.NoError(Te, err)
	assert.Equal(Te, KindSimulation, R.Kind)
	assert.Equal(Te, "1ake_prepared_system.dcd", R.Trajectory)
	assert.Equal(Te, "min_log.txt", R.MinLog)
	assert.Equal(Te, 10, R.Traj.Frames)
	assert.InDelta(Te, 0.02, R.Traj.Time, 1e-12)
	assert.Equal(Te, "amber14-all.xml", R.MainFF)
	assert.NotContains(Te, logs.String(), "mismatch")

	back, err := ReadResult(dir)
	require.NoError(Te, err)
	assert.Equal(Te, R.ID, back.ID)
	assert.Equal(Te, R.Traj, back.Traj)
	assert.Equal(Te, filepath.Join(dir, "md_log.txt"), back.Path(back.Log))
}

func TestBindFrameMismatchWarns(Te *testing.T) {
	dir := Te.TempDir()
	S := simulation()
	S.Minimization.Enabled = false
	touch(Te, dir, "1ake_prepared_system.pdb", "md_log.txt")
	trajectory(Te, filepath.Join(dir, "1ake_prepared_system.dcd"), 9)
	var logs bytes.Buffer
	B := New(nil, logging.New("info", "text", &logs))
	R, err := B.BindSimulation(context.Background(), dir, S)
	require.NoError(Te, err)
	assert.Empty(Te, R.MinLog)
	assert.Contains(Te, logs.String(), "trajectory frame count mismatch")
}

func TestBindMissing(Te *testing.T) {
	dir := Te.TempDir()
	S := simulation()
	touch(Te, dir, "1ake_prepared_system.pdb")
	_, err := New(nil, nil).BindSimulation(context.Background(), dir, S)
	var merr *MissingOutputError
	require.True(Te, errors.As(err, &merr))
	assert.Equal(Te, []string{"1ake_prepared_system.dcd", "md_log.txt", "min_log.txt"}, merr.Files)
	_, err = os.Stat(filepath.Join(dir, ResultFile))
	assert.True(Te, os.IsNotExist(err), "nothing is bound on failure")

	_, err = New(nil, nil).BindStructure(context.Background(), dir, &mm.Receptor{Input: "/data/1ake.pdb"})
	require.True(Te, errors.As(err, &merr))
	assert.Equal(Te, []string{"1ake_prepared.pdb"}, merr.Files)
}

func TestBindSystemRecordsEdge(Te *testing.T) {
	dir := Te.TempDir()
	S := mm.DefaultSystem()
	S.Input = "/runs/receptor/1ake_prepared.pdb"
	touch(Te, dir, "1ake_prepared_system.pdb")
	edges := filepath.Join(Te.TempDir(), "provenance.jsonl")
	rec, err := OpenRecorder(context.Background(), edges)
	require.NoError(Te, err)
	B := New(rec, nil)
	B.Now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }
	R, err := B.BindSystem(context.Background(), dir, S)
	require.NoError(Te, err)
	require.NoError(Te, rec.Close())
	assert.Equal(Te, "amber14/tip3p.xml", R.WaterFF)
	assert.Nil(Te, R.Traj)

	E, err := ReadEdges(edges)
	require.NoError(Te, err)
	require.Len(Te, E, 1)
	assert.Equal(Te, DerivedFrom, E[0].Relation)
	assert.Equal(Te, R.ID, E[0].From)
	assert.Equal(Te, S.Input, E[0].To)
	assert.Equal(Te, R.Created, E[0].Created)
	assert.NoError(Te, E[0].Verify())
	E[0].To = "/elsewhere.pdb"
	assert.Error(Te, E[0].Verify())
}

func TestFileRecorderConcurrent(Te *testing.T) {
	name := filepath.Join(Te.TempDir(), "edges.jsonl")
	rec, err := NewFileRecorder(name)
	require.NoError(Te, err)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			E, err := NewEdge(&Result{Kind: KindStructure, Source: "in.pdb"}, time.Now())
			if assert.NoError(Te, err) {
				assert.NoError(Te, rec.Record(context.Background(), E))
			}
		}()
	}
	wg.Wait()
	require.NoError(Te, rec.Close())
	E, err := ReadEdges(name)
	require.NoError(Te, err)
	assert.Len(Te, E, 8)
}

//fakeDB records the statements it gets.
type fakeDB struct {
	queries []string
	args    [][]any
}

func (f *fakeDB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	f.queries = append(f.queries, query)
	f.args = append(f.args, args)
	return nil, nil
}

func TestPGRecorder(Te *testing.T) {
	db := &fakeDB{}
	P, err := NewPGRecorder(context.Background(), db)
	require.NoError(Te, err)
	E, err := NewEdge(&Result{Kind: KindSimulation, Source: "sys.pdb"}, time.Now())
	require.NoError(Te, err)
	require.NoError(Te, P.Record(context.Background(), E))
	require.NoError(Te, P.Close())
	require.Len(Te, db.queries, 2)
	assert.Contains(Te, db.queries[0], "CREATE TABLE IF NOT EXISTS provenance_edges")
	assert.Contains(Te, db.queries[1], "INSERT INTO provenance_edges")
	assert.Equal(Te, []any{E.ID, DerivedFrom, E.From, "simulation", "sys.pdb", E.Created, E.Integrity}, db.args[1])
}

//Edges keep microseconds, the precision of a TIMESTAMPTZ column, so an edge
//read back from the database still verifies.
func TestEdgeMicrosecondCreated(Te *testing.T) {
	created := time.Date(2024, 5, 2, 10, 30, 0, 123456789, time.FixedZone("CLT", -4*3600))
	E, err := NewEdge(&Result{Kind: KindSystem, Source: "1ake_prepared.pdb"}, created)
	require.NoError(Te, err)
	assert.Equal(Te, 123456000, E.Created.Nanosecond())
	assert.Equal(Te, time.UTC, E.Created.Location())

	stored := *E
	stored.Created = time.UnixMicro(E.Created.UnixMicro()).In(time.FixedZone("CLT", -4*3600))
	assert.NoError(Te, stored.Verify())
}
