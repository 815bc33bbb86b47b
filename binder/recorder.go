/*
 * recorder.go, part of gomm.
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
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
)

//DerivedFrom is the relation between a result and the input it was produced from.
const DerivedFrom = "derived_from"

//Edge is a provenance record: the result From derives from the input To.
type Edge struct {
	ID        uuid.UUID `json:"id"`
	Relation  string    `json:"relation"`
	From      uuid.UUID `json:"from"`
	FromKind  Kind      `json:"from_kind"`
	To        string    `json:"to"`
	Created   time.Time `json:"created"`
	Integrity string    `json:"integrity_sha256"`
}

//NewEdge returns a derived_from edge from the result R to its source.
func NewEdge(R *Result, created time.Time) (*Edge, error) {
	E := &Edge{
		ID:       uuid.New(),
		Relation: DerivedFrom,
		From:     R.ID,
		FromKind: R.Kind,
		To:       R.Source,
		Created:  created.UTC().Truncate(time.Microsecond), //TIMESTAMPTZ precision
	}
	var err error
	E.Integrity, err = E.ComputeIntegrity()
	if err != nil {
		return nil, err
	}
	return E, nil
}

//ComputeIntegrity returns the hex SHA-256 digest of the JSON encoding of
//all the fields of E but the digest itself.
func (E *Edge) ComputeIntegrity() (string, error) {
	type integrityInput struct {
		ID       uuid.UUID `json:"id"`
		Relation string    `json:"relation"`
		From     uuid.UUID `json:"from"`
		FromKind Kind      `json:"from_kind"`
		To       string    `json:"to"`
		Created  time.Time `json:"created"`
	}
	blob, err := json.Marshal(integrityInput{E.ID, E.Relation, E.From, E.FromKind, E.To, E.Created.UTC()})
	if err != nil {
		return "", fmt.Errorf("marshal integrity: %w", err)
	}
	sum := sha256.Sum256(blob)
	return hex.EncodeToString(sum[:]), nil
}

//Verify checks that the digest in E matches its fields.
func (E *Edge) Verify() error {
	sum, err := E.ComputeIntegrity()
	if err != nil {
		return err
	}
	if sum != E.Integrity {
		return fmt.Errorf("edge %s: integrity digest mismatch", E.ID)
	}
	return nil
}

//Recorder stores provenance edges.
type Recorder interface {
	Record(ctx context.Context, E *Edge) error
	Close() error
}

//NopRecorder drops the edges.
type NopRecorder struct{}

func (NopRecorder) Record(context.Context, *Edge) error { return nil }
func (NopRecorder) Close() error                        { return nil }

//FileRecorder appends edges, as JSON lines, to a file. It can be shared by
//concurrent runs.
type FileRecorder struct {
	mu sync.Mutex
	f  *os.File
}

//NewFileRecorder opens (or creates) the file name for appending.
func NewFileRecorder(name string) (*FileRecorder, error) {
	f, err := os.OpenFile(name, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}
	return &FileRecorder{f: f}, nil
}

func (F *FileRecorder) Record(ctx context.Context, E *Edge) error {
	b, err := json.Marshal(E)
	if err != nil {
		return err
	}
	F.mu.Lock()
	defer F.mu.Unlock()
	_, err = F.f.Write(append(b, '\n'))
	return err
}

func (F *FileRecorder) Close() error {
	F.mu.Lock()
	defer F.mu.Unlock()
	return F.f.Close()
}

//ReadEdges reads the edges in a file written by a FileRecorder.
func ReadEdges(name string) ([]*Edge, error) {
	b, err := os.ReadFile(name)
	if err != nil {
		return nil, err
	}
	var ret []*Edge
	for i, line := range strings.Split(string(b), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		E := new(Edge)
		if err := json.Unmarshal([]byte(line), E); err != nil {
			return nil, fmt.Errorf("%s:%d: %w", name, i+1, err)
		}
		ret = append(ret, E)
	}
	return ret, nil
}

//Execer runs SQL statements. *sql.DB and *sql.Tx are Execers.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

const createEdges = `CREATE TABLE IF NOT EXISTS provenance_edges (
	edge_id UUID PRIMARY KEY,
	relation TEXT NOT NULL,
	from_id UUID NOT NULL,
	from_kind TEXT NOT NULL,
	to_ref TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	integrity_sha256 TEXT NOT NULL
)`

const insertEdge = `INSERT INTO provenance_edges (
	edge_id,
	relation,
	from_id,
	from_kind,
	to_ref,
	created_at,
	integrity_sha256
) VALUES ($1,$2,$3,$4,$5,$6,$7)`

//PGRecorder inserts edges in the provenance_edges table of a PostgreSQL database.
type PGRecorder struct {
	db     Execer
	closer func() error
}

//NewPGRecorder returns a recorder that uses db, creating the table if needed.
func NewPGRecorder(ctx context.Context, db Execer) (*PGRecorder, error) {
	if _, err := db.ExecContext(ctx, createEdges); err != nil {
		return nil, fmt.Errorf("create provenance table: %w", err)
	}
	return &PGRecorder{db: db}, nil
}

//OpenPGRecorder connects, through pgx, to the database at url.
func OpenPGRecorder(ctx context.Context, url string) (*PGRecorder, error) {
	db, err := sql.Open("pgx", url)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	P, err := NewPGRecorder(ctx, db)
	if err != nil {
		db.Close()
		return nil, err
	}
	P.closer = db.Close
	return P, nil
}

func (P *PGRecorder) Record(ctx context.Context, E *Edge) error {
	_, err := P.db.ExecContext(ctx, insertEdge,
		E.ID, E.Relation, E.From, string(E.FromKind), E.To, E.Created.UTC(), E.Integrity)
	if err != nil {
		return fmt.Errorf("insert provenance edge: %w", err)
	}
	return nil
}

func (P *PGRecorder) Close() error {
	if P.closer == nil {
		return nil
	}
	return P.closer()
}

//OpenRecorder returns the recorder for target: nothing for an empty target,
//a PGRecorder for postgres:// or postgresql:// URLs, and a FileRecorder otherwise.
func OpenRecorder(ctx context.Context, target string) (Recorder, error) {
	switch {
	case target == "":
		return NopRecorder{}, nil
	case strings.HasPrefix(target, "postgres://"), strings.HasPrefix(target, "postgresql://"):
		return OpenPGRecorder(ctx, target)
	}
	return NewFileRecorder(target)
}
