package paramfile

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(Te *testing.T) {
	F := New("sim")
	require.NoError(Te, F.Add("inputFile", "/data/1ake_system.pdb"))
	require.NoError(Te, F.Add("mFF", "amber14-all.xml"))
	require.NoError(Te, F.Add("boxSize", "5.0, 5.0, 5.0"))
	require.NoError(Te, F.Add("odd", "a :: b"))
	require.NoError(Te, F.Add("empty", ""))

	var buf bytes.Buffer
	_, err := F.WriteTo(&buf)
	require.NoError(Te, err)

	G, err := Parse(&buf)
	require.NoError(Te, err)
	if diff := cmp.Diff(F.Map(), G.Map()); diff != "" {
		Te.Errorf("round trip changed the mapping (-want +got):\n%s", diff)
	}
	assert.Equal(Te, F.Keys(), G.Keys())
}

func TestWriteFormat(Te *testing.T) {
	F := New("")
	require.NoError(Te, F.Add("nSteps", "1000"))
	require.NoError(Te, F.Add("addBarostat", FormatBool(false)))
	var buf bytes.Buffer
	_, err := F.WriteTo(&buf)
	require.NoError(Te, err)
	assert.Equal(Te, "nSteps :: 1000\naddBarostat :: False\n", buf.String())
}

func TestParseWhitespace(Te *testing.T) {
	in := "  key1::value1\n\nkey2    ::   two words  \r\n\tkey3 :: x::y\n"
	F, err := Parse(strings.NewReader(in))
	require.NoError(Te, err)
	assert.Equal(Te, map[string]string{"key1": "value1", "key2": "two words", "key3": "x::y"}, F.Map())
}

func TestParseErrors(Te *testing.T) {
	cases := []struct {
		name string
		in   string
		want error
		line int
	}{
		{"no separator", "a :: 1\nnonsense\n", ErrMalformed, 2},
		{"empty key", " :: 1\n", ErrMalformed, 1},
		{"duplicate", "temperature :: 300.0\npressure :: 1.0\ntemperature :: 300.0\n", ErrDuplicateKey, 3},
	}
	for _, c := range cases {
		Te.Run(c.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(c.in), "p.txt")
			require.Error(t, err)
			assert.True(t, errors.Is(err, c.want), "got %v", err)
			var perr *Error
			require.True(t, errors.As(err, &perr))
			assert.Equal(t, c.line, perr.Line)
			assert.Equal(t, "p.txt", perr.File)
		})
	}
}

func TestAddRejects(Te *testing.T) {
	F := New("")
	assert.ErrorIs(Te, F.Add("", "x"), ErrBadKey)
	assert.ErrorIs(Te, F.Add(" padded", "x"), ErrBadKey)
	assert.ErrorIs(Te, F.Add("a::b", "x"), ErrBadKey)
	assert.ErrorIs(Te, F.Add("multi", "one\ntwo"), ErrBadValue)
	require.NoError(Te, F.Add("k", "v"))
	assert.ErrorIs(Te, F.Add("k", "w"), ErrDuplicateKey)
	assert.Equal(Te, 1, F.Len())
}

func TestTypedGetters(Te *testing.T) {
	in := "nSteps :: 1000\nstepSize :: 0.004\naddMinimization :: True\nboxSize :: 5.0, 4.5,6\nbad :: maybe\n"
	F, err := Parse(strings.NewReader(in))
	require.NoError(Te, err)

	n, err := F.Int("nSteps")
	require.NoError(Te, err)
	assert.Equal(Te, 1000, n)

	f, err := F.Float("stepSize")
	require.NoError(Te, err)
	assert.Equal(Te, 0.004, f)

	b, err := F.Bool("addMinimization")
	require.NoError(Te, err)
	assert.True(Te, b)

	box, err := F.Floats("boxSize")
	require.NoError(Te, err)
	assert.Equal(Te, []float64{5, 4.5, 6}, box)

	_, err = F.Bool("bad")
	assert.ErrorIs(Te, err, ErrBadValue)
	_, err = F.Float("fricCoef")
	assert.ErrorIs(Te, err, ErrMissingKey)
	assert.Contains(Te, err.Error(), "fricCoef")
}

func TestFormatFloat(Te *testing.T) {
	cases := map[float64]string{
		5:       "5.0",
		0.004:   "0.004",
		300:     "300.0",
		1e-5:    "1e-05",
		10:      "10.0",
		-2.5:    "-2.5",
		0:       "0.0",
		1000000: "1000000.0",
		1e16:    "1e+16",
	}
	for in, want := range cases {
		assert.Equal(Te, want, FormatFloat(in), "FormatFloat(%v)", in)
	}
}

func TestWriteReadFile(Te *testing.T) {
	name := filepath.Join(Te.TempDir(), "simulationParams.txt")
	F := New(name)
	require.NoError(Te, F.Add("integrator", "Verlet"))
	require.NoError(Te, F.WriteFile(name))
	G, err := ReadFile(name)
	require.NoError(Te, err)
	v, err := G.Get("integrator")
	require.NoError(Te, err)
	assert.Equal(Te, "Verlet", v)
	assert.Equal(Te, name, G.Name())
}
