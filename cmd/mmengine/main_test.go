package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunArgs(Te *testing.T) {
	var stderr bytes.Buffer
	err := run(context.Background(), nil, &stderr)
	assert.Error(Te, err)
	assert.Contains(Te, stderr.String(), "Usage")

	err = run(context.Background(), []string{"a.txt", "b.txt"}, &stderr)
	assert.Error(Te, err)
}

func TestRunRenderOnly(Te *testing.T) {
	dir := Te.TempDir()
	params := "inputFile :: 1ake.pdb\nmFF :: amber14-all.xml\nwFF :: amber14/tip3p.xml\nwModel :: tip3p\n" +
		"addH :: False\npadDist :: 1.0\nsaltConc :: 0.0\nneutralize :: True\ncationType :: Na+\nanionType :: Cl-\n"
	name := filepath.Join(dir, "solvationParams.txt")
	require.NoError(Te, os.WriteFile(name, []byte(params), 0644))

	wd, err := os.Getwd()
	require.NoError(Te, err)
	require.NoError(Te, os.Chdir(dir))
	defer os.Chdir(wd)

	var stderr bytes.Buffer
	require.NoError(Te, run(context.Background(), []string{"-render-only", "solvationParams.txt"}, &stderr))
	assert.FileExists(Te, filepath.Join(dir, "1ake_driver.py"))

	require.NoError(Te, os.WriteFile(name, []byte("inputFile :: 1ake.pdb\n"), 0644))
	assert.Error(Te, run(context.Background(), []string{"-render-only", "solvationParams.txt"}, &stderr))
}
