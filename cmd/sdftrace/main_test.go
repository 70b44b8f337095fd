package main

import (
	"bytes"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazu/sdftrace/pkg/config"
	"github.com/chazu/sdftrace/pkg/session"
)

// execute runs the root command with args and returns stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func writeScene(t *testing.T, source string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scene.lisp")
	require.NoError(t, os.WriteFile(path, []byte(source), 0o644))
	return path
}

func TestRenderCommand(t *testing.T) {
	scene := writeScene(t, "(union :s 0.1 (sphere :r 0.8) (translate :t [0.6 0 0] (cube)))")
	out := filepath.Join(t.TempDir(), "frame.png")

	stdout, err := execute(t, "render", scene, "-o", out, "--width", "48", "--height", "32", "--rotate", "0.3,0.2")
	require.NoError(t, err)
	assert.Contains(t, stdout, "48x32")

	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 48, img.Bounds().Dx())
	assert.Equal(t, 32, img.Bounds().Dy())
}

func TestRenderCommandReportsLine(t *testing.T) {
	scene := writeScene(t, "(sphere)\n(nope 1)\n")
	_, err := execute(t, "render", scene, "-o", filepath.Join(t.TempDir(), "x.png"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), scene)
}

func TestMeshCommand(t *testing.T) {
	scene := writeScene(t, "(union (sphere) (translate :t [3 0 0] (sphere)))")
	dir := t.TempDir()

	stdout, err := execute(t, "mesh", scene, "-o", filepath.Join(dir, "part.stl"), "--cells", "20", "--split")
	require.NoError(t, err)
	assert.Contains(t, stdout, "part-1.stl")
	assert.Contains(t, stdout, "part-2.stl")

	for _, name := range []string{"part-1.stl", "part-2.stl"} {
		info, err := os.Stat(filepath.Join(dir, name))
		require.NoError(t, err)
		// 80-byte header, triangle count, 50 bytes per triangle.
		assert.Zero(t, (info.Size()-84)%50, name)
		assert.Greater(t, info.Size(), int64(84), name)
	}
}

func TestMeshCommandEmptyScene(t *testing.T) {
	scene := writeScene(t, ";; nothing yet\n")
	_, err := execute(t, "mesh", scene, "-o", filepath.Join(t.TempDir(), "empty.stl"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nothing to export")
}

func TestFuncsCommand(t *testing.T) {
	stdout, err := execute(t, "funcs")
	require.NoError(t, err)
	assert.Contains(t, stdout, "sphere{r=1}")
	assert.Contains(t, stdout, "cube{dim=[1, 1, 1], s=0}")
	assert.Contains(t, stdout, "TAU")
}

func TestPair(t *testing.T) {
	p, err := pair("rotate", []float64{0.5, -1})
	require.NoError(t, err)
	assert.Equal(t, [2]float64{0.5, -1}, p)

	_, err = pair("rotate", []float64{1})
	assert.Error(t, err)
}

func TestRefreshSerializesRenders(t *testing.T) {
	scene := writeScene(t, "(sphere :r 0.7)")
	dir := t.TempDir()
	out := filepath.Join(dir, "live.png")

	cfg := config.Default()
	cfg.Width, cfg.Height = 24, 24
	s, err := session.New(cfg)
	require.NoError(t, err)

	var stderr bytes.Buffer
	r := &refresher{session: s, output: out, stderr: &stderr}

	// Overlapping saves: every refresh must finish with a whole image.
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.refresh(scene)
		}()
	}
	wg.Wait()

	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 24, img.Bounds().Dx())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files must not be left behind")
}
