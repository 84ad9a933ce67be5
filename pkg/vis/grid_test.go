package vis

import (
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderGridRanksByScore(t *testing.T) {
	cfg := GridConfig{TileWidth: 2, TileHeight: 2, PerRow: 2}

	// Three 2x2 tiles with distinct fill values; the anomalous one has the
	// highest score and must land top-left, tinted red.
	X := [][]float64{
		{100, 100, 100, 100},
		{200, 200, 200, 200},
		{50, 50, 50, 50},
	}
	anomalous := []bool{false, true, false}
	scores := []float64{0.4, 0.9, 0.2}

	img, err := RenderGrid(X, anomalous, scores, cfg)
	require.NoError(t, err)

	// 3 tiles, 2 per row -> 2x2 grid of 2x2 tiles.
	assert.Equal(t, 4, img.Bounds().Dx())
	assert.Equal(t, 4, img.Bounds().Dy())

	// Top-left tile: sample 1, red channel 200, green/blue zeroed.
	assert.Equal(t, color.RGBA{R: 200, G: 0, B: 0, A: 255}, img.RGBAAt(0, 0))
	// Next tile right: sample 0, gray 100.
	assert.Equal(t, color.RGBA{R: 100, G: 100, B: 100, A: 255}, img.RGBAAt(2, 0))
	// Second grid row: sample 2, gray 50.
	assert.Equal(t, color.RGBA{R: 50, G: 50, B: 50, A: 255}, img.RGBAAt(0, 2))
}

func TestRenderGridValidation(t *testing.T) {
	cfg := GridConfig{TileWidth: 2, TileHeight: 2, PerRow: 2}

	t.Run("empty", func(t *testing.T) {
		_, err := RenderGrid(nil, nil, nil, cfg)
		assert.Error(t, err)
	})

	t.Run("length mismatch", func(t *testing.T) {
		_, err := RenderGrid([][]float64{{1, 2, 3, 4}}, []bool{true}, nil, cfg)
		assert.Error(t, err)
	})

	t.Run("wrong tile size", func(t *testing.T) {
		_, err := RenderGrid([][]float64{{1, 2}}, []bool{false}, []float64{0.5}, cfg)
		assert.Error(t, err)
	})
}

func TestClampByte(t *testing.T) {
	assert.Equal(t, uint8(0), clampByte(-4))
	assert.Equal(t, uint8(255), clampByte(300))
	assert.Equal(t, uint8(128), clampByte(128.7))
}

func TestWriteGridPNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "grid.png")
	cfg := GridConfig{TileWidth: 1, TileHeight: 1, PerRow: 2}

	err := WriteGridPNG(path,
		[][]float64{{10}, {250}},
		[]bool{false, true},
		[]float64{0.3, 0.8},
		cfg,
	)
	require.NoError(t, err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestWriteScoreChartPNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scores.png")

	scores := make([]float64, 50)
	for i := range scores {
		scores[i] = float64(50-i) / 50
	}

	require.NoError(t, WriteScoreChartPNG(path, scores, 0.6))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())

	assert.Error(t, WriteScoreChartPNG(path, nil, 0.5))
}
