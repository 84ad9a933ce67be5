// Package vis renders ranked detection results for visual inspection.
package vis

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"sort"
)

// GridConfig controls pixel-grid geometry. Defaults match the 28x28 digits
// tiles, 50 per row.
type GridConfig struct {
	TileWidth  int
	TileHeight int
	PerRow     int
}

// DefaultGridConfig returns the digits tile geometry.
func DefaultGridConfig() GridConfig {
	return GridConfig{TileWidth: 28, TileHeight: 28, PerRow: 50}
}

// RenderGrid ranks samples by descending anomaly score and pastes each row
// as a grayscale tile into one image, left to right, top to bottom, so a
// good detector pushes the red (truly anomalous) tiles to the top. Feature
// values are treated as 0-255 pixel intensities; each row must have
// TileWidth*TileHeight values.
func RenderGrid(X [][]float64, anomalous []bool, scores []float64, cfg GridConfig) (*image.RGBA, error) {
	n := len(X)
	if n == 0 {
		return nil, fmt.Errorf("vis: no samples to render")
	}
	if len(anomalous) != n || len(scores) != n {
		return nil, fmt.Errorf("vis: %d samples but %d labels and %d scores", n, len(anomalous), len(scores))
	}
	if got := len(X[0]); got != cfg.TileWidth*cfg.TileHeight {
		return nil, fmt.Errorf("vis: rows have %d values, tile needs %d", got, cfg.TileWidth*cfg.TileHeight)
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return scores[order[i]] > scores[order[j]]
	})

	perRow := cfg.PerRow
	if perRow > n {
		perRow = n
	}
	gridRows := (n + perRow - 1) / perRow

	img := image.NewRGBA(image.Rect(0, 0, perRow*cfg.TileWidth, gridRows*cfg.TileHeight))

	for rank, idx := range order {
		originX := (rank % perRow) * cfg.TileWidth
		originY := (rank / perRow) * cfg.TileHeight

		for py := 0; py < cfg.TileHeight; py++ {
			for px := 0; px < cfg.TileWidth; px++ {
				v := clampByte(X[idx][py*cfg.TileWidth+px])
				c := color.RGBA{R: v, G: v, B: v, A: 255}
				if anomalous[idx] {
					c.G, c.B = 0, 0
				}
				img.SetRGBA(originX+px, originY+py, c)
			}
		}
	}

	return img, nil
}

// WriteGridPNG renders the grid and writes it to path as PNG.
func WriteGridPNG(path string, X [][]float64, anomalous []bool, scores []float64, cfg GridConfig) error {
	img, err := RenderGrid(X, anomalous, scores, cfg)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return png.Encode(f, img)
}

func clampByte(v float64) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 255:
		return 255
	default:
		return uint8(v)
	}
}
