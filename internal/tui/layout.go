package tui

import "math"

// Card sizing, in pixels.
const (
	cardChrome     = 32
	cardMaxHeight  = 420
	cardMinHeight  = 160
	cardFloor      = 140
	cardMinWidth   = 200
	cardMaxWidth   = 360
	cardSideMargin = 56
	cardAspect     = 0.72
)

// CardSize fits the outfit card between the header and footer of a viewport.
// The card keeps a portrait aspect and never exceeds 360x420.
func CardSize(viewH, viewW, header, footer float64) (width, height float64) {
	available := viewH - cardChrome - header - footer

	switch {
	case math.IsNaN(available) || math.IsInf(available, 0):
		height = 360
	case available <= 0:
		height = 200
	default:
		height = math.Min(cardMaxHeight, available)
		if available > cardMinHeight {
			height = math.Max(height, cardMinHeight)
		} else {
			height = available
		}
	}

	floor := float64(cardFloor)
	if available > 0 {
		floor = math.Min(cardFloor, available)
	}
	height = math.Max(floor, math.Min(cardMaxHeight, height))

	widthLimit := math.Max(cardMinWidth, viewW-cardSideMargin)
	width = math.Max(cardMinWidth, math.Min(cardMaxWidth, math.Min(widthLimit, height*cardAspect)))
	return width, height
}

// Terminal cells are treated as 8x16 pixels when sizing the card.
const (
	cellWidth  = 8
	cellHeight = 16
)

// cardCells converts CardSize to terminal columns and rows.
func cardCells(cols, rows, headerRows, footerRows int) (int, int) {
	w, h := CardSize(
		float64(rows*cellHeight),
		float64(cols*cellWidth),
		float64(headerRows*cellHeight),
		float64(footerRows*cellHeight),
	)
	return int(w / cellWidth), int(h / cellHeight)
}
