package lcd

import (
	"fmt"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/gomonobold"
)

// LargeFontSize is the point size of the digits, rendered at 72 DPI.
const LargeFontSize = 18

// LargeFace returns the face used for the temperature digits.
func LargeFace() (font.Face, error) {
	f, err := truetype.Parse(gomonobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("lcd: parse large font: %w", err)
	}
	return truetype.NewFace(f, &truetype.Options{
		Size:    LargeFontSize,
		DPI:     72,
		Hinting: font.HintingFull,
	}), nil
}

// SmallFace returns the face used for labels.
func SmallFace() font.Face {
	return basicfont.Face7x13
}
