package charts

import (
	"errors"
	"image/color"

	"gonum.org/v1/plot/plotutil"

	"github.com/MayaS12/Malnutrition-dashboard/pkg/contracts/domain"
)

// ErrNoData is returned when a chart has nothing to draw
var ErrNoData = errors.New("no data to plot")

// ContentType is the media type of every rendered chart
const ContentType = "image/svg+xml"

// Size is the output size in pixels
type Size struct {
	Width  int
	Height int
}

// DefaultSize is used when a zero Size is passed
var DefaultSize = Size{Width: 900, Height: 480}

func (s Size) orDefault() Size {
	if s.Width <= 0 || s.Height <= 0 {
		return DefaultSize
	}
	return s
}

// StatusColor returns the colour used for a growth status across charts
func StatusColor(s domain.GrowthStatus) color.Color {
	for i, known := range domain.GrowthStatuses {
		if s == known {
			return plotutil.Color(i)
		}
	}
	return plotutil.Color(len(domain.GrowthStatuses))
}
