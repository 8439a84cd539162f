package app

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/dustin/go-humanize"
	"github.com/golang/freetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
)

const (
	dpi      = 96.0
	fontSize = 12.0

	plotWidth  = 640
	plotHeight = 800

	// Border sizes in pixels
	topBorder    = 40
	leftBorder   = 80
	bottomBorder = 60
	rightBorder  = 40

	tickCountX = 6
	tickCountY = 8
	tickLength = 5
)

var (
	axisColor     = color.RGBA{60, 60, 60, 255}
	gridColor     = color.RGBA{225, 225, 225, 255}
	airTempColor  = color.RGBA{204, 51, 51, 255}
	dewPointColor = color.RGBA{51, 85, 204, 255}
)

// ProfileRenderer draws a temperature and dew point vs. altitude quick-look
// of one stored sounding.
type ProfileRenderer struct {
	context *freetype.Context
}

// NewProfileRenderer creates a renderer with the bundled Go Regular typeface.
func NewProfileRenderer() (*ProfileRenderer, error) {
	parsedFont, err := freetype.ParseFont(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parsing font: %w", err)
	}

	context := freetype.NewContext()
	context.SetDPI(dpi)
	context.SetFont(parsedFont)
	context.SetFontSize(fontSize)
	context.SetSrc(image.NewUniform(axisColor))
	context.SetHinting(font.HintingFull)

	return &ProfileRenderer{context: context}, nil
}

// Render produces the annotated profile image.
func (r *ProfileRenderer) Render(data *ProfileData) (*image.RGBA, error) {
	if len(data.Points) == 0 {
		return nil, fmt.Errorf("no observations with altitude to plot")
	}
	if !data.HasTemperature() {
		return nil, fmt.Errorf("no temperature data to plot")
	}

	fullWidth := plotWidth + leftBorder + rightBorder
	fullHeight := plotHeight + topBorder + bottomBorder
	img := image.NewRGBA(image.Rect(0, 0, fullWidth, fullHeight))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)

	r.context.SetClip(img.Bounds())
	r.context.SetDst(img)

	scale := newPlotScale(data)
	r.drawGrid(img)
	r.drawSeries(img, data, scale, func(p ProfilePoint) float64 { return p.AirTemp }, airTempColor)
	r.drawSeries(img, data, scale, func(p ProfilePoint) float64 { return p.DewPoint }, dewPointColor)

	if err := r.drawLabels(img, data, scale); err != nil {
		return nil, fmt.Errorf("drawing labels: %w", err)
	}
	return img, nil
}

// plotScale maps data coordinates (degrees Celsius, meters) to pixels.
type plotScale struct {
	tempMin, tempMax float64
	altMin, altMax   float64
}

func newPlotScale(data *ProfileData) plotScale {
	s := plotScale{
		tempMin: data.TempMin,
		tempMax: data.TempMax,
		altMin:  data.AltMin,
		altMax:  data.AltMax,
	}

	// Pad degenerate ranges so single-level soundings still render.
	if s.tempMax-s.tempMin < 1 {
		s.tempMin--
		s.tempMax++
	}
	if s.altMax-s.altMin < 1 {
		s.altMin--
		s.altMax++
	}
	return s
}

func (s plotScale) x(temp float64) int {
	frac := (temp - s.tempMin) / (s.tempMax - s.tempMin)
	return leftBorder + int(math.Round(frac*float64(plotWidth)))
}

func (s plotScale) y(alt float64) int {
	frac := (alt - s.altMin) / (s.altMax - s.altMin)
	return topBorder + plotHeight - int(math.Round(frac*float64(plotHeight)))
}

func (r *ProfileRenderer) drawGrid(img *image.RGBA) {
	for i := 0; i <= tickCountX; i++ {
		x := leftBorder + i*plotWidth/tickCountX
		drawVLine(img, x, topBorder, topBorder+plotHeight, gridColor)
	}
	for i := 0; i <= tickCountY; i++ {
		y := topBorder + i*plotHeight/tickCountY
		drawHLine(img, leftBorder, leftBorder+plotWidth, y, gridColor)
	}

	// Axes on top of the grid.
	drawVLine(img, leftBorder, topBorder, topBorder+plotHeight, axisColor)
	drawHLine(img, leftBorder, leftBorder+plotWidth, topBorder+plotHeight, axisColor)
}

// drawSeries draws one temperature series against altitude, breaking the line
// wherever the value is NaN.
func (r *ProfileRenderer) drawSeries(img *image.RGBA, data *ProfileData, scale plotScale, value func(ProfilePoint) float64, c color.RGBA) {
	havePrev := false
	var prevX, prevY int

	for _, p := range data.Points {
		v := value(p)
		if math.IsNaN(v) {
			havePrev = false
			continue
		}

		x, y := scale.x(v), scale.y(p.Alt)
		if havePrev {
			drawLine(img, prevX, prevY, x, y, c)
		}
		prevX, prevY = x, y
		havePrev = true
	}
}

func (r *ProfileRenderer) drawLabels(img *image.RGBA, data *ProfileData, scale plotScale) error {
	// X scale: temperature in degrees Celsius.
	for i := 0; i <= tickCountX; i++ {
		temp := scale.tempMin + float64(i)*(scale.tempMax-scale.tempMin)/tickCountX
		x := leftBorder + i*plotWidth/tickCountX

		drawVLine(img, x, topBorder+plotHeight, topBorder+plotHeight+tickLength, axisColor)

		pt := freetype.Pt(x-12, topBorder+plotHeight+20)
		if _, err := r.context.DrawString(fmt.Sprintf("%.1f", temp), pt); err != nil {
			return err
		}
	}

	// Y scale: altitude in meters.
	for i := 0; i <= tickCountY; i++ {
		alt := scale.altMax - float64(i)*(scale.altMax-scale.altMin)/tickCountY
		y := topBorder + i*plotHeight/tickCountY

		drawHLine(img, leftBorder-tickLength, leftBorder, y, axisColor)

		fract, suffix := humanize.ComputeSI(alt)
		pt := freetype.Pt(8, y+4)
		if _, err := r.context.DrawString(fmt.Sprintf("%.1f %sm", fract, suffix), pt); err != nil {
			return err
		}
	}

	// Legend and axis captions.
	r.context.SetSrc(image.NewUniform(airTempColor))
	if _, err := r.context.DrawString("air temperature", freetype.Pt(leftBorder+10, topBorder-12)); err != nil {
		return err
	}
	r.context.SetSrc(image.NewUniform(dewPointColor))
	if _, err := r.context.DrawString("dew point", freetype.Pt(leftBorder+160, topBorder-12)); err != nil {
		return err
	}

	r.context.SetSrc(image.NewUniform(axisColor))
	caption := fmt.Sprintf("%s observations, °C vs altitude", humanize.Comma(int64(len(data.Points))))
	_, err := r.context.DrawString(caption, freetype.Pt(leftBorder+10, topBorder+plotHeight+44))
	return err
}

func drawHLine(img *image.RGBA, x0, x1, y int, c color.RGBA) {
	for x := x0; x <= x1; x++ {
		img.Set(x, y, c)
	}
}

func drawVLine(img *image.RGBA, x, y0, y1 int, c color.RGBA) {
	for y := y0; y <= y1; y++ {
		img.Set(x, y, c)
	}
}

// drawLine is a basic Bresenham segment without anti-aliasing.
func drawLine(img *image.RGBA, x0, y0, x1, y1 int, c color.RGBA) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}

	err := dx + dy
	for {
		img.Set(x0, y0, c)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
