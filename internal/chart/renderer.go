// Package chart renders a daily glucose trend chart to PNG.
package chart

import (
	"bytes"
	"fmt"
	"image/png"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/mrcode/nightscout-report/internal/models"
	"github.com/mrcode/nightscout-report/internal/timeline"
)

const (
	imgWidth  = 1200
	imgHeight = 800

	marginLeft   = 70.0
	marginRight  = 30.0
	marginTop    = 60.0
	marginBottom = 60.0

	valueMin = 40.0
	valueMax = 300.0
)

// Renderer draws day charts. Safe for concurrent use.
type Renderer struct {
	settings *models.Settings
}

// NewRenderer creates a renderer using the given threshold settings for
// point coloring.
func NewRenderer(settings *models.Settings) *Renderer {
	return &Renderer{settings: settings}
}

// RenderDay draws one calendar day of readings and treatments and
// returns the encoded PNG.
func (r *Renderer) RenderDay(day timeline.Day) ([]byte, error) {
	dc := gg.NewContext(imgWidth, imgHeight)

	dc.SetRGB255(255, 255, 255)
	dc.Clear()

	if err := loadFont(dc, 20); err != nil {
		return nil, fmt.Errorf("chart: load font: %w", err)
	}

	plotW := float64(imgWidth) - marginLeft - marginRight
	plotH := float64(imgHeight) - marginTop - marginBottom

	xFor := func(hour float64) float64 {
		return marginLeft + hour/24*plotW
	}
	yFor := func(value float64) float64 {
		return marginTop + plotH - (value-valueMin)/(valueMax-valueMin)*plotH
	}

	// Title.
	dc.SetRGB255(0, 102, 204)
	dc.DrawStringAnchored(day.Date.Format("Monday, January 2, 2006"), float64(imgWidth)/2, marginTop/2, 0.5, 0.5)

	// Target band.
	dc.SetRGBA255(124, 207, 0, 40)
	dc.DrawRectangle(marginLeft, yFor(180), plotW, yFor(70)-yFor(180))
	dc.Fill()

	// Grid and axis labels.
	dc.SetRGB255(230, 230, 230)
	dc.SetLineWidth(1)
	for v := valueMin; v <= valueMax; v += 40 {
		dc.DrawLine(marginLeft, yFor(v), marginLeft+plotW, yFor(v))
		dc.Stroke()
		dc.SetRGB255(120, 120, 120)
		dc.DrawStringAnchored(fmt.Sprintf("%.0f", v), marginLeft-10, yFor(v), 1, 0.5)
		dc.SetRGB255(230, 230, 230)
	}
	for h := 0; h <= 24; h += 2 {
		x := xFor(float64(h))
		dc.DrawLine(x, marginTop, x, marginTop+plotH)
		dc.Stroke()
		dc.SetRGB255(120, 120, 120)
		dc.DrawStringAnchored(fmt.Sprintf("%02d:00", h), x, marginTop+plotH+20, 0.5, 0.5)
		dc.SetRGB255(230, 230, 230)
	}

	// Reference lines.
	dc.SetRGB255(239, 68, 68)
	dc.SetLineWidth(2)
	dc.SetDash(6, 6)
	dc.DrawLine(marginLeft, yFor(70), marginLeft+plotW, yFor(70))
	dc.Stroke()
	dc.DrawLine(marginLeft, yFor(180), marginLeft+plotW, yFor(180))
	dc.Stroke()
	dc.SetDash()

	// Glucose polyline.
	type pt struct {
		x, y  float64
		value float64
	}
	var points []pt
	for _, e := range day.Entries {
		v := e.ValueMgDL()
		if v < valueMin || v > valueMax {
			continue
		}
		t := e.Time()
		hour := float64(t.Hour()) + float64(t.Minute())/60
		points = append(points, pt{x: xFor(hour), y: yFor(v), value: v})
	}

	dc.SetRGB255(59, 130, 246)
	dc.SetLineWidth(2.5)
	for i := 0; i < len(points)-1; i++ {
		dc.DrawLine(points[i].x, points[i].y, points[i+1].x, points[i+1].y)
		dc.Stroke()
	}

	// Point markers colored by threshold status.
	for _, p := range points {
		r.setStatusColor(dc, p.value)
		dc.DrawCircle(p.x, p.y, 3.5)
		dc.Fill()
	}

	// Treatment markers along the baseline.
	baseY := yFor(valueMin)
	for _, t := range day.Treatments {
		ts := t.Time()
		x := xFor(float64(ts.Hour()) + float64(ts.Minute())/60)

		if t.HasInsulin() {
			if t.Kind() == models.KindMealBolus {
				dc.SetRGB255(190, 24, 93)
			} else {
				dc.SetRGB255(16, 185, 129)
			}
			dc.SetLineWidth(5)
			dc.DrawLine(x, baseY, x, baseY-t.Insulin*24)
			dc.Stroke()
			dc.DrawStringAnchored(fmt.Sprintf("%gU", t.Insulin), x, baseY-t.Insulin*24-12, 0.5, 0.5)
		}
		if t.HasCarbs() {
			dc.SetRGB255(245, 158, 11)
			dc.SetLineWidth(5)
			dc.DrawLine(x, baseY, x, baseY-t.Carbs*2.4)
			dc.Stroke()
			dc.DrawStringAnchored(fmt.Sprintf("%gg", t.Carbs), x, baseY-t.Carbs*2.4-12, 0.5, 0.5)
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, dc.Image()); err != nil {
		return nil, fmt.Errorf("chart: encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// setStatusColor picks the marker color for a value from the configured
// thresholds.
func (r *Renderer) setStatusColor(dc *gg.Context, value float64) {
	switch r.settings.GetGlucoseStatus(value) {
	case models.StatusUrgentLow, models.StatusUrgentHigh:
		dc.SetRGB255(239, 68, 68)
	case models.StatusLow:
		dc.SetRGB255(249, 115, 22)
	case models.StatusHigh:
		dc.SetRGB255(250, 204, 21)
	default:
		dc.SetRGB255(74, 222, 128)
	}
}

// loadFont helper to load font safely
func loadFont(dc *gg.Context, size float64) error {
	font, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return err
	}
	face := truetype.NewFace(font, &truetype.Options{Size: size})
	dc.SetFontFace(face)
	return nil
}
