package report

import (
	"fmt"
	"math"
	"sort"

	"github.com/go-pdf/fpdf"

	"github.com/mrcode/nightscout-report/internal/models"
	"github.com/mrcode/nightscout-report/internal/stats"
	"github.com/mrcode/nightscout-report/internal/timeline"
)

var yTicks = []float64{40, 80, 120, 160, 200, 240, 280, 300}

// writeDayPage composes one trend page for a calendar day: titled chart
// frame, glucose polyline, treatment spikes and the day's statistics.
func (c *Composer) writeDayPage(pdf *fpdf.Fpdf, day timeline.Day, withLegend bool) {
	pdf.AddPage()

	y := 20.0
	pdf.SetFont("Helvetica", "", 18)
	setText(pdf, colorHeading)
	pdf.Text(20, y, "Glucose Trend")
	pdf.SetFont("Helvetica", "", 14)
	setText(pdf, [3]int{0, 0, 0})
	pdf.Text(20, y+15, day.Date.Format("Monday, January 2, 2006"))
	y += 35

	area := newChartArea(y)
	c.drawChartFrame(pdf, area)
	c.drawReferenceLines(pdf, area)
	c.drawGlucoseLine(pdf, area, day.Entries)
	c.drawTreatmentSpikes(pdf, area, day.Treatments)

	y = area.Top + area.Height + 30
	c.writeDayStatistics(pdf, y, day)
	if withLegend {
		c.writeDayLegend(pdf, y+40)
	}
	c.writeAxisLabels(pdf, area, "Time of day")
}

// drawChartFrame draws the bordered chart area with its value and hour
// grids, labeled along both axes.
func (c *Composer) drawChartFrame(pdf *fpdf.Fpdf, area ChartArea) {
	pdf.SetDrawColor(200, 200, 200)
	pdf.SetLineWidth(0.5)
	pdf.Rect(area.Left, area.Top, area.Width, area.Height, "D")

	setDraw(pdf, colorGrid)
	pdf.SetLineWidth(0.3)
	pdf.SetFont("Helvetica", "", 8)
	for _, v := range yTicks {
		yPos := area.Y(v)
		pdf.Line(area.Left, yPos, area.Left+area.Width, yPos)
		setText(pdf, colorAxisLabel)
		pdf.Text(area.Left-15, yPos+2, fmt.Sprintf("%.0f", v))
	}
	for h := 0; h <= 24; h += 2 {
		x := area.X(float64(h))
		pdf.Line(x, area.Top, x, area.Top+area.Height)
		setText(pdf, colorAxisLabel)
		pdf.Text(x-8, area.Top+area.Height+8, fmt.Sprintf("%02d:00", h))
	}
}

// drawReferenceLines dashes the 70 and 180 mg/dL target bounds.
func (c *Composer) drawReferenceLines(pdf *fpdf.Fpdf, area ChartArea) {
	setDraw(pdf, colorReference)
	pdf.SetLineWidth(1)
	pdf.SetDashPattern([]float64{3, 3}, 0)
	pdf.Line(area.Left, area.Y(70), area.Left+area.Width, area.Y(70))
	pdf.Line(area.Left, area.Y(180), area.Left+area.Width, area.Y(180))
	pdf.SetDashPattern([]float64{}, 0)
}

// drawGlucoseLine plots the day's readings as a polyline with point
// markers. Readings outside the drawable domain are skipped.
func (c *Composer) drawGlucoseLine(pdf *fpdf.Fpdf, area ChartArea, entries []models.GlucoseEntry) {
	type pt struct{ x, y float64 }
	var points []pt
	for _, e := range entries {
		v := e.ValueMgDL()
		if !area.InDomain(v) {
			continue
		}
		points = append(points, pt{x: area.X(hourOfDay(e.Time())), y: area.Y(v)})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].x < points[j].x })
	if len(points) == 0 {
		return
	}

	setDraw(pdf, colorGlucose)
	pdf.SetLineWidth(1)
	for i := 0; i < len(points)-1; i++ {
		pdf.Line(points[i].x, points[i].y, points[i+1].x, points[i+1].y)
	}
	setFill(pdf, colorGlucose)
	for _, p := range points {
		pdf.Circle(p.x, p.y, 1, "F")
	}
}

// drawTreatmentSpikes draws insulin and carb events as vertical bars
// anchored at the 40 mg/dL baseline: 6 mm per unit of insulin, 0.6 mm
// per gram of carbs.
func (c *Composer) drawTreatmentSpikes(pdf *fpdf.Fpdf, area ChartArea, treatments []models.Treatment) {
	baseY := area.Y(40)
	pdf.SetFont("Helvetica", "", 8)
	for _, t := range treatments {
		x := area.X(hourOfDay(t.Time()))

		if t.HasInsulin() {
			topY := baseY - t.Insulin*6
			if t.Kind() == models.KindMealBolus {
				setDraw(pdf, colorMealBolus)
			} else {
				setDraw(pdf, colorCorrection)
			}
			pdf.SetLineWidth(3)
			pdf.Line(x, baseY, x, topY)
			setText(pdf, [3]int{0, 0, 0})
			pdf.Text(x+2, topY-2, fmt.Sprintf("%gU", t.Insulin))
		}

		if t.HasCarbs() {
			topY := baseY - t.Carbs*0.6
			setDraw(pdf, colorCarbs)
			pdf.SetLineWidth(3)
			pdf.Line(x, baseY, x, topY)
			setText(pdf, [3]int{0, 0, 0})
			pdf.Text(x+2, topY-2, fmt.Sprintf("%gg", t.Carbs))
		}
	}
}

func (c *Composer) writeDayStatistics(pdf *fpdf.Fpdf, y float64, day timeline.Day) {
	var values []float64
	for _, e := range day.Entries {
		values = append(values, e.ValueMgDL())
	}
	if len(values) == 0 {
		return
	}

	minV, maxV, sum := values[0], values[0], 0.0
	inRange := 0
	for _, v := range values {
		if v < minV {
			minV = v
		}
		if v > maxV {
			maxV = v
		}
		sum += v
		if v >= 70 && v <= 180 {
			inRange++
		}
	}
	tir := int(math.Round(float64(inRange) / float64(len(values)) * 100))

	carbs, insulin := 0.0, 0.0
	for _, t := range day.Treatments {
		carbs += t.Carbs
		insulin += t.Insulin
	}

	pdf.SetFont("Helvetica", "", 10)
	setText(pdf, [3]int{0, 0, 0})
	pdf.Text(22, y, "Day statistics:")
	y += 8
	pdf.SetFont("Helvetica", "", 9)
	pdf.Text(25, y, fmt.Sprintf("- Average glucose: %.0f mg/dL", sum/float64(len(values))))
	y += 6
	pdf.Text(25, y, fmt.Sprintf("- Min: %.0f mg/dL - Max: %.0f mg/dL", minV, maxV))
	y += 6
	pdf.Text(25, y, fmt.Sprintf("- Time in range (70-180): %d%%", tir))
	y += 6
	pdf.Text(25, y, fmt.Sprintf("- Total carbs: %.0fg", carbs))
	y += 6
	pdf.Text(25, y, fmt.Sprintf("- Total insulin: %.1fU", insulin))
}

func (c *Composer) writeDayLegend(pdf *fpdf.Fpdf, y float64) {
	pdf.SetFont("Helvetica", "", 10)
	setText(pdf, [3]int{0, 0, 0})
	legendY := y + 10
	x := 25.0

	setDraw(pdf, colorGlucose)
	pdf.SetLineWidth(2)
	pdf.Line(x, legendY, x+15, legendY)
	pdf.Text(x+20, legendY+2, "Glucose")
	x += 70

	setDraw(pdf, colorMealBolus)
	pdf.Line(x, legendY-3, x, legendY+3)
	pdf.Text(x+5, legendY+2, "Meal bolus")
	x += 70

	setDraw(pdf, colorCorrection)
	pdf.Line(x, legendY-3, x, legendY+3)
	pdf.Text(x+5, legendY+2, "Correction bolus")

	x = 25.0
	legendY += 15
	setDraw(pdf, colorCarbs)
	pdf.Line(x, legendY-3, x, legendY+3)
	pdf.Text(x+5, legendY+2, "Carbs")
	x += 70

	setDraw(pdf, colorReference)
	pdf.SetLineWidth(1)
	pdf.SetDashPattern([]float64{3, 3}, 0)
	pdf.Line(x, legendY, x+15, legendY)
	pdf.SetDashPattern([]float64{}, 0)
	pdf.Text(x+20, legendY+2, "Targets (70-180 mg/dL)")
}

func (c *Composer) writeAxisLabels(pdf *fpdf.Fpdf, area ChartArea, xLabel string) {
	pdf.SetFont("Helvetica", "", 10)
	setText(pdf, [3]int{0, 0, 0})
	pdf.TransformBegin()
	pdf.TransformRotate(90, 5, area.Top+area.Height/2)
	pdf.Text(5, area.Top+area.Height/2, "mg/dL")
	pdf.TransformEnd()
	pdf.Text(area.Left+area.Width/2-10, area.Top+area.Height+20, xLabel)
}

// writeVariabilityPage composes the ambulatory glucose profile: target
// band, percentile polygons, mean curve and the insights block.
func (c *Composer) writeVariabilityPage(pdf *fpdf.Fpdf, data *Data) {
	pdf.AddPage()

	y := 20.0
	pdf.SetFont("Helvetica", "", 18)
	setText(pdf, colorHeading)
	pdf.Text(20, y, "Glycemic Variability Profile")
	pdf.SetFont("Helvetica", "", 10)
	setText(pdf, [3]int{0, 0, 0})
	pdf.Text(20, y+15, fmt.Sprintf("Period: %s to %s",
		data.Series.Period.From.Format("02/01/2006"),
		data.Series.Period.To.Format("02/01/2006")))
	y += 35

	area := newChartArea(y)
	pdf.SetDrawColor(200, 200, 200)
	pdf.SetLineWidth(0.5)
	pdf.Rect(area.Left, area.Top, area.Width, area.Height, "D")

	// Target band behind everything else.
	setFill(pdf, colorTargetBand)
	pdf.Rect(area.Left, area.Y(180), area.Width, area.Y(70)-area.Y(180), "F")

	c.drawPercentileBands(pdf, area, data.Curve)

	// Grid drawn over the filled areas so it stays visible.
	setDraw(pdf, colorGrid)
	pdf.SetLineWidth(0.3)
	pdf.SetFont("Helvetica", "", 8)
	for _, v := range yTicks {
		yPos := area.Y(v)
		pdf.Line(area.Left, yPos, area.Left+area.Width, yPos)
		setText(pdf, colorAxisLabel)
		pdf.Text(area.Left-15, yPos+2, fmt.Sprintf("%.0f", v))
	}
	for h := 0; h <= 24; h += 2 {
		x := area.X(float64(h))
		pdf.Line(x, area.Top, x, area.Top+area.Height)
		setText(pdf, colorAxisLabel)
		pdf.Text(x-8, area.Top+area.Height+8, fmt.Sprintf("%02d:00", h))
	}

	y = area.Top + area.Height + 20
	c.writeInsights(pdf, y, data.Series)
	c.writeVariabilityLegend(pdf, y+40)
	c.writeAxisLabels(pdf, area, "Time of day")
}

// drawPercentileBands fills the p10-p90 and p25-p75 polygons and traces
// the mean curve with a dot every full hour. Empty bins are skipped so
// sparse periods don't collapse the bands to the chart floor.
func (c *Composer) drawPercentileBands(pdf *fpdf.Fpdf, area ChartArea, curve *stats.Curve) {
	if curve == nil {
		return
	}

	type pt struct{ x, y float64 }
	var mean, p10, p25, p75, p90 []pt
	hourlyDots := make([]pt, 0, 24)
	for i := 0; i < stats.BinCount; i++ {
		if curve.N[i] == 0 {
			continue
		}
		x := area.X(float64(i) / stats.BinCount * 24)
		mean = append(mean, pt{x, area.Y(curve.Mean[i])})
		p10 = append(p10, pt{x, area.Y(curve.P10[i])})
		p25 = append(p25, pt{x, area.Y(curve.P25[i])})
		p75 = append(p75, pt{x, area.Y(curve.P75[i])})
		p90 = append(p90, pt{x, area.Y(curve.P90[i])})
		if i%12 == 0 {
			hourlyDots = append(hourlyDots, pt{x, area.Y(curve.Mean[i])})
		}
	}

	band := func(upper, lower []pt, color [3]int) {
		if len(upper) < 2 || len(lower) < 2 {
			return
		}
		poly := make([]fpdf.PointType, 0, len(upper)+len(lower))
		for _, p := range upper {
			poly = append(poly, fpdf.PointType{X: p.x, Y: p.y})
		}
		for i := len(lower) - 1; i >= 0; i-- {
			poly = append(poly, fpdf.PointType{X: lower[i].x, Y: lower[i].y})
		}
		setFill(pdf, color)
		setDraw(pdf, color)
		pdf.Polygon(poly, "F")
	}

	band(p90, p10, colorBandOuter)
	band(p75, p25, colorBandInner)

	if len(mean) >= 2 {
		setDraw(pdf, colorMeanCurve)
		pdf.SetLineWidth(0.5)
		for i := 0; i < len(mean)-1; i++ {
			pdf.Line(mean[i].x, mean[i].y, mean[i+1].x, mean[i+1].y)
		}
		setFill(pdf, colorMeanCurve)
		for _, p := range hourlyDots {
			pdf.Circle(p.x, p.y, 0.5, "F")
		}
	}
}

// writeInsights prints the treatment-pattern analysis under the
// variability chart.
func (c *Composer) writeInsights(pdf *fpdf.Fpdf, y float64, series *timeline.Series) {
	pdf.SetFont("Helvetica", "", 11)
	setText(pdf, [3]int{0, 0, 0})
	pdf.Text(22, y, "Variability analysis:")
	y += 10
	pdf.SetFont("Helvetica", "", 9)

	hourly := hourlyTreatmentCounts(series.Treatments)
	busiestHour, busiestCount := 0, 0
	for h, n := range hourly {
		if n > busiestCount {
			busiestHour, busiestCount = h, n
		}
	}
	pdf.Text(25, y, fmt.Sprintf("- Most active hour: %02d:00 (%d treatments)", busiestHour, busiestCount))
	y += 6

	days := series.Period.DayCount()
	if days == 0 {
		days = 1
	}
	totalInsulin := 0.0
	for _, t := range series.Treatments {
		totalInsulin += t.Insulin
	}
	totalCarbs := 0.0
	for _, t := range timeline.DedupeCarbs(series.Treatments) {
		totalCarbs += t.Carbs
	}
	pdf.Text(25, y, fmt.Sprintf("- Average insulin per day: %.1fU", totalInsulin/float64(days)))
	y += 6
	pdf.Text(25, y, fmt.Sprintf("- Average carbs per day: %.0fg", totalCarbs/float64(days)))
	y += 6

	start, end := busiestWindow(hourly)
	pdf.Text(25, y, fmt.Sprintf("- Busiest period: %02d:00-%02d:00", start, end))
}

// hourlyTreatmentCounts buckets treatments by hour of day.
func hourlyTreatmentCounts(treatments []models.Treatment) [24]int {
	var counts [24]int
	for _, t := range treatments {
		ts := t.Time()
		if ts.IsZero() {
			continue
		}
		counts[ts.Hour()]++
	}
	return counts
}

// busiestWindow finds the contiguous 4-hour window with the most
// treatments. Windows never wrap midnight, so the latest start is 19:00.
func busiestWindow(hourly [24]int) (start, end int) {
	best, bestStart := 0, 0
	for s := 0; s < 20; s++ {
		sum := 0
		for i := 0; i < 4; i++ {
			sum += hourly[s+i]
		}
		if sum > best {
			best, bestStart = sum, s
		}
	}
	return bestStart, bestStart + 4
}

func (c *Composer) writeVariabilityLegend(pdf *fpdf.Fpdf, y float64) {
	pdf.SetFont("Helvetica", "", 10)
	setText(pdf, [3]int{0, 0, 0})
	pdf.Text(22, y, "Legend:")
	y += 8

	x := 25.0
	setDraw(pdf, colorMeanCurve)
	pdf.SetLineWidth(2)
	pdf.Line(x, y, x+15, y)
	setFill(pdf, colorMeanCurve)
	pdf.Circle(x+7, y, 1.5, "F")
	pdf.SetFont("Helvetica", "", 9)
	pdf.Text(x+20, y+2, "Mean glucose curve (5 min)")

	y += 10
	setFill(pdf, colorBandOuter)
	pdf.Rect(x, y-2, 15, 4, "F")
	pdf.Text(x+20, y+2, "Variability band (10%-90%)")

	y += 10
	setFill(pdf, colorBandInner)
	pdf.Rect(x, y-2, 15, 4, "F")
	pdf.Text(x+20, y+2, "Variability band (25%-75%)")

	y += 10
	setFill(pdf, colorTargetBand)
	pdf.Rect(x, y-2, 15, 4, "F")
	pdf.SetDrawColor(100, 100, 100)
	pdf.SetLineWidth(0.5)
	pdf.Rect(x, y-2, 15, 4, "D")
	pdf.Text(x+20, y+2, "Target zone (70-180 mg/dL)")
}
