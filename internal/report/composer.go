// Package report composes the clinical PDF: a summary page, optional
// per-day trend pages and an optional variability profile page.
package report

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/mrcode/nightscout-report/internal/models"
	"github.com/mrcode/nightscout-report/internal/stats"
	"github.com/mrcode/nightscout-report/internal/timeline"
)

// Report color palette.
var (
	colorHeading    = [3]int{0, 102, 204}   // blue rule and titles
	colorVeryHigh   = [3]int{255, 137, 4}   // >240 segment
	colorHigh       = [3]int{252, 200, 0}   // 180-240 segment
	colorInRange    = [3]int{124, 207, 0}   // 70-180 segment
	colorLow        = [3]int{251, 44, 54}   // <70 segment
	colorGlucose    = [3]int{59, 130, 246}  // daily polyline
	colorMealBolus  = [3]int{190, 24, 93}   // meal bolus spike
	colorCorrection = [3]int{16, 185, 129}  // correction bolus spike
	colorCarbs      = [3]int{245, 158, 11}  // carb spike
	colorReference  = [3]int{255, 0, 0}     // 70/180 dashed lines
	colorBandOuter  = [3]int{0, 51, 153}    // p10-p90 polygon
	colorBandInner  = [3]int{173, 216, 230} // p25-p75 polygon
	colorMeanCurve  = [3]int{255, 69, 0}    // variability mean curve
	colorTargetBand = [3]int{144, 238, 144} // 70-180 target fill
	colorGrid       = [3]int{240, 240, 240}
	colorAxisLabel  = [3]int{120, 120, 120}
)

// Options carries the patient block and page toggles for one report.
type Options struct {
	PatientName      string
	PatientFirstName string
	BirthDate        string // "YYYY-MM-DD"
	InsulinRegimen   string
	DiabeticSince    string // "YYYY-MM"

	IncludeDailyCharts      bool
	IncludeVariabilityChart bool

	// Progress, when set, is called after each composed page with the
	// 1-based page number and the planned total.
	Progress func(page, total int)
}

// Data is everything a report is composed from. All of it is derived
// before composition starts; the composer itself does no computation
// beyond layout arithmetic.
type Data struct {
	Series *timeline.Series
	Stats  *models.DerivedStatistics
	Curve  *stats.Curve
}

// Composer builds PDF reports. It is stateless and safe for concurrent
// use; each Generate call works on its own document.
type Composer struct{}

// NewComposer returns a ready Composer.
func NewComposer() *Composer {
	return &Composer{}
}

// Generate composes the report and returns the finished PDF bytes.
func (c *Composer) Generate(data *Data, opts Options) ([]byte, error) {
	if data == nil || data.Series == nil || data.Stats == nil {
		return nil, fmt.Errorf("report: missing input data")
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, 0)

	dayPages := 0
	if opts.IncludeDailyCharts {
		for _, d := range data.Series.Days {
			if len(d.Entries) > 0 {
				dayPages++
			}
		}
	}
	total := 1 + dayPages
	if opts.IncludeVariabilityChart {
		total++
	}
	page := 0
	emit := func() {
		page++
		if opts.Progress != nil {
			opts.Progress(page, total)
		}
	}

	c.writeSummaryPage(pdf, data, opts)
	emit()

	if opts.IncludeDailyCharts {
		first := true
		for _, day := range data.Series.Days {
			if len(day.Entries) == 0 {
				continue
			}
			c.writeDayPage(pdf, day, first)
			first = false
			emit()
		}
	}

	if opts.IncludeVariabilityChart {
		c.writeVariabilityPage(pdf, data)
		emit()
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("report: pdf output: %w", err)
	}
	return buf.Bytes(), nil
}

// writeSummaryPage lays out the header, patient block, counts, target
// zone breakdown, period statistics and treatment averages.
func (c *Composer) writeSummaryPage(pdf *fpdf.Fpdf, data *Data, opts Options) {
	pdf.AddPage()
	st := data.Stats

	// Header with blue rule.
	y := 18.0
	pdf.SetFont("Helvetica", "B", 28)
	setText(pdf, colorHeading)
	pdf.Text(12, y, "Glycemic Analysis")
	setText(pdf, [3]int{0, 0, 0})
	pdf.SetFont("Helvetica", "", 10)
	pdf.Text(12, y+6, "Nightscout Report")
	period := fmt.Sprintf("%s to %s",
		data.Series.Period.From.Format("02/01/2006"),
		data.Series.Period.To.Format("02/01/2006"))
	textRight(pdf, 198, y+6, period)
	setDraw(pdf, colorHeading)
	pdf.SetLineWidth(2)
	pdf.Line(12, y+9, 198, y+9)
	y += 22

	// Patient block, name centered.
	pdf.SetFont("Helvetica", "", 22)
	textCenter(pdf, 105, y, patientDisplayName(opts))
	y += 10
	pdf.SetFont("Helvetica", "", 12)
	labelValue(pdf, 40, y, "Born:", 80, formatDashedDate(opts.BirthDate))
	labelValue(pdf, 120, y, "Diabetic since:", 160, strings.ReplaceAll(opts.DiabeticSince, "-", " "))
	y += 7
	labelValue(pdf, 40, y, "Insulin:", 80, opts.InsulinRegimen)
	y += 10

	// Basic counts.
	pdf.SetFont("Helvetica", "", 11)
	setText(pdf, [3]int{0, 0, 0})
	pdf.Text(20, y, "Days evaluated:")
	pdf.Text(60, y, fmt.Sprintf("%d", st.DaysEvaluated))
	pdf.Text(20, y+6, "Glucose measurements:")
	pdf.Text(80, y+6, fmt.Sprintf("%d", st.MeasurementCount))
	pdf.Text(20, y+12, "Infusion site changes:")
	pdf.Text(90, y+12, fmt.Sprintf("%d", st.PumpChanges))
	pdf.Text(20, y+18, "Sensor changes:")
	pdf.Text(90, y+18, fmt.Sprintf("%d", st.SensorChanges))
	pdf.SetDrawColor(150, 150, 150)
	pdf.SetLineWidth(0.2)
	pdf.Line(15, y+28, 195, y+28)
	y += 36

	y = c.writeTargetZone(pdf, st, y)
	y = c.writePeriodStats(pdf, st, y)
	c.writeTreatmentAverages(pdf, st, y)
}

// writeTargetZone draws the four-bucket legend and the 50 mm stacked
// vertical bar, segments top-down from very high to low.
func (c *Composer) writeTargetZone(pdf *fpdf.Fpdf, st *models.DerivedStatistics, y float64) float64 {
	pdf.SetFont("Helvetica", "", 11)
	setText(pdf, [3]int{0, 0, 0})
	pdf.Text(20, y, "Standard target zone")
	y += 6
	pdf.SetFont("Helvetica", "", 10)

	rows := []struct {
		color  [3]int
		label  string
		bucket models.RangeBucket
	}{
		{colorVeryHigh, ">240 mg/dL", st.VeryHigh},
		{colorHigh, "180-240 mg/dL", st.High},
		{colorInRange, "70-180 mg/dL", st.InRange},
		{colorLow, "<70 mg/dL", st.Below70},
	}

	legendY := y
	for _, r := range rows {
		setFill(pdf, r.color)
		pdf.Rect(22, legendY-4, 4, 4, "F")
		pdf.Text(28, legendY, r.label)
		pdf.Text(60, legendY, fmt.Sprintf("%d %%", r.bucket.Percent))
		pdf.Text(80, legendY, fmt.Sprintf("%d values", r.bucket.Count))
		legendY += 12
	}

	// Stacked bar mirrors the legend order.
	const barHeight, barX = 50.0, 150.0
	segY := y - 10
	for _, r := range rows {
		h := barHeight * float64(r.bucket.Percent) / 100
		setFill(pdf, r.color)
		pdf.Rect(barX, segY, 8, h, "F")
		segY += h
	}
	return legendY + 4
}

// writePeriodStats prints extremes, variability indices with their
// qualitative verdicts and the estimated HbA1c.
func (c *Composer) writePeriodStats(pdf *fpdf.Fpdf, st *models.DerivedStatistics, y float64) float64 {
	pdf.SetDrawColor(150, 150, 150)
	pdf.SetLineWidth(0.2)
	pdf.Line(15, y, 195, y)
	y += 8
	pdf.SetFont("Helvetica", "", 11)
	pdf.Text(20, y, "Period")
	y += 6
	pdf.SetFont("Helvetica", "", 10)

	minStr, maxStr := "-", "-"
	if st.HasData {
		minStr = fmt.Sprintf("%.0f mg/dL", st.Min)
		maxStr = fmt.Sprintf("%.0f mg/dL", st.Max)
	}
	pdf.Text(22, y, "Lowest value:")
	pdf.Text(90, y, minStr)
	y += 6
	pdf.Text(22, y, "Highest value:")
	pdf.Text(90, y, maxStr)
	y += 6
	pdf.Text(22, y, "Standard deviation:")
	pdf.Text(90, y, fmt.Sprintf("%.1f mg/dL", st.StdDev))
	y += 6
	pdf.Text(22, y, "Glycemic variability index:")
	pdf.Text(90, y, fmt.Sprintf("%.2f", st.GVI))
	pdf.Text(120, y, gviVerdict(st.GVI))
	y += 6
	pdf.Text(22, y, "Patient glycemic status:")
	pdf.Text(90, y, fmt.Sprintf("%.2f", st.PGS))
	pdf.Text(120, y, pgsVerdict(st.PGS))
	y += 6
	pdf.Text(22, y, "Average glucose:")
	pdf.Text(90, y, fmt.Sprintf("%.0f mg/dL", st.Mean))
	y += 6
	pdf.Text(22, y, "Estimated HbA1c:")
	pdf.Text(90, y, fmt.Sprintf("%s %%", st.HbA1c))
	return y + 8
}

func (c *Composer) writeTreatmentAverages(pdf *fpdf.Fpdf, st *models.DerivedStatistics, y float64) {
	pdf.SetDrawColor(150, 150, 150)
	pdf.SetLineWidth(0.2)
	pdf.Line(15, y, 195, y)
	y += 8
	pdf.SetFont("Helvetica", "", 11)
	pdf.Text(20, y, "Treatments")
	y += 6
	pdf.SetFont("Helvetica", "", 10)

	pdf.Text(22, y, "Average carbs per day:")
	pdf.Text(90, y, fmt.Sprintf("%.1f g", st.CarbsPerDay))
	y += 6
	pdf.Text(22, y, "Average insulin per day:")
	pdf.Text(90, y, fmt.Sprintf("%.1f U", st.TotalInsulinPerDay))
	y += 6
	pdf.Text(22, y, "Average bolus per day:")
	pdf.Text(90, y, fmt.Sprintf("%.1f U", st.BolusPerDay))
	y += 6
	pdf.Text(22, y, "Average basal per day:")
	pdf.Text(90, y, fmt.Sprintf("%.1f U", st.BasalPerDay))
}

// gviVerdict maps a GVI value onto its control verdict.
func gviVerdict(gvi float64) string {
	switch {
	case gvi < 25:
		return "excellent control"
	case gvi < 33:
		return "good control"
	case gvi < 40:
		return "medium control"
	default:
		return "poor control"
	}
}

// pgsVerdict maps a PGS score onto its control verdict.
func pgsVerdict(pgs float64) string {
	switch {
	case pgs >= 4.5:
		return "excellent control"
	case pgs >= 3.5:
		return "good control"
	case pgs >= 2.5:
		return "medium control"
	default:
		return "poor control"
	}
}

func patientDisplayName(opts Options) string {
	first := opts.PatientFirstName
	if first != "" {
		first = strings.ToUpper(first[:1]) + first[1:]
	}
	return strings.TrimSpace(first + " " + strings.ToUpper(opts.PatientName))
}

// formatDashedDate turns "2010-04-23" into "23 04 2010".
func formatDashedDate(s string) string {
	parts := strings.Split(s, "-")
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, " ")
}

func setFill(pdf *fpdf.Fpdf, c [3]int) { pdf.SetFillColor(c[0], c[1], c[2]) }
func setDraw(pdf *fpdf.Fpdf, c [3]int) { pdf.SetDrawColor(c[0], c[1], c[2]) }
func setText(pdf *fpdf.Fpdf, c [3]int) { pdf.SetTextColor(c[0], c[1], c[2]) }

func textRight(pdf *fpdf.Fpdf, x, y float64, s string) {
	pdf.Text(x-pdf.GetStringWidth(s), y, s)
}

func textCenter(pdf *fpdf.Fpdf, x, y float64, s string) {
	pdf.Text(x-pdf.GetStringWidth(s)/2, y, s)
}

func labelValue(pdf *fpdf.Fpdf, labelX, y float64, label string, valueX float64, value string) {
	setText(pdf, [3]int{0, 0, 0})
	pdf.Text(labelX, y, label)
	setText(pdf, colorHeading)
	pdf.Text(valueX, y, value)
	setText(pdf, [3]int{0, 0, 0})
}

// hourOfDay returns the fractional hour of a timestamp.
func hourOfDay(t time.Time) float64 {
	return float64(t.Hour()) + float64(t.Minute())/60
}
