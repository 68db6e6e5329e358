package report

// Chart area constants shared by the daily and variability pages. All
// values are millimeters on an A4 portrait page.
const (
	chartLeft   = 20.0
	chartWidth  = 170.0
	chartHeight = 140.0

	domainMin = 40.0  // mg/dL at the bottom edge
	domainMax = 300.0 // mg/dL at the top edge
)

// ChartArea maps clock time and glucose values onto page coordinates.
// The vertical mapping is linear with the value axis pointing up while
// page Y grows downward.
type ChartArea struct {
	Left   float64
	Top    float64
	Width  float64
	Height float64
	Min    float64 // value at the bottom edge
	Max    float64 // value at the top edge
}

func newChartArea(top float64) ChartArea {
	return ChartArea{
		Left: chartLeft, Top: top,
		Width: chartWidth, Height: chartHeight,
		Min: domainMin, Max: domainMax,
	}
}

// X returns the page X coordinate for an hour of day in [0, 24].
func (c ChartArea) X(hour float64) float64 {
	return c.Left + hour/24*c.Width
}

// Y returns the page Y coordinate for a glucose value.
func (c ChartArea) Y(value float64) float64 {
	return c.Top + c.Height - (value-c.Min)/(c.Max-c.Min)*c.Height
}

// InDomain reports whether a value lands inside the drawable range.
func (c ChartArea) InDomain(value float64) bool {
	return value >= c.Min && value <= c.Max
}
