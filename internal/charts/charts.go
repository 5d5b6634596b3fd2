// Package charts turns the derived tables into Plotly figures.
//
// A figure is plain data ({"data": [...], "layout": {...}}) that plotly.js
// renders client-side, so pan, zoom and hover come from the renderer.
package charts

import (
	"github.com/goccy/go-json"

	"cctvinsight/internal/analysis"
)

const (
	BarTitle     = "Frequency of 'Video Frame Missing' by Camera"
	LineTitle    = "Daily Frequency of 'Video Frame Missing' by Camera"
	HeatmapTitle = "Heatmap of Hourly Frequency of 'Video Frame Missing' by Camera"
)

// Axis labels shared by the three charts.
const (
	labelCamera    = "Camera ID"
	labelFrequency = "Frequency"
	labelDate      = "Date"
	labelHour      = "Hour of Day"
)

// qualitative is the default Plotly colour cycle for per-camera series.
var qualitative = []string{
	"#636efa", "#EF553B", "#00cc96", "#ab63fa", "#FFA15A",
	"#19d3f3", "#FF6692", "#B6E880", "#FF97FF", "#FECB52",
}

// Figure is a Plotly figure ready to hand to Plotly.newPlot.
type Figure struct {
	Data   []map[string]any `json:"data"`
	Layout map[string]any   `json:"layout"`
}

// JSON encodes the figure.
func (f Figure) JSON() ([]byte, error) {
	return json.Marshal(f)
}

// Set is the three dashboard figures.
type Set struct {
	Bar     Figure `json:"bar"`
	Line    Figure `json:"line"`
	Heatmap Figure `json:"heatmap"`
}

// Build constructs every figure from t.
func Build(t analysis.Tables) Set {
	return Set{
		Bar:     Bar(t.Cameras),
		Line:    Line(t.Daily),
		Heatmap: Heatmap(t.Hourly),
	}
}

// Bar charts total events per camera, coloured by frequency.
func Bar(rows []analysis.CameraCount) Figure {
	ids := make([]string, len(rows))
	freqs := make([]int, len(rows))
	for i, r := range rows {
		ids[i] = r.ViewID
		freqs[i] = r.Frequency
	}

	trace := map[string]any{
		"type":          "bar",
		"x":             ids,
		"y":             freqs,
		"text":          freqs,
		"textposition":  "auto",
		"marker":        map[string]any{"color": freqs, "coloraxis": "coloraxis"},
		"hovertemplate": labelCamera + "=%{x}<br>" + labelFrequency + "=%{y}<extra></extra>",
		"showlegend":    false,
	}

	layout := baseLayout(BarTitle, 500, 600)
	layout["xaxis"] = axis(labelCamera, map[string]any{"type": "category"})
	layout["yaxis"] = axis(labelFrequency, nil)
	layout["coloraxis"] = map[string]any{
		"colorscale": "Plasma",
		"colorbar":   map[string]any{"title": map[string]any{"text": labelFrequency}},
	}
	layout["barmode"] = "relative"

	return Figure{Data: []map[string]any{trace}, Layout: layout}
}

// Line draws one line per camera over calendar dates.
func Line(rows []analysis.DailyCount) Figure {
	var order []string
	byCamera := make(map[string][]analysis.DailyCount)
	for _, r := range rows {
		if _, ok := byCamera[r.ViewID]; !ok {
			order = append(order, r.ViewID)
		}
		byCamera[r.ViewID] = append(byCamera[r.ViewID], r)
	}

	traces := make([]map[string]any, 0, len(order))
	for i, id := range order {
		series := byCamera[id]
		dates := make([]string, len(series))
		freqs := make([]int, len(series))
		for j, r := range series {
			dates[j] = r.Date
			freqs[j] = r.Frequency
		}
		traces = append(traces, map[string]any{
			"type":          "scatter",
			"mode":          "lines+markers",
			"name":          id,
			"legendgroup":   id,
			"x":             dates,
			"y":             freqs,
			"line":          map[string]any{"color": qualitative[i%len(qualitative)]},
			"marker":        map[string]any{"symbol": "circle"},
			"hovertemplate": labelCamera + "=" + id + "<br>" + labelDate + "=%{x}<br>" + labelFrequency + "=%{y}<extra></extra>",
		})
	}

	layout := baseLayout(LineTitle, 900, 300)
	layout["xaxis"] = axis(labelDate, nil)
	layout["yaxis"] = axis(labelFrequency, nil)
	layout["legend"] = map[string]any{"title": map[string]any{"text": labelCamera}, "tracegrouporder": "normal"}

	return Figure{Data: traces, Layout: layout}
}

// Heatmap bins the hourly rows by (hour of day, camera), summing frequency.
// Each table row is a separate point, so rows from different dates land in
// the same cell.
func Heatmap(rows []analysis.HourlyCount) Figure {
	hours := make([]string, len(rows))
	ids := make([]string, len(rows))
	freqs := make([]int, len(rows))
	for i, r := range rows {
		hours[i] = r.Hour
		ids[i] = r.ViewID
		freqs[i] = r.Frequency
	}

	trace := map[string]any{
		"type":          "histogram2d",
		"x":             hours,
		"y":             ids,
		"z":             freqs,
		"histfunc":      "sum",
		"coloraxis":     "coloraxis",
		"hovertemplate": labelHour + "=%{x}<br>" + labelCamera + "=%{y}<br>sum of " + labelFrequency + "=%{z}<extra></extra>",
	}

	layout := baseLayout(HeatmapTitle, 900, 300)
	layout["xaxis"] = axis(labelHour, map[string]any{"type": "category", "categoryorder": "category ascending"})
	layout["yaxis"] = axis(labelCamera, map[string]any{"type": "category"})
	layout["coloraxis"] = map[string]any{
		"colorscale": "Turbo",
		"colorbar":   map[string]any{"title": map[string]any{"text": "sum of " + labelFrequency}},
	}

	return Figure{Data: []map[string]any{trace}, Layout: layout}
}

// baseLayout is the shared white look: centred title, fixed size, 50px margins.
func baseLayout(title string, width, height int) map[string]any {
	return map[string]any{
		"title": map[string]any{
			"text": title,
			"x":    0.5,
			"font": map[string]any{"size": 15},
		},
		"width":         width,
		"height":        height,
		"margin":        map[string]any{"l": 50, "r": 50, "t": 50, "b": 50},
		"paper_bgcolor": "white",
		"plot_bgcolor":  "white",
		"font":          map[string]any{"color": "#2a3f5f"},
		"hovermode":     "closest",
	}
}

func axis(title string, extra map[string]any) map[string]any {
	a := map[string]any{
		"title":         map[string]any{"text": title},
		"gridcolor":     "#EBF0F8",
		"linecolor":     "#EBF0F8",
		"zerolinecolor": "#EBF0F8",
		"automargin":    true,
	}
	for k, v := range extra {
		a[k] = v
	}
	return a
}
