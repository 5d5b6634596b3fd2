package charts

import (
	"strings"
	"testing"

	"github.com/goccy/go-json"

	"cctvinsight/internal/analysis"
)

func sampleTables() analysis.Tables {
	return analysis.Tables{
		Records: 4,
		Cameras: []analysis.CameraCount{{ViewID: "1", Frequency: 3}, {ViewID: "2", Frequency: 1}},
		Daily: []analysis.DailyCount{
			{Date: "2024-01-01", ViewID: "1", Frequency: 2},
			{Date: "2024-01-01", ViewID: "2", Frequency: 1},
			{Date: "2024-01-02", ViewID: "1", Frequency: 1},
		},
		Hourly: []analysis.HourlyCount{
			{Hour: "10:00:00", ViewID: "1", Frequency: 2},
			{Hour: "10:00:00", ViewID: "1", Frequency: 1},
			{Hour: "11:00:00", ViewID: "2", Frequency: 1},
		},
	}
}

func TestBar(t *testing.T) {
	fig := Bar(sampleTables().Cameras)

	if len(fig.Data) != 1 {
		t.Fatalf("Expected one bar trace, got %d", len(fig.Data))
	}
	trace := fig.Data[0]
	if trace["type"] != "bar" {
		t.Errorf("Unexpected trace type: %v", trace["type"])
	}
	if ids := trace["x"].([]string); len(ids) != 2 || ids[0] != "1" || ids[1] != "2" {
		t.Errorf("Unexpected x: %v", ids)
	}
	if freqs := trace["y"].([]int); freqs[0] != 3 || freqs[1] != 1 {
		t.Errorf("Unexpected y: %v", freqs)
	}
	if fig.Layout["width"] != 500 || fig.Layout["height"] != 600 {
		t.Errorf("Unexpected size: %vx%v", fig.Layout["width"], fig.Layout["height"])
	}
	if fig.Layout["xaxis"].(map[string]any)["type"] != "category" {
		t.Error("Camera axis should be categorical")
	}
	title := fig.Layout["title"].(map[string]any)
	if title["text"] != BarTitle || title["x"] != 0.5 {
		t.Errorf("Unexpected title: %v", title)
	}
}

func TestLineOneTracePerCamera(t *testing.T) {
	fig := Line(sampleTables().Daily)

	if len(fig.Data) != 2 {
		t.Fatalf("Expected 2 traces, got %d", len(fig.Data))
	}
	cam1 := fig.Data[0]
	if cam1["name"] != "1" || cam1["mode"] != "lines+markers" {
		t.Errorf("Unexpected first trace: %v", cam1)
	}
	if dates := cam1["x"].([]string); len(dates) != 2 || dates[1] != "2024-01-02" {
		t.Errorf("Unexpected dates: %v", dates)
	}
	if fig.Layout["width"] != 900 || fig.Layout["height"] != 300 {
		t.Errorf("Unexpected size: %vx%v", fig.Layout["width"], fig.Layout["height"])
	}
}

func TestHeatmapPlotsEveryRow(t *testing.T) {
	fig := Heatmap(sampleTables().Hourly)

	trace := fig.Data[0]
	if trace["type"] != "histogram2d" || trace["histfunc"] != "sum" {
		t.Errorf("Unexpected heatmap trace: %v", trace)
	}
	if z := trace["z"].([]int); len(z) != 3 {
		t.Errorf("Every table row should be plotted, got %d points", len(z))
	}
	if fig.Layout["coloraxis"].(map[string]any)["colorscale"] != "Turbo" {
		t.Error("Heatmap should use the Turbo colour scale")
	}
}

func TestBuildEmptyTables(t *testing.T) {
	set := Build(analysis.Build(nil))

	for name, fig := range map[string]Figure{"bar": set.Bar, "line": set.Line, "heatmap": set.Heatmap} {
		b, err := fig.JSON()
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		var decoded map[string]any
		if err := json.Unmarshal(b, &decoded); err != nil {
			t.Fatalf("%s: invalid json: %v", name, err)
		}
		if _, ok := decoded["layout"]; !ok {
			t.Errorf("%s: missing layout", name)
		}
	}

	b, _ := set.Line.JSON()
	if !strings.Contains(string(b), `"data":[]`) {
		t.Errorf("Empty line chart should have no traces: %s", b)
	}
}
