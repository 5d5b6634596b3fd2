package handlers

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/valyala/fasthttp"

	"cctvinsight/internal/analysis"
	"cctvinsight/internal/charts"
	"cctvinsight/internal/config"
	ui "cctvinsight/web"
)

type LayoutData struct {
	Title     string
	PlotlyURL string
	Records   int
	Cameras   int
	LoadedAt  string

	Bar     ChartData
	Line    ChartData
	Heatmap ChartData
}

// ChartData is one chart card: the element id and its figure as a JS literal.
type ChartData struct {
	ID     string
	Figure template.JS
}

// loadedAtLayout formats the load time in the page footer.
const loadedAtLayout = "2006-01-02 15:04:05 MST"

// RenderDashboard executes the page template once. The layout is fixed for
// the lifetime of the process, so the result is served as-is.
func RenderDashboard(cfg *config.Config, tables analysis.Tables, figs charts.Set, loadedAt time.Time) ([]byte, error) {
	data := LayoutData{
		Title:     cfg.Title,
		PlotlyURL: cfg.PlotlyURL,
		Records:   tables.Records,
		Cameras:   len(tables.Cameras),
		LoadedAt:  loadedAt.Format(loadedAtLayout),
	}

	cards := []struct {
		dst *ChartData
		id  string
		fig charts.Figure
	}{
		{&data.Bar, "bar-chart", figs.Bar},
		{&data.Line, "line-chart", figs.Line},
		{&data.Heatmap, "heatmap", figs.Heatmap},
	}
	for _, c := range cards {
		b, err := c.fig.JSON()
		if err != nil {
			return nil, fmt.Errorf("encode %s figure: %w", c.id, err)
		}
		*c.dst = ChartData{ID: c.id, Figure: template.JS(b)}
	}

	var buf bytes.Buffer
	if err := ui.Templates().ExecuteTemplate(&buf, "layout", data); err != nil {
		return nil, fmt.Errorf("render layout: %w", err)
	}
	return buf.Bytes(), nil
}

// Dashboard serves the pre-rendered page.
func Dashboard(page []byte) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		ctx.SetContentType("text/html; charset=utf-8")
		ctx.SetBody(page)
	}
}
