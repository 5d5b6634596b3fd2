package handlers

import (
	"github.com/valyala/fasthttp"

	"cctvinsight/internal/analysis"
	"cctvinsight/internal/charts"
)

func CameraTable(t analysis.Tables) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		jsonResponse(ctx, map[string]any{"rows": t.Cameras, "total": analysis.Total(t.Cameras)})
	}
}

func DailyTable(t analysis.Tables) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		jsonResponse(ctx, map[string]any{"rows": t.Daily, "total": analysis.Total(t.Daily)})
	}
}

// HourlyTable serves the heatmap rows. "view_id" narrows the rows to one
// camera.
func HourlyTable(t analysis.Tables) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		rows := t.Hourly
		if id := string(ctx.QueryArgs().Peek("view_id")); id != "" {
			rows = make([]analysis.HourlyCount, 0)
			for _, r := range t.Hourly {
				if r.ViewID == id {
					rows = append(rows, r)
				}
			}
		}
		jsonResponse(ctx, map[string]any{"rows": rows, "total": analysis.Total(rows)})
	}
}

func Figures(figs charts.Set) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		jsonResponse(ctx, figs)
	}
}
