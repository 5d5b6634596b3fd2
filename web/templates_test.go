package web

import (
	"io/fs"
	"testing"
)

func TestStaticFSHoldsOnlyAssets(t *testing.T) {
	static := StaticFS()

	if _, err := fs.Stat(static, "app.css"); err != nil {
		t.Fatalf("app.css should be served: %v", err)
	}
	for _, name := range []string{"layout.html", "chart.html", "static/app.css"} {
		if _, err := fs.Stat(static, name); err == nil {
			t.Errorf("%s should not be reachable from the static FS", name)
		}
	}
}

func TestTemplatesDefineLayout(t *testing.T) {
	for _, name := range []string{"layout", "chart"} {
		if Templates().Lookup(name) == nil {
			t.Errorf("template %q not defined", name)
		}
	}
}
