package nav

import (
	"testing"

	"github.com/tinytelemetry/logdash/internal/model"
)

func TestResolve(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path string
		def  model.View
		want model.View
	}{
		{"", model.ViewDashboard, model.ViewDashboard},
		{"/", model.ViewLogs, model.ViewLogs},
		{"/logs", model.ViewDashboard, model.ViewLogs},
		{"analysis", model.ViewDashboard, model.ViewAnalysis},
		{"/Settings/", model.ViewDashboard, model.ViewSettings},
		{"/unknown", model.ViewAnalysis, model.ViewAnalysis},
		{"/logs/42", model.ViewSettings, model.ViewSettings},
		{"/nowhere", "bogus", model.ViewDashboard},
	}
	for _, tt := range tests {
		if got := Resolve(tt.path, tt.def); got != tt.want {
			t.Errorf("Resolve(%q, %q) = %q, want %q", tt.path, tt.def, got, tt.want)
		}
	}
}

func TestRouter_HooksFireOnChange(t *testing.T) {
	t.Parallel()

	r := NewRouter(model.ViewLogs)
	var left, entered []model.View
	r.OnLeave(func(v model.View) { left = append(left, v) })
	r.OnEnter(func(v model.View) { entered = append(entered, v) })

	if tr, changed := r.Go(Root); !changed || tr.To != model.ViewLogs || tr.From != "" {
		t.Fatalf("Go(root) = %+v, %v", tr, changed)
	}
	if _, changed := r.Go("/logs"); changed {
		t.Fatal("navigating to the current view should not change state")
	}
	if tr, changed := r.Go("/missing"); changed || tr.To != model.ViewLogs {
		t.Fatalf("unknown path should redirect to default, got %+v changed=%v", tr, changed)
	}
	r.Go("/analysis")

	if len(left) != 1 || left[0] != model.ViewLogs {
		t.Fatalf("left = %v", left)
	}
	if len(entered) != 2 || entered[1] != model.ViewAnalysis {
		t.Fatalf("entered = %v", entered)
	}
	if r.Current() != model.ViewAnalysis {
		t.Fatalf("Current() = %q", r.Current())
	}
}

func TestRouter_NextPrevWrap(t *testing.T) {
	t.Parallel()

	r := NewRouter(model.ViewDashboard)
	r.Go(Root)

	r.Prev()
	if r.Current() != model.ViewSettings {
		t.Fatalf("Prev from dashboard = %q, want settings", r.Current())
	}
	r.Next()
	r.Next()
	if r.Current() != model.ViewLogs {
		t.Fatalf("Current() = %q, want logs", r.Current())
	}
}

func TestRouter_SetDefault(t *testing.T) {
	t.Parallel()

	r := NewRouter(model.ViewDashboard)
	r.Go("/logs")
	r.SetDefault(model.ViewSettings)
	if r.Current() != model.ViewLogs {
		t.Fatal("SetDefault must not move the current view")
	}
	r.Go("/")
	if r.Current() != model.ViewSettings {
		t.Fatalf("Current() = %q, want settings", r.Current())
	}
	r.SetDefault("bogus")
	if r.Default() != model.ViewSettings {
		t.Fatalf("invalid default accepted: %q", r.Default())
	}
	if PathOf(model.ViewAnalysis) != "/analysis" {
		t.Fatalf("PathOf = %q", PathOf(model.ViewAnalysis))
	}
}
