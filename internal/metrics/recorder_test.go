package metrics

import (
	"testing"
	"time"
)

type testRecorder struct {
	loads    map[string]map[ResultLabel]int
	failures map[string]int
	plugins  int
	social   int
}

func newTestRecorder() *testRecorder {
	return &testRecorder{loads: map[string]map[ResultLabel]int{}, failures: map[string]int{}}
}

func (t *testRecorder) ObserveLoad(source string, _ time.Duration, result ResultLabel) {
	m, ok := t.loads[source]
	if !ok {
		m = map[ResultLabel]int{}
		t.loads[source] = m
	}
	m[result]++
}
func (t *testRecorder) IncValidationFailure(field string) { t.failures[FieldLabel(field)]++ }
func (t *testRecorder) SetPlugins(n int)                  { t.plugins = n }
func (t *testRecorder) SetSocialLinks(n int)              { t.social = n }

func TestRecorderInterfaceSatisfied(t *testing.T) {
	var _ Recorder = NoopRecorder{}
	var _ Recorder = (*PrometheusRecorder)(nil)

	r := newTestRecorder()
	var rec Recorder = r
	rec.ObserveLoad("builtin", time.Millisecond, ResultSuccess)
	rec.ObserveLoad("builtin", time.Millisecond, ResultSuccess)
	rec.IncValidationFailure("siteMetadata.social[0].url")
	rec.IncValidationFailure("siteMetadata.social[3].url")
	rec.SetPlugins(3)

	if r.loads["builtin"][ResultSuccess] != 2 {
		t.Fatalf("expected 2 builtin successes, got %d", r.loads["builtin"][ResultSuccess])
	}
	if r.failures["siteMetadata.social[].url"] != 2 {
		t.Fatalf("expected index-collapsed label to aggregate, got %v", r.failures)
	}
	if r.plugins != 3 {
		t.Fatalf("expected plugins=3, got %d", r.plugins)
	}
}

func TestFieldLabel(t *testing.T) {
	cases := []struct{ in, want string }{
		{"", "unknown"},
		{"siteMetadata.siteUrl", "siteMetadata.siteUrl"},
		{"plugins[12].options.trackingId", "plugins[].options.trackingId"},
		{"siteMetadata.social[1].url", "siteMetadata.social[].url"},
	}
	for _, c := range cases {
		if got := FieldLabel(c.in); got != c.want {
			t.Errorf("FieldLabel(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
