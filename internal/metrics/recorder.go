package metrics

import (
	"regexp"
	"time"
)

// ResultLabel enumerates load outcomes for counters.
type ResultLabel string

const (
	ResultSuccess ResultLabel = "success"
	ResultInvalid ResultLabel = "invalid" // record decoded but failed validation
	ResultFailed  ResultLabel = "failed"  // source could not be read or decoded
)

// Recorder defines observability hooks for configuration loading.
type Recorder interface {
	ObserveLoad(source string, d time.Duration, result ResultLabel)
	IncValidationFailure(field string)
	SetPlugins(n int)
	SetSocialLinks(n int)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveLoad(string, time.Duration, ResultLabel) {}
func (NoopRecorder) IncValidationFailure(string)                    {}
func (NoopRecorder) SetPlugins(int)                                 {}
func (NoopRecorder) SetSocialLinks(int)                             {}

var indexPattern = regexp.MustCompile(`\[\d+\]`)

// FieldLabel collapses list indices so field labels keep a bounded cardinality:
// "siteMetadata.social[3].url" becomes "siteMetadata.social[].url".
func FieldLabel(field string) string {
	if field == "" {
		return "unknown"
	}
	return indexPattern.ReplaceAllString(field, "[]")
}
