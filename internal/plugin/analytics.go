package plugin

import (
	"regexp"
	"strings"
)

// GoogleAnalyticsID is the identifier of the analytics tracker.
const GoogleAnalyticsID = "gatsby-plugin-google-analytics"

// AnalyticsOptions are the options of the analytics tracker.
type AnalyticsOptions struct {
	TrackingID string `yaml:"trackingId"`
	Head       bool   `yaml:"head"`
	Anonymize  bool   `yaml:"anonymize"`
}

// Universal Analytics (UA-123-4) or GA4 measurement (G-XXXX) identifiers.
var trackingIDPattern = regexp.MustCompile(`^(UA-\d{4,10}-\d{1,4}|G-[A-Z0-9]{4,})$`)

// GoogleAnalytics returns the descriptor for the analytics tracker.
func GoogleAnalytics() Descriptor {
	return Descriptor{
		Name:        GoogleAnalyticsID,
		Type:        TypeAnalytics,
		Description: "Injects Google Analytics tracking into rendered pages",
		Validate:    validateAnalyticsOptions,
	}
}

// DecodeAnalyticsOptions decodes an analytics options record.
func DecodeAnalyticsOptions(options map[string]any) (AnalyticsOptions, error) {
	var opts AnalyticsOptions
	err := decodeOptions(options, &opts)
	return opts, err
}

func validateAnalyticsOptions(options map[string]any) error {
	opts, err := DecodeAnalyticsOptions(options)
	if err != nil {
		return err
	}
	id := strings.TrimSpace(opts.TrackingID)
	if id == "" {
		return optionErr("trackingId", "is required")
	}
	if !trackingIDPattern.MatchString(id) {
		return optionErr("trackingId", "must look like UA-12345-1 or G-XXXXXXX, got %q", opts.TrackingID)
	}
	return nil
}
