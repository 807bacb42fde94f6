package plugin

import (
	"net/url"
	"path"
	"regexp"
	"slices"
	"strings"
)

// ManifestID is the identifier of the web-app manifest generator.
const ManifestID = "gatsby-plugin-manifest"

// ManifestOptions are the web-app manifest fields the generator consumes.
type ManifestOptions struct {
	Name            string `yaml:"name"`
	ShortName       string `yaml:"short_name"`
	StartURL        string `yaml:"start_url"`
	BackgroundColor string `yaml:"background_color"`
	ThemeColor      string `yaml:"theme_color"`
	Display         string `yaml:"display"`
	Icon            string `yaml:"icon"`
}

var (
	hexColor        = regexp.MustCompile(`^#([0-9a-fA-F]{3,4}|[0-9a-fA-F]{6}|[0-9a-fA-F]{8})$`)
	displayModes    = []string{"fullscreen", "standalone", "minimal-ui", "browser"}
	manifestColorKs = []string{"background_color", "theme_color"}
)

// Manifest returns the descriptor for the web-app manifest generator.
func Manifest() Descriptor {
	return Descriptor{
		Name:        ManifestID,
		Type:        TypeManifest,
		Description: "Web-app manifest generator (icons, name, display mode)",
		Validate:    validateManifestOptions,
	}
}

// DecodeManifestOptions decodes a manifest options record.
func DecodeManifestOptions(options map[string]any) (ManifestOptions, error) {
	var opts ManifestOptions
	err := decodeOptions(options, &opts)
	return opts, err
}

func validateManifestOptions(options map[string]any) error {
	opts, err := DecodeManifestOptions(options)
	if err != nil {
		return err
	}
	if strings.TrimSpace(opts.Name) == "" {
		return optionErr("name", "is required")
	}
	if opts.StartURL != "" && !strings.HasPrefix(opts.StartURL, "/") {
		if u, err := url.Parse(opts.StartURL); err != nil || !u.IsAbs() {
			return optionErr("start_url", "must be a root-relative path or absolute URL, got %q", opts.StartURL)
		}
	}
	for i, c := range []string{opts.BackgroundColor, opts.ThemeColor} {
		if c != "" && !hexColor.MatchString(c) {
			return optionErr(manifestColorKs[i], "must be a hex color like #fff, got %q", c)
		}
	}
	if opts.Display != "" && !slices.Contains(displayModes, opts.Display) {
		return optionErr("display", "must be one of %s, got %q", strings.Join(displayModes, ", "), opts.Display)
	}
	if opts.Icon != "" && path.IsAbs(opts.Icon) {
		return optionErr("icon", "must be relative to the site root, got %q", opts.Icon)
	}
	return nil
}
