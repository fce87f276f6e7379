package report

import (
	"io"

	"github.com/BurntSushi/toml"
	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/voluzi/epochstat/pkg/statscollector"
)

func writeJSON(w io.Writer, c *statscollector.Collector) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(Views(c))
}

func writeYAML(w io.Writer, c *statscollector.Collector) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(Views(c)); err != nil {
		return err
	}
	return enc.Close()
}

func writeTOML(w io.Writer, c *statscollector.Collector) error {
	return toml.NewEncoder(w).Encode(Views(c))
}
