package staging

import (
	"fmt"
	"path"
	"strings"
)

// Layer is a logical zone of the datalake.
type Layer string

const (
	LayerRaw    Layer = "raw"
	LayerMaster Layer = "master"
)

type Format string

const (
	FormatJSON    Format = "json"
	FormatParquet Format = "parquet"
	FormatCSV     Format = "csv"
)

// DefaultFormat is json for raw data and parquet for everything curated.
func (l Layer) DefaultFormat() Format {
	if l == LayerRaw {
		return FormatJSON
	}
	return FormatParquet
}

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatJSON, FormatParquet, FormatCSV:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported format %q", s)
	}
}

// FormatFromPath infers the artifact format from its extension.
func FormatFromPath(p string) (Format, error) {
	return ParseFormat(strings.TrimPrefix(path.Ext(p), "."))
}

// PathBuilder names artifacts as
// {root}/{layer}/{country}/{area}/{dataset}/{app}_{dataset}_{frequency}_{layer}_{date}.{ext}
type PathBuilder struct {
	Root      string
	Country   string
	Area      string
	Dataset   string
	App       string
	Frequency string
}

func (b PathBuilder) Dir(layer Layer) string {
	return path.Join("/", b.Root, string(layer), b.Country, b.Area, b.Dataset)
}

func (b PathBuilder) Build(layer Layer, date string, format Format) string {
	name := fmt.Sprintf("%s_%s_%s_%s_%s.%s", b.App, b.Dataset, b.Frequency, layer, date, format)
	return path.Join(b.Dir(layer), name)
}
