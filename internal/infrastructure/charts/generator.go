// Package charts builds display-ready chart structures from a chart kind
// and a free-text data description. Generation is pure and never fails:
// unknown kinds degrade to a bar-shaped default.
package charts

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mkorolev/insight-router/internal/core/domain"

	_ "embed"
)

//go:embed palettes.yaml
var palettesYAML []byte

type palette struct {
	Background []string `yaml:"background"`
	Border     string   `yaml:"border"`
}

type paletteFile struct {
	Palettes map[string]palette `yaml:"palettes"`
}

// Generator implements chart structure generation with styling presets
// loaded from the embedded palette file.
type Generator struct {
	palettes map[string]palette
}

func NewGenerator() (*Generator, error) {
	var file paletteFile
	if err := yaml.Unmarshal(palettesYAML, &file); err != nil {
		return nil, fmt.Errorf("parse chart palettes: %w", err)
	}
	for _, name := range []string{"categorical", "sequential", "radial"} {
		if _, ok := file.Palettes[name]; !ok {
			return nil, fmt.Errorf("chart palettes: missing %q preset", name)
		}
	}
	return &Generator{palettes: file.Palettes}, nil
}

func (g *Generator) Generate(kind, description string) domain.ChartSpec {
	kind = strings.ToLower(strings.TrimSpace(kind))

	var spec domain.ChartSpec
	switch kind {
	case "line":
		spec = g.lineChart(description)
	case "pie", "doughnut":
		spec = g.segmentChart(kind, description)
	case "radar":
		spec = g.radarChart(description)
	default:
		// "bar" and anything unrecognized.
		spec = g.barChart(description)
	}

	spec.Options.Responsive = true
	return spec
}

func (g *Generator) barChart(description string) domain.ChartSpec {
	p := g.palettes["categorical"]
	return domain.ChartSpec{
		Type: "bar",
		Data: domain.ChartData{
			Labels: []string{"Category A", "Category B", "Category C", "Category D"},
			Datasets: []domain.ChartDataset{{
				Label:           datasetLabel(description),
				Data:            []float64{12, 19, 7, 14},
				BackgroundColor: p.Background,
				BorderColor:     p.Border,
				BorderWidth:     1,
			}},
		},
		Options: domain.ChartOptions{
			Plugins: domain.ChartPlugins{
				Legend: domain.ChartLegend{Display: false},
			},
		},
	}
}

func (g *Generator) lineChart(description string) domain.ChartSpec {
	p := g.palettes["sequential"]
	return domain.ChartSpec{
		Type: "line",
		Data: domain.ChartData{
			Labels: []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun"},
			Datasets: []domain.ChartDataset{{
				Label:           datasetLabel(description),
				Data:            []float64{8, 11, 9, 15, 13, 18},
				BackgroundColor: p.Background,
				BorderColor:     p.Border,
				BorderWidth:     2,
				Tension:         0.3,
			}},
		},
		Options: domain.ChartOptions{
			Plugins: domain.ChartPlugins{
				Legend: domain.ChartLegend{Display: false},
			},
		},
	}
}

func (g *Generator) segmentChart(kind, description string) domain.ChartSpec {
	p := g.palettes["categorical"]
	return domain.ChartSpec{
		Type: kind,
		Data: domain.ChartData{
			Labels: []string{"Segment A", "Segment B", "Segment C", "Segment D"},
			Datasets: []domain.ChartDataset{{
				Label:           datasetLabel(description),
				Data:            []float64{35, 25, 22, 18},
				BackgroundColor: p.Background,
				BorderWidth:     1,
			}},
		},
		Options: domain.ChartOptions{
			Plugins: domain.ChartPlugins{
				Legend: domain.ChartLegend{Display: true, Position: "right"},
			},
		},
	}
}

func (g *Generator) radarChart(description string) domain.ChartSpec {
	p := g.palettes["radial"]
	return domain.ChartSpec{
		Type: "radar",
		Data: domain.ChartData{
			Labels: []string{"Metric A", "Metric B", "Metric C", "Metric D", "Metric E"},
			Datasets: []domain.ChartDataset{{
				Label:           datasetLabel(description),
				Data:            []float64{65, 59, 80, 71, 56},
				BackgroundColor: p.Background,
				BorderColor:     p.Border,
				BorderWidth:     2,
				Fill:            true,
			}},
		},
		Options: domain.ChartOptions{
			Plugins: domain.ChartPlugins{
				Legend: domain.ChartLegend{Display: false},
			},
		},
	}
}

func datasetLabel(description string) string {
	description = strings.TrimSpace(description)
	if description == "" {
		return "Values"
	}
	const maxLabelLen = 80
	if len(description) > maxLabelLen {
		return description[:maxLabelLen]
	}
	return description
}
