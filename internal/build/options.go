package build

import (
	"github.com/marykravets/ks-email-parser/internal/config"
	"github.com/marykravets/ks-email-parser/internal/renderer"
	"github.com/marykravets/ks-email-parser/internal/types"
)

// OptionsFromConfig maps the loaded configuration onto pipeline options.
func OptionsFromConfig(cfg *config.Config) Options {
	targets := []types.Target{}
	if cfg.Build.WriteSubject {
		targets = append(targets, types.TargetSubject)
	}
	if cfg.Build.WriteText {
		targets = append(targets, types.TargetText)
	}
	if cfg.Build.WriteHTML {
		targets = append(targets, types.TargetHTML)
	}

	return Options{
		SourceDir:   cfg.Paths.Source,
		Destination: cfg.Paths.Destination,
		Render: renderer.Options{
			Templates:   cfg.Paths.Templates,
			Images:      cfg.Render.Images,
			RightToLeft: cfg.Render.RightToLeft,
			Strict:      cfg.Render.Strict,
			Sanitize:    cfg.Render.Sanitize,
			TextIgnore:  cfg.Render.TextIgnore,
		},
		Workers: cfg.Build.Workers,
		Targets: targets,
	}
}
