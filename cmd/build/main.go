package main

import (
	"log"

	"github.com/evanw/esbuild/pkg/api"
)

// Bundles the browser viewer into cmd/web/static, which is embedded by cmd/web.
func main() {
	buildOpts := api.BuildOptions{
		EntryPointsAdvanced: []api.EntryPoint{
			{
				InputPath:  "cmd/web/frontend/viewer.js",
				OutputPath: "viewer",
			},
		},
		Outdir:   "cmd/web/static",
		Bundle:   true,
		Platform: api.PlatformBrowser,
		Format:   api.FormatIIFE,
		Target:   api.ES2020,
		// three.js is loaded from a <script> tag in index.html
		External: []string{"three"},
		Write:    true,
	}
	result := api.Build(buildOpts)
	if len(result.Errors) != 0 {
		log.Fatalf("esbuild failed (%v)", result.Errors)
	}
}
