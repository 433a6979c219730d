// 依 openapi.yaml 產生 gin strict server 與 model 到 api/openapi
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/oapi-codegen/oapi-codegen/v2/pkg/codegen"
	"github.com/oapi-codegen/oapi-codegen/v2/pkg/util"
)

var (
	openapiPath = "../../openapi.yaml"
	outputPath  = "../../api/openapi/openapi_gen.go"
	config      = codegen.Configuration{
		PackageName: "openapi",
		Generate: codegen.GenerateOptions{
			GinServer:    true,
			Strict:       true,
			Models:       true,
			EmbeddedSpec: true,
		},
		OutputOptions: codegen.OutputOptions{
			SkipPrune: true,
		},
	}
)

func errExit(format string, args ...any) {
	if !strings.HasSuffix(format, "\n") {
		format = format + "\n"
	}
	_, _ = fmt.Fprintf(os.Stderr, format, args...)
	os.Exit(1)
}

func main() {
	if len(os.Args) > 1 {
		openapiPath = os.Args[1]
	}
	if len(os.Args) > 2 {
		outputPath = os.Args[2]
	}

	config = config.UpdateDefaults()
	if err := config.Validate(); err != nil {
		errExit("configuration error: %v", err)
	}

	swagger, err := util.LoadSwaggerWithOverlay(openapiPath, util.LoadSwaggerWithOverlayOpts{Strict: true})
	if err != nil {
		errExit("error loading openapi spec in %s: %s", openapiPath, err)
	}

	code, err := codegen.Generate(swagger, config)
	if err != nil {
		errExit("error generating code: %s", err)
	}

	if err := os.WriteFile(outputPath, []byte(code), 0o644); err != nil {
		errExit("error writing generated code to file: %s", err)
	}
}
