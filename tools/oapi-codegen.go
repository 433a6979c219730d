//go:build tools
// +build tools

package tools

import (
	_ "github.com/oapi-codegen/oapi-codegen/v2/cmd/oapi-codegen"
)

//go:generate mkdir -p ../api/openapi
//go:generate go run ./oapi-codegen ../openapi.yaml ../api/openapi/openapi_gen.go
