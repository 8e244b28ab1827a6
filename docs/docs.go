// Package docs - Swagger documentation
// Run 'make swagger' to regenerate.
package docs

import "github.com/swaggo/swag"

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api",
	Schemes:          []string{},
	Title:            "SOL Racer API",
	Description:      "SOL price prediction race service API",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  `{"swagger":"2.0","info":{"title":"SOL Racer API","version":"1.0"}}`,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
