package http

import (
	"fmt"
	"net/http"

	"github.com/ghodss/yaml"
	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"
)

// RegisterSwagger serves document, a Swagger 2.0 YAML description, as
// /swagger/doc.json together with the Swagger UI. The document is converted
// once, so a malformed one fails at startup instead of on every request.
func RegisterSwagger(e *echo.Echo, document []byte) error {
	if len(document) == 0 {
		return fmt.Errorf("swagger: empty document")
	}
	docJSON, err := yaml.YAMLToJSON(document)
	if err != nil {
		return fmt.Errorf("swagger: convert document: %w", err)
	}

	e.GET("/swagger/doc.json", func(c echo.Context) error {
		return c.Blob(http.StatusOK, echo.MIMEApplicationJSONCharsetUTF8, docJSON)
	})
	e.GET("/swagger/*", echoSwagger.WrapHandler)
	return nil
}
