package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/foodies/foodies-api/docs"
)

func TestRegisterSwaggerServesConvertedDocument(t *testing.T) {
	e := echo.New()
	if err := RegisterSwagger(e, docs.SwaggerYAML); err != nil {
		t.Fatalf("register: %v", err)
	}

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/swagger/doc.json", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var doc map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &doc); err != nil {
		t.Fatalf("doc.json is not JSON: %v", err)
	}
	if doc["swagger"] != "2.0" {
		t.Fatalf("unexpected swagger version %v", doc["swagger"])
	}
	paths, _ := doc["paths"].(map[string]interface{})
	if _, ok := paths["/api/recipes"]; !ok {
		t.Fatalf("recipes path missing from document")
	}
}

func TestRegisterSwaggerRejectsBadDocument(t *testing.T) {
	if err := RegisterSwagger(echo.New(), nil); err == nil {
		t.Fatalf("empty document should be rejected")
	}
	if err := RegisterSwagger(echo.New(), []byte("swagger: [unclosed")); err == nil {
		t.Fatalf("malformed document should be rejected")
	}
}
