package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	"github.com/gin-gonic/gin"
)

// SetupTestRouter creates a bare Gin engine in test mode.
func SetupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

// JSONRequest builds a request with a JSON-encoded body.
func JSONRequest(method, path string, body any) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// DoRequest serves the request and returns the recorded response.
func DoRequest(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// decodeBody unmarshals a recorded JSON response into a generic map.
func decodeBody(w *httptest.ResponseRecorder) (map[string]any, error) {
	var body map[string]any
	err := json.Unmarshal(w.Body.Bytes(), &body)
	return body, err
}
