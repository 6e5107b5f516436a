package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zambezimeats/backend/internal/interfaces/http/dto"
)

type addressPayload struct {
	Label    string   `json:"label" binding:"required,max=10"`
	Postcode string   `json:"postcode" binding:"required,postcode"`
	Slug     string   `json:"slug" binding:"omitempty,slug"`
	Code     string   `json:"code" binding:"omitempty,promo_code"`
	Zones    []string `json:"zones" binding:"omitempty,dive,postcode"`
}

func validationRouter(t *testing.T) *gin.Engine {
	t.Helper()
	require.NoError(t, SetupValidator())
	router := gin.New()
	router.Use(RequestID())
	router.POST("/test", func(c *gin.Context) {
		var req addressPayload
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleValidationError(c, err)
			return
		}
		c.Status(http.StatusOK)
	})
	return router
}

func postJSON(router *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeDetails(t *testing.T, w *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
	assert.NotEmpty(t, resp.Error.RequestID)
	out := make(map[string]string, len(resp.Error.Details))
	for _, d := range resp.Error.Details {
		out[d.Field] = d.Message
	}
	return out
}

func TestValidation_Returns422WithJSONFieldNames(t *testing.T) {
	router := validationRouter(t)

	w := postJSON(router, `{"label":"a very long label","postcode":"20001"}`)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	details := decodeDetails(t, w)
	assert.Equal(t, "Must be at most 10 characters", details["label"])
	assert.Equal(t, "Must be a 4 digit postcode", details["postcode"])
}

func TestValidation_CustomTags(t *testing.T) {
	router := validationRouter(t)

	tests := []struct {
		name  string
		body  string
		field string
		ok    bool
	}{
		{"valid payload", `{"label":"Home","postcode":"2150","slug":"beef-mince","code":"braai10"}`, "", true},
		{"slug with spaces", `{"label":"Home","postcode":"2150","slug":"Beef Mince"}`, "slug", false},
		{"slug with double hyphen", `{"label":"Home","postcode":"2150","slug":"beef--mince"}`, "slug", false},
		{"promo code too short", `{"label":"Home","postcode":"2150","code":"ab"}`, "code", false},
		{"promo code punctuation", `{"label":"Home","postcode":"2150","code":"SAVE!"}`, "code", false},
		{"postcode letters", `{"label":"Home","postcode":"ABCD"}`, "postcode", false},
		{"postcode in list", `{"label":"Home","postcode":"2150","zones":["2000","200"]}`, "zones[1]", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postJSON(router, tt.body)
			if tt.ok {
				assert.Equal(t, http.StatusOK, w.Code)
				return
			}
			assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
			assert.Contains(t, decodeDetails(t, w), tt.field)
		})
	}
}

func TestValidation_RequiredMessage(t *testing.T) {
	router := validationRouter(t)

	w := postJSON(router, `{}`)

	details := decodeDetails(t, w)
	assert.Equal(t, "This field is required", details["label"])
	assert.Equal(t, "This field is required", details["postcode"])
}

func TestFormatValidationErrors_NonValidatorError(t *testing.T) {
	resp := FormatValidationErrors(assert.AnError, "req-1")

	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
	assert.Empty(t, resp.Error.Details)
	assert.Equal(t, "req-1", resp.Error.RequestID)
}
