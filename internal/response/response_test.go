package response_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/filegate/service/internal/response"
)

func TestOK(t *testing.T) {
	rr := httptest.NewRecorder()
	response.OK(rr, []string{"a", "b"})

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"success":true,"data":["a","b"]}`, rr.Body.String())
}

func TestSuccessOmitsData(t *testing.T) {
	rr := httptest.NewRecorder()
	response.Success(rr)

	assert.JSONEq(t, `{"success":true}`, rr.Body.String())
}

func TestError(t *testing.T) {
	rr := httptest.NewRecorder()
	response.Error(rr, http.StatusInternalServerError, "No files selected")

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.JSONEq(t, `{"message":"No files selected"}`, rr.Body.String())
}

func TestDataOnly(t *testing.T) {
	rr := httptest.NewRecorder()
	response.JSON(rr, http.StatusOK, response.DataOnly{Data: "hello"})

	assert.JSONEq(t, `{"data":"hello"}`, rr.Body.String())
}
