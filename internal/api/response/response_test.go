package response

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPNG(t *testing.T) {
	rec := httptest.NewRecorder()
	PNG(rec, []byte("png"), []string{"Missing (NEO) 999", "Gone (SNC) 1"})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(t, "Missing (NEO) 999; Gone (SNC) 1", rec.Header().Get(MissingCardsHeader))
	assert.Equal(t, "png", rec.Body.String())

	rec = httptest.NewRecorder()
	PNG(rec, []byte("png"), nil)
	assert.Empty(t, rec.Header().Get(MissingCardsHeader))
}

func TestBadRequest(t *testing.T) {
	rec := httptest.NewRecorder()
	BadRequest(rec, errors.New("invalid collector number"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"Bad Request","message":"invalid collector number","code":400}`, rec.Body.String())
}
