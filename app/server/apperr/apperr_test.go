package apperr

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRespondHidesCause(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	cause := errors.New(`pq: relation "items" does not exist`)
	require.NoError(t, Respond(c, DataAccess(cause)))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "relation")

	var body Body
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.False(t, body.Success)
	assert.Equal(t, DataAccessFailure, body.Error)
	assert.Equal(t, internalMessage, body.Message)
}

func TestRespondUnknownErrorIsInternal(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	require.NoError(t, Respond(c, errors.New("boom")))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "boom")
}

func TestKindMatching(t *testing.T) {
	cause := errors.New("cause")
	err := Wrap(NotOwner, http.StatusForbidden, "nope", cause)

	assert.Equal(t, NotOwner, As(err).Kind)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, http.StatusForbidden, As(err).Status)
}
