package apperr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWriteMessage(t *testing.T) {
	cases := []struct {
		err    error
		status int
		msg    string
	}{
		{Conflict("post already liked"), http.StatusBadRequest, "post already liked"},
		{Forbidden("user not authorised"), http.StatusUnauthorized, "user not authorised"},
		{NotFound("post not found"), http.StatusNotFound, "post not found"},
		{fmt.Errorf("wrapped: %w", NotFound("comment does not exist")), http.StatusNotFound, "comment does not exist"},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		Write(rec, tc.err)
		require.Equal(t, tc.status, rec.Code)

		var body map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Equal(t, tc.msg, body["msg"])
	}
}

func TestWriteValidationListsEveryField(t *testing.T) {
	rec := httptest.NewRecorder()
	Write(rec, Validation(Field("name", "name is required"), Field("email", "please include a valid email")))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var body struct {
		Errors []FieldError `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Errors, 2)
	require.Equal(t, "name", body.Errors[0].Param)
	require.Equal(t, "body", body.Errors[1].Location)
}

func TestWriteInternalHidesCause(t *testing.T) {
	rec := httptest.NewRecorder()
	Write(rec, errors.New("mongo: connection refused"))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Equal(t, "Server error\n", rec.Body.String())
}

func TestIs(t *testing.T) {
	require.True(t, Is(fmt.Errorf("x: %w", Conflict("dup")), KindConflict))
	require.False(t, Is(Conflict("dup"), KindNotFound))
	require.False(t, Is(errors.New("plain"), KindConflict))
}
