package error

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTypedErrorsCarryCodes(t *testing.T) {
	cases := []struct {
		err    GenericError
		code   string
		status int
	}{
		{NotFoundError("missing"), "NOT_FOUND_ERROR", http.StatusNotFound},
		{ValidationError("bad"), "VALIDATION_ERROR", http.StatusBadRequest},
		{InternalServerError("boom"), "INTERNAL_SERVER_ERROR", http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.code, tc.err.ErrCode())
		assert.Equal(t, tc.status, tc.err.StatusCode())
	}
}

func TestTypedErrorsSurviveWrapping(t *testing.T) {
	err := fmt.Errorf("lookup: %w", NotFoundError("guild 42"))

	var nf NotFoundError
	assert.True(t, errors.As(err, &nf))
	assert.Equal(t, "guild 42", nf.Error())
}
