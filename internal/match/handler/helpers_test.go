package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"listing-matcher/internal/match/model"
)

func TestToBool(t *testing.T) {
	assert.True(t, toBool("on", false))
	assert.True(t, toBool(" TRUE ", false))
	assert.False(t, toBool("0", true))
	assert.True(t, toBool("", true))
	assert.False(t, toBool("maybe", false))
}

func TestAtoi(t *testing.T) {
	assert.Equal(t, 3, atoi("3", 1))
	assert.Equal(t, 1, atoi("", 1))
	assert.Equal(t, 1, atoi("x", 1))
}

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("products: %w", model.ErrEmptyModel), http.StatusBadRequest},
		{fmt.Errorf("listings: %w", model.ErrEmptyTitle), http.StatusBadRequest},
		{errBadInput(errors.New("line 2: invalid character")), http.StatusBadRequest},
		{fmt.Errorf("missing products: %w", errMissingField), http.StatusBadRequest},
		{fmt.Errorf("%w: abc", model.ErrRunNotFound), http.StatusNotFound},
		{context.Canceled, http.StatusServiceUnavailable},
		{errors.New("disk on fire"), http.StatusInternalServerError},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, statusFor(c.err), c.err.Error())
	}
}
