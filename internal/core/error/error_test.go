package errx

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrappersKeepCause(t *testing.T) {
	cause := errors.New("boom")

	for name, wrap := range map[string]func(error) error{
		"store":  WrapStore,
		"model":  WrapModel,
		"ingest": WrapIngest,
		"redis":  WrapRedis,
	} {
		t.Run(name, func(t *testing.T) {
			assert.NoError(t, wrap(nil))

			err := fmt.Errorf("context: %w", wrap(cause))
			require.Error(t, err)
			assert.ErrorIs(t, err, cause)

			var appErr *AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, http.StatusBadGateway, appErr.Status)
			assert.Equal(t, http.StatusBadGateway, StatusOf(err))
		})
	}
}

func TestWrapRedisNil(t *testing.T) {
	err := WrapRedis(redis.Nil)
	assert.Equal(t, http.StatusNotFound, StatusOf(err))
	assert.Contains(t, err.Error(), RedisNotFoundMessage)
}

func TestStatusOfPlainError(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, StatusOf(errors.New("x")))
}
