package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingProvider struct {
	calls  int
	schema string
	err    error
}

func (p *countingProvider) DescribeSchema(context.Context) (string, error) {
	p.calls++
	return p.schema, p.err
}

func TestCachedSchemaProviderMemoizes(t *testing.T) {
	next := &countingProvider{schema: "CREATE TABLE t (a TEXT)"}
	c := NewCachedSchemaProvider(next, time.Minute)

	for range 3 {
		got, err := c.DescribeSchema(context.Background())
		require.NoError(t, err)
		assert.Equal(t, next.schema, got)
	}
	assert.Equal(t, 1, next.calls)

	c.Invalidate()
	_, err := c.DescribeSchema(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, next.calls)
}

func TestCachedSchemaProviderDisabled(t *testing.T) {
	next := &countingProvider{schema: "x"}
	c := NewCachedSchemaProvider(next, 0)

	_, _ = c.DescribeSchema(context.Background())
	_, _ = c.DescribeSchema(context.Background())

	assert.Equal(t, 2, next.calls)
}

func TestCachedSchemaProviderDoesNotCacheErrors(t *testing.T) {
	next := &countingProvider{err: errors.New("down")}
	c := NewCachedSchemaProvider(next, time.Minute)

	_, err := c.DescribeSchema(context.Background())
	require.Error(t, err)
	_, err = c.DescribeSchema(context.Background())
	require.Error(t, err)

	assert.Equal(t, 2, next.calls)
}
