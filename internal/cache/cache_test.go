package cache_test

import (
	"context"
	"testing"
	"time"

	"loja/internal/cache"

	"github.com/stretchr/testify/assert"
)

func TestProductKey(t *testing.T) {
	assert.Equal(t, "product:42", cache.ProductKey(42))
}

func TestConnectUnreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	rdb, err := cache.Connect(ctx, cache.Options{Addr: "127.0.0.1:1"})
	assert.Error(t, err)
	assert.Nil(t, rdb)
}
