package db

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConnect_RejectsInvalidURL(t *testing.T) {
	_, err := Connect(context.Background(), "not-a-database-url")
	assert.Error(t, err)
}
