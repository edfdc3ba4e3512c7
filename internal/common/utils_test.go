package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasAnyFold(t *testing.T) {
	assert.True(t, HasAnyFold("Patchy Light RAIN", "drizzle", "rain"))
	assert.False(t, HasAnyFold("Sunny", "rain", "snow"))
	assert.False(t, HasAnyFold("Sunny"))
}
