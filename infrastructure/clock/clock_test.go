package clock

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSystem_DefaultsToUTC(t *testing.T) {
	assert.Equal(t, time.UTC, System{}.Now().Location())
}

func TestSystem_Location(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Prague")
	require.NoError(t, err)

	now := System{Location: loc}.Now()

	assert.Equal(t, loc, now.Location())
	assert.WithinDuration(t, time.Now(), now, time.Minute)
}
