package config

import (
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	c, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":8081", c.HTTPAddr)
	assert.Equal(t, []string{"kafka:9092"}, c.KafkaBrokers)
	assert.Equal(t, "RUB", c.Currency)
	assert.Equal(t, StoreRedis, c.SessionStore)
	assert.Equal(t, 10*time.Minute, c.ThrottleIdle)
	assert.Empty(t, c.Admins())
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("ADMIN_IDS", "1,42")
	t.Setenv("SESSION_STORE", "memory")
	t.Setenv("THROTTLE_RATE", "0.5")

	c, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, c.KafkaBrokers)
	assert.Equal(t, map[int64]bool{1: true, 42: true}, c.Admins())
	assert.Equal(t, StoreMemory, c.SessionStore)
	assert.Equal(t, 0.5, c.ThrottleRate)
}

func TestLoad_Rejects(t *testing.T) {
	cases := map[string][2]string{
		"bad store":   {"SCHEDULER", "disk"},
		"bad admin":   {"ADMIN_IDS", "root"},
		"no workers":  {"WORKERS", "0"},
		"bad workers": {"WORKERS", "many"},
	}
	for name, kv := range cases {
		t.Run(name, func(t *testing.T) {
			t.Setenv(kv[0], kv[1])
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
