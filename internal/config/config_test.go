package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseLeads(t *testing.T) {
	leads := parseLeads("24h,1h")
	assert.Equal(t, []time.Duration{24 * time.Hour, time.Hour}, leads)

	// junk and non-positive entries are dropped
	leads = parseLeads("24h, never, -1h, 15m")
	assert.Equal(t, []time.Duration{24 * time.Hour, 15 * time.Minute}, leads)

	assert.Nil(t, parseLeads(""))
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("REMINDER_OFFSETS", "")

	cfg := Load()
	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, []time.Duration{24 * time.Hour, time.Hour}, cfg.ReminderLeads)
	assert.Equal(t, 30*time.Second, cfg.DispatchInterval)
}
