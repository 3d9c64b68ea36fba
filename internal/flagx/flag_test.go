package flagx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterArgs(t *testing.T) {
	tests := []struct {
		name         string
		args         []string
		allowedFlags []string
		want         []string
	}{
		{
			name:         "short flag with separate value",
			args:         []string{"-c", "conf.json", "-a", ":8080"},
			allowedFlags: []string{"-c"},
			want:         []string{"-c", "conf.json"},
		},
		{
			name:         "flag with equals",
			args:         []string{"-config=alt.json", "-a", ":8080"},
			allowedFlags: []string{"-c", "-config"},
			want:         []string{"-config=alt.json"},
		},
		{
			name:         "unknown flags and positionals ignored",
			args:         []string{"-x", "1", "--y=2", "positional"},
			allowedFlags: []string{"-c"},
			want:         []string{},
		},
		{
			name:         "flag followed by another flag keeps no value",
			args:         []string{"-d", "-a", ":9000"},
			allowedFlags: []string{"-d", "-a"},
			want:         []string{"-d", "-a", ":9000"},
		},
		{
			name:         "trailing flag without value",
			args:         []string{"-c"},
			allowedFlags: []string{"-c"},
			want:         []string{"-c"},
		},
		{
			name:         "empty args",
			args:         nil,
			allowedFlags: []string{"-c"},
			want:         []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FilterArgs(tt.args, tt.allowedFlags))
		})
	}
}

func TestConfigPath(t *testing.T) {
	t.Run("short flag", func(t *testing.T) {
		t.Setenv(ConfigPathEnv, "")
		assert.Equal(t, "/etc/shareme.json", ConfigPath([]string{"-a", ":1", "-c", "/etc/shareme.json"}))
	})

	t.Run("long flag wins over env", func(t *testing.T) {
		t.Setenv(ConfigPathEnv, "/env.json")
		assert.Equal(t, "/flag.json", ConfigPath([]string{"-config", "/flag.json"}))
	})

	t.Run("env fallback", func(t *testing.T) {
		t.Setenv(ConfigPathEnv, " /env.json ")
		assert.Equal(t, "/env.json", ConfigPath(nil))
	})

	t.Run("nothing set", func(t *testing.T) {
		t.Setenv(ConfigPathEnv, "")
		assert.Empty(t, ConfigPath([]string{"-x", "1"}))
	})
}
