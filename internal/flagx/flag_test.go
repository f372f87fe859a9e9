package flagx

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestFilterArgs(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		allowed []string
		want    []string
	}{
		{
			name:    "separate value",
			args:    []string{"-a", "http://api", "-x", "1"},
			allowed: []string{"-a"},
			want:    []string{"-a", "http://api"},
		},
		{
			name:    "equals form",
			args:    []string{"-d=/tmp/s.db", "-a", "http://api"},
			allowed: []string{"-d"},
			want:    []string{"-d=/tmp/s.db"},
		},
		{
			name:    "unknown flags and positionals ignored",
			args:    []string{"-x", "1", "--y=2", "positional"},
			allowed: []string{"-c"},
			want:    []string{},
		},
		{
			name:    "flag at end keeps no value",
			args:    []string{"-l"},
			allowed: []string{"-l"},
			want:    []string{"-l"},
		},
		{
			name:    "next dash token is not a value",
			args:    []string{"-c", "-config=alt.json"},
			allowed: []string{"-c", "-config"},
			want:    []string{"-c", "-config=alt.json"},
		},
		{
			name:    "order and repeats preserved",
			args:    []string{"-a", "one", "-l", "debug", "-a", "two"},
			allowed: []string{"-a", "-l"},
			want:    []string{"-a", "one", "-l", "debug", "-a", "two"},
		},
		{
			name:    "empty args",
			args:    nil,
			allowed: []string{"-a"},
			want:    []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterArgs(tt.args, tt.allowed)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("FilterArgs() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestConfigFilePath(t *testing.T) {
	assert.Equal(t, "/path/short.json", ConfigFilePath([]string{"-c", "/path/short.json"}))
	assert.Equal(t, "/path/long.json", ConfigFilePath([]string{"-a", "http://x", "-config", "/path/long.json"}))
	assert.Empty(t, ConfigFilePath([]string{"-x", "1"}))
	assert.Equal(t, "/path/2.json", ConfigFilePath([]string{"-c", "/path/1.json", "-config=/path/2.json"}))
}
