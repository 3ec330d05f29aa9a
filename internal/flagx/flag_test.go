package flagx

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterArgs(t *testing.T) {
	allowed := []string{"-a", "-d", "-s"}

	tests := []struct {
		name string
		args []string
		want []string
	}{
		{
			name: "separate values pass through",
			args: []string{"-a", ":8080", "-d", "postgres://x"},
			want: []string{"-a", ":8080", "-d", "postgres://x"},
		},
		{
			name: "equals form passes through",
			args: []string{"-a=:9090"},
			want: []string{"-a=:9090"},
		},
		{
			name: "foreign flags are dropped with their values attached by equals",
			args: []string{"-c=conf.json", "-s", "topsecret"},
			want: []string{"-s", "topsecret"},
		},
		{
			name: "foreign flag with separate value is dropped entirely",
			args: []string{"-c", "conf.json", "-a", ":8080"},
			want: []string{"-a", ":8080"},
		},
		{
			name: "trailing flag without value survives",
			args: []string{"-s"},
			want: []string{"-s"},
		},
		{
			name: "dash-prefixed token is not consumed as a value",
			args: []string{"-a", "-d", "dsn"},
			want: []string{"-a", "-d", "dsn"},
		},
		{
			name: "no arguments",
			args: []string{},
			want: []string{},
		},
		{
			name: "repeated flag keeps every occurrence",
			args: []string{"-a", ":1", "-a", ":2"},
			want: []string{"-a", ":1", "-a", ":2"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FilterArgs(tt.args, allowed))
		})
	}
}

func TestJsonConfigFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "short form", args: []string{"authkeeper", "-c", "server.json"}, want: "server.json"},
		{name: "long form", args: []string{"authkeeper", "-config", "etc/server.json"}, want: "etc/server.json"},
		{name: "absent", args: []string{"authkeeper", "-a", ":8080"}, want: ""},
		{name: "later flag wins", args: []string{"authkeeper", "-c", "a.json", "-config", "b.json"}, want: "b.json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Args = tt.args
			assert.Equal(t, tt.want, JsonConfigFlags())
		})
	}
}
