package label

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromArgs(t *testing.T) {
	tests := []struct {
		name string
		args string
		want Label
	}{
		{"quoted label", `label="init -> test -> boot_module.bin", ram_quota=8K`, "init -> test -> boot_module.bin"},
		{"label after other args", `ram_quota=8K, cap_quota=4, label="app -> config"`, "app -> config"},
		{"bare label", `label=plain, ram_quota=8K`, "plain"},
		{"escaped quote", `label="a \"quoted\" name"`, `a "quoted" name`},
		{"escaped backslash", `label="a\\b"`, `a\b`},
		{"comma inside quotes", `label="x, y", ram_quota=1`, "x, y"},
		{"missing label", `ram_quota=8K`, ""},
		{"empty args", ``, ""},
		{"key without value", `label, ram_quota=8K`, ""},
		{"unterminated quote", `label="open`, "open"},
		{"similar key", `labels="no", label="yes"`, "yes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FromArgs(tt.args))
		})
	}
}

func TestLastElement(t *testing.T) {
	tests := []struct {
		label Label
		want  string
	}{
		{"init -> test -> boot_module.bin", "boot_module.bin"},
		{"boot_module.bin", "boot_module.bin"},
		{"init -> a/b", "a/b"},
		{"init -> ", ""},
		{"", ""},
		{"init->nospaces", "init->nospaces"},
	}

	for _, tt := range tests {
		t.Run(string(tt.label), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.label.LastElement())
		})
	}
}

func TestElements(t *testing.T) {
	assert.Equal(t, []string{"init", "test", "rom"}, Label("init -> test -> rom").Elements())
	assert.Nil(t, Label("").Elements())
}
