package params

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConsume(t *testing.T) {
	tests := []struct {
		name      string
		message   string
		flag      string
		wantValue string
		wantRest  string
	}{
		{"unquoted", "-to:#chan hello", "to", "#chan", "hello"},
		{"quoted", `-structure:"a b" rest`, "structure", "a b", "rest"},
		{"equals separator", "-seed=42 3d6", "seed", "42", "3d6"},
		{"case insensitive", "-SEED:7 1d20", "seed", "7", "1d20"},
		{"no value", "-list", "list", "", ""},
		{"second flag", "-create:roll30 -structure:^[0-9]+$ !roll {0}d30", "structure", "^[0-9]+$", "-create:roll30 !roll {0}d30"},
		{"unknown flags stay", "-create:foo -escape !say hi", "create", "foo", "-escape !say hi"},
		{"escaped quote", `-msg:"say \"hi\"" x`, "msg", `say "hi"`, "x"},
		{"escape restored", `-to:#c \-5 degrees`, "to", "#c", "-5 degrees"},
		{"extra spaces", "  -to:#c    hello  world ", "to", "#c", "hello  world"},
		{"unterminated quote", `-to:"abc rest`, "to", `"abc`, "rest"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			value, rest := Consume(tt.message, tt.flag)
			assert.Equal(t, tt.wantValue, value)
			assert.Equal(t, tt.wantRest, rest)
		})
	}
}

func TestConsumeAbsentLeavesMessage(t *testing.T) {
	messages := []string{
		"hello -to:#chan",
		`\-to:#chan hello`,
		"-from:x hello",
		"",
		"   ",
	}
	for _, m := range messages {
		value, rest := Consume(m, "to")
		assert.Empty(t, value)
		assert.Equal(t, m, rest)
	}
}

func TestHas(t *testing.T) {
	assert.True(t, Has("-to:#chan hello", "to"))
	assert.True(t, Has("-a -b:1 -TO:x", "to"))
	assert.True(t, Has("-unload:modules", "UNLOAD"))
	assert.False(t, Has(`\-notaflag rest`, "notaflag"))
	assert.False(t, Has("hello -to:#chan", "to"))
	assert.False(t, Has("- to:x", "to"))
	assert.False(t, Has(`-a:"x"y -to:z`, "to"))
}

func TestHasWithoutLeadingFlag(t *testing.T) {
	samples := []string{
		"flag",
		"x -flag",
		"--",
		"\\-flag:1",
		"flag:1 -flag",
		"3d6 -flag:1",
		"ünïcode -flag",
	}
	for _, s := range samples {
		assert.False(t, Has(s, "flag"), s)
	}
}

func TestScan(t *testing.T) {
	flags := Scan(`-a:1 -b="two words" -c rest -d:4`)
	if assert.Len(t, flags, 3) {
		assert.Equal(t, "a", flags[0].Name)
		assert.Equal(t, "1", flags[0].Value)
		assert.Equal(t, "two words", flags[1].Value)
		assert.True(t, flags[1].Quoted)
		assert.Equal(t, "c", flags[2].Name)
		assert.Empty(t, flags[2].Value)
	}
}

func TestValue(t *testing.T) {
	v, ok := Value("-level:ADMIN x", "level")
	assert.True(t, ok)
	assert.Equal(t, "ADMIN", v)

	_, ok = Value("x -level:ADMIN", "level")
	assert.False(t, ok)
}
