package config

import (
	"bytes"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultFileRoundTripsThroughViper(t *testing.T) {
	data, err := Default().Encode()
	require.NoError(t, err)

	v := viper.New()
	v.SetConfigType("toml")
	require.NoError(t, v.ReadConfig(bytes.NewReader(data)))

	assert.Equal(t, DefaultExcludeGlobs, v.GetStringSlice("snapshot.exclude_globs"))
	assert.Equal(t, DefaultToolMaxChars, v.GetInt("transcript.tool_max_chars"))
	assert.Equal(t, DefaultDumpMaxChars, v.GetInt("transcript.dump_max_chars"))
	assert.True(t, v.GetBool("lock.enabled"))
	assert.False(t, v.GetBool("summary.enabled"))
	assert.Equal(t, "open", v.GetString("issues.default_status_filter"))
}

func TestGettersFallBackToDefaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	assert.Equal(t, DefaultExcludeGlobs, GetExcludeGlobs())
	assert.Equal(t, DefaultToolMaxChars, GetToolMaxChars())
	assert.Equal(t, DefaultDumpMaxChars, GetDumpMaxChars())

	SetDefaults(viper.GetViper())
	viper.Set("snapshot.exclude_globs", []string{"vendor/"})
	assert.Equal(t, []string{"vendor/"}, GetExcludeGlobs())
	assert.True(t, GetLockEnabled())
}

func TestGetExcludeGlobsReturnsCopy(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	globs := GetExcludeGlobs()
	globs[0] = "mutated/"
	assert.Equal(t, "node_modules/", DefaultExcludeGlobs[0])
}
