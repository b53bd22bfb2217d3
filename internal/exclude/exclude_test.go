package exclude

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDirectoryNamePattern(t *testing.T) {
	patterns := []string{"dist/"}

	tests := []struct {
		path string
		want bool
	}{
		{"dist/a.txt", true},
		{"pkg/dist/a.txt", true},
		{"dist", true},
		{"distfile.txt", false},
		{"pkg/distribution/a.txt", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, Excluded(tt.path, patterns))
		})
	}
}

func TestGlobPattern(t *testing.T) {
	patterns := []string{"*.log"}

	tests := []struct {
		path string
		want bool
	}{
		{"app.log", true},
		{"logs/app.log", true},
		{"app.log.txt", false},
		{"applog", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, Excluded(tt.path, patterns))
		})
	}
}

func TestGlobEscapesRegexMetacharacters(t *testing.T) {
	assert.True(t, Excluded("a+b.txt", []string{"a+b.txt"}))
	assert.False(t, Excluded("aab.txt", []string{"a+b.txt"}))
	assert.False(t, Excluded("fileXtxt", []string{"file.txt"}))
	assert.True(t, Excluded("src/gen/x.pb.go", []string{"src/*/x.pb.go"}))
}

func TestControlDirectoryAlwaysExcluded(t *testing.T) {
	assert.True(t, Excluded(".timewarp", nil))
	assert.True(t, Excluded(".timewarp/state.json", nil))
	assert.True(t, Excluded("nested/.timewarp/state.json", []string{}))
	assert.False(t, Excluded(".timewarpish", nil))
}

func TestEmptyAndBlankInputs(t *testing.T) {
	assert.False(t, Excluded("", []string{"*"}))
	assert.False(t, Excluded("a.txt", []string{"", "   "}))
	assert.True(t, Excluded("/dist/a.txt", []string{"dist/"}))
	assert.True(t, Excluded(`node_modules\lib\x.js`, []string{"node_modules/"}))
}

func TestFilter(t *testing.T) {
	var nilFilter *Filter
	assert.True(t, nilFilter.Match(".timewarp/x"))
	assert.False(t, nilFilter.Match("dist/x"))

	f := New([]string{".DS_Store", "*.pid"})
	assert.True(t, f.Match("sub/.DS_Store"))
	assert.True(t, f.Match("server.pid"))
	assert.False(t, f.Match("main.go"))
	assert.Equal(t, []string{".DS_Store", "*.pid"}, f.Patterns())
}
