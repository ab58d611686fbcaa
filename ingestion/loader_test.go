package ingestion

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/poiesic/datamill/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeInput(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func pairs(samples []core.Sample) [][2]string {
	out := make([][2]string, 0, len(samples))
	for _, s := range samples {
		out = append(out, [2]string{s.Input, s.Output})
	}
	return out
}

func TestLoad_Formats(t *testing.T) {
	want := []core.Sample{
		{ID: "test_0", Input: "Hello", Output: "Hi there", Source: "test"},
		{ID: "test_1", Input: "Bye", Output: "Goodbye", Source: "test"},
	}

	tests := []struct {
		name    string
		file    string
		content string
	}{
		{
			name:    "json",
			file:    "data.json",
			content: `[{"input": "Hello", "output": "Hi there"}, {"input": "Bye", "output": "Goodbye"}]`,
		},
		{
			name:    "csv",
			file:    "data.csv",
			content: "input,output\nHello,Hi there\nBye,Goodbye\n",
		},
		{
			name:    "txt",
			file:    "data.txt",
			content: "Hello\tHi there\nBye\tGoodbye\n",
		},
		{
			name:    "upper-case extension",
			file:    "DATA.JSON",
			content: `[{"input": "Hello", "output": "Hi there"}, {"input": "Bye", "output": "Goodbye"}]`,
		},
		{
			name:    "no extension is text",
			file:    "data",
			content: "Hello\tHi there\r\nBye\tGoodbye",
		},
		{
			name:    "text extension",
			file:    "data.text",
			content: "Hello\tHi there\nBye\tGoodbye\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			samples, err := Load(writeInput(t, tt.file, tt.content), "test")
			require.NoError(t, err)
			assert.Equal(t, want, samples)
		})
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		wantErr error
	}{
		{name: "unsupported extension", file: "data.parquet", content: "x", wantErr: core.ErrUnsupportedFormat},
		{name: "json object root", file: "data.json", content: `{"input": "a"}`, wantErr: core.ErrFormat},
		{name: "json non-object item", file: "data.json", content: `[{"input": "a"}, 3]`, wantErr: core.ErrFormat},
		{name: "json malformed", file: "data.json", content: `[{"input": "a"`, wantErr: core.ErrFormat},
		{name: "json empty file", file: "data.json", content: ``, wantErr: core.ErrFormat},
		{name: "csv empty file", file: "data.csv", content: ``, wantErr: core.ErrFormat},
		{name: "csv single column", file: "data.csv", content: "input\na\n", wantErr: core.ErrFormat},
		{name: "invalid utf-8", file: "data.txt", content: "ok\t\xff\xfe\n", wantErr: core.ErrFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeInput(t, tt.file, tt.content), "test")
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"), "test")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestLoad_UnsupportedBeforeMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.xml"), "test")
	assert.ErrorIs(t, err, core.ErrUnsupportedFormat)
}

func TestLoadJSON_Coercion(t *testing.T) {
	content := `[
		{"input": 42, "output": true},
		{"input": null, "output": 1.50},
		{"input": {"b": 1, "a": [1, 2]}, "output": ["x", null, false]},
		{"other": "ignored"},
		{"input": "café", "output": "tab\there"},
		{"input": 1e16, "output": 0.00001},
		{"input": 100.0, "output": -0},
		{"input": {"k": "it's", "q": "a\nb"}, "output": {"k": 1, "k": 2, "j": 0.0001}},
		{"input": 1e400, "output": 12345678901234567890}
	]`

	samples, err := Load(writeInput(t, "data.json", content), "j")
	require.NoError(t, err)

	assert.Equal(t, [][2]string{
		{"42", "True"},
		{"None", "1.5"},
		{`{'b': 1, 'a': [1, 2]}`, `['x', None, False]`},
		{"", ""},
		{"café", "tab\there"},
		{"1e+16", "1e-05"},
		{"100.0", "0"},
		{`{'k': "it's", 'q': 'a\nb'}`, `{'k': 2, 'j': 0.0001}`},
		{"inf", "12345678901234567890"},
	}, pairs(samples))
	assert.Equal(t, "j_4", samples[4].ID)
}

func TestLoadCSV(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    [][2]string
	}{
		{
			name:    "case-insensitive headers in any order",
			content: "id,OUTPUT,Input\n1,out,in\n",
			want:    [][2]string{{"in", "out"}},
		},
		{
			name:    "fallback to first two columns",
			content: "question,answer,extra\nq1,a1,x\n",
			want:    [][2]string{{"q1", "a1"}},
		},
		{
			name:    "output column only falls back to first for input",
			content: "prompt,output\np,o\n",
			want:    [][2]string{{"p", "o"}},
		},
		{
			name:    "short rows default to empty",
			content: "input,output\nonly\n",
			want:    [][2]string{{"only", ""}},
		},
		{
			name:    "quoted fields with commas and newlines",
			content: "input,output\n\"a, b\",\"line1\nline2\"\n",
			want:    [][2]string{{"a, b", "line1\nline2"}},
		},
		{
			name:    "header only",
			content: "input,output\n",
			want:    [][2]string{},
		},
		{
			name:    "bare quote in unquoted field",
			content: "input,output\nHe said \"hi\",ok\n",
			want:    [][2]string{{`He said "hi"`, "ok"}},
		},
		{
			name:    "unterminated quote runs to end of file",
			content: "input,output\n\"a,b\n",
			want:    [][2]string{{"a,b\n", ""}},
		},
		{
			name:    "crlf line endings",
			content: "input,output\r\nHello,Hi\r\n",
			want:    [][2]string{{"Hello", "Hi"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			samples, err := Load(writeInput(t, "data.csv", tt.content), "c")
			require.NoError(t, err)
			assert.Equal(t, tt.want, pairs(samples))
		})
	}
}

func TestLoadText(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    [][2]string
	}{
		{name: "empty file", content: "", want: [][2]string{}},
		{name: "no tab", content: "just input\n", want: [][2]string{{"just input", ""}}},
		{name: "first tab splits", content: "a\tb\tc\n", want: [][2]string{{"a", "b\tc"}}},
		{name: "last line without newline", content: "a\tb\nc\td", want: [][2]string{{"a", "b"}, {"c", "d"}}},
		{name: "blank line is a sample", content: "a\tb\n\nc\td\n", want: [][2]string{{"a", "b"}, {"", ""}, {"c", "d"}}},
		{name: "crlf", content: "a\tb\r\nc\td\r\n", want: [][2]string{{"a", "b"}, {"c", "d"}}},
		{name: "single newline", content: "\n", want: [][2]string{{"", ""}}},
		{name: "lone carriage return", content: "one\rtwo\n", want: [][2]string{{"one", ""}, {"two", ""}}},
		{name: "mixed line endings", content: "a\tb\r\nc\rd\te\r", want: [][2]string{{"a", "b"}, {"c", ""}, {"d", "e"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			samples, err := Load(writeInput(t, "data.txt", tt.content), "t")
			require.NoError(t, err)
			assert.Equal(t, tt.want, pairs(samples))
			for i, s := range samples {
				assert.Equal(t, core.SampleID("t", i), s.ID)
				assert.Equal(t, "t", s.Source)
			}
		})
	}
}
