package ingestion

import (
	"strings"

	"github.com/poiesic/datamill/core"
)

// textLoader decodes one sample per line. "\n", "\r\n" and a lone "\r" all
// end a line. The first tab separates input from output; a line without a
// tab has an empty output.
type textLoader struct{}

var _ loader = textLoader{}

var lineBreaks = strings.NewReplacer("\r\n", "\n", "\r", "\n")

func (textLoader) load(data []byte, source string) ([]core.Sample, error) {
	content := string(data)
	if content == "" {
		return []core.Sample{}, nil
	}
	content = lineBreaks.Replace(content)
	content = strings.TrimSuffix(content, "\n")

	lines := strings.Split(content, "\n")
	samples := make([]core.Sample, 0, len(lines))
	for i, line := range lines {
		input, output, _ := strings.Cut(line, "\t")
		samples = append(samples, newSample(source, i, input, output))
	}
	return samples, nil
}
