package output

import (
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/abdul-hamid-achik/reqspec/packages/requirements"
)

// YAMLFormatter writes the same report as JSONFormatter in YAML.
type YAMLFormatter struct {
	writer io.Writer
	collector
}

type YAMLOption func(*YAMLFormatter)

func NewYAMLFormatter(opts ...YAMLOption) *YAMLFormatter {
	f := &YAMLFormatter{
		writer: os.Stdout,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func YAMLWithWriter(w io.Writer) YAMLOption {
	return func(f *YAMLFormatter) {
		f.writer = w
	}
}

func (f *YAMLFormatter) FormatFile(result *requirements.FileResult) {
	f.add(result)
}

func (f *YAMLFormatter) FormatError(err error) {
	f.errors = append(f.errors, err.Error())
}

func (f *YAMLFormatter) FormatHeader(version string) {}

func (f *YAMLFormatter) Flush(totalDuration time.Duration) error {
	encoder := yaml.NewEncoder(f.writer)
	encoder.SetIndent(2)
	if err := encoder.Encode(f.report(totalDuration)); err != nil {
		return err
	}
	return encoder.Close()
}
