// Package endpointfile reads ad-hoc endpoint lists for the CLI.
//
// A file looks like:
//
//	name: local devnet
//	timeout: 2s
//	endpoints:
//	  - http://127.0.0.1:8545
//	  - wss://mainnet.infura.io/ws/v3/${INFURA_API_KEY}
//
// ${VAR} references are replaced from the environment. Unset variables are left as they are,
// so an unresolved credential placeholder still marks the endpoint as one that must not be probed.
package endpointfile

import (
	"fmt"
	"os"
	"time"

	"chainlist-rpcs/internal/domain/entity"
	"chainlist-rpcs/internal/pkg/apperrors"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
)

// File is a parsed endpoint list.
type File struct {
	Name      string
	Timeout   time.Duration
	Endpoints []entity.Endpoint
}

type rawFile struct {
	Name      string   `yaml:"name"`
	Timeout   Duration `yaml:"timeout"`
	Endpoints []string `yaml:"endpoints"`
}

// Duration is a time.Duration written as a Go duration string ("1500ms", "2s").
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}

	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	if parsed < 0 {
		return fmt.Errorf("duration %q must not be negative", s)
	}

	*d = Duration(parsed)
	return nil
}

// Load reads and parses the endpoint file at path.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read endpoint file: %w", err)
	}
	return Parse(data)
}

// Parse parses endpoint file data. Every invalid URL is reported, not just the first.
func Parse(data []byte) (*File, error) {
	var raw rawFile
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: failed to parse YAML: %v", apperrors.ErrInvalidInput, err)
	}
	if len(raw.Endpoints) == 0 {
		return nil, fmt.Errorf("%w: endpoint file lists no endpoints", apperrors.ErrInvalidInput)
	}

	file := &File{
		Name:      raw.Name,
		Timeout:   time.Duration(raw.Timeout),
		Endpoints: make([]entity.Endpoint, 0, len(raw.Endpoints)),
	}

	var errs error
	for i, rawURL := range raw.Endpoints {
		endpoint, err := entity.NewEndpoint(expandSetVars(rawURL))
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("endpoints[%d]: %w", i, err))
			continue
		}
		file.Endpoints = append(file.Endpoints, endpoint)
	}
	if errs != nil {
		return nil, errs
	}
	return file, nil
}

func expandSetVars(s string) string {
	return os.Expand(s, func(key string) string {
		if v, ok := os.LookupEnv(key); ok {
			return v
		}
		return "${" + key + "}"
	})
}
