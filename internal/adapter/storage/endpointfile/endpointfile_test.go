package endpointfile

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	"chainlist-rpcs/internal/domain/entity"
	"chainlist-rpcs/internal/pkg/apperrors"
)

func TestParse(t *testing.T) {
	t.Setenv("ALCHEMY_TOKEN", "abc123")

	file, err := Parse([]byte(`
name: mainnet mix
timeout: 1500ms
endpoints:
  - https://eth-mainnet.g.alchemy.com/v2/${ALCHEMY_TOKEN}
  - wss://mainnet.infura.io/ws/v3/${INFURA_API_KEY}
  - http://127.0.0.1:8545
`))
	require.NoError(t, err)

	assert.Equal(t, "mainnet mix", file.Name)
	assert.Equal(t, 1500*time.Millisecond, file.Timeout)
	require.Len(t, file.Endpoints, 3)
	assert.Equal(t, "https://eth-mainnet.g.alchemy.com/v2/abc123", file.Endpoints[0].String())
	assert.Equal(t, "wss://mainnet.infura.io/ws/v3/${INFURA_API_KEY}", file.Endpoints[1].String())
	assert.True(t, file.Endpoints[1].RequiresSecret())
	assert.Equal(t, entity.TransportWebSocket, file.Endpoints[1].Transport)
	assert.Equal(t, entity.TransportHTTP, file.Endpoints[2].Transport)
}

func TestParse_NoTimeout(t *testing.T) {
	file, err := Parse([]byte("endpoints: [\"https://a.example\"]\n"))
	require.NoError(t, err)
	assert.Zero(t, file.Timeout)
}

func TestParse_ReportsEveryBadURL(t *testing.T) {
	_, err := Parse([]byte(`
endpoints:
  - ftp://files.example
  - https://ok.example
  - "::nope"
`))
	require.Error(t, err)
	assert.Len(t, multierr.Errors(err), 2)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestParse_Rejects(t *testing.T) {
	for name, data := range map[string]string{
		"empty":        "endpoints: []\n",
		"bad yaml":     "endpoints: [\n",
		"bad duration": "timeout: soon\nendpoints: [\"https://a\"]\n",
	} {
		_, err := Parse([]byte(data))
		assert.Error(t, err, name)
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "endpoints.yaml")
	require.NoError(t, os.WriteFile(path, []byte("endpoints:\n  - https://a.example\n"), 0o600))

	file, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, file.Endpoints, 1)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
