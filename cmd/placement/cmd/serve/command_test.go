package serve

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/placement/internal/appcontext"
	"github.com/agentstation/placement/pkg/errors"
)

func TestLoadSeed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roster.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`students:
  - id: s1
    first_name: Asha
  - id: s2
    first_name: Ravi
performances:
  - student_id: s1
    degree_cgpa: 8.2
    mca_cgpa: [7.5, 8.0]
`), 0o600))

	seed, err := LoadSeed(path)
	require.NoError(t, err)
	require.Len(t, seed.Students, 2)
	assert.Equal(t, "Asha", seed.Students[0].FirstName)
	require.Len(t, seed.Performances, 1)
	assert.Equal(t, []float64{7.5, 8.0}, seed.Performances[0].MCACGPA)
}

func TestLoadSeedErrors(t *testing.T) {
	_, err := LoadSeed(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("students: [\n"), 0o600))
	_, err = LoadSeed(path)
	var parseErr *errors.ParseError
	assert.ErrorAs(t, err, &parseErr)
}

func TestParseConfig(t *testing.T) {
	cmd := NewCommand(&appcontext.Mock{Host: "0.0.0.0", Port: 9100})
	require.NoError(t, cmd.ParseFlags([]string{
		"--cors-origins", "https://pms.example",
		"--auth", "--api-key", "secret",
		"--write-timeout", "30s",
	}))

	cfg := parseConfig(cmd)
	assert.Equal(t, "0.0.0.0:9100", cfg.Addr())
	assert.True(t, cfg.CORSEnabled, "origins imply CORS")
	assert.Equal(t, []string{"https://pms.example"}, cfg.CORSOrigins)
	assert.True(t, cfg.AuthEnabled)
	assert.Equal(t, "secret", cfg.APIKey)
	assert.Equal(t, 30*time.Second, cfg.WriteTimeout)
}
