package logging

import (
	"os"
	"path/filepath"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doodlesbykumbi/gateway-admin/pkg/config"
)

func TestSetup_Stdout(t *testing.T) {
	cfg := &config.GatewayConfig{LogLevel: "debug", LogMaxSizeMB: 1}
	closer, err := Setup(cfg)
	require.NoError(t, err)
	defer closer.Close()

	assert.Equal(t, log.DebugLevel, log.GetLevel())
}

func TestSetup_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gateway.log")
	cfg := &config.GatewayConfig{LogLevel: "info", LogFile: path, LogMaxSizeMB: 1}

	closer, err := Setup(cfg)
	require.NoError(t, err)
	log.Info("written to file")
	require.NoError(t, closer.Close())
	log.SetOutput(os.Stdout)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "written to file")
}

func TestSetup_BadLevel(t *testing.T) {
	_, err := Setup(&config.GatewayConfig{LogLevel: "loud"})
	assert.Error(t, err)
}
