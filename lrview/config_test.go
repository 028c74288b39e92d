package lrview_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"oss.terrastruct.com/lrviz/lrview"
)

func TestParseConfig(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name   string
		in     map[string]interface{}
		assert func(t *testing.T, cfg *lrview.Config)
		expErr string
	}{
		{
			name: "defaults",
			in:   nil,
			assert: func(t *testing.T, cfg *lrview.Config) {
				assert.Equal(t, lrview.DefaultConfig(), cfg)
			},
		},
		{
			name: "overrides",
			in: map[string]interface{}{
				"curveFactor": 0.25,
				"nodeSize":    "40",
				"seed":        7,
				"direction":   "right",
				"unknown":     true,
			},
			assert: func(t *testing.T, cfg *lrview.Config) {
				assert.Equal(t, 0.25, cfg.CurveFactor)
				assert.Equal(t, 40., cfg.NodeSize)
				assert.Equal(t, int64(7), cfg.Seed)
				assert.Equal(t, "right", cfg.Direction)
				assert.Equal(t, lrview.DefaultConfig().LinkDistance, cfg.LinkDistance)
			},
		},
		{
			name: "frame_interval_millis",
			in:   map[string]interface{}{"frameInterval": 33},
			assert: func(t *testing.T, cfg *lrview.Config) {
				assert.Equal(t, 33*time.Millisecond, cfg.FrameInterval)
			},
		},
		{
			name: "frame_interval_float",
			in:   map[string]interface{}{"frameInterval": 0.5},
			assert: func(t *testing.T, cfg *lrview.Config) {
				assert.Equal(t, 500*time.Microsecond, cfg.FrameInterval)
			},
		},
		{
			name: "frame_interval_duration",
			in:   map[string]interface{}{"frameInterval": "1s"},
			assert: func(t *testing.T, cfg *lrview.Config) {
				assert.Equal(t, time.Second, cfg.FrameInterval)
			},
		},
		{
			name:   "bad_direction",
			in:     map[string]interface{}{"direction": "up"},
			expErr: `failed to parse config: direction must be "down" or "right", got "up"`,
		},
		{
			name:   "bad_node_size",
			in:     map[string]interface{}{"nodeSize": 0},
			expErr: "nodeSize must be positive",
		},
		{
			name:   "negative_interval",
			in:     map[string]interface{}{"frameInterval": -5},
			expErr: "frameInterval must not be negative",
		},
		{
			name:   "bad_type",
			in:     map[string]interface{}{"linkDistance": "far"},
			expErr: "linkDistance",
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			cfg, err := lrview.ParseConfig(tc.in)
			if tc.expErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.expErr)
				return
			}
			require.NoError(t, err)
			tc.assert(t, cfg)
		})
	}
}

func TestLoadConfig(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	yamlPath := filepath.Join(dir, "lrviz.yaml")
	err := os.WriteFile(yamlPath, []byte("chargeStrength: -1000\nframeInterval: 20ms\n"), 0600)
	require.NoError(t, err)
	jsonPath := filepath.Join(dir, "lrviz.json")
	err = os.WriteFile(jsonPath, []byte(`{"labelOffset": 12, "frameInterval": 0}`), 0600)
	require.NoError(t, err)

	cfg, err := lrview.LoadConfig(yamlPath)
	require.NoError(t, err)
	assert.Equal(t, -1000., cfg.ChargeStrength)
	assert.Equal(t, 20*time.Millisecond, cfg.FrameInterval)

	cfg, err = lrview.LoadConfig(jsonPath)
	require.NoError(t, err)
	assert.Equal(t, 12., cfg.LabelOffset)
	assert.Equal(t, time.Duration(0), cfg.FrameInterval)

	_, err = lrview.LoadConfig(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}
