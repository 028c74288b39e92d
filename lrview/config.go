package lrview

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"oss.terrastruct.com/xdefer"

	"oss.terrastruct.com/lrviz/lrlayouts/lredge"
	"oss.terrastruct.com/lrviz/lrlayouts/lrforce"
	"oss.terrastruct.com/lrviz/lrlayouts/lrtree"
)

const DEFAULT_FRAME_INTERVAL = 16 * time.Millisecond

// Config tunes both views. Keys are the camelCase field names.
type Config struct {
	CurveFactor float64 `mapstructure:"curveFactor" json:"curveFactor" yaml:"curveFactor"`
	LabelOffset float64 `mapstructure:"labelOffset" json:"labelOffset" yaml:"labelOffset"`
	NodeSize    float64 `mapstructure:"nodeSize" json:"nodeSize" yaml:"nodeSize"`

	LinkDistance    float64 `mapstructure:"linkDistance" json:"linkDistance" yaml:"linkDistance"`
	LinkStrength    float64 `mapstructure:"linkStrength" json:"linkStrength" yaml:"linkStrength"`
	ChargeStrength  float64 `mapstructure:"chargeStrength" json:"chargeStrength" yaml:"chargeStrength"`
	CollisionMargin float64 `mapstructure:"collisionMargin" json:"collisionMargin" yaml:"collisionMargin"`
	AxisStrength    float64 `mapstructure:"axisStrength" json:"axisStrength" yaml:"axisStrength"`
	// Seed seeds the tie breaking of coincident nodes.
	Seed int64 `mapstructure:"seed" json:"seed" yaml:"seed"`

	// FrameInterval is the period of the automaton's frame loop. 0 disables the
	// loop and leaves stepping to the host. Numbers are milliseconds, strings are
	// Go durations ("16ms").
	FrameInterval time.Duration `mapstructure:"frameInterval" json:"frameInterval" yaml:"frameInterval"`

	// Direction of the parse tree: "down" or "right".
	Direction string `mapstructure:"direction" json:"direction" yaml:"direction"`
}

func DefaultConfig() *Config {
	return &Config{
		CurveFactor:     lredge.DEFAULT_CURVE_FACTOR,
		LabelOffset:     lredge.DEFAULT_LABEL_OFFSET,
		NodeSize:        lrtree.DEFAULT_NODE_SIZE,
		LinkDistance:    lrforce.DEFAULT_LINK_DISTANCE,
		LinkStrength:    lrforce.DEFAULT_LINK_STRENGTH,
		ChargeStrength:  lrforce.DEFAULT_CHARGE_STRENGTH,
		CollisionMargin: lrforce.DEFAULT_COLLISION_MARGIN,
		AxisStrength:    lrforce.DEFAULT_AXIS_STRENGTH,
		FrameInterval:   DEFAULT_FRAME_INTERVAL,
		Direction:       string(lrtree.DirectionDown),
	}
}

// ParseConfig overlays m on the defaults. Unknown keys are ignored.
func ParseConfig(m map[string]interface{}) (_ *Config, err error) {
	defer xdefer.Errorf(&err, "failed to parse config")

	cfg := DefaultConfig()
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           cfg,
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			millisecondsHook,
			mapstructure.StringToTimeDurationHookFunc(),
		),
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(m); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConfig reads a YAML or, by extension, JSON config file.
func LoadConfig(path string) (_ *Config, err error) {
	defer xdefer.Errorf(&err, "failed to load config %q", path)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	m := make(map[string]interface{})
	if strings.ToLower(filepath.Ext(path)) == ".json" {
		err = json.Unmarshal(data, &m)
	} else {
		err = yaml.Unmarshal(data, &m)
	}
	if err != nil {
		return nil, err
	}
	return ParseConfig(m)
}

func (c *Config) validate() error {
	if c.NodeSize <= 0 {
		return fmt.Errorf("nodeSize must be positive, got %v", c.NodeSize)
	}
	if c.FrameInterval < 0 {
		return fmt.Errorf("frameInterval must not be negative, got %v", c.FrameInterval)
	}
	switch lrtree.Direction(c.Direction) {
	case lrtree.DirectionDown, lrtree.DirectionRight:
	default:
		return fmt.Errorf(`direction must be "down" or "right", got %q`, c.Direction)
	}
	return nil
}

var durationType = reflect.TypeOf(time.Duration(0))

func millisecondsHook(from, to reflect.Type, data interface{}) (interface{}, error) {
	if to != durationType {
		return data, nil
	}
	switch v := data.(type) {
	case int:
		return time.Duration(v) * time.Millisecond, nil
	case int64:
		return time.Duration(v) * time.Millisecond, nil
	case uint64:
		return time.Duration(v) * time.Millisecond, nil
	case float64:
		return time.Duration(v * float64(time.Millisecond)), nil
	}
	return data, nil
}

func (c *Config) forceOpts() *lrforce.Opts {
	return &lrforce.Opts{
		LinkDistance:    c.LinkDistance,
		LinkStrength:    c.LinkStrength,
		ChargeStrength:  c.ChargeStrength,
		CollisionMargin: c.CollisionMargin,
		AxisStrength:    c.AxisStrength,
		Rand:            rand.New(rand.NewSource(c.Seed)),
	}
}

func (c *Config) edgeOpts() *lredge.Opts {
	return &lredge.Opts{
		CurveFactor: c.CurveFactor,
		LabelOffset: c.LabelOffset,
	}
}

func (c *Config) treeOpts() *lrtree.Opts {
	return &lrtree.Opts{
		NodeSize:  c.NodeSize,
		Direction: lrtree.Direction(c.Direction),
	}
}
