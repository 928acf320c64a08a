/*
Package config reads tuning parameters for endless tracks from JSON files.

A tuning file is a flat JSON object. Every field is optional; absent fields
take their defaults, so partial files are safe:

	{
	  "spacing": 12,
	  "segments_per_span": 8,
	  "spoke_count": 4,
	  "twist_degrees": 30,
	  "variation": "noise",
	  "noise_amplitude": [4, 1, 0]
	}

Tunings translate into option values for the track, the stream and the
primitive pools.

# BSD License

# Copyright (c) Norbert Pillmayer

All rights reserved.

Please refer to the license file for more information.
*/
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/tubetrack"
	"github.com/npillmayer/tubetrack/ringpool"
	"github.com/npillmayer/tubetrack/stream"
	"github.com/npillmayer/tubetrack/track"
)

// tracer writes to trace with key 'config'
func tracer() tracing.Trace {
	return tracing.Select("config")
}

// ErrInvalidTuning is returned for tuning values out of range.
var ErrInvalidTuning = errors.New("invalid tuning")

// Variation kinds.
const (
	VariationNone  = "none"
	VariationNoise = "noise"
)

const maxFileSize = 1 << 20

// Tuning holds the tuning parameters of an endless track.
type Tuning struct {
	// Stream params
	Spacing    *float64    `json:"spacing,omitempty"`
	LookAhead  *int        `json:"look_ahead,omitempty"`
	TrimBuffer *int        `json:"trim_buffer,omitempty"`
	Direction  *[3]float64 `json:"direction,omitempty"`

	// Variation params
	Variation      *string     `json:"variation,omitempty"` // "none" or "noise"
	NoiseAmplitude *[3]float64 `json:"noise_amplitude,omitempty"`
	NoiseFrequency *float64    `json:"noise_frequency,omitempty"`
	NoiseSeed      *uint64     `json:"noise_seed,omitempty"`

	// Track params
	Tension         *float64 `json:"tension,omitempty"`
	Closed          *bool    `json:"closed,omitempty"`
	SegmentsPerSpan *int     `json:"segments_per_span,omitempty"`
	RingSkip        *int     `json:"ring_skip,omitempty"`
	SpokeSkip       *int     `json:"spoke_skip,omitempty"`
	SpokeCount      *int     `json:"spoke_count,omitempty"`
	Radius          *float64 `json:"radius,omitempty"`
	TwistDegrees    *float64 `json:"twist_degrees,omitempty"`
	RebuildInterval *string  `json:"rebuild_interval,omitempty"` // duration string like "16ms"

	// Pool params
	RadialSegments  *int `json:"radial_segments,omitempty"`
	PoolInitialSize *int `json:"pool_initial_size,omitempty"`
}

func ptrFloat64(v float64) *float64   { return &v }
func ptrBool(v bool) *bool            { return &v }
func ptrString(v string) *string      { return &v }
func ptrInt(v int) *int               { return &v }
func ptrUint64(v uint64) *uint64      { return &v }
func ptrVec(v [3]float64) *[3]float64 { return &v }

// DefaultTuning returns a tuning with every field set to its default.
func DefaultTuning() *Tuning {
	return &Tuning{
		Spacing:         ptrFloat64(10),
		LookAhead:       ptrInt(10),
		TrimBuffer:      ptrInt(5),
		Direction:       ptrVec([3]float64{0, 0, 1}),
		Variation:       ptrString(VariationNone),
		NoiseAmplitude:  ptrVec([3]float64{2, 1, 0}),
		NoiseFrequency:  ptrFloat64(0.2),
		NoiseSeed:       ptrUint64(1),
		Tension:         ptrFloat64(track.DefaultTension),
		Closed:          ptrBool(false),
		SegmentsPerSpan: ptrInt(track.DefaultSegmentsPerSpan),
		RingSkip:        ptrInt(1),
		SpokeSkip:       ptrInt(1),
		SpokeCount:      ptrInt(0),
		Radius:          ptrFloat64(track.DefaultRadius),
		TwistDegrees:    ptrFloat64(0),
		RebuildInterval: ptrString(track.DefaultRebuildInterval.String()),
		RadialSegments:  ptrInt(16),
		PoolInitialSize: ptrInt(0),
	}
}

// LoadTuning loads a tuning from a JSON file. The file must have a .json
// extension and must not exceed 1 MiB. Fields omitted from the file keep
// their defaults.
func LoadTuning(path string) (*Tuning, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("tuning file must have .json extension, got %q", ext)
	}
	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat tuning file: %w", err)
	}
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("tuning file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}
	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read tuning file: %w", err)
	}
	cfg := &Tuning{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse tuning JSON: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	tracer().P("file", cleanPath).Infof("loaded tuning")
	return cfg, nil
}

// Validate checks the fields which are set.
func (c *Tuning) Validate() error {
	if c.Tension != nil && (*c.Tension < 0 || *c.Tension > 1) {
		return fmt.Errorf("%w: tension must be between 0 and 1, got %g", ErrInvalidTuning, *c.Tension)
	}
	if c.Spacing != nil && *c.Spacing <= 0 {
		return fmt.Errorf("%w: spacing must be positive, got %g", ErrInvalidTuning, *c.Spacing)
	}
	if c.LookAhead != nil && *c.LookAhead < 2 {
		return fmt.Errorf("%w: look_ahead must be at least 2, got %d", ErrInvalidTuning, *c.LookAhead)
	}
	if c.TrimBuffer != nil && *c.TrimBuffer < 0 {
		return fmt.Errorf("%w: trim_buffer must be non-negative, got %d", ErrInvalidTuning, *c.TrimBuffer)
	}
	if c.SegmentsPerSpan != nil && *c.SegmentsPerSpan < 1 {
		return fmt.Errorf("%w: segments_per_span must be at least 1, got %d", ErrInvalidTuning, *c.SegmentsPerSpan)
	}
	if c.RingSkip != nil && *c.RingSkip < 1 {
		return fmt.Errorf("%w: ring_skip must be at least 1, got %d", ErrInvalidTuning, *c.RingSkip)
	}
	if c.SpokeSkip != nil && *c.SpokeSkip < 1 {
		return fmt.Errorf("%w: spoke_skip must be at least 1, got %d", ErrInvalidTuning, *c.SpokeSkip)
	}
	if c.SpokeCount != nil && *c.SpokeCount < 0 {
		return fmt.Errorf("%w: spoke_count must be non-negative, got %d", ErrInvalidTuning, *c.SpokeCount)
	}
	if c.PoolInitialSize != nil && *c.PoolInitialSize < 0 {
		return fmt.Errorf("%w: pool_initial_size must be non-negative, got %d", ErrInvalidTuning, *c.PoolInitialSize)
	}
	if c.RebuildInterval != nil && *c.RebuildInterval != "" {
		d, err := time.ParseDuration(*c.RebuildInterval)
		if err != nil {
			return fmt.Errorf("%w: invalid rebuild_interval %q: %w", ErrInvalidTuning, *c.RebuildInterval, err)
		}
		if d < 0 {
			return fmt.Errorf("%w: rebuild_interval must be non-negative, got %s", ErrInvalidTuning, d)
		}
	}
	if c.Variation != nil {
		switch *c.Variation {
		case VariationNone, VariationNoise, "":
		default:
			return fmt.Errorf("%w: unknown variation %q", ErrInvalidTuning, *c.Variation)
		}
	}
	return nil
}

// --- Getters ---------------------------------------------------------------

// GetSpacing returns the spacing or the default.
func (c *Tuning) GetSpacing() float64 {
	if c.Spacing == nil {
		return 10
	}
	return *c.Spacing
}

// GetLookAhead returns the look-ahead or the default.
func (c *Tuning) GetLookAhead() int {
	if c.LookAhead == nil {
		return 10
	}
	return *c.LookAhead
}

// GetTrimBuffer returns the trim buffer or the default.
func (c *Tuning) GetTrimBuffer() int {
	if c.TrimBuffer == nil {
		return 5
	}
	return *c.TrimBuffer
}

// GetDirection returns the base direction of generation or the z-axis.
func (c *Tuning) GetDirection() tubetrack.Waypoint {
	if c.Direction == nil {
		return tubetrack.ZAxis
	}
	return vec(*c.Direction)
}

// GetVariation returns the variation kind or "none".
func (c *Tuning) GetVariation() string {
	if c.Variation == nil || *c.Variation == "" {
		return VariationNone
	}
	return *c.Variation
}

// GetTension returns the tension or the default.
func (c *Tuning) GetTension() float64 {
	if c.Tension == nil {
		return track.DefaultTension
	}
	return *c.Tension
}

// GetSegmentsPerSpan returns the segments per span or the default.
func (c *Tuning) GetSegmentsPerSpan() int {
	if c.SegmentsPerSpan == nil {
		return track.DefaultSegmentsPerSpan
	}
	return *c.SegmentsPerSpan
}

// GetRadius returns the spoke radius or the default.
func (c *Tuning) GetRadius() float64 {
	if c.Radius == nil {
		return track.DefaultRadius
	}
	return *c.Radius
}

// GetRebuildInterval parses and returns the rebuild interval.
func (c *Tuning) GetRebuildInterval() time.Duration {
	if c.RebuildInterval == nil || *c.RebuildInterval == "" {
		return track.DefaultRebuildInterval
	}
	d, err := time.ParseDuration(*c.RebuildInterval)
	if err != nil {
		return track.DefaultRebuildInterval
	}
	return d
}

// GetRadialSegments returns the number of radial segments of ring meshes.
func (c *Tuning) GetRadialSegments() int {
	if c.RadialSegments == nil {
		return 16
	}
	return *c.RadialSegments
}

// GetPoolInitialSize returns the number of pre-allocated primitives.
func (c *Tuning) GetPoolInitialSize() int {
	if c.PoolInitialSize == nil {
		return 0
	}
	return *c.PoolInitialSize
}

// --- Converters ------------------------------------------------------------

// TrackOptions translates the tuning into track options. Pools are left
// empty; see PoolOptions.
func (c *Tuning) TrackOptions() track.Options {
	opts := track.DefaultOptions()
	opts.Tension = c.GetTension()
	opts.SegmentsPerSpan = c.GetSegmentsPerSpan()
	opts.Radius = c.GetRadius()
	opts.RebuildInterval = c.GetRebuildInterval()
	if c.Closed != nil {
		opts.Closed = *c.Closed
	}
	if c.RingSkip != nil {
		opts.RingSkip = *c.RingSkip
	}
	if c.SpokeSkip != nil {
		opts.SpokeSkip = *c.SpokeSkip
	}
	if c.SpokeCount != nil {
		opts.SpokeCount = *c.SpokeCount
	}
	if c.TwistDegrees != nil && *c.TwistDegrees != 0 {
		opts.PhaseAdvance = track.ConstantTwist(*c.TwistDegrees, opts.SegmentsPerSpan)
	}
	return opts
}

// StreamOptions translates the tuning into stream options.
func (c *Tuning) StreamOptions() stream.Options {
	opts := stream.DefaultOptions()
	opts.Spacing = c.GetSpacing()
	opts.LookAhead = c.GetLookAhead()
	opts.TrimBuffer = c.GetTrimBuffer()
	opts.Direction = c.GetDirection()
	if c.GetVariation() == VariationNoise {
		d := DefaultTuning()
		amp, freq, seed := *d.NoiseAmplitude, *d.NoiseFrequency, *d.NoiseSeed
		if c.NoiseAmplitude != nil {
			amp = *c.NoiseAmplitude
		}
		if c.NoiseFrequency != nil {
			freq = *c.NoiseFrequency
		}
		if c.NoiseSeed != nil {
			seed = *c.NoiseSeed
		}
		opts.Variation = stream.NewNoise(vec(amp), freq, seed)
	}
	return opts
}

// PoolOptions carries what is needed to create the primitive pools of a
// track.
type PoolOptions struct {
	Ring        ringpool.Torus
	Spoke       ringpool.Spoke
	InitialSize int
	WithSpokes  bool
}

// PoolOptions translates the tuning into pool parameters. The ring torus
// matches the spoke radius, spokes span from the centerline to the ring.
func (c *Tuning) PoolOptions() PoolOptions {
	r := c.GetRadius()
	return PoolOptions{
		Ring: ringpool.Torus{
			Radius:          r,
			Tube:            r / 20,
			RadialSegments:  c.GetRadialSegments(),
			TubularSegments: 2 * c.GetRadialSegments(),
		},
		Spoke:       ringpool.Spoke{Length: r, Width: r / 20},
		InitialSize: c.GetPoolInitialSize(),
		WithSpokes:  c.SpokeCount != nil && *c.SpokeCount > 0,
	}
}

// NewPools creates the ring pool and, if spokes are configured, the spoke
// pool. The spoke pool is nil otherwise.
func (po PoolOptions) NewPools(opts ...ringpool.Option) (rings, spokes *ringpool.Pool) {
	rings = ringpool.New(po.Ring, po.InitialSize, opts...)
	if po.WithSpokes {
		spokes = ringpool.New(po.Spoke, po.InitialSize, opts...)
	}
	return
}

func vec(v [3]float64) tubetrack.Waypoint {
	return tubetrack.W(v[0], v[1], v[2])
}
