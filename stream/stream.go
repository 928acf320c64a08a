/*
Package stream generates waypoints for endless tracks.

A Stream keeps a sliding window of waypoints around a player travelling
along a track: enough waypoints ahead of the player so that the curve never
runs out, and a bounded buffer behind the player so that memory and
geometry stay bounded.

	s := stream.New(stream.DefaultOptions())
	tr := track.New(s.GenerateInitial(20), track.DefaultOptions())
	s.Init(tr)
	for tick := range ticks {
		playerT = s.Update(playerT + speed*dt)
		tr.RequestRebuild(tick, false)
	}

Trimming waypoints from the front of a track shifts its parameter domain.
Update therefore returns the player's parameter re-based into the shifted
window; callers continue with the returned value. Offset reports how many
waypoints have been trimmed in total, so absolute waypoint indices remain
derivable.

# BSD License

# Copyright (c) Norbert Pillmayer

All rights reserved.

Please refer to the license file for more information.
*/
package stream

import (
	"math"

	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/tubetrack"
	"github.com/npillmayer/tubetrack/track"
	"gonum.org/v1/gonum/spatial/r3"
)

// tracer writes to trace with key 'stream'
func tracer() tracing.Trace {
	return tracing.Select("stream")
}

// Options configure a stream.
type Options struct {
	Spacing    float64            // distance between generated waypoints
	LookAhead  int                // waypoints to keep ahead of the player
	TrimBuffer int                // waypoints to keep behind the player
	Direction  tubetrack.Waypoint // base direction of generation
	Variation  Variation          // nil = no variation
}

// DefaultOptions returns options for a stream heading along the z-axis.
func DefaultOptions() Options {
	return Options{
		Spacing:    10,
		LookAhead:  10,
		TrimBuffer: 5,
		Direction:  tubetrack.ZAxis,
		Variation:  None{},
	}
}

// Stream appends waypoints ahead of a player and trims waypoints behind it.
// It mutates its track through the track's public operations only.
type Stream struct {
	opts        Options
	dir         tubetrack.Waypoint // unit base direction
	track       *track.Track
	playerIndex int // player's waypoint index within the current window
	offset      int // waypoints trimmed since Init
	generated   int // waypoints appended since Init
}

// New creates a stream. It has to be bound to a track with Init before
// Update has any effect.
func New(opts Options) *Stream {
	if opts.Variation == nil {
		opts.Variation = None{}
	}
	if opts.LookAhead < 1 {
		opts.LookAhead = 1
	}
	if opts.TrimBuffer < 0 {
		opts.TrimBuffer = 0
	}
	s := &Stream{opts: opts}
	s.dir, _ = tubetrack.Normalize(opts.Direction, tubetrack.ZAxis)
	return s
}

// Init binds the stream to a track and resets the player's progress.
func (s *Stream) Init(tr *track.Track) {
	s.track = tr
	s.playerIndex = 0
	s.offset = 0
	s.generated = 0
}

// GenerateInitial produces count waypoints, starting at the origin. Each
// waypoint is offset from its predecessor by the base direction scaled by
// the spacing, plus the stream's variation.
func (s *Stream) GenerateInitial(count int) []tubetrack.Waypoint {
	if count <= 0 {
		return nil
	}
	points := make([]tubetrack.Waypoint, 1, count)
	points[0] = tubetrack.Origin
	for i := 1; i < count; i++ {
		points = append(points, s.next(i, points[i-1]))
	}
	return points
}

// Update advances the window to the player's parameter playerT: waypoints
// are appended until LookAhead of them lie ahead of the player, then all but
// TrimBuffer waypoints behind the player are trimmed. Update returns the
// player's parameter re-based to the track's shifted indexing.
//
// Non-finite or negative parameters are treated as 0, parameters beyond the
// end of the track as the end of the track.
func (s *Stream) Update(playerT float64) float64 {
	if s.track == nil {
		tracer().Errorf("stream update without track")
		return playerT
	}
	if math.IsNaN(playerT) || math.IsInf(playerT, 0) || playerT < 0 {
		tracer().Debugf("player parameter %g treated as 0", playerT)
		playerT = 0
	}
	if r := s.track.ParameterRange(); playerT > r.Max {
		tracer().Debugf("player parameter %g beyond end of track, clamped to %g", playerT, r.Max)
		playerT = r.Max
	}
	idx := int(math.Floor(playerT))
	for s.track.WaypointCount()-idx < s.opts.LookAhead {
		n := s.track.WaypointCount()
		var w tubetrack.Waypoint
		if n == 0 {
			w = tubetrack.Origin
		} else {
			w = s.next(s.offset+n, s.track.LastWaypoint())
		}
		s.track.AddWaypoint(w)
		s.generated++
	}
	trimmed := 0
	if idx > s.opts.TrimBuffer {
		before := s.track.WaypointCount()
		s.track.TrimFront(idx - s.opts.TrimBuffer)
		trimmed = before - s.track.WaypointCount()
	}
	s.offset += trimmed
	s.playerIndex = idx - trimmed
	if trimmed > 0 {
		tracer().P("offset", s.offset).Debugf("trimmed %d waypoints, player at index %d",
			trimmed, s.playerIndex)
	}
	return playerT - float64(trimmed)
}

// next generates the waypoint with absolute index i following prev.
func (s *Stream) next(i int, prev tubetrack.Waypoint) tubetrack.Waypoint {
	step := r3.Scale(s.opts.Spacing, s.dir)
	return r3.Add(r3.Add(prev, step), s.opts.Variation.Variation(i, prev))
}

// PlayerIndex returns the player's waypoint index within the current window,
// as of the last update.
func (s *Stream) PlayerIndex() int {
	return s.playerIndex
}

// Offset returns the number of waypoints trimmed since Init. The absolute
// index of waypoint i of the track is Offset() + i.
func (s *Stream) Offset() int {
	return s.offset
}

// Generated returns the number of waypoints appended since Init.
func (s *Stream) Generated() int {
	return s.generated
}

// Options returns the stream's options.
func (s *Stream) Options() Options {
	return s.opts
}
