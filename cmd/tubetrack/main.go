// tubetrack simulates a player travelling along an endless tube track.
// Waypoints are streamed ahead of the player and trimmed behind it, and the
// tube's rings and spokes are rebuilt from pooled primitives as the track
// changes. Nothing is drawn; primitives live in an in-memory scene and the
// command reports what a renderer would see.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/fang"
	"github.com/npillmayer/tubetrack"
	"github.com/npillmayer/tubetrack/catmull"
	"github.com/npillmayer/tubetrack/config"
	"github.com/npillmayer/tubetrack/polygon"
	"github.com/npillmayer/tubetrack/ringpool"
	"github.com/npillmayer/tubetrack/stream"
	"github.com/npillmayer/tubetrack/track"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/spatial/r3"
)

var version = "dev"

var (
	configPath string
	initial    int
)

func main() {
	root := &cobra.Command{
		Use:   "tubetrack",
		Short: "Simulate endless spline tube tracks",
		Long: `tubetrack builds a tube track along a Catmull-Rom spline through
streamed waypoints and keeps its render primitives pooled.

Commands:
  run       Simulate a player travelling along an endless track
  inspect   Print the initial waypoints, length, bounds and footprint`,
		Version:      version,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "tuning file (JSON)")
	root.PersistentFlags().IntVar(&initial, "initial", 20, "number of initial waypoints")

	root.AddCommand(
		runCmd(),
		inspectCmd(),
	)

	if err := fang.Execute(context.Background(), root); err != nil {
		os.Exit(1)
	}
}

func loadTuning() (*config.Tuning, error) {
	if configPath == "" {
		return config.DefaultTuning(), nil
	}
	return config.LoadTuning(configPath)
}

// sim bundles the parts of a running simulation.
type sim struct {
	scene  *ringpool.MemoryScene
	rings  *ringpool.Pool
	spokes *ringpool.Pool
	stream *stream.Stream
	track  *track.Track
}

func newSim(cfg *config.Tuning) *sim {
	s := &sim{scene: ringpool.NewMemoryScene()}
	s.rings, s.spokes = cfg.PoolOptions().NewPools(ringpool.WithRenderer(s.scene))
	topts := cfg.TrackOptions()
	topts.Name = "endless"
	topts.Pool, topts.SpokePool = s.rings, s.spokes
	s.stream = stream.New(cfg.StreamOptions())
	s.track = track.New(s.stream.GenerateInitial(initial), topts)
	s.stream.Init(s.track)
	return s
}

func runCmd() *cobra.Command {
	var ticks int
	var speed float64
	var dt time.Duration
	var every int
	var realtime bool
	var halfWidth float64

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Simulate a player travelling along an endless track",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			cfg, err := loadTuning()
			if err != nil {
				return err
			}
			s := newSim(cfg)
			defer s.track.Destroy()

			var ticker *time.Ticker
			if realtime {
				ticker = time.NewTicker(dt)
				defer ticker.Stop()
			}
			spacing := cfg.GetSpacing()
			var footprints []*polygon.Polygon
			now := time.Now()
			s.track.RequestRebuild(now, true)
			playerT := 0.0
			for tick := 1; tick <= ticks; tick++ {
				if ticker != nil {
					select {
					case <-ctx.Done():
						return nil
					case now = <-ticker.C:
					}
				} else {
					if ctx.Err() != nil {
						return nil
					}
					now = now.Add(dt)
				}
				// one parameter unit spans roughly one spacing
				playerT = s.stream.Update(playerT + speed*dt.Seconds()/spacing)
				s.track.RequestRebuild(now, false)
				if every > 0 && tick%every == 0 {
					s.report(cmd, tick, playerT)
					footprints = append(footprints, s.track.Footprint(halfWidth))
				}
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "travelled %.1f waypoints, generated %d, trimmed %d\n",
				float64(s.stream.Offset())+playerT, s.stream.Generated(), s.stream.Offset())
			if len(footprints) > 0 {
				region := polygon.Union(footprints...)
				bb := region.BoundingBox()
				fmt.Fprintf(out, "ground covered by %d reported windows: %d contour(s), (%.3f,%.3f)..(%.3f,%.3f)\n",
					len(footprints), len(region), bb.Min.X, bb.Min.Y, bb.Max.X, bb.Max.Y)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&ticks, "ticks", 600, "number of simulation ticks")
	cmd.Flags().Float64Var(&speed, "speed", 40, "player speed in units per second")
	cmd.Flags().DurationVar(&dt, "dt", 16*time.Millisecond, "tick duration")
	cmd.Flags().IntVar(&every, "every", 60, "report every n ticks (0 = never)")
	cmd.Flags().BoolVar(&realtime, "realtime", false, "pace ticks with the wall clock")
	cmd.Flags().Float64Var(&halfWidth, "half-width", 2, "half width of the ground footprint")
	return cmd
}

func (s *sim) report(cmd *cobra.Command, tick int, playerT float64) {
	rings := s.rings.Stats()
	line := fmt.Sprintf("tick %5d  t=%6.3f  waypoints=%3d  rings[%s]  scene=%d",
		tick, playerT, s.track.WaypointCount(), rings, s.scene.Len(s.track.Scene()))
	if s.spokes != nil {
		line += fmt.Sprintf("  spokes[%s]", s.spokes.Stats())
	}
	fmt.Fprintln(cmd.OutOrStdout(), line)
	fmt.Fprintf(cmd.OutOrStdout(), "           bounds %s\n", boxString(s.track.Bounds()))
}

func inspectCmd() *cobra.Command {
	var halfWidth float64

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Print the initial waypoints, length, bounds and footprint",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadTuning()
			if err != nil {
				return err
			}
			s := newSim(cfg)
			defer s.track.Destroy()
			points := s.track.Waypoints()
			closed := s.track.Options().Closed
			if err := catmull.Validate(points, closed); err != nil {
				return err
			}
			s.track.Generate()
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, catmull.AsString(points, closed))
			fmt.Fprintf(out, "parameter range %s, length %.3f\n",
				s.track.ParameterRange(), s.track.Length())
			fmt.Fprintf(out, "bounds %s, rendered %s\n",
				boxString(s.track.Bounds()), boxString(s.track.RenderBounds()))
			fmt.Fprintf(out, "rings %d, %s, %d radial segments\n",
				len(s.track.Rings()), s.rings.Stats(), s.track.RadialSegments())
			printPool(out, "ring", s.rings)
			if s.spokes != nil {
				printPool(out, "spoke", s.spokes)
			}
			fp := s.track.Footprint(halfWidth)
			bb := fp.BoundingBox()
			fmt.Fprintf(out, "footprint area %.3f, ground box (%.3f,%.3f)..(%.3f,%.3f)\n",
				fp.Area(), bb.Min.X, bb.Min.Y, bb.Max.X, bb.Max.Y)
			return nil
		},
	}

	cmd.Flags().Float64Var(&halfWidth, "half-width", 2, "half width of the ground footprint")
	return cmd
}

// printPool reports a pool's shape and the vertices its active primitives
// need.
func printPool(out io.Writer, name string, p *ringpool.Pool) {
	shape := p.Shape()
	v := ringpool.VertexCount(shape)
	active := p.Stats().Active
	fmt.Fprintf(out, "%s pool: %s, extent %.3f, %d vertices each, %d active (%d vertices)\n",
		name, ringpool.Describe(shape), ringpool.Extent(shape), v, active, v*active)
}

func boxString(b r3.Box) string {
	return fmt.Sprintf("%s..%s", tubetrack.String(b.Min), tubetrack.String(b.Max))
}
