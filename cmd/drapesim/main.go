// drapesim drives the drape scenes headless: no window, no input devices,
// just the choreography stepped at a fixed dt with a scripted or tweened
// control signal. Runs are deterministic, so tuning work and motion
// regressions come down to diffing two CSV exports.
package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	drape "github.com/ProfMoriartey/3d-demo"
)

var (
	frames     int
	dt         float64
	depth      float64
	configFile string
	scriptFile string
	target     float64
	over       float64
	signal     float64
	noPhysics  bool
	csvFile    string
	withPlot   bool
	plotHeight int
	plotWidth  int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "drapesim",
		Short: "headless drape scene runner",
	}

	runCmd := &cobra.Command{
		Use:   "run [scene]",
		Short: "run a scene and print its final channel values",
		Args:  cobra.ExactArgs(1),
		RunE:  runScene,
	}
	addSimFlags(runCmd)
	runCmd.Flags().StringVar(&csvFile, "csv", "", "write per-frame channels to a csv file")
	runCmd.Flags().BoolVar(&withPlot, "plot", false, "print channel plots after the run")

	plotCmd := &cobra.Command{
		Use:   "plot [scene]",
		Short: "run a scene and plot its channels",
		Args:  cobra.ExactArgs(1),
		RunE:  plotScene,
	}
	addSimFlags(plotCmd)
	plotCmd.Flags().IntVar(&plotHeight, "height", 10, "plot height")
	plotCmd.Flags().IntVar(&plotWidth, "width", 80, "plot width")

	exportCmd := &cobra.Command{
		Use:   "export [scene]",
		Short: "run a scene and write per-frame channels as csv to stdout",
		Args:  cobra.ExactArgs(1),
		RunE:  exportScene,
	}
	addSimFlags(exportCmd)

	benchCmd := &cobra.Command{
		Use:   "bench [scene]",
		Short: "benchmark a scene across substep counts",
		Args:  cobra.ExactArgs(1),
		RunE:  benchScene,
	}
	benchCmd.Flags().Float64Var(&dt, "dt", 1.0/60, "frame timestep in seconds")

	tuningCmd := &cobra.Command{
		Use:   "tuning [path]",
		Short: "write the default tuning file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := drape.SaveTuning(args[0], drape.DefaultTuning()); err != nil {
				return err
			}
			fmt.Printf("wrote %s\n", args[0])
			return nil
		},
	}

	rootCmd.AddCommand(runCmd, plotCmd, exportCmd, benchCmd, tuningCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addSimFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&frames, "frames", 600, "number of frames to step")
	cmd.Flags().Float64Var(&dt, "dt", 1.0/60, "frame timestep in seconds")
	cmd.Flags().Float64Var(&depth, "depth", 0, "camera-to-scene distance (0 = distance to camera target)")
	cmd.Flags().StringVar(&configFile, "config", "", "tuning file path (yaml)")
	cmd.Flags().StringVar(&scriptFile, "script", "", "signal script path (json)")
	cmd.Flags().Float64Var(&target, "target", 1, "tween the signal to this value")
	cmd.Flags().Float64Var(&over, "over", 0, "tween duration in seconds (0 = half the run)")
	cmd.Flags().Float64Var(&signal, "signal", 0, "hold the signal constant (overrides --target)")
	cmd.Flags().BoolVar(&noPhysics, "no-physics", false, "build the scene without a physics world")
}

// optionsFromFlags resolves the shared sim flags into simOptions. Signal
// source precedence: --script, then an explicit --signal constant, then the
// default tween to --target.
func optionsFromFlags(cmd *cobra.Command, scene string) (simOptions, error) {
	opts := simOptions{
		scene:     scene,
		frames:    frames,
		dt:        dt,
		depth:     depth,
		camera:    defaultCamera(),
		noPhysics: noPhysics,
		ramp:      true,
		target:    target,
		over:      over,
	}
	if opts.frames < 1 {
		return opts, fmt.Errorf("frames must be positive, got %d", opts.frames)
	}
	if opts.dt <= 0 {
		return opts, fmt.Errorf("dt must be positive, got %g", opts.dt)
	}
	if configFile != "" {
		tn, err := drape.LoadTuning(configFile)
		if err != nil {
			return opts, err
		}
		opts.tuning = tn
	}
	if scriptFile != "" {
		data, err := os.ReadFile(scriptFile)
		if err != nil {
			return opts, err
		}
		script, err := drape.LoadSignalScript(data)
		if err != nil {
			return opts, err
		}
		opts.script = script
		opts.ramp = false
	} else if cmd.Flags().Changed("signal") {
		opts.ramp = false
		opts.constant = signal
	}
	return opts, nil
}

func runScene(cmd *cobra.Command, args []string) error {
	opts, err := optionsFromFlags(cmd, args[0])
	if err != nil {
		return err
	}

	fmt.Printf("running %s...\n", opts.scene)
	res, err := simulate(opts)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", res.elapsed)
	fmt.Printf("frames: %d (%.2fs simulated at dt=%g)\n",
		len(res.times), float64(len(res.times))*opts.dt, opts.dt)
	fmt.Printf("state: %s\n", res.last.State)
	fmt.Printf("meshes: %d\n", res.meshes)

	fmt.Println("\nfinal values:")
	fmt.Printf("  signal: %.6f\n", res.signals[len(res.signals)-1])
	fmt.Printf("  opening: %.6f\n", res.openings[len(res.openings)-1])
	for _, ch := range res.channels {
		fmt.Printf("  %s: %.6f\n", ch.name, ch.data[len(ch.data)-1])
	}

	if csvFile != "" {
		f, err := os.Create(csvFile)
		if err != nil {
			return err
		}
		if err := writeCSV(f, res); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		fmt.Printf("\ncsv: %s\n", csvFile)
	}

	if withPlot {
		fmt.Println()
		fmt.Print(renderPlots(res, 10, 80))
	}

	return nil
}

func plotScene(cmd *cobra.Command, args []string) error {
	opts, err := optionsFromFlags(cmd, args[0])
	if err != nil {
		return err
	}
	res, err := simulate(opts)
	if err != nil {
		return err
	}

	fmt.Printf("scene: %s\n", res.scene)
	fmt.Printf("samples: %d\n\n", len(res.times))
	fmt.Print(renderPlots(res, plotHeight, plotWidth))
	return nil
}

func exportScene(cmd *cobra.Command, args []string) error {
	opts, err := optionsFromFlags(cmd, args[0])
	if err != nil {
		return err
	}
	res, err := simulate(opts)
	if err != nil {
		return err
	}
	return writeCSV(os.Stdout, res)
}

func benchScene(cmd *cobra.Command, args []string) error {
	scene := args[0]

	frameCounts := []int{120, 600}
	substeps := []int{4, 10, 20}

	fmt.Printf("benchmarking %s\n\n", scene)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SUBSTEPS\tFRAMES\tTIME\tFRAMES/SEC")

	for _, sub := range substeps {
		for _, n := range frameCounts {
			tn := drape.DefaultTuning()
			tn.Substeps = sub
			res, err := simulate(simOptions{
				scene:  scene,
				frames: n,
				dt:     dt,
				camera: defaultCamera(),
				tuning: tn,
				ramp:   true,
				target: 1,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "%d\t%d\t%v\t%.0f\n",
				sub, n, res.elapsed, float64(n)/res.elapsed.Seconds())
		}
	}

	return w.Flush()
}
