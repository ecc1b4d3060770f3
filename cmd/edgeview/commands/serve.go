package commands

import (
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/camviz/edgeview/internal/api"
	"github.com/camviz/edgeview/internal/capture"
	"github.com/camviz/edgeview/internal/config"
	"github.com/camviz/edgeview/internal/logger"
	"github.com/camviz/edgeview/internal/output"
	"github.com/camviz/edgeview/internal/render"
	"github.com/camviz/edgeview/internal/session"
	"github.com/camviz/edgeview/internal/store"
)

var serveWithGL bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the EdgeView server",
	Long: `Start the EdgeView capture pipeline and HTTP server.

Frames from the configured source are decoded, filtered and published.
The MJPEG preview and REST API are served over HTTP; the GPU presenter
only activates with --with-gl on a host that provides a GL context.`,
	Example: `  # Start with the synthetic test pattern source
  edgeview serve

  # Start with a webcam source
  edgeview serve --source webcam

  # Start server on custom port
  edgeview serve --port 9090

  # Start with debug logging
  edgeview serve --log-level debug`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("source", "", "frame source (pattern or webcam)")
	serveCmd.Flags().BoolVar(&serveWithGL, "with-gl", false, "drive the GPU presenter (requires a current GL context)")
	viper.BindPFlag("capture.source", serveCmd.Flags().Lookup("source"))
}

func runServe(cmd *cobra.Command, args []string) error {
	configMgr, err := config.NewManager(GetConfigFile())
	if err != nil {
		return fmt.Errorf("failed to initialize config manager: %w", err)
	}

	// Override from flags if provided
	if viper.IsSet("server_port") {
		if port := viper.GetInt("server_port"); port > 0 {
			configMgr.SetPort(port)
		}
	}
	if viper.IsSet("log_level") {
		if logLevel := viper.GetString("log_level"); logLevel != "" {
			configMgr.SetLogLevel(logLevel)
		}
	}

	cfg := configMgr.Get()
	if viper.IsSet("capture.source") {
		if src := viper.GetString("capture.source"); src != "" {
			cfg.Capture.Source = src
		}
	}

	logger.Init(cfg.LogLevel, true)
	log := logger.WithComponent("serve")
	log.Info().
		Str("config", configMgr.GetConfigPath()).
		Str("source", cfg.Capture.Source).
		Msg("Starting EdgeView")

	mode, err := store.ParseMode(cfg.Render.Mode)
	if err != nil {
		log.Warn().Err(err).Msg("Falling back to default render mode")
	}
	orientation, err := render.ParseOrientation(cfg.Render.Orientation)
	if err != nil {
		log.Warn().Err(err).Msg("Falling back to normal orientation")
	}

	sess := session.New(render.NewGLES2Backend(), session.Options{
		RotationDegrees: cfg.Capture.RotationDegrees,
		Render: render.Options{
			TextureWidth:  cfg.Render.TextureWidth,
			TextureHeight: cfg.Render.TextureHeight,
			LinearFilter:  cfg.Render.LinearFilter,
			Orientation:   orientation,
		},
	})
	defer sess.Close()
	sess.SetRenderMode(mode)

	source, err := newSource(cfg)
	if err != nil {
		return err
	}
	if err := source.Start(); err != nil {
		return fmt.Errorf("failed to start %s source: %w", source.Name(), err)
	}
	defer source.Stop()

	stop := make(chan struct{})
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		captureLoop(sess, source, cfg.Capture.FPS, stop)
	}()

	var preview *output.MJPEGOutput
	if cfg.Preview.Enabled {
		preview = output.NewMJPEGOutput(output.Config{
			Width:  cfg.Preview.Width,
			Height: cfg.Preview.Height,
			FPS:    cfg.Capture.FPS,
		})
		if err := preview.Start(); err != nil {
			return fmt.Errorf("failed to start MJPEG output: %w", err)
		}
		defer preview.Stop()
		wg.Add(1)
		go func() {
			defer wg.Done()
			previewLoop(sess, preview, cfg.Capture.FPS, cfg.Preview.Width, cfg.Preview.Height, stop)
		}()
	}

	if serveWithGL {
		wg.Add(1)
		go func() {
			defer wg.Done()
			renderLoop(sess, cfg.Render.FPS, stop)
		}()
	}

	server := api.NewServer(sess, configMgr, preview)
	go func() {
		if err := server.Start(configMgr.GetPort()); err != nil {
			log.Fatal().Err(err).Msg("API server failed")
		}
	}()

	log.Info().
		Int("port", configMgr.GetPort()).
		Msg("EdgeView is running, press Ctrl+C to stop")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	// Join the loops before the deferred source/preview/session teardown so
	// nothing is released while a grab or read is still in flight.
	close(stop)
	wg.Wait()
	log.Info().Msg("Shutting down gracefully")
	return nil
}

func newSource(cfg *config.Config) (capture.Source, error) {
	switch cfg.Capture.Source {
	case "pattern", "":
		return capture.NewPatternSource(cfg.Capture.Width, cfg.Capture.Height)
	case "webcam":
		return capture.NewWebcamSource(cfg.Capture.DeviceID, cfg.Capture.Width, cfg.Capture.Height)
	default:
		return nil, fmt.Errorf("unknown capture source: %q (use 'pattern' or 'webcam')", cfg.Capture.Source)
	}
}

// captureLoop grabs frames at the configured rate and feeds them through the
// ingest pipeline. Grab or ingest failures drop the frame and keep going.
func captureLoop(sess *session.Session, source capture.Source, fps int, stop <-chan struct{}) {
	log := logger.WithComponent("serve")
	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			frame, err := source.Grab()
			if err != nil {
				log.Error().Err(err).Str("source", source.Name()).Msg("Frame grab failed")
				continue
			}
			if err := sess.Ingest(frame.Data, frame.Width, frame.Height); err != nil {
				log.Debug().Err(err).Msg("Frame dropped by pipeline")
			}
		}
	}
}

// previewLoop feeds the currently selected frame variant into the MJPEG
// stream.
func previewLoop(sess *session.Session, preview *output.MJPEGOutput, fps, width, height int, stop <-chan struct{}) {
	log := logger.WithComponent("serve")
	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if preview.ClientCount() == 0 {
				continue
			}
			frame := sess.Frames().LatestCurrent()
			img, err := output.PreviewImage(frame, width, height)
			frame.Close()
			if err != nil {
				log.Debug().Err(err).Msg("Preview frame conversion failed")
				continue
			}
			if err := preview.WriteFrame(img); err != nil {
				log.Debug().Err(err).Msg("Preview frame write failed")
			}
		}
	}
}

// renderLoop drives the GPU presenter. Requires a GL context current on this
// goroutine; without one the presenter logs the failure once and stays inert.
func renderLoop(sess *session.Session, fps int, stop <-chan struct{}) {
	sess.OnSurfaceCreated()
	defer sess.OnSurfaceDestroyed()

	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			sess.OnDrawFrame()
		}
	}
}
