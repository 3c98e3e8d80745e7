// ABOUTME: Entry point for the Frostbloom soundscape player
// ABOUTME: Parses CLI flags, plays the soundscape locally and serves remote control
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frostbloom/frostbloom-go/internal/remote"
	"github.com/frostbloom/frostbloom-go/internal/ui"
	"github.com/frostbloom/frostbloom-go/internal/version"
	"github.com/frostbloom/frostbloom-go/pkg/audio/encode"
	"github.com/frostbloom/frostbloom-go/pkg/audio/output"
	"github.com/frostbloom/frostbloom-go/pkg/audio/resample"
	"github.com/frostbloom/frostbloom-go/pkg/compose"
	"github.com/frostbloom/frostbloom-go/pkg/schedule"
	"github.com/frostbloom/frostbloom-go/pkg/session"
	"github.com/frostbloom/frostbloom-go/pkg/synth"
)

var (
	sampleRate = flag.Int("sample-rate", session.DefaultSampleRate, "Render sample rate in Hz")
	seed       = flag.Uint("seed", 0, "Random seed for reproducible scenes (0 = random)")
	recipeName = flag.String("recipe", compose.IceSceneName, "Soundscape recipe to play")
	cooldown   = flag.Duration("cooldown", 0, "Return to idle after this long (0 = derive from recipe)")
	exportPath = flag.String("export", "", "Render one scene to this WAV file and exit")
	exportRate = flag.Int("export-rate", 0, "Resample exported WAV to this rate (0 = sample rate)")
	bitDepth   = flag.Int("bit-depth", 16, "Exported WAV bit depth (16 or 24)")
	volume     = flag.Int("volume", 100, "Initial output volume (0-100)")
	autoplay   = flag.Bool("autoplay", false, "Trigger the soundscape on startup")
	noTUI      = flag.Bool("no-tui", false, "Disable TUI, use streaming logs instead")
	logFile    = flag.String("log-file", "frostbloom.log", "Log file path")
	listen     = flag.String("listen", "", "Serve remote control on this address (e.g. :8937)")
	noMDNS     = flag.Bool("no-mdns", false, "Disable mDNS advertisement")
	name       = flag.String("name", "", "Friendly name (default: hostname-frostbloom)")
)

func main() {
	flag.Parse()

	useTUI := !*noTUI && *exportPath == ""

	// Set up logging
	f, err := os.OpenFile(*logFile, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		log.Fatalf("error opening log file: %v", err)
	}
	defer func() { _ = f.Close() }()

	if useTUI {
		// TUI mode: log only to file
		log.SetOutput(f)
	} else {
		log.SetOutput(io.MultiWriter(os.Stdout, f))
	}

	recipe, err := compose.Lookup(*recipeName)
	if err != nil {
		log.Fatalf("%v (available: %v)", err, compose.Names())
	}

	var rng synth.Random = synth.SystemRandom()
	if *seed != 0 {
		rng = synth.NewSeededRNG(uint32(*seed))
	}

	if *exportPath != "" {
		if err := exportWAV(*exportPath, recipe, rng); err != nil {
			log.Fatalf("Export failed: %v", err)
		}
		return
	}

	displayName := *name
	if displayName == "" {
		hostname, err := os.Hostname()
		if err != nil {
			hostname = "unknown"
		}
		displayName = fmt.Sprintf("%s-frostbloom", hostname)
	}

	log.Printf("Starting %s %s: %s (recipe %s)", version.Product, version.Version, displayName, recipe.Name())

	device, err := output.OpenDevice(*sampleRate)
	if err != nil {
		log.Fatalf("Failed to open audio output: %v", err)
	}
	device.SetVolume(*volume)

	var (
		sess *session.Session
		srv  *remote.Server
		tui  *ui.TUI
	)

	updateTUI := func(msg interface{}) {
		if tui != nil {
			tui.Update(msg)
		}
	}

	sess, err = session.New(session.Config{
		SampleRate: *sampleRate,
		Recipe:     recipe,
		NewContext: device.Factory(),
		Random:     rng,
		Cooldown:   *cooldown,
		OnStateChange: func(state session.State) {
			msg := ui.StateMsg{
				State:     state,
				SessionID: sess.ID(),
				Recipe:    recipe.Name(),
				Anchor:    sess.Anchor(),
			}
			if tl := sess.Timeline(); tl != nil {
				msg.Events = len(tl.Events)
			}
			updateTUI(msg)
			if srv != nil {
				srv.NotifyState()
			}
		},
	})
	if err != nil {
		log.Fatalf("Failed to create session: %v", err)
	}

	if useTUI {
		tui = ui.New(&controls{session: sess, device: device}, displayName)
	}

	if *listen != "" {
		srv = remote.NewServer(remote.Config{
			Addr:       *listen,
			Name:       displayName,
			Recipes:    compose.Names(),
			EnableMDNS: !*noMDNS,
			OnClientsChange: func(count int) {
				updateTUI(ui.StatusMsg{Listen: srv.Addr(), Clients: count})
			},
		}, &remote.SessionController{Session: sess, Recipe: recipe.Name()})

		if err := srv.Start(); err != nil {
			log.Fatalf("Failed to start remote control: %v", err)
		}
		updateTUI(ui.StatusMsg{Listen: srv.Addr()})
	}

	if *autoplay {
		if err := sess.Trigger(context.Background()); err != nil {
			log.Printf("Autoplay failed: %v", err)
			updateTUI(ui.ErrorMsg{Err: err})
		}
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	if tui != nil {
		go func() {
			<-sigChan
			log.Printf("Shutdown signal received")
			tui.Stop()
		}()
		if err := tui.Run(); err != nil {
			log.Printf("TUI error: %v", err)
		}
	} else {
		log.Printf("Press Ctrl-C to stop")
		<-sigChan
		log.Printf("Shutdown signal received")
	}

	sess.Release()
	if srv != nil {
		srv.Stop()
	}

	log.Printf("%s stopped", version.Product)
}

// controls connects the TUI to the session and output volume
type controls struct {
	session *session.Session
	device  *output.Device
}

func (c *controls) Trigger(ctx context.Context) error {
	return c.session.Trigger(ctx)
}

func (c *controls) Release() {
	c.session.Release()
}

func (c *controls) SetVolume(volume int) {
	c.device.SetVolume(volume)
}

func (c *controls) SetMuted(muted bool) {
	c.device.SetMuted(muted)
}

// exportWAV renders one composition offline and writes it to path
func exportWAV(path string, recipe compose.Recipe, rng synth.Random) error {
	start := time.Now()

	tl, err := compose.Compose(recipe, 0, *sampleRate, rng)
	if err != nil {
		return fmt.Errorf("compose: %w", err)
	}

	buf, err := schedule.RenderTimeline(tl, *sampleRate)
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}

	if *exportRate != 0 {
		buf, err = resample.Buffer(buf, *exportRate)
		if err != nil {
			return fmt.Errorf("resample: %w", err)
		}
	}

	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() { _ = out.Close() }()

	if err := encode.WriteWAV(out, buf, *bitDepth); err != nil {
		return err
	}

	log.Printf("Exported %s: %d events, %.2fs at %d Hz %d-bit, peak %.3f (took %v)",
		path, len(tl.Events), buf.Duration(), buf.SampleRate(), *bitDepth, buf.Peak(), time.Since(start).Round(time.Millisecond))
	return nil
}
