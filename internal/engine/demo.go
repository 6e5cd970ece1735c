package engine

import (
	"math/rand"
	"sync"
	"time"
)

// DemoConfig tunes the stand-in engine.
type DemoConfig struct {
	TickRate int   // Score updates per second
	MinTicks int   // Shortest game, in ticks
	MaxTicks int   // Longest game, in ticks
	MaxStep  int   // Largest score gain per tick
	Seed     int64 // RNG seed; 0 means time-based
}

// DefaultDemoConfig returns sensible defaults.
func DefaultDemoConfig() DemoConfig {
	return DemoConfig{
		TickRate: 10,
		MinTicks: 30,
		MaxTicks: 120,
		MaxStep:  25,
	}
}

// Demo is a headless engine with no gameplay: each run climbs the score on a
// ticker and ends after a random number of ticks. It exists so the shell can
// be driven end to end without the native engine.
type Demo struct {
	cfg      DemoConfig
	listener Listener

	mu   sync.Mutex
	rng  *rand.Rand
	stop chan struct{} // Closes the current run, nil when idle
	wg   sync.WaitGroup
}

// NewDemo creates a demo engine that reports to listener.
func NewDemo(cfg DemoConfig, listener Listener) *Demo {
	if cfg.TickRate <= 0 {
		cfg.TickRate = DefaultDemoConfig().TickRate
	}
	if cfg.MinTicks <= 0 {
		cfg.MinTicks = 1
	}
	if cfg.MaxTicks < cfg.MinTicks {
		cfg.MaxTicks = cfg.MinTicks
	}
	if cfg.MaxStep <= 0 {
		cfg.MaxStep = 1
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	return &Demo{
		cfg:      cfg,
		listener: listener,
		rng:      rand.New(rand.NewSource(seed)),
	}
}

// Start begins a new run, abandoning any run in progress.
func (d *Demo) Start() {
	d.launch()
}

// Restart behaves like Start.
func (d *Demo) Restart() {
	d.launch()
}

// Close stops the current run and waits for its goroutine.
func (d *Demo) Close() error {
	d.mu.Lock()
	d.stopLocked()
	d.mu.Unlock()
	d.wg.Wait()
	return nil
}

func (d *Demo) launch() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopLocked()

	stop := make(chan struct{})
	d.stop = stop

	span := d.cfg.MaxTicks - d.cfg.MinTicks + 1
	ticks := d.cfg.MinTicks + d.rng.Intn(span)
	runRNG := rand.New(rand.NewSource(d.rng.Int63()))

	d.wg.Add(1)
	go d.run(stop, ticks, runRNG)
}

// stopLocked ends the current run. Must be called with mu held.
func (d *Demo) stopLocked() {
	if d.stop != nil {
		close(d.stop)
		d.stop = nil
	}
}

// run is the engine's own execution context.
func (d *Demo) run(stop <-chan struct{}, ticks int, rng *rand.Rand) {
	defer d.wg.Done()

	ticker := time.NewTicker(time.Second / time.Duration(d.cfg.TickRate))
	defer ticker.Stop()

	score := 0
	for tick := 1; ; tick++ {
		select {
		case <-stop:
			return
		case <-ticker.C:
		}

		// A restart may have landed while waiting on the ticker.
		select {
		case <-stop:
			return
		default:
		}

		score += 1 + rng.Intn(d.cfg.MaxStep)
		if tick >= ticks {
			d.listener.GameOver(score)
			return
		}
		d.listener.ScoreUpdate(score)
	}
}
