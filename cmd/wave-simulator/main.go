// Command wave-simulator writes a synthetic wave sensor recording: an INFO
// metadata file plus a data file with one sample value per line, including
// injected spikes and dropouts for exercising the cleaning pipeline.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"
)

type simulator struct {
	frequency int
	bursts    int
	burstSecs int
	amplitude float64
	period    float64
	noise     float64
	spikes    int
	dropouts  int
	rng       *rand.Rand
}

func main() {
	outDir := flag.String("out", ".", "Output directory for INFO.DAT and the data file")
	frequency := flag.Int("frequency", 8, "Sampling frequency in Hz")
	bursts := flag.Int("bursts", 3, "Number of complete bursts to generate")
	burstSecs := flag.Int("burst-seconds", 1200, "Burst length in seconds")
	amplitude := flag.Float64("amplitude", 0.8, "Primary wave amplitude in meters")
	period := flag.Float64("period", 7.5, "Primary wave period in seconds")
	noise := flag.Float64("noise", 0.05, "Gaussian noise standard deviation")
	spikes := flag.Int("spikes", 5, "Spikes to inject per burst")
	dropouts := flag.Int("dropouts", 2, "Short dropout gaps to inject per burst")
	seed := flag.Int64("seed", 0, "Random seed (0 seeds from the clock)")
	flag.Parse()

	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}

	sim := &simulator{
		frequency: *frequency,
		bursts:    *bursts,
		burstSecs: *burstSecs,
		amplitude: *amplitude,
		period:    *period,
		noise:     *noise,
		spikes:    *spikes,
		dropouts:  *dropouts,
		rng:       rand.New(rand.NewSource(*seed)),
	}

	start := time.Now().UTC().Truncate(time.Second)
	total := sim.frequency * sim.burstSecs * sim.bursts
	end := start.Add(time.Duration(total) * time.Second / time.Duration(sim.frequency))

	if err := writeInfoFile(filepath.Join(*outDir, "INFO.DAT"), sim.frequency, start, end); err != nil {
		fmt.Fprintf(os.Stderr, "error writing INFO file: %v\n", err)
		os.Exit(1)
	}
	dataPath := filepath.Join(*outDir, "simulated.dat")
	if err := sim.writeDataFile(dataPath); err != nil {
		fmt.Fprintf(os.Stderr, "error writing data file: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("wrote %d samples (%d bursts at %d Hz) to %s\n", total, sim.bursts, sim.frequency, dataPath)
}

const infoTimeLayout = "2006.01.02 15:04:05.000"

// writeInfoFile emits metadata in the recorder's layout: frequency labelled
// on line 3, start timestamp on line 6, end timestamp on line 8.
func writeInfoFile(path string, frequency int, start, end time.Time) error {
	lines := []string{
		"Wave recorder deployment",
		"simulated station",
		fmt.Sprintf("frequency %d Hz", frequency),
		"",
		"recording start:",
		start.Format(infoTimeLayout),
		"recording end:",
		end.Format(infoTimeLayout),
	}
	return os.WriteFile(path, []byte(strings.Join(lines, "\r\n")+"\r\n"), 0o644)
}

func (s *simulator) writeDataFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	pointsPerBurst := s.frequency * s.burstSecs

	for b := 0; b < s.bursts; b++ {
		values := s.generateBurst(pointsPerBurst)
		for _, v := range values {
			// Recorders write comma decimal separators.
			line := strings.ReplaceAll(fmt.Sprintf("%.4f", v), ".", ",")
			if _, err := fmt.Fprintln(w, line); err != nil {
				return err
			}
		}
	}
	return w.Flush()
}

// generateBurst produces a two-component swell with noise, then corrupts it
// with spikes and flat dropout runs.
func (s *simulator) generateBurst(n int) []float64 {
	values := make([]float64, n)
	dt := 1.0 / float64(s.frequency)
	phase := s.rng.Float64() * 2 * math.Pi

	for i := range values {
		t := float64(i) * dt
		primary := s.amplitude * math.Sin(2*math.Pi*t/s.period+phase)
		secondary := 0.3 * s.amplitude * math.Sin(2*math.Pi*t/(s.period*0.45))
		values[i] = primary + secondary + s.rng.NormFloat64()*s.noise
	}

	for i := 0; i < s.spikes; i++ {
		idx := s.rng.Intn(n)
		sign := 1.0
		if s.rng.Intn(2) == 0 {
			sign = -1.0
		}
		values[idx] += sign * s.amplitude * (8 + s.rng.Float64()*4)
	}

	for i := 0; i < s.dropouts; i++ {
		runLen := 2 + s.rng.Intn(4)
		idx := s.rng.Intn(n - runLen)
		for j := idx; j < idx+runLen; j++ {
			values[j] = 0
		}
	}

	return values
}
