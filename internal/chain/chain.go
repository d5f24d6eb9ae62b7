// Package chain generates chromatin chain configurations for the simulator.
package chain

import (
	"fmt"
	"math"
	"math/rand"
	"strings"

	"go.chromium.org/luci/common/errors"
)

// Species is the particle species of every generated chain.
const Species = "CHROMATIN"

// Rotation is the direction in which a chain sweeps its box.
type Rotation byte

// Rotations.
const (
	Horizontal Rotation = 'h'
	Vertical   Rotation = 'v'
)

// Step moves a chain Multiplier cells along one axis.
type Step struct {
	Multiplier int
	Horizontal bool
	// Sign is '+' or '-'.
	Sign byte
}

func (s Step) String() string {
	if s.Horizontal {
		return fmt.Sprintf("%d(%c,0)", s.Multiplier, s.Sign)
	}
	return fmt.Sprintf("%d(0,%c)", s.Multiplier, s.Sign)
}

// direction alternates the sweep: odd rows (or columns) go forward.
func direction(n int) byte {
	if n%2 == 1 {
		return '+'
	}
	return '-'
}

// Point is a cell of the domain.
type Point struct {
	X, Y int
}

func (p Point) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// Chromosome is one chain snaking through its box.
type Chromosome struct {
	Base          Point
	Box           Point
	Occupancy     float64
	Rotation      Rotation
	Active        int
	Transcribable int
	Inhibited     int
	Cutoff        int
	Length        int
	Steps         []Step
}

// NewChromosome lays out a chain starting at base that covers occupancy of
// the box, sweeping it row by row (Horizontal) or column by column (Vertical).
func NewChromosome(base, box Point, occupancy float64, rotation Rotation, active, transcribable, inhibited, cutoff int) *Chromosome {
	c := &Chromosome{
		Base:          base,
		Box:           box,
		Occupancy:     occupancy,
		Rotation:      rotation,
		Active:        active,
		Transcribable: transcribable,
		Inhibited:     inhibited,
		Cutoff:        cutoff,
		Length:        int(math.RoundToEven(float64(box.X*box.Y) * occupancy)),
	}
	c.buildSteps()
	return c
}

func (c *Chromosome) buildSteps() {
	lines, span := c.Box.Y, c.Box.X
	sweepHorizontal := true
	if c.Rotation == Vertical {
		lines, span = c.Box.X, c.Box.Y
		sweepHorizontal = false
	}

	counter := 1
	for line := 1; counter <= c.Length && line <= lines; line++ {
		togo := c.Length - counter
		if togo > span-1 {
			togo = span - 1
		}
		c.Steps = append(c.Steps,
			Step{Multiplier: togo, Horizontal: sweepHorizontal, Sign: direction(line)},
			Step{Multiplier: 1, Horizontal: !sweepHorizontal, Sign: '+'},
		)
		counter += togo + 1
	}

	// The last connector would leave the box.
	if n := len(c.Steps); n > 0 {
		c.Steps = c.Steps[:n-1]
	}
}

func (c *Chromosome) String() string {
	steps := make([]string, len(c.Steps))
	for i, s := range c.Steps {
		steps[i] = s.String()
	}
	return fmt.Sprintf("%s,Active=%d,Transcribable=%d,Inhibited=%d,Cutoff=%d : %s : %s",
		Species, c.Active, c.Transcribable, c.Inhibited, c.Cutoff, c.Base, strings.Join(steps, " "))
}

// Configurator tiles the domain with NumChromosomes chains.
type Configurator struct {
	Width, Height         int
	NumChromosomes        int
	Occupancy             float64
	InhibitionProbability float64
	Chromosomes           []*Chromosome
}

// NearestSquare rounds n to the closest perfect square.
func NearestSquare(n int) int {
	r := int(math.RoundToEven(math.Sqrt(float64(n))))
	return r * r
}

// NewConfigurator generates the chains. Each chain gets a random rotation
// and is inhibited with the given probability, both drawn from rng.
func NewConfigurator(width, height, numChromosomes int, occupancy, inhibitionProbability float64, rng *rand.Rand) (*Configurator, error) {
	if width <= 0 || height <= 0 {
		return nil, errors.Reason("domain must be positive, got %dx%d", width, height).Err()
	}
	n := int(math.RoundToEven(math.Sqrt(float64(numChromosomes))))
	if n <= 0 {
		return nil, errors.Reason("need at least one chain, got %d", numChromosomes).Err()
	}
	hStep, vStep := width/n, height/n
	if hStep == 0 || vStep == 0 {
		return nil, errors.Reason("%d chains per side do not fit a %dx%d domain", n, width, height).Err()
	}

	c := &Configurator{
		Width:                 width,
		Height:                height,
		NumChromosomes:        numChromosomes,
		Occupancy:             occupancy,
		InhibitionProbability: inhibitionProbability,
	}
	for y := 1; y <= height; y += vStep {
		for x := 1; x <= width; x += hStep {
			rotation := Horizontal
			if rng.Intn(2) == 1 {
				rotation = Vertical
			}
			inhibited := 0
			if rng.Float64() < inhibitionProbability {
				inhibited = 1
			}
			c.Chromosomes = append(c.Chromosomes,
				NewChromosome(Point{x, y}, Point{hStep, vStep}, occupancy, rotation, 0, 0, inhibited, 1))
		}
	}
	return c, nil
}

func (c *Configurator) String() string {
	lines := make([]string, len(c.Chromosomes))
	for i, ch := range c.Chromosomes {
		lines[i] = ch.String()
	}
	return strings.Join(lines, "\n")
}
