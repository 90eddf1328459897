package game

import (
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/go-gl/mathgl/mgl64"
	"gopkg.in/yaml.v3"
)

// Cushion is one straight cushion segment. Normal points into the playing
// area and is informational only; collisions recompute it from geometry.
type Cushion struct {
	Name   string     `json:"name"`
	Start  mgl64.Vec3 `json:"start"`
	End    mgl64.Vec3 `json:"end"`
	Normal mgl64.Vec3 `json:"normal"`
	Width  float64    `json:"width"`
}

// Pocket represents one of the 6 pockets on the table.
type Pocket struct {
	ID     int        `json:"id"`
	Center mgl64.Vec2 `json:"center"` // (x, z)
}

// Profile describes the physical table and ball set. The zero value is not
// usable; start from DefaultProfile.
type Profile struct {
	BallRadius      float64 `yaml:"ball_radius" json:"ball_radius"`
	BallMass        float64 `yaml:"ball_mass" json:"ball_mass"`
	BallRestitution float64 `yaml:"ball_restitution" json:"ball_restitution"`
	BallFriction    float64 `yaml:"ball_friction" json:"ball_friction"`
	PocketRadius    float64 `yaml:"pocket_radius" json:"pocket_radius"`
	CushionWidth    float64 `yaml:"cushion_width" json:"cushion_width"`
	HalfX           float64 `yaml:"half_x" json:"half_x"`
	HalfZ           float64 `yaml:"half_z" json:"half_z"`
	MinPower        float64 `yaml:"min_power" json:"min_power"`
	MaxPower        float64 `yaml:"max_power" json:"max_power"`
	CueSpotX        float64 `yaml:"cue_spot_x" json:"cue_spot_x"`
	CueSpotZ        float64 `yaml:"cue_spot_z" json:"cue_spot_z"`
	RackX           float64 `yaml:"rack_x" json:"rack_x"`
}

// DefaultProfile returns the standard nine-ball table.
func DefaultProfile() Profile {
	return Profile{
		BallRadius:      BallRadius,
		BallMass:        BallMass,
		BallRestitution: BallRestitution,
		BallFriction:    BallFriction,
		PocketRadius:    PocketRadius,
		CushionWidth:    CushionWidth,
		HalfX:           TableHalfX,
		HalfZ:           TableHalfZ,
		MinPower:        MinPower,
		MaxPower:        MaxPower,
		CueSpotX:        CueSpot[0],
		CueSpotZ:        CueSpot[1],
		RackX:           1.0,
	}
}

// LoadProfile reads a YAML table profile. Keys missing from the file keep
// their default values.
func LoadProfile(path string) (Profile, error) {
	p := DefaultProfile()
	data, err := os.ReadFile(path)
	if err != nil {
		return p, fmt.Errorf("read table profile: %w", err)
	}
	if err := yaml.Unmarshal(data, &p); err != nil {
		return p, fmt.Errorf("parse table profile %s: %w", path, err)
	}
	if err := p.Validate(); err != nil {
		return p, err
	}
	return p, nil
}

// Validate rejects profiles the integrator cannot run.
func (p Profile) Validate() error {
	switch {
	case p.BallRadius <= 0:
		return errors.New("ball_radius must be positive")
	case p.BallMass <= 0:
		return errors.New("ball_mass must be positive")
	case p.BallRestitution < 0 || p.BallRestitution > 1:
		return errors.New("ball_restitution must be within [0, 1]")
	case p.BallFriction < 0:
		return errors.New("ball_friction must not be negative")
	case p.PocketRadius <= 0 || p.CushionWidth < 0:
		return errors.New("pocket_radius must be positive and cushion_width not negative")
	case p.HalfX <= 0 || p.HalfZ <= 0:
		return errors.New("table half extents must be positive")
	case p.MinPower <= 0 || p.MaxPower < p.MinPower:
		return fmt.Errorf("power range [%v, %v] is invalid", p.MinPower, p.MaxPower)
	}
	return nil
}

// Table holds the complete table geometry.
type Table struct {
	Cushions     []Cushion `json:"cushions"`
	Pockets      []Pocket  `json:"pockets"`
	PocketRadius float64   `json:"pocket_radius"`
}

// NewNineBallTable builds the six pockets and six cushions for a profile.
// Cushion lines sit just beyond the pocket mouths so a ball rolling along a
// rail can still drop.
func NewNineBallTable(p Profile) *Table {
	hx, hz := p.HalfX, p.HalfZ
	off := 0.1 - p.PocketRadius*math.Sqrt2 // negative: cushions sit outside the pocket centres
	w := p.CushionWidth

	pockets := []Pocket{
		{ID: 0, Center: mgl64.Vec2{-hx, hz}},
		{ID: 1, Center: mgl64.Vec2{0, hz}},
		{ID: 2, Center: mgl64.Vec2{hx, hz}},
		{ID: 3, Center: mgl64.Vec2{-hx, -hz}},
		{ID: 4, Center: mgl64.Vec2{0, -hz}},
		{ID: 5, Center: mgl64.Vec2{hx, -hz}},
	}

	seg := func(name string, x1, z1, x2, z2 float64, normal mgl64.Vec3) Cushion {
		return Cushion{
			Name:   name,
			Start:  mgl64.Vec3{x1, 0, z1},
			End:    mgl64.Vec3{x2, 0, z2},
			Normal: normal,
			Width:  w,
		}
	}

	cushions := []Cushion{
		seg("top-left", -hx+off, hz-off, -off, hz-off, mgl64.Vec3{0, 0, -1}),
		seg("top-right", off, hz-off, hx-off, hz-off, mgl64.Vec3{0, 0, -1}),
		seg("bottom-left", -hx+off, -hz+off, -off, -hz+off, mgl64.Vec3{0, 0, 1}),
		seg("bottom-right", off, -hz+off, hx-off, -hz+off, mgl64.Vec3{0, 0, 1}),
		seg("left", -hx+off, hz-off, -hx+off, -hz+off, mgl64.Vec3{1, 0, 0}),
		seg("right", hx-off, hz-off, hx-off, -hz+off, mgl64.Vec3{-1, 0, 0}),
	}

	return &Table{
		Cushions:     cushions,
		Pockets:      pockets,
		PocketRadius: p.PocketRadius,
	}
}

// NineBallRack returns the start position of every ball: the cue ball on its
// spot and a diamond with the 1 at the apex and the 9 in the middle.
func NineBallRack(p Profile) [NumBalls]mgl64.Vec3 {
	var pos [NumBalls]mgl64.Vec3

	row := p.BallRadius * 2.1 // a touch wider than a diameter
	col := row * 0.866        // cos(30deg)
	x := p.RackX

	pos[CueBall] = onTable(p.CueSpotX, p.CueSpotZ)

	pos[1] = onTable(x-2*col, 0)

	pos[2] = onTable(x-col, -row/2)
	pos[3] = onTable(x-col, row/2)

	pos[4] = onTable(x, -row)
	pos[9] = onTable(x, 0)
	pos[5] = onTable(x, row)

	pos[6] = onTable(x+col, -row/2)
	pos[7] = onTable(x+col, row/2)

	pos[8] = onTable(x+2*col, 0)

	return pos
}
