// Package animation decodes spline-compressed TRS bone animation data
// read from a tagfile node graph.
package animation

import (
	"github.com/kungfusheep/hktagfile"
)

// Curve is a single TRS component (translation, rotation or scale) for one
// track, sampled as a function of time in seconds. Grounded on
// compressedanimation.rs's InterpolatableTimeToValueTrait.
type Curve interface {
	IsEmpty() bool
	IsStatic() bool
	Duration() float32
	FrameTimes() []float32
	Interpolate(t float32) []float32
}

// Animation is a decoded TRS animation over a fixed number of tracks
// (bones), sampled periodically over its Duration. Grounded on
// compressedanimation.rs's AnimationTrait.
type Animation interface {
	Duration() float32
	NumTracks() int
	FrameTimes() []float32
	Translation(track int) Curve
	Rotation(track int) Curve
	Scale(track int) Curve
}

// concatCurve samples across a fixed sequence of same-duration parts by
// subtracting each part's duration from t in turn, per
// concatanimation.rs's ConcatInterpolatableTimeToValue.
type concatCurve struct {
	parts []Curve
}

func newConcatCurve(parts []Curve) (*concatCurve, error) {
	if len(parts) == 0 {
		return nil, tagfile.NewInvalid("concatenated curve must have at least one part")
	}
	first := parts[0].Duration()
	for _, p := range parts[1:] {
		if p.Duration() != first {
			return nil, tagfile.NewInvalid("all concatenated curve parts must share a duration")
		}
	}
	return &concatCurve{parts: parts}, nil
}

func (c *concatCurve) IsEmpty() bool {
	for _, p := range c.parts {
		if !p.IsEmpty() {
			return false
		}
	}
	return true
}

func (c *concatCurve) IsStatic() bool {
	for _, p := range c.parts {
		if !p.IsStatic() {
			return false
		}
	}
	return true
}

func (c *concatCurve) Duration() float32 {
	var total float32
	for _, p := range c.parts {
		total += p.Duration()
	}
	return total
}

func (c *concatCurve) FrameTimes() []float32 {
	var times []float32
	var t float32
	for _, p := range c.parts {
		for _, ft := range p.FrameTimes() {
			times = append(times, ft+t)
		}
		t += p.Duration()
	}
	return times
}

func (c *concatCurve) Interpolate(t float32) []float32 {
	for {
		for _, p := range c.parts {
			if t < p.Duration() {
				return p.Interpolate(t)
			}
			t -= p.Duration()
		}
	}
}

// concatAnimation chains a sequence of equal-track-count, equal-duration
// animations (the per-block decodes of a spline-compressed animation) into
// one, per concatanimation.rs's ConcatAnimation.
type concatAnimation struct {
	parts        []Animation
	translations []*concatCurve
	rotations    []*concatCurve
	scales       []*concatCurve
}

func newConcatAnimation(parts []Animation) (*concatAnimation, error) {
	c := &concatAnimation{parts: parts}
	if len(parts) == 0 {
		return c, nil
	}

	duration := parts[0].Duration()
	numTracks := parts[0].NumTracks()
	for _, p := range parts[1:] {
		if p.Duration() != duration {
			return nil, tagfile.NewInvalid("durations of all animation parts must be equal")
		}
		if p.NumTracks() != numTracks {
			return nil, tagfile.NewInvalid("number of tracks of all animation parts must be equal")
		}
	}

	for track := 0; track < numTracks; track++ {
		translate := make([]Curve, len(parts))
		rotate := make([]Curve, len(parts))
		scale := make([]Curve, len(parts))
		for i, p := range parts {
			translate[i] = p.Translation(track)
			rotate[i] = p.Rotation(track)
			scale[i] = p.Scale(track)
		}

		tc, err := newConcatCurve(translate)
		if err != nil {
			return nil, err
		}
		rc, err := newConcatCurve(rotate)
		if err != nil {
			return nil, err
		}
		sc, err := newConcatCurve(scale)
		if err != nil {
			return nil, err
		}
		c.translations = append(c.translations, tc)
		c.rotations = append(c.rotations, rc)
		c.scales = append(c.scales, sc)
	}

	return c, nil
}

func (c *concatAnimation) Duration() float32 {
	if len(c.parts) == 0 {
		return 0
	}
	return c.parts[0].Duration()
}

func (c *concatAnimation) NumTracks() int {
	if len(c.parts) == 0 {
		return 0
	}
	return c.parts[0].NumTracks()
}

func (c *concatAnimation) FrameTimes() []float32 {
	var times []float32
	var t float32
	for _, p := range c.parts {
		for _, ft := range p.FrameTimes() {
			times = append(times, ft+t)
		}
		t += p.Duration()
	}
	return times
}

func (c *concatAnimation) Translation(track int) Curve { return c.translations[track] }
func (c *concatAnimation) Rotation(track int) Curve    { return c.rotations[track] }
func (c *concatAnimation) Scale(track int) Curve       { return c.scales[track] }

// base holds the fields common to every animation subtype: the fields
// read from any node inheriting from hkaAnimation.
type base struct {
	duration  float32
	numTracks int
}

func readBase(node tagfile.Walker) (base, error) {
	if !node.IsOrInheritedFrom("hkaAnimation") {
		return base{}, tagfile.NewInvalid("node %q is not a valid animation", node.Name())
	}
	duration, err := node.FieldF32("duration")
	if err != nil {
		return base{}, err
	}
	numTracks, err := node.FieldI32("numberOfTransformTracks")
	if err != nil {
		return base{}, err
	}
	return base{duration: duration, numTracks: int(numTracks)}, nil
}

// CompressedAnimation is a spline-compressed TRS animation, decoded from a
// tagfile node inheriting from hkaSplineCompressedAnimation. It
// implements Animation by delegating to a concatenation of its
// constituent Blocks.
type CompressedAnimation struct {
	base          base
	blockDuration float32
	frameDuration float32
	blocks        []*Block
	concat        *concatAnimation
}

// newCompressedAnimation implements the block-partitioning math of
// splinecompressedanimation.rs's SplineCompressedAnimation::new:
// blockOffsets (plus the implicit final offset at len(data)) carve up the
// flat data buffer, and a running num_pending_frames / pending_duration
// pair is consumed min(..., maxFramesPerBlock/blockDuration) at a time.
func newCompressedAnimation(node tagfile.Walker, b base) (*CompressedAnimation, error) {
	maxFramesPerBlock, err := node.FieldI32("maxFramesPerBlock")
	if err != nil {
		return nil, err
	}
	blockDuration, err := node.FieldF32("blockDuration")
	if err != nil {
		return nil, err
	}
	frameDuration, err := node.FieldF32("frameDuration")
	if err != nil {
		return nil, err
	}
	blockOffsets, err := node.FieldI32Vec("blockOffsets")
	if err != nil {
		return nil, err
	}
	data, err := node.FieldU8Vec("data")
	if err != nil {
		return nil, err
	}

	offsets := make([]int, 0, len(blockOffsets)+1)
	for _, o := range blockOffsets {
		offsets = append(offsets, int(o))
	}
	offsets = append(offsets, len(data))

	numFrames, err := node.FieldI32("numFrames")
	if err != nil {
		return nil, err
	}
	duration, err := node.FieldF32("duration")
	if err != nil {
		return nil, err
	}
	pendingFrames := int(numFrames)
	pendingDuration := duration

	blocks := make([]*Block, 0, len(offsets)-1)
	for i := 0; i+1 < len(offsets); i++ {
		from, to := offsets[i], offsets[i+1]
		if from < 0 || to > len(data) || from > to {
			return nil, tagfile.NewInvalid("invalid block byte range [%d, %d)", from, to)
		}

		blockFrames := pendingFrames
		if blockFrames > int(maxFramesPerBlock) {
			blockFrames = int(maxFramesPerBlock)
		}
		pendingFrames -= blockFrames

		blockDur := pendingDuration
		if blockDur > blockDuration {
			blockDur = blockDuration
		}
		pendingDuration -= blockDur

		block, err := readBlock(data[from:to], b.numTracks, blockFrames, frameDuration, blockDur)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, block)
	}

	parts := make([]Animation, len(blocks))
	for i, blk := range blocks {
		parts[i] = blk
	}
	concat, err := newConcatAnimation(parts)
	if err != nil {
		return nil, err
	}

	return &CompressedAnimation{
		base:          b,
		blockDuration: blockDuration,
		frameDuration: frameDuration,
		blocks:        blocks,
		concat:        concat,
	}, nil
}

func (a *CompressedAnimation) Duration() float32     { return a.base.duration }
func (a *CompressedAnimation) NumTracks() int        { return a.base.numTracks }
func (a *CompressedAnimation) FrameTimes() []float32 { return a.concat.FrameTimes() }

func (a *CompressedAnimation) Translation(track int) Curve { return a.concat.Translation(track) }
func (a *CompressedAnimation) Rotation(track int) Curve    { return a.concat.Rotation(track) }
func (a *CompressedAnimation) Scale(track int) Curve       { return a.concat.Scale(track) }

// Sample evaluates every track's TRS at time t seconds, wrapping t into
// [0, Duration).
func (a *CompressedAnimation) Sample(t float32) []TRS {
	if d := a.Duration(); d > 0 {
		for t >= d {
			t -= d
		}
		for t < 0 {
			t += d
		}
	} else {
		t = 0
	}

	out := make([]TRS, a.NumTracks())
	for track := 0; track < a.NumTracks(); track++ {
		out[track] = TRS{
			Translation: toVec3(a.Translation(track).Interpolate(t)),
			Rotation:    toVec4(a.Rotation(track).Interpolate(t)),
			Scale:       toVec3(a.Scale(track).Interpolate(t)),
		}
	}
	return out
}

// TRS is one track's sampled translation, rotation (as a quaternion) and
// scale at a point in time.
type TRS struct {
	Translation [3]float32
	Rotation    [4]float32
	Scale       [3]float32
}

func toVec3(v []float32) [3]float32 {
	var out [3]float32
	copy(out[:], v)
	return out
}

func toVec4(v []float32) [4]float32 {
	var out [4]float32
	copy(out[:], v)
	return out
}

// ReadAnimation decodes the animation rooted at animationNode, grounded
// on compressedanimation.rs's read_animation. Only
// hkaSplineCompressedAnimation is implemented; any other subtype that
// still inherits from hkaAnimation is unsupported.
func ReadAnimation(animationNode tagfile.Walker) (Animation, error) {
	b, err := readBase(animationNode)
	if err != nil {
		return nil, err
	}

	if animationNode.IsOrInheritedFrom("hkaSplineCompressedAnimation") {
		return newCompressedAnimation(animationNode, b)
	}

	return nil, tagfile.NewInvalid("unsupported animation type %q", animationNode.Name())
}
