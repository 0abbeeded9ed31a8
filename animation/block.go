package animation

import "github.com/kungfusheep/hktagfile"

// compressedArrayKind distinguishes how a single TRS component track is
// stored within a block.
type compressedArrayKind int

const (
	arrayEmpty compressedArrayKind = iota
	arrayStatic
	arraySpline
)

// compressedFloatArray is either empty, a single static N-component value,
// or a NURBS curve over N-component control points, grounded on
// splinecompressedanimation.rs's CompressedFloatArray<COUNT>.
type compressedFloatArray struct {
	kind   compressedArrayKind
	static []float32
	spline *nurbs
}

func readVectorArray(r *blockReader, mask vectorMask, primitive CompressedScalarType) (compressedFloatArray, error) {
	switch {
	case mask.hasSpline():
		numItems, err := r.u16()
		if err != nil {
			return compressedFloatArray{}, err
		}
		degree, err := r.u8()
		if err != nil {
			return compressedFloatArray{}, err
		}
		knots, err := r.bytes(int(numItems) + int(degree) + 2)
		if err != nil {
			return compressedFloatArray{}, err
		}
		if err := r.align(4); err != nil {
			return compressedFloatArray{}, err
		}

		var ranges [3][2]float32
		for i := 0; i < 3; i++ {
			comp, err := mask.component(i)
			if err != nil {
				return compressedFloatArray{}, err
			}
			n := 0
			switch comp {
			case maskStatic:
				n = 1
			case maskSpline:
				n = 2
			}
			for j := 0; j < n; j++ {
				v, err := r.f32()
				if err != nil {
					return compressedFloatArray{}, err
				}
				ranges[i][j] = v
			}
		}

		controlPoints := make([][]float32, int(numItems)+1)
		for i := range controlPoints {
			point := make([]float32, 3)
			for j := 0; j < 3; j++ {
				comp, err := mask.component(j)
				if err != nil {
					return compressedFloatArray{}, err
				}
				if comp == maskSpline {
					scalar, err := r.scaledScalar(primitive)
					if err != nil {
						return compressedFloatArray{}, err
					}
					point[j] = ranges[j][0] + (ranges[j][1]-ranges[j][0])*scalar
				} else {
					point[j] = ranges[j][0]
				}
			}
			controlPoints[i] = point
		}

		return compressedFloatArray{kind: arraySpline, spline: newNurbs(controlPoints, append([]uint8(nil), knots...), int(degree))}, nil

	case mask.hasStatic():
		static := make([]float32, 3)
		for i := 0; i < 3; i++ {
			comp, err := mask.component(i)
			if err != nil {
				return compressedFloatArray{}, err
			}
			if comp == maskStatic {
				v, err := r.f32()
				if err != nil {
					return compressedFloatArray{}, err
				}
				static[i] = v
			}
		}
		return compressedFloatArray{kind: arrayStatic, static: static}, nil

	default:
		return compressedFloatArray{kind: arrayEmpty}, nil
	}
}

func readQuatArray(r *blockReader, mask quatMask, primitive CompressedQuaternionType) (compressedFloatArray, error) {
	switch {
	case mask.hasSpline():
		numItems, err := r.u16()
		if err != nil {
			return compressedFloatArray{}, err
		}
		degree, err := r.u8()
		if err != nil {
			return compressedFloatArray{}, err
		}
		knots, err := r.bytes(int(numItems) + int(degree) + 2)
		if err != nil {
			return compressedFloatArray{}, err
		}

		var readQuat func(*blockReader) ([4]float32, error)
		switch primitive {
		case QuatK32:
			readQuat = readK32Quat
		case QuatK40:
			readQuat = readK40Quat
		case QuatK48:
			readQuat = readK48Quat
		default:
			return compressedFloatArray{}, tagfile.NewInvalid("unsupported compressed quaternion type %d", primitive)
		}

		controlPoints := make([][]float32, int(numItems)+1)
		for i := range controlPoints {
			q, err := readQuat(r)
			if err != nil {
				return compressedFloatArray{}, err
			}
			controlPoints[i] = q[:]
		}

		return compressedFloatArray{kind: arraySpline, spline: newNurbs(controlPoints, append([]uint8(nil), knots...), int(degree))}, nil

	case mask.hasStatic():
		// Static rotation values are always packed as K40, regardless of
		// the track's declared compression type. Preserved as observed in
		// splinecompressedanimation.rs's CompressedFloatArray<4>::new.
		q, err := readK40Quat(r)
		if err != nil {
			return compressedFloatArray{}, err
		}
		return compressedFloatArray{kind: arrayStatic, static: q[:]}, nil

	default:
		return compressedFloatArray{kind: arrayEmpty}, nil
	}
}

// timedArray pairs a compressedFloatArray with the frame timing needed to
// sample it as a function of seconds rather than of the spline's own [0,n)
// parameter space.
type timedArray struct {
	array         compressedFloatArray
	numFrames     int
	frameDuration float32
	duration      float32
	empty         []float32 // value an Empty array reports
}

func (a *timedArray) IsEmpty() bool {
	return a.array.kind == arrayEmpty
}

func (a *timedArray) IsStatic() bool {
	return a.array.kind == arrayEmpty || a.array.kind == arrayStatic
}

func (a *timedArray) Duration() float32 { return a.duration }

func (a *timedArray) FrameTimes() []float32 {
	switch a.array.kind {
	case arraySpline:
		times := make([]float32, 0, a.numFrames-1)
		for i := 0; i < a.numFrames-1; i++ {
			times = append(times, float32(i)*a.frameDuration)
		}
		return times
	default:
		return []float32{0}
	}
}

// Interpolate samples the curve at time t seconds.
func (a *timedArray) Interpolate(t float32) []float32 {
	switch a.array.kind {
	case arraySpline:
		return a.array.spline.interpolate(t / a.frameDuration)
	case arrayStatic:
		return a.array.static
	default:
		return append([]float32(nil), a.empty...)
	}
}

// Track holds one bone's translate/rotate/scale curves within a block.
type Track struct {
	frames    int
	translate *timedArray
	rotate    *timedArray
	scale     *timedArray
}

func readTrack(r *blockReader, mask transformMask, numFrames int, frameDuration, duration float32) (*Track, error) {
	translateType, err := mask.translatePrimitiveType()
	if err != nil {
		return nil, err
	}
	translate, err := readVectorArray(r, mask.translate, translateType)
	if err != nil {
		return nil, err
	}
	if err := r.align(4); err != nil {
		return nil, err
	}

	rotateType, err := mask.rotatePrimitiveType()
	if err != nil {
		return nil, err
	}
	rotate, err := readQuatArray(r, mask.rotate, rotateType)
	if err != nil {
		return nil, err
	}
	if err := r.align(4); err != nil {
		return nil, err
	}

	scaleType, err := mask.scalePrimitiveType()
	if err != nil {
		return nil, err
	}
	scale, err := readVectorArray(r, mask.scale, scaleType)
	if err != nil {
		return nil, err
	}
	if err := r.align(4); err != nil {
		return nil, err
	}

	return &Track{
		frames:    numFrames,
		translate: &timedArray{array: translate, numFrames: numFrames, frameDuration: frameDuration, duration: duration, empty: []float32{0, 0, 0}},
		rotate:    &timedArray{array: rotate, numFrames: numFrames, frameDuration: frameDuration, duration: duration, empty: []float32{0, 0, 0, 1}},
		scale:     &timedArray{array: scale, numFrames: numFrames, frameDuration: frameDuration, duration: duration, empty: []float32{1, 1, 1}},
	}, nil
}

// Block is a contiguous sub-range of an animation covering at most
// maxFramesPerBlock frames and at most blockDuration seconds.
type Block struct {
	numFrames     int
	frameDuration float32
	duration      float32
	tracks        []*Track
}

func readBlock(data []byte, numTracks, numFrames int, frameDuration, duration float32) (*Block, error) {
	r := newBlockReader(data)

	masks := make([]transformMask, numTracks)
	for i := range masks {
		m, err := readTransformMask(r)
		if err != nil {
			return nil, err
		}
		masks[i] = m
	}

	tracks := make([]*Track, numTracks)
	for i, m := range masks {
		t, err := readTrack(r, m, numFrames, frameDuration, duration)
		if err != nil {
			return nil, err
		}
		tracks[i] = t
	}

	return &Block{numFrames: numFrames, frameDuration: frameDuration, duration: duration, tracks: tracks}, nil
}

func (b *Block) Duration() float32 { return b.duration }
func (b *Block) NumTracks() int    { return len(b.tracks) }

func (b *Block) FrameTimes() []float32 {
	times := make([]float32, 0, b.numFrames-1)
	for i := 0; i < b.numFrames-1; i++ {
		times = append(times, float32(i)*b.frameDuration)
	}
	return times
}

func (b *Block) Translation(track int) Curve { return b.tracks[track].translate }
func (b *Block) Rotation(track int) Curve    { return b.tracks[track].rotate }
func (b *Block) Scale(track int) Curve       { return b.tracks[track].scale }
