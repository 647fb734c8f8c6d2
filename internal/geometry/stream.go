package geometry

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"a3dconvert/internal/collada"
)

// stream reads fixed-width elements out of a source's float array
// through its accessor.
type stream struct {
	id     string
	values []float32
	offset int
	stride int
	count  int
	width  int
}

func newStream(src *collada.Source, width int) (*stream, error) {
	if src.FloatArray == nil {
		return nil, fmt.Errorf("source %s has no float_array", src.ID)
	}
	s := &stream{
		id:     src.ID,
		values: src.FloatArray.Values,
		stride: width,
		width:  width,
	}
	if a := src.Accessor; a != nil {
		s.offset = a.Offset
		if a.Stride > 0 {
			s.stride = a.Stride
		}
		s.count = a.Count
	} else {
		s.count = len(s.values) / width
	}

	if s.stride < width {
		return nil, fmt.Errorf("source %s: stride %d is narrower than %d components", s.id, s.stride, width)
	}
	if s.offset < 0 || s.count < 0 {
		return nil, fmt.Errorf("source %s: negative accessor offset or count", s.id)
	}
	// offset + (count-1)*stride + width <= len(values), without overflow.
	if s.count > 0 {
		avail := len(s.values) - s.offset
		if avail < width || s.count-1 > (avail-width)/s.stride {
			return nil, fmt.Errorf("source %s: float_array holds %d values, accessor reads %d elements of stride %d from offset %d",
				s.id, len(s.values), s.count, s.stride, s.offset)
		}
	}
	return s, nil
}

func (s *stream) check(i int) error {
	if i < 0 || i >= s.count {
		return fmt.Errorf("source %s: index %d out of range (%d elements)", s.id, i, s.count)
	}
	return nil
}

func (s *stream) at(i int) []float32 {
	base := s.offset + i*s.stride
	return s.values[base : base+s.width]
}

func (s *stream) vec3(i int) mgl32.Vec3 {
	v := s.at(i)
	return mgl32.Vec3{v[0], v[1], v[2]}
}

func (s *stream) vec2(i int) mgl32.Vec2 {
	v := s.at(i)
	return mgl32.Vec2{v[0], v[1]}
}
