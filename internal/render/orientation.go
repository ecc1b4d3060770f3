package render

import "fmt"

// Orientation selects the texture-coordinate mapping applied at draw time to
// compensate for sensor-vs-display rotation. It is independent of any
// pixel-level rotation applied during capture.
type Orientation int32

const (
	OrientationNormal Orientation = iota
	OrientationFlippedVertical
	OrientationRotated90
	OrientationRotated180
	OrientationRotated270
)

func (o Orientation) String() string {
	switch o {
	case OrientationNormal:
		return "normal"
	case OrientationFlippedVertical:
		return "flipped-vertical"
	case OrientationRotated90:
		return "rotated-90"
	case OrientationRotated180:
		return "rotated-180"
	case OrientationRotated270:
		return "rotated-270"
	default:
		return fmt.Sprintf("unknown(%d)", int32(o))
	}
}

// ParseOrientation converts an orientation name back into an Orientation.
func ParseOrientation(s string) (Orientation, error) {
	switch s {
	case "normal":
		return OrientationNormal, nil
	case "flipped-vertical":
		return OrientationFlippedVertical, nil
	case "rotated-90":
		return OrientationRotated90, nil
	case "rotated-180":
		return OrientationRotated180, nil
	case "rotated-270":
		return OrientationRotated270, nil
	default:
		return OrientationNormal, fmt.Errorf("unknown orientation: %q", s)
	}
}

// texCoordCorners returns the texture coordinates assigned to the quad's
// bottom-left, bottom-right, top-left and top-right vertices, as (u, v)
// pairs in unit space.
func texCoordCorners(o Orientation) [4][2]float32 {
	switch o {
	case OrientationFlippedVertical:
		return [4][2]float32{{0, 1}, {1, 1}, {0, 0}, {1, 0}}
	case OrientationRotated90:
		return [4][2]float32{{0, 1}, {0, 0}, {1, 1}, {1, 0}}
	case OrientationRotated180:
		return [4][2]float32{{1, 1}, {0, 1}, {1, 0}, {0, 0}}
	case OrientationRotated270:
		return [4][2]float32{{1, 0}, {1, 1}, {0, 0}, {0, 1}}
	default:
		return [4][2]float32{{0, 0}, {1, 0}, {0, 1}, {1, 1}}
	}
}

// quadVertices builds the interleaved [x, y, u, v] triangle-strip covering
// the full viewport in normalized device coordinates. When inset is set the
// texture coordinates are pulled in by half a texel on each side, which
// avoids sampling artifacts at the texture border.
func quadVertices(o Orientation, inset bool, texWidth, texHeight int) []float32 {
	u0, u1 := float32(0), float32(1)
	v0, v1 := float32(0), float32(1)
	if inset && texWidth > 0 && texHeight > 0 {
		u0 = 0.5 / float32(texWidth)
		u1 = (float32(texWidth) - 0.5) / float32(texWidth)
		v0 = 0.5 / float32(texHeight)
		v1 = (float32(texHeight) - 0.5) / float32(texHeight)
	}

	positions := [4][2]float32{{-1, -1}, {1, -1}, {-1, 1}, {1, 1}}
	coords := texCoordCorners(o)

	verts := make([]float32, 0, 16)
	for i := 0; i < 4; i++ {
		u := u0 + coords[i][0]*(u1-u0)
		v := v0 + coords[i][1]*(v1-v0)
		verts = append(verts, positions[i][0], positions[i][1], u, v)
	}
	return verts
}
