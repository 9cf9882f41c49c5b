package math

// Transform is a decomposed local transform: translation, rotation and scale.
type Transform struct {
	Position Vec3
	Rotation Quat
	Scale    Vec3
}

// IdentityTransform returns zero translation, no rotation and unit scale.
func IdentityTransform() Transform {
	return Transform{
		Rotation: QuatIdentity(),
		Scale:    Vec3One(),
	}
}

// TransformFromMat4 decomposes m (see Mat4.Decompose).
func TransformFromMat4(m Mat4) Transform {
	t, r, s := m.Decompose()
	return Transform{Position: t, Rotation: r, Scale: s}
}

// Matrix composes the transform as T * R * S.
func (t Transform) Matrix() Mat4 {
	return Compose(t.Position, t.Rotation, t.Scale)
}

// Blend interpolates towards other by w: lerp for position and scale,
// slerp for rotation.
func (t Transform) Blend(other Transform, w float32) Transform {
	return Transform{
		Position: t.Position.Lerp(other.Position, w),
		Rotation: t.Rotation.Slerp(other.Rotation, w),
		Scale:    t.Scale.Lerp(other.Scale, w),
	}
}
