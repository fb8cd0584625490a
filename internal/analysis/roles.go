// Package analysis turns face landmarks into eye and mouth aspect ratios and
// classifies them over time as Normal, Drowsy or Yawning.
package analysis

import (
	"errors"
	"fmt"

	"github.com/ayusman/nidra/internal/detector"
)

// ErrMissingLandmark is returned when a landmark set lacks a point required by the map.
var ErrMissingLandmark = errors.New("landmark missing from face")

// Role names a logical point used by the ratio computations.
type Role string

// Eye roles, in EAR order p1..p6.
const (
	RoleLeftEyeOuter      Role = "left_eye_outer"
	RoleLeftEyeUpperOuter Role = "left_eye_upper_outer"
	RoleLeftEyeUpperInner Role = "left_eye_upper_inner"
	RoleLeftEyeInner      Role = "left_eye_inner"
	RoleLeftEyeLowerInner Role = "left_eye_lower_inner"
	RoleLeftEyeLowerOuter Role = "left_eye_lower_outer"

	RoleRightEyeOuter      Role = "right_eye_outer"
	RoleRightEyeUpperOuter Role = "right_eye_upper_outer"
	RoleRightEyeUpperInner Role = "right_eye_upper_inner"
	RoleRightEyeInner      Role = "right_eye_inner"
	RoleRightEyeLowerInner Role = "right_eye_lower_inner"
	RoleRightEyeLowerOuter Role = "right_eye_lower_outer"
)

// Mouth roles, in MAR order q1..q4.
const (
	RoleUpperLip   Role = "upper_lip"
	RoleLowerLip   Role = "lower_lip"
	RoleMouthLeft  Role = "mouth_left"
	RoleMouthRight Role = "mouth_right"
)

var (
	// LeftEyeRoles selects p1..p6 of the left eye.
	LeftEyeRoles = [6]Role{
		RoleLeftEyeOuter, RoleLeftEyeUpperOuter, RoleLeftEyeUpperInner,
		RoleLeftEyeInner, RoleLeftEyeLowerInner, RoleLeftEyeLowerOuter,
	}

	// RightEyeRoles selects p1..p6 of the right eye.
	RightEyeRoles = [6]Role{
		RoleRightEyeOuter, RoleRightEyeUpperOuter, RoleRightEyeUpperInner,
		RoleRightEyeInner, RoleRightEyeLowerInner, RoleRightEyeLowerOuter,
	}

	// MouthRoles selects q1..q4 of the mouth.
	MouthRoles = [4]Role{RoleUpperLip, RoleLowerLip, RoleMouthLeft, RoleMouthRight}
)

// AllRoles returns every role a LandmarkMap must define.
func AllRoles() []Role {
	roles := make([]Role, 0, 16)
	roles = append(roles, LeftEyeRoles[:]...)
	roles = append(roles, RightEyeRoles[:]...)
	roles = append(roles, MouthRoles[:]...)
	return roles
}

// IsKnownRole reports whether r is one of AllRoles.
func IsKnownRole(r Role) bool {
	for _, known := range AllRoles() {
		if r == known {
			return true
		}
	}
	return false
}

// LandmarkMap maps each role to a landmark index of the detector model.
type LandmarkMap map[Role]int

// DefaultLandmarkMap returns the MediaPipe FaceMesh layout.
func DefaultLandmarkMap() LandmarkMap {
	return LandmarkMap{
		RoleLeftEyeOuter:      detector.LeftEyeOuter,
		RoleLeftEyeUpperOuter: detector.LeftEyeUpperOuter,
		RoleLeftEyeUpperInner: detector.LeftEyeUpperInner,
		RoleLeftEyeInner:      detector.LeftEyeInner,
		RoleLeftEyeLowerInner: detector.LeftEyeLowerInner,
		RoleLeftEyeLowerOuter: detector.LeftEyeLowerOuter,

		RoleRightEyeOuter:      detector.RightEyeOuter,
		RoleRightEyeUpperOuter: detector.RightEyeUpperOuter,
		RoleRightEyeUpperInner: detector.RightEyeUpperInner,
		RoleRightEyeInner:      detector.RightEyeInner,
		RoleRightEyeLowerInner: detector.RightEyeLowerInner,
		RoleRightEyeLowerOuter: detector.RightEyeLowerOuter,

		RoleUpperLip:   detector.UpperLipCenter,
		RoleLowerLip:   detector.LowerLipCenter,
		RoleMouthLeft:  detector.MouthLeftCorner,
		RoleMouthRight: detector.MouthRightCorner,
	}
}

// Validate checks that every role is mapped to a non-negative index.
func (m LandmarkMap) Validate() error {
	for _, r := range AllRoles() {
		idx, ok := m[r]
		if !ok {
			return fmt.Errorf("role %s is not mapped", r)
		}
		if idx < 0 {
			return fmt.Errorf("role %s has negative index %d", r, idx)
		}
	}
	return nil
}

// Merge returns a copy of m with the entries of override applied on top.
// Unknown roles in override are ignored.
func (m LandmarkMap) Merge(override map[string]int) LandmarkMap {
	out := make(LandmarkMap, len(m))
	for r, idx := range m {
		out[r] = idx
	}
	for name, idx := range override {
		if r := Role(name); IsKnownRole(r) {
			out[r] = idx
		}
	}
	return out
}

func (m LandmarkMap) point(face *detector.FaceLandmarks, r Role) (detector.Point2D, error) {
	idx, ok := m[r]
	if !ok {
		return detector.Point2D{}, fmt.Errorf("role %s: %w", r, ErrMissingLandmark)
	}
	p, ok := face.Point(idx)
	if !ok {
		return detector.Point2D{}, fmt.Errorf("role %s (index %d): %w", r, idx, ErrMissingLandmark)
	}
	return p, nil
}

// Eye selects the six eye points named by roles from face.
func (m LandmarkMap) Eye(face *detector.FaceLandmarks, roles [6]Role) (EyePoints, error) {
	var pts EyePoints
	for i, r := range roles {
		p, err := m.point(face, r)
		if err != nil {
			return EyePoints{}, err
		}
		pts[i] = p
	}
	return pts, nil
}

// Mouth selects the four mouth points from face.
func (m LandmarkMap) Mouth(face *detector.FaceLandmarks) (MouthPoints, error) {
	var pts MouthPoints
	for i, r := range MouthRoles {
		p, err := m.point(face, r)
		if err != nil {
			return MouthPoints{}, err
		}
		pts[i] = p
	}
	return pts, nil
}
