package analysis

import (
	"testing"

	"github.com/ayusman/nidra/internal/detector"
)

func TestDefaultLandmarkMap(t *testing.T) {
	m := DefaultLandmarkMap()

	if err := m.Validate(); err != nil {
		t.Fatalf("default map should be valid: %v", err)
	}

	want := map[Role]int{
		RoleLeftEyeOuter:  33,
		RoleLeftEyeInner:  133,
		RoleRightEyeOuter: 362,
		RoleRightEyeInner: 263,
		RoleUpperLip:      13,
		RoleLowerLip:      14,
		RoleMouthLeft:     78,
		RoleMouthRight:    308,
	}
	for r, idx := range want {
		if m[r] != idx {
			t.Errorf("%s = %d, want %d", r, m[r], idx)
		}
	}

	for r, idx := range m {
		if idx >= detector.NumFaceLandmarks {
			t.Errorf("%s index %d out of range", r, idx)
		}
	}
}

func TestAllRoles(t *testing.T) {
	roles := AllRoles()
	if len(roles) != 16 {
		t.Fatalf("expected 16 roles, got %d", len(roles))
	}

	seen := make(map[Role]bool)
	for _, r := range roles {
		if seen[r] {
			t.Errorf("duplicate role %s", r)
		}
		seen[r] = true
		if !IsKnownRole(r) {
			t.Errorf("IsKnownRole(%s) = false", r)
		}
	}

	if IsKnownRole("nose_tip") {
		t.Error("IsKnownRole(nose_tip) should be false")
	}
}

func TestLandmarkMap_Validate(t *testing.T) {
	t.Run("missing role", func(t *testing.T) {
		m := DefaultLandmarkMap()
		delete(m, RoleMouthRight)
		if err := m.Validate(); err == nil {
			t.Error("expected error for missing role")
		}
	})

	t.Run("negative index", func(t *testing.T) {
		m := DefaultLandmarkMap()
		m[RoleUpperLip] = -1
		if err := m.Validate(); err == nil {
			t.Error("expected error for negative index")
		}
	})
}

func TestLandmarkMap_Merge(t *testing.T) {
	base := DefaultLandmarkMap()

	merged := base.Merge(map[string]int{
		"upper_lip": 0,
		"nose_tip":  1,
	})

	if merged[RoleUpperLip] != 0 {
		t.Errorf("upper_lip = %d, want 0", merged[RoleUpperLip])
	}
	if _, ok := merged["nose_tip"]; ok {
		t.Error("unknown role should not be merged")
	}
	if base[RoleUpperLip] != detector.UpperLipCenter {
		t.Error("Merge modified the receiver")
	}
	if err := merged.Validate(); err != nil {
		t.Errorf("merged map should stay valid: %v", err)
	}
}
