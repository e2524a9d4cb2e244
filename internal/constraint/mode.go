package constraint

import "fmt"

// CollisionMode selects which side of a sphere the cloth must stay on.
type CollisionMode int

const (
	// Outside keeps vertices out of the sphere.
	Outside CollisionMode = iota
	// Inside keeps vertices within the sphere.
	Inside
)

// ParseCollisionMode converts "outside" or "inside".
func ParseCollisionMode(s string) (CollisionMode, error) {
	switch s {
	case "", "outside":
		return Outside, nil
	case "inside":
		return Inside, nil
	}
	return Outside, fmt.Errorf("constraint: unknown collision mode %q", s)
}

func (m CollisionMode) String() string {
	if m == Inside {
		return "inside"
	}
	return "outside"
}

// MarshalText implements encoding.TextMarshaler (yaml and json use it).
func (m CollisionMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *CollisionMode) UnmarshalText(text []byte) error {
	mode, err := ParseCollisionMode(string(text))
	if err != nil {
		return err
	}
	*m = mode
	return nil
}
