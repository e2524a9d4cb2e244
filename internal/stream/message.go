package stream

import (
	"github.com/Faultbox/clothsim/internal/constraint"
	"github.com/Faultbox/clothsim/internal/sim"
)

// Message types sent by the server.
const (
	TypeMesh  = "mesh"
	TypeFrame = "frame"
)

// MeshMessage is sent once per connection. Vertices holds the rest shape.
type MeshMessage struct {
	Type      string    `json:"type"`
	Cols      int       `json:"cols"`
	Rows      int       `json:"rows"`
	Vertices  []float32 `json:"vertices"`
	Triangles []int32   `json:"triangles"`
	Edges     []int32   `json:"edges"`
}

// SphereState is a collider as seen by clients.
type SphereState struct {
	Center  [3]float32               `json:"center"`
	Radius  float32                  `json:"radius"`
	Mode    constraint.CollisionMode `json:"mode"`
	Grabbed bool                     `json:"grabbed"`
}

// FrameMessage carries the live positions after a step or command.
type FrameMessage struct {
	Type      string        `json:"type"`
	Frame     int           `json:"frame"`
	Paused    bool          `json:"paused"`
	Grabbed   int           `json:"grabbed"`
	Positions []float32     `json:"positions"`
	Spheres   []SphereState `json:"spheres"`
}

func newMeshMessage(s *sim.Sim) MeshMessage {
	g := s.Grid()
	return MeshMessage{
		Type:      TypeMesh,
		Cols:      g.Cols,
		Rows:      g.Rows,
		Vertices:  s.Cloth.RestPositions(),
		Triangles: s.Cloth.Triangles(),
		Edges:     s.Cloth.Edges(),
	}
}

// newFrameMessage snapshots s. It must run on the driver goroutine; the
// result shares no memory with the simulation.
func newFrameMessage(s *sim.Sim) FrameMessage {
	grabbed := -1
	if id, ok := s.Cloth.Grabbed(); ok {
		grabbed = id
	}
	held, _ := s.GrabbedSphere()

	spheres := make([]SphereState, 0, len(s.Scene.Spheres()))
	for i, sp := range s.Scene.Spheres() {
		spheres = append(spheres, SphereState{
			Center:  sp.Center().Array(),
			Radius:  sp.Radius,
			Mode:    sp.Mode,
			Grabbed: i == held,
		})
	}

	return FrameMessage{
		Type:      TypeFrame,
		Frame:     s.Scene.Frame(),
		Paused:    s.Scene.Paused(),
		Grabbed:   grabbed,
		Positions: append([]float32(nil), s.Cloth.Positions()...),
		Spheres:   spheres,
	}
}
