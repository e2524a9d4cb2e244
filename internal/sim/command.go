package sim

import (
	"fmt"

	"github.com/Faultbox/clothsim/pkg/math"
)

// CommandType names a collaborator request.
type CommandType string

// Command types.
const (
	CmdGrab    CommandType = "grab"
	CmdMove    CommandType = "move"
	CmdRelease CommandType = "release"
	CmdReset   CommandType = "reset"
	CmdPause   CommandType = "pause"
	CmdStep    CommandType = "step"
)

// Command is a request from a viewer or remote client. Point and Velocity
// are world space. A pause without Paused toggles.
type Command struct {
	Type     CommandType `json:"type"`
	Point    [3]float32  `json:"point"`
	Velocity [3]float32  `json:"velocity"`
	Paused   *bool       `json:"paused,omitempty"`
}

// Apply performs one command on the driver goroutine.
func (s *Sim) Apply(cmd Command) error {
	p := math.FromArray(cmd.Point)
	v := math.FromArray(cmd.Velocity)

	switch cmd.Type {
	case CmdGrab:
		s.StartGrab(p)
	case CmdMove:
		s.MoveGrabbed(p, v)
	case CmdRelease:
		s.EndGrab(p, v)
	case CmdReset:
		s.Reset()
	case CmdPause:
		if cmd.Paused != nil {
			s.Scene.SetPaused(*cmd.Paused)
		} else {
			s.Scene.TogglePaused()
		}
	case CmdStep:
		s.Scene.Step()
	default:
		return fmt.Errorf("%w: %q", ErrUnknownCommand, cmd.Type)
	}
	return nil
}
