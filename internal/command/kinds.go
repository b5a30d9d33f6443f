package command

// DirectKind identifies a pipeline-mutating command. Direct commands are
// strictly serialized: at most one is mid-flight engine-wide.
type DirectKind int

const (
	DirectNone DirectKind = iota
	DirectOpen
	DirectClose
	DirectChange
)

// String returns the direct command name.
func (k DirectKind) String() string {
	switch k {
	case DirectNone:
		return "None"
	case DirectOpen:
		return "Open"
	case DirectClose:
		return "Close"
	case DirectChange:
		return "Change"
	default:
		return "Unknown"
	}
}

// PriorityKind identifies a playback-state command. Priority commands are
// serviced by the scheduler cycle and always take precedence over queued
// seeks.
type PriorityKind int

const (
	PriorityNone PriorityKind = iota
	PriorityPlay
	PriorityPause
	PriorityStop
)

// String returns the priority command name.
func (k PriorityKind) String() string {
	switch k {
	case PriorityNone:
		return "None"
	case PriorityPlay:
		return "Play"
	case PriorityPause:
		return "Pause"
	case PriorityStop:
		return "Stop"
	default:
		return "Unknown"
	}
}

// SeekMode selects how a seek target is interpreted.
type SeekMode int

const (
	SeekNormal SeekMode = iota
	SeekStopMode
	SeekStepForward
	SeekStepBackward
)

// String returns the seek mode name.
func (m SeekMode) String() string {
	switch m {
	case SeekNormal:
		return "Normal"
	case SeekStopMode:
		return "Stop"
	case SeekStepForward:
		return "StepForward"
	case SeekStepBackward:
		return "StepBackward"
	default:
		return "Unknown"
	}
}
