package domain

import "fmt"

// RoofCommandRequest

type RoofCommandRequest interface {
	ActorRequest
	RoofCommand() string
}

type RoofCommandRequestMixIn struct {
	ActorRequestMixIn
}

func (r RoofCommandRequestMixIn) RoofCommand() string {
	return fmt.Sprintf("%T", r)
}

// RoofCommandResponse

type RoofCommandResponse interface {
	ActorResponse
	RoofCommandResponse() string
}

type RoofCommandResponseMixIn struct {
	ActorResponseMixIn
}

func (r RoofCommandResponseMixIn) RoofCommandResponse() string {
	return fmt.Sprintf("%T", r)
}

// Roof commands

type RoofOpenRequest struct {
	RoofCommandRequestMixIn
}

type RoofCloseRequest struct {
	RoofCommandRequestMixIn
}

type RoofStopRequest struct {
	RoofCommandRequestMixIn
}

type RoofSetPositionRequest struct {
	RoofCommandRequestMixIn
	// Position is the slide target in percent (0-100)
	Position int
}

type RoofSetTiltRequest struct {
	RoofCommandRequestMixIn
	// TiltPercent is the exposed tilt target in percent (0-100),
	// mapped to degrees at the device boundary
	TiltPercent int
}

type RoofSetLockRequest struct {
	RoofCommandRequestMixIn
	Locked bool
}

type RoofFullyOpenRequest struct {
	RoofCommandRequestMixIn
}

type RoofFullyCloseRequest struct {
	RoofCommandRequestMixIn
}

// RoofCyclePressRequest is a press of the cycle button: each press advances
// the open, stop, close, stop sequence.
type RoofCyclePressRequest struct {
	RoofCommandRequestMixIn
}

type RoofCommandDoneResponse struct {
	RoofCommandResponseMixIn
}

// ensure interface compliance
var _ RoofCommandRequest = (*RoofOpenRequest)(nil)
