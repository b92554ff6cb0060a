package domain

import "fmt"

// StoveControlRequest

type StoveControlRequest interface {
	ActorRequest
	StoveControlCommand() string
}

type StoveControlRequestMixIn struct {
	ActorRequestMixIn
}

func (r StoveControlRequestMixIn) StoveControlCommand() string {
	return fmt.Sprintf("%T", r)
}

// StoveControlResponse

type StoveControlResponse interface {
	ActorResponse
	StoveControlResponse() string
}

type StoveControlResponseMixIn struct {
	ActorResponseMixIn
}

func (r StoveControlResponseMixIn) StoveControlResponse() string {
	return fmt.Sprintf("%T", r)
}

// Stove control commands

type SetOnOffRequest struct {
	StoveControlRequestMixIn
	Enable bool
}

type SetOnOffResponse struct {
	StoveControlResponseMixIn
}

type SetTargetTemperatureRequest struct {
	StoveControlRequestMixIn
	Celsius float64
}

type SetTargetTemperatureResponse struct {
	StoveControlResponseMixIn
}

type SetEcoModeRequest struct {
	StoveControlRequestMixIn
	Enable bool
}

type SetEcoModeResponse struct {
	StoveControlResponseMixIn
}

type SetWeeklyProgramRequest struct {
	StoveControlRequestMixIn
	Enable bool
}

type SetWeeklyProgramResponse struct {
	StoveControlResponseMixIn
}

type SetPelletsRequest struct {
	StoveControlRequestMixIn
	Kg float64
}

type SetPelletsResponse struct {
	StoveControlResponseMixIn
	Kg float64
}

type SetPelletsMaxRequest struct {
	StoveControlRequestMixIn
	Kg float64
}

type SetPelletsMaxResponse struct {
	StoveControlResponseMixIn
	Kg float64
}

type SetPelletsAutoResetRequest struct {
	StoveControlRequestMixIn
	Mode string
}

type SetPelletsAutoResetResponse struct {
	StoveControlResponseMixIn
	Mode string
}

// ensure interface compliance
var _ StoveControlRequest = (*SetOnOffRequest)(nil)
var _ StoveControlRequest = (*SetPelletsRequest)(nil)
