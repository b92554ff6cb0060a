package domain

import "github.com/berfenger/embernews2mqtt/pkg/pellet_stove"

const (
	ACTOR_ID_MASTER       = "master"
	ACTOR_ID_STOVE        = "stove"
	ACTOR_ID_POLLER       = "poller"
	ACTOR_ID_MQTT         = "mqtt"
	ACTOR_ID_HA_DISCOVERY = "hadiscovery"
)

type GetStoveStatusRequest struct {
	ActorRequestMixIn
}

type GetStoveStatusResponse struct {
	ActorResponseMixIn
	Status    pellet_stove.StatusDocument
	Flattened map[string]any
}

type GetStoveInfoRequest struct {
	ActorRequestMixIn
}

type GetStoveInfoResponse struct {
	ActorResponseMixIn
	Info *pellet_stove.StoveInfo
}

type SendStoveCommandRequest struct {
	ActorRequestMixIn
	Payload map[string]any
}

type SendStoveCommandResponse struct {
	ActorResponseMixIn
}

type PublishMessageRequest struct {
	ActorRequestMixIn
	Topic   string
	Payload string
	Retain  bool
}

type PublishMessageResponse struct {
	ActorResponseMixIn
}

type PublishCapabilityUpdateRequest struct {
	ActorRequestMixIn
	Retain bool
	Event  CapabilityUpdateEvent
}

type PublishCapabilityUpdateResponse struct {
	ActorResponseMixIn
}

type PublishTriggerRequest struct {
	ActorRequestMixIn
	Event TriggerEvent
}

type PublishTriggerResponse struct {
	ActorResponseMixIn
}

type PublishNotificationRequest struct {
	ActorRequestMixIn
	Message string
}

type PublishNotificationResponse struct {
	ActorResponseMixIn
}

type PublishDiscoveryRequest struct {
	ActorRequestMixIn
	Sensors      []GenericSensor
	Switches     []GenericSwitch
	InputNumbers []GenericInputNumber
}

type PublishDiscoveryResponse struct {
	ActorResponseMixIn
}

type ActorHealthRequest struct {
	ActorRequestMixIn
}

type ActorHealthResponse struct {
	ActorResponseMixIn
	Id      string
	Healthy bool
	State   string
}
