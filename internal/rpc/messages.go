package rpc

import "encoding/json"

type RegisterRequest struct {
	Username string `json:"username"`
	Salt     []byte `json:"salt"`
	Verifier []byte `json:"verifier"`
}

type RegisterResponse struct{}

type GetSaltRequest struct {
	Username string `json:"username"`
}

type GetSaltResponse struct {
	Salt []byte `json:"salt"`
}

type LoginRequest struct {
	Username          string `json:"username"`
	VerifierCandidate []byte `json:"verifierCandidate"`
}

type LoginResponse struct {
	AccessToken string `json:"accessToken"`
}

type PingRequest struct{}

type PingResponse struct {
	Status string `json:"status"`
}

// Record methods address one kind's collection of one owner. The owner must
// match the caller's access token.

type ListRequest struct {
	Kind    string `json:"kind"`
	OwnerID string `json:"ownerId"`
}

type ListResponse struct {
	Records []json.RawMessage `json:"records"`
}

type InsertRequest struct {
	Kind    string          `json:"kind"`
	OwnerID string          `json:"ownerId"`
	Record  json.RawMessage `json:"record"`
}

type InsertResponse struct {
	Record json.RawMessage `json:"record"`
}

type UpdateRequest struct {
	Kind    string          `json:"kind"`
	OwnerID string          `json:"ownerId"`
	ID      string          `json:"id"`
	Patch   json.RawMessage `json:"patch"`
}

type UpdateResponse struct{}

type DeleteRequest struct {
	Kind    string `json:"kind"`
	OwnerID string `json:"ownerId"`
	ID      string `json:"id"`
}

type DeleteResponse struct{}
