package handler

import (
	"github.com/ethereum/go-ethereum/common"
)

// PriceResponse is returned by GET /prices/{asset}
type PriceResponse struct {
	Asset     common.Address `json:"asset"`
	Target    common.Address `json:"target"`
	Price     string         `json:"price"`     // 18-decimal fixed point integer
	Formatted string         `json:"formatted"` // Price as a decimal number
}

// TimeGapResponse is returned by GET /time-gaps/{asset}
type TimeGapResponse struct {
	Asset      common.Address `json:"asset"`
	Configured bool           `json:"configured"`
	Seconds    uint64         `json:"seconds"`
}

// RemappingResponse is returned by GET /remappings/{asset}
type RemappingResponse struct {
	Asset  common.Address `json:"asset"`
	Target common.Address `json:"target"`
}

// AddressResponse is returned by GET /registry and GET /owner
type AddressResponse struct {
	Address common.Address `json:"address"`
}

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error string `json:"error"`
}

// Signed admin requests. Deadline is a unix timestamp after which the
// request is rejected.

type RegistryRequest struct {
	Registry common.Address `json:"registry"`
	Deadline int64          `json:"deadline"`
}

type TimeGapsRequest struct {
	Assets   []common.Address `json:"assets"`
	Gaps     []uint64         `json:"gaps"` // seconds
	Deadline int64            `json:"deadline"`
}

type RemappingsRequest struct {
	Assets   []common.Address `json:"assets"`
	Remaps   []common.Address `json:"remaps"`
	Deadline int64            `json:"deadline"`
}

type OwnerRequest struct {
	Owner    common.Address `json:"owner"`
	Deadline int64          `json:"deadline"`
}
