package oracle

import (
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

var (
	ErrInvalidRegistry     = errors.New("invalid registry address")
	ErrInvalidOwner        = errors.New("invalid owner address")
	ErrUnauthorized        = errors.New("caller is not the owner")
	ErrArrayLengthMismatch = errors.New("input array length mismatch")
	ErrInvalidAsset        = errors.New("invalid asset address")
	ErrInvalidGap          = errors.New("invalid time gap")
	ErrGapTooLarge         = errors.New("time gap too large")
	ErrNoMaxDelay          = errors.New("no max delay configured")
	ErrPriceOutdated       = errors.New("price outdated")
	ErrInvalidAnswer       = errors.New("invalid price answer")
)

// GapTooLargeError reports a time gap above MaxTimeGap
type GapTooLargeError struct {
	Gap time.Duration
}

func (e *GapTooLargeError) Error() string {
	return fmt.Sprintf("%s: %s exceeds %s", ErrGapTooLarge, e.Gap, MaxTimeGap)
}

func (e *GapTooLargeError) Is(target error) bool {
	return target == ErrGapTooLarge
}

// NoMaxDelayError reports a price request for an asset without a time gap
type NoMaxDelayError struct {
	Asset common.Address
}

func (e *NoMaxDelayError) Error() string {
	return fmt.Sprintf("%s for %s", ErrNoMaxDelay, e.Asset)
}

func (e *NoMaxDelayError) Is(target error) bool {
	return target == ErrNoMaxDelay
}

// PriceOutdatedError reports a reading older than the asset's time gap
type PriceOutdatedError struct {
	Asset     common.Address
	UpdatedAt time.Time
	Gap       time.Duration
}

func (e *PriceOutdatedError) Error() string {
	return fmt.Sprintf("%s for %s: updated at %s, max age %s",
		ErrPriceOutdated, e.Asset, e.UpdatedAt.UTC().Format(time.RFC3339), e.Gap)
}

func (e *PriceOutdatedError) Is(target error) bool {
	return target == ErrPriceOutdated
}

// InvalidAnswerError reports a missing or negative registry answer
type InvalidAnswerError struct {
	Asset  common.Address
	Answer *big.Int
}

func (e *InvalidAnswerError) Error() string {
	return fmt.Sprintf("%s for %s: %v", ErrInvalidAnswer, e.Asset, e.Answer)
}

func (e *InvalidAnswerError) Is(target error) bool {
	return target == ErrInvalidAnswer
}
