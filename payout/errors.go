package payout

import "errors"

var (
	// ErrInvalidAddress indicates a principal that is not a valid P2PKH address.
	ErrInvalidAddress = errors.New("payout: invalid address")

	// ErrDustPayout indicates a payout below the P2PKH dust limit.
	ErrDustPayout = errors.New("payout: amount below dust limit")

	// ErrScriptBuild indicates script construction failed.
	ErrScriptBuild = errors.New("payout: script build failed")
)
