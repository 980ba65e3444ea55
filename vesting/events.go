package vesting

import (
	"encoding/json"
	"fmt"

	"github.com/p2eengineering/kalp-sdk-public/kalpsdk"
)

type InitializedEvent struct {
	Admin           string `json:"admin"`
	PaymentToken    string `json:"paymentToken"`
	VestingToken    string `json:"vestingToken"`
	ContractAddress string `json:"contractAddress"`
}

type AdminRoleTransferredEvent struct {
	OldAdmin string `json:"oldAdmin"`
	NewAdmin string `json:"newAdmin"`
}

type TierEvent struct {
	TierID             uint64 `json:"tierId"`
	MaxTokensPerWallet string `json:"maxTokensPerWallet"`
	SaleStartTimestamp uint64 `json:"saleStartTimestamp"`
	SaleEndTimestamp   uint64 `json:"saleEndTimestamp"`
	MaxTokensForTier   string `json:"maxTokensForTier"`
	Price              string `json:"price"`
	WhitelistOnly      bool   `json:"whitelistOnly"`
}

type WhitelistEvent struct {
	Account string `json:"account"`
	TierID  uint64 `json:"tierId"`
}

type VestingTimeSetEvent struct {
	TierID                uint64 `json:"tierId"`
	VestingStartTimestamp uint64 `json:"vestingStartTimestamp"`
}

type TokensPurchasedEvent struct {
	Buyer  string `json:"buyer"`
	TierID uint64 `json:"tierId"`
	Amount string `json:"amount"`
	Cost   string `json:"cost"`
}

type TokensClaimedEvent struct {
	Beneficiary string `json:"beneficiary"`
	TierID      uint64 `json:"tierId"`
	Amount      string `json:"amount"`
}

func emitEvent(ctx kalpsdk.TransactionContextInterface, name string, payload interface{}) error {
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to obtain JSON encoding: %v", err)
	}

	err = ctx.SetEvent(name, payloadJSON)
	if err != nil {
		return fmt.Errorf("failed to set event: %v", err)
	}

	return nil
}

func EmitInitialized(ctx kalpsdk.TransactionContextInterface, admin, paymentToken, vestingToken, contractAddress string) error {
	return emitEvent(ctx, initializedEvent, InitializedEvent{
		Admin:           admin,
		PaymentToken:    paymentToken,
		VestingToken:    vestingToken,
		ContractAddress: contractAddress,
	})
}

func EmitAdminRoleTransferred(ctx kalpsdk.TransactionContextInterface, oldAdmin, newAdmin string) error {
	return emitEvent(ctx, adminRoleTransferredEvent, AdminRoleTransferredEvent{
		OldAdmin: oldAdmin,
		NewAdmin: newAdmin,
	})
}

func EmitTierCreated(ctx kalpsdk.TransactionContextInterface, tierID uint64, tier *Tier) error {
	return emitEvent(ctx, tierCreatedEvent, tierEventPayload(tierID, tier))
}

func EmitTierUpdated(ctx kalpsdk.TransactionContextInterface, tierID uint64, tier *Tier) error {
	return emitEvent(ctx, tierUpdatedEvent, tierEventPayload(tierID, tier))
}

func EmitAddressWhitelisted(ctx kalpsdk.TransactionContextInterface, account string, tierID uint64) error {
	return emitEvent(ctx, addressWhitelistedEvent, WhitelistEvent{Account: account, TierID: tierID})
}

func EmitAddressRemovedFromWhitelist(ctx kalpsdk.TransactionContextInterface, account string, tierID uint64) error {
	return emitEvent(ctx, addressRemovedEvent, WhitelistEvent{Account: account, TierID: tierID})
}

func EmitVestingTimeSet(ctx kalpsdk.TransactionContextInterface, tierID, vestingStartTimestamp uint64) error {
	return emitEvent(ctx, vestingTimeSetEvent, VestingTimeSetEvent{
		TierID:                tierID,
		VestingStartTimestamp: vestingStartTimestamp,
	})
}

func EmitTokensPurchased(ctx kalpsdk.TransactionContextInterface, buyer string, tierID uint64, amount, cost string) error {
	return emitEvent(ctx, tokensPurchasedEvent, TokensPurchasedEvent{
		Buyer:  buyer,
		TierID: tierID,
		Amount: amount,
		Cost:   cost,
	})
}

func EmitTokensClaimed(ctx kalpsdk.TransactionContextInterface, beneficiary string, tierID uint64, amount string) error {
	return emitEvent(ctx, tokensClaimedEvent, TokensClaimedEvent{
		Beneficiary: beneficiary,
		TierID:      tierID,
		Amount:      amount,
	})
}

func tierEventPayload(tierID uint64, tier *Tier) TierEvent {
	return TierEvent{
		TierID:             tierID,
		MaxTokensPerWallet: tier.MaxTokensPerWallet,
		SaleStartTimestamp: tier.SaleStartTimestamp,
		SaleEndTimestamp:   tier.SaleEndTimestamp,
		MaxTokensForTier:   tier.MaxTokensForTier,
		Price:              tier.Price,
		WhitelistOnly:      tier.WhitelistOnly,
	}
}
