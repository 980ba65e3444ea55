package vesting

import (
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"strconv"

	"github.com/p2eengineering/kalp-sdk-public/kalpsdk"
)

type Tier struct {
	MaxTokensPerWallet string `json:"maxTokensPerWallet"`
	SaleStartTimestamp uint64 `json:"saleStartTimestamp"`
	SaleEndTimestamp   uint64 `json:"saleEndTimestamp"`
	MaxTokensForTier   string `json:"maxTokensForTier"`
	Price              string `json:"price"`
	WhitelistOnly      bool   `json:"whitelistOnly"`
}

// AllocationSchedule keeps the bps value of every month slot separately
// so that re-setting a slot replaces its prior contribution. TotalBps is
// maintained on every write and never exceeds totalAllocationBps.
type AllocationSchedule struct {
	Allocations map[uint64]uint64 `json:"allocations"`
	TotalBps    uint64            `json:"totalBps"`
}

type TierVesting struct {
	VestingStartTimestamp uint64 `json:"vestingStartTimestamp"`
}

type PurchaseRecord struct {
	DocType        string `json:"docType"`
	Account        string `json:"account"`
	TierID         uint64 `json:"tierId"`
	TokensBought   string `json:"tokensBought"`
	TokensReleased string `json:"tokensReleased"`
}

type TierVestingInfo struct {
	VestingStartTimestamp uint64 `json:"vestingStartTimestamp"`
	TotalAllocationBps    uint64 `json:"totalAllocationBps"`
	Locked                bool   `json:"locked"`
}

func GetTier(ctx kalpsdk.TransactionContextInterface, tierID uint64) (*Tier, error) {
	tierKey := fmt.Sprintf("%s_%d", tierKeyPrefix, tierID)
	tierAsBytes, err := ctx.GetState(tierKey)
	if err != nil {
		return nil, NewCustomError(http.StatusInternalServerError, fmt.Sprintf("failed to get tier with Key %s", tierKey), err)
	}
	if tierAsBytes == nil {
		return nil, ErrInvalidTier(tierID)
	}

	var tier Tier
	err = json.Unmarshal(tierAsBytes, &tier)
	if err != nil {
		return nil, NewCustomError(http.StatusInternalServerError, "failed to unmarshal tier", err)
	}

	return &tier, nil
}

func SetTier(ctx kalpsdk.TransactionContextInterface, tierID uint64, tier *Tier) error {
	tierKey := fmt.Sprintf("%s_%d", tierKeyPrefix, tierID)
	tierAsBytes, err := json.Marshal(tier)
	if err != nil {
		return NewCustomError(http.StatusInternalServerError, "failed to marshal tier", err)
	}

	err = ctx.PutStateWithoutKYC(tierKey, tierAsBytes)
	if err != nil {
		return NewCustomError(http.StatusInternalServerError, "failed to set tier", err)
	}

	return nil
}

func GetTierCount(ctx kalpsdk.TransactionContextInterface) (uint64, error) {
	countAsBytes, err := ctx.GetState(tierCountKey)
	if err != nil {
		return 0, NewCustomError(http.StatusInternalServerError, "failed to get tier count", err)
	}
	if countAsBytes == nil {
		return 0, nil
	}

	count, err := strconv.ParseUint(string(countAsBytes), 10, 64)
	if err != nil {
		return 0, NewCustomError(http.StatusInternalServerError, "failed to parse tier count", err)
	}

	return count, nil
}

func SetTierCount(ctx kalpsdk.TransactionContextInterface, count uint64) error {
	err := ctx.PutStateWithoutKYC(tierCountKey, []byte(strconv.FormatUint(count, 10)))
	if err != nil {
		return NewCustomError(http.StatusInternalServerError, "failed to set tier count", err)
	}

	return nil
}

// GetAllocationSchedule returns the stored schedule for a tier, or an
// empty schedule when none has been set yet.
func GetAllocationSchedule(ctx kalpsdk.TransactionContextInterface, tierID uint64) (*AllocationSchedule, error) {
	scheduleKey := fmt.Sprintf("%s_%d", allocationsKeyPrefix, tierID)
	scheduleAsBytes, err := ctx.GetState(scheduleKey)
	if err != nil {
		return nil, NewCustomError(http.StatusInternalServerError, fmt.Sprintf("failed to get allocation schedule with Key %s", scheduleKey), err)
	}
	if scheduleAsBytes == nil {
		return &AllocationSchedule{Allocations: map[uint64]uint64{}}, nil
	}

	var schedule AllocationSchedule
	err = json.Unmarshal(scheduleAsBytes, &schedule)
	if err != nil {
		return nil, NewCustomError(http.StatusInternalServerError, "failed to unmarshal allocation schedule", err)
	}
	if schedule.Allocations == nil {
		schedule.Allocations = map[uint64]uint64{}
	}

	return &schedule, nil
}

func SetAllocationSchedule(ctx kalpsdk.TransactionContextInterface, tierID uint64, schedule *AllocationSchedule) error {
	scheduleKey := fmt.Sprintf("%s_%d", allocationsKeyPrefix, tierID)
	scheduleAsBytes, err := json.Marshal(schedule)
	if err != nil {
		return NewCustomError(http.StatusInternalServerError, "failed to marshal allocation schedule", err)
	}

	err = ctx.PutStateWithoutKYC(scheduleKey, scheduleAsBytes)
	if err != nil {
		return NewCustomError(http.StatusInternalServerError, "failed to set allocation schedule", err)
	}

	return nil
}

// GetTierVesting returns the vesting lock for a tier, or nil when the
// tier has not been locked yet.
func GetTierVesting(ctx kalpsdk.TransactionContextInterface, tierID uint64) (*TierVesting, error) {
	vestingKey := fmt.Sprintf("%s_%d", vestingKeyPrefix, tierID)
	vestingAsBytes, err := ctx.GetState(vestingKey)
	if err != nil {
		return nil, NewCustomError(http.StatusInternalServerError, fmt.Sprintf("failed to get tier vesting with Key %s", vestingKey), err)
	}
	if vestingAsBytes == nil {
		return nil, nil
	}

	var vesting TierVesting
	err = json.Unmarshal(vestingAsBytes, &vesting)
	if err != nil {
		return nil, NewCustomError(http.StatusInternalServerError, "failed to unmarshal tier vesting", err)
	}

	return &vesting, nil
}

func SetTierVesting(ctx kalpsdk.TransactionContextInterface, tierID uint64, vesting *TierVesting) error {
	vestingKey := fmt.Sprintf("%s_%d", vestingKeyPrefix, tierID)
	vestingAsBytes, err := json.Marshal(vesting)
	if err != nil {
		return NewCustomError(http.StatusInternalServerError, "failed to marshal tier vesting", err)
	}

	err = ctx.PutStateWithoutKYC(vestingKey, vestingAsBytes)
	if err != nil {
		return NewCustomError(http.StatusInternalServerError, "failed to set tier vesting", err)
	}

	return nil
}

// GetPurchaseRecord returns the purchase record of an account in a
// tier, or nil when the account has never bought in that tier.
func GetPurchaseRecord(ctx kalpsdk.TransactionContextInterface, tierID uint64, account string) (*PurchaseRecord, error) {
	purchaseKey := fmt.Sprintf("%s_%d_%s", purchaseKeyPrefix, tierID, account)
	purchaseAsBytes, err := ctx.GetState(purchaseKey)
	if err != nil {
		return nil, NewCustomError(http.StatusInternalServerError, fmt.Sprintf("failed to get purchase record with Key %s", purchaseKey), err)
	}
	if purchaseAsBytes == nil {
		return nil, nil
	}

	var purchase PurchaseRecord
	err = json.Unmarshal(purchaseAsBytes, &purchase)
	if err != nil {
		return nil, NewCustomError(http.StatusInternalServerError, "failed to unmarshal purchase record", err)
	}

	return &purchase, nil
}

func SetPurchaseRecord(ctx kalpsdk.TransactionContextInterface, purchase *PurchaseRecord) error {
	purchaseKey := fmt.Sprintf("%s_%d_%s", purchaseKeyPrefix, purchase.TierID, purchase.Account)
	purchaseAsBytes, err := json.Marshal(purchase)
	if err != nil {
		return NewCustomError(http.StatusInternalServerError, "failed to marshal purchase record", err)
	}

	err = ctx.PutStateWithoutKYC(purchaseKey, purchaseAsBytes)
	if err != nil {
		return NewCustomError(http.StatusInternalServerError, "failed to set purchase record", err)
	}

	return nil
}

func GetTotalTokensSold(ctx kalpsdk.TransactionContextInterface, tierID uint64) (*big.Int, error) {
	soldKey := fmt.Sprintf("%s_%d", tierSoldKeyPrefix, tierID)
	soldAsBytes, err := ctx.GetState(soldKey)
	if err != nil {
		return nil, NewCustomError(http.StatusInternalServerError, fmt.Sprintf("failed to get tokens sold with Key %s", soldKey), err)
	}

	sold := big.NewInt(0)
	if soldAsBytes != nil {
		_, success := sold.SetString(string(soldAsBytes), 10)
		if !success {
			return nil, NewCustomError(http.StatusInternalServerError, fmt.Sprintf("failed to parse tokens sold for tier %d", tierID), nil)
		}
	}

	return sold, nil
}

func SetTotalTokensSold(ctx kalpsdk.TransactionContextInterface, tierID uint64, sold *big.Int) error {
	soldKey := fmt.Sprintf("%s_%d", tierSoldKeyPrefix, tierID)
	soldAsBytes, err := sold.MarshalText()
	if err != nil {
		return NewCustomError(http.StatusInternalServerError, "failed to marshal tokens sold", err)
	}

	err = ctx.PutStateWithoutKYC(soldKey, soldAsBytes)
	if err != nil {
		return NewCustomError(http.StatusInternalServerError, fmt.Sprintf("failed to set tokens sold for tier %d", tierID), err)
	}

	return nil
}

func GetAdminAddress(ctx kalpsdk.TransactionContextInterface) (string, error) {
	adminAsBytes, err := ctx.GetState(adminKey)
	if err != nil {
		return "", NewCustomError(http.StatusInternalServerError, "failed to get admin address", err)
	}

	return string(adminAsBytes), nil
}

func SetAdminAddress(ctx kalpsdk.TransactionContextInterface, admin string) error {
	err := ctx.PutStateWithoutKYC(adminKey, []byte(admin))
	if err != nil {
		return NewCustomError(http.StatusInternalServerError, "failed to set admin address", err)
	}

	return nil
}

func GetStoredAddress(ctx kalpsdk.TransactionContextInterface, key string) (string, error) {
	addressAsBytes, err := ctx.GetState(key)
	if err != nil {
		return "", NewCustomError(http.StatusInternalServerError, fmt.Sprintf("failed to get address with Key %s", key), err)
	}

	return string(addressAsBytes), nil
}

func SetStoredAddress(ctx kalpsdk.TransactionContextInterface, key, address string) error {
	err := ctx.PutStateWithoutKYC(key, []byte(address))
	if err != nil {
		return NewCustomError(http.StatusInternalServerError, fmt.Sprintf("failed to set address with Key %s", key), err)
	}

	return nil
}
