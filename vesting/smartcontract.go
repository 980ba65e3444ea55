package vesting

import (
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"

	"github.com/p2eengineering/kalp-sdk-public/kalpsdk"
)

type SmartContract struct {
	kalpsdk.Contract
}

// Initialize records the deployer as the contract admin and pins the
// collaborating token chaincodes. It can only run once.
func (s *SmartContract) Initialize(ctx kalpsdk.TransactionContextInterface, paymentToken, vestingToken, contractAddress string) error {
	signer, err := GetUserId(ctx)
	if err != nil {
		return NewCustomError(http.StatusBadRequest, "failed to get client id", err)
	}

	admin, err := GetAdminAddress(ctx)
	if err != nil {
		return err
	}
	if admin != "" {
		return NewCustomError(http.StatusConflict, "contract is already initialized", ErrAlreadyInitialized)
	}

	if !IsContractAddressValid(paymentToken) {
		return ErrInvalidContractAddress(paymentToken)
	}
	if !IsContractAddressValid(vestingToken) {
		return ErrInvalidContractAddress(vestingToken)
	}
	if !IsContractAddressValid(contractAddress) {
		return ErrInvalidContractAddress(contractAddress)
	}

	if err := SetAdminAddress(ctx, signer); err != nil {
		return err
	}
	if err := SetStoredAddress(ctx, paymentTokenKey, paymentToken); err != nil {
		return err
	}
	if err := SetStoredAddress(ctx, vestingTokenKey, vestingToken); err != nil {
		return err
	}
	if err := SetStoredAddress(ctx, contractAddressKey, contractAddress); err != nil {
		return err
	}

	return EmitInitialized(ctx, signer, paymentToken, vestingToken, contractAddress)
}

// TransferAdminRole re-points the stored contract authority to a new
// identity. Admin only.
func (s *SmartContract) TransferAdminRole(ctx kalpsdk.TransactionContextInterface, newAdmin string) error {
	if err := IsSignerAdmin(ctx); err != nil {
		return err
	}

	if !IsUserAddressValid(newAdmin) {
		return ErrInvalidUserAddress(newAdmin)
	}

	oldAdmin, err := GetAdminAddress(ctx)
	if err != nil {
		return err
	}

	if err := SetAdminAddress(ctx, newAdmin); err != nil {
		return err
	}

	return EmitAdminRoleTransferred(ctx, oldAdmin, newAdmin)
}

// CreatePreSaleTier appends a new sale tier and returns its id. Tier
// ids are dense and creation-ordered.
func (s *SmartContract) CreatePreSaleTier(ctx kalpsdk.TransactionContextInterface, maxTokensPerWallet string, saleStartTimestamp, saleEndTimestamp uint64, maxTokensForTier, price string, whitelistOnly bool) (uint64, error) {
	if err := IsSignerAdmin(ctx); err != nil {
		return 0, err
	}

	tier, err := validateTierParams(maxTokensPerWallet, saleStartTimestamp, saleEndTimestamp, maxTokensForTier, price, whitelistOnly)
	if err != nil {
		return 0, err
	}

	tierID, err := GetTierCount(ctx)
	if err != nil {
		return 0, err
	}

	if err := SetTier(ctx, tierID, tier); err != nil {
		return 0, err
	}
	if err := SetTierCount(ctx, tierID+1); err != nil {
		return 0, err
	}

	if err := EmitTierCreated(ctx, tierID, tier); err != nil {
		return 0, err
	}

	return tierID, nil
}

// UpdatePreSaleTier overwrites the fields of an existing tier. Once the
// tier's vesting has been locked the terms are frozen and the update is
// rejected, protecting buyers from retroactive changes.
func (s *SmartContract) UpdatePreSaleTier(ctx kalpsdk.TransactionContextInterface, tierID uint64, maxTokensPerWallet string, saleStartTimestamp, saleEndTimestamp uint64, maxTokensForTier, price string, whitelistOnly bool) error {
	if err := IsSignerAdmin(ctx); err != nil {
		return err
	}

	if _, err := GetTier(ctx, tierID); err != nil {
		return err
	}

	tierVesting, err := GetTierVesting(ctx, tierID)
	if err != nil {
		return err
	}
	if tierVesting != nil {
		return NewCustomError(http.StatusBadRequest, fmt.Sprintf("tier %d is locked for vesting", tierID), ErrTierLocked)
	}

	tier, err := validateTierParams(maxTokensPerWallet, saleStartTimestamp, saleEndTimestamp, maxTokensForTier, price, whitelistOnly)
	if err != nil {
		return err
	}

	if err := SetTier(ctx, tierID, tier); err != nil {
		return err
	}

	return EmitTierUpdated(ctx, tierID, tier)
}

// WhitelistAddress marks an account as eligible for a whitelist-gated
// tier. Idempotent.
func (s *SmartContract) WhitelistAddress(ctx kalpsdk.TransactionContextInterface, account string, tierID uint64) error {
	if err := IsSignerAdmin(ctx); err != nil {
		return err
	}

	if !IsUserAddressValid(account) {
		return ErrInvalidUserAddress(account)
	}

	if _, err := GetTier(ctx, tierID); err != nil {
		return err
	}

	whitelistKey := fmt.Sprintf("%s_%d_%s", whitelistKeyPrefix, tierID, account)
	if err := ctx.PutStateWithoutKYC(whitelistKey, []byte("true")); err != nil {
		return NewCustomError(http.StatusInternalServerError, fmt.Sprintf("failed to whitelist %s for tier %d", account, tierID), err)
	}

	return EmitAddressWhitelisted(ctx, account, tierID)
}

// RemoveFromWhitelist clears an account's whitelist entry for a tier.
// Idempotent.
func (s *SmartContract) RemoveFromWhitelist(ctx kalpsdk.TransactionContextInterface, account string, tierID uint64) error {
	if err := IsSignerAdmin(ctx); err != nil {
		return err
	}

	if !IsUserAddressValid(account) {
		return ErrInvalidUserAddress(account)
	}

	if _, err := GetTier(ctx, tierID); err != nil {
		return err
	}

	whitelistKey := fmt.Sprintf("%s_%d_%s", whitelistKeyPrefix, tierID, account)
	if err := ctx.DelStateWithoutKYC(whitelistKey); err != nil {
		return NewCustomError(http.StatusInternalServerError, fmt.Sprintf("failed to remove %s from whitelist for tier %d", account, tierID), err)
	}

	return EmitAddressRemovedFromWhitelist(ctx, account, tierID)
}

// IsAddressWhitelisted reports whether an account is whitelisted for a
// tier. Unknown pairs are false.
func (s *SmartContract) IsAddressWhitelisted(ctx kalpsdk.TransactionContextInterface, account string, tierID uint64) (bool, error) {
	whitelistKey := fmt.Sprintf("%s_%d_%s", whitelistKeyPrefix, tierID, account)
	whitelistedAsBytes, err := ctx.GetState(whitelistKey)
	if err != nil {
		return false, NewCustomError(http.StatusInternalServerError, fmt.Sprintf("failed to get whitelist entry with Key %s", whitelistKey), err)
	}

	return whitelistedAsBytes != nil, nil
}

// SetDistributionPercent sets the unlock percentage (in basis points)
// for one month slot of a tier's schedule. Re-setting a slot replaces
// its prior contribution; the running total can never exceed 10,000.
func (s *SmartContract) SetDistributionPercent(ctx kalpsdk.TransactionContextInterface, tierID, monthOffset, basisPoints uint64) error {
	if err := IsSignerAdmin(ctx); err != nil {
		return err
	}

	if _, err := GetTier(ctx, tierID); err != nil {
		return err
	}

	if monthOffset == 0 {
		return NewCustomError(http.StatusBadRequest, "month offset cannot be zero", ErrCannotBeZero)
	}

	tierVesting, err := GetTierVesting(ctx, tierID)
	if err != nil {
		return err
	}
	if tierVesting != nil {
		return NewCustomError(http.StatusBadRequest, fmt.Sprintf("allocation schedule for tier %d is locked", tierID), ErrScheduleLocked)
	}

	schedule, err := GetAllocationSchedule(ctx, tierID)
	if err != nil {
		return err
	}

	// A single slot can never exceed the full allocation; checking it
	// first keeps the running-total arithmetic below free of uint64
	// wraparound.
	if basisPoints > totalAllocationBps {
		return NewCustomError(http.StatusBadRequest, fmt.Sprintf("allocation for tier %d month %d exceeds %d bps", tierID, monthOffset, totalAllocationBps), ErrAllocationOverflow)
	}

	newTotal := schedule.TotalBps - schedule.Allocations[monthOffset] + basisPoints
	if newTotal > totalAllocationBps {
		return NewCustomError(http.StatusBadRequest, fmt.Sprintf("total allocation for tier %d would exceed %d bps", tierID, totalAllocationBps), ErrAllocationOverflow)
	}

	if basisPoints == 0 {
		delete(schedule.Allocations, monthOffset)
	} else {
		schedule.Allocations[monthOffset] = basisPoints
	}
	schedule.TotalBps = newTotal

	return SetAllocationSchedule(ctx, tierID, schedule)
}

// SetVestingTimeForTier locks a tier's schedule and starts its unlock
// clock. Only accepted once the schedule sums to exactly 10,000 bps,
// and only once per tier.
func (s *SmartContract) SetVestingTimeForTier(ctx kalpsdk.TransactionContextInterface, tierID, vestingStartTimestamp uint64) error {
	if err := IsSignerAdmin(ctx); err != nil {
		return err
	}

	if _, err := GetTier(ctx, tierID); err != nil {
		return err
	}

	if vestingStartTimestamp == 0 {
		return NewCustomError(http.StatusBadRequest, "vesting start timestamp cannot be zero", ErrCannotBeZero)
	}

	tierVesting, err := GetTierVesting(ctx, tierID)
	if err != nil {
		return err
	}
	if tierVesting != nil {
		return NewCustomError(http.StatusBadRequest, fmt.Sprintf("vesting time for tier %d is already set", tierID), ErrAlreadyLocked)
	}

	schedule, err := GetAllocationSchedule(ctx, tierID)
	if err != nil {
		return err
	}
	if schedule.TotalBps != totalAllocationBps {
		return NewCustomError(http.StatusBadRequest, fmt.Sprintf("total allocation less than %d", totalAllocationBps), ErrIncompleteSchedule)
	}

	if err := SetTierVesting(ctx, tierID, &TierVesting{VestingStartTimestamp: vestingStartTimestamp}); err != nil {
		return err
	}

	return EmitVestingTimeSet(ctx, tierID, vestingStartTimestamp)
}

// BuyVestingTokens exchanges the payment token for a vesting-token
// entitlement in a tier. The cost is amount * price / 10^18, pulled
// from the buyer's pre-approved allowance into contract custody.
// Nothing unlocks at purchase time.
func (s *SmartContract) BuyVestingTokens(ctx kalpsdk.TransactionContextInterface, tierID uint64, amount string) error {
	signer, err := GetUserId(ctx)
	if err != nil {
		return NewCustomError(http.StatusBadRequest, "failed to get client id", err)
	}

	buyAmount, ok := new(big.Int).SetString(amount, 10)
	if !ok || buyAmount.Sign() <= 0 {
		return ErrInvalidAmount("amount", amount)
	}

	tier, err := GetTier(ctx, tierID)
	if err != nil {
		return err
	}

	now, err := getTxTimestamp(ctx)
	if err != nil {
		return err
	}

	// Half-open window: a purchase at exactly saleEnd is rejected.
	if now < tier.SaleStartTimestamp || now >= tier.SaleEndTimestamp {
		return NewCustomError(http.StatusBadRequest, fmt.Sprintf("sale window for tier %d is not active", tierID), ErrTierNotActive)
	}

	if tier.WhitelistOnly {
		whitelisted, err := s.IsAddressWhitelisted(ctx, signer, tierID)
		if err != nil {
			return err
		}
		if !whitelisted {
			return NewCustomError(http.StatusBadRequest, "not allowed to buy tokens", ErrNotEligible)
		}
	}

	purchase, err := GetPurchaseRecord(ctx, tierID, signer)
	if err != nil {
		return err
	}
	if purchase == nil {
		purchase = &PurchaseRecord{
			DocType:        purchaseDocType,
			Account:        signer,
			TierID:         tierID,
			TokensBought:   "0",
			TokensReleased: "0",
		}
	}

	bought, ok := new(big.Int).SetString(purchase.TokensBought, 10)
	if !ok {
		return ErrInvalidAmount("tokensBought", purchase.TokensBought)
	}
	newBought := new(big.Int).Add(bought, buyAmount)

	maxPerWallet, ok := new(big.Int).SetString(tier.MaxTokensPerWallet, 10)
	if !ok {
		return ErrInvalidAmount("maxTokensPerWallet", tier.MaxTokensPerWallet)
	}
	if newBought.Cmp(maxPerWallet) > 0 {
		return NewCustomError(http.StatusBadRequest, fmt.Sprintf("wallet cap for tier %d exceeded", tierID), ErrWalletCapExceeded)
	}

	sold, err := GetTotalTokensSold(ctx, tierID)
	if err != nil {
		return err
	}
	newSold := new(big.Int).Add(sold, buyAmount)

	maxForTier, ok := new(big.Int).SetString(tier.MaxTokensForTier, 10)
	if !ok {
		return ErrInvalidAmount("maxTokensForTier", tier.MaxTokensForTier)
	}
	if newSold.Cmp(maxForTier) > 0 {
		return NewCustomError(http.StatusBadRequest, fmt.Sprintf("tier cap for tier %d exceeded", tierID), ErrTierCapExceeded)
	}

	price, ok := new(big.Int).SetString(tier.Price, 10)
	if !ok {
		return ErrInvalidAmount("price", tier.Price)
	}

	multiplier := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(Decimals())), nil)
	cost := new(big.Int).Mul(buyAmount, price)
	cost.Div(cost, multiplier)

	paymentToken, err := GetStoredAddress(ctx, paymentTokenKey)
	if err != nil {
		return err
	}
	contractAddress, err := GetStoredAddress(ctx, contractAddressKey)
	if err != nil {
		return err
	}
	if paymentToken == "" || contractAddress == "" {
		return NewCustomError(http.StatusBadRequest, "contract is not initialized", ErrNotInitialized)
	}

	if err := transferTokensFrom(ctx, paymentToken, signer, contractAddress, cost); err != nil {
		return err
	}

	purchase.TokensBought = newBought.String()
	if err := SetPurchaseRecord(ctx, purchase); err != nil {
		return err
	}
	if err := SetTotalTokensSold(ctx, tierID, newSold); err != nil {
		return err
	}

	return EmitTokensPurchased(ctx, signer, tierID, buyAmount.String(), cost.String())
}

// VestTokens releases the caller's newly unlocked tokens for a tier.
// Calling it again before another month slot matures is a no-op
// success, never an error.
func (s *SmartContract) VestTokens(ctx kalpsdk.TransactionContextInterface, tierID uint64) error {
	signer, err := GetUserId(ctx)
	if err != nil {
		return NewCustomError(http.StatusBadRequest, "failed to get client id", err)
	}

	if _, err := GetTier(ctx, tierID); err != nil {
		return err
	}

	tierVesting, err := GetTierVesting(ctx, tierID)
	if err != nil {
		return err
	}
	if tierVesting == nil {
		return NewCustomError(http.StatusBadRequest, fmt.Sprintf("vesting for tier %d has not started", tierID), ErrVestingNotStarted)
	}

	now, err := getTxTimestamp(ctx)
	if err != nil {
		return err
	}
	if now < tierVesting.VestingStartTimestamp {
		return NewCustomError(http.StatusBadRequest, fmt.Sprintf("vesting for tier %d has not started", tierID), ErrVestingNotStarted)
	}

	purchase, err := GetPurchaseRecord(ctx, tierID, signer)
	if err != nil {
		return err
	}
	if purchase == nil {
		// Nothing bought, nothing to release.
		return nil
	}

	bought, ok := new(big.Int).SetString(purchase.TokensBought, 10)
	if !ok {
		return ErrInvalidAmount("tokensBought", purchase.TokensBought)
	}
	released, ok := new(big.Int).SetString(purchase.TokensReleased, 10)
	if !ok {
		return ErrInvalidAmount("tokensReleased", purchase.TokensReleased)
	}

	schedule, err := GetAllocationSchedule(ctx, tierID)
	if err != nil {
		return err
	}

	elapsedMonths := (now - tierVesting.VestingStartTimestamp) / monthDuration
	unlockedBps := CalculateUnlockedBps(schedule, elapsedMonths)

	entitled := CalculateEntitledAmount(bought, unlockedBps)
	payable := new(big.Int).Sub(entitled, released)
	if payable.Sign() <= 0 {
		return nil
	}

	vestingToken, err := GetStoredAddress(ctx, vestingTokenKey)
	if err != nil {
		return err
	}
	if vestingToken == "" {
		return NewCustomError(http.StatusBadRequest, "contract is not initialized", ErrNotInitialized)
	}

	if err := transferTokens(ctx, vestingToken, signer, payable); err != nil {
		return err
	}

	purchase.TokensReleased = new(big.Int).Add(released, payable).String()
	if err := SetPurchaseRecord(ctx, purchase); err != nil {
		return err
	}

	return EmitTokensClaimed(ctx, signer, tierID, payable.String())
}

// CalculateClaimAmount is the read-only preview of what VestTokens
// would release for an account right now.
func (s *SmartContract) CalculateClaimAmount(ctx kalpsdk.TransactionContextInterface, beneficiaryAddress string, tierID uint64) (string, error) {
	if _, err := GetTier(ctx, tierID); err != nil {
		return "0", err
	}

	tierVesting, err := GetTierVesting(ctx, tierID)
	if err != nil {
		return "0", err
	}
	if tierVesting == nil {
		return "0", nil
	}

	now, err := getTxTimestamp(ctx)
	if err != nil {
		return "0", err
	}
	if now < tierVesting.VestingStartTimestamp {
		return "0", nil
	}

	purchase, err := GetPurchaseRecord(ctx, tierID, beneficiaryAddress)
	if err != nil {
		return "0", err
	}
	if purchase == nil {
		return "0", nil
	}

	bought, ok := new(big.Int).SetString(purchase.TokensBought, 10)
	if !ok {
		return "0", ErrInvalidAmount("tokensBought", purchase.TokensBought)
	}
	released, ok := new(big.Int).SetString(purchase.TokensReleased, 10)
	if !ok {
		return "0", ErrInvalidAmount("tokensReleased", purchase.TokensReleased)
	}

	schedule, err := GetAllocationSchedule(ctx, tierID)
	if err != nil {
		return "0", err
	}

	elapsedMonths := (now - tierVesting.VestingStartTimestamp) / monthDuration
	unlockedBps := CalculateUnlockedBps(schedule, elapsedMonths)

	payable := new(big.Int).Sub(CalculateEntitledAmount(bought, unlockedBps), released)
	if payable.Sign() < 0 {
		return "0", nil
	}

	return payable.String(), nil
}

// CalculateUnlockedBps sums the schedule slots that have matured after
// elapsedMonths, capped at the full allocation.
func CalculateUnlockedBps(schedule *AllocationSchedule, elapsedMonths uint64) uint64 {
	unlocked := uint64(0)
	for month, bps := range schedule.Allocations {
		if month <= elapsedMonths {
			unlocked += bps
		}
	}

	if unlocked > totalAllocationBps {
		unlocked = totalAllocationBps
	}

	return unlocked
}

// CalculateEntitledAmount applies an unlock percentage to a bought
// amount with floor division; rounding loss stays in custody.
func CalculateEntitledAmount(tokensBought *big.Int, unlockedBps uint64) *big.Int {
	if unlockedBps == 0 {
		return big.NewInt(0)
	}

	entitled := new(big.Int).Mul(tokensBought, new(big.Int).SetUint64(unlockedBps))
	return entitled.Div(entitled, new(big.Int).SetUint64(totalAllocationBps))
}

// GetTierInfo returns the tier configuration by id.
func (s *SmartContract) GetTierInfo(ctx kalpsdk.TransactionContextInterface, tierID uint64) (*Tier, error) {
	return GetTier(ctx, tierID)
}

// GetTierCount returns the number of tiers created so far.
func (s *SmartContract) GetTierCount(ctx kalpsdk.TransactionContextInterface) (uint64, error) {
	return GetTierCount(ctx)
}

// GetAllocationPerMonth returns the bps set for one month slot of a
// tier, 0 when the slot is unset.
func (s *SmartContract) GetAllocationPerMonth(ctx kalpsdk.TransactionContextInterface, tierID, monthOffset uint64) (uint64, error) {
	if _, err := GetTier(ctx, tierID); err != nil {
		return 0, err
	}

	schedule, err := GetAllocationSchedule(ctx, tierID)
	if err != nil {
		return 0, err
	}

	return schedule.Allocations[monthOffset], nil
}

// GetTierVestingInfo returns the vesting lock state and running
// allocation total of a tier.
func (s *SmartContract) GetTierVestingInfo(ctx kalpsdk.TransactionContextInterface, tierID uint64) (*TierVestingInfo, error) {
	if _, err := GetTier(ctx, tierID); err != nil {
		return nil, err
	}

	schedule, err := GetAllocationSchedule(ctx, tierID)
	if err != nil {
		return nil, err
	}

	info := &TierVestingInfo{TotalAllocationBps: schedule.TotalBps}

	tierVesting, err := GetTierVesting(ctx, tierID)
	if err != nil {
		return nil, err
	}
	if tierVesting != nil {
		info.Locked = true
		info.VestingStartTimestamp = tierVesting.VestingStartTimestamp
	}

	return info, nil
}

// GetTokensBought returns an account's entitlement bought in a tier.
func (s *SmartContract) GetTokensBought(ctx kalpsdk.TransactionContextInterface, account string, tierID uint64) (string, error) {
	purchase, err := GetPurchaseRecord(ctx, tierID, account)
	if err != nil {
		return "0", err
	}
	if purchase == nil {
		return "0", nil
	}

	return purchase.TokensBought, nil
}

// GetTokensReleased returns the amount already paid out to an account
// for a tier.
func (s *SmartContract) GetTokensReleased(ctx kalpsdk.TransactionContextInterface, account string, tierID uint64) (string, error) {
	purchase, err := GetPurchaseRecord(ctx, tierID, account)
	if err != nil {
		return "0", err
	}
	if purchase == nil {
		return "0", nil
	}

	return purchase.TokensReleased, nil
}

// GetTotalTokensSold returns the running total sold across all buyers
// of a tier.
func (s *SmartContract) GetTotalTokensSold(ctx kalpsdk.TransactionContextInterface, tierID uint64) (string, error) {
	if _, err := GetTier(ctx, tierID); err != nil {
		return "0", err
	}

	sold, err := GetTotalTokensSold(ctx, tierID)
	if err != nil {
		return "0", err
	}

	return sold.String(), nil
}

// GetAdmin returns the current contract authority.
func (s *SmartContract) GetAdmin(ctx kalpsdk.TransactionContextInterface) (string, error) {
	admin, err := GetAdminAddress(ctx)
	if err != nil {
		return "", err
	}
	if admin == "" {
		return "", NewCustomError(http.StatusBadRequest, "contract is not initialized", ErrNotInitialized)
	}

	return admin, nil
}

// GetPurchasesForAccount returns every purchase record of an account
// across tiers via a rich query on the purchase docType.
func (s *SmartContract) GetPurchasesForAccount(ctx kalpsdk.TransactionContextInterface, account string) ([]*PurchaseRecord, error) {
	query := fmt.Sprintf(`{"selector":{"docType":"%s","account":"%s"}}`, purchaseDocType, account)

	resultsIterator, err := ctx.GetQueryResult(query)
	if err != nil {
		return nil, NewCustomError(http.StatusInternalServerError, fmt.Sprintf("failed to query purchases for %s", account), err)
	}
	defer resultsIterator.Close()

	purchases := []*PurchaseRecord{}
	for resultsIterator.HasNext() {
		queryResult, err := resultsIterator.Next()
		if err != nil {
			return nil, NewCustomError(http.StatusInternalServerError, "failed to iterate purchase records", err)
		}

		var purchase PurchaseRecord
		if err := json.Unmarshal(queryResult.Value, &purchase); err != nil {
			return nil, NewCustomError(http.StatusInternalServerError, "failed to unmarshal purchase record", err)
		}

		purchases = append(purchases, &purchase)
	}

	return purchases, nil
}
