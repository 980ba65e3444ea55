package vesting

import (
	"encoding/base64"
	"fmt"
	"math/big"
	"net/http"
	"regexp"
	"strings"

	"github.com/p2eengineering/kalp-sdk-public/kalpsdk"
)

func GetUserId(ctx kalpsdk.TransactionContextInterface) (string, error) {
	b64ID, err := ctx.GetClientIdentity().GetID()
	if err != nil {
		return "", fmt.Errorf("failed to read clientID: %v", err)
	}

	decodeID, err := base64.StdEncoding.DecodeString(b64ID)
	if err != nil {
		return "", fmt.Errorf("failed to base64 decode clientID: %v", err)
	}

	completeId := string(decodeID)
	cnIndex := strings.Index(completeId, "x509::CN=")
	commaIndex := strings.Index(completeId, ",")
	if cnIndex == -1 || commaIndex <= cnIndex+len("x509::CN=") {
		return "", fmt.Errorf("failed to parse clientID: unexpected identity format")
	}
	userId := completeId[cnIndex+len("x509::CN="):commaIndex]

	if !IsUserAddressValid(userId) {
		return "", ErrInvalidUserAddress(userId)
	}

	return userId, nil
}

func IsContractAddressValid(address string) bool {
	if address == "" {
		return false
	}

	isValid, _ := regexp.MatchString(contractAddressRegex, address)
	return isValid
}

func IsUserAddressValid(address string) bool {
	if address == "" {
		return false
	}

	isValid, _ := regexp.MatchString(hexAddressRegex, address)
	return isValid
}

func Decimals() uint64 {
	return 18
}

func ConvertTokensToWei(tokenAmount uint64) string {
	decimals := Decimals()

	tokenAmountBigInt := new(big.Int).SetUint64(tokenAmount)

	multiplier := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)

	weiAmount := new(big.Int).Mul(tokenAmountBigInt, multiplier)

	return weiAmount.String()
}

// IsSignerAdmin checks the caller against the stored administrator
// identity set at Initialize.
func IsSignerAdmin(ctx kalpsdk.TransactionContextInterface) error {
	signer, err := GetUserId(ctx)
	if err != nil {
		return NewCustomError(http.StatusInternalServerError, "failed to get client id", err)
	}

	admin, err := GetAdminAddress(ctx)
	if err != nil {
		return err
	}
	if admin == "" {
		return NewCustomError(http.StatusBadRequest, "contract is not initialized", ErrNotInitialized)
	}

	if signer != admin {
		return NewCustomError(http.StatusBadRequest, "signer is not the contract admin", ErrNotAuthorized)
	}

	return nil
}
