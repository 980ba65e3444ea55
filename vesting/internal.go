package vesting

import (
	"math/big"
	"net/http"

	"github.com/p2eengineering/kalp-sdk-public/kalpsdk"
)

// validateTierParams parses and checks the tier fields shared by create
// and update. Amounts are positive 18-decimal strings.
func validateTierParams(maxTokensPerWallet string, saleStart, saleEnd uint64, maxTokensForTier, price string, whitelistOnly bool) (*Tier, error) {
	maxPerWallet, ok := new(big.Int).SetString(maxTokensPerWallet, 10)
	if !ok || maxPerWallet.Sign() <= 0 {
		return nil, ErrInvalidAmount("maxTokensPerWallet", maxTokensPerWallet)
	}

	maxForTier, ok := new(big.Int).SetString(maxTokensForTier, 10)
	if !ok || maxForTier.Sign() <= 0 {
		return nil, ErrInvalidAmount("maxTokensForTier", maxTokensForTier)
	}

	tierPrice, ok := new(big.Int).SetString(price, 10)
	if !ok || tierPrice.Sign() <= 0 {
		return nil, ErrInvalidAmount("price", price)
	}

	if saleStart >= saleEnd {
		return nil, ErrInvalidWindow
	}

	if maxPerWallet.Cmp(maxForTier) > 0 {
		return nil, ErrInvalidCap
	}

	return &Tier{
		MaxTokensPerWallet: maxPerWallet.String(),
		SaleStartTimestamp: saleStart,
		SaleEndTimestamp:   saleEnd,
		MaxTokensForTier:   maxForTier.String(),
		Price:              tierPrice.String(),
		WhitelistOnly:      whitelistOnly,
	}, nil
}

// getTxTimestamp reads the transaction timestamp once; every time
// comparison inside an operation uses this single reading.
func getTxTimestamp(ctx kalpsdk.TransactionContextInterface) (uint64, error) {
	txTimestamp, err := ctx.GetTxTimestamp()
	if err != nil {
		return 0, NewCustomError(http.StatusInternalServerError, "failed to get transaction timestamp", err)
	}

	return uint64(txTimestamp.GetSeconds()), nil
}

// transferTokens moves amount of the given token from this contract's
// custody to recipient via a cross-chaincode Transfer.
func transferTokens(ctx kalpsdk.TransactionContextInterface, tokenAddress, recipient string, amount *big.Int) error {
	args := [][]byte{
		[]byte(transferFunction),
		[]byte(recipient),
		[]byte(amount.String()),
	}

	resp := ctx.InvokeChaincode(tokenAddress, args, ctx.GetChannelID())
	if resp.Response.Status != http.StatusOK || string(resp.Response.Payload) != "true" {
		return ErrTransferFailed(tokenAddress, "contract", recipient, amount.String())
	}

	return nil
}

// transferTokensFrom pulls amount of the given token from the sender
// into to, using the allowance the sender pre-approved for this
// contract.
func transferTokensFrom(ctx kalpsdk.TransactionContextInterface, tokenAddress, from, to string, amount *big.Int) error {
	args := [][]byte{
		[]byte(transferFromFunction),
		[]byte(from),
		[]byte(to),
		[]byte(amount.String()),
	}

	resp := ctx.InvokeChaincode(tokenAddress, args, ctx.GetChannelID())
	if resp.Response.Status != http.StatusOK || string(resp.Response.Payload) != "true" {
		return ErrTransferFailed(tokenAddress, from, to, amount.String())
	}

	return nil
}
