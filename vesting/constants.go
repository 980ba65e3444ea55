package vesting

const (
	// monthDuration is the engine's unit of "month", a fixed number of
	// seconds rather than a calendar concept.
	monthDuration = uint64(30 * 24 * 60 * 60)

	// totalAllocationBps is the complete allocation of a tier in basis
	// points. A tier's vesting can only be locked once its distribution
	// schedule sums to exactly this value.
	totalAllocationBps = uint64(10000)

	contractAddressRegex = `^klp-[a-fA-F0-9]+-cc$`
	hexAddressRegex      = `^[0-9a-fA-F]{40}$`

	adminKey           = "admin"
	paymentTokenKey    = "paymentToken"
	vestingTokenKey    = "vestingToken"
	contractAddressKey = "contractAddress"
	tierCountKey       = "tiercount"

	tierKeyPrefix        = "tier"
	tierSoldKeyPrefix    = "tiersold"
	allocationsKeyPrefix = "allocations"
	vestingKeyPrefix     = "vesting"
	whitelistKeyPrefix   = "whitelist"
	purchaseKeyPrefix    = "purchase"

	purchaseDocType = "purchase"

	transferFunction     = "Transfer"
	transferFromFunction = "TransferFrom"

	initializedEvent          = "Initialized"
	adminRoleTransferredEvent = "AdminRoleTransferred"
	tierCreatedEvent          = "TierCreated"
	tierUpdatedEvent          = "TierUpdated"
	addressWhitelistedEvent   = "AddressWhitelisted"
	addressRemovedEvent       = "AddressRemovedFromWhitelist"
	vestingTimeSetEvent       = "VestingTimeSet"
	tokensPurchasedEvent      = "TokensPurchased"
	tokensClaimedEvent        = "TokensClaimed"
)
