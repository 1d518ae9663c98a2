package htlcparams

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// EVMDescriptor is the deterministic derivation output for an account-chain
// (EVM) HTLC: the swap identifier the on-chain registry keys on, and the
// ABI-encoded calldata for the create call a Deploy/Fund action sends
// (spec §4.1 -- "deployment address is determined by the deploying
// transaction", so there is no address to predict here, only the
// deterministic swap ID and constructor bytecode/calldata).
type EVMDescriptor struct {
	// SwapID is the deterministic on-chain key: keccak256 of the swap's
	// parameters plus a caller-supplied nonce. It is passed to the
	// registry's create call as the swap's key; it does not equal the
	// contract's own computeSwapId, which also packs block.chainid.
	SwapID [32]byte
	// CreateCalldata is the ABI-encoded call to the contract's
	// createSwapNative/createSwapERC20 entrypoint.
	CreateCalldata []byte
	// IsNative is true when Asset.Contract is empty (native coin transfer).
	IsNative bool
}

// htlcABI is the minimal ABI fragment this package needs to encode creation
// calls; it mirrors the subset of the registry contract's interface spec §6
// requires to be "bit-exact compatible with the published ... ERC-20 HTLC"
// contract shape (createSwapNative/createSwapERC20/claim/refund).
var htlcABI = mustParseABI(`[
	{"type":"function","name":"createSwapNative","inputs":[
		{"name":"swapId","type":"bytes32"},
		{"name":"receiver","type":"address"},
		{"name":"secretHash","type":"bytes32"},
		{"name":"timelock","type":"uint256"}
	],"outputs":[],"stateMutability":"payable"},
	{"type":"function","name":"createSwapERC20","inputs":[
		{"name":"swapId","type":"bytes32"},
		{"name":"receiver","type":"address"},
		{"name":"token","type":"address"},
		{"name":"amount","type":"uint256"},
		{"name":"secretHash","type":"bytes32"},
		{"name":"timelock","type":"uint256"}
	],"outputs":[],"stateMutability":"nonpayable"},
	{"type":"function","name":"claim","inputs":[
		{"name":"swapId","type":"bytes32"},
		{"name":"secret","type":"bytes32"}
	],"outputs":[],"stateMutability":"nonpayable"},
	{"type":"function","name":"refund","inputs":[
		{"name":"swapId","type":"bytes32"}
	],"outputs":[],"stateMutability":"nonpayable"}
]`)

func mustParseABI(json string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(json))
	if err != nil {
		panic(fmt.Sprintf("htlcparams: invalid embedded HTLC ABI: %v", err))
	}
	return parsed
}

// DeriveEVM computes the deterministic swap ID and create-call calldata for
// an account-chain HTLC. timelock is an absolute unix timestamp, matching
// the contract's own convention (spec's account-chain expiry is wall-clock).
// nonce disambiguates repeated swaps between the same two parties with
// otherwise-identical parameters.
func DeriveEVM(p Params, nonce *big.Int) (EVMDescriptor, error) {
	if p.LedgerKind != AccountChain {
		return EVMDescriptor{}, fmt.Errorf("htlcparams: DeriveEVM called on %s params", p.LedgerKind)
	}
	if len(p.RedeemIdentity) != 20 || len(p.RefundIdentity) != 20 {
		return EVMDescriptor{}, fmt.Errorf("htlcparams: EVM identities must be 20-byte addresses")
	}
	if p.Expiry.IsHeight || p.Expiry.IsRelative {
		return EVMDescriptor{}, fmt.Errorf("htlcparams: EVM HTLC expiry must be an absolute wall-clock timestamp")
	}

	sender := common.BytesToAddress(p.RefundIdentity) // refunder == original sender
	receiver := common.BytesToAddress(p.RedeemIdentity)
	timelock := big.NewInt(p.Expiry.Unix)
	amount := new(big.Int).SetUint64(p.Quantity)
	if nonce == nil {
		nonce = big.NewInt(0)
	}

	var token common.Address
	isNative := p.Asset.IsNative()
	if !isNative {
		token = common.BytesToAddress(p.Asset.Contract)
	}

	swapID := computeSwapID(sender, receiver, token, amount, p.SecretHash, timelock, nonce)

	var calldata []byte
	var err error
	if isNative {
		calldata, err = htlcABI.Pack("createSwapNative", swapID, receiver, p.SecretHash, timelock)
	} else {
		calldata, err = htlcABI.Pack("createSwapERC20", swapID, receiver, token, amount, p.SecretHash, timelock)
	}
	if err != nil {
		return EVMDescriptor{}, fmt.Errorf("htlcparams: encode create calldata: %w", err)
	}

	return EVMDescriptor{SwapID: swapID, CreateCalldata: calldata, IsNative: isNative}, nil
}

// computeSwapID hashes the packed sender, receiver, token, amount, secret
// hash, timelock and nonce with keccak256. The registry contract's own
// computeSwapId packs block.chainid between timelock and nonce, so the two
// results differ; the watcher keys on this package's value, which is the
// one the create call registers.
func computeSwapID(sender, receiver, token common.Address, amount *big.Int, secretHash SecretHash, timelock, nonce *big.Int) [32]byte {
	packed := append([]byte{}, sender.Bytes()...)
	packed = append(packed, receiver.Bytes()...)
	packed = append(packed, token.Bytes()...)
	packed = append(packed, leftPad32(amount)...)
	packed = append(packed, secretHash[:]...)
	packed = append(packed, leftPad32(timelock)...)
	packed = append(packed, leftPad32(nonce)...)
	return crypto.Keccak256Hash(packed)
}

func leftPad32(n *big.Int) []byte {
	b := n.Bytes()
	if len(b) >= 32 {
		return b[len(b)-32:]
	}
	out := make([]byte, 32)
	copy(out[32-len(b):], b)
	return out
}

// RedeemCalldata ABI-encodes a claim(swapId, secret) call.
func RedeemCalldata(swapID [32]byte, secret Secret) ([]byte, error) {
	return htlcABI.Pack("claim", swapID, [32]byte(secret))
}

// RefundCalldata ABI-encodes a refund(swapId) call.
func RefundCalldata(swapID [32]byte) ([]byte, error) {
	return htlcABI.Pack("refund", swapID)
}
