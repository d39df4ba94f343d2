package settlement

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/polybase/payy/field"
)

// mintWithAuthorizationTypeHash is keccak256 of the EIP-712 struct type
// string for the second signature mintWithAuthorization requires (§4.3
// item 3), distinct from the token's own EIP-3009 authorization.
var mintWithAuthorizationTypeHash = crypto.Keccak256Hash([]byte(
	"MintWithAuthorization(bytes32 commitment,bytes32 value,bytes32 source,address from,uint256 validAfter,uint256 validBefore,bytes32 nonce)",
))

var eip712DomainTypeHash = crypto.Keccak256Hash([]byte(
	"EIP712Domain(string name,string version,uint256 chainId,address verifyingContract)",
))

func addressWord(a common.Address) [32]byte {
	var out [32]byte
	copy(out[12:], a.Bytes())
	return out
}

// DomainSeparator computes the contract's EIP-712 domain separator with
// name="Rollup", version="1", the current chain id, and the contract's
// own address (§4.3 item 1).
func (s *State) DomainSeparator() [32]byte {
	nameHash := crypto.Keccak256Hash([]byte("Rollup"))
	versionHash := crypto.Keccak256Hash([]byte("1"))
	chainID := u256BE(s.chainID)
	verifyingContract := addressWord(s.contractAddr)
	return crypto.Keccak256Hash(eip712DomainTypeHash[:], nameHash[:], versionHash[:], chainID[:], verifyingContract[:])
}

// MintAuthorizationDigest computes the EIP-712 digest a mintWithAuthorization
// caller must have signed with the `from` key (§4.3 item 3). The recovered
// signer must equal from.
func (s *State) MintAuthorizationDigest(commitment, value, source field.Element, from common.Address, validAfter, validBefore *big.Int, nonce [32]byte) [32]byte {
	c := commitment.Bytes()
	v := value.Bytes()
	src := source.Bytes()
	fromWord := addressWord(from)
	va := u256BE(validAfter)
	vb := u256BE(validBefore)

	structHash := crypto.Keccak256Hash(
		mintWithAuthorizationTypeHash[:], c[:], v[:], src[:], fromWord[:], va[:], vb[:], nonce[:],
	)

	domain := s.DomainSeparator()
	return crypto.Keccak256Hash([]byte{0x19, 0x01}, domain[:], structHash[:])
}
