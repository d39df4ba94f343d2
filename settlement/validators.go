package settlement

import (
	"github.com/ethereum/go-ethereum/common"
)

// SetValidators appends a new snapshot effective from validFrom (owner
// only, §4.3 item 6). validFrom must be strictly greater than the last
// snapshot's, and the new validator list must not contain duplicates.
func (s *State) SetValidators(caller common.Address, validFrom uint64, validatorList []common.Address) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if caller != s.owner {
		return ErrNotAProver
	}
	last := s.validators[len(s.validators)-1]
	if validFrom <= last.ValidFrom {
		return ErrValidFromNotIncreasing
	}

	set := make(map[common.Address]bool, len(validatorList))
	for _, v := range validatorList {
		if set[v] {
			return ErrDuplicateValidator
		}
		set[v] = true
	}

	s.validators = append(s.validators, ValidatorSnapshot{Set: set, ValidFrom: validFrom})
	return nil
}

// advanceValidatorSet moves validatorSetIndex forward through V while
// the next snapshot's validFrom <= height (§4.3 item a). The index never
// decreases, mirroring the monotonic activation pointer of §3.
func (s *State) advanceValidatorSet(height uint64) {
	for s.validatorSetIndex+1 < len(s.validators) && s.validators[s.validatorSetIndex+1].ValidFrom <= height {
		s.validatorSetIndex++
	}
}

// effectiveValidators returns the validator snapshot active at the
// contract's current activation pointer.
func (s *State) effectiveValidators() ValidatorSnapshot {
	return s.validators[s.validatorSetIndex]
}

// quorumThreshold is the strict supermajority floor(2|V|/3)+1 (§4.3 item e).
func quorumThreshold(validatorCount int) int {
	return (2*validatorCount)/3 + 1
}
