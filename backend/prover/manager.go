package prover

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"math/big"
	"os"
	"path/filepath"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/constraint"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/r1cs"

	"github.com/polybase/payy/circuit"
)

// circuitKeys bundles one circuit's compiled constraint system and its
// proving/verifying key pair.
type circuitKeys struct {
	ccs constraint.ConstraintSystem
	pk  groth16.ProvingKey
	vk  groth16.VerifyingKey
}

// CircuitManager compiles the four circuits (mint, burn, UTXO transfer,
// aggregate) and serves proof generation for each.
type CircuitManager struct {
	mint        circuitKeys
	burn        circuitKeys
	utxo        circuitKeys
	aggregate   circuitKeys
	initialized bool
	config      *Config
}

// NewCircuitManager creates a new circuit manager.
func NewCircuitManager() *CircuitManager {
	return &CircuitManager{config: LoadConfig()}
}

// Initialize compiles all four circuits and loads or generates their keys.
func (cm *CircuitManager) Initialize() error {
	field := ecc.BN254.ScalarField()

	if err := cm.setup(field, "mint", &circuit.MintCircuit{}, &cm.mint); err != nil {
		return err
	}
	if err := cm.setup(field, "burn", emptyBurnCircuit(), &cm.burn); err != nil {
		return err
	}
	if err := cm.setup(field, "utxo", &circuit.UTXOCircuit{}, &cm.utxo); err != nil {
		return err
	}
	if err := cm.setup(field, "aggregate", &circuit.AggregateCircuit{}, &cm.aggregate); err != nil {
		return err
	}

	cm.initialized = true
	return nil
}

func emptyBurnCircuit() *circuit.BurnCircuit {
	return &circuit.BurnCircuit{}
}

func (cm *CircuitManager) setup(field *big.Int, name string, c frontend.Circuit, keys *circuitKeys) error {
	ccs, err := frontend.Compile(field, r1cs.NewBuilder, c)
	if err != nil {
		return fmt.Errorf("compiling %s circuit: %w", name, err)
	}
	keys.ccs = ccs

	pkPath := filepath.Join(cm.config.KeyDir, name+".pk")
	vkPath := filepath.Join(cm.config.KeyDir, name+".vk")

	if err := loadKeys(pkPath, vkPath, keys); err == nil {
		return nil
	}

	pk, vk, err := groth16.Setup(ccs)
	if err != nil {
		return fmt.Errorf("setting up %s keys: %w", name, err)
	}
	keys.pk, keys.vk = pk, vk
	return saveKeys(pkPath, vkPath, keys)
}

func loadKeys(pkPath, vkPath string, keys *circuitKeys) error {
	if _, err := os.Stat(pkPath); err != nil {
		return err
	}
	if _, err := os.Stat(vkPath); err != nil {
		return err
	}

	pkFile, err := os.Open(pkPath)
	if err != nil {
		return err
	}
	defer pkFile.Close()
	keys.pk = groth16.NewProvingKey(ecc.BN254)
	if _, err := keys.pk.ReadFrom(pkFile); err != nil {
		return err
	}

	vkFile, err := os.Open(vkPath)
	if err != nil {
		return err
	}
	defer vkFile.Close()
	keys.vk = groth16.NewVerifyingKey(ecc.BN254)
	if _, err := keys.vk.ReadFrom(vkFile); err != nil {
		return err
	}
	return nil
}

func saveKeys(pkPath, vkPath string, keys *circuitKeys) error {
	if err := os.MkdirAll(filepath.Dir(pkPath), 0755); err != nil {
		return fmt.Errorf("creating key directory: %w", err)
	}

	pkFile, err := os.OpenFile(pkPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	defer pkFile.Close()
	if _, err := keys.pk.WriteTo(pkFile); err != nil {
		return err
	}

	vkFile, err := os.OpenFile(vkPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	defer vkFile.Close()
	_, err = keys.vk.WriteTo(vkFile)
	return err
}

// prove compiles a witness assignment against ccs/pk and returns the
// resulting proof, base64-encoded. Callers already know the public-input
// vector from the request that built the assignment, so it is not
// re-extracted here.
func prove(keys circuitKeys, assignment frontend.Circuit) (string, error) {
	field := ecc.BN254.ScalarField()

	fullWitness, err := frontend.NewWitness(assignment, field)
	if err != nil {
		return "", fmt.Errorf("building witness: %w", err)
	}

	proof, err := groth16.Prove(keys.ccs, keys.pk, fullWitness)
	if err != nil {
		return "", fmt.Errorf("proving: %w", err)
	}

	var buf bytes.Buffer
	if _, err := proof.WriteTo(&buf); err != nil {
		return "", fmt.Errorf("serializing proof: %w", err)
	}

	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
