package txpool

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katana-go/katana/core/types"
	"github.com/katana-go/katana/katanalib/common"
)

type fakeProvider struct {
	nonces map[common.Address]common.Felt
	classes map[common.ClassHash]*types.ContractClass
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{nonces: make(map[common.Address]common.Felt), classes: make(map[common.ClassHash]*types.ContractClass)}
}

func (f *fakeProvider) Nonce(addr common.Address) (common.Felt, error) { return f.nonces[addr], nil }
func (f *fakeProvider) ClassHashAt(addr common.Address) (common.ClassHash, error) {
	return common.FeltZero, nil
}
func (f *fakeProvider) StorageAt(addr common.Address, slot common.Felt) (common.Felt, error) {
	return common.FeltZero, nil
}
func (f *fakeProvider) Class(classHash common.ClassHash) (*types.ContractClass, error) {
	return f.classes[classHash], nil
}
func (f *fakeProvider) CompiledClassHash(classHash common.ClassHash) (common.Felt, error) {
	return common.FeltZero, nil
}

type alwaysValidExecutor struct{ calls int }

func (e *alwaysValidExecutor) ValidateTransaction(tx types.Transaction, skipAccountValidation, skipFeeCheck bool) error {
	e.calls++
	return nil
}

func TestValidatorAcceptsFirstTransaction(t *testing.T) {
	provider := newFakeProvider()
	executor := &alwaysValidExecutor{}
	v := NewValidator(provider, executor, false)

	tx := invoke(common.FeltFromUint64(1), 0)
	result, err := v.Validate(tx)
	require.NoError(t, err)
	require.Equal(t, OutcomeValid, result.Outcome)
	require.Equal(t, 1, executor.calls)

	next, err := v.PoolNonce(tx.SenderAddr)
	require.NoError(t, err)
	require.Equal(t, common.FeltOne, next)
}

func TestValidatorTagsNonceGapAsDependent(t *testing.T) {
	provider := newFakeProvider()
	v := NewValidator(provider, &alwaysValidExecutor{}, false)

	tx := invoke(common.FeltFromUint64(1), 5)
	result, err := v.Validate(tx)
	require.NoError(t, err)
	require.Equal(t, OutcomeDependent, result.Outcome)
	require.Equal(t, common.FeltZero, result.CurrentNonce)
}

func TestValidatorRejectsAlreadyDeclaredClass(t *testing.T) {
	provider := newFakeProvider()
	classHash := common.FeltFromUint64(99)
	provider.classes[classHash] = &types.ContractClass{}
	v := NewValidator(provider, &alwaysValidExecutor{}, false)

	tx := &types.DeclareTxV1{SenderAddr: common.FeltFromUint64(1), TxNonce: common.FeltZero, TxClassHash: classHash}
	result, err := v.Validate(tx)
	require.NoError(t, err)
	require.Equal(t, OutcomeInvalid, result.Outcome)
	require.Equal(t, InvalidReasonClassAlreadyDeclared, result.InvalidReason)
}

func TestValidatorRejectsStaleNonceWithoutCallingExecutor(t *testing.T) {
	provider := newFakeProvider()
	sender := common.FeltFromUint64(1)
	provider.nonces[sender] = common.FeltFromUint64(5)
	executor := &alwaysValidExecutor{}
	v := NewValidator(provider, executor, false)

	tx := invoke(sender, 3)
	result, err := v.Validate(tx)
	require.NoError(t, err)
	require.Equal(t, OutcomeInvalid, result.Outcome)
	require.Equal(t, InvalidReasonNonceTooLow, result.InvalidReason)
	require.Equal(t, common.FeltFromUint64(5), result.CurrentNonce)
	require.Equal(t, 0, executor.calls)
}

func TestSkipValidateRuleForFirstInvokeAfterDeployAccount(t *testing.T) {
	tx := invoke(common.FeltFromUint64(1), 1)
	require.True(t, skipValidateRule(tx, common.FeltZero))

	tx2 := invoke(common.FeltFromUint64(1), 2)
	require.False(t, skipValidateRule(tx2, common.FeltOne))
}
