// Package mocks holds the test doubles for the kalpsdk interfaces the
// contract runs against. Each fake embeds the interface it doubles, so
// it satisfies the full interface while only the methods the contract
// exercises are backed by stubs; an unstubbed method that is never
// configured panics the test that reaches it.
package mocks

import (
	"sync"

	"github.com/hyperledger/fabric-chaincode-go/pkg/cid"
	"github.com/p2eengineering/kalp-sdk-public/kalpsdk"
	"github.com/p2eengineering/kalp-sdk-public/response"
	"google.golang.org/protobuf/types/known/timestamppb"
)

type TransactionContext struct {
	kalpsdk.TransactionContextInterface

	GetStateStub        func(string) ([]byte, error)
	getStateMutex       sync.RWMutex
	getStateArgsForCall []struct {
		arg1 string
	}
	getStateReturns struct {
		result1 []byte
		result2 error
	}

	PutStateWithoutKYCStub        func(string, []byte) error
	putStateWithoutKYCMutex       sync.RWMutex
	putStateWithoutKYCArgsForCall []struct {
		arg1 string
		arg2 []byte
	}
	putStateWithoutKYCReturns struct {
		result1 error
	}

	DelStateWithoutKYCStub        func(string) error
	delStateWithoutKYCMutex       sync.RWMutex
	delStateWithoutKYCArgsForCall []struct {
		arg1 string
	}
	delStateWithoutKYCReturns struct {
		result1 error
	}

	GetTxTimestampStub        func() (*timestamppb.Timestamp, error)
	getTxTimestampMutex       sync.RWMutex
	getTxTimestampArgsForCall []struct{}
	getTxTimestampReturns     struct {
		result1 *timestamppb.Timestamp
		result2 error
	}

	GetTxIDStub func() string

	GetChannelIDStub func() string

	SetEventStub        func(string, []byte) error
	setEventMutex       sync.RWMutex
	setEventArgsForCall []struct {
		arg1 string
		arg2 []byte
	}
	setEventReturns struct {
		result1 error
	}

	GetClientIdentityStub    func() cid.ClientIdentity
	getClientIdentityMutex   sync.RWMutex
	getClientIdentityReturns struct {
		result1 cid.ClientIdentity
	}

	InvokeChaincodeStub        func(string, [][]byte, string) response.Response
	invokeChaincodeMutex       sync.RWMutex
	invokeChaincodeArgsForCall []struct {
		arg1 string
		arg2 [][]byte
		arg3 string
	}
	invokeChaincodeReturns struct {
		result1 response.Response
	}

	GetQueryResultStub        func(string) (kalpsdk.StateQueryIteratorInterface, error)
	getQueryResultMutex       sync.RWMutex
	getQueryResultArgsForCall []struct {
		arg1 string
	}
	getQueryResultReturns struct {
		result1 kalpsdk.StateQueryIteratorInterface
		result2 error
	}

	CreateCompositeKeyStub func(string, []string) (string, error)
}

func (fake *TransactionContext) GetState(arg1 string) ([]byte, error) {
	fake.getStateMutex.Lock()
	fake.getStateArgsForCall = append(fake.getStateArgsForCall, struct {
		arg1 string
	}{arg1})
	stub := fake.GetStateStub
	returns := fake.getStateReturns
	fake.getStateMutex.Unlock()
	if stub != nil {
		return stub(arg1)
	}
	return returns.result1, returns.result2
}

func (fake *TransactionContext) GetStateCallCount() int {
	fake.getStateMutex.RLock()
	defer fake.getStateMutex.RUnlock()
	return len(fake.getStateArgsForCall)
}

func (fake *TransactionContext) GetStateArgsForCall(i int) string {
	fake.getStateMutex.RLock()
	defer fake.getStateMutex.RUnlock()
	return fake.getStateArgsForCall[i].arg1
}

func (fake *TransactionContext) GetStateReturns(result1 []byte, result2 error) {
	fake.getStateMutex.Lock()
	defer fake.getStateMutex.Unlock()
	fake.GetStateStub = nil
	fake.getStateReturns = struct {
		result1 []byte
		result2 error
	}{result1, result2}
}

func (fake *TransactionContext) PutStateWithoutKYC(arg1 string, arg2 []byte) error {
	fake.putStateWithoutKYCMutex.Lock()
	fake.putStateWithoutKYCArgsForCall = append(fake.putStateWithoutKYCArgsForCall, struct {
		arg1 string
		arg2 []byte
	}{arg1, arg2})
	stub := fake.PutStateWithoutKYCStub
	returns := fake.putStateWithoutKYCReturns
	fake.putStateWithoutKYCMutex.Unlock()
	if stub != nil {
		return stub(arg1, arg2)
	}
	return returns.result1
}

func (fake *TransactionContext) PutStateWithoutKYCCallCount() int {
	fake.putStateWithoutKYCMutex.RLock()
	defer fake.putStateWithoutKYCMutex.RUnlock()
	return len(fake.putStateWithoutKYCArgsForCall)
}

func (fake *TransactionContext) PutStateWithoutKYCArgsForCall(i int) (string, []byte) {
	fake.putStateWithoutKYCMutex.RLock()
	defer fake.putStateWithoutKYCMutex.RUnlock()
	return fake.putStateWithoutKYCArgsForCall[i].arg1, fake.putStateWithoutKYCArgsForCall[i].arg2
}

func (fake *TransactionContext) PutStateWithoutKYCReturns(result1 error) {
	fake.putStateWithoutKYCMutex.Lock()
	defer fake.putStateWithoutKYCMutex.Unlock()
	fake.PutStateWithoutKYCStub = nil
	fake.putStateWithoutKYCReturns = struct {
		result1 error
	}{result1}
}

func (fake *TransactionContext) DelStateWithoutKYC(arg1 string) error {
	fake.delStateWithoutKYCMutex.Lock()
	fake.delStateWithoutKYCArgsForCall = append(fake.delStateWithoutKYCArgsForCall, struct {
		arg1 string
	}{arg1})
	stub := fake.DelStateWithoutKYCStub
	returns := fake.delStateWithoutKYCReturns
	fake.delStateWithoutKYCMutex.Unlock()
	if stub != nil {
		return stub(arg1)
	}
	return returns.result1
}

func (fake *TransactionContext) DelStateWithoutKYCCallCount() int {
	fake.delStateWithoutKYCMutex.RLock()
	defer fake.delStateWithoutKYCMutex.RUnlock()
	return len(fake.delStateWithoutKYCArgsForCall)
}

func (fake *TransactionContext) DelStateWithoutKYCReturns(result1 error) {
	fake.delStateWithoutKYCMutex.Lock()
	defer fake.delStateWithoutKYCMutex.Unlock()
	fake.DelStateWithoutKYCStub = nil
	fake.delStateWithoutKYCReturns = struct {
		result1 error
	}{result1}
}

func (fake *TransactionContext) GetTxTimestamp() (*timestamppb.Timestamp, error) {
	fake.getTxTimestampMutex.Lock()
	fake.getTxTimestampArgsForCall = append(fake.getTxTimestampArgsForCall, struct{}{})
	stub := fake.GetTxTimestampStub
	returns := fake.getTxTimestampReturns
	fake.getTxTimestampMutex.Unlock()
	if stub != nil {
		return stub()
	}
	return returns.result1, returns.result2
}

func (fake *TransactionContext) GetTxTimestampCallCount() int {
	fake.getTxTimestampMutex.RLock()
	defer fake.getTxTimestampMutex.RUnlock()
	return len(fake.getTxTimestampArgsForCall)
}

func (fake *TransactionContext) GetTxTimestampReturns(result1 *timestamppb.Timestamp, result2 error) {
	fake.getTxTimestampMutex.Lock()
	defer fake.getTxTimestampMutex.Unlock()
	fake.GetTxTimestampStub = nil
	fake.getTxTimestampReturns = struct {
		result1 *timestamppb.Timestamp
		result2 error
	}{result1, result2}
}

func (fake *TransactionContext) GetTxID() string {
	if fake.GetTxIDStub != nil {
		return fake.GetTxIDStub()
	}
	return ""
}

func (fake *TransactionContext) GetChannelID() string {
	if fake.GetChannelIDStub != nil {
		return fake.GetChannelIDStub()
	}
	return ""
}

func (fake *TransactionContext) SetEvent(arg1 string, arg2 []byte) error {
	fake.setEventMutex.Lock()
	fake.setEventArgsForCall = append(fake.setEventArgsForCall, struct {
		arg1 string
		arg2 []byte
	}{arg1, arg2})
	stub := fake.SetEventStub
	returns := fake.setEventReturns
	fake.setEventMutex.Unlock()
	if stub != nil {
		return stub(arg1, arg2)
	}
	return returns.result1
}

func (fake *TransactionContext) SetEventCallCount() int {
	fake.setEventMutex.RLock()
	defer fake.setEventMutex.RUnlock()
	return len(fake.setEventArgsForCall)
}

func (fake *TransactionContext) SetEventArgsForCall(i int) (string, []byte) {
	fake.setEventMutex.RLock()
	defer fake.setEventMutex.RUnlock()
	return fake.setEventArgsForCall[i].arg1, fake.setEventArgsForCall[i].arg2
}

func (fake *TransactionContext) SetEventReturns(result1 error) {
	fake.setEventMutex.Lock()
	defer fake.setEventMutex.Unlock()
	fake.SetEventStub = nil
	fake.setEventReturns = struct {
		result1 error
	}{result1}
}

func (fake *TransactionContext) GetClientIdentity() cid.ClientIdentity {
	fake.getClientIdentityMutex.RLock()
	stub := fake.GetClientIdentityStub
	returns := fake.getClientIdentityReturns
	fake.getClientIdentityMutex.RUnlock()
	if stub != nil {
		return stub()
	}
	return returns.result1
}

func (fake *TransactionContext) GetClientIdentityReturns(result1 cid.ClientIdentity) {
	fake.getClientIdentityMutex.Lock()
	defer fake.getClientIdentityMutex.Unlock()
	fake.GetClientIdentityStub = nil
	fake.getClientIdentityReturns = struct {
		result1 cid.ClientIdentity
	}{result1}
}

func (fake *TransactionContext) InvokeChaincode(arg1 string, arg2 [][]byte, arg3 string) response.Response {
	fake.invokeChaincodeMutex.Lock()
	fake.invokeChaincodeArgsForCall = append(fake.invokeChaincodeArgsForCall, struct {
		arg1 string
		arg2 [][]byte
		arg3 string
	}{arg1, arg2, arg3})
	stub := fake.InvokeChaincodeStub
	returns := fake.invokeChaincodeReturns
	fake.invokeChaincodeMutex.Unlock()
	if stub != nil {
		return stub(arg1, arg2, arg3)
	}
	return returns.result1
}

func (fake *TransactionContext) InvokeChaincodeCallCount() int {
	fake.invokeChaincodeMutex.RLock()
	defer fake.invokeChaincodeMutex.RUnlock()
	return len(fake.invokeChaincodeArgsForCall)
}

func (fake *TransactionContext) InvokeChaincodeArgsForCall(i int) (string, [][]byte, string) {
	fake.invokeChaincodeMutex.RLock()
	defer fake.invokeChaincodeMutex.RUnlock()
	call := fake.invokeChaincodeArgsForCall[i]
	return call.arg1, call.arg2, call.arg3
}

func (fake *TransactionContext) InvokeChaincodeReturns(result1 response.Response) {
	fake.invokeChaincodeMutex.Lock()
	defer fake.invokeChaincodeMutex.Unlock()
	fake.InvokeChaincodeStub = nil
	fake.invokeChaincodeReturns = struct {
		result1 response.Response
	}{result1}
}

func (fake *TransactionContext) GetQueryResult(arg1 string) (kalpsdk.StateQueryIteratorInterface, error) {
	fake.getQueryResultMutex.Lock()
	fake.getQueryResultArgsForCall = append(fake.getQueryResultArgsForCall, struct {
		arg1 string
	}{arg1})
	stub := fake.GetQueryResultStub
	returns := fake.getQueryResultReturns
	fake.getQueryResultMutex.Unlock()
	if stub != nil {
		return stub(arg1)
	}
	return returns.result1, returns.result2
}

func (fake *TransactionContext) GetQueryResultReturns(result1 kalpsdk.StateQueryIteratorInterface, result2 error) {
	fake.getQueryResultMutex.Lock()
	defer fake.getQueryResultMutex.Unlock()
	fake.GetQueryResultStub = nil
	fake.getQueryResultReturns = struct {
		result1 kalpsdk.StateQueryIteratorInterface
		result2 error
	}{result1, result2}
}

func (fake *TransactionContext) CreateCompositeKey(arg1 string, arg2 []string) (string, error) {
	if fake.CreateCompositeKeyStub != nil {
		return fake.CreateCompositeKeyStub(arg1, arg2)
	}
	return "", nil
}
