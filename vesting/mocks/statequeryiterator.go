package mocks

import (
	"sync"

	"github.com/hyperledger/fabric-protos-go/ledger/queryresult"
	"github.com/p2eengineering/kalp-sdk-public/kalpsdk"
)

type StateQueryIterator struct {
	kalpsdk.StateQueryIteratorInterface

	HasNextStub        func() bool
	hasNextMutex       sync.RWMutex
	hasNextArgsForCall []struct{}

	NextStub        func() (*queryresult.KV, error)
	nextMutex       sync.RWMutex
	nextArgsForCall []struct{}

	CloseStub func() error
}

func (fake *StateQueryIterator) HasNext() bool {
	fake.hasNextMutex.Lock()
	fake.hasNextArgsForCall = append(fake.hasNextArgsForCall, struct{}{})
	stub := fake.HasNextStub
	fake.hasNextMutex.Unlock()
	if stub != nil {
		return stub()
	}
	return false
}

func (fake *StateQueryIterator) HasNextCallCount() int {
	fake.hasNextMutex.RLock()
	defer fake.hasNextMutex.RUnlock()
	return len(fake.hasNextArgsForCall)
}

func (fake *StateQueryIterator) Next() (*queryresult.KV, error) {
	fake.nextMutex.Lock()
	fake.nextArgsForCall = append(fake.nextArgsForCall, struct{}{})
	stub := fake.NextStub
	fake.nextMutex.Unlock()
	if stub != nil {
		return stub()
	}
	return nil, nil
}

func (fake *StateQueryIterator) NextCallCount() int {
	fake.nextMutex.RLock()
	defer fake.nextMutex.RUnlock()
	return len(fake.nextArgsForCall)
}

func (fake *StateQueryIterator) Close() error {
	if fake.CloseStub != nil {
		return fake.CloseStub()
	}
	return nil
}
