package mocks

import (
	"sync"

	"github.com/hyperledger/fabric-chaincode-go/pkg/cid"
)

type ClientIdentity struct {
	cid.ClientIdentity

	GetIDStub        func() (string, error)
	getIDMutex       sync.RWMutex
	getIDArgsForCall []struct{}
	getIDReturns     struct {
		result1 string
		result2 error
	}

	GetMSPIDStub func() (string, error)
}

func (fake *ClientIdentity) GetID() (string, error) {
	fake.getIDMutex.Lock()
	fake.getIDArgsForCall = append(fake.getIDArgsForCall, struct{}{})
	stub := fake.GetIDStub
	returns := fake.getIDReturns
	fake.getIDMutex.Unlock()
	if stub != nil {
		return stub()
	}
	return returns.result1, returns.result2
}

func (fake *ClientIdentity) GetIDCallCount() int {
	fake.getIDMutex.RLock()
	defer fake.getIDMutex.RUnlock()
	return len(fake.getIDArgsForCall)
}

func (fake *ClientIdentity) GetIDReturns(result1 string, result2 error) {
	fake.getIDMutex.Lock()
	defer fake.getIDMutex.Unlock()
	fake.GetIDStub = nil
	fake.getIDReturns = struct {
		result1 string
		result2 error
	}{result1, result2}
}

func (fake *ClientIdentity) GetMSPID() (string, error) {
	if fake.GetMSPIDStub != nil {
		return fake.GetMSPIDStub()
	}
	return "", nil
}
